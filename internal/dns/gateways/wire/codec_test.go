package wire

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaydns/relay-dns/internal/dns/common/log"
	"github.com/relaydns/relay-dns/internal/dns/domain"
)

func newTestCodec() *packetCodec {
	return NewCodec(log.NewNoopLogger())
}

func TestCodec_PacketRoundTrip(t *testing.T) {
	codec := newTestCodec()

	pkt := domain.Packet{
		Header: domain.Header{
			ID:                 1234,
			Response:           true,
			Truncated:          true,
			RecursionAvailable: true,
			RCode:              domain.RCodeServFail,
			QuestionCount:      1,
			AnswerCount:        1,
		},
		Questions: []domain.Question{
			{Name: "codecrafters.io.", Type: domain.RRTypeA, Class: domain.RRClassIN},
		},
		Answers: []domain.Record{
			domain.NewARecord("codecrafters.io.", 3600, netip.AddrFrom4([4]byte{127, 0, 0, 1})),
		},
	}
	require.NoError(t, pkt.Validate())

	data, err := codec.Encode(pkt)
	require.NoError(t, err)

	got, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, pkt, got)
}

func TestCodec_DecodeRawQuery(t *testing.T) {
	codec := newTestCodec()

	// Standard recursive query for codecrafters.io. A IN, id 1234.
	raw := []byte{
		0x04, 0xD2, // ID
		0x01, 0x00, // flags: RD
		0x00, 0x01, // QDCOUNT
		0x00, 0x00, // ANCOUNT
		0x00, 0x00, // NSCOUNT
		0x00, 0x00, // ARCOUNT
		0x0C, 'c', 'o', 'd', 'e', 'c', 'r', 'a', 'f', 't', 'e', 'r', 's',
		0x02, 'i', 'o',
		0x00,
		0x00, 0x01, // QTYPE A
		0x00, 0x01, // QCLASS IN
	}

	pkt, err := codec.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, uint16(1234), pkt.Header.ID)
	assert.False(t, pkt.Header.Response)
	assert.True(t, pkt.Header.RecursionDesired)
	assert.Equal(t, uint16(1), pkt.Header.QuestionCount)
	require.Len(t, pkt.Questions, 1)
	assert.Equal(t, "codecrafters.io.", pkt.Questions[0].Name)
	assert.Equal(t, domain.RRTypeA, pkt.Questions[0].Type)
	assert.Equal(t, domain.RRClassIN, pkt.Questions[0].Class)
	assert.Empty(t, pkt.Answers)

	// Re-encoding reproduces the original datagram byte for byte.
	encoded, err := codec.Encode(pkt)
	require.NoError(t, err)
	assert.Equal(t, raw, encoded)
}

func TestCodec_CompressionOnRepeatedName(t *testing.T) {
	codec := newTestCodec()

	pkt := domain.Packet{
		Header: domain.Header{
			ID:          7,
			Response:    true,
			AnswerCount: 2,
		},
		Answers: []domain.Record{
			domain.NewARecord("example.com.", 60, netip.AddrFrom4([4]byte{1, 1, 1, 1})),
			domain.NewARecord("example.com.", 60, netip.AddrFrom4([4]byte{2, 2, 2, 2})),
		},
	}

	data, err := codec.Encode(pkt)
	require.NoError(t, err)

	// Answer 1 name starts at 12 and spans 13 bytes, fields+RDATA span 14,
	// so answer 2 begins at 39 with a pointer back to offset 12.
	require.Greater(t, len(data), 40)
	assert.Equal(t, byte(0xC0), data[39])
	assert.Equal(t, byte(12), data[40])

	got, err := codec.Decode(data)
	require.NoError(t, err)
	require.Len(t, got.Answers, 2)
	assert.Equal(t, got.Answers[0].Name, got.Answers[1].Name)
	assert.Equal(t, netip.AddrFrom4([4]byte{2, 2, 2, 2}), got.Answers[1].Data)
}

func TestCodec_SuffixSharingAcrossEntries(t *testing.T) {
	codec := newTestCodec()

	pkt := domain.Packet{
		Header: domain.Header{
			ID:            21,
			QuestionCount: 2,
		},
		Questions: []domain.Question{
			{Name: "mail.example.com.", Type: domain.RRTypeA, Class: domain.RRClassIN},
			{Name: "example.com.", Type: domain.RRTypeA, Class: domain.RRClassIN},
		},
	}

	data, err := codec.Encode(pkt)
	require.NoError(t, err)

	// "example.com." was registered at offset 17 (12 header + 5 for the
	// "mail" label) while writing the first question, so the second
	// question's name is a 2-byte pointer to it.
	// Question 1: name 12..29, type/class 30..33. Question 2 starts at 34.
	assert.Equal(t, byte(0xC0), data[34])
	assert.Equal(t, byte(17), data[35])
	assert.Len(t, data, 40)

	got, err := codec.Decode(data)
	require.NoError(t, err)
	require.Len(t, got.Questions, 2)
	assert.Equal(t, "mail.example.com.", got.Questions[0].Name)
	assert.Equal(t, "example.com.", got.Questions[1].Name)
}

func TestCodec_CountsBoundEncoding(t *testing.T) {
	codec := newTestCodec()

	q1 := domain.Question{Name: "one.example.", Type: domain.RRTypeA, Class: domain.RRClassIN}
	q2 := domain.Question{Name: "two.example.", Type: domain.RRTypeA, Class: domain.RRClassIN}

	// Only the first entry is encoded when the header declares one.
	pkt := domain.Packet{
		Header:    domain.Header{ID: 5, QuestionCount: 1},
		Questions: []domain.Question{q1, q2},
	}
	data, err := codec.Encode(pkt)
	require.NoError(t, err)

	got, err := codec.Decode(data)
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, q1, got.Questions[0])
}

func TestCodec_EncodeErrors(t *testing.T) {
	codec := newTestCodec()

	tests := []struct {
		name    string
		pkt     domain.Packet
		wantErr string
	}{
		{
			name: "question count exceeds stored entries",
			pkt: domain.Packet{
				Header: domain.Header{QuestionCount: 2},
				Questions: []domain.Question{
					{Name: "example.com.", Type: domain.RRTypeA, Class: domain.RRClassIN},
				},
			},
			wantErr: "declares 2 questions, packet holds 1",
		},
		{
			name: "answer count exceeds stored entries",
			pkt: domain.Packet{
				Header: domain.Header{AnswerCount: 1},
			},
			wantErr: "declares 1 answers, packet holds 0",
		},
		{
			name: "record without IPv4 data",
			pkt: domain.Packet{
				Header:  domain.Header{AnswerCount: 1},
				Answers: []domain.Record{{Name: "example.com.", Type: domain.RRTypeA, Class: domain.RRClassIN}},
			},
			wantErr: "RDATA must be an IPv4 address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Encode(tt.pkt)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCodec_DecodeErrors(t *testing.T) {
	codec := newTestCodec()

	tests := []struct {
		name    string
		data    []byte
		wantErr string
	}{
		{
			name:    "short header",
			data:    []byte{0x00, 0x01, 0x02},
			wantErr: "too short",
		},
		{
			name: "count points past available bytes",
			data: []byte{
				0x00, 0x01, 0x00, 0x00,
				0x00, 0x02, // QDCOUNT 2, but only one question follows
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0x01, 'a', 0x00, 0x00, 0x01, 0x00, 0x01,
			},
			wantErr: "question 1",
		},
		{
			name: "forward pointer",
			data: []byte{
				0x00, 0x01, 0x00, 0x00,
				0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
				0xC0, 0x20, // points at offset 32, which nothing defined
				0x00, 0x01, 0x00, 0x01,
			},
			wantErr: "unrecorded offset 32",
		},
		{
			name: "truncated record fields",
			data: []byte{
				0x00, 0x01, 0x80, 0x00,
				0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00,
				0x01, 'a', 0x00, 0x00, 0x01, // name + partial type
			},
			wantErr: "answer 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.data)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCodec_MultiQuestionMultiAnswerRoundTrip(t *testing.T) {
	codec := newTestCodec()

	pkt := domain.Packet{
		Header: domain.Header{
			ID:               314,
			Response:         true,
			RecursionDesired: true,
			QuestionCount:    2,
			AnswerCount:      2,
		},
		Questions: []domain.Question{
			{Name: "api.example.com.", Type: domain.RRTypeA, Class: domain.RRClassIN},
			{Name: "web.example.com.", Type: domain.RRTypeA, Class: domain.RRClassIN},
		},
		Answers: []domain.Record{
			domain.NewARecord("api.example.com.", 300, netip.AddrFrom4([4]byte{10, 0, 0, 1})),
			domain.NewARecord("web.example.com.", 300, netip.AddrFrom4([4]byte{10, 0, 0, 2})),
		},
	}

	data, err := codec.Encode(pkt)
	require.NoError(t, err)

	got, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, pkt, got)
}
