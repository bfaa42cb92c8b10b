package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relaydns/relay-dns/internal/dns/domain"
)

func encodeHeader(h domain.Header) []byte {
	var buf bytes.Buffer
	writeHeader(&buf, h)
	return buf.Bytes()
}

func TestHeader_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		hdr  domain.Header
	}{
		{
			name: "zero header",
			hdr:  domain.Header{},
		},
		{
			name: "query with recursion desired",
			hdr: domain.Header{
				ID:               0x1234,
				RecursionDesired: true,
				QuestionCount:    1,
			},
		},
		{
			name: "response with all flags",
			hdr: domain.Header{
				ID:                 65535,
				Response:           true,
				Opcode:             15,
				Authoritative:      true,
				Truncated:          true,
				RecursionDesired:   true,
				RecursionAvailable: true,
				Z:                  true,
				AuthedData:         true,
				CheckingDisabled:   true,
				RCode:              domain.RCodeRefused,
				QuestionCount:      1,
				AnswerCount:        2,
				AuthorityCount:     3,
				AdditionalCount:    4,
			},
		},
		{
			name: "servfail response",
			hdr: domain.Header{
				ID:       42,
				Response: true,
				RCode:    domain.RCodeServFail,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encodeHeader(tt.hdr)
			assert.Len(t, data, headerLength)
			assert.Equal(t, tt.hdr, decodeHeader(data))
		})
	}
}

func TestHeader_WireRoundTrip(t *testing.T) {
	// encode(decode(b)) == b for well-formed wire fixtures.
	fixtures := [][]byte{
		{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00},
		// QR|AA|RD with opcode 0, RA|AD, rcode NXDOMAIN
		{0x12, 0x34, 0x85, 0xA3, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00},
		// opcode 2 (STATUS) query, CD set, rcode REFUSED
		{0xBE, 0xEF, 0x11, 0x15, 0x00, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01},
	}
	for _, fixture := range fixtures {
		assert.Equal(t, fixture, encodeHeader(decodeHeader(fixture)))
	}
}

func TestHeader_BitFieldFidelity(t *testing.T) {
	// Setting only the response flag and opcode must leave every other
	// flag untouched through a full round trip.
	h := domain.Header{Response: true, Opcode: 2}
	got := decodeHeader(encodeHeader(h))

	assert.True(t, got.Response)
	assert.Equal(t, uint8(2), got.Opcode)
	assert.False(t, got.Authoritative)
	assert.False(t, got.Truncated)
	assert.False(t, got.RecursionDesired)
	assert.False(t, got.RecursionAvailable)
	assert.False(t, got.Z)
	assert.False(t, got.AuthedData)
	assert.False(t, got.CheckingDisabled)
	assert.Equal(t, domain.RCodeNoError, got.RCode)
	assert.Zero(t, got.QuestionCount)
	assert.Zero(t, got.AnswerCount)
	assert.Zero(t, got.AuthorityCount)
	assert.Zero(t, got.AdditionalCount)
}

func TestHeader_UnknownRCodeNormalizes(t *testing.T) {
	// rcode 9 is outside the supported set and must decode as NOERROR.
	data := []byte{0x00, 0x01, 0x80, 0x09, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	h := decodeHeader(data)
	assert.Equal(t, domain.RCodeNoError, h.RCode)
	assert.True(t, h.Response)
}
