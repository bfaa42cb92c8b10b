// Package wire implements the DNS message format of RFC 1035 §4.1: header
// bit packing, domain-name label encoding with §4.1.4 message compression,
// and assembly of whole packets for UDP transport.
package wire

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/relaydns/relay-dns/internal/dns/common/log"
	"github.com/relaydns/relay-dns/internal/dns/domain"
)

// Codec converts between raw datagrams and structured packets.
// Both directions are lossless for well-formed messages: Decode(Encode(p))
// yields p back, and vice versa.
type Codec interface {
	Encode(p domain.Packet) ([]byte, error)
	Decode(data []byte) (domain.Packet, error)
}

// packetCodec is the standard UDP wire codec.
type packetCodec struct {
	logger log.Logger
}

// NewCodec creates a wire codec using the provided logger.
func NewCodec(logger log.Logger) *packetCodec {
	return &packetCodec{logger: logger}
}

// Decode parses a raw DNS message into a Packet.
//
// A fresh lookup table scoped to this message is threaded through every
// name read so that later entries can resolve compression pointers into
// earlier ones. The header's section counts are trusted and bound the
// question and answer loops; running out of bytes before the counts are
// satisfied is an error.
func (c *packetCodec) Decode(data []byte) (domain.Packet, error) {
	if len(data) < headerLength {
		return domain.Packet{}, errors.New("message too short for header")
	}
	hdr := decodeHeader(data)

	table := newLookupTable()
	offset := headerLength

	questions := make([]domain.Question, 0, hdr.QuestionCount)
	for i := 0; i < int(hdr.QuestionCount); i++ {
		q, next, err := readQuestion(data, offset, table)
		if err != nil {
			return domain.Packet{}, fmt.Errorf("question %d: %w", i, err)
		}
		questions = append(questions, q)
		offset = next
	}

	answers := make([]domain.Record, 0, hdr.AnswerCount)
	for i := 0; i < int(hdr.AnswerCount); i++ {
		rr, next, err := readRecord(data, offset, table)
		if err != nil {
			return domain.Packet{}, fmt.Errorf("answer %d: %w", i, err)
		}
		answers = append(answers, rr)
		offset = next
	}

	c.logger.Debug(map[string]any{
		"id":        hdr.ID,
		"questions": len(questions),
		"answers":   len(answers),
		"consumed":  offset,
	}, "Decoded DNS packet")

	return domain.Packet{
		Header:    hdr,
		Questions: questions,
		Answers:   answers,
	}, nil
}

// Encode serializes a Packet into wire bytes.
//
// The header's counts drive the section loops: exactly QuestionCount
// questions and AnswerCount answers are written, indexing into the stored
// slices. A count that exceeds the stored entries is a construction error.
// Like Decode, one lookup table is shared across every name written, so a
// repeated name compresses to a pointer at its second occurrence.
func (c *packetCodec) Encode(p domain.Packet) ([]byte, error) {
	var buf bytes.Buffer
	writeHeader(&buf, p.Header)

	table := newLookupTable()

	for i := 0; i < int(p.Header.QuestionCount); i++ {
		if i >= len(p.Questions) {
			return nil, fmt.Errorf("header declares %d questions, packet holds %d", p.Header.QuestionCount, len(p.Questions))
		}
		if err := writeQuestion(&buf, p.Questions[i], table); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
	}

	for i := 0; i < int(p.Header.AnswerCount); i++ {
		if i >= len(p.Answers) {
			return nil, fmt.Errorf("header declares %d answers, packet holds %d", p.Header.AnswerCount, len(p.Answers))
		}
		if err := writeRecord(&buf, p.Answers[i], table); err != nil {
			return nil, fmt.Errorf("answer %d: %w", i, err)
		}
	}

	c.logger.Debug(map[string]any{
		"id":   p.Header.ID,
		"size": buf.Len(),
		"raw":  fmt.Sprintf("%x", buf.Bytes()),
	}, "Encoded DNS packet")

	return buf.Bytes(), nil
}

var _ Codec = &packetCodec{}
