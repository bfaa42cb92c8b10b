package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/relaydns/relay-dns/internal/dns/domain"
)

// headerLength is the size of the fixed DNS header; it is also the offset
// at which the first name of a message can start, so the smallest valid
// compression pointer target is 12.
const headerLength = 12

// Flag bit positions within the two octets of the header flags word.
//
//	octet A: |QR| OPCODE(4) |AA|TC|RD|
//	octet B: |RA| Z|AD|CD| RCODE(4)  |
const (
	flagRD = 1 << 0 // recursion desired
	flagTC = 1 << 1 // truncated message
	flagAA = 1 << 2 // authoritative answer
	flagQR = 1 << 7 // query/response

	flagCD = 1 << 4 // checking disabled
	flagAD = 1 << 5 // authenticated data
	flagZ  = 1 << 6 // reserved
	flagRA = 1 << 7 // recursion available

	opcodeShift = 3
	opcodeMask  = 0x0F
	rcodeMask   = 0x0F
)

// decodeHeader unpacks the first 12 bytes of a message. There is no error
// path: every bit pattern decodes to some header. The caller guarantees at
// least headerLength bytes.
func decodeHeader(data []byte) domain.Header {
	a := data[2]
	b := data[3]

	return domain.Header{
		ID: binary.BigEndian.Uint16(data[0:2]),

		RecursionDesired: a&flagRD != 0,
		Truncated:        a&flagTC != 0,
		Authoritative:    a&flagAA != 0,
		Opcode:           (a >> opcodeShift) & opcodeMask,
		Response:         a&flagQR != 0,

		RCode:              domain.RCodeFromBits(b & rcodeMask),
		CheckingDisabled:   b&flagCD != 0,
		AuthedData:         b&flagAD != 0,
		Z:                  b&flagZ != 0,
		RecursionAvailable: b&flagRA != 0,

		QuestionCount:   binary.BigEndian.Uint16(data[4:6]),
		AnswerCount:     binary.BigEndian.Uint16(data[6:8]),
		AuthorityCount:  binary.BigEndian.Uint16(data[8:10]),
		AdditionalCount: binary.BigEndian.Uint16(data[10:12]),
	}
}

// writeHeader packs a header into exactly 12 bytes. Always succeeds.
func writeHeader(buf *bytes.Buffer, h domain.Header) {
	var a, b byte

	if h.RecursionDesired {
		a |= flagRD
	}
	if h.Truncated {
		a |= flagTC
	}
	if h.Authoritative {
		a |= flagAA
	}
	a |= (h.Opcode & opcodeMask) << opcodeShift
	if h.Response {
		a |= flagQR
	}

	b = uint8(h.RCode) & rcodeMask
	if h.CheckingDisabled {
		b |= flagCD
	}
	if h.AuthedData {
		b |= flagAD
	}
	if h.Z {
		b |= flagZ
	}
	if h.RecursionAvailable {
		b |= flagRA
	}

	var out [headerLength]byte
	binary.BigEndian.PutUint16(out[0:2], h.ID)
	out[2] = a
	out[3] = b
	binary.BigEndian.PutUint16(out[4:6], h.QuestionCount)
	binary.BigEndian.PutUint16(out[6:8], h.AnswerCount)
	binary.BigEndian.PutUint16(out[8:10], h.AuthorityCount)
	binary.BigEndian.PutUint16(out[10:12], h.AdditionalCount)
	buf.Write(out[:])
}
