package domain

// Header is the fixed 12-byte DNS message header (RFC 1035 §4.1.1).
//
// The reserved Z region of the flags word is carried as three separate
// flags (RA-adjacent Z plus the DNSSEC-era AD and CD bits), matching the
// post-RFC 1035 layout rather than a single opaque reserved field.
type Header struct {
	// ID is the transaction identifier. Responses must echo the ID of the
	// query they answer; it is the only correlation UDP gives us.
	ID uint16

	Response           bool  // QR: set on replies
	Opcode             uint8 // 4-bit operation code, 0 for a standard query
	Authoritative      bool  // AA
	Truncated          bool  // TC
	RecursionDesired   bool  // RD
	RecursionAvailable bool  // RA

	Z                bool // reserved bit
	AuthedData       bool // AD
	CheckingDisabled bool // CD

	RCode RCode

	QuestionCount   uint16 // QDCOUNT
	AnswerCount     uint16 // ANCOUNT
	AuthorityCount  uint16 // NSCOUNT
	AdditionalCount uint16 // ARCOUNT
}
