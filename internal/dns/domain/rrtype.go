package domain

import "fmt"

// RRType represents a DNS resource record type.
//
// Only host addresses (A) are resolved by this server, but unrecognized
// codes are preserved numerically so they can be relayed transparently
// instead of being lost on the round trip.
type RRType uint16

// DNS Resource Record Type constants
const (
	RRTypeA RRType = 1 // A - IPv4 host address
)

// IsValid returns true if the RRType is one of the supported types.
func (t RRType) IsValid() bool {
	return t == RRTypeA
}

// String returns the textual representation of the RRType.
// For unknown types, it returns "UNKNOWN(<value>)".
func (t RRType) String() string {
	switch t {
	case RRTypeA:
		return "A"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint16(t))
	}
}
