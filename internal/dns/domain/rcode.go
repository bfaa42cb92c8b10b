package domain

import "fmt"

// RCode represents a DNS response code indicating the result of a query.
type RCode uint8

// DNS response code constants (RFC 1035 §4.1.1).
const (
	RCodeNoError  RCode = 0 // NOERROR - no error condition
	RCodeFormErr  RCode = 1 // FORMERR - the server could not interpret the query
	RCodeServFail RCode = 2 // SERVFAIL - the server failed to process the query
	RCodeNXDomain RCode = 3 // NXDOMAIN - the queried name does not exist
	RCodeNotImp   RCode = 4 // NOTIMP - the requested kind of query is not supported
	RCodeRefused  RCode = 5 // REFUSED - the server refuses for policy reasons
)

// RCodeFromBits maps a raw 4-bit wire value to an RCode.
// Codes outside the supported set normalize to NOERROR so that every bit
// pattern decodes to some header.
func RCodeFromBits(v uint8) RCode {
	switch RCode(v) {
	case RCodeFormErr, RCodeServFail, RCodeNXDomain, RCodeNotImp, RCodeRefused:
		return RCode(v)
	default:
		return RCodeNoError
	}
}

// IsValid returns true if the RCode is one of the supported response codes.
func (r RCode) IsValid() bool {
	return r <= RCodeRefused
}

// String returns the textual representation of the RCode.
func (r RCode) String() string {
	switch r {
	case RCodeNoError:
		return "NOERROR"
	case RCodeFormErr:
		return "FORMERR"
	case RCodeServFail:
		return "SERVFAIL"
	case RCodeNXDomain:
		return "NXDOMAIN"
	case RCodeNotImp:
		return "NOTIMP"
	case RCodeRefused:
		return "REFUSED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(r))
	}
}
