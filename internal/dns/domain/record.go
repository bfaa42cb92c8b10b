package domain

import (
	"fmt"
	"net/netip"

	"github.com/relaydns/relay-dns/internal/dns/common/utils"
)

// Record represents a DNS resource record. Only the A-record shape is
// resolved here, so RDATA is held as an IPv4 address rather than raw bytes.
type Record struct {
	Name  string
	Type  RRType
	Class RRClass

	// TTL is the cache lifetime hint in seconds. It is relayed, never
	// enforced: nothing here caches across packets.
	TTL uint32

	// RDLength is the RDATA length as seen on the wire. The encoder always
	// emits 4 (the A-record shape); the field exists for decode symmetry.
	RDLength uint16

	// Data is the 4-octet IPv4 address carried in RDATA.
	Data netip.Addr
}

// NewARecord constructs an A/IN record for the given name and address.
func NewARecord(name string, ttl uint32, addr netip.Addr) Record {
	return Record{
		Name:     utils.CanonicalDNSName(name),
		Type:     RRTypeA,
		Class:    RRClassIN,
		TTL:      ttl,
		RDLength: 4,
		Data:     addr,
	}
}

// Validate checks whether the Record fields can be wire-encoded.
func (r Record) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("record name must not be empty")
	}
	if !r.Data.Unmap().Is4() {
		return fmt.Errorf("record %q: RDATA must be an IPv4 address", r.Name)
	}
	return nil
}
