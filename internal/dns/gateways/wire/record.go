package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"

	"github.com/relaydns/relay-dns/internal/dns/domain"
)

// aRecordDataLength is the RDATA size of a host-address record: one IPv4
// address. The only record shape this codec reads or writes.
const aRecordDataLength = 4

// readRecord parses one resource record starting at off and returns it with
// the offset past its RDATA.
//
// RDLENGTH is read and carried for symmetry, but it does not bound the
// RDATA read: the payload is always taken as the 4 octets of an A record.
func readRecord(data []byte, off int, table *lookupTable) (domain.Record, int, error) {
	name, off, err := readName(data, off, table)
	if err != nil {
		return domain.Record{}, 0, err
	}
	if off+10 > len(data) {
		return domain.Record{}, 0, errors.New("truncated record fields")
	}
	rtype := binary.BigEndian.Uint16(data[off : off+2])
	rclass := binary.BigEndian.Uint16(data[off+2 : off+4])
	ttl := binary.BigEndian.Uint32(data[off+4 : off+8])
	rdlength := binary.BigEndian.Uint16(data[off+8 : off+10])
	off += 10

	if off+aRecordDataLength > len(data) {
		return domain.Record{}, 0, errors.New("truncated record data")
	}
	addr := netip.AddrFrom4([4]byte(data[off : off+aRecordDataLength]))
	off += aRecordDataLength

	return domain.Record{
		Name:     name,
		Type:     domain.RRType(rtype),
		Class:    domain.RRClass(rclass),
		TTL:      ttl,
		RDLength: rdlength,
		Data:     addr,
	}, off, nil
}

// writeRecord appends one resource record. The stored type and class are
// preserved on the wire; RDLENGTH is always written as 4 because the
// encoder only emits the A-record shape.
func writeRecord(buf *bytes.Buffer, rr domain.Record, table *lookupTable) error {
	addr := rr.Data.Unmap()
	if !addr.Is4() {
		return fmt.Errorf("record %q: RDATA must be an IPv4 address", rr.Name)
	}

	if err := writeName(buf, rr.Name, table); err != nil {
		return err
	}

	var fields [10]byte
	binary.BigEndian.PutUint16(fields[0:2], uint16(rr.Type))
	binary.BigEndian.PutUint16(fields[2:4], uint16(rr.Class))
	binary.BigEndian.PutUint32(fields[4:8], rr.TTL)
	binary.BigEndian.PutUint16(fields[8:10], aRecordDataLength)
	buf.Write(fields[:])

	v4 := addr.As4()
	buf.Write(v4[:])
	return nil
}
