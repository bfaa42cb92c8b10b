package wire

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/relaydns/relay-dns/internal/dns/domain"
)

// readQuestion parses one question section entry starting at off and
// returns it with the offset past its QCLASS field. Unknown type and class
// codes decode as-is; they are relayed, not rejected.
func readQuestion(data []byte, off int, table *lookupTable) (domain.Question, int, error) {
	name, off, err := readName(data, off, table)
	if err != nil {
		return domain.Question{}, 0, err
	}
	if off+4 > len(data) {
		return domain.Question{}, 0, errors.New("truncated question fields")
	}
	qtype := binary.BigEndian.Uint16(data[off : off+2])
	qclass := binary.BigEndian.Uint16(data[off+2 : off+4])

	return domain.Question{
		Name:  name,
		Type:  domain.RRType(qtype),
		Class: domain.RRClass(qclass),
	}, off + 4, nil
}

// writeQuestion appends one question section entry. The stored type and
// class are written as-is, preserving whatever the question carried.
func writeQuestion(buf *bytes.Buffer, q domain.Question, table *lookupTable) error {
	if err := writeName(buf, q.Name, table); err != nil {
		return err
	}
	var fields [4]byte
	binary.BigEndian.PutUint16(fields[0:2], uint16(q.Type))
	binary.BigEndian.PutUint16(fields[2:4], uint16(q.Class))
	buf.Write(fields[:])
	return nil
}
