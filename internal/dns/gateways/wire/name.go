package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/relaydns/relay-dns/internal/dns/common/utils"
)

const (
	// maxLabelLength is the RFC 1035 limit on a single label.
	maxLabelLength = 63

	// pointerTag marks a length octet as the first byte of a 14-bit
	// compression pointer.
	pointerTag = 0xC0

	// pointerMask extracts the offset from the two pointer octets.
	pointerMask = 0x3FFF
)

// readName decodes a domain name starting at off, following compression
// pointers via the table. It returns the canonical (trailing-dot) name and
// the offset of the first byte past the name.
//
// Once the name is fully assembled it is registered in the table at the
// offset where reading began, so later names in the same message can point
// back into it.
func readName(data []byte, off int, table *lookupTable) (string, int, error) {
	start := off
	var name strings.Builder

	for {
		if off >= len(data) {
			return "", 0, errors.New("name runs past end of message")
		}
		length := int(data[off])

		if length == 0 {
			off++
			break
		}

		if length&pointerTag == pointerTag {
			if off+1 >= len(data) {
				return "", 0, errors.New("truncated compression pointer")
			}
			ptr := int(binary.BigEndian.Uint16(data[off:off+2]) & pointerMask)
			suffix, err := table.decompress(ptr)
			if err != nil {
				return "", 0, err
			}
			// A pointer always ends the name; no labels may follow it.
			name.WriteString(suffix)
			off += 2
			break
		}

		off++
		if off+length > len(data) {
			return "", 0, errors.New("label runs past end of message")
		}
		name.Write(data[off : off+length])
		name.WriteByte('.')
		off += length
	}

	table.insert(name.String(), start)
	return name.String(), off, nil
}

// writeName encodes a domain name in canonical (trailing-dot) form.
//
// If this exact name was already written into the message, a 2-byte pointer
// to its first occurrence is emitted instead of any labels. Otherwise the
// labels are written out in full, the name is terminated with a zero octet,
// and it is registered in the table for future back-references. The root
// name is a single zero octet.
func writeName(buf *bytes.Buffer, name string, table *lookupTable) error {
	if off, ok := table.compress(name); ok && off <= pointerMask {
		buf.WriteByte(pointerTag | byte(off>>8))
		buf.WriteByte(byte(off))
		return nil
	}

	start := buf.Len()
	for _, label := range utils.Labels(name) {
		if label == "" {
			return fmt.Errorf("name %q contains an empty label", name)
		}
		if len(label) > maxLabelLength {
			return fmt.Errorf("label %q exceeds %d octets", label, maxLabelLength)
		}
		buf.WriteByte(byte(len(label)))
		buf.WriteString(label)
	}
	buf.WriteByte(0)

	table.insert(name, start)
	return nil
}
