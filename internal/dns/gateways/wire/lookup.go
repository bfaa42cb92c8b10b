package wire

import (
	"fmt"
	"strings"

	"github.com/relaydns/relay-dns/internal/dns/common/utils"
)

// lookupTable tracks, during a single message's encode or decode pass, the
// byte offset at which each domain name suffix was first written or read.
// It is what makes §4.1.4 compression pointers resolvable.
//
// The two directions are deliberately asymmetric: the decode side must be
// able to expand any offset a peer advertises, whole name or partial
// suffix, while the encode side only ever emits a pointer for an exact
// whole-name match. Compression is optional, decompression is mandatory.
//
// A table is owned by exactly one encode or decode call and discarded with
// it; a pointer is only meaningful inside the message that defines it.
type lookupTable struct {
	suffixes map[int]string // offset -> expanded suffix (decompression)
	offsets  map[string]int // suffix -> first offset (compression)
}

func newLookupTable() *lookupTable {
	return &lookupTable{
		suffixes: make(map[int]string),
		offsets:  make(map[string]int),
	}
}

// insert registers a name that starts at offset off, along with every
// shorter suffix of it at the offset that suffix occupies. Registering all
// suffixes is what allows two independent decompositions of related names
// ("mail.example.com." and a later "example.com.") to share labels.
//
// The first registration of an offset or suffix wins; re-reading the same
// name never moves an established entry.
func (t *lookupTable) insert(name string, off int) {
	labels := utils.Labels(name)
	for i := range labels {
		suffix := strings.Join(labels[i:], ".") + "."
		if _, seen := t.suffixes[off]; !seen {
			t.suffixes[off] = suffix
		}
		if _, seen := t.offsets[suffix]; !seen {
			t.offsets[suffix] = off
		}
		off += len(labels[i]) + 1
	}
}

// decompress expands a pointer target. An offset that was never recorded
// means the pointer references data outside the current message, or ahead
// of itself; either way the message is unusable.
func (t *lookupTable) decompress(off int) (string, error) {
	suffix, ok := t.suffixes[off]
	if !ok {
		return "", fmt.Errorf("compression pointer references unrecorded offset %d", off)
	}
	return suffix, nil
}

// compress reports the offset at which exactly this name was already
// written, if any. Partial suffix matches do not produce pointers on the
// encode path.
func (t *lookupTable) compress(name string) (int, bool) {
	off, ok := t.offsets[name]
	return off, ok
}
