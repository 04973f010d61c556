package keydir

import (
	"bytes"

	"github.com/wanghenshui/blackwidow/model"
)

// Keydir is the in-memory ordered index kept by one column family,
// mapping a key to the position of its latest value in the family's
// data files. You can plug in another implementation as long as it
// satisfies this interface.
type Keydir interface {
	Put(key []byte, pos *model.RecordPos) bool
	Get(key []byte) *model.RecordPos
	Delete(key []byte) bool
	Size() int

	// Clone returns a point-in-time, copy-on-write view of the index:
	// mutations made to the receiver after Clone returns are not
	// visible through the clone, and vice versa. It is the basis for
	// engine.Snapshot.
	Clone() Keydir

	// Iterator returns an ordered iterator over the index, honoring
	// the Keydir's comparator.
	Iterator() Iterator
}

// Comparator orders keys within a Keydir. The zero value of
// ByteCompare (plain lexicographic order) is used when none is given.
type Comparator interface {
	Compare(a, b []byte) int
}

// ByteCompare is the default Comparator: lexicographic byte order.
type ByteCompare struct{}

func (ByteCompare) Compare(a, b []byte) int { return bytes.Compare(a, b) }
