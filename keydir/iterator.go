package keydir

import "github.com/wanghenshui/blackwidow/model"

// Iterator walks a Keydir snapshot in comparator order. It is
// materialized once at construction time, so it reflects the Keydir as
// it stood when Iterator() or Clone().Iterator() was called.
type Iterator interface {
	// Seek positions the iterator at the first key >= target (forward
	// order) or moves Valid() to false if none exists.
	Seek(target []byte)
	Next()
	Prev()
	Valid() bool
	Key() []byte
	Value() *model.RecordPos
	Close()
}
