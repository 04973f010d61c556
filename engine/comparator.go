package engine

import "github.com/wanghenshui/blackwidow/keydir"

// Comparator orders the keys of one column family. It is bound to a
// column family at Open time and used by every Keydir that family
// keeps, so iteration order matches the comparator's order rather than
// plain byte order.
type Comparator = keydir.Comparator

// ByteCompare is the default Comparator used when a column family is
// opened without one: plain lexicographic byte order.
type ByteCompare = keydir.ByteCompare
