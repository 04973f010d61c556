// Package listenc encodes the Redis List data type on top of the
// engine package's two column families: a fixed-width meta record per
// list key, and big-endian-ordered data keys so the data column
// family's natural byte order is numeric order over (version, index).
package listenc

import (
	"encoding/binary"
	"errors"
	"math"
	"time"
)

// MetaSize is the fixed width of a marshaled Metadata value: count
// (u64 LE) ‖ version (u32 LE) ‖ timestamp (u32 LE) ‖ left_index (u64
// LE) ‖ right_index (u64 LE).
const MetaSize = 8 + 4 + 4 + 8 + 8

// InitialIndex is the logical index left_index starts at (right_index
// starts one above it): the midpoint of the uint64 index space,
// leaving equal headroom for
// LPush (decrements left_index) and RPush (increments right_index)
// before either can wrap.
const InitialIndex = math.MaxUint64 / 2

var ErrCorruptMetadata = errors.New("listenc: metadata value has wrong size")

// Metadata is one list key's control record, stored as the value in
// the meta column family under the user key.
type Metadata struct {
	Count     uint64
	Version   uint32
	Timestamp uint32 // unix seconds; 0 means no expiry
	Left      uint64
	Right     uint64
}

// NewMetadata returns the meta record for a freshly created (or
// re-created after invalidation) list, indices at their midpoint
// defaults — one unit apart, so the open interval between them holds
// nothing yet — and count seeded with the values about to be pushed.
func NewMetadata(version uint32, count uint64) *Metadata {
	return &Metadata{
		Count:   count,
		Version: version,
		Left:    InitialIndex,
		Right:   InitialIndex + 1,
	}
}

// IsExpired reports whether m's TTL has passed. It says nothing about
// whether the list is empty — callers check Empty separately, the way
// the source checks IsStale() and count()==0 as two distinct
// conditions rather than folding them together.
func (m *Metadata) IsExpired(now time.Time) bool {
	return m.Timestamp != 0 && uint32(now.Unix()) >= m.Timestamp
}

// Empty reports whether the list currently holds no elements.
func (m *Metadata) Empty() bool {
	return m.Count == 0
}

// Stale is the compaction filter's combined drop condition for a meta
// record: no live elements, or expired. Unlike IsExpired, operation
// preambles never call this directly — they check Empty and IsExpired
// as separate conditions.
func (m *Metadata) Stale(now time.Time) bool {
	return m.Empty() || m.IsExpired(now)
}

func Marshal(m *Metadata) []byte {
	buf := make([]byte, MetaSize)
	binary.LittleEndian.PutUint64(buf[0:8], m.Count)
	binary.LittleEndian.PutUint32(buf[8:12], m.Version)
	binary.LittleEndian.PutUint32(buf[12:16], m.Timestamp)
	binary.LittleEndian.PutUint64(buf[16:24], m.Left)
	binary.LittleEndian.PutUint64(buf[24:32], m.Right)
	return buf
}

func Unmarshal(data []byte) (*Metadata, error) {
	if len(data) != MetaSize {
		return nil, ErrCorruptMetadata
	}
	return &Metadata{
		Count:     binary.LittleEndian.Uint64(data[0:8]),
		Version:   binary.LittleEndian.Uint32(data[8:12]),
		Timestamp: binary.LittleEndian.Uint32(data[12:16]),
		Left:      binary.LittleEndian.Uint64(data[16:24]),
		Right:     binary.LittleEndian.Uint64(data[24:32]),
	}, nil
}
