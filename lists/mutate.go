package lists

import (
	"bytes"

	"github.com/wanghenshui/blackwidow/engine"
	"github.com/wanghenshui/blackwidow/listenc"
)

// LTrim retains the inclusive window [start, stop] (translated and
// clamped as LRange does) and discards everything else. Two-phase:
// the inner critical section reads survivors and invalidates the
// list in place (a version bump, same as Del); the outer call
// re-pushes survivors via RPush, unlocked, onto the now-fresh list.
// Orphaned records are reaped by the data compaction filter.
func (l *List) LTrim(key []byte, start, stop int64) error {
	var survivors [][]byte

	err := l.locks.Scoped(string(key), func() error {
		meta, err := l.liveMeta(key)
		if err != nil {
			return err
		}
		if meta == nil {
			return nil
		}

		from := translateIndex(meta, start)
		to := translateIndex(meta, stop)
		if from <= to {
			if from <= meta.Left {
				from = meta.Left + 1
			}
			if to >= meta.Right {
				to = meta.Right - 1
			}
			vals, err := l.readRange(key, meta.Version, from, to)
			if err != nil {
				return err
			}
			survivors = vals
		}

		return l.invalidate(key, meta)
	})
	if err != nil {
		return err
	}
	if len(survivors) == 0 {
		return nil
	}

	_, err = l.RPush(key, survivors...)
	return err
}

// InsertPosition selects whether LInsert places the new element
// immediately before or after the pivot.
type InsertPosition int

const (
	Before InsertPosition = iota
	After
)

// LInsert scans forward from the head for the first element equal to
// pivot (exact byte equality). If found, it relocates whichever side
// of the list (left of the pivot, or right of it) is shorter, then
// writes value into the slot the relocation freed up. Missing or
// stale list ⇒ 0, ErrNotFound. No pivot match ⇒ -1, list unchanged.
func (l *List) LInsert(key []byte, pos InsertPosition, pivot, value []byte) (int64, error) {
	var count int64
	err := l.locks.Scoped(string(key), func() error {
		meta, err := l.liveMeta(key)
		if err != nil {
			return err
		}
		if meta == nil {
			count = 0
			return ErrNotFound
		}

		pivotIndex, found, err := l.findPivotIndex(key, meta.Version, meta.Left, meta.Right, pivot)
		if err != nil {
			return err
		}
		if !found {
			count = -1
			return nil
		}

		mid := meta.Left + (meta.Right-meta.Left)/2

		batch := l.eng.NewWriteBatch()
		var target uint64

		if pivotIndex <= mid {
			var nodes [][]byte
			if pos == Before {
				if pivotIndex > meta.Left+1 {
					nodes, err = l.readRange(key, meta.Version, meta.Left+1, pivotIndex-1)
				}
				target = pivotIndex - 1
			} else {
				nodes, err = l.readRange(key, meta.Version, meta.Left+1, pivotIndex)
				target = pivotIndex
			}
			if err != nil {
				return err
			}
			if err := l.writeSequential(batch, key, meta.Version, meta.Left, nodes); err != nil {
				return err
			}
			meta.Left--
		} else {
			var nodes [][]byte
			if pos == Before {
				nodes, err = l.readRange(key, meta.Version, pivotIndex, meta.Right-1)
				target = pivotIndex
			} else {
				if pivotIndex+1 <= meta.Right-1 {
					nodes, err = l.readRange(key, meta.Version, pivotIndex+1, meta.Right-1)
				}
				target = pivotIndex + 1
			}
			if err != nil {
				return err
			}
			if err := l.writeSequential(batch, key, meta.Version, target+1, nodes); err != nil {
				return err
			}
			meta.Right++
		}

		if err := batch.Put(cfData, listenc.EncodeDataKey(key, meta.Version, target), value); err != nil {
			return err
		}
		meta.Count++
		if err := batch.Put(cfMeta, key, listenc.Marshal(meta)); err != nil {
			return err
		}
		if err := batch.Commit(); err != nil {
			return err
		}

		count = int64(meta.Count)
		return nil
	})
	if err == ErrNotFound {
		return count, ErrNotFound
	}
	return count, err
}

// LRem removes up to |c| matches of v: from head toward tail if c>0,
// tail toward head if c<0, every match if c==0. Returns the number
// actually removed; zero removed ⇒ ErrNotFound.
func (l *List) LRem(key []byte, c int64, v []byte) (int64, error) {
	var removed int64
	err := l.locks.Scoped(string(key), func() error {
		meta, err := l.liveMeta(key)
		if err != nil {
			return err
		}
		if meta == nil {
			return ErrNotFound
		}

		start := meta.Left + 1
		stop := meta.Right - 1

		var victims []uint64
		limit := c
		if limit < 0 {
			limit = -limit
		}

		it, err := l.eng.NewIterator(cfData)
		if err != nil {
			return err
		}
		defer it.Close()

		collect := func(idx uint64) (bool, error) {
			val, err := it.Value()
			if err != nil {
				return false, err
			}
			if bytes.Equal(val, v) {
				victims = append(victims, idx)
				if limit != 0 && int64(len(victims)) >= limit {
					return true, nil
				}
			}
			return false, nil
		}

		if c >= 0 {
			it.Seek(listenc.EncodeDataKey(key, meta.Version, start))
			for cur := start; it.Valid() && cur <= stop; it.Next() {
				done, err := collect(cur)
				if err != nil {
					return err
				}
				cur++
				if done {
					break
				}
			}
		} else {
			it.Seek(listenc.EncodeDataKey(key, meta.Version, stop))
			for cur := stop; it.Valid() && cur >= start; it.Prev() {
				done, err := collect(cur)
				if err != nil {
					return err
				}
				if cur == start {
					break
				}
				cur--
				if done {
					break
				}
			}
		}

		if len(victims) == 0 {
			return ErrNotFound
		}

		victimSet := make(map[uint64]struct{}, len(victims))
		var sublistLeft, sublistRight uint64
		for i, idx := range victims {
			if i == 0 {
				sublistLeft, sublistRight = idx, idx
			}
			if idx < sublistLeft {
				sublistLeft = idx
			}
			if idx > sublistRight {
				sublistRight = idx
			}
			victimSet[idx] = struct{}{}
		}

		leftPartLen := sublistRight - start
		rightPartLen := stop - sublistLeft

		batch := l.eng.NewWriteBatch()

		if leftPartLen <= rightPartLen {
			survivors, err := l.readRangeSkipping(key, meta.Version, start, sublistRight, victimSet)
			if err != nil {
				return err
			}
			if err := l.writeSequential(batch, key, meta.Version, start+uint64(len(victims)), survivors); err != nil {
				return err
			}
			meta.Left += uint64(len(victims))
		} else {
			survivors, err := l.readRangeSkipping(key, meta.Version, sublistLeft, stop, victimSet)
			if err != nil {
				return err
			}
			if err := l.writeSequential(batch, key, meta.Version, sublistLeft, survivors); err != nil {
				return err
			}
			meta.Right -= uint64(len(victims))
		}

		meta.Count -= uint64(len(victims))
		if err := batch.Put(cfMeta, key, listenc.Marshal(meta)); err != nil {
			return err
		}
		if err := batch.Commit(); err != nil {
			return err
		}

		removed = int64(len(victims))
		return nil
	})
	if err == ErrNotFound {
		return 0, ErrNotFound
	}
	return removed, err
}

// invalidate bumps version and resets the cursors in place, the same
// effect Del and Expire(0) have: every live data record becomes an
// orphan for the data compaction filter to reap.
func (l *List) invalidate(key []byte, meta *listenc.Metadata) error {
	fresh := listenc.NewMetadata(meta.Version+1, 0)
	return l.eng.Put(cfMeta, key, listenc.Marshal(fresh))
}

// readRange collects payloads for logical indices [from, to]
// inclusive, in ascending order.
func (l *List) readRange(key []byte, version uint32, from, to uint64) ([][]byte, error) {
	if from > to {
		return nil, nil
	}
	it, err := l.eng.NewIterator(cfData)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out [][]byte
	it.Seek(listenc.EncodeDataKey(key, version, from))
	for cur := from; it.Valid() && cur <= to; it.Next() {
		v, err := it.Value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		cur++
	}
	return out, nil
}

// readRangeSkipping is readRange but omits indices present in skip.
func (l *List) readRangeSkipping(key []byte, version uint32, from, to uint64, skip map[uint64]struct{}) ([][]byte, error) {
	if from > to {
		return nil, nil
	}
	it, err := l.eng.NewIterator(cfData)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out [][]byte
	it.Seek(listenc.EncodeDataKey(key, version, from))
	for cur := from; it.Valid() && cur <= to; it.Next() {
		if _, skipped := skip[cur]; skipped {
			cur++
			continue
		}
		v, err := it.Value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		cur++
	}
	return out, nil
}

// writeSequential stages values into a batch starting at logical
// index from, consecutive.
func (l *List) writeSequential(batch *engine.WriteBatch, key []byte, version uint32, from uint64, values [][]byte) error {
	idx := from
	for _, v := range values {
		if err := batch.Put(cfData, listenc.EncodeDataKey(key, version, idx), v); err != nil {
			return err
		}
		idx++
	}
	return nil
}

// findPivotIndex scans forward from left+1 for the first payload
// equal to pivot, returning its logical index.
func (l *List) findPivotIndex(key []byte, version uint32, left, right uint64, pivot []byte) (uint64, bool, error) {
	it, err := l.eng.NewIterator(cfData)
	if err != nil {
		return 0, false, err
	}
	defer it.Close()

	it.Seek(listenc.EncodeDataKey(key, version, left+1))
	for cur := left + 1; it.Valid() && cur < right; it.Next() {
		v, err := it.Value()
		if err != nil {
			return 0, false, err
		}
		if bytes.Equal(v, pivot) {
			return cur, true, nil
		}
		cur++
	}
	return 0, false, nil
}
