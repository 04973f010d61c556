package lists

import (
	"github.com/wanghenshui/blackwidow/engine"
	"github.com/wanghenshui/blackwidow/listenc"
)

// translateIndex maps a user-visible 0-based (or negative, from the
// tail) offset to the internal logical index space.
func translateIndex(meta *listenc.Metadata, i int64) uint64 {
	if i >= 0 {
		return meta.Left + uint64(i) + 1
	}
	// i is negative: uint64(i) is i's two's-complement bit pattern,
	// so adding it is modular subtraction of |i| — safe however close
	// Right sits to the top of the uint64 space.
	return meta.Right + uint64(i)
}

// LIndex reads the element at the given offset without taking the
// per-key lock, relying on a backend snapshot for point-in-time
// consistency. Out-of-range ⇒ ErrNotFound.
func (l *List) LIndex(key []byte, index int64) ([]byte, error) {
	snap := l.eng.NewSnapshot()

	metaBytes, err := snap.Get(cfMeta, key)
	if err != nil {
		if err == engine.ErrKeyNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	meta, err := listenc.Unmarshal(metaBytes)
	if err != nil {
		return nil, err
	}
	if meta.IsExpired(l.now()) || meta.Empty() {
		return nil, ErrNotFound
	}

	idx := translateIndex(meta, index)
	if idx <= meta.Left || idx >= meta.Right {
		return nil, ErrNotFound
	}

	v, err := snap.Get(cfData, listenc.EncodeDataKey(key, meta.Version, idx))
	if err != nil {
		if err == engine.ErrKeyNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

// LSet overwrites the element at the given offset in place. Locked,
// since it mutates. Out-of-range ⇒ ErrNotFound, no write.
func (l *List) LSet(key []byte, index int64, value []byte) error {
	return l.locks.Scoped(string(key), func() error {
		meta, err := l.liveMeta(key)
		if err != nil {
			return err
		}
		if meta == nil {
			return ErrNotFound
		}

		idx := translateIndex(meta, index)
		if idx <= meta.Left || idx >= meta.Right {
			return ErrNotFound
		}

		return l.eng.Put(cfData, listenc.EncodeDataKey(key, meta.Version, idx), value)
	})
}

// LRange reads the inclusive range [start, stop] (translated from
// user-visible offsets, then clamped to the list's live window) under
// a snapshot — the lock-free path spec.md §9 prefers over locking.
func (l *List) LRange(key []byte, start, stop int64) ([][]byte, error) {
	snap := l.eng.NewSnapshot()

	metaBytes, err := snap.Get(cfMeta, key)
	if err != nil {
		if err == engine.ErrKeyNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	meta, err := listenc.Unmarshal(metaBytes)
	if err != nil {
		return nil, err
	}
	if meta.IsExpired(l.now()) || meta.Empty() {
		return nil, ErrNotFound
	}

	from := translateIndex(meta, start)
	to := translateIndex(meta, stop)
	if from > to {
		return nil, nil
	}
	if from <= meta.Left {
		from = meta.Left + 1
	}
	if to >= meta.Right {
		to = meta.Right - 1
	}

	it, err := snap.NewIterator(cfData)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out [][]byte
	it.Seek(listenc.EncodeDataKey(key, meta.Version, from))
	for cur := from; it.Valid() && cur <= to; it.Next() {
		userKey, version, idx, err := listenc.DecodeDataKey(it.Key())
		if err != nil {
			return nil, err
		}
		if string(userKey) != string(key) || version != meta.Version || idx != cur {
			break
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
