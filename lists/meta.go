package lists

import (
	"github.com/wanghenshui/blackwidow/listenc"
)

// LLen is a lock-free meta read. Missing or stale ⇒ 0, ErrNotFound.
func (l *List) LLen(key []byte) (uint64, error) {
	meta, err := l.liveMeta(key)
	if err != nil {
		return 0, err
	}
	if meta == nil {
		return 0, ErrNotFound
	}
	return meta.Count, nil
}

// Expire sets key's absolute expiry ttl seconds from now. ttl <= 0
// invalidates the list immediately, the same effect as Del. Missing
// or already-expired ⇒ ErrNotFound, no-op.
func (l *List) Expire(key []byte, ttlSeconds int64) error {
	return l.locks.Scoped(string(key), func() error {
		meta, err := l.readMeta(key)
		if err != nil {
			return err
		}
		if meta == nil || meta.IsExpired(l.now()) {
			return ErrNotFound
		}

		if ttlSeconds > 0 {
			meta.Timestamp = uint32(l.now().Unix()) + uint32(ttlSeconds)
			return l.eng.Put(cfMeta, key, listenc.Marshal(meta))
		}
		return l.invalidate(key, meta)
	})
}

// Del invalidates key's meta in place. Missing or already-expired ⇒
// ErrNotFound, no-op.
func (l *List) Del(key []byte) error {
	return l.locks.Scoped(string(key), func() error {
		meta, err := l.readMeta(key)
		if err != nil {
			return err
		}
		if meta == nil || meta.IsExpired(l.now()) {
			return ErrNotFound
		}
		return l.invalidate(key, meta)
	})
}

// CompactRange forwards to the meta column family, then the data
// column family — meta-then-data order, so a data record's owning
// meta has already had its chance to be dropped before the data
// filter (which reads meta) runs.
func (l *List) CompactRange() error {
	if err := l.eng.CompactRange(cfMeta); err != nil {
		return err
	}
	return l.eng.CompactRange(cfData)
}

// Scan is a stub carried over from the source as a no-op: it is part
// of a wider data-type interface this core intentionally does not
// implement.
func (l *List) Scan() error {
	return ErrNotImplemented
}

// Expireat is a stub; not implemented.
func (l *List) Expireat(key []byte, at int64) error {
	return ErrNotImplemented
}

// Persist is a stub; not implemented.
func (l *List) Persist(key []byte) error {
	return ErrNotImplemented
}

// TTL is a stub; not implemented.
func (l *List) TTL(key []byte) (int64, error) {
	return 0, ErrNotImplemented
}
