package lists

import (
	"github.com/wanghenshui/blackwidow/listenc"
)

// LPush inserts values at the head, in the order supplied, and returns
// the new element count.
func (l *List) LPush(key []byte, values ...[]byte) (uint64, error) {
	return l.push(key, true, values)
}

// RPush inserts values at the tail, in the order supplied, and returns
// the new element count.
func (l *List) RPush(key []byte, values ...[]byte) (uint64, error) {
	return l.push(key, false, values)
}

// push implements LPush/RPush. A missing or stale key is treated as a
// create: fresh cursors, a bumped version, and count seeded from the
// values about to be written.
func (l *List) push(key []byte, left bool, values [][]byte) (uint64, error) {
	var count uint64
	err := l.locks.Scoped(string(key), func() error {
		meta, err := l.readMeta(key)
		if err != nil {
			return err
		}

		create := meta == nil || meta.IsExpired(l.now()) || meta.Empty()
		if create {
			version := uint32(1)
			if meta != nil {
				version = meta.Version + 1
			}
			meta = listenc.NewMetadata(version, 0)
		}

		batch := l.eng.NewWriteBatch()
		for _, v := range values {
			var idx uint64
			if left {
				idx = meta.Left
				meta.Left--
			} else {
				idx = meta.Right
				meta.Right++
			}
			if err := batch.Put(cfData, listenc.EncodeDataKey(key, meta.Version, idx), v); err != nil {
				return err
			}
		}
		meta.Count += uint64(len(values))

		if err := batch.Put(cfMeta, key, listenc.Marshal(meta)); err != nil {
			return err
		}
		if err := batch.Commit(); err != nil {
			return err
		}

		count = meta.Count
		return nil
	})
	return count, err
}

// pushx implements LPushx/RPushx: as push, but never creates, and
// only ever takes a single value.
func (l *List) pushx(key []byte, left bool, value []byte) (uint64, error) {
	var count uint64
	err := l.locks.Scoped(string(key), func() error {
		meta, err := l.liveMeta(key)
		if err != nil {
			return err
		}
		if meta == nil {
			return ErrNotFound
		}

		var idx uint64
		if left {
			idx = meta.Left
			meta.Left--
		} else {
			idx = meta.Right
			meta.Right++
		}
		meta.Count++

		batch := l.eng.NewWriteBatch()
		if err := batch.Put(cfData, listenc.EncodeDataKey(key, meta.Version, idx), value); err != nil {
			return err
		}
		if err := batch.Put(cfMeta, key, listenc.Marshal(meta)); err != nil {
			return err
		}
		if err := batch.Commit(); err != nil {
			return err
		}

		count = meta.Count
		return nil
	})
	return count, err
}

// LPushx pushes value at the head only if key already holds a live
// list; it never creates one.
func (l *List) LPushx(key, value []byte) (uint64, error) {
	return l.pushx(key, true, value)
}

// RPushx pushes value at the tail only if key already holds a live
// list; it never creates one.
func (l *List) RPushx(key, value []byte) (uint64, error) {
	return l.pushx(key, false, value)
}
