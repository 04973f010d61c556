package lists

import (
	"github.com/wanghenshui/blackwidow/engine"
	"github.com/wanghenshui/blackwidow/listenc"
)

// RPoplpush atomically pops the tail of source and pushes it onto the
// head of destination, returning the moved payload. When source and
// destination are the same key the move degenerates into a rotation.
func (l *List) RPoplpush(source, destination []byte) ([]byte, error) {
	if string(source) == string(destination) {
		return l.rotate(source)
	}

	var value []byte
	err := l.locks.ScopedMulti([]string{string(source), string(destination)}, func() error {
		srcMeta, err := l.liveMeta(source)
		if err != nil {
			return err
		}
		if srcMeta == nil {
			return ErrNotFound
		}

		rightIdx := srcMeta.Right - 1
		srcDataKey := listenc.EncodeDataKey(source, srcMeta.Version, rightIdx)
		v, err := l.eng.Get(cfData, srcDataKey)
		if err != nil {
			if err == engine.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}

		srcMeta.Count--
		srcMeta.Right--

		dstMeta, err := l.readMeta(destination)
		if err != nil {
			return err
		}
		create := dstMeta == nil || dstMeta.IsExpired(l.now()) || dstMeta.Empty()
		if create {
			version := uint32(1)
			if dstMeta != nil {
				version = dstMeta.Version + 1
			}
			dstMeta = listenc.NewMetadata(version, 0)
		}

		dstIdx := dstMeta.Left
		dstMeta.Left--
		dstMeta.Count++
		dstDataKey := listenc.EncodeDataKey(destination, dstMeta.Version, dstIdx)

		batch := l.eng.NewWriteBatch()
		if err := batch.Delete(cfData, srcDataKey); err != nil {
			return err
		}
		if err := batch.Put(cfMeta, source, listenc.Marshal(srcMeta)); err != nil {
			return err
		}
		if err := batch.Put(cfData, dstDataKey, v); err != nil {
			return err
		}
		if err := batch.Put(cfMeta, destination, listenc.Marshal(dstMeta)); err != nil {
			return err
		}
		if err := batch.Commit(); err != nil {
			return err
		}

		value = v
		return nil
	})
	return value, err
}

// rotate implements RPoplpush(k, k): move the tail element to the
// head without changing count. A single-element list is a no-op that
// still returns the unchanged payload.
func (l *List) rotate(key []byte) ([]byte, error) {
	var value []byte
	err := l.locks.Scoped(string(key), func() error {
		meta, err := l.liveMeta(key)
		if err != nil {
			return err
		}
		if meta == nil {
			return ErrNotFound
		}

		rightIdx := meta.Right - 1
		dataKey := listenc.EncodeDataKey(key, meta.Version, rightIdx)
		v, err := l.eng.Get(cfData, dataKey)
		if err != nil {
			if err == engine.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}
		value = v

		if meta.Count == 1 {
			return nil
		}

		targetIdx := meta.Left
		targetKey := listenc.EncodeDataKey(key, meta.Version, targetIdx)
		meta.Right--
		meta.Left--

		batch := l.eng.NewWriteBatch()
		if err := batch.Delete(cfData, dataKey); err != nil {
			return err
		}
		if err := batch.Put(cfData, targetKey, v); err != nil {
			return err
		}
		if err := batch.Put(cfMeta, key, listenc.Marshal(meta)); err != nil {
			return err
		}
		return batch.Commit()
	})
	return value, err
}
