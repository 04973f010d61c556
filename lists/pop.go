package lists

import (
	"github.com/wanghenshui/blackwidow/engine"
	"github.com/wanghenshui/blackwidow/listenc"
)

// LPop removes and returns the head element. Missing, stale, or empty
// ⇒ ErrNotFound.
func (l *List) LPop(key []byte) ([]byte, error) {
	return l.pop(key, true)
}

// RPop removes and returns the tail element. Missing, stale, or empty
// ⇒ ErrNotFound.
func (l *List) RPop(key []byte) ([]byte, error) {
	return l.pop(key, false)
}

func (l *List) pop(key []byte, left bool) ([]byte, error) {
	var value []byte
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
			idx = meta.Left + 1
		} else {
			idx = meta.Right - 1
		}
		dataKey := listenc.EncodeDataKey(key, meta.Version, idx)

		v, err := l.eng.Get(cfData, dataKey)
		if err != nil {
			if err == engine.ErrKeyNotFound {
				return ErrNotFound
			}
			return err
		}

		if left {
			meta.Left++
		} else {
			meta.Right--
		}
		meta.Count--

		batch := l.eng.NewWriteBatch()
		if err := batch.Delete(cfData, dataKey); err != nil {
			return err
		}
		if err := batch.Put(cfMeta, key, listenc.Marshal(meta)); err != nil {
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
