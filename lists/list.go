// Package lists is the public List engine surface: LPush, RPush, LPop,
// RPop, LPushx, RPushx, LIndex, LSet, LRange, LTrim, LInsert, LRem,
// RPoplpush, LLen, Expire, Del and CompactRange, layered over the
// engine package's column families using the meta/data encoders and
// compaction filters from listenc and the per-key locking from lock.
package lists

import (
	"time"

	"github.com/wanghenshui/blackwidow/engine"
	"github.com/wanghenshui/blackwidow/listenc"
	"github.com/wanghenshui/blackwidow/lock"
)

// Column family names, mirroring redis_lists.cc's default and
// "data_cf" handles.
const (
	cfMeta = "meta"
	cfData = "data_cf"
)

type options struct {
	now func() time.Time
}

func defaultOptions() *options {
	return &options{now: time.Now}
}

// Option configures a List at Open time.
type Option func(*options)

// WithClock overrides the wall clock the engine uses for expiry
// checks. Tests use it to advance time without sleeping.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// List is the list-type engine: one engine.Engine with two column
// families (meta, data), a per-key lock manager, and the encoders
// that turn logical list operations into column-family reads/writes.
type List struct {
	eng   *engine.Engine
	locks *lock.Manager
	opts  *options
}

// Open opens (creating if necessary) a List engine rooted at path.
// Mirrors redis_lists.cc's two-phase Open: the meta column family is
// opened first with no dependency on the engine itself, then the data
// column family is added with a comparator and a compaction filter
// factory that holds a MetaReader back into the now-open engine.
func Open(path string, opts ...Option) (*List, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(o)
	}

	eng, err := engine.Open(path, map[string]engine.CFOptions{
		cfMeta: {FilterFactory: listenc.MetaFilterFactory{}},
	})
	if err != nil {
		return nil, err
	}

	reader := engineMetaReader{eng: eng}
	if err := eng.AddColumnFamily(cfData, engine.CFOptions{
		Comparator:    listenc.DataKeyComparator{},
		FilterFactory: listenc.DataFilterFactory{Reader: reader},
	}); err != nil {
		_ = eng.Close()
		return nil, err
	}

	return &List{eng: eng, locks: lock.NewManager(), opts: o}, nil
}

func (l *List) Close() error {
	return l.eng.Close()
}

func (l *List) now() time.Time {
	return l.opts.now()
}

// engineMetaReader satisfies listenc.MetaReader by reading the meta
// column family through the engine's normal point-read path — the
// handle the data compaction filter factory needs without owning the
// engine's lifetime.
type engineMetaReader struct {
	eng *engine.Engine
}

func (r engineMetaReader) GetMeta(userKey []byte) (*listenc.Metadata, error) {
	v, err := r.eng.Get(cfMeta, userKey)
	if err != nil {
		if err == engine.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}
	return listenc.Unmarshal(v)
}

// readMeta returns the parsed meta record for key, or nil if absent.
func (l *List) readMeta(key []byte) (*listenc.Metadata, error) {
	v, err := l.eng.Get(cfMeta, key)
	if err != nil {
		if err == engine.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}
	return listenc.Unmarshal(v)
}

// liveMeta returns the meta record only if it exists and is neither
// expired nor empty — the shared "missing or stale" check every
// read/mutate operation but Push performs, kept as two separate
// checks (expiry, emptiness) rather than listenc.Metadata.Stale,
// which folds them together for the compaction filter's benefit only.
func (l *List) liveMeta(key []byte) (*listenc.Metadata, error) {
	meta, err := l.readMeta(key)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, nil
	}
	if meta.IsExpired(l.now()) {
		return nil, nil
	}
	if meta.Empty() {
		return nil, nil
	}
	return meta, nil
}
