package listenc

import (
	"bytes"
	"time"

	"github.com/wanghenshui/blackwidow/engine"
)

// MetaReader is the narrow slice of the engine a data-column-family
// compaction filter needs: read access to the meta column family. It
// exists to break the cycle between the engine (which owns the
// backend that drives compaction) and the data filter factory (which
// must read meta to decide whether a data record is live). lists.Open
// builds the handle once the meta column family is open; the handle
// keeps its reference to the engine and is not released separately
// when the engine closes.
type MetaReader interface {
	GetMeta(userKey []byte) (*Metadata, error)
}

// MetaFilterFactory drops meta records that are stale: a list with no
// live elements or a passed expiry has no reason to keep its meta
// record around once compaction visits it.
type MetaFilterFactory struct{}

func (MetaFilterFactory) NewFilter() engine.CompactionFilter {
	return &metaFilter{}
}

type metaFilter struct{}

func (f *metaFilter) Filter(key, value []byte) engine.FilterDecision {
	meta, err := Unmarshal(value)
	if err != nil {
		return engine.FilterDrop
	}
	if meta.Stale(time.Now()) {
		return engine.FilterDrop
	}
	return engine.FilterKeep
}

// DataFilterFactory drops orphaned data records: anything left behind
// by a version bump, a trim, or a cursor moving past it.
type DataFilterFactory struct {
	Reader MetaReader
}

func (f DataFilterFactory) NewFilter() engine.CompactionFilter {
	return &dataFilter{reader: f.Reader}
}

// dataFilter caches its last meta lookup across adjacent records: a
// compaction run visits data keys in sorted order, so records sharing
// a user-key prefix arrive back to back and the cache collapses them
// to one meta fetch per run of keys.
type dataFilter struct {
	reader MetaReader

	haveCache   bool
	cachedUser  []byte
	cachedMeta  *Metadata
	cachedErr   error
}

func (f *dataFilter) Filter(key, value []byte) engine.FilterDecision {
	userKey, version, index, err := DecodeDataKey(key)
	if err != nil {
		return engine.FilterDrop
	}

	meta, err := f.metaFor(userKey)
	if err != nil || meta == nil {
		return engine.FilterDrop
	}
	if meta.Stale(time.Now()) {
		return engine.FilterDrop
	}
	if meta.Version != version {
		return engine.FilterDrop
	}
	if index <= meta.Left || index >= meta.Right {
		return engine.FilterDrop
	}
	return engine.FilterKeep
}

func (f *dataFilter) metaFor(userKey []byte) (*Metadata, error) {
	if f.haveCache && bytes.Equal(f.cachedUser, userKey) {
		return f.cachedMeta, f.cachedErr
	}

	meta, err := f.reader.GetMeta(userKey)

	f.haveCache = true
	f.cachedUser = append(f.cachedUser[:0], userKey...)
	f.cachedMeta = meta
	f.cachedErr = err

	return meta, err
}
