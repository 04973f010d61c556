package engine

import "github.com/wanghenshui/blackwidow/keydir"

// Snapshot is a point-in-time, read-only view across every column
// family, taken without blocking writers: each column family's Keydir
// is a copy-on-write btree, so cloning it is O(1) and independent of
// writes that happen afterward.
type Snapshot struct {
	engine  *Engine
	indexes map[string]keydir.Keydir
}

func (e *Engine) NewSnapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	snap := &Snapshot{
		engine:  e,
		indexes: make(map[string]keydir.Keydir, len(e.cfs)),
	}
	for name, cf := range e.cfs {
		cf.mu.RLock()
		snap.indexes[name] = cf.index.Clone()
		cf.mu.RUnlock()
	}
	return snap
}

func (s *Snapshot) Get(cfName string, key []byte) ([]byte, error) {
	idx, ok := s.indexes[cfName]
	if !ok {
		return nil, ErrNoSuchColumnFamily
	}
	cf, err := s.engine.cf(cfName)
	if err != nil {
		return nil, err
	}
	return cf.getLocked(idx, key)
}

// NewIterator returns an Iterator over cfName's keys as they stood
// when the snapshot was taken, ordered by the column family's
// Comparator.
func (s *Snapshot) NewIterator(cfName string) (Iterator, error) {
	idx, ok := s.indexes[cfName]
	if !ok {
		return nil, ErrNoSuchColumnFamily
	}
	cf, err := s.engine.cf(cfName)
	if err != nil {
		return nil, err
	}
	return &cfIterator{cf: cf, it: idx.Iterator()}, nil
}

// Iterator walks a column family's keys in comparator order, each
// Value() read resolved lazily from disk.
type Iterator interface {
	Seek(target []byte)
	Next()
	Prev()
	Valid() bool
	Key() []byte
	Value() ([]byte, error)
	Close()
}

type cfIterator struct {
	cf *columnFamily
	it keydir.Iterator
}

func (it *cfIterator) Seek(target []byte) { it.it.Seek(target) }
func (it *cfIterator) Next()              { it.it.Next() }
func (it *cfIterator) Prev()              { it.it.Prev() }
func (it *cfIterator) Valid() bool        { return it.it.Valid() }
func (it *cfIterator) Key() []byte        { return it.it.Key() }
func (it *cfIterator) Close()             { it.it.Close() }

func (it *cfIterator) Value() ([]byte, error) {
	pos := it.it.Value()
	if pos == nil {
		return nil, ErrKeyNotFound
	}
	return it.cf.readAt(pos)
}

// NewIterator gives a live (non-snapshotted) iterator directly over a
// column family's current index, for callers that hold the
// appropriate external lock themselves (e.g. LTrim).
func (e *Engine) NewIterator(cfName string) (Iterator, error) {
	cf, err := e.cf(cfName)
	if err != nil {
		return nil, err
	}
	cf.mu.RLock()
	defer cf.mu.RUnlock()
	return &cfIterator{cf: cf, it: cf.index.Iterator()}, nil
}
