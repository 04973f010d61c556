// Package engine is a small multi-column-family, ordered-key-value
// store in the shape of rocksdb.DB: independently named column
// families, each with its own pluggable Comparator and
// CompactionFilterFactory, atomic multi-CF write batches, and
// copy-on-write snapshots. It is the storage substrate the lists
// package builds a Redis-style List data type on top of; nothing in
// this package knows what a list is.
package engine

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"github.com/wanghenshui/blackwidow/fio"
)

// Engine owns one directory on disk and the set of column families
// opened within it.
type Engine struct {
	path string
	opts *options

	mu  sync.RWMutex
	cfs map[string]*columnFamily

	dirLock *flock.Flock

	// txSeq hands out the monotonic sequence number each WriteBatch
	// tags its records with, so replay can recognize a commit's
	// finish marker and distinguish it from an interrupted one.
	txSeq uint64
}

// Open opens (creating if necessary) the database at path with the
// given column families, all of them in one pass. A column family whose
// CompactionFilterFactory needs a MetaReader back into the engine (the
// data CF's orphan filter) is not passed here; the caller adds it with
// AddColumnFamily once Open has returned.
func Open(path string, cfOpts map[string]CFOptions, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, fn := range opts {
		fn(o)
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}

	dirLock := fio.NewFlock(path)
	locked, err := dirLock.TryLock()
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrDirIsUsing
	}

	e := &Engine{
		path:    path,
		opts:    o,
		cfs:     make(map[string]*columnFamily),
		dirLock: dirLock,
	}

	for name, cfo := range cfOpts {
		cf, err := openColumnFamily(name, filepath.Join(path, name), cfo, o)
		if err != nil {
			_ = dirLock.Unlock()
			return nil, err
		}
		e.cfs[name] = cf
	}

	return e, nil
}

// Close flushes and closes every column family's data files and
// releases the directory lock.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, cf := range e.cfs {
		if err := cf.close(); err != nil {
			return err
		}
	}
	return e.dirLock.Unlock()
}

func (e *Engine) cf(name string) (*columnFamily, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	cf, ok := e.cfs[name]
	if !ok {
		return nil, ErrNoSuchColumnFamily
	}
	return cf, nil
}

// Get reads the current value of key in column family cf.
func (e *Engine) Get(cfName string, key []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	cf, err := e.cf(cfName)
	if err != nil {
		return nil, err
	}
	return cf.get(key)
}

// Put writes key/value to column family cf as a single-record unit of
// work. For writes spanning more than one record or more than one
// column family, use NewWriteBatch instead.
func (e *Engine) Put(cfName string, key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	cf, err := e.cf(cfName)
	if err != nil {
		return err
	}
	return cf.put(key, value)
}

// Delete removes key from column family cf.
func (e *Engine) Delete(cfName string, key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	cf, err := e.cf(cfName)
	if err != nil {
		return err
	}
	return cf.delete(key)
}

// AddColumnFamily opens an additional column family in an already-open
// engine, for the two-phase open a MetaReader-dependent filter factory
// needs.
func (e *Engine) AddColumnFamily(name string, cfo CFOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.cfs[name]; ok {
		return ErrColumnFamilyExists
	}

	cf, err := openColumnFamily(name, filepath.Join(e.path, name), cfo, e.opts)
	if err != nil {
		return err
	}
	e.cfs[name] = cf
	return nil
}
