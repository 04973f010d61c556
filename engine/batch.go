package engine

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/wanghenshui/blackwidow/model"
)

// maxBatchNum bounds how many writes a single WriteBatch may stage,
// the same sanity limit the teacher's batch.go put on pendingWrites.
const maxBatchNum = 10000

type batchEntry struct {
	cfName   string
	key      []byte
	value    []byte
	isDelete bool
}

// WriteBatch stages Put/Delete calls across one or more column
// families and commits them as a single unit. Commit tags every
// record it appends with one shared sequence number, appends a
// finish-marker record carrying that same number to every touched
// column family once all of a batch's real records have landed, and
// only then updates the in-memory indexes. Replay on Open treats a
// tagged record as live only once it also finds that record's finish
// marker, so a crash between the first append and the last finish
// marker leaves every record this batch wrote unindexed rather than
// half-applied. That guarantee holds per column family; a crash
// between one touched column family's finish marker and another's can
// still leave a batch committed in one and not yet in the other.
type WriteBatch struct {
	engine *Engine

	mu      sync.Mutex
	entries []*batchEntry
}

func (e *Engine) NewWriteBatch() *WriteBatch {
	return &WriteBatch{engine: e}
}

func (b *WriteBatch) Put(cfName string, key, value []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) >= maxBatchNum {
		return ErrExceedMaxBatchNum
	}
	b.entries = append(b.entries, &batchEntry{cfName: cfName, key: key, value: value})
	return nil
}

func (b *WriteBatch) Delete(cfName string, key []byte) error {
	if len(key) == 0 {
		return ErrEmptyKey
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) >= maxBatchNum {
		return ErrExceedMaxBatchNum
	}
	b.entries = append(b.entries, &batchEntry{cfName: cfName, key: key, isDelete: true})
	return nil
}

func (b *WriteBatch) Commit() error {
	b.mu.Lock()
	entries := b.entries
	b.mu.Unlock()

	if len(entries) == 0 {
		return nil
	}

	cfNames := make(map[string]struct{}, len(entries))
	for _, ent := range entries {
		cfNames[ent.cfName] = struct{}{}
	}

	names := make([]string, 0, len(cfNames))
	for n := range cfNames {
		names = append(names, n)
	}
	sort.Strings(names)

	cfs := make(map[string]*columnFamily, len(names))
	for _, n := range names {
		cf, err := b.engine.cf(n)
		if err != nil {
			return err
		}
		cfs[n] = cf
	}

	for _, n := range names {
		cf := cfs[n]
		cf.mu.Lock()
		defer cf.mu.Unlock()
	}

	seq := atomic.AddUint64(&b.engine.txSeq, 1)

	type staged struct {
		cf  *columnFamily
		key []byte
		pos *model.RecordPos // nil means delete
	}
	var plan []staged

	for _, ent := range entries {
		cf := cfs[ent.cfName]
		if ent.isDelete {
			if cf.index.Get(ent.key) == nil {
				continue
			}
			if _, err := cf.appendRecord(&model.Record{Key: ent.key, IsDelete: true}, seq); err != nil {
				return err
			}
			plan = append(plan, staged{cf: cf, key: ent.key, pos: nil})
			continue
		}

		pos, err := cf.appendRecord(&model.Record{Key: ent.key, Value: ent.value}, seq)
		if err != nil {
			return err
		}
		plan = append(plan, staged{cf: cf, key: ent.key, pos: pos})
	}

	// Every touched column family gets this batch's finish marker
	// before any index is updated. Replay only honors seq's records
	// once it finds the marker, so an incomplete batch never surfaces.
	for _, n := range names {
		if _, err := cfs[n].appendRecord(&model.Record{Key: txFinishKey}, seq); err != nil {
			return err
		}
	}

	for _, s := range plan {
		if s.pos == nil {
			s.cf.index.Delete(s.key)
		} else {
			s.cf.index.Put(s.key, s.pos)
		}
	}

	return nil
}
