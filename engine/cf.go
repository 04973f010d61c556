package engine

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/wanghenshui/blackwidow/keydir"
	"github.com/wanghenshui/blackwidow/model"
)

// columnFamily is one independently-logged bitcask store: an
// append-only sequence of data files plus an in-memory Keydir pointing
// at the latest live position of every key. Two of these, sharing one
// Engine, give the list type its meta and data keyspaces.
type columnFamily struct {
	name string
	path string

	mu         sync.RWMutex
	activeFile *model.DataFile
	olderFiles map[uint32]*model.DataFile

	index         keydir.Keydir
	comparator    Comparator
	filterFactory CompactionFilterFactory

	isMerging bool
	opts      *options
}

func openColumnFamily(name, path string, cfOpts CFOptions, opts *options) (*columnFamily, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}

	cmp := cfOpts.Comparator
	if cmp == nil {
		cmp = ByteCompare{}
	}

	cf := &columnFamily{
		name:          name,
		path:          path,
		olderFiles:    make(map[uint32]*model.DataFile),
		index:         keydir.NewBTree(opts.btreeDegree, cmp),
		comparator:    cmp,
		filterFactory: cfOpts.FilterFactory,
		opts:          opts,
	}

	if err := cf.loadMergeFiles(); err != nil {
		return nil, err
	}

	fids, err := cf.loadDataFileIds()
	if err != nil {
		return nil, err
	}

	loadedFromHint := make(map[uint32]struct{})
	if err := cf.loadIndexFromHintFile(loadedFromHint); err != nil {
		return nil, err
	}

	dataFiles := make([]*model.DataFile, 0, len(fids))
	for _, fid := range fids {
		ioMgr, err := opts.ioManagerCreator(model.GetDataFileName(path, model.DataFileType, fid))
		if err != nil {
			return nil, err
		}
		df := model.OpenDataFile(fid, ioMgr)

		size, err := ioMgr.Size()
		if err != nil {
			return nil, err
		}
		df.WriteOffset = size
		dataFiles = append(dataFiles, df)

		if fid == lastOf(fids) {
			cf.activeFile = df
		} else {
			cf.olderFiles[fid] = df
		}
	}

	// Pass 1: across every file not already covered by the hint file,
	// find which batches actually finished committing (their finish
	// marker made it to disk).
	committed := make(map[uint64]bool)
	for _, df := range dataFiles {
		if _, skip := loadedFromHint[df.Fid]; skip {
			continue
		}
		if err := cf.collectCommittedSeqs(df, committed); err != nil {
			return nil, err
		}
	}

	// Pass 2: apply every record tagged noTransactionSeq unconditionally,
	// and every other record only if pass 1 found its batch's finish
	// marker — an orphan from a crash mid-commit is left unindexed.
	for _, df := range dataFiles {
		if _, skip := loadedFromHint[df.Fid]; skip {
			continue
		}
		if err := cf.loadIndexFromDataFile(df, committed); err != nil {
			return nil, err
		}
	}

	if cf.activeFile == nil {
		if err := cf.setActiveFile(); err != nil {
			return nil, err
		}
	}

	return cf, nil
}

func lastOf(fids []uint32) uint32 {
	if len(fids) == 0 {
		return 0
	}
	return fids[len(fids)-1]
}

func (cf *columnFamily) loadDataFileIds() ([]uint32, error) {
	entries, err := os.ReadDir(cf.path)
	if err != nil {
		return nil, err
	}

	var fids []uint32
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), model.DataFileSuffix) {
			continue
		}
		idStr := strings.TrimSuffix(e.Name(), model.DataFileSuffix)
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		fids = append(fids, uint32(id))
	}
	sort.Slice(fids, func(i, j int) bool { return fids[i] < fids[j] })
	return fids, nil
}

func (cf *columnFamily) setActiveFile() error {
	var fid uint32
	if cf.activeFile != nil {
		fid = cf.activeFile.Fid + 1
	}

	ioMgr, err := cf.opts.ioManagerCreator(model.GetDataFileName(cf.path, model.DataFileType, fid))
	if err != nil {
		return err
	}

	cf.activeFile = model.OpenDataFile(fid, ioMgr)
	return nil
}

func (cf *columnFamily) rotateActiveFile() error {
	if cf.activeFile == nil {
		return cf.setActiveFile()
	}
	if err := cf.activeFile.Sync(); err != nil {
		return err
	}
	cf.olderFiles[cf.activeFile.Fid] = cf.activeFile
	return cf.setActiveFile()
}

func (cf *columnFamily) fileByID(fid uint32) *model.DataFile {
	if cf.activeFile != nil && cf.activeFile.Fid == fid {
		return cf.activeFile
	}
	return cf.olderFiles[fid]
}

// appendRecord writes record to the active file, rotating to a new
// active file first if the record would not fit. The record's key is
// first tagged with seq (noTransactionSeq for writes outside a
// transaction); replay uses that tag to tell a committed batch's
// records from an interrupted one's. appendRecord does not touch the
// index; callers (direct puts, WriteBatch) update the index once
// every append in a unit of work has succeeded.
func (cf *columnFamily) appendRecord(record *model.Record, seq uint64) (*model.RecordPos, error) {
	record.Key = addTxSeqPrefix(record.Key, seq)
	data, size, err := cf.opts.codec.MarshalRecord(record)
	if err != nil {
		return nil, err
	}

	if cf.activeFile == nil {
		if err := cf.setActiveFile(); err != nil {
			return nil, err
		}
	}

	if cf.activeFile.WriteOffset+size > cf.opts.dataFileSize {
		if err := cf.rotateActiveFile(); err != nil {
			return nil, err
		}
	}

	pos := &model.RecordPos{
		Fid:    cf.activeFile.Fid,
		Offset: cf.activeFile.WriteOffset,
		Size:   uint32(size),
	}

	if err := cf.activeFile.Write(data); err != nil {
		return nil, err
	}

	return pos, nil
}

func (cf *columnFamily) get(key []byte) ([]byte, error) {
	cf.mu.RLock()
	defer cf.mu.RUnlock()
	return cf.getLocked(cf.index, key)
}

// getLocked resolves key through the given index view (the live index,
// or a snapshot clone of it) without taking cf.mu — callers under a
// snapshot read serve from a cloned Keydir and don't need the lock.
func (cf *columnFamily) getLocked(idx keydir.Keydir, key []byte) ([]byte, error) {
	pos := idx.Get(key)
	if pos == nil {
		return nil, ErrKeyNotFound
	}
	return cf.readAt(pos)
}

func (cf *columnFamily) readAt(pos *model.RecordPos) ([]byte, error) {
	df := cf.fileByID(pos.Fid)
	if df == nil {
		return nil, ErrKeyNotFound
	}

	data, err := df.ReadRecord(pos.Offset, int64(pos.Size))
	if err != nil {
		return nil, err
	}

	header := &model.RecordHeader{}
	if _, err := cf.opts.codec.UnmarshalRecordHeader(data, header); err != nil {
		return nil, err
	}

	record := &model.Record{}
	if err := cf.opts.codec.UnmarshalRecord(data, header, record); err != nil {
		return nil, err
	}
	if record.IsDelete {
		return nil, ErrKeyNotFound
	}

	return record.Value, nil
}

// put appends key/value and publishes it to the index in one
// operation; used for single-record, single-CF writes (the common
// meta-only mutations). Multi-record or cross-CF writes go through a
// WriteBatch instead.
func (cf *columnFamily) put(key, value []byte) error {
	cf.mu.Lock()
	defer cf.mu.Unlock()

	pos, err := cf.appendRecord(&model.Record{Key: key, Value: value}, noTransactionSeq)
	if err != nil {
		return err
	}
	cf.index.Put(key, pos)
	return nil
}

func (cf *columnFamily) delete(key []byte) error {
	cf.mu.Lock()
	defer cf.mu.Unlock()

	if cf.index.Get(key) == nil {
		return nil
	}

	_, err := cf.appendRecord(&model.Record{Key: key, IsDelete: true}, noTransactionSeq)
	if err != nil {
		return err
	}
	cf.index.Delete(key)
	return nil
}

func (cf *columnFamily) close() error {
	cf.mu.Lock()
	defer cf.mu.Unlock()

	if cf.activeFile != nil {
		if err := cf.activeFile.Close(); err != nil {
			return err
		}
	}
	for _, f := range cf.olderFiles {
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

// eachRecord walks df in file order, decoding one record per call to
// fn along with the offset and total on-disk size it occupied.
func (cf *columnFamily) eachRecord(df *model.DataFile, fn func(record *model.Record, offset, total int64) error) error {
	var offset int64
	for {
		headerBuf, err := df.ReadRecordHeader(offset)
		if err != nil {
			return err
		}
		if len(headerBuf) == 0 {
			break
		}

		header := &model.RecordHeader{}
		headerSize, err := cf.opts.codec.UnmarshalRecordHeader(headerBuf, header)
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}

		total := headerSize + header.KeySize + header.ValueSize
		full, err := df.ReadRecord(offset, total)
		if err != nil {
			return err
		}

		record := &model.Record{}
		if err := cf.opts.codec.UnmarshalRecord(full, header, record); err != nil {
			return err
		}

		if err := fn(record, offset, total); err != nil {
			return err
		}
		offset += total
	}
	return nil
}

// collectCommittedSeqs scans df for finish-marker records and records
// each one's batch sequence number as committed.
func (cf *columnFamily) collectCommittedSeqs(df *model.DataFile, committed map[uint64]bool) error {
	return cf.eachRecord(df, func(record *model.Record, offset, total int64) error {
		realKey, seq := parseTxSeqPrefix(record.Key)
		if bytes.Equal(realKey, txFinishKey) {
			committed[seq] = true
		}
		return nil
	})
}

// loadIndexFromDataFile replays one data file's records into the
// index, in file order, so a later write shadows an earlier one for
// the same key exactly as it did when first written. A record tagged
// with a batch sequence number is only applied if committed marks
// that batch as having finished; noTransactionSeq records (direct
// writes, compacted output) are always applied. Finish markers carry
// no data and are never indexed.
func (cf *columnFamily) loadIndexFromDataFile(df *model.DataFile, committed map[uint64]bool) error {
	return cf.eachRecord(df, func(record *model.Record, offset, total int64) error {
		realKey, seq := parseTxSeqPrefix(record.Key)
		if bytes.Equal(realKey, txFinishKey) {
			return nil
		}
		if seq != noTransactionSeq && !committed[seq] {
			return nil
		}

		if record.IsDelete {
			cf.index.Delete(realKey)
		} else {
			cf.index.Put(realKey, &model.RecordPos{
				Fid:    df.Fid,
				Offset: offset,
				Size:   uint32(total),
			})
		}
		return nil
	})
}

func (cf *columnFamily) loadIndexFromHintFile(loaded map[uint32]struct{}) error {
	hintPath := model.GetDataFileName(cf.path, model.HintFileType, 0)
	if _, err := os.Stat(hintPath); os.IsNotExist(err) {
		return nil
	}

	ioMgr, err := cf.opts.ioManagerCreator(hintPath)
	if err != nil {
		return err
	}
	defer ioMgr.Close()

	hintFile := model.OpenDataFile(0, ioMgr)
	var offset int64
	for {
		headerBuf, err := hintFile.ReadRecordHeader(offset)
		if err != nil {
			return err
		}
		if len(headerBuf) == 0 {
			break
		}

		header := &model.RecordHeader{}
		headerSize, err := cf.opts.codec.UnmarshalRecordHeader(headerBuf, header)
		if err != nil {
			return err
		}

		total := headerSize + header.KeySize + header.ValueSize
		full, err := hintFile.ReadRecord(offset, total)
		if err != nil {
			return err
		}

		record := &model.Record{}
		if err := cf.opts.codec.UnmarshalRecord(full, header, record); err != nil {
			return err
		}

		pos := &model.RecordPos{}
		if err := cf.opts.codec.UnmarshalRecordPos(record.Value, pos); err != nil {
			return err
		}
		cf.index.Put(record.Key, pos)
		loaded[pos.Fid] = struct{}{}

		offset += total
	}

	return nil
}

func (cf *columnFamily) mergeDirPath() string {
	dir := filepath.Dir(filepath.Clean(cf.path))
	base := filepath.Base(cf.path)
	return filepath.Join(dir, base+"-merge")
}
