package engine

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wanghenshui/blackwidow/model"
)

const mergeFinishedKey = "merge.finished"

// recordAt reads and decodes one record starting at offset, returning
// its total on-disk size so the caller can advance to the next
// record. io.EOF signals the data file has no more records.
func (cf *columnFamily) recordAt(df *model.DataFile, offset int64) (*model.Record, int64, error) {
	headerBuf, err := df.ReadRecordHeader(offset)
	if err != nil {
		return nil, 0, err
	}
	if len(headerBuf) == 0 {
		return nil, 0, io.EOF
	}

	header := &model.RecordHeader{}
	headerSize, err := cf.opts.codec.UnmarshalRecordHeader(headerBuf, header)
	if err != nil {
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		return nil, 0, err
	}

	total := headerSize + header.KeySize + header.ValueSize
	full, err := df.ReadRecord(offset, total)
	if err != nil {
		return nil, 0, err
	}

	record := &model.Record{}
	if err := cf.opts.codec.UnmarshalRecord(full, header, record); err != nil {
		return nil, 0, err
	}

	return record, total, nil
}

// CompactRange rewrites a column family's older data files into a
// merge directory, keeping only each key's live record and dropping
// anything its CompactionFilter marks for removal, and writes a hint
// file for the result. The running index and files are left as they
// are; the next Open installs the merged files and loads the hint file
// straight into the index without replaying every data file byte by
// byte.
func (e *Engine) CompactRange(cfName string) error {
	cf, err := e.cf(cfName)
	if err != nil {
		return err
	}
	return cf.compactRange()
}

func (cf *columnFamily) compactRange() error {
	cf.mu.Lock()
	if cf.isMerging {
		cf.mu.Unlock()
		return ErrMergeInProgress
	}
	cf.isMerging = true
	defer func() { cf.isMerging = false }()

	if cf.activeFile == nil {
		cf.mu.Unlock()
		return nil
	}

	if err := cf.activeFile.Sync(); err != nil {
		cf.mu.Unlock()
		return err
	}
	cf.olderFiles[cf.activeFile.Fid] = cf.activeFile
	if err := cf.setActiveFile(); err != nil {
		cf.mu.Unlock()
		return err
	}
	noMergeFid := cf.activeFile.Fid

	mergeFiles := make([]*model.DataFile, 0, len(cf.olderFiles))
	for _, f := range cf.olderFiles {
		mergeFiles = append(mergeFiles, f)
	}
	index := cf.index
	filter := (CompactionFilter)(nil)
	if cf.filterFactory != nil {
		filter = cf.filterFactory.NewFilter()
	}
	cf.mu.Unlock()

	sort.Slice(mergeFiles, func(i, j int) bool { return mergeFiles[i].Fid < mergeFiles[j].Fid })

	mergeDir := cf.mergeDirPath()
	if _, err := os.Stat(mergeDir); err == nil {
		if err := os.RemoveAll(mergeDir); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(mergeDir, os.ModePerm); err != nil {
		return err
	}

	mergeIoCreator := cf.opts.ioManagerCreator
	mergeDataIo, err := mergeIoCreator(model.GetDataFileName(mergeDir, model.DataFileType, 0))
	if err != nil {
		return err
	}
	mergeDf := model.OpenDataFile(0, mergeDataIo)

	hintIo, err := mergeIoCreator(model.GetDataFileName(mergeDir, model.HintFileType, 0))
	if err != nil {
		return err
	}
	defer hintIo.Close()
	hintFile := model.OpenDataFile(0, hintIo)

	for _, df := range mergeFiles {
		var offset int64
		for {
			record, size, err := cf.recordAt(df, offset)
			if err != nil {
				if err == io.EOF {
					break
				}
				return err
			}

			realKey, _ := parseTxSeqPrefix(record.Key)
			curOffset := offset
			offset += size

			if bytes.Equal(realKey, txFinishKey) {
				continue
			}

			pos := index.Get(realKey)
			isLive := pos != nil && pos.Fid == df.Fid && pos.Offset == curOffset
			if !isLive || record.IsDelete {
				continue
			}

			if filter != nil && filter.Filter(realKey, record.Value) == FilterDrop {
				continue
			}

			newPos, err := cf.appendRecordTo(mergeDf, &model.Record{Key: realKey, Value: record.Value})
			if err != nil {
				return err
			}

			hintData, err := cf.marshalPosRecord(realKey, newPos)
			if err != nil {
				return err
			}
			if err := hintFile.Write(hintData); err != nil {
				return err
			}
		}
	}

	if err := hintFile.Sync(); err != nil {
		return err
	}
	if err := mergeDf.Sync(); err != nil {
		return err
	}

	return cf.writeMergeFinishedFile(mergeDir, noMergeFid)
}

// appendRecordTo writes record to a data file other than the column
// family's own active file, used while compacting into the temporary
// merge directory. Compacted output only ever carries data the index
// already considered live, so it is tagged noTransactionSeq.
func (cf *columnFamily) appendRecordTo(df *model.DataFile, record *model.Record) (*model.RecordPos, error) {
	record.Key = addTxSeqPrefix(record.Key, noTransactionSeq)
	data, size, err := cf.opts.codec.MarshalRecord(record)
	if err != nil {
		return nil, err
	}
	pos := &model.RecordPos{Fid: df.Fid, Offset: df.WriteOffset, Size: uint32(size)}
	if err := df.Write(data); err != nil {
		return nil, err
	}
	return pos, nil
}

func (cf *columnFamily) marshalPosRecord(key []byte, pos *model.RecordPos) ([]byte, error) {
	posValue, err := cf.opts.codec.MarshalRecordPos(pos)
	if err != nil {
		return nil, err
	}
	data, _, err := cf.opts.codec.MarshalRecord(&model.Record{Key: key, Value: posValue})
	return data, err
}

func (cf *columnFamily) writeMergeFinishedFile(mergeDir string, fid uint32) error {
	ioMgr, err := cf.opts.ioManagerCreator(model.GetDataFileName(mergeDir, model.MergeFinishedFileType, 0))
	if err != nil {
		return err
	}
	defer ioMgr.Close()

	df := model.OpenDataFile(0, ioMgr)
	data, _, err := cf.opts.codec.MarshalRecord(&model.Record{
		Key:   []byte(mergeFinishedKey),
		Value: []byte(strconv.Itoa(int(fid))),
	})
	if err != nil {
		return err
	}
	if err := df.Write(data); err != nil {
		return err
	}
	return df.Sync()
}

// loadMergeFiles installs the result of the last CompactRange run that
// completed (CompactRange itself never installs it), moving the merged
// data and hint files into place and removing everything compaction
// made obsolete. A merge directory without its finished marker is
// discarded.
func (cf *columnFamily) loadMergeFiles() error {
	mergeDir := cf.mergeDirPath()
	if _, err := os.Stat(mergeDir); os.IsNotExist(err) {
		return nil
	}
	defer os.RemoveAll(mergeDir)

	entries, err := os.ReadDir(mergeDir)
	if err != nil {
		return err
	}

	var finished bool
	var mergeFileNames []string
	for _, e := range entries {
		if e.Name() == model.MergeFinishedFileName {
			finished = true
			mergeFileNames = append(mergeFileNames, e.Name())
			continue
		}
		if strings.HasSuffix(e.Name(), model.DataFileSuffix) || strings.HasSuffix(e.Name(), model.HintFileSuffix) {
			mergeFileNames = append(mergeFileNames, e.Name())
		}
	}

	if !finished {
		return nil
	}

	noMergeFid, err := cf.readNotMergedFid(mergeDir)
	if err != nil {
		return err
	}

	var fid uint32
	for ; fid < noMergeFid; fid++ {
		name := model.GetDataFileName(cf.path, model.DataFileType, fid)
		if _, err := os.Stat(name); err == nil {
			if err := os.Remove(name); err != nil {
				return err
			}
		}
	}

	for _, name := range mergeFileNames {
		src := filepath.Join(mergeDir, name)
		dst := filepath.Join(cf.path, name)
		if err := os.Rename(src, dst); err != nil {
			return err
		}
	}

	return nil
}

func (cf *columnFamily) readNotMergedFid(mergeDir string) (uint32, error) {
	ioMgr, err := cf.opts.ioManagerCreator(model.GetDataFileName(mergeDir, model.MergeFinishedFileType, 0))
	if err != nil {
		return 0, err
	}
	defer ioMgr.Close()

	df := model.OpenDataFile(0, ioMgr)
	record, _, err := cf.recordAt(df, 0)
	if err != nil {
		return 0, err
	}
	if !bytes.Equal(record.Key, []byte(mergeFinishedKey)) {
		return 0, ErrInvalidMergeFinishedFile
	}

	fid, err := strconv.Atoi(string(record.Value))
	if err != nil {
		return 0, err
	}
	return uint32(fid), nil
}
