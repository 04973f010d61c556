package model

import (
	"fmt"
	"path/filepath"

	"github.com/wanghenshui/blackwidow/fio"
)

// FileType distinguishes the three kinds of files a column family keeps
// on disk: regular append-only data segments, the hint file written at
// the end of a compaction to let Open skip replaying merged segments,
// and the marker that records which segment id the last compaction
// considered already merged.
type FileType = byte

const (
	DataFileType FileType = iota
	HintFileType
	MergeFinishedFileType
)

const (
	DataFileSuffix          = ".cf"
	HintFileSuffix          = ".hint"
	MergeFinishedFileSuffix = ".finished"
)

// MergeFinishedFileName is the fixed name of the merge-finished marker;
// unlike data and hint files it carries no file id.
const MergeFinishedFileName = "merge" + MergeFinishedFileSuffix

// GetDataFileName builds the on-disk path for a file of the given type
// and id inside dirPath.
func GetDataFileName(dirPath string, typ FileType, fid uint32) string {
	switch typ {
	case HintFileType:
		return filepath.Join(dirPath, fmt.Sprintf("%09d%s", fid, HintFileSuffix))
	case MergeFinishedFileType:
		return filepath.Join(dirPath, MergeFinishedFileName)
	default:
		return filepath.Join(dirPath, fmt.Sprintf("%09d%s", fid, DataFileSuffix))
	}
}

// DataFile is one append-only segment. Only the active file's
// WriteOffset is meaningful for writes; older files are read-only.
type DataFile struct {
	Fid         uint32
	WriteOffset int64
	IOManager   fio.IOManager
}

func OpenDataFile(fid uint32, ioManager fio.IOManager) *DataFile {
	return &DataFile{
		Fid:       fid,
		IOManager: ioManager,
	}
}

func (df *DataFile) Sync() error {
	return df.IOManager.Sync()
}

func (df *DataFile) Close() error {
	return df.IOManager.Close()
}

// Write appends data to the file and advances WriteOffset.
func (df *DataFile) Write(data []byte) error {
	n, err := df.IOManager.Write(data)
	if err != nil {
		return err
	}
	df.WriteOffset += int64(n)
	return nil
}

// ReadRecordHeader reads up to MaxHeaderSize bytes starting at offset,
// clamped to the file's actual size (the header may be shorter at the
// tail of a file, which the caller treats as EOF).
func (df *DataFile) ReadRecordHeader(offset int64) ([]byte, error) {
	fileSize, err := df.IOManager.Size()
	if err != nil {
		return nil, err
	}

	size := int64(MaxHeaderSize)
	if offset+size > fileSize {
		size = fileSize - offset
	}
	if size <= 0 {
		return nil, nil
	}

	return df.readNBytes(offset, size)
}

func (df *DataFile) ReadRecord(offset, size int64) ([]byte, error) {
	return df.readNBytes(offset, size)
}

func (df *DataFile) readNBytes(offset, n int64) ([]byte, error) {
	buf := make([]byte, n)
	_, err := df.IOManager.Read(buf, offset)
	if err != nil {
		return nil, err
	}
	return buf, nil
}
