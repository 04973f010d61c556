package engine

import (
	"github.com/wanghenshui/blackwidow/codec"
	"github.com/wanghenshui/blackwidow/fio"
)

const (
	defaultDataFileSize = 256 * 1024 * 1024
	defaultBTreeDegree  = 32
)

type options struct {
	dataFileSize     int64
	ioManagerCreator func(path string) (fio.IOManager, error)
	codec            codec.Codec
	btreeDegree      int
}

func defaultOptions() *options {
	return &options{
		dataFileSize:     defaultDataFileSize,
		ioManagerCreator: func(path string) (fio.IOManager, error) { return fio.NewFileIO(path) },
		codec:            codec.NewCodecImpl(),
		btreeDegree:      defaultBTreeDegree,
	}
}

// Option configures an Engine at Open time.
type Option func(*options)

func WithDataFileSize(size int64) Option {
	return func(o *options) { o.dataFileSize = size }
}

func WithIOManagerCreator(fn func(path string) (fio.IOManager, error)) Option {
	return func(o *options) { o.ioManagerCreator = fn }
}

func WithCodec(c codec.Codec) Option {
	return func(o *options) { o.codec = c }
}

// CFOptions configures one column family at Open time, mirroring
// rocksdb.ColumnFamilyOptions: a pluggable comparator and a pluggable
// compaction filter factory.
type CFOptions struct {
	Comparator    Comparator
	FilterFactory CompactionFilterFactory
}
