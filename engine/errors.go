package engine

import "fmt"

var (
	ErrEmptyKey           = addPrefix("the key is empty")
	ErrKeyNotFound        = addPrefix("key not found")
	ErrColumnFamilyExists = addPrefix("column family already exists")
	ErrNoSuchColumnFamily = addPrefix("no such column family")
	ErrExceedMaxBatchNum  = addPrefix("write batch exceeds the max batch size")
	ErrMergeInProgress    = addPrefix("compaction is already in progress")
	ErrDirIsUsing         = addPrefix("database directory is in use by another process")
	ErrInvalidMergeFinishedFile = addPrefix("merge finished file is corrupted")
)

func addPrefix(msg string) error {
	return fmt.Errorf("blackwidow/engine: %s", msg)
}
