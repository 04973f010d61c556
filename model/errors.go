package model

import "errors"

// ErrDataFileCorrupted is returned by a Codec when a record's crc does
// not match its decoded bytes.
var ErrDataFileCorrupted = errors.New("blackwidow: data file may be corrupted")
