package listenc

import (
	"encoding/binary"
	"errors"
)

// DataKeySuffixSize is the fixed width appended to the user key:
// version (u32 BE) ‖ logical_index (u64 BE).
const DataKeySuffixSize = 4 + 8

var ErrCorruptDataKey = errors.New("listenc: data key shorter than the fixed suffix")

// EncodeDataKey builds a data column family key. Big-endian encoding
// of the suffix is mandatory: it makes the column family's plain
// bytewise key order equal numeric order over (version, index), which
// both the data compaction filter and range scans depend on.
func EncodeDataKey(userKey []byte, version uint32, index uint64) []byte {
	buf := make([]byte, len(userKey)+DataKeySuffixSize)
	copy(buf, userKey)
	binary.BigEndian.PutUint32(buf[len(userKey):len(userKey)+4], version)
	binary.BigEndian.PutUint64(buf[len(userKey)+4:], index)
	return buf
}

// DecodeDataKey splits a data column family key back into its parts.
func DecodeDataKey(key []byte) (userKey []byte, version uint32, index uint64, err error) {
	if len(key) < DataKeySuffixSize {
		return nil, 0, 0, ErrCorruptDataKey
	}
	split := len(key) - DataKeySuffixSize
	userKey = key[:split]
	version = binary.BigEndian.Uint32(key[split : split+4])
	index = binary.BigEndian.Uint64(key[split+4:])
	return userKey, version, index, nil
}
