package codec

import "github.com/wanghenshui/blackwidow/model"

// Codec is pluggable in engine.Option so a column family can use a
// different on-disk record framing than the default.
type Codec interface {
	// MarshalRecordHeader returns the header's encoded bytes and length.
	MarshalRecordHeader(*model.RecordHeader) ([]byte, int64, error)
	UnmarshalRecordHeader([]byte, *model.RecordHeader) (int64, error)

	// MarshalRecord returns the full encoded record (header + key +
	// value) and its length.
	MarshalRecord(*model.Record) ([]byte, int64, error)
	UnmarshalRecord(data []byte, header *model.RecordHeader, record *model.Record) error

	MarshalRecordPos(*model.RecordPos) ([]byte, error)
	UnmarshalRecordPos([]byte, *model.RecordPos) error
}
