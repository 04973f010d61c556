package codec

import (
	"encoding/binary"
	"io"

	"github.com/wanghenshui/blackwidow/model"
	"github.com/wanghenshui/blackwidow/utils"
)

// CodecImpl is the default Codec:
//
//	crc | isDelete | keySize | valueSize | key | value
//
// crc covers everything after the crc field itself (isDelete through
// value), so a torn write at the tail of a file is caught on reopen.
type CodecImpl struct{}

func NewCodecImpl() *CodecImpl {
	return &CodecImpl{}
}

func (cl *CodecImpl) MarshalRecordHeader(header *model.RecordHeader) ([]byte, int64, error) {
	data := make([]byte, model.MaxHeaderSize)

	binary.BigEndian.PutUint32(data[:4], header.Crc)

	if header.IsDelete {
		data[4] = 1
	}

	idx := 5
	idx += binary.PutVarint(data[idx:], header.KeySize)
	idx += binary.PutVarint(data[idx:], header.ValueSize)

	return data[:idx], int64(idx), nil
}

func (cl *CodecImpl) UnmarshalRecordHeader(headerData []byte, header *model.RecordHeader) (int64, error) {
	if len(headerData) < 5 {
		return 0, io.EOF
	}

	crc := binary.BigEndian.Uint32(headerData[:4])
	isDelete := headerData[4] == 1

	idx := 5
	keySize, n := binary.Varint(headerData[idx:])
	idx += n

	valueSize, n := binary.Varint(headerData[idx:])
	idx += n

	header.Crc = crc
	header.IsDelete = isDelete
	header.KeySize = keySize
	header.ValueSize = valueSize

	return int64(idx), nil
}

// MarshalRecord encodes header + key + value as one contiguous buffer,
// ready to append to a data file.
func (cl *CodecImpl) MarshalRecord(record *model.Record) ([]byte, int64, error) {
	header := &model.RecordHeader{
		IsDelete:  record.IsDelete,
		KeySize:   int64(len(record.Key)),
		ValueSize: int64(len(record.Value)),
	}

	headerData, headerSize, err := cl.MarshalRecordHeader(header)
	if err != nil {
		return nil, 0, err
	}

	data := make([]byte, headerSize, headerSize+int64(len(record.Key))+int64(len(record.Value)))
	copy(data, headerData)
	data = append(data, record.Key...)
	data = append(data, record.Value...)

	crc := utils.GenerateCrc(data[4:])
	binary.BigEndian.PutUint32(data[:4], crc)

	return data, int64(len(data)), nil
}

// UnmarshalRecord decodes key/value out of data, given a header already
// read via UnmarshalRecordHeader, and verifies the crc over the whole
// record.
func (cl *CodecImpl) UnmarshalRecord(data []byte, header *model.RecordHeader, record *model.Record) error {
	headerData, headerSize, err := cl.MarshalRecordHeader(header)
	if err != nil {
		return err
	}

	kz, vz := header.KeySize, header.ValueSize
	if int64(len(data)) < headerSize+kz+vz {
		return io.ErrUnexpectedEOF
	}

	record.Key = data[headerSize : headerSize+kz]
	record.Value = data[headerSize+kz : headerSize+kz+vz]
	record.IsDelete = header.IsDelete

	full := append(append([]byte{}, headerData[4:]...), data[headerSize:headerSize+kz+vz]...)
	if !utils.CheckCrc(header.Crc, full) {
		return model.ErrDataFileCorrupted
	}

	return nil
}

func (cl *CodecImpl) MarshalRecordPos(pos *model.RecordPos) ([]byte, error) {
	buf := make([]byte, binary.MaxVarintLen32*2+binary.MaxVarintLen64)
	idx := 0
	idx += binary.PutVarint(buf[idx:], int64(pos.Fid))
	idx += binary.PutVarint(buf[idx:], pos.Offset)
	idx += binary.PutVarint(buf[idx:], int64(pos.Size))
	return buf[:idx], nil
}

func (cl *CodecImpl) UnmarshalRecordPos(buf []byte, pos *model.RecordPos) error {
	idx := 0
	fid, n := binary.Varint(buf[idx:])
	idx += n
	offset, n := binary.Varint(buf[idx:])
	idx += n
	size, _ := binary.Varint(buf[idx:])

	pos.Fid = uint32(fid)
	pos.Offset = offset
	pos.Size = uint32(size)
	return nil
}
