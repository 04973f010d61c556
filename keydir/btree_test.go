package keydir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wanghenshui/blackwidow/model"
)

func TestBTree_Put(t *testing.T) {
	bt := NewBTree(32, nil)

	res := bt.Put(nil, &model.RecordPos{Fid: 1, Size: 2, Offset: 3})
	assert.True(t, res)

	res = bt.Put([]byte("a"), &model.RecordPos{Fid: 1, Size: 2, Offset: 3})
	assert.True(t, res)
}

func TestBTree_Get(t *testing.T) {
	bt := NewBTree(32, nil)

	bt.Put(nil, &model.RecordPos{Fid: 1, Size: 2, Offset: 3})
	pos := bt.Get(nil)
	assert.Equal(t, uint32(1), pos.Fid)

	bt.Put([]byte("a"), &model.RecordPos{Fid: 1, Size: 2, Offset: 3})
	pos = bt.Get([]byte("a"))
	assert.Equal(t, uint32(1), pos.Fid)

	bt.Put([]byte("a"), &model.RecordPos{Fid: 2, Size: 2, Offset: 3})
	pos = bt.Get([]byte("a"))
	assert.Equal(t, uint32(2), pos.Fid)
}

func TestBTree_Delete(t *testing.T) {
	bt := NewBTree(32, nil)

	bt.Put([]byte("a"), &model.RecordPos{Fid: 1, Size: 2, Offset: 3})
	ok := bt.Delete([]byte("a"))
	assert.True(t, ok)

	ok = bt.Delete([]byte("a"))
	assert.False(t, ok)
}

func TestBTree_Clone(t *testing.T) {
	bt := NewBTree(32, nil)
	bt.Put([]byte("a"), &model.RecordPos{Fid: 1})
	bt.Put([]byte("b"), &model.RecordPos{Fid: 1})

	snap := bt.Clone()

	bt.Put([]byte("c"), &model.RecordPos{Fid: 2})
	bt.Delete([]byte("a"))

	assert.Equal(t, 2, snap.Size())
	assert.NotNil(t, snap.Get([]byte("a")))
	assert.Nil(t, snap.Get([]byte("c")))

	assert.Equal(t, 2, bt.Size())
	assert.Nil(t, bt.Get([]byte("a")))
	assert.NotNil(t, bt.Get([]byte("c")))
}

func TestBTree_Iterator(t *testing.T) {
	bt := NewBTree(32, nil)
	for i := byte(0); i < 5; i++ {
		bt.Put([]byte{'a', i}, &model.RecordPos{Fid: uint32(i)})
	}

	it := bt.Iterator()
	defer it.Close()

	var keys []string
	for it.Seek(nil); it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
	}
	assert.Equal(t, 5, len(keys))

	it2 := bt.Iterator()
	defer it2.Close()
	it2.Seek([]byte{'a', 2})
	assert.True(t, it2.Valid())
	assert.Equal(t, []byte{'a', 2}, it2.Key())

	it2.Prev()
	assert.True(t, it2.Valid())
	assert.Equal(t, []byte{'a', 1}, it2.Key())
}
