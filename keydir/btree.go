package keydir

import (
	"sort"
	"sync"

	"github.com/google/btree"

	"github.com/wanghenshui/blackwidow/model"
)

var _ Keydir = (*BTree)(nil)

const defaultDegree = 32

// Item implements btree.Item, ordering by the BTree's own comparator
// so a column family can plug in a comparator other than plain
// lexicographic byte order (see listenc.DataKeyComparator).
type Item struct {
	key []byte
	pos *model.RecordPos
	cmp Comparator
}

func (i *Item) Less(than btree.Item) bool {
	return i.cmp.Compare(i.key, than.(*Item).key) < 0
}

// BTree is the default Keydir: a copy-on-write B-tree (google/btree),
// which makes Clone an O(1) operation and gives every in-flight
// snapshot a consistent view regardless of later writes.
type BTree struct {
	tree *btree.BTree
	cmp  Comparator
	lock *sync.RWMutex
}

func NewBTree(degree int, cmp Comparator) *BTree {
	if degree <= 0 {
		degree = defaultDegree
	}
	if cmp == nil {
		cmp = ByteCompare{}
	}
	return &BTree{
		tree: btree.New(degree),
		cmp:  cmp,
		lock: &sync.RWMutex{},
	}
}

func (bt *BTree) newItem(key []byte, pos *model.RecordPos) *Item {
	return &Item{key: key, pos: pos, cmp: bt.cmp}
}

func (bt *BTree) Put(key []byte, pos *model.RecordPos) bool {
	bt.lock.Lock()
	defer bt.lock.Unlock()
	bt.tree.ReplaceOrInsert(bt.newItem(key, pos))
	return true
}

func (bt *BTree) Get(key []byte) *model.RecordPos {
	bt.lock.RLock()
	defer bt.lock.RUnlock()
	item := bt.tree.Get(bt.newItem(key, nil))
	if item == nil {
		return nil
	}
	return item.(*Item).pos
}

func (bt *BTree) Delete(key []byte) bool {
	bt.lock.Lock()
	defer bt.lock.Unlock()
	return bt.tree.Delete(bt.newItem(key, nil)) != nil
}

func (bt *BTree) Size() int {
	bt.lock.RLock()
	defer bt.lock.RUnlock()
	return bt.tree.Len()
}

// Clone returns a copy-on-write snapshot sharing the current tree's
// nodes; the clone and the receiver each see only writes made through
// themselves from this point on.
func (bt *BTree) Clone() Keydir {
	bt.lock.Lock()
	defer bt.lock.Unlock()
	return &BTree{
		tree: bt.tree.Clone(),
		cmp:  bt.cmp,
		lock: &sync.RWMutex{},
	}
}

func (bt *BTree) Iterator() Iterator {
	bt.lock.RLock()
	defer bt.lock.RUnlock()

	items := make([]*Item, 0, bt.tree.Len())
	bt.tree.Ascend(func(i btree.Item) bool {
		items = append(items, i.(*Item))
		return true
	})

	return &btreeIterator{cmp: bt.cmp, items: items}
}

// btreeIterator is materialized ascending at construction time and
// walked by index, so Seek/Next/Prev are all plain slice operations.
type btreeIterator struct {
	cmp   Comparator
	items []*Item
	idx   int
}

func (it *btreeIterator) Seek(target []byte) {
	it.idx = sort.Search(len(it.items), func(i int) bool {
		return it.cmp.Compare(it.items[i].key, target) >= 0
	})
}

func (it *btreeIterator) Next() { it.idx++ }
func (it *btreeIterator) Prev() { it.idx-- }

func (it *btreeIterator) Valid() bool {
	return it.idx >= 0 && it.idx < len(it.items)
}

func (it *btreeIterator) Key() []byte {
	return it.items[it.idx].key
}

func (it *btreeIterator) Value() *model.RecordPos {
	return it.items[it.idx].pos
}

func (it *btreeIterator) Close() {}
