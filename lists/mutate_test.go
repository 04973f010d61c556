package lists

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLInsert_PivotInsertShortLeftPath(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, bytesOf("b", "c")...)
	require.Nil(t, err)
	_, err = l.LPush(key, bytesOf("a")...)
	require.Nil(t, err)

	n, err := l.LInsert(key, Before, []byte("b"), []byte("a2"))
	require.Nil(t, err)
	assert.Equal(t, int64(4), n)

	vals, err := l.LRange(key, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "a2", "b", "c"}, strs(vals))
}

func TestLInsert_After(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, bytesOf("a", "b", "c")...)
	require.Nil(t, err)

	n, err := l.LInsert(key, After, []byte("b"), []byte("b2"))
	require.Nil(t, err)
	assert.Equal(t, int64(4), n)

	vals, err := l.LRange(key, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "b", "b2", "c"}, strs(vals))
}

func TestLInsert_NoPivotMatch_ReturnsMinusOneUnchanged(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, bytesOf("a", "b")...)
	require.Nil(t, err)

	n, err := l.LInsert(key, Before, []byte("zzz"), []byte("x"))
	require.Nil(t, err)
	assert.Equal(t, int64(-1), n)

	vals, err := l.LRange(key, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "b"}, strs(vals))
}

func TestLInsert_MissingList_ReturnsZeroNotFound(t *testing.T) {
	l := tmpList(t)

	n, err := l.LInsert([]byte("missing"), Before, []byte("p"), []byte("v"))
	assert.Equal(t, ErrNotFound, err)
	assert.Equal(t, int64(0), n)
}

func TestLRem_NegativeCount(t *testing.T) {
	l := tmpList(t)
	key := []byte("k2")

	_, err := l.RPush(key, bytesOf("x", "y", "x", "z", "x")...)
	require.Nil(t, err)

	n, err := l.LRem(key, -2, []byte("x"))
	require.Nil(t, err)
	assert.Equal(t, int64(2), n)

	vals, err := l.LRange(key, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, strs(vals))
}

func TestLRem_PositiveCount_FromHead(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, bytesOf("x", "y", "x", "z", "x")...)
	require.Nil(t, err)

	n, err := l.LRem(key, 2, []byte("x"))
	require.Nil(t, err)
	assert.Equal(t, int64(2), n)

	vals, err := l.LRange(key, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"y", "z", "x"}, strs(vals))
}

func TestLRem_ZeroCount_RemovesAllAndIsIdempotent(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, bytesOf("x", "y", "x", "z", "x")...)
	require.Nil(t, err)

	n, err := l.LRem(key, 0, []byte("x"))
	require.Nil(t, err)
	assert.Equal(t, int64(3), n)

	vals, err := l.LRange(key, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"y", "z"}, strs(vals))

	_, err = l.LRem(key, 0, []byte("x"))
	assert.Equal(t, ErrNotFound, err)

	vals, err = l.LRange(key, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"y", "z"}, strs(vals))
}

func TestLRem_NoMatch_NotFound(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, bytesOf("a", "b")...)
	require.Nil(t, err)

	_, err = l.LRem(key, 0, []byte("zzz"))
	assert.Equal(t, ErrNotFound, err)
}

func TestLTrim_RetainsWindow(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, bytesOf("a", "b", "c", "d", "e")...)
	require.Nil(t, err)

	require.Nil(t, l.LTrim(key, 1, 3))

	vals, err := l.LRange(key, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"b", "c", "d"}, strs(vals))
}

func TestLTrim_EmptyWindow_InvalidatesList(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, bytesOf("a", "b")...)
	require.Nil(t, err)

	require.Nil(t, l.LTrim(key, 5, 10))

	_, err = l.LLen(key)
	assert.Equal(t, ErrNotFound, err)
}

func TestInvariant_VersionNonDecreasingAcrossInvalidation(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, []byte("a"))
	require.Nil(t, err)
	meta1, err := l.readMeta(key)
	require.Nil(t, err)

	require.Nil(t, l.Del(key))
	meta2, err := l.readMeta(key)
	require.Nil(t, err)
	assert.Greater(t, meta2.Version, meta1.Version)

	_, err = l.RPush(key, []byte("b"))
	require.Nil(t, err)
	meta3, err := l.readMeta(key)
	require.Nil(t, err)
	assert.GreaterOrEqual(t, meta3.Version, meta2.Version)
}
