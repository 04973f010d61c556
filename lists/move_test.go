package lists

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPoplpush_RotateInPlace(t *testing.T) {
	l := tmpList(t)
	key := []byte("k3")

	_, err := l.RPush(key, bytesOf("1", "2", "3")...)
	require.Nil(t, err)

	v, err := l.RPoplpush(key, key)
	require.Nil(t, err)
	assert.Equal(t, "3", string(v))

	vals, err := l.LRange(key, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"3", "1", "2"}, strs(vals))
}

func TestRPoplpush_RotateSingleElement_NoOp(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, []byte("only"))
	require.Nil(t, err)

	v, err := l.RPoplpush(key, key)
	require.Nil(t, err)
	assert.Equal(t, "only", string(v))

	vals, err := l.LRange(key, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"only"}, strs(vals))
}

func TestRPoplpush_AcrossLists(t *testing.T) {
	l := tmpList(t)
	src := []byte("s")
	dst := []byte("d")

	_, err := l.RPush(src, bytesOf("a", "b")...)
	require.Nil(t, err)
	_, err = l.RPush(dst, bytesOf("x")...)
	require.Nil(t, err)

	v, err := l.RPoplpush(src, dst)
	require.Nil(t, err)
	assert.Equal(t, "b", string(v))

	vals, err := l.LRange(src, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"a"}, strs(vals))

	vals, err = l.LRange(dst, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"b", "x"}, strs(vals))
}

func TestRPoplpush_AcrossLists_CreatesMissingDestination(t *testing.T) {
	l := tmpList(t)
	src := []byte("s")
	dst := []byte("d-missing")

	_, err := l.RPush(src, bytesOf("a", "b")...)
	require.Nil(t, err)

	v, err := l.RPoplpush(src, dst)
	require.Nil(t, err)
	assert.Equal(t, "b", string(v))

	vals, err := l.LRange(dst, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"b"}, strs(vals))
}

func TestRPoplpush_MissingSource_NotFound(t *testing.T) {
	l := tmpList(t)

	_, err := l.RPoplpush([]byte("missing"), []byte("dst"))
	assert.Equal(t, ErrNotFound, err)
}
