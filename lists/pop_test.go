package lists

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPush_RPop_RoundTrip(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, []byte("x"))
	require.Nil(t, err)

	v, err := l.RPop(key)
	require.Nil(t, err)
	assert.Equal(t, "x", string(v))
}

func TestLPop_RPop_Order(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, bytesOf("a", "b", "c")...)
	require.Nil(t, err)

	v, err := l.LPop(key)
	require.Nil(t, err)
	assert.Equal(t, "a", string(v))

	v, err = l.RPop(key)
	require.Nil(t, err)
	assert.Equal(t, "c", string(v))

	vals, err := l.LRange(key, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"b"}, strs(vals))
}

func TestPop_OnEmptyList_NotFound(t *testing.T) {
	l := tmpList(t)
	key := []byte("missing")

	_, err := l.LPop(key)
	assert.Equal(t, ErrNotFound, err)

	_, err = l.RPop(key)
	assert.Equal(t, ErrNotFound, err)
}

func TestPop_DrainingLeavesNoLiveRecords(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, bytesOf("a", "b")...)
	require.Nil(t, err)

	_, err = l.LPop(key)
	require.Nil(t, err)
	_, err = l.LPop(key)
	require.Nil(t, err)

	// count reaches zero: list reads as absent even though meta record
	// may still physically exist pending compaction.
	_, err = l.LLen(key)
	assert.Equal(t, ErrNotFound, err)

	_, err = l.LRange(key, 0, -1)
	assert.Equal(t, ErrNotFound, err)
}
