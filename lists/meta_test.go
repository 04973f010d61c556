package lists

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpire_ThenResurrection(t *testing.T) {
	clock := &clockFake{t: time.Unix(1000, 0)}
	l := tmpList(t, WithClock(clock.now))
	key := []byte("e")

	n, err := l.RPush(key, []byte("v"))
	require.Nil(t, err)
	assert.Equal(t, uint64(1), n)

	require.Nil(t, l.Expire(key, 1))

	clock.advance(2 * time.Second)

	_, err = l.LLen(key)
	assert.Equal(t, ErrNotFound, err)

	n, err = l.RPush(key, []byte("w"))
	require.Nil(t, err)
	assert.Equal(t, uint64(1), n)

	vals, err := l.LRange(key, 0, -1)
	require.Nil(t, err)
	assert.Equal(t, []string{"w"}, strs(vals))
}

func TestExpire_ZeroInvalidatesImmediately(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, []byte("a"))
	require.Nil(t, err)

	require.Nil(t, l.Expire(key, 0))

	_, err = l.LLen(key)
	assert.Equal(t, ErrNotFound, err)
}

func TestDel_ThenPushSucceedsAsCreate(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, []byte("a"))
	require.Nil(t, err)

	require.Nil(t, l.Del(key))

	_, err = l.LLen(key)
	assert.Equal(t, ErrNotFound, err)

	n, err := l.LPush(key, []byte("b"))
	require.Nil(t, err)
	assert.Equal(t, uint64(1), n)
}

func TestDel_OnMissingKey_NotFound(t *testing.T) {
	l := tmpList(t)
	assert.Equal(t, ErrNotFound, l.Del([]byte("missing")))
}

func TestExpire_OnMissingKey_NotFound(t *testing.T) {
	l := tmpList(t)
	assert.Equal(t, ErrNotFound, l.Expire([]byte("missing"), 10))
}

func TestLLen_OnMissingKey_NotFound(t *testing.T) {
	l := tmpList(t)
	_, err := l.LLen([]byte("missing"))
	assert.Equal(t, ErrNotFound, err)
}

func TestCompactRange(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	_, err := l.RPush(key, []byte("a"))
	require.Nil(t, err)
	require.Nil(t, l.Del(key))

	assert.Nil(t, l.CompactRange())

	_, err = l.LRange(key, 0, -1)
	assert.Equal(t, ErrNotFound, err)
}

func TestStubOperations_NotImplemented(t *testing.T) {
	l := tmpList(t)
	key := []byte("k")

	assert.Equal(t, ErrNotImplemented, l.Scan())
	assert.Equal(t, ErrNotImplemented, l.Expireat(key, 0))
	assert.Equal(t, ErrNotImplemented, l.Persist(key))
	_, err := l.TTL(key)
	assert.Equal(t, ErrNotImplemented, err)
}
