package benchmark

import (
	"fmt"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wanghenshui/blackwidow/lists"
)

var l *lists.List

func init() {
	dir, err := os.MkdirTemp("", "blackwidow-benchmark-*")
	if err != nil {
		panic(err)
	}
	l, err = lists.Open(dir)
	if err != nil {
		panic(err)
	}
}

// Benchmark_RPush .
func Benchmark_RPush(b *testing.B) {
	b.ResetTimer()
	b.ReportAllocs()

	key := []byte("bench-rpush")
	for i := 0; i < b.N; i++ {
		_, err := l.RPush(key, []byte("value"+strconv.Itoa(i)))
		assert.Nil(b, err)
	}
}

// Benchmark_LRange_Tail reads a fixed-size window off the tail of a
// list pre-populated once, outside the timed loop.
func Benchmark_LRange_Tail(b *testing.B) {
	key := []byte("bench-lrange")
	for i := 0; i < 10000; i++ {
		_, err := l.RPush(key, []byte("value"+strconv.Itoa(i)))
		assert.Nil(b, err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, err := l.LRange(key, -100, -1)
		assert.Nil(b, err)
	}
}

// Benchmark_LPop drains a list pre-populated with b.N elements.
func Benchmark_LPop(b *testing.B) {
	key := []byte("bench-lpop")
	for i := 0; i < b.N; i++ {
		_, err := l.RPush(key, []byte("value"+strconv.Itoa(i)))
		assert.Nil(b, err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, err := l.LPop(key)
		assert.Nil(b, err)
	}
}

// Benchmark_LIndex reads a mid-list element by position, repeatedly,
// off a list pre-populated once.
func Benchmark_LIndex(b *testing.B) {
	key := []byte("bench-lindex")
	for i := 0; i < 10000; i++ {
		_, err := l.RPush(key, []byte(fmt.Sprintf("value%d", i)))
		assert.Nil(b, err)
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, err := l.LIndex(key, 5000)
		assert.Nil(b, err)
	}
}
