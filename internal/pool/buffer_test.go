package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPartPool(t *testing.T) {
	p := NewPartPool(1024)
	require.NotNil(t, p)
	assert.Equal(t, int64(1024), p.Size())
}

func TestPartPool_Get(t *testing.T) {
	p := NewPartPool(4096)

	buf := p.Get()
	require.NotNil(t, buf)
	assert.Equal(t, 4096, len(buf))
	assert.Equal(t, 4096, cap(buf))

	// Use the buffer
	copy(buf, []byte("test data"))

	// Return to pool
	p.Put(buf)
}

func TestPartPool_BufferReuse(t *testing.T) {
	p := NewPartPool(512)

	buf1 := p.Get()
	copy(buf1, []byte("first use"))
	p.Put(buf1)

	// Buffers from the pool come back full-length regardless of prior use.
	buf2 := p.Get()
	assert.Equal(t, 512, len(buf2))
	assert.Equal(t, 512, cap(buf2))

	p.Put(buf2)
}

func TestPartPool_PutDropsMismatchedCapacity(t *testing.T) {
	p := NewPartPool(512)

	// A foreign buffer must not poison the pool.
	p.Put(make([]byte, 64))

	buf := p.Get()
	assert.Equal(t, 512, len(buf))
}

func BenchmarkPartPool_GetPut(b *testing.B) {
	p := NewPartPool(8 * 1024 * 1024)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := p.Get()
			p.Put(buf)
		}
	})
}

func BenchmarkPartAllocation_NewEachTime(b *testing.B) {
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := make([]byte, 8*1024*1024)
			_ = buf
		}
	})
}
