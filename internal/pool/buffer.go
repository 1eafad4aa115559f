package pool

import (
	"sync"
)

// PartPool manages reusable part buffers of a fixed size.
// Chunked uploads hold at most maxConcurrency buffers at once, so pooling
// keeps steady-state allocation at concurrency × partSize.
type PartPool struct {
	size int64
	pool *sync.Pool
}

// NewPartPool creates a pool of buffers of exactly size bytes.
func NewPartPool(size int64) *PartPool {
	return &PartPool{
		size: size,
		pool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Size returns the buffer size this pool hands out.
func (p *PartPool) Size() int64 {
	return p.size
}

// Get returns a full-length buffer from the pool.
// The caller is responsible for calling Put to return the buffer.
func (p *PartPool) Get() []byte {
	bufPtr := p.pool.Get().(*[]byte)
	return (*bufPtr)[:p.size]
}

// Put returns a buffer to the pool.
// The buffer should not be used after calling Put. Buffers whose capacity
// does not match the pool size are dropped rather than recycled.
func (p *PartPool) Put(buf []byte) {
	if int64(cap(buf)) != p.size {
		return
	}
	buf = buf[:p.size]
	p.pool.Put(&buf)
}
