// Package pool provides memory management optimizations.
// This includes part-buffer pooling to reduce allocations during chunked
// uploads, where one full-size buffer is needed per in-flight part.
//
// Steady-state allocation of a chunked upload stays at concurrency × partSize
// because buffers are recycled as parts complete.
package pool
