package kv

type opKind int

const (
	opPut opKind = iota
	opDelete
)

type batchOp struct {
	kind  opKind
	key   string
	value []byte
}

// Batch collects put and delete operations for atomic application with
// DB.Write. Operations are applied in the order they were added.
type Batch struct {
	ops []batchOp
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Put queues a key-value write.
func (b *Batch) Put(key string, value []byte) {
	b.ops = append(b.ops, batchOp{kind: opPut, key: key, value: value})
}

// Delete queues a key removal.
func (b *Batch) Delete(key string) {
	b.ops = append(b.ops, batchOp{kind: opDelete, key: key})
}

// Len returns the number of queued operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Reset removes all queued operations so the batch can be reused.
func (b *Batch) Reset() {
	b.ops = b.ops[:0]
}
