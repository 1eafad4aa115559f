package kv

import (
	"fmt"
	"sort"

	"github.com/tidwall/buntdb"
)

type entry struct {
	key   string
	value []byte
}

// Iterator walks key-value pairs in ascending key order over a snapshot
// taken when the iterator was created. Writes made after creation are not
// visible to the iterator.
//
// A new iterator is positioned before the first entry; call SeekToFirst or
// Seek before reading.
type Iterator struct {
	entries []entry
	pos     int
}

// NewIterator creates an iterator over a snapshot of the current contents.
func (db *DB) NewIterator() (*Iterator, error) {
	if db.isClosed() {
		return nil, ErrClosed
	}

	var entries []entry
	err := db.bdb.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, value string) bool {
			entries = append(entries, entry{key: key, value: []byte(value)})
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("kv: snapshot for iterator: %w", err)
	}

	return &Iterator{entries: entries, pos: -1}, nil
}

// SeekToFirst positions the iterator at the smallest key.
func (it *Iterator) SeekToFirst() {
	it.pos = 0
}

// Seek positions the iterator at the first key greater than or equal to key.
func (it *Iterator) Seek(key string) {
	it.pos = sort.Search(len(it.entries), func(i int) bool {
		return it.entries[i].key >= key
	})
}

// Valid reports whether the iterator is positioned at an entry.
func (it *Iterator) Valid() bool {
	return it.pos >= 0 && it.pos < len(it.entries)
}

// Next advances to the following entry.
func (it *Iterator) Next() {
	if it.pos < len(it.entries) {
		it.pos++
	}
}

// Key returns the key at the current position.
// Only valid when Valid reports true.
func (it *Iterator) Key() string {
	return it.entries[it.pos].key
}

// Value returns the value at the current position.
// Only valid when Valid reports true.
func (it *Iterator) Value() []byte {
	return it.entries[it.pos].value
}

// Close releases the snapshot. The iterator must not be used afterwards.
func (it *Iterator) Close() {
	it.entries = nil
	it.pos = -1
}
