// Package kv provides an ordered key-value engine whose durable state can be
// pushed to and pulled from an object store.
//
// Locally the engine is backed by buntdb, an ordered, transactional,
// single-file store. Flush persists the local state and, when a cloud
// backend is configured, uploads a snapshot of the database file to the
// configured object key. Open can resync from that snapshot, so a database
// can be rebuilt on a fresh machine from the object store alone.
package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tidwall/buntdb"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// ErrClosed is returned by operations on a closed database.
var ErrClosed = errors.New("kv: database is closed")

// CloudBackend is the object-store surface the engine needs for snapshot
// push and pull. *blobstore.Client satisfies it.
type CloudBackend interface {
	Put(ctx context.Context, bucket, key string, data []byte, opts ...blobtypes.UploadOption) error
	Get(ctx context.Context, bucket, key string, opts ...blobtypes.DownloadOption) ([]byte, error)
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

// Options configures a DB.
type Options struct {
	// Cloud is the optional object-store backend for snapshots.
	// When nil the database is purely local and Flush only persists to disk.
	Cloud CloudBackend

	// Bucket is the bucket holding the snapshot object.
	Bucket string

	// ObjectKey is the key the snapshot is stored under.
	ObjectKey string

	// ResyncOnOpen pulls the remote snapshot (when present) over the local
	// file before opening, rebuilding local state from the object store.
	ResyncOnOpen bool
}

// DB is an ordered key-value database. It is safe for concurrent use.
type DB struct {
	bdb  *buntdb.DB
	path string
	opts Options

	mu     sync.Mutex // guards closed
	closed bool
}

// isClosed reports whether Close has been called.
func (db *DB) isClosed() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.closed
}

// Open opens the database file at path, creating it if absent.
//
// With Options.ResyncOnOpen set and a cloud backend configured, the remote
// snapshot is downloaded and written over the local file first; a missing
// remote snapshot is not an error, the database simply opens from local
// state (or empty).
func Open(ctx context.Context, path string, opts Options) (*DB, error) {
	if opts.Cloud != nil && (opts.Bucket == "" || opts.ObjectKey == "") {
		return nil, errors.New("kv: cloud backend requires a bucket and object key")
	}

	if opts.ResyncOnOpen && opts.Cloud != nil {
		if err := pullSnapshot(ctx, path, opts); err != nil {
			return nil, err
		}
	}

	bdb, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("kv: open %s: %w", path, err)
	}

	return &DB{bdb: bdb, path: path, opts: opts}, nil
}

// pullSnapshot replaces the local database file with the remote snapshot.
func pullSnapshot(ctx context.Context, path string, opts Options) error {
	exists, err := opts.Cloud.Exists(ctx, opts.Bucket, opts.ObjectKey)
	if err != nil {
		return fmt.Errorf("kv: check remote snapshot: %w", err)
	}
	if !exists {
		return nil
	}

	data, err := opts.Cloud.Get(ctx, opts.Bucket, opts.ObjectKey)
	if err != nil {
		return fmt.Errorf("kv: pull remote snapshot: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("kv: create database directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("kv: write local snapshot: %w", err)
	}
	return nil
}

// Put stores a value under key, replacing any existing value.
func (db *DB) Put(key string, value []byte) error {
	if db.isClosed() {
		return ErrClosed
	}
	err := db.bdb.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, string(value), nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("kv: put %q: %w", key, err)
	}
	return nil
}

// Get returns the value stored under key.
// Returns ErrNotFound when the key does not exist.
func (db *DB) Get(key string) ([]byte, error) {
	if db.isClosed() {
		return nil, ErrClosed
	}
	var value []byte
	err := db.bdb.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(key)
		if err != nil {
			return err
		}
		value = []byte(v)
		return nil
	})
	if err != nil {
		if errors.Is(err, buntdb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kv: get %q: %w", key, err)
	}
	return value, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (db *DB) Delete(key string) error {
	if db.isClosed() {
		return ErrClosed
	}
	err := db.bdb.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key)
		if errors.Is(err, buntdb.ErrNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("kv: delete %q: %w", key, err)
	}
	return nil
}

// Write applies every operation in the batch within a single transaction.
// Either all operations take effect or none do.
func (db *DB) Write(batch *Batch) error {
	if db.isClosed() {
		return ErrClosed
	}
	if batch == nil || len(batch.ops) == 0 {
		return nil
	}
	err := db.bdb.Update(func(tx *buntdb.Tx) error {
		for _, op := range batch.ops {
			switch op.kind {
			case opPut:
				if _, _, err := tx.Set(op.key, string(op.value), nil); err != nil {
					return err
				}
			case opDelete:
				if _, err := tx.Delete(op.key); err != nil && !errors.Is(err, buntdb.ErrNotFound) {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("kv: write batch: %w", err)
	}
	return nil
}

// Flush persists the in-memory state to the local file and, when a cloud
// backend is configured, uploads a snapshot of the database to the
// configured object key.
func (db *DB) Flush(ctx context.Context) error {
	if db.isClosed() {
		return ErrClosed
	}

	if err := db.bdb.Shrink(); err != nil && !errors.Is(err, buntdb.ErrShrinkInProcess) {
		return fmt.Errorf("kv: flush local state: %w", err)
	}

	if db.opts.Cloud == nil {
		return nil
	}

	var snapshot bytes.Buffer
	if err := db.bdb.Save(&snapshot); err != nil {
		return fmt.Errorf("kv: snapshot database: %w", err)
	}

	if err := db.opts.Cloud.Put(ctx, db.opts.Bucket, db.opts.ObjectKey, snapshot.Bytes()); err != nil {
		return fmt.Errorf("kv: push snapshot: %w", err)
	}
	return nil
}

// Close closes the database. The local file remains on disk.
func (db *DB) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	db.mu.Unlock()

	if err := db.bdb.Close(); err != nil {
		return fmt.Errorf("kv: close: %w", err)
	}
	return nil
}
