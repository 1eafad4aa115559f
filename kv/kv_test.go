package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
)

// fakeCloud is an in-memory CloudBackend.
type fakeCloud struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
}

func newFakeCloud() *fakeCloud {
	return &fakeCloud{objects: make(map[string][]byte)}
}

func (f *fakeCloud) Put(
	ctx context.Context,
	bucket, key string,
	data []byte,
	opts ...blobtypes.UploadOption,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	f.objects[bucket+"/"+key] = stored
	f.puts++
	return nil
}

func (f *fakeCloud) Get(
	ctx context.Context,
	bucket, key string,
	opts ...blobtypes.DownloadOption,
) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("object %s/%s not found", bucket, key)
	}
	return data, nil
}

func (f *fakeCloud) Exists(ctx context.Context, bucket, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[bucket+"/"+key]
	return ok, nil
}

func openLocal(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_PutGet(t *testing.T) {
	db := openLocal(t)

	require.NoError(t, db.Put("alpha", []byte("one")))
	require.NoError(t, db.Put("beta", []byte("two")))

	value, err := db.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), value)

	// Overwrite replaces the value.
	require.NoError(t, db.Put("alpha", []byte("uno")))
	value, err = db.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, []byte("uno"), value)
}

func TestDB_Get_NotFound(t *testing.T) {
	db := openLocal(t)

	_, err := db.Get("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDB_Put_BinaryValue(t *testing.T) {
	db := openLocal(t)

	value := []byte{0x00, 0xff, 0x10, 0x80, 0x00}
	require.NoError(t, db.Put("bin", value))

	got, err := db.Get("bin")
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestDB_Delete(t *testing.T) {
	db := openLocal(t)

	require.NoError(t, db.Put("k", []byte("v")))
	require.NoError(t, db.Delete("k"))

	_, err := db.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing key is not an error.
	require.NoError(t, db.Delete("k"))
}

func TestDB_Write_Batch(t *testing.T) {
	db := openLocal(t)

	require.NoError(t, db.Put("stale", []byte("old")))

	batch := NewBatch()
	batch.Put("a", []byte("1"))
	batch.Put("b", []byte("2"))
	batch.Delete("stale")
	assert.Equal(t, 3, batch.Len())

	require.NoError(t, db.Write(batch))

	a, err := db.Get("a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), a)

	b, err := db.Get("b")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), b)

	_, err = db.Get("stale")
	assert.ErrorIs(t, err, ErrNotFound)

	batch.Reset()
	assert.Equal(t, 0, batch.Len())
}

func TestDB_Write_EmptyBatch(t *testing.T) {
	db := openLocal(t)
	require.NoError(t, db.Write(NewBatch()))
	require.NoError(t, db.Write(nil))
}

func TestIterator_AscendingOrder(t *testing.T) {
	db := openLocal(t)

	// Insert out of order.
	for _, k := range []string{"cherry", "apple", "banana"} {
		require.NoError(t, db.Put(k, []byte(k)))
	}

	it, err := db.NewIterator()
	require.NoError(t, err)
	defer it.Close()

	var keys []string
	for it.SeekToFirst(); it.Valid(); it.Next() {
		keys = append(keys, it.Key())
		assert.Equal(t, []byte(it.Key()), it.Value())
	}
	assert.Equal(t, []string{"apple", "banana", "cherry"}, keys)
}

func TestIterator_Seek(t *testing.T) {
	db := openLocal(t)

	for _, k := range []string{"a", "c", "e"} {
		require.NoError(t, db.Put(k, []byte(k)))
	}

	it, err := db.NewIterator()
	require.NoError(t, err)
	defer it.Close()

	// Exact match.
	it.Seek("c")
	require.True(t, it.Valid())
	assert.Equal(t, "c", it.Key())

	// First key greater than the pivot.
	it.Seek("b")
	require.True(t, it.Valid())
	assert.Equal(t, "c", it.Key())

	// Past the end.
	it.Seek("z")
	assert.False(t, it.Valid())
}

func TestIterator_SnapshotStability(t *testing.T) {
	db := openLocal(t)

	require.NoError(t, db.Put("k1", []byte("v1")))

	it, err := db.NewIterator()
	require.NoError(t, err)
	defer it.Close()

	// Mutations after creation are not visible to the iterator.
	require.NoError(t, db.Put("k2", []byte("v2")))
	require.NoError(t, db.Delete("k1"))

	var keys []string
	for it.SeekToFirst(); it.Valid(); it.Next() {
		keys = append(keys, it.Key())
	}
	assert.Equal(t, []string{"k1"}, keys)
}

func TestDB_Flush_PushesSnapshot(t *testing.T) {
	cloud := newFakeCloud()
	path := filepath.Join(t.TempDir(), "durable.db")

	db, err := Open(context.Background(), path, Options{
		Cloud:     cloud,
		Bucket:    "kv-bucket",
		ObjectKey: "snapshots/durable.db",
	})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put("k", []byte("v")))
	require.NoError(t, db.Flush(context.Background()))

	assert.Equal(t, 1, cloud.puts)
	snapshot, err := cloud.Get(context.Background(), "kv-bucket", "snapshots/durable.db")
	require.NoError(t, err)
	assert.NotEmpty(t, snapshot)
}

func TestDB_Flush_LocalOnly(t *testing.T) {
	db := openLocal(t)
	require.NoError(t, db.Put("k", []byte("v")))
	require.NoError(t, db.Flush(context.Background()))
}

func TestOpen_ResyncFromCloud(t *testing.T) {
	cloud := newFakeCloud()
	dir := t.TempDir()
	opts := Options{
		Cloud:     cloud,
		Bucket:    "kv-bucket",
		ObjectKey: "snapshots/resync.db",
	}

	// Build a database and push its snapshot.
	original, err := Open(context.Background(), filepath.Join(dir, "node-a.db"), opts)
	require.NoError(t, err)
	require.NoError(t, original.Put("shared", []byte("state")))
	require.NoError(t, original.Flush(context.Background()))
	require.NoError(t, original.Close())

	// A fresh machine with no local file rebuilds from the snapshot.
	resyncOpts := opts
	resyncOpts.ResyncOnOpen = true
	restored, err := Open(context.Background(), filepath.Join(dir, "node-b.db"), resyncOpts)
	require.NoError(t, err)
	defer restored.Close()

	value, err := restored.Get("shared")
	require.NoError(t, err)
	assert.Equal(t, []byte("state"), value)
}

func TestOpen_ResyncWithoutRemoteSnapshot(t *testing.T) {
	cloud := newFakeCloud()
	path := filepath.Join(t.TempDir(), "fresh.db")

	db, err := Open(context.Background(), path, Options{
		Cloud:        cloud,
		Bucket:       "kv-bucket",
		ObjectKey:    "snapshots/never-pushed.db",
		ResyncOnOpen: true,
	})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Get("anything")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_CloudRequiresBucketAndKey(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "x.db"), Options{
		Cloud: newFakeCloud(),
	})
	require.Error(t, err)
}

func TestDB_ClosedOperations(t *testing.T) {
	db := openLocal(t)
	require.NoError(t, db.Close())

	assert.ErrorIs(t, db.Put("k", []byte("v")), ErrClosed)
	_, err := db.Get("k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, db.Delete("k"), ErrClosed)
	assert.ErrorIs(t, db.Flush(context.Background()), ErrClosed)
	_, err = db.NewIterator()
	assert.ErrorIs(t, err, ErrClosed)

	// Close is idempotent.
	require.NoError(t, db.Close())
}

func TestDB_ConcurrentClose(t *testing.T) {
	db := openLocal(t)
	require.NoError(t, db.Put("seed", []byte("v")))

	// Writers race with Close; every operation must either succeed or fail
	// cleanly, never tear.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = db.Put(fmt.Sprintf("k%d-%d", n, j), []byte("v"))
				_, _ = db.Get("seed")
			}
		}(i)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = db.Close()
	}()
	wg.Wait()

	require.NoError(t, db.Close())
	assert.ErrorIs(t, db.Put("after", []byte("v")), ErrClosed)
}

func TestDB_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")

	db, err := Open(context.Background(), path, Options{})
	require.NoError(t, err)
	require.NoError(t, db.Put("k", []byte("v")))
	require.NoError(t, db.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	reopened, err := Open(context.Background(), path, Options{})
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)
}
