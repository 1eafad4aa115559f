package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bucket and key",
			err:  NewObjectError("upload", "my-bucket", "data.bin", stderrors.New("boom")),
			want: "blobstore.upload my-bucket/data.bin: boom",
		},
		{
			name: "bucket only",
			err:  NewError("createBucket", stderrors.New("boom")).WithBucket("my-bucket"),
			want: "blobstore.createBucket bucket my-bucket: boom",
		},
		{
			name: "key only",
			err:  NewError("download", stderrors.New("boom")).WithKey("data.bin"),
			want: "blobstore.download object data.bin: boom",
		},
		{
			name: "operation only",
			err:  NewError("list", stderrors.New("boom")),
			want: "blobstore.list: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := NewError("download", ErrObjectNotFound).WithBucket("b").WithKey("k")

	assert.True(t, stderrors.Is(err, ErrObjectNotFound))
	assert.True(t, IsObjectNotFound(err))

	var opErr *Error
	require.True(t, stderrors.As(err, &opErr))
	assert.Equal(t, "download", opErr.Op)
}

func TestError_WithMessage(t *testing.T) {
	err := NewError("upload", ErrInvalidInput).WithMessage("reader cannot be nil")

	assert.Contains(t, err.Error(), "reader cannot be nil")
	assert.True(t, stderrors.Is(err, ErrInvalidInput))
}

func TestPartError(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewPartError(2, cause)

	assert.Equal(t, "part 2: connection reset", err.Error())
	assert.True(t, stderrors.Is(err, cause))
}

func TestFailedPart(t *testing.T) {
	t.Run("direct part error", func(t *testing.T) {
		part, ok := FailedPart(NewPartError(3, stderrors.New("boom")))
		assert.True(t, ok)
		assert.Equal(t, int32(3), part)
	})

	t.Run("wrapped through operation error", func(t *testing.T) {
		err := NewObjectError("upload", "b", "k", NewPartError(7, stderrors.New("boom")))
		part, ok := FailedPart(err)
		assert.True(t, ok)
		assert.Equal(t, int32(7), part)
	})

	t.Run("wrapped with fmt.Errorf", func(t *testing.T) {
		err := fmt.Errorf("retry exhausted: %w", NewPartError(1, stderrors.New("boom")))
		part, ok := FailedPart(err)
		assert.True(t, ok)
		assert.Equal(t, int32(1), part)
	})

	t.Run("no part error in chain", func(t *testing.T) {
		_, ok := FailedPart(stderrors.New("boom"))
		assert.False(t, ok)
	})

	t.Run("nil error", func(t *testing.T) {
		_, ok := FailedPart(nil)
		assert.False(t, ok)
	})
}

func TestSentinelHelpers(t *testing.T) {
	assert.True(t, IsBucketNotFound(NewError("deleteBucket", ErrBucketNotFound)))
	assert.True(t, IsAccessDenied(NewError("put", ErrAccessDenied)))
	assert.True(t, IsInvalidInput(NewError("put", ErrInvalidInput)))

	other := stderrors.New("boom")
	assert.False(t, IsObjectNotFound(other))
	assert.False(t, IsBucketNotFound(other))
	assert.False(t, IsAccessDenied(other))
	assert.False(t, IsInvalidInput(other))
}
