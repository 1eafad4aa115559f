package delete

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingClient captures each DeleteObjects call.
type recordingClient struct {
	batches [][]string
	fail    bool
	partial string // key reported as failed in the response
}

func (r *recordingClient) DeleteObjects(
	ctx context.Context,
	input *s3.DeleteObjectsInput,
	opts ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	if r.fail {
		return nil, errors.New("access denied")
	}

	var batch []string
	output := &s3.DeleteObjectsOutput{}
	for _, obj := range input.Delete.Objects {
		key := aws.ToString(obj.Key)
		batch = append(batch, key)
		if key == r.partial {
			output.Errors = append(output.Errors, types.Error{
				Key:     obj.Key,
				Code:    aws.String("AccessDenied"),
				Message: aws.String("access denied"),
			})
			continue
		}
		output.Deleted = append(output.Deleted, types.DeletedObject{Key: obj.Key})
	}
	r.batches = append(r.batches, batch)
	return output, nil
}

func (r *recordingClient) DeleteObject(
	ctx context.Context,
	input *s3.DeleteObjectInput,
	opts ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	return &s3.DeleteObjectOutput{}, nil
}

func keysN(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("objects/key-%05d", i)
	}
	return keys
}

func TestDeleteBatch_SingleRequest(t *testing.T) {
	client := &recordingClient{}
	deleter := New(client)

	result, err := deleter.DeleteBatch(context.Background(), "test-bucket", keysN(10))
	require.NoError(t, err)

	assert.Len(t, result.Deleted, 10)
	assert.Empty(t, result.Errors)
	require.Len(t, client.batches, 1)
	assert.Len(t, client.batches[0], 10)
}

func TestDeleteBatch_SplitsAboveMaxBatchSize(t *testing.T) {
	client := &recordingClient{}
	deleter := New(client)

	result, err := deleter.DeleteBatch(context.Background(), "test-bucket", keysN(2500))
	require.NoError(t, err)

	assert.Len(t, result.Deleted, 2500)
	require.Len(t, client.batches, 3)
	assert.Len(t, client.batches[0], 1000)
	assert.Len(t, client.batches[1], 1000)
	assert.Len(t, client.batches[2], 500)
}

func TestDeleteBatch_EmptyKeys(t *testing.T) {
	client := &recordingClient{}
	deleter := New(client)

	result, err := deleter.DeleteBatch(context.Background(), "test-bucket", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Deleted)
	assert.Empty(t, client.batches)
}

func TestDeleteBatch_PerKeyErrors(t *testing.T) {
	client := &recordingClient{partial: "objects/key-00003"}
	deleter := New(client)

	result, err := deleter.DeleteBatch(context.Background(), "test-bucket", keysN(5))
	require.NoError(t, err)

	assert.Len(t, result.Deleted, 4)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "objects/key-00003", result.Errors[0].Key)
	assert.Equal(t, "AccessDenied", result.Errors[0].Code)
}

func TestDeleteBatch_RequestFailure(t *testing.T) {
	client := &recordingClient{fail: true}
	deleter := New(client)

	_, err := deleter.DeleteBatch(context.Background(), "test-bucket", keysN(5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestDeleteBatch_LargeBatchPartialFailure(t *testing.T) {
	// First request succeeds, then the client starts failing; the failed
	// batch's keys are reported per key, not as a request error.
	client := &recordingClient{}
	deleter := New(client)
	deleter.maxBatchSize = 2

	calls := 0
	wrapped := &flakyClient{inner: client, failAfter: 1, calls: &calls}
	deleter.client = wrapped

	result, err := deleter.DeleteBatch(context.Background(), "test-bucket", keysN(4))
	require.NoError(t, err)
	assert.Len(t, result.Deleted, 2)
	assert.Len(t, result.Errors, 2)
	for _, e := range result.Errors {
		assert.Equal(t, "BatchError", e.Code)
	}
}

// flakyClient fails every request after the first failAfter calls.
type flakyClient struct {
	inner     *recordingClient
	failAfter int
	calls     *int
}

func (f *flakyClient) DeleteObjects(
	ctx context.Context,
	input *s3.DeleteObjectsInput,
	opts ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	*f.calls++
	if *f.calls > f.failAfter {
		return nil, errors.New("throttled")
	}
	return f.inner.DeleteObjects(ctx, input, opts...)
}

func (f *flakyClient) DeleteObject(
	ctx context.Context,
	input *s3.DeleteObjectInput,
	opts ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	return f.inner.DeleteObject(ctx, input, opts...)
}
