package delete

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
)

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	DeleteObjects(
		ctx context.Context,
		input *s3.DeleteObjectsInput,
		opts ...func(*s3.Options),
	) (*s3.DeleteObjectsOutput, error)
	DeleteObject(
		ctx context.Context,
		input *s3.DeleteObjectInput,
		opts ...func(*s3.Options),
	) (*s3.DeleteObjectOutput, error)
}

// BatchDeleter handles batch deletion of objects.
// It is used both for client-level DeleteMany and for cleaning up part
// objects left behind by a failed scattered upload.
type BatchDeleter struct {
	client       S3Interface
	maxBatchSize int
}

// New creates a new BatchDeleter with the S3 maximum batch size.
func New(client S3Interface) *BatchDeleter {
	return &BatchDeleter{
		client:       client,
		maxBatchSize: 1000, // S3 maximum
	}
}

// DeleteBatch deletes objects, splitting the key set into batches of at
// most 1000 keys per request.
func (b *BatchDeleter) DeleteBatch(ctx context.Context, bucket string, keys []string) (*blobtypes.DeleteResult, error) {
	if len(keys) == 0 {
		return &blobtypes.DeleteResult{}, nil
	}

	if len(keys) <= b.maxBatchSize {
		return b.deleteBatchDirect(ctx, bucket, keys)
	}

	return b.deleteLargeBatch(ctx, bucket, keys)
}

// deleteBatchDirect handles a single batch deletion.
func (b *BatchDeleter) deleteBatchDirect(
	ctx context.Context,
	bucket string,
	keys []string,
) (*blobtypes.DeleteResult, error) {
	deleteObjects := make([]types.ObjectIdentifier, 0, len(keys))
	for _, key := range keys {
		deleteObjects = append(deleteObjects, types.ObjectIdentifier{
			Key: aws.String(key),
		})
	}

	input := &s3.DeleteObjectsInput{
		Bucket: aws.String(bucket),
		Delete: &types.Delete{
			Objects: deleteObjects,
			Quiet:   aws.Bool(false), // Get detailed results
		},
	}

	output, err := b.client.DeleteObjects(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("delete objects: %w", err)
	}

	return b.convertOutput(output), nil
}

// deleteLargeBatch handles deletion of more than 1000 objects.
func (b *BatchDeleter) deleteLargeBatch(
	ctx context.Context,
	bucket string,
	keys []string,
) (*blobtypes.DeleteResult, error) {
	result := &blobtypes.DeleteResult{
		Deleted: make([]blobtypes.Object, 0, len(keys)),
		Errors:  make([]blobtypes.DeleteError, 0),
	}

	for i := 0; i < len(keys); i += b.maxBatchSize {
		end := i + b.maxBatchSize
		if end > len(keys) {
			end = len(keys)
		}

		batchResult, err := b.deleteBatchDirect(ctx, bucket, keys[i:end])
		if err != nil {
			for j := i; j < end; j++ {
				result.Errors = append(result.Errors, blobtypes.DeleteError{
					Key:     keys[j],
					Code:    "BatchError",
					Message: err.Error(),
				})
			}
			continue
		}

		result.Deleted = append(result.Deleted, batchResult.Deleted...)
		result.Errors = append(result.Errors, batchResult.Errors...)
	}

	return result, nil
}

// convertOutput converts S3 output to our DeleteResult type.
func (b *BatchDeleter) convertOutput(output *s3.DeleteObjectsOutput) *blobtypes.DeleteResult {
	result := &blobtypes.DeleteResult{
		Deleted: make([]blobtypes.Object, 0),
		Errors:  make([]blobtypes.DeleteError, 0),
	}

	for _, deleted := range output.Deleted {
		result.Deleted = append(result.Deleted, blobtypes.Object{
			Key: aws.ToString(deleted.Key),
		})
	}

	for _, err := range output.Errors {
		result.Errors = append(result.Errors, blobtypes.DeleteError{
			Key:     aws.ToString(err.Key),
			Code:    aws.ToString(err.Code),
			Message: aws.ToString(err.Message),
		})
	}

	return result
}
