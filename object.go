package blobstore

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/errors"
	deleteops "github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/operations/delete"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/operations/list"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/validation"
)

// Exists checks if an object exists using a HEAD request.
// Returns true if the object exists, false if it doesn't exist.
// Returns an error for other types of failures (network issues, permissions, etc.).
//
// Example:
//
//	exists, err := client.Exists(ctx, "my-bucket", "data.txt")
//	if err != nil {
//	    return err
//	}
func (c *Client) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if bucket == "" {
		return false, errors.NewError("exists", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return false, errors.NewError("exists", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	_, err := c.s3Client.HeadObject(ctx, input)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, errors.NewError("exists", err).WithBucket(bucket).WithKey(key)
	}

	return true, nil
}

// GetMetadata retrieves metadata for an object without downloading the content.
// This is more efficient than Get() for metadata-only operations.
//
// Example:
//
//	metadata, err := client.GetMetadata(ctx, "my-bucket", "document.pdf")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Content-Type: %s, Size: %d\n", metadata.ContentType, metadata.ContentLength)
func (c *Client) GetMetadata(ctx context.Context, bucket, key string) (*blobtypes.ObjectMetadata, error) {
	if bucket == "" {
		return nil, errors.NewError("getMetadata", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, errors.NewError("getMetadata", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	result, err := c.s3Client.HeadObject(ctx, input)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NewError("getMetadata", errors.ErrObjectNotFound).WithBucket(bucket).WithKey(key)
		}
		return nil, errors.NewError("getMetadata", err).WithBucket(bucket).WithKey(key)
	}

	metadata := &blobtypes.ObjectMetadata{
		ContentType:   aws.ToString(result.ContentType),
		ContentLength: aws.ToInt64(result.ContentLength),
		LastModified:  aws.ToTime(result.LastModified),
		ETag:          aws.ToString(result.ETag),
	}

	if result.Metadata != nil {
		metadata.Metadata = make(map[string]string, len(result.Metadata))
		for k, v := range result.Metadata {
			metadata.Metadata[k] = v
		}
	}

	return metadata, nil
}

// Delete deletes a single object.
// This operation is idempotent - deleting a non-existent object doesn't return an error.
//
// Example:
//
//	err := client.Delete(ctx, "my-bucket", "old-file.txt")
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	if bucket == "" {
		return errors.NewError("delete", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return errors.NewError("delete", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	_, err := c.s3Client.DeleteObject(ctx, input)
	if err != nil {
		return errors.NewError("delete", err).WithBucket(bucket).WithKey(key)
	}

	return nil
}

// DeleteMany deletes multiple objects in batched requests.
// Key sets larger than 1000 are split across multiple DeleteObjects calls.
// Each object deletion succeeds or fails independently; per-key failures are
// reported in the result's Errors slice.
//
// Example:
//
//	result, err := client.DeleteMany(ctx, "my-bucket", keys)
//	if err != nil {
//	    return err
//	}
//	for _, e := range result.Errors {
//	    fmt.Printf("failed to delete %s: %s\n", e.Key, e.Message)
//	}
func (c *Client) DeleteMany(ctx context.Context, bucket string, keys []string) (*blobtypes.DeleteResult, error) {
	if bucket == "" {
		return nil, errors.NewError("deleteMany", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("bucket name cannot be empty")
	}
	if len(keys) == 0 {
		return nil, errors.NewError("deleteMany", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("keys cannot be empty")
	}
	for _, key := range keys {
		if key == "" {
			return nil, errors.NewError("deleteMany", errors.ErrInvalidInput).
				WithBucket(bucket).
				WithMessage("empty key in keys slice")
		}
	}

	startTime := time.Now()

	deleter := deleteops.New(c.s3Client)
	result, err := deleter.DeleteBatch(ctx, bucket, keys)
	if err != nil {
		return nil, errors.NewError("deleteMany", err).WithBucket(bucket)
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// List lists objects in a bucket with support for pagination and filtering.
// It returns a single page of results; use WithContinuationToken with the
// returned token to fetch subsequent pages.
//
// Example:
//
//	result, err := client.List(ctx, "my-bucket", "photos/",
//	    blobstore.WithMaxKeys(100),
//	)
//	if err != nil {
//	    return err
//	}
//	for _, obj := range result.Objects {
//	    fmt.Printf("%s (%d bytes)\n", obj.Key, obj.Size)
//	}
func (c *Client) List(
	ctx context.Context,
	bucket, prefix string,
	opts ...blobtypes.ListOption,
) (*blobtypes.ListResult, error) {
	if bucket == "" {
		return nil, errors.NewError("list", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithMessage("bucket name cannot be empty")
	}

	config := &blobtypes.ListOptionConfig{
		Prefix:  prefix,
		MaxKeys: 1000,
	}
	for _, opt := range opts {
		opt(config)
	}

	startTime := time.Now()

	lister := list.New(c.s3Client)
	page, err := lister.List(ctx, &list.Config{
		Bucket:            bucket,
		Prefix:            config.Prefix,
		Delimiter:         config.Delimiter,
		MaxKeys:           config.MaxKeys,
		ContinuationToken: config.ContinuationToken,
	})
	if err != nil {
		return nil, errors.NewError("list", err).WithBucket(bucket)
	}

	return &blobtypes.ListResult{
		Objects:               page.Objects,
		IsTruncated:           page.IsTruncated,
		NextContinuationToken: page.ContinuationToken,
		Duration:              time.Since(startTime),
	}, nil
}

// CreateBucket creates a new bucket.
// The bucket name must be DNS-compliant: 3-63 characters, lowercase letters,
// numbers, dots and hyphens, not formatted as an IP address.
//
// Example:
//
//	err := client.CreateBucket(ctx, "my-new-bucket")
func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return errors.NewError("createBucket", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage(err.Error())
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}

	// us-east-1 must not carry a location constraint.
	if c.config.Region != "" && c.config.Region != "us-east-1" {
		input.CreateBucketConfiguration = &awstypes.CreateBucketConfiguration{
			LocationConstraint: awstypes.BucketLocationConstraint(c.config.Region),
		}
	}

	_, err := c.s3Client.CreateBucket(ctx, input)
	if err != nil {
		return errors.NewError("createBucket", convertAWSError(err)).WithBucket(bucket)
	}

	return nil
}

// DeleteBucket deletes a bucket.
// The bucket must be empty before it can be deleted.
//
// Example:
//
//	err := client.DeleteBucket(ctx, "old-bucket")
func (c *Client) DeleteBucket(ctx context.Context, bucket string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return errors.NewError("deleteBucket", errors.ErrInvalidBucketName).
			WithBucket(bucket).
			WithMessage(err.Error())
	}

	input := &s3.DeleteBucketInput{
		Bucket: aws.String(bucket),
	}

	_, err := c.s3Client.DeleteBucket(ctx, input)
	if err != nil {
		return errors.NewError("deleteBucket", convertAWSError(err)).WithBucket(bucket)
	}

	return nil
}

// convertAWSError converts AWS SDK errors to our sentinel error types.
func convertAWSError(err error) error {
	if err == nil {
		return nil
	}

	var bucketAlreadyExists *awstypes.BucketAlreadyExists
	if stderrors.As(err, &bucketAlreadyExists) {
		return errors.ErrBucketAlreadyExists
	}

	var bucketAlreadyOwned *awstypes.BucketAlreadyOwnedByYou
	if stderrors.As(err, &bucketAlreadyOwned) {
		return errors.ErrBucketAlreadyExists
	}

	var noSuchBucket *awstypes.NoSuchBucket
	if stderrors.As(err, &noSuchBucket) {
		return errors.ErrBucketNotFound
	}

	// Some stores only surface the error code in the message.
	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "BucketNotEmpty"):
		return errors.ErrBucketNotEmpty
	case strings.Contains(errMsg, "BucketAlreadyExists"):
		return errors.ErrBucketAlreadyExists
	case strings.Contains(errMsg, "NoSuchBucket"):
		return errors.ErrBucketNotFound
	}

	return err
}

// isNotFound checks if an error indicates a missing object.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFound *awstypes.NotFound
	if stderrors.As(err, &notFound) {
		return true
	}
	var noSuchKey *awstypes.NoSuchKey
	if stderrors.As(err, &noSuchKey) {
		return true
	}

	errMsg := err.Error()
	return strings.Contains(errMsg, "NotFound") || strings.Contains(errMsg, "NoSuchKey")
}
