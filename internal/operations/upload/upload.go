// Package upload handles object upload operations.
// This includes simple uploads, multipart uploads, and stream-based uploads.
//
// The package automatically routes payloads to multipart upload based on a
// size threshold and delegates the chunked transfer to the multipart package.
package upload

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/transfer/multipart"
)

// Uploader handles upload operations with automatic multipart routing.
type Uploader struct {
	s3Client  s3api.S3API
	multipart *multipart.Uploader
}

// New creates a new Uploader instance.
func New(s3Client s3api.S3API) *Uploader {
	return &Uploader{
		s3Client:  s3Client,
		multipart: multipart.NewUploader(s3Client),
	}
}

// Upload uploads data from an io.Reader.
// Payloads of unknown size go through multipart so the reader can be
// consumed without buffering it whole; use UploadKnownSize when the size
// is available up front.
func (u *Uploader) Upload(
	ctx context.Context,
	bucket, key string,
	reader io.Reader,
	config *blobtypes.UploadConfig,
	startTime time.Time,
) (*blobtypes.UploadResult, error) {
	return u.multipart.Upload(ctx, bucket, key, reader, -1, config, startTime)
}

// UploadKnownSize uploads a payload whose total size is known.
// It routes to a single PUT below the multipart threshold and to a chunked
// multipart upload at or above it.
func (u *Uploader) UploadKnownSize(
	ctx context.Context,
	bucket, key string,
	reader io.Reader,
	size int64,
	config *blobtypes.UploadConfig,
	startTime time.Time,
) (*blobtypes.UploadResult, error) {
	if size >= blobtypes.MultipartThreshold {
		return u.multipart.Upload(ctx, bucket, key, reader, size, config, startTime)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
	}

	return u.uploadSimple(ctx, bucket, key, data, config, startTime)
}

// UploadSimple performs a simple (non-multipart) upload.
func (u *Uploader) UploadSimple(
	ctx context.Context,
	bucket, key string,
	data []byte,
	config *blobtypes.UploadConfig,
	startTime time.Time,
) (*blobtypes.UploadResult, error) {
	return u.uploadSimple(ctx, bucket, key, data, config, startTime)
}

// UploadMultipart performs a chunked multipart upload regardless of size.
func (u *Uploader) UploadMultipart(
	ctx context.Context,
	bucket, key string,
	reader io.Reader,
	size int64,
	config *blobtypes.UploadConfig,
	startTime time.Time,
) (*blobtypes.UploadResult, error) {
	return u.multipart.Upload(ctx, bucket, key, reader, size, config, startTime)
}

// uploadSimple performs a single PutObject call.
func (u *Uploader) uploadSimple(
	ctx context.Context,
	bucket, key string,
	data []byte,
	config *blobtypes.UploadConfig,
	startTime time.Time,
) (*blobtypes.UploadResult, error) {
	size := int64(len(data))

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
	}

	if config.ContentType != "" {
		input.ContentType = aws.String(config.ContentType)
	}
	if config.StorageClass != "" {
		input.StorageClass = awstypes.StorageClass(config.StorageClass)
	}
	if len(config.Metadata) > 0 {
		input.Metadata = config.Metadata
	}

	output, err := u.s3Client.PutObject(ctx, input)
	if err != nil {
		if config.ProgressTracker != nil {
			config.ProgressTracker.Error(err)
		}
		return nil, errors.NewError("uploadSimple", err).WithBucket(bucket).WithKey(key)
	}

	result := &blobtypes.UploadResult{
		Key:       key,
		Size:      size,
		ETag:      aws.ToString(output.ETag),
		VersionID: aws.ToString(output.VersionId),
		Parts:     1,
		Duration:  time.Since(startTime),
	}

	if config.ProgressTracker != nil {
		config.ProgressTracker.Update(size, size)
		config.ProgressTracker.Complete()
	}

	return result, nil
}
