package blobstore

import (
	"context"
	"io"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/transfer/scatter"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/validation"
)

// UploadScattered uploads data from an io.Reader as independent part objects.
//
// Unlike Upload, which uses the S3 multipart protocol, each part is written
// with its own PUT at key "<key>_part_<i>" with 0-based contiguous indices.
// There is no finalize step; the part objects are immediately visible and the
// payload is reassembled with DownloadScattered. This suits stores where the
// multipart protocol is unavailable or where parts must be readable as they
// land.
//
// On a part failure the error identifies the failing part index (see
// errors.FailedPart) and, unless WithKeepPartsOnFailure was given, part
// objects already written are deleted.
//
// Example:
//
//	result, err := client.UploadScattered(ctx, "my-bucket", "bulk/data.bin", reader,
//	    blobstore.WithUploadPartSize(16*1024*1024),
//	    blobstore.WithUploadConcurrency(10),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Scattered into %d part objects\n", len(result.PartKeys))
func (c *Client) UploadScattered(
	ctx context.Context,
	bucket, key string,
	reader io.Reader,
	opts ...blobtypes.UploadOption,
) (*blobtypes.ScatterResult, error) {
	if bucket == "" {
		return nil, errors.NewError("uploadScattered", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, errors.NewError("uploadScattered", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if reader == nil {
		return nil, errors.NewError("uploadScattered", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("reader cannot be nil")
	}

	config := c.resolveUploadConfig(key, opts)
	// Scattered parts are plain objects, so the multipart minimum part size
	// does not apply; only the concurrency ceiling is checked.
	if err := validation.ValidateConcurrency(config.Concurrency); err != nil {
		return nil, errors.NewError("uploadScattered", err).WithBucket(bucket).WithKey(key)
	}
	startTime := time.Now()

	uploader := scatter.NewUploader(c.s3Client)
	result, err := uploader.Upload(ctx, bucket, key, reader, -1, config, startTime)
	if err != nil {
		return nil, errors.NewError("uploadScattered", err).WithBucket(bucket).WithKey(key)
	}

	return result, nil
}

// DownloadScattered reassembles a scattered payload and writes it to writer.
//
// It lists the part objects under "<key>_part_", orders them by index,
// verifies the indices are contiguous from 0, and streams each part in order.
// Keys under the same prefix whose suffix is not a bare index are ignored.
//
// Returns the reassembled payload's metadata, including the total size.
func (c *Client) DownloadScattered(
	ctx context.Context,
	bucket, key string,
	writer io.Writer,
) (*blobtypes.DownloadResult, error) {
	if bucket == "" {
		return nil, errors.NewError("downloadScattered", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, errors.NewError("downloadScattered", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if writer == nil {
		return nil, errors.NewError("downloadScattered", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("writer cannot be nil")
	}

	startTime := time.Now()

	uploader := scatter.NewUploader(c.s3Client)
	size, err := uploader.Download(ctx, bucket, key, writer)
	if err != nil {
		return nil, errors.NewError("downloadScattered", err).WithBucket(bucket).WithKey(key)
	}

	return &blobtypes.DownloadResult{
		Key:      key,
		Size:     size,
		Duration: time.Since(startTime),
	}, nil
}

// DeleteScattered removes every part object of a scattered payload.
// Deleting a key that was never scattered is not an error.
func (c *Client) DeleteScattered(ctx context.Context, bucket, key string) (*blobtypes.DeleteResult, error) {
	if bucket == "" {
		return nil, errors.NewError("deleteScattered", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, errors.NewError("deleteScattered", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	uploader := scatter.NewUploader(c.s3Client)
	result, err := uploader.Delete(ctx, bucket, key)
	if err != nil {
		return nil, errors.NewError("deleteScattered", err).WithBucket(bucket).WithKey(key)
	}

	return result, nil
}
