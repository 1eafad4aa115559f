package blobstore

import (
	"context"
	"io"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/operations/download"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/validation"
)

// Download downloads an object and writes it to an io.Writer.
// It provides stream-based downloading with memory-efficient handling of large files.
// Progress tracking and range requests can be configured via DownloadOption parameters.
//
// Returns:
//   - *DownloadResult: Contains the downloaded object's metadata and duration
//   - error: Returns an error if the download fails
//
// Example:
//
//	file, err := os.Create("downloaded.txt")
//	if err != nil {
//	    return err
//	}
//	defer file.Close()
//
//	result, err := client.Download(ctx, "my-bucket", "data.txt", file,
//	    blobstore.WithDownloadProgress(progressTracker),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Downloaded %d bytes in %v\n", result.Size, result.Duration)
func (c *Client) Download(
	ctx context.Context,
	bucket, key string,
	writer io.Writer,
	opts ...blobtypes.DownloadOption,
) (*blobtypes.DownloadResult, error) {
	if bucket == "" {
		return nil, errors.NewError("download", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, errors.NewError("download", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if writer == nil {
		return nil, errors.NewError("download", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("writer cannot be nil")
	}

	config := &blobtypes.DownloadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}

	startTime := time.Now()

	downloader := download.New(c.s3Client)
	internalConfig := &blobtypes.DownloadConfig{
		ProgressTracker: config.ProgressTracker,
		RangeSpec:       config.RangeSpec,
	}

	result, err := downloader.Download(ctx, bucket, key, writer, internalConfig, startTime)
	if err != nil {
		return nil, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}

	return result, nil
}

// DownloadFile downloads an object to a local file.
// The file will be created if it doesn't exist, or truncated if it does.
// The client's filesystem abstraction is used, so in-memory filesystems work.
//
// Example:
//
//	result, err := client.DownloadFile(ctx, "my-bucket", "docs/report.pdf", "/tmp/report.pdf")
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Downloaded %d bytes in %v\n", result.Size, result.Duration)
func (c *Client) DownloadFile(
	ctx context.Context,
	bucket, key, filepath string,
	opts ...blobtypes.DownloadOption,
) (*blobtypes.DownloadResult, error) {
	if bucket == "" {
		return nil, errors.NewError("downloadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, errors.NewError("downloadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if filepath == "" {
		return nil, errors.NewError("downloadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("filepath cannot be empty")
	}

	file, err := c.filesystem().Create(filepath)
	if err != nil {
		return nil, errors.NewError("downloadFile", err).WithBucket(bucket).WithKey(key)
	}
	defer file.Close()

	return c.Download(ctx, bucket, key, file, opts...)
}

// Get downloads an entire object and returns it as a byte slice.
// This is a convenience method for small objects that can fit in memory.
// For large objects, use Download or DownloadFile instead.
//
// Example:
//
//	data, err := client.Get(ctx, "my-bucket", "config.json")
//	if err != nil {
//	    return err
//	}
//	var config Config
//	if err := json.Unmarshal(data, &config); err != nil {
//	    return err
//	}
func (c *Client) Get(
	ctx context.Context,
	bucket, key string,
	opts ...blobtypes.DownloadOption,
) ([]byte, error) {
	if bucket == "" {
		return nil, errors.NewError("get", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, errors.NewError("get", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	config := &blobtypes.DownloadOptionConfig{}
	for _, opt := range opts {
		opt(config)
	}

	startTime := time.Now()

	downloader := download.New(c.s3Client)
	internalConfig := &blobtypes.DownloadConfig{
		ProgressTracker: config.ProgressTracker,
		RangeSpec:       config.RangeSpec,
	}

	data, err := downloader.Get(ctx, bucket, key, internalConfig, startTime)
	if err != nil {
		return nil, errors.NewError("get", err).WithBucket(bucket).WithKey(key)
	}

	return data, nil
}
