package download

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/s3api"
)

// Downloader handles download operations with progress tracking support.
type Downloader struct {
	s3Client s3api.S3API
}

// New creates a new Downloader instance.
func New(s3Client s3api.S3API) *Downloader {
	return &Downloader{
		s3Client: s3Client,
	}
}

// Download downloads an object and writes it to an io.Writer.
// This provides stream-based downloading with memory-efficient handling of large files.
func (d *Downloader) Download(
	ctx context.Context,
	bucket, key string,
	writer io.Writer,
	config *blobtypes.DownloadConfig,
	startTime time.Time,
) (*blobtypes.DownloadResult, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	if config.RangeSpec != "" {
		input.Range = aws.String(config.RangeSpec)
	}

	output, err := d.s3Client.GetObject(ctx, input)
	if err != nil {
		if isObjectNotFound(err) {
			return nil, errors.NewError("download", errors.ErrObjectNotFound).WithBucket(bucket).WithKey(key)
		}
		return nil, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}
	defer output.Body.Close()

	size := int64(0)
	if output.ContentLength != nil {
		size = *output.ContentLength
	}

	var reader io.Reader = output.Body
	if config.ProgressTracker != nil {
		reader = &progressReader{
			reader:          output.Body,
			progressTracker: config.ProgressTracker,
			total:           size,
			bytesRead:       0,
		}
	}

	bytesWritten, err := io.Copy(writer, reader)
	if err != nil {
		if config.ProgressTracker != nil {
			config.ProgressTracker.Error(err)
		}
		return nil, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}

	// Update size if ContentLength was not provided
	if size == 0 {
		size = bytesWritten
	}

	if config.ProgressTracker != nil {
		config.ProgressTracker.Update(bytesWritten, size)
		config.ProgressTracker.Complete()
	}

	result := &blobtypes.DownloadResult{
		Key:       key,
		Size:      size,
		ETag:      aws.ToString(output.ETag),
		VersionID: aws.ToString(output.VersionId),
		Duration:  time.Since(startTime),
	}

	return result, nil
}

// DownloadFile downloads an object to a local file.
// The file will be created if it doesn't exist, or truncated if it does.
func (d *Downloader) DownloadFile(
	ctx context.Context,
	bucket, key, filepath string,
	config *blobtypes.DownloadConfig,
	startTime time.Time,
) (*blobtypes.DownloadResult, error) {
	file, err := os.Create(filepath)
	if err != nil {
		return nil, errors.NewError("downloadFile", err).WithBucket(bucket).WithKey(key)
	}
	defer file.Close()

	return d.Download(ctx, bucket, key, file, config, startTime)
}

// Get downloads an entire object and returns it as a byte slice.
// This is a convenience method for small objects that can fit in memory.
func (d *Downloader) Get(
	ctx context.Context,
	bucket, key string,
	config *blobtypes.DownloadConfig,
	startTime time.Time,
) ([]byte, error) {
	var buf bytes.Buffer
	_, err := d.Download(ctx, bucket, key, &buf, config, startTime)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// progressReader wraps an io.Reader to track progress
type progressReader struct {
	reader          io.Reader
	progressTracker blobtypes.ProgressTracker
	total           int64
	bytesRead       int64
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.bytesRead += int64(n)
		if pr.progressTracker != nil {
			pr.progressTracker.Update(pr.bytesRead, pr.total)
		}
	}
	//nolint:wrapcheck // io.Reader interface contract - error comes from underlying reader
	return n, err
}

// isObjectNotFound checks if an error indicates that an object was not found.
func isObjectNotFound(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "NoSuchKey") || strings.Contains(errStr, "NotFound")
}
