package blobstore

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/operations/upload"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/validation"
)

const (
	// DefaultContentType is the default content type used when content type detection fails
	DefaultContentType = "application/octet-stream"
)

// Upload uploads data from an io.Reader.
// Because the size is unknown up front, the payload is streamed as a chunked
// multipart upload: the reader is consumed sequentially into fixed-size parts
// and the parts are uploaded with a bounded number in flight.
//
// Returns:
//   - *UploadResult: Contains the uploaded object's metadata including ETag,
//     part count, and duration
//   - error: Returns an error if the upload fails
//
// On a part failure the error identifies the failing part (see
// errors.FailedPart) and, unless WithKeepPartsOnFailure was given, the
// multipart session is aborted so no partial object remains.
//
// Example:
//
//	file, err := os.Open("data.txt")
//	if err != nil {
//	    return err
//	}
//	defer file.Close()
//
//	result, err := client.Upload(ctx, "my-bucket", "data.txt", file,
//	    blobstore.WithContentType("text/plain"),
//	    blobstore.WithUploadConcurrency(8),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Uploaded %s in %d parts\n", result.Key, result.Parts)
func (c *Client) Upload(
	ctx context.Context,
	bucket, key string,
	reader io.Reader,
	opts ...blobtypes.UploadOption,
) (*blobtypes.UploadResult, error) {
	if bucket == "" {
		return nil, errors.NewError("upload", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, errors.NewError("upload", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if reader == nil {
		return nil, errors.NewError("upload", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("reader cannot be nil")
	}

	config := c.resolveUploadConfig(key, opts)
	if err := validation.ValidatePartSize(config.PartSize); err != nil {
		return nil, errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
	}
	if err := validation.ValidateConcurrency(config.Concurrency); err != nil {
		return nil, errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
	}
	startTime := time.Now()

	uploader := upload.New(c.s3Client)
	result, err := uploader.Upload(ctx, bucket, key, reader, config, startTime)
	if err != nil {
		return nil, errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
	}

	return result, nil
}

// UploadFile uploads a file from the local filesystem.
// It automatically switches to a chunked multipart upload for files at or
// above the multipart threshold (100MB); smaller files use a single PUT.
//
// Returns:
//   - *UploadResult: Contains the uploaded object's metadata including ETag and duration
//   - error: Returns an error if the upload fails
//
// Example:
//
//	result, err := client.UploadFile(ctx, "my-bucket", "docs/report.pdf", "/path/to/report.pdf",
//	    blobstore.WithProgress(progressTracker),
//	    blobstore.WithMetadata(map[string]string{
//	        "Author": "John Doe",
//	    }),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Uploaded %d bytes in %v\n", result.Size, result.Duration)
func (c *Client) UploadFile(
	ctx context.Context,
	bucket, key, filepath string,
	opts ...blobtypes.UploadOption,
) (*blobtypes.UploadResult, error) {
	if bucket == "" {
		return nil, errors.NewError("uploadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, errors.NewError("uploadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}
	if filepath == "" {
		return nil, errors.NewError("uploadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("filepath cannot be empty")
	}

	fsys := c.filesystem()

	// Check if file exists and get its info
	info, err := fsys.Stat(filepath)
	if err != nil {
		return nil, errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
	}
	if info.IsDir() {
		return nil, errors.NewError("uploadFile", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("filepath points to a directory, not a file")
	}

	config := c.resolveUploadConfig(filepath, opts)
	if err := validation.ValidateConcurrency(config.Concurrency); err != nil {
		return nil, errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
	}
	// Part-size limits only apply once the file is large enough to go multipart.
	if info.Size() >= blobtypes.MultipartThreshold {
		if err := validation.ValidatePartSize(config.PartSize); err != nil {
			return nil, errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
		}
		if err := validation.ValidatePartCount(info.Size(), config.PartSize); err != nil {
			return nil, errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
		}
	}

	file, err := fsys.Open(filepath)
	if err != nil {
		return nil, errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
	}
	defer file.Close()

	size := info.Size()
	startTime := time.Now()

	uploader := upload.New(c.s3Client)
	result, err := uploader.UploadKnownSize(ctx, bucket, key, file, size, config, startTime)
	if err != nil {
		return nil, errors.NewError("uploadFile", err).WithBucket(bucket).WithKey(key)
	}

	return result, nil
}

// Put uploads byte data with a single PUT request.
// This is a convenience method for small amounts of data that fit in memory.
//
// Ideal for uploading configuration files, JSON data, or other small objects
// directly from memory without needing to create intermediate files.
//
// Example:
//
//	data := []byte(`{"config": "value"}`)
//	err := client.Put(ctx, "my-bucket", "config.json", data,
//	    blobstore.WithContentType("application/json"),
//	)
//	if err != nil {
//	    return err
//	}
func (c *Client) Put(
	ctx context.Context,
	bucket, key string,
	data []byte,
	opts ...blobtypes.UploadOption,
) error {
	if bucket == "" {
		return errors.NewError("put", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return errors.NewError("put", errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	config := c.resolveUploadConfig(key, opts)
	startTime := time.Now()

	uploader := upload.New(c.s3Client)
	_, err := uploader.UploadSimple(ctx, bucket, key, data, config, startTime)
	if err != nil {
		return errors.NewError("put", err).WithBucket(bucket).WithKey(key)
	}

	return nil
}

// resolveUploadConfig applies the client-level defaults and the per-call
// options, then converts the result to the internal transfer config.
// path is used for content type detection when none was set explicitly.
func (c *Client) resolveUploadConfig(path string, opts []blobtypes.UploadOption) *blobtypes.UploadConfig {
	optionCfg := &blobtypes.UploadOptionConfig{
		ContentType:  DefaultContentType,
		StorageClass: blobtypes.StorageClassStandard,
		Metadata:     make(map[string]string),
		PartSize:     c.clientCfg.PartSize,
		Concurrency:  c.clientCfg.Concurrency,
	}
	for _, opt := range opts {
		opt(optionCfg)
	}

	if optionCfg.ContentType == DefaultContentType {
		optionCfg.ContentType = c.detectContentType(path)
	}

	return &blobtypes.UploadConfig{
		ContentType:     optionCfg.ContentType,
		Metadata:        validation.SanitizeMetadata(optionCfg.Metadata),
		StorageClass:    optionCfg.StorageClass,
		ProgressTracker: optionCfg.ProgressTracker,
		PartSize:        optionCfg.PartSize,
		Concurrency:     optionCfg.Concurrency,
		PartRetries:     optionCfg.PartRetries,
		AbortOnFailure:  !optionCfg.KeepPartsOnFailure,
	}
}

// detectContentType determines the content type using mimetype where possible,
// falling back to extension-based lookup when the path is not a local file.
func (c *Client) detectContentType(path string) string {
	fsys := c.filesystem()

	// If the path points to an existing local file, prefer sniffing its content.
	info, err := fsys.Stat(path)
	if err != nil || info.IsDir() {
		return c.detectContentTypeFromExtension(path)
	}

	file, err := fsys.Open(path)
	if err != nil {
		return c.detectContentTypeFromExtension(path)
	}
	defer file.Close()

	// Read first 512 bytes for content detection
	buf := make([]byte, 512)
	n, _ := file.Read(buf)
	if n > 0 {
		if mt := mimetype.Detect(buf[:n]); mt != nil {
			return mt.String()
		}
	}

	return c.detectContentTypeFromExtension(path)
}

// detectContentTypeFromExtension detects content type from file extension
func (c *Client) detectContentTypeFromExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return DefaultContentType
}
