// Package multipart implements chunked parallel uploads over the S3
// multipart protocol.
//
// The source is read sequentially by the coordinating goroutine and split
// into fixed-size parts. Each part is handed to its own goroutine, with a
// semaphore bounding the number of parts in flight. Completed-part metadata
// is collected under a mutex in completion order and sorted by part number
// before the upload is finalized. Part numbers are 1-based and contiguous.
package multipart

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/errors"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/s3api"
)

// Uploader handles multipart upload operations.
type Uploader struct {
	s3Client s3api.S3API
}

// NewUploader creates a new multipart uploader.
func NewUploader(s3Client s3api.S3API) *Uploader {
	return &Uploader{
		s3Client: s3Client,
	}
}

// Upload streams reader to bucket/key as a multipart upload.
//
// size is advisory and may be -1 when unknown; the reader is consumed until
// EOF either way. On a part failure no further parts are admitted, the
// session is aborted when config.AbortOnFailure is set, and the returned
// error carries the failing part number (extractable with errors.FailedPart).
func (u *Uploader) Upload(
	ctx context.Context,
	bucket, key string,
	reader io.Reader,
	size int64,
	config *blobtypes.UploadConfig,
	startTime time.Time,
) (*blobtypes.UploadResult, error) {
	partSize := u.getPartSize(config.PartSize)
	concurrency := u.getConcurrency(config.Concurrency)

	uploadID, err := u.createMultipartUpload(ctx, bucket, key, config)
	if err != nil {
		return nil, err
	}

	completed, uploaded, err := u.uploadParts(ctx, bucket, key, uploadID, reader, size, partSize, concurrency, config)
	if err != nil {
		if config.AbortOnFailure {
			u.abortMultipartUpload(ctx, bucket, key, uploadID)
		}
		if config.ProgressTracker != nil {
			config.ProgressTracker.Error(err)
		}
		return nil, errors.NewObjectError("uploadPart", bucket, key, err)
	}

	result, err := u.completeMultipartUpload(ctx, bucket, key, uploadID, completed, startTime)
	if err != nil {
		return nil, err
	}
	result.Size = uploaded
	result.Parts = len(completed)

	if config.ProgressTracker != nil {
		config.ProgressTracker.Complete()
	}
	return result, nil
}

// getPartSize returns the configured part size or the default.
func (u *Uploader) getPartSize(configuredSize int64) int64 {
	if configuredSize > 0 {
		return configuredSize
	}
	return blobtypes.DefaultPartSize
}

// getConcurrency returns the configured concurrency level or the default.
func (u *Uploader) getConcurrency(configured int) int {
	if configured > 0 {
		return configured
	}
	return blobtypes.DefaultConcurrency
}

// createMultipartUpload opens a new upload session.
func (u *Uploader) createMultipartUpload(
	ctx context.Context,
	bucket, key string,
	config *blobtypes.UploadConfig,
) (string, error) {
	input := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
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

	output, err := u.s3Client.CreateMultipartUpload(ctx, input)
	if err != nil {
		return "", errors.NewError("createMultipartUpload", err).WithBucket(bucket).WithKey(key)
	}

	return aws.ToString(output.UploadId), nil
}

// uploadParts reads the source sequentially and uploads parts with at most
// concurrency parts in flight. It returns the completed-part manifest sorted
// ascending by part number, plus the total bytes uploaded.
func (u *Uploader) uploadParts(
	ctx context.Context,
	bucket, key, uploadID string,
	reader io.Reader,
	size, partSize int64,
	concurrency int,
	config *blobtypes.UploadConfig,
) ([]awstypes.CompletedPart, int64, error) {
	bufPool := pool.NewPartPool(partSize)
	sem := make(chan struct{}, concurrency)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		completed []awstypes.CompletedPart
		uploaded  int64
		firstErr  error
	)

	// The source is read only by this goroutine; workers own their buffer
	// until they return it to the pool.
	partNumber := int32(0)
	for {
		mu.Lock()
		failed := firstErr != nil
		mu.Unlock()
		if failed {
			break
		}

		buf := bufPool.Get()
		n, readErr := io.ReadFull(reader, buf)
		if n == 0 {
			bufPool.Put(buf)
			if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
				break
			}
			if readErr != nil {
				mu.Lock()
				firstErr = readErr
				mu.Unlock()
			}
			break
		}
		if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
			bufPool.Put(buf)
			mu.Lock()
			firstErr = readErr
			mu.Unlock()
			break
		}

		partNumber++
		last := readErr != nil // short read or clean EOF means final part

		// A part may fail while this goroutine is blocked on the semaphore;
		// re-check before admitting the part just read.
		sem <- struct{}{}
		mu.Lock()
		failed = firstErr != nil
		mu.Unlock()
		if failed {
			<-sem
			bufPool.Put(buf)
			break
		}
		wg.Add(1)
		go func(num int32, data []byte, length int) {
			defer wg.Done()
			defer func() { <-sem }()
			defer bufPool.Put(data)

			etag, err := u.uploadPart(ctx, bucket, key, uploadID, num, data[:length], config)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = errors.NewPartError(num, err)
				}
				return
			}
			completed = append(completed, awstypes.CompletedPart{
				ETag:       aws.String(etag),
				PartNumber: aws.Int32(num),
			})
			uploaded += int64(length)
			if config.ProgressTracker != nil {
				config.ProgressTracker.Update(uploaded, size)
			}
		}(partNumber, buf, n)

		if last {
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return nil, 0, firstErr
	}

	// An empty source still needs one part for the session to be completable.
	if partNumber == 0 {
		etag, err := u.uploadPart(ctx, bucket, key, uploadID, 1, nil, config)
		if err != nil {
			return nil, 0, errors.NewPartError(1, err)
		}
		completed = append(completed, awstypes.CompletedPart{
			ETag:       aws.String(etag),
			PartNumber: aws.Int32(1),
		})
	}

	// Parts finish in arbitrary order; the finalize manifest must be
	// ascending by part number.
	sort.Slice(completed, func(i, j int) bool {
		return aws.ToInt32(completed[i].PartNumber) < aws.ToInt32(completed[j].PartNumber)
	})

	return completed, uploaded, nil
}

// uploadPart uploads a single part, retrying up to config.PartRetries
// additional times. The default of zero retries preserves fail-fast behavior.
func (u *Uploader) uploadPart(
	ctx context.Context,
	bucket, key, uploadID string,
	partNumber int32,
	data []byte,
	config *blobtypes.UploadConfig,
) (string, error) {
	attempts := config.PartRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		input := &s3.UploadPartInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(key),
			UploadId:      aws.String(uploadID),
			PartNumber:    aws.Int32(partNumber),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
		}

		output, err := u.s3Client.UploadPart(ctx, input)
		if err == nil {
			return aws.ToString(output.ETag), nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return "", lastErr
}

// completeMultipartUpload finalizes the upload session.
func (u *Uploader) completeMultipartUpload(
	ctx context.Context,
	bucket, key, uploadID string,
	parts []awstypes.CompletedPart,
	startTime time.Time,
) (*blobtypes.UploadResult, error) {
	input := &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &awstypes.CompletedMultipartUpload{
			Parts: parts,
		},
	}

	output, err := u.s3Client.CompleteMultipartUpload(ctx, input)
	if err != nil {
		u.abortMultipartUpload(ctx, bucket, key, uploadID)
		return nil, errors.NewError("completeMultipartUpload", err).WithBucket(bucket).WithKey(key)
	}

	result := &blobtypes.UploadResult{
		Key:       key,
		ETag:      aws.ToString(output.ETag),
		VersionID: aws.ToString(output.VersionId),
		Duration:  time.Since(startTime),
	}

	return result, nil
}

// abortMultipartUpload releases a failed upload's parts server-side.
func (u *Uploader) abortMultipartUpload(ctx context.Context, bucket, key, uploadID string) {
	input := &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	}
	// Ignore errors during cleanup
	_, _ = u.s3Client.AbortMultipartUpload(ctx, input)
}
