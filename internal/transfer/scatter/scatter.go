// Package scatter implements chunked parallel uploads without the multipart
// protocol: each part is written as an independent object.
//
// A payload scattered under logical key "data" becomes objects "data_part_0",
// "data_part_1", ... with 0-based contiguous indices. The gather direction
// lists the part objects, orders them by index, and reassembles the payload.
// There is no server-side finalize step; the part objects are the result.
package scatter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/errors"
	deleteops "github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/operations/delete"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/operations/list"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/pool"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/s3api"
)

// partKeySeparator joins the logical key and the part index.
const partKeySeparator = "_part_"

// Uploader handles scattered (PUT-per-part) upload operations.
type Uploader struct {
	s3Client s3api.S3API
}

// NewUploader creates a new scatter uploader.
func NewUploader(s3Client s3api.S3API) *Uploader {
	return &Uploader{
		s3Client: s3Client,
	}
}

// PartKey returns the object key for part index of the logical key.
func PartKey(key string, index int32) string {
	return fmt.Sprintf("%s%s%d", key, partKeySeparator, index)
}

// Upload streams reader to bucket as independent part objects under key.
//
// On a part failure no further parts are admitted and the returned error
// carries the failing 0-based part index. When config.AbortOnFailure is set,
// part objects already written are deleted before returning.
func (u *Uploader) Upload(
	ctx context.Context,
	bucket, key string,
	reader io.Reader,
	size int64,
	config *blobtypes.UploadConfig,
	startTime time.Time,
) (*blobtypes.ScatterResult, error) {
	partSize := config.PartSize
	if partSize <= 0 {
		partSize = blobtypes.DefaultPartSize
	}
	concurrency := config.Concurrency
	if concurrency <= 0 {
		concurrency = blobtypes.DefaultConcurrency
	}

	bufPool := pool.NewPartPool(partSize)
	sem := make(chan struct{}, concurrency)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		written  []string
		uploaded int64
		firstErr error
	)

	index := int32(0)
	submitted := int32(0)
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
			if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
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

		last := readErr != nil

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
		go func(idx int32, data []byte, length int) {
			defer wg.Done()
			defer func() { <-sem }()
			defer bufPool.Put(data)

			partKey := PartKey(key, idx)
			err := u.putPart(ctx, bucket, partKey, data[:length], config)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = errors.NewPartError(idx, err)
				}
				return
			}
			written = append(written, partKey)
			uploaded += int64(length)
			if config.ProgressTracker != nil {
				config.ProgressTracker.Update(uploaded, size)
			}
		}(index, buf, n)

		index++
		submitted++
		if last {
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		if config.AbortOnFailure && len(written) > 0 {
			deleter := deleteops.New(u.s3Client)
			_, _ = deleter.DeleteBatch(ctx, bucket, written)
		}
		if config.ProgressTracker != nil {
			config.ProgressTracker.Error(firstErr)
		}
		return nil, errors.NewObjectError("scatterUpload", bucket, key, firstErr)
	}

	// Part keys are reported in index order regardless of completion order.
	partKeys := make([]string, submitted)
	for i := int32(0); i < submitted; i++ {
		partKeys[i] = PartKey(key, i)
	}

	if config.ProgressTracker != nil {
		config.ProgressTracker.Complete()
	}

	return &blobtypes.ScatterResult{
		Key:      key,
		PartKeys: partKeys,
		Size:     uploaded,
		Duration: time.Since(startTime),
	}, nil
}

// putPart writes one part object, retrying up to config.PartRetries
// additional times.
func (u *Uploader) putPart(
	ctx context.Context,
	bucket, partKey string,
	data []byte,
	config *blobtypes.UploadConfig,
) error {
	attempts := config.PartRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		input := &s3.PutObjectInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(partKey),
			Body:          bytes.NewReader(data),
			ContentLength: aws.Int64(int64(len(data))),
		}
		if config.ContentType != "" {
			input.ContentType = aws.String(config.ContentType)
		}
		if config.StorageClass != "" {
			input.StorageClass = awstypes.StorageClass(config.StorageClass)
		}

		_, err := u.s3Client.PutObject(ctx, input)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return lastErr
}

// Download reassembles a scattered payload into writer.
//
// It lists the part objects under the logical key's prefix, orders them by
// index, verifies the indices are contiguous from 0, and streams each part
// in order. It returns the number of bytes written.
func (u *Uploader) Download(ctx context.Context, bucket, key string, writer io.Writer) (int64, error) {
	prefix := key + partKeySeparator

	lister := list.New(u.s3Client)
	objects, err := lister.ListAll(ctx, &list.Config{Bucket: bucket, Prefix: prefix})
	if err != nil {
		return 0, errors.NewObjectError("scatterDownload", bucket, key, err)
	}
	if len(objects) == 0 {
		return 0, errors.NewObjectError("scatterDownload", bucket, key, errors.ErrObjectNotFound)
	}

	type part struct {
		index int
		key   string
	}
	parts := make([]part, 0, len(objects))
	for _, obj := range objects {
		suffix := strings.TrimPrefix(obj.Key, prefix)
		idx, convErr := strconv.Atoi(suffix)
		if convErr != nil {
			// Not a part object (for example "data_part_10x"); skip it.
			continue
		}
		parts = append(parts, part{index: idx, key: obj.Key})
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].index < parts[j].index })

	for i, p := range parts {
		if p.index != i {
			return 0, errors.NewObjectError("scatterDownload", bucket, key, errors.ErrInvalidInput).
				WithMessage(fmt.Sprintf("missing part %d", i))
		}
	}

	var total int64
	for _, p := range parts {
		n, err := u.downloadPart(ctx, bucket, p.key, writer)
		if err != nil {
			return total, errors.NewObjectError("scatterDownload", bucket, key,
				errors.NewPartError(int32(p.index), err))
		}
		total += n
	}

	return total, nil
}

// downloadPart streams a single part object into writer.
func (u *Uploader) downloadPart(ctx context.Context, bucket, partKey string, writer io.Writer) (int64, error) {
	output, err := u.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(partKey),
	})
	if err != nil {
		return 0, err
	}
	defer output.Body.Close()

	return io.Copy(writer, output.Body)
}

// Delete removes every part object of a scattered payload.
func (u *Uploader) Delete(ctx context.Context, bucket, key string) (*blobtypes.DeleteResult, error) {
	prefix := key + partKeySeparator

	lister := list.New(u.s3Client)
	objects, err := lister.ListAll(ctx, &list.Config{Bucket: bucket, Prefix: prefix})
	if err != nil {
		return nil, errors.NewObjectError("scatterDelete", bucket, key, err)
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		suffix := strings.TrimPrefix(obj.Key, prefix)
		if _, convErr := strconv.Atoi(suffix); convErr != nil {
			continue
		}
		keys = append(keys, obj.Key)
	}

	deleter := deleteops.New(u.s3Client)
	result, err := deleter.DeleteBatch(ctx, bucket, keys)
	if err != nil {
		return nil, errors.NewObjectError("scatterDelete", bucket, key, err)
	}
	return result, nil
}
