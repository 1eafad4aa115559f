package testutil

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/internal/s3api"
)

// InMemoryStore is an in-memory S3API implementation backing end-to-end
// tests. It keeps full object bodies so tests can verify byte-for-byte
// reassembly, and it rejects completion manifests whose part numbers are
// not strictly ascending, mirroring the real service.
type InMemoryStore struct {
	mu       sync.Mutex
	objects  map[string]map[string][]byte // bucket -> key -> body
	uploads  map[string]*uploadSession
	nextID   int
	aborted  int
	finished int
}

type uploadSession struct {
	bucket string
	key    string
	parts  map[int32][]byte
	etags  map[int32]string
}

// NewInMemoryStore creates an empty store with the given buckets.
func NewInMemoryStore(buckets ...string) *InMemoryStore {
	s := &InMemoryStore{
		objects: make(map[string]map[string][]byte),
		uploads: make(map[string]*uploadSession),
	}
	for _, b := range buckets {
		s.objects[b] = make(map[string][]byte)
	}
	return s
}

// Object returns a stored object body.
func (s *InMemoryStore) Object(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.objects[bucket]
	if !ok {
		return nil, false
	}
	data, ok := b[key]
	return data, ok
}

// Keys returns the sorted object keys of a bucket.
func (s *InMemoryStore) Keys(bucket string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects[bucket]))
	for k := range s.objects[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ActiveUploads returns the number of open multipart sessions.
func (s *InMemoryStore) ActiveUploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

// Aborts returns how many multipart sessions were aborted.
func (s *InMemoryStore) Aborts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// Completions returns how many multipart sessions were finalized.
func (s *InMemoryStore) Completions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

func etagFor(data []byte) string {
	return fmt.Sprintf("%q", fmt.Sprintf("%x", md5.Sum(data)))
}

// PutObject stores an object body.
func (s *InMemoryStore) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	var data []byte
	if params.Body != nil {
		var err error
		data, err = io.ReadAll(params.Body)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := aws.ToString(params.Bucket)
	if _, ok := s.objects[bucket]; !ok {
		return nil, &awstypes.NoSuchBucket{}
	}
	s.objects[bucket][aws.ToString(params.Key)] = data

	return &s3.PutObjectOutput{ETag: aws.String(etagFor(data))}, nil
}

// GetObject returns a stored object body.
func (s *InMemoryStore) GetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	optFns ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.objects[aws.ToString(params.Bucket)]
	if !ok {
		return nil, &awstypes.NoSuchBucket{}
	}
	data, ok := bucket[aws.ToString(params.Key)]
	if !ok {
		return nil, &awstypes.NoSuchKey{}
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
		ETag:          aws.String(etagFor(data)),
	}, nil
}

// HeadObject returns object metadata.
func (s *InMemoryStore) HeadObject(
	ctx context.Context,
	params *s3.HeadObjectInput,
	optFns ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.objects[aws.ToString(params.Bucket)]
	if !ok {
		return nil, &awstypes.NotFound{}
	}
	data, ok := bucket[aws.ToString(params.Key)]
	if !ok {
		return nil, &awstypes.NotFound{}
	}

	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(data))),
		ETag:          aws.String(etagFor(data)),
	}, nil
}

// DeleteObject removes an object.
func (s *InMemoryStore) DeleteObject(
	ctx context.Context,
	params *s3.DeleteObjectInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket, ok := s.objects[aws.ToString(params.Bucket)]; ok {
		delete(bucket, aws.ToString(params.Key))
	}
	return &s3.DeleteObjectOutput{}, nil
}

// DeleteObjects removes a batch of objects.
func (s *InMemoryStore) DeleteObjects(
	ctx context.Context,
	params *s3.DeleteObjectsInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteObjectsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.objects[aws.ToString(params.Bucket)]

	output := &s3.DeleteObjectsOutput{}
	for _, obj := range params.Delete.Objects {
		key := aws.ToString(obj.Key)
		if bucket != nil {
			delete(bucket, key)
		}
		output.Deleted = append(output.Deleted, awstypes.DeletedObject{Key: aws.String(key)})
	}
	return output, nil
}

// ListObjectsV2 lists objects in lexicographic key order with pagination.
func (s *InMemoryStore) ListObjectsV2(
	ctx context.Context,
	params *s3.ListObjectsV2Input,
	optFns ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.objects[aws.ToString(params.Bucket)]
	if !ok {
		return nil, &awstypes.NoSuchBucket{}
	}

	prefix := aws.ToString(params.Prefix)
	keys := make([]string, 0, len(bucket))
	for k := range bucket {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	offset := 0
	if tok := aws.ToString(params.ContinuationToken); tok != "" {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid continuation token %q", tok)
		}
		offset = n
	}

	pageSize := int(aws.ToInt32(params.MaxKeys))
	if pageSize <= 0 {
		pageSize = 1000
	}

	end := offset + pageSize
	truncated := end < len(keys)
	if end > len(keys) {
		end = len(keys)
	}

	output := &s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(truncated),
		KeyCount:    aws.Int32(int32(end - offset)),
	}
	if truncated {
		output.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	for _, k := range keys[offset:end] {
		output.Contents = append(output.Contents, awstypes.Object{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(bucket[k]))),
			ETag: aws.String(etagFor(bucket[k])),
		})
	}
	return output, nil
}

// CreateMultipartUpload opens a new upload session.
func (s *InMemoryStore) CreateMultipartUpload(
	ctx context.Context,
	params *s3.CreateMultipartUploadInput,
	optFns ...func(*s3.Options),
) (*s3.CreateMultipartUploadOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := aws.ToString(params.Bucket)
	if _, ok := s.objects[bucket]; !ok {
		return nil, &awstypes.NoSuchBucket{}
	}

	s.nextID++
	id := "upload-" + strconv.Itoa(s.nextID)
	s.uploads[id] = &uploadSession{
		bucket: bucket,
		key:    aws.ToString(params.Key),
		parts:  make(map[int32][]byte),
		etags:  make(map[int32]string),
	}

	return &s3.CreateMultipartUploadOutput{UploadId: aws.String(id)}, nil
}

// UploadPart stores one part of an open session.
func (s *InMemoryStore) UploadPart(
	ctx context.Context,
	params *s3.UploadPartInput,
	optFns ...func(*s3.Options),
) (*s3.UploadPartOutput, error) {
	var data []byte
	if params.Body != nil {
		var err error
		data, err = io.ReadAll(params.Body)
		if err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.uploads[aws.ToString(params.UploadId)]
	if !ok {
		return nil, fmt.Errorf("NoSuchUpload: %s", aws.ToString(params.UploadId))
	}

	num := aws.ToInt32(params.PartNumber)
	etag := etagFor(data)
	session.parts[num] = data
	session.etags[num] = etag

	return &s3.UploadPartOutput{ETag: aws.String(etag)}, nil
}

// CompleteMultipartUpload finalizes a session. The manifest must list parts
// in strictly ascending part-number order with matching ETags.
func (s *InMemoryStore) CompleteMultipartUpload(
	ctx context.Context,
	params *s3.CompleteMultipartUploadInput,
	optFns ...func(*s3.Options),
) (*s3.CompleteMultipartUploadOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := aws.ToString(params.UploadId)
	session, ok := s.uploads[id]
	if !ok {
		return nil, fmt.Errorf("NoSuchUpload: %s", id)
	}

	var body []byte
	prev := int32(0)
	for _, part := range params.MultipartUpload.Parts {
		num := aws.ToInt32(part.PartNumber)
		if num <= prev {
			return nil, fmt.Errorf("InvalidPartOrder: part %d after part %d", num, prev)
		}
		prev = num

		data, ok := session.parts[num]
		if !ok {
			return nil, fmt.Errorf("InvalidPart: part %d was not uploaded", num)
		}
		if aws.ToString(part.ETag) != session.etags[num] {
			return nil, fmt.Errorf("InvalidPart: part %d etag mismatch", num)
		}
		body = append(body, data...)
	}

	s.objects[session.bucket][session.key] = body
	delete(s.uploads, id)
	s.finished++

	return &s3.CompleteMultipartUploadOutput{ETag: aws.String(etagFor(body))}, nil
}

// AbortMultipartUpload discards a session and its parts.
func (s *InMemoryStore) AbortMultipartUpload(
	ctx context.Context,
	params *s3.AbortMultipartUploadInput,
	optFns ...func(*s3.Options),
) (*s3.AbortMultipartUploadOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := aws.ToString(params.UploadId)
	if _, ok := s.uploads[id]; ok {
		delete(s.uploads, id)
		s.aborted++
	}
	return &s3.AbortMultipartUploadOutput{}, nil
}

// CreateBucket creates a bucket.
func (s *InMemoryStore) CreateBucket(
	ctx context.Context,
	params *s3.CreateBucketInput,
	optFns ...func(*s3.Options),
) (*s3.CreateBucketOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := aws.ToString(params.Bucket)
	if _, ok := s.objects[bucket]; ok {
		return nil, &awstypes.BucketAlreadyExists{}
	}
	s.objects[bucket] = make(map[string][]byte)
	return &s3.CreateBucketOutput{}, nil
}

// DeleteBucket removes an empty bucket.
func (s *InMemoryStore) DeleteBucket(
	ctx context.Context,
	params *s3.DeleteBucketInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteBucketOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := aws.ToString(params.Bucket)
	contents, ok := s.objects[bucket]
	if !ok {
		return nil, &awstypes.NoSuchBucket{}
	}
	if len(contents) > 0 {
		return nil, fmt.Errorf("BucketNotEmpty: %s", bucket)
	}
	delete(s.objects, bucket)
	return &s3.DeleteBucketOutput{}, nil
}

// Ensure InMemoryStore implements s3api.S3API interface
var _ s3api.S3API = (*InMemoryStore)(nil)
