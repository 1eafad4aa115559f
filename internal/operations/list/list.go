package list

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
)

// S3Interface defines the S3 operations we need.
type S3Interface interface {
	ListObjectsV2(
		ctx context.Context,
		input *s3.ListObjectsV2Input,
		opts ...func(*s3.Options),
	) (*s3.ListObjectsV2Output, error)
}

// Lister handles listing of objects.
type Lister struct {
	client S3Interface
}

// New creates a new Lister.
func New(client S3Interface) *Lister {
	return &Lister{
		client: client,
	}
}

// Config holds configuration for list operations.
type Config struct {
	Bucket            string
	Prefix            string
	Delimiter         string
	MaxKeys           int32
	ContinuationToken string
}

// Result represents the result of a list operation.
type Result struct {
	Objects           []blobtypes.Object
	CommonPrefixes    []string
	IsTruncated       bool
	ContinuationToken string
	KeyCount          int
}

// List performs a single page listing.
func (l *Lister) List(ctx context.Context, config *Config) (*Result, error) {
	pageSize := config.MaxKeys
	if pageSize == 0 || pageSize > 1000 {
		pageSize = 1000 // Maximum allowed by S3
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(config.Bucket),
		Prefix:  aws.String(config.Prefix),
		MaxKeys: aws.Int32(pageSize),
	}

	if config.Delimiter != "" {
		input.Delimiter = aws.String(config.Delimiter)
	}
	if config.ContinuationToken != "" {
		input.ContinuationToken = aws.String(config.ContinuationToken)
	}

	output, err := l.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}

	return l.convertOutput(output), nil
}

// ListAll walks every page under the prefix and returns the combined
// object set in the order the store yields it (lexicographic by key).
func (l *Lister) ListAll(ctx context.Context, config *Config) ([]blobtypes.Object, error) {
	var objects []blobtypes.Object

	pageConfig := *config
	for {
		page, err := l.List(ctx, &pageConfig)
		if err != nil {
			return nil, err
		}
		objects = append(objects, page.Objects...)

		if !page.IsTruncated || page.ContinuationToken == "" {
			break
		}
		pageConfig.ContinuationToken = page.ContinuationToken
	}

	return objects, nil
}

// convertOutput converts S3 output to our Result type.
func (l *Lister) convertOutput(output *s3.ListObjectsV2Output) *Result {
	result := &Result{
		Objects:        make([]blobtypes.Object, 0, len(output.Contents)),
		CommonPrefixes: make([]string, 0, len(output.CommonPrefixes)),
		IsTruncated:    aws.ToBool(output.IsTruncated),
		KeyCount:       int(aws.ToInt32(output.KeyCount)),
	}

	if output.NextContinuationToken != nil {
		result.ContinuationToken = *output.NextContinuationToken
	}

	for _, obj := range output.Contents {
		result.Objects = append(result.Objects, blobtypes.Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         aws.ToString(obj.ETag),
			StorageClass: string(obj.StorageClass),
		})
	}

	for _, prefix := range output.CommonPrefixes {
		result.CommonPrefixes = append(result.CommonPrefixes, aws.ToString(prefix.Prefix))
	}

	return result
}
