package blobstore

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
)

// WithRegion sets the AWS region for operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom endpoint URL.
// This is required for S3-compatible services such as MinIO or LocalStack.
func WithEndpoint(endpoint string) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithStaticCredentials sets explicit credentials instead of the default
// credential chain. sessionToken may be empty.
func WithStaticCredentials(accessKey, secretKey, sessionToken string) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.AccessKey = accessKey
		c.SecretKey = secretKey
		c.SessionToken = sessionToken
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed operations.
// Default is 3 retries. Set to 0 to disable retries.
func WithMaxRetries(maxRetries int) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the timeout for individual operations.
// Default is no timeout (0). Values should be positive durations.
func WithTimeout(timeout time.Duration) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithConcurrency sets the default ceiling on in-flight part transfers.
// This affects chunked uploads and batch operations.
// Default is 5 concurrent operations.
func WithConcurrency(concurrency int) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithPartSize sets the default part size for chunked uploads.
// Default is 8MB. Must be at least 5MB for S3 multipart uploads.
func WithPartSize(partSize int64) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
// Default is false (uses virtual-hosted style).
func WithForcePathStyle(forcePathStyle bool) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
// Use this when you need fine-grained control over AWS SDK configuration.
func WithAWSConfig(config *aws.Config) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCustomHTTPClient allows providing a custom HTTP client.
// This gives full control over HTTP behavior including timeouts, proxies, etc.
func WithCustomHTTPClient(client *http.Client) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithFilesystem sets a custom filesystem implementation for file operations.
// This allows using in-memory filesystems for testing or virtual filesystems.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) blobtypes.Option {
	return func(c *blobtypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithContentType sets the content type for upload operations.
func WithContentType(contentType string) blobtypes.UploadOption {
	return func(c *blobtypes.UploadOptionConfig) {
		c.ContentType = contentType
	}
}

// WithMetadata sets metadata for upload operations.
func WithMetadata(metadata map[string]string) blobtypes.UploadOption {
	return func(c *blobtypes.UploadOptionConfig) {
		if c.Metadata == nil {
			c.Metadata = make(map[string]string)
		}
		for k, v := range metadata {
			c.Metadata[k] = v
		}
	}
}

// WithStorageClass sets the storage class for upload operations.
func WithStorageClass(storageClass blobtypes.StorageClass) blobtypes.UploadOption {
	return func(c *blobtypes.UploadOptionConfig) {
		c.StorageClass = storageClass
	}
}

// WithProgress sets a progress tracker for upload operations.
func WithProgress(tracker blobtypes.ProgressTracker) blobtypes.UploadOption {
	return func(c *blobtypes.UploadOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// WithUploadPartSize sets the part size for this specific chunked upload.
// This overrides the client-level default.
func WithUploadPartSize(partSize int64) blobtypes.UploadOption {
	return func(c *blobtypes.UploadOptionConfig) {
		if partSize > 0 {
			c.PartSize = partSize
		}
	}
}

// WithUploadConcurrency sets the in-flight part ceiling for this specific
// chunked upload. This overrides the client-level default.
func WithUploadConcurrency(concurrency int) blobtypes.UploadOption {
	return func(c *blobtypes.UploadOptionConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithPartRetries sets how many additional attempts each part gets after its
// first failure. Default is 0 (fail fast on the first part error).
func WithPartRetries(retries int) blobtypes.UploadOption {
	return func(c *blobtypes.UploadOptionConfig) {
		if retries > 0 {
			c.PartRetries = retries
		}
	}
}

// WithKeepPartsOnFailure disables the automatic cleanup of a failed chunked
// upload. For multipart uploads the session is left open; for scattered
// uploads the part objects already written are kept. Default is to clean up.
func WithKeepPartsOnFailure() blobtypes.UploadOption {
	return func(c *blobtypes.UploadOptionConfig) {
		c.KeepPartsOnFailure = true
	}
}

// WithRange sets a byte range for download operations.
// Offsets are inclusive, e.g. WithRange(0, 1023) requests the first 1KB.
func WithRange(start, end int64) blobtypes.DownloadOption {
	return func(c *blobtypes.DownloadOptionConfig) {
		c.RangeSpec = fmt.Sprintf("bytes=%d-%d", start, end)
	}
}

// WithDownloadProgress sets a progress tracker for download operations.
func WithDownloadProgress(tracker blobtypes.ProgressTracker) blobtypes.DownloadOption {
	return func(c *blobtypes.DownloadOptionConfig) {
		c.ProgressTracker = tracker
	}
}

// WithPrefix limits a list operation to keys beginning with prefix.
func WithPrefix(prefix string) blobtypes.ListOption {
	return func(c *blobtypes.ListOptionConfig) {
		c.Prefix = prefix
	}
}

// WithDelimiter groups list results by the given delimiter.
func WithDelimiter(delimiter string) blobtypes.ListOption {
	return func(c *blobtypes.ListOptionConfig) {
		c.Delimiter = delimiter
	}
}

// WithMaxKeys limits the number of keys returned per list page.
func WithMaxKeys(maxKeys int32) blobtypes.ListOption {
	return func(c *blobtypes.ListOptionConfig) {
		if maxKeys > 0 {
			c.MaxKeys = maxKeys
		}
	}
}

// WithContinuationToken resumes a list operation from a previous page.
func WithContinuationToken(token string) blobtypes.ListOption {
	return func(c *blobtypes.ListOptionConfig) {
		c.ContinuationToken = token
	}
}
