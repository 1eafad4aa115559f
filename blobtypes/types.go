// Package blobtypes provides shared type definitions for the blobstore module.
package blobtypes

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
)

// Transfer tuning defaults and protocol limits.
const (
	// DefaultPartSize is the part size used when none is configured (8MB).
	DefaultPartSize = 8 * 1024 * 1024

	// MinPartSize is the smallest part size accepted by S3 multipart
	// uploads for every part except the last (5MB).
	MinPartSize = 5 * 1024 * 1024

	// MaxParts is the S3 limit on parts per multipart upload.
	MaxParts = 10000

	// DefaultConcurrency is the default ceiling on in-flight part uploads.
	DefaultConcurrency = 5

	// MultipartThreshold is the payload size above which Upload switches
	// from a single PUT to a multipart upload.
	MultipartThreshold = 100 * 1024 * 1024
)

// StorageClass represents the S3 storage class for objects.
type StorageClass string

// Predefined S3 storage classes
const (
	// StorageClassStandard is the default S3 storage class
	StorageClassStandard StorageClass = "STANDARD"

	// StorageClassStandardIA provides infrequent access storage
	StorageClassStandardIA StorageClass = "STANDARD_IA"

	// StorageClassOneZoneIA provides one zone infrequent access storage
	StorageClassOneZoneIA StorageClass = "ONEZONE_IA"

	// StorageClassIntelligentTiering provides intelligent tiering storage
	StorageClassIntelligentTiering StorageClass = "INTELLIGENT_TIERING"

	// StorageClassGlacier provides Glacier archival storage
	StorageClassGlacier StorageClass = "GLACIER"
)

// Object represents a stored object with its basic metadata.
type Object struct {
	// Key is the object key (path)
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the entity tag for the object
	ETag string

	// StorageClass is the storage class
	StorageClass string
}

// ObjectMetadata contains detailed metadata about a stored object.
type ObjectMetadata struct {
	// ContentType is the MIME type of the object
	ContentType string

	// ContentLength is the size of the object in bytes
	ContentLength int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the entity tag for the object
	ETag string

	// Metadata contains user-defined metadata
	Metadata map[string]string
}

// ProgressTracker defines the interface for tracking transfer progress.
// Implementations can provide real-time progress updates during uploads and downloads.
type ProgressTracker interface {
	// Update is called periodically with transfer progress
	Update(bytesTransferred, totalBytes int64)

	// Complete is called when the transfer completes successfully
	Complete()

	// Error is called when the transfer fails
	Error(err error)
}

// UploadConfig holds configuration for upload operations.
type UploadConfig struct {
	ContentType     string
	Metadata        map[string]string
	StorageClass    StorageClass
	ProgressTracker ProgressTracker
	PartSize        int64
	Concurrency     int

	// PartRetries is the number of additional attempts per part after the
	// first failure. Zero means a single attempt (no retries).
	PartRetries int

	// AbortOnFailure controls whether a failed multipart upload is aborted
	// server-side, releasing already-uploaded parts. For scattered uploads
	// it controls deletion of already-written part objects.
	AbortOnFailure bool
}

// DownloadConfig holds configuration for download operations.
type DownloadConfig struct {
	// RangeSpec is an optional HTTP range header value (e.g. "bytes=0-1023").
	RangeSpec string

	ProgressTracker ProgressTracker
}

// UploadResult contains the result of an upload operation.
type UploadResult struct {
	// Key is the object key that was uploaded
	Key string

	// Size is the size of the uploaded object in bytes
	Size int64

	// ETag is the entity tag for the uploaded object
	ETag string

	// VersionID is the version ID if versioning is enabled
	VersionID string

	// Parts is the number of parts the payload was split into.
	// It is 1 for single-PUT uploads.
	Parts int

	// Duration is how long the upload took
	Duration time.Duration
}

// ScatterResult contains the result of a scattered (PUT-per-part) upload.
type ScatterResult struct {
	// Key is the logical object key; part objects live at "<Key>_part_<i>".
	Key string

	// PartKeys lists the part object keys in index order.
	PartKeys []string

	// Size is the total payload size in bytes.
	Size int64

	// Duration is how long the upload took
	Duration time.Duration
}

// DownloadResult contains the result of a download operation.
type DownloadResult struct {
	// Key is the object key that was downloaded
	Key string

	// Size is the size of the downloaded object in bytes
	Size int64

	// ETag is the entity tag for the downloaded object
	ETag string

	// VersionID is the version ID if versioning is enabled
	VersionID string

	// Duration is how long the download took
	Duration time.Duration
}

// DeleteResult contains the result of a delete operation.
type DeleteResult struct {
	// Deleted contains successfully deleted objects
	Deleted []Object

	// Errors contains any errors that occurred during deletion
	Errors []DeleteError

	// Duration is how long the operation took
	Duration time.Duration
}

// DeleteError represents an error that occurred during a delete operation.
type DeleteError struct {
	// Key is the object key that failed to delete
	Key string

	// Code is the error code
	Code string

	// Message is the error message
	Message string
}

// ListResult contains the result of a list operation.
type ListResult struct {
	// Objects contains the listed objects
	Objects []Object

	// IsTruncated indicates if the results were truncated
	IsTruncated bool

	// NextContinuationToken is the token for the next page of results
	NextContinuationToken string

	// Duration is how long the operation took
	Duration time.Duration
}

// Configuration types for functional options

// ClientConfig holds configuration for the blobstore client.
type ClientConfig struct {
	Region           string
	Endpoint         string
	AccessKey        string
	SecretKey        string
	SessionToken     string
	MaxRetries       int
	Timeout          time.Duration
	Concurrency      int
	PartSize         int64
	ForcePathStyle   bool
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client
	Filesystem       fs.Filesystem // Filesystem abstraction for file operations
}

// UploadOptionConfig holds configuration for upload operations via functional options.
type UploadOptionConfig struct {
	ContentType        string
	Metadata           map[string]string
	StorageClass       StorageClass
	ProgressTracker    ProgressTracker
	PartSize           int64
	Concurrency        int
	PartRetries        int
	KeepPartsOnFailure bool
}

// DownloadOptionConfig holds configuration for download operations via functional options.
type DownloadOptionConfig struct {
	ProgressTracker ProgressTracker
	RangeSpec       string // renamed from "range" to avoid Go keyword conflict
}

// ListOptionConfig holds configuration for list operations via functional options.
type ListOptionConfig struct {
	Prefix            string
	Delimiter         string
	MaxKeys           int32
	ContinuationToken string
}

// Option is a functional option for configuring the blobstore client.
type (
	Option func(*ClientConfig)
	// UploadOption is a functional option for configuring upload operations.
	UploadOption func(*UploadOptionConfig)
	// DownloadOption is a functional option for configuring download operations.
	DownloadOption func(*DownloadOptionConfig)
	// ListOption is a functional option for configuring list operations.
	ListOption func(*ListOptionConfig)
)
