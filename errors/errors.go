// Package errors provides error types and handling for blobstore operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents an operation error with context about what failed.
// It wraps the underlying AWS SDK error with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "upload", "download", "delete")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("blobstore.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("blobstore.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("blobstore.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("blobstore.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{
		Op:     op,
		Bucket: bucket,
		Key:    key,
		Err:    err,
	}
}

// PartError identifies the part of a chunked upload that failed.
// The part index uses the numbering scheme of the upload variant that
// produced it: multipart uploads number parts from 1, scattered uploads
// number part objects from 0.
type PartError struct {
	// Part is the index of the failing part.
	Part int32

	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *PartError) Error() string {
	return fmt.Sprintf("part %d: %v", e.Part, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *PartError) Unwrap() error {
	return e.Err
}

// NewPartError creates a PartError for the given part index.
func NewPartError(part int32, err error) *PartError {
	return &PartError{Part: part, Err: err}
}

// FailedPart extracts the failing part index from an error chain.
// The second return value reports whether a PartError was found.
func FailedPart(err error) (int32, bool) {
	var pe *PartError
	if errors.As(err, &pe) {
		return pe.Part, true
	}
	return 0, false
}

// Sentinel errors for common operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("blobstore: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("blobstore: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("blobstore: access denied")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("blobstore: invalid input")

	// ErrBucketAlreadyExists indicates that the bucket already exists
	ErrBucketAlreadyExists = errors.New("blobstore: bucket already exists")

	// ErrBucketNotEmpty indicates that the bucket is not empty and cannot be deleted
	ErrBucketNotEmpty = errors.New("blobstore: bucket not empty")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("blobstore: invalid bucket name")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("blobstore: invalid object key")

	// ErrEmptySource indicates that an upload source contained no bytes
	ErrEmptySource = errors.New("blobstore: empty source")

	// ErrUploadAborted indicates that a chunked upload was aborted after a part failure
	ErrUploadAborted = errors.New("blobstore: upload aborted")

	// ErrTooManyParts indicates that the part size would produce more parts than allowed
	ErrTooManyParts = errors.New("blobstore: too many parts")

	// ErrTimeout indicates that the operation timed out
	ErrTimeout = errors.New("blobstore: operation timeout")

	// ErrConnection indicates a connection error
	ErrConnection = errors.New("blobstore: connection error")

	// ErrInvalidRange indicates that the requested range is invalid
	ErrInvalidRange = errors.New("blobstore: invalid range")
)

// IsObjectNotFound checks if an error indicates that an object was not found.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsBucketNotFound checks if an error indicates that a bucket was not found.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsAccessDenied checks if an error indicates access was denied.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidInput checks if an error indicates invalid input.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
