// Package download handles S3 object download operations.
// This includes stream-based downloads, file downloads, and range requests.
//
// The package provides memory-efficient streaming for large files and
// supports progress tracking during download operations.
package download
