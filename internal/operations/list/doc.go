// Package list handles S3 object listing operations.
// This includes paginated listing and streaming of objects from S3 buckets.
//
// The package provides both paginated results and channel-based streaming
// for memory-efficient handling of large object listings.
package list
