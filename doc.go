// Package blobstore provides a high-level Go module for S3 and S3-compatible
// object stores. It wraps AWS SDK v2 to provide an intuitive and efficient
// interface for common operations while maintaining flexibility for advanced
// use cases.
//
// The module emphasizes developer experience through simple APIs while
// maintaining performance through intelligent defaults for concurrency,
// buffering, and retries.
//
// Key features:
//   - Simple, zero-configuration usage with AWS credential chain
//   - Progressive enhancement through functional options
//   - Chunked parallel uploads with a bounded number of parts in flight
//   - Two chunked variants: the S3 multipart protocol and scattered
//     PUT-per-part objects for stores without multipart support
//   - Comprehensive error handling with part-level failure attribution
//
// Example usage:
//
//	client, err := blobstore.New(
//	    blobstore.WithRegion("us-west-2"),
//	)
//	if err != nil {
//	    return err
//	}
//
//	// Upload a file
//	result, err := client.UploadFile(ctx, "my-bucket", "path/file.txt", "/local/file.txt")
//	if err != nil {
//	    return err
//	}
package blobstore
