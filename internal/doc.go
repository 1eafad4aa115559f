// Package internal contains private implementation details for the blobstore module.
// These packages are not intended for external use and may change without notice.
//
// The internal packages are organized as follows:
//   - operations: Core object store operation implementations
//   - transfer: Chunked transfer engines (multipart protocol, scattered parts)
//   - validation: Input validation logic
//   - pool: Memory management optimizations
//   - testutil: Mocks and fakes shared by package tests
package internal
