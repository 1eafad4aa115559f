// Package transfer manages chunked transfer operations.
// This includes multipart upload coordination, scattered PUT-per-part
// uploads, progress tracking, and concurrency management.
//
// The transfer packages orchestrate high-level transfer operations and
// delegate to the operation packages for the actual AWS SDK calls.
package transfer
