package testutil

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"math/rand"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// StringPtr returns a pointer to the given string.
// This is useful for AWS SDK inputs that require string pointers.
func StringPtr(s string) *string {
	return aws.String(s)
}

// Int64Ptr returns a pointer to the given int64.
// This is useful for AWS SDK inputs that require int64 pointers.
func Int64Ptr(i int64) *int64 {
	return aws.Int64(i)
}

// Int32Ptr returns a pointer to the given int32.
// This is useful for AWS SDK inputs that require int32 pointers.
func Int32Ptr(i int32) *int32 {
	return aws.Int32(i)
}

// DeterministicPayload generates a reproducible byte pattern of the given
// size. Tests use it to verify byte-for-byte reassembly of chunked uploads
// without storing fixtures.
func DeterministicPayload(size int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(r.Intn(256))
	}
	return data
}

// PayloadReader wraps a deterministic payload in an io.Reader.
func PayloadReader(size int, seed int64) io.Reader {
	return bytes.NewReader(DeterministicPayload(size, seed))
}

// CalculateETag calculates the ETag for the given data.
// For simple uploads this is the quoted MD5 hash.
func CalculateETag(data []byte) string {
	h := md5.Sum(data)
	return fmt.Sprintf(`"%x"`, h)
}
