// Package operations contains the core object store operation implementations.
// These functions handle the low-level AWS SDK interactions for basic
// operations like upload, download, delete, and list.
//
// Each operation is isolated into its own subpackage for better organization
// and testability.
package operations
