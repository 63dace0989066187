// Package store provides object storage backends for the upload manager.
//
// The manager treats storage as an opaque capability: durable key→bytes with
// upload, download, delete, and signed-URL issuance. Two backends are
// provided, an S3 implementation for production and a filesystem
// implementation for development and testing. Both map a missing key to
// errors.ErrKeyNotFound and treat deletion of a missing key as success.
package store

import (
	"context"
	"time"
)

// ObjectStore is the storage contract the upload manager depends on.
// Implementations must be safe for concurrent use.
type ObjectStore interface {
	// Upload stores data under key with the given content type and returns
	// the object's URL. Re-uploading an existing key overwrites it.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Download returns the bytes stored under key.
	// Returns an error matching errors.ErrKeyNotFound when the key is absent.
	Download(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object under key. Deleting an absent key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// SignedURL returns a URL granting time-limited read access to key.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
