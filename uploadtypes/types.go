// Package uploadtypes provides shared type definitions for the upload module.
package uploadtypes

import "time"

// Config holds the deployment-level settings for the upload manager.
// All values are injected at construction; none are negotiated per session.
type Config struct {
	// MaxSizeBytes is the largest declared upload size the manager accepts.
	MaxSizeBytes int64

	// ChunkSizeBytes is the fixed chunk size used to compute the chunk plan.
	ChunkSizeBytes int64

	// SessionTimeout is how long a session stays live after creation.
	SessionTimeout time.Duration

	// MaxConcurrent caps the number of live sessions across all callers.
	// Zero means unlimited.
	MaxConcurrent int
}

// Metadata describes the file a caller intends to upload.
type Metadata struct {
	// Filename is the caller-supplied name for the final object.
	Filename string

	// ContentType is the MIME type recorded with every chunk and the final object.
	ContentType string

	// TotalSize is the declared size of the complete file in bytes.
	TotalSize int64
}

// InitResult is the upload plan returned to the caller after session creation.
type InitResult struct {
	// UploadID identifies the session in all subsequent calls.
	UploadID string

	// ChunkSize is the byte size the caller must slice the file into.
	// Only the final chunk may be shorter.
	ChunkSize int64

	// TotalChunks is the number of chunks the caller must transmit.
	TotalChunks int

	// ExpiresAt is when the session becomes eligible for eviction.
	ExpiresAt time.Time
}

// ChunkProgress reports session progress after a chunk is recorded.
type ChunkProgress struct {
	// Received is the number of distinct chunk indices recorded so far.
	Received int

	// TotalChunks is the session's chunk plan size.
	TotalChunks int

	// Percent is the rounded completion percentage.
	Percent int
}

// ObjectInfo describes the assembled object after a successful completion.
type ObjectInfo struct {
	// ObjectID is a fresh identifier for the stored object.
	ObjectID string

	// ObjectURL is the storage backend's URL for the object.
	ObjectURL string

	// Filename echoes the name supplied at session init.
	Filename string

	// ContentType echoes the MIME type supplied at session init.
	ContentType string

	// Size is the assembled object's size in bytes.
	Size int64

	// CreatedAt is when assembly completed.
	CreatedAt time.Time
}
