// Package errors provides error types and handling for upload manager operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents an upload operation error with context about the operation
// that failed. It wraps the underlying error with the upload session and
// storage key involved, when known.
type Error struct {
	// Op is the operation that failed (e.g., "initUpload", "uploadChunk")
	Op string

	// UploadID is the upload session identifier (if applicable)
	UploadID string

	// Key is the object storage key (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.UploadID != "" && e.Key != "" {
		return fmt.Sprintf("upload.%s %s %s: %v", e.Op, e.UploadID, e.Key, e.Err)
	}
	if e.UploadID != "" {
		return fmt.Sprintf("upload.%s session %s: %v", e.Op, e.UploadID, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("upload.%s key %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("upload.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithUploadID adds upload session context to an existing error.
func (e *Error) WithUploadID(uploadID string) *Error {
	e.UploadID = uploadID
	return e
}

// WithKey adds storage key context to an existing error.
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

// NewSessionError creates a new Error with upload session context.
func NewSessionError(op, uploadID string, err error) *Error {
	return &Error{
		Op:       op,
		UploadID: uploadID,
		Err:      err,
	}
}

// Sentinel errors for upload manager failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrSessionNotFound indicates that the upload session does not exist:
	// it never existed, was already completed or cancelled, or expired
	ErrSessionNotFound = errors.New("upload: session not found")

	// ErrPayloadTooLarge indicates that the declared upload size exceeds the
	// configured maximum
	ErrPayloadTooLarge = errors.New("upload: payload too large")

	// ErrInvalidChunk indicates that the chunk index is outside the session's plan
	ErrInvalidChunk = errors.New("upload: invalid chunk index")

	// ErrUploadIncomplete indicates that completion was requested before all
	// chunks were received
	ErrUploadIncomplete = errors.New("upload: upload incomplete")

	// ErrTooManyUploads indicates that the concurrent session ceiling was reached
	ErrTooManyUploads = errors.New("upload: too many concurrent uploads")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("upload: invalid input")

	// ErrKeyNotFound indicates that the requested object storage key does not exist
	ErrKeyNotFound = errors.New("upload: key not found")

	// ErrNotSupported indicates that the storage backend does not support the
	// requested operation
	ErrNotSupported = errors.New("upload: operation not supported")
)

// IsSessionNotFound checks if an error indicates a missing upload session.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsPayloadTooLarge checks if an error indicates an oversized upload request.
func IsPayloadTooLarge(err error) bool {
	return errors.Is(err, ErrPayloadTooLarge)
}

// IsInvalidChunk checks if an error indicates an out-of-range chunk index.
func IsInvalidChunk(err error) bool {
	return errors.Is(err, ErrInvalidChunk)
}

// IsUploadIncomplete checks if an error indicates a premature completion attempt.
func IsUploadIncomplete(err error) bool {
	return errors.Is(err, ErrUploadIncomplete)
}

// IsTooManyUploads checks if an error indicates the session admission limit.
func IsTooManyUploads(err error) bool {
	return errors.Is(err, ErrTooManyUploads)
}

// IsKeyNotFound checks if an error indicates a missing storage key.
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}
