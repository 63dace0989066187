// Package validation provides centralized input validation logic.
//
// Caller-supplied identifiers and filenames end up embedded in object storage
// keys, so they are validated before any key is derived or any I/O happens.
package validation

import (
	"strings"
	"unicode"

	uperrors "github.com/fenice-io/upload/errors"
)

// MaxFilenameLength bounds filenames so derived object keys stay well under
// common backend key limits (S3 allows 1024 bytes for the whole key).
const MaxFilenameLength = 512

// ValidateFilename validates a caller-supplied filename.
// Returns ErrInvalidInput if the name is empty, too long, contains path
// traversal sequences, or contains control characters.
func ValidateFilename(name string) error {
	if name == "" {
		return uperrors.NewError("validateFilename", uperrors.ErrInvalidInput).
			WithMessage("filename cannot be empty")
	}

	if len(name) > MaxFilenameLength {
		return uperrors.NewError("validateFilename", uperrors.ErrInvalidInput).
			WithMessage("filename too long")
	}

	if hasPathTraversal(name) {
		return uperrors.NewError("validateFilename", uperrors.ErrInvalidInput).
			WithMessage("filename cannot contain path traversal sequences")
	}

	if hasControlCharacters(name) {
		return uperrors.NewError("validateFilename", uperrors.ErrInvalidInput).
			WithMessage("filename cannot contain control characters")
	}

	return nil
}

// ValidateOwnerID validates the identity string used to namespace final
// object keys.
func ValidateOwnerID(ownerID string) error {
	if ownerID == "" {
		return uperrors.NewError("validateOwnerID", uperrors.ErrInvalidInput).
			WithMessage("owner id cannot be empty")
	}

	if strings.ContainsAny(ownerID, "/\\") || hasPathTraversal(ownerID) {
		return uperrors.NewError("validateOwnerID", uperrors.ErrInvalidInput).
			WithMessage("owner id cannot contain path separators")
	}

	if hasControlCharacters(ownerID) {
		return uperrors.NewError("validateOwnerID", uperrors.ErrInvalidInput).
			WithMessage("owner id cannot contain control characters")
	}

	return nil
}

// ValidateKey validates an object storage key before it is sent to a backend.
func ValidateKey(key string) error {
	if key == "" {
		return uperrors.NewError("validateKey", uperrors.ErrInvalidInput).
			WithMessage("object key cannot be empty")
	}

	if len(key) > 1024 {
		return uperrors.NewError("validateKey", uperrors.ErrInvalidInput).
			WithMessage("object key cannot exceed 1024 characters")
	}

	if hasPathTraversal(key) {
		return uperrors.NewError("validateKey", uperrors.ErrInvalidInput).
			WithMessage("object key cannot contain path traversal sequences")
	}

	if hasControlCharacters(key) {
		return uperrors.NewError("validateKey", uperrors.ErrInvalidInput).
			WithMessage("object key cannot contain control characters")
	}

	return nil
}

// hasPathTraversal reports whether s contains a ".." path element or starts
// with a path separator.
func hasPathTraversal(s string) bool {
	if strings.HasPrefix(s, "/") || strings.HasPrefix(s, "\\") {
		return true
	}
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '\\'
	}) {
		if part == ".." {
			return true
		}
	}
	return false
}

// hasControlCharacters reports whether s contains ASCII or Unicode control
// characters.
func hasControlCharacters(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
