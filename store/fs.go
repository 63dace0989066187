package store

import (
	"context"
	"errors"
	"os"
	"path"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	uperrors "github.com/fenice-io/upload/errors"
	"github.com/fenice-io/upload/internal/validation"
)

// FS is an ObjectStore backed by a filesystem.
// It serves development and test deployments where a cloud bucket is
// unavailable; keys map directly to file paths under the root directory.
//
// Signed URLs degrade to plain file:// URLs — local files carry no expiry
// semantics.
type FS struct {
	fsys fs.Filesystem
	root string
}

// NewFS creates a filesystem-backed object store rooted at root.
func NewFS(fsys fs.Filesystem, root string) *FS {
	return &FS{
		fsys: fsys,
		root: root,
	}
}

// NewOSFS creates a filesystem-backed object store on the OS filesystem
// rooted at root.
func NewOSFS(root string) *FS {
	return NewFS(billy.NewOSFS(root), "")
}

// NewMemFS creates a filesystem-backed object store on an in-memory
// filesystem. Useful for tests.
func NewMemFS() *FS {
	return NewFS(billy.NewInMemoryFS(), "")
}

// Upload writes data to the file at key, creating parent directories as
// needed. The content type is not persisted; filesystems have no metadata
// channel for it.
func (f *FS) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := validation.ValidateKey(key); err != nil {
		return "", uperrors.NewError("upload", uperrors.ErrInvalidInput).
			WithKey(key).
			WithMessage(err.Error())
	}

	p := f.path(key)
	if dir := path.Dir(p); dir != "." {
		if err := f.fsys.MkdirAll(dir, 0o755); err != nil {
			return "", uperrors.NewError("upload", err).WithKey(key)
		}
	}

	if err := f.fsys.WriteFile(p, data, 0o644); err != nil {
		return "", uperrors.NewError("upload", err).WithKey(key)
	}
	return "file://" + p, nil
}

// Download returns the bytes of the file at key.
func (f *FS) Download(ctx context.Context, key string) ([]byte, error) {
	if err := validation.ValidateKey(key); err != nil {
		return nil, uperrors.NewError("download", uperrors.ErrInvalidInput).
			WithKey(key).
			WithMessage(err.Error())
	}

	data, err := f.fsys.ReadFile(f.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, uperrors.NewError("download", uperrors.ErrKeyNotFound).WithKey(key)
		}
		return nil, uperrors.NewError("download", err).WithKey(key)
	}
	return data, nil
}

// Delete removes the file at key. A missing file is not an error.
func (f *FS) Delete(ctx context.Context, key string) error {
	if err := validation.ValidateKey(key); err != nil {
		return uperrors.NewError("delete", uperrors.ErrInvalidInput).
			WithKey(key).
			WithMessage(err.Error())
	}

	if err := f.fsys.Remove(f.path(key)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return uperrors.NewError("delete", err).WithKey(key)
	}
	return nil
}

// SignedURL returns a file:// URL for key. The ttl is ignored.
func (f *FS) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if err := validation.ValidateKey(key); err != nil {
		return "", uperrors.NewError("signedURL", uperrors.ErrInvalidInput).
			WithKey(key).
			WithMessage(err.Error())
	}
	return "file://" + f.path(key), nil
}

func (f *FS) path(key string) string {
	if f.root == "" {
		return key
	}
	return path.Join(f.root, key)
}

var _ ObjectStore = (*FS)(nil)
