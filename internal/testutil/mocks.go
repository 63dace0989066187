// Package testutil provides test utilities and mocks for upload operations.
// This package is internal and should only be used for testing within the
// upload module.
package testutil

import (
	"context"
	"sync"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	uperrors "github.com/fenice-io/upload/errors"
	"github.com/fenice-io/upload/internal/storeapi"
	"github.com/fenice-io/upload/store"
)

// MemStore is a thread-safe in-memory ObjectStore.
// It behaves like a real backend (overwrite on upload, key-not-found on
// missing download, idempotent delete) and supports per-operation failure
// injection through function fields.
type MemStore struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string

	// Failure hooks: when set and returning a non-nil error, the operation
	// fails without touching stored state.
	UploadErr   func(key string) error
	DownloadErr func(key string) error
	DeleteErr   func(key string) error
}

// NewMemStore creates an empty in-memory object store.
func NewMemStore() *MemStore {
	return &MemStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

// Upload stores a copy of data under key.
func (m *MemStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if m.UploadErr != nil {
		if err := m.UploadErr(key); err != nil {
			return "", err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	m.contentTypes[key] = contentType
	return "mem://" + key, nil
}

// Download returns a copy of the bytes under key.
func (m *MemStore) Download(ctx context.Context, key string) ([]byte, error) {
	if m.DownloadErr != nil {
		if err := m.DownloadErr(key); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, uperrors.ErrKeyNotFound
	}
	return append([]byte(nil), data...), nil
}

// Delete removes key; deleting an absent key succeeds.
func (m *MemStore) Delete(ctx context.Context, key string) error {
	if m.DeleteErr != nil {
		if err := m.DeleteErr(key); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.contentTypes, key)
	return nil
}

// SignedURL returns a deterministic fake URL for key.
func (m *MemStore) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "mem://signed/" + key, nil
}

// Get returns the stored bytes for key, or nil if absent.
func (m *MemStore) Get(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil
	}
	return append([]byte(nil), data...)
}

// ContentType returns the content type recorded for key.
func (m *MemStore) ContentType(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contentTypes[key]
}

// Len returns the number of stored objects.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Keys returns all stored keys.
func (m *MemStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	return keys
}

var _ store.ObjectStore = (*MemStore)(nil)

// MockS3Client is a mock implementation of the storeapi interfaces for
// testing the S3 backend. Each operation is customizable through a function
// field; unset operations return empty outputs.
type MockS3Client struct {
	PutObjectFunc        func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObjectFunc        func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjectFunc     func(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	PresignGetObjectFunc func(context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// PutObject mocks the S3 PutObject operation.
func (m *MockS3Client) PutObject(
	ctx context.Context,
	params *s3.PutObjectInput,
	optFns ...func(*s3.Options),
) (*s3.PutObjectOutput, error) {
	if m.PutObjectFunc != nil {
		return m.PutObjectFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{}, nil
}

// GetObject mocks the S3 GetObject operation.
func (m *MockS3Client) GetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	optFns ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	if m.GetObjectFunc != nil {
		return m.GetObjectFunc(ctx, params, optFns...)
	}
	return &s3.GetObjectOutput{}, nil
}

// DeleteObject mocks the S3 DeleteObject operation.
func (m *MockS3Client) DeleteObject(
	ctx context.Context,
	params *s3.DeleteObjectInput,
	optFns ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	if m.DeleteObjectFunc != nil {
		return m.DeleteObjectFunc(ctx, params, optFns...)
	}
	return &s3.DeleteObjectOutput{}, nil
}

// PresignGetObject mocks presigned URL issuance.
func (m *MockS3Client) PresignGetObject(
	ctx context.Context,
	params *s3.GetObjectInput,
	optFns ...func(*s3.PresignOptions),
) (*v4.PresignedHTTPRequest, error) {
	if m.PresignGetObjectFunc != nil {
		return m.PresignGetObjectFunc(ctx, params, optFns...)
	}
	return &v4.PresignedHTTPRequest{URL: "https://example.com/presigned"}, nil
}

// Ensure MockS3Client implements the storeapi interfaces
var (
	_ storeapi.ObjectAPI  = (*MockS3Client)(nil)
	_ storeapi.PresignAPI = (*MockS3Client)(nil)
)
