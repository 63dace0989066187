package upload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	uperrors "github.com/fenice-io/upload/errors"
	"github.com/fenice-io/upload/internal/testutil"
	"github.com/fenice-io/upload/uploadtypes"
)

func TestNew(t *testing.T) {
	memStore := testutil.NewMemStore()

	tests := []struct {
		name     string
		objStore *testutil.MemStore
		cfg      uploadtypes.Config
		wantErr  string
	}{
		{
			name:     "valid configuration",
			objStore: memStore,
			cfg:      testConfig(),
		},
		{
			name:     "zero max concurrent is unlimited",
			objStore: memStore,
			cfg: uploadtypes.Config{
				MaxSizeBytes:   1 << 20,
				ChunkSizeBytes: 1 << 10,
				SessionTimeout: time.Minute,
			},
		},
		{
			name:     "zero chunk size",
			objStore: memStore,
			cfg: uploadtypes.Config{
				MaxSizeBytes:   1 << 20,
				SessionTimeout: time.Minute,
			},
			wantErr: "chunk size must be positive",
		},
		{
			name:     "negative chunk size",
			objStore: memStore,
			cfg: uploadtypes.Config{
				MaxSizeBytes:   1 << 20,
				ChunkSizeBytes: -1,
				SessionTimeout: time.Minute,
			},
			wantErr: "chunk size must be positive",
		},
		{
			name:     "zero max size",
			objStore: memStore,
			cfg: uploadtypes.Config{
				ChunkSizeBytes: 1 << 10,
				SessionTimeout: time.Minute,
			},
			wantErr: "max size must be positive",
		},
		{
			name:     "zero session timeout",
			objStore: memStore,
			cfg: uploadtypes.Config{
				MaxSizeBytes:   1 << 20,
				ChunkSizeBytes: 1 << 10,
			},
			wantErr: "session timeout must be positive",
		},
		{
			name:     "negative max concurrent",
			objStore: memStore,
			cfg: uploadtypes.Config{
				MaxSizeBytes:   1 << 20,
				ChunkSizeBytes: 1 << 10,
				SessionTimeout: time.Minute,
				MaxConcurrent:  -1,
			},
			wantErr: "max concurrent cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr, err := New(tt.objStore, tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, uperrors.ErrInvalidInput)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, mgr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, mgr)
			assert.Equal(t, 0, mgr.Sessions())
		})
	}
}

func TestNewNilStore(t *testing.T) {
	mgr, err := New(nil, testConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, uperrors.ErrInvalidInput)
	assert.Nil(t, mgr)
}

func TestManagerOptions(t *testing.T) {
	t.Run("clock replaces the time source", func(t *testing.T) {
		fixed := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
		mgr, _ := newTestManager(t, WithClock(func() time.Time { return fixed }))

		result, err := mgr.InitUpload("user-1", uploadtypes.Metadata{
			Filename:  "a.txt",
			TotalSize: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, fixed.Add(time.Hour), result.ExpiresAt)
	})

	t.Run("nil clock is ignored", func(t *testing.T) {
		mgr, _ := newTestManager(t, WithClock(nil))

		result, err := mgr.InitUpload("user-1", uploadtypes.Metadata{
			Filename:  "a.txt",
			TotalSize: 10,
		})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, time.Minute)
	})

	t.Run("non-positive assemble concurrency keeps the default", func(t *testing.T) {
		mgr, _ := newTestManager(t, WithAssembleConcurrency(0))
		assert.Equal(t, 0, mgr.assembleConcurrency)

		mgr, _ = newTestManager(t, WithAssembleConcurrency(8))
		assert.Equal(t, 8, mgr.assembleConcurrency)
	})
}
