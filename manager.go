package upload

import (
	"time"

	"github.com/rs/zerolog"

	uperrors "github.com/fenice-io/upload/errors"
	"github.com/fenice-io/upload/internal/session"
	"github.com/fenice-io/upload/store"
	"github.com/fenice-io/upload/uploadtypes"
)

// Manager coordinates resumable chunked uploads against an object store.
// It owns the session store for the whole session lifecycle; no other
// component reads or writes session records.
type Manager struct {
	objStore store.ObjectStore
	sessions *session.Store
	cfg      uploadtypes.Config

	log zerolog.Logger

	// now is the clock used for session timestamps; replaceable in tests.
	now func() time.Time

	// slidingExpiry renews a session's expiry on each recorded chunk.
	slidingExpiry bool

	// assembleConcurrency bounds parallel chunk downloads during completion.
	assembleConcurrency int
}

// New creates an upload manager over the given object store.
//
// The configuration is validated up front: chunk size, max size, and session
// timeout must all be positive. MaxConcurrent of zero disables the admission
// limit.
//
// Example:
//
//	mgr, err := upload.New(objStore, uploadtypes.Config{
//	    MaxSizeBytes:   100 << 20,
//	    ChunkSizeBytes: 5 << 20,
//	    SessionTimeout: time.Hour,
//	    MaxConcurrent:  64,
//	}, upload.WithLogger(logger))
func New(objStore store.ObjectStore, cfg uploadtypes.Config, opts ...Option) (*Manager, error) {
	if objStore == nil {
		return nil, uperrors.NewError("new", uperrors.ErrInvalidInput).
			WithMessage("object store cannot be nil")
	}
	if cfg.ChunkSizeBytes <= 0 {
		return nil, uperrors.NewError("new", uperrors.ErrInvalidInput).
			WithMessage("chunk size must be positive")
	}
	if cfg.MaxSizeBytes <= 0 {
		return nil, uperrors.NewError("new", uperrors.ErrInvalidInput).
			WithMessage("max size must be positive")
	}
	if cfg.SessionTimeout <= 0 {
		return nil, uperrors.NewError("new", uperrors.ErrInvalidInput).
			WithMessage("session timeout must be positive")
	}
	if cfg.MaxConcurrent < 0 {
		return nil, uperrors.NewError("new", uperrors.ErrInvalidInput).
			WithMessage("max concurrent cannot be negative")
	}

	m := &Manager{
		objStore: objStore,
		sessions: session.NewStore(cfg.MaxConcurrent),
		cfg:      cfg,
		log:      zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Sessions returns the number of live upload sessions.
func (m *Manager) Sessions() int {
	return m.sessions.Len()
}
