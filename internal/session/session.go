// Package session implements the in-memory upload session store.
//
// The store is the only shared mutable state in the upload manager. All
// operations that combine a liveness check with a mutation (recording a chunk,
// removing a session, sweeping expired sessions) hold the store lock for the
// whole step, so an in-flight call racing a cancel or an eviction observes the
// session as gone rather than mutating a zombie record.
//
// Sessions do not survive a process restart. Persistence was considered and
// rejected: losing mid-flight sessions on restart is an accepted limitation of
// the deployment, and the caller simply re-initializes.
package session

import (
	"sort"
	"sync"
	"time"

	uperrors "github.com/fenice-io/upload/errors"
)

// Session is one in-flight upload's server-side record.
// All fields except received are immutable after creation.
type Session struct {
	UploadID    string
	OwnerID     string
	Filename    string
	ContentType string
	TotalSize   int64
	ChunkSize   int64
	TotalChunks int
	CreatedAt   time.Time
	ExpiresAt   time.Time

	// received is the set of chunk indices recorded so far.
	// Guarded by the owning store's lock.
	received map[int]struct{}
}

// Snapshot is an immutable copy of a session's state at one point in time.
type Snapshot struct {
	UploadID    string
	OwnerID     string
	Filename    string
	ContentType string
	TotalSize   int64
	ChunkSize   int64
	TotalChunks int
	CreatedAt   time.Time
	ExpiresAt   time.Time

	// Received holds the recorded chunk indices in ascending order.
	Received []int
}

// ReceivedCount returns the number of distinct chunks recorded.
func (s Snapshot) ReceivedCount() int {
	return len(s.Received)
}

// Complete reports whether every planned chunk has been recorded.
func (s Snapshot) Complete() bool {
	return len(s.Received) == s.TotalChunks
}

// Store maps upload IDs to live sessions behind a single lock.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	// limit caps the number of live sessions; zero means unlimited.
	limit int
}

// NewStore creates an empty session store with the given admission limit.
func NewStore(limit int) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		limit:    limit,
	}
}

// New builds a Session record with an empty received set.
func New(uploadID, ownerID, filename, contentType string, totalSize, chunkSize int64, totalChunks int, createdAt, expiresAt time.Time) *Session {
	return &Session{
		UploadID:    uploadID,
		OwnerID:     ownerID,
		Filename:    filename,
		ContentType: contentType,
		TotalSize:   totalSize,
		ChunkSize:   chunkSize,
		TotalChunks: totalChunks,
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
		received:    make(map[int]struct{}),
	}
}

// Insert adds a session to the store.
// Returns ErrTooManyUploads when the admission limit is reached; the check and
// the insert are atomic so concurrent inits cannot overshoot the ceiling.
func (s *Store) Insert(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.limit > 0 && len(s.sessions) >= s.limit {
		return uperrors.ErrTooManyUploads
	}
	s.sessions[sess.UploadID] = sess
	return nil
}

// Get returns a snapshot of a live session.
func (s *Store) Get(uploadID string) (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[uploadID]
	if !ok {
		return Snapshot{}, uperrors.ErrSessionNotFound
	}
	return snapshot(sess), nil
}

// Record marks one chunk index as received and returns the updated counts.
// Re-recording an index is a no-op for set membership. When extend is
// positive, the session's expiry is pushed to now+extend (sliding expiry).
//
// The liveness check and the set mutation happen under one lock acquisition:
// if the session was cancelled or evicted after the caller's earlier reads,
// Record reports ErrSessionNotFound instead of resurrecting state.
func (s *Store) Record(uploadID string, index int, now time.Time, extend time.Duration) (received, total int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[uploadID]
	if !ok {
		return 0, 0, uperrors.ErrSessionNotFound
	}

	sess.received[index] = struct{}{}
	if extend > 0 {
		sess.ExpiresAt = now.Add(extend)
	}
	return len(sess.received), sess.TotalChunks, nil
}

// Remove deletes a session and returns its final snapshot.
// This is the single terminal transition: completion, cancellation, and
// eviction all funnel through it, so exactly one caller wins a race.
func (s *Store) Remove(uploadID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[uploadID]
	if !ok {
		return Snapshot{}, uperrors.ErrSessionNotFound
	}
	delete(s.sessions, uploadID)
	return snapshot(sess), nil
}

// RemoveExpired deletes every session with ExpiresAt at or before now and
// returns their final snapshots. Sessions expiring after now are untouched.
func (s *Store) RemoveExpired(now time.Time) []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []Snapshot
	for id, sess := range s.sessions {
		if !sess.ExpiresAt.After(now) {
			expired = append(expired, snapshot(sess))
			delete(s.sessions, id)
		}
	}
	return expired
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// snapshot copies a session for use outside the lock.
// Caller must hold s.mu.
func snapshot(sess *Session) Snapshot {
	received := make([]int, 0, len(sess.received))
	for idx := range sess.received {
		received = append(received, idx)
	}
	sort.Ints(received)

	return Snapshot{
		UploadID:    sess.UploadID,
		OwnerID:     sess.OwnerID,
		Filename:    sess.Filename,
		ContentType: sess.ContentType,
		TotalSize:   sess.TotalSize,
		ChunkSize:   sess.ChunkSize,
		TotalChunks: sess.TotalChunks,
		CreatedAt:   sess.CreatedAt,
		ExpiresAt:   sess.ExpiresAt,
		Received:    received,
	}
}
