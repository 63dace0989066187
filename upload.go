package upload

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	uperrors "github.com/fenice-io/upload/errors"
	"github.com/fenice-io/upload/internal/assemble"
	"github.com/fenice-io/upload/internal/keys"
	"github.com/fenice-io/upload/internal/session"
	"github.com/fenice-io/upload/internal/validation"
	"github.com/fenice-io/upload/uploadtypes"
)

// InitUpload creates a new upload session and returns its chunk plan.
// No bytes are transferred and no storage call is made at this step.
//
// The chunk size comes from deployment configuration, never from the caller;
// the plan's chunk count is ceil(TotalSize / ChunkSizeBytes).
//
// Returns:
//   - *InitResult: the session identifier, chunk size, chunk count, and expiry
//   - error: if admission or validation fails
//
// Errors:
//   - ErrPayloadTooLarge: TotalSize exceeds the configured maximum
//   - ErrTooManyUploads: the live-session ceiling is reached
//   - ErrInvalidInput: empty owner, invalid filename, or non-positive size
func (m *Manager) InitUpload(ownerID string, meta uploadtypes.Metadata) (*uploadtypes.InitResult, error) {
	if err := validation.ValidateOwnerID(ownerID); err != nil {
		return nil, uperrors.NewError("initUpload", uperrors.ErrInvalidInput).
			WithMessage(err.Error())
	}
	if err := validation.ValidateFilename(meta.Filename); err != nil {
		return nil, uperrors.NewError("initUpload", uperrors.ErrInvalidInput).
			WithMessage(err.Error())
	}
	if meta.TotalSize <= 0 {
		return nil, uperrors.NewError("initUpload", uperrors.ErrInvalidInput).
			WithMessage("total size must be positive")
	}
	if meta.TotalSize > m.cfg.MaxSizeBytes {
		return nil, uperrors.NewError("initUpload", uperrors.ErrPayloadTooLarge).
			WithMessage(fmt.Sprintf("size %d exceeds maximum %d", meta.TotalSize, m.cfg.MaxSizeBytes))
	}

	uploadID := uuid.NewString()
	chunkSize := m.cfg.ChunkSizeBytes
	totalChunks := int((meta.TotalSize + chunkSize - 1) / chunkSize)
	now := m.now()
	expiresAt := now.Add(m.cfg.SessionTimeout)

	sess := session.New(
		uploadID, ownerID, meta.Filename, meta.ContentType,
		meta.TotalSize, chunkSize, totalChunks, now, expiresAt,
	)
	if err := m.sessions.Insert(sess); err != nil {
		return nil, uperrors.NewError("initUpload", err)
	}

	return &uploadtypes.InitResult{
		UploadID:    uploadID,
		ChunkSize:   chunkSize,
		TotalChunks: totalChunks,
		ExpiresAt:   expiresAt,
	}, nil
}

// UploadChunk stores one chunk's bytes and records its receipt.
//
// Re-uploading an index that was already received overwrites the stored bytes
// and leaves the received count unchanged. The chunk is recorded only after
// the storage write succeeds; a storage failure propagates to the caller with
// no session mutation. The record step re-checks session liveness, so a
// session cancelled or evicted mid-write reports ErrSessionNotFound instead
// of mutating a removed record.
//
// Errors:
//   - ErrSessionNotFound: uploadID does not resolve to a live session
//   - ErrInvalidChunk: index is outside [0, TotalChunks)
//   - storage backend errors, unchanged
func (m *Manager) UploadChunk(ctx context.Context, uploadID string, index int, data []byte) (*uploadtypes.ChunkProgress, error) {
	snap, err := m.sessions.Get(uploadID)
	if err != nil {
		return nil, uperrors.NewSessionError("uploadChunk", uploadID, err)
	}

	if index < 0 || index >= snap.TotalChunks {
		return nil, uperrors.NewSessionError("uploadChunk", uploadID, uperrors.ErrInvalidChunk).
			WithMessage(fmt.Sprintf("index %d, expected 0-%d", index, snap.TotalChunks-1))
	}

	chunkKey := keys.Chunk(uploadID, index)
	if _, err := m.objStore.Upload(ctx, chunkKey, data, snap.ContentType); err != nil {
		return nil, err
	}

	var extend time.Duration
	if m.slidingExpiry {
		extend = m.cfg.SessionTimeout
	}
	received, total, err := m.sessions.Record(uploadID, index, m.now(), extend)
	if err != nil {
		return nil, uperrors.NewSessionError("uploadChunk", uploadID, err)
	}

	return &uploadtypes.ChunkProgress{
		Received:    received,
		TotalChunks: total,
		Percent:     int(math.Round(float64(received) / float64(total) * 100)),
	}, nil
}

// CompleteUpload assembles all chunks into the final object and ends the
// session.
//
// Chunks are fetched concurrently but concatenated in strict index order.
// A chunk download or final-object write failure aborts completion and leaves
// the session intact, so completion can be retried. After the final object is
// stored, the session's chunk keys are deleted best-effort: failures are
// logged and never turn the completion into an error, since chunks are
// namespaced under the uploadID and harmless if orphaned.
//
// Returns:
//   - *ObjectInfo: a fresh object ID, the object URL, and the echoed metadata
//   - error: if the session is unknown, incomplete, or a storage call failed
//
// Errors:
//   - ErrSessionNotFound: session unknown, or removed by a concurrent
//     cancel/eviction while assembly was in flight
//   - ErrUploadIncomplete: not all chunks recorded; session left intact
//   - storage backend errors, unchanged
func (m *Manager) CompleteUpload(ctx context.Context, uploadID string) (*uploadtypes.ObjectInfo, error) {
	snap, err := m.sessions.Get(uploadID)
	if err != nil {
		return nil, uperrors.NewSessionError("completeUpload", uploadID, err)
	}

	if !snap.Complete() {
		return nil, uperrors.NewSessionError("completeUpload", uploadID, uperrors.ErrUploadIncomplete).
			WithMessage(fmt.Sprintf("%d/%d chunks received", snap.ReceivedCount(), snap.TotalChunks))
	}

	assembled, err := assemble.Fetch(ctx, m.objStore, func(index int) string {
		return keys.Chunk(uploadID, index)
	}, snap.TotalChunks, m.assembleConcurrency)
	if err != nil {
		return nil, err
	}

	objectKey := keys.Object(snap.OwnerID, snap.Filename)
	objectURL, err := m.objStore.Upload(ctx, objectKey, assembled, snap.ContentType)
	if err != nil {
		return nil, err
	}

	m.deleteChunks(ctx, uploadID, allIndices(snap.TotalChunks))

	// Terminal transition: if the session vanished while assembly ran, a
	// concurrent cancel or eviction won the race.
	if _, err := m.sessions.Remove(uploadID); err != nil {
		return nil, uperrors.NewSessionError("completeUpload", uploadID, err)
	}

	return &uploadtypes.ObjectInfo{
		ObjectID:    uuid.NewString(),
		ObjectURL:   objectURL,
		Filename:    snap.Filename,
		ContentType: snap.ContentType,
		Size:        snap.TotalSize,
		CreatedAt:   m.now(),
	}, nil
}

// CancelUpload discards a session and deletes the chunks it has stored.
//
// Only chunks actually received are deleted. A storage failure while deleting
// propagates and leaves the session intact, so the cancel can be retried.
//
// Errors:
//   - ErrSessionNotFound: session unknown or already ended
//   - storage backend errors, unchanged
func (m *Manager) CancelUpload(ctx context.Context, uploadID string) error {
	snap, err := m.sessions.Get(uploadID)
	if err != nil {
		return uperrors.NewSessionError("cancelUpload", uploadID, err)
	}

	for _, index := range snap.Received {
		if err := m.objStore.Delete(ctx, keys.Chunk(uploadID, index)); err != nil {
			return err
		}
	}

	if _, err := m.sessions.Remove(uploadID); err != nil {
		return uperrors.NewSessionError("cancelUpload", uploadID, err)
	}
	return nil
}

// Cleanup evicts every session whose expiry has passed and returns the number
// of sessions removed.
//
// The evicted sessions' stored chunks are deleted best-effort so expired
// uploads do not leak storage; delete failures are logged, never returned.
// Cleanup holds no timer of its own — schedule it externally or run a Reaper.
func (m *Manager) Cleanup(ctx context.Context) int {
	expired := m.sessions.RemoveExpired(m.now())
	for _, snap := range expired {
		m.log.Info().
			Str("upload_id", snap.UploadID).
			Time("expired_at", snap.ExpiresAt).
			Int("chunks_received", snap.ReceivedCount()).
			Msg("evicting expired upload session")
		m.deleteChunks(ctx, snap.UploadID, snap.Received)
	}
	return len(expired)
}

// ObjectURL returns a time-limited signed URL for a previously completed
// object. This is a convenience for callers that hand clients direct read
// access; it plays no part in the upload lifecycle.
func (m *Manager) ObjectURL(ctx context.Context, ownerID, filename string, ttl time.Duration) (string, error) {
	if err := validation.ValidateOwnerID(ownerID); err != nil {
		return "", uperrors.NewError("objectURL", uperrors.ErrInvalidInput).
			WithMessage(err.Error())
	}
	if err := validation.ValidateFilename(filename); err != nil {
		return "", uperrors.NewError("objectURL", uperrors.ErrInvalidInput).
			WithMessage(err.Error())
	}
	return m.objStore.SignedURL(ctx, keys.Object(ownerID, filename), ttl)
}

// deleteChunks removes the given chunk keys best-effort, logging failures.
func (m *Manager) deleteChunks(ctx context.Context, uploadID string, indices []int) {
	for _, index := range indices {
		key := keys.Chunk(uploadID, index)
		if err := m.objStore.Delete(ctx, key); err != nil {
			m.log.Warn().
				Err(err).
				Str("upload_id", uploadID).
				Str("key", key).
				Msg("failed to delete chunk")
		}
	}
}

// allIndices returns 0..n-1.
func allIndices(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}
