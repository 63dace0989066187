// Package keys derives object storage keys for chunks and assembled objects.
//
// Key formats are stable: chunk keys are namespaced under the upload session
// identifier, so no two sessions can collide, and orphaned chunks are always
// attributable to the session that wrote them.
package keys

import "fmt"

// Chunk returns the storage key for one chunk of an upload session.
func Chunk(uploadID string, index int) string {
	return fmt.Sprintf("uploads/%s/chunk-%d", uploadID, index)
}

// Object returns the storage key for the assembled object.
func Object(ownerID, filename string) string {
	return fmt.Sprintf("uploads/%s/%s", ownerID, filename)
}
