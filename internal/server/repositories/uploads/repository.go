// Package uploads tracks which object-storage keys have been confirmed
// uploaded by clients.
package uploads

import "context"

type Repository interface {
	// MarkUploaded records that the client finished uploading the object
	// behind key. Repeats are no-ops.
	MarkUploaded(ctx context.Context, key string) error

	// IsUploaded reports whether an upload was confirmed for key.
	IsUploaded(ctx context.Context, key string) (bool, error)
}
