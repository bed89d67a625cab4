// Package remote holds the client side of the sync-server boundary: a small
// interface the reconciler and services depend on, and its gRPC
// implementation.
package remote

import (
	"context"

	"github.com/dkazakevich/studykeeper/internal/client/models"
)

// Ack is the server acknowledgment for one applied mutation. RemoteID is set
// for creates; Duplicate marks an idempotent replay of an already-applied
// operation id.
type Ack struct {
	RemoteID  string
	Duplicate bool
}

// Client talks to the sync server. Implementations map transport failures to
// ErrUnavailable (retryable) and application rejections to ErrRejected
// (terminal); the reconciler keys its state machine off that split.
type Client interface {
	Close() error

	// Ping probes server reachability.
	Ping(ctx context.Context) error

	// Apply replays one mutation. remoteID carries the record's canonical id
	// for updates and deletes (resolved at dispatch time, not enqueue time).
	Apply(ctx context.Context, m *models.Mutation, remoteID, ownerID string) (*Ack, error)

	// GetPresignedPutURL asks for an attachment upload slot.
	GetPresignedPutURL(ctx context.Context) (key string, url string, err error)

	// GetPresignedGetURL resolves a download URL for a stored attachment.
	GetPresignedGetURL(ctx context.Context, key string) (string, error)

	// MarkUploaded confirms a finished attachment upload.
	MarkUploaded(ctx context.Context, key string) error
}
