// Package models defines the server-side persistence entities.
package models

import "time"

// Record is the authoritative copy of one synced entity. RemoteID is the
// canonical identifier the server issued when the create was applied.
type Record struct {
	RemoteID   string
	EntityType string
	OwnerID    string
	Payload    []byte
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Deleted    bool
}

// AppliedOp remembers the outcome of one client operation id, so replays of
// the same mutation acknowledge instead of double-applying.
type AppliedOp struct {
	OpID      string
	RemoteID  string
	AppliedAt time.Time
}
