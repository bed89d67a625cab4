// Package models defines the domain entities held in the on-device store and
// the mutation entries queued for synchronization.
package models

import (
	"encoding/json"
	"errors"
	"time"
)

// EntityType classifies a record kind.
type EntityType string

const (
	EntityTypeNote          EntityType = "note"
	EntityTypeSubject       EntityType = "subject"
	EntityTypeTimetableSlot EntityType = "timetable_slot"
	EntityTypeChatMessage   EntityType = "chat_message"
	EntityTypeQuiz          EntityType = "quiz"
	EntityTypeDeck          EntityType = "deck"
	EntityTypeFlashcard     EntityType = "flashcard"
	EntityTypeAlarm         EntityType = "alarm"
	EntityTypeSetting       EntityType = "setting"
	EntityTypeAttachment    EntityType = "attachment"
)

var ErrUnknownEntityType = errors.New("unknown entity type")

// Valid reports whether t is one of the known entity types.
func (t EntityType) Valid() bool {
	switch t {
	case EntityTypeNote, EntityTypeSubject, EntityTypeTimetableSlot,
		EntityTypeChatMessage, EntityTypeQuiz, EntityTypeDeck,
		EntityTypeFlashcard, EntityTypeAlarm, EntityTypeSetting,
		EntityTypeAttachment:
		return true
	}
	return false
}

// Operation is the kind of pending change recorded in the mutation log.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Record is one row of the entity store. LocalID is assigned at creation and
// stays stable for the record's local lifetime; RemoteID is empty until the
// server acknowledges the create.
type Record struct {
	LocalID   string
	RemoteID  string
	Type      EntityType
	OwnerID   string
	Payload   json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
}

// Synced reports whether the record has a confirmed remote identity.
func (r *Record) Synced() bool { return r.RemoteID != "" }

// Decode unmarshals the record payload into v.
func (r *Record) Decode(v any) error {
	return json.Unmarshal(r.Payload, v)
}

// Mutation is one entry of the mutation log: a single pending create, update
// or delete awaiting acknowledgment by the sync server.
//
// Sequence is assigned by the log on append and defines the total order.
// OpID is the client-generated idempotency key carried to the server.
type Mutation struct {
	Sequence      int64
	OpID          string
	Op            Operation
	Type          EntityType
	TargetLocalID string
	Payload       json.RawMessage
	CreatedAt     time.Time
	Synced        bool
	Superseded    bool
	Terminal      bool
	Acked         bool
	AttemptCount  int
	NotBefore     time.Time
	LastError     string
}

// Resolved reports whether the entry no longer needs a remote round trip:
// either acknowledged by the server, superseded by a later delete, or
// terminally failed and discarded by the caller.
func (m *Mutation) Resolved() bool {
	return m.Synced || m.Superseded || (m.Terminal && m.Acked)
}

// Blocking reports whether the entry blocks later entries for the same
// target: a terminal failure that the caller has not acknowledged yet.
func (m *Mutation) Blocking() bool {
	return m.Terminal && !m.Acked
}
