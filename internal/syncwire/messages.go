package syncwire

import "encoding/json"

// ApplyRequest asks the server to apply one mutation. OpID is the idempotency
// key; RemoteID is set for updates and deletes of already-synced records.
type ApplyRequest struct {
	OpID       string          `json:"op_id"`
	Operation  string          `json:"operation"`
	EntityType string          `json:"entity_type"`
	RemoteID   string          `json:"remote_id,omitempty"`
	OwnerID    string          `json:"owner_id,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// ApplyResponse acknowledges an applied mutation. RemoteID carries the
// canonical identifier issued for creates; Duplicate is set when the
// operation id had been applied before and the stored outcome was replayed.
type ApplyResponse struct {
	RemoteID  string `json:"remote_id,omitempty"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// GetPresignedPutURLRequest asks for an upload slot in object storage.
type GetPresignedPutURLRequest struct{}

type GetPresignedPutURLResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type GetPresignedGetURLRequest struct {
	Key string `json:"key"`
}

type GetPresignedGetURLResponse struct {
	URL string `json:"url"`
}

// MarkUploadedRequest confirms that the client finished uploading the object
// behind the given storage key.
type MarkUploadedRequest struct {
	Key string `json:"key"`
}

type MarkUploadedResponse struct{}
