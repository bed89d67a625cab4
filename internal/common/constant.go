// Package common contains shared constants and sentinel errors used across
// StudyKeeper components.
package common

// OperationIDHeaderName is the gRPC metadata key that carries the
// client-generated idempotency key on Apply requests. The same value is also
// embedded in the request body; the header exists for request tracing.
const OperationIDHeaderName = "operation_id"
