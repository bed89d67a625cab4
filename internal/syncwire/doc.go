// Package syncwire defines the wire contract between the on-device core and
// the sync server: message types, the JSON codec and the gRPC service
// description shared by client stub and server registration.
//
// The payloads are schemaless JSON documents (entity payloads pass through
// the server untouched), so the service runs gRPC with a JSON codec instead
// of generated protobuf stubs. Error classes travel as gRPC status codes:
// codes.Unavailable and codes.DeadlineExceeded mean "retry later", while
// codes.InvalidArgument, codes.FailedPrecondition and codes.NotFound are
// terminal rejections the client must surface.
//
// Every ApplyRequest carries a client-generated operation id (uuid). Servers
// deduplicate on it, which makes replaying an interrupted drain safe.
package syncwire
