// Package oplog implements the append-only mutation log.
//
// Every local create/update/delete lands here in the same transaction that
// touches the entity store. The sequence column is assigned by SQLite on
// append and is the single source of ordering: entries for one target are
// always replayed against the server in non-decreasing sequence order, and a
// sequence value is never reused even when the entry later fails.
//
// Entries are kept (marked, never rewritten or reordered) until they resolve:
// acknowledged by the server, superseded by a later delete of the same
// target, or terminally failed and explicitly discarded by the caller.
package oplog
