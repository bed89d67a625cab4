// Package sync drains the mutation log against the sync server.
//
// The reconciler reads unresolved log entries in sequence order, dispatches
// at most one entry per target record at a time (so changes to one record
// replay in order while different records sync in parallel), and advances
// each entry through its lifecycle: pending, in flight, then synced, queued
// for retry with exponential backoff, or terminally failed awaiting an
// explicit acknowledgment from the user.
//
// Deletes of records the server never saw resolve locally without a network
// round trip.
package sync
