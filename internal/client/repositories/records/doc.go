// Package records implements the on-device entity store.
//
// Every domain entity (note, deck, flashcard, timetable slot and so on) is one row
// keyed by a locally generated identifier. The remote identifier column stays
// NULL until the sync server acknowledges the create; from then on the record
// counts as synced. Rows are tombstoned rather than removed while a delete is
// still pending in the mutation log.
//
// All operations are local and synchronous. A failing statement means the
// device store itself is broken; errors are surfaced to the caller and never
// retried here.
package records
