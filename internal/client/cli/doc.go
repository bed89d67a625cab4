// Package cli provides the interactive StudyKeeper command-line client.
//
// It wires configuration, local storage, the sync reconciler and an
// interactive REPL that works offline and syncs opportunistically. Typical
// flow: open the local database, start a background connectivity watcher and
// the reconciler loop, then execute user commands.
//
// Key features:
//   - Add / list / delete study notes
//   - Create decks and flashcards, review the cards due now
//   - Inspect sync status and acknowledge terminal failures
//   - Stage, upload and resolve file attachments
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
