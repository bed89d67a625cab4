package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	AddNote(ctx context.Context) error
	ListNotes(ctx context.Context) error
	AddDeck(ctx context.Context) error
	AddCard(ctx context.Context) error
	Review(ctx context.Context) error
	Status(ctx context.Context) error
	Ack(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	DeleteNote(ctx context.Context, args []string) error
	Attach(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	GetURL(ctx context.Context, args []string) error
}

// runREPL starts a simple read-eval-print loop for the StudyKeeper CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands:
//
//   - help             show available commands
//   - addnote          add a study note
//   - (l)ist           list notes
//   - delnote <id>     delete a note
//   - adddeck          create a flashcard deck
//   - addcard          add a flashcard to a deck
//   - review           review the cards due now
//   - status           show sync status and terminal failures
//   - ack <seq>        discard a terminal failure
//   - sync             drain the mutation log now
//   - attach <note> <path>   stage a file attachment
//   - upload <id>      upload a staged attachment
//   - geturl <id>      resolve a download URL
//   - exit | quit      leave the program
//
// Any errors returned by command handlers are reported inline; the loop
// itself stays alive so a failed command never kills the session.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("sk> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error

		switch cmd {
		case "help":
			printlnFn("Available commands: addnote, (l)ist, delnote, adddeck, addcard, review, status, ack, sync, attach, upload, geturl, exit")

		case "addnote":
			err = a.AddNote(ctx)

		case "l", "list":
			err = a.ListNotes(ctx)

		case "delnote":
			err = a.DeleteNote(ctx, args)

		case "adddeck":
			err = a.AddDeck(ctx)

		case "addcard":
			err = a.AddCard(ctx)

		case "review":
			err = a.Review(ctx)

		case "status":
			err = a.Status(ctx)

		case "ack":
			err = a.Ack(ctx, args)

		case "sync":
			err = a.Sync(ctx)

		case "attach":
			err = a.Attach(ctx, args)

		case "upload":
			err = a.Upload(ctx, args)

		case "geturl":
			err = a.GetURL(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
