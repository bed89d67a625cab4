package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dkazakevich/studykeeper/internal/common"
)

const lastSyncKey = "last_sync"

// Status prints the connectivity mode, the mutation-log counters and the
// details of every unacknowledged terminal failure.
func (a *App) Status(ctx context.Context) error {

	counts, err := a.study.SyncStatus(ctx)
	if err != nil {
		return err
	}

	printlnFn("Mode:", string(a.Mode))
	if v, err := a.repos.Metadata.Get(ctx, lastSyncKey); err != nil {
		return err
	} else if len(v) > 0 {
		printlnFn("Last sync:", string(v))
	}
	printlnFn(fmt.Sprintf("Pending changes: %d", counts.Pending))
	printlnFn(fmt.Sprintf("Terminal failures: %d", counts.TerminalFailures))

	if counts.TerminalFailures == 0 {
		return nil
	}

	failures, err := a.study.TerminalFailures(ctx)
	if err != nil {
		return err
	}
	for _, m := range failures {
		printlnFn(fmt.Sprintf("  [%d] %s %s %s: %s", m.Sequence, m.Op, m.Type, m.TargetLocalID, m.LastError))
	}
	printlnFn("Use 'ack <seq>' to discard a failure and unblock the record")

	return nil
}

// Ack discards one terminal failure by its log sequence.
func (a *App) Ack(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: ack <seq>", common.ErrorValidation)
	}

	seq, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a sequence number", common.ErrorValidation, args[0])
	}

	if err := a.study.AckFailure(ctx, seq); err != nil {
		return err
	}

	printlnFn("Failure discarded")
	return nil
}

// Sync drains the mutation log once, without waiting for the background tick.
func (a *App) Sync(ctx context.Context) error {

	stats, err := a.reconciler.DrainOnce(ctx)
	if err != nil {
		return err
	}

	if err := a.repos.Metadata.Set(ctx, lastSyncKey, []byte(time.Now().Format(time.RFC3339))); err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Dispatched %d: %d synced, %d retried, %d terminal, %d resolved locally",
		stats.Dispatched, stats.Synced, stats.Retried, stats.Terminal, stats.ResolvedLocally))
	return nil
}
