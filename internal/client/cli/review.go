package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dkazakevich/studykeeper/internal/client/scheduler"
)

// Review walks through the cards due now: show the front, reveal the back,
// ask for a recall grade and persist the rescheduled card.
func (a *App) Review(ctx context.Context) error {

	deckID, err := GetSimpleText(a.reader, "Deck id (empty for all decks):", os.Stdout)
	if err != nil {
		return err
	}

	due, err := a.study.DueCards(ctx, deckID, time.Now())
	if err != nil {
		return err
	}

	if len(due) == 0 {
		printlnFn("Nothing to review")
		return nil
	}

	printlnFn(fmt.Sprintf("%d card(s) due", len(due)))

	for _, card := range due {
		printlnFn("")
		printlnFn("Q:", card.Flashcard.Front)
		if _, err := GetSimpleText(a.reader, "press Enter to reveal", os.Stdout); err != nil {
			return err
		}
		printlnFn("A:", card.Flashcard.Back)

		answer, err := GetSimpleText(a.reader, "How did it go? (fail/hard/good/easy, or stop)", os.Stdout)
		if err != nil {
			return err
		}
		if answer == "stop" {
			return nil
		}

		q, err := scheduler.ParseQuality(answer)
		if err != nil {
			printlnFn("Skipping card:", err.Error())
			continue
		}

		fc, err := a.study.SubmitReview(ctx, card.LocalID, q, time.Now())
		if err != nil {
			return err
		}
		printlnFn(fmt.Sprintf("Next review in %d day(s)", fc.Memory.IntervalDays))
	}

	return nil
}
