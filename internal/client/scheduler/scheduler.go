// Package scheduler implements the spaced-repetition review scheduling for
// flashcards (an SM-2 family forgetting-curve update).
//
// The package is a pure computation over a card's memory state: no I/O, no
// clock reads (the caller passes now). Its only failure mode is a recall
// quality outside the defined scale, which is rejected rather than clamped;
// silently coercing it would corrupt the memory model.
package scheduler

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/dkazakevich/studykeeper/internal/client/models"
)

// Quality is the recall-quality signal reported after a review.
type Quality int

const (
	QualityFail Quality = iota
	QualityHard
	QualityGood
	QualityEasy
)

var ErrInvalidQuality = errors.New("invalid review quality")

// easeFloor is the lower bound of the ease factor.
const easeFloor = 1.3

// easeAdjust maps a passing quality to its ease-factor delta.
var easeAdjust = map[Quality]float64{
	QualityHard: -0.15,
	QualityGood: 0,
	QualityEasy: 0.15,
}

// ParseQuality converts a textual quality into its Quality value.
func ParseQuality(s string) (Quality, error) {
	switch s {
	case "fail":
		return QualityFail, nil
	case "hard":
		return QualityHard, nil
	case "good":
		return QualityGood, nil
	case "easy":
		return QualityEasy, nil
	default:
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidQuality)
	}
}

func (q Quality) String() string {
	switch q {
	case QualityFail:
		return "fail"
	case QualityHard:
		return "hard"
	case QualityGood:
		return "good"
	case QualityEasy:
		return "easy"
	default:
		return fmt.Sprintf("quality(%d)", int(q))
	}
}

// Review computes the card's next memory state for the given recall quality.
//
// On fail the repetition streak resets, the card comes back tomorrow and the
// ease factor drops by 0.2 (floored at 1.3). On a pass the streak grows and
// the interval follows the 1, 6, round(prev*ease) progression.
func Review(s models.MemoryState, q Quality, now time.Time) (models.MemoryState, error) {
	switch q {
	case QualityFail:
		s.Repetition = 0
		s.IntervalDays = 1
		s.EaseFactor = math.Max(easeFloor, s.EaseFactor-0.2)

	case QualityHard, QualityGood, QualityEasy:
		s.Repetition++
		s.EaseFactor = math.Max(easeFloor, s.EaseFactor+easeAdjust[q])
		switch s.Repetition {
		case 1:
			s.IntervalDays = 1
		case 2:
			s.IntervalDays = 6
		default:
			s.IntervalDays = int(math.Round(float64(s.IntervalDays) * s.EaseFactor))
		}

	default:
		return models.MemoryState{}, fmt.Errorf("%d: %w", int(q), ErrInvalidQuality)
	}

	s.LastReview = now
	s.NextReview = now.AddDate(0, 0, s.IntervalDays)
	return s, nil
}

// Card pairs a flashcard payload with its local record identity, which also
// serves as the deterministic tie-breaker in due ordering.
type Card struct {
	LocalID   string
	Flashcard models.Flashcard
}

// IsDue reports whether a card is due at now. A never-reviewed card (zero
// NextReview) is always due.
func IsDue(s models.MemoryState, now time.Time) bool {
	return !s.NextReview.After(now)
}

// Due returns the subset of cards due at now, ordered by next review time
// ascending (oldest overdue first) with ties broken by local id.
func Due(cards []Card, now time.Time) []Card {
	var due []Card
	for _, c := range cards {
		if IsDue(c.Flashcard.Memory, now) {
			due = append(due, c)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := due[i].Flashcard.Memory.NextReview, due[j].Flashcard.Memory.NextReview
		if !a.Equal(b) {
			return a.Before(b)
		}
		return due[i].LocalID < due[j].LocalID
	})
	return due
}
