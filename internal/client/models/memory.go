package models

import "time"

// MemoryState holds a flashcard's spaced-repetition parameters.
//
// IntervalDays is the gap until the next review. Repetition counts
// consecutive successful recalls. EaseFactor controls how fast intervals grow
// and never drops below 1.3.
type MemoryState struct {
	IntervalDays int       `json:"interval_days"`
	Repetition   int       `json:"repetition"`
	EaseFactor   float64   `json:"ease_factor"`
	LastReview   time.Time `json:"last_review,omitzero"`
	NextReview   time.Time `json:"next_review,omitzero"`
}

// NewMemoryState returns the state of a never-reviewed card.
func NewMemoryState() MemoryState {
	return MemoryState{EaseFactor: 2.5}
}
