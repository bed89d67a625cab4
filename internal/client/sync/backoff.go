package sync

import (
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy derives retry scheduling from an entry's persisted attempt count, so
// backoff survives process restarts.
type Policy struct {
	// Base is the delay after the first failed attempt.
	Base time.Duration
	// Cap bounds the delay growth.
	Cap time.Duration
	// MaxAttempts is the number of failed attempts after which an entry is
	// demoted to a terminal failure.
	MaxAttempts int
}

// DefaultPolicy matches the configuration defaults.
func DefaultPolicy() Policy {
	return Policy{Base: 2 * time.Second, Cap: 5 * time.Minute, MaxAttempts: 10}
}

// Delay returns how long to wait after the given number of failed attempts.
// The steps double from Base up to Cap.
func (p Policy) Delay(attempts int) time.Duration {
	b := retry.WithCappedDuration(p.Cap, retry.NewExponential(p.Base))
	var d time.Duration
	for i := 0; i < attempts; i++ {
		next, stop := b.Next()
		if stop {
			break
		}
		d = next
	}
	return d
}

// Exhausted reports whether the attempt budget is spent.
func (p Policy) Exhausted(attempts int) bool {
	return attempts >= p.MaxAttempts
}
