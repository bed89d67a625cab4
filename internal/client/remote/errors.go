package remote

import "errors"

var (
	// ErrUnavailable covers transient failures (connectivity loss, timeouts,
	// server overload). The mutation stays queued and is retried.
	ErrUnavailable = errors.New("server unavailable")

	// ErrRejected covers definitive application-level rejections (validation,
	// precondition, unknown target). Retrying the same payload cannot succeed.
	ErrRejected = errors.New("change rejected by server")
)

// Retryable reports whether err should leave its mutation eligible for a
// later attempt. Unknown errors count as retryable; the reconciler's attempt
// cap demotes them to terminal if they persist.
func Retryable(err error) bool {
	return !errors.Is(err, ErrRejected)
}
