// Package backoff decides whether a failed reader call may be retried and
// how long to wait before the next attempt.
package backoff

import (
	"time"

	"github.com/use-agent/distill/models"
)

// Default schedule: exponential growth from a 1s base, clamped to [10s, 600s],
// at most 5 attempts total (1 initial + 4 retries).
const (
	DefaultBase        = 1 * time.Second
	DefaultFloor       = 10 * time.Second
	DefaultCeil        = 600 * time.Second
	DefaultMaxAttempts = 5
)

// Policy is a pure description of a retry schedule. It holds no timing state:
// both Retryable and Delay are functions of their arguments alone, so the
// same Policy value can serve any number of concurrent retry loops.
//
// The Policy never sleeps. The extraction client owns the retry loop and the
// context-aware wait between attempts.
type Policy struct {
	// Base is the multiplier of the exponential term.
	Base time.Duration

	// Floor and Ceil clamp the computed delay.
	Floor time.Duration
	Ceil  time.Duration

	// MaxAttempts is the total attempt budget, including the initial call.
	MaxAttempts int
}

// Default returns the standard policy for reader calls.
func Default() Policy {
	return Policy{
		Base:        DefaultBase,
		Floor:       DefaultFloor,
		Ceil:        DefaultCeil,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Retryable reports whether the error from the last attempt warrants another
// try. Only a rate-limit response (HTTP 429) from the reader service is
// retryable; network failures, other HTTP errors and parse failures all
// terminate the loop immediately.
func (p Policy) Retryable(err error) bool {
	return models.IsRateLimited(err)
}

// Delay computes the wait after the given 1-based attempt:
//
//	min(Ceil, max(Floor, Base * 2^(attempt-1)))
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	// 2^62 already exceeds any representable duration; cap the shift so the
	// exponential term cannot overflow into a negative value.
	shift := attempt - 1
	if shift > 32 {
		shift = 32
	}

	d := p.Base << shift
	if d < p.Floor {
		d = p.Floor
	}
	if d > p.Ceil {
		d = p.Ceil
	}
	return d
}
