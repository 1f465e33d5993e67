// Package retry holds the bounded retry policy for upstream calls.
package retry

import (
	"context"
	"errors"
	"net"
	"time"
)

// Defaults: three attempts in total, one second apart.
const (
	DefaultMaxAttempts = 3
	DefaultDelay       = time.Second
)

// Action is the outcome of a retry decision.
type Action int

const (
	// GiveUp stops retrying and surfaces the last error.
	GiveUp Action = iota
	// Retry schedules another attempt after Decision.Delay.
	Retry
)

// Decision tells the caller whether and when to try again.
type Decision struct {
	Action Action
	Delay  time.Duration
}

// Policy retries timeouts only, with a fixed delay, up to MaxAttempts attempts in total.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultPolicy returns the policy used against openFDA.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultDelay}
}

// Next decides what to do after attempt (1-based) failed with err.
func (p Policy) Next(attempt int, err error) Decision {
	if attempt >= p.MaxAttempts || !IsTimeout(err) {
		return Decision{Action: GiveUp}
	}
	return Decision{Action: Retry, Delay: p.Delay}
}

// Retries returns the number of retries after the first attempt.
func (p Policy) Retries() int {
	if p.MaxAttempts <= 1 {
		return 0
	}
	return p.MaxAttempts - 1
}

// IsTimeout reports whether err is a connect or read timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
