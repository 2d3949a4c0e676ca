package resilience

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrUnavailable is returned once every attempt of an upstream call failed
var ErrUnavailable = errors.New("upstream unavailable")

// AttemptObserver records the outcome of every attempt
type AttemptObserver interface {
	ObserveAttempt(endpoint string, success bool)
}

// Policy controls how an upstream call is retried.
// The delay before attempt k+1 is BaseDelay*k.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// Sleep blocks between attempts; time.Sleep when nil
	Sleep    func(time.Duration)
	Logger   *logrus.Logger
	Observer AttemptObserver
}

// DefaultPolicy allows 5 attempts with 5s, 10s, 15s, 20s pauses
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   5 * time.Second,
	}
}

// Delay returns the pause taken after the given failed attempt (1-based)
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(attempt)
}

// Do runs op until it succeeds or MaxAttempts is exhausted.
// label names the call as "Endpoint(args)"; the part before "(" is the
// endpoint reported to the observer. op must be idempotent.
func Do[T any](ctx context.Context, p Policy, label string, op func(context.Context) (T, error)) (T, error) {
	var zero T

	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	log := p.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	endpoint := Endpoint(label)

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		entry := log.WithFields(logrus.Fields{
			"component":    "retry",
			"call":         label,
			"attempt":      attempt,
			"max_attempts": maxAttempts,
		})

		result, err := safeCall(ctx, op)
		if p.Observer != nil {
			p.Observer.ObserveAttempt(endpoint, err == nil)
		}
		if err == nil {
			entry.WithField("outcome", "success").Debug("Upstream call succeeded")
			return result, nil
		}

		lastErr = err
		entry.WithFields(logrus.Fields{
			"outcome": "failure",
			"error":   err.Error(),
		}).Warn("Upstream call attempt failed")

		if attempt < maxAttempts {
			sleep(p.Delay(attempt))
		}
	}

	log.WithFields(logrus.Fields{
		"component": "retry",
		"call":      label,
	}).Error("All retries failed")

	return zero, fmt.Errorf("%s: %w after %d attempts: %v", label, ErrUnavailable, maxAttempts, lastErr)
}

// Endpoint strips the argument list from a call label
func Endpoint(label string) string {
	if i := strings.IndexByte(label, '('); i >= 0 {
		return label[:i]
	}
	return label
}

func safeCall[T any](ctx context.Context, op func(context.Context) (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return op(ctx)
}
