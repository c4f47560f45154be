// Package resilience wraps repository calls with a time limiter, retry with
// backoff, and a per-operation circuit breaker. It configures library
// primitives rather than implementing its own state machines.
package resilience

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker/v2"

	"fintrack/internal/core"
	"fintrack/internal/result"
)

// Config holds the resilience knobs shared by every wrapped operation.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries uint64

	// BaseBackoff seeds the fibonacci backoff between attempts.
	BaseBackoff time.Duration

	// OpTimeout bounds one wrapped operation, retries included.
	OpTimeout time.Duration

	// BreakerFailures is the consecutive-failure count that trips a breaker.
	BreakerFailures uint32

	// BreakerOpenFor is how long a tripped breaker stays open before probing.
	BreakerOpenFor time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		BaseBackoff:     100 * time.Millisecond,
		OpTimeout:       2 * time.Second,
		BreakerFailures: 5,
		BreakerOpenFor:  30 * time.Second,
	}
}

// Executor owns one circuit breaker per operation name and applies the
// configured retry and timeout policies around the wrapped call.
type Executor struct {
	config Config

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(config Config) *Executor {
	return &Executor{
		config:   config,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

func (e *Executor) breaker(name string) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cb, ok := e.breakers[name]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    name,
		Timeout: e.config.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= e.config.BreakerFailures
		},
		// Domain outcomes (missing rows, validation, business rules) are not
		// infrastructure failures and must not trip the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil || !transient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state change",
				"operation", name,
				"from", from.String(),
				"to", to.String())
		},
	})
	e.breakers[name] = cb
	return cb
}

// Execute runs fn under the executor's policies: a context deadline bounds
// the whole call, transient failures are retried with fibonacci backoff, and
// the named circuit breaker sheds load once consecutive failures pile up.
// Breaker-open errors surface wrapped in result.ErrUnavailable.
func Execute[T any](ctx context.Context, e *Executor, name string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	ctx, cancel := context.WithTimeout(ctx, e.config.OpTimeout)
	defer cancel()

	out, err := e.breaker(name).Execute(func() (any, error) {
		var value T
		backoff := retry.WithMaxRetries(e.config.MaxRetries, retry.NewFibonacci(e.config.BaseBackoff))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			v, err := fn(ctx)
			if err != nil {
				if transient(err) {
					return retry.RetryableError(err)
				}
				return err
			}
			value = v
			return nil
		})
		if err != nil {
			return nil, err
		}
		return value, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%s: %w: %w", name, result.ErrUnavailable, err)
		}
		return zero, fmt.Errorf("%s: %w", name, err)
	}

	value, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected result type %T", name, out)
	}
	return value, nil
}

// transient reports whether an error is worth retrying. Domain errors and
// context cancellation never are.
func transient(err error) bool {
	if errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		result.IsConstraintViolation(err) {
		return false
	}

	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		return false
	}

	var berr *result.BusinessError
	return !errors.As(err, &berr)
}
