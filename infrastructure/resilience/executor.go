// Package resilience provides resilient responder invocation using fortify.
package resilience

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/lindoshq/lindos-go/domain/responder"
)

// Executor invokes a responder behind bulkhead, circuit breaker, and retry
// patterns. There is deliberately no per-call timeout: a hung responder is a
// caller-visible defect, not a condition to paper over.
type Executor struct {
	bulkhead bulkhead.Bulkhead[string]
	breaker  circuitbreaker.CircuitBreaker[string]
	retry    retry.Retry[string]
	retries  bool
}

// ExecutorConfig configures the resilient executor.
type ExecutorConfig struct {
	// MaxConcurrent limits concurrent responder invocations across all
	// sessions.
	MaxConcurrent int

	// CircuitBreakerThreshold is the number of consecutive failures before
	// opening.
	CircuitBreakerThreshold int

	// CircuitBreakerTimeout is how long the circuit stays open.
	CircuitBreakerTimeout time.Duration

	// RetryMaxAttempts is the maximum number of attempts. Values below 2
	// disable retrying.
	RetryMaxAttempts int

	// RetryInitialDelay is the initial delay between retries.
	RetryInitialDelay time.Duration

	// RetryBackoffMultiplier is the exponential backoff multiplier.
	RetryBackoffMultiplier float64
}

// DefaultExecutorConfig returns a configuration with sensible defaults.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MaxConcurrent:           8,
		CircuitBreakerThreshold: 5,
		CircuitBreakerTimeout:   30 * time.Second,
		RetryMaxAttempts:        2,
		RetryInitialDelay:       50 * time.Millisecond,
		RetryBackoffMultiplier:  2.0,
	}
}

// NewExecutor creates a new resilient executor.
func NewExecutor(config ExecutorConfig) *Executor {
	maxConcurrent := config.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	threshold := config.CircuitBreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}

	return &Executor{
		bulkhead: bulkhead.New[string](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
		}),
		breaker: circuitbreaker.New[string](circuitbreaker.Config{
			MaxRequests: uint32(maxConcurrent), // #nosec G115 -- bounds checked above
			Interval:    config.CircuitBreakerTimeout,
			Timeout:     config.CircuitBreakerTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return counts.ConsecutiveFailures >= uint32(threshold) // #nosec G115 -- bounds checked above
			},
		}),
		retry: retry.New[string](retry.Config{
			MaxAttempts:   config.RetryMaxAttempts,
			InitialDelay:  config.RetryInitialDelay,
			BackoffPolicy: retry.BackoffExponential,
			Multiplier:    config.RetryBackoffMultiplier,
		}),
		retries: config.RetryMaxAttempts > 1,
	}
}

// NewDefaultExecutor creates an executor with default configuration.
func NewDefaultExecutor() *Executor {
	return NewExecutor(DefaultExecutorConfig())
}

// Invoke runs the responder with resilience patterns applied.
// Composition order: Bulkhead → Circuit Breaker → Retry.
func (e *Executor) Invoke(ctx context.Context, r responder.Responder, text string) (string, error) {
	return e.bulkhead.Execute(ctx, func(ctx context.Context) (string, error) {
		return e.breaker.Execute(ctx, func(ctx context.Context) (string, error) {
			if e.retries {
				return e.retry.Do(ctx, func(ctx context.Context) (string, error) {
					return r.Respond(ctx, text)
				})
			}
			return r.Respond(ctx, text)
		})
	})
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (e *Executor) CircuitBreakerState() circuitbreaker.State {
	return e.breaker.State()
}
