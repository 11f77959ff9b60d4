package ai

import (
	"fmt"

	"github.com/sony/gobreaker/v2"

	"internmatch/internal/config"
	"internmatch/internal/errors"
)

// CircuitBreaker wraps one kind of provider call with the circuit breaker
// pattern. A nil breaker executes calls directly.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// NewCircuitBreaker creates a breaker for a specific operation type, or nil
// when the breaker is disabled.
func NewCircuitBreaker[T any](operationType string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("AI-%s", operationType),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests &&
				failureRatio >= cfg.FailureThreshold
		},
		// Rejected input says nothing about the health of the backend.
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransientError(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Info("Circuit breaker state changed",
				"name", name,
				"operation_type", operationType,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &CircuitBreaker[T]{cb: gobreaker.NewCircuitBreaker[T](settings)}
}

// NewModelCircuitBreaker creates the lenient breaker guarding model
// availability checks.
func NewModelCircuitBreaker[T any](operationType string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *CircuitBreaker[T] {
	if !cfg.Enabled {
		return nil
	}
	lenient := cfg
	lenient.MinRequests = max(cfg.MinRequests, 5)
	lenient.FailureThreshold = max(cfg.FailureThreshold, 0.8)
	return NewCircuitBreaker[T](operationType+"-Model", lenient, logger)
}

// Execute runs fn with circuit breaker protection
func (cb *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	if cb == nil || cb.cb == nil {
		return fn()
	}
	return cb.cb.Execute(fn)
}

// GetStats returns circuit breaker statistics
func (cb *CircuitBreaker[T]) GetStats() map[string]any {
	if cb == nil || cb.cb == nil {
		return map[string]any{"enabled": false}
	}

	return map[string]any{
		"name":    cb.cb.Name(),
		"state":   cb.cb.State().String(),
		"counts":  cb.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy returns true if the circuit breaker is in closed state
func (cb *CircuitBreaker[T]) IsHealthy() bool {
	if cb == nil || cb.cb == nil {
		return true
	}
	return cb.cb.State() == gobreaker.StateClosed
}

// IsOpen reports whether calls are currently being rejected
func (cb *CircuitBreaker[T]) IsOpen() bool {
	return cb != nil && cb.cb != nil && cb.cb.State() == gobreaker.StateOpen
}
