package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-maritime/pkg/config"
	"github.com/opd-ai/go-maritime/pkg/logging"
)

// Default retry policy of ExecuteWithRetry.
const (
	DefaultRetryAttempts  = 3
	DefaultRetryBaseDelay = time.Second
)

// NetworkService runs remote calls through a circuit breaker so a dead
// server fails fast instead of stalling every training step.
type NetworkService struct {
	breaker    *gobreaker.CircuitBreaker
	logger     *logging.Logger
	maxRetries int
	baseDelay  time.Duration
}

// NetworkOperation is one remote call.
type NetworkOperation func() error

// NewNetworkService builds a breaker named name from the circuit breaker
// settings in cfg. Errors answered by the server (*RemoteError) count as
// successful calls: the transport worked.
func NewNetworkService(name string, cfg *config.ServerConfig, logger *logging.Logger) *NetworkService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.CircuitBreakerMaxRequests,
		Interval:    cfg.CircuitBreakerInterval.Std(),
		Timeout:     cfg.CircuitBreakerTimeout.Std(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.CircuitBreakerMaxConsecutiveFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info(context.Background(), "circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			var remote *RemoteError
			return err == nil || errors.As(err, &remote)
		},
	}

	return &NetworkService{
		breaker:    gobreaker.NewCircuitBreaker(settings),
		logger:     logger,
		maxRetries: DefaultRetryAttempts,
		baseDelay:  DefaultRetryBaseDelay,
	}
}

// SetRetryPolicy changes how often and how patiently ExecuteWithRetry
// retries. The delay before retry n is n*baseDelay.
func (ns *NetworkService) SetRetryPolicy(attempts int, baseDelay time.Duration) {
	if attempts < 1 {
		attempts = 1
	}
	ns.maxRetries = attempts
	ns.baseDelay = baseDelay
}

// Execute runs operation through the breaker. An open breaker fails
// immediately with gobreaker.ErrOpenState.
func (ns *NetworkService) Execute(ctx context.Context, operation NetworkOperation) error {
	_, err := ns.breaker.Execute(func() (interface{}, error) {
		return nil, operation()
	})
	if err == nil {
		return nil
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return err
	}
	ns.logger.LogWithContext(ctx, slog.LevelError, "circuit breaker execution failed",
		"error", err,
		"state", ns.breaker.State().String(),
	)
	return fmt.Errorf("circuit breaker: %w", err)
}

// ExecuteWithRetry retries transport failures with a linear backoff. It
// gives up at once when the breaker opens, the server answers with an
// error, or ctx ends.
func (ns *NetworkService) ExecuteWithRetry(ctx context.Context, operation NetworkOperation) error {
	for attempt := 1; ; attempt++ {
		err := ns.Execute(ctx, operation)
		if err == nil {
			return nil
		}
		var remote *RemoteError
		if errors.As(err, &remote) {
			return err
		}
		if ns.breaker.State() == gobreaker.StateOpen {
			ns.logger.Warn(ctx, "circuit breaker is open, skipping retries", "attempt", attempt)
			return err
		}
		if attempt >= ns.maxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", ns.maxRetries, err)
		}

		delay := time.Duration(attempt) * ns.baseDelay
		ns.logger.Warn(ctx, "operation failed, retrying",
			"attempt", attempt,
			"max_retries", ns.maxRetries,
			"delay", delay,
			"error", err,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
	}
}

// GetState returns the breaker state.
func (ns *NetworkService) GetState() gobreaker.State {
	return ns.breaker.State()
}

// GetCounts returns the breaker's counters for the current interval.
func (ns *NetworkService) GetCounts() gobreaker.Counts {
	return ns.breaker.Counts()
}
