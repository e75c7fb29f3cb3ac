// Package routing executes operations across providers with retry and failover.
package routing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/rpc/provider"
)

// RetryConfig defines retry behavior.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     5,
	InitialDelay:    1 * time.Second,
	MaxDelay:        60 * time.Second,
	BackoffMultiple: 2.0,
}

// ErrorAction determines how to handle an error.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota
	ActionFailover
	ActionFatal
)

// ClassifyError determines the action for a given error.
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionRetry // Should not happen
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ActionFatal
	}

	st, ok := status.FromError(err)
	if !ok {
		// Non-status errors are usually transport level, worth retrying
		return ActionRetry
	}

	switch st.Code() {
	// Request is malformed or the method doesn't exist, no point retrying
	case codes.InvalidArgument, codes.Unimplemented, codes.OutOfRange:
		return ActionFatal

	// Provider-specific limits, try the next endpoint
	case codes.ResourceExhausted, codes.PermissionDenied, codes.Unauthenticated:
		return ActionFailover

	// Unavailable, DeadlineExceeded, Aborted, Internal, Unknown etc.
	default:
		return ActionRetry
	}
}

// RetryDelayHint extracts the server-suggested retry delay, if any.
func RetryDelayHint(err error) time.Duration {
	st, ok := status.FromError(err)
	if !ok {
		return 0
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.RetryInfo); ok && info.GetRetryDelay() != nil {
			return info.GetRetryDelay().AsDuration()
		}
	}
	return 0
}

// ExecuteWithRetry runs an operation on one provider with exponential backoff.
func ExecuteWithRetry(
	ctx context.Context,
	p provider.Provider,
	op provider.Operation,
	config RetryConfig,
) (any, error) {
	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		result, err := p.Execute(ctx, op)
		if err == nil {
			return result, nil
		}

		lastErr = err

		action := ClassifyError(err)
		if action == ActionFatal {
			return nil, err // Stop immediately, do not retry
		}
		if action == ActionFailover {
			return nil, err // Return error immediately to try next provider
		}

		// ActionRetry: continue loop
		if attempt == config.MaxAttempts-1 {
			break
		}

		delay := calculateBackoff(attempt, config)
		if hint := RetryDelayHint(err); hint > delay {
			delay = hint
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", config.MaxAttempts, lastErr)
}

// ExecuteWithFailover tries the operation on each provider in order.
func ExecuteWithFailover(
	ctx context.Context,
	providers []provider.Provider,
	op provider.Operation,
	config RetryConfig,
) (any, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}

	var lastErr error
	for _, p := range providers {
		if !p.IsAvailable() || !p.HasQuotaRemaining() {
			continue
		}

		result, err := ExecuteWithRetry(ctx, p, op, config)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if ClassifyError(err) == ActionFatal {
			return nil, fmt.Errorf("fatal error from provider %s: %w", p.GetName(), err)
		}
	}

	if lastErr == nil {
		return nil, fmt.Errorf("no available providers")
	}
	return nil, fmt.Errorf("all providers failed: %w", lastErr)
}

func calculateBackoff(attempt int, config RetryConfig) time.Duration {
	delay := float64(config.InitialDelay) * math.Pow(config.BackoffMultiple, float64(attempt))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	return time.Duration(delay)
}
