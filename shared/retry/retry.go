package retry

import (
	"context"
	"fmt"
	"math"
	"time"

	"video-summarizer/shared/config"
	"video-summarizer/shared/logging"

	"go.uber.org/zap"
)

// Policy controls backoff: delay(attempt) = min(MaxDelay, BaseDelay * Multiplier^attempt).
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultPolicy allows at most four attempts: 2s, 4s and 8s apart.
var DefaultPolicy = Policy{
	MaxRetries: 3,
	BaseDelay:  2 * time.Second,
	MaxDelay:   10 * time.Second,
	Multiplier: 2,
}

// PolicyFromConfig converts the YAML retry block.
func PolicyFromConfig(c config.RetryConfig) Policy {
	return Policy{
		MaxRetries: c.MaxRetries,
		BaseDelay:  c.BaseDelay,
		MaxDelay:   c.MaxDelay,
		Multiplier: c.Multiplier,
	}
}

// Delay returns the wait after the given zero-based failed attempt.
func (p Policy) Delay(attempt int) time.Duration {
	wait := time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt)))
	if wait > p.MaxDelay || wait < 0 {
		wait = p.MaxDelay
	}
	return wait
}

// Classifier reports whether an error is transient and worth another attempt.
type Classifier func(error) bool

// ExhaustedRetriesError is returned when transient failures outlast the policy.
type ExhaustedRetriesError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedRetriesError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedRetriesError) Unwrap() error {
	return e.Last
}

// Scheduler runs one operation at a time through a sequential retry loop.
type Scheduler struct {
	policy Policy
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewScheduler(policy Policy, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		policy: policy,
		logger: logging.OrNop(logger),
		sleep:  sleepContext,
	}
}

// Policy returns the backoff settings in use.
func (s *Scheduler) Policy() Policy {
	return s.policy
}

// Run calls op until it succeeds, fails with a non-transient error, or the
// policy is exhausted. Cancelling ctx stops further attempts and aborts a
// pending backoff wait.
func Run[T any](ctx context.Context, s *Scheduler, op func(context.Context) (T, error), transient Classifier) (T, error) {
	var zero T

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		if ctx.Err() != nil || transient == nil || !transient(err) {
			return zero, err
		}

		if attempt >= s.policy.MaxRetries {
			return zero, &ExhaustedRetriesError{Attempts: attempt + 1, Last: err}
		}

		wait := s.policy.Delay(attempt)
		s.logger.Warn("transient failure, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", s.policy.MaxRetries+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		if err := s.sleep(ctx, wait); err != nil {
			return zero, err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
