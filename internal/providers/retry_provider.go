package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
	"github.com/preston-bernstein/contrib-widget-service/internal/logging"
	"github.com/preston-bernstein/contrib-widget-service/internal/metrics"
)

const (
	// Matches the mobile app's SYNC_CONFIG.MAX_RETRIES.
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
	maxBackoff           = 30 * time.Second
)

// retryingProvider wraps a ContributionProvider with exponential backoff.
// Rate limit responses wait for their Retry-After instead of the computed interval.
type retryingProvider struct {
	inner        ContributionProvider
	logger       *slog.Logger
	recorder     *metrics.Recorder
	providerName string
	maxAttempts  int
	newBackOff   func() backoff.BackOff
}

// NewRetryingProvider wraps the given provider with retries. If maxAttempts/initial are <= 0, defaults are used.
func NewRetryingProvider(inner ContributionProvider, logger *slog.Logger, recorder *metrics.Recorder, name string, maxAttempts int, initial time.Duration) ContributionProvider {
	if name == "" {
		name = "provider"
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if initial <= 0 {
		initial = defaultBackoff
	}
	return &retryingProvider{
		inner:        inner,
		logger:       logger,
		recorder:     recorder,
		providerName: name,
		maxAttempts:  maxAttempts,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff(
				backoff.WithInitialInterval(initial),
				backoff.WithMaxInterval(maxBackoff),
				backoff.WithMaxElapsedTime(0),
			)
		},
	}
}

func (r *retryingProvider) FetchCalendar(ctx context.Context, login string, year int) (contributions.Calendar, error) {
	if r.inner == nil {
		return contributions.Calendar{}, ErrProviderUnavailable
	}

	var lastErr error
	attempt := 0
	op := func() (contributions.Calendar, error) {
		if err := ctx.Err(); err != nil {
			return contributions.Calendar{}, backoff.Permanent(err)
		}
		attempt++
		start := time.Now()
		cal, err := r.inner.FetchCalendar(ctx, login, year)
		r.recorder.RecordProviderAttempt(r.providerName, time.Since(start), err)
		lastErr = err
		if err == nil {
			return cal, nil
		}
		if rl, ok := AsRateLimitError(err); ok {
			r.recorder.RecordRateLimit(r.providerName, rl.RetryAfter)
		}
		if IsPermanent(err) {
			return contributions.Calendar{}, backoff.Permanent(err)
		}
		return contributions.Calendar{}, err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&retryAfterBackOff{BackOff: r.newBackOff(), lastErr: &lastErr}, uint64(r.maxAttempts-1)),
		ctx,
	)
	notify := func(err error, delay time.Duration) {
		logWithProvider(ctx, r.logger, slog.LevelWarn, r.providerName, "provider fetch retry",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", r.maxAttempts),
			slog.String(logging.FieldLogin, login),
			slog.Int(logging.FieldYear, year),
			slog.Duration("delay", delay),
			slog.Any("err", err),
		)
	}

	cal, err := backoff.RetryNotifyWithData(op, policy, notify)
	if err != nil {
		logWithProvider(ctx, r.logger, slog.LevelWarn, r.providerName, "provider fetch failed",
			slog.Int("attempts", attempt),
			slog.String(logging.FieldLogin, login),
			slog.Int(logging.FieldYear, year),
			slog.Any("err", err),
		)
		return contributions.Calendar{}, err
	}
	return cal, nil
}

// retryAfterBackOff defers to a rate limit's Retry-After when the last attempt reported one.
type retryAfterBackOff struct {
	backoff.BackOff
	lastErr *error
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if rl, ok := AsRateLimitError(*b.lastErr); ok && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	return next
}
