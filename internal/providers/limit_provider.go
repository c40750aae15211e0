package providers

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
	"github.com/preston-bernstein/contrib-widget-service/internal/logging"
)

const (
	rateLimitedName        = "rate-limited"
	defaultLimiterInterval = time.Second
)

// rateLimitedProvider wraps a ContributionProvider and spaces calls by a minimum interval.
// The first call passes immediately.
type rateLimitedProvider struct {
	next     ContributionProvider
	interval time.Duration
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// NewRateLimitedProvider returns a ContributionProvider that allows one call per interval.
// Calls block until a slot frees up or ctx ends, so bursts never exceed upstream quotas.
func NewRateLimitedProvider(next ContributionProvider, interval time.Duration, logger *slog.Logger) ContributionProvider {
	if interval <= 0 {
		interval = defaultLimiterInterval
	}
	return &rateLimitedProvider{
		next:     next,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		logger:   logger,
	}
}

func (p *rateLimitedProvider) FetchCalendar(ctx context.Context, login string, year int) (contributions.Calendar, error) {
	if p.next == nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, rateLimitedName, "provider unavailable")
		return contributions.Calendar{}, ErrProviderUnavailable
	}
	if err := p.limiter.Wait(ctx); err != nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, rateLimitedName, "rate-limited fetch canceled",
			slog.String(logging.FieldLogin, login))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return contributions.Calendar{}, ctxErr
		}
		// Wait also fails when the deadline falls before the next slot.
		return contributions.Calendar{}, context.DeadlineExceeded
	}
	logWithProvider(ctx, p.logger, slog.LevelDebug, rateLimitedName, "rate-limited provider fetch",
		slog.String(logging.FieldLogin, login),
		slog.Int(logging.FieldYear, year),
	)
	return p.next.FetchCalendar(ctx, login, year)
}
