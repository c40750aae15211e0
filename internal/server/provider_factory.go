package server

import (
	"log/slog"

	"github.com/preston-bernstein/contrib-widget-service/internal/config"
	"github.com/preston-bernstein/contrib-widget-service/internal/metrics"
	"github.com/preston-bernstein/contrib-widget-service/internal/providers"
	"github.com/preston-bernstein/contrib-widget-service/internal/providers/github"
)

// providerFactory assembles the provider with shared wrappers.
// Retries sit outside the limiter so every attempt, including backoff retries, is spaced.
type providerFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
	tokens  github.TokenSource
}

func newProviderFactory(logger *slog.Logger, metrics *metrics.Recorder, tokens github.TokenSource) providerFactory {
	return providerFactory{logger: logger, metrics: metrics, tokens: tokens}
}

func (f providerFactory) build(cfg config.Config) providers.ContributionProvider {
	base := selectProvider(cfg, f.tokens, f.logger)
	limited := providers.NewRateLimitedProvider(base, cfg.GitHub.MinInterval, f.logger)
	return providers.NewRetryingProvider(limited, f.logger, f.metrics, normalizeProviderName(cfg.Provider, base), 0, 0)
}
