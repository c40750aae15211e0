package server

import (
	"log/slog"
	"strings"

	"github.com/preston-bernstein/contrib-widget-service/internal/config"
	"github.com/preston-bernstein/contrib-widget-service/internal/providers"
	"github.com/preston-bernstein/contrib-widget-service/internal/providers/fixture"
	"github.com/preston-bernstein/contrib-widget-service/internal/providers/github"
)

func selectProvider(cfg config.Config, tokens github.TokenSource, logger *slog.Logger) providers.ContributionProvider {
	switch strings.ToLower(cfg.Provider) {
	case "fixture", "":
		return fixture.New()
	case "github":
		return github.NewClient(github.Config{
			GraphQLURL: cfg.GitHub.GraphQLURL,
			Tokens:     tokens,
			Timeout:    cfg.GitHub.Timeout,
		})
	default:
		if logger != nil {
			logger.Warn("unknown provider, falling back to fixture", slog.String("provider", cfg.Provider))
		}
		return fixture.New()
	}
}
