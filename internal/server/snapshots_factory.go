package server

import (
	"log/slog"

	appcontrib "github.com/preston-bernstein/contrib-widget-service/internal/app/contributions"
	"github.com/preston-bernstein/contrib-widget-service/internal/config"
	"github.com/preston-bernstein/contrib-widget-service/internal/snapshots"
)

type snapshotComponents struct {
	store  *snapshots.FSStore
	writer *snapshots.Writer
}

// buildSnapshots returns nil when persistence is disabled.
func buildSnapshots(cfg config.Config, logger *slog.Logger) *snapshotComponents {
	if !cfg.Snapshots.Enabled {
		return nil
	}
	basePath := cfg.Snapshots.Folder
	if logger != nil {
		logger.Info("calendar snapshots enabled",
			slog.String("folder", basePath),
			slog.Int("retentionDays", cfg.Snapshots.RetentionDays),
		)
	}
	return &snapshotComponents{
		store:  snapshots.NewFSStore(basePath),
		writer: snapshots.NewWriter(basePath, cfg.Snapshots.RetentionDays),
	}
}

func (c *snapshotComponents) options() []appcontrib.Option {
	if c == nil {
		return nil
	}
	return []appcontrib.Option{appcontrib.WithSnapshots(c.writer, c.store)}
}
