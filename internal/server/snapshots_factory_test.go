package server

import (
	"testing"

	"github.com/preston-bernstein/contrib-widget-service/internal/config"
)

func TestBuildSnapshotsRespectsConfig(t *testing.T) {
	disabled := buildSnapshots(config.Config{}, nil)
	if disabled != nil || disabled.options() != nil {
		t.Fatalf("expected no snapshot components when disabled")
	}

	cfg := config.Config{
		Snapshots: config.SnapshotConfig{Enabled: true, RetentionDays: 1, Folder: t.TempDir()},
	}
	components := buildSnapshots(cfg, nil)
	if components == nil || components.store == nil || components.writer == nil {
		t.Fatalf("expected snapshots components to be initialized")
	}
	if components.writer.BasePath() != cfg.Snapshots.Folder {
		t.Fatalf("expected writer rooted at %s, got %s", cfg.Snapshots.Folder, components.writer.BasePath())
	}
	if len(components.options()) != 1 {
		t.Fatalf("expected one service option")
	}
}
