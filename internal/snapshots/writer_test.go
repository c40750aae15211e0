package snapshots

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
)

func TestWriterWritesSnapshotAndManifest(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 10)

	writeCalendar(t, w, simpleCalendar("Octocat"))
	requireSnapshotExists(t, w, "octocat")

	m, err := readManifest(filepath.Join(dir, manifestFile), 10)
	if err != nil {
		t.Fatalf("expected manifest, got err %v", err)
	}
	if _, ok := m.Contributions.Logins["octocat"]; !ok {
		t.Fatalf("expected login in manifest, got %+v", m.Contributions)
	}
	if m.Retention.CalendarDays != 10 || m.Contributions.LastRefreshed.IsZero() {
		t.Fatalf("unexpected manifest %+v", m)
	}
}

func TestWriterSkipsIdenticalRewrite(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 10)
	cal := simpleCalendar("octocat")
	writeCalendar(t, w, cal)

	path := CalendarSnapshotPath(dir, "octocat")
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	writeCalendar(t, w, cal)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.ModTime().Equal(past) {
		t.Fatalf("expected identical snapshot not to be rewritten")
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected no temp file left behind")
	}
}

func TestWriterPrunesStaleLogins(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 1)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return base }
	writeCalendar(t, w, simpleCalendar("old-user"))

	w.now = func() time.Time { return base.AddDate(0, 0, 5) }
	writeCalendar(t, w, simpleCalendar("new-user"))

	if _, err := os.Stat(CalendarSnapshotPath(dir, "old-user")); !os.IsNotExist(err) {
		t.Fatalf("expected stale snapshot to be pruned, stat err=%v", err)
	}
	requireSnapshotExists(t, w, "new-user")

	m, _ := readManifest(filepath.Join(dir, manifestFile), 1)
	if len(m.Contributions.Logins) != 1 {
		t.Fatalf("expected only fresh login in manifest, got %v", m.Contributions.Logins)
	}
}

func TestWriterRejectsInvalidLogin(t *testing.T) {
	w := NewWriter(t.TempDir(), 1)
	cal := simpleCalendar("octocat")
	cal.Login = "../escape"
	if err := w.WriteCalendar(cal); !errors.Is(err, contributions.ErrInvalidLogin) {
		t.Fatalf("expected contributions.ErrInvalidLogin, got %v", err)
	}
	var nilWriter *Writer
	if err := nilWriter.WriteCalendar(simpleCalendar("octocat")); err == nil {
		t.Fatalf("expected error for nil writer")
	}
	if nilWriter.BasePath() != "" {
		t.Fatalf("expected empty base path for nil writer")
	}
}

func TestNewWriterDefaultsRetention(t *testing.T) {
	if w := NewWriter(t.TempDir(), 0); w.retentionDays != 14 {
		t.Fatalf("expected default retention 14, got %d", w.retentionDays)
	}
}
