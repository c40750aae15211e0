package testutil

import (
	"errors"
	"testing"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
	"github.com/preston-bernstein/contrib-widget-service/internal/snapshots"
)

// NewTempWriter returns a snapshot writer rooted in a temp dir.
func NewTempWriter(t *testing.T, retention int) *snapshots.Writer {
	t.Helper()
	return snapshots.NewWriter(t.TempDir(), retention)
}

// WriteCalendar writes a calendar snapshot, failing the test on error.
func WriteCalendar(t *testing.T, w *snapshots.Writer, cal contributions.Calendar) {
	t.Helper()
	if err := writeCalendarPayload(w, cal); err != nil {
		t.Fatalf("failed to write snapshot for %s: %v", cal.Login, err)
	}
}

func writeCalendarPayload(w *snapshots.Writer, cal contributions.Calendar) error {
	if w == nil {
		return errors.New("nil snapshot writer")
	}
	return w.WriteCalendar(cal)
}

// SnapshotPath returns the expected file path for a login's snapshot.
func SnapshotPath(w *snapshots.Writer, login string) string {
	return snapshots.CalendarSnapshotPath(w.BasePath(), login)
}
