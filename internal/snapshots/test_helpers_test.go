package snapshots

import (
	"os"
	"testing"
	"time"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
)

func simpleCalendar(login string) contributions.Calendar {
	cal := contributions.NewCalendar(login, 3, contributions.Counts{"2024-01-01": 1, "2024-01-02": 2})
	cal.Provider = "fixture"
	cal.Years = []int{2024}
	cal.FetchedAt = time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC)
	return cal
}

func writeCalendar(t *testing.T, w *Writer, cal contributions.Calendar) {
	t.Helper()
	if err := w.WriteCalendar(cal); err != nil {
		t.Fatalf("failed to write snapshot for %s: %v", cal.Login, err)
	}
}

func requireSnapshotExists(t *testing.T, w *Writer, login string) {
	t.Helper()
	if _, err := os.Stat(CalendarSnapshotPath(w.BasePath(), login)); err != nil {
		t.Fatalf("expected snapshot for %s to be written: %v", login, err)
	}
}
