package snapshots

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
)

// Writer persists calendar snapshots and the manifest with pruning.
type Writer struct {
	basePath      string
	retentionDays int
	now           func() time.Time
	mu            sync.Mutex
}

// NewWriter constructs a writer rooted at basePath. Logins not refreshed within retentionDays are pruned.
func NewWriter(basePath string, retentionDays int) *Writer {
	if retentionDays <= 0 {
		retentionDays = 14
	}
	return &Writer{
		basePath:      basePath,
		retentionDays: retentionDays,
		now:           time.Now,
	}
}

// BasePath exposes the writer root path (primarily for testing).
func (w *Writer) BasePath() string {
	if w == nil {
		return ""
	}
	return w.basePath
}

// WriteCalendar writes the calendar snapshot of its login and prunes stale logins.
// Identical content is not rewritten; the manifest timestamp is still refreshed.
func (w *Writer) WriteCalendar(cal contributions.Calendar) error {
	if w == nil {
		return fmt.Errorf("snapshot writer not configured")
	}
	login := contributions.NormalizeLogin(cal.Login)
	if !contributions.ValidLogin(login) {
		return fmt.Errorf("%w: %q", contributions.ErrInvalidLogin, cal.Login)
	}
	cal.Login = login

	w.mu.Lock()
	defer w.mu.Unlock()

	target := CalendarSnapshotPath(w.basePath, login)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cal, "", "  ")
	if err != nil {
		return err
	}

	if existing, err := os.ReadFile(target); err != nil || !bytes.Equal(existing, data) {
		tmp := target + ".tmp"
		if err := os.WriteFile(tmp, data, 0o644); err != nil {
			return err
		}
		if err := os.Rename(tmp, target); err != nil {
			return err
		}
	}

	return w.updateManifest(login)
}

func (w *Writer) updateManifest(login string) error {
	m, _ := readManifest(filepath.Join(w.basePath, manifestFile), w.retentionDays)
	now := w.now().UTC()

	m.Contributions.Logins[login] = now
	m.Contributions.LastRefreshed = now
	m.Retention.CalendarDays = w.retentionDays
	w.pruneStale(m.Contributions.Logins, now)

	return writeManifest(w.basePath, m)
}

// pruneStale drops logins whose last refresh precedes the retention window, including their files.
func (w *Writer) pruneStale(logins map[string]time.Time, now time.Time) {
	cutoff := now.AddDate(0, 0, -w.retentionDays)
	for login, refreshed := range logins {
		if refreshed.Before(cutoff) {
			_ = os.Remove(CalendarSnapshotPath(w.basePath, login))
			delete(logins, login)
		}
	}
}
