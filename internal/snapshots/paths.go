package snapshots

import (
	"fmt"
	"path/filepath"
)

const (
	manifestFile = "manifest.json"
	calendarsDir = "contributions"
)

// CalendarSnapshotPath builds the path to the calendar snapshot of a login.
func CalendarSnapshotPath(basePath, login string) string {
	return filepath.Join(basePath, calendarsDir, fmt.Sprintf("%s.json", login))
}
