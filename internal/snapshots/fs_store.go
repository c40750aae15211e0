package snapshots

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
)

// ErrSnapshotNotFound is returned when no snapshot exists for a login.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Store defines how snapshots are loaded.
type Store interface {
	LoadCalendar(login string) (contributions.Calendar, error)
}

// FSStore loads snapshots from the filesystem.
type FSStore struct {
	basePath string
}

// NewFSStore constructs an FS-backed snapshot store rooted at basePath.
func NewFSStore(basePath string) *FSStore {
	return &FSStore{basePath: basePath}
}

// LoadCalendar reads the snapshot for login from {basePath}/contributions/{login}.json.
func (s *FSStore) LoadCalendar(login string) (contributions.Calendar, error) {
	if s == nil {
		return contributions.Calendar{}, errors.New("snapshot store not configured")
	}
	login = contributions.NormalizeLogin(login)
	if !contributions.ValidLogin(login) {
		return contributions.Calendar{}, fmt.Errorf("%w: %q", contributions.ErrInvalidLogin, login)
	}

	var cal contributions.Calendar
	if err := s.decodeFile(CalendarSnapshotPath(s.basePath, login), &cal); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return contributions.Calendar{}, fmt.Errorf("%w: %s", ErrSnapshotNotFound, login)
		}
		return contributions.Calendar{}, err
	}
	if cal.Login == "" {
		cal.Login = login
	}
	if cal.Days == nil {
		cal.Days = contributions.Counts{}
	}
	return cal, nil
}

func (s *FSStore) decodeFile(path string, payload any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(payload)
}
