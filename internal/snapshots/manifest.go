package snapshots

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Manifest tracks snapshot metadata.
type Manifest struct {
	Version       int           `json:"version"`
	GeneratedAt   time.Time     `json:"generatedAt"`
	Retention     Retention     `json:"retention"`
	Contributions CalendarsMeta `json:"contributions"`
}

type Retention struct {
	CalendarDays int `json:"calendarDays"`
}

// CalendarsMeta maps each stored login to the time its snapshot was last refreshed.
type CalendarsMeta struct {
	Logins        map[string]time.Time `json:"logins"`
	LastRefreshed time.Time            `json:"lastRefreshed"`
}

func defaultManifest(retentionDays int) Manifest {
	return Manifest{
		Version:     1,
		GeneratedAt: time.Now().UTC(),
		Retention: Retention{
			CalendarDays: retentionDays,
		},
		Contributions: CalendarsMeta{
			Logins: map[string]time.Time{},
		},
	}
}

func readManifest(path string, retentionDays int) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return defaultManifest(retentionDays), err
	}
	defer f.Close()
	var m Manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return defaultManifest(retentionDays), err
	}
	if m.Contributions.Logins == nil {
		m.Contributions.Logins = map[string]time.Time{}
	}
	return m, nil
}

func writeManifest(basePath string, m Manifest) error {
	m.GeneratedAt = time.Now().UTC()
	path := filepath.Join(basePath, manifestFile)
	tmp := path + ".tmp"
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
