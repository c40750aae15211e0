package config

// SnapshotConfig controls on-disk persistence of fetched calendars.
type SnapshotConfig struct {
	Enabled       bool
	Folder        string // base path for snapshots
	RetentionDays int    // calendars not refreshed within this window are pruned
}

func loadSnapshots() SnapshotConfig {
	return SnapshotConfig{
		Enabled:       boolEnvOrDefault(envSnapshotEnabled, defaultSnapshotEnabled),
		Folder:        envOrDefault(envSnapshotFolder, defaultSnapshotFolder),
		RetentionDays: intEnvOrDefault(envSnapshotRetention, defaultSnapshotRetention),
	}
}
