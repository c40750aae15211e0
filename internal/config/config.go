package config

// Config holds runtime configuration for the server.
type Config struct {
	Port         string
	PollInterval Duration
	Provider     string
	AdminToken   string
	CORSOrigins  []string
	GitHub       GitHubConfig
	Widget       WidgetConfig
	Metrics      MetricsConfig
	Snapshots    SnapshotConfig
	Resources    Resources
}

// Load reads configuration from environment variables with sensible defaults.
// Only an unreadable or malformed resources file is reported as an error.
func Load() (Config, error) {
	resources, err := LoadResources(envOrDefault(envResourcesFile, defaultResourcesFile))
	if err != nil {
		return Config{}, err
	}
	if token := envOrDefault(envGitHubToken, ""); token != "" {
		resources = resources.With(KeyGitHubToken, token)
	}
	widget := loadWidget()
	if len(resources.ColorScale) > 0 {
		widget.ColorScale = resources.ColorScale
	}
	return Config{
		Port:         envOrDefault(envPort, defaultPort),
		PollInterval: durationEnvOrDefault(envPollInterval, defaultPollInterval),
		Provider:     envOrDefault(envProvider, defaultProvider),
		AdminToken:   envOrDefault(envAdminToken, ""),
		CORSOrigins:  listEnvOrDefault(envCORSOrigins, nil),
		GitHub:       loadGitHub(),
		Widget:       widget,
		Metrics:      loadMetrics(),
		Snapshots:    loadSnapshots(),
		Resources:    resources,
	}, nil
}
