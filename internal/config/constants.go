package config

import "time"

const (
	envPort               = "PORT"
	envPollInterval       = "POLL_INTERVAL"
	envProvider           = "PROVIDER"
	envUsername           = "GITHUB_USERNAME"
	envGraphQLURL         = "GITHUB_GRAPHQL_URL"
	envGitHubToken        = "GITHUB_TOKEN"
	envGitHubTimeout      = "GITHUB_HTTP_TIMEOUT"
	envResourcesFile      = "RESOURCES_FILE"
	envGridSize           = "WIDGET_GRID_SIZE"
	envGridLayout         = "WIDGET_LAYOUT"
	envWidgetTimezone     = "WIDGET_TIMEZONE"
	envDeepLink           = "WIDGET_DEEP_LINK"
	envRenderCacheSize    = "RENDER_CACHE_SIZE"
	envRenderBackground   = "RENDER_BACKGROUND"
	envStaleAfter         = "WIDGET_STALE_AFTER"
	envCORSOrigins        = "CORS_ORIGINS"
	envMetricsPort        = "METRICS_PORT"
	envMetricsOn          = "METRICS_ENABLED"
	envOtelEndpoint       = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService        = "OTEL_SERVICE_NAME"
	envOtelInsecure       = "OTEL_EXPORTER_OTLP_INSECURE"
	envAdminToken         = "ADMIN_TOKEN"
	envSnapshotEnabled    = "SNAPSHOT_ENABLED"
	envSnapshotFolder     = "SNAPSHOT_FOLDER"
	envSnapshotRetention  = "SNAPSHOT_RETENTION_DAYS"
	envProviderMinSpacing = "PROVIDER_MIN_INTERVAL"

	defaultPort = "4000"
	// Matches the mobile app's background sync cadence.
	defaultPollInterval  = 3 * Duration(time.Hour)
	defaultProvider      = "fixture"
	defaultUsername      = "octocat"
	defaultGraphQLURL    = "https://api.github.com/graphql"
	defaultGitHubTimeout = 30 * Duration(time.Second)
	// GitHub allows 5000 authenticated requests per hour; one per second leaves ample headroom.
	defaultProviderMinSpacing = Duration(time.Second)
	defaultResourcesFile      = "config/resources.yaml"
	defaultGridSize           = 21
	defaultGridLayout         = "chronological"
	defaultWidgetTimezone     = "UTC"
	defaultDeepLink           = "rngithubwidget://open"
	defaultRenderCacheSize    = 256
	defaultStaleAfter         = 24 * Duration(time.Hour)
	defaultMetricsPort        = "9090"
	defaultServiceName        = "contrib-widget-service"
	defaultSnapshotEnabled    = true
	defaultSnapshotFolder     = "data/snapshots"
	defaultSnapshotRetention  = 30
)
