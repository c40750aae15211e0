package config

import "github.com/preston-bernstein/contrib-widget-service/internal/grid"

// WidgetConfig controls grid geometry and rendering.
type WidgetConfig struct {
	GridSize   int
	Layout     grid.Layout
	ColorScale grid.ColorScale
	Timezone   string
	DeepLink   string
	CacheSize  int
	// StaleAfter flags payloads whose calendar is older than this; zero disables the flag.
	StaleAfter Duration
	// Background fills rendered images; empty keeps them transparent.
	Background string
}

func loadWidget() WidgetConfig {
	return WidgetConfig{
		GridSize:   intEnvOrDefault(envGridSize, defaultGridSize),
		Layout:     grid.Layout(envOrDefault(envGridLayout, defaultGridLayout)),
		ColorScale: grid.DefaultScale(),
		Timezone:   envOrDefault(envWidgetTimezone, defaultWidgetTimezone),
		DeepLink:   envOrDefault(envDeepLink, defaultDeepLink),
		CacheSize:  intEnvOrDefault(envRenderCacheSize, defaultRenderCacheSize),
		StaleAfter: durationEnvOrDefault(envStaleAfter, defaultStaleAfter),
		Background: envOrDefault(envRenderBackground, ""),
	}
}
