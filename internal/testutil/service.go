package testutil

import (
	"log/slog"

	appcontrib "github.com/preston-bernstein/contrib-widget-service/internal/app/contributions"
	appwidgets "github.com/preston-bernstein/contrib-widget-service/internal/app/widgets"
	"github.com/preston-bernstein/contrib-widget-service/internal/grid"
	"github.com/preston-bernstein/contrib-widget-service/internal/metrics"
	"github.com/preston-bernstein/contrib-widget-service/internal/providers"
	"github.com/preston-bernstein/contrib-widget-service/internal/store"
)

// WidgetStack is the contribution and widget service pair the HTTP layer serves.
type WidgetStack struct {
	Store     *store.MemoryStore
	Calendars *appcontrib.Service
	Widgets   *appwidgets.Service
}

// NewWidgetStack wires both services over an in-memory store with a 21-cell chronological grid.
func NewWidgetStack(provider providers.ContributionProvider, logger *slog.Logger, recorder *metrics.Recorder) WidgetStack {
	ms := store.NewMemoryStore()
	calendars := appcontrib.NewService(provider, ms, logger, recorder)
	widgets, err := appwidgets.NewService(calendars, appwidgets.Config{
		GridSize: 21,
		Scale:    grid.DefaultScale(),
		DeepLink: "rngithubwidget://open",
	}, logger, recorder)
	if err != nil {
		panic(err)
	}
	return WidgetStack{Store: ms, Calendars: calendars, Widgets: widgets}
}
