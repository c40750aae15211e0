package providers

import (
	"context"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
)

// ContributionProvider defines how upstream contribution calendars are fetched and normalized.
// A call covers one calendar year (Jan 1 through Dec 31, UTC) for a single login.
type ContributionProvider interface {
	FetchCalendar(ctx context.Context, login string, year int) (contributions.Calendar, error)
}
