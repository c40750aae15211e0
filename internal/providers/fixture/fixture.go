package fixture

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
	"github.com/preston-bernstein/contrib-widget-service/internal/timeutil"
)

const providerName = "fixture"

// Provider returns deterministic contribution calendars useful for local testing and bootstrapping.
// Counts are derived from the login and date, so repeated fetches agree.
type Provider struct {
	now func() time.Time
}

// New creates a fixture provider with a time source.
func New() *Provider {
	return &Provider{
		now: time.Now,
	}
}

// FetchCalendar returns a full calendar year of synthetic counts. Days after today are omitted.
func (p *Provider) FetchCalendar(ctx context.Context, login string, year int) (contributions.Calendar, error) {
	if err := ctx.Err(); err != nil {
		return contributions.Calendar{}, err
	}
	now := p.now().UTC()
	today := timeutil.CivilDay(now)

	days := make(contributions.Counts)
	total := 0
	for day := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC); day.Year() == year && !day.After(today); day = day.AddDate(0, 0, 1) {
		date := timeutil.FormatDate(day)
		n := Count(login, date)
		days[date] = n
		total += n
	}

	cal := contributions.NewCalendar(login, total, days)
	cal.Provider = providerName
	cal.Years = []int{year}
	cal.FetchedAt = now
	return cal, nil
}

// Count is the synthetic contribution count for login on date. Roughly a third of days are empty.
func Count(login, date string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(contributions.NormalizeLogin(login)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(date))
	v := h.Sum32()
	if v%3 == 0 {
		return 0
	}
	return int(v>>8) % 14
}
