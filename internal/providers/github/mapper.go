package github

import (
	"fmt"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
)

func mapCalendar(login string, year int, cal calendarResponse) contributions.Calendar {
	days := make(contributions.Counts)
	for _, w := range cal.Weeks {
		for _, d := range w.ContributionDays {
			if d.Date == "" {
				continue
			}
			days[d.Date] = d.ContributionCount
		}
	}
	out := contributions.NewCalendar(login, cal.TotalContributions, days)
	out.Provider = providerName
	out.Years = []int{year}
	return out
}

func yearWindow(year int) (from, to string) {
	return fmt.Sprintf("%04d-01-01T00:00:00Z", year), fmt.Sprintf("%04d-12-31T23:59:59Z", year)
}
