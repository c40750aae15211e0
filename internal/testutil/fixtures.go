package testutil

import (
	"time"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
)

// SampleCounts returns one entry per day for the n days ending at ref, with count i+1 on day i.
func SampleCounts(ref time.Time, n int) contributions.Counts {
	counts := make(contributions.Counts, n)
	for i := 0; i < n; i++ {
		day := ref.AddDate(0, 0, -(n - 1 - i))
		counts[day.Format(time.DateOnly)] = i + 1
	}
	return counts
}

// SampleCalendar builds a calendar for login over the given counts, summing the total.
func SampleCalendar(login string, counts contributions.Counts) contributions.Calendar {
	total := 0
	for _, n := range counts {
		total += n
	}
	cal := contributions.NewCalendar(login, total, counts)
	cal.Provider = "test"
	return cal
}
