package contributions

import (
	"errors"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Counts maps a calendar day (YYYY-MM-DD) to its contribution count.
type Counts map[string]int

// Calendar is the canonical contribution calendar held for a GitHub login.
type Calendar struct {
	Login              string    `json:"login"`
	Provider           string    `json:"provider"`
	TotalContributions int       `json:"totalContributions"`
	Days               Counts    `json:"days"`
	Years              []int     `json:"years,omitempty"`
	FetchedAt          time.Time `json:"fetchedAt"`
}

// NewCalendar builds a Calendar with a non-nil Days map.
func NewCalendar(login string, total int, days Counts) Calendar {
	if days == nil {
		days = Counts{}
	}
	return Calendar{
		Login:              NormalizeLogin(login),
		TotalContributions: total,
		Days:               days,
	}
}

// Count returns the contributions recorded for date, or zero.
func (c Calendar) Count(date string) int {
	return c.Days[date]
}

// IsEmpty reports whether the calendar carries no day data.
func (c Calendar) IsEmpty() bool {
	return len(c.Days) == 0
}

// Clone returns a deep copy so callers cannot mutate shared day maps.
func (c Calendar) Clone() Calendar {
	out := c
	out.Days = make(Counts, len(c.Days))
	for d, n := range c.Days {
		out.Days[d] = n
	}
	if c.Years != nil {
		out.Years = append([]int(nil), c.Years...)
	}
	return out
}

// SortedDates returns the recorded days in ascending order.
func (c Calendar) SortedDates() []string {
	dates := make([]string, 0, len(c.Days))
	for d := range c.Days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Merge combines calendars for the same login. Later calendars win on duplicate days;
// totals are summed and years unioned.
func Merge(login string, calendars ...Calendar) Calendar {
	out := NewCalendar(login, 0, nil)
	seenYears := make(map[int]struct{})
	for _, c := range calendars {
		out.TotalContributions += c.TotalContributions
		for d, n := range c.Days {
			out.Days[d] = n
		}
		for _, y := range c.Years {
			if _, ok := seenYears[y]; ok {
				continue
			}
			seenYears[y] = struct{}{}
			out.Years = append(out.Years, y)
		}
		if c.Provider != "" {
			out.Provider = c.Provider
		}
		if c.FetchedAt.After(out.FetchedAt) {
			out.FetchedAt = c.FetchedAt
		}
	}
	sort.Ints(out.Years)
	return out
}

// NormalizeLogin lower-cases and trims a GitHub login; logins are case-insensitive.
func NormalizeLogin(login string) string {
	return strings.ToLower(strings.TrimSpace(login))
}

// ErrInvalidLogin is returned for strings that cannot be GitHub usernames.
var ErrInvalidLogin = errors.New("invalid login")

var loginPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9]|-[a-z0-9]){0,38}$`)

// ValidLogin reports whether login (after normalization) is a well-formed GitHub username:
// alphanumerics and single hyphens, no leading or trailing hyphen, at most 39 characters.
func ValidLogin(login string) bool {
	login = NormalizeLogin(login)
	return len(login) <= 39 && loginPattern.MatchString(login)
}
