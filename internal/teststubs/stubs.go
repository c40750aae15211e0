package teststubs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
)

// StubProvider is a test double for providers.ContributionProvider.
// Days are served for every requested year; YearErrs fails specific years.
type StubProvider struct {
	Days     contributions.Counts
	Total    int
	Err      error
	YearErrs map[int]error
	Calls    atomic.Int32
	Notify   chan struct{}

	mu    sync.Mutex
	years []int
}

// FetchCalendar returns the configured calendar and error while tracking calls.
func (s *StubProvider) FetchCalendar(ctx context.Context, login string, year int) (contributions.Calendar, error) {
	_ = ctx
	if s.Notify != nil {
		s.mu.Lock()
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
		s.mu.Unlock()
	}
	s.Calls.Add(1)
	s.mu.Lock()
	s.years = append(s.years, year)
	s.mu.Unlock()

	if s.Err != nil {
		return contributions.Calendar{}, s.Err
	}
	if err, ok := s.YearErrs[year]; ok {
		return contributions.Calendar{}, err
	}
	days := make(contributions.Counts)
	for d, n := range s.Days {
		if strings.HasPrefix(d, yearPrefix(year)+"-") {
			days[d] = n
		}
	}
	cal := contributions.NewCalendar(login, s.Total, days)
	cal.Provider = "stub"
	cal.Years = []int{year}
	return cal, nil
}

// Years returns the years requested so far, in call order.
func (s *StubProvider) Years() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.years...)
}

func yearPrefix(year int) string {
	return fmt.Sprintf("%04d", year)
}

// StubSnapshotStore is a test double for snapshots.Store.
type StubSnapshotStore struct {
	Calendars map[string]contributions.Calendar // keyed by login
	LoadErr   error
}

// LoadCalendar returns the calendar for login if present in the Calendars map.
func (s *StubSnapshotStore) LoadCalendar(login string) (contributions.Calendar, error) {
	if s.LoadErr != nil {
		return contributions.Calendar{}, s.LoadErr
	}
	cal, ok := s.Calendars[login]
	if !ok {
		return contributions.Calendar{}, errors.New("snapshot not found")
	}
	return cal, nil
}

// StubSnapshotWriter is a test double for the calendar snapshot writer.
type StubSnapshotWriter struct {
	mu      sync.Mutex
	Written map[string]contributions.Calendar // keyed by login
	Err     error
}

// WriteCalendar records the snapshot for verification in tests.
func (w *StubSnapshotWriter) WriteCalendar(cal contributions.Calendar) error {
	if w.Err != nil {
		return w.Err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Written == nil {
		w.Written = make(map[string]contributions.Calendar)
	}
	w.Written[cal.Login] = cal
	return nil
}

// Get returns the snapshot written for login.
func (w *StubSnapshotWriter) Get(login string) (contributions.Calendar, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	cal, ok := w.Written[login]
	return cal, ok
}
