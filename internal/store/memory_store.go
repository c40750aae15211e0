package store

import (
	"sort"
	"sync"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
)

// MemoryStore keeps a thread-safe copy of the latest calendar per login.
type MemoryStore struct {
	mu        sync.RWMutex
	calendars map[string]contributions.Calendar
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		calendars: make(map[string]contributions.Calendar),
	}
}

// GetCalendar retrieves the calendar stored for login.
func (s *MemoryStore) GetCalendar(login string) (contributions.Calendar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.calendars[contributions.NormalizeLogin(login)]
	if !ok {
		return contributions.Calendar{}, false
	}
	return c.Clone(), true
}

// SetCalendar replaces the calendar held for the calendar's login.
func (s *MemoryStore) SetCalendar(cal contributions.Calendar) {
	login := contributions.NormalizeLogin(cal.Login)
	cal = cal.Clone()
	cal.Login = login

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendars[login] = cal
}

// Delete drops the calendar held for login.
func (s *MemoryStore) Delete(login string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.calendars, contributions.NormalizeLogin(login))
}

// Logins lists stored logins in ascending order.
func (s *MemoryStore) Logins() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.calendars))
	for login := range s.calendars {
		out = append(out, login)
	}
	sort.Strings(out)
	return out
}
