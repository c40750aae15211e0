package contributions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	domaincontrib "github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
	"github.com/preston-bernstein/contrib-widget-service/internal/logging"
	"github.com/preston-bernstein/contrib-widget-service/internal/metrics"
	"github.com/preston-bernstein/contrib-widget-service/internal/providers"
	"github.com/preston-bernstein/contrib-widget-service/internal/timeutil"
)

const (
	// Widest widget window (4x3 shows 147 days).
	defaultWindowDays = 147
	defaultSyncLimit  = 4
	// A shared sync outlives the request that started it, bounded by this timeout.
	defaultFlightTimeout = 30 * time.Second
)

// ErrCalendarNotFound is returned when no calendar is held or snapshotted for a login.
var ErrCalendarNotFound = errors.New("calendar not found")

// Store defines the contract for holding the latest calendar per login.
type Store interface {
	GetCalendar(login string) (domaincontrib.Calendar, bool)
	SetCalendar(cal domaincontrib.Calendar)
}

// SnapshotWriter persists calendars to disk.
type SnapshotWriter interface {
	WriteCalendar(cal domaincontrib.Calendar) error
}

// SnapshotStore loads previously persisted calendars.
type SnapshotStore interface {
	LoadCalendar(login string) (domaincontrib.Calendar, error)
}

// Option customizes a Service.
type Option func(*Service)

// WithSnapshots enables persisting synced calendars and falling back to them when the upstream fails.
func WithSnapshots(writer SnapshotWriter, store SnapshotStore) Option {
	return func(s *Service) {
		s.writer = writer
		s.snapshots = store
	}
}

// WithWindowDays sets how many days back from the reference date a sync must cover.
func WithWindowDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.windowDays = days
		}
	}
}

// WithLogins tracks the given logins from the start.
func WithLogins(logins ...string) Option {
	return func(s *Service) {
		for _, l := range logins {
			s.track(l)
		}
	}
}

// Service fetches, stores, and serves contribution calendars.
type Service struct {
	provider   providers.ContributionProvider
	store      Store
	writer     SnapshotWriter
	snapshots  SnapshotStore
	logger     *slog.Logger
	metrics    *metrics.Recorder
	windowDays int
	flights    singleflight.Group
	flightTTL  time.Duration

	mu      sync.RWMutex
	tracked map[string]struct{}
}

// NewService constructs a Service backed by provider and store.
func NewService(provider providers.ContributionProvider, store Store, logger *slog.Logger, recorder *metrics.Recorder, opts ...Option) *Service {
	s := &Service{
		provider:   provider,
		store:      store,
		logger:     logger,
		metrics:    recorder,
		windowDays: defaultWindowDays,
		flightTTL:  defaultFlightTimeout,
		tracked:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync fetches the calendar years covering the window that ends at reference, merges them,
// and stores the result. On failure the last known calendar is returned together with the error,
// so callers can keep serving stale data.
//
// Concurrent syncs of the same login and day share one upstream fetch. The fetch is detached from
// the caller that started it, so a caller giving up only abandons its own wait.
func (s *Service) Sync(ctx context.Context, login string, reference time.Time) (domaincontrib.Calendar, error) {
	login = domaincontrib.NormalizeLogin(login)
	if !domaincontrib.ValidLogin(login) {
		return domaincontrib.Calendar{}, fmt.Errorf("%w: %q", domaincontrib.ErrInvalidLogin, login)
	}
	day := timeutil.CivilDay(reference)
	key := login + "@" + timeutil.FormatDate(day)

	ch := s.flights.DoChan(key, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.flightTTL)
		defer cancel()
		return s.sync(flightCtx, login, day)
	})
	select {
	case res := <-ch:
		cal, _ := res.Val.(domaincontrib.Calendar)
		return cal, res.Err
	case <-ctx.Done():
		return domaincontrib.Calendar{}, ctx.Err()
	}
}

func (s *Service) sync(ctx context.Context, login string, day time.Time) (domaincontrib.Calendar, error) {
	start := time.Now()
	years := s.yearsFor(day)

	cal, err := s.fetchYears(ctx, login, years)
	s.metrics.RecordSync(time.Since(start), err)
	if err != nil {
		logging.Warn(logging.FromContext(ctx, s.logger), "contribution sync failed",
			slog.String(logging.FieldLogin, login),
			slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
			slog.Any("error", err),
		)
		if fallback, ok := s.lastKnown(login); ok {
			return fallback, err
		}
		return domaincontrib.Calendar{}, err
	}

	s.store.SetCalendar(cal)
	if s.writer != nil {
		if werr := s.writer.WriteCalendar(cal); werr != nil {
			logging.Error(logging.FromContext(ctx, s.logger), "calendar snapshot write failed", werr,
				slog.String(logging.FieldLogin, login))
		}
	}

	logging.Info(logging.FromContext(ctx, s.logger), "contributions synced",
		slog.String(logging.FieldLogin, login),
		slog.Int(logging.FieldCount, len(cal.Days)),
		slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()),
	)
	return cal, nil
}

// yearsFor lists the calendar years touched by the window ending at day, oldest first.
func (s *Service) yearsFor(day time.Time) []int {
	first := timeutil.AddDays(day, -(s.windowDays - 1)).Year()
	years := make([]int, 0, 2)
	for y := first; y <= day.Year(); y++ {
		years = append(years, y)
	}
	return years
}

func (s *Service) fetchYears(ctx context.Context, login string, years []int) (domaincontrib.Calendar, error) {
	if s.provider == nil {
		return domaincontrib.Calendar{}, providers.ErrProviderUnavailable
	}
	results := make([]domaincontrib.Calendar, len(years))
	g, gctx := errgroup.WithContext(ctx)
	for i, year := range years {
		g.Go(func() error {
			cal, err := s.provider.FetchCalendar(gctx, login, year)
			if err != nil {
				return fmt.Errorf("fetch %s %d: %w", login, year, err)
			}
			results[i] = cal
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domaincontrib.Calendar{}, err
	}
	return domaincontrib.Merge(login, results...), nil
}

// lastKnown returns the in-memory calendar, or the snapshot on disk (warming memory with it).
func (s *Service) lastKnown(login string) (domaincontrib.Calendar, bool) {
	if cal, ok := s.store.GetCalendar(login); ok {
		return cal, true
	}
	if s.snapshots == nil {
		return domaincontrib.Calendar{}, false
	}
	cal, err := s.snapshots.LoadCalendar(login)
	if err != nil {
		return domaincontrib.Calendar{}, false
	}
	s.store.SetCalendar(cal)
	return cal, true
}

// Calendar returns the last known calendar for login without contacting the upstream.
func (s *Service) Calendar(login string) (domaincontrib.Calendar, error) {
	login = domaincontrib.NormalizeLogin(login)
	if !domaincontrib.ValidLogin(login) {
		return domaincontrib.Calendar{}, fmt.Errorf("%w: %q", domaincontrib.ErrInvalidLogin, login)
	}
	if cal, ok := s.lastKnown(login); ok {
		return cal, nil
	}
	return domaincontrib.Calendar{}, fmt.Errorf("%w: %s", ErrCalendarNotFound, login)
}

// EnsureCalendar returns the last known calendar when it covers the window ending at reference,
// and syncs otherwise. A failed sync still serves a held calendar rather than nothing.
func (s *Service) EnsureCalendar(ctx context.Context, login string, reference time.Time) (domaincontrib.Calendar, error) {
	logger := logging.FromContext(ctx, s.logger)
	existing, err := s.Calendar(login)
	switch {
	case err == nil:
		if s.covers(existing, timeutil.CivilDay(reference)) {
			logging.Debug(logger, "calendar served from store",
				slog.String(logging.FieldLogin, existing.Login))
			return existing, nil
		}
	case !errors.Is(err, ErrCalendarNotFound):
		return domaincontrib.Calendar{}, err
	}

	cal, syncErr := s.Sync(ctx, login, reference)
	if syncErr != nil && err == nil && ctx.Err() == nil {
		logging.Warn(logger, "serving calendar outside its synced years",
			slog.String(logging.FieldLogin, existing.Login),
			slog.Any("error", syncErr),
		)
		return existing, nil
	}
	return cal, syncErr
}

// covers reports whether cal holds every calendar year the window ending at day touches.
func (s *Service) covers(cal domaincontrib.Calendar, day time.Time) bool {
	held := make(map[int]struct{}, len(cal.Years))
	for _, y := range cal.Years {
		held[y] = struct{}{}
	}
	for _, y := range s.yearsFor(day) {
		if _, ok := held[y]; !ok {
			return false
		}
	}
	return true
}

// SyncAll syncs every tracked login and joins the failures.
func (s *Service) SyncAll(ctx context.Context, reference time.Time) error {
	logins := s.Logins()
	errs := make([]error, len(logins))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultSyncLimit)
	for i, login := range logins {
		g.Go(func() error {
			_, errs[i] = s.Sync(gctx, login, reference)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Track adds login to the set synced in the background. Syncs alone never track a login.
func (s *Service) Track(login string) error {
	login = domaincontrib.NormalizeLogin(login)
	if !domaincontrib.ValidLogin(login) {
		return fmt.Errorf("%w: %q", domaincontrib.ErrInvalidLogin, login)
	}
	s.track(login)
	return nil
}

func (s *Service) track(login string) {
	login = domaincontrib.NormalizeLogin(login)
	if !domaincontrib.ValidLogin(login) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracked[login] = struct{}{}
}

// Untrack stops background syncs for login. Stored data is kept.
func (s *Service) Untrack(login string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tracked, domaincontrib.NormalizeLogin(login))
}

// Logins lists tracked logins in ascending order.
func (s *Service) Logins() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.tracked))
	for l := range s.tracked {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
