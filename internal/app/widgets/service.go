package widgets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	domaincontrib "github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
	domainwidgets "github.com/preston-bernstein/contrib-widget-service/internal/domain/widgets"
	"github.com/preston-bernstein/contrib-widget-service/internal/grid"
	"github.com/preston-bernstein/contrib-widget-service/internal/logging"
	"github.com/preston-bernstein/contrib-widget-service/internal/metrics"
	"github.com/preston-bernstein/contrib-widget-service/internal/timeutil"
)

var (
	// ErrUnknownAction is returned for tap actions the widget does not wire.
	ErrUnknownAction = errors.New("unknown widget action")
	// ErrUnknownSize is returned for sizes without a widget configuration.
	ErrUnknownSize = errors.New("unknown widget size")
)

// CalendarSource is the contribution data a widget renders from.
type CalendarSource interface {
	EnsureCalendar(ctx context.Context, login string, reference time.Time) (domaincontrib.Calendar, error)
	Sync(ctx context.Context, login string, reference time.Time) (domaincontrib.Calendar, error)
	Track(login string) error
	Untrack(login string)
}

// Config controls grid geometry and tap targets shared by every widget size.
type Config struct {
	GridSize   int
	Scale      grid.ColorScale
	Layout     grid.Layout
	DeepLink   string
	Location   *time.Location
	StaleAfter time.Duration
}

// Service is the explicit widget update handle: it turns stored calendars into widget payloads
// and performs tap actions.
type Service struct {
	calendars  CalendarSource
	mappers    map[domainwidgets.Size]*grid.Mapper
	grid       *grid.Mapper
	deepLink   string
	loc        *time.Location
	staleAfter time.Duration
	logger     *slog.Logger
	metrics    *metrics.Recorder
	now        func() time.Time
}

// NewService builds one mapper per widget size. Grid or color scale misconfiguration fails here.
func NewService(calendars CalendarSource, cfg Config, logger *slog.Logger, recorder *metrics.Recorder) (*Service, error) {
	opts := []grid.Option{grid.WithLayout(cfg.Layout)}
	base, err := grid.NewMapper(cfg.GridSize, cfg.Scale, opts...)
	if err != nil {
		return nil, err
	}
	mappers := make(map[domainwidgets.Size]*grid.Mapper)
	for _, size := range domainwidgets.AllSizes() {
		wc, _ := domainwidgets.ConfigFor(size)
		m, err := grid.NewMapper(wc.DisplayDays, cfg.Scale, opts...)
		if err != nil {
			return nil, fmt.Errorf("widget %s: %w", size, err)
		}
		mappers[size] = m
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		calendars:  calendars,
		mappers:    mappers,
		grid:       base,
		deepLink:   cfg.DeepLink,
		loc:        loc,
		staleAfter: cfg.StaleAfter,
		logger:     logger,
		metrics:    recorder,
		now:        time.Now,
	}, nil
}

// Reference returns today's civil date in loc, or in the service's zone when loc is nil.
func (s *Service) Reference(loc *time.Location) time.Time {
	if loc == nil {
		loc = s.loc
	}
	return timeutil.TodayIn(s.now(), loc)
}

// Scale returns the color scale every mapper resolves with.
func (s *Service) Scale() grid.ColorScale {
	return s.grid.Scale()
}

// Grid maps the login's calendar onto the configured grid and returns bare cell assignments.
func (s *Service) Grid(ctx context.Context, login string, reference time.Time) ([]grid.CellAssignment, error) {
	cal, err := s.calendars.EnsureCalendar(ctx, login, reference)
	if err != nil {
		return nil, err
	}
	return s.grid.Map(cal.Days, reference), nil
}

// GridSize is the cell count of the configured grid.
func (s *Service) GridSize() int {
	return s.grid.Size()
}

// Render builds the payload for one widget size.
func (s *Service) Render(ctx context.Context, login string, size domainwidgets.Size, reference time.Time) (domainwidgets.Data, error) {
	start := time.Now()
	if _, ok := s.mappers[size]; !ok {
		return domainwidgets.Data{}, fmt.Errorf("%w: %q", ErrUnknownSize, size)
	}
	cal, err := s.calendars.EnsureCalendar(ctx, login, reference)
	if err != nil {
		s.metrics.RecordWidgetRender(string(size), "json", time.Since(start), err)
		return domainwidgets.Data{}, err
	}
	data := s.build(cal, size, reference)
	s.metrics.RecordWidgetRender(string(size), "json", time.Since(start), nil)
	return data, nil
}

// RenderAll renders every widget size for login concurrently, smallest first.
func (s *Service) RenderAll(ctx context.Context, login string, reference time.Time) ([]domainwidgets.Data, error) {
	cal, err := s.calendars.EnsureCalendar(ctx, login, reference)
	if err != nil {
		return nil, err
	}
	sizes := domainwidgets.AllSizes()
	out := make([]domainwidgets.Data, len(sizes))
	g, gctx := errgroup.WithContext(ctx)
	for i, size := range sizes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			out[i] = s.build(cal, size, reference)
			s.metrics.RecordWidgetRender(string(size), "json", time.Since(start), nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) build(cal domaincontrib.Calendar, size domainwidgets.Size, reference time.Time) domainwidgets.Data {
	wc, _ := domainwidgets.ConfigFor(size)
	day := timeutil.CivilDay(reference)
	date := timeutil.FormatDate(day)
	today := cal.Count(date)
	if today < 0 {
		today = 0
	}
	return domainwidgets.Data{
		Login:       cal.Login,
		Size:        size,
		Date:        date,
		Today:       today,
		Total:       cal.TotalContributions,
		Cells:       s.mappers[size].MapDays(cal.Days, day),
		Config:      wc,
		LastUpdated: cal.FetchedAt,
		Stale:       s.isStale(cal),
	}
}

func (s *Service) isStale(cal domaincontrib.Calendar) bool {
	if s.staleAfter <= 0 || cal.FetchedAt.IsZero() {
		return false
	}
	return s.now().Sub(cal.FetchedAt) > s.staleAfter
}

// HandleAction performs a widget tap.
func (s *Service) HandleAction(ctx context.Context, req domainwidgets.ActionRequest, reference time.Time) (domainwidgets.ActionResult, error) {
	login := domaincontrib.NormalizeLogin(req.Login)
	if !domaincontrib.ValidLogin(login) {
		return domainwidgets.ActionResult{}, fmt.Errorf("%w: %q", domaincontrib.ErrInvalidLogin, req.Login)
	}
	logger := logging.FromContext(ctx, s.logger)
	result := domainwidgets.ActionResult{Action: req.Action, Login: login}

	switch req.Action {
	case domainwidgets.ActionRefresh:
		if _, err := s.calendars.Sync(ctx, login, reference); err != nil {
			return result, err
		}
		result.Synced = true
	case domainwidgets.ActionOpenApp:
		result.DeepLink = s.openAppLink(login)
	case domainwidgets.ActionChangeUser:
		next := domaincontrib.NormalizeLogin(req.NewLogin)
		if err := s.calendars.Track(next); err != nil {
			return result, err
		}
		if next != login {
			s.calendars.Untrack(login)
		}
		result.Login = next
		if _, err := s.calendars.Sync(ctx, next, reference); err != nil {
			logging.Warn(logger, "sync after user change failed",
				slog.String(logging.FieldLogin, next),
				slog.Any("error", err),
			)
		} else {
			result.Synced = true
		}
	default:
		return domainwidgets.ActionResult{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}

	logging.Info(logger, "widget action handled",
		slog.String(logging.FieldAction, string(req.Action)),
		slog.String(logging.FieldLogin, result.Login),
	)
	return result, nil
}

func (s *Service) openAppLink(login string) string {
	if s.deepLink == "" {
		return ""
	}
	u, err := url.Parse(s.deepLink)
	if err != nil {
		return s.deepLink
	}
	q := u.Query()
	q.Set("login", login)
	u.RawQuery = q.Encode()
	return u.String()
}
