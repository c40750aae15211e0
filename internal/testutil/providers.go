package testutil

import (
	"context"

	"github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
	"github.com/preston-bernstein/contrib-widget-service/internal/providers"
)

// GoodProvider returns the provided calendar for every login and year.
type GoodProvider struct {
	Calendar contributions.Calendar
}

func (p GoodProvider) FetchCalendar(ctx context.Context, login string, year int) (contributions.Calendar, error) {
	_ = ctx
	cal := p.Calendar.Clone()
	cal.Login = contributions.NormalizeLogin(login)
	cal.Years = []int{year}
	return cal, nil
}

// ErrProvider always returns the provided error.
type ErrProvider struct {
	Err error
}

func (p ErrProvider) FetchCalendar(ctx context.Context, login string, year int) (contributions.Calendar, error) {
	return contributions.Calendar{}, p.Err
}

// UnavailableProvider returns ErrProviderUnavailable.
type UnavailableProvider struct{}

func (UnavailableProvider) FetchCalendar(ctx context.Context, login string, year int) (contributions.Calendar, error) {
	return contributions.Calendar{}, providers.ErrProviderUnavailable
}

// NotifyingProvider returns an empty calendar and closes Notify on first fetch.
type NotifyingProvider struct {
	Notify chan struct{}
}

func (p *NotifyingProvider) FetchCalendar(ctx context.Context, login string, year int) (contributions.Calendar, error) {
	_ = ctx
	if p.Notify != nil {
		select {
		case <-p.Notify:
		default:
			close(p.Notify)
		}
	}
	cal := contributions.NewCalendar(login, 0, nil)
	cal.Years = []int{year}
	return cal, nil
}
