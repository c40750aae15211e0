package handlers

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	domaincontrib "github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
	domainwidgets "github.com/preston-bernstein/contrib-widget-service/internal/domain/widgets"
	"github.com/preston-bernstein/contrib-widget-service/internal/poller"
	"github.com/preston-bernstein/contrib-widget-service/internal/providers"
	"github.com/preston-bernstein/contrib-widget-service/internal/render"
	"github.com/preston-bernstein/contrib-widget-service/internal/testutil"
)

var refDate = testutil.MustParseDate("2024-06-15")

func routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Get("/contributions/{login}", h.Contributions)
	r.Get("/users/{login}/grid", h.Grid)
	r.Post("/widgets/actions", h.WidgetAction)
	r.Get("/widgets/{login}", h.Widgets)
	r.Get("/widgets/{login}/{size}", h.Widget)
	r.Get("/widgets/{login}/{size}/image.png", h.WidgetImage)
	return r
}

func newTestHandler(t *testing.T, provider providers.ContributionProvider) *Handler {
	t.Helper()
	stack := testutil.NewWidgetStack(provider, nil, nil)
	renderer, err := render.NewRenderer(render.Config{}, nil)
	if err != nil {
		t.Fatalf("expected renderer, got %v", err)
	}
	return NewHandler(stack.Calendars, stack.Widgets, renderer, nil, nil)
}

func sampleProvider() testutil.GoodProvider {
	return testutil.GoodProvider{Calendar: testutil.SampleCalendar("octocat", testutil.SampleCounts(refDate, 21))}
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t, sampleProvider())

	rr := testutil.Serve(routes(h), http.MethodGet, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["status"] != "ok" {
		t.Fatalf("expected status ok, got %s", resp["status"])
	}
}

func TestHealthShuttingDownReturnsServiceUnavailable(t *testing.T) {
	h := newTestHandler(t, sampleProvider())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	rr := testutil.ServeRequest(http.HandlerFunc(h.Health), req.WithContext(ctx))

	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	var resp map[string]string
	testutil.DecodeJSON(t, rr, &resp)
	if resp["error"] != "shutting down" {
		t.Fatalf("unexpected error %q", resp["error"])
	}
}

func TestReady(t *testing.T) {
	h := newTestHandler(t, sampleProvider())
	testutil.AssertStatus(t, testutil.Serve(routes(h), http.MethodGet, "/ready", nil), http.StatusOK)

	status := poller.Status{LastError: "upstream down", ConsecutiveFailures: 1}
	h.statusFn = func() poller.Status { return status }
	rr := testutil.Serve(routes(h), http.MethodGet, "/ready", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	if !strings.Contains(rr.Body.String(), "upstream down") {
		t.Fatalf("expected last error in body, got %s", rr.Body.String())
	}

	status = poller.Status{LastSuccess: time.Now()}
	testutil.AssertStatus(t, testutil.Serve(routes(h), http.MethodGet, "/ready", nil), http.StatusOK)
}

func TestContributions(t *testing.T) {
	h := newTestHandler(t, sampleProvider())

	rr := testutil.Serve(routes(h), http.MethodGet, "/contributions/Octocat?date=2024-06-15", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var cal domaincontrib.Calendar
	testutil.DecodeJSON(t, rr, &cal)
	if cal.Login != "octocat" || cal.Count("2024-06-15") != 21 || cal.TotalContributions != 231 {
		t.Fatalf("unexpected calendar %+v", cal)
	}
}

func TestContributionsMapsFailures(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		provider providers.ContributionProvider
		want     int
	}{
		{name: "invalid login", path: "/contributions/-bad-", provider: sampleProvider(), want: http.StatusBadRequest},
		{name: "unknown user", path: "/contributions/ghost", provider: testutil.ErrProvider{Err: providers.ErrUserNotFound}, want: http.StatusNotFound},
		{name: "unavailable", path: "/contributions/octocat", provider: testutil.UnavailableProvider{}, want: http.StatusBadGateway},
		{name: "bad date", path: "/contributions/octocat?date=06-15-2024", provider: sampleProvider(), want: http.StatusBadRequest},
		{name: "bad timezone", path: "/contributions/octocat?tz=Mars/Base", provider: sampleProvider(), want: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(t, tc.provider)
			rr := testutil.Serve(routes(h), http.MethodGet, tc.path, nil)
			testutil.AssertStatus(t, rr, tc.want)
			var body map[string]string
			testutil.DecodeJSON(t, rr, &body)
			if body["error"] == "" {
				t.Fatalf("expected error message, got %v", body)
			}
		})
	}
}

func TestContributionsRateLimitedSetsRetryAfter(t *testing.T) {
	rl := &providers.RateLimitError{Provider: "github", StatusCode: http.StatusTooManyRequests, RetryAfter: 30 * time.Second}
	h := newTestHandler(t, testutil.ErrProvider{Err: rl})

	rr := testutil.Serve(routes(h), http.MethodGet, "/contributions/octocat", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	if got := rr.Header().Get("Retry-After"); got != "30" {
		t.Fatalf("expected Retry-After 30, got %q", got)
	}
}

func TestWidget(t *testing.T) {
	h := newTestHandler(t, sampleProvider())

	rr := testutil.Serve(routes(h), http.MethodGet, "/widgets/octocat/3x1?date=2024-06-15", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var data domainwidgets.Data
	testutil.DecodeJSON(t, rr, &data)
	if data.Size != domainwidgets.Size3x1 || len(data.Cells) != 21 || data.Today != 21 {
		t.Fatalf("unexpected widget payload %+v", data)
	}
	if data.Cells[0].Date != "2024-05-26" || data.Cells[20].Color != "#216E39" {
		t.Fatalf("unexpected cells %+v .. %+v", data.Cells[0], data.Cells[20])
	}

	rr = testutil.Serve(routes(h), http.MethodGet, "/widgets/octocat/9x9", nil)
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestWidgets(t *testing.T) {
	h := newTestHandler(t, sampleProvider())

	rr := testutil.Serve(routes(h), http.MethodGet, "/widgets/Octocat?date=2024-06-15", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var resp widgetsResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Login != "octocat" || resp.Date != "2024-06-15" || len(resp.Widgets) != len(domainwidgets.AllSizes()) {
		t.Fatalf("unexpected widgets response %+v", resp)
	}
}

func TestWidgetImage(t *testing.T) {
	h := newTestHandler(t, sampleProvider())

	rr := testutil.Serve(routes(h), http.MethodGet, "/widgets/octocat/4x1/image.png?date=2024-06-15", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if got := rr.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("expected png content type, got %s", got)
	}
	img, err := png.Decode(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("expected decodable png, got %v", err)
	}
	// 28 days at 14px cells with a 1px gap.
	if b := img.Bounds(); b.Dx() != 4*15+1 || b.Dy() != 7*15+1 {
		t.Fatalf("unexpected image bounds %v", b)
	}

	h.renderer = nil
	rr = testutil.Serve(routes(h), http.MethodGet, "/widgets/octocat/4x1/image.png", nil)
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
}

type failingRenderer struct{}

func (failingRenderer) PNG(domainwidgets.Data) ([]byte, error) {
	return nil, errors.New("encode failed")
}

func TestWidgetImageRenderFailureWithoutLogger(t *testing.T) {
	h := newTestHandler(t, sampleProvider())
	h.renderer = failingRenderer{}

	rr := testutil.Serve(routes(h), http.MethodGet, "/widgets/octocat/4x1/image.png?date=2024-06-15", nil)
	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	if !strings.Contains(rr.Body.String(), "render failed") {
		t.Fatalf("expected render error body, got %s", rr.Body.String())
	}
}

func TestGrid(t *testing.T) {
	h := newTestHandler(t, sampleProvider())

	rr := testutil.Serve(routes(h), http.MethodGet, "/users/Octocat/grid?date=2024-06-15", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var resp gridResponse
	testutil.DecodeJSON(t, rr, &resp)
	if resp.Login != "octocat" || resp.GridSize != 21 || len(resp.Cells) != 21 {
		t.Fatalf("unexpected grid response %+v", resp)
	}
	for i, c := range resp.Cells {
		if c.Index != i {
			t.Fatalf("expected index %d, got %d", i, c.Index)
		}
	}
}

func TestWidgetAction(t *testing.T) {
	h := newTestHandler(t, sampleProvider())

	body := strings.NewReader(`{"action":"open_app","login":"octocat"}`)
	rr := testutil.Serve(routes(h), http.MethodPost, "/widgets/actions", body)
	testutil.AssertStatus(t, rr, http.StatusOK)
	var res domainwidgets.ActionResult
	testutil.DecodeJSON(t, rr, &res)
	if res.Action != domainwidgets.ActionOpenApp || !strings.Contains(res.DeepLink, "login=octocat") {
		t.Fatalf("unexpected action result %+v", res)
	}

	body = strings.NewReader(`{"action":"REFRESH","login":"octocat"}`)
	rr = testutil.Serve(routes(h), http.MethodPost, "/widgets/actions?date=2024-06-15", body)
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.DecodeJSON(t, rr, &res)
	if !res.Synced {
		t.Fatalf("expected refresh to sync, got %+v", res)
	}
}

func TestWidgetActionRejectsBadInput(t *testing.T) {
	h := newTestHandler(t, sampleProvider())
	cases := map[string]string{
		"malformed":      `{"action":`,
		"unknown field":  `{"action":"REFRESH","login":"octocat","extra":1}`,
		"unknown action": `{"action":"DANCE","login":"octocat"}`,
		"invalid login":  `{"action":"REFRESH","login":"not valid"}`,
	}
	for name, payload := range cases {
		rr := testutil.Serve(routes(h), http.MethodPost, "/widgets/actions", strings.NewReader(payload))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d (%s)", name, rr.Code, rr.Body.String())
		}
	}
}
