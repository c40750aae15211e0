package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/preston-bernstein/contrib-widget-service/internal/http/handlers"
	"github.com/preston-bernstein/contrib-widget-service/internal/render"
	"github.com/preston-bernstein/contrib-widget-service/internal/testutil"
)

func newRouter(t *testing.T, admin *handlers.AdminHandler, origins []string) http.Handler {
	t.Helper()
	provider := testutil.GoodProvider{Calendar: testutil.SampleCalendar("octocat", testutil.SampleCounts(testutil.MustParseDate("2024-06-15"), 7))}
	stack := testutil.NewWidgetStack(provider, nil, nil)
	renderer, err := render.NewRenderer(render.Config{}, nil)
	if err != nil {
		t.Fatalf("expected renderer, got %v", err)
	}
	h := handlers.NewHandler(stack.Calendars, stack.Widgets, renderer, nil, nil)
	return NewRouter(RouterConfig{Handler: h, Admin: admin, CORSOrigins: origins})
}

func TestRouterRoutesKnownPaths(t *testing.T) {
	router := newRouter(t, nil, nil)

	cases := map[string]int{
		"/health":                          http.StatusOK,
		"/ready":                           http.StatusOK,
		"/contributions/octocat":           http.StatusOK,
		"/users/octocat/grid":              http.StatusOK,
		"/widgets/octocat":                 http.StatusOK,
		"/widgets/octocat/2x1":             http.StatusOK,
		"/widgets/octocat/2x1/image.png":   http.StatusOK,
		"/widgets/octocat/7x7":             http.StatusBadRequest,
		"/contributions/not_a_valid_login": http.StatusBadRequest,
	}

	for path, expected := range cases {
		rr := testutil.Serve(router, http.MethodGet, path, nil)
		if rr.Code != expected {
			t.Fatalf("route %s expected status %d, got %d", path, expected, rr.Code)
		}
	}
}

func TestRouterUnknownRouteReturnsJSON404(t *testing.T) {
	router := newRouter(t, nil, nil)

	rr := testutil.Serve(router, http.MethodGet, "/does-not-exist", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected json error, got %s", got)
	}

	rr = testutil.Serve(router, http.MethodDelete, "/health", nil)
	testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
}

func TestRouterMountsAdminOnlyWhenConfigured(t *testing.T) {
	rr := testutil.Serve(newRouter(t, nil, nil), http.MethodPost, "/admin/sync", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)

	p := &testutil.StubPoller{}
	router := newRouter(t, handlers.NewAdminHandler(p, nil, "secret", nil), nil)
	req := httptest.NewRequest(http.MethodPost, "/admin/sync", nil)
	req.Header.Set("Authorization", "Bearer secret")
	testutil.AssertStatus(t, testutil.ServeRequest(router, req), http.StatusOK)
	if p.RunCalls != 1 {
		t.Fatalf("expected admin sync to run, got %d", p.RunCalls)
	}
}

func TestRouterActionsRoute(t *testing.T) {
	router := newRouter(t, nil, nil)
	rr := testutil.Serve(router, http.MethodPost, "/widgets/actions", strings.NewReader(`{"action":"OPEN_APP","login":"octocat"}`))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestRouterCORS(t *testing.T) {
	router := newRouter(t, nil, []string{"https://widgets.example.com"})
	req := httptest.NewRequest(http.MethodOptions, "/widgets/octocat", nil)
	req.Header.Set("Origin", "https://widgets.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := testutil.ServeRequest(router, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://widgets.example.com" {
		t.Fatalf("expected CORS origin echoed, got %q", got)
	}
}
