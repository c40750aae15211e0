package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	appcontrib "github.com/preston-bernstein/contrib-widget-service/internal/app/contributions"
	appwidgets "github.com/preston-bernstein/contrib-widget-service/internal/app/widgets"
	domaincontrib "github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
	domainwidgets "github.com/preston-bernstein/contrib-widget-service/internal/domain/widgets"
	"github.com/preston-bernstein/contrib-widget-service/internal/grid"
	"github.com/preston-bernstein/contrib-widget-service/internal/logging"
	"github.com/preston-bernstein/contrib-widget-service/internal/poller"
	"github.com/preston-bernstein/contrib-widget-service/internal/timeutil"
)

var (
	errInvalidDate     = errors.New("invalid date format (expected YYYY-MM-DD)")
	errInvalidTimezone = errors.New("invalid timezone")
)

// ImageRenderer draws a widget payload as an image.
type ImageRenderer interface {
	PNG(data domainwidgets.Data) ([]byte, error)
}

// Handler wires HTTP routes to the contribution and widget services.
type Handler struct {
	calendars *appcontrib.Service
	widgets   *appwidgets.Service
	renderer  ImageRenderer
	logger    *slog.Logger
	statusFn  func() poller.Status
}

// NewHandler constructs a Handler. statusFn may be nil when no poller runs.
func NewHandler(calendars *appcontrib.Service, widgets *appwidgets.Service, renderer ImageRenderer, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		calendars: calendars,
		widgets:   widgets,
		renderer:  renderer,
		logger:    logger,
		statusFn:  statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// Contributions returns the stored calendar for a login, syncing it on first request.
func (h *Handler) Contributions(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	ref, err := h.reference(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
		return
	}
	cal, err := h.calendars.EnsureCalendar(r.Context(), chi.URLParam(r, "login"), ref)
	if err != nil {
		writeServiceError(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, cal, logger)
}

type widgetsResponse struct {
	Login   string               `json:"login"`
	Date    string               `json:"date"`
	Widgets []domainwidgets.Data `json:"widgets"`
}

// Widgets returns the payload of every widget size for a login.
func (h *Handler) Widgets(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	ref, err := h.reference(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
		return
	}
	all, err := h.widgets.RenderAll(r.Context(), chi.URLParam(r, "login"), ref)
	if err != nil {
		writeServiceError(w, r, err, logger)
		return
	}
	resp := widgetsResponse{Date: timeutil.FormatDate(ref), Widgets: all}
	if len(all) > 0 {
		resp.Login = all[0].Login
	}
	writeJSON(w, http.StatusOK, resp, logger)
}

// Widget returns the payload for one widget size.
func (h *Handler) Widget(w http.ResponseWriter, r *http.Request) {
	data, ok := h.renderData(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, data, loggerFromContext(r, h.logger))
}

// WidgetImage renders one widget size as a PNG.
func (h *Handler) WidgetImage(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	if h.renderer == nil {
		writeError(w, r, http.StatusServiceUnavailable, "image rendering not configured", logger)
		return
	}
	data, ok := h.renderData(w, r)
	if !ok {
		return
	}
	img, err := h.renderer.PNG(data)
	if err != nil {
		logging.Error(logger, "widget image render failed", err,
			slog.String(logging.FieldLogin, data.Login))
		writeError(w, r, http.StatusInternalServerError, "render failed", logger)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

func (h *Handler) renderData(w http.ResponseWriter, r *http.Request) (domainwidgets.Data, bool) {
	logger := loggerFromContext(r, h.logger)
	size, err := domainwidgets.ParseSize(chi.URLParam(r, "size"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unknown widget size", logger)
		return domainwidgets.Data{}, false
	}
	ref, err := h.reference(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
		return domainwidgets.Data{}, false
	}
	data, err := h.widgets.Render(r.Context(), chi.URLParam(r, "login"), size, ref)
	if err != nil {
		writeServiceError(w, r, err, logger)
		return domainwidgets.Data{}, false
	}
	return data, true
}

type gridResponse struct {
	Login    string                `json:"login"`
	Date     string                `json:"date"`
	GridSize int                   `json:"gridSize"`
	Cells    []grid.CellAssignment `json:"cells"`
}

// Grid returns the bare index/color assignments for the configured grid size.
func (h *Handler) Grid(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	ref, err := h.reference(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), logger)
		return
	}
	login := chi.URLParam(r, "login")
	cells, err := h.widgets.Grid(r.Context(), login, ref)
	if err != nil {
		writeServiceError(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, gridResponse{
		Login:    domaincontrib.NormalizeLogin(login),
		Date:     timeutil.FormatDate(ref),
		GridSize: h.widgets.GridSize(),
		Cells:    cells,
	}, logger)
}

// reference resolves the day to render from ?date= or, failing that, today in ?tz=.
func (h *Handler) reference(r *http.Request) (time.Time, error) {
	q := r.URL.Query()
	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		day, err := timeutil.ParseDate(raw)
		if err != nil {
			return time.Time{}, errInvalidDate
		}
		return day, nil
	}
	var loc *time.Location
	if tz := strings.TrimSpace(q.Get("tz")); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, errInvalidTimezone
		}
		loc = l
	}
	return h.widgets.Reference(loc), nil
}
