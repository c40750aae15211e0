package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	appwidgets "github.com/preston-bernstein/contrib-widget-service/internal/app/widgets"
	domaincontrib "github.com/preston-bernstein/contrib-widget-service/internal/domain/contributions"
	"github.com/preston-bernstein/contrib-widget-service/internal/http/middleware"
	"github.com/preston-bernstein/contrib-widget-service/internal/http/requestutil"
	"github.com/preston-bernstein/contrib-widget-service/internal/logging"
	"github.com/preston-bernstein/contrib-widget-service/internal/providers"
)

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get(requestutil.HeaderRequestID)
	}
	body := map[string]string{"error": message}
	if reqID != "" {
		body["requestId"] = reqID
	}
	writeJSON(w, status, body, logger)
}

// writeServiceError maps domain and upstream failures onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, message := http.StatusBadGateway, "contributions unavailable"
	switch {
	case errors.Is(err, domaincontrib.ErrInvalidLogin):
		status, message = http.StatusBadRequest, "invalid login"
	case errors.Is(err, appwidgets.ErrUnknownSize):
		status, message = http.StatusBadRequest, "unknown widget size"
	case errors.Is(err, appwidgets.ErrUnknownAction):
		status, message = http.StatusBadRequest, "unknown widget action"
	case errors.Is(err, providers.ErrUserNotFound):
		status, message = http.StatusNotFound, "user not found"
	case errors.Is(err, providers.ErrUnauthorized):
		status, message = http.StatusBadGateway, "upstream rejected credentials"
	case errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusGatewayTimeout, "upstream timeout"
	case errors.Is(err, context.Canceled):
		status, message = http.StatusServiceUnavailable, "request cancelled"
	}
	if rl, ok := providers.AsRateLimitError(err); ok {
		status, message = http.StatusServiceUnavailable, "upstream rate limited"
		if rl.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.RetryAfter.Seconds()+0.5)))
		}
	}
	if status >= http.StatusInternalServerError {
		logging.Warn(logger, "request failed",
			slog.Int(logging.FieldStatusCode, status),
			slog.Any("error", err),
		)
	}
	writeError(w, r, status, message, logger)
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}

// NotFound answers unknown routes with the JSON error envelope.
func NotFound(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found", loggerFromContext(r, logger))
	}
}

// MethodNotAllowed answers known routes hit with the wrong verb.
func MethodNotAllowed(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", loggerFromContext(r, logger))
	}
}
