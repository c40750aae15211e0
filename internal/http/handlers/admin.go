package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/preston-bernstein/contrib-widget-service/internal/http/requestutil"
	"github.com/preston-bernstein/contrib-widget-service/internal/logging"
	"github.com/preston-bernstein/contrib-widget-service/internal/token"
)

const maxTokenBody = 4 << 10

// SyncRunner runs one sync cycle over every tracked login.
type SyncRunner interface {
	RunOnce(ctx context.Context) error
}

// TokenSetter replaces the runtime GitHub credential.
type TokenSetter interface {
	Set(token string)
	Resolve() (string, token.Source)
}

// AdminHandler exposes admin-only endpoints guarded by a bearer token.
type AdminHandler struct {
	syncer SyncRunner
	tokens TokenSetter
	token  string
	logger *slog.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(syncer SyncRunner, tokens TokenSetter, adminToken string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		syncer: syncer,
		tokens: tokens,
		token:  adminToken,
		logger: logger,
	}
}

// RequireToken rejects requests without the ADMIN_TOKEN bearer credential.
func (h *AdminHandler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.authorize(r) {
			logging.Warn(h.logger, "admin unauthorized",
				slog.String(logging.FieldPath, r.URL.Path),
				slog.String(logging.FieldClientIP, requestutil.ClientIP(r)),
			)
			writeError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Sync refreshes every tracked login now instead of waiting for the next poll.
func (h *AdminHandler) Sync(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	if h.syncer == nil {
		writeError(w, r, http.StatusServiceUnavailable, "sync not configured", logger)
		return
	}
	if err := h.syncer.RunOnce(r.Context()); err != nil {
		logging.Warn(logger, "admin sync failed", slog.Any("error", err))
		writeError(w, r, http.StatusBadGateway, "sync failed", logger)
		return
	}
	logging.Info(logger, "admin sync complete")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
}

type tokenRequest struct {
	Token string `json:"token"`
}

// SetToken swaps the runtime GitHub credential; an empty token falls back to the resources file.
func (h *AdminHandler) SetToken(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	if h.tokens == nil {
		writeError(w, r, http.StatusServiceUnavailable, "token provider not configured", logger)
		return
	}
	var req tokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTokenBody)).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid token body", logger)
		return
	}
	h.tokens.Set(strings.TrimSpace(req.Token))
	_, source := h.tokens.Resolve()
	logging.Info(logger, "github token updated", slog.String("source", string(source)))
	writeJSON(w, http.StatusOK, map[string]string{"source": string(source)}, logger)
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	got := r.Header.Get("Authorization")
	want := "Bearer " + h.token
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
