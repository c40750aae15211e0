package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/preston-bernstein/contrib-widget-service/internal/http/handlers"
	"github.com/preston-bernstein/contrib-widget-service/internal/http/requestutil"
)

// RouterConfig contains router configuration.
type RouterConfig struct {
	Handler *handlers.Handler
	// Admin routes are mounted only when set.
	Admin       *handlers.AdminHandler
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter registers HTTP routes on a chi router.
func NewRouter(cfg RouterConfig) nethttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5, "application/json"))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestutil.HeaderRequestID},
			ExposedHeaders: []string{requestutil.HeaderRequestID, "Retry-After"},
			MaxAge:         300,
		}))
	}
	r.NotFound(handlers.NotFound(cfg.Logger))
	r.MethodNotAllowed(handlers.MethodNotAllowed(cfg.Logger))

	h := cfg.Handler
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Get("/contributions/{login}", h.Contributions)
	r.Get("/users/{login}/grid", h.Grid)

	r.Route("/widgets", func(r chi.Router) {
		r.Post("/actions", h.WidgetAction)
		r.Get("/{login}", h.Widgets)
		r.Get("/{login}/{size}", h.Widget)
		r.Get("/{login}/{size}/image.png", h.WidgetImage)
	})

	if cfg.Admin != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(cfg.Admin.RequireToken)
			r.Post("/sync", cfg.Admin.Sync)
			r.Put("/token", cfg.Admin.SetToken)
		})
	}
	return r
}
