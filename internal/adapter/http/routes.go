package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/Strob0t/TaskRelay/internal/adapter/otel"
	"github.com/Strob0t/TaskRelay/internal/config"
	"github.com/Strob0t/TaskRelay/internal/middleware"
)

// NewRouter builds the relay router. live serves the WebSocket feed and
// may be nil to leave /ws unmounted.
func NewRouter(h *Handlers, cfg config.Server, serviceName string, live http.HandlerFunc) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(Logger)
	r.Use(chimw.Recoverer)
	r.Use(otel.HTTPMiddleware(serviceName))

	// The live feed holds its connection open, so it stays outside the
	// request timeout.
	if live != nil {
		r.Get("/ws", live)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.RequestTimeout))

		r.Get("/", h.Root)
		r.Get("/health", h.Health)
		r.Post("/wrike-webhook", h.HandleWrikeWebhook)
	})

	return r
}
