package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/riftslide/backend/internal/hub"
	"github.com/riftslide/backend/internal/metrics"
	"github.com/riftslide/backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, m))
	r.Post("/hint", Hint(m))
	return r
}
