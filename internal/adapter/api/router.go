package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/log-console/internal/adapter/api/handler"
	"github.com/user/log-console/internal/adapter/api/middleware"
	"github.com/user/log-console/internal/pkg/config"
	"github.com/user/log-console/internal/usecase"
)

// NewRouter creates and configures the main HTTP router.
func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	hub *usecase.Hub,
	engine *usecase.QueryEngine,
	exporter *usecase.Exporter,
	broker *handler.RefreshBroker,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(logger))

	ingestHandler := handler.NewIngestHandler(hub, logger, cfg.MaxEventSize)
	queryHandler := handler.NewQueryHandler(hub, engine, exporter, logger)
	controlHandler := handler.NewControlHandler(hub, logger)

	r.With(middleware.RateLimit(cfg.IngestRate, cfg.IngestBurst)).
		Post("/ingest", ingestHandler.ServeHTTP)

	r.Route("/logs", func(r chi.Router) {
		r.Get("/", queryHandler.List)
		r.Get("/facets", queryHandler.Facets)
		r.Get("/stats", queryHandler.Stats)
		r.Get("/export", queryHandler.Export)
	})

	r.Route("/control", func(r chi.Router) {
		r.Get("/", controlHandler.State)
		r.Post("/pause", controlHandler.SetPause)
		r.Post("/storage", controlHandler.SetStorage)
		r.Post("/capacity", controlHandler.SetCapacity)
		r.Post("/clear", controlHandler.Clear)
	})

	r.Get("/events", broker.ServeHTTP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
