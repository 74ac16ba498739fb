package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/user/log-console/internal/domain"
	"github.com/user/log-console/internal/usecase"
)

// Feed is the slice of the hub the query surface needs.
type Feed interface {
	UnifiedLogs() []domain.Record
}

// QueryHandler exposes the filtered feed, facet values, statistics and the
// text export over HTTP. Each request builds a one-shot filter state from the
// query parameters and disposes it when done.
type QueryHandler struct {
	feed     Feed
	engine   *usecase.QueryEngine
	exporter *usecase.Exporter
	logger   *slog.Logger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(feed Feed, engine *usecase.QueryEngine, exporter *usecase.Exporter, logger *slog.Logger) *QueryHandler {
	return &QueryHandler{
		feed:     feed,
		engine:   engine,
		exporter: exporter,
		logger:   logger,
	}
}

// List serves the filtered unified feed.
func (h *QueryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	records := h.engine.ApplyFilters(r.Context(), h.feed.UnifiedLogs(), filter)

	writeJSON(w, h.logger, map[string]any{
		"count":   len(records),
		"records": records,
	})
}

// Facets serves the offered facet values for one facet kind, scoped to the
// selected producers.
func (h *QueryHandler) Facets(w http.ResponseWriter, r *http.Request) {
	kind := usecase.FacetKind(r.URL.Query().Get("kind"))
	switch kind {
	case usecase.FacetClass, usecase.FacetSourceName, usecase.FacetFilePath:
	default:
		http.Error(w, "Unknown facet kind", http.StatusBadRequest)
		return
	}

	values := h.engine.AvailableFacetValues(r.Context(), h.feed.UnifiedLogs(), kind, producersFromQuery(r))
	writeJSON(w, h.logger, map[string]any{"kind": kind, "values": values})
}

// Stats serves the level/status bucket counts.
func (h *QueryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.engine.Statistics(r.Context(), h.feed.UnifiedLogs(), producersFromQuery(r))
	writeJSON(w, h.logger, stats)
}

// Export serves the text export of the filtered feed, optionally
// zstd-compressed for download.
func (h *QueryHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)
	records := h.engine.ApplyFilters(r.Context(), h.feed.UnifiedLogs(), filter)

	if r.URL.Query().Get("compress") == "zstd" {
		payload, err := h.exporter.ExportCompressed(records)
		if err != nil {
			h.logger.Error("export compression failed", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/zstd")
		w.Header().Set("Content-Disposition", `attachment; filename="logs.txt.zst"`)
		_, _ = w.Write(payload)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(h.exporter.ExportLogs(records)))
}

// filterFromQuery maps query parameters onto a one-shot filter state, which
// keeps the parameter surface and the engine's filter semantics in lockstep.
func filterFromQuery(r *http.Request) usecase.Filter {
	state := usecase.NewFilterState()
	defer state.Dispose()

	q := r.URL.Query()
	for _, p := range splitParam(q.Get("producers")) {
		state.ToggleProducer(domain.Producer(p))
	}
	for _, level := range splitParam(q.Get("levels")) {
		state.ToggleSubType(domain.ProducerGeneral, level)
	}
	for _, status := range splitParam(q.Get("statuses")) {
		state.ToggleSubType(domain.ProducerAPI, status)
	}
	for _, class := range splitParam(q.Get("classes")) {
		state.ToggleClass(class)
	}
	for _, source := range splitParam(q.Get("sources")) {
		state.ToggleSourceName(source)
	}
	for _, path := range splitParam(q.Get("paths")) {
		state.ToggleFilePath(path)
	}
	if search := q.Get("q"); search != "" {
		state.UpdateSearchQuery(search)
	}
	if q.Get("sort") == "oldest" {
		state.ToggleSortOrder()
	}
	if key := q.Get("stats"); key != "" {
		state.SetStatsFilter(key)
	}
	return state.Snapshot()
}

func producersFromQuery(r *http.Request) map[domain.Producer]struct{} {
	parts := splitParam(r.URL.Query().Get("producers"))
	if len(parts) == 0 {
		return nil
	}
	out := make(map[domain.Producer]struct{}, len(parts))
	for _, p := range parts {
		out[domain.Producer(p)] = struct{}{}
	}
	return out
}

func splitParam(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}
