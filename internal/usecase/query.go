package usecase

import (
	"context"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"

	"github.com/user/log-console/internal/adapter/metrics"
	"github.com/user/log-console/internal/domain"
)

// Stats bucket keys. Statistics emits the same keys SetStatsFilter accepts,
// so a tapped bucket round-trips into a stats filter.
const (
	StatsKeyErrorsOnly   = "errors-only"
	statsKeyLevelPrefix  = "level:"
	statsKeyStatusPrefix = "status:"
)

// LevelStatsKey returns the stats key for a general-producer level bucket.
func LevelStatsKey(level domain.Level) string {
	return statsKeyLevelPrefix + string(level)
}

// StatusStatsKey returns the stats key for an api-producer status bucket.
func StatusStatsKey(status domain.APIStatus) string {
	return statsKeyStatusPrefix + string(status)
}

// FacetValue is one offered facet value with its occurrence count.
type FacetValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Stats holds per-bucket counts plus a total over the scoped records.
type Stats struct {
	Total   int            `json:"total"`
	Buckets map[string]int `json:"buckets"`
}

// QueryEngine applies filter snapshots to unified sequences and computes
// faceted statistics over them. All operations are pure transformations over
// the inputs; the engine itself only carries metrics and tracing.
type QueryEngine struct {
	metrics *metrics.EngineMetrics
}

// NewQueryEngine creates a query engine.
func NewQueryEngine(m *metrics.EngineMetrics) *QueryEngine {
	return &QueryEngine{metrics: m}
}

// ApplyFilters returns the records passing every active criterion, in the
// aggregator's newest-first order, reversed when the snapshot sorts
// oldest-first. A record passes only if all gates hold: producer selection,
// per-producer sub-type selection, the facet gate, the free-text search and
// the stats bucket filter.
func (e *QueryEngine) ApplyFilters(ctx context.Context, records []domain.Record, f Filter) []domain.Record {
	_, span := otel.Tracer("query-engine").Start(ctx, "ApplyFilters")
	defer span.End()
	e.metrics.QueriesTotal.WithLabelValues("filter").Inc()

	query := strings.ToLower(f.SearchQuery)
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if !matchesProducer(rec, f.Producers) {
			continue
		}
		if !matchesSubType(rec, f.SubTypes) {
			continue
		}
		if !matchesFacets(rec, f) {
			continue
		}
		if query != "" && !matchesSearch(rec, query) {
			continue
		}
		if f.StatsKey != "" && !matchesStatsKey(rec, f.StatsKey) {
			continue
		}
		out = append(out, rec)
	}

	if !f.SortNewestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// AvailableFacetValues returns the facet values of the given kind occurring
// on records within the producer scope, with occurrence counts, sorted by
// count descending then value ascending. The "unknown" file-path sentinel is
// never offered.
func (e *QueryEngine) AvailableFacetValues(ctx context.Context, records []domain.Record, kind FacetKind, producers map[domain.Producer]struct{}) []FacetValue {
	_, span := otel.Tracer("query-engine").Start(ctx, "AvailableFacetValues")
	defer span.End()
	e.metrics.QueriesTotal.WithLabelValues("facets").Inc()

	counts := make(map[string]int)
	for _, rec := range records {
		if !matchesProducer(rec, producers) {
			continue
		}
		if value := facetValue(rec, kind); value != "" {
			counts[value]++
		}
	}

	out := make([]FacetValue, 0, len(counts))
	for value, count := range counts {
		out = append(out, FacetValue{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Statistics counts records per level/status bucket within the producer
// scope, plus a derived errors-only bucket and a total.
func (e *QueryEngine) Statistics(ctx context.Context, records []domain.Record, producers map[domain.Producer]struct{}) Stats {
	_, span := otel.Tracer("query-engine").Start(ctx, "Statistics")
	defer span.End()
	e.metrics.QueriesTotal.WithLabelValues("stats").Inc()

	stats := Stats{Buckets: make(map[string]int)}
	for _, rec := range records {
		if !matchesProducer(rec, producers) {
			continue
		}
		stats.Total++
		switch rec.Producer {
		case domain.ProducerAPI:
			stats.Buckets[StatusStatsKey(rec.Status)]++
		default:
			stats.Buckets[LevelStatsKey(rec.Level)]++
		}
		if isErrorRecord(rec) {
			stats.Buckets[StatsKeyErrorsOnly]++
		}
	}
	return stats
}

func matchesProducer(rec domain.Record, producers map[domain.Producer]struct{}) bool {
	if len(producers) == 0 {
		return true
	}
	_, ok := producers[rec.Producer]
	return ok
}

func matchesSubType(rec domain.Record, subTypes map[domain.Producer]map[string]struct{}) bool {
	set := subTypes[rec.Producer]
	if len(set) == 0 {
		return true
	}
	_, ok := set[rec.SubType()]
	return ok
}

// matchesFacets is the three-set facet gate: an empty set imposes no
// constraint, and when any set is non-empty the record must satisfy at least
// one of them by that set's own matching rule. SourceNames matches only the
// source name, FilePaths only the file path, Classes either.
func matchesFacets(rec domain.Record, f Filter) bool {
	if len(f.Classes) == 0 && len(f.SourceNames) == 0 && len(f.FilePaths) == 0 {
		return true
	}
	if rec.SourceName != "" {
		if _, ok := f.SourceNames[rec.SourceName]; ok {
			return true
		}
		if _, ok := f.Classes[rec.SourceName]; ok {
			return true
		}
	}
	if rec.FilePath != "" {
		if _, ok := f.FilePaths[rec.FilePath]; ok {
			return true
		}
		if _, ok := f.Classes[rec.FilePath]; ok {
			return true
		}
	}
	return false
}

func matchesSearch(rec domain.Record, loweredQuery string) bool {
	if strings.Contains(strings.ToLower(rec.Message), loweredQuery) {
		return true
	}
	if strings.Contains(strings.ToLower(rec.SourceName), loweredQuery) {
		return true
	}
	if strings.Contains(strings.ToLower(rec.FilePath), loweredQuery) {
		return true
	}
	if rec.Producer == domain.ProducerAPI && rec.HTTP != nil {
		return strings.Contains(strings.ToLower(rec.HTTP.URL), loweredQuery)
	}
	return false
}

func matchesStatsKey(rec domain.Record, key string) bool {
	switch {
	case key == StatsKeyErrorsOnly:
		return isErrorRecord(rec)
	case strings.HasPrefix(key, statsKeyLevelPrefix):
		return rec.Producer != domain.ProducerAPI &&
			string(rec.Level) == strings.TrimPrefix(key, statsKeyLevelPrefix)
	case strings.HasPrefix(key, statsKeyStatusPrefix):
		return rec.Producer == domain.ProducerAPI &&
			string(rec.Status) == strings.TrimPrefix(key, statsKeyStatusPrefix)
	default:
		// Unknown bucket: nothing belongs to it.
		return false
	}
}

func isErrorRecord(rec domain.Record) bool {
	if rec.Producer == domain.ProducerAPI {
		switch rec.Status {
		case domain.StatusClientError, domain.StatusServerError, domain.StatusNetworkError:
			return true
		}
		return false
	}
	return rec.Level == domain.LevelError
}

func facetValue(rec domain.Record, kind FacetKind) string {
	switch kind {
	case FacetSourceName:
		return rec.SourceName
	case FacetFilePath:
		if rec.FilePath == domain.UnknownFilePath {
			return ""
		}
		return rec.FilePath
	case FacetClass:
		if rec.SourceName != "" {
			return rec.SourceName
		}
		if rec.FilePath == domain.UnknownFilePath {
			return ""
		}
		return rec.FilePath
	default:
		return ""
	}
}
