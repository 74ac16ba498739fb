package usecase

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/user/log-console/internal/adapter/metrics"
	"github.com/user/log-console/internal/domain"
)

// Hub is the process-wide logging subsystem. It owns one bounded store per
// registered producer, the shared pause / storage-enabled flags, and the
// monotonic ID sequence. Producers append through it from any goroutine; the
// presentation layer polls it on a refresh tick.
//
// The pause and storage-enabled switches are fields here rather than package
// globals so tests can run isolated hubs side by side.
type Hub struct {
	logger  *slog.Logger
	metrics *metrics.EngineMetrics

	paused         atomic.Bool
	storageEnabled atomic.Bool
	nextID         atomic.Uint64

	now func() time.Time

	mu        sync.RWMutex
	stores    map[domain.Producer]domain.RecordStore
	order     []domain.Producer
	listeners map[uuid.UUID]func()
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) HubOption {
	return func(h *Hub) { h.now = now }
}

// NewHub creates a hub with storage enabled and no producers registered.
func NewHub(logger *slog.Logger, m *metrics.EngineMetrics, opts ...HubOption) *Hub {
	h := &Hub{
		logger:    logger.With("component", "log_hub"),
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
		stores:    make(map[domain.Producer]domain.RecordStore),
		listeners: make(map[uuid.UUID]func()),
	}
	h.storageEnabled.Store(true)
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterProducer attaches a store to a producer. Registering the same
// producer twice replaces the previous store.
func (h *Hub) RegisterProducer(p domain.Producer, store domain.RecordStore) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.stores[p]; !exists {
		h.order = append(h.order, p)
	}
	h.stores[p] = store
}

// RecordOption attaches optional metadata to an appended record.
type RecordOption func(*domain.Record)

// WithSourceName tags the record with an explicit caller-supplied source.
func WithSourceName(name string) RecordOption {
	return func(r *domain.Record) { r.SourceName = name }
}

// WithFilePath attaches a caller-location string.
func WithFilePath(path string) RecordOption {
	return func(r *domain.Record) { r.FilePath = path }
}

// WithStackTrace attaches a stack trace, normally on error records.
func WithStackTrace(trace string) RecordOption {
	return func(r *domain.Record) { r.StackTrace = trace }
}

// WithTimestamp overrides the append-time timestamp.
func WithTimestamp(ts time.Time) RecordOption {
	return func(r *domain.Record) { r.Timestamp = ts }
}

// WithStatus overrides the derived API status, e.g. to record an exchange
// that is still pending.
func WithStatus(s domain.APIStatus) RecordOption {
	return func(r *domain.Record) { r.Status = s }
}

// Log appends a general-producer record. Silently a no-op while the subsystem
// is paused or storage is disabled.
func (h *Hub) Log(level domain.Level, message string, opts ...RecordOption) {
	rec := domain.Record{
		Producer: domain.ProducerGeneral,
		Level:    level,
		Message:  message,
	}
	for _, opt := range opts {
		opt(&rec)
	}
	h.append(rec)
}

// LogAPI appends an api-producer record. The status is derived from the
// payload's status code unless the exchange is still pending.
func (h *Hub) LogAPI(call domain.HTTPCall, message string, opts ...RecordOption) {
	rec := domain.Record{
		Producer: domain.ProducerAPI,
		Status:   domain.ClassifyStatus(call.StatusCode),
		Message:  message,
		HTTP:     &call,
	}
	for _, opt := range opts {
		opt(&rec)
	}
	h.append(rec)
}

// Append appends a fully formed record to its producer's store. Used by the
// ingest surface; Log and LogAPI are convenience wrappers.
func (h *Hub) Append(rec domain.Record) {
	h.append(rec)
}

func (h *Hub) append(rec domain.Record) {
	if !h.storageEnabled.Load() {
		h.metrics.RecordsTotal.WithLabelValues(string(rec.Producer), "dropped_disabled").Inc()
		return
	}
	if h.paused.Load() {
		h.metrics.RecordsTotal.WithLabelValues(string(rec.Producer), "dropped_paused").Inc()
		return
	}

	h.mu.RLock()
	store, ok := h.stores[rec.Producer]
	h.mu.RUnlock()
	if !ok {
		h.logger.Warn("dropping record for unregistered producer", "producer", rec.Producer)
		return
	}

	rec.ID = h.nextID.Add(1)
	if rec.Timestamp.IsZero() {
		rec.Timestamp = h.now()
	}
	if rec.FilePath == "" && rec.SourceName == "" {
		rec.FilePath = domain.UnknownFilePath
	}
	rec.HTTP = rec.HTTP.Clone()

	outcome := store.Append(rec)
	h.metrics.RecordsTotal.WithLabelValues(string(rec.Producer), outcomeLabel(outcome)).Inc()
	h.metrics.StoreSize.WithLabelValues(string(rec.Producer)).Set(float64(store.Len()))
}

func outcomeLabel(o domain.AppendOutcome) string {
	switch o {
	case domain.AppendEvicted:
		return "evicted"
	case domain.AppendRejected:
		return "rejected"
	default:
		return "stored"
	}
}

// UnifiedLogs merges every store into one newest-first sequence. Pull-based:
// each call takes fresh snapshots and merges them.
func (h *Hub) UnifiedLogs() []domain.Record {
	h.mu.RLock()
	stores := make([]domain.RecordStore, 0, len(h.order))
	for _, p := range h.order {
		stores = append(stores, h.stores[p])
	}
	h.mu.RUnlock()
	return Unify(stores...)
}

// ClearAll empties every registered store and notifies listeners.
func (h *Hub) ClearAll() {
	h.mu.RLock()
	for p, store := range h.stores {
		store.Clear()
		h.metrics.StoreSize.WithLabelValues(string(p)).Set(0)
	}
	h.mu.RUnlock()
	h.logger.Info("cleared all log stores")
	h.notify()
}

// SetCapacity resizes one producer's store. Unknown producers are an error so
// a mistyped control request does not pass silently.
func (h *Hub) SetCapacity(p domain.Producer, capacity int) error {
	h.mu.RLock()
	store, ok := h.stores[p]
	h.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown producer %q", p)
	}
	store.SetCapacity(capacity)
	h.metrics.StoreSize.WithLabelValues(string(p)).Set(float64(store.Len()))
	h.logger.Info("store capacity changed", "producer", p, "capacity", capacity)
	h.notify()
	return nil
}

// SetPaused flips the process-wide pause switch shared by all stores.
func (h *Hub) SetPaused(paused bool) {
	if h.paused.Swap(paused) != paused {
		h.logger.Info("pause state changed", "paused", paused)
		h.notify()
	}
}

// Paused reports the shared pause switch.
func (h *Hub) Paused() bool { return h.paused.Load() }

// SetStorageEnabled flips the process-wide storage switch.
func (h *Hub) SetStorageEnabled(enabled bool) {
	if h.storageEnabled.Swap(enabled) != enabled {
		h.logger.Info("storage state changed", "enabled", enabled)
		h.notify()
	}
}

// StorageEnabled reports the shared storage switch.
func (h *Hub) StorageEnabled() bool { return h.storageEnabled.Load() }

// Producers returns the registered producers in registration order.
func (h *Hub) Producers() []domain.Producer {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]domain.Producer(nil), h.order...)
}

// Store returns the store registered for a producer, or nil.
func (h *Hub) Store(p domain.Producer) domain.RecordStore {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stores[p]
}

// AddListener registers a callback invoked synchronously after pause, storage,
// capacity or clear changes. Appends do not notify; the refresh tick polls
// them. The returned token removes the listener.
func (h *Hub) AddListener(fn func()) uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := uuid.New()
	h.listeners[id] = fn
	return id
}

// RemoveListener detaches a previously registered callback.
func (h *Hub) RemoveListener(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.listeners, id)
}

func (h *Hub) notify() {
	h.mu.RLock()
	fns := make([]func(), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()
	for _, fn := range fns {
		fn()
	}
}
