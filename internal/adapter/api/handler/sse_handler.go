package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/user/log-console/internal/usecase"
)

// RefreshMessage is the summary broadcast to SSE clients on every refresh
// tick. Clients re-query the feed endpoints when it changes; the stream
// itself is polling-based, so an append becomes visible within one tick.
type RefreshMessage struct {
	Total          int            `json:"total"`
	Buckets        map[string]int `json:"buckets"`
	Paused         bool           `json:"paused"`
	StorageEnabled bool           `json:"storage_enabled"`
}

// Subsystem is the slice of the hub the refresh broker needs.
type Subsystem interface {
	Feed
	Paused() bool
	StorageEnabled() bool
}

// RefreshBroker manages SSE client connections and broadcasts a feed summary
// on a fixed refresh interval, re-reading the stores and re-running the
// statistics each tick. Control-plane changes nudge an immediate broadcast.
type RefreshBroker struct {
	subsystem Subsystem
	engine    *usecase.QueryEngine
	logger    *slog.Logger
	interval  time.Duration

	mu      sync.RWMutex
	clients map[chan []byte]struct{}
	nudges  chan struct{}
}

// NewRefreshBroker creates a broker and starts its tick loop.
func NewRefreshBroker(ctx context.Context, subsystem Subsystem, engine *usecase.QueryEngine, logger *slog.Logger, interval time.Duration) *RefreshBroker {
	broker := &RefreshBroker{
		subsystem: subsystem,
		engine:    engine,
		logger:    logger,
		interval:  interval,
		clients:   make(map[chan []byte]struct{}),
		nudges:    make(chan struct{}, 1),
	}
	go broker.run(ctx)
	return broker
}

// ServeHTTP handles new client connections for the SSE stream.
func (b *RefreshBroker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	messageChan := make(chan []byte, 4)
	b.addClient(messageChan)
	defer b.removeClient(messageChan)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messageChan:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// Nudge requests an out-of-band broadcast, e.g. after a pause flip or a
// clear. Coalesced if one is already pending.
func (b *RefreshBroker) Nudge() {
	select {
	case b.nudges <- struct{}{}:
	default:
	}
}

func (b *RefreshBroker) addClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[client] = struct{}{}
	b.logger.Info("SSE client connected")
}

func (b *RefreshBroker) removeClient(client chan []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client)
		b.logger.Info("SSE client disconnected")
	}
}

func (b *RefreshBroker) broadcast(msg []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for client := range b.clients {
		select {
		case client <- msg:
		default:
			// Slow client; don't block the broadcast for it.
		}
	}
}

func (b *RefreshBroker) run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.publish(ctx)
		case <-b.nudges:
			b.publish(ctx)
		}
	}
}

func (b *RefreshBroker) publish(ctx context.Context) {
	stats := b.engine.Statistics(ctx, b.subsystem.UnifiedLogs(), nil)
	msg := RefreshMessage{
		Total:          stats.Total,
		Buckets:        stats.Buckets,
		Paused:         b.subsystem.Paused(),
		StorageEnabled: b.subsystem.StorageEnabled(),
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("failed to marshal refresh message", "error", err)
		return
	}
	b.broadcast(jsonData)
}
