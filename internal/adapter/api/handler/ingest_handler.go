package handler

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/user/log-console/internal/domain"
)

// Ingestor is the slice of the hub the ingest surface needs.
type Ingestor interface {
	Append(rec domain.Record)
	Producers() []domain.Producer
}

// ingestRequest is the wire shape of one incoming record.
type ingestRequest struct {
	Producer   domain.Producer  `json:"producer"`
	Level      domain.Level     `json:"level,omitempty"`
	Status     domain.APIStatus `json:"status,omitempty"`
	Message    string           `json:"message"`
	Timestamp  time.Time        `json:"timestamp,omitempty"`
	SourceName string           `json:"source_name,omitempty"`
	FilePath   string           `json:"file_path,omitempty"`
	StackTrace string           `json:"stack_trace,omitempty"`
	HTTP       *domain.HTTPCall `json:"http,omitempty"`
}

// IngestHandler handles HTTP requests for record ingestion.
type IngestHandler struct {
	ingestor     Ingestor
	logger       *slog.Logger
	maxEventSize int64
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(ingestor Ingestor, logger *slog.Logger, maxEventSize int64) *IngestHandler {
	return &IngestHandler{
		ingestor:     ingestor,
		logger:       logger,
		maxEventSize: maxEventSize,
	}
}

// ServeHTTP processes incoming ingestion requests: a single JSON record or an
// NDJSON batch.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxEventSize)

	var err error
	switch r.Header.Get("Content-Type") {
	case "application/json":
		err = h.handleSingleJSON(r)
	case "application/x-ndjson":
		err = h.handleNDJSON(r)
	default:
		http.Error(w, "Unsupported Content-Type", http.StatusUnsupportedMediaType)
		return
	}

	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.logger.Warn("rejected ingest request", "error", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *IngestHandler) handleSingleJSON(r *http.Request) error {
	var req ingestRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return err
	}
	return h.ingest(req)
}

func (h *IngestHandler) handleNDJSON(r *http.Request) error {
	scanner := bufio.NewScanner(r.Body)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req ingestRequest
		if err := json.Unmarshal(line, &req); err != nil {
			// A bad line does not poison the batch.
			h.logger.Warn("failed to unmarshal ndjson line", "error", err, "line", string(line))
			continue
		}
		if err := h.ingest(req); err != nil {
			h.logger.Warn("skipping ndjson record", "error", err)
		}
	}
	return scanner.Err()
}

func (h *IngestHandler) ingest(req ingestRequest) error {
	if req.Producer == "" {
		req.Producer = domain.ProducerGeneral
	}
	if !h.registered(req.Producer) {
		return fmt.Errorf("unknown producer %q", req.Producer)
	}
	if req.Message == "" {
		return errors.New("record has no message")
	}

	rec := domain.Record{
		Producer:   req.Producer,
		Level:      req.Level,
		Status:     req.Status,
		Message:    req.Message,
		Timestamp:  req.Timestamp,
		SourceName: req.SourceName,
		FilePath:   req.FilePath,
		StackTrace: req.StackTrace,
		HTTP:       req.HTTP,
	}
	if rec.Producer == domain.ProducerAPI && rec.Status == "" {
		if rec.HTTP != nil {
			rec.Status = domain.ClassifyStatus(rec.HTTP.StatusCode)
		} else {
			// No outcome reported yet: treat the exchange as in flight.
			rec.Status = domain.StatusPending
		}
	}
	if rec.Producer == domain.ProducerGeneral && rec.Level == "" {
		rec.Level = domain.LevelInfo
	}

	h.ingestor.Append(rec)
	return nil
}

func (h *IngestHandler) registered(p domain.Producer) bool {
	for _, known := range h.ingestor.Producers() {
		if known == p {
			return true
		}
	}
	return false
}
