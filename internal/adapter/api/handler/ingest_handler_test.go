package handler

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/user/log-console/internal/domain"
)

// MockIngestor records appended records for assertions.
type MockIngestor struct {
	Appended []domain.Record
}

func (m *MockIngestor) Append(rec domain.Record) {
	m.Appended = append(m.Appended, rec)
}

func (m *MockIngestor) Producers() []domain.Producer {
	return []domain.Producer{domain.ProducerGeneral, domain.ProducerAPI}
}

func TestIngestHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		contentType    string
		body           string
		expectedStatus int
		expectedCount  int
	}{
		{
			name:           "Valid Single JSON",
			contentType:    "application/json",
			body:           `{"producer": "general", "level": "error", "message": "boom"}`,
			expectedStatus: http.StatusAccepted,
			expectedCount:  1,
		},
		{
			name:           "Producer Defaults To General",
			contentType:    "application/json",
			body:           `{"message": "hello"}`,
			expectedStatus: http.StatusAccepted,
			expectedCount:  1,
		},
		{
			name:        "Valid NDJSON",
			contentType: "application/x-ndjson",
			body: `{"message": "line 1"}` + "\n" +
				`{"producer": "api", "message": "call", "http": {"method": "GET", "url": "https://x", "status_code": 404}}`,
			expectedStatus: http.StatusAccepted,
			expectedCount:  2,
		},
		{
			name:           "Bad NDJSON Line Skipped",
			contentType:    "application/x-ndjson",
			body:           `{"message": "good"}` + "\n" + `{"message": "bad`,
			expectedStatus: http.StatusAccepted,
			expectedCount:  1,
		},
		{
			name:           "Unsupported Content-Type",
			contentType:    "text/plain",
			body:           `hello`,
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "Bad JSON",
			contentType:    "application/json",
			body:           `{"message": "hello"`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Unknown Producer",
			contentType:    "application/json",
			body:           `{"producer": "bogus", "message": "x"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing Message",
			contentType:    "application/json",
			body:           `{"producer": "general"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingestor := &MockIngestor{}
			h := NewIngestHandler(ingestor, logger, 1024)

			req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.expectedStatus)
			}
			if len(ingestor.Appended) != tt.expectedCount {
				t.Errorf("appended %d records, want %d", len(ingestor.Appended), tt.expectedCount)
			}
		})
	}

	t.Run("API Status Derived From Code", func(t *testing.T) {
		ingestor := &MockIngestor{}
		h := NewIngestHandler(ingestor, logger, 1024)

		body := `{"producer": "api", "message": "call", "http": {"method": "GET", "url": "https://x", "status_code": 503}}`
		req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		if len(ingestor.Appended) != 1 {
			t.Fatalf("appended %d records, want 1", len(ingestor.Appended))
		}
		if got := ingestor.Appended[0].Status; got != domain.StatusServerError {
			t.Errorf("status = %s, want server_error", got)
		}
	})

	t.Run("API Status Defaults To Pending Without Outcome", func(t *testing.T) {
		ingestor := &MockIngestor{}
		h := NewIngestHandler(ingestor, logger, 1024)

		body := `{"producer": "api", "message": "dispatched"}`
		req := httptest.NewRequest(http.MethodPost, "/ingest", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		if len(ingestor.Appended) != 1 {
			t.Fatalf("appended %d records, want 1", len(ingestor.Appended))
		}
		if got := ingestor.Appended[0].Status; got != domain.StatusPending {
			t.Errorf("status = %s, want pending", got)
		}
	})

	t.Run("Payload Too Large", func(t *testing.T) {
		ingestor := &MockIngestor{}
		h := NewIngestHandler(ingestor, logger, 10)

		req := httptest.NewRequest(http.MethodPost, "/ingest",
			bytes.NewBufferString(`{"message": "this body exceeds the tiny limit"}`))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusRequestEntityTooLarge)
		}
	})
}
