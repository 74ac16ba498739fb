package domain

import (
	"net/http"
	"time"
)

// Producer identifies the logical source of a record. The two built-in
// producers cover application logs and API exchange logs; additional
// producers can be registered on the hub at startup.
type Producer string

const (
	ProducerGeneral Producer = "general"
	ProducerAPI     Producer = "api"
)

// Level is the severity of a general-producer record.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// APIStatus classifies an api-producer record by the outcome of the exchange.
type APIStatus string

const (
	StatusSuccess      APIStatus = "success"
	StatusRedirect     APIStatus = "redirect"
	StatusClientError  APIStatus = "client_error"
	StatusServerError  APIStatus = "server_error"
	StatusNetworkError APIStatus = "network_error"
	StatusPending      APIStatus = "pending"
)

// ClassifyStatus maps an HTTP status code to an APIStatus. A zero code means
// the exchange never completed.
func ClassifyStatus(code int) APIStatus {
	switch {
	case code == 0:
		return StatusNetworkError
	case code < http.StatusMultipleChoices:
		return StatusSuccess
	case code < http.StatusBadRequest:
		return StatusRedirect
	case code < http.StatusInternalServerError:
		return StatusClientError
	default:
		return StatusServerError
	}
}

// UnknownFilePath is the sentinel used when caller-location metadata was not
// available at record creation time.
const UnknownFilePath = "unknown"

// HTTPCall is the producer-specific payload attached to api records. It is
// owned by the record it is attached to and never shared between records.
type HTTPCall struct {
	Method          string            `json:"method"`
	URL             string            `json:"url"`
	StatusCode      int               `json:"status_code,omitempty"`
	Duration        time.Duration     `json:"duration_ns,omitempty"`
	RequestHeaders  map[string]string `json:"request_headers,omitempty"`
	ResponseHeaders map[string]string `json:"response_headers,omitempty"`
	RequestBody     string            `json:"request_body,omitempty"`
	ResponseBody    string            `json:"response_body,omitempty"`
}

// Clone returns a deep copy so the record owns its payload.
func (c *HTTPCall) Clone() *HTTPCall {
	if c == nil {
		return nil
	}
	out := *c
	out.RequestHeaders = cloneHeaders(c.RequestHeaders)
	out.ResponseHeaders = cloneHeaders(c.ResponseHeaders)
	return &out
}

func cloneHeaders(h map[string]string) map[string]string {
	if h == nil {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// Record is the unified, immutable representation of one event from any
// producer. ID is a process-wide monotonic sequence number and breaks ties
// between records that share a timestamp.
type Record struct {
	ID         uint64    `json:"id"`
	Producer   Producer  `json:"producer"`
	Level      Level     `json:"level,omitempty"`
	Status     APIStatus `json:"status,omitempty"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	SourceName string    `json:"source_name,omitempty"`
	FilePath   string    `json:"file_path,omitempty"`
	StackTrace string    `json:"stack_trace,omitempty"`
	HTTP       *HTTPCall `json:"http,omitempty"`
}

// SubType returns the per-producer discriminator: the level for general
// records, the API status for api records.
func (r Record) SubType() string {
	if r.Producer == ProducerAPI {
		return string(r.Status)
	}
	return string(r.Level)
}

// HasExplicitSource reports whether the caller tagged the record with a
// source name, as opposed to relying on auto-detected caller location.
func (r Record) HasExplicitSource() bool {
	return r.SourceName != ""
}
