package usecase

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/user/log-console/internal/adapter/metrics"
	"github.com/user/log-console/internal/domain"
)

const exportTimeLayout = "2006-01-02 15:04:05.000"

// Exporter serializes filtered sequences to text. The layout is deterministic
// per record so exports of the same sequence are byte-identical.
type Exporter struct {
	metrics *metrics.EngineMetrics
}

// NewExporter creates an exporter.
func NewExporter(m *metrics.EngineMetrics) *Exporter {
	return &Exporter{metrics: m}
}

// ExportLogs renders one text block per record, concatenated in the given
// order. Total function: any record renders, at worst as raw text.
func (e *Exporter) ExportLogs(records []domain.Record) string {
	e.metrics.ExportsTotal.Inc()

	var b strings.Builder
	for _, rec := range records {
		writeRecord(&b, rec)
	}
	return b.String()
}

// ExportCompressed returns the zstd-compressed export payload, for downloads.
func (e *Exporter) ExportCompressed(records []domain.Record) ([]byte, error) {
	text := e.ExportLogs(records)

	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := w.Write([]byte(text)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to compress export: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish export compression: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRecord(b *strings.Builder, rec domain.Record) {
	fmt.Fprintf(b, "[%s] %s", strings.ToUpper(rec.SubType()), rec.Timestamp.UTC().Format(exportTimeLayout))
	if rec.HasExplicitSource() {
		fmt.Fprintf(b, " source=%s", rec.SourceName)
	} else if rec.FilePath != "" {
		fmt.Fprintf(b, " file=%s", rec.FilePath)
	}
	b.WriteByte('\n')

	b.WriteString(rec.Message)
	b.WriteByte('\n')

	if rec.Producer == domain.ProducerAPI && rec.HTTP != nil {
		fmt.Fprintf(b, "%s %s", rec.HTTP.Method, rec.HTTP.URL)
		if rec.HTTP.StatusCode != 0 {
			fmt.Fprintf(b, " -> %d (%s)", rec.HTTP.StatusCode, rec.HTTP.Duration)
		}
		b.WriteByte('\n')
	}
	if rec.StackTrace != "" {
		b.WriteString(rec.StackTrace)
		if !strings.HasSuffix(rec.StackTrace, "\n") {
			b.WriteByte('\n')
		}
	}
	b.WriteString("----------------------------------------\n")
}
