package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// recordingWriter captures the status code and response size for logging.
type recordingWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (rw *recordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(p []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(p)
	rw.bytes += n
	return n, err
}

// Logging is a middleware factory that logs HTTP requests. The ingest path
// is producer traffic and can fire at log-append frequency, so it logs at
// Debug; the query and control surfaces log at Info.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &recordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			level := slog.LevelInfo
			if strings.HasPrefix(r.URL.Path, "/ingest") {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "handled request",
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"status", rw.statusCode,
				"bytes", rw.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
