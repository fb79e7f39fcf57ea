package httpx

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vulntor/siteprint/pkg/config"
	"github.com/vulntor/siteprint/pkg/server/api"
)

// Chain applies middleware in order: RunID → Logger → Auth → Recovery → CORS → handler
//
// Every request is logged with its run ID, including those rejected by Auth or ending
// in a panic.
func Chain(cfg config.ServerConfig, handler http.Handler) http.Handler {
	return RunID(Logger(Auth(cfg)(Recovery(CORS(handler)))))
}

// RunID tags each request with a run ID. A client-supplied X-Run-ID is kept when it is a
// UUID; otherwise a new one is generated. Fingerprint handlers use it for telemetry
// and stored reports, so a report can be traced back to its request log line.
func RunID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(api.RunIDHeader)
		if parsed, err := uuid.Parse(id); err == nil {
			id = parsed.String()
		} else {
			id = uuid.NewString()
		}
		w.Header().Set(api.RunIDHeader, id)
		next.ServeHTTP(w, r.WithContext(api.WithRunID(r.Context(), id)))
	})
}

// Logger writes one line per request. Health probes log at debug so readiness polling
// does not flood the server log.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		event := log.Info()
		if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" {
			event = log.Debug()
		}
		event.
			Str("component", "http").
			Str("run_id", api.RunID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.statusCode).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// Recovery turns a handler panic into a 500 response.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("component", "http").
					Str("run_id", api.RunID(r.Context())).
					Interface("error", err).
					Str("path", r.URL.Path).
					Msg("Panic recovered in HTTP handler")

				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// CORS adds Cross-Origin Resource Sharing headers and answers preflight requests.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+api.RunIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", api.RunIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// responseWriter records the status code for the request log.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
