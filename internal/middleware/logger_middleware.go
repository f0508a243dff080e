package middleware

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

type accessEntry struct {
	userID string
}

const accessEntryKey contextKey = "access_entry"

// recordUser tells the access log who made the request. Context values set
// further down the chain are invisible to the logger, so it hands out a slot.
func recordUser(r *http.Request, userID string) {
	if entry, ok := r.Context().Value(accessEntryKey).(*accessEntry); ok {
		entry.userID = userID
	}
}

// LoggerMiddleware writes one access log line per request, including
// requests that fail inside later middleware.
func LoggerMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			entry := &accessEntry{userID: "anonymous"}
			ctx := context.WithValue(r.Context(), accessEntryKey, entry)

			next.ServeHTTP(rw, r.WithContext(ctx))

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", rw.statusCode,
				"duration", time.Since(start),
				"user", entry.userID,
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}
