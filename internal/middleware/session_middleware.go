package middleware

import (
	"context"
	"net/http"

	"forget-me-not/internal/domain"
)

type contextKey string

const (
	SessionKey contextKey = "session"
	UserKey    contextKey = "user"
)

type SessionLoader interface {
	Load(r *http.Request) (*domain.Session, error)
}

// ErrorHandler writes the response for a request that failed inside a
// middleware.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// SessionMiddleware attaches the browser session to the request context.
// Handlers that change the session are responsible for committing it.
func SessionMiddleware(sessions SessionLoader, onError ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := sessions.Load(r)
			if err != nil {
				onError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), SessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSession(r *http.Request) *domain.Session {
	sess, ok := r.Context().Value(SessionKey).(*domain.Session)
	if !ok {
		return nil
	}
	return sess
}

// WithSession replaces the session carried by ctx, e.g. after login rotates it.
func WithSession(r *http.Request, sess *domain.Session) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), SessionKey, sess))
}
