package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"forget-me-not/internal/domain"
	"forget-me-not/internal/service"
)

const notAuthorised = "Not authorised"

type UserFinder interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type SessionCommitter interface {
	Commit(ctx context.Context, w http.ResponseWriter, sess *domain.Session) error
}

// IdentityMiddleware looks up the user whose id the session holds. A user
// that no longer exists leaves the request anonymous.
func IdentityMiddleware(users UserFinder, onError ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r)
			if sess == nil || !sess.Authenticated() {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), sess.UserID)
			if err != nil {
				if !errors.Is(err, service.ErrUserNotFound) {
					onError(w, r, err)
					return
				}
				slog.Warn("session refers to missing user", "user_id", sess.UserID)
				sess.SetUser("")
				next.ServeHTTP(w, r)
				return
			}

			recordUser(r, user.ID)
			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(r *http.Request) *domain.User {
	user, ok := r.Context().Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}

// RequireAuth sends anonymous visitors to the login page with a flash
// message.
func RequireAuth(sessions SessionCommitter, loginPath string, onError ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetUser(r) != nil {
				next.ServeHTTP(w, r)
				return
			}

			if sess := GetSession(r); sess != nil {
				sess.AddFlash(domain.FlashError, notAuthorised)
				if err := sessions.Commit(r.Context(), w, sess); err != nil {
					onError(w, r, err)
					return
				}
			}

			http.Redirect(w, r, loginPath, http.StatusFound)
		})
	}
}
