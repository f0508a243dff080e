package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"forget-me-not/internal/domain"
	"forget-me-not/internal/repository"
	"forget-me-not/pkg/jwt"

	"github.com/google/uuid"
)

type SessionService struct {
	repo       repository.SessionRepository
	secret     string
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

func NewSessionService(repo repository.SessionRepository, secret, cookieName string, ttl time.Duration, secure bool) *SessionService {
	return &SessionService{
		repo:       repo,
		secret:     secret,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
		now:        time.Now,
	}
}

func (s *SessionService) newSession() *domain.Session {
	return domain.NewSession(uuid.New().String(), s.now(), s.ttl)
}

// Load returns the session named by the request cookie. A missing, forged or
// expired cookie yields a fresh anonymous session that is not stored until
// something is written to it.
func (s *SessionService) Load(r *http.Request) (*domain.Session, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		return s.newSession(), nil
	}

	claims, err := jwt.ValidateToken(cookie.Value, s.secret)
	if err != nil {
		slog.Debug("discarding session cookie", "err", err)
		return s.newSession(), nil
	}

	ctx := r.Context()
	sess, err := s.repo.Find(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.newSession(), nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if sess.Expired(s.now()) {
		if err := s.repo.Delete(ctx, sess.ID); err != nil {
			slog.Warn("failed to delete expired session", "err", err)
		}
		return s.newSession(), nil
	}

	return sess, nil
}

// Commit stores a modified session and refreshes the cookie. Unmodified
// sessions are left alone. Must be called before the response is written.
func (s *SessionService) Commit(ctx context.Context, w http.ResponseWriter, sess *domain.Session) error {
	if !sess.Modified() {
		return nil
	}

	sess.ExpiresAt = s.now().Add(s.ttl)

	if err := s.repo.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	token, err := jwt.GenerateToken(sess.ID, sess.ExpiresAt, s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// Login binds user to a new session id, discarding the old one so a session
// id seen before login cannot be reused after it. Pending flash messages
// carry over.
func (s *SessionService) Login(ctx context.Context, sess *domain.Session, user *domain.User) (*domain.Session, error) {
	if err := s.repo.Delete(ctx, sess.ID); err != nil {
		return nil, fmt.Errorf("failed to rotate session: %w", err)
	}

	next := s.newSession()
	next.Flash = sess.Flash
	next.SetUser(user.ID)

	return next, nil
}

// Logout destroys the session and returns a fresh anonymous one to carry
// the next flash message.
func (s *SessionService) Logout(ctx context.Context, sess *domain.Session) (*domain.Session, error) {
	if err := s.repo.Delete(ctx, sess.ID); err != nil {
		return nil, fmt.Errorf("failed to destroy session: %w", err)
	}

	next := s.newSession()
	next.MarkModified()
	return next, nil
}

func (s *SessionService) Sweep(ctx context.Context) (int, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

// RunSweeper removes expired sessions every interval until ctx is done.
func (s *SessionService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				slog.Error("session sweep failed", "err", err)
				continue
			}
			if n > 0 {
				slog.Debug("swept expired sessions", "count", n)
			}
		}
	}
}
