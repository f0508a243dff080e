package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"forget-me-not/internal/domain"
)

type sqliteSessionRepository struct {
	db *sql.DB
}

func NewSQLiteSessionRepository(db *sql.DB) SessionRepository {
	return &sqliteSessionRepository{db: db}
}

func (r *sqliteSessionRepository) Find(ctx context.Context, id string) (*domain.Session, error) {
	var (
		s                    domain.Session
		flash                string
		createdAt, expiresAt int64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, flash, created_at, expires_at FROM sessions WHERE id = ?", id).
		Scan(&s.ID, &s.UserID, &flash, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if err := json.Unmarshal([]byte(flash), &s.Flash); err != nil {
		return nil, fmt.Errorf("failed to decode session flash: %w", err)
	}
	s.CreatedAt = fromUnixNano(createdAt)
	s.ExpiresAt = fromUnixNano(expiresAt)

	return &s, nil
}

func (r *sqliteSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	flash, err := json.Marshal(session.Flash)
	if err != nil {
		return fmt.Errorf("failed to encode session flash: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, flash, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			flash = excluded.flash,
			expires_at = excluded.expires_at`,
		session.ID, session.UserID, string(flash),
		toUnixNano(session.CreatedAt), toUnixNano(session.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *sqliteSessionRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *sqliteSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", toUnixNano(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return int(n), nil
}
