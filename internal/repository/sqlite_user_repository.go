package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"forget-me-not/internal/domain"
)

type sqliteUserRepository struct {
	db *sql.DB
}

func NewSQLiteUserRepository(db *sql.DB) UserRepository {
	return &sqliteUserRepository{db: db}
}

func (r *sqliteUserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password, date) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.Password, toUnixNano(user.Date))
	if err != nil {
		if isSQLiteUnique(err) {
			return fmt.Errorf("email %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *sqliteUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password, date FROM users WHERE email = ?", email)
	return scanUser(row, "email "+email)
}

func (r *sqliteUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password, date FROM users WHERE id = ?", id)
	return scanUser(row, id)
}

func (r *sqliteUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return n > 0, nil
}

func scanUser(row *sql.Row, key string) (*domain.User, error) {
	var (
		user domain.User
		date int64
	)
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	user.Date = fromUnixNano(date)
	return &user, nil
}
