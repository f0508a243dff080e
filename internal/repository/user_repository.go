package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"forget-me-not/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type UserRepository interface {
	// Create stores the user and fails with ErrDuplicate when the email is taken.
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type userDoc struct {
	ID       string    `json:"_id"`
	Rev      string    `json:"_rev,omitempty"`
	Type     string    `json:"type"`
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Date     time.Time `json:"date"`
}

// emailClaimDoc reserves an email address. CouchDB rejects a second Put of
// the same _id without a revision, which makes the claim atomic.
type emailClaimDoc struct {
	ID     string `json:"_id"`
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

type userRepository struct {
	client *kivik.Client
	dbName string
}

func NewUserRepository(client *kivik.Client, dbName string) UserRepository {
	return &userRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	db := r.client.DB(r.dbName)

	claim := &emailClaimDoc{
		ID:     couchDocID(docTypeUserEmail, user.Email),
		Type:   docTypeUserEmail,
		UserID: user.ID,
	}
	claimRev, err := db.Put(ctx, claim.ID, claim)
	if err != nil {
		if isCouchConflict(err) {
			return fmt.Errorf("email %s: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to reserve email: %w", err)
	}

	doc := &userDoc{
		ID:       couchDocID(docTypeUser, user.ID),
		Type:     docTypeUser,
		UserID:   user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Password: user.Password,
		Date:     user.Date,
	}
	if _, err := db.Put(ctx, doc.ID, doc); err != nil {
		if _, delErr := db.Delete(ctx, claim.ID, claimRev); delErr != nil {
			slog.Error("failed to release email claim", "email", user.Email, "err", delErr)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	var claim emailClaimDoc
	if err := db.Get(ctx, couchDocID(docTypeUserEmail, email)).ScanDoc(&claim); err != nil {
		if isCouchNotFound(err) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}

	return r.FindByID(ctx, claim.UserID)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	var doc userDoc
	if err := db.Get(ctx, couchDocID(docTypeUser, id)).ScanDoc(&doc); err != nil {
		if isCouchNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return &domain.User{
		ID:       doc.UserID,
		Name:     doc.Name,
		Email:    doc.Email,
		Password: doc.Password,
		Date:     doc.Date,
	}, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	db := r.client.DB(r.dbName)

	if _, err := db.GetRev(ctx, couchDocID(docTypeUserEmail, email)); err != nil {
		if isCouchNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	return true, nil
}
