package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"forget-me-not/internal/domain"
	"forget-me-not/internal/repository"
	"forget-me-not/pkg/hash"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo repository.UserRepository
	validate *formValidator
}

func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		validate: newFormValidator(),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user from the form. Name and email are normalised
// before validation, so whitespace alone does not satisfy "required".
func (s *AuthService) Register(ctx context.Context, form *domain.RegisterForm) (*domain.User, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = normalizeEmail(form.Email)

	if err := s.validate.check(form); err != nil {
		return nil, err
	}

	email := form.Email

	emailExists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if emailExists {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := hash.Hash(form.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:       uuid.New().String(),
		Name:     form.Name,
		Email:    email,
		Password: hashedPassword,
		Date:     time.Now(),
	}

	// The store enforces uniqueness too, covering a registration racing
	// in between the check above and this insert.
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	slog.Info("user registered", "user_id", user.ID)

	user.Password = ""
	return user, nil
}

// Authenticate is the local credential strategy: look the user up by email
// and compare the password with the stored hash. Every credential failure
// yields ErrInvalidCredentials so callers cannot tell which part was wrong.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			slog.Debug("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := hash.Compare(user.Password, password); err != nil {
		if hash.IsMismatch(err) {
			slog.Debug("password mismatch", "user_id", user.ID)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	user.Password = ""
	return user, nil
}
