package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"forget-me-not/internal/domain"
	"forget-me-not/internal/repository"

	"github.com/google/uuid"
)

// NoteNotifier is told about every successful note change.
type NoteNotifier interface {
	NotifyNote(op domain.NoteOp, note *domain.Note)
}

type NoteService struct {
	repo     repository.NoteRepository
	validate *formValidator
	notifier NoteNotifier
	now      func() time.Time
}

func NewNoteService(repo repository.NoteRepository, notifier NoteNotifier) *NoteService {
	return &NoteService{
		repo:     repo,
		validate: newFormValidator(),
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *NoteService) List(ctx context.Context) ([]*domain.Note, error) {
	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

func (s *NoteService) Get(ctx context.Context, id string) (*domain.Note, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

// Create validates the form and stores a new note owned by userID.
func (s *NoteService) Create(ctx context.Context, userID string, form *domain.NoteForm) (*domain.Note, error) {
	if err := s.validate.check(form); err != nil {
		return nil, err
	}

	note := &domain.Note{
		ID:      uuid.New().String(),
		Title:   form.Title,
		Details: form.Details,
		UserID:  userID,
		Date:    s.now(),
	}

	if err := s.repo.Create(ctx, note); err != nil {
		return nil, err
	}

	slog.Debug("note created", "note_id", note.ID, "user_id", userID)
	s.notify(domain.NoteCreated, note)

	return note, nil
}

// Update overwrites title and details. Concurrent edits are last write wins.
func (s *NoteService) Update(ctx context.Context, id string, form *domain.NoteForm) (*domain.Note, error) {
	note, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validate.check(form); err != nil {
		return note, err
	}

	note.Title = form.Title
	note.Details = form.Details

	if err := s.repo.Update(ctx, note); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	s.notify(domain.NoteUpdated, note)

	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoteNotFound
		}
		return err
	}

	s.notify(domain.NoteDeleted, &domain.Note{ID: id})

	return nil
}

func (s *NoteService) notify(op domain.NoteOp, note *domain.Note) {
	if s.notifier != nil {
		s.notifier.NotifyNote(op, note)
	}
}
