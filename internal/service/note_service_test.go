package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"forget-me-not/internal/domain"
	"forget-me-not/internal/repository"
)

type mockNoteRepo struct {
	notes   map[string]*domain.Note
	failErr error
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{
		notes: make(map[string]*domain.Note),
	}
}

func (m *mockNoteRepo) Create(ctx context.Context, note *domain.Note) error {
	if m.failErr != nil {
		return m.failErr
	}
	c := *note
	m.notes[note.ID] = &c
	return nil
}

func (m *mockNoteRepo) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	if n, exists := m.notes[id]; exists {
		c := *n
		return &c, nil
	}
	return nil, fmt.Errorf("note %s: %w", id, repository.ErrNotFound)
}

func (m *mockNoteRepo) List(ctx context.Context) ([]*domain.Note, error) {
	if m.failErr != nil {
		return nil, m.failErr
	}
	notes := make([]*domain.Note, 0, len(m.notes))
	for _, n := range m.notes {
		c := *n
		notes = append(notes, &c)
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i].Date.Before(notes[j].Date) })
	return notes, nil
}

func (m *mockNoteRepo) Update(ctx context.Context, note *domain.Note) error {
	if _, exists := m.notes[note.ID]; exists {
		c := *note
		m.notes[note.ID] = &c
		return nil
	}
	return repository.ErrNotFound
}

func (m *mockNoteRepo) Delete(ctx context.Context, id string) error {
	if _, exists := m.notes[id]; exists {
		delete(m.notes, id)
		return nil
	}
	return repository.ErrNotFound
}

type recordingNotifier struct {
	ops []domain.NoteOp
	ids []string
}

func (r *recordingNotifier) NotifyNote(op domain.NoteOp, note *domain.Note) {
	r.ops = append(r.ops, op)
	r.ids = append(r.ids, note.ID)
}

func TestNoteService_Create(t *testing.T) {
	tests := []struct {
		name       string
		form       domain.NoteForm
		wantFields map[string]string
	}{
		{
			name: "valid note",
			form: domain.NoteForm{Title: "A", Details: "B"},
		},
		{
			name:       "missing title",
			form:       domain.NoteForm{Details: "B"},
			wantFields: map[string]string{"title": "A title is required"},
		},
		{
			name:       "missing details",
			form:       domain.NoteForm{Title: "A"},
			wantFields: map[string]string{"details": "Details are required"},
		},
		{
			name: "missing both",
			form: domain.NoteForm{},
			wantFields: map[string]string{
				"title":   "A title is required",
				"details": "Details are required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockNoteRepo()
			notifier := &recordingNotifier{}
			service := NewNoteService(repo, notifier)

			note, err := service.Create(context.Background(), "user-1", &tt.form)

			if tt.wantFields != nil {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("Create() error = %v, want *ValidationError", err)
				}
				if len(verr.Fields) != len(tt.wantFields) {
					t.Errorf("Create() field errors = %v", verr.Fields)
				}
				for field, msg := range tt.wantFields {
					if got := verr.Field(field); got != msg {
						t.Errorf("Field(%q) = %q, want %q", field, got, msg)
					}
				}
				if len(repo.notes) != 0 {
					t.Error("Create() persisted an invalid note")
				}
				if len(notifier.ops) != 0 {
					t.Error("Create() notified for an invalid note")
				}
				return
			}

			if err != nil {
				t.Fatalf("Create() unexpected error = %v", err)
			}

			stored, ok := repo.notes[note.ID]
			if !ok {
				t.Fatal("Create() did not persist the note")
			}
			if stored.Title != "A" || stored.Details != "B" || stored.UserID != "user-1" {
				t.Errorf("stored note = %+v", stored)
			}
			if stored.Date.IsZero() {
				t.Error("stored note has no date")
			}
			if len(notifier.ops) != 1 || notifier.ops[0] != domain.NoteCreated {
				t.Errorf("notifications = %v", notifier.ops)
			}
		})
	}
}

func TestNoteService_ListAscending(t *testing.T) {
	repo := newMockNoteRepo()
	service := NewNoteService(repo, nil)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	service.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, title := range []string{"first", "second", "third"} {
		if _, err := service.Create(context.Background(), "u", &domain.NoteForm{Title: title, Details: "d"}); err != nil {
			t.Fatalf("Create(%s) error = %v", title, err)
		}
	}

	notes, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(notes) != 3 {
		t.Fatalf("List() len = %d, want 3", len(notes))
	}
	for i := 1; i < len(notes); i++ {
		if notes[i].Date.Before(notes[i-1].Date) {
			t.Errorf("List() not ascending at %d", i)
		}
	}
	if notes[0].Title != "first" || notes[2].Title != "third" {
		t.Errorf("List() order = %s, %s, %s", notes[0].Title, notes[1].Title, notes[2].Title)
	}
}

func TestNoteService_List_PersistenceError(t *testing.T) {
	repo := newMockNoteRepo()
	repo.failErr = errors.New("connection refused")
	service := NewNoteService(repo, nil)

	if _, err := service.List(context.Background()); err == nil {
		t.Error("List() expected error but got none")
	}
}

func TestNoteService_Get(t *testing.T) {
	repo := newMockNoteRepo()
	service := NewNoteService(repo, nil)

	repo.notes["n1"] = &domain.Note{ID: "n1", Title: "t", Details: "d"}

	if _, err := service.Get(context.Background(), "n1"); err != nil {
		t.Errorf("Get() unexpected error = %v", err)
	}

	if _, err := service.Get(context.Background(), "missing"); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNoteNotFound", err)
	}
}

func TestNoteService_Update(t *testing.T) {
	repo := newMockNoteRepo()
	notifier := &recordingNotifier{}
	service := NewNoteService(repo, notifier)
	date := time.Now()

	repo.notes["n1"] = &domain.Note{ID: "n1", Title: "old", Details: "old", UserID: "u1", Date: date}

	t.Run("overwrites title and details", func(t *testing.T) {
		note, err := service.Update(context.Background(), "n1", &domain.NoteForm{Title: "new", Details: "newer"})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if note.Title != "new" || repo.notes["n1"].Details != "newer" {
			t.Errorf("Update() stored = %+v", repo.notes["n1"])
		}
		if repo.notes["n1"].UserID != "u1" || !repo.notes["n1"].Date.Equal(date) {
			t.Error("Update() changed owner or date")
		}
		if len(notifier.ops) != 1 || notifier.ops[0] != domain.NoteUpdated {
			t.Errorf("notifications = %v", notifier.ops)
		}
	})

	t.Run("rejects empty fields", func(t *testing.T) {
		note, err := service.Update(context.Background(), "n1", &domain.NoteForm{Title: "", Details: "x"})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Update() error = %v, want *ValidationError", err)
		}
		if note == nil || note.ID != "n1" {
			t.Error("Update() should return the current note alongside a validation error")
		}
		if repo.notes["n1"].Title != "new" {
			t.Error("Update() persisted an invalid edit")
		}
	})

	t.Run("missing note", func(t *testing.T) {
		_, err := service.Update(context.Background(), "missing", &domain.NoteForm{Title: "t", Details: "d"})
		if !errors.Is(err, ErrNoteNotFound) {
			t.Errorf("Update(missing) error = %v, want ErrNoteNotFound", err)
		}
	})
}

func TestNoteService_Delete(t *testing.T) {
	repo := newMockNoteRepo()
	notifier := &recordingNotifier{}
	service := NewNoteService(repo, notifier)

	repo.notes["keep"] = &domain.Note{ID: "keep", Date: time.Now()}
	repo.notes["drop"] = &domain.Note{ID: "drop", Date: time.Now()}

	if err := service.Delete(context.Background(), "drop"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	notes, _ := service.List(context.Background())
	if len(notes) != 1 || notes[0].ID != "keep" {
		t.Errorf("List() after delete = %v", notes)
	}

	if err := service.Delete(context.Background(), "drop"); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNoteNotFound", err)
	}

	if len(notifier.ids) != 1 || notifier.ids[0] != "drop" {
		t.Errorf("notifications = %v", notifier.ids)
	}
}
