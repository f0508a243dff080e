package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"forget-me-not/internal/domain"
)

func TestMemorySessionRepository(t *testing.T) {
	testSessionRepository(t, NewMemorySessionRepository())
}

func TestMemorySessionRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	s := domain.NewSession("s1", time.Now(), time.Hour)
	s.AddFlash(domain.FlashSuccess, "saved")
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	s.AddFlash(domain.FlashSuccess, "not persisted")

	loaded, _ := repo.Find(ctx, "s1")
	if len(loaded.Flash[domain.FlashSuccess]) != 1 {
		t.Errorf("stored session was mutated through caller's pointer: %v", loaded.Flash)
	}
}

// testSessionRepository exercises the behaviour every SessionRepository shares.
func testSessionRepository(t *testing.T, repo SessionRepository) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	live := domain.NewSession("live", now, time.Hour)
	live.SetUser("u1")
	live.AddFlash(domain.FlashSuccess, "Welcome back")

	stale := domain.NewSession("stale", now.Add(-2*time.Hour), time.Hour)

	for _, s := range []*domain.Session{live, stale} {
		if err := repo.Save(ctx, s); err != nil {
			t.Fatalf("Save(%s) error = %v", s.ID, err)
		}
	}

	got, err := repo.Find(ctx, "live")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got.UserID != "u1" {
		t.Errorf("Find().UserID = %q, want u1", got.UserID)
	}
	if msgs := got.Flash[domain.FlashSuccess]; len(msgs) != 1 || msgs[0] != "Welcome back" {
		t.Errorf("Find().Flash = %v", got.Flash)
	}
	if got.Modified() {
		t.Error("loaded session should not be marked modified")
	}

	got.PopFlashes()
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}
	again, _ := repo.Find(ctx, "live")
	if len(again.Flash) != 0 {
		t.Errorf("flash survived overwrite: %v", again.Flash)
	}

	removed, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("DeleteExpired() removed %d, want 1", removed)
	}
	if _, err := repo.Find(ctx, "stale"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(stale) error = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, "live"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, "live"); err != nil {
		t.Errorf("Delete() of absent session error = %v", err)
	}
	if _, err := repo.Find(ctx, "live"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(deleted) error = %v, want ErrNotFound", err)
	}
}
