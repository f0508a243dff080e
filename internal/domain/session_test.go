package domain

import (
	"testing"
	"time"
)

func TestSession_Flashes(t *testing.T) {
	s := NewSession("s1", time.Now(), time.Hour)

	if s.Modified() {
		t.Fatal("new session should not be modified")
	}

	if got := s.PopFlashes(); got != nil {
		t.Errorf("PopFlashes() on empty session = %v, want nil", got)
	}
	if s.Modified() {
		t.Error("popping no flashes should not modify the session")
	}

	s.AddFlash(FlashSuccess, "Note saved")
	s.AddFlash(FlashSuccess, "Note updated")
	s.AddFlash(FlashError, "Not authorised")

	if !s.Modified() {
		t.Error("AddFlash() should modify the session")
	}

	flashes := s.PopFlashes()
	if len(flashes[FlashSuccess]) != 2 || flashes[FlashSuccess][1] != "Note updated" {
		t.Errorf("success flashes = %v", flashes[FlashSuccess])
	}
	if len(flashes[FlashError]) != 1 {
		t.Errorf("error flashes = %v", flashes[FlashError])
	}

	if again := s.PopFlashes(); again != nil {
		t.Errorf("flashes must be one-shot, got %v", again)
	}
}

func TestSession_Expired(t *testing.T) {
	now := time.Now()
	s := NewSession("s1", now, time.Minute)

	if s.Expired(now) {
		t.Error("fresh session reported expired")
	}
	if !s.Expired(now.Add(time.Minute)) {
		t.Error("session should expire at ExpiresAt")
	}
}

func TestSession_Clone(t *testing.T) {
	s := NewSession("s1", time.Now(), time.Hour)
	s.SetUser("u1")
	s.AddFlash(FlashSuccess, "Welcome")

	c := s.Clone()
	if c.Modified() {
		t.Error("clone should start unmodified")
	}
	if !c.Authenticated() || c.UserID != "u1" {
		t.Errorf("clone lost user id: %q", c.UserID)
	}

	c.AddFlash(FlashSuccess, "Another")
	if len(s.Flash[FlashSuccess]) != 1 {
		t.Error("clone shares flash storage with original")
	}
}
