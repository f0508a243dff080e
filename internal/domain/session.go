package domain

import "time"

// Flash kinds understood by the page layout.
const (
	FlashSuccess = "success_msg"
	FlashError   = "error_msg"
	FlashAuth    = "error"
)

// Session is the server-side half of a browser session. Only the user id is
// kept; the full user is looked up again on every request.
type Session struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id,omitempty"`
	Flash     map[string][]string `json:"flash,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	ExpiresAt time.Time           `json:"expires_at"`

	modified bool
}

func NewSession(id string, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *Session) Authenticated() bool {
	return s.UserID != ""
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

func (s *Session) AddFlash(kind, message string) {
	if s.Flash == nil {
		s.Flash = make(map[string][]string)
	}
	s.Flash[kind] = append(s.Flash[kind], message)
	s.modified = true
}

// PopFlashes returns all pending flash messages and clears them.
func (s *Session) PopFlashes() map[string][]string {
	if len(s.Flash) == 0 {
		return nil
	}
	flashes := s.Flash
	s.Flash = nil
	s.modified = true
	return flashes
}

func (s *Session) SetUser(userID string) {
	s.UserID = userID
	s.modified = true
}

// Modified reports whether the session changed since it was loaded and
// needs to be written back.
func (s *Session) Modified() bool {
	return s.modified
}

func (s *Session) MarkModified() {
	s.modified = true
}

// Clone returns a copy that does not share the flash map.
func (s *Session) Clone() *Session {
	c := *s
	c.modified = false
	if s.Flash != nil {
		c.Flash = make(map[string][]string, len(s.Flash))
		for k, v := range s.Flash {
			c.Flash[k] = append([]string(nil), v...)
		}
	}
	return &c
}
