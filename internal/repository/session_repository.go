package repository

import (
	"context"
	"fmt"
	"time"

	"forget-me-not/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type SessionRepository interface {
	Find(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions whose expiry is at or before now.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type sessionDoc struct {
	ID          string              `json:"_id"`
	Rev         string              `json:"_rev,omitempty"`
	Type        string              `json:"type"`
	SessionID   string              `json:"session_id"`
	UserID      string              `json:"user_id,omitempty"`
	Flash       map[string][]string `json:"flash,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	ExpiresAt   time.Time           `json:"expires_at"`
	ExpiresUnix int64               `json:"expires_unix"`
}

type sessionRepository struct {
	client   *kivik.Client
	dbName   string
	pageSize int
}

func NewSessionRepository(client *kivik.Client, dbName string) SessionRepository {
	return &sessionRepository{
		client:   client,
		dbName:   dbName,
		pageSize: couchPageSize,
	}
}

func (r *sessionRepository) Find(ctx context.Context, id string) (*domain.Session, error) {
	db := r.client.DB(r.dbName)

	var doc sessionDoc
	if err := db.Get(ctx, couchDocID(docTypeSession, id)).ScanDoc(&doc); err != nil {
		if isCouchNotFound(err) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &domain.Session{
		ID:        doc.SessionID,
		UserID:    doc.UserID,
		Flash:     doc.Flash,
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
	}, nil
}

func (r *sessionRepository) Save(ctx context.Context, session *domain.Session) error {
	db := r.client.DB(r.dbName)
	docID := couchDocID(docTypeSession, session.ID)

	rev, err := db.GetRev(ctx, docID)
	if err != nil && !isCouchNotFound(err) {
		return fmt.Errorf("failed to look up session: %w", err)
	}

	doc := &sessionDoc{
		ID:          docID,
		Rev:         rev,
		Type:        docTypeSession,
		SessionID:   session.ID,
		UserID:      session.UserID,
		Flash:       session.Flash,
		CreatedAt:   session.CreatedAt,
		ExpiresAt:   session.ExpiresAt,
		ExpiresUnix: session.ExpiresAt.Unix(),
	}

	if _, err := db.Put(ctx, docID, doc); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	db := r.client.DB(r.dbName)
	docID := couchDocID(docTypeSession, id)

	rev, err := db.GetRev(ctx, docID)
	if err != nil {
		if isCouchNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to look up session: %w", err)
	}

	if _, err := db.Delete(ctx, docID, rev); err != nil && !isCouchNotFound(err) {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	db := r.client.DB(r.dbName)

	type stale struct {
		ID  string `json:"_id"`
		Rev string `json:"_rev"`
	}

	// Collect every page before deleting so removals do not shift the
	// bookmark under us.
	var expired []stale
	bookmark := ""

	for {
		query := map[string]interface{}{
			"selector": map[string]interface{}{
				"type":         docTypeSession,
				"expires_unix": map[string]interface{}{"$lte": now.Unix()},
			},
			"fields": []string{"_id", "_rev"},
			"limit":  r.pageSize,
		}
		if bookmark != "" {
			query["bookmark"] = bookmark
		}

		rows := db.Find(ctx, query)

		count := 0
		for rows.Next() {
			var s stale
			if err := rows.ScanDoc(&s); err != nil {
				rows.Close()
				return 0, fmt.Errorf("failed to scan session: %w", err)
			}
			expired = append(expired, s)
			count++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to query expired sessions: %w", err)
		}

		meta, err := rows.Metadata()
		rows.Close()
		if err != nil {
			return 0, fmt.Errorf("failed to read session query metadata: %w", err)
		}

		if count < r.pageSize || meta.Bookmark == "" {
			break
		}
		bookmark = meta.Bookmark
	}

	removed := 0
	for _, s := range expired {
		if _, err := db.Delete(ctx, s.ID, s.Rev); err != nil {
			if isCouchNotFound(err) || isCouchConflict(err) {
				continue
			}
			return removed, fmt.Errorf("failed to delete session: %w", err)
		}
		removed++
	}

	return removed, nil
}
