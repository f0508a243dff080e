package repository

import (
	"context"
	"fmt"
	"time"

	"forget-me-not/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	FindByID(ctx context.Context, id string) (*domain.Note, error)
	// List returns every note ordered by ascending date.
	List(ctx context.Context) ([]*domain.Note, error)
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id string) error
}

type noteDoc struct {
	ID      string    `json:"_id"`
	Rev     string    `json:"_rev,omitempty"`
	Type    string    `json:"type"`
	NoteID  string    `json:"note_id"`
	Title   string    `json:"title"`
	Details string    `json:"details"`
	UserID  string    `json:"user_id"`
	Date    time.Time `json:"date"`
	DateMS  int64     `json:"date_ms"`
}

func newNoteDoc(note *domain.Note) *noteDoc {
	return &noteDoc{
		ID:      couchDocID(docTypeNote, note.ID),
		Type:    docTypeNote,
		NoteID:  note.ID,
		Title:   note.Title,
		Details: note.Details,
		UserID:  note.UserID,
		Date:    note.Date,
		DateMS:  note.Date.UnixMilli(),
	}
}

func (d *noteDoc) toDomain() *domain.Note {
	return &domain.Note{
		ID:      d.NoteID,
		Title:   d.Title,
		Details: d.Details,
		UserID:  d.UserID,
		Date:    d.Date,
	}
}

type noteRepository struct {
	client *kivik.Client
	dbName string
}

func NewNoteRepository(client *kivik.Client, dbName string) NoteRepository {
	return &noteRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	db := r.client.DB(r.dbName)

	doc := newNoteDoc(note)
	if _, err := db.Put(ctx, doc.ID, doc); err != nil {
		if isCouchConflict(err) {
			return fmt.Errorf("note %s: %w", note.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create note: %w", err)
	}

	return nil
}

func (r *noteRepository) get(ctx context.Context, id string) (*noteDoc, error) {
	db := r.client.DB(r.dbName)

	var doc noteDoc
	if err := db.Get(ctx, couchDocID(docTypeNote, id)).ScanDoc(&doc); err != nil {
		if isCouchNotFound(err) {
			return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}

	return &doc, nil
}

func (r *noteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	doc, err := r.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *noteRepository) List(ctx context.Context) ([]*domain.Note, error) {
	db := r.client.DB(r.dbName)

	notes := make([]*domain.Note, 0)
	bookmark := ""

	for {
		query := map[string]interface{}{
			"selector": map[string]interface{}{
				"type":    docTypeNote,
				"date_ms": map[string]interface{}{"$gte": 0},
			},
			"sort": []map[string]string{
				{"type": "asc"},
				{"date_ms": "asc"},
			},
			"limit": couchPageSize,
		}
		if bookmark != "" {
			query["bookmark"] = bookmark
		}

		rows := db.Find(ctx, query)

		count := 0
		for rows.Next() {
			var doc noteDoc
			if err := rows.ScanDoc(&doc); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan note: %w", err)
			}
			notes = append(notes, doc.toDomain())
			count++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to list notes: %w", err)
		}

		meta, err := rows.Metadata()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read list metadata: %w", err)
		}

		if count < couchPageSize || meta.Bookmark == "" {
			break
		}
		bookmark = meta.Bookmark
	}

	return notes, nil
}

func (r *noteRepository) Update(ctx context.Context, note *domain.Note) error {
	db := r.client.DB(r.dbName)

	existing, err := r.get(ctx, note.ID)
	if err != nil {
		return err
	}

	existing.Title = note.Title
	existing.Details = note.Details

	if _, err := db.Put(ctx, existing.ID, existing); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	db := r.client.DB(r.dbName)
	docID := couchDocID(docTypeNote, id)

	rev, err := db.GetRev(ctx, docID)
	if err != nil {
		if isCouchNotFound(err) {
			return fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to find note: %w", err)
	}

	if _, err := db.Delete(ctx, docID, rev); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	return nil
}
