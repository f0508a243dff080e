package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"forget-me-not/internal/domain"
)

type sqliteNoteRepository struct {
	db *sql.DB
}

func NewSQLiteNoteRepository(db *sql.DB) NoteRepository {
	return &sqliteNoteRepository{db: db}
}

func (r *sqliteNoteRepository) Create(ctx context.Context, note *domain.Note) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO notes (id, title, details, user_id, date) VALUES (?, ?, ?, ?, ?)",
		note.ID, note.Title, note.Details, note.UserID, toUnixNano(note.Date))
	if err != nil {
		if isSQLiteUnique(err) {
			return fmt.Errorf("note %s: %w", note.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

func (r *sqliteNoteRepository) FindByID(ctx context.Context, id string) (*domain.Note, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, title, details, user_id, date FROM notes WHERE id = ?", id)

	note, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find note: %w", err)
	}
	return note, nil
}

func (r *sqliteNoteRepository) List(ctx context.Context) ([]*domain.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, details, user_id, date FROM notes ORDER BY date ASC, rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]*domain.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	return notes, nil
}

func (r *sqliteNoteRepository) Update(ctx context.Context, note *domain.Note) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notes SET title = ?, details = ? WHERE id = ?",
		note.Title, note.Details, note.ID)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}
	return expectOneRow(res, "note", note.ID)
}

func (r *sqliteNoteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return expectOneRow(res, "note", id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(s rowScanner) (*domain.Note, error) {
	var (
		note domain.Note
		date int64
	)
	if err := s.Scan(&note.ID, &note.Title, &note.Details, &note.UserID, &date); err != nil {
		return nil, err
	}
	note.Date = fromUnixNano(date)
	return &note, nil
}

func expectOneRow(res sql.Result, kind, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
