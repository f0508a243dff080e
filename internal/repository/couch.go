package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-kivik/kivik/v4"
)

const (
	docTypeNote      = "note"
	docTypeUser      = "user"
	docTypeUserEmail = "user_email"
	docTypeSession   = "session"

	// couchPageSize bounds a single Mango page; longer listings follow the bookmark.
	couchPageSize = 200
)

// SetupCouchDB creates the database if needed and the Mango indexes the
// repositories sort and filter on.
func SetupCouchDB(ctx context.Context, client *kivik.Client, dbName string) error {
	exists, err := client.DBExists(ctx, dbName)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		if err := client.CreateDB(ctx, dbName); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		slog.Info("created database", "name", dbName)
	}

	db := client.DB(dbName)

	indexes := []struct {
		name   string
		fields []string
	}{
		{name: "notes-by-date", fields: []string{"type", "date_ms"}},
		{name: "sessions-by-expiry", fields: []string{"type", "expires_unix"}},
	}

	for _, idx := range indexes {
		index := map[string]interface{}{"fields": idx.fields}
		if err := db.CreateIndex(ctx, "forget-me-not", idx.name, index); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}

func couchDocID(kind, id string) string {
	return kind + ":" + id
}
