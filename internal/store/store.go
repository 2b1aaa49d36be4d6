// Package store persists schedule documents in sqlite, mirroring the
// document-store contract the schedule manager expects: get, list ordered by
// start date, set with optional merge, delete, and change subscriptions.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"vigil/internal/model"
)

// DefaultCollection is the collection holding every schedule and config
// document.
const DefaultCollection = "torredeoracao"

// ErrNotFound is returned when a document id has no row.
var ErrNotFound = errors.New("document not found")

// DB wraps sql.DB as a document store for one collection.
type DB struct {
	*sql.DB
	collection string
	bus        *changeBus
}

// New opens the database at path and runs migrations.
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{DB: db, collection: DefaultCollection, bus: newChangeBus()}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			order_key TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_order ON documents(collection, order_key)`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
}

// GetDocument loads a document into out.
func (db *DB) GetDocument(ctx context.Context, id string, out any) error {
	var data string
	err := db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND id = ?",
		db.collection, id,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return storeErr(err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return fmt.Errorf("decode document %s: %w", id, err)
	}
	return nil
}

// SetDocument writes a document. With merge, top-level fields of value
// overlay the stored document and unnamed fields survive; without it, the
// document is replaced wholesale. Last write wins either way.
func (db *DB) SetDocument(ctx context.Context, id string, value any, merge bool, orderKey string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", id, err)
	}

	if merge {
		merged, err := db.mergeExisting(ctx, id, data)
		if err != nil {
			return err
		}
		data = merged
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, order_key)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			data = excluded.data,
			order_key = CASE WHEN excluded.order_key != '' THEN excluded.order_key ELSE documents.order_key END,
			updated_at = CURRENT_TIMESTAMP`,
		db.collection, id, string(data), orderKey,
	)
	if err != nil {
		return storeErr(err)
	}

	db.bus.publish(Change{Collection: db.collection, ID: id})
	return nil
}

func (db *DB) mergeExisting(ctx context.Context, id string, incoming []byte) ([]byte, error) {
	var existing string
	err := db.QueryRowContext(ctx,
		"SELECT data FROM documents WHERE collection = ? AND id = ?",
		db.collection, id,
	).Scan(&existing)
	if err == sql.ErrNoRows {
		return incoming, nil
	}
	if err != nil {
		return nil, storeErr(err)
	}

	var base, overlay map[string]json.RawMessage
	if err := json.Unmarshal([]byte(existing), &base); err != nil {
		return incoming, nil
	}
	if err := json.Unmarshal(incoming, &overlay); err != nil {
		return nil, fmt.Errorf("decode merge payload %s: %w", id, err)
	}
	for k, v := range overlay {
		base[k] = v
	}
	return json.Marshal(base)
}

// DeleteDocument removes a document. Deleting an absent id is not an error.
func (db *DB) DeleteDocument(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?",
		db.collection, id,
	)
	if err != nil {
		return storeErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		db.bus.publish(Change{Collection: db.collection, ID: id, Deleted: true})
	}
	return nil
}

// SubscribeDocument registers a change handler for one document id and
// returns an unsubscribe func.
func (db *DB) SubscribeDocument(id string, handler ChangeHandler) func() {
	return db.bus.subscribe(db.collection, id, handler)
}

// SubscribeCollection registers a change handler for every document in the
// collection.
func (db *DB) SubscribeCollection(handler ChangeHandler) func() {
	return db.bus.subscribe(db.collection, "*", handler)
}
