// Package docstore holds the document records the builtin tools operate on:
// typed documents (shipments, facilities, free-form documents) with
// create/read/update/soft-delete semantics.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned for missing or soft-deleted documents.
var ErrNotFound = errors.New("document not found")

// Document is one typed record. Attrs carries the type-specific fields as a
// free-form map; the tool layer validates shapes, not the store.
type Document struct {
	ID        string         `json:"id"`
	DocType   string         `json:"docType"`
	Title     string         `json:"title"`
	Attrs     map[string]any `json:"attrs,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Store is a SQLite-backed document store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the document database and initializes the schema.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open document database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping document database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize document schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id         TEXT PRIMARY KEY,
		doc_type   TEXT NOT NULL,
		title      TEXT NOT NULL,
		attrs      TEXT NOT NULL DEFAULT '{}',
		deleted    INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(doc_type, deleted);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Create inserts a new document and returns it with a generated id.
func (s *Store) Create(ctx context.Context, docType, title string, attrs map[string]any) (*Document, error) {
	if docType == "" {
		return nil, errors.New("doc_type is required")
	}
	if attrs == nil {
		attrs = map[string]any{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attrs: %w", err)
	}

	now := time.Now()
	doc := &Document{
		ID:        uuid.NewString(),
		DocType:   docType,
		Title:     title,
		Attrs:     attrs,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, doc_type, title, attrs, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.DocType, doc.Title, string(attrsJSON), now.Unix(), now.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}
	return doc, nil
}

// Get loads a document by id. Soft-deleted documents report ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, doc_type, title, attrs, created_at, updated_at
		FROM documents WHERE id = ? AND deleted = 0
	`, id)
	return scanDocument(row)
}

// Update replaces a document's title and attrs and bumps updated_at.
func (s *Store) Update(ctx context.Context, id, title string, attrs map[string]any) (*Document, error) {
	if attrs == nil {
		attrs = map[string]any{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attrs: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET title = ?, attrs = ?, updated_at = ?
		WHERE id = ? AND deleted = 0
	`, title, string(attrsJSON), time.Now().Unix(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update document %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// SoftDelete marks a document deleted; the record stays for audit.
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents SET deleted = 1, updated_at = ?
		WHERE id = ? AND deleted = 0
	`, time.Now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByType returns live documents of the given type, newest first. An
// empty docType lists every live document.
func (s *Store) ListByType(ctx context.Context, docType string) ([]*Document, error) {
	query := `
		SELECT id, doc_type, title, attrs, created_at, updated_at
		FROM documents WHERE deleted = 0`
	args := []any{}
	if docType != "" {
		query += ` AND doc_type = ?`
		args = append(args, docType)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var doc Document
	var attrsJSON string
	var createdAt, updatedAt int64

	err := row.Scan(&doc.ID, &doc.DocType, &doc.Title, &attrsJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	if err := json.Unmarshal([]byte(attrsJSON), &doc.Attrs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attrs for %s: %w", doc.ID, err)
	}
	doc.CreatedAt = time.Unix(createdAt, 0)
	doc.UpdatedAt = time.Unix(updatedAt, 0)
	return &doc, nil
}
