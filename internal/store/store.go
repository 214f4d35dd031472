// Package store persists plan records in SQLite and serves aggregate
// statistics over them.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mehdi-bk/stevedore/internal/planner"
)

// ErrNotFound is returned when no plan exists for a request id.
var ErrNotFound = errors.New("plan not found")

// Statistics aggregates the stored plan records.
type Statistics struct {
	Total                  int            `json:"total"`
	ByStatus               map[string]int `json:"byStatus"`
	AverageExecutionTimeMs float64        `json:"averageExecutionTimeMs"`
}

// Store is a SQLite-backed plan record store. Writes to the same request id
// are serialized by the single-writer connection pool, so concurrent plans
// cannot corrupt each other's records.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the plan database and initializes the schema.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	// WAL mode allows readers alongside the single writer.
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan database: %w", err)
	}

	// SQLite does not support multiple writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping plan database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize plan schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS plans (
		request_id        TEXT PRIMARY KEY,
		query             TEXT NOT NULL,
		status            TEXT NOT NULL,
		doc               TEXT NOT NULL,
		execution_time_ms INTEGER NOT NULL DEFAULT 0,
		created_at        INTEGER NOT NULL,
		updated_at        INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plans_status ON plans(status);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// SavePlan inserts or updates a plan record keyed by request id. The full
// plan document is stored as JSON alongside the columns used for queries
// and aggregates.
func (s *Store) SavePlan(ctx context.Context, p *planner.Plan) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal plan %s: %w", p.RequestID, err)
	}

	now := time.Now().Unix()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plans (request_id, query, status, doc, execution_time_ms, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(request_id) DO UPDATE SET
			status = excluded.status,
			doc = excluded.doc,
			execution_time_ms = excluded.execution_time_ms,
			updated_at = excluded.updated_at
	`, p.RequestID, p.Query, string(p.Status), string(doc), p.ExecutionTimeMs, p.CreatedAt.Unix(), now)
	if err != nil {
		return fmt.Errorf("failed to save plan %s: %w", p.RequestID, err)
	}
	return nil
}

// GetPlan loads a plan by request id. Returns ErrNotFound if absent.
func (s *Store) GetPlan(ctx context.Context, requestID string) (*planner.Plan, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM plans WHERE request_id = ?`, requestID,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", requestID, err)
	}

	var p planner.Plan
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan %s: %w", requestID, err)
	}
	return &p, nil
}

// GetStatistics aggregates all stored plans: total count, count per status,
// and average execution time over plans that actually executed.
func (s *Store) GetStatistics(ctx context.Context) (Statistics, error) {
	stats := Statistics{ByStatus: make(map[string]int)}

	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM plans GROUP BY status`)
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate plan statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return stats, fmt.Errorf("failed to scan status row: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("failed to iterate status rows: %w", err)
	}

	var avg sql.NullFloat64
	err = s.db.QueryRowContext(ctx,
		`SELECT AVG(execution_time_ms) FROM plans WHERE execution_time_ms > 0`,
	).Scan(&avg)
	if err != nil {
		return stats, fmt.Errorf("failed to compute average execution time: %w", err)
	}
	if avg.Valid {
		stats.AverageExecutionTimeMs = avg.Float64
	}
	return stats, nil
}
