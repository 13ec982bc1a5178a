package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// Store archives completed deep research reports. Writes are
// best-effort from the caller's point of view; nothing in the agent
// pipeline depends on them succeeding.
type Store struct {
	DB *sql.DB
}

// ReportRecord is one archived research report.
type ReportRecord struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Report    string    `json:"report,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewWithDSN opens a Postgres connection and verifies it.
func NewWithDSN(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{DB: db}, nil
}

// SaveReport archives a report and returns its id.
func (s *Store) SaveReport(ctx context.Context, topic, report string) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO research_reports (id, topic, report, created_at) VALUES ($1,$2,$3,NOW())`,
		id, topic, report)
	if err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return id, nil
}

// ListReports returns the newest reports without their bodies.
func (s *Store) ListReports(ctx context.Context, limit int) ([]ReportRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, topic, created_at FROM research_reports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []ReportRecord
	for rows.Next() {
		var r ReportRecord
		if err := rows.Scan(&r.ID, &r.Topic, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetReport returns one archived report by id.
func (s *Store) GetReport(ctx context.Context, id string) (ReportRecord, error) {
	var r ReportRecord
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, topic, report, created_at FROM research_reports WHERE id = $1`, id).
		Scan(&r.ID, &r.Topic, &r.Report, &r.CreatedAt)
	if err != nil {
		return ReportRecord{}, err
	}
	return r, nil
}
