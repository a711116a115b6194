package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nmang004/rival-outranker-sub013/internal/domain"
)

// PostgresStore archives completed audits so past runs of a site stay
// queryable after the in-memory job cache evicts them.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}

// SaveAudit stores one completed audit within a single transaction.
func (s *PostgresStore) SaveAudit(ctx context.Context, job *domain.AuditJob) error {
	categories, err := json.Marshal(job.Categories)
	if err != nil {
		return err
	}
	summary, err := json.Marshal(job.Summary)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO audits (job_id, url, status, page_count, started_at, ended_at, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (job_id) DO UPDATE SET
		   status = EXCLUDED.status, page_count = EXCLUDED.page_count,
		   ended_at = EXCLUDED.ended_at, error = EXCLUDED.error`,
		job.ID, job.URL, job.Status, job.PageCount, job.StartTime, job.EndTime, job.Error,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO audit_results (job_id, categories, summary)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (job_id) DO UPDATE SET
		   categories = EXCLUDED.categories, summary = EXCLUDED.summary`,
		job.ID, categories, summary,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// AuditRecord is one archived run in a site's history.
type AuditRecord struct {
	JobID     string     `json:"job_id"`
	URL       string     `json:"url"`
	Status    string     `json:"status"`
	PageCount int        `json:"page_count"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// GetAuditHistory lists the most recent archived audits of a site.
func (s *PostgresStore) GetAuditHistory(ctx context.Context, siteURL string, limit int) ([]AuditRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(ctx,
		`SELECT job_id, url, status, page_count, started_at, ended_at
		 FROM audits WHERE url = $1
		 ORDER BY started_at DESC LIMIT $2`,
		siteURL, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AuditRecord
	for rows.Next() {
		var r AuditRecord
		if err := rows.Scan(&r.JobID, &r.URL, &r.Status, &r.PageCount, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
