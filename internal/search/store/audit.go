// internal/search/store/audit.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"scout-search/internal/common/errors"
	"scout-search/internal/search/params"
)

// SearchAudit is the per-search audit record.
type SearchAudit struct {
	SearchID   string
	QueryText  string
	Parameters params.SearchParameters
	Caller     string
	Timestamp  time.Time
}

// ResultAudit is the per-ranked-result audit record.
type ResultAudit struct {
	CandidateID string
	MatchScore  int // 0-100
	Rank        int
}

// AuditLogger persists search and result audit records. Callers treat
// failures as best-effort: log and continue.
type AuditLogger interface {
	Record(ctx context.Context, search SearchAudit, results []ResultAudit) error
}

// PostgresAuditLogger writes audit rows in a single transaction.
type PostgresAuditLogger struct {
	db *sql.DB
}

func NewPostgresAuditLogger(db *sql.DB) *PostgresAuditLogger {
	return &PostgresAuditLogger{db: db}
}

func (a *PostgresAuditLogger) Record(ctx context.Context, search SearchAudit, results []ResultAudit) error {
	serialized, err := json.Marshal(search.Parameters)
	if err != nil {
		return errors.NewAuditLogFailedError(err)
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewAuditLogFailedError(err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO search_audit (search_id, query_text, parameters, caller, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		search.SearchID, search.QueryText, serialized, search.Caller, search.Timestamp,
	)
	if err != nil {
		return errors.NewAuditLogFailedError(err)
	}

	for _, r := range results {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO search_result_audit (search_id, candidate_id, match_score, rank)
			 VALUES ($1, $2, $3, $4)`,
			search.SearchID, r.CandidateID, r.MatchScore, r.Rank,
		)
		if err != nil {
			return errors.NewAuditLogFailedError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewAuditLogFailedError(err)
	}
	return nil
}

// NoopAuditLogger discards audit records. Used when auditing is disabled.
type NoopAuditLogger struct{}

func (NoopAuditLogger) Record(context.Context, SearchAudit, []ResultAudit) error { return nil }
