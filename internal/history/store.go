// Package history persists clustering run summaries to PostgreSQL so
// experiments with different k, seeding, and iteration budgets can be
// compared after the fact.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/searchlabs/docluster/pkg/postgres"
)

// RunSummary is one row of run history.
type RunSummary struct {
	RunID        string    `json:"run_id"`
	Clusters     int       `json:"clusters"`
	InitMethod   string    `json:"init_method"`
	Iterations   int       `json:"iterations"`
	Converged    bool      `json:"converged"`
	NumDocs      int       `json:"num_docs"`
	NumTerms     int       `json:"num_terms"`
	ClusterSizes []int     `json:"cluster_sizes"`
	ModelPrefix  string    `json:"model_prefix"`
	Duration     float64   `json:"duration_seconds"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Store persists run summaries in the cluster_runs table. Call EnsureSchema
// once before the first write.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewStore creates a run-history store.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "history-store"),
	}
}

// EnsureSchema creates the cluster_runs table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cluster_runs (
		    id          BIGSERIAL PRIMARY KEY,
		    run_id      TEXT NOT NULL,
		    summary     JSONB NOT NULL,
		    finished_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("creating cluster_runs table: %w", err)
	}
	return nil
}

// SaveRun persists one run summary.
func (s *Store) SaveRun(ctx context.Context, summary RunSummary) error {
	data, err := Marshal(summary)
	if err != nil {
		return err
	}

	_, err = s.db.DB.ExecContext(ctx,
		`INSERT INTO cluster_runs (run_id, summary, finished_at) VALUES ($1, $2, $3)`,
		summary.RunID, data, summary.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving run summary: %w", err)
	}

	s.logger.Info("run summary saved",
		"run_id", summary.RunID,
		"clusters", summary.Clusters,
		"iterations", summary.Iterations,
		"converged", summary.Converged,
	)
	return nil
}

// ListRuns returns the last limit run summaries, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT summary FROM cluster_runs ORDER BY finished_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		var summary RunSummary
		if err := json.Unmarshal(data, &summary); err != nil {
			s.logger.Warn("skipping corrupt run summary", "error", err)
			continue
		}
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}

// Marshal serialises a summary for the JSONB column.
func Marshal(summary RunSummary) ([]byte, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("marshaling run summary: %w", err)
	}
	return data, nil
}
