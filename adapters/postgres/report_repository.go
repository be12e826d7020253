package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"liftlab/domain/core"
	"liftlab/ports"
)

// ReportRepository persists completed analysis reports for audit and
// rerun comparison. Implements ports.ReportLedger.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a report repository over an open connection
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Connect opens a postgres connection pool for the ledger
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// Migrate creates the analysis_reports table if it does not exist
func (r *ReportRepository) Migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS analysis_reports (
			run_id        TEXT PRIMARY KEY,
			experiment_id TEXT NOT NULL,
			config_digest TEXT NOT NULL,
			payload       JSONB NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_analysis_reports_experiment
			ON analysis_reports (experiment_id, created_at DESC);`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate analysis_reports: %w", err)
	}
	return nil
}

// SaveReport inserts a completed report artifact
func (r *ReportRepository) SaveReport(ctx context.Context, artifact ports.ReportArtifact) error {
	payloadJSON, err := json.Marshal(artifact.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal report payload: %w", err)
	}

	query := `
		INSERT INTO analysis_reports (run_id, experiment_id, config_digest, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err = r.db.ExecContext(ctx, query,
		artifact.RunID.String(),
		artifact.ExperimentID.String(),
		artifact.ConfigDigest,
		payloadJSON,
		artifact.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis report: %w", err)
	}
	return nil
}

// GetReport loads one report by run ID
func (r *ReportRepository) GetReport(ctx context.Context, runID core.RunID) (*ports.ReportArtifact, error) {
	query := `
		SELECT run_id, experiment_id, config_digest, payload, created_at
		FROM analysis_reports
		WHERE run_id = $1`

	var (
		artifact    ports.ReportArtifact
		rawRunID    string
		rawExpID    string
		payloadJSON []byte
		createdAt   time.Time
	)
	err := r.db.QueryRowContext(ctx, query, runID.String()).Scan(
		&rawRunID,
		&rawExpID,
		&artifact.ConfigDigest,
		&payloadJSON,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("analysis report %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis report: %w", err)
	}

	artifact.RunID = core.RunID(rawRunID)
	artifact.ExperimentID = core.ExperimentID(rawExpID)
	artifact.CreatedAt = core.NewTimestamp(createdAt)

	var payload map[string]any
	if err := json.Unmarshal(payloadJSON, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report payload: %w", err)
	}
	artifact.Payload = payload
	return &artifact, nil
}
