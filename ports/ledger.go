package ports

import (
	"context"

	"liftlab/domain/core"
)

// ReportArtifact is a persisted analysis report: the manifest identity
// columns plus the full report payload as produced by the pipeline.
type ReportArtifact struct {
	RunID        core.RunID        `json:"run_id"`
	ExperimentID core.ExperimentID `json:"experiment_id"`
	ConfigDigest string            `json:"config_digest"`
	Payload      any               `json:"payload"`
	CreatedAt    core.Timestamp    `json:"created_at"`
}

// ReportLedger records completed analysis reports for later audit and
// comparison between reruns. Persistence is optional: the pipeline works
// identically with a nil ledger.
type ReportLedger interface {
	SaveReport(ctx context.Context, artifact ReportArtifact) error
	GetReport(ctx context.Context, runID core.RunID) (*ReportArtifact, error)
}
