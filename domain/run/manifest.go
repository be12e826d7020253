package run

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"liftlab/domain/core"
	"liftlab/domain/experiment"
)

// AnalysisManifest is the audit record for one analysis run: which config
// produced which report over how many rows. It exists so a rerun can be
// checked against the original decision.
type AnalysisManifest struct {
	RunID        core.RunID        `json:"run_id"`
	ExperimentID core.ExperimentID `json:"experiment_id,omitempty"`
	RecordCount  int               `json:"record_count"`
	ConfigDigest string            `json:"config_digest"`
	StartedAt    core.Timestamp    `json:"started_at"`
	CompletedAt  core.Timestamp    `json:"completed_at"`
	DurationMs   int64             `json:"duration_ms"`
}

// NewManifest opens a manifest for a run starting now
func NewManifest(experimentID core.ExperimentID, cfg experiment.AnalysisConfig) *AnalysisManifest {
	return &AnalysisManifest{
		RunID:        core.RunID(core.NewID()),
		ExperimentID: experimentID,
		ConfigDigest: ConfigDigest(cfg),
		StartedAt:    core.Now(),
	}
}

// Complete stamps the end of the run
func (m *AnalysisManifest) Complete(records int) {
	m.RecordCount = records
	m.CompletedAt = core.Now()
	m.DurationMs = m.CompletedAt.Sub(m.StartedAt).Milliseconds()
}

// ConfigDigest produces a deterministic fingerprint of the thresholds used,
// so two reports are comparable iff their digests match.
func ConfigDigest(cfg experiment.AnalysisConfig) string {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}
