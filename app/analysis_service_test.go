package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liftlab/domain/core"
	"liftlab/domain/experiment"
	"liftlab/domain/verdict"
	"liftlab/internal/testkit"
	"liftlab/ports"
)

type memoryLedger struct {
	saved []ports.ReportArtifact
}

func (m *memoryLedger) SaveReport(_ context.Context, artifact ports.ReportArtifact) error {
	m.saved = append(m.saved, artifact)
	return nil
}

func (m *memoryLedger) GetReport(_ context.Context, runID core.RunID) (*ports.ReportArtifact, error) {
	for i := range m.saved {
		if m.saved[i].RunID == runID {
			return &m.saved[i], nil
		}
	}
	return nil, nil
}

func plannedConfig() experiment.AnalysisConfig {
	cfg := experiment.DefaultConfig()
	cfg.BaselineConversion = 0.10
	cfg.MinimumDetectableEffect = 0.02
	return cfg
}

func testImpact() verdict.BusinessImpact {
	return verdict.BusinessImpact{
		BaselineTraffic:    100000,
		ValuePerConversion: 50,
		MinimumImpact:      1000,
	}
}

func TestAnalysisService_LaunchOnCleanWinningExperiment(t *testing.T) {
	records := testkit.NewGenerator(testkit.DefaultGeneratorConfig()).Generate()
	svc := NewAnalysisService(plannedConfig(), nil, nil)

	report, err := svc.Run(context.Background(), core.ExperimentID("exp_checkout_v2"), ports.SliceSource(records), testImpact())
	require.NoError(t, err)

	require.NotNil(t, report.PowerPlan)
	assert.Greater(t, report.PowerPlan.RequiredNPerGroup, 3000)

	assert.True(t, report.Quality.SRM.Pass, "50/50 generator should pass srm")
	assert.True(t, report.Quality.GatesPass(), "gates should pass: %v", report.Quality.GateFailures())
	assert.NotEmpty(t, report.Quality.Revenue, "descriptive revenue summaries expected")

	assert.True(t, report.Overall.Significant, "a 4pp true lift on 10k users should be detected")
	assert.Greater(t, report.Overall.AbsoluteLift, 0.0)
	require.NotNil(t, report.Revenue, "revenue metric should be testable with converting users")
	require.NotNil(t, report.Checkout, "checkout metric should be testable when times are present")

	assert.NotEmpty(t, report.Segments)
	assert.Equal(t, verdict.RecommendLaunch, report.Scorecard.Recommendation)

	assert.Equal(t, len(records), report.Manifest.RecordCount)
	assert.NotEmpty(t, report.Manifest.ConfigDigest)
	assert.False(t, report.Manifest.CompletedAt.IsZero())
}

func TestAnalysisService_HoldOnSampleRatioMismatch(t *testing.T) {
	gen := testkit.DefaultGeneratorConfig()
	gen.ControlSplit = 0.7 // planned 50/50 but delivered 70/30
	records := testkit.NewGenerator(gen).Generate()

	svc := NewAnalysisService(plannedConfig(), nil, nil)
	report, err := svc.Run(context.Background(), core.ExperimentID("exp_broken_split"), ports.SliceSource(records), testImpact())
	require.NoError(t, err, "a failed gate is a verdict, not an error")

	assert.False(t, report.Quality.SRM.Pass)
	assert.Equal(t, verdict.RecommendHold, report.Scorecard.Recommendation)
	assert.NotEmpty(t, report.Scorecard.GateFailures)
}

func TestAnalysisService_RejectOnNullEffect(t *testing.T) {
	gen := testkit.DefaultGeneratorConfig()
	gen.TrueLift = 0
	records := testkit.NewGenerator(gen).Generate()

	cfg := plannedConfig()
	cfg.PracticalSignificanceThreshold = 0.01
	svc := NewAnalysisService(cfg, nil, nil)

	report, err := svc.Run(context.Background(), core.ExperimentID("exp_null"), ports.SliceSource(records), testImpact())
	require.NoError(t, err)

	assert.True(t, report.Quality.GatesPass())
	assert.Equal(t, verdict.RecommendReject, report.Scorecard.Recommendation)
	assert.False(t, report.Scorecard.PracticalSignificance.Passed,
		"a null effect cannot clear a 1pp practical threshold")
}

func TestAnalysisService_PersistsReportWhenLedgerPresent(t *testing.T) {
	records := testkit.NewGenerator(testkit.DefaultGeneratorConfig()).Generate()
	ledger := &memoryLedger{}
	svc := NewAnalysisService(plannedConfig(), nil, ledger)

	report, err := svc.Run(context.Background(), core.ExperimentID("exp_audited"), ports.SliceSource(records), testImpact())
	require.NoError(t, err)

	require.Len(t, ledger.saved, 1)
	saved := ledger.saved[0]
	assert.Equal(t, report.Manifest.RunID, saved.RunID)
	assert.Equal(t, core.ExperimentID("exp_audited"), saved.ExperimentID)
	assert.Equal(t, report.Manifest.ConfigDigest, saved.ConfigDigest)
	assert.NotNil(t, saved.Payload)
}

func TestAnalysisService_RejectsMalformedRecords(t *testing.T) {
	records := testkit.FixedCounts(100, 10, 100, 12)
	records = append(records, records[0]) // duplicate user

	svc := NewAnalysisService(experiment.DefaultConfig(), nil, nil)
	_, err := svc.Run(context.Background(), core.ExperimentID("exp_dup"), ports.SliceSource(records), testImpact())
	require.Error(t, err)
}

func TestAnalysisService_InvalidConfigFailsBeforeReadingData(t *testing.T) {
	cfg := experiment.DefaultConfig()
	cfg.Alpha = 0

	svc := NewAnalysisService(cfg, nil, nil)
	_, err := svc.Run(context.Background(), core.ExperimentID("exp_badcfg"), ports.SliceSource(nil), testImpact())
	require.Error(t, err)
}
