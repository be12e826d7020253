package app

import (
	"context"

	"go.uber.org/zap"

	"liftlab/adapters/stats"
	"liftlab/domain/core"
	"liftlab/domain/experiment"
	"liftlab/domain/run"
	domstats "liftlab/domain/stats"
	"liftlab/domain/verdict"
	"liftlab/internal/errors"
	"liftlab/ports"
)

// AnalysisReport is the structured output contract of one analysis run:
// plain immutable records for the reporting layer, no formatting logic.
type AnalysisReport struct {
	Manifest  run.AnalysisManifest     `json:"manifest"`
	PowerPlan *domstats.PowerPlan      `json:"power_plan,omitempty"`
	Quality   domstats.QualityReport   `json:"quality"`
	Overall   domstats.TestResult      `json:"overall"`
	Revenue   *domstats.TestResult     `json:"revenue,omitempty"`
	Checkout  *domstats.TestResult     `json:"checkout,omitempty"`
	Segments  []domstats.SegmentResult `json:"segments"`
	Scorecard verdict.Scorecard        `json:"scorecard"`
}

// AnalysisService orchestrates the full pipeline over one finished
// experiment: accumulate, quality gates, overall tests, segment breakdown,
// decision. Every component call receives the same config value; the
// service itself holds no experiment state between runs.
type AnalysisService struct {
	cfg    experiment.AnalysisConfig
	logger *zap.Logger
	ledger ports.ReportLedger
}

// NewAnalysisService creates an analysis service. The ledger is optional;
// pass nil to skip report persistence.
func NewAnalysisService(cfg experiment.AnalysisConfig, logger *zap.Logger, ledger ports.ReportLedger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{cfg: cfg, logger: logger, ledger: ledger}
}

// Run analyzes one experiment end to end.
//
// Failure policy: malformed input and empty groups fail loudly; an
// insufficient revenue metric or segment degrades to a partial result; a
// failed quality gate never errors, it surfaces as a Hold recommendation.
func (s *AnalysisService) Run(ctx context.Context, experimentID core.ExperimentID, source ports.RecordSource, impact verdict.BusinessImpact) (*AnalysisReport, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}

	manifest := run.NewManifest(experimentID, s.cfg)
	s.logger.Info("analysis run started",
		zap.String("run_id", manifest.RunID.String()),
		zap.String("experiment_id", experimentID.String()),
	)

	records, err := source.Records(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "reading experiment records")
	}

	totals, err := experiment.Accumulate(records)
	if err != nil {
		return nil, err
	}

	var plan *domstats.PowerPlan
	requiredN := 0
	if s.cfg.PowerPlanConfigured() {
		plan, err = stats.NewPowerAnalyzer().PlanFromConfig(s.cfg)
		if err != nil {
			return nil, err
		}
		requiredN = plan.RequiredNPerGroup
	}

	quality, err := stats.NewQualityValidator(s.cfg).Validate(totals, requiredN)
	if err != nil {
		return nil, err
	}
	quality.Revenue = stats.RevenueSummaries(records)
	if !quality.GatesPass() {
		s.logger.Warn("quality gates failed",
			zap.String("run_id", manifest.RunID.String()),
			zap.Strings("reasons", quality.GateFailures()),
		)
	}

	tester := stats.NewSignificanceTester(s.cfg)
	overall, err := tester.ConversionTest(
		totals.Group(experiment.VariantControl),
		totals.Group(experiment.VariantTreatment),
	)
	if err != nil {
		return nil, err
	}

	var revenue *domstats.TestResult
	if totals.HasRevenue() {
		revenue, err = tester.RevenueTest(
			totals.Group(experiment.VariantControl),
			totals.Group(experiment.VariantTreatment),
		)
		if err != nil {
			if !errors.IsInsufficientData(err) {
				return nil, err
			}
			// Secondary metric degrades to absent, it never blocks the run
			s.logger.Warn("revenue metric skipped", zap.Error(err))
			revenue = nil
		}
	}

	var checkout *domstats.TestResult
	if totals.HasCheckout() {
		checkout, err = tester.CheckoutTest(
			totals.Group(experiment.VariantControl),
			totals.Group(experiment.VariantTreatment),
		)
		if err != nil {
			if !errors.IsInsufficientData(err) {
				return nil, err
			}
			s.logger.Warn("checkout metric skipped", zap.Error(err))
			checkout = nil
		}
	}

	segments, err := stats.NewSegmentAnalyzer(s.cfg).Analyze(ctx, totals)
	if err != nil {
		return nil, err
	}
	for _, seg := range segments {
		if seg.Err != "" {
			s.logger.Debug("segment not tested",
				zap.String("dimension", string(seg.Dimension)),
				zap.String("value", seg.Value),
				zap.String("reason", seg.Err),
			)
		}
	}

	card := verdict.Decide(*quality, *overall, s.cfg.PracticalSignificanceThreshold, impact)

	manifest.Complete(totals.Records)
	report := &AnalysisReport{
		Manifest:  *manifest,
		PowerPlan: plan,
		Quality:   *quality,
		Overall:   *overall,
		Revenue:   revenue,
		Checkout:  checkout,
		Segments:  segments,
		Scorecard: card,
	}

	s.logger.Info("analysis run completed",
		zap.String("run_id", manifest.RunID.String()),
		zap.String("recommendation", string(card.Recommendation)),
		zap.Float64("absolute_lift", overall.AbsoluteLift),
		zap.Float64("p_value", overall.PValue),
		zap.Int64("duration_ms", manifest.DurationMs),
	)

	if s.ledger != nil {
		artifact := ports.ReportArtifact{
			RunID:        manifest.RunID,
			ExperimentID: experimentID,
			ConfigDigest: manifest.ConfigDigest,
			Payload:      report,
			CreatedAt:    manifest.CompletedAt,
		}
		if err := s.ledger.SaveReport(ctx, artifact); err != nil {
			// Persistence is an audit convenience; the report still stands
			s.logger.Error("failed to persist analysis report", zap.Error(err))
		}
	}

	return report, nil
}
