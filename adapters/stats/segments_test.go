package stats

import (
	"context"
	"strings"
	"testing"

	"liftlab/domain/experiment"
	domstats "liftlab/domain/stats"
	"liftlab/internal/testkit"
)

func analyzeFixed(t *testing.T, nControl, convControl, nTreatment, convTreatment int) []domstats.SegmentResult {
	t.Helper()
	totals, err := experiment.Accumulate(testkit.FixedCounts(nControl, convControl, nTreatment, convTreatment))
	if err != nil {
		t.Fatalf("accumulate: %v", err)
	}
	segments, err := NewSegmentAnalyzer(experiment.DefaultConfig()).Analyze(context.Background(), totals)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return segments
}

func TestSegmentAnalyzer_CoversEveryDimensionValue(t *testing.T) {
	segments := analyzeFixed(t, 4957, 511, 5043, 737)

	want := 0
	for _, dim := range experiment.Dimensions() {
		want += len(dim.Values())
	}
	if len(segments) != want {
		t.Fatalf("got %d segment results, want %d", len(segments), want)
	}

	// Canonical order: dimensions as declared, values as declared within each
	i := 0
	for _, dim := range experiment.Dimensions() {
		for _, value := range dim.Values() {
			seg := segments[i]
			if seg.Dimension != dim || seg.Value != value {
				t.Fatalf("segment %d is %s=%s, want %s=%s", i, seg.Dimension, seg.Value, dim, value)
			}
			if seg.Err != "" {
				t.Fatalf("segment %s=%s unexpectedly skipped: %s", dim, value, seg.Err)
			}
			if seg.Result == nil {
				t.Fatalf("segment %s=%s missing test result", dim, value)
			}
			i++
		}
	}
}

func TestSegmentAnalyzer_SegmentCountsSumToGroupTotals(t *testing.T) {
	segments := analyzeFixed(t, 1000, 100, 1000, 140)

	sums := make(map[experiment.SegmentDimension]struct{ control, treatment int })
	for _, seg := range segments {
		s := sums[seg.Dimension]
		s.control += seg.NControl
		s.treatment += seg.NTreatment
		sums[seg.Dimension] = s
	}
	for dim, s := range sums {
		if s.control != 1000 || s.treatment != 1000 {
			t.Fatalf("%s counts sum to (%d, %d), want (1000, 1000)", dim, s.control, s.treatment)
		}
	}
}

func TestSegmentAnalyzer_BonferroniPerDimension(t *testing.T) {
	segments := analyzeFixed(t, 4957, 511, 5043, 737)

	tested := make(map[experiment.SegmentDimension]int)
	for _, seg := range segments {
		if seg.Result != nil {
			tested[seg.Dimension]++
		}
	}

	cfg := experiment.DefaultConfig()
	for _, seg := range segments {
		if seg.Result == nil {
			continue
		}
		wantAlpha := cfg.Alpha / float64(tested[seg.Dimension])
		if !approxEqual(seg.CorrectedAlpha, wantAlpha, 1e-12) {
			t.Fatalf("%s=%s corrected alpha = %v, want %v", seg.Dimension, seg.Value, seg.CorrectedAlpha, wantAlpha)
		}
		// Correction only tightens: corrected significance implies raw
		if seg.CorrectedSignificant && seg.Result.PValue >= cfg.Alpha {
			t.Fatalf("%s=%s corrected-significant with raw p %v above alpha", seg.Dimension, seg.Value, seg.Result.PValue)
		}
	}
}

func TestSegmentAnalyzer_ReportsUndersizedSegmentsWithoutDroppingThem(t *testing.T) {
	// 20 users per group spread over segments leaves every slice below the
	// minimum of 30.
	segments := analyzeFixed(t, 20, 5, 20, 8)

	want := 0
	for _, dim := range experiment.Dimensions() {
		want += len(dim.Values())
	}
	if len(segments) != want {
		t.Fatalf("got %d segment results, want %d", len(segments), want)
	}

	for _, seg := range segments {
		if seg.Result != nil {
			t.Fatalf("segment %s=%s should not have been tested with n=(%d, %d)",
				seg.Dimension, seg.Value, seg.NControl, seg.NTreatment)
		}
		if seg.Err == "" {
			t.Fatalf("segment %s=%s missing skip reason", seg.Dimension, seg.Value)
		}
		if !strings.Contains(seg.Err, "minimum size") {
			t.Fatalf("segment %s=%s reason %q should mention the minimum size", seg.Dimension, seg.Value, seg.Err)
		}
		if seg.CorrectedAlpha != 0 {
			t.Fatalf("untested segment %s=%s should carry no corrected alpha", seg.Dimension, seg.Value)
		}
	}
}

func TestSegmentAnalyzer_HonorsCanceledContext(t *testing.T) {
	totals, err := experiment.Accumulate(testkit.FixedCounts(100, 10, 100, 12))
	if err != nil {
		t.Fatalf("accumulate: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewSegmentAnalyzer(experiment.DefaultConfig()).Analyze(ctx, totals); err == nil {
		t.Fatal("expected error from canceled context")
	}
}
