package fusion

import (
	"testing"

	"github.com/codelens/codelens/internal/blackboard"
	"github.com/codelens/codelens/pkg/codelens"
)

func TestPercentileRanksUsesLessOrEqual(t *testing.T) {
	values := map[string]float64{"a": 1, "b": 2, "b2": 2, "c": 3}
	ranks := percentileRanks(values)
	if ranks["b"] != ranks["b2"] {
		t.Fatalf("tied values must share a rank: %v vs %v", ranks["b"], ranks["b2"])
	}
	if ranks["c"] != 1.0 {
		t.Fatalf("max value should rank at 1.0, got %v", ranks["c"])
	}
}

func TestApplyFloorForcesZeroBelowAbsoluteFloor(t *testing.T) {
	got := applyFloor("pagerank", 0.001, 0.9)
	if got != 0.0 {
		t.Fatalf("expected floor to zero out percentile, got %v", got)
	}
	got2 := applyFloor("pagerank", 0.5, 0.9)
	if got2 != 0.9 {
		t.Fatalf("expected percentile unchanged above floor, got %v", got2)
	}
}

func TestAssembleOrphanHasZeroDeltaH(t *testing.T) {
	files := map[string]*codelens.FileSyntax{
		"a.go": {Path: "a.go", Lines: 10},
	}
	structural := blackboard.StructuralResult{
		Graph: &codelens.DependencyGraph{},
		PerFile: map[string]*codelens.GraphMetrics{
			"a.go": {IsOrphan: true, Depth: -1},
		},
	}
	field := Assemble(files, structural, blackboard.TemporalResult{}, map[string]*codelens.FileSemantics{}, blackboard.ArchitectureResult{Modules: map[string]*codelens.ModuleSummary{}}, codelens.DefaultCompositeWeights())
	if field.PerFile["a.go"].DeltaH != 0 {
		t.Fatalf("expected orphan delta_h 0, got %v", field.PerFile["a.go"].DeltaH)
	}
}

func TestAssembleAbsoluteTierSkipsPercentiles(t *testing.T) {
	files := map[string]*codelens.FileSyntax{
		"a.go": {Path: "a.go"},
		"b.go": {Path: "b.go"},
	}
	field := Assemble(files, blackboard.StructuralResult{PerFile: map[string]*codelens.GraphMetrics{}}, blackboard.TemporalResult{}, map[string]*codelens.FileSemantics{}, blackboard.ArchitectureResult{Modules: map[string]*codelens.ModuleSummary{}}, codelens.DefaultCompositeWeights())
	if field.Tier != codelens.TierAbsolute {
		t.Fatalf("expected ABSOLUTE tier for 2 files, got %v", field.Tier)
	}
	for p, sig := range field.PerFile {
		if sig.Percentiles != nil {
			t.Fatalf("expected nil percentiles in ABSOLUTE tier for %s, got %v", p, sig.Percentiles)
		}
	}
}

func TestComputeRiskScoreIsRawRiskInAbsoluteTier(t *testing.T) {
	field := &codelens.SignalField{
		Tier: codelens.TierAbsolute,
		PerFile: map[string]*codelens.FileSignals{
			"a.go": {RawRisk: 0.42},
		},
	}
	computeRiskScore(field)
	if field.PerFile["a.go"].RiskScore != 0.42 {
		t.Fatalf("expected risk_score == raw_risk in ABSOLUTE tier, got %v", field.PerFile["a.go"].RiskScore)
	}
}
