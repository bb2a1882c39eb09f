package patterns

import (
	"testing"

	"github.com/codelens/codelens/pkg/codelens"
)

func allSlots() map[string]bool {
	return map[string]bool{
		"syntax": true, "structural": true, "temporal": true,
		"semantic": true, "architecture": true,
	}
}

func TestOrphanCodeFiresOnUnreachableNonTestFile(t *testing.T) {
	field := &codelens.SignalField{
		Tier: codelens.TierAbsolute,
		PerFile: map[string]*codelens.FileSignals{
			"pkg/dead.go": {Path: "pkg/dead.go", IsOrphan: true, IsEntry: false, IsTest: false, Directory: "pkg"},
		},
		PerModule:    map[string]*codelens.ModuleSignals{},
		PerDirectory: map[string]*codelens.DirectorySignals{},
	}
	findings := Execute(field, codelens.DefaultSettings(), allSlots())
	if !hasPattern(findings, "orphan_code") {
		t.Fatalf("expected orphan_code finding, got %+v", findings)
	}
}

func TestOrphanCodeSkipsEntryPoints(t *testing.T) {
	field := &codelens.SignalField{
		Tier: codelens.TierAbsolute,
		PerFile: map[string]*codelens.FileSignals{
			"cmd/main.go": {Path: "cmd/main.go", IsOrphan: true, IsEntry: true, Directory: "cmd"},
		},
		PerModule:    map[string]*codelens.ModuleSignals{},
		PerDirectory: map[string]*codelens.DirectorySignals{},
	}
	findings := Execute(field, codelens.DefaultSettings(), allSlots())
	if hasPattern(findings, "orphan_code") {
		t.Fatalf("did not expect orphan_code on entry point, got %+v", findings)
	}
}

func TestPercentileGatedPatternsSkippedAtAbsoluteTier(t *testing.T) {
	field := &codelens.SignalField{
		Tier: codelens.TierAbsolute,
		PerFile: map[string]*codelens.FileSignals{
			"a.go": {Path: "a.go", PageRank: 0.99, BlastRadiusSize: 999, CognitiveLoad: 0.99},
		},
		PerModule:    map[string]*codelens.ModuleSignals{},
		PerDirectory: map[string]*codelens.DirectorySignals{},
	}
	findings := Execute(field, codelens.DefaultSettings(), allSlots())
	if hasPattern(findings, "high_risk_hub") {
		t.Fatalf("high_risk_hub uses percentiles and must not fire at ABSOLUTE tier")
	}
}

func TestSubsumptionSuppressesReviewBlindspotUnderGodFile(t *testing.T) {
	findings := []codelens.Finding{
		{PatternName: "god_file", Scope: codelens.ScopeFile, Files: []string{"a.go"}, Severity: 0.9},
		{PatternName: "review_blindspot", Scope: codelens.ScopeFile, Files: []string{"a.go"}, Severity: 0.8},
		{PatternName: "review_blindspot", Scope: codelens.ScopeFile, Files: []string{"b.go"}, Severity: 0.8},
	}
	out := dedup(findings)
	if hasPattern(out, "review_blindspot") {
		for _, f := range out {
			if f.PatternName == "review_blindspot" && f.Files[0] == "a.go" {
				t.Fatalf("review_blindspot on a.go should be suppressed by god_file")
			}
		}
	}
	if !hasFindingFor(out, "review_blindspot", "b.go") {
		t.Fatalf("review_blindspot on b.go (no god_file there) should survive")
	}
}

func TestConditionMarginClampsToUnitInterval(t *testing.T) {
	c := Condition{Value: 0.99, Threshold: 0.90, Polarity: HighIsBad}
	m := c.Margin()
	if m < 0 || m > 1 {
		t.Fatalf("margin must be in [0,1], got %v", m)
	}
}

func hasPattern(findings []codelens.Finding, name string) bool {
	for _, f := range findings {
		if f.PatternName == name {
			return true
		}
	}
	return false
}

func hasFindingFor(findings []codelens.Finding, name, path string) bool {
	for _, f := range findings {
		if f.PatternName == name && len(f.Files) > 0 && f.Files[0] == path {
			return true
		}
	}
	return false
}
