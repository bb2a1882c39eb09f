package pipeline

import (
	"strings"
	"testing"

	"github.com/codelens/codelens/pkg/codelens"
)

func TestCheckConceptQuality_WarnsWhenMostFilesHaveAtMostOneConcept(t *testing.T) {
	field := &codelens.SignalField{PerFile: map[string]*codelens.FileSignals{
		"a.go": {ConceptCount: 0},
		"b.go": {ConceptCount: 1},
		"c.go": {ConceptCount: 1},
		"d.go": {ConceptCount: 5},
	}}
	diag := &Diagnostics{}
	checkConceptQuality(field, diag)
	if len(diag.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(diag.Warnings), diag.Warnings)
	}
	if !strings.Contains(diag.Warnings[0], "concept extraction quality low") {
		t.Fatalf("unexpected warning: %s", diag.Warnings[0])
	}
}

func TestCheckConceptQuality_SilentWhenConceptsAreRich(t *testing.T) {
	field := &codelens.SignalField{PerFile: map[string]*codelens.FileSignals{
		"a.go": {ConceptCount: 4},
		"b.go": {ConceptCount: 3},
	}}
	diag := &Diagnostics{}
	checkConceptQuality(field, diag)
	if len(diag.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", diag.Warnings)
	}
}

func TestCheckFinderNoise_FlagsDominantFinder(t *testing.T) {
	findings := []codelens.Finding{
		{PatternName: "god_file"}, {PatternName: "god_file"}, {PatternName: "god_file"},
		{PatternName: "bug_attractor"},
	}
	diag := &Diagnostics{}
	checkFinderNoise(findings, diag)
	if len(diag.Warnings) != 1 || !strings.Contains(diag.Warnings[0], `"god_file"`) {
		t.Fatalf("expected a noise warning naming god_file, got %v", diag.Warnings)
	}
}

func TestCheckSignalInformationGain_ZeroForConstantSignal(t *testing.T) {
	field := &codelens.SignalField{PerFile: map[string]*codelens.FileSignals{
		"a.go": {PageRank: 0.5, BusFactor: 1, CognitiveLoad: 1, CV: 1},
		"b.go": {PageRank: 0.5, BusFactor: 1, CognitiveLoad: 0.2, CV: 1},
	}}
	diag := &Diagnostics{}
	checkSignalInformationGain(field, diag)
	if diag.SignalInformationGains["pagerank"] != 0 {
		t.Fatalf("expected zero IG for constant pagerank, got %v", diag.SignalInformationGains["pagerank"])
	}
	if diag.SignalInformationGains["bus_factor"] != 0 {
		t.Fatalf("expected zero IG for constant bus_factor, got %v", diag.SignalInformationGains["bus_factor"])
	}
	foundWarning := false
	for _, w := range diag.Warnings {
		if strings.Contains(w, `"pagerank"`) && strings.Contains(w, "zero information") {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Fatalf("expected a zero-information warning for pagerank, got %v", diag.Warnings)
	}
}

func TestCheckSignalInformationGain_PositiveForVaryingSignal(t *testing.T) {
	field := &codelens.SignalField{PerFile: map[string]*codelens.FileSignals{
		"a.go": {CognitiveLoad: 0.1},
		"b.go": {CognitiveLoad: 0.3},
		"c.go": {CognitiveLoad: 0.5},
		"d.go": {CognitiveLoad: 0.9},
	}}
	diag := &Diagnostics{}
	checkSignalInformationGain(field, diag)
	if diag.SignalInformationGains["cognitive_load"] <= 0 {
		t.Fatalf("expected positive IG for varying cognitive_load, got %v", diag.SignalInformationGains["cognitive_load"])
	}
}

func TestSortedInformationGainKeys_IsDeterministic(t *testing.T) {
	gains := map[string]float64{"pagerank": 1, "bus_factor": 2, "churn_cv": 3}
	got := SortedInformationGainKeys(gains)
	want := []string{"bus_factor", "churn_cv", "pagerank"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
