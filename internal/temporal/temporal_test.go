package temporal

import (
	"testing"

	"github.com/codelens/codelens/pkg/codelens"
)

func TestAnalyzeEmptyCommitsYieldsZeroResult(t *testing.T) {
	result := Analyze(nil)
	if len(result.PerFile) != 0 || result.TeamSize != 0 {
		t.Fatalf("expected zero-value result for no commits, got %+v", result)
	}
}

func TestNoisyCommitExcludedFromChurn(t *testing.T) {
	manyFiles := make([]string, noisyCommitFileThreshold+1)
	for i := range manyFiles {
		manyFiles[i] = "f.go"
	}
	commits := []codelens.CommitRecord{
		{Hash: "1", Timestamp: 1000, Author: "a@x.com", Files: []string{"a.go"}, Message: "fix bug"},
		{Hash: "2", Timestamp: 2000, Author: "b@x.com", Files: manyFiles, Message: "mass rename"},
	}
	result := Analyze(commits)
	if result.NoiseRate == 0 {
		t.Fatal("expected nonzero noise rate when a bulk commit is present")
	}
	if _, ok := result.PerFile["a.go"]; !ok {
		t.Fatal("expected a.go churn series to be present")
	}
}

func TestBusFactorFlooredAtOne(t *testing.T) {
	commits := []codelens.CommitRecord{
		{Hash: "1", Timestamp: 1000, Author: "solo@x.com", Files: []string{"a.go"}},
		{Hash: "2", Timestamp: 2000, Author: "solo@x.com", Files: []string{"a.go"}},
	}
	result := Analyze(commits)
	series := result.PerFile["a.go"]
	if series == nil {
		t.Fatal("missing churn series for a.go")
	}
	if series.BusFactor != 1.0 {
		t.Fatalf("expected bus factor 1.0 for single-author file, got %v", series.BusFactor)
	}
}

func TestFixRatioFromCommitMessages(t *testing.T) {
	commits := []codelens.CommitRecord{
		{Hash: "1", Timestamp: 1000, Author: "a@x.com", Files: []string{"a.go"}, Message: "fix: null pointer"},
		{Hash: "2", Timestamp: 2000, Author: "a@x.com", Files: []string{"a.go"}, Message: "add feature"},
	}
	result := Analyze(commits)
	series := result.PerFile["a.go"]
	if series.FixRatio != 0.5 {
		t.Fatalf("expected fix ratio 0.5, got %v", series.FixRatio)
	}
}

func TestCoChangeConfidenceAndLift(t *testing.T) {
	commits := []codelens.CommitRecord{
		{Hash: "1", Timestamp: 1000, Author: "a@x.com", Files: []string{"a.go", "b.go"}},
		{Hash: "2", Timestamp: 2000, Author: "a@x.com", Files: []string{"a.go", "b.go"}},
		{Hash: "3", Timestamp: 3000, Author: "a@x.com", Files: []string{"a.go"}},
	}
	result := Analyze(commits)
	if len(result.CoChange) != 1 {
		t.Fatalf("expected 1 co-change pair, got %d", len(result.CoChange))
	}
	pair := result.CoChange[0]
	if pair.CochangeCount != 2 {
		t.Fatalf("expected cochange count 2, got %d", pair.CochangeCount)
	}
	if pair.ConfidenceAToB != 2.0/3.0 || pair.ConfidenceBToA != 1.0 {
		t.Fatalf("expected confidences 2/3 (a->b) and 1 (b->a), got %v and %v", pair.ConfidenceAToB, pair.ConfidenceBToA)
	}
	if pair.Lift != 1.0 {
		t.Fatalf("expected lift 1.0, got %v", pair.Lift)
	}
}
