package semantic

import (
	"testing"

	"github.com/codelens/codelens/pkg/codelens"
)

func TestTokenizeIdentifierSplitsCamelAndSnakeCase(t *testing.T) {
	got := tokenizeIdentifier("parseHTTPRequestBody")
	want := map[string]bool{"parse": true, "http": true, "request": true, "body": true}
	for _, g := range got {
		if !want[g] {
			t.Fatalf("unexpected token %q in %v", g, got)
		}
	}

	got2 := tokenizeIdentifier("user_account_manager")
	if len(got2) != 3 {
		t.Fatalf("expected 3 tokens from snake_case, got %v", got2)
	}
}

func TestEmptyFileYieldsCoherenceOne(t *testing.T) {
	result := Analyze(map[string]*codelens.FileSyntax{
		"empty.go": {Path: "empty.go"},
	})
	sem := result["empty.go"]
	if sem.Coherence != 1.0 {
		t.Fatalf("expected coherence 1.0 for empty file, got %v", sem.Coherence)
	}
}

func TestClusterConcepts_FewerThanThreeUniqueTokensCollapseToOne(t *testing.T) {
	tokens := []string{"parse", "parse", "parse", "render", "render"}
	concepts := clusterConcepts(tokens)
	if len(concepts) != 1 {
		t.Fatalf("expected a single collapsed concept for <3 unique tokens, got %d: %v", len(concepts), concepts)
	}
	if concepts[0].Weight != 1.0 {
		t.Fatalf("expected the single concept to carry full weight, got %v", concepts[0].Weight)
	}
	if concepts[0].Topic != "parse" {
		t.Fatalf("expected topic to be the most frequent token %q, got %q", "parse", concepts[0].Topic)
	}
}

func TestClusterConcepts_DropsGroupsBelowMinClusterSize(t *testing.T) {
	// "xyz" appears once and shares no prefix with the others, so its group
	// totals 1 occurrence -- below minClusterSize -- and must be dropped.
	tokens := []string{
		"parse", "parser", "parsing",
		"render", "renderer", "rendering",
		"xyz",
	}
	concepts := clusterConcepts(tokens)
	for _, c := range concepts {
		if c.Topic == "xyz" {
			t.Fatalf("expected the below-threshold xyz group to be dropped, got concepts: %v", concepts)
		}
	}
	if len(concepts) != 2 {
		t.Fatalf("expected 2 surviving concepts (par*, ren*), got %d: %v", len(concepts), concepts)
	}
}

func TestClassifyRoleTestFile(t *testing.T) {
	role := classifyRole("internal/widget/widget_test.go", nil)
	if role != codelens.RoleTest {
		t.Fatalf("expected RoleTest, got %v", role)
	}
}

func TestClassifyRoleEntryFile(t *testing.T) {
	role := classifyRole("cmd/server/main.go", nil)
	if role != codelens.RoleEntry {
		t.Fatalf("expected RoleEntry, got %v", role)
	}
}
