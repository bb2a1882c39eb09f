package historystore

import (
	"path/filepath"
	"testing"

	"github.com/codelens/codelens/pkg/codelens"
)

func TestOpenCreatesDatabase(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	store, err := Open(filepath.Join(tmpDir, "history.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if store == nil {
		t.Fatal("expected non-nil store")
	}
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir", "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
}

func sampleField() *codelens.SignalField {
	return &codelens.SignalField{
		Tier: codelens.TierFull,
		PerFile: map[string]*codelens.FileSignals{
			"a.go": {Path: "a.go", PageRank: 0.5, RiskScore: 0.8, BlastRadiusSize: 3},
			"b.go": {Path: "b.go", PageRank: 0.1, RiskScore: 0.2, BlastRadiusSize: 1},
		},
		CoChange: []codelens.CoChangePair{
			{FileA: "a.go", FileB: "b.go", CochangeCount: 4, Lift: 2.0},
		},
		Graph: &codelens.DependencyGraph{
			Edges: []codelens.DependencyEdge{{From: "a.go", To: "b.go"}},
		},
	}
}

func TestWriteSnapshotPersistsFileSignals(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	store, err := Open(filepath.Join(tmpDir, "history.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	snapshotID, err := store.WriteSnapshot("/repo", sampleField())
	if err != nil {
		t.Fatalf("WriteSnapshot error: %v", err)
	}
	if snapshotID == "" {
		t.Fatal("expected non-empty snapshot id")
	}

	risk, err := store.LoadSnapshotRisk(snapshotID)
	if err != nil {
		t.Fatalf("LoadSnapshotRisk error: %v", err)
	}
	if risk["a.go"] != 0.8 {
		t.Errorf("risk_score[a.go] = %v, want 0.8", risk["a.go"])
	}
	if risk["b.go"] != 0.2 {
		t.Errorf("risk_score[b.go] = %v, want 0.2", risk["b.go"])
	}
}

func TestWriteSnapshotIsolatesRootsAndOrdersRecentFirst(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	store, err := Open(filepath.Join(tmpDir, "history.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	first, err := store.WriteSnapshot("/repo-a", sampleField())
	if err != nil {
		t.Fatalf("WriteSnapshot error: %v", err)
	}
	second, err := store.WriteSnapshot("/repo-a", sampleField())
	if err != nil {
		t.Fatalf("WriteSnapshot error: %v", err)
	}
	if _, err := store.WriteSnapshot("/repo-b", sampleField()); err != nil {
		t.Fatalf("WriteSnapshot error: %v", err)
	}

	ids, err := store.ListSnapshots("/repo-a")
	if err != nil {
		t.Fatalf("ListSnapshots error: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ListSnapshots(/repo-a) = %d ids, want 2", len(ids))
	}
	if ids[0] != second || ids[1] != first {
		t.Errorf("ListSnapshots order = %v, want [second, first]", ids)
	}
}

func TestWriteSnapshotPersistsRelationSignals(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	store, err := Open(filepath.Join(tmpDir, "history.db"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	snapshotID, err := store.WriteSnapshot("/repo", sampleField())
	if err != nil {
		t.Fatalf("WriteSnapshot error: %v", err)
	}

	var count int
	row := store.db.QueryRow(
		`SELECT COUNT(*) FROM relation_signals WHERE snapshot_id = ?`, snapshotID,
	)
	if err := row.Scan(&count); err != nil {
		t.Fatalf("query relation_signals: %v", err)
	}
	if count == 0 {
		t.Error("expected relation_signals rows for co-change and import edge")
	}
}
