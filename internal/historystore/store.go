// Package historystore is the real, intentionally thin implementation of
// the persisted-state collaborator spec.md describes but leaves external:
// a columnar snapshot of a SignalField keyed by (snapshot_id, path) for
// per-file signals and (snapshot_id, file_a, file_b) for relations.
// Grounded on theRebelliousNerd-codenerd's internal/northstar/store.go
// (sql.Open + schema-on-open + mutex-guarded writes), adapted from its
// JSON-blob row shape to the spec's flat signal/value columnar layout and
// from mattn/go-sqlite3 to the pure-Go modernc.org/sqlite driver.
package historystore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/codelens/codelens/pkg/codelens"
)

// Store writes SignalField snapshots to a SQLite database. Safe for
// concurrent use.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates or opens the history database at path, creating parent
// directories as needed, and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history db schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		snapshot_id TEXT PRIMARY KEY,
		root        TEXT NOT NULL,
		tier        TEXT NOT NULL,
		created_at  DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS file_signals (
		snapshot_id TEXT NOT NULL,
		path        TEXT NOT NULL,
		signal      TEXT NOT NULL,
		value       REAL NOT NULL,
		PRIMARY KEY (snapshot_id, path, signal)
	);
	CREATE INDEX IF NOT EXISTS idx_file_signals_snapshot ON file_signals(snapshot_id);

	CREATE TABLE IF NOT EXISTS relation_signals (
		snapshot_id TEXT NOT NULL,
		file_a      TEXT NOT NULL,
		file_b      TEXT NOT NULL,
		signal      TEXT NOT NULL,
		value       REAL NOT NULL,
		PRIMARY KEY (snapshot_id, file_a, file_b, signal)
	);
	CREATE INDEX IF NOT EXISTS idx_relation_signals_snapshot ON relation_signals(snapshot_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// WriteSnapshot persists field as a new snapshot row plus its per-file and
// per-relation signal rows, and returns the generated snapshot_id.
func (s *Store) WriteSnapshot(root string, field *codelens.SignalField) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshotID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO snapshots (snapshot_id, root, tier, created_at) VALUES (?, ?, ?, ?)`,
		snapshotID, root, string(field.Tier), time.Now(),
	); err != nil {
		return "", fmt.Errorf("insert snapshot row: %w", err)
	}

	fileStmt, err := tx.Prepare(`INSERT INTO file_signals (snapshot_id, path, signal, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare file_signals insert: %w", err)
	}
	defer fileStmt.Close()

	for path, sig := range field.PerFile {
		for signal, value := range fileSignalColumns(sig) {
			if _, err := fileStmt.Exec(snapshotID, path, signal, value); err != nil {
				return "", fmt.Errorf("insert file_signals row: %w", err)
			}
		}
	}

	relStmt, err := tx.Prepare(`INSERT INTO relation_signals (snapshot_id, file_a, file_b, signal, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare relation_signals insert: %w", err)
	}
	defer relStmt.Close()

	for _, cc := range field.CoChange {
		rows := map[string]float64{
			"cochange_count": float64(cc.CochangeCount),
			"lift":           cc.Lift,
			"confidence_a_b": cc.ConfidenceAToB,
			"confidence_b_a": cc.ConfidenceBToA,
		}
		for signal, value := range rows {
			if _, err := relStmt.Exec(snapshotID, cc.FileA, cc.FileB, signal, value); err != nil {
				return "", fmt.Errorf("insert relation_signals row: %w", err)
			}
		}
	}
	for _, cp := range field.ClonePairs {
		if _, err := relStmt.Exec(snapshotID, cp.FileA, cp.FileB, "ncd", cp.NCD); err != nil {
			return "", fmt.Errorf("insert relation_signals row: %w", err)
		}
	}
	if field.Graph != nil {
		for _, e := range field.Graph.Edges {
			if _, err := relStmt.Exec(snapshotID, e.From, e.To, "import_edge", 1.0); err != nil {
				return "", fmt.Errorf("insert relation_signals row: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit snapshot transaction: %w", err)
	}
	return snapshotID, nil
}

// fileSignalColumns flattens the subset of FileSignals that is meaningful
// to compare across snapshots (composite + graph + temporal + semantic
// scalars); percentiles are tier-dependent and omitted to keep the raw
// signal history stable across codebase-size crossings.
func fileSignalColumns(sig *codelens.FileSignals) map[string]float64 {
	return map[string]float64{
		"pagerank":             sig.PageRank,
		"betweenness":          sig.Betweenness,
		"blast_radius":         float64(sig.BlastRadiusSize),
		"phantom_import_count": float64(sig.PhantomImportCount),
		"depth":                float64(sig.Depth),
		"total_changes":        float64(sig.TotalChanges),
		"cv":                   sig.CV,
		"bus_factor":           sig.BusFactor,
		"fix_ratio":            sig.FixRatio,
		"coherence":            sig.Coherence,
		"naming_drift":         sig.NamingDrift,
		"cognitive_load":       sig.CognitiveLoad,
		"lines":                float64(sig.Lines),
		"stub_ratio":           sig.StubRatio,
		"impl_gini":            sig.ImplGini,
		"raw_risk":             sig.RawRisk,
		"risk_score":           sig.RiskScore,
		"delta_h":              sig.DeltaH,
	}
}

// LoadSnapshotRisk returns risk_score by path for a given snapshot, the
// minimal read path a trend report needs (e.g. "has file X gotten riskier
// since snapshot Y").
func (s *Store) LoadSnapshotRisk(snapshotID string) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT path, value FROM file_signals WHERE snapshot_id = ? AND signal = 'risk_score'`,
		snapshotID,
	)
	if err != nil {
		return nil, fmt.Errorf("query risk_score: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var path string
		var value float64
		if err := rows.Scan(&path, &value); err != nil {
			return nil, fmt.Errorf("scan risk_score row: %w", err)
		}
		out[path] = value
	}
	return out, rows.Err()
}

// ListSnapshots returns snapshot ids for root, most recent first.
func (s *Store) ListSnapshots(root string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		`SELECT snapshot_id FROM snapshots WHERE root = ? ORDER BY created_at DESC`,
		root,
	)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan snapshot id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
