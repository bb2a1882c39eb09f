// Package pipeline orchestrates the scan workflow: discover -> parse ->
// {structural, temporal, semantic} -> architecture -> fusion -> patterns,
// per spec.md §2's dependency order. It is the concrete wiring for the
// library entry spec.md §6 calls analyze(root, settings); the core
// analyzers live under internal/ and only pkg/codelens's types cross the
// boundary, so this is the one package that imports both.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/codelens/codelens/internal/architecture"
	"github.com/codelens/codelens/internal/blackboard"
	"github.com/codelens/codelens/internal/clonedetect"
	"github.com/codelens/codelens/internal/discovery"
	"github.com/codelens/codelens/internal/fusion"
	"github.com/codelens/codelens/internal/gitlog"
	"github.com/codelens/codelens/internal/historystore"
	"github.com/codelens/codelens/internal/obslog"
	"github.com/codelens/codelens/internal/patterns"
	"github.com/codelens/codelens/internal/semantic"
	"github.com/codelens/codelens/internal/structural"
	"github.com/codelens/codelens/internal/syntax"
	"github.com/codelens/codelens/internal/temporal"
	"github.com/codelens/codelens/pkg/codelens"
)

// Diagnostics is the optional report surfaced alongside Findings (spec.md
// §7's "Surfacing policy"): missing slots, fallback rate, and the noise
// rate the Temporal Analyzer excluded from co-change generation. The
// analysis-quality checks (SignalInformationGains and the quality-related
// entries folded into Warnings) follow original_source's
// insights/diagnostics.py run_diagnostics, which these checks are grounded
// on directly.
type Diagnostics struct {
	FilesDiscovered int
	FilesParsed     int
	FilesDropped    int
	RegexFallbacks  int
	FallbackRateWarning bool

	HistoryAvailable bool
	CommitsIngested  int
	NoiseRate        float64

	ClonePairsFound int

	MissingSlots []string
	Warnings     []string

	// SignalInformationGains estimates, for a handful of composite-risk
	// inputs, how much each signal actually differentiates files in this
	// codebase (0 = constant, carries no information).
	SignalInformationGains map[string]float64
}

// Result is the outcome of a Run: ranked Findings, the SignalFieldSnapshot,
// and run diagnostics.
type Result struct {
	Findings    []codelens.Finding
	Field       *codelens.SignalField
	Diagnostics Diagnostics
}

// Pipeline holds the state of one scan: output writer, logger, settings,
// and progress callback. A Pipeline is not reused across scans.
type Pipeline struct {
	writer     io.Writer
	log        *zap.SugaredLogger
	settings   *codelens.Settings
	onProgress ProgressFunc
}

// New creates a Pipeline. If settings is nil, codelens.DefaultSettings is
// used. If onProgress is nil, a no-op is used.
func New(w io.Writer, verbose bool, settings *codelens.Settings, onProgress ProgressFunc) *Pipeline {
	if settings == nil {
		settings = codelens.DefaultSettings()
	}
	if onProgress == nil {
		onProgress = func(string, string) {}
	}
	return &Pipeline{
		writer:     w,
		log:        obslog.New(w, verbose),
		settings:   settings,
		onProgress: onProgress,
	}
}

// Run executes the full pipeline against root and returns its Findings,
// the fused SignalField, and diagnostics. Input errors (bad root, invalid
// settings) are returned as the error; once past those, Run always
// returns a Result -- per-analyzer failures degrade the corresponding
// blackboard slot rather than aborting the scan (spec.md §7). Per-analyzer
// errors are additionally collected with multierr so every failure (not
// just the first) is visible in the returned Diagnostics.Warnings.
func (p *Pipeline) Run(root string) (*Result, error) {
	if err := p.settings.Validate(); err != nil {
		return nil, err
	}

	board := blackboard.New()
	diag := Diagnostics{}
	var runErrs error

	p.onProgress("discover", "Scanning files...")
	disco, err := discovery.Walk(root, p.settings)
	if err != nil {
		return nil, &codelens.PathError{Path: root, Reason: err.Error()}
	}
	diag.FilesDiscovered = disco.TotalSeen
	if len(disco.Files) == 0 {
		return nil, &codelens.PathError{Path: root, Reason: "no recognized source files found (supported: Go, Python, TypeScript)"}
	}

	p.onProgress("parse", fmt.Sprintf("Parsing %d files...", len(disco.Files)))
	extractor := syntax.New(p.settings.Workers, p.log.Named("syntax"))
	defer extractor.Close()

	ctx, cancel := context.WithTimeout(context.Background(), p.fileReadTimeout(len(disco.Files)))
	defer cancel()
	files, synDiag := extractor.Extract(ctx, disco.Files)
	diag.FilesParsed = synDiag.FilesParsed
	diag.FilesDropped = synDiag.FilesDropped
	diag.RegexFallbacks = synDiag.RegexFallbacks
	diag.FallbackRateWarning = synDiag.FallbackRateWarning
	board.Syntax.Set(files, "syntax_extractor")

	available := map[string]bool{"syntax": board.Syntax.Available()}

	p.onProgress("analyze", "Building import graph...")
	structResult := p.runStructural(board, files, &runErrs)
	available["structural"] = board.Structural.Available()

	p.onProgress("analyze", "Ingesting commit history...")
	temporalResult := p.runTemporal(board, root, &runErrs)
	available["temporal"] = board.Temporal.Available()
	if board.Temporal.Available() {
		tr := board.Temporal.Value()
		diag.HistoryAvailable = len(tr.PerFile) > 0
		diag.NoiseRate = tr.NoiseRate
		var total int
		for _, cs := range tr.PerFile {
			total += cs.TotalChanges
		}
		diag.CommitsIngested = total
	} else {
		diag.MissingSlots = append(diag.MissingSlots, "temporal")
	}

	p.onProgress("analyze", "Extracting concepts...")
	semanticsResult := p.runSemantic(board, files, &runErrs)
	available["semantic"] = board.Semantic.Available()

	p.onProgress("analyze", "Aggregating modules...")
	archResult := p.runArchitecture(board, files, structResult, &runErrs)
	available["architecture"] = board.Architecture.Available()

	clones := p.runClones(disco)
	diag.ClonePairsFound = len(clones)

	p.onProgress("fuse", "Fusing signals...")
	weights := p.settings.CompositeWeightsOrDefault()
	field := fusion.Assemble(files, structResult, temporalResult, semanticsResult, archResult, weights)
	field.ClonePairs = clones
	board.Fusion.Set(field, "signal_fusion")
	available["fusion"] = true

	p.onProgress("patterns", "Evaluating patterns...")
	findings := patterns.Execute(field, p.settings, available)

	checkAnalysisQuality(field, findings, &diag)

	if !board.Structural.Available() {
		diag.MissingSlots = append(diag.MissingSlots, "structural")
	}
	if !board.Semantic.Available() {
		diag.MissingSlots = append(diag.MissingSlots, "semantic")
	}
	if !board.Architecture.Available() {
		diag.MissingSlots = append(diag.MissingSlots, "architecture")
	}

	if p.settings.HistoryDBPath != "" {
		if err := p.persistSnapshot(root, field); err != nil {
			runErrs = multierr.Append(runErrs, fmt.Errorf("snapshot write: %w", err))
			p.log.Warnw("snapshot write failed", "error", err)
		}
	}

	for _, e := range multierr.Errors(runErrs) {
		diag.Warnings = append(diag.Warnings, e.Error())
	}

	return &Result{Findings: findings, Field: field, Diagnostics: diag}, nil
}

// fileReadTimeout scales the soft per-scan timeout with file count, giving
// each file roughly its spec.md §5 10s soft budget without letting a huge
// codebase time out a scan that is still making progress.
func (p *Pipeline) fileReadTimeout(fileCount int) time.Duration {
	const perFile = 10 * time.Second
	const floor = 30 * time.Second
	d := time.Duration(fileCount) * perFile
	if d < floor {
		return floor
	}
	return d
}

// runStructural invokes the Structural Analyzer, catching any panic as a
// recoverable per-analyzer failure (spec.md §7) so the board's Structural
// slot is marked failed rather than aborting the scan.
func (p *Pipeline) runStructural(board *blackboard.Board, files map[string]*codelens.FileSyntax, errs *error) blackboard.StructuralResult {
	result, err := safely(func() blackboard.StructuralResult {
		return structural.Analyze(files)
	})
	if err != nil {
		p.log.Warnw("structural analyzer failed", "error", err)
		*errs = multierr.Append(*errs, fmt.Errorf("structural analyzer: %w", err))
		board.Structural.Fail(err, "structural_analyzer")
		return blackboard.StructuralResult{}
	}
	board.Structural.Set(result, "structural_analyzer")
	return result
}

// runTemporal ingests git history via the gitlog collaborator. An absent
// repository (not inside a git checkout) or too-short history leaves the
// Temporal slot empty, matching spec.md §4.3 -- no error, just absence.
func (p *Pipeline) runTemporal(board *blackboard.Board, root string, errs *error) blackboard.TemporalResult {
	src, err := gitlog.Open(root)
	if err != nil {
		p.log.Debugw("no git history available", "error", err)
		return blackboard.TemporalResult{}
	}
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription("ingesting commit history"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	commits, err := src.CommitRecordsWithProgress(p.settings.GitMaxCommits, func(seen int) {
		bar.Add(1) //nolint:errcheck
		if seen%50 == 0 {
			p.onProgress("analyze", fmt.Sprintf("%d commits ingested", seen))
		}
	})
	bar.Finish() //nolint:errcheck
	bar.Clear()  //nolint:errcheck
	if err != nil {
		p.log.Warnw("git log failed", "error", err)
		*errs = multierr.Append(*errs, fmt.Errorf("git log: %w", err))
		board.Temporal.Fail(err, "temporal_analyzer")
		return blackboard.TemporalResult{}
	}
	if len(commits) < p.settings.GitMinCommits {
		p.log.Debugw("history too short, skipping temporal analysis", "commits", len(commits), "min", p.settings.GitMinCommits)
		return blackboard.TemporalResult{}
	}
	result, analyzeErr := safely(func() blackboard.TemporalResult {
		return temporal.Analyze(commits)
	})
	if analyzeErr != nil {
		p.log.Warnw("temporal analyzer failed", "error", analyzeErr)
		*errs = multierr.Append(*errs, fmt.Errorf("temporal analyzer: %w", analyzeErr))
		board.Temporal.Fail(analyzeErr, "temporal_analyzer")
		return blackboard.TemporalResult{}
	}
	board.Temporal.Set(result, "temporal_analyzer")
	return result
}

func (p *Pipeline) runSemantic(board *blackboard.Board, files map[string]*codelens.FileSyntax, errs *error) map[string]*codelens.FileSemantics {
	result, err := safely(func() map[string]*codelens.FileSemantics {
		return semantic.Analyze(files)
	})
	if err != nil {
		p.log.Warnw("semantic analyzer failed", "error", err)
		*errs = multierr.Append(*errs, fmt.Errorf("semantic analyzer: %w", err))
		board.Semantic.Fail(err, "semantic_analyzer")
		return nil
	}
	board.Semantic.Set(result, "semantic_analyzer")
	return result
}

func (p *Pipeline) runArchitecture(board *blackboard.Board, files map[string]*codelens.FileSyntax, structResult blackboard.StructuralResult, errs *error) blackboard.ArchitectureResult {
	result, err := safely(func() blackboard.ArchitectureResult {
		return architecture.Analyze(files, structResult)
	})
	if err != nil {
		p.log.Warnw("architecture analyzer failed", "error", err)
		*errs = multierr.Append(*errs, fmt.Errorf("architecture analyzer: %w", err))
		board.Architecture.Fail(err, "architecture_analyzer")
		return blackboard.ArchitectureResult{}
	}
	board.Architecture.Set(result, "architecture_analyzer")
	return result
}

// runClones invokes the clone-detector collaborator (design note 9): a
// pre-filtered {file_a, file_b, ncd<0.3} list the core never recomputes
// itself. A panic here is swallowed to an empty list -- clone findings are
// the one pattern family that simply has no targets without it.
func (p *Pipeline) runClones(disco *discovery.Result) (clones []codelens.ClonePair) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warnw("clone detector panicked", "error", r)
			clones = nil
		}
	}()
	contents := make(map[string][]byte, len(disco.Files))
	for _, f := range disco.Files {
		contents[f.RelPath] = f.Content
	}
	return clonedetect.Detect(contents, p.settings.Workers)
}

func (p *Pipeline) persistSnapshot(root string, field *codelens.SignalField) error {
	store, err := historystore.Open(p.settings.HistoryDBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	_, err = store.WriteSnapshot(root, field)
	return err
}

// safely runs fn and recovers any panic into an error, per spec.md §7's
// "per-analyzer errors are recoverable" policy -- none of the analyzers
// are expected to panic on well-formed input, but a malformed file or an
// unanticipated edge case should degrade the slot, not crash the scan.
func safely[T any](fn func() T) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(), nil
}

// ValidateProject checks that dir exists, is a directory, and contains a
// recognized project indicator or source file, per spec.md §6 input 1.
func ValidateProject(dir string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("directory not found: %s", dir)
	}
	if err != nil {
		return fmt.Errorf("cannot access directory: %s", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	indicators := []string{"go.mod", "pyproject.toml", "setup.py", "requirements.txt", "tsconfig.json", "package.json"}
	for _, f := range indicators {
		if _, err := os.Stat(filepath.Join(dir, f)); err == nil {
			return nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("cannot read directory: %s", err)
	}
	recognizedExts := map[string]bool{".go": true, ".py": true, ".ts": true, ".tsx": true}
	for _, entry := range entries {
		if !entry.IsDir() && recognizedExts[filepath.Ext(entry.Name())] {
			return nil
		}
	}
	return fmt.Errorf("no recognized project found in: %s\nSupported: Go (go.mod), Python (pyproject.toml), TypeScript (tsconfig.json)", dir)
}
