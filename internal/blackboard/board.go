package blackboard

import "github.com/codelens/codelens/pkg/codelens"

// Board is the fixed set of slots the pipeline populates in dependency
// order: Syntax -> {Structural, Temporal, Semantic} -> Architecture ->
// Fusion. The board is allocated once per Analyze call and is never shared
// across runs.
type Board struct {
	Syntax       Slot[map[string]*codelens.FileSyntax]
	Structural   Slot[StructuralResult]
	Temporal     Slot[TemporalResult]
	Semantic     Slot[map[string]*codelens.FileSemantics]
	Architecture Slot[ArchitectureResult]
	Fusion       Slot[*codelens.SignalField]
}

// New returns an empty Board with all slots unfilled.
func New() *Board {
	return &Board{}
}

// StructuralResult bundles the Structural Analyzer's outputs: the resolved
// import graph plus per-file graph metrics and the handful of global
// signals it is positioned to compute directly (modularity, centrality
// gini, cycle count, spectral signals).
type StructuralResult struct {
	Graph       *codelens.DependencyGraph
	PerFile     map[string]*codelens.GraphMetrics
	Modularity  float64
	CentralityGini float64
	CycleCount  int
	FiedlerValue float64
	SpectralGap float64
	MaxDepth    int
	HasLayering bool // entry points existed and depth was computable
}

// TemporalResult bundles the Temporal Analyzer's outputs.
type TemporalResult struct {
	PerFile   map[string]*codelens.ChurnSeries
	CoChange  []codelens.CoChangePair
	TeamSize  int // distinct authors across all ingested commits
	NoiseRate float64 // fraction of commits excluded as bulk/noisy
}

// ArchitectureResult bundles the Architecture Analyzer's outputs.
type ArchitectureResult struct {
	Modules     map[string]*codelens.ModuleSummary
	Violations  []codelens.LayerViolation
	HasLayering bool
	MaxDepth    int
}
