// Package fusion implements Signal Fusion (spec.md §4.6.1-4.6.3): tier
// selection, percentile normalization with absolute floors, the composite
// raw_risk/risk_score, and the delta_h Laplacian. It assembles the
// per-file/per-directory/per-module/global SignalField the Pattern
// Executor consumes.
package fusion

import (
	"path"
	"strings"

	"github.com/codelens/codelens/internal/blackboard"
	"github.com/codelens/codelens/pkg/codelens"
)

// Assemble builds the unified SignalField from every analyzer's output.
// Any of structural/temporal/semantic may be zero-valued when their
// blackboard slot was never filled or failed -- fusion still produces a
// usable (if sparser) field, matching spec.md's graceful-degradation
// posture.
func Assemble(
	files map[string]*codelens.FileSyntax,
	structural blackboard.StructuralResult,
	temporal blackboard.TemporalResult,
	semantics map[string]*codelens.FileSemantics,
	arch blackboard.ArchitectureResult,
	weights codelens.CompositeWeights,
) *codelens.SignalField {
	tier := codelens.TierForFileCount(len(files))

	field := &codelens.SignalField{
		PerFile:      make(map[string]*codelens.FileSignals, len(files)),
		PerDirectory: make(map[string]*codelens.DirectorySignals),
		PerModule:    make(map[string]*codelens.ModuleSignals, len(arch.Modules)),
		DeltaH:       make(map[string]float64, len(files)),
		Tier:         tier,
		Graph:        structural.Graph,
		CoChange:     temporal.CoChange,
		Violations:   arch.Violations,
	}

	for p, fs := range files {
		sig := &codelens.FileSignals{
			Path:      p,
			Directory: path.Dir(p),
			Module:    modulePathOf(p),
			Lines:     fs.Lines,
			Functions: len(fs.Functions),
			StubRatio: fs.StubRatio,
			ImplGini:  fs.ImplGini,
			IsTest:    looksLikeTest(p),
		}
		if gm, ok := structural.PerFile[p]; ok {
			sig.PageRank = gm.PageRank
			sig.Betweenness = gm.Betweenness
			sig.InDegree = gm.InDegree
			sig.OutDegree = gm.OutDegree
			sig.Depth = gm.Depth
			sig.IsOrphan = gm.IsOrphan
			sig.Community = gm.Community
			sig.BlastRadiusSize = gm.BlastRadiusSize
			sig.PhantomImportCount = gm.PhantomImportCount
			sig.IsEntry = gm.Depth == 0
		} else {
			sig.Depth = -1
		}
		if cs, ok := temporal.PerFile[p]; ok {
			sig.TotalChanges = cs.TotalChanges
			sig.Trajectory = cs.Trajectory
			sig.Slope = cs.Slope
			sig.CV = cs.CV
			sig.BusFactor = cs.BusFactor
			sig.AuthorEntropy = cs.AuthorEntropy
			sig.FixRatio = cs.FixRatio
			sig.RefactorRatio = cs.RefactorRatio
		} else {
			sig.BusFactor = 1.0
		}
		if sem, ok := semantics[p]; ok {
			sig.ConceptCount = sem.ConceptCount
			sig.ConceptEntropy = sem.ConceptEntropy
			sig.Coherence = sem.Coherence
			sig.NamingDrift = sem.NamingDrift
			sig.Role = sem.Role
			sig.CognitiveLoad = sem.CognitiveLoad
			sig.ConceptTopics = make([]string, len(sem.Concepts))
			for i, c := range sem.Concepts {
				sig.ConceptTopics[i] = c.Topic
			}
		}
		field.PerFile[p] = sig
	}

	if tier != codelens.TierAbsolute {
		computePercentiles(field)
	}
	computeRawRisk(field, arch.Modules, weights)
	computeRiskScore(field)
	computeDeltaH(field)

	assembleDirectories(field)
	assembleModules(field, arch)
	assembleGlobal(field, structural, temporal, arch)

	return field
}

func modulePathOf(filePath string) string {
	segs := strings.Split(filePath, "/")
	if len(segs) <= 1 {
		return "."
	}
	return segs[0]
}

func looksLikeTest(filePath string) bool {
	base := path.Base(filePath)
	return strings.Contains(base, "_test.") || strings.HasPrefix(base, "test_") || strings.Contains(base, ".test.")
}

// computePercentiles normalizes a fixed registry of numeric per-file signals
// into percentiles, per spec.md §4.6.2.
func computePercentiles(field *codelens.SignalField) {
	registry := map[string]func(*codelens.FileSignals) float64{
		"pagerank":       func(s *codelens.FileSignals) float64 { return s.PageRank },
		"blast_radius":   func(s *codelens.FileSignals) float64 { return float64(s.BlastRadiusSize) },
		"cognitive_load": func(s *codelens.FileSignals) float64 { return s.CognitiveLoad },
		"lines":          func(s *codelens.FileSignals) float64 { return float64(s.Lines) },
		"betweenness":    func(s *codelens.FileSignals) float64 { return s.Betweenness },
		"coherence":      func(s *codelens.FileSignals) float64 { return s.Coherence },
	}

	raw := make(map[string]map[string]float64, len(registry))
	for name, extract := range registry {
		values := make(map[string]float64, len(field.PerFile))
		for p, sig := range field.PerFile {
			values[p] = extract(sig)
		}
		raw[name] = values
	}

	computed := make(map[string]map[string]float64, len(registry))
	for name, values := range raw {
		computed[name] = percentilesForSignal(name, values)
	}

	for p, sig := range field.PerFile {
		sig.Percentiles = make(map[string]float64, len(registry))
		for name := range registry {
			sig.Percentiles[name] = computed[name][p]
		}
	}
}

// computeRawRisk fills RawRisk using the percentile-normalized components
// where available, falling back to a min-max-style proxy in ABSOLUTE tier
// where no percentiles exist: instability is read from the file's module.
func computeRawRisk(field *codelens.SignalField, modules map[string]*codelens.ModuleSummary, weights codelens.CompositeWeights) {
	for _, sig := range field.PerFile {
		var pagerank, blastRadius, cognitiveLoad float64
		if sig.Percentiles != nil {
			pagerank = sig.Percentiles["pagerank"]
			blastRadius = sig.Percentiles["blast_radius"]
			cognitiveLoad = sig.Percentiles["cognitive_load"]
		} else {
			pagerank = sig.PageRank
			blastRadius = clamp01(float64(sig.BlastRadiusSize) / 50.0)
			cognitiveLoad = clamp01(sig.CognitiveLoad)
		}
		instability := moduleInstability(modules, sig.Module)
		busFactorComponent := 1.0 / sig.BusFactor // inverse: higher bus factor = lower risk
		if sig.BusFactor <= 0 {
			busFactorComponent = 1.0
		}

		sig.RawRisk = weights.PageRank*pagerank +
			weights.BlastRadius*blastRadius +
			weights.CognitiveLoad*cognitiveLoad +
			weights.Instability*instability +
			weights.BusFactor*clamp01(busFactorComponent)
	}
}

func moduleInstability(modules map[string]*codelens.ModuleSummary, mod string) float64 {
	ms, ok := modules[mod]
	if !ok || ms.Instability == nil {
		return 0.5 // unknown instability contributes a neutral mid-point
	}
	return *ms.Instability
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// computeRiskScore sets RiskScore to the percentile rank of RawRisk when
// tier != ABSOLUTE, else RawRisk unscaled, per spec.md §4.6.3.
func computeRiskScore(field *codelens.SignalField) {
	if field.Tier == codelens.TierAbsolute {
		for _, sig := range field.PerFile {
			sig.RiskScore = sig.RawRisk
		}
		return
	}
	raw := make(map[string]float64, len(field.PerFile))
	for p, sig := range field.PerFile {
		raw[p] = sig.RawRisk
	}
	ranks := percentileRanks(raw)
	for p, sig := range field.PerFile {
		sig.RiskScore = ranks[p]
	}
}

// computeDeltaH computes the delta_h Laplacian: a file's risk deviation
// from the mean risk of its undirected-graph neighbors. Orphans get 0 by
// construction (invariant 4).
func computeDeltaH(field *codelens.SignalField) {
	neighbors := undirectedNeighbors(field.Graph)
	for p, sig := range field.PerFile {
		if sig.IsOrphan {
			sig.DeltaH = 0
			field.DeltaH[p] = 0
			continue
		}
		ns := neighbors[p]
		if len(ns) == 0 {
			sig.DeltaH = 0
			field.DeltaH[p] = 0
			continue
		}
		sum := 0.0
		for _, n := range ns {
			if other, ok := field.PerFile[n]; ok {
				sum += other.RiskScore
			}
		}
		mean := sum / float64(len(ns))
		sig.DeltaH = sig.RiskScore - mean
		field.DeltaH[p] = sig.DeltaH
	}
}

func undirectedNeighbors(graph *codelens.DependencyGraph) map[string][]string {
	result := make(map[string][]string)
	if graph == nil {
		return result
	}
	seen := make(map[[2]string]bool)
	for _, e := range graph.Edges {
		key := e.From + "\x00" + e.To
		if e.From > e.To {
			key = e.To + "\x00" + e.From
		}
		pair := [2]string{e.From, e.To}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		_ = key
		result[e.From] = append(result[e.From], e.To)
		result[e.To] = append(result[e.To], e.From)
	}
	return result
}
