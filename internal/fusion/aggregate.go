package fusion

import (
	"github.com/codelens/codelens/internal/blackboard"
	"github.com/codelens/codelens/pkg/codelens"
)

// assembleDirectories aggregates PerFile into PerDirectory (spec.md §4.6.4).
func assembleDirectories(field *codelens.SignalField) {
	for _, sig := range field.PerFile {
		dir := field.PerDirectory[sig.Directory]
		if dir == nil {
			dir = &codelens.DirectorySignals{Path: sig.Directory}
			field.PerDirectory[sig.Directory] = dir
		}
		dir.FileCount++
		if sig.RiskScore > 0.8 {
			dir.HighRiskFileCount++
		}
		dir.AvgRisk += sig.RiskScore
		if sig.RiskScore > dir.MaxRisk {
			dir.MaxRisk = sig.RiskScore
		}
		dir.AvgCognitiveLoad += sig.CognitiveLoad
		if sig.IsOrphan {
			dir.OrphanCount++
		}
		if sig.IsTest {
			dir.TestRatio++
		}
		dir.ChurnTotal += sig.TotalChanges
	}

	roleCounts := make(map[string]map[codelens.Role]int)
	communities := make(map[string]map[int]bool)
	for _, sig := range field.PerFile {
		if roleCounts[sig.Directory] == nil {
			roleCounts[sig.Directory] = make(map[codelens.Role]int)
			communities[sig.Directory] = make(map[int]bool)
		}
		roleCounts[sig.Directory][sig.Role]++
		communities[sig.Directory][sig.Community] = true
	}

	for dirPath, dir := range field.PerDirectory {
		if dir.FileCount == 0 {
			continue
		}
		dir.AvgRisk /= float64(dir.FileCount)
		dir.AvgCognitiveLoad /= float64(dir.FileCount)
		dir.TestRatio /= float64(dir.FileCount)
		dir.DominantRole = dominantRole(roleCounts[dirPath])
		dir.CommunityCount = len(communities[dirPath])
		if dir.ChurnTotal > 0 {
			dir.HotspotShare = float64(dir.HighRiskFileCount) / float64(dir.FileCount)
		}
	}
}

func dominantRole(counts map[codelens.Role]int) codelens.Role {
	best, bestN := codelens.RoleUnknown, -1
	for r, n := range counts {
		if n > bestN {
			best, bestN = r, n
		}
	}
	return best
}

// assembleModules converts ArchitectureResult.Modules into PerModule,
// folding in fusion-derived extras (high-risk file counts, author overlap).
func assembleModules(field *codelens.SignalField, arch blackboard.ArchitectureResult) {
	highRiskByModule := make(map[string]int)
	for _, sig := range field.PerFile {
		if sig.RiskScore > 0.8 {
			highRiskByModule[sig.Module]++
		}
	}
	for modPath, summary := range arch.Modules {
		field.PerModule[modPath] = &codelens.ModuleSignals{
			ModuleSummary:     *summary,
			HighRiskFileCount: highRiskByModule[modPath],
		}
	}
}

// assembleGlobal computes the codebase-wide GlobalSignals, per spec.md
// §4.6.4. A handful of these (glue_deficit, codebase_health,
// architecture_health, wiring_score) have no single canonical formula in
// spec.md; each is grounded in a signal the corresponding analyzer already
// computes, and the formulas used are the assignments below.
func assembleGlobal(field *codelens.SignalField, structural blackboard.StructuralResult, temporal blackboard.TemporalResult, arch blackboard.ArchitectureResult) {
	g := &field.Global
	g.Modularity = structural.Modularity
	g.FiedlerValue = structural.FiedlerValue
	g.SpectralGap = structural.SpectralGap
	g.CycleCount = structural.CycleCount
	g.CentralityGini = structural.CentralityGini
	g.TeamSize = temporal.TeamSize
	g.MaxDepth = arch.MaxDepth
	g.HasLayering = arch.HasLayering

	total := len(field.PerFile)
	if total == 0 {
		return
	}

	orphans := 0
	riskSum := 0.0
	phantomImports := 0
	totalImports := 0
	for _, sig := range field.PerFile {
		if sig.IsOrphan {
			orphans++
		}
		riskSum += sig.RiskScore
		phantomImports += sig.PhantomImportCount
	}
	for _, gm := range structural.PerFile {
		totalImports += gm.InDegree + gm.OutDegree
	}
	totalImports += phantomImports

	g.OrphanRatio = float64(orphans) / float64(total)
	g.CodebaseHealth = clamp01(1 - riskSum/float64(total))
	g.GlueDeficit = clamp01(1 - structural.FiedlerValue)

	if totalImports > 0 {
		g.WiringScore = clamp01(1 - float64(phantomImports)/float64(totalImports))
	} else {
		g.WiringScore = 1.0
	}

	if len(arch.Modules) == 0 {
		g.ArchitectureHealth = 1.0
		return
	}
	distSum, alignSum := 0.0, 0.0
	for _, m := range arch.Modules {
		distSum += m.MainSeqDistance
		alignSum += m.BoundaryAlignment
	}
	n := float64(len(arch.Modules))
	g.ArchitectureHealth = clamp01(1 - distSum/n*0.5 - (1-alignSum/n)*0.5)
}
