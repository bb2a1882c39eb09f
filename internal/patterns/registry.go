package patterns

import (
	"math"

	"github.com/codelens/codelens/pkg/codelens"
)

// Registry is the full built-in pattern table (spec.md §4.6.5). Condition,
// severity constant, and tier minimum are reproduced faithfully per file
// pattern row; changing one without the others would alter the
// false-positive rate the whole table was tuned against.
var Registry = []Pattern{
	{
		Name:            "high_risk_hub",
		Scope:           codelens.ScopeFile,
		Requires:        []string{"structural", "semantic"},
		HotspotFiltered: true,
		TierMinimum:     codelens.TierBayesian,
		UsesPercentile:  true,
		Predicate:       predHighRiskHub,
		Severity:        ConstSeverity(0.90),
		Evidence:        fileEvidence("pagerank", "blast_radius", "cognitive_load"),
		Description:     "File combines extreme centrality, blast radius, and cognitive load",
		Remediation:     "Split responsibilities and reduce fan-in before extending this file",
		Effort:          codelens.EffortHigh,
	},
	{
		Name:           "god_file",
		Scope:          codelens.ScopeFile,
		Requires:       []string{"semantic"},
		TierMinimum:    codelens.TierBayesian,
		UsesPercentile: true,
		Predicate:      predGodFile,
		Severity:       ConstSeverity(0.80),
		Evidence:       fileEvidence("cognitive_load", "coherence"),
		Description:    "File mixes many unrelated concepts at high cognitive load",
		Remediation:    "Decompose into smaller, topically-coherent files",
		Effort:         codelens.EffortHigh,
	},
	{
		Name:        "orphan_code",
		Scope:       codelens.ScopeFile,
		Requires:    []string{"structural"},
		TierMinimum: codelens.TierAbsolute,
		Predicate:   predOrphanCode,
		Severity:    ConstSeverity(0.55),
		Evidence:    fileEvidence("lines"),
		Description: "File is unreachable from any entry point and is not a test",
		Remediation: "Confirm this file is still needed; remove or wire it in",
		Effort:      codelens.EffortLow,
	},
	{
		Name:        "hollow_code",
		Scope:       codelens.ScopeFile,
		Requires:    []string{"syntax"},
		TierMinimum: codelens.TierAbsolute,
		Predicate:   predHollowCode,
		Severity:    ConstSeverity(0.71),
		Evidence:    fileEvidence("stub_ratio", "impl_gini"),
		Description: "File is mostly stub functions with lopsided implementation depth",
		Remediation: "Finish or remove stub functions before relying on this file",
		Effort:      codelens.EffortMedium,
	},
	{
		Name:        "phantom_imports",
		Scope:       codelens.ScopeFile,
		Requires:    []string{"structural"},
		TierMinimum: codelens.TierAbsolute,
		Predicate:   predPhantomImports,
		Severity:    severityPhantomImports,
		Evidence:    fileEvidence("phantom_import_count"),
		Description: "File imports targets that do not resolve within the codebase",
		Remediation: "Fix broken import paths or remove dead imports",
		Effort:      codelens.EffortLow,
	},
	{
		Name:        "naming_drift",
		Scope:       codelens.ScopeFile,
		Requires:    []string{"semantic"},
		TierMinimum: codelens.TierAbsolute,
		Predicate:   predNamingDrift,
		Severity:    ConstSeverity(0.45),
		Evidence:    fileEvidence("naming_drift"),
		Description: "File's name does not reflect the concepts implemented inside it",
		Remediation: "Rename the file or refactor its contents to match its name",
		Effort:      codelens.EffortLow,
	},
	{
		Name:            "unstable_file",
		Scope:           codelens.ScopeFile,
		Requires:        []string{"temporal"},
		HotspotFiltered: true,
		TierMinimum:     codelens.TierBayesian,
		Predicate:       predUnstableFile,
		Severity:        ConstSeverity(0.70),
		Evidence:        fileEvidence("total_changes"),
		Description:     "File's churn trajectory is spiking or churning above the hotspot median",
		Remediation:     "Investigate what is driving repeated change and stabilize the interface",
		Effort:          codelens.EffortMedium,
	},
	{
		Name:            "bug_attractor",
		Scope:           codelens.ScopeFile,
		Requires:        []string{"temporal", "structural"},
		HotspotFiltered: true,
		TierMinimum:     codelens.TierBayesian,
		UsesPercentile:  true,
		Predicate:       predBugAttractor,
		Severity:        ConstSeverity(0.70),
		Evidence:        fileEvidence("fix_ratio", "pagerank"),
		Description:     "Central file with a high share of fix commits",
		Remediation:     "Add regression tests and review recent fixes for a root cause",
		Effort:          codelens.EffortMedium,
	},
	{
		Name:            "bug_magnet",
		Scope:           codelens.ScopeFile,
		Requires:        []string{"temporal"},
		HotspotFiltered: true,
		TierMinimum:     codelens.TierBayesian,
		Predicate:       predBugMagnet,
		Severity:        ConstSeverity(0.80),
		Evidence:        fileEvidence("fix_ratio", "total_changes"),
		Description:     "File accumulates a disproportionate share of fix commits",
		Remediation:     "Root-cause the recurring defects before adding new behavior",
		Effort:          codelens.EffortMedium,
	},
	{
		Name:            "thrashing_code",
		Scope:           codelens.ScopeFile,
		Requires:        []string{"temporal"},
		HotspotFiltered: true,
		TierMinimum:     codelens.TierBayesian,
		Predicate:       predThrashingCode,
		Severity:        ConstSeverity(0.75),
		Evidence:        fileEvidence("cv"),
		Description:     "File's change volume swings erratically commit to commit",
		Remediation:     "Stabilize the file's responsibilities before further changes",
		Effort:          codelens.EffortMedium,
	},
	{
		Name:            "knowledge_silo",
		Scope:           codelens.ScopeFile,
		Requires:        []string{"temporal", "structural"},
		HotspotFiltered: true,
		TierMinimum:     codelens.TierBayesian,
		UsesPercentile:  true,
		Predicate:       predKnowledgeSilo,
		Severity:        ConstSeverity(0.70),
		Evidence:        fileEvidence("bus_factor", "pagerank"),
		Description:     "Central file understood by effectively one author",
		Remediation:     "Pair or document to spread ownership of this file",
		Effort:          codelens.EffortMedium,
	},
	{
		Name:            "truck_factor",
		Scope:           codelens.ScopeFile,
		Requires:        []string{"temporal", "structural"},
		HotspotFiltered: true,
		TierMinimum:     codelens.TierBayesian,
		UsesPercentile:  true,
		Predicate:       predTruckFactor,
		Severity:        ConstSeverity(0.85),
		Evidence:        fileEvidence("bus_factor", "blast_radius"),
		Description:     "High-impact file with a single-author bus factor",
		Remediation:     "Cross-train a second owner on this file immediately",
		Effort:          codelens.EffortMedium,
	},
	{
		Name:            "review_blindspot",
		Scope:           codelens.ScopeFile,
		Requires:        []string{"temporal", "structural"},
		HotspotFiltered: true,
		TierMinimum:     codelens.TierBayesian,
		UsesPercentile:  true,
		Predicate:       predReviewBlindspot,
		Severity:        ConstSeverity(0.80),
		Evidence:        fileEvidence("bus_factor", "pagerank"),
		Description:     "Central, single-author file with no accompanying test file",
		Remediation:     "Add tests and a second reviewer before this file changes again",
		Effort:          codelens.EffortMedium,
	},
	{
		Name:            "weak_link",
		Scope:           codelens.ScopeFile,
		Requires:        []string{"structural", "temporal", "semantic"},
		HotspotFiltered: true,
		TierMinimum:     codelens.TierBayesian,
		Predicate:       predWeakLink,
		Severity:        ConstSeverity(0.75),
		Evidence:        fileEvidence("delta_h"),
		Description:     "File is riskier than its neighbors in the import graph",
		Remediation:     "Investigate why this file diverges from its neighborhood's risk profile",
		Effort:          codelens.EffortMedium,
	},
	{
		Name:        "hidden_coupling",
		Scope:       codelens.ScopeFilePair,
		Requires:    []string{"temporal", "structural"},
		TierMinimum: codelens.TierAbsolute,
		PairSource:  PairCochange,
		Predicate:   predHiddenCoupling,
		Severity:    ConstSeverity(0.90),
		Evidence:    pairEvidence("lift"),
		Description: "Files change together far more than chance without a structural edge",
		Remediation: "Introduce an explicit dependency or shared interface, or investigate the hidden cause",
		Effort:      codelens.EffortMedium,
	},
	{
		Name:        "dead_dependency",
		Scope:       codelens.ScopeFilePair,
		Requires:    []string{"structural", "temporal"},
		TierMinimum: codelens.TierAbsolute,
		PairSource:  PairImport,
		Predicate:   predDeadDependency,
		Severity:    ConstSeverity(0.40),
		Evidence:    pairEvidence("cochange_count"),
		Description: "Import edge exists but the two files never change together",
		Remediation: "Confirm the dependency is still exercised; consider removing it",
		Effort:      codelens.EffortLow,
	},
	{
		Name:        "copy_paste_clone",
		Scope:       codelens.ScopeFilePair,
		Requires:    []string{},
		TierMinimum: codelens.TierAbsolute,
		PairSource:  PairClone,
		Predicate:   predCopyPasteClone,
		Severity:    severityClone,
		Evidence:    pairEvidence("ncd"),
		Description: "Near-duplicate files detected by normalized compression distance",
		Remediation: "Extract the shared logic into one location",
		Effort:      codelens.EffortMedium,
	},
	{
		Name:           "accidental_coupling",
		Scope:          codelens.ScopeFilePair,
		Requires:       []string{"structural", "semantic"},
		TierMinimum:    codelens.TierBayesian,
		PairSource:     PairImport,
		Predicate:      predAccidentalCoupling,
		Severity:       ConstSeverity(0.50),
		Evidence:       pairEvidence("jaccard"),
		Description:    "Structurally-linked files share almost no vocabulary",
		Remediation:    "Clarify why these files depend on each other, or break the dependency",
		Effort:         codelens.EffortLow,
	},
	{
		Name:        "duplicate_incomplete",
		Scope:       codelens.ScopeFilePair,
		Requires:    []string{"syntax"},
		TierMinimum: codelens.TierAbsolute,
		PairSource:  PairClone,
		Predicate:   predDuplicateIncomplete,
		Severity:    ConstSeverity(0.75),
		Evidence:    pairEvidence("ncd"),
		Description: "Near-duplicate files are both unfinished",
		Remediation: "Finish one copy and delete the other rather than completing both",
		Effort:      codelens.EffortMedium,
	},
	{
		Name:        "zone_of_pain",
		Scope:       codelens.ScopeModule,
		Requires:    []string{"architecture"},
		TierMinimum: codelens.TierBayesian,
		Predicate:   predZoneOfPain,
		Severity:    ConstSeverity(0.60),
		Evidence:    moduleEvidence("abstractness", "instability"),
		Description: "Module is concrete and depended-upon but resists change",
		Remediation: "Introduce interfaces to raise abstractness or reduce afferent coupling",
		Effort:      codelens.EffortHigh,
	},
	{
		Name:        "boundary_mismatch",
		Scope:       codelens.ScopeModule,
		Requires:    []string{"architecture", "structural"},
		TierMinimum: codelens.TierBayesian,
		Predicate:   predBoundaryMismatch,
		Severity:    ConstSeverity(0.60),
		Evidence:    moduleEvidence("boundary_alignment"),
		Description: "Module's directory boundary does not match its community structure",
		Remediation: "Reorganize files along the detected community boundaries",
		Effort:      codelens.EffortHigh,
	},
	{
		Name:        "layer_violation",
		Scope:       codelens.ScopeModulePair,
		Requires:    []string{"architecture"},
		TierMinimum: codelens.TierBayesian,
		Predicate:   predLayerViolation,
		Severity:    ConstSeverity(0.52),
		Evidence:    modulePairEvidence(),
		Description: "Dependency crosses the architectural layering backward or skips a layer",
		Remediation: "Route the dependency through the intermediate layer or invert it",
		Effort:      codelens.EffortMedium,
	},
	{
		Name:        "conway_violation",
		Scope:       codelens.ScopeModulePair,
		Requires:    []string{"architecture", "temporal"},
		TierMinimum: codelens.TierBayesian,
		Predicate:   predConwayViolation,
		Severity:    ConstSeverity(0.55),
		Evidence:    modulePairEvidence(),
		Description: "Tightly coupled modules appear to be maintained by disjoint teams",
		Remediation: "Align team ownership with module coupling, or reduce the coupling",
		Effort:      codelens.EffortHigh,
	},
	{
		Name:        "flat_architecture",
		Scope:       codelens.ScopeCodebase,
		Requires:    []string{"architecture", "structural"},
		TierMinimum: codelens.TierAbsolute,
		Predicate:   predFlatArchitecture,
		Severity:    ConstSeverity(0.60),
		Evidence:    codebaseEvidence("glue_deficit"),
		Description: "Codebase has no meaningful layering and weak structural glue",
		Remediation: "Introduce explicit module boundaries and layering",
		Effort:      codelens.EffortHigh,
	},
	{
		Name:        "directory_hotspot",
		Scope:       codelens.ScopeDirectory,
		Requires:    []string{"structural", "temporal"},
		TierMinimum: codelens.TierBayesian,
		Predicate:   predDirectoryHotspot,
		Severity:    ConstSeverity(0.80),
		Evidence:    directoryEvidence(),
		Description: "Directory concentrates a disproportionate share of high-risk files",
		Remediation: "Prioritize this directory for refactoring work",
		Effort:      codelens.EffortMedium,
	},
}

// --- FILE predicates ---

func predHighRiskHub(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	pr, _ := sig.Percentile("pagerank")
	br, _ := sig.Percentile("blast_radius")
	cl, _ := sig.Percentile("cognitive_load")
	conds := []Condition{
		{"pctl_pagerank", pr, 0.90, HighIsBad},
		{"pctl_blast_radius", br, 0.90, HighIsBad},
		{"pctl_cognitive_load", cl, 0.85, HighIsBad},
	}
	return pr >= 0.90 && br >= 0.90 && cl >= 0.85, conds
}

func predGodFile(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	cl, _ := sig.Percentile("cognitive_load")
	coh, _ := sig.Percentile("coherence")
	conds := []Condition{
		{"pctl_cognitive_load", cl, 0.90, HighIsBad},
		{"pctl_coherence", coh, 0.20, HighIsGood},
	}
	return cl >= 0.90 && coh <= 0.20 && sig.Functions >= 3, conds
}

func predOrphanCode(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	fires := sig.IsOrphan && !sig.IsEntry && !sig.IsTest
	return fires, []Condition{{"is_orphan", boolValue(fires), 1, HighIsBad}}
}

func predHollowCode(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	conds := []Condition{
		{"stub_ratio", sig.StubRatio, 0.6, HighIsBad},
		{"impl_gini", sig.ImplGini, 0.6, HighIsBad},
	}
	return sig.StubRatio > 0.6 && sig.ImplGini > 0.6 && sig.Functions >= 3, conds
}

func predPhantomImports(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	conds := []Condition{{"phantom_import_count", float64(sig.PhantomImportCount), 0, HighIsBad}}
	return sig.PhantomImportCount > 0, conds
}

func severityPhantomImports(ctx *Context, target []string, conds []Condition) float64 {
	sig := ctx.Field.PerFile[target[0]]
	s := 0.65 + 0.03*float64(sig.PhantomImportCount-1)
	if s > 0.80 {
		return 0.80
	}
	if s < 0.65 {
		return 0.65
	}
	return s
}

func predNamingDrift(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	conds := []Condition{{"naming_drift", sig.NamingDrift, 0.7, HighIsBad}}
	return sig.NamingDrift > 0.7, conds
}

func predUnstableFile(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	unstable := sig.Trajectory == codelens.TrajectoryChurning || sig.Trajectory == codelens.TrajectorySpiking
	fires := unstable && float64(sig.TotalChanges) > ctx.HotspotMedian
	conds := []Condition{{"total_changes", float64(sig.TotalChanges), ctx.HotspotMedian, HighIsBad}}
	return fires, conds
}

func predBugAttractor(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	pr, _ := sig.Percentile("pagerank")
	conds := []Condition{
		{"fix_ratio", sig.FixRatio, 0.4, HighIsBad},
		{"pctl_pagerank", pr, 0.80, HighIsBad},
	}
	return sig.FixRatio > 0.4 && pr > 0.80, conds
}

func predBugMagnet(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	conds := []Condition{
		{"fix_ratio", sig.FixRatio, 0.4, HighIsBad},
		{"total_changes", float64(sig.TotalChanges), 5, HighIsBad},
	}
	return sig.FixRatio > 0.4 && sig.TotalChanges >= 5, conds
}

const thrashingSizeFloor = 30 // lines: ignore trivially small files, matching hotspot gating intent

func predThrashingCode(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	conds := []Condition{{"cv", sig.CV, 1.5, HighIsBad}}
	fires := (sig.Trajectory == codelens.TrajectorySpiking || sig.CV > 1.5) && sig.Lines >= thrashingSizeFloor
	return fires, conds
}

func predKnowledgeSilo(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	pr, _ := sig.Percentile("pagerank")
	conds := []Condition{
		{"bus_factor", sig.BusFactor, 1.5, HighIsGood},
		{"pctl_pagerank", pr, 0.75, HighIsBad},
	}
	return sig.BusFactor <= 1.5 && pr > 0.75 && ctx.Field.Global.TeamSize > 1, conds
}

func predTruckFactor(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	pr, _ := sig.Percentile("pagerank")
	conds := []Condition{
		{"bus_factor", sig.BusFactor, 1.0, HighIsGood},
		{"pctl_pagerank", pr, 0.70, HighIsBad},
	}
	fires := sig.BusFactor == 1 && (pr >= 0.70 || sig.BlastRadiusSize >= 3) && sig.Lines >= 50
	return fires, conds
}

func predReviewBlindspot(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	pr, _ := sig.Percentile("pagerank")
	conds := []Condition{
		{"bus_factor", sig.BusFactor, 1.5, HighIsGood},
		{"pctl_pagerank", pr, 0.75, HighIsBad},
	}
	return sig.BusFactor <= 1.5 && pr > 0.75 && !ctx.hasSiblingTest(target[0]), conds
}

func predWeakLink(ctx *Context, target []string) (bool, []Condition) {
	sig := ctx.Field.PerFile[target[0]]
	conds := []Condition{{"delta_h", sig.DeltaH, 0.4, HighIsBad}}
	return sig.DeltaH > 0.4 && !sig.IsOrphan, conds
}

// --- FILE_PAIR predicates ---

func predHiddenCoupling(ctx *Context, target []string) (bool, []Condition) {
	cc, ok := ctx.cochange(target[0], target[1])
	if !ok {
		return false, nil
	}
	maxConf := math.Max(cc.ConfidenceAToB, cc.ConfidenceBToA)
	conds := []Condition{
		{"lift", cc.Lift, 2.0, HighIsBad},
		{"confidence", maxConf, 0.5, HighIsBad},
	}
	fires := cc.Lift >= 2.0 && maxConf >= 0.5 && !ctx.hasImportEdge(target[0], target[1])
	return fires, conds
}

func predDeadDependency(ctx *Context, target []string) (bool, []Condition) {
	if !ctx.hasImportEdge(target[0], target[1]) {
		return false, nil
	}
	sigA, sigB := ctx.Field.PerFile[target[0]], ctx.Field.PerFile[target[1]]
	cc, hasCochange := ctx.cochange(target[0], target[1])
	cochangeCount := 0
	if hasCochange {
		cochangeCount = cc.CochangeCount
	}
	totalHistory := sigA.TotalChanges + sigB.TotalChanges
	conds := []Condition{{"cochange_count", float64(cochangeCount), 0, HighIsGood}}
	fires := cochangeCount == 0 && sigA.TotalChanges >= 1 && sigB.TotalChanges >= 1 && totalHistory >= 50
	return fires, conds
}

func predCopyPasteClone(ctx *Context, target []string) (bool, []Condition) {
	cp, ok := ctx.cloneByPair[sortedPair(target[0], target[1])]
	if !ok {
		return false, nil
	}
	conds := []Condition{{"ncd", cp.NCD, 0.3, HighIsGood}}
	return cp.NCD < 0.3, conds
}

func severityClone(ctx *Context, target []string, conds []Condition) float64 {
	cp, ok := ctx.cloneByPair[sortedPair(target[0], target[1])]
	if !ok {
		return 0.50
	}
	s := 0.50 + (0.3-cp.NCD)/0.3*0.3
	return clampSeverity(s)
}

func predAccidentalCoupling(ctx *Context, target []string) (bool, []Condition) {
	if !ctx.hasImportEdge(target[0], target[1]) {
		return false, nil
	}
	sigA, sigB := ctx.Field.PerFile[target[0]], ctx.Field.PerFile[target[1]]
	j := jaccardStrings(sigA.ConceptTopics, sigB.ConceptTopics)
	conds := []Condition{{"jaccard", j, 0.2, HighIsGood}}
	return j < 0.2, conds
}

func predDuplicateIncomplete(ctx *Context, target []string) (bool, []Condition) {
	cp, ok := ctx.cloneByPair[sortedPair(target[0], target[1])]
	if !ok {
		return false, nil
	}
	sigA, sigB := ctx.Field.PerFile[target[0]], ctx.Field.PerFile[target[1]]
	incompleteA := sigA.StubRatio > 0.6 || sigA.PhantomImportCount > 0
	incompleteB := sigB.StubRatio > 0.6 || sigB.PhantomImportCount > 0
	conds := []Condition{{"ncd", cp.NCD, 0.3, HighIsGood}}
	return incompleteA && incompleteB, conds
}

// --- MODULE predicates ---

func predZoneOfPain(ctx *Context, target []string) (bool, []Condition) {
	mod := ctx.Field.PerModule[target[0]]
	if mod.Instability == nil {
		return false, nil
	}
	conds := []Condition{
		{"abstractness", mod.Abstractness, 0.3, HighIsGood},
		{"instability", *mod.Instability, 0.3, HighIsGood},
	}
	return mod.Abstractness < 0.3 && *mod.Instability < 0.3, conds
}

func predBoundaryMismatch(ctx *Context, target []string) (bool, []Condition) {
	mod := ctx.Field.PerModule[target[0]]
	conds := []Condition{{"boundary_alignment", mod.BoundaryAlignment, 0.7, HighIsGood}}
	return mod.BoundaryAlignment < 0.7 && mod.FileCount > 2, conds
}

// --- MODULE_PAIR predicates ---

func predLayerViolation(ctx *Context, target []string) (bool, []Condition) {
	for _, v := range ctx.Field.Violations {
		if v.SourceModule == target[0] && v.TargetModule == target[1] {
			return true, []Condition{{"edge_count", float64(v.EdgeCount), 0, HighIsBad}}
		}
	}
	return false, nil
}

func predConwayViolation(ctx *Context, target []string) (bool, []Condition) {
	modA, modB := ctx.Field.PerModule[target[0]], ctx.Field.PerModule[target[1]]
	dist := authorDistance(ctx, target[0], target[1])
	coupling := math.Max(modA.Coupling, modB.Coupling)
	conds := []Condition{
		{"author_distance", dist, 0.8, HighIsBad},
		{"coupling", coupling, 0.3, HighIsBad},
	}
	return dist > 0.8 && coupling > 0.3, conds
}

// authorDistance approximates cross-module authorship divergence from the
// per-file author entropy the Temporal Analyzer already computes -- the
// pipeline does not carry raw per-file author sets downstream, so this
// substitutes entropy-profile divergence for a true Jaccard-over-authors
// distance (documented as an approximation).
func authorDistance(ctx *Context, modA, modB string) float64 {
	avgA := avgAuthorEntropy(ctx, modA)
	avgB := avgAuthorEntropy(ctx, modB)
	diff := math.Abs(avgA - avgB)
	return clamp01Local(diff)
}

func avgAuthorEntropy(ctx *Context, mod string) float64 {
	sum, n := 0.0, 0
	for _, sig := range ctx.Field.PerFile {
		if sig.Module == mod {
			sum += sig.AuthorEntropy
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// --- CODEBASE predicate ---

func predFlatArchitecture(ctx *Context, target []string) (bool, []Condition) {
	g := ctx.Field.Global
	conds := []Condition{
		{"max_depth", float64(g.MaxDepth), 1, HighIsGood},
		{"glue_deficit", g.GlueDeficit, 0.5, HighIsBad},
	}
	return g.MaxDepth <= 1 && g.GlueDeficit > 0.5, conds
}

// --- DIRECTORY predicate ---

func predDirectoryHotspot(ctx *Context, target []string) (bool, []Condition) {
	dir := ctx.Field.PerDirectory[target[0]]
	conds := []Condition{
		{"high_risk_files", float64(dir.HighRiskFileCount), 2, HighIsBad},
		{"hotspot_share", dir.HotspotShare, 0.5, HighIsBad},
	}
	fires := dir.FileCount >= 3 && (dir.HighRiskFileCount >= 2 || dir.HotspotShare > 0.5)
	return fires, conds
}

// --- shared helpers ---

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func clampSeverity(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp01Local(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func jaccardStrings(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	setA := make(map[string]bool, len(a))
	for _, s := range a {
		setA[s] = true
	}
	setB := make(map[string]bool, len(b))
	for _, s := range b {
		setB[s] = true
	}
	inter := 0
	union := make(map[string]bool, len(setA)+len(setB))
	for s := range setA {
		union[s] = true
		if setB[s] {
			inter++
		}
	}
	for s := range setB {
		union[s] = true
	}
	if len(union) == 0 {
		return 1
	}
	return float64(inter) / float64(len(union))
}

// (*Context).hasSiblingTest reports whether any file sharing target's
// directory looks like a test file.
func (c *Context) hasSiblingTest(path string) bool {
	sig, ok := c.Field.PerFile[path]
	if !ok {
		return false
	}
	for _, other := range c.Field.PerFile {
		if other.Directory == sig.Directory && other.IsTest {
			return true
		}
	}
	return false
}
