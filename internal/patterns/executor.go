package patterns

import (
	"sort"

	"github.com/codelens/codelens/pkg/codelens"
)

// subsumes declares parent -> children: if parent fires on a target, its
// children are suppressed for that same target (spec.md §4.6.6).
var subsumes = map[string][]string{
	"god_file":      {"review_blindspot", "knowledge_silo"},
	"high_risk_hub": {"bug_attractor"},
}

// Execute runs every applicable pattern against field and returns ranked,
// deduplicated Findings. available names which blackboard slots were
// filled (syntax/structural/temporal/semantic/architecture); a pattern
// whose Requires references an unfilled slot is skipped entirely.
func Execute(field *codelens.SignalField, settings *codelens.Settings, available map[string]bool) []codelens.Finding {
	ctx := NewContext(field, settings)

	raw := make([]codelens.Finding, 0)
	for _, p := range Registry {
		if !slotsAvailable(p.Requires, available) {
			continue
		}
		if tierRank(field.Tier) < tierRank(p.TierMinimum) {
			continue
		}
		if p.UsesPercentile && field.Tier == codelens.TierAbsolute {
			continue
		}
		raw = append(raw, evaluate(ctx, p)...)
	}

	deduped := dedup(raw)
	sort.SliceStable(deduped, func(i, j int) bool {
		if deduped[i].Severity != deduped[j].Severity {
			return deduped[i].Severity > deduped[j].Severity
		}
		if deduped[i].PatternName != deduped[j].PatternName {
			return deduped[i].PatternName < deduped[j].PatternName
		}
		return firstPath(deduped[i]) < firstPath(deduped[j])
	})

	maxFindings := settings.MaxFindings
	if maxFindings > 0 && len(deduped) > maxFindings {
		deduped = deduped[:maxFindings]
	}
	return deduped
}

func firstPath(f codelens.Finding) string {
	if len(f.Files) == 0 {
		return ""
	}
	return f.Files[0]
}

func slotsAvailable(requires []string, available map[string]bool) bool {
	for _, r := range requires {
		if !available[r] {
			return false
		}
	}
	return true
}

func evaluate(ctx *Context, p Pattern) []codelens.Finding {
	switch p.Scope {
	case codelens.ScopeFile:
		return evaluateFile(ctx, p)
	case codelens.ScopeFilePair:
		return evaluateFilePair(ctx, p)
	case codelens.ScopeModule:
		return evaluateModule(ctx, p)
	case codelens.ScopeModulePair:
		return evaluateModulePair(ctx, p)
	case codelens.ScopeDirectory:
		return evaluateDirectory(ctx, p)
	case codelens.ScopeCodebase:
		return evaluateCodebase(ctx, p)
	default:
		return nil
	}
}

func evaluateFile(ctx *Context, p Pattern) []codelens.Finding {
	var out []codelens.Finding
	for _, path := range ctx.sortedFiles {
		if p.HotspotFiltered && !ctx.IsHotspot(path) {
			continue
		}
		target := []string{path}
		fires, conds := p.Predicate(ctx, target)
		if !fires {
			continue
		}
		out = append(out, buildFinding(ctx, p, target, conds))
	}
	return out
}

func evaluateFilePair(ctx *Context, p Pattern) []codelens.Finding {
	var out []codelens.Finding
	seen := make(map[[2]string]bool)
	for pair := range pairsForSource(ctx, p.PairSource) {
		if seen[pair] {
			continue
		}
		seen[pair] = true
		target := []string{pair[0], pair[1]}
		fires, conds := p.Predicate(ctx, target)
		if !fires {
			continue
		}
		out = append(out, buildFinding(ctx, p, target, conds))
	}
	sort.Slice(out, func(i, j int) bool { return firstPath(out[i]) < firstPath(out[j]) })
	return out
}

func pairsForSource(ctx *Context, source PairSource) map[[2]string]bool {
	result := make(map[[2]string]bool)
	switch source {
	case PairImport:
		for pair := range ctx.importEdges {
			result[pair] = true
		}
	case PairCochange:
		for pair := range ctx.cochangeByPair {
			result[pair] = true
		}
	case PairClone:
		for pair := range ctx.cloneByPair {
			result[pair] = true
		}
	}
	return result
}

func evaluateModule(ctx *Context, p Pattern) []codelens.Finding {
	var out []codelens.Finding
	for _, mod := range ctx.sortedModules {
		target := []string{mod}
		fires, conds := p.Predicate(ctx, target)
		if !fires {
			continue
		}
		out = append(out, buildFinding(ctx, p, target, conds))
	}
	return out
}

func evaluateModulePair(ctx *Context, p Pattern) []codelens.Finding {
	var out []codelens.Finding
	for i, a := range ctx.sortedModules {
		for _, b := range ctx.sortedModules[i+1:] {
			target := []string{a, b}
			fires, conds := p.Predicate(ctx, target)
			if fires {
				out = append(out, buildFinding(ctx, p, target, conds))
			}
			targetRev := []string{b, a}
			firesRev, condsRev := p.Predicate(ctx, targetRev)
			if firesRev {
				out = append(out, buildFinding(ctx, p, targetRev, condsRev))
			}
		}
	}
	return out
}

func evaluateDirectory(ctx *Context, p Pattern) []codelens.Finding {
	var out []codelens.Finding
	for _, dir := range ctx.sortedDirs {
		target := []string{dir}
		fires, conds := p.Predicate(ctx, target)
		if !fires {
			continue
		}
		out = append(out, buildFinding(ctx, p, target, conds))
	}
	return out
}

func evaluateCodebase(ctx *Context, p Pattern) []codelens.Finding {
	fires, conds := p.Predicate(ctx, nil)
	if !fires {
		return nil
	}
	return []codelens.Finding{buildFinding(ctx, p, nil, conds)}
}

func buildFinding(ctx *Context, p Pattern, target []string, conds []Condition) codelens.Finding {
	confidence := 0.0
	if len(conds) > 0 {
		sum := 0.0
		for _, c := range conds {
			sum += c.Margin()
		}
		confidence = sum / float64(len(conds))
	}
	severity := 0.0
	if p.Severity != nil {
		severity = p.Severity(ctx, target, conds)
	}
	var evidence []codelens.Evidence
	if p.Evidence != nil {
		evidence = p.Evidence(ctx, target, conds)
	}
	return codelens.Finding{
		PatternName: p.Name,
		Scope:       p.Scope,
		Files:       append([]string(nil), target...),
		Severity:    severity,
		Confidence:  confidence,
		Evidence:    evidence,
		Suggestion:  p.Remediation,
		Effort:      p.Effort,
	}
}

// dedup applies the subsumption table: when a parent pattern fires on a
// file, its declared children are dropped for that same file.
func dedup(findings []codelens.Finding) []codelens.Finding {
	parentHits := make(map[string]map[string]bool) // pattern -> file -> true
	for _, f := range findings {
		if f.Scope != codelens.ScopeFile || len(f.Files) == 0 {
			continue
		}
		if _, isParent := subsumes[f.PatternName]; !isParent {
			continue
		}
		if parentHits[f.PatternName] == nil {
			parentHits[f.PatternName] = make(map[string]bool)
		}
		parentHits[f.PatternName][f.Files[0]] = true
	}

	suppressed := make(map[string]map[string]bool) // child -> file -> true
	for parent, children := range subsumes {
		hits := parentHits[parent]
		for _, child := range children {
			for path := range hits {
				if suppressed[child] == nil {
					suppressed[child] = make(map[string]bool)
				}
				suppressed[child][path] = true
			}
		}
	}

	out := make([]codelens.Finding, 0, len(findings))
	for _, f := range findings {
		if len(f.Files) > 0 && suppressed[f.PatternName][f.Files[0]] {
			continue
		}
		out = append(out, f)
	}
	return out
}
