package patterns

import (
	"fmt"

	"github.com/codelens/codelens/pkg/codelens"
)

// fileEvidence builds an EvidenceFn reporting the named per-file signals
// (raw value, and percentile when available) for a FILE-scoped pattern.
func fileEvidence(signals ...string) EvidenceFn {
	return func(ctx *Context, target []string, conds []Condition) []codelens.Evidence {
		sig := ctx.Field.PerFile[target[0]]
		out := make([]codelens.Evidence, 0, len(signals))
		for _, name := range signals {
			v, desc := fileSignalValue(sig, name)
			pctl, _ := sig.Percentile(name)
			out = append(out, codelens.Evidence{
				SignalName:  name,
				Value:       v,
				Percentile:  pctl,
				Description: desc,
			})
		}
		return out
	}
}

func fileSignalValue(sig *codelens.FileSignals, name string) (float64, string) {
	switch name {
	case "pagerank":
		return sig.PageRank, fmt.Sprintf("pagerank %.4f", sig.PageRank)
	case "blast_radius":
		return float64(sig.BlastRadiusSize), fmt.Sprintf("%d transitive dependents", sig.BlastRadiusSize)
	case "cognitive_load":
		return sig.CognitiveLoad, fmt.Sprintf("cognitive load %.2f", sig.CognitiveLoad)
	case "coherence":
		return sig.Coherence, fmt.Sprintf("coherence %.2f", sig.Coherence)
	case "lines":
		return float64(sig.Lines), fmt.Sprintf("%d lines", sig.Lines)
	case "stub_ratio":
		return sig.StubRatio, fmt.Sprintf("stub ratio %.2f", sig.StubRatio)
	case "impl_gini":
		return sig.ImplGini, fmt.Sprintf("implementation-size gini %.2f", sig.ImplGini)
	case "phantom_import_count":
		return float64(sig.PhantomImportCount), fmt.Sprintf("%d unresolved imports", sig.PhantomImportCount)
	case "naming_drift":
		return sig.NamingDrift, fmt.Sprintf("naming drift %.2f", sig.NamingDrift)
	case "total_changes":
		return float64(sig.TotalChanges), fmt.Sprintf("%d changes", sig.TotalChanges)
	case "fix_ratio":
		return sig.FixRatio, fmt.Sprintf("fix ratio %.2f", sig.FixRatio)
	case "cv":
		return sig.CV, fmt.Sprintf("churn coefficient of variation %.2f", sig.CV)
	case "bus_factor":
		return sig.BusFactor, fmt.Sprintf("bus factor %.2f", sig.BusFactor)
	case "blast_radius_size":
		return float64(sig.BlastRadiusSize), fmt.Sprintf("%d transitive dependents", sig.BlastRadiusSize)
	case "delta_h":
		return sig.DeltaH, fmt.Sprintf("delta_h %.2f", sig.DeltaH)
	default:
		return 0, name
	}
}

// pairEvidence builds an EvidenceFn for FILE_PAIR patterns, reading from
// the precomputed co-change/clone relation indices.
func pairEvidence(signals ...string) EvidenceFn {
	return func(ctx *Context, target []string, conds []Condition) []codelens.Evidence {
		out := make([]codelens.Evidence, 0, len(signals))
		for _, name := range signals {
			v, desc := pairSignalValue(ctx, target[0], target[1], name)
			out = append(out, codelens.Evidence{SignalName: name, Value: v, Description: desc})
		}
		return out
	}
}

func pairSignalValue(ctx *Context, a, b, name string) (float64, string) {
	switch name {
	case "lift":
		if cc, ok := ctx.cochange(a, b); ok {
			return cc.Lift, fmt.Sprintf("co-change lift %.2f", cc.Lift)
		}
	case "cochange_count":
		if cc, ok := ctx.cochange(a, b); ok {
			return float64(cc.CochangeCount), fmt.Sprintf("%d joint commits", cc.CochangeCount)
		}
		return 0, "0 joint commits"
	case "ncd":
		if cp, ok := ctx.cloneByPair[sortedPair(a, b)]; ok {
			return cp.NCD, fmt.Sprintf("NCD %.2f", cp.NCD)
		}
	case "jaccard":
		sigA, sigB := ctx.Field.PerFile[a], ctx.Field.PerFile[b]
		j := jaccardStrings(sigA.ConceptTopics, sigB.ConceptTopics)
		return j, fmt.Sprintf("concept Jaccard %.2f", j)
	}
	return 0, name
}

func moduleEvidence(signals ...string) EvidenceFn {
	return func(ctx *Context, target []string, conds []Condition) []codelens.Evidence {
		mod := ctx.Field.PerModule[target[0]]
		out := make([]codelens.Evidence, 0, len(signals))
		for _, name := range signals {
			switch name {
			case "abstractness":
				out = append(out, codelens.Evidence{SignalName: name, Value: mod.Abstractness, Description: fmt.Sprintf("abstractness %.2f", mod.Abstractness)})
			case "instability":
				v := 0.0
				if mod.Instability != nil {
					v = *mod.Instability
				}
				out = append(out, codelens.Evidence{SignalName: name, Value: v, Description: fmt.Sprintf("instability %.2f", v)})
			case "boundary_alignment":
				out = append(out, codelens.Evidence{SignalName: name, Value: mod.BoundaryAlignment, Description: fmt.Sprintf("boundary alignment %.2f", mod.BoundaryAlignment)})
			}
		}
		return out
	}
}

func modulePairEvidence() EvidenceFn {
	return func(ctx *Context, target []string, conds []Condition) []codelens.Evidence {
		out := make([]codelens.Evidence, 0, len(conds))
		for _, c := range conds {
			out = append(out, codelens.Evidence{
				SignalName:  c.SignalName,
				Value:       c.Value,
				Description: fmt.Sprintf("%s = %.2f", c.SignalName, c.Value),
			})
		}
		return out
	}
}

func codebaseEvidence(signals ...string) EvidenceFn {
	return func(ctx *Context, target []string, conds []Condition) []codelens.Evidence {
		g := ctx.Field.Global
		out := make([]codelens.Evidence, 0, len(signals))
		for _, name := range signals {
			switch name {
			case "glue_deficit":
				out = append(out, codelens.Evidence{SignalName: name, Value: g.GlueDeficit, Description: fmt.Sprintf("glue deficit %.2f", g.GlueDeficit)})
			}
		}
		return out
	}
}

func directoryEvidence() EvidenceFn {
	return func(ctx *Context, target []string, conds []Condition) []codelens.Evidence {
		dir := ctx.Field.PerDirectory[target[0]]
		return []codelens.Evidence{
			{SignalName: "high_risk_files", Value: float64(dir.HighRiskFileCount), Description: fmt.Sprintf("%d high-risk files", dir.HighRiskFileCount)},
			{SignalName: "hotspot_share", Value: dir.HotspotShare, Description: fmt.Sprintf("hotspot share %.2f", dir.HotspotShare)},
		}
	}
}
