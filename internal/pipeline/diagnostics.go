package pipeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/codelens/codelens/pkg/codelens"
)

// qualityIssueThreshold constants mirror original_source's
// insights/diagnostics.py run_diagnostics checks, which flag analysis-quality
// problems (not code-quality findings) so a low-confidence scan says so
// instead of presenting ranked output with unexamined blind spots.
const (
	lowConceptCountMax = 1
	lowConceptPctWarn  = 0.5
	noisyFinderPct     = 0.3
	infoGainBins       = 5
)

// checkAnalysisQuality runs the diagnostics.py-style quality checks against
// the assembled signal field and final findings, appending human-readable
// issues to diag.Warnings and filling diag.SignalInformationGains. It never
// fails the scan -- these are informational/warning-level observations about
// the analysis itself, surfaced the way --verbose does in the original.
func checkAnalysisQuality(field *codelens.SignalField, findings []codelens.Finding, diag *Diagnostics) {
	checkConceptQuality(field, diag)
	checkFinderNoise(findings, diag)
	checkSignalInformationGain(field, diag)
}

func checkConceptQuality(field *codelens.SignalField, diag *Diagnostics) {
	if len(field.PerFile) == 0 {
		return
	}
	low := 0
	for _, fs := range field.PerFile {
		if fs.ConceptCount <= lowConceptCountMax {
			low++
		}
	}
	pct := float64(low) / float64(len(field.PerFile))
	if pct > lowConceptPctWarn {
		diag.Warnings = append(diag.Warnings, fmt.Sprintf(
			"concept extraction quality low: %d/%d files (%.0f%%) have <= %d concept(s); ACCIDENTAL_COUPLING findings may be unreliable",
			low, len(field.PerFile), pct*100, lowConceptCountMax))
	}
}

func checkFinderNoise(findings []codelens.Finding, diag *Diagnostics) {
	if len(findings) == 0 {
		return
	}
	counts := make(map[string]int, len(findings))
	for _, f := range findings {
		counts[f.PatternName]++
	}
	total := len(findings)
	types := make([]string, 0, len(counts))
	for ftype := range counts {
		types = append(types, ftype)
	}
	sort.Strings(types)
	for _, ftype := range types {
		pct := float64(counts[ftype]) / float64(total)
		if pct > noisyFinderPct {
			diag.Warnings = append(diag.Warnings, fmt.Sprintf(
				"finder %q is noisy: %d/%d findings (%.0f%%) dominate output; consider adjusting thresholds",
				ftype, counts[ftype], total, pct*100))
		}
	}
}

// checkSignalInformationGain estimates, for a handful of risk-composite
// inputs, whether the signal actually differentiates files in this codebase.
// A constant signal carries zero information and gets a warning; any other
// signal is scored, without a warning, by the entropy (in bits) of its
// values binned into 5 equal-width bins, a stand-in for original_source's
// IG(S) = H(risk) - H(risk|S).
func checkSignalInformationGain(field *codelens.SignalField, diag *Diagnostics) {
	if len(field.PerFile) == 0 {
		return
	}
	diag.SignalInformationGains = make(map[string]float64, 4)

	extract := func(name string) []float64 {
		values := make([]float64, 0, len(field.PerFile))
		for _, fs := range field.PerFile {
			switch name {
			case "bus_factor":
				values = append(values, fs.BusFactor)
			case "cognitive_load":
				values = append(values, fs.CognitiveLoad)
			case "pagerank":
				values = append(values, fs.PageRank)
			case "churn_cv":
				values = append(values, fs.CV)
			}
		}
		return values
	}

	for _, name := range []string{"bus_factor", "cognitive_load", "pagerank", "churn_cv"} {
		values := extract(name)
		if len(values) == 0 {
			continue
		}
		unique := make(map[float64]bool, len(values))
		for _, v := range values {
			unique[math.Round(v*1e4)/1e4] = true
		}
		if len(unique) <= 1 {
			diag.SignalInformationGains[name] = 0.0
			diag.Warnings = append(diag.Warnings, fmt.Sprintf(
				"signal %q carries zero information (constant = %.2f); it will not differentiate files", name, values[0]))
			continue
		}
		diag.SignalInformationGains[name] = estimateInformationGain(values)
	}
}

func estimateInformationGain(values []float64) float64 {
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return 0
	}
	width := (max - min) / float64(infoGainBins)
	bins := make([]int, infoGainBins)
	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= infoGainBins {
			idx = infoGainBins - 1
		}
		bins[idx]++
	}
	n := float64(len(values))
	var entropy float64
	for _, count := range bins {
		if count == 0 {
			continue
		}
		p := float64(count) / n
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// SortedInformationGainKeys returns diag.SignalInformationGains keys in a
// stable order, for deterministic rendering/JSON output.
func SortedInformationGainKeys(gains map[string]float64) []string {
	keys := make([]string, 0, len(gains))
	for k := range gains {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
