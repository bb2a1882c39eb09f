// Package render prints a pipeline Result to a terminal, JSON, or shields.io
// badge, following the discovery-summary-then-sections layout the teacher's
// internal/output package uses, with color-coded thresholds replacing score
// coloring with severity coloring.
package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/codelens/codelens/internal/pipeline"
	"github.com/codelens/codelens/pkg/codelens"
)

// Severity color thresholds (Finding.Severity is in [0,1]).
const (
	severityRedMin    = 0.7
	severityYellowMin = 0.4
)

// RenderSummary prints the discovery/diagnostics header: file counts,
// analyzer availability, and codebase-wide health signals.
func RenderSummary(w io.Writer, result *pipeline.Result) {
	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	bold.Fprintln(w, "Code Quality Scan")
	fmt.Fprintln(w, "────────────────────────────────────────")

	d := result.Diagnostics
	fmt.Fprintf(w, "Files discovered: %d\n", d.FilesDiscovered)
	green.Fprintf(w, "  Parsed:              %d\n", d.FilesParsed)
	if d.FilesDropped > 0 {
		yellow.Fprintf(w, "  Dropped:             %d\n", d.FilesDropped)
	}
	if d.FallbackRateWarning {
		yellow.Fprintf(w, "  Regex fallbacks:     %d (high fallback rate)\n", d.RegexFallbacks)
	} else if d.RegexFallbacks > 0 {
		fmt.Fprintf(w, "  Regex fallbacks:     %d\n", d.RegexFallbacks)
	}

	if d.HistoryAvailable {
		fmt.Fprintf(w, "  Commit history:      %d changes ingested (noise rate %.0f%%)\n", d.CommitsIngested, d.NoiseRate*100)
	} else {
		fmt.Fprintln(w, "  Commit history:      not available")
	}
	fmt.Fprintf(w, "  Clone pairs found:   %d\n", d.ClonePairsFound)

	if len(d.MissingSlots) > 0 {
		yellow.Fprintf(w, "  Degraded analyzers:  %v\n", d.MissingSlots)
	}
	if len(d.SignalInformationGains) > 0 {
		fmt.Fprintln(w, "  Signal information gain:")
		for _, name := range pipeline.SortedInformationGainKeys(d.SignalInformationGains) {
			fmt.Fprintf(w, "    %-16s %.2f bits\n", name, d.SignalInformationGains[name])
		}
	}

	g := result.Field.Global
	fmt.Fprintln(w)
	bold.Fprintln(w, "Codebase Health")
	fmt.Fprintln(w, "────────────────────────────────────────")
	healthColor(g.CodebaseHealth).Fprintf(w, "  Codebase health:     %.2f\n", g.CodebaseHealth)
	healthColor(g.ArchitectureHealth).Fprintf(w, "  Architecture health: %.2f\n", g.ArchitectureHealth)
	healthColor(g.WiringScore).Fprintf(w, "  Wiring score:        %.2f\n", g.WiringScore)
	fmt.Fprintf(w, "  Modularity (Q):      %.2f\n", g.Modularity)
	fmt.Fprintf(w, "  Fiedler value:       %.4f\n", g.FiedlerValue)
	fmt.Fprintf(w, "  Cycles:              %d\n", g.CycleCount)
	fmt.Fprintf(w, "  Orphan ratio:        %.1f%%\n", g.OrphanRatio*100)
	fmt.Fprintf(w, "  Max layering depth:  %d (layering: %v)\n", g.MaxDepth, g.HasLayering)
}

func healthColor(v float64) *color.Color {
	if v >= 0.7 {
		return color.New(color.FgGreen)
	}
	if v >= 0.4 {
		return color.New(color.FgYellow)
	}
	return color.New(color.FgRed)
}

// RenderFindings prints the ranked Finding list as a table, using
// tablewriter the way the teacher's CLI uses tablewriter for tabular
// terminal output.
func RenderFindings(w io.Writer, findings []codelens.Finding, verbose bool) {
	bold := color.New(color.Bold)

	fmt.Fprintln(w)
	bold.Fprintln(w, "Findings")
	fmt.Fprintln(w, "════════════════════════════════════════")

	if len(findings) == 0 {
		color.New(color.FgGreen).Fprintln(w, "  No findings -- nothing rose above the configured thresholds.")
		return
	}

	table := tablewriter.NewTable(w)
	table.Header([]string{"Severity", "Pattern", "Scope", "Files", "Effort", "Suggestion"})

	for _, f := range findings {
		sev := fmt.Sprintf("%.2f", f.Severity)
		files := f.Files[0]
		if len(f.Files) > 1 {
			files = fmt.Sprintf("%s (+%d)", files, len(f.Files)-1)
		}
		table.Append([]string{sev, f.PatternName, string(f.Scope), files, string(f.Effort), f.Suggestion})
	}
	table.Render()

	if verbose {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Evidence")
		fmt.Fprintln(w, "────────────────────────────────────────")
		for i, f := range findings {
			sevColor := colorForSeverity(f.Severity)
			sevColor.Fprintf(w, "%d. %s  [%s]  severity=%.2f confidence=%.2f\n", i+1, f.PatternName, f.Scope, f.Severity, f.Confidence)
			for _, path := range f.Files {
				fmt.Fprintf(w, "     - %s\n", path)
			}
			for _, ev := range f.Evidence {
				if ev.Percentile > 0 {
					fmt.Fprintf(w, "     %s: %.3f (p%.0f) -- %s\n", ev.SignalName, ev.Value, ev.Percentile*100, ev.Description)
				} else {
					fmt.Fprintf(w, "     %s: %.3f -- %s\n", ev.SignalName, ev.Value, ev.Description)
				}
			}
			fmt.Fprintf(w, "     Suggestion: %s (effort: %s)\n", f.Suggestion, f.Effort)
		}
	}
}

func colorForSeverity(v float64) *color.Color {
	if v >= severityRedMin {
		return color.New(color.FgRed, color.Bold)
	}
	if v >= severityYellowMin {
		return color.New(color.FgYellow)
	}
	return color.New(color.FgGreen)
}

// RenderWarnings prints any recoverable per-analyzer errors collected during
// the run, matching the teacher CLI's practice of surfacing non-fatal
// warnings without failing the scan.
func RenderWarnings(w io.Writer, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	yellow := color.New(color.FgYellow)
	fmt.Fprintln(w)
	for _, msg := range warnings {
		yellow.Fprintf(w, "Warning: %s\n", msg)
	}
}
