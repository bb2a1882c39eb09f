// Package patterns implements the Pattern Executor (spec.md §4.6.4-4.6.6):
// a declarative table of code-quality patterns evaluated against a
// SignalField, producing ranked, deduplicated Findings. Grounded on the
// teacher's threshold/breakpoint scoring idiom (internal/scoring,
// internal/recommend) -- predicate-per-metric evaluation, top-N evidence
// collection, impact-based ranking -- generalized from the teacher's
// fixed 1-10 category scores to the spec's percentile-gated boolean
// pattern predicates.
package patterns

import "github.com/codelens/codelens/pkg/codelens"

// Polarity describes which direction of a condition's value is bad, used
// to compute confidence from the margin by which a condition clears its
// threshold (spec.md §4.6.4).
type Polarity int

const (
	HighIsBad Polarity = iota
	HighIsGood
)

// Condition is one triggered numeric comparison backing a Finding's
// confidence and evidence.
type Condition struct {
	SignalName string
	Value      float64
	Threshold  float64
	Polarity   Polarity
}

// Margin returns the clamped-to-[0,1] margin by which c's value clears its
// threshold, per spec.md §4.6.4.
func (c Condition) Margin() float64 {
	var m float64
	switch c.Polarity {
	case HighIsGood:
		if c.Threshold == 0 {
			return 0
		}
		m = (c.Threshold - c.Value) / c.Threshold
	default:
		if c.Threshold >= 1 {
			return 0
		}
		m = (c.Value - c.Threshold) / (1 - c.Threshold)
	}
	if m < 0 {
		return 0
	}
	if m > 1 {
		return 1
	}
	return m
}

// PairSource names which precomputed relation a FILE_PAIR pattern
// enumerates over, per spec.md §4.6.4 ("iterate only precomputed
// relations ... when the pattern depends on that relation").
type PairSource string

const (
	PairImport   PairSource = "import"
	PairCochange PairSource = "cochange"
	PairClone    PairSource = "clone"
)

// Predicate evaluates a pattern against one target. target holds the
// scope-appropriate identifiers: one path for FILE/MODULE/DIRECTORY, two
// for FILE_PAIR/MODULE_PAIR, none for CODEBASE. It returns whether the
// pattern fires and the conditions that triggered, used for confidence
// and evidence.
type Predicate func(ctx *Context, target []string) (bool, []Condition)

// SeverityFn computes a finding's severity in [0,1]; most patterns use a
// fixed constant via ConstSeverity.
type SeverityFn func(ctx *Context, target []string, conds []Condition) float64

// EvidenceFn builds the Evidence list attached to a Finding.
type EvidenceFn func(ctx *Context, target []string, conds []Condition) []codelens.Evidence

// Pattern is one declarative pattern record (spec.md §4.6.4).
type Pattern struct {
	Name            string
	Scope           codelens.Scope
	Requires        []string // blackboard slot names this pattern needs available
	HotspotFiltered bool
	TierMinimum     codelens.Tier
	UsesPercentile  bool // syntactic "pctl(" check: skipped entirely at ABSOLUTE tier
	PairSource      PairSource
	Predicate       Predicate
	Severity        SeverityFn
	Evidence        EvidenceFn
	Description     string
	Remediation     string
	Effort          codelens.Effort
}

// ConstSeverity returns a SeverityFn that always returns v.
func ConstSeverity(v float64) SeverityFn {
	return func(*Context, []string, []Condition) float64 { return v }
}

func tierRank(t codelens.Tier) int {
	switch t {
	case codelens.TierAbsolute:
		return 0
	case codelens.TierBayesian:
		return 1
	default:
		return 2
	}
}
