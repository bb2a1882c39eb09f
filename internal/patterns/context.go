package patterns

import (
	"sort"

	"github.com/codelens/codelens/pkg/codelens"
)

// Context bundles the SignalField with the precomputed lookups every
// pattern predicate needs: the hotspot median, sorted file paths for
// deterministic iteration, and indices over the three precomputed
// relations (import edges, co-change pairs, clone pairs).
type Context struct {
	Field    *codelens.SignalField
	Settings *codelens.Settings

	HotspotMedian float64

	sortedFiles      []string
	sortedModules    []string
	sortedDirs       []string
	importEdges      map[[2]string]bool
	cochangeByPair   map[[2]string]*codelens.CoChangePair
	cloneByPair      map[[2]string]*codelens.ClonePair
}

func sortedPair(a, b string) [2]string {
	if a <= b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

// NewContext builds a Context from a populated SignalField.
func NewContext(field *codelens.SignalField, settings *codelens.Settings) *Context {
	ctx := &Context{
		Field:          field,
		Settings:       settings,
		importEdges:    make(map[[2]string]bool),
		cochangeByPair: make(map[[2]string]*codelens.CoChangePair),
		cloneByPair:    make(map[[2]string]*codelens.ClonePair),
	}

	for p := range field.PerFile {
		ctx.sortedFiles = append(ctx.sortedFiles, p)
	}
	sort.Strings(ctx.sortedFiles)

	for m := range field.PerModule {
		ctx.sortedModules = append(ctx.sortedModules, m)
	}
	sort.Strings(ctx.sortedModules)

	for d := range field.PerDirectory {
		ctx.sortedDirs = append(ctx.sortedDirs, d)
	}
	sort.Strings(ctx.sortedDirs)

	if field.Graph != nil {
		for _, e := range field.Graph.Edges {
			ctx.importEdges[sortedPair(e.From, e.To)] = true
		}
	}
	for i := range field.CoChange {
		cc := &field.CoChange[i]
		ctx.cochangeByPair[sortedPair(cc.FileA, cc.FileB)] = cc
	}
	for i := range field.ClonePairs {
		cp := &field.ClonePairs[i]
		ctx.cloneByPair[sortedPair(cp.FileA, cp.FileB)] = cp
	}

	ctx.HotspotMedian = computeHotspotMedian(field)
	return ctx
}

// computeHotspotMedian is the median total_changes over non-test files
// with >0 changes, per spec.md §4.6.4 step 1.
func computeHotspotMedian(field *codelens.SignalField) float64 {
	var values []float64
	for _, sig := range field.PerFile {
		if sig.IsTest || sig.TotalChanges <= 0 {
			continue
		}
		values = append(values, float64(sig.TotalChanges))
	}
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 0 {
		return (values[mid-1] + values[mid]) / 2
	}
	return values[mid]
}

// IsHotspot reports whether a file clears the hotspot_median gate used by
// hotspot_filtered patterns.
func (c *Context) IsHotspot(path string) bool {
	sig, ok := c.Field.PerFile[path]
	if !ok {
		return false
	}
	return float64(sig.TotalChanges) > c.HotspotMedian
}

func (c *Context) hasImportEdge(a, b string) bool {
	return c.importEdges[sortedPair(a, b)]
}

func (c *Context) cochange(a, b string) (*codelens.CoChangePair, bool) {
	cc, ok := c.cochangeByPair[sortedPair(a, b)]
	return cc, ok
}
