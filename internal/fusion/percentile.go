package fusion

import "sort"

// absoluteFloors are the per-signal floors from spec.md §4.6.2: below
// these, a signal's percentile is forced to 0 regardless of rank.
var absoluteFloors = map[string]float64{
	"pagerank":        0.005,
	"blast_radius":    5,
	"cognitive_load":  10,
	"lines":           100,
}

// percentileRanks computes, for every entry in values, the fraction of values
// less than or equal to it -- the load-bearing "<=" from spec.md §4.6.2:
// using "<" produces off-by-one errors that corrupt downstream thresholds.
func percentileRanks(values map[string]float64) map[string]float64 {
	if len(values) == 0 {
		return map[string]float64{}
	}
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		sorted = append(sorted, v)
	}
	sort.Float64s(sorted)
	n := float64(len(sorted))

	ranks := make(map[string]float64, len(values))
	for key, x := range values {
		// rightmost insertion point: count of values <= x.
		idx := sort.Search(len(sorted), func(i int) bool { return sorted[i] > x })
		ranks[key] = float64(idx) / n
	}
	return ranks
}

// applyFloor forces pctl(x) to 0 when x is below signal's absolute floor,
// regardless of its rank.
func applyFloor(signal string, raw, pctl float64) float64 {
	floor, ok := absoluteFloors[signal]
	if !ok {
		return pctl
	}
	if raw < floor {
		return 0.0
	}
	return pctl
}

// percentilesForSignal computes floor-adjusted percentiles for one signal
// across all files in a single pass.
func percentilesForSignal(signal string, raw map[string]float64) map[string]float64 {
	ranks := percentileRanks(raw)
	out := make(map[string]float64, len(raw))
	for key, x := range raw {
		out[key] = applyFloor(signal, x, ranks[key])
	}
	return out
}
