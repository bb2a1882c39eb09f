// Package architecture implements the Architecture Analyzer: aggregation of
// files into directory-derived modules and Martin's package metrics, plus
// topological layering and layer-violation detection. Grounded on the
// directory-aggregation idiom used throughout the teacher's c3_architecture
// package (module boundaries inferred from the filesystem), generalized to
// compute Ca/Ce/instability/abstractness/distance, community-derived
// cohesion/coupling, and a topological layer DAG the teacher does not
// attempt.
package architecture

import (
	"path"
	"sort"
	"strings"

	"github.com/codelens/codelens/internal/blackboard"
	"github.com/codelens/codelens/pkg/codelens"
)

const moduleDepth = 1 // top-level directory under root is the module boundary

// Analyze aggregates files into modules and computes Martin's metrics plus
// layering violations, using the Structural Analyzer's resolved graph and
// community partition.
func Analyze(files map[string]*codelens.FileSyntax, structural blackboard.StructuralResult) blackboard.ArchitectureResult {
	result := blackboard.ArchitectureResult{Modules: make(map[string]*codelens.ModuleSummary)}

	moduleOf := make(map[string]string, len(files))
	for p := range files {
		moduleOf[p] = modulePath(p)
	}

	abstractFileCount := make(map[string]int)
	for p, fs := range files {
		mod := moduleOf[p]
		summary, ok := result.Modules[mod]
		if !ok {
			summary = &codelens.ModuleSummary{Path: mod}
			result.Modules[mod] = summary
		}
		summary.FileCount++
		for _, cls := range fs.Classes {
			if cls.IsAbstract {
				abstractFileCount[mod]++
				break
			}
		}
	}

	caCounts := make(map[string]int)
	ceCounts := make(map[string]int)
	internalEdges := make(map[string]int)
	externalEdges := make(map[string]int)
	if structural.Graph != nil {
		for _, e := range structural.Graph.Edges {
			fromMod, fromOK := moduleOf[e.From]
			toMod, toOK := moduleOf[e.To]
			if !fromOK || !toOK {
				continue
			}
			if fromMod == toMod {
				internalEdges[fromMod]++
				continue
			}
			ceCounts[fromMod]++
			caCounts[toMod]++
			externalEdges[fromMod]++
			externalEdges[toMod]++
		}
	}

	moduleCommunities := dominantCommunity(files, moduleOf, structural.PerFile)

	for mod, summary := range result.Modules {
		ca := caCounts[mod]
		ce := ceCounts[mod]
		summary.Ca = ca
		summary.Ce = ce
		if ca+ce > 0 {
			i := float64(ce) / float64(ca+ce)
			summary.Instability = &i
		}
		if summary.FileCount > 0 {
			summary.Abstractness = float64(abstractFileCount[mod]) / float64(summary.FileCount)
		}
		if summary.Instability != nil {
			summary.MainSeqDistance = absFloat(summary.Abstractness + *summary.Instability - 1)
		}
		total := internalEdges[mod] + externalEdges[mod]
		if total > 0 {
			summary.Coupling = float64(externalEdges[mod]) / float64(total)
			summary.Cohesion = float64(internalEdges[mod]) / float64(total)
		}
		summary.BoundaryAlignment = boundaryAlignment(mod, moduleOf, moduleCommunities, structural.PerFile)
	}

	layers, maxDepth, hasLayering := computeLayers(result.Modules, structural.Graph, moduleOf)
	for mod, l := range layers {
		if summary, ok := result.Modules[mod]; ok {
			summary.Layer = l
			summary.HasLayering = hasLayering
		}
	}
	result.HasLayering = hasLayering
	result.MaxDepth = maxDepth

	if hasLayering && structural.Graph != nil {
		result.Violations = detectViolations(structural.Graph, moduleOf, layers)
	}

	return result
}

func modulePath(filePath string) string {
	segs := strings.Split(filePath, "/")
	if len(segs) <= moduleDepth {
		return "."
	}
	return path.Join(segs[:moduleDepth]...)
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// dominantCommunity finds, for each module, the Louvain community id most
// of its files belong to -- used as the reference partition for
// boundary_alignment.
func dominantCommunity(files map[string]*codelens.FileSyntax, moduleOf map[string]string, perFile map[string]*codelens.GraphMetrics) map[string]int {
	counts := make(map[string]map[int]int)
	for p := range files {
		mod := moduleOf[p]
		gm, ok := perFile[p]
		if !ok {
			continue
		}
		if counts[mod] == nil {
			counts[mod] = make(map[int]int)
		}
		counts[mod][gm.Community]++
	}
	dominant := make(map[string]int, len(counts))
	for mod, byCommunity := range counts {
		best, bestCount := 0, -1
		for c, n := range byCommunity {
			if n > bestCount {
				best, bestCount = c, n
			}
		}
		dominant[mod] = best
	}
	return dominant
}

// boundaryAlignment measures how well a module's membership matches a
// single Louvain community: the fraction of the module's files that sit in
// its dominant community.
func boundaryAlignment(mod string, moduleOf map[string]string, dominant map[string]int, perFile map[string]*codelens.GraphMetrics) float64 {
	total, matching := 0, 0
	want := dominant[mod]
	for p, m := range moduleOf {
		if m != mod {
			continue
		}
		total++
		if gm, ok := perFile[p]; ok && gm.Community == want {
			matching++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(matching) / float64(total)
}

// computeLayers performs a Kahn-style topological layering over the module
// DAG, with modules participating in a module-level cycle collapsed into
// the same layer (the layer of their condensed strongly connected component), per
// spec.md §4.5.
func computeLayers(modules map[string]*codelens.ModuleSummary, graph *codelens.DependencyGraph, moduleOf map[string]string) (map[string]int, int, bool) {
	if len(modules) <= 1 {
		return map[string]int{}, 0, false
	}

	adj := make(map[string]map[string]bool)
	for mod := range modules {
		adj[mod] = make(map[string]bool)
	}
	if graph != nil {
		for _, e := range graph.Edges {
			fromMod, toMod := moduleOf[e.From], moduleOf[e.To]
			if fromMod != "" && toMod != "" && fromMod != toMod {
				adj[fromMod][toMod] = true
			}
		}
	}

	sccIndex := tarjanModuleSCC(adj)

	condensed := make(map[int]map[int]bool)
	for mod, deps := range adj {
		from := sccIndex[mod]
		if condensed[from] == nil {
			condensed[from] = make(map[int]bool)
		}
		for dep := range deps {
			to := sccIndex[dep]
			if to != from {
				condensed[from][to] = true
			}
		}
	}

	layerOfSCC := kahnLayers(condensed)

	layers := make(map[string]int, len(modules))
	maxDepth := 0
	for mod := range modules {
		l := layerOfSCC[sccIndex[mod]]
		layers[mod] = l
		if l > maxDepth {
			maxDepth = l
		}
	}

	hasLayering := maxDepth > 1
	return layers, maxDepth, hasLayering
}

// tarjanModuleSCC finds strongly connected components among modules using
// plain Tarjan over a small adjacency map -- module counts are small
// enough (directories, not files) that this needs no gonum dependency.
func tarjanModuleSCC(adj map[string]map[string]bool) map[string]int {
	index := make(map[string]int)
	low := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	counter := 0
	sccID := 0
	result := make(map[string]int)

	names := make([]string, 0, len(adj))
	for n := range adj {
		names = append(names, n)
	}
	sort.Strings(names)

	var strongconnect func(v string)
	strongconnect = func(v string) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		neighbors := make([]string, 0, len(adj[v]))
		for n := range adj[v] {
			neighbors = append(neighbors, n)
		}
		sort.Strings(neighbors)

		for _, w := range neighbors {
			if _, seen := index[w]; !seen {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] {
				if index[w] < low[v] {
					low[v] = index[w]
				}
			}
		}

		if low[v] == index[v] {
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				result[w] = sccID
				if w == v {
					break
				}
			}
			sccID++
		}
	}

	for _, n := range names {
		if _, seen := index[n]; !seen {
			strongconnect(n)
		}
	}
	return result
}

func kahnLayers(condensed map[int]map[int]bool) map[int]int {
	inDegree := make(map[int]int)
	allNodes := make(map[int]bool)
	for from, tos := range condensed {
		allNodes[from] = true
		for to := range tos {
			allNodes[to] = true
			inDegree[to]++
		}
	}

	layer := make(map[int]int)
	var queue []int
	for n := range allNodes {
		if inDegree[n] == 0 {
			queue = append(queue, n)
			layer[n] = 0
		}
	}
	sort.Ints(queue)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for to := range condensed[cur] {
			if layer[cur]+1 > layer[to] {
				layer[to] = layer[cur] + 1
			}
			inDegree[to]--
			if inDegree[to] == 0 {
				queue = append(queue, to)
			}
		}
	}
	return layer
}

// detectViolations flags edges crossing module layers backward or skipping
// more than one layer, per spec.md §4.5.
func detectViolations(graph *codelens.DependencyGraph, moduleOf map[string]string, layers map[string]int) []codelens.LayerViolation {
	counts := make(map[[2]string]int)
	types := make(map[[2]string]codelens.ViolationType)

	for _, e := range graph.Edges {
		fromMod, toMod := moduleOf[e.From], moduleOf[e.To]
		if fromMod == "" || toMod == "" || fromMod == toMod {
			continue
		}
		fromLayer, toLayer := layers[fromMod], layers[toMod]
		diff := toLayer - fromLayer
		var vtype codelens.ViolationType
		switch {
		case diff < 0:
			vtype = codelens.ViolationBackward
		case diff > 1:
			vtype = codelens.ViolationSkip
		default:
			continue
		}
		key := [2]string{fromMod, toMod}
		counts[key]++
		types[key] = vtype
	}

	violations := make([]codelens.LayerViolation, 0, len(counts))
	for key, count := range counts {
		violations = append(violations, codelens.LayerViolation{
			SourceModule: key[0],
			TargetModule: key[1],
			SourceLayer:  layers[key[0]],
			TargetLayer:  layers[key[1]],
			Type:         types[key],
			EdgeCount:    count,
		})
	}
	sort.Slice(violations, func(i, j int) bool {
		return violations[i].SourceModule+violations[i].TargetModule < violations[j].SourceModule+violations[j].TargetModule
	})
	return violations
}
