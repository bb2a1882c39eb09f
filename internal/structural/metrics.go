package structural

import (
	"sort"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/codelens/codelens/pkg/codelens"
	"github.com/codelens/codelens/internal/blackboard"
)

const (
	pageRankDamping    = 0.85
	pageRankTolerance  = 1e-6
	entryPointHeuristicDirs = "cmd"
)

// gonumGraph bundles a directed and undirected gonum view of the same
// DependencyGraph, grounded on panbanda-omen's toGonumGraph.
type gonumGraph struct {
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	pathToID   map[string]int64
	idToPath   map[int64]string
}

func toGonumGraph(g *codelens.DependencyGraph) *gonumGraph {
	gg := &gonumGraph{
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		pathToID:   make(map[string]int64, len(g.Nodes)),
		idToPath:   make(map[int64]string, len(g.Nodes)),
	}
	for i, node := range g.Nodes {
		id := int64(i)
		gg.pathToID[node] = id
		gg.idToPath[id] = node
		gg.directed.AddNode(simple.Node(id))
		gg.undirected.AddNode(simple.Node(id))
	}
	for _, e := range g.Edges {
		fromID, fromOK := gg.pathToID[e.From]
		toID, toOK := gg.pathToID[e.To]
		if !fromOK || !toOK || fromID == toID {
			continue
		}
		gg.directed.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
		if !gg.undirected.HasEdgeBetween(fromID, toID) {
			gg.undirected.SetEdge(simple.Edge{F: simple.Node(fromID), T: simple.Node(toID)})
		}
	}
	return gg
}

// Analyze builds the import graph from parsed files and computes every
// graph-theoretic signal named in spec.md's Structural Analyzer.
func Analyze(files map[string]*codelens.FileSyntax) blackboard.StructuralResult {
	graph, phantomCounts := resolveImports(files)
	result := blackboard.StructuralResult{
		Graph:   graph,
		PerFile: make(map[string]*codelens.GraphMetrics, len(graph.Nodes)),
	}
	if len(graph.Nodes) == 0 {
		return result
	}

	gg := toGonumGraph(graph)

	var pageRankMap, betweennessMap map[int64]float64
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		pageRankMap = network.PageRank(gg.directed, pageRankDamping, pageRankTolerance)
	}()
	go func() {
		defer wg.Done()
		betweennessMap = network.Betweenness(gg.directed)
	}()
	wg.Wait()

	normalizePageRank(pageRankMap)

	inDegree := make(map[string]int, len(graph.Nodes))
	outDegree := make(map[string]int, len(graph.Nodes))
	for _, n := range graph.Nodes {
		inDegree[n] = 0
		outDegree[n] = 0
	}
	for _, e := range graph.Edges {
		outDegree[e.From]++
		inDegree[e.To]++
	}

	communities, modularity := louvainCommunities(gg)
	result.Modularity = modularity

	cycleCount := countCycles(gg)
	result.CycleCount = cycleCount

	entryPoints := findEntryPoints(files)
	depths := bfsDepths(gg, entryPoints)
	maxDepth := 0
	hasLayering := len(entryPoints) > 0
	for _, d := range depths {
		if d > maxDepth {
			maxDepth = d
		}
	}
	result.MaxDepth = maxDepth
	result.HasLayering = hasLayering

	blastRadius := blastRadiusAll(gg)

	pageRanks := make([]float64, 0, len(graph.Nodes))
	for path, fs := range files {
		id, ok := gg.pathToID[path]
		if !ok {
			continue
		}
		pr := pageRankMap[id]
		pageRanks = append(pageRanks, pr)
		depth, hasDepth := depths[path]
		if !hasDepth {
			depth = -1
		}
		isEntry := entryPoints[path]
		result.PerFile[path] = &codelens.GraphMetrics{
			PageRank:           pr,
			Betweenness:        betweennessMap[id],
			InDegree:           inDegree[path],
			OutDegree:          outDegree[path],
			Depth:              depth,
			IsOrphan:           inDegree[path] == 0 && !isEntry,
			Community:          communities[path],
			BlastRadiusSize:    blastRadius[path],
			PhantomImportCount: phantomCounts[path],
		}
		_ = fs
	}

	result.CentralityGini = giniCoefficient(pageRanks)
	fiedler, gap := spectralSignals(gg)
	result.FiedlerValue = fiedler
	result.SpectralGap = gap

	return result
}

func normalizePageRank(m map[int64]float64) {
	max := 0.0
	for _, v := range m {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return
	}
	for k, v := range m {
		m[k] = v / max
	}
}

func countCycles(gg *gonumGraph) int {
	sccs := topo.TarjanSCC(gg.directed)
	count := 0
	for _, scc := range sccs {
		if len(scc) >= 2 {
			count++
		}
	}
	return count
}

func louvainCommunities(gg *gonumGraph) (map[string]int, float64) {
	if gg.undirected.Nodes().Len() == 0 {
		return map[string]int{}, 0
	}
	reduced := community.Modularize(gg.undirected, 1.0, nil)
	groups := reduced.Communities()
	communities := make(map[string]int, len(gg.idToPath))
	for idx, group := range groups {
		for _, n := range group {
			communities[gg.idToPath[n.ID()]] = idx
		}
	}
	modularity := community.Q(gg.undirected, groups, 1.0)
	return communities, modularity
}

// findEntryPoints marks files matching the main-guard heuristic (Go's
// HasMainGuard) or path convention (a "cmd" directory segment, or a
// filename stem of "main"/"index"/"app").
func findEntryPoints(files map[string]*codelens.FileSyntax) map[string]bool {
	entries := make(map[string]bool)
	for p, fs := range files {
		if fs.HasMainGuard {
			entries[p] = true
			continue
		}
		segs := strings.Split(p, "/")
		for _, seg := range segs {
			if seg == entryPointHeuristicDirs {
				entries[p] = true
				break
			}
		}
		stem := fileStem(p)
		if stem == "main" || stem == "index" || stem == "app" {
			entries[p] = true
		}
	}
	return entries
}

// bfsDepths runs a multi-source BFS over the directed graph from every
// entry point, recording shortest hop distance.
func bfsDepths(gg *gonumGraph, entryPoints map[string]bool) map[string]int {
	depths := make(map[string]int)
	if len(entryPoints) == 0 {
		return depths
	}
	queue := make([]int64, 0, len(entryPoints))
	for p := range entryPoints {
		id, ok := gg.pathToID[p]
		if !ok {
			continue
		}
		if _, seen := depths[p]; !seen {
			depths[p] = 0
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curPath := gg.idToPath[cur]
		d := depths[curPath]
		to := gg.directed.From(cur)
		for to.Next() {
			nextID := to.Node().ID()
			nextPath := gg.idToPath[nextID]
			if _, seen := depths[nextPath]; !seen {
				depths[nextPath] = d + 1
				queue = append(queue, nextID)
			}
		}
	}
	return depths
}

// blastRadiusAll runs a reverse-graph DFS from every node to count
// transitive dependents, grounded on spec.md §4.2 item 3. The Structural
// Analyzer may parallelize this per spec.md §5 item 2.
func blastRadiusAll(gg *gonumGraph) map[string]int {
	result := make(map[string]int, len(gg.idToPath))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, 8)

	for id := range gg.idToPath {
		id := id
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			count := reverseDFSCount(gg, id)
			mu.Lock()
			result[gg.idToPath[id]] = count
			mu.Unlock()
		}()
	}
	wg.Wait()
	return result
}

// reverseDFSCount walks the reverse graph from start, tracking visited node
// IDs in a roaring bitmap: node IDs are dense small integers (the arena
// indices design note 9 calls for), which is exactly roaring's sweet spot
// and avoids a map[int64]bool allocation per blast-radius DFS.
func reverseDFSCount(gg *gonumGraph, start int64) int {
	visited := roaring.New()
	visited.Add(uint32(start))
	stack := []int64{start}
	count := 0
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		to := gg.directed.To(cur)
		for to.Next() {
			pred := to.Node().ID()
			if !visited.Contains(uint32(pred)) {
				visited.Add(uint32(pred))
				count++
				stack = append(stack, pred)
			}
		}
	}
	return count
}

func giniCoefficient(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	var sumDiffs, sum float64
	for i, x := range sorted {
		sum += x
		sumDiffs += float64(2*(i+1)-n-1) * x
	}
	if sum == 0 {
		return 0
	}
	return sumDiffs / (float64(n) * sum)
}
