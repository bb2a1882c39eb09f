package codelens

// DependencyGraph is a directed multigraph over file paths. Edges are
// resolved imports; unresolved imports are tracked separately as phantom
// imports on the source file rather than as graph edges.
type DependencyGraph struct {
	Nodes []string          // file paths, stable order (first-seen)
	Edges []DependencyEdge  // file -> target
	index map[string]int    // path -> index into Nodes, built lazily
}

// DependencyEdge is one resolved import edge.
type DependencyEdge struct {
	From string
	To   string
}

// NodeIndex returns the position of path in Nodes, building the lookup index
// on first use. Returns -1 if path is not a node.
func (g *DependencyGraph) NodeIndex(path string) int {
	if g.index == nil {
		g.index = make(map[string]int, len(g.Nodes))
		for i, n := range g.Nodes {
			g.index[n] = i
		}
	}
	idx, ok := g.index[path]
	if !ok {
		return -1
	}
	return idx
}

// AddNode registers path as a graph node if not already present.
func (g *DependencyGraph) AddNode(path string) {
	if g.NodeIndex(path) >= 0 {
		return
	}
	g.index[path] = len(g.Nodes)
	g.Nodes = append(g.Nodes, path)
}

// AddEdge registers a directed edge, adding any missing endpoints as nodes.
func (g *DependencyGraph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.Edges = append(g.Edges, DependencyEdge{From: from, To: to})
}

// Trajectory buckets a file's churn history into a qualitative shape.
type Trajectory string

const (
	TrajectoryStable      Trajectory = "STABLE"
	TrajectorySpiking     Trajectory = "SPIKING"
	TrajectoryChurning    Trajectory = "CHURNING"
	TrajectoryStabilizing Trajectory = "STABILIZING"
	TrajectoryDormant     Trajectory = "DORMANT"
)

// GraphMetrics holds per-file structural signals computed by the Structural
// Analyzer.
type GraphMetrics struct {
	PageRank        float64
	Betweenness     float64
	InDegree        int
	OutDegree       int
	Depth           int // shortest path from any entry-point file; -1 if unreachable
	IsOrphan        bool
	Community       int // Louvain partition id
	BlastRadiusSize int // count of transitive dependents
	PhantomImportCount int
}

// CommitRecord is one commit as supplied by the external git collaborator
// (spec.md §6, input 2). Order is unspecified; the Temporal Analyzer sorts
// as needed.
type CommitRecord struct {
	Hash      string
	Timestamp int64 // unix seconds
	Author    string
	Message   string
	Files     []string // relative paths touched by this commit
}

// ChurnSeries is the per-file temporal summary computed by the Temporal
// Analyzer.
type ChurnSeries struct {
	TotalChanges   int
	Trajectory     Trajectory
	Slope          float64
	CV             float64 // coefficient of variation
	BusFactor      float64 // floored at 1.0
	AuthorEntropy  float64
	FixRatio       float64
	RefactorRatio  float64
}

// CoChangePair is a co-change relation between two files; the Temporal
// Analyzer emits only pairs with at least two joint commits.
type CoChangePair struct {
	FileA           string
	FileB           string
	CochangeCount   int
	ConfidenceAToB  float64 // P(B|A)
	ConfidenceBToA  float64 // P(A|B)
	Lift            float64
}

// Concept is one discovered topic cluster with its aggregate token weight.
type Concept struct {
	Topic  string
	Weight float64
}

// Role classifies a file's architectural purpose.
type Role string

const (
	RoleEntry   Role = "ENTRY"
	RoleService Role = "SERVICE"
	RoleModel   Role = "MODEL"
	RoleBase    Role = "BASE"
	RoleConfig  Role = "CONFIG"
	RoleTest    Role = "TEST"
	RoleUnknown Role = "UNKNOWN"
)

// FileSemantics is the per-file signal set computed by the Semantic
// Analyzer.
type FileSemantics struct {
	Concepts       []Concept
	ConceptCount   int
	ConceptEntropy float64
	Coherence      float64 // 1 - normalized cluster entropy; 1 = focused
	NamingDrift    float64 // 1 - Jaccard(filename tokens, concept topics)
	Role           Role
	CognitiveLoad  float64 // normalized to [0,1]
}

// ModuleSummary is the per-module (directory-derived) aggregate computed by
// the Architecture Analyzer.
type ModuleSummary struct {
	Path              string
	FileCount         int
	Cohesion          float64
	Coupling          float64
	Ca                int     // afferent coupling
	Ce                int     // efferent coupling
	Instability       *float64 // nil if Ca == Ce == 0
	Abstractness      float64
	MainSeqDistance   float64 // |A + I - 1|, 0 if Instability is nil
	DominantRole      Role
	BoundaryAlignment float64
	Layer             int
	HasLayering       bool
}

// ViolationType classifies a layer violation.
type ViolationType string

const (
	ViolationBackward ViolationType = "backward"
	ViolationSkip     ViolationType = "skip"
)

// LayerViolation is one architectural layering violation between modules.
type LayerViolation struct {
	SourceModule string
	TargetModule string
	SourceLayer  int
	TargetLayer  int
	Type         ViolationType
	EdgeCount    int
}

// ClonePair is a pre-filtered near-duplicate file pair supplied by the
// external clone-detector collaborator (spec.md §9): NCD < 0.3 by
// construction, the core never recomputes NCD itself.
type ClonePair struct {
	FileA string
	FileB string
	NCD   float64
}
