package codelens

import "fmt"

// Settings is the full configuration surface for Analyze (spec.md §6). Every
// field has a default via DefaultSettings; callers may override any subset.
type Settings struct {
	PageRankDamping     float64
	PageRankIterations  int
	PageRankTolerance   float64

	Workers int // 0 = auto (min(runtime.NumCPU(), 8))

	MaxFileSizeMB int
	MaxFiles      int

	GitMaxCommits int
	GitMinCommits int

	MaxFindings int

	ExcludePatterns []string

	AllowHiddenFiles bool
	FollowSymlinks   bool

	Thresholds ThresholdOverrides

	// HistoryDBPath, when non-empty, enables the persisted-state collaborator
	// (internal/historystore) to write a snapshot after analysis.
	HistoryDBPath string
}

// ThresholdOverrides lets callers override individual pattern thresholds and
// the composite-risk weights. A nil Weights, or a pattern or condition key
// absent from Patterns, falls back to the built-in defaults.
type ThresholdOverrides struct {
	Patterns map[string]map[string]float64 // pattern name -> condition key -> value
	Weights  *CompositeWeights
}

// CompositeWeights are the raw_risk component weights (spec.md §4.6.3).
// Must sum to 1.0 ± 0.01 (testable property 6).
type CompositeWeights struct {
	PageRank      float64
	BlastRadius   float64
	CognitiveLoad float64
	Instability   float64
	BusFactor     float64 // contributes inversely: higher bus factor = lower risk
}

// DefaultCompositeWeights returns the canonical weights from spec.md §4.6.3.
func DefaultCompositeWeights() CompositeWeights {
	return CompositeWeights{
		PageRank:      0.25,
		BlastRadius:   0.20,
		CognitiveLoad: 0.20,
		Instability:   0.20,
		BusFactor:     0.15,
	}
}

// Sum returns the sum of all five weights.
func (w CompositeWeights) Sum() float64 {
	return w.PageRank + w.BlastRadius + w.CognitiveLoad + w.Instability + w.BusFactor
}

// DefaultSettings returns the canonical default Settings.
func DefaultSettings() *Settings {
	return &Settings{
		PageRankDamping:    0.85,
		PageRankIterations: 20,
		PageRankTolerance:  1e-6,
		Workers:            0,
		MaxFileSizeMB:      10,
		MaxFiles:           10000,
		GitMaxCommits:      5000,
		GitMinCommits:      10,
		MaxFindings:        50,
		ExcludePatterns: []string{
			"vendor/**", "node_modules/**", ".git/**", "dist/**", "build/**",
			"*_test.go", "test_*.py", "*.test.ts", "**/__pycache__/**",
		},
		AllowHiddenFiles: false,
		FollowSymlinks:   false,
		Thresholds:       ThresholdOverrides{},
	}
}

// Validate checks settings consistency: percentile thresholds must lie in
// [0,1] and composite weights must sum to 1.0 ± 0.01 (spec.md §6, testable
// property 6). Input errors here are unrecoverable at the call site.
func (s *Settings) Validate() error {
	if s.PageRankDamping <= 0 || s.PageRankDamping >= 1 {
		return &ConfigError{Field: "pagerank_damping", Reason: "must be in (0,1)"}
	}
	if s.PageRankIterations <= 0 {
		return &ConfigError{Field: "pagerank_iterations", Reason: "must be positive"}
	}
	if s.MaxFiles <= 0 {
		return &ConfigError{Field: "max_files", Reason: "must be positive"}
	}
	if s.MaxFindings <= 0 {
		return &ConfigError{Field: "max_findings", Reason: "must be positive"}
	}

	weights := DefaultCompositeWeights()
	if s.Thresholds.Weights != nil {
		weights = *s.Thresholds.Weights
	}
	if sum := weights.Sum(); sum < 0.99 || sum > 1.01 {
		return &ConfigError{Field: "thresholds.weights", Reason: fmt.Sprintf("composite weights must sum to 1.0 +/- 0.01, got %.4f", sum)}
	}

	for pattern, conds := range s.Thresholds.Patterns {
		for key, v := range conds {
			if isPercentileKey(key) && (v < 0 || v > 1) {
				return &ConfigError{Field: fmt.Sprintf("thresholds.%s.%s", pattern, key), Reason: "percentile thresholds must be in [0,1]"}
			}
		}
	}
	return nil
}

// isPercentileKey reports whether a threshold condition key names a
// percentile-scaled quantity (as opposed to an absolute count like
// min_commits).
func isPercentileKey(key string) bool {
	switch key {
	case "pctl_pagerank", "pctl_blast_radius", "pctl_cognitive_load",
		"pctl_coherence", "confidence", "boundary_alignment", "author_distance":
		return true
	default:
		return false
	}
}

// CompositeWeightsOrDefault returns the effective composite weights given
// settings overrides.
func (s *Settings) CompositeWeightsOrDefault() CompositeWeights {
	if s.Thresholds.Weights != nil {
		return *s.Thresholds.Weights
	}
	return DefaultCompositeWeights()
}

// PatternThreshold looks up an overridden threshold, falling back to def.
func (s *Settings) PatternThreshold(pattern, key string, def float64) float64 {
	if s.Thresholds.Patterns == nil {
		return def
	}
	conds, ok := s.Thresholds.Patterns[pattern]
	if !ok {
		return def
	}
	v, ok := conds[key]
	if !ok {
		return def
	}
	return v
}
