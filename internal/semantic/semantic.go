// Package semantic implements the Semantic Analyzer: per-file identifier
// tokenization, prefix-grouped concept clustering, and the cognitive-load
// composite. Clustering (minimum-cluster-size filtering, the <3-unique-
// tokens single-cluster fallback) follows original_source's
// math/identifier.py IdentifierAnalyzer.detect_semantic_clusters, the
// spec's ground truth for this pattern; the surrounding per-file wiring is
// grounded on the naming-convention inspection in the teacher's
// internal/analyzer/c2_semantics package, generalized from a single
// PEP8/camelCase check into full concept extraction per spec.md §4.4.
package semantic

import (
	"math"
	"path"
	"strings"

	"github.com/codelens/codelens/pkg/codelens"
)

const conceptPrefixLen = 3

// Analyze computes FileSemantics for every parsed file.
func Analyze(files map[string]*codelens.FileSyntax) map[string]*codelens.FileSemantics {
	result := make(map[string]*codelens.FileSemantics, len(files))
	for p, fs := range files {
		result[p] = analyzeFile(p, fs)
	}
	return result
}

func analyzeFile(filePath string, fs *codelens.FileSyntax) *codelens.FileSemantics {
	identifiers := collectIdentifiers(fs)
	if len(identifiers) == 0 {
		return &codelens.FileSemantics{
			Coherence: 1.0, // empty content is single-responsibility by vacuity
			Role:      classifyRole(filePath, nil),
		}
	}

	tokens := tokenizeAll(identifiers)
	concepts := clusterConcepts(tokens)

	weights := make([]float64, len(concepts))
	for i, c := range concepts {
		weights[i] = c.Weight
	}

	sem := &codelens.FileSemantics{
		Concepts:       concepts,
		ConceptCount:   len(concepts),
		ConceptEntropy: shannonEntropy(weights),
		Coherence:      coherence(weights),
		NamingDrift:    namingDrift(filePath, concepts),
	}
	sem.Role = classifyRole(filePath, concepts)
	sem.CognitiveLoad = cognitiveLoad(fs, len(concepts))
	return sem
}

func collectIdentifiers(fs *codelens.FileSyntax) []string {
	var names []string
	for _, fn := range fs.Functions {
		names = append(names, fn.Name)
		names = append(names, fn.Params...)
	}
	for _, cls := range fs.Classes {
		names = append(names, cls.Name)
		names = append(names, cls.Methods...)
		names = append(names, cls.Fields...)
	}
	return names
}

// minClusterSize is the minimum total token occurrence a prefix group must
// reach to survive as its own concept (original_source's
// detect_semantic_clusters(min_cluster_size=3)); groups below this are
// noise, not a distinct responsibility.
const minClusterSize = 3

// clusterConcepts groups tokens by their first conceptPrefixLen characters,
// per spec.md §4.4's "simple prefix-grouping clustering (3-char prefix)",
// weighting each concept by token frequency. Below 3 unique tokens there
// isn't enough vocabulary to cluster meaningfully, so everything collapses
// into one concept; prefix groups whose combined occurrence count falls
// under minClusterSize are dropped as noise rather than kept as
// singleton concepts.
func clusterConcepts(tokens []string) []codelens.Concept {
	if len(tokens) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, t := range tokens {
		counts[t]++
	}
	total := len(tokens)

	if len(counts) < 3 {
		return []codelens.Concept{{Topic: topTerm(counts), Weight: 1.0}}
	}

	groups := make(map[string]int)
	for token, n := range counts {
		key := token
		if len(key) > conceptPrefixLen {
			key = key[:conceptPrefixLen]
		}
		groups[key] += n
	}
	concepts := make([]codelens.Concept, 0, len(groups))
	for topic, count := range groups {
		if count < minClusterSize {
			continue
		}
		concepts = append(concepts, codelens.Concept{
			Topic:  topic,
			Weight: float64(count) / float64(total),
		})
	}
	return concepts
}

// topTerm returns the most frequent token, the way original_source's
// single-cluster fallback reports top_terms[0].
func topTerm(counts map[string]int) string {
	best, bestN := "", -1
	for token, n := range counts {
		if n > bestN || (n == bestN && token < best) {
			best, bestN = token, n
		}
	}
	return best
}

func shannonEntropy(weights []float64) float64 {
	var h float64
	for _, w := range weights {
		if w <= 0 {
			continue
		}
		h -= w * math.Log(w)
	}
	return h
}

// coherence is 1 minus the concept-weight entropy normalized by the
// maximum possible entropy (uniform distribution over the same cluster
// count): a single dominant concept yields coherence near 1, a flat
// distribution across many concepts yields coherence near 0.
func coherence(weights []float64) float64 {
	if len(weights) <= 1 {
		return 1.0
	}
	h := shannonEntropy(weights)
	maxH := math.Log(float64(len(weights)))
	if maxH == 0 {
		return 1.0
	}
	c := 1 - h/maxH
	if c < 0 {
		c = 0
	}
	return c
}

func namingDrift(filePath string, concepts []codelens.Concept) float64 {
	filenameTokens := tokenizeIdentifier(strings.TrimSuffix(path.Base(filePath), path.Ext(filePath)))
	if len(filenameTokens) == 0 || len(concepts) == 0 {
		return 0
	}
	filenameSet := make(map[string]bool, len(filenameTokens))
	for _, t := range filenameTokens {
		key := t
		if len(key) > conceptPrefixLen {
			key = key[:conceptPrefixLen]
		}
		filenameSet[key] = true
	}
	conceptSet := make(map[string]bool, len(concepts))
	for _, c := range concepts {
		conceptSet[c.Topic] = true
	}
	return 1 - jaccard(filenameSet, conceptSet)
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	intersection := 0
	union := make(map[string]bool, len(a)+len(b))
	for k := range a {
		union[k] = true
		if b[k] {
			intersection++
		}
	}
	for k := range b {
		union[k] = true
	}
	if len(union) == 0 {
		return 1
	}
	return float64(intersection) / float64(len(union))
}

// classifyRole applies spec.md §4.4's rule-based role classification from
// filename, directory, and concept distribution.
func classifyRole(filePath string, concepts []codelens.Concept) codelens.Role {
	lower := strings.ToLower(filePath)
	base := path.Base(lower)
	dir := path.Dir(lower)

	switch {
	case strings.Contains(base, "_test.") || strings.Contains(base, "test_") || strings.Contains(dir, "/test"):
		return codelens.RoleTest
	case base == "main.go" || base == "index.ts" || base == "index.js" || strings.Contains(dir, "/cmd/"):
		return codelens.RoleEntry
	case strings.Contains(base, "config") || strings.Contains(dir, "config"):
		return codelens.RoleConfig
	case strings.Contains(dir, "model") || strings.Contains(base, "model") || strings.Contains(base, "entity") || strings.Contains(base, "schema"):
		return codelens.RoleModel
	case strings.Contains(dir, "service") || strings.Contains(base, "service") || strings.Contains(base, "handler") || strings.Contains(base, "controller"):
		return codelens.RoleService
	case strings.Contains(dir, "base") || strings.Contains(dir, "common") || strings.Contains(dir, "shared") || strings.Contains(dir, "util"):
		return codelens.RoleBase
	default:
		return codelens.RoleUnknown
	}
}

// cognitiveLoad computes the raw composite from spec.md §4.4:
// concepts x complexity x (1 + nesting/10) x (1 + gini(function_sizes)).
// Callers normalize by the codebase-wide max; Analyze returns the raw
// value since normalization requires the full file set.
func cognitiveLoad(fs *codelens.FileSyntax, conceptCount int) float64 {
	if len(fs.Functions) == 0 {
		return 0
	}
	var totalComplexity, totalNesting float64
	sizes := make([]float64, len(fs.Functions))
	for i, fn := range fs.Functions {
		complexity := float64(fn.CyclomaticComplexity)
		if complexity == 0 {
			complexity = 1
		}
		totalComplexity += complexity
		totalNesting += float64(fn.NestingDepth)
		sizes[i] = float64(fn.BodyTokens)
	}
	avgComplexity := totalComplexity / float64(len(fs.Functions))
	avgNesting := totalNesting / float64(len(fs.Functions))
	concepts := float64(conceptCount)
	if concepts == 0 {
		concepts = 1
	}
	return concepts * avgComplexity * (1 + avgNesting/10) * (1 + giniOf(sizes))
}

func giniOf(xs []float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	for i := 1; i < n; i++ {
		v := sorted[i]
		j := i - 1
		for j >= 0 && sorted[j] > v {
			sorted[j+1] = sorted[j]
			j--
		}
		sorted[j+1] = v
	}
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

// NormalizeCognitiveLoad rescales every file's raw CognitiveLoad into
// [0,1] by dividing by the codebase-wide maximum, per spec.md §4.4.
func NormalizeCognitiveLoad(sems map[string]*codelens.FileSemantics) {
	max := 0.0
	for _, s := range sems {
		if s.CognitiveLoad > max {
			max = s.CognitiveLoad
		}
	}
	if max == 0 {
		return
	}
	for _, s := range sems {
		s.CognitiveLoad = s.CognitiveLoad / max
	}
}
