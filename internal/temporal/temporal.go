// Package temporal implements the Temporal Analyzer: it ingests the commit
// stream the external git collaborator (internal/gitlog) produces and
// computes per-file churn series and cross-file co-change signals.
// Grounded on the teacher's internal/analyzer/c5_temporal/temporal.go, whose
// churn/coupling/fragmentation/stability math is kept; the git-log parsing
// itself is replaced since this pipeline receives commits already parsed
// (spec.md §6, input 2) rather than shelling out to `git log --numstat`.
package temporal

import (
	"math"
	"regexp"
	"sort"

	"github.com/codelens/codelens/internal/blackboard"
	"github.com/codelens/codelens/pkg/codelens"
)

const (
	noisyCommitFileThreshold = 30 // commits touching more files than this are excluded as bulk/noise
	minCochangeCount         = 2
	windowDays               = 28 // ~4-week bins, per spec.md §4.3
	secondsPerDay            = 86400.0
)

var (
	fixPattern      = regexp.MustCompile(`(?i)\b(fix|bug|hotfix|patch)\b`)
	refactorPattern = regexp.MustCompile(`(?i)\b(refactor|cleanup|clean up|restructure)\b`)
)

// Analyze computes per-file ChurnSeries and the co-change matrix from a raw
// commit stream. An empty commit list yields an all-zero result with
// NoiseRate 0, matching spec.md's "no error, just absence of signal"
// posture for optional inputs.
func Analyze(commits []codelens.CommitRecord) blackboard.TemporalResult {
	result := blackboard.TemporalResult{PerFile: make(map[string]*codelens.ChurnSeries)}
	if len(commits) == 0 {
		return result
	}

	kept := make([]codelens.CommitRecord, 0, len(commits))
	for _, c := range commits {
		if len(c.Files) > noisyCommitFileThreshold {
			continue
		}
		kept = append(kept, c)
	}
	if len(commits) > 0 {
		result.NoiseRate = float64(len(commits)-len(kept)) / float64(len(commits))
	}
	if len(kept) == 0 {
		return result
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Timestamp < kept[j].Timestamp })

	authors := make(map[string]bool)
	fileTimestamps := make(map[string][]int64)
	fileAuthorCounts := make(map[string]map[string]int)
	fileFixCount := make(map[string]int)
	fileRefactorCount := make(map[string]int)
	fileTotalChanges := make(map[string]int)
	pairCount := make(map[[2]string]int)
	fileCommitCount := make(map[string]int)

	for _, c := range kept {
		authors[c.Author] = true
		isFix := fixPattern.MatchString(c.Message)
		isRefactor := refactorPattern.MatchString(c.Message)

		paths := uniqueSorted(c.Files)
		for _, p := range paths {
			fileTimestamps[p] = append(fileTimestamps[p], c.Timestamp)
			fileTotalChanges[p]++
			fileCommitCount[p]++
			if fileAuthorCounts[p] == nil {
				fileAuthorCounts[p] = make(map[string]int)
			}
			fileAuthorCounts[p][c.Author]++
			if isFix {
				fileFixCount[p]++
			}
			if isRefactor {
				fileRefactorCount[p]++
			}
		}
		for i := 0; i < len(paths); i++ {
			for j := i + 1; j < len(paths); j++ {
				key := sortedPair(paths[i], paths[j])
				pairCount[key]++
			}
		}
	}

	slopes := computeSlopes(fileTimestamps)
	cvs := computeCV(fileTimestamps)
	trajectories := bucketTrajectories(slopes, cvs)

	for path, timestamps := range fileTimestamps {
		total := fileTotalChanges[path]
		busFactor := math.Exp(entropy(counts(fileAuthorCounts[path])))
		if busFactor < 1.0 {
			busFactor = 1.0
		}
		var fixRatio, refactorRatio float64
		if total > 0 {
			fixRatio = float64(fileFixCount[path]) / float64(total)
			refactorRatio = float64(fileRefactorCount[path]) / float64(total)
		}
		_ = timestamps
		result.PerFile[path] = &codelens.ChurnSeries{
			TotalChanges:  total,
			Trajectory:    trajectories[path],
			Slope:         slopes[path],
			CV:            cvs[path],
			BusFactor:     busFactor,
			AuthorEntropy: entropy(counts(fileAuthorCounts[path])),
			FixRatio:      fixRatio,
			RefactorRatio: refactorRatio,
		}
	}

	for pair, shared := range pairCount {
		if shared < minCochangeCount {
			continue
		}
		countA := fileCommitCount[pair[0]]
		countB := fileCommitCount[pair[1]]
		var confAB, confBA float64
		if countA > 0 {
			confAB = float64(shared) / float64(countA)
		}
		if countB > 0 {
			confBA = float64(shared) / float64(countB)
		}
		expected := float64(countA) / float64(len(kept)) * float64(countB) / float64(len(kept))
		var lift float64
		if expected > 0 {
			observed := float64(shared) / float64(len(kept))
			lift = observed / expected
		}
		result.CoChange = append(result.CoChange, codelens.CoChangePair{
			FileA:          pair[0],
			FileB:          pair[1],
			CochangeCount:  shared,
			ConfidenceAToB: confAB,
			ConfidenceBToA: confBA,
			Lift:           lift,
		})
	}
	sort.Slice(result.CoChange, func(i, j int) bool {
		return result.CoChange[i].CochangeCount > result.CoChange[j].CochangeCount
	})

	result.TeamSize = len(authors)
	return result
}

func uniqueSorted(files []string) []string {
	seen := make(map[string]bool, len(files))
	var out []string
	for _, f := range files {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func sortedPair(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

func counts(m map[string]int) []int {
	out := make([]int, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// entropy computes Shannon entropy (natural log) of a set of counts,
// normalized by total. bus_factor = exp(entropy) per spec.md §4.3: a single
// dominant author yields entropy 0 and bus_factor 1; evenly spread
// authorship raises both.
func entropy(counts []int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log(p)
	}
	return h
}

// computeSlopes buckets each file's commit timestamps into windowDays-wide
// bins and fits a simple linear regression of commit count over bin index,
// grounded on spec.md §4.3's "linear regression of commit counts over time
// windows (default 4-week bins)".
func computeSlopes(fileTimestamps map[string][]int64) map[string]float64 {
	slopes := make(map[string]float64, len(fileTimestamps))
	for path, timestamps := range fileTimestamps {
		if len(timestamps) < 2 {
			slopes[path] = 0
			continue
		}
		bins := binByWindow(timestamps)
		slopes[path] = linearSlope(bins)
	}
	return slopes
}

func binByWindow(timestamps []int64) []float64 {
	min, max := timestamps[0], timestamps[0]
	for _, t := range timestamps {
		if t < min {
			min = t
		}
		if t > max {
			max = t
		}
	}
	span := float64(max-min) / secondsPerDay
	numBins := int(span/windowDays) + 1
	if numBins < 1 {
		numBins = 1
	}
	counts := make([]float64, numBins)
	for _, t := range timestamps {
		dayOffset := float64(t-min) / secondsPerDay
		bin := int(dayOffset / windowDays)
		if bin >= numBins {
			bin = numBins - 1
		}
		counts[bin]++
	}
	return counts
}

// linearSlope fits y = a + b*x over x = 0..n-1 via ordinary least squares.
func linearSlope(ys []float64) float64 {
	n := float64(len(ys))
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range ys {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

func computeCV(fileTimestamps map[string][]int64) map[string]float64 {
	cvs := make(map[string]float64, len(fileTimestamps))
	for path, timestamps := range fileTimestamps {
		bins := binByWindow(timestamps)
		mean := 0.0
		for _, b := range bins {
			mean += b
		}
		mean /= float64(len(bins))
		if mean == 0 {
			cvs[path] = 0
			continue
		}
		var variance float64
		for _, b := range bins {
			d := b - mean
			variance += d * d
		}
		variance /= float64(len(bins))
		cvs[path] = math.Sqrt(variance) / mean
	}
	return cvs
}

// bucketTrajectories assigns each file a Trajectory label using an Otsu-style
// threshold on slope and CV: compute the global distribution of each metric,
// pick the split point maximizing between-class variance, and classify.
func bucketTrajectories(slopes, cvs map[string]float64) map[string]codelens.Trajectory {
	slopeThreshold := otsuThreshold(valuesOf(slopes))
	cvThreshold := otsuThreshold(valuesOf(cvs))

	result := make(map[string]codelens.Trajectory, len(slopes))
	for path, slope := range slopes {
		cv := cvs[path]
		switch {
		case slope <= 0 && cv <= cvThreshold:
			result[path] = codelens.TrajectoryDormant
		case slope > slopeThreshold && cv > cvThreshold:
			result[path] = codelens.TrajectorySpiking
		case slope > slopeThreshold:
			result[path] = codelens.TrajectoryChurning
		case slope < 0:
			result[path] = codelens.TrajectoryStabilizing
		default:
			result[path] = codelens.TrajectoryStable
		}
	}
	return result
}

func valuesOf(m map[string]float64) []float64 {
	out := make([]float64, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// otsuThreshold picks the value splitting xs into two groups maximizing
// between-class variance, the standard Otsu's method adapted from
// image-thresholding to a 1-D continuous distribution via a fixed-bucket
// histogram.
func otsuThreshold(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	min, max := xs[0], xs[0]
	for _, x := range xs {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	if max == min {
		return max
	}
	const numBuckets = 32
	hist := make([]int, numBuckets)
	width := (max - min) / numBuckets
	for _, x := range xs {
		idx := int((x - min) / width)
		if idx >= numBuckets {
			idx = numBuckets - 1
		}
		if idx < 0 {
			idx = 0
		}
		hist[idx]++
	}

	total := len(xs)
	var sumAll float64
	for i, h := range hist {
		sumAll += float64(i) * float64(h)
	}

	var sumB, wB float64
	var bestVar float64
	bestIdx := 0
	for i, h := range hist {
		wB += float64(h)
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(h)
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		betweenVar := wB * wF * (mB - mF) * (mB - mF)
		if betweenVar > bestVar {
			bestVar = betweenVar
			bestIdx = i
		}
	}
	return min + (float64(bestIdx)+0.5)*width
}
