// Package clonedetect is the external clone-detector collaborator named in
// spec.md design note 9: it supplies a list of {file_a, file_b, ncd} pairs
// pre-filtered to ncd < 0.3, and the core never recomputes NCD itself.
// Grounded on panbanda-omen's pkg/analyzer/duplicates.go (block extraction
// across files in a bounded worker pool, then all-pairs similarity), with
// MinHash swapped for compression-based NCD: no example repo computes NCD
// via a compression library directly (klauspost/compress appears only as
// an indirect transitive dependency elsewhere in the pack), so this uses
// compress/flate from the standard library rather than introducing an
// ungrounded third-party codec.
package clonedetect

import (
	"bytes"
	"compress/flate"
	"sort"
	"sync"

	"github.com/codelens/codelens/pkg/codelens"
)

const (
	maxNCD        = 0.3  // spec.md's pre-filter threshold
	minBlockBytes = 200  // skip trivially small files; NCD on noise is meaningless
	maxPairwiseFiles = 1500 // all-pairs comparison is O(n^2); beyond this, skip rather than stall a scan
)

// Detect computes pairwise NCD across file contents and returns every pair
// below maxNCD, sorted for deterministic output. Grounded on panbanda-omen's
// bounded-worker-pool block extraction, adapted to whole-file compression
// instead of per-block MinHash signatures.
func Detect(contents map[string][]byte, workers int) []codelens.ClonePair {
	if workers <= 0 {
		workers = 4
	}

	paths := make([]string, 0, len(contents))
	for p, c := range contents {
		if len(c) >= minBlockBytes {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	if len(paths) > maxPairwiseFiles {
		paths = paths[:maxPairwiseFiles]
	}

	sizes := make(map[string]int, len(paths))
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for _, p := range paths {
		p := p
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			n := compressedSize(contents[p])
			mu.Lock()
			sizes[p] = n
			mu.Unlock()
		}()
	}
	wg.Wait()

	type job struct{ a, b string }
	var jobs []job
	for i := 0; i < len(paths); i++ {
		for j := i + 1; j < len(paths); j++ {
			jobs = append(jobs, job{paths[i], paths[j]})
		}
	}

	results := make([]codelens.ClonePair, 0)
	var resMu sync.Mutex
	var jobWg sync.WaitGroup
	jobSem := make(chan struct{}, workers)
	for _, j := range jobs {
		j := j
		jobWg.Add(1)
		jobSem <- struct{}{}
		go func() {
			defer jobWg.Done()
			defer func() { <-jobSem }()
			ncd := normalizedCompressionDistance(contents[j.a], contents[j.b], sizes[j.a], sizes[j.b])
			if ncd < maxNCD {
				resMu.Lock()
				results = append(results, codelens.ClonePair{FileA: j.a, FileB: j.b, NCD: ncd})
				resMu.Unlock()
			}
		}()
	}
	jobWg.Wait()

	sort.Slice(results, func(i, k int) bool {
		if results[i].FileA != results[k].FileA {
			return results[i].FileA < results[k].FileA
		}
		return results[i].FileB < results[k].FileB
	})
	return results
}

// normalizedCompressionDistance computes NCD(a,b) = (C(ab) - min(C(a),C(b))) / max(C(a),C(b))
// using DEFLATE compressed size as the approximation of Kolmogorov complexity.
func normalizedCompressionDistance(a, b []byte, cA, cB int) float64 {
	if cA == 0 || cB == 0 {
		return 1
	}
	joined := make([]byte, 0, len(a)+len(b))
	joined = append(joined, a...)
	joined = append(joined, b...)
	cAB := compressedSize(joined)

	minC, maxC := cA, cB
	if minC > maxC {
		minC, maxC = maxC, minC
	}
	if maxC == 0 {
		return 1
	}
	ncd := float64(cAB-minC) / float64(maxC)
	if ncd < 0 {
		return 0
	}
	if ncd > 1 {
		return 1
	}
	return ncd
}

func compressedSize(content []byte) int {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return len(content)
	}
	if _, err := w.Write(content); err != nil {
		return len(content)
	}
	if err := w.Close(); err != nil {
		return len(content)
	}
	return buf.Len()
}
