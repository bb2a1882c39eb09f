package structural

import (
	"gonum.org/v1/gonum/mat"
)

// spectralSignals computes the Fiedler value (second-smallest eigenvalue of
// the graph Laplacian, zero iff the graph is disconnected per spec.md's
// glossary) and the spectral gap (the third-smallest eigenvalue minus the
// Fiedler value), a measure of how cleanly the graph separates into two
// well-connected halves versus many loosely-joined ones. A gap near zero
// alongside a near-zero Fiedler value indicates several components of
// comparable size rather than one dominant core. Both values are reported
// in GlobalSignals; fusion derives glue_deficit from the Fiedler value
// alone (1 - fiedler).
func spectralSignals(gg *gonumGraph) (fiedler, gap float64) {
	n := gg.undirected.Nodes().Len()
	if n < 2 {
		return 0, 0
	}

	laplacian := mat.NewSymDense(n, nil)
	ids := make([]int64, 0, n)
	nodes := gg.undirected.Nodes()
	for nodes.Next() {
		ids = append(ids, nodes.Node().ID())
	}

	idxOf := make(map[int64]int, n)
	for i, id := range ids {
		idxOf[id] = i
	}

	degree := make([]float64, n)
	for _, id := range ids {
		it := gg.undirected.From(id)
		degree[idxOf[id]] = float64(it.Len())
	}

	for i := 0; i < n; i++ {
		laplacian.SetSym(i, i, degree[i])
	}
	for _, id := range ids {
		i := idxOf[id]
		to := gg.undirected.From(id)
		for to.Next() {
			j := idxOf[to.Node().ID()]
			if j > i {
				laplacian.SetSym(i, j, -1)
			}
		}
	}

	var eig mat.EigenSym
	ok := eig.Factorize(laplacian, false)
	if !ok {
		return 0, 0
	}
	values := append([]float64(nil), eig.Values(nil)...)
	// gonum returns eigenvalues in ascending order already, but sort
	// defensively since that ordering is not part of its documented
	// contract.
	insertionSortFloat(values)

	if len(values) < 2 {
		return 0, 0
	}
	fiedler = values[1]
	if fiedler < 1e-9 {
		fiedler = 0
	}
	if len(values) < 3 {
		return fiedler, 0
	}
	gap = values[2] - values[1]
	if gap < 0 {
		gap = 0
	}
	return fiedler, gap
}

func insertionSortFloat(xs []float64) {
	for i := 1; i < len(xs); i++ {
		v := xs[i]
		j := i - 1
		for j >= 0 && xs[j] > v {
			xs[j+1] = xs[j]
			j--
		}
		xs[j+1] = v
	}
}
