package core

import "sort"

// SearchCenters locates, for each axis, the knot interval containing x[i]
// (SPEC_FULL.md §4.1) and writes the result into centers (len(centers) must
// be t.NDim()). It returns false — with centers left in a partially-written,
// unspecified state — the moment any axis is found out of range, since a
// query is only valid if every axis is.
//
// The membership test is left-open, right-closed: knots[i][0] < x[i] <=
// knots[i][last] for every axis.
func (t *Table) SearchCenters(x []float64, centers []int) bool {
	t.requirePoint(x, "SearchCenters")
	if len(centers) != t.ndim {
		panic("tensorspline: SearchCenters centers slice must have length ndim")
	}
	for i := range t.axes {
		c, ok := searchAxis(&t.axes[i], x[i])
		if !ok {
			return false
		}
		centers[i] = c
	}
	return true
}

// searchAxis implements the per-axis center search described in
// SPEC_FULL.md §4.1.
func searchAxis(a *axisMeta, x float64) (int, bool) {
	lower, upper := a.lower(), a.upper()
	if x <= lower || x > upper {
		return 0, false
	}

	knots := a.knots
	if x < knots[a.order] {
		return a.order, true
	}
	if x >= knots[a.naxes] {
		return a.naxes - 1, true
	}

	lo, hi := a.order, len(knots)-2
	// Smallest c in [lo,hi] such that knots[c+1] > x; knots[c] <= x follows
	// because we've already excluded x < knots[a.order] above and knots is
	// non-decreasing.
	n := hi - lo + 1
	idx := sort.Search(n, func(i int) bool {
		c := lo + i
		return knots[c+1] > x
	})
	c := lo + idx
	if c > hi {
		c = hi
	}
	// Post-fixup (SPEC_FULL.md §4.1): this can only occur exactly at the
	// right endpoint, due to the right-closed convention.
	if c == a.naxes {
		c--
	}
	return c, true
}
