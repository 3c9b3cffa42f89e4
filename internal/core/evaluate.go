package core

// Evaluate combines the per-axis bases selected by derivMask with the
// coefficient tensor via the tensor walker (SPEC_FULL.md §4.4). Bit i of
// derivMask set means "use the first-derivative basis on axis i"; otherwise
// the value basis is used. centers must have been produced by a prior
// successful SearchCenters call on x.
func (t *Table) Evaluate(x []float64, centers []int, derivMask uint) float64 {
	t.requirePoint(x, "Evaluate")
	var s scratch
	basis := t.fillBasis(x, centers, derivMask, &s)
	return t.walk(centers, basis, &s)
}

// EvaluateWithHandle behaves like Evaluate but uses a pre-bound dispatch
// Handle instead of the table's own cached dispatch, letting hot callers
// avoid repeated dispatch decisions (SPEC_FULL.md §4.6). It panics if h was
// not derived from t.
func (t *Table) EvaluateWithHandle(x []float64, centers []int, derivMask uint, h Handle) float64 {
	t.requirePoint(x, "EvaluateWithHandle")
	h.checkOrigin(t)
	var s scratch
	basis := t.fillBasis(x, centers, derivMask, &s)
	return walkDispatch(h.key, t.axes, t.coefficients, centers, basis, &s.decomposedPosition, &s.basisTree)
}

// EvaluateDeriv2 behaves like Evaluate, but axes flagged in derivMask use the
// reference-quality scalar second-derivative basis (basisDerivs2) instead of
// the vectorised first-derivative recurrence (SPEC_FULL.md §4.4).
func (t *Table) EvaluateDeriv2(x []float64, centers []int, derivMask uint) float64 {
	t.requirePoint(x, "EvaluateDeriv2")
	var s scratch
	for i := range t.axes {
		row := rowSlots(&s.values, i, t.axes[i].order+1)
		if derivMask&(1<<uint(i)) != 0 {
			basisDerivs2(t.axes[i].knots, x[i], centers[i], t.axes[i].order, row)
		} else {
			basisValues(t.axes[i].knots, x[i], centers[i], t.axes[i].order, row)
		}
	}
	basis := newLocalBasis2D(s.values[:], t.ndim, MaxOrder+1)
	return t.walk(centers, basis, &s)
}

// fillBasis fills s.values with, per axis, either the value basis or the
// first-derivative basis according to derivMask, and returns a localBasis2D
// view over it.
func (t *Table) fillBasis(x []float64, centers []int, derivMask uint, s *scratch) localBasis2D {
	for i := range t.axes {
		row := rowSlots(&s.values, i, t.axes[i].order+1)
		if derivMask&(1<<uint(i)) != 0 {
			basisDerivs(t.axes[i].knots, x[i], centers[i], t.axes[i].order, row)
		} else {
			basisValues(t.axes[i].knots, x[i], centers[i], t.axes[i].order, row)
		}
	}
	return newLocalBasis2D(s.values[:], t.ndim, MaxOrder+1)
}

// walk dispatches to the table's cached specialised routine, if any,
// otherwise the generic walker (SPEC_FULL.md §4.6).
func (t *Table) walk(centers []int, basis localBasis2D, s *scratch) float64 {
	return walkDispatch(t.dispatch, t.axes, t.coefficients, centers, basis, &s.decomposedPosition, &s.basisTree)
}
