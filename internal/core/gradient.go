package core

import "fmt"

// EvaluateGradient fills out[0] with the surface value and out[1+i] with the
// partial derivative along axis i, for i in [0,ndim) (SPEC_FULL.md §4.5).
// len(out) must equal t.ndim+1.
//
// Rather than invoking the scalar evaluator ndim+1 times, the per-axis value
// and derivative bases are built once each via the joint basisValuesAndDerivs
// routine (basis.go), and walkGradient below walks the (order+1)^ndim
// hyper-block exactly once, accumulating the value and every partial
// together: at each leaf, output 0 (the value) always multiplies in the
// value basis row, while output 1+j (the partial along axis j) multiplies in
// the derivative row for exactly axis j and the value row for every other
// axis. Because output 0's own multiply/add order is identical to
// walkGeneric's — and every specialised routine is required to match
// walkGeneric bit-for-bit (SPEC_FULL.md §4.6) — out[0] and out[1+j] are
// bit-identical to Evaluate(x,centers,0) and Evaluate(x,centers,1<<j)
// respectively (SPEC_FULL.md §8 property 5).
func (t *Table) EvaluateGradient(x []float64, centers []int, out []float64) error {
	t.requirePoint(x, "EvaluateGradient")
	if len(out) != t.ndim+1 {
		return fmt.Errorf("tensorspline: EvaluateGradient: out has length %d, want %d", len(out), t.ndim+1)
	}

	var s scratch
	for i := range t.axes {
		n := t.axes[i].order + 1
		basisValuesAndDerivs(t.axes[i].knots, x[i], centers[i], t.axes[i].order, rowSlots(&s.values, i, n), rowSlots(&s.derivs, i, n))
	}

	valBasis := newLocalBasis2D(s.values[:], t.ndim, MaxOrder+1)
	derivBasis := newLocalBasis2D(s.derivs[:], t.ndim, MaxOrder+1)
	walkGradient(t.axes, t.coefficients, centers, valBasis, derivBasis, &s.decomposedPosition, &s.gradTree, out)
	return nil
}

// axisSelectorLane builds the lane4 that axis's basis contributes to lane
// group g of the combined value+gradient accumulator: every position keeps
// the value-basis entry at this coordinate, except the one position (if any,
// within this lane) whose output is the partial derivative along axis,
// which instead gets the derivative-basis entry. Output 0 (the value) never
// matches "1+axis" since axis >= 0, so it always sees the value entry.
func axisSelectorLane(g, axis int, valAtPos, derivAtPos float64) lane4 {
	sel := broadcast4(valAtPos)
	k := 1 + axis
	if k/4 == g {
		sel[k%4] = derivAtPos
	}
	return sel
}

// walkGradient is the single-pass tensor walk of SPEC_FULL.md §4.5: instead
// of a scalar running total, it carries a width-4 lane4 accumulator per
// group of 4 outputs (value plus one partial per axis, SPEC_FULL.md §9),
// built up via axisSelectorLane at every level exactly as walkGeneric builds
// its scalar basisTree. It mirrors walkGeneric's carry-propagation and
// suffix-rebuild exactly (walker.go) so the value lane position stays
// bit-identical to the scalar walk.
func walkGradient(axes []axisMeta, coeffs []float32, centers []int, valBasis, derivBasis localBasis2D, pos *[MaxDims]int, tree *[MaxDims + 1][maxLanes]lane4, out []float64) {
	ndim := len(axes)
	numLanes := (ndim + 1 + 3) / 4

	base := 0
	for i := 0; i < ndim; i++ {
		pos[i] = 0
		base += (centers[i] - axes[i].order) * axes[i].stride
	}

	for g := 0; g < numLanes; g++ {
		tree[0][g] = broadcast4(1)
	}
	rebuild := func(from int) {
		for lvl := from; lvl < ndim-1; lvl++ {
			vAtPos := valBasis.row(lvl)[pos[lvl]]
			dAtPos := derivBasis.row(lvl)[pos[lvl]]
			for g := 0; g < numLanes; g++ {
				sel := axisSelectorLane(g, lvl, vAtPos, dAtPos)
				tree[lvl+1][g] = tree[lvl][g].mulLane(sel)
			}
		}
	}
	rebuild(0)

	var accum [maxLanes]lane4
	tablepos := base
	innerAxis := ndim - 1
	innerOrder := axes[innerAxis].order
	valRowInner := valBasis.row(innerAxis)
	derivRowInner := derivBasis.row(innerAxis)

	for {
		prefix := tree[innerAxis]
		for m := 0; m <= innerOrder; m++ {
			c := float64(coeffs[tablepos+m])
			vAtPos, dAtPos := valRowInner[m], derivRowInner[m]
			for g := 0; g < numLanes; g++ {
				sel := axisSelectorLane(g, innerAxis, vAtPos, dAtPos)
				leaf := prefix[g].mulLane(sel).mul(c)
				accum[g] = accum[g].add(leaf)
			}
		}

		axis := ndim - 2
		for axis >= 0 {
			pos[axis]++
			tablepos += axes[axis].stride
			if pos[axis] <= axes[axis].order {
				break
			}
			tablepos -= pos[axis] * axes[axis].stride
			pos[axis] = 0
			axis--
		}
		if axis < 0 {
			break
		}
		rebuild(axis)
	}

	for g := 0; g < numLanes; g++ {
		lo := g * 4
		hi := lo + 4
		if hi > len(out) {
			hi = len(out)
		}
		accum[g].store(out[lo:hi])
	}
}
