package core

// walkGeneric performs the tensor-product summation described in
// SPEC_FULL.md §4.3: it streams over the (order+1)^ndim hyper-block of
// coefficients surrounding centers, in order of the innermost axis fastest,
// maintaining a running flat offset (tablepos) and a prefix-product tree
// (basisTree) so that neither has to be recomputed from scratch at every
// step. It is the one true generic implementation; every specialised
// routine in specialized.go must reproduce its summation order exactly,
// since float64 addition and multiplication are not re-associable without
// changing the rounded result.
func walkGeneric(axes []axisMeta, coeffs []float32, centers []int, basis localBasis2D, pos *[MaxDims]int, tree *[MaxDims + 1]float64) float64 {
	ndim := len(axes)

	base := 0
	for i := 0; i < ndim; i++ {
		pos[i] = 0
		base += (centers[i] - axes[i].order) * axes[i].stride
	}

	tree[0] = 1
	for i := 0; i < ndim; i++ {
		tree[i+1] = tree[i] * basis.row(i)[0]
	}

	tablepos := base
	var sum float64
	innerOrder := axes[ndim-1].order

	for {
		prefix := tree[ndim-1]
		row := basis.row(ndim - 1)
		for m := 0; m <= innerOrder; m++ {
			sum += prefix * row[m] * float64(coeffs[tablepos+m])
		}

		axis := ndim - 2
		for axis >= 0 {
			pos[axis]++
			tablepos += axes[axis].stride
			if pos[axis] <= axes[axis].order {
				break
			}
			// Overflow: axis wraps back to 0, carry into axis-1.
			tablepos -= pos[axis] * axes[axis].stride
			pos[axis] = 0
			axis--
		}
		if axis < 0 {
			break
		}
		// Every level above the carry's stopping axis was built on a now-stale
		// tree[axis], since pos[axis] just changed: rebuild the whole suffix
		// from axis upward (SPEC_FULL.md §4.3), not just the one level the
		// carry touched.
		for j := axis; j < ndim-1; j++ {
			tree[j+1] = tree[j] * basis.row(j)[pos[j]]
		}
	}
	return sum
}
