package core

// This file hand-writes the specialised tensor-walker routines selected by
// dispatch.go (SPEC_FULL.md §4.6, §9). Go has no array-length-parametrised
// generics the way C++ templates let ndsplineeval-style code instantiate a
// routine per (N,O): there is no way to write `func walk[N int](...)` and
// have the compiler emit N separate constant-bound loops. The idiomatic Go
// realisation is instead a small hand-written family of functions, one per
// case, each with a literal (not runtime) loop nesting depth — giving the
// compiler a real shot at bounds-check elimination and register allocation
// it cannot get from the fully dynamic walkGeneric.
//
// Every function here must match walkGeneric's summation and multiplication
// order exactly (outer axis 0, ..., inner axis N-1; per-leaf product built
// by left-to-right accumulation into a running prefix before multiplying by
// the final axis's basis value and the coefficient): SPEC_FULL.md §8
// property 6 requires bit-identical results, and float64 arithmetic is not
// re-associable without changing the rounded output.
//
// Scope decision (see DESIGN.md): this repo hand-unrolls dimension-only
// routines for N in {2,3,4} and (dimension,order) routines for N in {2,3,4}
// x order in {2,3}. For N in {5,6,7,8} — still within the dispatch table's
// nominal specialisation range — walkConstDims falls back to walkGeneric;
// hand-maintaining 5-to-8-deep literal nesting was judged not worth its
// maintenance cost for a repo whose point is to demonstrate the technique,
// not exhaustively cover it. The fallback is trivially bit-identical since
// it *is* the generic routine.

func walkConstDims(ndim int, axes []axisMeta, coeffs []float32, centers []int, basis localBasis2D, pos *[MaxDims]int, tree *[MaxDims + 1]float64) float64 {
	switch ndim {
	case 2:
		return walkDims2(axes, coeffs, centers, basis)
	case 3:
		return walkDims3(axes, coeffs, centers, basis)
	case 4:
		return walkDims4(axes, coeffs, centers, basis)
	default:
		return walkGeneric(axes, coeffs, centers, basis, pos, tree)
	}
}

type unrolledFunc func(axes []axisMeta, coeffs []float32, centers []int, basis localBasis2D) float64

func unrolledDimOrder(ndim, order int) unrolledFunc {
	switch {
	case ndim == 2 && order == 2:
		return walkDims2Order2
	case ndim == 2 && order == 3:
		return walkDims2Order3
	case ndim == 3 && order == 2:
		return walkDims3Order2
	case ndim == 3 && order == 3:
		return walkDims3Order3
	case ndim == 4 && order == 2:
		return walkDims4Order2
	case ndim == 4 && order == 3:
		return walkDims4Order3
	default:
		return nil
	}
}

func walkDims2(axes []axisMeta, coeffs []float32, centers []int, basis localBasis2D) float64 {
	a0, a1 := &axes[0], &axes[1]
	b0, b1 := basis.row(0), basis.row(1)
	base := (centers[0]-a0.order)*a0.stride + (centers[1]-a1.order)*a1.stride

	var sum float64
	tablepos := base
	for m0 := 0; m0 <= a0.order; m0++ {
		prefix := b0[m0]
		for m1 := 0; m1 <= a1.order; m1++ {
			sum += prefix * b1[m1] * float64(coeffs[tablepos+m1])
		}
		tablepos += a0.stride
	}
	return sum
}

func walkDims3(axes []axisMeta, coeffs []float32, centers []int, basis localBasis2D) float64 {
	a0, a1, a2 := &axes[0], &axes[1], &axes[2]
	b0, b1, b2 := basis.row(0), basis.row(1), basis.row(2)
	base := (centers[0]-a0.order)*a0.stride + (centers[1]-a1.order)*a1.stride + (centers[2]-a2.order)*a2.stride

	var sum float64
	tablepos0 := base
	for m0 := 0; m0 <= a0.order; m0++ {
		prefix0 := b0[m0]
		tablepos1 := tablepos0
		for m1 := 0; m1 <= a1.order; m1++ {
			prefix01 := prefix0 * b1[m1]
			for m2 := 0; m2 <= a2.order; m2++ {
				sum += prefix01 * b2[m2] * float64(coeffs[tablepos1+m2])
			}
			tablepos1 += a1.stride
		}
		tablepos0 += a0.stride
	}
	return sum
}

func walkDims4(axes []axisMeta, coeffs []float32, centers []int, basis localBasis2D) float64 {
	a0, a1, a2, a3 := &axes[0], &axes[1], &axes[2], &axes[3]
	b0, b1, b2, b3 := basis.row(0), basis.row(1), basis.row(2), basis.row(3)
	base := (centers[0]-a0.order)*a0.stride + (centers[1]-a1.order)*a1.stride +
		(centers[2]-a2.order)*a2.stride + (centers[3]-a3.order)*a3.stride

	var sum float64
	tablepos0 := base
	for m0 := 0; m0 <= a0.order; m0++ {
		prefix0 := b0[m0]
		tablepos1 := tablepos0
		for m1 := 0; m1 <= a1.order; m1++ {
			prefix01 := prefix0 * b1[m1]
			tablepos2 := tablepos1
			for m2 := 0; m2 <= a2.order; m2++ {
				prefix012 := prefix01 * b2[m2]
				for m3 := 0; m3 <= a3.order; m3++ {
					sum += prefix012 * b3[m3] * float64(coeffs[tablepos2+m3])
				}
				tablepos2 += a2.stride
			}
			tablepos1 += a1.stride
		}
		tablepos0 += a0.stride
	}
	return sum
}

// The Order2/Order3 variants below are identical to their dim-only
// counterparts except the per-axis loop bound is a literal (2 or 3) instead
// of axes[i].order, which is what actually buys the compiler a fixed trip
// count. They are only reached when every axis shares that literal order
// (computeDispatch checks this), so axes[i].order == the literal is always
// true when they run.

func walkDims2Order2(axes []axisMeta, coeffs []float32, centers []int, basis localBasis2D) float64 {
	a0, a1 := &axes[0], &axes[1]
	b0, b1 := basis.row(0), basis.row(1)
	base := (centers[0]-a0.order)*a0.stride + (centers[1]-a1.order)*a1.stride

	var sum float64
	tablepos := base
	for m0 := 0; m0 <= 2; m0++ {
		prefix := b0[m0]
		for m1 := 0; m1 <= 2; m1++ {
			sum += prefix * b1[m1] * float64(coeffs[tablepos+m1])
		}
		tablepos += a0.stride
	}
	return sum
}

func walkDims2Order3(axes []axisMeta, coeffs []float32, centers []int, basis localBasis2D) float64 {
	a0, a1 := &axes[0], &axes[1]
	b0, b1 := basis.row(0), basis.row(1)
	base := (centers[0]-a0.order)*a0.stride + (centers[1]-a1.order)*a1.stride

	var sum float64
	tablepos := base
	for m0 := 0; m0 <= 3; m0++ {
		prefix := b0[m0]
		for m1 := 0; m1 <= 3; m1++ {
			sum += prefix * b1[m1] * float64(coeffs[tablepos+m1])
		}
		tablepos += a0.stride
	}
	return sum
}

func walkDims3Order2(axes []axisMeta, coeffs []float32, centers []int, basis localBasis2D) float64 {
	a0, a1, a2 := &axes[0], &axes[1], &axes[2]
	b0, b1, b2 := basis.row(0), basis.row(1), basis.row(2)
	base := (centers[0]-a0.order)*a0.stride + (centers[1]-a1.order)*a1.stride + (centers[2]-a2.order)*a2.stride

	var sum float64
	tablepos0 := base
	for m0 := 0; m0 <= 2; m0++ {
		prefix0 := b0[m0]
		tablepos1 := tablepos0
		for m1 := 0; m1 <= 2; m1++ {
			prefix01 := prefix0 * b1[m1]
			for m2 := 0; m2 <= 2; m2++ {
				sum += prefix01 * b2[m2] * float64(coeffs[tablepos1+m2])
			}
			tablepos1 += a1.stride
		}
		tablepos0 += a0.stride
	}
	return sum
}

func walkDims3Order3(axes []axisMeta, coeffs []float32, centers []int, basis localBasis2D) float64 {
	a0, a1, a2 := &axes[0], &axes[1], &axes[2]
	b0, b1, b2 := basis.row(0), basis.row(1), basis.row(2)
	base := (centers[0]-a0.order)*a0.stride + (centers[1]-a1.order)*a1.stride + (centers[2]-a2.order)*a2.stride

	var sum float64
	tablepos0 := base
	for m0 := 0; m0 <= 3; m0++ {
		prefix0 := b0[m0]
		tablepos1 := tablepos0
		for m1 := 0; m1 <= 3; m1++ {
			prefix01 := prefix0 * b1[m1]
			for m2 := 0; m2 <= 3; m2++ {
				sum += prefix01 * b2[m2] * float64(coeffs[tablepos1+m2])
			}
			tablepos1 += a1.stride
		}
		tablepos0 += a0.stride
	}
	return sum
}

func walkDims4Order2(axes []axisMeta, coeffs []float32, centers []int, basis localBasis2D) float64 {
	a0, a1, a2, a3 := &axes[0], &axes[1], &axes[2], &axes[3]
	b0, b1, b2, b3 := basis.row(0), basis.row(1), basis.row(2), basis.row(3)
	base := (centers[0]-a0.order)*a0.stride + (centers[1]-a1.order)*a1.stride +
		(centers[2]-a2.order)*a2.stride + (centers[3]-a3.order)*a3.stride

	var sum float64
	tablepos0 := base
	for m0 := 0; m0 <= 2; m0++ {
		prefix0 := b0[m0]
		tablepos1 := tablepos0
		for m1 := 0; m1 <= 2; m1++ {
			prefix01 := prefix0 * b1[m1]
			tablepos2 := tablepos1
			for m2 := 0; m2 <= 2; m2++ {
				prefix012 := prefix01 * b2[m2]
				for m3 := 0; m3 <= 2; m3++ {
					sum += prefix012 * b3[m3] * float64(coeffs[tablepos2+m3])
				}
				tablepos2 += a2.stride
			}
			tablepos1 += a1.stride
		}
		tablepos0 += a0.stride
	}
	return sum
}

func walkDims4Order3(axes []axisMeta, coeffs []float32, centers []int, basis localBasis2D) float64 {
	a0, a1, a2, a3 := &axes[0], &axes[1], &axes[2], &axes[3]
	b0, b1, b2, b3 := basis.row(0), basis.row(1), basis.row(2), basis.row(3)
	base := (centers[0]-a0.order)*a0.stride + (centers[1]-a1.order)*a1.stride +
		(centers[2]-a2.order)*a2.stride + (centers[3]-a3.order)*a3.stride

	var sum float64
	tablepos0 := base
	for m0 := 0; m0 <= 3; m0++ {
		prefix0 := b0[m0]
		tablepos1 := tablepos0
		for m1 := 0; m1 <= 3; m1++ {
			prefix01 := prefix0 * b1[m1]
			tablepos2 := tablepos1
			for m2 := 0; m2 <= 3; m2++ {
				prefix012 := prefix01 * b2[m2]
				for m3 := 0; m3 <= 3; m3++ {
					sum += prefix012 * b3[m3] * float64(coeffs[tablepos2+m3])
				}
				tablepos2 += a2.stride
			}
			tablepos1 += a1.stride
		}
		tablepos0 += a0.stride
	}
	return sum
}
