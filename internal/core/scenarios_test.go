package core

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// This file holds the concrete end-to-end scenarios named in SPEC_FULL.md §8
// (S1-S6) plus the quantified invariants (properties 1-7) not already
// exercised incidentally by basis_test.go/walker_test.go/dispatch_test.go.

// s1Knots is the knot vector shared by S1-S3: a clamped, order-2, 6-basis-
// function vector over [0,1].
var s1Knots = []float64{0, 0, 0, 0.25, 0.5, 0.75, 1, 1, 1}

func newS1Table(t *testing.T, coeffs []float32) *Table {
	t.Helper()
	tbl, err := NewTable(TableConfig{
		Order:        []int{2},
		Knots:        [][]float64{s1Knots},
		NAxes:        []int{6},
		Strides:      []int{1},
		Coefficients: coeffs,
	})
	require.NoError(t, err)
	return tbl
}

// grevilleAbscissa returns the order-th-order Greville abscissa for basis
// function i on knots: the average of the order interior knots spanning its
// support, the construction used by S2/S3 to make a B-spline surface
// reproduce a linear function exactly.
func grevilleAbscissa(knots []float64, i, order int) float64 {
	sum := 0.0
	for j := i + 1; j <= i+order; j++ {
		sum += knots[j]
	}
	return sum / float64(order)
}

// TestS1ConstantCoefficientsEvaluateToThatConstant is SPEC_FULL.md §8 S1.
func TestS1ConstantCoefficientsEvaluateToThatConstant(t *testing.T) {
	tbl := newS1Table(t, []float32{1, 1, 1, 1, 1, 1})
	centers := make([]int, 1)
	require.True(t, tbl.SearchCenters([]float64{0.5}, centers))

	assert.InDelta(t, 1.0, tbl.Evaluate([]float64{0.5}, centers, 0), 1e-9)
	assert.InDelta(t, 0.0, tbl.Evaluate([]float64{0.5}, centers, 1), 1e-9)
}

// TestS2GrevilleCoefficientsReproduceLinearFunction is SPEC_FULL.md §8 S2.
func TestS2GrevilleCoefficientsReproduceLinearFunction(t *testing.T) {
	coeffs := make([]float32, 6)
	for i := range coeffs {
		coeffs[i] = float32(grevilleAbscissa(s1Knots, i, 2))
	}
	tbl := newS1Table(t, coeffs)
	centers := make([]int, 1)
	require.True(t, tbl.SearchCenters([]float64{0.3}, centers))
	assert.InDelta(t, 0.3, tbl.Evaluate([]float64{0.3}, centers, 0), 1e-6)
}

// TestS3SeparableGradientMatchesProductRule is SPEC_FULL.md §8 S3: a 2-D
// table built as the outer product of S2's linear-reproducing coefficients
// evaluates and differentiates like f(x,y)=x*y.
func TestS3SeparableGradientMatchesProductRule(t *testing.T) {
	g := make([]float32, 6)
	for i := range g {
		g[i] = float32(grevilleAbscissa(s1Knots, i, 2))
	}
	coeffs := make([]float32, 6*6)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			coeffs[i*6+j] = g[i] * g[j]
		}
	}
	tbl, err := NewTable(TableConfig{
		Order:        []int{2, 2},
		Knots:        [][]float64{s1Knots, s1Knots},
		NAxes:        []int{6, 6},
		Strides:      []int{6, 1},
		Coefficients: coeffs,
	})
	require.NoError(t, err)

	x := []float64{0.3, 0.7}
	centers := make([]int, 2)
	require.True(t, tbl.SearchCenters(x, centers))

	out := make([]float64, 3)
	require.NoError(t, tbl.EvaluateGradient(x, centers, out))
	assert.InDelta(t, 0.21, out[0], 1e-6)
	assert.InDelta(t, 0.7, out[1], 1e-6)
	assert.InDelta(t, 0.3, out[2], 1e-6)
}

// TestS4SearchBoundaryConvention is SPEC_FULL.md §8 S4: left-open,
// right-closed membership at the extremes of a simple uniform knot vector.
func TestS4SearchBoundaryConvention(t *testing.T) {
	tbl, err := NewTable(TableConfig{
		Order:        []int{2},
		Knots:        [][]float64{{0, 1, 2, 3, 4, 5}},
		NAxes:        []int{3},
		Strides:      []int{1},
		Coefficients: []float32{1, 1, 1},
	})
	require.NoError(t, err)

	centers := make([]int, 1)
	assert.True(t, tbl.SearchCenters([]float64{5.0}, centers), "right endpoint is closed")
	assert.False(t, tbl.SearchCenters([]float64{0.0}, centers), "left endpoint is open")
	assert.False(t, tbl.SearchCenters([]float64{5.0 + 1e-9}, centers), "beyond the right endpoint is out of range")
}

// TestS5SpecialisationParityOnRandomPoints is SPEC_FULL.md §8 S5: a
// randomly-drawn 3-D, order-3 table agrees bit-for-bit between the
// specialised and generic walkers on both value and gradient, across many
// random in-range points.
func TestS5SpecialisationParityOnRandomPoints(t *testing.T) {
	tbl, err := NewTable(basicConfig(3, 9, 3))
	require.NoError(t, err)
	require.Equal(t, dispatchByDimOrder, tbl.dispatch.kind)

	rng := rand.New(rand.NewPCG(7, 7))
	centers := make([]int, 3)
	for trial := 0; trial < 10000; trial++ {
		x := make([]float64, 3)
		for i := 0; i < 3; i++ {
			lo, hi := tbl.LowerExtent(i), tbl.UpperExtent(i)
			x[i] = lo + rng.Float64()*(hi-lo)
		}
		require.True(t, tbl.SearchCenters(x, centers))

		var s scratch
		basis := tbl.fillBasis(x, centers, 0, &s)
		wantVal := walkGeneric(tbl.axes, tbl.coefficients, centers, basis, &s.decomposedPosition, &s.basisTree)
		gotVal := tbl.Evaluate(x, centers, 0)
		assert.Equal(t, wantVal, gotVal, "value mismatch at x=%v", x)

		out := make([]float64, 4)
		require.NoError(t, tbl.EvaluateGradient(x, centers, out))
		assert.Equal(t, gotVal, out[0], "gradient value mismatch at x=%v", x)
		for i := 0; i < 3; i++ {
			var sd scratch
			dBasis := tbl.fillBasis(x, centers, 1<<uint(i), &sd)
			wantDeriv := walkGeneric(tbl.axes, tbl.coefficients, centers, dBasis, &sd.decomposedPosition, &sd.basisTree)
			assert.Equal(t, wantDeriv, out[1+i], "gradient axis %d mismatch at x=%v", i, x)
		}
	}
}

// TestS6BenchmarkNeverHitsOutOfRangeLogicError is SPEC_FULL.md §8 S6.
func TestS6BenchmarkNeverHitsOutOfRangeLogicError(t *testing.T) {
	tbl, err := NewTable(basicConfig(2, 8, 3))
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		tbl.Benchmark(10000, false)
	})
}

// TestPropertyNonNegativity is SPEC_FULL.md §8 property 2: value-basis
// entries are never negative.
func TestPropertyNonNegativity(t *testing.T) {
	knots := clampedKnots(9, 3)
	order := 3
	for _, x := range []float64{0.01, 0.5, 1.3, 2.7, 3.99, 4.5, 5.2} {
		c, ok := searchAxis(&axisMeta{order: order, knots: knots, naxes: 9}, x)
		if !ok {
			continue
		}
		var out [MaxOrder + 1]float64
		basisValues(knots, x, c, order, out[:order+1])
		for m := 0; m <= order; m++ {
			assert.GreaterOrEqual(t, out[m], 0.0, "negative basis value at x=%v m=%d", x, m)
		}
	}
}

// TestPropertyDerivativeSumIsZero is SPEC_FULL.md §8 property 3.
func TestPropertyDerivativeSumIsZero(t *testing.T) {
	knots := clampedKnots(9, 3)
	order := 3
	for _, x := range []float64{0.01, 0.5, 1.3, 2.7, 3.99, 4.5, 5.2} {
		c, ok := searchAxis(&axisMeta{order: order, knots: knots, naxes: 9}, x)
		if !ok {
			continue
		}
		var out [MaxOrder + 1]float64
		basisDerivs(knots, x, c, order, out[:order+1])
		sum := 0.0
		for _, v := range out[:order+1] {
			sum += v
		}
		assert.InDelta(t, 0.0, sum, 1e-9, "derivative basis at x=%v should sum to 0, got %v", x, out[:order+1])
	}
}

// TestPropertySearchResultBracketsX is SPEC_FULL.md §8 property 7.
func TestPropertySearchResultBracketsX(t *testing.T) {
	tbl, err := NewTable(basicConfig(1, 10, 3))
	require.NoError(t, err)
	centers := make([]int, 1)
	for _, x := range []float64{0.01, 1.5, 2.99, 3.0, 4.999, 5.5, 6.0} {
		if !tbl.SearchCenters([]float64{x}, centers) {
			continue
		}
		c := centers[0]
		atLowerClamp := c == tbl.Order(0) && x < tbl.Knot(0, c)
		atUpperClamp := c == tbl.NCoeffsAxis(0)-1 && x >= tbl.Knot(0, tbl.NCoeffsAxis(0))
		if atLowerClamp || atUpperClamp {
			continue
		}
		assert.LessOrEqual(t, tbl.Knot(0, c), x, "x=%v center=%d", x, c)
		assert.Less(t, x, tbl.Knot(0, c+1), "x=%v center=%d", x, c)
	}
}

// TestSearchCentersIsIdempotent is SPEC_FULL.md §8's round-trip property:
// calling SearchCenters twice on the same x yields the same centers.
func TestSearchCentersIsIdempotent(t *testing.T) {
	tbl, err := NewTable(basicConfig(3, 7, 2))
	require.NoError(t, err)
	x := []float64{1.234, 2.718, 0.577}
	first := make([]int, 3)
	second := make([]int, 3)
	require.True(t, tbl.SearchCenters(x, first))
	require.True(t, tbl.SearchCenters(x, second))
	assert.Equal(t, first, second)
}

// TestConstantCoefficientsEvaluateToThatConstantNDimensional generalises S1
// to N dimensions and every derivative mask (the derivative of a constant
// function must be exactly zero on every axis).
func TestConstantCoefficientsEvaluateToThatConstantNDimensional(t *testing.T) {
	const v = 2.5
	cfg := basicConfig(3, 7, 3)
	for i := range cfg.Coefficients {
		cfg.Coefficients[i] = v
	}
	tbl, err := NewTable(cfg)
	require.NoError(t, err)

	x := []float64{1.1, 2.2, 3.3}
	centers := make([]int, 3)
	require.True(t, tbl.SearchCenters(x, centers))

	assert.InDelta(t, v, tbl.Evaluate(x, centers, 0), 1e-6)
	for mask := uint(1); mask < 8; mask++ {
		assert.InDelta(t, 0.0, tbl.Evaluate(x, centers, mask), 1e-6, "mask=%d", mask)
	}
}

func TestPropertyBasisNeverNaNAcrossSpanMidpoints(t *testing.T) {
	tbl, err := NewTable(basicConfig(2, 8, 3))
	require.NoError(t, err)
	centers := make([]int, 2)
	for c0 := tbl.Order(0); c0 < tbl.NCoeffsAxis(0); c0++ {
		for c1 := tbl.Order(1); c1 < tbl.NCoeffsAxis(1); c1++ {
			x0 := (tbl.Knot(0, c0) + tbl.Knot(0, c0+1)) / 2
			x1 := (tbl.Knot(1, c1) + tbl.Knot(1, c1+1)) / 2
			if !tbl.SearchCenters([]float64{x0, x1}, centers) {
				continue
			}
			got := tbl.Evaluate([]float64{x0, x1}, centers, 0)
			assert.False(t, math.IsNaN(got))
		}
	}
}
