// Package gomlx implements batched, N-dimensional tensor-product B-spline
// evaluation as a GoMLX computation graph. It generalises the teacher's
// single-axis recursive basis-function graph (github.com/gomlx/bsplines/gomlx)
// to the tensor-product case: one recursive basis graph per axis, folded
// together via a sequence of pairwise Einsum contractions, and finally
// contracted against the coefficient tensor.
//
// It is meant for batches of query points, useful e.g. to implement
// calibration layers for neural-network inputs, or "KAN - Kolmogorov-Arnold
// Networks" style models, the same motivating use case as the teacher.
package gomlx

import (
	"strings"

	"github.com/gomlx/exceptions"
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/types/shapes"
)

// axisLetters supplies one Einsum subscript letter per axis, reserving "z"
// for the batch dimension and "o" for an optional trailing output dimension
// (SPEC_FULL.md's tensor-product table has at most core.MaxDims=8 axes, well
// within the alphabet).
const axisLetters = "abcdefgh"

// Evaluate creates the computation graph to evaluate an N-dimensional
// tensor-product B-spline table across a batch of query points.
//
// Parameters:
//   - knots: per-axis clamped knot vector, len(knots) == ndim.
//   - order: per-axis polynomial order, len(order) == ndim.
//   - inputs: tensor (graph.Node) with shape [batchSize, ndim]: one N-D query
//     point per batch example. If inputs is rank 1 (shape [ndim]), it is
//     treated as a single point and expanded to [1, ndim].
//   - coefficients: tensor (graph.Node) with shape [naxes_0, ..., naxes_{N-1}]
//     (single output) or [naxes_0, ..., naxes_{N-1}, numOutputs] (multiple
//     outputs), where naxes_i == len(knots[i]) - order[i] - 1.
//
// The returned Node has shape [batchSize] (single output) or
// [batchSize, numOutputs] (multiple outputs). If inputs was rank 1 and there
// is a single output, the result is reshaped to a scalar.
func Evaluate(knots [][]float64, order []int, inputs, coefficients *Node) *Node {
	ndim := len(order)
	if len(knots) != ndim {
		exceptions.Panicf("gomlx.Evaluate() requires len(knots)=%d to match len(order)=%d", len(knots), ndim)
	}
	if ndim == 0 || ndim > len(axisLetters) {
		exceptions.Panicf("gomlx.Evaluate() requires 1 <= ndim <= %d, got %d", len(axisLetters), ndim)
	}

	inputWasRank1 := inputs.Rank() == 1
	if inputWasRank1 {
		inputs = ExpandDims(inputs, 0) // [1, ndim]
	}
	if inputs.Rank() != 2 || inputs.Shape().Dimensions[1] != ndim {
		exceptions.Panicf("gomlx.Evaluate() expects inputs of shape [batchSize, ndim=%d] or [ndim], got %s", ndim, inputs.Shape())
	}

	hasOutputAxis := coefficients.Rank() == ndim+1
	if !hasOutputAxis && coefficients.Rank() != ndim {
		exceptions.Panicf("gomlx.Evaluate() expects coefficients of rank ndim=%d or ndim+1, got shape %s", ndim, coefficients.Shape())
	}
	for i := 0; i < ndim; i++ {
		naxes := len(knots[i]) - order[i] - 1
		if coefficients.Shape().Dimensions[i] != naxes {
			exceptions.Panicf("gomlx.Evaluate() axis %d: coefficients dimension %d, want naxes=len(knots)-order-1=%d", i, coefficients.Shape().Dimensions[i], naxes)
		}
	}
	if inputs.DType() != coefficients.DType() {
		exceptions.Panicf("gomlx.Evaluate() requires inputs.dtype=%s and coefficients.dtype=%s to match", inputs.DType(), coefficients.DType())
	}

	var joint *Node
	var jointLetters string
	for i := 0; i < ndim; i++ {
		column := Reshape(Slice(inputs, AxisRange(), AxisRange(i, i+1)), -1, 1) // [batchSize, 1]
		basis := axisBasis(column, knots[i], order[i], inputs.DType())          // [batchSize, naxes_i]
		letter := axisLetters[i : i+1]
		if joint == nil {
			joint = basis
			jointLetters = letter
		} else {
			equation := "z" + jointLetters + ",z" + letter + "->z" + jointLetters + letter
			joint = Einsum(equation, joint, basis)
			jointLetters += letter
		}
	}

	var equation string
	if hasOutputAxis {
		equation = "z" + jointLetters + "," + jointLetters + "o->zo"
	} else {
		equation = "z" + jointLetters + "," + jointLetters + "->z"
	}
	out := Einsum(equation, joint, coefficients)
	if inputWasRank1 && !hasOutputAxis {
		out = Reshape(out) // reshape [1] to scalar
	}
	return out
}

// axisBasis builds the recursive basis-function graph for one axis, exactly
// the teacher's evalData.basisFunction idiom (graph-level And/Where/Shift
// zero-denominator guards), parametrised by that axis's knots/order instead
// of a single shared *bsplines.BSpline. column has shape [batchSize, 1];
// the returned Node has shape [batchSize, naxes] where naxes = len(knotValues)
// - order - 1 (the trailing order padding slots are dropped, as in the
// teacher).
func axisBasis(column *Node, knotValues []float64, order int, dtype shapes.DType) *Node {
	g := column.Graph()
	knots := ExpandDims(ConstAsDType(g, dtype, knotValues), 0) // [1, numKnots]
	naxes := len(knotValues) - order - 1

	basisFull := recursiveBasis(column, knots, dtype, order)
	return Slice(basisFull, AxisRange(), AxisRange(0, naxes))
}

// recursiveBasis mirrors the teacher's evalData.basisFunction: degree-0 is an
// indicator of knot-interval membership, and each higher degree blends two
// lower-degree terms via the de Boor recurrence, with a Where-guarded zero
// substituted wherever a denominator would otherwise vanish (coincident
// knots).
func recursiveBasis(column, knots *Node, dtype shapes.DType, degree int) *Node {
	if degree == 0 {
		cond := And(
			GreaterOrEqual(column, knots),
			ShiftLeft(LessThan(column, knots), 1, 0.0))
		return ConvertType(cond, dtype)
	}

	lower := recursiveBasis(column, knots, dtype, degree-1)

	knotsDelta := Sub(Shift(knots, -1, ShiftDirLeft, degree), knots)
	knotsDeltaIsZero := Equal(knotsDelta, ZerosLike(knotsDelta))
	knotsDelta = Where(knotsDeltaIsZero, OnesLike(knotsDelta), knotsDelta)
	zeros := ZerosLike(lower)
	broadcastToBasis := func(x *Node) *Node { return BroadcastToDims(x, zeros.Shape().Dimensions...) }

	weightsLeft := Div(Sub(column, knots), knotsDelta)
	weightsLeft = Where(broadcastToBasis(knotsDeltaIsZero), zeros, weightsLeft)
	left := Mul(weightsLeft, lower)

	weightsRight := Sub(Shift(knots, -1, ShiftDirLeft, degree+1), column)
	weightsRight = Div(weightsRight, Shift(knotsDelta, -1, ShiftDirLeft, 1))
	weightsRight = Where(
		broadcastToBasis(Shift(knotsDeltaIsZero, -1, ShiftDirLeft, 1)),
		zeros, weightsRight)
	right := Mul(weightsRight, Shift(lower, -1, ShiftDirLeft, 1))

	return Add(left, right)
}
