// Package core implements the evaluation core of a tensor-product B-spline
// surface library: knot search, basis evaluation, the N-dimensional tensor
// walker, and the scalar/gradient evaluators and dispatch table built on top
// of them. It never reads or writes persisted tables (see the sibling
// tablefile package) and never fits or convolves coefficients.
package core

import (
	"fmt"
	"sync/atomic"

	"github.com/gomlx/exceptions"
)

// axisMeta holds one axis's immutable metadata: its order, its (already
// padded) knot storage, the number of basis functions/coefficients along it,
// and its stride in the flat coefficient array.
type axisMeta struct {
	order  int
	knots  []float64
	naxes  int
	stride int
}

func (a *axisMeta) lower() float64 { return a.knots[0] }
func (a *axisMeta) upper() float64 { return at(a.knots, -1) }

var tableIDCounter atomic.Uint64

// Table owns a tensor-product B-spline surface's knots, coefficients, and
// per-axis metadata. It is immutable after construction for the purposes of
// evaluation (SPEC_FULL.md §3): no method here ever mutates coefficients or
// knots, and no lock is taken internally, since synchronisation is the
// caller's responsibility (SPEC_FULL.md §5).
type Table struct {
	id           uint64
	ndim         int
	axes         []axisMeta
	coefficients []float32
	dispatch     dispatchKey
}

// TableConfig is the builder-supplied description of a table's geometry and
// data, consumed by NewTable. It mirrors the "Table construction" collaborator
// interface of SPEC_FULL.md §6: callers (typically the tablefile package)
// supply per-axis order, padded knots, axis counts, strides, and the flat
// coefficient array.
type TableConfig struct {
	// Order holds the polynomial order k for each axis.
	Order []int
	// Knots holds the padded knot storage for each axis; per axis i,
	// len(Knots[i]) must equal NAxes[i]+Order[i]+1.
	Knots [][]float64
	// NAxes holds the number of basis functions (== coefficients) along
	// each axis.
	NAxes []int
	// Strides holds the flat-array stride for each axis; Strides[len-1]
	// must be 1 and Strides[i-1] must equal Strides[i]*NAxes[i].
	Strides []int
	// Coefficients is the flat, row-major (last axis fastest) coefficient
	// array, of length the product of NAxes.
	Coefficients []float32
}

// NewTable validates cfg and constructs a Table. It returns ErrMalformedTable
// (wrapped with details) rather than panicking, since a malformed table
// typically reflects corrupt persisted data rather than a programmer
// mistake (SPEC_FULL.md §7). No partial Table is ever returned alongside a
// non-nil error.
func NewTable(cfg TableConfig) (*Table, error) {
	ndim := len(cfg.Order)
	if ndim < 1 {
		return nil, fmt.Errorf("%w: ndim must be at least 1, got %d", ErrMalformedTable, ndim)
	}
	if ndim > MaxDims {
		return nil, fmt.Errorf("%w: ndim=%d exceeds the compiled-in MaxDims=%d", ErrMalformedTable, ndim, MaxDims)
	}
	if len(cfg.Knots) != ndim || len(cfg.NAxes) != ndim || len(cfg.Strides) != ndim {
		return nil, fmt.Errorf("%w: Order/Knots/NAxes/Strides must all have length ndim=%d", ErrMalformedTable, ndim)
	}

	axes := make([]axisMeta, ndim)
	total := 1
	for i := 0; i < ndim; i++ {
		order := cfg.Order[i]
		if order < 0 || order > MaxOrder {
			return nil, fmt.Errorf("%w: axis %d order=%d out of supported range [0,%d]", ErrMalformedTable, i, order, MaxOrder)
		}
		knots := cfg.Knots[i]
		naxes := cfg.NAxes[i]
		if naxes < order+1 {
			return nil, fmt.Errorf("%w: axis %d has naxes=%d, need at least order+1=%d", ErrMalformedTable, i, naxes, order+1)
		}
		// Resolved open question: nknots[i] is taken to be
		// len(Knots[i]) itself (the full, already-padded storage), giving
		// the standard clamped-knot-count identity naxes+order+1==nknots,
		// rather than the distilled spec's literal "nknots+2*order" phrasing,
		// which this repo could not reconcile without access to original
		// source and therefore treats as the same total expressed
		// differently.
		if len(knots) != naxes+order+1 {
			return nil, fmt.Errorf("%w: axis %d has %d knots, want naxes+order+1=%d", ErrMalformedTable, i, len(knots), naxes+order+1)
		}
		for j := 1; j < len(knots); j++ {
			if knots[j] < knots[j-1] {
				return nil, fmt.Errorf("%w: axis %d knots are not non-decreasing at index %d", ErrMalformedTable, i, j)
			}
		}
		axes[i] = axisMeta{order: order, knots: knots, naxes: naxes, stride: cfg.Strides[i]}
		total *= naxes
	}
	if axes[ndim-1].stride != 1 {
		return nil, fmt.Errorf("%w: innermost axis stride must be 1, got %d", ErrMalformedTable, axes[ndim-1].stride)
	}
	for i := ndim - 1; i > 0; i-- {
		want := axes[i].stride * axes[i].naxes
		if axes[i-1].stride != want {
			return nil, fmt.Errorf("%w: axis %d stride=%d, want strides[%d]*naxes[%d]=%d", ErrMalformedTable, i-1, axes[i-1].stride, i, i, want)
		}
	}
	if len(cfg.Coefficients) != total {
		return nil, fmt.Errorf("%w: coefficients has length %d, want product(naxes)=%d", ErrMalformedTable, len(cfg.Coefficients), total)
	}

	t := &Table{
		id:           tableIDCounter.Add(1),
		ndim:         ndim,
		axes:         axes,
		coefficients: cfg.Coefficients,
	}
	t.dispatch = computeDispatch(axes)
	return t, nil
}

// NDim returns the number of axes N.
func (t *Table) NDim() int { return t.ndim }

// Order returns the polynomial order of axis i.
func (t *Table) Order(i int) int { return t.axes[i].order }

// NKnots returns the number of stored knots on axis i.
func (t *Table) NKnots(i int) int { return len(t.axes[i].knots) }

// Knot returns the j-th stored knot of axis i.
func (t *Table) Knot(i, j int) float64 { return t.axes[i].knots[j] }

// LowerExtent returns the lower bound of the half-open valid interval on
// axis i.
func (t *Table) LowerExtent(i int) float64 { return t.axes[i].lower() }

// UpperExtent returns the upper bound of the half-open valid interval on
// axis i (inclusive, per the left-open/right-closed convention).
func (t *Table) UpperExtent(i int) float64 { return t.axes[i].upper() }

// NCoeffs returns the total number of coefficients.
func (t *Table) NCoeffs() int { return len(t.coefficients) }

// NCoeffsAxis returns the number of basis functions/coefficients along axis i.
func (t *Table) NCoeffsAxis(i int) int { return t.axes[i].naxes }

// Stride returns the flat-array stride of axis i.
func (t *Table) Stride(i int) int { return t.axes[i].stride }

// Coefficients returns the raw, flat, row-major coefficient slice. The core
// never copies it; callers must not mutate it concurrently with evaluation.
func (t *Table) Coefficients() []float32 { return t.coefficients }

// requirePoint panics via exceptions.Panicf if x doesn't have exactly ndim
// coordinates; this is a programmer error (a caller-supplied slice length
// mismatch), not a data error, so it follows the teacher's Panicf idiom
// rather than returning an error.
func (t *Table) requirePoint(x []float64, name string) {
	if len(x) != t.ndim {
		exceptions.Panicf("tensorspline: %s expects len(x)==ndim=%d, got %d", name, t.ndim, len(x))
	}
}
