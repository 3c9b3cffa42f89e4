package core

import "github.com/gomlx/exceptions"

// dispatchKeyKind tags which family of tensor-walker routine a dispatchKey
// selects (SPEC_FULL.md §4.6, §9: "model as a tagged variant... store the
// selection on the table after construction").
type dispatchKeyKind uint8

const (
	dispatchGeneric dispatchKeyKind = iota
	dispatchByDim
	dispatchByDimOrder
)

// dispatchKey is the tagged-union selector for which tensor-walker routine to
// use. It carries no function pointers, only the selection itself, and is
// trivially copyable.
type dispatchKey struct {
	kind  dispatchKeyKind
	ndim  int
	order int // only meaningful when kind == dispatchByDimOrder
}

// minSpecialDims and maxSpecialDims bound the N for which a dimension- or
// (dimension,order)-specialised routine exists (SPEC_FULL.md §4.6: N in
// [2,8]). N==1 is deliberately excluded: see the "1-D specialisation" open
// question in SPEC_FULL.md §9 — it always falls back to the generic walker.
const (
	minSpecialDims = 2
	maxSpecialDims = 8
)

// specialOrders lists the orders for which a (dim,order) pair routine is
// available, per SPEC_FULL.md §4.6.
var specialOrders = map[int]bool{2: true, 3: true}

// unrolledDimOrders lists the (dim,order) pairs that this repo fully hand-
// unrolls (see specialized.go and DESIGN.md): N in [2,4], order in {2,3}.
// The remaining (dim,order) pairs in the spec's nominal [2,8]x{2,3} range
// (N in [5,8]) go through walkConstDims, which for those N is walkGeneric
// itself: no routine specialised on N or on order runs for them.
func hasUnrolledDimOrder(ndim, order int) bool {
	return ndim >= 2 && ndim <= 4 && (order == 2 || order == 3)
}

// computeDispatch inspects axes once, at table-construction time, and picks
// the most specialised routine available (SPEC_FULL.md §4.6).
func computeDispatch(axes []axisMeta) dispatchKey {
	ndim := len(axes)
	if ndim < minSpecialDims || ndim > maxSpecialDims {
		return dispatchKey{kind: dispatchGeneric}
	}
	uniformOrder := axes[0].order
	uniform := true
	for i := 1; i < ndim; i++ {
		if axes[i].order != uniformOrder {
			uniform = false
			break
		}
	}
	if uniform && specialOrders[uniformOrder] {
		return dispatchKey{kind: dispatchByDimOrder, ndim: ndim, order: uniformOrder}
	}
	return dispatchKey{kind: dispatchByDim, ndim: ndim}
}

// Handle is the "fast evaluation token" of SPEC_FULL.md §3: an opaque,
// immutable, trivially-copyable value bound to the Table it was derived
// from. It exposes the same dispatch choice as the table itself, as an
// explicit value a caller can hold. EvaluateWithHandle still performs the
// same point-length check as Table.Evaluate, plus a check that the handle
// came from that table.
type Handle struct {
	key     dispatchKey
	tableID uint64
}

// Handle returns a Handle bound to t.
func (t *Table) Handle() Handle {
	return Handle{key: t.dispatch, tableID: t.id}
}

// checkOrigin panics (InvalidHandle, SPEC_FULL.md §7) if h was not derived
// from t. This is a programmer error: handles are not safe to use against a
// table other than the one they came from.
func (h Handle) checkOrigin(t *Table) {
	if h.tableID != t.id {
		exceptions.Panicf("tensorspline: %v", ErrInvalidHandle)
	}
}

// walkDispatch runs the tensor walk selected by key, falling back to the
// generic walker for any (ndim,order) combination this repo hasn't hand-
// unrolled. Every branch must produce bit-identical results to walkGeneric
// for the same inputs (SPEC_FULL.md §4.6, §8 property 6).
func walkDispatch(key dispatchKey, axes []axisMeta, coeffs []float32, centers []int, basis localBasis2D, pos *[MaxDims]int, tree *[MaxDims + 1]float64) float64 {
	switch key.kind {
	case dispatchByDimOrder:
		if hasUnrolledDimOrder(key.ndim, key.order) {
			if f := unrolledDimOrder(key.ndim, key.order); f != nil {
				return f(axes, coeffs, centers, basis)
			}
		}
		return walkConstDims(key.ndim, axes, coeffs, centers, basis, pos, tree)
	case dispatchByDim:
		return walkConstDims(key.ndim, axes, coeffs, centers, basis, pos, tree)
	default:
		return walkGeneric(axes, coeffs, centers, basis, pos, tree)
	}
}
