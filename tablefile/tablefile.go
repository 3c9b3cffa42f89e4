// Package tablefile implements a minimal, self-describing binary
// persistence layout for a core.Table (SPEC_FULL.md §6). It stands in for
// the out-of-scope FITS collaborator: the core itself never reads or writes
// anything, it only requires the in-memory TableConfig layout that Load
// reconstructs.
//
// Layout (all integers little-endian, all floats IEEE 754 binary64/32):
//
//	uint32  ndim
//	per axis, ndim times:
//	  uint32   order
//	  uint32   naxes
//	  uint32   stride
//	  uint32   nknots
//	  float64  knots[nknots]
//	uint64  ncoeffs
//	float32 coefficients[ncoeffs]
package tablefile

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tensorspline/tensorspline/internal/core"
)

// Save writes t's full axis metadata and coefficients to w in the layout
// documented above.
func Save(w io.Writer, t *core.Table) error {
	ndim := t.NDim()
	if err := binary.Write(w, binary.LittleEndian, uint32(ndim)); err != nil {
		return fmt.Errorf("tablefile.Save: writing ndim: %w", err)
	}
	for i := 0; i < ndim; i++ {
		nknots := t.NKnots(i)
		header := [4]uint32{uint32(t.Order(i)), uint32(t.NCoeffsAxis(i)), uint32(t.Stride(i)), uint32(nknots)}
		if err := binary.Write(w, binary.LittleEndian, header); err != nil {
			return fmt.Errorf("tablefile.Save: writing axis %d header: %w", i, err)
		}
		knots := make([]float64, nknots)
		for j := 0; j < nknots; j++ {
			knots[j] = t.Knot(i, j)
		}
		if err := binary.Write(w, binary.LittleEndian, knots); err != nil {
			return fmt.Errorf("tablefile.Save: writing axis %d knots: %w", i, err)
		}
	}
	coeffs := t.Coefficients()
	if err := binary.Write(w, binary.LittleEndian, uint64(len(coeffs))); err != nil {
		return fmt.Errorf("tablefile.Save: writing ncoeffs: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, coeffs); err != nil {
		return fmt.Errorf("tablefile.Save: writing coefficients: %w", err)
	}
	return nil
}

// Load reconstructs a *core.Table from r. It returns an error (never a
// panic) for any truncated stream or malformed layout, delegating the
// padding/stride validation itself to core.NewTable.
func Load(r io.Reader) (*core.Table, error) {
	var ndim uint32
	if err := binary.Read(r, binary.LittleEndian, &ndim); err != nil {
		return nil, fmt.Errorf("tablefile.Load: reading ndim: %w", err)
	}

	cfg := core.TableConfig{
		Order:   make([]int, ndim),
		Knots:   make([][]float64, ndim),
		NAxes:   make([]int, ndim),
		Strides: make([]int, ndim),
	}
	for i := 0; i < int(ndim); i++ {
		var header [4]uint32
		if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
			return nil, fmt.Errorf("tablefile.Load: reading axis %d header: %w", i, err)
		}
		order, naxes, stride, nknots := int(header[0]), int(header[1]), int(header[2]), int(header[3])
		knots := make([]float64, nknots)
		if err := binary.Read(r, binary.LittleEndian, knots); err != nil {
			return nil, fmt.Errorf("tablefile.Load: reading axis %d knots: %w", i, err)
		}
		cfg.Order[i] = order
		cfg.NAxes[i] = naxes
		cfg.Strides[i] = stride
		cfg.Knots[i] = knots
	}

	var ncoeffs uint64
	if err := binary.Read(r, binary.LittleEndian, &ncoeffs); err != nil {
		return nil, fmt.Errorf("tablefile.Load: reading ncoeffs: %w", err)
	}
	coeffs := make([]float32, ncoeffs)
	if err := binary.Read(r, binary.LittleEndian, coeffs); err != nil {
		return nil, fmt.Errorf("tablefile.Load: reading coefficients: %w", err)
	}
	cfg.Coefficients = coeffs

	return core.NewTable(cfg)
}
