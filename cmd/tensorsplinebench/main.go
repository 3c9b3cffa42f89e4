// Command tensorsplinebench drives core.Table.Benchmark from a shell,
// reporting scalar, per-axis-gradient, and combined-gradient evaluation
// rates. Given no -table flag, it benchmarks a synthetic table built from
// -ndim/-naxes/-order so the tool is usable without any persisted data.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/tensorspline/tensorspline/internal/core"
	"github.com/tensorspline/tensorspline/tablefile"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tensorsplinebench:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		tablePath  = flag.String("table", "", "path to a tablefile-format table; if empty, a synthetic table is built")
		ndim       = flag.Int("ndim", 3, "number of axes for the synthetic table (ignored if -table is set)")
		naxes      = flag.Int("naxes", 10, "number of coefficients per axis for the synthetic table (ignored if -table is set)")
		order      = flag.Int("order", 3, "polynomial order for the synthetic table (ignored if -table is set)")
		trialCount = flag.Int("trials", 10000, "number of random evaluation points to time")
		verbose    = flag.Bool("v", true, "print a summary line as Table.Benchmark runs")
	)
	flag.Parse()

	var tbl *core.Table
	if *tablePath != "" {
		f, err := os.Open(*tablePath)
		if err != nil {
			return fmt.Errorf("opening %s: %w", *tablePath, err)
		}
		defer f.Close()
		tbl, err = tablefile.Load(f)
		if err != nil {
			return fmt.Errorf("loading %s: %w", *tablePath, err)
		}
	} else {
		var err error
		tbl, err = synthesizeTable(*ndim, *naxes, *order)
		if err != nil {
			return fmt.Errorf("building synthetic table: %w", err)
		}
	}

	result := tbl.Benchmark(*trialCount, *verbose)
	fmt.Printf("ndim=%d trials=%d\n", tbl.NDim(), *trialCount)
	fmt.Printf("  scalar               %12.0f evals/s\n", result.SingleRate)
	fmt.Printf("  gradient (per-axis)  %12.0f evals/s\n", result.GradientPerAxisRate)
	fmt.Printf("  gradient (combined)  %12.0f evals/s\n", result.GradientCombinedRate)
	return nil
}

func synthesizeTable(ndim, naxes, order int) (*core.Table, error) {
	orders := make([]int, ndim)
	axesN := make([]int, ndim)
	knots := make([][]float64, ndim)
	strides := make([]int, ndim)
	total := 1
	for i := 0; i < ndim; i++ {
		orders[i] = order
		axesN[i] = naxes
		knots[i] = clampedKnots(naxes, order)
		total *= naxes
	}
	stride := 1
	for i := ndim - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= axesN[i]
	}

	rng := rand.New(rand.NewPCG(1, 1))
	coeffs := make([]float32, total)
	for i := range coeffs {
		coeffs[i] = float32(rng.NormFloat64())
	}

	return core.NewTable(core.TableConfig{
		Order:        orders,
		Knots:        knots,
		NAxes:        axesN,
		Strides:      strides,
		Coefficients: coeffs,
	})
}

// clampedKnots builds a standard clamped knot vector over [0, naxes-order]
// with naxes+order+1 entries.
func clampedKnots(naxes, order int) []float64 {
	n := naxes + order + 1
	knots := make([]float64, n)
	for i := 0; i < order+1; i++ {
		knots[i] = 0
		knots[n-1-i] = float64(naxes - order)
	}
	for i := order + 1; i < n-order-1; i++ {
		knots[i] = float64(i - order)
	}
	return knots
}
