// Package plotly implements diagnostic plotting for a tensor-product
// B-spline table in Jupyter notebooks, using [github.com/janpfeifer/gonb]
// (notebook kernel) and the Plotly [github.com/MetalBlueberry/go-plotly]
// library, mirroring the teacher's plotly sub-package.
//
// Since a table is N-dimensional and a 2-D figure can only show one
// independent axis at a time, Config plots one chosen axis's basis functions
// and table value (holding every other axis's coordinate fixed), plus a bar
// chart of the three rates returned by core.Table.Benchmark.
package plotly

import (
	"fmt"

	grob "github.com/MetalBlueberry/go-plotly/graph_objects"
	"github.com/janpfeifer/gonb/gonbui/plotly"

	"github.com/tensorspline/tensorspline/internal/core"
)

// Config holds a plot configuration that can be changed. Once finished, call
// Plot to actually plot.
type Config struct {
	table         *core.Table
	axis          int
	fixed         []float64
	numPlotPoints int
	marginRatio   float64
	trialCount    int
}

// New returns a Config plotting table along axis, holding every other axis's
// coordinate at the value given in fixed (len(fixed) == table.NDim(); the
// entry at index axis is ignored).
func New(table *core.Table, axis int, fixed []float64) *Config {
	return &Config{
		table:         table,
		axis:          axis,
		fixed:         fixed,
		numPlotPoints: 1000,
		marginRatio:   0.1,
		trialCount:    1000,
	}
}

// WithNumPlotPoints sets the number of plot points to evaluate along the
// chosen axis. Default is 1000.
func (c *Config) WithNumPlotPoints(numPlotPoints int) *Config {
	if numPlotPoints < 2 {
		numPlotPoints = 2
	}
	c.numPlotPoints = numPlotPoints
	return c
}

// WithMargin defines how much space (relative to the chosen axis's extent)
// to plot beyond its boundaries. Defaults to 0.1.
func (c *Config) WithMargin(marginRatio float64) *Config {
	if marginRatio < 0 {
		marginRatio = 0
	}
	c.marginRatio = marginRatio
	return c
}

// WithTrialCount sets the number of trials passed to core.Table.Benchmark
// for the rate bar chart. Defaults to 1000.
func (c *Config) WithTrialCount(trialCount int) *Config {
	if trialCount < 1 {
		trialCount = 1
	}
	c.trialCount = trialCount
	return c
}

// Plot using the current configuration. It returns an error if plotting
// failed for some reason.
func (c *Config) Plot() error {
	axis := c.axis
	order := c.table.Order(axis)
	naxes := c.table.NCoeffsAxis(axis)
	knots := make([]float64, c.table.NKnots(axis))
	for j := range knots {
		knots[j] = c.table.Knot(axis, j)
	}

	first, last := c.table.LowerExtent(axis), c.table.UpperExtent(axis)
	delta := last - first
	first, last = first-c.marginRatio*delta, last+c.marginRatio*delta

	x := make([]float64, c.numPlotPoints)
	tableY := make([]float64, c.numPlotPoints)
	point := append([]float64(nil), c.fixed...)
	centers := make([]int, c.table.NDim())
	for i := range x {
		x[i] = first + (last-first)*float64(i)/float64(c.numPlotPoints-1)
		point[axis] = x[i]
		if c.table.SearchCenters(point, centers) {
			tableY[i] = c.table.Evaluate(point, centers, 0)
		} else {
			tableY[i] = 0
		}
	}

	basisPlots := make([][]float64, naxes)
	for idx := range basisPlots {
		basisPlot := make([]float64, c.numPlotPoints)
		for i := range x {
			basisPlot[i] = core.BasisFunction(knots, idx, order, x[i])
		}
		basisPlots[idx] = basisPlot
	}

	fig := &grob.Fig{
		Data: grob.Traces{
			&grob.Bar{
				Name:       fmt.Sprintf("Table value (axis %d)", axis),
				X:          x,
				Y:          tableY,
				Width:      2.0,
				Showlegend: grob.True,
			},
		},
		Layout: &grob.Layout{
			Title: &grob.LayoutTitle{
				Text: fmt.Sprintf("Tensor-product B-spline table, axis %d", axis),
			},
			Legend: &grob.LayoutLegend{},
		},
	}
	for idx, basisPlot := range basisPlots {
		fig.Data = append(fig.Data,
			&grob.Bar{
				Name:       fmt.Sprintf("Basis(idx=%d, order=%d)", idx, order),
				X:          x,
				Y:          basisPlot,
				Showlegend: grob.True,
				Width:      0.5,
				Visible:    grob.BarVisibleLegendonly,
			},
		)
	}

	result := c.table.Benchmark(c.trialCount, false)
	rateFig := &grob.Fig{
		Data: grob.Traces{
			&grob.Bar{
				Name: "Evaluation rate",
				X:    []string{"scalar", "gradient (per-axis)", "gradient (combined)"},
				Y:    []float64{result.SingleRate, result.GradientPerAxisRate, result.GradientCombinedRate},
			},
		},
		Layout: &grob.Layout{
			Title: &grob.LayoutTitle{Text: "Evaluation rate (evaluations/second)"},
		},
	}

	if err := plotly.DisplayFig(fig); err != nil {
		return fmt.Errorf("plotly.DisplayFig failed: %w", err)
	}
	if err := plotly.DisplayFig(rateFig); err != nil {
		return fmt.Errorf("plotly.DisplayFig failed: %w", err)
	}
	return nil
}
