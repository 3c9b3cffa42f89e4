package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBenchmarkCompletesWithoutPanic is SPEC_FULL.md §8 S6: running the
// benchmark with a large trial count never trips the in-range search
// failure panic.
func TestBenchmarkCompletesWithoutPanic(t *testing.T) {
	tbl, err := NewTable(basicConfig(3, 7, 3))
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		tbl.Benchmark(10000, false)
	})
}

func TestBenchmarkReturnsPositiveFiniteRates(t *testing.T) {
	tbl, err := NewTable(basicConfig(2, 6, 2))
	require.NoError(t, err)
	result := tbl.Benchmark(200, false)
	for name, rate := range map[string]float64{
		"SingleRate":           result.SingleRate,
		"GradientPerAxisRate":  result.GradientPerAxisRate,
		"GradientCombinedRate": result.GradientCombinedRate,
	} {
		assert.Greater(t, rate, 0.0, name)
		assert.False(t, math.IsInf(rate, 0), "%s is infinite", name)
		assert.False(t, math.IsNaN(rate), "%s is NaN", name)
	}
}

func TestBenchmarkZeroTrialsReturnsZeroValue(t *testing.T) {
	tbl, err := NewTable(basicConfig(1, 6, 2))
	require.NoError(t, err)
	assert.Equal(t, BenchmarkResult{}, tbl.Benchmark(0, false))
}

func TestBenchmarkVerboseDoesNotPanic(t *testing.T) {
	tbl, err := NewTable(basicConfig(2, 6, 2))
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		tbl.Benchmark(5, true)
	})
}
