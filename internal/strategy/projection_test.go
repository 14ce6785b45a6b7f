package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grid-trade-lab/internal/param"
)

func projectionFixture(t *testing.T) *OptimizationResults {
	t.Helper()

	results := resultsFixture(t) // profit 150 for every combination

	parameters := []param.Parameter{
		{Name: "tradeThreshold", Minimum: 0, Symbol: param.Symbol{Symbol: "%", Position: param.SymbolPositionSuffix}},
		{Name: "tradePercentage", Minimum: 0, Maximum: param.Float(100), Symbol: param.Symbol{Symbol: "%", Position: param.SymbolPositionSuffix}},
	}

	var unsorted []ParameterBacktestResults
	for _, threshold := range []float64{0, 1, 2} {
		for _, percentage := range []float64{0, 10} {
			unsorted = append(unsorted, ParameterBacktestResults{
				ParameterValues: param.Combination{
					"tradeThreshold":  threshold,
					"tradePercentage": percentage,
				},
				BacktestResults: results,
			})
		}
	}

	return &OptimizationResults{
		All:        unsorted,
		Unsorted:   unsorted,
		Parameters: parameters,
		ParameterRanges: map[string]param.Range{
			"tradeThreshold":  {Minimum: 0, Maximum: 2, Step: 1},
			"tradePercentage": {Minimum: 0, Maximum: 10, Step: 10},
		},
	}
}

func TestGridProjection(t *testing.T) {
	projection, err := projectionFixture(t).GridProjection()
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2}, projection.X)
	assert.Equal(t, []float64{0, 10}, projection.Y)
	assert.Equal(t, [][]float64{
		{150, 150},
		{150, 150},
		{150, 150},
	}, projection.Z)
}

func TestScatterProjection(t *testing.T) {
	projection, err := projectionFixture(t).ScatterProjection()
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 1, 1, 2, 2}, projection.X)
	assert.Equal(t, []float64{0, 10, 0, 10, 0, 10}, projection.Y)
	assert.Equal(t, []float64{150, 150, 150, 150, 150, 150}, projection.Z)
}

func TestProjectionsRequireTwoParameters(t *testing.T) {
	results := projectionFixture(t)
	results.Parameters = results.Parameters[:1]

	_, err := results.GridProjection()
	var projErr *UnsupportedProjectionError
	require.ErrorAs(t, err, &projErr)
	assert.Equal(t, 1, projErr.ParameterCount)

	_, err = results.ScatterProjection()
	require.ErrorAs(t, err, &projErr)
}
