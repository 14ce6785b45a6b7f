package strategy

import "fmt"

// UnsupportedProjectionError reports a chart projection requested for a
// parameter count it cannot represent.
type UnsupportedProjectionError struct {
	Kind           string
	ParameterCount int
}

func (e *UnsupportedProjectionError) Error() string {
	return fmt.Sprintf("%s projection requires exactly 2 parameters, got %d",
		e.Kind, e.ParameterCount)
}

// GridProjection shapes sweep results for contour and surface charts:
// X and Y are the unique values of the first and second parameter, and
// Z[i][j] is the profit at X[i], Y[j].
type GridProjection struct {
	X []float64
	Y []float64
	Z [][]float64
}

// ScatterProjection shapes sweep results for 3D scatter charts: parallel
// arrays of (param1, param2, profit) triples, one per combination.
type ScatterProjection struct {
	X []float64
	Y []float64
	Z []float64
}

// GridProjection projects the unsorted results into a profit grid indexed
// by the two swept parameters, row-major by the first. Requires exactly
// two parameters.
func (r *OptimizationResults) GridProjection() (*GridProjection, error) {
	if len(r.Parameters) != 2 {
		return nil, &UnsupportedProjectionError{Kind: "grid", ParameterCount: len(r.Parameters)}
	}

	first := r.Parameters[0].Name
	second := r.Parameters[1].Name

	projection := &GridProjection{
		X: r.uniqueParameterValues(first),
		Y: r.uniqueParameterValues(second),
	}

	// Combinations are generated odometer-style with the first parameter
	// varying slowest, so each run of equal first-parameter values forms
	// one row of the grid.
	var row []float64
	for i, result := range r.Unsorted {
		x := result.ParameterValues[first]
		if i > 0 && x != r.Unsorted[i-1].ParameterValues[first] {
			projection.Z = append(projection.Z, row)
			row = nil
		}
		row = append(row, result.BacktestResults.Profit())
	}
	projection.Z = append(projection.Z, row)

	return projection, nil
}

// ScatterProjection projects the unsorted results into parallel value and
// profit arrays. Requires exactly two parameters.
func (r *OptimizationResults) ScatterProjection() (*ScatterProjection, error) {
	if len(r.Parameters) != 2 {
		return nil, &UnsupportedProjectionError{Kind: "scatter", ParameterCount: len(r.Parameters)}
	}

	first := r.Parameters[0].Name
	second := r.Parameters[1].Name

	projection := &ScatterProjection{
		X: make([]float64, 0, len(r.Unsorted)),
		Y: make([]float64, 0, len(r.Unsorted)),
		Z: make([]float64, 0, len(r.Unsorted)),
	}
	for _, result := range r.Unsorted {
		projection.X = append(projection.X, result.ParameterValues[first])
		projection.Y = append(projection.Y, result.ParameterValues[second])
		projection.Z = append(projection.Z, result.BacktestResults.Profit())
	}

	return projection, nil
}

func (r *OptimizationResults) uniqueParameterValues(name string) []float64 {
	seen := make(map[float64]bool)
	var values []float64
	for _, result := range r.Unsorted {
		v := result.ParameterValues[name]
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	return values
}
