package strategy

import (
	"context"
	"sort"

	"grid-trade-lab/internal/param"
)

// OptimizeInput is a BacktestInput plus the value ranges to sweep for
// every parameter the strategy declares.
type OptimizeInput struct {
	BacktestInput
	ParameterRanges map[string]param.Range
}

// ParameterBacktestResults pairs one swept parameter combination with the
// backtest results it produced.
type ParameterBacktestResults struct {
	ParameterValues param.Combination
	BacktestResults *BacktestResults
}

// OptimizationResults holds the outcome of backtesting every parameter
// combination in a sweep.
type OptimizationResults struct {
	// All is sorted by profit descending; ties keep evaluation order.
	All []ParameterBacktestResults
	// Unsorted preserves the original evaluation order, which the chart
	// projections depend on.
	Unsorted []ParameterBacktestResults

	Parameters      []param.Parameter
	ParameterRanges map[string]param.Range
}

// Best returns the most profitable combination.
func (r *OptimizationResults) Best() ParameterBacktestResults {
	return r.All[0]
}

// Worst returns the least profitable combination.
func (r *OptimizationResults) Worst() ParameterBacktestResults {
	return r.All[len(r.All)-1]
}

// Optimize backtests a strategy across the full Cartesian product of the
// supplied parameter ranges and ranks the outcomes by profit.
//
// Every declared parameter must have a range within its declared bounds.
// The price history is resolved once up front and shared read-only across
// all combinations. A failing combination aborts the whole sweep; skipping
// it would corrupt the ranked result set.
func Optimize(ctx context.Context, s Strategy, in OptimizeInput) (*OptimizationResults, error) {
	parameters := s.Parameters()
	if err := validateRanges(parameters, in.ParameterRanges); err != nil {
		return nil, err
	}

	history, err := resolvePriceHistory(ctx, s, in.BacktestInput)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(parameters))
	for i, p := range parameters {
		names[i] = p.Name
	}
	combinations, err := param.Combinations(names, in.ParameterRanges)
	if err != nil {
		return nil, err
	}

	backtestInput := in.BacktestInput
	backtestInput.PriceHistory = history
	backtestInput.StartDate = nil
	backtestInput.EndDate = nil

	unsorted := make([]ParameterBacktestResults, 0, len(combinations))
	for _, combination := range combinations {
		configured, err := s.WithValues(combination)
		if err != nil {
			return nil, err
		}

		results, err := Backtest(ctx, configured, backtestInput)
		if err != nil {
			return nil, err
		}

		unsorted = append(unsorted, ParameterBacktestResults{
			ParameterValues: combination,
			BacktestResults: results,
		})
	}

	all := make([]ParameterBacktestResults, len(unsorted))
	copy(all, unsorted)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].BacktestResults.Profit() > all[j].BacktestResults.Profit()
	})

	return &OptimizationResults{
		All:             all,
		Unsorted:        unsorted,
		Parameters:      parameters,
		ParameterRanges: in.ParameterRanges,
	}, nil
}

// validateRanges checks that every declared parameter has a sweep range
// and that each range stays within the parameter's declared bounds.
func validateRanges(parameters []param.Parameter, ranges map[string]param.Range) error {
	for _, p := range parameters {
		r, ok := ranges[p.Name]
		if !ok {
			return &param.RangeError{Parameter: p.Name, Missing: true}
		}
		if err := p.Validate(r.Minimum); err != nil {
			return err
		}
		if err := p.Validate(r.Maximum); err != nil {
			return err
		}
	}
	return nil
}
