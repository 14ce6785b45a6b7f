// Package param describes tunable strategy parameters and generates the
// value combinations an optimization sweep evaluates.
package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SymbolPosition says whether a unit symbol renders before or after a value.
type SymbolPosition string

const (
	SymbolPositionPrefix SymbolPosition = "Prefix"
	SymbolPositionSuffix SymbolPosition = "Suffix"
)

// Symbol is a display unit for a parameter value, such as "%" or "$".
type Symbol struct {
	Symbol   string
	Position SymbolPosition
}

// Parameter declares a named tunable value with its allowed bounds.
// A nil Maximum means the parameter is unbounded above.
type Parameter struct {
	Name    string
	Minimum float64
	Maximum *float64
	Symbol  Symbol
}

// Float returns a pointer to v, for bounded Maximum declarations.
func Float(v float64) *float64 { return &v }

// Validate checks value against the parameter's declared bounds.
func (p Parameter) Validate(value float64) error {
	if value < p.Minimum || (p.Maximum != nil && value > *p.Maximum) {
		return &RangeError{
			Parameter: p.Name,
			Value:     value,
			Minimum:   p.Minimum,
			Maximum:   p.Maximum,
		}
	}
	return nil
}

// Format renders value with the parameter's unit symbol attached.
func (p Parameter) Format(value float64) string {
	v := strconv.FormatFloat(value, 'f', -1, 64)
	if p.Symbol.Position == SymbolPositionPrefix {
		return p.Symbol.Symbol + v
	}
	return v + p.Symbol.Symbol
}

// Range is an inclusive arithmetic sweep over one parameter's values.
type Range struct {
	Minimum float64
	Maximum float64
	Step    float64
}

// Values expands the range into the inclusive sequence from Minimum to
// Maximum stepping by Step. Fractional steps are generated by scaling to
// integers using the operands' decimal precision, so repeated float
// addition cannot accumulate error and drop the final value.
func (r Range) Values() ([]float64, error) {
	if r.Step <= 0 {
		return nil, fmt.Errorf("range step must be positive, got %v", r.Step)
	}
	if r.Minimum > r.Maximum {
		return nil, fmt.Errorf("range minimum %v exceeds maximum %v", r.Minimum, r.Maximum)
	}

	places := decimalPlaces(r.Step)
	if p := decimalPlaces(r.Minimum); p > places {
		places = p
	}
	if p := decimalPlaces(r.Maximum); p > places {
		places = p
	}
	scale := math.Pow(10, float64(places))

	minimum := int64(math.Round(r.Minimum * scale))
	maximum := int64(math.Round(r.Maximum * scale))
	step := int64(math.Round(r.Step * scale))

	values := make([]float64, 0, (maximum-minimum)/step+1)
	for v := minimum; v <= maximum; v += step {
		values = append(values, float64(v)/scale)
	}
	return values, nil
}

func decimalPlaces(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

// Combination assigns a concrete value to every swept parameter name.
type Combination map[string]float64

// Combinations expands named ranges into the full Cartesian product of
// their value sequences. The product is ordered like an odometer: the
// first name varies slowest, the last varies fastest.
func Combinations(names []string, ranges map[string]Range) ([]Combination, error) {
	if len(names) == 0 {
		return nil, nil
	}

	valueLists := make([][]float64, len(names))
	total := 1
	for i, name := range names {
		r, ok := ranges[name]
		if !ok {
			return nil, &RangeError{Parameter: name, Missing: true}
		}
		values, err := r.Values()
		if err != nil {
			return nil, fmt.Errorf("range for %q: %w", name, err)
		}
		valueLists[i] = values
		total *= len(values)
	}

	combinations := make([]Combination, 0, total)
	indexes := make([]int, len(names))
	for {
		combination := make(Combination, len(names))
		for i, name := range names {
			combination[name] = valueLists[i][indexes[i]]
		}
		combinations = append(combinations, combination)

		position := len(indexes) - 1
		for position >= 0 {
			indexes[position]++
			if indexes[position] < len(valueLists[position]) {
				break
			}
			indexes[position] = 0
			position--
		}
		if position < 0 {
			return combinations, nil
		}
	}
}
