package param

import "fmt"

// RangeError reports a parameter value or requested sweep range outside a
// parameter's declared bounds, or a required range missing from a sweep.
type RangeError struct {
	Parameter string
	Value     float64
	Minimum   float64
	Maximum   *float64 // nil means unbounded above
	Missing   bool
}

func (e *RangeError) Error() string {
	if e.Missing {
		return fmt.Sprintf("no range supplied for parameter %q", e.Parameter)
	}
	if e.Maximum == nil {
		return fmt.Sprintf("parameter %q value %v is below minimum %v",
			e.Parameter, e.Value, e.Minimum)
	}
	return fmt.Sprintf("parameter %q value %v is outside range [%v, %v]",
		e.Parameter, e.Value, e.Minimum, *e.Maximum)
}

// InvalidParameterError reports a structurally invalid parameter given to a
// strategy constructor, such as a percentage above 100.
type InvalidParameterError struct {
	Parameter string
	Value     float64
	Reason    string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Parameter, e.Value, e.Reason)
}
