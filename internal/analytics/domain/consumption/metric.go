package consumption

import (
	"math"
	"strconv"
)

// NotAvailable is how undefined metrics are rendered.
const NotAvailable = "N/A"

// Metric is a scalar that may be undefined, e.g. the mean of an empty group or
// a load factor with zero peak. Undefined metrics carry NaN.
type Metric struct {
	Value   float64
	Defined bool
}

// Value builds a defined metric. NaN and infinities are undefined.
func Value(v float64) Metric {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined()
	}
	return Metric{Value: v, Defined: true}
}

// Undefined returns the undefined metric.
func Undefined() Metric {
	return Metric{Value: math.NaN()}
}

// Float returns the value, NaN when undefined.
func (m Metric) Float() float64 {
	if !m.Defined {
		return math.NaN()
	}
	return m.Value
}

// Format renders the value with prec decimals, or N/A.
func (m Metric) Format(prec int) string {
	if !m.Defined {
		return NotAvailable
	}
	return strconv.FormatFloat(m.Value, 'f', prec, 64)
}

// String renders the value with two decimals.
func (m Metric) String() string { return m.Format(2) }
