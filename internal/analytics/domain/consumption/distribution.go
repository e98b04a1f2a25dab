package consumption

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	ingestion "energy-dashboard/internal/ingestion/domain"
)

// OutlierFactor scales the interquartile range for the Tukey fences.
const OutlierFactor = 1.5

// MonthDistribution summarizes every value of one calendar month, enough to
// draw a box plot. Values are sorted ascending.
type MonthDistribution struct {
	Month      int
	Label      string
	Rows       int
	Samples    int
	Min        Metric
	Q1         Metric
	Median     Metric
	Q3         Metric
	Max        Metric
	Mean       Metric
	LowerFence Metric
	UpperFence Metric
	Outliers   []float64
	Values     []float64
}

// IQR returns Q3 - Q1.
func (d MonthDistribution) IQR() Metric {
	if !d.Q1.Defined || !d.Q3.Defined {
		return Undefined()
	}
	return Value(d.Q3.Value - d.Q1.Value)
}

// MonthlyDistribution groups rows by calendar month (1..12) across years.
func MonthlyDistribution(rows []ingestion.Row, col int) []MonthDistribution {
	if len(rows) == 0 {
		return nil
	}
	var counts [13]int
	var values [13][]float64
	for _, row := range rows {
		counts[row.Month]++
		if v := row.Value(col); v.Valid {
			values[row.Month] = append(values[row.Month], v.Float64)
		}
	}

	out := make([]MonthDistribution, 0, 12)
	for month := 1; month <= 12; month++ {
		if counts[month] == 0 {
			continue
		}
		out = append(out, distribution(month, counts[month], values[month]))
	}
	return out
}

func distribution(month, rows int, values []float64) MonthDistribution {
	d := MonthDistribution{
		Month:      month,
		Label:      time.Month(month).String(),
		Rows:       rows,
		Samples:    len(values),
		Min:        Undefined(),
		Q1:         Undefined(),
		Median:     Undefined(),
		Q3:         Undefined(),
		Max:        Undefined(),
		Mean:       Undefined(),
		LowerFence: Undefined(),
		UpperFence: Undefined(),
	}
	if len(values) == 0 {
		return d
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	d.Values = sorted

	d.Min = Value(floats.Min(sorted))
	d.Max = Value(floats.Max(sorted))
	d.Mean = Value(stat.Mean(sorted, nil))
	d.Q1 = Value(stat.Quantile(0.25, stat.LinInterp, sorted, nil))
	d.Median = Value(stat.Quantile(0.5, stat.LinInterp, sorted, nil))
	d.Q3 = Value(stat.Quantile(0.75, stat.LinInterp, sorted, nil))

	iqr := d.Q3.Value - d.Q1.Value
	d.LowerFence = Value(d.Q1.Value - OutlierFactor*iqr)
	d.UpperFence = Value(d.Q3.Value + OutlierFactor*iqr)
	for _, v := range sorted {
		if v < d.LowerFence.Value || v > d.UpperFence.Value {
			d.Outliers = append(d.Outliers, v)
		}
	}
	return d
}
