package consumption

import (
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	ingestion "energy-dashboard/internal/ingestion/domain"
)

// GroupMean is the mean consumption of one group of rows. Rows counts every
// row in the group, Samples only those with a value.
type GroupMean struct {
	Key     int
	Label   string
	Rows    int
	Samples int
	Mean    Metric
}

// KPIs are the headline figures of a window.
type KPIs struct {
	Rows       int
	Samples    int
	Average    Metric
	Peak       Metric
	LoadFactor Metric
}

var weekdayLabels = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayLabel names a Monday = 0 day index.
func WeekdayLabel(day int) string {
	if day < 0 || day >= len(weekdayLabels) {
		return strconv.Itoa(day)
	}
	return weekdayLabels[day]
}

// Filter returns the rows whose date lies inside the window.
func Filter(rows []ingestion.Row, window Window) []ingestion.Row {
	if window.Empty() {
		return nil
	}
	out := make([]ingestion.Row, 0, len(rows))
	for _, row := range rows {
		if window.Contains(row.Date) {
			out = append(out, row)
		}
	}
	return out
}

// Values returns the non-null values of column col.
func Values(rows []ingestion.Row, col int) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v := row.Value(col); v.Valid {
			values = append(values, v.Float64)
		}
	}
	return values
}

// ComputeKPIs returns average, peak and load factor of column col. Load factor
// is undefined when there is no value or the peak is zero.
func ComputeKPIs(rows []ingestion.Row, col int) KPIs {
	values := Values(rows, col)
	kpis := KPIs{
		Rows:       len(rows),
		Samples:    len(values),
		Average:    Undefined(),
		Peak:       Undefined(),
		LoadFactor: Undefined(),
	}
	if len(values) == 0 {
		return kpis
	}
	kpis.Average = Value(stat.Mean(values, nil))
	kpis.Peak = Value(floats.Max(values))
	if kpis.Average.Defined && kpis.Peak.Defined && kpis.Peak.Value != 0 {
		kpis.LoadFactor = Value(kpis.Average.Value / kpis.Peak.Value * 100)
	}
	return kpis
}

// DailyTrend groups rows by calendar date. Keys are YYYYMMDD.
func DailyTrend(rows []ingestion.Row, col int) []GroupMean {
	labels := make(map[int]string)
	return groupMeans(rows, col, func(row ingestion.Row) int {
		key := row.Date.Year*10000 + int(row.Date.Month)*100 + row.Date.Day
		if _, ok := labels[key]; !ok {
			labels[key] = row.Date.String()
		}
		return key
	}, func(key int) string { return labels[key] })
}

// HourlyProfile groups rows by hour of day. Hours without rows are absent.
func HourlyProfile(rows []ingestion.Row, col int) []GroupMean {
	return groupMeans(rows, col, func(row ingestion.Row) int { return row.Hour }, func(hour int) string {
		return time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC).Format("15:04")
	})
}

// WeekdayProfile groups rows by day of week, Monday first.
func WeekdayProfile(rows []ingestion.Row, col int) []GroupMean {
	return groupMeans(rows, col, func(row ingestion.Row) int { return row.DayOfWeek }, WeekdayLabel)
}

// YearlyComparison groups rows by year. It returns nil unless the rows span
// at least two distinct years.
func YearlyComparison(rows []ingestion.Row, col int) []GroupMean {
	groups := groupMeans(rows, col, func(row ingestion.Row) int { return row.Year }, strconv.Itoa)
	if len(groups) < 2 {
		return nil
	}
	return groups
}

type group struct {
	rows   int
	values []float64
}

func groupMeans(rows []ingestion.Row, col int, keyOf func(ingestion.Row) int, label func(int) string) []GroupMean {
	if len(rows) == 0 {
		return nil
	}
	groups := make(map[int]*group)
	keys := make([]int, 0)
	for _, row := range rows {
		key := keyOf(row)
		g, ok := groups[key]
		if !ok {
			g = &group{}
			groups[key] = g
			keys = append(keys, key)
		}
		g.rows++
		if v := row.Value(col); v.Valid {
			g.values = append(g.values, v.Float64)
		}
	}
	sort.Ints(keys)

	out := make([]GroupMean, 0, len(keys))
	for _, key := range keys {
		g := groups[key]
		mean := Undefined()
		if len(g.values) > 0 {
			mean = Value(stat.Mean(g.values, nil))
		}
		out = append(out, GroupMean{
			Key:     key,
			Label:   label(key),
			Rows:    g.rows,
			Samples: len(g.values),
			Mean:    mean,
		})
	}
	return out
}
