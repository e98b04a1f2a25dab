package consumption

import (
	ingestion "energy-dashboard/internal/ingestion/domain"
)

// Dashboard is every figure shown for one region and window.
type Dashboard struct {
	Region  string
	Column  string
	Window  Window
	Rows    int
	Samples int

	Average    Metric
	Peak       Metric
	LoadFactor Metric

	Daily   []GroupMean
	Hourly  []GroupMean
	Monthly []MonthDistribution
	Weekday []GroupMean
	Yearly  []GroupMean
}

// HasYearly reports whether the window spans more than one year.
func (d Dashboard) HasYearly() bool { return len(d.Yearly) > 0 }

// Compute builds the dashboard of one region over an inclusive window. An
// empty window yields undefined KPIs and empty tables.
func Compute(table *ingestion.NormalizedTable, region string, window Window) (Dashboard, error) {
	if table == nil {
		return Dashboard{}, ErrNilTable
	}
	col, err := table.ColumnIndex(region)
	if err != nil {
		return Dashboard{}, err
	}

	rows := Filter(table.Rows(), window)
	kpis := ComputeKPIs(rows, col)
	return Dashboard{
		Region:     table.Region(col),
		Column:     table.Column(col),
		Window:     window,
		Rows:       kpis.Rows,
		Samples:    kpis.Samples,
		Average:    kpis.Average,
		Peak:       kpis.Peak,
		LoadFactor: kpis.LoadFactor,
		Daily:      DailyTrend(rows, col),
		Hourly:     HourlyProfile(rows, col),
		Monthly:    MonthlyDistribution(rows, col),
		Weekday:    WeekdayProfile(rows, col),
		Yearly:     YearlyComparison(rows, col),
	}, nil
}
