package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"energy-dashboard/internal/analytics/domain/consumption"
)

// Title is the heading of every rendered dashboard.
const Title = "Energy Consumption KPI Dashboard"

// WriteText renders the dashboard as plain text tables.
func WriteText(w io.Writer, d consumption.Dashboard) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	p := func(format string, args ...interface{}) {
		fmt.Fprintf(tw, format, args...)
	}

	p("%s\n", Title)
	p("Region: %s (%s)\n", d.Region, d.Column)
	p("Date range: %s\n", d.Window)
	p("Rows: %s\n\n", FormatCount(d.Rows))

	p("Average Consumption (MW)\tPeak Consumption (MW)\tLoad Factor (%%)\n")
	p("%s\t%s\t%s\n\n", FormatMW(d.Average), FormatMW(d.Peak), FormatPercent(d.LoadFactor))

	writeGroups(p, "Daily Consumption Trend", "Date", d.Daily)
	writeGroups(p, "Average Hourly Consumption Pattern", "Hour", d.Hourly)

	p("Monthly Consumption Distribution\n")
	if len(d.Monthly) == 0 {
		p("  no data\n\n")
	} else {
		p("Month\tMin\tQ1\tMedian\tQ3\tMax\tOutliers\n")
		for _, m := range d.Monthly {
			p("%s\t%s\t%s\t%s\t%s\t%s\t%d\n", m.Label, FormatMW(m.Min), FormatMW(m.Q1), FormatMW(m.Median), FormatMW(m.Q3), FormatMW(m.Max), len(m.Outliers))
		}
		p("\n")
	}

	writeGroups(p, "Average Consumption by Day of Week", "Day", d.Weekday)
	if d.HasYearly() {
		writeGroups(p, "Year-over-Year Comparison", "Year", d.Yearly)
	}

	p("Key Insights\n")
	p("- Date range: %s to %s\n", d.Window.Start, d.Window.End)
	p("- Average consumption %s MW, peak demand %s MW, load factor %s\n", FormatMW(d.Average), FormatMW(d.Peak), FormatPercent(d.LoadFactor))
	p("- The load factor indicates how effectively the electrical system is being utilized\n")
	return tw.Flush()
}

func writeGroups(p func(string, ...interface{}), title, keyTitle string, groups []consumption.GroupMean) {
	p("%s\n", title)
	if len(groups) == 0 {
		p("  no data\n\n")
		return
	}
	p("%s\tMean (MW)\tRows\n", keyTitle)
	for _, g := range groups {
		p("%s\t%s\t%d\n", g.Label, FormatMW(g.Mean), g.Rows)
	}
	p("\n")
}
