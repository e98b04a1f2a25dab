package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"energy-dashboard/internal/analytics/domain/consumption"
)

// BuildPDF renders the dashboard summary and tables as a PDF.
func BuildPDF(d consumption.Dashboard) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, Title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Region: %s (%s)", d.Region, d.Column))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Date range: %s", d.Window))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Rows: %s", FormatCount(d.Rows)))
	pdf.Ln(8)

	pdf.Cell(0, 6, fmt.Sprintf("Average Consumption (MW): %s", FormatMW(d.Average)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Peak Consumption (MW): %s", FormatMW(d.Peak)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Load Factor (%%): %s", FormatPercent(d.LoadFactor)))
	pdf.Ln(8)

	groupTable(pdf, "Average Hourly Consumption Pattern", "Hour", d.Hourly)
	groupTable(pdf, "Average Consumption by Day of Week", "Day", d.Weekday)
	if d.HasYearly() {
		groupTable(pdf, "Year-over-Year Comparison", "Year", d.Yearly)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, "Monthly Consumption Distribution")
	pdf.Ln(7)
	for _, title := range []string{"Month", "Min", "Q1", "Median", "Q3", "Max"} {
		pdf.CellFormat(30, 6, title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, m := range d.Monthly {
		pdf.CellFormat(30, 6, m.Label, "1", 0, "C", false, 0, "")
		for _, v := range []consumption.Metric{m.Min, m.Q1, m.Median, m.Q3, m.Max} {
			pdf.CellFormat(30, 6, FormatMW(v), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	groupTable(pdf, "Daily Consumption Trend", "Date", d.Daily)

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func groupTable(pdf *gofpdf.Fpdf, title, key string, groups []consumption.GroupMean) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(0, 6, title)
	pdf.Ln(7)
	pdf.CellFormat(40, 6, key, "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Mean (MW)", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Rows", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, g := range groups {
		pdf.CellFormat(40, 6, g.Label, "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, FormatMW(g.Mean), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, strconv.Itoa(g.Rows), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}
