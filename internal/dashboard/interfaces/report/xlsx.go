package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"energy-dashboard/internal/analytics/domain/consumption"
)

type groupSheet struct {
	name   string
	key    string
	groups []consumption.GroupMean
}

// BuildXLSX renders the dashboard as a workbook with one sheet per table.
func BuildXLSX(d consumption.Dashboard) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	_ = f.SetCellValue(summarySheet, "A1", Title)
	_ = f.SetCellValue(summarySheet, "A3", "Region")
	_ = f.SetCellValue(summarySheet, "B3", d.Region)
	_ = f.SetCellValue(summarySheet, "A4", "Column")
	_ = f.SetCellValue(summarySheet, "B4", d.Column)
	_ = f.SetCellValue(summarySheet, "A5", "Start")
	_ = f.SetCellValue(summarySheet, "B5", d.Window.Start.String())
	_ = f.SetCellValue(summarySheet, "A6", "End")
	_ = f.SetCellValue(summarySheet, "B6", d.Window.End.String())
	_ = f.SetCellValue(summarySheet, "A7", "Rows")
	_ = f.SetCellValue(summarySheet, "B7", d.Rows)
	_ = f.SetCellValue(summarySheet, "A8", "Average Consumption (MW)")
	_ = f.SetCellValue(summarySheet, "B8", cellValue(d.Average))
	_ = f.SetCellValue(summarySheet, "A9", "Peak Consumption (MW)")
	_ = f.SetCellValue(summarySheet, "B9", cellValue(d.Peak))
	_ = f.SetCellValue(summarySheet, "A10", "Load Factor (%)")
	_ = f.SetCellValue(summarySheet, "B10", cellValue(d.LoadFactor))

	groupSheets := []groupSheet{
		{"daily", "Date", d.Daily},
		{"hourly", "Hour", d.Hourly},
		{"weekday", "Day", d.Weekday},
	}
	if d.HasYearly() {
		groupSheets = append(groupSheets, groupSheet{"yearly", "Year", d.Yearly})
	}
	for _, gs := range groupSheets {
		if _, err := f.NewSheet(gs.name); err != nil {
			return nil, err
		}
		_ = f.SetCellValue(gs.name, "A1", gs.key)
		_ = f.SetCellValue(gs.name, "B1", "Mean (MW)")
		_ = f.SetCellValue(gs.name, "C1", "Rows")
		_ = f.SetCellValue(gs.name, "D1", "Samples")
		for i, g := range gs.groups {
			row := i + 2
			_ = f.SetCellValue(gs.name, fmt.Sprintf("A%d", row), g.Label)
			_ = f.SetCellValue(gs.name, fmt.Sprintf("B%d", row), cellValue(g.Mean))
			_ = f.SetCellValue(gs.name, fmt.Sprintf("C%d", row), g.Rows)
			_ = f.SetCellValue(gs.name, fmt.Sprintf("D%d", row), g.Samples)
		}
	}

	monthlySheet := "monthly"
	if _, err := f.NewSheet(monthlySheet); err != nil {
		return nil, err
	}
	header := []interface{}{"Month", "Rows", "Samples", "Min", "Q1", "Median", "Q3", "Max", "Mean", "Lower Fence", "Upper Fence", "Outliers"}
	if err := f.SetSheetRow(monthlySheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, m := range d.Monthly {
		row := []interface{}{
			m.Label, m.Rows, m.Samples,
			cellValue(m.Min), cellValue(m.Q1), cellValue(m.Median), cellValue(m.Q3), cellValue(m.Max),
			cellValue(m.Mean), cellValue(m.LowerFence), cellValue(m.UpperFence), len(m.Outliers),
		}
		if err := f.SetSheetRow(monthlySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
