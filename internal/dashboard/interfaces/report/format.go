package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"energy-dashboard/internal/analytics/domain/consumption"
)

var printer = message.NewPrinter(language.English)

// FormatMW renders megawatts with thousands separators and two decimals.
func FormatMW(m consumption.Metric) string {
	if !m.Defined {
		return consumption.NotAvailable
	}
	return printer.Sprintf("%.2f", m.Value)
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(m consumption.Metric) string {
	if !m.Defined {
		return consumption.NotAvailable
	}
	return printer.Sprintf("%.1f%%", m.Value)
}

// FormatCount renders an integer with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// cellValue returns the float for numeric cells and N/A otherwise.
func cellValue(m consumption.Metric) interface{} {
	if !m.Defined {
		return consumption.NotAvailable
	}
	return m.Value
}
