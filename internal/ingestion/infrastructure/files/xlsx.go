package files

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	ingestion "energy-dashboard/internal/ingestion/domain"
)

const timestampLayout = "2006-01-02 15:04:05"

// ReadXLSX reads the first sheet of a workbook. The first row is the header.
// Date cells stored as serial numbers in the Datetime column are converted to
// timestamps.
func ReadXLSX(path string) (ingestion.RawTable, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return ingestion.RawTable{}, fmt.Errorf("files: open %s: %w", path, err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return ingestion.RawTable{}, fmt.Errorf("files: %s: workbook has no sheets", path)
	}
	rows, err := book.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return ingestion.RawTable{}, fmt.Errorf("files: read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return ingestion.RawTable{}, fmt.Errorf("files: read %s: %w", path, errors.New("empty sheet"))
	}

	table := ingestion.RawTable{
		Name:    filepath.Base(path),
		Header:  cleanHeader(rows[0]),
		Records: rows[1:],
	}
	if col := timestampColumn(table.Header); col >= 0 {
		for _, record := range table.Records {
			if col < len(record) {
				record[col] = serialToTimestamp(record[col])
			}
		}
	}
	return table, nil
}

func timestampColumn(header []string) int {
	for i, name := range header {
		if strings.EqualFold(name, ingestion.TimestampColumn) {
			return i
		}
	}
	if len(header) == 2 {
		return 0
	}
	return -1
}

func serialToTimestamp(value string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return value
	}
	at, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return value
	}
	return at.Round(time.Second).Format(timestampLayout)
}
