package files

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	ingestion "energy-dashboard/internal/ingestion/domain"
)

// ReadCSV reads a comma separated file. The first record is the header.
func ReadCSV(path string) (ingestion.RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return ingestion.RawTable{}, fmt.Errorf("files: open %s: %w", path, err)
	}
	defer file.Close()

	table, err := ParseCSV(file)
	if err != nil {
		return ingestion.RawTable{}, fmt.Errorf("files: read %s: %w", path, err)
	}
	table.Name = filepath.Base(path)
	return table, nil
}

// ParseCSV parses CSV content. Records may have a varying number of fields.
func ParseCSV(r io.Reader) (ingestion.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ingestion.RawTable{}, errors.New("empty file")
		}
		return ingestion.RawTable{}, err
	}
	records, err := reader.ReadAll()
	if err != nil {
		return ingestion.RawTable{}, err
	}
	return ingestion.RawTable{Header: cleanHeader(header), Records: records}, nil
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		out[i] = strings.Trim(strings.TrimSpace(name), `"'`)
	}
	return out
}
