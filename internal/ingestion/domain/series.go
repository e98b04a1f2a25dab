package ingestion

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultValueSuffix marks region value columns, e.g. PJM_MW.
	DefaultValueSuffix = "_MW"
	// TimestampColumn is the canonical name of the join key column.
	TimestampColumn = "Datetime"
)

// RawTable is a source file read as plain text cells.
type RawTable struct {
	Name    string
	Header  []string
	Records [][]string
}

// Cell returns the trimmed cell or "" when the row is short.
func (t RawTable) Cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

// NullFloat is a float that may be missing.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float wraps a present value.
func Float(v float64) NullFloat { return NullFloat{Float64: v, Valid: true} }

// Null is the missing value.
var Null = NullFloat{}

// Reading is one (timestamp, value) pair of a region series.
type Reading struct {
	At    time.Time
	Value NullFloat
}

// SeriesStats counts rows dropped or nulled while canonicalizing a source.
type SeriesStats struct {
	Records       int
	BadTimestamps int
	BadValues     int
	Duplicates    int
}

// RegionSeries is one canonicalized source: a region and its readings.
type RegionSeries struct {
	Region   string
	Column   string
	Rule     string
	Readings []Reading
	Stats    SeriesStats
}

// RegionFromFileName derives the region id from a file name: the leading token
// before the first underscore, upper-cased.
func RegionFromFileName(name string) (string, error) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	token, _, _ := strings.Cut(base, "_")
	token = strings.ToUpper(strings.TrimSpace(token))
	if token == "" {
		return "", ErrEmptyRegion
	}
	return token, nil
}

// ColumnName returns the table column of a region, e.g. "PJM_MW".
func ColumnName(region, suffix string) string {
	if suffix == "" {
		suffix = DefaultValueSuffix
	}
	return strings.ToUpper(region) + suffix
}
