package ingestion

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Row is one timestamp of the merged table with its calendar fields.
type Row struct {
	Timestamp time.Time
	Hour      int
	Date      Date
	Month     int
	Year      int
	DayOfWeek int // Monday = 0
	values    []NullFloat
}

// Value returns the value of the column at index col.
func (r Row) Value(col int) NullFloat {
	if col < 0 || col >= len(r.values) {
		return Null
	}
	return r.values[col]
}

// NormalizedTable is the outer join of all region series keyed by timestamp.
// It is read-only once built.
type NormalizedTable struct {
	columns []string
	regions []string
	rows    []Row
}

// Merge outer-joins the series on timestamp. Every timestamp seen in any series
// yields exactly one row; regions without a reading at that timestamp are null.
func Merge(series ...RegionSeries) (*NormalizedTable, error) {
	if len(series) == 0 {
		return nil, ErrNoUsableData
	}

	table := &NormalizedTable{
		columns: make([]string, 0, len(series)),
		regions: make([]string, 0, len(series)),
	}
	index := make(map[int64]int)
	for col, s := range series {
		for _, existing := range table.regions {
			if existing == s.Region {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateRegion, s.Region)
			}
		}
		table.columns = append(table.columns, s.Column)
		table.regions = append(table.regions, s.Region)

		for _, reading := range s.Readings {
			key := reading.At.UnixNano()
			pos, ok := index[key]
			if !ok {
				pos = len(table.rows)
				index[key] = pos
				table.rows = append(table.rows, newRow(reading.At, len(series)))
			}
			if !table.rows[pos].values[col].Valid {
				table.rows[pos].values[col] = reading.Value
			}
		}
	}

	sort.SliceStable(table.rows, func(i, j int) bool {
		return table.rows[i].Timestamp.Before(table.rows[j].Timestamp)
	})
	return table, nil
}

func newRow(at time.Time, width int) Row {
	return Row{
		Timestamp: at,
		Hour:      at.Hour(),
		Date:      DateOf(at),
		Month:     int(at.Month()),
		Year:      at.Year(),
		DayOfWeek: (int(at.Weekday()) + 6) % 7,
		values:    make([]NullFloat, width),
	}
}

// Len returns the number of rows.
func (t *NormalizedTable) Len() int { return len(t.rows) }

// Row returns the i-th row in timestamp order.
func (t *NormalizedTable) Row(i int) Row { return t.rows[i] }

// Rows returns the rows in timestamp order. Callers must not modify them.
func (t *NormalizedTable) Rows() []Row { return t.rows }

// Columns returns the value column names in merge order.
func (t *NormalizedTable) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Regions returns the region ids in merge order.
func (t *NormalizedTable) Regions() []string {
	return append([]string(nil), t.regions...)
}

// ColumnIndex resolves a region id or column name to its column index.
func (t *NormalizedTable) ColumnIndex(regionOrColumn string) (int, error) {
	key := strings.ToUpper(strings.TrimSpace(regionOrColumn))
	for i := range t.columns {
		if t.regions[i] == key || strings.ToUpper(t.columns[i]) == key {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrUnknownRegion, regionOrColumn)
}

// Column returns the column name at index col.
func (t *NormalizedTable) Column(col int) string { return t.columns[col] }

// Region returns the region id at index col.
func (t *NormalizedTable) Region(col int) string { return t.regions[col] }

// DateBounds returns the first and last calendar date of the table.
func (t *NormalizedTable) DateBounds() (Date, Date, bool) {
	if len(t.rows) == 0 {
		return Date{}, Date{}, false
	}
	lo, hi := t.rows[0].Date, t.rows[0].Date
	for _, row := range t.rows[1:] {
		if row.Date.Before(lo) {
			lo = row.Date
		}
		if row.Date.After(hi) {
			hi = row.Date
		}
	}
	return lo, hi, true
}
