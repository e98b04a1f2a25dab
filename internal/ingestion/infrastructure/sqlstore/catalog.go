package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"energy-dashboard/internal/ingestion/application"
	ingestion "energy-dashboard/internal/ingestion/domain"
)

const (
	// DriverPgx selects the pgx stdlib driver.
	DriverPgx = "pgx"
	// DriverSQLite selects the go-sqlite3 driver.
	DriverSQLite = "sqlite3"

	defaultReadingsTable = "region_hourly"
	timestampLayout      = "2006-01-02 15:04:05"
)

// Catalog exposes each region of a readings table (region, ts, mw) as one source.
type Catalog struct {
	db     *sql.DB
	driver string
	table  string
}

// CatalogOption configures the catalog.
type CatalogOption func(*Catalog)

// WithTable overrides the default table name.
func WithTable(table string) CatalogOption {
	return func(c *Catalog) {
		if table != "" {
			c.table = table
		}
	}
}

// NewCatalog creates a catalog over db using the given driver's placeholders.
func NewCatalog(db *sql.DB, driver string, opts ...CatalogOption) (*Catalog, error) {
	if db == nil {
		return nil, errors.New("sqlstore: nil db")
	}
	switch driver {
	case DriverPgx, DriverSQLite:
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
	c := &Catalog{db: db, driver: driver, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Table returns the readings table name.
func (c *Catalog) Table() string { return c.table }

// Discover lists one source per distinct region, ordered by region. Regions
// differing only by case are one source, matching Read. Size is
// the row count and ModTime the latest reading, so appended rows change the
// fingerprint.
func (c *Catalog) Discover(ctx context.Context) ([]application.SourceRef, error) {
	query := fmt.Sprintf(`
SELECT
	UPPER(region),
	COUNT(*),
	MAX(ts)
FROM %s
GROUP BY UPPER(region)
ORDER BY 1`, c.table)

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: discover: %w", err)
	}
	defer rows.Close()

	var refs []application.SourceRef
	for rows.Next() {
		var (
			region string
			count  int64
			latest any
		)
		if err := rows.Scan(&region, &count, &latest); err != nil {
			return nil, err
		}
		region = strings.ToUpper(strings.TrimSpace(region))
		if region == "" {
			continue
		}
		ref := application.SourceRef{
			Name:     c.table + ":" + region,
			Region:   region,
			Location: region,
			Size:     count,
		}
		if at, ok := asTime(latest); ok {
			ref.ModTime = at
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

// Read returns the readings of one region as a (Datetime, <REGION>_MW) table.
func (c *Catalog) Read(ctx context.Context, ref application.SourceRef) (ingestion.RawTable, error) {
	region := ref.Location
	if region == "" {
		region = ref.Region
	}
	if region == "" {
		return ingestion.RawTable{}, ingestion.ErrEmptyRegion
	}

	query := fmt.Sprintf(`
SELECT
	ts,
	mw
FROM %s
WHERE UPPER(region) = %s
ORDER BY ts`, c.table, c.placeholder(1))

	rows, err := c.db.QueryContext(ctx, query, strings.ToUpper(region))
	if err != nil {
		return ingestion.RawTable{}, fmt.Errorf("sqlstore: read %s: %w", region, err)
	}
	defer rows.Close()

	table := ingestion.RawTable{
		Name:   ref.Name,
		Header: []string{ingestion.TimestampColumn, ingestion.ColumnName(region, ingestion.DefaultValueSuffix)},
	}
	for rows.Next() {
		var (
			ts any
			mw sql.NullFloat64
		)
		if err := rows.Scan(&ts, &mw); err != nil {
			return ingestion.RawTable{}, err
		}
		value := ""
		if mw.Valid {
			value = strconv.FormatFloat(mw.Float64, 'f', -1, 64)
		}
		table.Records = append(table.Records, []string{formatTimestamp(ts), value})
	}
	if err := rows.Err(); err != nil {
		return ingestion.RawTable{}, err
	}
	return table, nil
}

func (c *Catalog) placeholder(n int) string {
	if c.driver == DriverPgx {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func asTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), true
	case string:
		at, err := ingestion.ParseTimestamp(v)
		return at, err == nil
	case []byte:
		at, err := ingestion.ParseTimestamp(string(v))
		return at, err == nil
	default:
		return time.Time{}, false
	}
}

func formatTimestamp(value any) string {
	switch v := value.(type) {
	case time.Time:
		return v.UTC().Format(timestampLayout)
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
