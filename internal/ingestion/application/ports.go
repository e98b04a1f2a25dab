package application

import (
	"context"
	"time"

	ingestion "energy-dashboard/internal/ingestion/domain"
)

// SourceRef identifies one region source found by a catalog.
type SourceRef struct {
	Origin   string
	Name     string
	Region   string
	Location string
	Size     int64
	ModTime  time.Time
}

// SourceCatalog discovers region sources and reads them as raw tables.
type SourceCatalog interface {
	Discover(ctx context.Context) ([]SourceRef, error)
	Read(ctx context.Context, ref SourceRef) (ingestion.RawTable, error)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now in UTC.
type SystemClock struct{}

// Now returns current time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
