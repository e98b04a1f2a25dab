package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"energy-dashboard/internal/analytics/domain/consumption"
	ingestion "energy-dashboard/internal/ingestion/domain"
	"energy-dashboard/internal/observability/metrics"
)

// ErrEmptyTable is returned when the loaded table has no rows to bound a window.
var ErrEmptyTable = errors.New("analytics: table has no rows")

// TableProvider returns the current normalized table.
type TableProvider interface {
	Table(ctx context.Context) (*ingestion.NormalizedTable, error)
}

// Selection is a region and window chosen by the user.
type Selection struct {
	Region string
	Window consumption.Window
}

// DashboardService answers the presentation layer: which regions exist, what
// dates they cover and the dashboard of a selection.
type DashboardService struct {
	tables TableProvider
	logger *log.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(tables TableProvider, logger *log.Logger) (*DashboardService, error) {
	if tables == nil {
		return nil, errors.New("analytics: nil table provider")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &DashboardService{tables: tables, logger: logger}, nil
}

// Regions lists the region ids in load order.
func (s *DashboardService) Regions(ctx context.Context) ([]string, error) {
	table, err := s.tables.Table(ctx)
	if err != nil {
		return nil, err
	}
	return table.Regions(), nil
}

// DefaultRegion returns the first region.
func (s *DashboardService) DefaultRegion(ctx context.Context) (string, error) {
	regions, err := s.Regions(ctx)
	if err != nil {
		return "", err
	}
	if len(regions) == 0 {
		return "", ingestion.ErrNoUsableData
	}
	return regions[0], nil
}

// DateRange returns the first and last date of the table.
func (s *DashboardService) DateRange(ctx context.Context) (consumption.Window, error) {
	table, err := s.tables.Table(ctx)
	if err != nil {
		return consumption.Window{}, err
	}
	window, ok := consumption.TableWindow(table)
	if !ok {
		return consumption.Window{}, ErrEmptyTable
	}
	return window, nil
}

// Resolve fills a selection from optional inputs. An empty region means the
// first region, empty dates mean the table bounds.
func (s *DashboardService) Resolve(ctx context.Context, region, start, end string) (Selection, error) {
	table, err := s.tables.Table(ctx)
	if err != nil {
		return Selection{}, err
	}

	region = strings.TrimSpace(region)
	if region == "" {
		regions := table.Regions()
		if len(regions) == 0 {
			return Selection{}, ingestion.ErrNoUsableData
		}
		region = regions[0]
	}
	col, err := table.ColumnIndex(region)
	if err != nil {
		return Selection{}, err
	}

	window, ok := consumption.TableWindow(table)
	if !ok {
		return Selection{}, ErrEmptyTable
	}
	if strings.TrimSpace(start) != "" {
		if window.Start, err = ingestion.ParseDate(start); err != nil {
			return Selection{}, fmt.Errorf("%w: start: %v", consumption.ErrInvalidWindow, err)
		}
	}
	if strings.TrimSpace(end) != "" {
		if window.End, err = ingestion.ParseDate(end); err != nil {
			return Selection{}, fmt.Errorf("%w: end: %v", consumption.ErrInvalidWindow, err)
		}
	}
	return Selection{Region: table.Region(col), Window: window}, nil
}

// Compute recomputes the dashboard of one region over an inclusive window.
func (s *DashboardService) Compute(ctx context.Context, region string, window consumption.Window) (consumption.Dashboard, error) {
	start := time.Now()
	table, err := s.tables.Table(ctx)
	if err != nil {
		metrics.ObserveDashboard(metrics.ResultError, time.Since(start))
		return consumption.Dashboard{}, err
	}
	dashboard, err := consumption.Compute(table, region, window)
	if err != nil {
		metrics.ObserveDashboard(metrics.ResultError, time.Since(start))
		return consumption.Dashboard{}, err
	}
	metrics.ObserveDashboard(metrics.ResultSuccess, time.Since(start))
	if window.Empty() {
		s.logger.Printf("analytics: %s: empty window %s", dashboard.Region, window)
	}
	return dashboard, nil
}

// ComputeSelection is Compute for a resolved selection.
func (s *DashboardService) ComputeSelection(ctx context.Context, sel Selection) (consumption.Dashboard, error) {
	return s.Compute(ctx, sel.Region, sel.Window)
}
