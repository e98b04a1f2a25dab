package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	ingestion "energy-dashboard/internal/ingestion/domain"
	"energy-dashboard/internal/observability/metrics"
)

// SourceResult describes what happened to one discovered source.
type SourceResult struct {
	Ref      SourceRef
	Region   string
	Column   string
	Rule     string
	Readings int
	Stats    ingestion.SeriesStats
	Err      error
}

// LoadReport lists loaded and skipped sources of one load.
type LoadReport struct {
	Found   int
	Loaded  []SourceResult
	Skipped []SourceResult
}

// Snapshot is one built NormalizedTable with its provenance.
type Snapshot struct {
	ID          string
	Fingerprint string
	LoadedAt    time.Time
	Table       *ingestion.NormalizedTable
	Report      LoadReport
}

// Loader discovers, canonicalizes and merges region sources.
type Loader struct {
	catalog       SourceCatalog
	canonicalizer *ingestion.Canonicalizer
	clock         Clock
	logger        *log.Logger
}

// LoaderOption customizes a Loader.
type LoaderOption func(*Loader)

// WithCanonicalizer overrides the default column rules.
func WithCanonicalizer(c *ingestion.Canonicalizer) LoaderOption {
	return func(l *Loader) {
		if c != nil {
			l.canonicalizer = c
		}
	}
}

// WithClock overrides the clock used for LoadedAt.
func WithClock(clock Clock) LoaderOption {
	return func(l *Loader) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// NewLoader constructs a Loader.
func NewLoader(catalog SourceCatalog, logger *log.Logger, opts ...LoaderOption) (*Loader, error) {
	if catalog == nil {
		return nil, errors.New("ingestion loader: nil catalog")
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	l := &Loader{
		catalog:       catalog,
		canonicalizer: ingestion.NewCanonicalizer(),
		clock:         SystemClock{},
		logger:        logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Discover lists the current sources without reading them.
func (l *Loader) Discover(ctx context.Context) ([]SourceRef, error) {
	return l.catalog.Discover(ctx)
}

// Load discovers all sources and builds a snapshot. It fails with
// ErrNoSources when nothing is found and ErrNoUsableData when every source
// was skipped; a single bad source is reported and skipped.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	refs, err := l.catalog.Discover(ctx)
	if err != nil {
		metrics.ObserveLoad(metrics.ResultError, time.Since(start), 0, 0)
		return nil, fmt.Errorf("ingestion loader: discover: %w", err)
	}
	return l.LoadRefs(ctx, refs)
}

// LoadRefs builds a snapshot from an already discovered source set.
func (l *Loader) LoadRefs(ctx context.Context, refs []SourceRef) (*Snapshot, error) {
	start := time.Now()
	l.logger.Printf("ingestion: found %d data files", len(refs))
	if len(refs) == 0 {
		metrics.ObserveLoad(metrics.ResultError, time.Since(start), 0, 0)
		return nil, ingestion.ErrNoSources
	}

	report := LoadReport{Found: len(refs)}
	series := make([]ingestion.RegionSeries, 0, len(refs))
	regions := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			metrics.ObserveLoad(metrics.ResultError, time.Since(start), 0, 0)
			return nil, err
		}
		l.logger.Printf("ingestion: processing %s", ref.Name)

		result := SourceResult{Ref: ref, Region: ref.Region}
		s, err := l.loadOne(ctx, ref)
		if err == nil {
			if _, dup := regions[s.Region]; dup {
				err = fmt.Errorf("%s: %w: %s", ref.Name, ingestion.ErrDuplicateRegion, s.Region)
			}
		}
		if err != nil {
			result.Err = err
			report.Skipped = append(report.Skipped, result)
			metrics.IncSourceSkipped()
			l.logger.Printf("ingestion: could not load %s: %v", ref.Name, err)
			continue
		}

		regions[s.Region] = struct{}{}
		result.Region = s.Region
		result.Column = s.Column
		result.Rule = s.Rule
		result.Readings = len(s.Readings)
		result.Stats = s.Stats
		report.Loaded = append(report.Loaded, result)
		series = append(series, s)

		metrics.IncSourceLoaded()
		metrics.AddRowsRejected("bad_timestamp", s.Stats.BadTimestamps)
		metrics.AddRowsRejected("bad_value", s.Stats.BadValues)
		metrics.AddRowsRejected("duplicate", s.Stats.Duplicates)
		if dropped := s.Stats.BadTimestamps + s.Stats.Duplicates; dropped > 0 || s.Stats.BadValues > 0 {
			l.logger.Printf("ingestion: %s: dropped %d rows, nulled %d values", ref.Name, dropped, s.Stats.BadValues)
		}
	}
	l.logger.Printf("ingestion: successfully loaded %d files", len(report.Loaded))

	table, err := ingestion.Merge(series...)
	if err != nil {
		metrics.ObserveLoad(metrics.ResultError, time.Since(start), 0, 0)
		if errors.Is(err, ingestion.ErrNoUsableData) {
			return nil, fmt.Errorf("%w: %d of %d sources skipped", err, len(report.Skipped), report.Found)
		}
		return nil, err
	}

	snapshot := &Snapshot{
		ID:          uuid.NewString(),
		Fingerprint: Fingerprint(refs),
		LoadedAt:    l.clock.Now(),
		Table:       table,
		Report:      report,
	}
	metrics.ObserveLoad(metrics.ResultSuccess, time.Since(start), table.Len(), len(table.Columns()))
	l.logger.Printf("ingestion: snapshot %s: %d rows, regions %v", snapshot.ID, table.Len(), table.Regions())
	return snapshot, nil
}

func (l *Loader) loadOne(ctx context.Context, ref SourceRef) (ingestion.RegionSeries, error) {
	raw, err := l.catalog.Read(ctx, ref)
	if err != nil {
		return ingestion.RegionSeries{}, err
	}
	if raw.Name == "" {
		raw.Name = ref.Name
	}
	region := ref.Region
	if region == "" {
		region, err = ingestion.RegionFromFileName(ref.Name)
		if err != nil {
			return ingestion.RegionSeries{}, fmt.Errorf("%s: %w", ref.Name, err)
		}
	}
	return l.canonicalizer.Canonicalize(region, raw)
}
