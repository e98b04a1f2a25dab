package application

import (
	"context"
	"errors"
	"testing"
	"time"

	ingestion "energy-dashboard/internal/ingestion/domain"
)

func twoRegionCatalog() *stubCatalog {
	catalog := newStubCatalog()
	catalog.add("AEP_hourly.csv", []string{"Datetime", "AEP_MW"},
		[]string{"2018-01-01 00:00:00", "100"},
		[]string{"2018-01-01 01:00:00", "120"},
	)
	catalog.add("COMED_hourly.csv", []string{"Datetime", "COMED_MW"},
		[]string{"2018-01-01 01:00:00", "50"},
		[]string{"2018-01-01 02:00:00", "60"},
	)
	return catalog
}

func TestLoaderMergesSources(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	loader, err := NewLoader(twoRegionCatalog(), nil, WithClock(fixedClock{now: at}))
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	snapshot, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snapshot.ID == "" || snapshot.Fingerprint == "" {
		t.Fatalf("expected id and fingerprint, got %+v", snapshot)
	}
	if !snapshot.LoadedAt.Equal(at) {
		t.Fatalf("expected loaded at %v, got %v", at, snapshot.LoadedAt)
	}
	if snapshot.Table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", snapshot.Table.Len())
	}
	if got := snapshot.Table.Columns(); len(got) != 2 || got[0] != "AEP_MW" || got[1] != "COMED_MW" {
		t.Fatalf("unexpected columns %v", got)
	}
	if snapshot.Report.Found != 2 || len(snapshot.Report.Loaded) != 2 || len(snapshot.Report.Skipped) != 0 {
		t.Fatalf("unexpected report %+v", snapshot.Report)
	}
}

func TestLoaderSkipsBadSource(t *testing.T) {
	catalog := twoRegionCatalog()
	catalog.add("PJM_hourly.csv", []string{"When", "Load"},
		[]string{"2018-01-01 00:00:00", "1"},
		[]string{"2018-01-01 01:00:00", "2"},
	)
	catalog.add("DOM_hourly.csv", []string{"Datetime", "DOM_MW"})
	catalog.readErr["DOM_hourly.csv"] = errors.New("permission denied")

	loader, err := NewLoader(catalog, nil)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	snapshot, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snapshot.Report.Loaded) != 3 {
		t.Fatalf("expected 3 loaded, got %d", len(snapshot.Report.Loaded))
	}
	if len(snapshot.Report.Skipped) != 1 || snapshot.Report.Skipped[0].Ref.Name != "DOM_hourly.csv" {
		t.Fatalf("expected DOM skipped, got %+v", snapshot.Report.Skipped)
	}
	// The two-column rule accepts any header when there are exactly two columns.
	if snapshot.Report.Loaded[2].Rule != ingestion.RuleTwoColumns {
		t.Fatalf("expected two-column rule for PJM, got %s", snapshot.Report.Loaded[2].Rule)
	}
}

func TestLoaderUnrecognizedSchemaSkipped(t *testing.T) {
	catalog := twoRegionCatalog()
	catalog.add("NI_hourly.csv", []string{"When", "A", "B"},
		[]string{"2018-01-01 00:00:00", "1", "2"},
	)
	loader, _ := NewLoader(catalog, nil)
	snapshot, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snapshot.Report.Skipped) != 1 {
		t.Fatalf("expected one skipped source, got %d", len(snapshot.Report.Skipped))
	}
	if !errors.Is(snapshot.Report.Skipped[0].Err, ingestion.ErrUnrecognizedSchema) {
		t.Fatalf("expected unrecognized schema, got %v", snapshot.Report.Skipped[0].Err)
	}
	if _, err := snapshot.Table.ColumnIndex("NI"); !errors.Is(err, ingestion.ErrUnknownRegion) {
		t.Fatalf("expected NI to be absent, got %v", err)
	}
}

func TestLoaderNoSources(t *testing.T) {
	loader, _ := NewLoader(newStubCatalog(), nil)
	if _, err := loader.Load(context.Background()); !errors.Is(err, ingestion.ErrNoSources) {
		t.Fatalf("expected ErrNoSources, got %v", err)
	}
}

func TestLoaderNoUsableData(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add("X_hourly.csv", []string{"a", "b", "c"}, []string{"1", "2", "3"})
	loader, _ := NewLoader(catalog, nil)
	if _, err := loader.Load(context.Background()); !errors.Is(err, ingestion.ErrNoUsableData) {
		t.Fatalf("expected ErrNoUsableData, got %v", err)
	}
}

func TestLoaderDuplicateRegionKeepsFirst(t *testing.T) {
	catalog := twoRegionCatalog()
	catalog.add("aep_hourly.xlsx", []string{"Datetime", "AEP_MW"},
		[]string{"2019-01-01 00:00:00", "999"},
	)
	loader, _ := NewLoader(catalog, nil)
	snapshot, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snapshot.Report.Skipped) != 1 || !errors.Is(snapshot.Report.Skipped[0].Err, ingestion.ErrDuplicateRegion) {
		t.Fatalf("expected duplicate region skip, got %+v", snapshot.Report.Skipped)
	}
	if snapshot.Table.Len() != 3 {
		t.Fatalf("expected later source ignored, got %d rows", snapshot.Table.Len())
	}
}

func TestLoaderUsesRefRegion(t *testing.T) {
	catalog := newStubCatalog()
	catalog.add("readings", []string{"Datetime", "mw"}, []string{"2018-01-01 00:00:00", "5"})
	catalog.refs[0].Region = "pjme"
	loader, _ := NewLoader(catalog, nil)
	snapshot, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := snapshot.Table.Regions(); len(got) != 1 || got[0] != "PJME" {
		t.Fatalf("expected PJME, got %v", got)
	}
}

func TestLoaderCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	loader, _ := NewLoader(twoRegionCatalog(), nil)
	if _, err := loader.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
}

func TestNewLoaderRequiresCatalog(t *testing.T) {
	if _, err := NewLoader(nil, nil); err == nil {
		t.Fatalf("expected error for nil catalog")
	}
}

func TestCompositeCatalogRoutesReads(t *testing.T) {
	first := newStubCatalog()
	first.add("AEP_hourly.csv", []string{"Datetime", "AEP_MW"}, []string{"2018-01-01 00:00:00", "1"})
	second := newStubCatalog()
	second.add("AEP_hourly.csv", []string{"Datetime", "AEP_MW"}, []string{"2018-01-01 00:00:00", "2"})

	composite := NewCompositeCatalog()
	if err := composite.Add("files", first); err != nil {
		t.Fatalf("add files: %v", err)
	}
	if err := composite.Add("sql", second); err != nil {
		t.Fatalf("add sql: %v", err)
	}
	if err := composite.Add("sql", second); err == nil {
		t.Fatalf("expected duplicate name error")
	}

	refs, err := composite.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(refs) != 2 || refs[0].Origin != "files" || refs[1].Origin != "sql" {
		t.Fatalf("unexpected refs %+v", refs)
	}
	table, err := composite.Read(context.Background(), refs[1])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if table.Records[0][1] != "2" {
		t.Fatalf("expected read routed to second catalog, got %v", table.Records)
	}
	if first.readCount() != 0 {
		t.Fatalf("expected first catalog untouched")
	}
}

func TestFingerprintChangesWithSources(t *testing.T) {
	catalog := twoRegionCatalog()
	refs, _ := catalog.Discover(context.Background())
	before := Fingerprint(refs)
	if before != Fingerprint(refs) {
		t.Fatalf("fingerprint not stable")
	}
	catalog.touch("COMED_hourly.csv")
	refs, _ = catalog.Discover(context.Background())
	if Fingerprint(refs) == before {
		t.Fatalf("expected fingerprint to change after modification")
	}
}
