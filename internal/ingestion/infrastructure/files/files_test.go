package files

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"energy-dashboard/internal/ingestion/application"
	ingestion "energy-dashboard/internal/ingestion/domain"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestCatalogDiscoverSorted(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "PJME_hourly.csv", "Datetime,PJME_MW\n")
	writeFile(t, dir, "AEP_hourly.csv", "Datetime,AEP_MW\n")
	writeFile(t, dir, "notes.txt", "ignore me")
	writeFile(t, dir, "AEP_daily.csv", "Datetime,AEP_MW\n")
	if err := os.Mkdir(filepath.Join(dir, "X_hourly.csv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	catalog, err := NewCatalog(dir)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	refs, err := catalog.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %+v", refs)
	}
	if refs[0].Name != "AEP_hourly.csv" || refs[1].Name != "PJME_hourly.csv" {
		t.Fatalf("unexpected order %s, %s", refs[0].Name, refs[1].Name)
	}
	if refs[0].Location != filepath.Join(dir, "AEP_hourly.csv") || refs[0].Size == 0 {
		t.Fatalf("unexpected ref %+v", refs[0])
	}

	again, err := catalog.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover again: %v", err)
	}
	if !reflect.DeepEqual(refs, again) {
		t.Fatalf("expected repeated discovery to match:\n%+v\n%+v", refs, again)
	}
}

func TestCatalogMissingDirectory(t *testing.T) {
	catalog, err := NewCatalog(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	refs, err := catalog.Discover(context.Background())
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(refs) != 0 {
		t.Fatalf("expected no refs, got %d", len(refs))
	}
}

func TestNewCatalogRequiresDir(t *testing.T) {
	if _, err := NewCatalog("  "); err == nil {
		t.Fatalf("expected error for empty dir")
	}
}

func TestParseCSVCleansHeader(t *testing.T) {
	input := "\ufeff\"Datetime\" , 'AEP_MW'\n2018-01-01 00:00:00,100\n2018-01-01 01:00:00,120,extra\n"
	table, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if table.Header[0] != "Datetime" || table.Header[1] != "AEP_MW" {
		t.Fatalf("unexpected header %q", table.Header)
	}
	if len(table.Records) != 2 || len(table.Records[1]) != 3 {
		t.Fatalf("unexpected records %v", table.Records)
	}
}

func TestParseCSVEmpty(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestCatalogReadCSVThroughLoader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AEP_hourly.csv", "Datetime,AEP_MW\n2018-01-01 00:00:00,100\n2018-01-01 01:00:00,120\n")
	writeFile(t, dir, "COMED_hourly.csv", "Datetime,COMED_MW\n2018-01-01 01:00:00,50\n2018-01-01 02:00:00,60\n")
	writeFile(t, dir, "BAD_hourly.csv", "")

	catalog, _ := NewCatalog(dir)
	loader, err := application.NewLoader(catalog, nil)
	if err != nil {
		t.Fatalf("new loader: %v", err)
	}
	snapshot, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snapshot.Table.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", snapshot.Table.Len())
	}
	if len(snapshot.Report.Skipped) != 1 || snapshot.Report.Skipped[0].Ref.Name != "BAD_hourly.csv" {
		t.Fatalf("expected BAD skipped, got %+v", snapshot.Report.Skipped)
	}
	col, err := snapshot.Table.ColumnIndex("COMED")
	if err != nil {
		t.Fatalf("column index: %v", err)
	}
	if v := snapshot.Table.Row(0).Value(col); v.Valid {
		t.Fatalf("expected null COMED at first hour, got %v", v.Float64)
	}
}

func TestReadXLSX(t *testing.T) {
	dir := t.TempDir()
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	rows := [][]interface{}{
		{"Datetime", "DOM_MW"},
		{"2018-01-01 00:00:00", 100},
		{43101, 110},
		{"2018-01-01 02:00:00", "bad"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(dir, "DOM_hourly.xlsx")
	if err := book.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	table, err := ReadXLSX(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if table.Name != "DOM_hourly.xlsx" || len(table.Records) != 3 {
		t.Fatalf("unexpected table %+v", table)
	}
	if got := table.Records[1][0]; got != "2018-01-01 00:00:00" {
		t.Fatalf("expected serial date converted, got %q", got)
	}

	series, err := ingestion.NewCanonicalizer().Canonicalize("DOM", table)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if series.Stats.Duplicates != 1 || series.Stats.BadValues != 1 {
		t.Fatalf("unexpected stats %+v", series.Stats)
	}
}

func TestCatalogReadUnsupported(t *testing.T) {
	catalog, _ := NewCatalog(t.TempDir())
	_, err := catalog.Read(context.Background(), application.SourceRef{Name: "A_hourly.json"})
	if err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestDefaultPattern(t *testing.T) {
	cases := map[string]bool{
		"AEP_hourly.csv":      true,
		"pjm_load_hourly.CSV": true,
		"DOM_hourly.xlsx":     true,
		"_hourly.csv":         false,
		"AEP_hourly.json":     false,
		"AEP_myhourly.csv":    false,
		"AEP_hourly.csv.bak":  false,
	}
	for name, want := range cases {
		if got := DefaultPattern.MatchString(name); got != want {
			t.Fatalf("%s: expected %v, got %v", name, want, got)
		}
	}
}
