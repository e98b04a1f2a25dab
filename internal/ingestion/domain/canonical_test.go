package ingestion

import (
	"errors"
	"testing"
	"time"
)

func TestMatchColumns_Rules(t *testing.T) {
	rules := DefaultRules()
	cases := []struct {
		name   string
		header []string
		want   ColumnMatch
	}{
		{"two columns by position", []string{"ts", "value"}, ColumnMatch{Timestamp: 0, Value: 1, Rule: RuleTwoColumns}},
		{"suffix column", []string{"Datetime", "id", "AEP_MW"}, ColumnMatch{Timestamp: 0, Value: 2, Rule: RuleValueSuffix}},
		{"suffix before datetime", []string{"AEP_MW", "flag", "Datetime"}, ColumnMatch{Timestamp: 2, Value: 0, Rule: RuleValueSuffix}},
		{"second column fallback", []string{"Datetime", "load", "flag"}, ColumnMatch{Timestamp: 0, Value: 1, Rule: RuleSecondColumn}},
		{"case insensitive datetime", []string{"DATETIME", "load", "flag"}, ColumnMatch{Timestamp: 0, Value: 1, Rule: RuleSecondColumn}},
	}
	for _, tc := range cases {
		got, err := MatchColumns(tc.header, rules)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}

func TestMatchColumns_Unrecognized(t *testing.T) {
	headers := [][]string{
		nil,
		{"Datetime"},
		{"ts", "load", "flag"},
		{"id", "Datetime", "flag"},
	}
	for _, header := range headers {
		if _, err := MatchColumns(header, DefaultRules()); !errors.Is(err, ErrUnrecognizedSchema) {
			t.Fatalf("header %q: expected ErrUnrecognizedSchema, got %v", header, err)
		}
	}
}

func TestMatchColumns_CustomSuffix(t *testing.T) {
	match, err := MatchColumns([]string{"Datetime", "note", "load_kw"}, DefaultRules("_kw"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if match.Value != 2 || match.Rule != RuleValueSuffix {
		t.Fatalf("unexpected match %+v", match)
	}
}

func TestCanonicalize_TwoColumnsByPosition(t *testing.T) {
	table := RawTable{
		Name:   "pjm_hourly.csv",
		Header: []string{"ts", "value"},
		Records: [][]string{
			{"2021-01-01 00:00:00", "100"},
			{"2021-01-01 01:00:00", "120"},
		},
	}
	series, err := NewCanonicalizer().Canonicalize("pjm", table)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if series.Region != "PJM" || series.Column != "PJM_MW" {
		t.Fatalf("unexpected naming: region=%s column=%s", series.Region, series.Column)
	}
	if series.Rule != RuleTwoColumns {
		t.Fatalf("expected rule %s, got %s", RuleTwoColumns, series.Rule)
	}
	if len(series.Readings) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(series.Readings))
	}
	want := time.Date(2021, 1, 1, 1, 0, 0, 0, time.UTC)
	if !series.Readings[1].At.Equal(want) || series.Readings[1].Value != Float(120) {
		t.Fatalf("unexpected reading %+v", series.Readings[1])
	}
}

func TestCanonicalize_DirtyRows(t *testing.T) {
	table := RawTable{
		Name:   "aep_hourly.csv",
		Header: []string{"Datetime", "AEP_MW"},
		Records: [][]string{
			{"2021-01-01 00:00:00", "50"},
			{"not a time", "60"},
			{"2021-01-01 00:00:00", "70"},
			{"2021-01-01 01:00:00", ""},
			{"2021-01-01 02:00:00", "n/a"},
			{"", ""},
			{"2021-01-01 03:00:00"},
		},
	}
	series, err := NewCanonicalizer().Canonicalize("AEP", table)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if got := len(series.Readings); got != 4 {
		t.Fatalf("expected 4 readings, got %d", got)
	}
	if series.Readings[0].Value != Float(50) {
		t.Fatalf("expected first occurrence kept, got %+v", series.Readings[0].Value)
	}
	if series.Readings[1].Value.Valid || series.Readings[2].Value.Valid || series.Readings[3].Value.Valid {
		t.Fatalf("expected null values for empty, invalid and missing cells")
	}
	stats := series.Stats
	if stats.Records != 6 || stats.BadTimestamps != 1 || stats.Duplicates != 1 || stats.BadValues != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestCanonicalize_UnrecognizedNamesSource(t *testing.T) {
	table := RawTable{Name: "odd_hourly.csv", Header: []string{"a", "b", "c"}}
	_, err := NewCanonicalizer().Canonicalize("ODD", table)
	if !errors.Is(err, ErrUnrecognizedSchema) {
		t.Fatalf("expected ErrUnrecognizedSchema, got %v", err)
	}
}

func TestParseTimestamp_Layouts(t *testing.T) {
	want := time.Date(2021, 3, 4, 5, 0, 0, 0, time.UTC)
	for _, value := range []string{
		"2021-03-04 05:00:00",
		"2021-03-04T05:00:00",
		"2021-03-04T05:00:00Z",
		"2021-03-04 05:00",
		"03/04/2021 05:00",
		`"2021-03-04 05:00:00"`,
	} {
		got, err := ParseTimestamp(value)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parse %q: expected %s, got %s", value, want, got)
		}
	}
	if _, err := ParseTimestamp("yesterday"); !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}

func TestRegionFromFileName(t *testing.T) {
	cases := map[string]string{
		"data/pjm_hourly.csv":   "PJM",
		"AEP_hourly.xlsx":       "AEP",
		"/tmp/x/dom_hourly.csv": "DOM",
		"pjm_load_hourly.csv":   "PJM",
		"NI_hourly":             "NI",
	}
	for name, want := range cases {
		got, err := RegionFromFileName(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != want {
			t.Fatalf("%s: expected %s, got %s", name, want, got)
		}
	}
	if _, err := RegionFromFileName("_hourly.csv"); !errors.Is(err, ErrEmptyRegion) {
		t.Fatalf("expected ErrEmptyRegion, got %v", err)
	}
}

func TestCanonicalize_NonFiniteValuesAreNull(t *testing.T) {
	table := RawTable{
		Name:   "PJM_hourly.csv",
		Header: []string{"Datetime", "PJM_MW"},
		Records: [][]string{
			{"2021-01-01 00:00:00", "NaN"},
			{"2021-01-01 01:00:00", "100"},
			{"2021-01-01 02:00:00", "Inf"},
			{"2021-01-01 03:00:00", "-inf"},
			{"2021-01-01 04:00:00", "nan"},
			{"2021-01-01 05:00:00", "N/A"},
			{"2021-01-01 06:00:00", "120"},
		},
	}
	series, err := NewCanonicalizer().Canonicalize("PJM", table)
	if err != nil {
		t.Fatalf("canonicalize: %v", err)
	}
	if got := len(series.Readings); got != 7 {
		t.Fatalf("expected 7 readings, got %d", got)
	}
	valid := 0
	for _, r := range series.Readings {
		if r.Value.Valid {
			valid++
		}
	}
	if valid != 2 {
		t.Fatalf("expected only 100 and 120 valid, got %d valid", valid)
	}
	if series.Stats.BadValues != 0 {
		t.Fatalf("missing markers must not count as bad values, got %d", series.Stats.BadValues)
	}
}
