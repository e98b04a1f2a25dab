package ingestion

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Column rule names, in priority order.
const (
	RuleTwoColumns   = "two-columns"
	RuleValueSuffix  = "value-suffix"
	RuleSecondColumn = "second-column"
)

// ColumnMatch locates the timestamp and value columns of a header.
type ColumnMatch struct {
	Timestamp int
	Value     int
	Rule      string
}

// ColumnRule maps a header to a ColumnMatch, or reports no match.
type ColumnRule struct {
	Name  string
	Match func(header []string) (ColumnMatch, bool)
}

// DefaultRules returns the column rules in priority order. Suffixes default to _MW.
func DefaultRules(suffixes ...string) []ColumnRule {
	if len(suffixes) == 0 {
		suffixes = []string{DefaultValueSuffix}
	}
	return []ColumnRule{
		{Name: RuleTwoColumns, Match: matchTwoColumns},
		{Name: RuleValueSuffix, Match: func(header []string) (ColumnMatch, bool) {
			return matchValueSuffix(header, suffixes)
		}},
		{Name: RuleSecondColumn, Match: matchSecondColumn},
	}
}

func matchTwoColumns(header []string) (ColumnMatch, bool) {
	if len(header) != 2 {
		return ColumnMatch{}, false
	}
	return ColumnMatch{Timestamp: 0, Value: 1, Rule: RuleTwoColumns}, true
}

func matchValueSuffix(header []string, suffixes []string) (ColumnMatch, bool) {
	ts := timestampIndex(header)
	if ts < 0 {
		return ColumnMatch{}, false
	}
	for i, name := range header {
		if i == ts {
			continue
		}
		for _, suffix := range suffixes {
			if suffix != "" && strings.HasSuffix(strings.TrimSpace(name), suffix) {
				return ColumnMatch{Timestamp: ts, Value: i, Rule: RuleValueSuffix}, true
			}
		}
	}
	return ColumnMatch{}, false
}

func matchSecondColumn(header []string) (ColumnMatch, bool) {
	if len(header) < 2 {
		return ColumnMatch{}, false
	}
	ts := timestampIndex(header)
	if ts < 0 || ts == 1 {
		return ColumnMatch{}, false
	}
	return ColumnMatch{Timestamp: ts, Value: 1, Rule: RuleSecondColumn}, true
}

func timestampIndex(header []string) int {
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), TimestampColumn) {
			return i
		}
	}
	return -1
}

// MatchColumns applies rules in order; the first match wins.
func MatchColumns(header []string, rules []ColumnRule) (ColumnMatch, error) {
	for _, rule := range rules {
		if match, ok := rule.Match(header); ok {
			return match, nil
		}
	}
	return ColumnMatch{}, fmt.Errorf("%w: columns %q", ErrUnrecognizedSchema, header)
}

// Canonicalizer turns raw tables into region series.
type Canonicalizer struct {
	rules  []ColumnRule
	suffix string
}

// NewCanonicalizer builds a canonicalizer recognizing the given value suffixes.
func NewCanonicalizer(suffixes ...string) *Canonicalizer {
	return &Canonicalizer{rules: DefaultRules(suffixes...), suffix: DefaultValueSuffix}
}

// Canonicalize selects (timestamp, value) from the table and names the value
// column after the region. Rows with an unparseable timestamp are dropped,
// unparseable values become null and repeated timestamps keep the first row.
func (c *Canonicalizer) Canonicalize(region string, table RawTable) (RegionSeries, error) {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		return RegionSeries{}, ErrEmptyRegion
	}
	match, err := MatchColumns(table.Header, c.rules)
	if err != nil {
		return RegionSeries{}, fmt.Errorf("%s: %w", table.Name, err)
	}

	series := RegionSeries{
		Region:   region,
		Column:   ColumnName(region, c.suffix),
		Rule:     match.Rule,
		Readings: make([]Reading, 0, len(table.Records)),
	}
	seen := make(map[int64]struct{}, len(table.Records))
	for _, record := range table.Records {
		if isBlank(record) {
			continue
		}
		series.Stats.Records++
		at, err := ParseTimestamp(table.Cell(record, match.Timestamp))
		if err != nil {
			series.Stats.BadTimestamps++
			continue
		}
		key := at.UnixNano()
		if _, dup := seen[key]; dup {
			series.Stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		value, ok := parseValue(table.Cell(record, match.Value))
		if !ok {
			series.Stats.BadValues++
		}
		series.Readings = append(series.Readings, Reading{At: at, Value: value})
	}
	return series, nil
}

// missingMarkers are cell spellings of a missing value. They become null
// without counting as bad values.
var missingMarkers = map[string]struct{}{
	"na": {}, "n/a": {}, "#n/a": {}, "#na": {}, "<na>": {}, "null": {}, "none": {},
}

// parseValue returns null for empty, missing, NaN and infinite cells. ok is
// false only for text that is not a number at all.
func parseValue(raw string) (NullFloat, bool) {
	if raw == "" {
		return Null, true
	}
	if _, missing := missingMarkers[strings.ToLower(raw)]; missing {
		return Null, true
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return Null, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Null, true
	}
	return Float(v), true
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
}

// ParseTimestamp parses the accepted timestamp layouts, in UTC unless the value
// carries an offset.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.Trim(strings.TrimSpace(value), `"`)
	if value == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}
