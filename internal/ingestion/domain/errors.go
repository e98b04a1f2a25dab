package ingestion

import "errors"

var (
	// ErrNoSources is returned when discovery finds no region source at all.
	ErrNoSources = errors.New("ingestion: no region data sources found")
	// ErrUnrecognizedSchema is returned when no column rule matches a source header.
	ErrUnrecognizedSchema = errors.New("ingestion: unrecognized source schema")
	// ErrNoUsableData is returned when every discovered source failed to load.
	ErrNoUsableData = errors.New("ingestion: no usable data")
	// ErrEmptyRegion is returned when a region identifier cannot be derived.
	ErrEmptyRegion = errors.New("ingestion: empty region")
	// ErrDuplicateRegion is returned when two sources resolve to the same region.
	ErrDuplicateRegion = errors.New("ingestion: duplicate region")
	// ErrInvalidTimestamp is returned when a timestamp matches no accepted layout.
	ErrInvalidTimestamp = errors.New("ingestion: invalid timestamp")
	// ErrInvalidDate is returned when a calendar date cannot be parsed.
	ErrInvalidDate = errors.New("ingestion: invalid date")
	// ErrUnknownRegion is returned when a region is not a column of the table.
	ErrUnknownRegion = errors.New("ingestion: unknown region")
)
