package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"energy-dashboard/internal/ingestion/application"
	ingestion "energy-dashboard/internal/ingestion/domain"
)

// DefaultPattern matches region files such as AEP_hourly.csv. The leading
// token before the first underscore must be non-empty.
var DefaultPattern = regexp.MustCompile(`(?i)^[^_]+(_.*)?_hourly\.(csv|xlsx)$`)

var errUnsupportedFormat = errors.New("files: unsupported source format")

// Catalog discovers region files in one directory.
type Catalog struct {
	dir     string
	pattern *regexp.Regexp
	logger  *log.Logger
}

// Option customizes a Catalog.
type Option func(*Catalog)

// WithPattern overrides the file name pattern.
func WithPattern(pattern *regexp.Regexp) Option {
	return func(c *Catalog) {
		if pattern != nil {
			c.pattern = pattern
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCatalog constructs a file catalog rooted at dir.
func NewCatalog(dir string, opts ...Option) (*Catalog, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("files: data directory is required")
	}
	c := &Catalog{
		dir:     dir,
		pattern: DefaultPattern,
		logger:  log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Discover lists matching files sorted by name. A missing directory yields
// no sources.
func (c *Catalog) Discover(ctx context.Context) ([]application.SourceRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.logger.Printf("files: data directory %s does not exist", c.dir)
			return nil, nil
		}
		return nil, fmt.Errorf("files: list %s: %w", c.dir, err)
	}

	refs := make([]application.SourceRef, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !c.pattern.MatchString(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("files: stat %s: %w", entry.Name(), err)
		}
		refs = append(refs, application.SourceRef{
			Name:     entry.Name(),
			Location: filepath.Join(c.dir, entry.Name()),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}
	return refs, nil
}

// Read parses one discovered file into a raw table.
func (c *Catalog) Read(ctx context.Context, ref application.SourceRef) (ingestion.RawTable, error) {
	if err := ctx.Err(); err != nil {
		return ingestion.RawTable{}, err
	}
	path := ref.Location
	if path == "" {
		path = filepath.Join(c.dir, ref.Name)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx":
		return ReadXLSX(path)
	default:
		return ingestion.RawTable{}, fmt.Errorf("%w: %s", errUnsupportedFormat, ref.Name)
	}
}
