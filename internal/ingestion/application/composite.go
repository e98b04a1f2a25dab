package application

import (
	"context"
	"errors"
	"fmt"

	ingestion "energy-dashboard/internal/ingestion/domain"
)

// CompositeCatalog concatenates catalogs in order and routes reads back to the
// catalog that discovered the source.
type CompositeCatalog struct {
	names    []string
	catalogs []SourceCatalog
}

// NewCompositeCatalog constructs an empty CompositeCatalog.
func NewCompositeCatalog() *CompositeCatalog {
	return &CompositeCatalog{}
}

// Add appends a named catalog. Names must be unique.
func (c *CompositeCatalog) Add(name string, catalog SourceCatalog) error {
	if name == "" {
		return errors.New("composite catalog: empty name")
	}
	if catalog == nil {
		return errors.New("composite catalog: nil catalog")
	}
	for _, existing := range c.names {
		if existing == name {
			return fmt.Errorf("composite catalog: duplicate name %s", name)
		}
	}
	c.names = append(c.names, name)
	c.catalogs = append(c.catalogs, catalog)
	return nil
}

// Len returns the number of catalogs.
func (c *CompositeCatalog) Len() int { return len(c.catalogs) }

// Discover lists the sources of every catalog, in catalog order.
func (c *CompositeCatalog) Discover(ctx context.Context) ([]SourceRef, error) {
	var refs []SourceRef
	for i, catalog := range c.catalogs {
		found, err := catalog.Discover(ctx)
		if err != nil {
			return nil, fmt.Errorf("composite catalog: %s: %w", c.names[i], err)
		}
		for _, ref := range found {
			ref.Origin = c.names[i]
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

// Read forwards to the catalog named by ref.Origin.
func (c *CompositeCatalog) Read(ctx context.Context, ref SourceRef) (ingestion.RawTable, error) {
	for i, name := range c.names {
		if name == ref.Origin {
			return c.catalogs[i].Read(ctx, ref)
		}
	}
	return ingestion.RawTable{}, fmt.Errorf("composite catalog: unknown origin %q", ref.Origin)
}
