// Package fixtures imports categories and locations from YAML files.
package fixtures

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"blogicum/internal/models"
	"blogicum/internal/service"

	"gopkg.in/yaml.v3"
)

// Catalog is the part of the catalog service an import needs.
type Catalog interface {
	UpsertCategory(ctx context.Context, in service.CategoryInput) (*models.Category, error)
	EnsureLocation(ctx context.Context, in service.LocationInput) (*models.Location, bool, error)
}

// File is the document layout:
//
//	categories:
//	  - title: Travel
//	    slug: travel
//	    description: Trips and places
//	    is_published: true
//	locations:
//	  - name: Oslo
type File struct {
	Categories []Category `yaml:"categories"`
	Locations  []Location `yaml:"locations"`
}

// Category is one category entry. A missing is_published means published.
type Category struct {
	Title       string `yaml:"title"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	IsPublished *bool  `yaml:"is_published"`
}

// Location is one location entry. A missing is_published means published.
type Location struct {
	Name        string `yaml:"name"`
	IsPublished *bool  `yaml:"is_published"`
}

// Report counts what an import changed.
type Report struct {
	Categories        int
	LocationsCreated  int
	LocationsExisting int
}

func published(p *bool) bool {
	return p == nil || *p
}

// Parse decodes a fixture document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &f, nil
}

// ImportFile reads path and imports it into catalog.
func ImportFile(ctx context.Context, catalog Catalog, path string) (*Report, error) {
	fh, err := os.Open(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("open fixtures: %w", err)
	}
	defer func() { _ = fh.Close() }()

	f, err := Parse(fh)
	if err != nil {
		return nil, err
	}
	return Import(ctx, catalog, f)
}

// Import upserts categories by slug and ensures locations by name. It stops at the first
// invalid entry; entries before it stay imported.
func Import(ctx context.Context, catalog Catalog, f *File) (*Report, error) {
	report := &Report{}
	for i, c := range f.Categories {
		_, err := catalog.UpsertCategory(ctx, service.CategoryInput{
			Title:       c.Title,
			Description: c.Description,
			Slug:        c.Slug,
			IsPublished: published(c.IsPublished),
		})
		if err != nil {
			return report, fmt.Errorf("category #%d (%s): %w", i+1, c.Title, err)
		}
		report.Categories++
	}
	for i, l := range f.Locations {
		_, created, err := catalog.EnsureLocation(ctx, service.LocationInput{
			Name:        l.Name,
			IsPublished: published(l.IsPublished),
		})
		if err != nil {
			return report, fmt.Errorf("location #%d (%s): %w", i+1, l.Name, err)
		}
		if created {
			report.LocationsCreated++
		} else {
			report.LocationsExisting++
		}
	}
	return report, nil
}
