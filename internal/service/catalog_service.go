package service

import (
	"context"
	"strings"

	"blogicum/internal/models"
	"blogicum/internal/repository"
	"blogicum/internal/validation"
)

// CatalogService manages categories and locations for the admin tooling.
type CatalogService struct {
	categories repository.CategoryRepository
	locations  repository.LocationRepository
}

type CategoryInput struct {
	Title       string
	Description string
	// Slug defaults to the slugified title.
	Slug        string
	IsPublished bool
}

type LocationInput struct {
	Name        string
	IsPublished bool
}

func NewCatalogService(categories repository.CategoryRepository, locations repository.LocationRepository) *CatalogService {
	return &CatalogService{categories: categories, locations: locations}
}

func (in *CategoryInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = validation.Slugify(in.Title)
	}
}

func (in CategoryInput) validate() error {
	fields := map[string]string{}
	if err := validation.ValidateTitle(in.Title); err != nil {
		fields["title"] = err.Error()
	}
	if err := validation.ValidateText(in.Description); err != nil {
		fields["description"] = err.Error()
	}
	if err := validation.ValidateSlug(in.Slug); err != nil {
		fields["slug"] = err.Error()
	}
	if appErr := models.NewFieldErrors(fields); appErr != nil {
		return appErr
	}
	return nil
}

func (in CategoryInput) model() *models.Category {
	return &models.Category{
		Title:       in.Title,
		Description: in.Description,
		Slug:        in.Slug,
		IsPublished: in.IsPublished,
	}
}

// CreateCategory adds a category; a taken slug is a CONFLICT.
func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	category := in.model()
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// UpsertCategory creates the category or updates the one with the same slug.
func (s *CatalogService) UpsertCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	category := in.model()
	if err := s.categories.Upsert(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

// SetCategoryPublished shows or hides a category and, with it, all of its posts.
func (s *CatalogService) SetCategoryPublished(ctx context.Context, slug string, published bool) error {
	return s.categories.SetPublished(ctx, slug, published)
}

// DeleteCategory removes a category; its posts become uncategorized.
func (s *CatalogService) DeleteCategory(ctx context.Context, slug string) error {
	return s.categories.Delete(ctx, slug)
}

// CreateLocation adds a location.
func (s *CatalogService) CreateLocation(ctx context.Context, in LocationInput) (*models.Location, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.ValidateTitle(in.Name); err != nil {
		return nil, models.NewFieldError("name", err.Error())
	}
	location := &models.Location{Name: in.Name, IsPublished: in.IsPublished}
	if err := s.locations.Create(ctx, location); err != nil {
		return nil, err
	}
	return location, nil
}

// EnsureLocation returns the location with this name, creating it when missing.
func (s *CatalogService) EnsureLocation(ctx context.Context, in LocationInput) (*models.Location, bool, error) {
	existing, err := s.locations.FindByName(ctx, strings.TrimSpace(in.Name))
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if existing.IsPublished != in.IsPublished {
			if err := s.locations.SetPublished(ctx, existing.ID, in.IsPublished); err != nil {
				return nil, false, err
			}
			existing.IsPublished = in.IsPublished
		}
		return existing, false, nil
	}
	location, err := s.CreateLocation(ctx, in)
	return location, err == nil, err
}

func (s *CatalogService) ListLocations(ctx context.Context) ([]models.Location, error) {
	return s.locations.List(ctx)
}

func (s *CatalogService) SetLocationPublished(ctx context.Context, id uint, published bool) error {
	return s.locations.SetPublished(ctx, id, published)
}

// DeleteLocation removes a location; its posts keep existing without one.
func (s *CatalogService) DeleteLocation(ctx context.Context, id uint) error {
	return s.locations.Delete(ctx, id)
}
