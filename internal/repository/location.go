package repository

import (
	"context"

	"blogicum/internal/cache"
	"blogicum/internal/models"

	"gorm.io/gorm"
)

// LocationRepository defines persistence operations for locations.
type LocationRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Location, error)
	FindByName(ctx context.Context, name string) (*models.Location, error)
	ListPublished(ctx context.Context) ([]models.Location, error)
	List(ctx context.Context) ([]models.Location, error)
	Create(ctx context.Context, location *models.Location) error
	SetPublished(ctx context.Context, id uint, published bool) error
	Delete(ctx context.Context, id uint) error
}

type locationRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewLocationRepository returns a LocationRepository caching the published list in c.
func NewLocationRepository(db *gorm.DB, c *cache.Cache) LocationRepository {
	return &locationRepository{db: db, cache: c}
}

func (r *locationRepository) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).First(&location, id).Error; err != nil {
		return nil, lookupError(err, "Location", id)
	}
	return &location, nil
}

// FindByName returns nil, nil when no location has that name.
func (r *locationRepository) FindByName(ctx context.Context, name string) (*models.Location, error) {
	var locations []models.Location
	if err := r.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&locations).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(locations) == 0 {
		return nil, nil
	}
	return &locations[0], nil
}

func (r *locationRepository) ListPublished(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	err := r.cache.Aside(ctx, cache.FamilyChoices, cache.PublishedLocationsKey, &locations, cache.ChoicesTTL, func() error {
		if err := r.db.WithContext(ctx).Where("is_published = ?", true).Order("name ASC").Find(&locations).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	return locations, err
}

func (r *locationRepository) List(ctx context.Context) ([]models.Location, error) {
	var locations []models.Location
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&locations).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return locations, nil
}

func (r *locationRepository) Create(ctx context.Context, location *models.Location) error {
	if err := r.db.WithContext(ctx).Create(location).Error; err != nil {
		return models.NewInternalError(err)
	}
	r.cache.InvalidateLocations(ctx)
	return nil
}

func (r *locationRepository) SetPublished(ctx context.Context, id uint, published bool) error {
	res := r.db.WithContext(ctx).Model(&models.Location{ID: id}).Update("is_published", published)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Location", id)
	}
	r.cache.InvalidateLocations(ctx)
	return nil
}

// Delete removes the location. Posts pointing at it keep existing without a location.
func (r *locationRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Location{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Location", id)
	}
	r.cache.InvalidateLocations(ctx)
	return nil
}
