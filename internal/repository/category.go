package repository

import (
	"context"
	"errors"

	"blogicum/internal/cache"
	"blogicum/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	ListPublished(ctx context.Context) ([]models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Upsert(ctx context.Context, category *models.Category) error
	SetPublished(ctx context.Context, slug string, published bool) error
	Delete(ctx context.Context, slug string) error
}

type categoryRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewCategoryRepository returns a CategoryRepository that caches slug lookups and the
// published list in c. c may wrap a nil client.
func NewCategoryRepository(db *gorm.DB, c *cache.Cache) CategoryRepository {
	return &categoryRepository{db: db, cache: c}
}

// GetBySlug returns the category whatever its published state; callers decide visibility.
func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := r.cache.Aside(ctx, cache.FamilyCategory, cache.CategoryKey(slug), &category, cache.CategoryTTL, func() error {
		if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
			return lookupError(err, "Category", slug)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, lookupError(err, "Category", id)
	}
	return &category, nil
}

// ListPublished returns the categories offered in the post form.
func (r *categoryRepository) ListPublished(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.cache.Aside(ctx, cache.FamilyChoices, cache.PublishedCategoriesKey, &categories, cache.ChoicesTTL, func() error {
		if err := r.db.WithContext(ctx).Where("is_published = ?", true).Order("title ASC").Find(&categories).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	return categories, err
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&categories).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return categories, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("slug", "A category with this slug already exists.")
		}
		return models.NewInternalError(err)
	}
	r.cache.InvalidateCategory(ctx, category.Slug)
	return nil
}

// Upsert creates the category or overwrites title, description and published flag of the
// existing one with the same slug.
func (r *categoryRepository) Upsert(ctx context.Context, category *models.Category) error {
	var existing models.Category
	err := r.db.WithContext(ctx).Where("slug = ?", category.Slug).First(&existing).Error
	switch {
	case err == nil:
		category.ID = existing.ID
		category.CreatedAt = existing.CreatedAt
		if err := r.db.WithContext(ctx).Model(&existing).
			Select("title", "description", "is_published").
			Updates(category).Error; err != nil {
			return models.NewInternalError(err)
		}
		r.cache.InvalidateCategory(ctx, category.Slug)
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return r.Create(ctx, category)
	default:
		return models.NewInternalError(err)
	}
}

func (r *categoryRepository) SetPublished(ctx context.Context, slug string, published bool) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug).Update("is_published", published)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Category", slug)
	}
	r.cache.InvalidateCategory(ctx, slug)
	return nil
}

// Delete removes the category. Its posts stay, uncategorized.
func (r *categoryRepository) Delete(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Category{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Category", slug)
	}
	r.cache.InvalidateCategory(ctx, slug)
	return nil
}
