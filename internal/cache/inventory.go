package cache

import (
	"context"
	"fmt"
	"time"
)

// Key families, used as metric labels.
const (
	FamilyCategory = "category"
	FamilyChoices  = "choices"
)

const (
	CategoryKeyPrefix = "category:%s"
	// PublishedCategoriesKey holds the category choices offered by the post form.
	PublishedCategoriesKey = "choices:categories"
	// PublishedLocationsKey holds the location choices offered by the post form.
	PublishedLocationsKey = "choices:locations"
)

const (
	CategoryTTL = 10 * time.Minute
	ChoicesTTL  = 10 * time.Minute
)

func CategoryKey(slug string) string {
	return fmt.Sprintf(CategoryKeyPrefix, slug)
}

// InvalidateCategory drops the cached category and the post form choices.
func (c *Cache) InvalidateCategory(ctx context.Context, slug string) {
	c.Invalidate(ctx, CategoryKey(slug), PublishedCategoriesKey)
}

// InvalidateLocations drops the cached location choices.
func (c *Cache) InvalidateLocations(ctx context.Context) {
	c.Invalidate(ctx, PublishedLocationsKey)
}
