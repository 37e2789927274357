// Package blog holds the publication rules shared by every page: which posts the public
// may see, how listings are annotated and ordered, who owns what, and how lists are paged.
package blog

import (
	"time"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// Scope narrows or decorates a posts query.
type Scope = func(*gorm.DB) *gorm.DB

// IsVisible reports whether the public may see p at time now: the post is published, its
// publication time has passed and it sits in a published category. Posts without a
// category are never public. p.Category must be loaded for posts that have one.
func IsVisible(p *models.Post, now time.Time) bool {
	if p == nil || !p.IsPublished || p.PubDate.After(now) {
		return false
	}
	return p.Category != nil && p.Category.IsPublished
}

// CanView reports whether viewerID may open p's detail page. Authors always see their own
// posts; everyone else needs IsVisible. viewerID 0 is an anonymous visitor.
func CanView(p *models.Post, viewerID uint, now time.Time) bool {
	if p == nil {
		return false
	}
	return IsOwner(viewerID, p.AuthorID) || IsVisible(p, now)
}

// Published restricts a posts query to the rows IsVisible accepts at now.
func Published(now time.Time) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ? AND posts.pub_date <= ? AND categories.is_published = ?",
				true, now.UTC(), true)
	}
}

// InCategory restricts a posts query to one category.
func InCategory(categoryID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.category_id = ?", categoryID)
	}
}

// ByAuthor restricts a posts query to one author.
func ByAuthor(authorID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", authorID)
	}
}

// FilterVisible is the in-memory counterpart of Published for already loaded posts.
func FilterVisible(posts []models.Post, now time.Time) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for i := range posts {
		if IsVisible(&posts[i], now) {
			out = append(out, posts[i])
		}
	}
	return out
}
