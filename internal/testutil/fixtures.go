package testutil

import (
	"testing"
	"time"

	"blogicum/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Fixtures inserts rows for tests with sensible defaults.
type Fixtures struct {
	t  testing.TB
	db *gorm.DB
}

// NewFixtures binds a fixture builder to db.
func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

// User creates a user with a placeholder password hash.
func (f *Fixtures) User(username string) *models.User {
	f.t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

// Category creates a category with the given slug and published flag.
func (f *Fixtures) Category(slug string, published bool) *models.Category {
	f.t.Helper()
	c := &models.Category{Title: slug, Description: "About " + slug, Slug: slug, IsPublished: published}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

// Location creates a published location.
func (f *Fixtures) Location(name string) *models.Location {
	f.t.Helper()
	l := &models.Location{Name: name, IsPublished: true}
	require.NoError(f.t, f.db.Create(l).Error)
	return l
}

// PostOption customizes a fixture post.
type PostOption func(*models.Post)

// Unpublished marks the post as hidden by its author.
func Unpublished() PostOption {
	return func(p *models.Post) { p.IsPublished = false }
}

// PublishedAt sets the post's publication time.
func PublishedAt(t time.Time) PostOption {
	return func(p *models.Post) { p.PubDate = t.UTC() }
}

// InLocation attaches the post to a location.
func InLocation(l *models.Location) PostOption {
	return func(p *models.Post) { p.LocationID = &l.ID }
}

// WithoutCategory leaves the post uncategorized.
func WithoutCategory() PostOption {
	return func(p *models.Post) { p.CategoryID = nil }
}

// Post creates a published post by author in category, dated an hour ago unless overridden.
func (f *Fixtures) Post(title string, author *models.User, category *models.Category, opts ...PostOption) *models.Post {
	f.t.Helper()
	p := &models.Post{
		Title:       title,
		Text:        "Body of " + title,
		PubDate:     time.Now().UTC().Add(-time.Hour),
		IsPublished: true,
		AuthorID:    author.ID,
	}
	if category != nil {
		p.CategoryID = &category.ID
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(f.t, f.db.Create(p).Error)
	return p
}

// Comment creates a comment by author on post.
func (f *Fixtures) Comment(post *models.Post, author *models.User, text string) *models.Comment {
	f.t.Helper()
	c := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: text}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}
