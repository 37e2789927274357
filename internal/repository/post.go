package repository

import (
	"context"

	"blogicum/internal/blog"
	"blogicum/internal/models"
	"blogicum/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts. Listing methods take the
// scopes that decide which posts a page shows; the repository itself applies no
// visibility rules.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, scopes []blog.Scope, limit, offset int) ([]models.Post, error)
	Count(ctx context.Context, scopes []blog.Scope) (int64, error)
	Search(ctx context.Context, title, categorySlug string, limit int) ([]models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// postColumns are the columns a post edit may change. Author is fixed at creation.
var postColumns = []string{"title", "text", "pub_date", "is_published", "image", "category_id", "location_id"}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("insert", "posts")()
	if err := r.db.WithContext(ctx).Omit("Author", "Category", "Location").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID loads an annotated post regardless of its visibility.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "GetByID", "posts")
	var err error
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("select", "posts")()

	var post models.Post
	err = r.db.WithContext(ctx).
		Model(&models.Post{}).
		Scopes(blog.Annotate).
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, lookupError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("update", "posts")()
	res := r.db.WithContext(ctx).
		Model(&models.Post{ID: post.ID}).
		Select(postColumns).
		Updates(post)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

// Delete removes the post and, through the foreign key, its comments.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "posts")()
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// List returns one window of the posts matched by scopes, annotated and newest first.
func (r *postRepository) List(ctx context.Context, scopes []blog.Scope, limit, offset int) ([]models.Post, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "List", "posts")
	var err error
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackQuery("select", "posts")()

	var posts []models.Post
	err = r.db.WithContext(ctx).
		Model(&models.Post{}).
		Scopes(scopes...).
		Scopes(blog.Annotate).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, scopes []blog.Scope) (int64, error) {
	defer observability.TrackQuery("count", "posts")()
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return total, nil
}

// Search finds posts whose title contains title, optionally within one category.
func (r *postRepository) Search(ctx context.Context, title, categorySlug string, limit int) ([]models.Post, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Scopes(blog.Annotate).
		Where("LOWER(posts.title) LIKE ?", "%"+lowerASCII(title)+"%")
	if categorySlug != "" {
		q = q.Where("posts.category_id IN (?)",
			r.db.Model(&models.Category{}).Select("id").Where("slug = ?", categorySlug))
	}
	var posts []models.Post
	if err := q.Limit(limit).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// lowerASCII lowercases like SQLite's LOWER, which only folds ASCII letters.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
