package service

import (
	"context"
	"log/slog"
	"time"

	"blogicum/internal/blog"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/repository"
	"blogicum/internal/validation"
)

// ImageRemover deletes a stored post image by its relative path.
type ImageRemover interface {
	Remove(rel string) error
}

// PostService applies the visibility and ownership rules to post pages.
type PostService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	locations  repository.LocationRepository
	images     ImageRemover
	pageSize   int
	now        func() time.Time
}

// PostPage is one page of a post listing.
type PostPage struct {
	Posts []models.Post
	blog.Page
}

// PostInput holds the editable fields of a post form.
type PostInput struct {
	Title       string
	Text        string
	PubDate     time.Time
	IsPublished bool
	CategoryID  *uint
	LocationID  *uint
}

type CreatePostInput struct {
	AuthorID uint
	PostInput
	// Image is the stored path of an uploaded image, if any.
	Image string
}

type UpdatePostInput struct {
	UserID uint
	PostID uint
	PostInput
	// Image replaces the current image when set.
	Image       string
	RemoveImage bool
}

// PostChoices are the categories and locations a post form offers.
type PostChoices struct {
	Categories []models.Category
	Locations  []models.Location
}

func NewPostService(
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	locations repository.LocationRepository,
	images ImageRemover,
	pageSize int,
) *PostService {
	if pageSize <= 0 {
		pageSize = blog.DefaultPageSize
	}
	return &PostService{
		posts:      posts,
		categories: categories,
		locations:  locations,
		images:     images,
		pageSize:   pageSize,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for visibility checks.
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

// Now is the instant visibility is evaluated at for the current request.
func (s *PostService) Now() time.Time {
	return s.now()
}

// Index lists every publicly visible post.
func (s *PostService) Index(ctx context.Context, page int) (*PostPage, error) {
	return s.list(ctx, []blog.Scope{blog.Published(s.now())}, page)
}

// Category lists the visible posts of a published category. A missing and an unpublished
// category are both NOT_FOUND.
func (s *PostService) Category(ctx context.Context, slug string, page int) (*models.Category, *PostPage, error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	if !category.IsPublished {
		return nil, nil, models.NewNotFoundError("Category", slug)
	}
	posts, err := s.list(ctx, []blog.Scope{blog.Published(s.now()), blog.InCategory(category.ID)}, page)
	if err != nil {
		return nil, nil, err
	}
	return category, posts, nil
}

// Profile lists authorID's posts. The author sees all of them; anyone else sees only the
// publicly visible ones.
func (s *PostService) Profile(ctx context.Context, authorID, viewerID uint, page int) (*PostPage, error) {
	scopes := []blog.Scope{blog.ByAuthor(authorID)}
	if !blog.IsOwner(viewerID, authorID) {
		scopes = append(scopes, blog.Published(s.now()))
	}
	return s.list(ctx, scopes, page)
}

func (s *PostService) list(ctx context.Context, scopes []blog.Scope, number int) (*PostPage, error) {
	total, err := s.posts.Count(ctx, scopes)
	if err != nil {
		return nil, err
	}
	page, err := blog.Paginate(number, s.pageSize, total)
	if err != nil {
		return nil, models.NewNotFoundError("Page", number)
	}
	posts, err := s.posts.List(ctx, scopes, page.Size, page.Offset())
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Page: page}, nil
}

// Get loads a post whatever its visibility. Used by ownership-guarded pages.
func (s *PostService) Get(ctx context.Context, postID uint) (*models.Post, error) {
	return s.posts.GetByID(ctx, postID)
}

// Detail loads a post for viewerID. Hidden posts of other authors are NOT_FOUND, exactly
// like missing ones.
func (s *PostService) Detail(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !blog.CanView(post, viewerID, s.now()) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}

// Choices returns the published categories and locations offered by the post form.
func (s *PostService) Choices(ctx context.Context) (*PostChoices, error) {
	categories, err := s.categories.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	locations, err := s.locations.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	return &PostChoices{Categories: categories, Locations: locations}, nil
}

func (s *PostService) Create(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if in.AuthorID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if err := s.validate(ctx, in.PostInput); err != nil {
		return nil, err
	}

	post := &models.Post{AuthorID: in.AuthorID, Image: in.Image}
	in.apply(post)
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("post", "create").Inc()
	return post, nil
}

// Update edits a post owned by in.UserID. Non-owners get FORBIDDEN and nothing changes.
func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !blog.IsOwner(in.UserID, post.AuthorID) {
		observability.OwnershipDenials.WithLabelValues("post").Inc()
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}
	if err := s.validate(ctx, in.PostInput); err != nil {
		return nil, err
	}

	stale := ""
	switch {
	case in.Image != "":
		stale, post.Image = post.Image, in.Image
	case in.RemoveImage:
		stale, post.Image = post.Image, ""
	}
	in.apply(post)

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	s.removeImage(ctx, stale)
	observability.ContentMutations.WithLabelValues("post", "update").Inc()
	return post, nil
}

// Delete removes a post owned by userID together with its comments and returns it.
func (s *PostService) Delete(ctx context.Context, userID, postID uint) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !blog.IsOwner(userID, post.AuthorID) {
		observability.OwnershipDenials.WithLabelValues("post").Inc()
		return nil, models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return nil, err
	}
	s.removeImage(ctx, post.Image)
	observability.ContentMutations.WithLabelValues("post", "delete").Inc()
	return post, nil
}

func (s *PostService) removeImage(ctx context.Context, rel string) {
	if rel == "" || s.images == nil {
		return
	}
	if err := s.images.Remove(rel); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove post image",
			slog.String("image", rel), slog.String("error", err.Error()))
	}
}

func (in PostInput) apply(post *models.Post) {
	post.Title = in.Title
	post.Text = in.Text
	post.PubDate = in.PubDate.UTC()
	post.IsPublished = in.IsPublished
	post.CategoryID = in.CategoryID
	post.LocationID = in.LocationID
}

// Validate checks a post form without saving anything.
func (s *PostService) Validate(ctx context.Context, in PostInput) error {
	return s.validate(ctx, in)
}

// validate collects every field error of a post form at once.
func (s *PostService) validate(ctx context.Context, in PostInput) error {
	fields := map[string]string{}

	if err := validation.ValidateTitle(in.Title); err != nil {
		fields["title"] = err.Error()
	}
	if err := validation.ValidateText(in.Text); err != nil {
		fields["text"] = err.Error()
	}
	if in.PubDate.IsZero() {
		fields["pub_date"] = "this field is required"
	}

	if in.CategoryID == nil {
		fields["category"] = "this field is required"
	} else {
		category, err := s.categories.GetByID(ctx, *in.CategoryID)
		switch {
		case models.IsCode(err, models.CodeNotFound), err == nil && !category.IsPublished:
			fields["category"] = "select a valid choice"
		case err != nil:
			return err
		}
	}

	if in.LocationID != nil {
		location, err := s.locations.GetByID(ctx, *in.LocationID)
		switch {
		case models.IsCode(err, models.CodeNotFound), err == nil && !location.IsPublished:
			fields["location"] = "select a valid choice"
		case err != nil:
			return err
		}
	}

	if appErr := models.NewFieldErrors(fields); appErr != nil {
		return appErr
	}
	return nil
}
