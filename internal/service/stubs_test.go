package service

import (
	"context"
	"errors"
	"testing"

	"blogicum/internal/blog"
	"blogicum/internal/models"
	"blogicum/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn  func(context.Context, *models.Post) error
	getByIDFn func(context.Context, uint) (*models.Post, error)
	updateFn  func(context.Context, *models.Post) error
	deleteFn  func(context.Context, uint) error
	listFn    func(context.Context, []blog.Scope, int, int) ([]models.Post, error)
	countFn   func(context.Context, []blog.Scope) (int64, error)
	searchFn  func(context.Context, string, string, int) ([]models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, scopes []blog.Scope, limit, offset int) ([]models.Post, error) {
	return s.listFn(ctx, scopes, limit, offset)
}
func (s *postRepoStub) Count(ctx context.Context, scopes []blog.Scope) (int64, error) {
	return s.countFn(ctx, scopes)
}
func (s *postRepoStub) Search(ctx context.Context, title, categorySlug string, limit int) ([]models.Post, error) {
	return s.searchFn(ctx, title, categorySlug, limit)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Post, error) { return nil, models.NewNotFoundError("Post", id) },
		updateFn:  func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:  func(_ context.Context, _ uint) error { return nil },
		listFn:    func(_ context.Context, _ []blog.Scope, _, _ int) ([]models.Post, error) { return nil, nil },
		countFn:   func(_ context.Context, _ []blog.Scope) (int64, error) { return 0, nil },
		searchFn:  func(_ context.Context, _, _ string, _ int) ([]models.Post, error) { return nil, nil },
	}
}

// categoryRepoStub is a stub for repository.CategoryRepository.
type categoryRepoStub struct {
	getBySlugFn     func(context.Context, string) (*models.Category, error)
	getByIDFn       func(context.Context, uint) (*models.Category, error)
	listPublishedFn func(context.Context) ([]models.Category, error)
	listFn          func(context.Context) ([]models.Category, error)
	createFn        func(context.Context, *models.Category) error
	upsertFn        func(context.Context, *models.Category) error
	setPublishedFn  func(context.Context, string, bool) error
	deleteFn        func(context.Context, string) error
}

func (s *categoryRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *categoryRepoStub) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return s.getByIDFn(ctx, id)
}
func (s *categoryRepoStub) ListPublished(ctx context.Context) ([]models.Category, error) {
	return s.listPublishedFn(ctx)
}
func (s *categoryRepoStub) List(ctx context.Context) ([]models.Category, error) {
	return s.listFn(ctx)
}
func (s *categoryRepoStub) Create(ctx context.Context, c *models.Category) error {
	return s.createFn(ctx, c)
}
func (s *categoryRepoStub) Upsert(ctx context.Context, c *models.Category) error {
	return s.upsertFn(ctx, c)
}
func (s *categoryRepoStub) SetPublished(ctx context.Context, slug string, published bool) error {
	return s.setPublishedFn(ctx, slug, published)
}
func (s *categoryRepoStub) Delete(ctx context.Context, slug string) error {
	return s.deleteFn(ctx, slug)
}

// categoriesOf serves lookups from a fixed set of categories.
func categoriesOf(categories ...models.Category) *categoryRepoStub {
	find := func(match func(models.Category) bool) (*models.Category, bool) {
		for i := range categories {
			if match(categories[i]) {
				c := categories[i]
				return &c, true
			}
		}
		return nil, false
	}
	return &categoryRepoStub{
		getBySlugFn: func(_ context.Context, slug string) (*models.Category, error) {
			if c, ok := find(func(c models.Category) bool { return c.Slug == slug }); ok {
				return c, nil
			}
			return nil, models.NewNotFoundError("Category", slug)
		},
		getByIDFn: func(_ context.Context, id uint) (*models.Category, error) {
			if c, ok := find(func(c models.Category) bool { return c.ID == id }); ok {
				return c, nil
			}
			return nil, models.NewNotFoundError("Category", id)
		},
		listPublishedFn: func(_ context.Context) ([]models.Category, error) {
			var out []models.Category
			for _, c := range categories {
				if c.IsPublished {
					out = append(out, c)
				}
			}
			return out, nil
		},
		listFn:         func(_ context.Context) ([]models.Category, error) { return categories, nil },
		createFn:       func(_ context.Context, _ *models.Category) error { return nil },
		upsertFn:       func(_ context.Context, _ *models.Category) error { return nil },
		setPublishedFn: func(_ context.Context, _ string, _ bool) error { return nil },
		deleteFn:       func(_ context.Context, _ string) error { return nil },
	}
}

// locationRepoStub is a stub for repository.LocationRepository.
type locationRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.Location, error)
	findByNameFn    func(context.Context, string) (*models.Location, error)
	listPublishedFn func(context.Context) ([]models.Location, error)
	listFn          func(context.Context) ([]models.Location, error)
	createFn        func(context.Context, *models.Location) error
	setPublishedFn  func(context.Context, uint, bool) error
	deleteFn        func(context.Context, uint) error
}

func (s *locationRepoStub) GetByID(ctx context.Context, id uint) (*models.Location, error) {
	return s.getByIDFn(ctx, id)
}
func (s *locationRepoStub) FindByName(ctx context.Context, name string) (*models.Location, error) {
	return s.findByNameFn(ctx, name)
}
func (s *locationRepoStub) ListPublished(ctx context.Context) ([]models.Location, error) {
	return s.listPublishedFn(ctx)
}
func (s *locationRepoStub) List(ctx context.Context) ([]models.Location, error) {
	return s.listFn(ctx)
}
func (s *locationRepoStub) Create(ctx context.Context, l *models.Location) error {
	return s.createFn(ctx, l)
}
func (s *locationRepoStub) SetPublished(ctx context.Context, id uint, published bool) error {
	return s.setPublishedFn(ctx, id, published)
}
func (s *locationRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func locationsOf(locations ...models.Location) *locationRepoStub {
	return &locationRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.Location, error) {
			for _, l := range locations {
				if l.ID == id {
					l := l
					return &l, nil
				}
			}
			return nil, models.NewNotFoundError("Location", id)
		},
		findByNameFn: func(_ context.Context, name string) (*models.Location, error) {
			for _, l := range locations {
				if l.Name == name {
					l := l
					return &l, nil
				}
			}
			return nil, nil
		},
		listPublishedFn: func(_ context.Context) ([]models.Location, error) { return locations, nil },
		listFn:          func(_ context.Context) ([]models.Location, error) { return locations, nil },
		createFn:        func(_ context.Context, _ *models.Location) error { return nil },
		setPublishedFn:  func(_ context.Context, _ uint, _ bool) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]models.Comment, error)
	updateTextFn func(context.Context, uint, string) error
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, c *models.Comment) error {
	return s.createFn(ctx, c)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) UpdateText(ctx context.Context, id uint, text string) error {
	return s.updateTextFn(ctx, id, text)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return nil, models.NewNotFoundError("Comment", id) },
		listByPostFn: func(_ context.Context, _ uint) ([]models.Comment, error) { return nil, nil },
		updateTextFn: func(_ context.Context, _ uint, _ string) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn            func(context.Context, uint) (*models.User, error)
	getByUsernameFn      func(context.Context, string) (*models.User, error)
	findByUsernameFn     func(context.Context, string) (*models.User, error)
	createFn             func(context.Context, *models.User) error
	updateProfileFn      func(context.Context, *models.User) error
	setAdminFn           func(context.Context, uint, bool) error
	deleteFn             func(context.Context, uint) error
	listWithPostCountsFn func(context.Context) ([]repository.UserPostCount, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, u *models.User) error {
	return s.createFn(ctx, u)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, u *models.User) error {
	return s.updateProfileFn(ctx, u)
}
func (s *userRepoStub) SetAdmin(ctx context.Context, id uint, admin bool) error {
	return s.setAdminFn(ctx, id, admin)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) ListWithPostCounts(ctx context.Context) ([]repository.UserPostCount, error) {
	return s.listWithPostCountsFn(ctx)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:            func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByUsernameFn:      func(_ context.Context, u string) (*models.User, error) { return nil, models.NewNotFoundError("User", u) },
		findByUsernameFn:     func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:             func(_ context.Context, _ *models.User) error { return nil },
		updateProfileFn:      func(_ context.Context, _ *models.User) error { return nil },
		setAdminFn:           func(_ context.Context, _ uint, _ bool) error { return nil },
		deleteFn:             func(_ context.Context, _ uint) error { return nil },
		listWithPostCountsFn: func(_ context.Context) ([]repository.UserPostCount, error) { return nil, nil },
	}
}

// assertCode asserts that err is an AppError with the given code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is a VALIDATION_ERROR naming field.
func assertValidationError(t *testing.T, err error, field string) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
	assert.Contains(t, models.FieldErrors(err), field)
}
