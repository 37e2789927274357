package service

import (
	"context"
	"testing"
	"time"

	"blogicum/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentService(comments *commentRepoStub, posts *postRepoStub) *CommentService {
	return NewCommentService(comments, posts).WithClock(func() time.Time { return fixedNow })
}

func postsByID(posts ...*models.Post) *postRepoStub {
	repo := noopPostRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
		for _, p := range posts {
			if p.ID == id {
				return p, nil
			}
		}
		return nil, models.NewNotFoundError("Post", id)
	}
	return repo
}

func TestCommentService_CreateComment(t *testing.T) {
	t.Parallel()

	visible := &models.Post{ID: 1, AuthorID: 7, IsPublished: true, PubDate: fixedNow.Add(-time.Hour), Category: &published}
	scheduled := &models.Post{ID: 2, AuthorID: 7, IsPublished: true, PubDate: fixedNow.Add(time.Hour), Category: &published}

	t.Run("hidden post is not found for strangers", func(t *testing.T) {
		t.Parallel()
		comments := noopCommentRepo()
		comments.createFn = func(_ context.Context, _ *models.Comment) error {
			t.Fatal("comment must not be stored")
			return nil
		}
		_, err := newCommentService(comments, postsByID(visible, scheduled)).CreateComment(context.Background(), CreateCommentInput{
			UserID: 8, PostID: 2, Text: "first!",
		})
		assertCode(t, err, models.CodeNotFound)
	})

	t.Run("author may comment on own scheduled post", func(t *testing.T) {
		t.Parallel()
		comments := noopCommentRepo()
		var stored *models.Comment
		comments.createFn = func(_ context.Context, c *models.Comment) error {
			c.ID = 3
			stored = c
			return nil
		}
		comments.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return stored, nil
		}

		c, err := newCommentService(comments, postsByID(visible, scheduled)).CreateComment(context.Background(), CreateCommentInput{
			UserID: 7, PostID: 2, Text: "note to self",
		})
		require.NoError(t, err)
		assert.Equal(t, uint(3), c.ID)
		assert.Equal(t, uint(7), c.AuthorID)
		assert.Equal(t, uint(2), c.PostID)
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()
		_, err := newCommentService(noopCommentRepo(), postsByID(visible)).CreateComment(context.Background(), CreateCommentInput{
			UserID: 8, PostID: 1, Text: "   ",
		})
		assertValidationError(t, err, "text")
	})

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		_, err := newCommentService(noopCommentRepo(), postsByID(visible)).CreateComment(context.Background(), CreateCommentInput{
			PostID: 1, Text: "hi",
		})
		assertCode(t, err, models.CodeUnauthorized)
	})
}

func TestCommentService_Ownership(t *testing.T) {
	t.Parallel()

	posts := func() *postRepoStub {
		return postsByID(&models.Post{ID: 1, AuthorID: 9, IsPublished: true, PubDate: fixedNow.Add(-time.Hour), Category: &published})
	}

	comments := func() *commentRepoStub {
		repo := noopCommentRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			if id != 4 {
				return nil, models.NewNotFoundError("Comment", id)
			}
			return &models.Comment{ID: 4, PostID: 1, AuthorID: 7, Text: "old"}, nil
		}
		repo.updateTextFn = func(_ context.Context, _ uint, _ string) error {
			t.Fatal("unexpected update")
			return nil
		}
		repo.deleteFn = func(_ context.Context, _ uint) error {
			t.Fatal("unexpected delete")
			return nil
		}
		return repo
	}

	t.Run("comment under another post is not found", func(t *testing.T) {
		t.Parallel()
		_, err := newCommentService(comments(), postsByID(
			&models.Post{ID: 1, AuthorID: 9, IsPublished: true, PubDate: fixedNow.Add(-time.Hour), Category: &published},
			&models.Post{ID: 2, AuthorID: 9, IsPublished: true, PubDate: fixedNow.Add(-time.Hour), Category: &published},
		)).GetComment(context.Background(), 2, 4, 7)
		assertCode(t, err, models.CodeNotFound)
	})

	t.Run("non-owner update is forbidden", func(t *testing.T) {
		t.Parallel()
		_, err := newCommentService(comments(), posts()).UpdateComment(context.Background(), UpdateCommentInput{
			UserID: 8, PostID: 1, CommentID: 4, Text: "hijack",
		})
		assertCode(t, err, models.CodeForbidden)
	})

	t.Run("non-owner delete is forbidden", func(t *testing.T) {
		t.Parallel()
		_, err := newCommentService(comments(), posts()).DeleteComment(context.Background(), DeleteCommentInput{
			UserID: 8, PostID: 1, CommentID: 4,
		})
		assertCode(t, err, models.CodeForbidden)
	})

	t.Run("owner update changes only text", func(t *testing.T) {
		t.Parallel()
		repo := comments()
		var gotID uint
		var gotText string
		repo.updateTextFn = func(_ context.Context, id uint, text string) error {
			gotID, gotText = id, text
			return nil
		}
		c, err := newCommentService(repo, posts()).UpdateComment(context.Background(), UpdateCommentInput{
			UserID: 7, PostID: 1, CommentID: 4, Text: "edited",
		})
		require.NoError(t, err)
		assert.Equal(t, uint(4), gotID)
		assert.Equal(t, "edited", gotText)
		assert.Equal(t, uint(7), c.AuthorID)
		assert.Equal(t, uint(1), c.PostID)
	})

	t.Run("owner delete", func(t *testing.T) {
		t.Parallel()
		repo := comments()
		deleted := false
		repo.deleteFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		_, err := newCommentService(repo, posts()).DeleteComment(context.Background(), DeleteCommentInput{
			UserID: 7, PostID: 1, CommentID: 4,
		})
		require.NoError(t, err)
		assert.True(t, deleted)
	})
}

func TestCommentService_HiddenPost(t *testing.T) {
	t.Parallel()

	draft := &models.Post{ID: 1, AuthorID: 9, IsPublished: false, PubDate: fixedNow.Add(-time.Hour), Category: &published}
	comments := func() *commentRepoStub {
		repo := noopCommentRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			switch id {
			case 4:
				return &models.Comment{ID: 4, PostID: 1, AuthorID: 7, Text: "old"}, nil
			case 5:
				return &models.Comment{ID: 5, PostID: 1, AuthorID: 9, Text: "mine"}, nil
			}
			return nil, models.NewNotFoundError("Comment", id)
		}
		repo.updateTextFn = func(_ context.Context, _ uint, _ string) error {
			t.Fatal("unexpected update")
			return nil
		}
		repo.deleteFn = func(_ context.Context, _ uint) error {
			t.Fatal("unexpected delete")
			return nil
		}
		return repo
	}

	t.Run("commenter cannot load", func(t *testing.T) {
		t.Parallel()
		_, err := newCommentService(comments(), postsByID(draft)).GetComment(context.Background(), 1, 4, 7)
		assertCode(t, err, models.CodeNotFound)
	})

	t.Run("commenter cannot update", func(t *testing.T) {
		t.Parallel()
		_, err := newCommentService(comments(), postsByID(draft)).UpdateComment(context.Background(), UpdateCommentInput{
			UserID: 7, PostID: 1, CommentID: 4, Text: "edited",
		})
		assertCode(t, err, models.CodeNotFound)
	})

	t.Run("commenter cannot delete", func(t *testing.T) {
		t.Parallel()
		_, err := newCommentService(comments(), postsByID(draft)).DeleteComment(context.Background(), DeleteCommentInput{
			UserID: 7, PostID: 1, CommentID: 4,
		})
		assertCode(t, err, models.CodeNotFound)
	})

	t.Run("post author still reaches own comment", func(t *testing.T) {
		t.Parallel()
		c, err := newCommentService(comments(), postsByID(draft)).GetComment(context.Background(), 1, 5, 9)
		require.NoError(t, err)
		assert.Equal(t, "mine", c.Text)
	})
}
