package service

import (
	"context"
	"time"

	"blogicum/internal/blog"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/repository"
	"blogicum/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	now         func() time.Time
}

type CreateCommentInput struct {
	UserID uint
	PostID uint
	Text   string
}

type UpdateCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
	Text      string
}

type DeleteCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
}

func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		now:         time.Now,
	}
}

// WithClock replaces the time source used for visibility checks.
func (s *CommentService) WithClock(now func() time.Time) *CommentService {
	s.now = now
	return s
}

// ListComments returns a post's comments oldest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.commentRepo.ListByPost(ctx, postID)
}

// CreateComment adds a comment to a post the commenter can see. Authors may comment on
// their own hidden posts; everyone else gets NOT_FOUND for them.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if !blog.CanView(post, in.UserID, s.now()) {
		return nil, models.NewNotFoundError("Post", in.PostID)
	}
	if err := validation.ValidateText(in.Text); err != nil {
		return nil, models.NewFieldError("text", err.Error())
	}

	comment := &models.Comment{
		Text:     in.Text,
		AuthorID: in.UserID,
		PostID:   in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("comment", "create").Inc()

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// GetComment loads a comment addressed through its post for viewerID. A comment under
// another post's URL, or under a post hidden from the viewer, is NOT_FOUND.
func (s *CommentService) GetComment(ctx context.Context, postID, commentID, viewerID uint) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !blog.CanView(post, viewerID, s.now()) {
		return nil, models.NewNotFoundError("Post", postID)
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.PostID != postID {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return comment, nil
}

// UpdateComment changes the text of a comment owned by in.UserID.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.GetComment(ctx, in.PostID, in.CommentID, in.UserID)
	if err != nil {
		return nil, err
	}

	if !blog.IsOwner(in.UserID, comment.AuthorID) {
		observability.OwnershipDenials.WithLabelValues("comment").Inc()
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	if err := validation.ValidateText(in.Text); err != nil {
		return nil, models.NewFieldError("text", err.Error())
	}

	if err := s.commentRepo.UpdateText(ctx, comment.ID, in.Text); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("comment", "update").Inc()

	comment.Text = in.Text
	return comment, nil
}

// DeleteComment removes a comment owned by in.UserID and returns it.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.GetComment(ctx, in.PostID, in.CommentID, in.UserID)
	if err != nil {
		return nil, err
	}

	if !blog.IsOwner(in.UserID, comment.AuthorID) {
		observability.OwnershipDenials.WithLabelValues("comment").Inc()
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		return nil, err
	}
	observability.ContentMutations.WithLabelValues("comment", "delete").Inc()

	return comment, nil
}
