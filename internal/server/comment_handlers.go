package server

import (
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/service"

	"github.com/gofiber/fiber/v2"
)

const commentTemplate = "blog/comment"

// AddComment handles POST /posts/:id/comment/. An empty comment is dropped and the reader
// is sent back to the post, as is a successful one.
func (s *Server) AddComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID: viewerID(c),
		PostID: postID,
		Text:   c.FormValue("text"),
	})
	switch {
	case isFormError(err):
		middleware.Logger.InfoContext(c.UserContext(), "comment rejected", "post_id", postID, "error", err.Error())
		return seeOther(c, postURL(postID))
	case err != nil:
		return err
	}
	return seeOther(c, postURL(postID)+"#comment-"+itoa(comment.ID))
}

// EditCommentForm handles GET /posts/:id/comment/:commentId/edit/
func (s *Server) EditCommentForm(c *fiber.Ctx, t *target) error {
	return s.render(c, fiber.StatusOK, commentTemplate, fiber.Map{
		"Comment": t.comment,
		"Text":    t.comment.Text,
	})
}

// EditComment handles POST /posts/:id/comment/:commentId/edit/
func (s *Server) EditComment(c *fiber.Ctx, t *target) error {
	text := c.FormValue("text")
	_, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    viewerID(c),
		PostID:    t.comment.PostID,
		CommentID: t.comment.ID,
		Text:      text,
	})
	switch {
	case models.IsCode(err, models.CodeForbidden):
		return seeOther(c, t.detail)
	case isFormError(err):
		return s.render(c, fiber.StatusUnprocessableEntity, commentTemplate, fiber.Map{
			"Comment": t.comment,
			"Text":    text,
			"Errors":  formErrors(err),
		})
	case err != nil:
		return err
	}
	return seeOther(c, t.detail)
}

// DeleteCommentForm handles GET /posts/:id/comment/:commentId/delete/
func (s *Server) DeleteCommentForm(c *fiber.Ctx, t *target) error {
	return s.render(c, fiber.StatusOK, commentTemplate, fiber.Map{
		"Comment":  t.comment,
		"Deleting": true,
	})
}

// DeleteComment handles POST /posts/:id/comment/:commentId/delete/
func (s *Server) DeleteComment(c *fiber.Ctx, t *target) error {
	_, err := s.commentService.DeleteComment(c.UserContext(), service.DeleteCommentInput{
		UserID:    viewerID(c),
		PostID:    t.comment.PostID,
		CommentID: t.comment.ID,
	})
	if err != nil {
		if models.IsCode(err, models.CodeForbidden) {
			return seeOther(c, t.detail)
		}
		return err
	}
	return seeOther(c, t.detail)
}
