package server

import (
	"blogicum/internal/blog"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// target is the object an ownership-guarded page acts on.
type target struct {
	entity   string
	authorID uint
	// detail is where a denied request is sent.
	detail  string
	post    *models.Post
	comment *models.Comment
}

type (
	loadFunc    func(c *fiber.Ctx) (*target, error)
	allowFunc   func(userID uint, t *target) bool
	guardedFunc func(c *fiber.Ctx, t *target) error
)

// guarded composes a page from a loader, an authorization predicate and the handler.
// Denied requests are redirected to the object's detail page and the handler never runs.
func (s *Server) guarded(load loadFunc, allow allowFunc, handle guardedFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := load(c)
		if err != nil {
			return err
		}
		userID, _ := middleware.CurrentUserID(c)
		if !allow(userID, t) {
			observability.OwnershipDenials.WithLabelValues(t.entity).Inc()
			return seeOther(c, t.detail)
		}
		return handle(c, t)
	}
}

func isAuthor(userID uint, t *target) bool {
	return blog.IsOwner(userID, t.authorID)
}

// loadPost loads the post named by :id whatever its visibility.
func (s *Server) loadPost(c *fiber.Ctx) (*target, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	post, err := s.postService.Get(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	return &target{entity: "post", authorID: post.AuthorID, detail: postURL(post.ID), post: post}, nil
}

// loadComment loads comment :commentId, which must belong to post :id. The post must be
// visible to the viewer.
func (s *Server) loadComment(c *fiber.Ctx) (*target, error) {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil, err
	}
	comment, err := s.commentService.GetComment(c.UserContext(), postID, commentID, viewerID(c))
	if err != nil {
		return nil, err
	}
	return &target{entity: "comment", authorID: comment.AuthorID, detail: postURL(postID), comment: comment}, nil
}
