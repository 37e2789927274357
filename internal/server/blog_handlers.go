package server

import (
	"github.com/gofiber/fiber/v2"
)

// Index handles GET /
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := pageNumber(c)
	if err != nil {
		return err
	}
	posts, err := s.postService.Index(c.UserContext(), page)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "blog/index", fiber.Map{"Page": posts})
}

// CategoryPosts handles GET /category/:slug/
func (s *Server) CategoryPosts(c *fiber.Ctx) error {
	page, err := pageNumber(c)
	if err != nil {
		return err
	}
	category, posts, err := s.postService.Category(c.UserContext(), c.Params("slug"), page)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "blog/category", fiber.Map{
		"Category": category,
		"Page":     posts,
	})
}

// Profile handles GET /profile/:username/
func (s *Server) Profile(c *fiber.Ctx) error {
	page, err := pageNumber(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	profile, err := s.userService.GetUserByUsername(ctx, c.Params("username"))
	if err != nil {
		return err
	}
	posts, err := s.postService.Profile(ctx, profile.ID, viewerID(c), page)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "blog/profile", fiber.Map{
		"Profile": profile,
		"Page":    posts,
	})
}

// PostDetail handles GET /posts/:id/
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	post, err := s.postService.Detail(ctx, id, viewerID(c))
	if err != nil {
		return err
	}
	comments, err := s.commentService.ListComments(ctx, post.ID)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "blog/detail", fiber.Map{
		"Post":     post,
		"Comments": comments,
	})
}
