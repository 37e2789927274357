package server

import (
	"context"
	"log/slog"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/service"

	"github.com/gofiber/fiber/v2"
)

const postFormTemplate = "blog/create"

// renderPostForm shows the create/edit form with the published categories and locations.
func (s *Server) renderPostForm(c *fiber.Ctx, status int, form postForm, post *models.Post, errs map[string]string) error {
	choices, err := s.postService.Choices(c.UserContext())
	if err != nil {
		return err
	}
	return s.render(c, status, postFormTemplate, fiber.Map{
		"Form":       form,
		"Post":       post,
		"Categories": choices.Categories,
		"Locations":  choices.Locations,
		"Errors":     errs,
	})
}

// storeImage saves an uploaded image. Field errors are returned for the form; the stored
// path is empty when nothing was uploaded.
func (s *Server) storeImage(c *fiber.Ctx) (string, error) {
	upload, err := formImage(c)
	if err != nil || upload == nil {
		return "", err
	}
	return s.imageService.Save(c.UserContext(), service.UploadImageInput{
		UserID:      viewerID(c),
		Filename:    upload.Filename,
		ContentType: upload.ContentType,
		Content:     upload.Content,
	})
}

func (s *Server) discardImage(ctx context.Context, rel string) {
	if rel == "" {
		return
	}
	if err := s.imageService.Remove(rel); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to discard uploaded image",
			slog.String("image", rel), slog.String("error", err.Error()))
	}
}

// prepare converts a submitted form and stores its image. When anything is invalid it
// returns every field error at once and nothing stays on disk.
func (s *Server) prepare(c *fiber.Ctx, form postForm) (service.PostInput, string, map[string]string, error) {
	ctx := c.UserContext()
	in, dateErr := s.input(form)

	image, imgErr := s.storeImage(c)
	if imgErr != nil && !isFormError(imgErr) {
		return in, "", nil, imgErr
	}

	if dateErr != "" || imgErr != nil {
		verr := s.postService.Validate(ctx, in)
		if verr != nil && !isFormError(verr) {
			s.discardImage(ctx, image)
			return in, "", nil, verr
		}
		errs := withFieldError(verr, "pub_date", dateErr)
		for k, v := range models.FieldErrors(imgErr) {
			errs[k] = v
		}
		s.discardImage(ctx, image)
		return in, "", errs, nil
	}
	return in, image, nil, nil
}

// CreatePostForm handles GET /posts/create/
func (s *Server) CreatePostForm(c *fiber.Ctx) error {
	return s.renderPostForm(c, fiber.StatusOK, s.newPostForm(), nil, nil)
}

// CreatePost handles POST /posts/create/
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.UserContext()
	form := parsePostForm(c)

	in, image, errs, err := s.prepare(c, form)
	if err != nil {
		return err
	}
	if errs != nil {
		return s.renderPostForm(c, fiber.StatusUnprocessableEntity, form, nil, errs)
	}

	_, err = s.postService.Create(ctx, service.CreatePostInput{
		AuthorID:  viewerID(c),
		PostInput: in,
		Image:     image,
	})
	if err != nil {
		s.discardImage(ctx, image)
		if isFormError(err) {
			return s.renderPostForm(c, fiber.StatusUnprocessableEntity, form, nil, formErrors(err))
		}
		return err
	}
	return seeOther(c, profileURL(currentUsername(c)))
}

// EditPostForm handles GET /posts/:id/edit/
func (s *Server) EditPostForm(c *fiber.Ctx, t *target) error {
	return s.renderPostForm(c, fiber.StatusOK, s.postFormFrom(t.post), t.post, nil)
}

// EditPost handles POST /posts/:id/edit/
func (s *Server) EditPost(c *fiber.Ctx, t *target) error {
	ctx := c.UserContext()
	form := parsePostForm(c)
	form.Image = t.post.Image

	in, image, errs, err := s.prepare(c, form)
	if err != nil {
		return err
	}
	if errs != nil {
		return s.renderPostForm(c, fiber.StatusUnprocessableEntity, form, t.post, errs)
	}

	post, err := s.postService.Update(ctx, service.UpdatePostInput{
		UserID:      viewerID(c),
		PostID:      t.post.ID,
		PostInput:   in,
		Image:       image,
		RemoveImage: form.RemoveImage,
	})
	if err != nil {
		s.discardImage(ctx, image)
		switch {
		case models.IsCode(err, models.CodeForbidden):
			return seeOther(c, t.detail)
		case isFormError(err):
			return s.renderPostForm(c, fiber.StatusUnprocessableEntity, form, t.post, formErrors(err))
		}
		return err
	}
	return seeOther(c, postURL(post.ID))
}

// DeletePostForm handles GET /posts/:id/delete/
func (s *Server) DeletePostForm(c *fiber.Ctx, t *target) error {
	return s.render(c, fiber.StatusOK, "blog/delete", fiber.Map{"Post": t.post})
}

// DeletePost handles POST /posts/:id/delete/
func (s *Server) DeletePost(c *fiber.Ctx, t *target) error {
	if _, err := s.postService.Delete(c.UserContext(), viewerID(c), t.post.ID); err != nil {
		if models.IsCode(err, models.CodeForbidden) {
			return seeOther(c, t.detail)
		}
		return err
	}
	return seeOther(c, profileURL(currentUsername(c)))
}
