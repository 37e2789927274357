package server

import (
	"errors"
	"log/slog"
	"net/url"

	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errorTemplates maps statuses that have their own page. Other statuses use errors/error.
var errorTemplates = map[int]string{
	fiber.StatusNotFound:            "errors/404",
	fiber.StatusForbidden:           "errors/403csrf",
	fiber.StatusInternalServerError: "errors/500",
}

// errorHandler turns handler errors into pages. Absent and hidden objects share the 404
// page; an unauthenticated service call is sent to the login form.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code, message = fe.Code, fe.Message
	case models.IsCode(err, models.CodeUnauthorized):
		return c.Redirect(loginPath+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusSeeOther)
	default:
		code = models.HTTPStatus(err)
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
	}

	ctx := c.UserContext()
	if code >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(ctx, "request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
		message = "Internal server error"
	}

	name, ok := errorTemplates[code]
	if !ok {
		name = "errors/error"
	}
	if rerr := s.render(c, code, name, fiber.Map{"Status": code, "Message": message, "Path": c.Path()}); rerr != nil {
		middleware.Logger.ErrorContext(ctx, "failed to render error page", slog.String("error", rerr.Error()))
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(code).SendString(message)
	}
	return nil
}
