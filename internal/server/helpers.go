package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"blogicum/internal/blog"
	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID extracts a route parameter by name as a positive uint. Anything else cannot name
// an object, so it is answered like a missing one.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, fiber.ErrNotFound
	}
	return uint(id), nil
}

// pageNumber reads ?page=. A malformed page is a 404, like one past the end.
func pageNumber(c *fiber.Ctx) (int, error) {
	n, err := blog.ParsePageNumber(c.Query("page"))
	if err != nil {
		return 0, fiber.ErrNotFound
	}
	return n, nil
}

// viewerID is the logged-in user's ID, or 0 for anonymous requests.
func viewerID(c *fiber.Ctx) uint {
	id, _ := middleware.CurrentUserID(c)
	return id
}

func currentUsername(c *fiber.Ctx) string {
	username, _ := c.Locals(middleware.LocalUsername).(string)
	return username
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}

func seeOther(c *fiber.Ctx, location string) error {
	return c.Redirect(location, fiber.StatusSeeOther)
}

// safeNext accepts only same-site absolute paths as a post-login destination.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return "/"
	}
	return next
}

// isFormError reports whether err should be answered by re-rendering the form.
func isFormError(err error) bool {
	return models.IsCode(err, models.CodeValidation) || models.IsCode(err, models.CodeConflict)
}

// withFieldError returns the field errors of err, extended with one more message.
func withFieldError(err error, field, message string) map[string]string {
	fields := map[string]string{}
	for k, v := range models.FieldErrors(err) {
		fields[k] = v
	}
	if message != "" {
		fields[field] = message
	}
	return fields
}

// formErrors extracts field errors, falling back to a form-wide message under "__all__".
func formErrors(err error) map[string]string {
	fields := withFieldError(err, "", "")
	if len(fields) == 0 {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			fields["__all__"] = appErr.Message
		}
	}
	return fields
}
