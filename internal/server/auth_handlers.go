package server

import (
	"strings"

	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	registerTemplate = "registration/registration_form"
	loginTemplate    = "registration/login"
	profileTemplate  = "blog/user"
)

// RegisterForm handles GET /auth/register/
func (s *Server) RegisterForm(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, registerTemplate, nil)
}

// Register handles POST /auth/register/. A new account is logged in straight away.
func (s *Server) Register(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	email := strings.TrimSpace(c.FormValue("email"))

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username:        username,
		Email:           email,
		Password:        c.FormValue("password1"),
		PasswordConfirm: c.FormValue("password2"),
	})
	if err != nil {
		if isFormError(err) {
			return s.render(c, fiber.StatusUnprocessableEntity, registerTemplate, fiber.Map{
				"Username": username,
				"Email":    email,
				"Errors":   formErrors(err),
			})
		}
		return err
	}

	if err := s.sessions.Start(c, user.ID, user.Username); err != nil {
		return err
	}
	return seeOther(c, "/")
}

// LoginForm handles GET /auth/login/
func (s *Server) LoginForm(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, loginTemplate, fiber.Map{"Next": c.Query("next")})
}

// Login handles POST /auth/login/
func (s *Server) Login(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	next := c.FormValue("next")

	user, err := s.userService.Authenticate(c.UserContext(), username, c.FormValue("password"))
	if err != nil {
		if models.IsCode(err, models.CodeUnauthorized) {
			return s.render(c, fiber.StatusUnprocessableEntity, loginTemplate, fiber.Map{
				"Username": username,
				"Next":     next,
				"Errors":   formErrors(err),
			})
		}
		return err
	}

	if err := s.sessions.Start(c, user.ID, user.Username); err != nil {
		return err
	}
	return seeOther(c, safeNext(next))
}

// Logout handles POST /auth/logout/
func (s *Server) Logout(c *fiber.Ctx) error {
	if _, ok := middleware.CurrentUserID(c); ok {
		observability.AuthEvents.WithLabelValues("logout", "success").Inc()
	}
	s.sessions.End(c)
	return s.render(c, fiber.StatusOK, "registration/logged_out", nil)
}

func (s *Server) profileForm(user *models.User) fiber.Map {
	return fiber.Map{
		"Username":  user.Username,
		"FirstName": user.FirstName,
		"LastName":  user.LastName,
		"Email":     user.Email,
	}
}

// EditProfileForm handles GET /profile/edit/
func (s *Server) EditProfileForm(c *fiber.Ctx) error {
	user, err := s.userService.GetUserByID(c.UserContext(), viewerID(c))
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, profileTemplate, fiber.Map{"Form": s.profileForm(user)})
}

// EditProfile handles POST /profile/edit/. The session is reissued so a new username
// shows up right away.
func (s *Server) EditProfile(c *fiber.Ctx) error {
	in := service.UpdateProfileInput{
		UserID:    viewerID(c),
		Username:  c.FormValue("username"),
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Email:     c.FormValue("email"),
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		if isFormError(err) {
			return s.render(c, fiber.StatusUnprocessableEntity, profileTemplate, fiber.Map{
				"Form": fiber.Map{
					"Username":  in.Username,
					"FirstName": in.FirstName,
					"LastName":  in.LastName,
					"Email":     in.Email,
				},
				"Errors": formErrors(err),
			})
		}
		return err
	}

	if user.Username != currentUsername(c) {
		if err := s.sessions.Start(c, user.ID, user.Username); err != nil {
			return err
		}
	}
	return seeOther(c, profileURL(user.Username))
}
