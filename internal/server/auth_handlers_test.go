package server

import (
	"net/http"
	"net/url"
	"testing"

	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestRegisterLoginLogout(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	resp := e.post("/auth/register/", url.Values{
		"username":  {"newcomer"},
		"email":     {"newcomer@example.com"},
		"password1": {"blue-harbour-77"},
		"password2": {"blue-harbour-77"},
	}, nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
	require.NotNil(t, sessionCookie(resp))
	assert.NotEmpty(t, sessionCookie(resp).Value)

	var user models.User
	require.NoError(t, e.db.First(&user, "username = ?", "newcomer").Error)
	assert.NotEqual(t, "blue-harbour-77", user.Password)

	resp = e.post("/auth/login/", url.Values{"username": {"newcomer"}, "password": {"wrong-password-1"}}, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Nil(t, sessionCookie(resp))

	resp = e.post("/auth/login/", url.Values{
		"username": {"newcomer"},
		"password": {"blue-harbour-77"},
		"next":     {"/posts/create/"},
	}, nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/posts/create/", resp.Header.Get("Location"))
	require.NotNil(t, sessionCookie(resp))

	resp = e.post("/auth/login/", url.Values{
		"username": {"newcomer"},
		"password": {"blue-harbour-77"},
		"next":     {"//evil.example/"},
	}, nil)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp = e.post("/auth/logout/", url.Values{}, &user)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Logged out")
	cleared := sessionCookie(resp)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestRegister_InvalidForm(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)
	e.fx.User("taken")

	resp := e.post("/auth/register/", url.Values{
		"username":  {"someone"},
		"password1": {"blue-harbour-77"},
		"password2": {"green-harbour-77"},
	}, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "didn&#39;t match")

	resp = e.post("/auth/register/", url.Values{
		"username":  {"taken"},
		"password1": {"blue-harbour-77"},
		"password2": {"blue-harbour-77"},
	}, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "already exists")

	for _, reserved := range []string{"edit", ".", ".."} {
		resp = e.post("/auth/register/", url.Values{
			"username":  {reserved},
			"password1": {"blue-harbour-77"},
			"password2": {"blue-harbour-77"},
		}, nil)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode, reserved)
		assert.Contains(t, readBody(t, resp), "is reserved", reserved)
	}

	var count int64
	require.NoError(t, e.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLoginForm_KeepsNext(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	resp := e.get("/auth/login/?next=/posts/create/", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `name="next" value="/posts/create/"`)
}

func TestEditProfile(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	ann := e.fx.User("ann")
	e.fx.User("bob")

	resp := e.get("/profile/edit/", nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	resp = e.get("/profile/edit/", ann)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `value="ann@example.com"`)

	resp = e.post("/profile/edit/", url.Values{"username": {"bob"}, "email": {"ann@example.com"}}, ann)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "already exists")

	resp = e.post("/profile/edit/", url.Values{"username": {"edit"}, "email": {"ann@example.com"}}, ann)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "is reserved")

	resp = e.post("/profile/edit/", url.Values{
		"username":   {"annie"},
		"first_name": {"Ann"},
		"last_name":  {"Smith"},
		"email":      {"annie@example.com"},
	}, ann)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/profile/annie/", resp.Header.Get("Location"))
	require.NotNil(t, sessionCookie(resp))

	var reloaded models.User
	require.NoError(t, e.db.First(&reloaded, ann.ID).Error)
	assert.Equal(t, "annie", reloaded.Username)
	assert.Equal(t, "Ann Smith", reloaded.FullName())

	assert.Contains(t, readBody(t, e.get("/profile/annie/", nil)), "Ann Smith")
}
