package middleware

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-32+"

func TestSessions_IssueAndParse(t *testing.T) {
	sessions := NewSessions(testSecret, nil, false)

	token, exp, err := sessions.Issue(42, "ada")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(SessionTTL), exp, time.Minute)

	claims, err := sessions.Parse(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "ada", claims.Username)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestSessions_RejectsForeignAndExpiredTokens(t *testing.T) {
	sessions := NewSessions(testSecret, nil, false)
	other := NewSessions("another-secret-that-is-long-enough", nil, false)

	foreign, _, err := other.Issue(1, "eve")
	require.NoError(t, err)
	_, err = sessions.Parse(context.Background(), foreign)
	assert.Error(t, err)

	sessions.now = func() time.Time { return time.Now().Add(-SessionTTL - time.Hour) }
	stale, _, err := sessions.Issue(1, "ada")
	require.NoError(t, err)
	sessions.now = time.Now
	_, err = sessions.Parse(context.Background(), stale)
	assert.Error(t, err)
}

func TestSessions_LogoutRevokesToken(t *testing.T) {
	_, rdb := newTestRedis(t)
	sessions := NewSessions(testSecret, rdb, false)

	app := fiber.New()
	app.Use(sessions.Load())
	app.Post("/login", func(c *fiber.Ctx) error {
		return sessions.Start(c, 7, "grace")
	})
	app.Post("/logout", func(c *fiber.Ctx) error {
		sessions.End(c)
		return c.SendStatus(http.StatusNoContent)
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		id, ok := CurrentUserID(c)
		if !ok {
			return c.SendString("anonymous")
		}
		return c.SendString(fmt.Sprintf("%s:%d", c.Locals(LocalUsername), id))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	session := cookies[0]
	assert.Equal(t, SessionCookie, session.Name)
	assert.True(t, session.HttpOnly)

	me := func() string {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(session)
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		return string(body)
	}
	assert.Equal(t, "grace:7", me())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(session)
	_, err = app.Test(req)
	require.NoError(t, err)

	// The old cookie value is now blacklisted even if a client replays it.
	assert.Equal(t, "anonymous", me())
}

func TestLoginRequired_RedirectsAnonymous(t *testing.T) {
	sessions := NewSessions(testSecret, nil, false)
	app := fiber.New()
	app.Use(sessions.Load())
	app.Get("/posts/create/", LoginRequired("/auth/login/"), func(c *fiber.Ctx) error {
		return c.SendString("form")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/posts/create/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login/?next=%2Fposts%2Fcreate%2F", resp.Header.Get("Location"))

	token, _, err := sessions.Issue(3, "bob")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/posts/create/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
