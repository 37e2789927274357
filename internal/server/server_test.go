package server

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"blogicum/internal/config"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	t   *testing.T
	srv *Server
	app *fiber.App
	db  *gorm.DB
	fx  *testutil.Fixtures
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	cfg := &config.Config{
		Env:            "test",
		JWTSecret:      "test-secret-that-is-long-enough-0123456789",
		MediaRoot:      t.TempDir(),
		PaginateBy:     10,
		LoginRateLimit: 10,
		TimeZone:       "UTC",
	}

	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)
	srv.userService = srv.userService.WithHashCost(bcrypt.MinCost)

	app, err := srv.App()
	require.NoError(t, err)

	return &testEnv{t: t, srv: srv, app: app, db: db, fx: testutil.NewFixtures(t, db)}
}

// do runs req, logged in as user when one is given.
func (e *testEnv) do(req *http.Request, as *models.User) *http.Response {
	e.t.Helper()
	if as != nil {
		token, _, err := e.srv.sessions.Issue(as.ID, as.Username)
		require.NoError(e.t, err)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (e *testEnv) get(path string, as *models.User) *http.Response {
	e.t.Helper()
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), as)
}

func (e *testEnv) post(path string, form url.Values, as *models.User) *http.Response {
	e.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req, as)
}

// multipartPost submits form with an optional image file part.
func (e *testEnv) multipartPost(path string, form url.Values, image []byte, as *models.User) *http.Response {
	e.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for key, values := range form {
		for _, v := range values {
			require.NoError(e.t, w.WriteField(key, v))
		}
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="photo.png"`)
		h.Set("Content-Type", "image/png")
		part, err := w.CreatePart(h)
		require.NoError(e.t, err)
		_, err = part.Write(image)
		require.NoError(e.t, err)
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return e.do(req, as)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func formTime(t time.Time) string {
	return t.UTC().Format(inputLayout)
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	resp := e.get("/health/live", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = e.get("/health/ready", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, `"database":"healthy"`)
	assert.Contains(t, body, `"redis":"disabled"`)
}

func TestStaticAndSecurityHeaders(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	resp := e.get("/static/css/style.css", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), ".post-card")

	resp = e.get("/", nil)
	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestUnknownRouteRendersNotFoundPage(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	resp := e.get("/no/such/page/", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Page not found")
}

func TestSafeNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		next string
		want string
	}{
		{"", "/"},
		{"/posts/1/", "/posts/1/"},
		{"/profile/ann/?page=2", "/profile/ann/?page=2"},
		{"https://evil.example/", "/"},
		{"//evil.example/", "/"},
		{"/\\evil.example", "/"},
		{"relative/path", "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, safeNext(tt.next), "next=%q", tt.next)
	}
}

func TestFormErrors(t *testing.T) {
	t.Parallel()

	fields := formErrors(models.NewFieldError("title", "required"))
	assert.Equal(t, map[string]string{"title": "required"}, fields)

	fields = formErrors(models.NewUnauthorizedError("Please enter a correct username and password."))
	assert.Equal(t, "Please enter a correct username and password.", fields["__all__"])

	fields = withFieldError(models.NewFieldError("title", "required"), "pub_date", "enter a valid date/time")
	assert.Len(t, fields, 2)
}
