package server

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postValues(title string, category *models.Category, pubDate time.Time) url.Values {
	return url.Values{
		"title":        {title},
		"text":         {"Some text about " + title},
		"pub_date":     {formTime(pubDate)},
		"category":     {fmt.Sprint(category.ID)},
		"is_published": {"on"},
	}
}

func TestCreatePost_RequiresLogin(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	resp := e.get("/posts/create/", nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/auth/login/?next=%2Fposts%2Fcreate%2F", resp.Header.Get("Location"))

	resp = e.post("/posts/create/", url.Values{"title": {"x"}}, nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	var count int64
	require.NoError(t, e.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePost_FormListsPublishedChoices(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	ann := e.fx.User("ann")
	e.fx.Category("travel", true)
	e.fx.Category("drafts", false)
	e.fx.Location("Lisbon")

	resp := e.get("/posts/create/", ann)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, ">travel</option>")
	assert.NotContains(t, body, ">drafts</option>")
	assert.Contains(t, body, ">Lisbon</option>")
	assert.Contains(t, body, `name="`+csrfField+`"`)
}

func TestCreatePost_RedirectsToProfile(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	ann := e.fx.User("ann")
	travel := e.fx.Category("travel", true)

	resp := e.post("/posts/create/", postValues("Morning in Lisbon", travel, time.Now().Add(-time.Minute)), ann)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/profile/ann/", resp.Header.Get("Location"))

	var post models.Post
	require.NoError(t, e.db.First(&post, "title = ?", "Morning in Lisbon").Error)
	assert.Equal(t, ann.ID, post.AuthorID)
	assert.True(t, post.IsPublished)
	require.NotNil(t, post.CategoryID)
	assert.Equal(t, travel.ID, *post.CategoryID)
}

func TestCreatePost_ScheduledStaysOffTheIndex(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	ann := e.fx.User("ann")
	travel := e.fx.Category("travel", true)

	resp := e.post("/posts/create/", postValues("Tomorrow's news", travel, time.Now().Add(24*time.Hour)), ann)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	assert.NotContains(t, readBody(t, e.get("/", nil)), "Tomorrow&#39;s news")
	assert.Contains(t, readBody(t, e.get("/profile/ann/", ann)), "Tomorrow&#39;s news")
}

func TestCreatePost_WithImage(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	ann := e.fx.User("ann")
	travel := e.fx.Category("travel", true)

	resp := e.multipartPost("/posts/create/", postValues("With a view", travel, time.Now().Add(-time.Minute)),
		testutil.TinyPNG(t, 8, 6), ann)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	var post models.Post
	require.NoError(t, e.db.First(&post, "title = ?", "With a view").Error)
	require.NotEmpty(t, post.Image)
	_, err := os.Stat(filepath.Join(e.srv.imageService.MediaRoot(), filepath.FromSlash(post.Image)))
	assert.NoError(t, err)
}

func TestCreatePost_InvalidFormIsRedisplayed(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	ann := e.fx.User("ann")
	e.fx.Category("travel", true)

	resp := e.post("/posts/create/", url.Values{
		"title":    {""},
		"text":     {"kept text"},
		"pub_date": {"yesterday"},
	}, ann)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "enter a valid date/time")
	assert.Contains(t, body, "kept text")

	var count int64
	require.NoError(t, e.db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreatePost_RejectsHiddenCategoryAndBadImage(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	ann := e.fx.User("ann")
	drafts := e.fx.Category("drafts", false)

	resp := e.multipartPost("/posts/create/", postValues("Nope", drafts, time.Now()), []byte("not an image"), ann)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "select a valid choice")
	assert.Contains(t, body, "Upload a valid image")

	entries, err := os.ReadDir(e.srv.imageService.MediaRoot())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEditPost_NonOwnerIsRedirected(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	ann := e.fx.User("ann")
	bob := e.fx.User("bob")
	travel := e.fx.Category("travel", true)
	post := e.fx.Post("original", ann, travel)
	detail := postURL(post.ID)

	resp := e.get(detail+"edit/", bob)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, detail, resp.Header.Get("Location"))

	resp = e.post(detail+"edit/", postValues("hijacked", travel, time.Now()), bob)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, detail, resp.Header.Get("Location"))

	var reloaded models.Post
	require.NoError(t, e.db.First(&reloaded, post.ID).Error)
	assert.Equal(t, "original", reloaded.Title)

	resp = e.get(detail+"edit/", nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), loginPath)
}

func TestEditPost_OwnerUpdatesHiddenPost(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	ann := e.fx.User("ann")
	travel := e.fx.Category("travel", true)
	post := e.fx.Post("draft", ann, travel, testutil.Unpublished())
	detail := postURL(post.ID)

	resp := e.get(detail+"edit/", ann)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), `value="draft"`)

	resp = e.post(detail+"edit/", postValues("final", travel, time.Now().Add(-time.Hour)), ann)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, detail, resp.Header.Get("Location"))

	var reloaded models.Post
	require.NoError(t, e.db.First(&reloaded, post.ID).Error)
	assert.Equal(t, "final", reloaded.Title)
	assert.True(t, reloaded.IsPublished)

	assert.Equal(t, fiber.StatusNotFound, e.get("/posts/999/edit/", ann).StatusCode)
}

func TestDeletePost(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t)

	ann := e.fx.User("ann")
	bob := e.fx.User("bob")
	travel := e.fx.Category("travel", true)
	post := e.fx.Post("doomed", ann, travel)
	e.fx.Comment(post, bob, "bye")
	detail := postURL(post.ID)

	resp := e.post(detail+"delete/", url.Values{}, bob)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, detail, resp.Header.Get("Location"))

	resp = e.get(detail+"delete/", ann)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "doomed")

	resp = e.post(detail+"delete/", url.Values{}, ann)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/profile/ann/", resp.Header.Get("Location"))

	var posts, comments int64
	require.NoError(t, e.db.Model(&models.Post{}).Count(&posts).Error)
	require.NoError(t, e.db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Zero(t, posts)
	assert.Zero(t, comments)
	assert.Equal(t, fiber.StatusNotFound, e.get(detail, ann).StatusCode)
}
