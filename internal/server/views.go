package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"blogicum/internal/blog"
	"blogicum/internal/featureflags"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/observability"
	"blogicum/internal/render"
	"blogicum/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/template/html/v2"
)

//go:embed templates static
var assets embed.FS

const layoutTemplate = "layouts/base"

const (
	dateLayout  = "2 January 2006, 15:04"
	inputLayout = "2006-01-02T15:04"
)

// viewer is the logged-in user as templates see it.
type viewer struct {
	ID       uint
	Username string
}

func (s *Server) newViews() (*html.Engine, error) {
	sub, err := fs.Sub(assets, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(s.templateFuncs())
	return engine, nil
}

func staticHandler() fiber.Handler {
	return filesystem.New(filesystem.Config{
		Root:       http.FS(assets),
		PathPrefix: "static",
		MaxAge:     86400,
	})
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"postBody": func(p models.Post) template.HTML {
			return render.Body(p.Text, s.featureFlags.Enabled(featureflags.Markdown, p.AuthorID))
		},
		"excerpt": func(p models.Post) string {
			return render.PostExcerpt(p.Text, s.featureFlags.Enabled(featureflags.Markdown, p.AuthorID))
		},
		"imageURL": service.ImageURL,
		"webpURL": func(rel string) string {
			if rel == "" || !s.imageService.HasWebP(rel) {
				return ""
			}
			return service.ImageURL(service.WebPPath(rel))
		},
		"date": func(t time.Time) string {
			return t.In(s.location).Format(dateLayout)
		},
		"isOwner": blog.IsOwner,
		"visible": func(p models.Post) bool {
			return blog.IsVisible(&p, s.postService.Now())
		},
		"scheduled": func(p models.Post) bool {
			return p.IsScheduled(s.postService.Now())
		},
		"fieldError": func(fields map[string]string, name string) string {
			return fields[name]
		},
	}
}

// render executes a page template inside the base layout with the data every page uses.
func (s *Server) render(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if id, ok := middleware.CurrentUserID(c); ok {
		username, _ := c.Locals(middleware.LocalUsername).(string)
		data["Viewer"] = &viewer{ID: id, Username: username}
	}
	if token, ok := c.Locals(localCSRF).(string); ok {
		data["CSRFToken"] = token
	}
	data["CSRFField"] = csrfField
	data["Now"] = s.postService.Now()
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}

	observability.PageRenders.WithLabelValues(name).Inc()
	return c.Status(status).Render(name, data)
}
