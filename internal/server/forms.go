package server

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// postForm is the post create/edit form as submitted and as redisplayed.
type postForm struct {
	Title       string
	Text        string
	PubDate     string
	IsPublished bool
	CategoryID  string
	LocationID  string
	// Image is the currently stored image, shown on the edit form.
	Image       string
	RemoveImage bool
}

// uploadedImage is a file attached to the post form.
type uploadedImage struct {
	Filename    string
	ContentType string
	Content     []byte
}

var inputLayouts = []string{inputLayout, "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"}

func (s *Server) newPostForm() postForm {
	return postForm{
		PubDate:     s.postService.Now().In(s.location).Format(inputLayout),
		IsPublished: true,
	}
}

func (s *Server) postFormFrom(p *models.Post) postForm {
	f := postForm{
		Title:       p.Title,
		Text:        p.Text,
		PubDate:     p.PubDate.In(s.location).Format(inputLayout),
		IsPublished: p.IsPublished,
		Image:       p.Image,
	}
	if p.CategoryID != nil {
		f.CategoryID = strconv.FormatUint(uint64(*p.CategoryID), 10)
	}
	if p.LocationID != nil {
		f.LocationID = strconv.FormatUint(uint64(*p.LocationID), 10)
	}
	return f
}

func parsePostForm(c *fiber.Ctx) postForm {
	return postForm{
		Title:       strings.TrimSpace(c.FormValue("title")),
		Text:        c.FormValue("text"),
		PubDate:     strings.TrimSpace(c.FormValue("pub_date")),
		IsPublished: c.FormValue("is_published") != "",
		CategoryID:  c.FormValue("category"),
		LocationID:  c.FormValue("location"),
		RemoveImage: c.FormValue("image_clear") != "",
	}
}

// input converts the form into service input. A pub_date that cannot be parsed is
// returned as a field message and left zero in the input.
func (s *Server) input(f postForm) (service.PostInput, string) {
	in := service.PostInput{
		Title:       f.Title,
		Text:        f.Text,
		IsPublished: f.IsPublished,
		CategoryID:  parseChoice(f.CategoryID),
		LocationID:  parseChoice(f.LocationID),
	}

	if f.PubDate == "" {
		return in, ""
	}
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, f.PubDate, s.location); err == nil {
			in.PubDate = t
			return in, ""
		}
	}
	return in, "enter a valid date/time"
}

// parseChoice reads a select value. Empty means no choice; anything non-numeric becomes an
// ID that matches nothing so validation rejects it.
func parseChoice(raw string) *uint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		n = 0
	}
	id := uint(n)
	return &id
}

// formImage reads the optional "image" upload. No file is not an error.
func formImage(c *fiber.Ctx) (*uploadedImage, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, nil
		}
		return nil, models.NewFieldError("image", "Unable to read uploaded file")
	}
	if fh.Size == 0 {
		return nil, nil
	}

	src, err := fh.Open()
	if err != nil {
		return nil, models.NewFieldError("image", "Unable to read uploaded file")
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, models.NewFieldError("image", "Unable to read uploaded file")
	}
	return &uploadedImage{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}
