// Package seed provides helpers to create demo data for the blog database.
// These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by Seed and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rnd  *rand.Rand
	now  time.Time
	hash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Factory{
		db:   db,
		opts: opts,
		// #nosec G404: acceptable for seeding
		rnd: rand.New(rand.NewSource(seed)),
		now: time.Now().UTC(),
	}
}

func (f *Factory) passwordHash() string {
	if f.hash != "" {
		return f.hash
	}
	if f.opts.SkipBcrypt {
		f.hash = DefaultPassword
		return f.hash
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		log.Printf("seed: bcrypt failed, storing plain placeholder: %v", err)
		f.hash = DefaultPassword
		return f.hash
	}
	f.hash = string(hashed)
	return f.hash
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first, last := gofakeit.FirstName(), gofakeit.LastName()
	username := strings.ToLower(fmt.Sprintf("%s.%s%d", first, last, gofakeit.Number(100, 999)))
	user := &models.User{
		Username:  username,
		FirstName: first,
		LastName:  last,
		Email:     username + "@example.com",
		Password:  f.passwordHash(),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateCategory persists a published category with a fake title unless overridden.
func (f *Factory) CreateCategory(overrides ...func(*models.Category)) (*models.Category, error) {
	title := gofakeit.HipsterWord()
	category := &models.Category{
		Title:       strings.ToUpper(title[:1]) + title[1:],
		Description: gofakeit.Sentence(12),
		Slug:        fmt.Sprintf("%s-%d", validation.Slugify(title), gofakeit.Number(1000, 9999)),
		IsPublished: true,
	}

	for _, override := range overrides {
		override(category)
	}

	if err := f.db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// CreateLocation persists a published location named after a fake city.
func (f *Factory) CreateLocation(overrides ...func(*models.Location)) (*models.Location, error) {
	location := &models.Location{
		Name:        gofakeit.City(),
		IsPublished: true,
	}

	for _, override := range overrides {
		override(location)
	}

	if err := f.db.Create(location).Error; err != nil {
		return nil, err
	}
	return location, nil
}

// BuildPost constructs a published, past-dated post without persisting it.
func (f *Factory) BuildPost(author *models.User, category *models.Category, overrides ...func(*models.Post)) *models.Post {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.rnd.Intn(maxDays))*24*time.Hour +
		time.Duration(f.rnd.Intn(24))*time.Hour +
		time.Duration(f.rnd.Intn(60)+1)*time.Minute

	title := gofakeit.Sentence(f.rnd.Intn(5) + 3)
	post := &models.Post{
		Title:       strings.TrimSuffix(title, "."),
		Text:        gofakeit.Paragraph(f.rnd.Intn(3)+1, f.rnd.Intn(4)+2, 12, "\n\n"),
		PubDate:     f.now.Add(-back),
		IsPublished: true,
		AuthorID:    author.ID,
	}
	if category != nil {
		post.CategoryID = &category.ID
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost builds and persists a post for the given author and category.
func (f *Factory) CreatePost(author *models.User, category *models.Category, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, category, overrides...)
	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.CreateInBatches(posts, 100).Error
}

// CreateComment constructs and persists a sample `models.Comment` on the
// provided post authored by the provided user.
func (f *Factory) CreateComment(author *models.User, post *models.Post, overrides ...func(*models.Comment)) (*models.Comment, error) {
	created := post.PubDate.Add(time.Duration(f.rnd.Intn(72)+1) * time.Hour)
	if created.After(f.now) {
		created = f.now
	}
	comment := &models.Comment{
		Text:      gofakeit.Sentence(f.rnd.Intn(12) + 4),
		PostID:    post.ID,
		AuthorID:  author.ID,
		CreatedAt: created,
	}

	for _, override := range overrides {
		override(comment)
	}

	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Scheduled moves the post's publication into the future.
func (f *Factory) Scheduled() func(*models.Post) {
	return func(p *models.Post) {
		p.PubDate = f.now.Add(time.Duration(f.rnd.Intn(30)+1) * 24 * time.Hour)
	}
}

// Hidden marks the post unpublished.
func Hidden(p *models.Post) {
	p.IsPublished = false
}

// InLocation attaches the post to location.
func InLocation(location *models.Location) func(*models.Post) {
	return func(p *models.Post) {
		if location != nil {
			p.LocationID = &location.ID
		}
	}
}
