package seed

import (
	"fmt"
	"log"
	"math"

	"blogicum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	NumPosts        int
	CommentsPerPost int
	ShouldClean     bool
	// SkipBcrypt stores the plain default password; only for fast throwaway databases.
	SkipBcrypt bool
	// MaxDays bounds how far back published posts are dated.
	MaxDays int
	// RandomSeed makes a run reproducible when non-zero.
	RandomSeed int64
	Mix        Distribution
}

// Distribution sets which share of seeded posts is scheduled, hidden or uncategorized.
// The remainder is publicly visible.
type Distribution struct {
	Scheduled     float64
	Hidden        float64
	Uncategorized float64
}

var defaultDistribution = Distribution{Scheduled: 0.1, Hidden: 0.1, Uncategorized: 0.1}

// BuiltInCategory is a category every seeded database carries.
type BuiltInCategory struct {
	Title       string
	Slug        string
	Description string
	IsPublished bool
}

// BuiltInCategories mirrors the categories of the demo site. "drafts" is kept unpublished so
// category gating is visible in a fresh database.
var BuiltInCategories = []BuiltInCategory{
	{Title: "Travel", Slug: "travel", Description: "Trips, routes and places worth the detour.", IsPublished: true},
	{Title: "Cooking", Slug: "cooking", Description: "Recipes and kitchen experiments.", IsPublished: true},
	{Title: "Technology", Slug: "technology", Description: "Gadgets, software and the people who build them.", IsPublished: true},
	{Title: "Books", Slug: "books", Description: "Reading notes and reviews.", IsPublished: true},
	{Title: "Drafts", Slug: "drafts", Description: "Work in progress, not yet open to readers.", IsPublished: false},
}

// BuiltInLocations are the places seeded posts are attached to.
var BuiltInLocations = []string{"Moscow", "Saint Petersburg", "Kazan", "Oslo", "Lisbon"}

// Summary reports what a seeding run created.
type Summary struct {
	Users         int
	Categories    int
	Locations     int
	Posts         int
	Scheduled     int
	Hidden        int
	Uncategorized int
	Comments      int
}

// Seed populates the database with demo data
func Seed(db *gorm.DB, opts Options) (*Summary, error) {
	log.Printf("Starting database seeding with %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}
	if opts.Mix == (Distribution{}) {
		opts.Mix = defaultDistribution
	}

	f := NewFactory(db, opts)
	summary := &Summary{}

	categories, err := Categories(db)
	if err != nil {
		return nil, err
	}
	summary.Categories = len(categories)

	locations, err := Locations(db)
	if err != nil {
		return nil, err
	}
	summary.Locations = len(locations)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, u)
	}
	summary.Users = len(users)
	log.Printf("%d users created", len(users))

	if len(users) == 0 || opts.NumPosts <= 0 {
		return summary, nil
	}

	var published []*models.Category
	for _, c := range categories {
		if c.IsPublished {
			published = append(published, c)
		}
	}
	if len(published) == 0 {
		return nil, fmt.Errorf("no published category to seed posts into")
	}

	scheduled, hidden, uncategorized := computeCounts(opts.NumPosts, opts.Mix)
	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.rnd.Intn(len(users))]
		category := published[f.rnd.Intn(len(published))]
		overrides := []func(*models.Post){}
		if f.rnd.Intn(2) == 0 {
			overrides = append(overrides, InLocation(locations[f.rnd.Intn(len(locations))]))
		}

		switch {
		case i < scheduled:
			overrides = append(overrides, f.Scheduled())
			summary.Scheduled++
		case i < scheduled+hidden:
			overrides = append(overrides, Hidden)
			summary.Hidden++
		case i < scheduled+hidden+uncategorized:
			category = nil
			summary.Uncategorized++
		}
		posts = append(posts, f.BuildPost(author, category, overrides...))
	}
	if err := f.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	summary.Posts = len(posts)
	log.Printf("%d posts created (%d scheduled, %d hidden, %d uncategorized)",
		summary.Posts, summary.Scheduled, summary.Hidden, summary.Uncategorized)

	for _, p := range posts {
		for j := 0; j < opts.CommentsPerPost; j++ {
			if _, err := f.CreateComment(users[f.rnd.Intn(len(users))], p); err != nil {
				return nil, fmt.Errorf("failed to create comments: %w", err)
			}
			summary.Comments++
		}
	}

	log.Println("Database seeding completed successfully")
	return summary, nil
}

// Categories upserts the built-in categories by slug and returns them.
func Categories(db *gorm.DB) ([]*models.Category, error) {
	out := make([]*models.Category, 0, len(BuiltInCategories))
	for _, item := range BuiltInCategories {
		category := models.Category{
			Title:       item.Title,
			Slug:        item.Slug,
			Description: item.Description,
			IsPublished: item.IsPublished,
		}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "description", "is_published"}),
		}).Create(&category).Error; err != nil {
			return nil, fmt.Errorf("seed built-in category %s: %w", item.Slug, err)
		}
		// On conflict some drivers leave the primary key unset.
		if err := db.Where("slug = ?", item.Slug).First(&category).Error; err != nil {
			return nil, fmt.Errorf("seed built-in category %s: %w", item.Slug, err)
		}
		out = append(out, &category)
	}
	return out, nil
}

// Locations creates the built-in locations that do not exist yet.
func Locations(db *gorm.DB) ([]*models.Location, error) {
	out := make([]*models.Location, 0, len(BuiltInLocations))
	for _, name := range BuiltInLocations {
		var location models.Location
		err := db.Where(models.Location{Name: name}).
			Attrs(models.Location{IsPublished: true}).
			FirstOrCreate(&location).Error
		if err != nil {
			return nil, fmt.Errorf("seed location %s: %w", name, err)
		}
		out = append(out, &location)
	}
	return out, nil
}

// computeCounts splits n posts by d. Shares are rounded down so visible posts never go negative.
func computeCounts(n int, d Distribution) (scheduled, hidden, uncategorized int) {
	if n <= 0 {
		return 0, 0, 0
	}
	share := func(p float64) int {
		if p <= 0 {
			return 0
		}
		return int(math.Floor(float64(n) * p))
	}
	scheduled, hidden, uncategorized = share(d.Scheduled), share(d.Hidden), share(d.Uncategorized)
	for scheduled+hidden+uncategorized > n {
		switch {
		case uncategorized > 0:
			uncategorized--
		case hidden > 0:
			hidden--
		default:
			scheduled--
		}
	}
	return scheduled, hidden, uncategorized
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE comments, posts, locations, categories, users RESTART IDENTITY CASCADE;`).Error
	}
	for _, table := range []string{"comments", "posts", "locations", "categories", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}
