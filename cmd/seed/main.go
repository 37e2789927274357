// Command seed fills the database with demo users, posts and comments.
package main

import (
	"context"
	"flag"
	"log"

	"blogicum/internal/bootstrap"
	"blogicum/internal/config"
	"blogicum/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	comments := flag.Int("comments", 3, "Comments per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	maxDays := flag.Int("days", 90, "How many days back published posts are dated")
	randomSeed := flag.Int64("rand-seed", 0, "Seed for reproducible data (0 picks one)")
	scheduled := flag.Float64("scheduled", 0.1, "Share of posts dated in the future")
	hidden := flag.Float64("hidden", 0.1, "Share of posts hidden by their author")
	uncategorized := flag.Float64("uncategorized", 0.1, "Share of posts without a category")
	fast := flag.Bool("fast", false, "Skip password hashing (throwaway databases only)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Println("===============")
	log.Printf("Target: %d users, %d posts, clean=%v\n", *numUsers, *numPosts, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(context.Background(), cfg, bootstrap.Options{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	summary, err := seed.Seed(db, seed.Options{
		NumUsers:        *numUsers,
		NumPosts:        *numPosts,
		CommentsPerPost: *comments,
		ShouldClean:     *shouldClean,
		SkipBcrypt:      *fast,
		MaxDays:         *maxDays,
		RandomSeed:      *randomSeed,
		Mix: seed.Distribution{
			Scheduled:     *scheduled,
			Hidden:        *hidden,
			Uncategorized: *uncategorized,
		},
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d categories, %d locations, %d posts, %d comments",
		summary.Users, summary.Categories, summary.Locations, summary.Posts, summary.Comments)
	if !*fast {
		log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
	}
}
