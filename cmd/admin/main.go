// Command admin manages the blog catalog, accounts and content from the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"blogicum/internal/bootstrap"
	"blogicum/internal/cache"
	"blogicum/internal/config"
	"blogicum/internal/repository"
	"blogicum/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// connectFunc opens the database and, optionally, Redis for cache invalidation.
type connectFunc func(ctx context.Context) (*gorm.DB, *redis.Client, error)

type app struct {
	connect connectFunc

	catalog *service.CatalogService
	users   *service.UserService
	posts   repository.PostRepository
}

func (a *app) init(ctx context.Context) error {
	if a.catalog != nil {
		return nil
	}
	db, rdb, err := a.connect(ctx)
	if err != nil {
		return err
	}
	c := cache.New(rdb)
	a.catalog = service.NewCatalogService(
		repository.NewCategoryRepository(db, c),
		repository.NewLocationRepository(db, c),
	)
	a.users = service.NewUserService(repository.NewUserRepository(db))
	a.posts = repository.NewPostRepository(db)
	return nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Manage Blogicum categories, locations, users and posts",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}
	root.AddCommand(
		newCategoryCmd(a),
		newLocationCmd(a),
		newUserCmd(a),
		newPostCmd(a),
		newFixturesCmd(a),
	)
	return root
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func connectFromConfig(ctx context.Context) (*gorm.DB, *redis.Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipSchema: true})
}

func main() {
	cmd := newRootCmd(&app{connect: connectFromConfig})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
