package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"blogicum/internal/models"
	"blogicum/internal/testutil"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func run(t *testing.T, db *gorm.DB, args ...string) (string, error) {
	t.Helper()
	a := &app{connect: func(context.Context) (*gorm.DB, *redis.Client, error) {
		return db, nil, nil
	}}
	var out bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCategoryCommands(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)

	out, err := run(t, db, "category", "add", "Road Trips", "--description", "Long drives")
	require.NoError(t, err)
	assert.Contains(t, out, "slug road-trips")

	_, err = run(t, db, "category", "add", "Road Trips", "--description", "Again")
	assert.Error(t, err)

	_, err = run(t, db, "category", "hide", "road-trips")
	require.NoError(t, err)

	var category models.Category
	require.NoError(t, db.First(&category, "slug = ?", "road-trips").Error)
	assert.False(t, category.IsPublished)

	out, err = run(t, db, "category", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "road-trips")
	assert.Contains(t, out, "no")

	_, err = run(t, db, "category", "delete", "road-trips")
	require.NoError(t, err)
	_, err = run(t, db, "category", "publish", "road-trips")
	assert.Error(t, err)
}

func TestLocationCommands(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)

	out, err := run(t, db, "location", "add", "Oslo", "--hidden")
	require.NoError(t, err)
	assert.Contains(t, out, `created location "Oslo"`)

	var location models.Location
	require.NoError(t, db.First(&location, "name = ?", "Oslo").Error)
	assert.False(t, location.IsPublished)

	_, err = run(t, db, "location", "publish", "abc")
	assert.Error(t, err)

	out, err = run(t, db, "location", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Oslo")
}

func TestUserCommands(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	ann := fx.User("ann")
	fx.Post("hello", ann, fx.Category("travel", true))

	out, err := run(t, db, "user", "promote", "ann")
	require.NoError(t, err)
	assert.Contains(t, out, "admin=true")

	out, err = run(t, db, "user", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ann@example.com")

	_, err = run(t, db, "user", "promote", "nobody")
	assert.Error(t, err)

	_, err = run(t, db, "user", "delete", "ann")
	require.NoError(t, err)
	var posts int64
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.Zero(t, posts)
}

func TestPostSearch(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	fx := testutil.NewFixtures(t, db)

	ann := fx.User("ann")
	travel := fx.Category("travel", true)
	cooking := fx.Category("cooking", true)
	fx.Post("Winter in Oslo", ann, travel, testutil.Unpublished())
	fx.Post("Winter soup", ann, cooking)

	out, err := run(t, db, "post", "search", "winter", "--category", "travel")
	require.NoError(t, err)
	assert.Contains(t, out, "Winter in Oslo")
	assert.NotContains(t, out, "Winter soup")
}

func TestFixturesImport(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)

	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte(`categories:
  - title: Books
    slug: books
    description: What we read
locations:
  - name: Kazan
`), 0o600))

	out, err := run(t, db, "fixtures", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "1 categories upserted, 1 locations created")
}
