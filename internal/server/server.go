// Package server contains the HTTP handlers and page rendering of the blog.
package server

import (
	"context"
	"strings"
	"time"

	"blogicum/internal/bootstrap"
	"blogicum/internal/cache"
	"blogicum/internal/config"
	"blogicum/internal/featureflags"
	"blogicum/internal/middleware"
	"blogicum/internal/repository"
	"blogicum/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	loginPath = "/auth/login/"
	// csrfField is the hidden form input carrying the CSRF token.
	csrfField = "csrfmiddlewaretoken"
	localCSRF = "csrf"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	location       *time.Location
	sessions       *middleware.Sessions
	limiter        *middleware.RateLimiter
	featureFlags   *featureflags.Manager
	userRepo       repository.UserRepository
	postService    *service.PostService
	commentService *service.CommentService
	userService    *service.UserService
	imageService   *service.ImageService
}

// NewServer creates a new server instance with all dependencies. The schema is brought
// up to date, and a development database also gets the built-in catalog.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{
		SeedBuiltIns: cfg.Env == "development",
	})
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching, rate limiting and session revocation are then off.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	c := cache.New(redisClient)
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db, c)
	locationRepo := repository.NewLocationRepository(db, c)

	flags := featureflags.NewManager(cfg.FeatureFlags)
	for _, name := range flags.Unknown() {
		middleware.Logger.Warn("unknown feature flag", "flag", name)
	}
	if raw := flags.Raw(); len(raw) > 0 {
		middleware.Logger.Info("feature flags loaded", "flags", raw)
	}

	images := service.NewImageService(cfg, flags)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("blogicum"),
		location:       loc,
		sessions:       middleware.NewSessions(cfg.JWTSecret, redisClient, cfg.SessionCookieSecure),
		limiter:        middleware.NewRateLimiter(redisClient, cfg.Env),
		featureFlags:   flags,
		userRepo:       userRepo,
		postService:    service.NewPostService(postRepo, categoryRepo, locationRepo, images, cfg.PaginateBy),
		commentService: service.NewCommentService(commentRepo, postRepo),
		userService:    service.NewUserService(userRepo),
		imageService:   images,
	}, nil
}

// App builds the fiber application with views, middleware and routes.
func (s *Server) App() (*fiber.App, error) {
	engine, err := s.newViews()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:      "blogicum",
		Views:        engine,
		ViewsLayout:  layoutTemplate,
		ErrorHandler: s.errorHandler,
		BodyLimit:    int(s.imageService.MaxUploadSizeBytes()) + 1024*1024,
		UnescapePath: true,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Session before ContextMiddleware so the user ID reaches the logger
	app.Use(s.sessions.Load())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers. Uploaded images are same-origin, so the default policy holds.
	app.Use(helmet.New())

	app.Use(middleware.StructuredLogger())

	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:" + csrfField,
		CookieName:     "csrftoken",
		CookieSameSite: "Lax",
		CookieSecure:   s.config.SessionCookieSecure,
		CookieHTTPOnly: true,
		Expiration:     2 * time.Hour,
		ContextKey:     localCSRF,
		Next: func(c *fiber.Ctx) bool {
			return s.config.Env == "test"
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return fiber.NewError(fiber.StatusForbidden, "CSRF verification failed. Request aborted.")
		},
	}))

	app.Use(compress.New())

	// Global rate limiting (300 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return s.config.Env == "test" || strings.HasPrefix(c.Path(), "/static/")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	if s.config.Env == "development" {
		app.Get("/metrics/dashboard", monitor.New(monitor.Config{
			Title: "Blogicum Metrics Dashboard",
		}))
	}

	app.Use("/static", staticHandler())
	app.Static("/media", s.imageService.MediaRoot(), fiber.Static{
		MaxAge: 3600,
	})

	app.Get("/", s.Index)
	app.Get("/category/:slug/", s.CategoryPosts)

	auth := app.Group("/auth")
	auth.Get("/register/", s.RegisterForm)
	auth.Post("/register/", s.limiter.Limit("register", 5, 10*time.Minute, middleware.FailOpen), s.Register)
	auth.Get("/login/", s.LoginForm)
	auth.Post("/login/", s.limiter.Limit("login", s.config.LoginRateLimit, 5*time.Minute, middleware.FailOpen), s.Login)
	auth.Post("/logout/", s.Logout)

	requireLogin := middleware.LoginRequired(loginPath)

	// /profile/edit/ before /profile/:username/
	app.Get("/profile/edit/", requireLogin, s.EditProfileForm)
	app.Post("/profile/edit/", requireLogin, s.EditProfile)
	app.Get("/profile/:username/", s.Profile)

	posts := app.Group("/posts")
	posts.Get("/create/", requireLogin, s.CreatePostForm)
	posts.Post("/create/", requireLogin, s.CreatePost)
	posts.Get("/:id/", s.PostDetail)
	posts.Get("/:id/edit/", requireLogin, s.guarded(s.loadPost, isAuthor, s.EditPostForm))
	posts.Post("/:id/edit/", requireLogin, s.guarded(s.loadPost, isAuthor, s.EditPost))
	posts.Get("/:id/delete/", requireLogin, s.guarded(s.loadPost, isAuthor, s.DeletePostForm))
	posts.Post("/:id/delete/", requireLogin, s.guarded(s.loadPost, isAuthor, s.DeletePost))

	posts.Post("/:id/comment/", requireLogin,
		s.limiter.Limit("comment", 20, time.Minute, middleware.FailOpen), s.AddComment)
	posts.Get("/:id/comment/:commentId/edit/", requireLogin, s.guarded(s.loadComment, isAuthor, s.EditCommentForm))
	posts.Post("/:id/comment/:commentId/edit/", requireLogin, s.guarded(s.loadComment, isAuthor, s.EditComment))
	posts.Get("/:id/comment/:commentId/delete/", requireLogin, s.guarded(s.loadComment, isAuthor, s.DeleteCommentForm))
	posts.Post("/:id/comment/:commentId/delete/", requireLogin, s.guarded(s.loadComment, isAuthor, s.DeleteComment))

	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.app
	if app == nil {
		var err error
		if app, err = s.App(); err != nil {
			return err
		}
	}
	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
