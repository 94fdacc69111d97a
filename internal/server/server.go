// Package server contains the HTTP handlers of the portal API.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/config"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/featureflags"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/repository"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// maxRequestBodyMB bounds multipart listing submissions.
const maxRequestBodyMB = 100

// Deps are the collaborators a Server is built with. Media and Notifier
// may be nil; listings then cannot carry media and moderation stays silent.
type Deps struct {
	Media      service.MediaStore
	Notifier   service.Notifier
	Flags      *featureflags.Manager
	Prometheus *fiberprometheus.FiberPrometheus
	// Drain runs on Shutdown after the listener stops and before the
	// database closes, e.g. to flush queued notifications.
	Drain func(ctx context.Context) error
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	limiter        *middleware.Limiter
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	catalog        *service.Catalog
	users          *service.UserService
	comments       *service.CommentService
	inquiries      *service.InquiryService
	inbox          *service.NotificationService
	drain          func(ctx context.Context) error
	moderation     []moderationRoute
}

// NewServerWithDeps creates a Server over an already connected database.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, deps Deps) *Server {
	flags := deps.Flags
	if flags == nil {
		flags = featureflags.NewManager(cfg.FeatureFlags)
	}
	catalog := service.NewCatalog(db, service.LifecycleDeps{
		Media:    deps.Media,
		Notifier: deps.Notifier,
		Flags:    flags,
		CacheTTL: cfg.CacheTTL(),
	})

	inquiries := service.NewInquiryService(repository.NewInquiryRepository(db), catalog.Properties, deps.Notifier)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		limiter:        middleware.NewLimiter(redisClient, cfg.Env),
		promMiddleware: deps.Prometheus,
		featureFlags:   flags,
		catalog:        catalog,
		users:          service.NewUserService(repository.NewUserRepository(db)),
		comments:       service.NewCommentService(repository.NewCommentRepository(db), catalog),
		inquiries:      inquiries,
		inbox:          service.NewNotificationService(repository.NewNotificationRepository(db)),
		drain:          deps.Drain,
	}
}

// Catalog exposes the listing lifecycles, e.g. to the cleanup scheduler.
func (s *Server) Catalog() *service.Catalog { return s.catalog }

// Inquiries exposes the inquiry service to the cleanup scheduler.
func (s *Server) Inquiries() *service.InquiryService { return s.inquiries }

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	if s.config.MediaBackend == "disk" && s.config.MediaPublicBaseURL != "" && s.config.MediaDir != "" {
		app.Static(s.config.MediaPublicBaseURL, s.config.MediaDir, fiber.Static{MaxAge: 3600})
	}

	api := app.Group("/api")
	authRequired := middleware.AuthRequired(s.config.JWTSecret, s.redis)
	optionalAuth := middleware.OptionalAuth(s.config.JWTSecret, s.redis)

	auth := api.Group("/auth")
	auth.Post("/signup", s.limiter.Handle(middleware.SignupQuota), s.Signup)
	auth.Post("/login", s.limiter.Handle(middleware.LoginQuota), s.Login)
	auth.Post("/logout", authRequired, s.Logout)

	users := api.Group("/users", authRequired)
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Put("/me/device", s.RegisterDevice)

	registerListingRoutes(s, api, "news", s.catalog.News, func() *models.News { return &models.News{} })
	registerListingRoutes(s, api, "jobs", s.catalog.Jobs, func() *models.Job { return &models.Job{} })
	registerListingRoutes(s, api, "events", s.catalog.Events, func() *models.Event { return &models.Event{} })
	registerListingRoutes(s, api, "community-posts", s.catalog.CommunityPosts,
		func() *models.CommunityPost { return &models.CommunityPost{} })
	properties := registerListingRoutes(s, api, "properties", s.catalog.Properties.Lifecycle,
		func() *models.Property { return &models.Property{} })
	properties.afterGet = s.catalog.Properties.RecordView

	api.Post("/properties/search", optionalAuth, properties.searchBody)
	api.Patch("/properties/:id/status", authRequired, s.UpdatePropertyStatus)
	api.Post("/properties/:id/inquiries/click", authRequired, s.ClickInquiry)
	api.Post("/properties/:id/inquiries", authRequired,
		s.limiter.Handle(middleware.InquiryQuota), s.SubmitInquiry)
	api.Get("/properties/:id/inquiries", authRequired, s.GetPropertyInquiries)

	inquiries := api.Group("/inquiries", authRequired)
	inquiries.Get("/mine", s.GetMyInquiries)
	inquiries.Patch("/:id/status", s.UpdateInquiryStatus)

	comments := api.Group("/comments", authRequired)
	comments.Put("/:id", s.UpdateComment)
	comments.Delete("/:id", s.DeleteComment)

	inbox := api.Group("/notifications", authRequired)
	inbox.Get("/", s.GetNotifications)
	inbox.Get("/unread-count", s.GetUnreadCount)
	inbox.Post("/read-all", s.MarkAllNotificationsRead)
	inbox.Post("/:id/read", s.MarkNotificationRead)

	admin := api.Group("/admin", authRequired, s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Put("/feature-flags/:name", s.SetFeatureFlag)
	admin.Put("/users/:id/role", s.SetUserRole)
	admin.Get("/users", s.GetUsersByRole)
	for _, r := range s.moderation {
		group := admin.Group("/"+r.path, middleware.TagContentKind(r.kind))
		group.Get("/pending", r.pending)
		group.Post("/:id/approve", r.approve)
		group.Post("/:id/reject", r.reject)
	}
}

// App builds the Fiber app with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Jharkhand Portal API",
		BodyLimit:    maxRequestBodyMB * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// errorHandler maps errors escaping handlers to the standard error body.
func errorHandler(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()), slog.String("error", err.Error()))
	}
	return models.RespondWithError(c, status, err)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: the
// portal degrades to uncached reads without it.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unhealthy"
	} else if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	switch {
	case dbStatus != "healthy":
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	case redisStatus != "healthy":
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start serves the API until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and closes the database and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.drain != nil {
		if err := s.drain(ctx); err != nil {
			middleware.Logger.Error("error draining background work", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
