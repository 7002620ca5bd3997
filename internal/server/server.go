// Package server contains the HTTP handlers for the tracker API.
package server

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	_ "momentum/docs" // swagger docs
	"momentum/internal/cache"
	"momentum/internal/config"
	"momentum/internal/database"
	"momentum/internal/featureflags"
	"momentum/internal/middleware"
	"momentum/internal/models"
	"momentum/internal/repository"
	"momentum/internal/service"
	"momentum/internal/storage"
	"momentum/internal/worker"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds the dependencies shared by every handler.
type Server struct {
	config  *config.Config
	db      *gorm.DB
	redis   *redis.Client
	queue   *asynq.Client
	app     *fiber.App
	auth    *middleware.Authenticator
	limiter *middleware.RateLimiter

	promMiddleware *fiberprometheus.FiberPrometheus

	users       *service.UserService
	projects    *service.ProjectService
	subprojects *service.SubprojectService
	daily       *service.DailyService
	weekly      *service.WeeklyService
	jobs        *service.JobService
	dashboard   *service.DashboardService
}

// NewServer connects to the database, Redis and the upload directory, then
// wires the services on top of them.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	files, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		_ = database.Close(db)
		return nil, err
	}

	redisClient := cache.Connect(cfg.RedisURL)

	var queue *asynq.Client
	if redisClient != nil && cfg.WorkerEnabled {
		queue, err = worker.NewClient(cfg.RedisURL)
		if err != nil {
			middleware.Logger.Warn("task queue unavailable, cleanup runs inline only", "error", err.Error())
			queue = nil
		}
	}

	srv := NewServerWithDeps(cfg, db, redisClient, files, queue)
	return srv, nil
}

// NewServerWithDeps wires a server around existing connections. redisClient
// and queue may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, files storage.ProofStore, queue *asynq.Client) *Server {
	store := repository.NewStore(db)
	c := cache.New(redisClient)

	var enqueuer worker.Enqueuer
	if queue != nil {
		enqueuer = queue
	}
	cleaner := worker.NewCleaner(files, enqueuer)

	limits := storage.Limits{MaxFiles: cfg.UploadMaxFiles, MaxFileSize: cfg.MaxUploadBytes()}

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		queue:          queue,
		auth:           middleware.NewAuthenticator(cfg.JWTSecret, cfg.JWTExpiry()),
		limiter:        middleware.NewRateLimiter(redisClient, redisClient != nil),
		promMiddleware: middleware.InitMetrics("momentum-api"),

		users:       service.NewUserService(store.Users),
		projects:    service.NewProjectService(store, c, cleaner),
		subprojects: service.NewSubprojectService(store),
		daily:       service.NewDailyService(store, files, cleaner, c, featureflags.NewManager(cfg.FeatureFlags), limits),
		weekly:      service.NewWeeklyService(store),
		jobs:        service.NewJobService(store, c),
		dashboard:   service.NewDashboardService(store, c),
	}
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:   "Momentum API",
		BodyLimit: s.bodyLimit(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
				return c.Status(fe.Code).JSON(models.Envelope{Message: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err.Error())
			body := models.Envelope{Message: "Internal server error"}
			if s.config.IsDevelopment() {
				body.Message = err.Error()
				body.Stack = string(debug.Stack())
			}
			return c.Status(fiber.StatusInternalServerError).JSON(body)
		},
	})

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// bodyLimit leaves room for a full batch of proof files plus form fields.
func (s *Server) bodyLimit() int {
	return int(s.config.MaxUploadBytes())*s.config.UploadMaxFiles + 1024*1024
}

// SetupMiddleware installs the global middleware chain.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New(recover.Config{EnableStackTrace: s.config.IsDevelopment()}))
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Uploaded proofs are embedded by the web client from another origin.
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(middleware.StructuredLogger())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: s.config.AllowedOrigins != "*",
		MaxAge:           86400,
	}))

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
			return c.Status(fiber.StatusTooManyRequests).JSON(models.Envelope{
				Message: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes registers every endpoint.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Static(storage.URLPrefix, s.config.UploadDir, fiber.Static{ByteRange: true})

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{Title: "Momentum API Metrics"}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	authLimit := s.limiter.Limit("auth", 10, 15*time.Minute, middleware.FailOpen)
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authLimit, s.Register)
	authRoutes.Post("/login", authLimit, s.Login)

	requireAuth := s.auth.AuthRequired()
	authRoutes.Get("/profile", requireAuth, s.GetProfile)
	authRoutes.Put("/profile", requireAuth, s.UpdateProfile)

	projects := api.Group("/projects", requireAuth)
	projects.Get("/", s.ListProjects)
	projects.Post("/", s.CreateProject)
	projects.Get("/:id", s.GetProject)
	projects.Put("/:id", s.UpdateProject)
	projects.Delete("/:id", s.DeleteProject)
	projects.Post("/:id/subprojects", s.CreateSubproject)
	projects.Put("/:id/subprojects/:subprojectId", s.UpdateSubproject)
	projects.Delete("/:id/subprojects/:subprojectId", s.DeleteSubproject)

	daily := api.Group("/daily", requireAuth)
	daily.Get("/", s.ListDailyEntries)
	daily.Post("/", s.CreateDailyEntry)
	daily.Get("/:id", s.GetDailyEntry)
	daily.Put("/:id", s.UpdateDailyEntry)
	daily.Delete("/:id", s.DeleteDailyEntry)
	daily.Delete("/:id/files/:fileId", s.DeleteProofFile)

	weekly := api.Group("/weekly", requireAuth)
	weekly.Get("/", s.ListWeeklyReviews)
	weekly.Post("/", s.CreateWeeklyReview)
	weekly.Get("/:id", s.GetWeeklyReview)
	weekly.Put("/:id", s.UpdateWeeklyReview)
	weekly.Delete("/:id", s.DeleteWeeklyReview)

	jobs := api.Group("/jobs", requireAuth)
	jobs.Get("/", s.ListJobs)
	jobs.Post("/", s.CreateJob)
	jobs.Get("/stats", s.GetJobStats)
	jobs.Get("/:id", s.GetJob)
	jobs.Put("/:id", s.UpdateJob)
	jobs.Delete("/:id", s.DeleteJob)
	jobs.Post("/:id/activities", s.AddJobActivity)
	jobs.Put("/:id/activities/:activityId", s.UpdateJobActivity)
	jobs.Delete("/:id/activities/:activityId", s.DeleteJobActivity)

	api.Get("/dashboard", requireAuth, s.GetDashboard)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(models.Envelope{Message: "Route not found"})
	})
}

// HealthCheck handles GET /health
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "OK",
		"timestamp":   time.Now().UTC(),
		"environment": s.config.Env,
	})
}

// LivenessCheck handles GET /health/live
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "alive",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck handles GET /health/ready. Redis is optional: without it the
// API only loses caching and rate limiting.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
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
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus == "unhealthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"environment": s.config.Env,
		"time":        time.Now().UTC(),
	})
}

// Start listens on the configured port until Shutdown is called.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", "port", s.config.Port, "env", s.config.Env)
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the listener and releases connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http: %w", err))
		}
	}
	if s.queue != nil {
		if err := s.queue.Close(); err != nil {
			errs = append(errs, fmt.Errorf("queue: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if s.db != nil {
		if err := database.Close(s.db); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}
