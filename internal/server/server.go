// Package server contains the HTTP and WebSocket handlers for the meal
// planner API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "mealplanner/docs" // swagger docs
	"mealplanner/internal/bootstrap"
	"mealplanner/internal/config"
	"mealplanner/internal/database"
	"mealplanner/internal/middleware"
	"mealplanner/internal/models"
	"mealplanner/internal/notifications"
	"mealplanner/internal/repository"
	"mealplanner/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "mealplanner-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	userRepo       repository.UserRepository
	catalogRepo    repository.CatalogRepository
	planRepo       repository.PlanRepository
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	searchService  *service.SearchService
	planService    *service.PlanService
	authService    *service.AuthService
}

// NewServer connects to the database and Redis and builds a Server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SeedCatalog: cfg.SeedCatalog})
	if err != nil {
		return nil, err
	}
	// A nil client leaves caching and live updates disabled.
	return NewServerWithDeps(cfg, db, rdb)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("config and database are required")
	}
	middleware.InitMiddleware(cfg)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(serviceName),
		userRepo:       repository.NewUserRepository(db),
		catalogRepo:    repository.NewCatalogRepository(db),
		planRepo:       repository.NewPlanRepository(db),
	}

	var events service.PlanEventPublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		s.hub = notifications.NewHub()
		events = s.notifier
	}

	s.searchService = service.NewSearchService(s.catalogRepo)
	s.planService = service.NewPlanService(s.planRepo, s.catalogRepo, s.userRepo, events)
	s.authService = service.NewAuthService(s.userRepo, cfg.JWTSecret, cfg.JWTTTLHours)

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS
	// headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
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
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  "RATE_LIMITED",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)
	api.Get("/test_db", s.TestDB)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Meal Planner Metrics Dashboard",
	}))

	api.Get("/swagger/*", swagger.HandlerDefault)

	signupLimit := middleware.RateLimit(s.redis, 5, 10*time.Minute, "signup")
	loginLimit := middleware.RateLimit(s.redis, 10, 5*time.Minute, "login")
	searchLimit := middleware.RateLimit(s.redis, 60, time.Minute, "search")

	auth := api.Group("/auth")
	auth.Post("/signup", signupLimit, s.Signup)
	auth.Post("/login", loginLimit, s.Login)

	meals := api.Group("/meals")
	meals.Get("/", s.ListMeals)
	meals.Post("/search/ingredients", searchLimit, s.SearchByIngredients)
	meals.Post("/search/preference", searchLimit, s.SearchByPreference)
	meals.Get("/:id", s.GetMeal)

	plan := api.Group("/plan", middleware.AuthRequired)
	plan.Get("/", s.GetPlan)
	plan.Delete("/", s.ClearPlan)
	plan.Put("/slots", s.UpsertPlanSlot)
	plan.Delete("/slots", s.RemovePlanSlot)

	api.Get("/account", middleware.AuthRequired, s.GetAccount)

	api.Get("/ws/plan", middleware.WebSocketAuthRequired, s.WebSocketPlanHandler())

	s.setupLegacyRoutes(api, signupLimit, loginLimit, searchLimit)
}

// setupLegacyRoutes keeps the original flat endpoint names working for
// existing clients.
func (s *Server) setupLegacyRoutes(api fiber.Router, signupLimit, loginLimit, searchLimit fiber.Handler) {
	api.Post("/signup", signupLimit, s.Signup)
	api.Post("/login", loginLimit, s.Login)
	api.Post("/by_ingredient", searchLimit, s.SearchByIngredients)
	api.Post("/by_preference", searchLimit, s.SearchByPreference)
	api.Get("/all_meals", s.ListMeals)
	api.Get("/meal/:id", s.GetMeal)
	api.Post("/add_to_plan/:id", middleware.AuthRequired, s.AddToPlan)
	api.Get("/meal_plan_with_totals", middleware.AuthRequired, s.GetPlan)
	api.Post("/remove_from_plan", middleware.AuthRequired, s.RemovePlanSlot)
	api.Post("/clear_meal_plan", middleware.AuthRequired, s.ClearPlan)
	api.Get("/my_account", middleware.AuthRequired, s.GetAccount)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: the
// service degrades to uncached reads without live updates.
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
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// TestDB godoc
// @Summary Check the database connection
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} models.ErrorResponse
// @Router /test_db [get]
func (s *Server) TestDB(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	if err := database.Ping(ctx, s.db); err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"message": "Database connection is working!"})
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Meal Planner API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			return respondError(c, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.notifier != nil && s.hub != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			middleware.Logger.Error("failed to start plan feed wiring", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down plan hub", slog.String("error", err.Error()))
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

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
