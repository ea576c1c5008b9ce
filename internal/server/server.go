// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"time"

	_ "timebank/docs" // swagger docs
	"timebank/internal/bootstrap"
	"timebank/internal/config"
	"timebank/internal/database"
	"timebank/internal/featureflags"
	"timebank/internal/integrations"
	"timebank/internal/middleware"
	"timebank/internal/models"
	"timebank/internal/notifications"
	"timebank/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager
	media          integrations.Host

	userService      *service.UserService
	taskService      *service.TaskService
	chatService      *service.ChatService
	communityService *service.CommunityService
	ledgerService    *service.LedgerService
}

// NewServer creates a server over an initialized runtime.
func NewServer(rt *bootstrap.Runtime) *Server {
	middleware.RateLimitDisabled = !rt.Config.IsProduction() && rt.Config.Env != "staging"
	return &Server{
		config:           rt.Config,
		db:               rt.DB,
		redis:            rt.Redis,
		promMiddleware:   fiberprometheus.New("timebank-api"),
		hub:              rt.Hub,
		featureFlags:     rt.Flags,
		media:            rt.Media,
		userService:      rt.Users,
		taskService:      rt.Tasks,
		chatService:      rt.Chats,
		communityService: rt.Community,
		ledgerService:    rt.Ledger,
	}
}

// limiterStore returns the redis client as a Cmdable, or nil without Redis.
func (s *Server) limiterStore() redis.Cmdable {
	if s.redis == nil {
		return nil
	}
	return s.redis
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.Tracing())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
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
	app.Get("/swagger/*", swagger.HandlerDefault)
	if s.config.MediaDir != "" {
		app.Static("/media", s.config.MediaDir, fiber.Static{MaxAge: 86400})
	}

	api := app.Group("/api")
	rl := s.limiterStore()

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(rl, 5, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(rl, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", middleware.AuthRequired, s.Logout)

	protected := api.Group("", middleware.AuthRequired)

	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/:id/transactions", s.GetUserTransactions)
	users.Get("/:id", s.GetUserProfile)

	protected.Get("/dashboard", s.GetDashboard)
	protected.Get("/explore", s.Explore)
	protected.Get("/flags", s.GetFeatureFlags)

	tasks := protected.Group("/tasks")
	tasks.Get("/", s.ListTasks)
	tasks.Post("/", middleware.RateLimit(rl, 20, time.Hour, "create_task"), s.CreateTask)
	tasks.Get("/mine", s.MyTasks)
	// Specific /:id/:resource routes before the generic /:id
	tasks.Post("/:id/hire-requests", middleware.RateLimit(rl, 30, time.Hour, "hire_request"), s.CreateHireRequest)
	tasks.Get("/:id/hire-requests", s.ListHireRequests)
	tasks.Post("/:id/hire-requests/:requestId/accept", s.AcceptHireRequest)
	tasks.Post("/:id/accept", s.AcceptTask)
	tasks.Post("/:id/evidence", s.UploadEvidence)
	tasks.Post("/:id/submit", s.SubmitTask)
	tasks.Post("/:id/confirm", s.ConfirmTask)
	tasks.Get("/:id", s.GetTask)
	tasks.Delete("/:id", s.DeleteTask)

	chats := protected.Group("/chats")
	chats.Get("/", s.ListChats)
	chats.Post("/", s.CreateChat)
	chats.Get("/unread", s.GetUnreadCount)
	chats.Get("/:id/messages", s.GetMessages)
	chats.Post("/:id/messages", middleware.RateLimit(rl, 30, time.Minute, "send_chat"), s.SendMessage)
	chats.Post("/:id/read", s.MarkChatRead)

	community := protected.Group("/community")
	community.Get("/:city/messages", s.GetCommunityMessages)
	community.Post("/:city/messages", middleware.RateLimit(rl, 10, time.Minute, "community_chat"), s.PostCommunityMessage)

	protected.Post("/media", middleware.RateLimit(rl, 30, time.Hour, "media"), s.UploadMedia)

	admin := protected.Group("/admin", s.AdminRequired())
	admin.Post("/organizations/:id/verify", s.VerifyOrganization)
	admin.Get("/audit", s.GetLedgerAudit)

	app.Get("/ws", middleware.WebSocketAuthRequired, s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional and
// only reported.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil || database.Ping(ctx, s.db) != nil {
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

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin, err := s.userService.IsAdmin(c.UserContext(), actorID(c))
		if err != nil {
			return RespondWithError(c, err)
		}
		if !admin {
			return RespondWithError(c, models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// App builds the fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "timebank API",
		BodyLimit: max(s.config.MediaMaxUploadMB, 1) * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return RespondWithError(c, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// Start listens on the configured port until Shutdown.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and closes websocket clients. The
// runtime owns and closes the connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}
	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down websocket hub", "error", err)
		}
	}
	middleware.Logger.Info("server shutdown complete")
	return nil
}
