package server

import (
	"log"
	"strconv"

	"nexora-campus-be/internal/bootstrap"
	"nexora-campus-be/internal/config"
	"nexora-campus-be/internal/pkg/serverutils"
	"nexora-campus-be/pkg/metrics"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := NewApp(cfg)
	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

// NewApp builds the Fiber app with middleware but no routes.
func NewApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    30 * 1024 * 1024, // audio uploads
		ErrorHandler: serverutils.ErrorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET, POST, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())
	app.Use(requestMetrics)

	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	return app
}

// requestMetrics counts requests by route template, not raw path, to keep
// label cardinality bounded.
func requestMetrics(ctx *fiber.Ctx) error {
	err := ctx.Next()

	status := ctx.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
	}
	metrics.HTTPRequests.WithLabelValues(ctx.Method(), ctx.Route().Path, strconv.Itoa(status)).Inc()
	return err
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api/v1")

	c.SystemController.RegisterRoutes(api)
	c.ChatController.RegisterRoutes(api, c.Auth)
	c.ConversationController.RegisterRoutes(api, c.Auth)
	c.ModerationController.RegisterRoutes(api, c.Auth)
	c.KnowledgeController.RegisterRoutes(api, c.Auth)
	c.VoiceController.RegisterRoutes(api, c.Auth)
}
