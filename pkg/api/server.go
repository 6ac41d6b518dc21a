package api

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/open-teleop/movingheads/domain/diagnostic"
	"github.com/open-teleop/movingheads/domain/inspection"
	"github.com/open-teleop/movingheads/domain/teleop"
	customlog "github.com/open-teleop/movingheads/pkg/log"
	"github.com/open-teleop/movingheads/services"
)

// Dependencies are the services the HTTP app exposes.
type Dependencies struct {
	Logger      customlog.Logger
	Store       *inspection.Store
	Diagnostics *diagnostic.DiagnosticService
	Teleop      *teleop.TeleopService
	ShowConfig  services.ShowConfigService
	Samples     SampleWriter
	// AccessLog enables the fiber request logger.
	AccessLog bool
}

// NewApp builds the fiber app with every route registered.
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Moving Heads Controller",
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: true,
	})

	if deps.AccessLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": "movingheads controller",
		})
	})

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	v1 := app.Group("/api/v1")
	v1.Get("/state", StateHandler(deps.Store))
	v1.Get("/diagnostics", deps.Diagnostics.GetMetricsHandler)

	teleopRoutes := v1.Group("/teleop")
	teleopRoutes.Post("/velocity", deps.Teleop.CommandHandler)
	teleopRoutes.Post("/stop", deps.Teleop.StopHandler)

	RegisterConfigRoutes(app, deps.ShowConfig, deps.Logger)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/control", websocket.New(func(conn *websocket.Conn) {
		ControlWebSocketHandler(conn, deps.Logger, deps.Samples)
	}))
	app.Get("/ws/state", websocket.New(func(conn *websocket.Conn) {
		StateWebSocketHandler(conn, deps.Logger, deps.Store)
	}))

	return app
}

// customErrorHandler renders every error as JSON.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
