// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/antrian-id/antrian-loket/app/dto"
	"github.com/antrian-id/antrian-loket/app/handlers"
	"github.com/antrian-id/antrian-loket/app/middleware"
	"github.com/antrian-id/antrian-loket/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	eventHandler   handlers.EventHandlerInterface
	loketHandler   handlers.LoketHandlerInterface
	queueHandler   handlers.QueueHandlerInterface
	displayHandler handlers.DisplayHandlerInterface
	soundHandler   handlers.SoundHandlerInterface
	exportHandler  handlers.ExportHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	eventHandler handlers.EventHandlerInterface,
	loketHandler handlers.LoketHandlerInterface,
	queueHandler handlers.QueueHandlerInterface,
	displayHandler handlers.DisplayHandlerInterface,
	soundHandler handlers.SoundHandlerInterface,
	exportHandler handlers.ExportHandlerInterface,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Antrian Loket API",
		ServerHeader: "Antrian-Loket",
		ErrorHandler: errorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:            app,
		eventHandler:   eventHandler,
		loketHandler:   loketHandler,
		queueHandler:   queueHandler,
		displayHandler: displayHandler,
		soundHandler:   soundHandler,
		exportHandler:  exportHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	// Prometheus scrape endpoint, outside the API group
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// General rate limiting for all API routes
	api.Use(limiter.New(limiter.Config{
		Max:        2000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Event management
	events := api.Group("/events")
	events.Post("/", r.eventHandler.Create)
	events.Get("/", r.eventHandler.List)
	events.Get("/:id", r.eventHandler.Get)
	events.Put("/:id", r.eventHandler.Update)
	events.Delete("/:id", r.eventHandler.Delete)

	// Display state of all lokets of an event
	events.Get("/:id/state", r.displayHandler.EventState)

	// Sound configuration per display role
	events.Get("/:id/sound", r.soundHandler.Get)
	events.Put("/:id/sound", r.soundHandler.Update)

	// Loket management under an event
	events.Post("/:id/lokets", r.loketHandler.Create)
	events.Get("/:id/lokets", r.loketHandler.List)
	events.Get("/:id/lokets/:loket_id", r.loketHandler.Get)
	events.Put("/:id/lokets/:loket_id", r.loketHandler.Update)
	events.Delete("/:id/lokets/:loket_id", r.loketHandler.Delete)
	events.Post("/:id/lokets/:loket_id/reset", r.loketHandler.Reset)

	// Visitors take a number here
	events.Post("/:id/lokets/:loket_id/tickets", r.queueHandler.Issue)

	// Operator queue controls
	lokets := api.Group("/lokets")
	lokets.Post("/:loket_id/call-next", r.queueHandler.CallNext)
	lokets.Post("/:loket_id/hold", r.queueHandler.Hold)
	lokets.Post("/:loket_id/recall", r.queueHandler.Recall)
	lokets.Post("/:loket_id/repeat", r.queueHandler.Repeat)

	// Public display snapshot
	lokets.Get("/:loket_id/info", r.displayHandler.LoketInfo)

	// Data exports
	export := api.Group("/export")
	export.Get("/events", r.exportHandler.EventsCSV)
	export.Get("/events/:id/lokets", r.exportHandler.LoketsCSV)
	export.Get("/events/:id/tickets", r.exportHandler.TicketsCSV)
	export.Get("/events/:id/archive", r.exportHandler.EventArchive)
	export.Get("/events/:id/workbook", r.exportHandler.EventWorkbook)

	log.Println("Routes configured")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000, // 1 year
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		XDNSPrefetchControl:   "off",
		XDownloadOptions:      "noopen",
		XPermittedCrossDomain: "none",
	}))

	// CORS middleware. Displays and admin panels run on separate origins.
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://antrian.id",
			"https://admin.antrian.id",
			"https://display.antrian.id",
		},
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Prometheus request metrics
	r.app.Use(middleware.Metrics())

	// Structured request logging
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health" || c.Path() == "/metrics"
		},
	}))

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status": "ok",
			"time":   utils.UTCNowRFC3339(),
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Details: requestID,
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
