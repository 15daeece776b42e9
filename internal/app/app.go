// Package app assembles the Fiber application from its dependencies.
package app

import (
	"time"

	"queens/internal/handlers"
	"queens/internal/metrics"
	"queens/internal/middleware"
	"queens/internal/services"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	DB          *gorm.DB
	Log         *logrus.Logger
	Metrics     metrics.Recorder
	Gatherer    prometheus.Gatherer // nil disables /metrics
	Version     string
	Environment string

	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	Auth      *services.AuthService
	Users     *services.UserService
	Menstrual *services.MenstrualHealthService
	Journals  *services.JournalService
	Offers    *services.OfferService
	Canvas    *services.CanvasService
	AI        *services.AIService
}

// New returns the configured Fiber application.
func New(d Deps) *fiber.App {
	rec := d.Metrics
	if rec == nil {
		rec = metrics.Nop{}
	}

	app := fiber.New(fiber.Config{
		AppName:      "queens " + d.Version,
		ErrorHandler: handlers.ErrorHandler(d.Log),
		// Emails arrive percent-encoded in path params.
		UnescapePath: true,
	})

	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Output: d.Log.Writer(),
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(middleware.Metrics(rec))
	app.Use(recover.New())
	if d.RequestTimeout > 0 {
		app.Use(middleware.Timeout(d.RequestTimeout))
	}

	if d.Gatherer != nil {
		app.Get("/metrics", metrics.Handler(d.Gatherer))
	}

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	handlers.NewHealthHandler(d.DB, d.Version, d.Environment).RegisterRoutes(apiV1)

	// Authentication routes (public, rate limited)
	var authGuards []fiber.Handler
	if d.RateLimitRPS > 0 {
		authGuards = append(authGuards, middleware.RateLimit(middleware.NewIPRateLimiter(d.RateLimitRPS, d.RateLimitBurst)))
	}
	handlers.NewAuthHandler(d.Auth, d.Log).RegisterRoutes(apiV1, authGuards...)

	// Protected routes (require a session token)
	protected := apiV1.Group("", middleware.AuthRequired(d.Auth))
	handlers.NewUserHandler(d.Users).RegisterRoutes(protected)
	handlers.NewMenstrualHealthHandler(d.Menstrual).RegisterRoutes(protected)
	handlers.NewJournalHandler(d.Journals).RegisterRoutes(protected)
	handlers.NewOfferHandler(d.Offers).RegisterRoutes(protected)
	handlers.NewCanvasHandler(d.Canvas).RegisterRoutes(protected)
	handlers.NewAIHandler(d.AI).RegisterRoutes(protected)

	return app
}
