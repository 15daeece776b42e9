package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"queens/internal/app"
	"queens/internal/cache"
	"queens/internal/clients/canvas"
	"queens/internal/clients/emotion"
	"queens/internal/clients/llm"
	"queens/internal/config"
	"queens/internal/identity"
	"queens/internal/logger"
	"queens/internal/metrics"
	"queens/internal/repositories"
	"queens/internal/services"
	"queens/pkg/rabbitmq"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, log); err != nil {
		logger.Component(log, "main").WithError(err).Fatal("server stopped with error")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	mainLog := logger.Component(log, "main")
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Database ---
	db, err := repositories.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()
	if err := repositories.Migrate(db); err != nil {
		return err
	}

	userRepo := repositories.NewGORMUserRepository(db)
	journalRepo := repositories.NewGORMJournalRepository(db)
	offerRepo := repositories.NewGORMOfferRepository(db)

	// --- Identity provider ---
	var gateway identity.Gateway
	switch cfg.Identity.Provider {
	case "cognito":
		gateway, err = identity.NewCognitoGateway(ctx, cfg.Identity)
		if err != nil {
			return err
		}
	default:
		gateway = identity.NewLocalGateway(repositories.NewGORMCredentialRepository(db), cfg.Identity.JWTSecret, cfg.Identity.JWTTTL)
	}
	mainLog.WithField("provider", cfg.Identity.Provider).Info("identity provider ready")

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(registry)

	// --- Enrichment clients ---
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}
	llmClient := llm.NewClient(cfg.OpenAI, httpClient, logger.Component(log, "llm"))
	emotionClient := emotion.NewClient(httpClient, cfg.HuggingFace, logger.Component(log, "emotion"))
	canvasClient := canvas.NewClient(httpClient, cfg.Canvas, logger.Component(log, "canvas"))

	// --- Derived-view cache ---
	var viewCache cache.Cache = cache.Nop{}
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return err
		}
		viewCache = redisCache
		mainLog.WithField("addr", cfg.Redis.Addr).Info("redis cache enabled")
	}
	defer viewCache.Close()

	// --- Journal event bus ---
	var (
		mqClient  *rabbitmq.Client
		publisher services.JournalPublisher
	)
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger.Component(log, "rabbitmq"))
		if err != nil {
			return err
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		mainLog.Warn("RABBITMQ_URL not set, journal entries will not be annotated automatically")
	}

	// --- Services ---
	authService := services.NewAuthService(userRepo, gateway, logger.Component(log, "auth"))
	journalService := services.NewJournalService(journalRepo, userRepo, emotionClient, publisher, recorder, logger.Component(log, "journals"))

	application := app.New(app.Deps{
		DB:             db,
		Log:            log,
		Metrics:        recorder,
		Gatherer:       registry,
		Version:        Version,
		Environment:    cfg.Environment,
		RequestTimeout: cfg.RequestTimeout,
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		Auth:           authService,
		Users:          services.NewUserService(userRepo, logger.Component(log, "users")),
		Menstrual:      services.NewMenstrualHealthService(userRepo, llmClient, viewCache, cfg.CacheTTL, logger.Component(log, "menstrual")),
		Journals:       journalService,
		Offers:         services.NewOfferService(offerRepo, userRepo, logger.Component(log, "offers")),
		Canvas:         services.NewCanvasService(userRepo, canvasClient, recorder, logger.Component(log, "canvas")),
		AI:             services.NewAIService(llmClient, recorder),
	})

	// --- Start RabbitMQ consumer ---
	if mqClient != nil {
		if err := mqClient.ConsumeJournalEvents(ctx, journalService.AnnotateJournal); err != nil {
			return fmt.Errorf("failed to start journal consumer: %w", err)
		}
	}

	// --- Start HTTP server ---
	serverErr := make(chan error, 1)
	go func() {
		mainLog.WithFields(logrus.Fields{"port": cfg.AppPort, "version": Version}).Info("starting server")
		serverErr <- application.Listen(cfg.AppPort)
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		mainLog.WithField("signal", sig.String()).Info("shutting down server")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	stop()
	if err := application.ShutdownWithTimeout(shutdownTimeout); err != nil {
		mainLog.WithError(err).Error("error during shutdown")
	}
	mainLog.Info("server gracefully stopped")
	return nil
}
