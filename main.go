package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/aihealthrcm/demo-desk/pkg/api"
	"github.com/aihealthrcm/demo-desk/pkg/clients/airtable"
	"github.com/aihealthrcm/demo-desk/pkg/clients/twilio"
	"github.com/aihealthrcm/demo-desk/pkg/config"
	"github.com/aihealthrcm/demo-desk/pkg/logging"
	"github.com/aihealthrcm/demo-desk/pkg/middleware"
	"github.com/aihealthrcm/demo-desk/pkg/models"
	"github.com/aihealthrcm/demo-desk/pkg/services"
	"github.com/aihealthrcm/demo-desk/pkg/storage/sqlite"
	"github.com/aihealthrcm/demo-desk/pkg/wizard"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded")
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	catalog := models.DefaultCatalog()

	submitter, cleanup, err := newSubmitter(cfg, catalog, logger)
	if err != nil {
		logger.Fatal("failed to initialize submission backend", zap.Error(err))
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize services
	sessions := services.NewSessionService(submitter, catalog, logger, services.SessionOptions{
		TTL:             cfg.SessionTTL,
		DisplayDuration: cfg.SubmittedDisplay,
		SubmitTimeout:   cfg.Submit.Timeout,
	})
	go sessions.Run(ctx, cfg.SessionTTL/2)

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		middleware.CORS(cfg.CORSOrigins...),
		middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimit, time.Minute), logger),
	)

	// Register routes
	api.NewHandlers(sessions, catalog, logger).Register(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Submit.Timeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("submit_backend", cfg.Submit.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Submit.Timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}
	logger.Info("server exited gracefully")
}

// newSubmitter builds the configured submission backend wrapped in retries.
// cleanup releases whatever the backend holds open.
func newSubmitter(cfg *config.Config, catalog *models.Catalog, logger *zap.Logger) (wizard.Submitter, func(), error) {
	var (
		backend wizard.Submitter
		cleanup = func() {}
	)

	switch cfg.Submit.Backend {
	case config.BackendSimulated:
		backend = &services.Simulator{Delay: cfg.Submit.SimulatedDelay, Logger: logger}
	case config.BackendAirtable:
		var sms twilio.Client
		if cfg.SMSEnabled() {
			sms = twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, logger)
		}
		crm := airtable.NewClient(cfg.AirtableAPIKey, cfg.AirtableBaseID, airtable.WithLogger(logger))
		backend = services.NewLeadSubmitter(crm, sms, cfg.AirtableDemoTable, catalog, logger)
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		backend = store
		cleanup = func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close request store", zap.Error(err))
			}
		}
	default:
		return nil, nil, fmt.Errorf("unknown submit backend %q", cfg.Submit.Backend)
	}

	return services.NewRetryingSubmitter(backend, cfg.Submit.MaxTries, cfg.Submit.RetryInitial, logger), cleanup, nil
}
