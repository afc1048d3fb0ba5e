package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/chatblast/chatblast/internal/auth/http"
	"github.com/chatblast/chatblast/internal/auth/mail"
	"github.com/chatblast/chatblast/internal/auth/metrics"
	"github.com/chatblast/chatblast/internal/auth/service"
	"github.com/chatblast/chatblast/internal/auth/store"
	"github.com/chatblast/chatblast/internal/auth/store/drivers/sqlite"
	"github.com/chatblast/chatblast/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	credentialService   *service.CredentialService
	sessionService      *service.SessionService
	verificationService *service.VerificationService
	authService         *service.AuthService
	userService         *service.UserService
	sweepService        *service.SweepService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	metrics.Init()

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.sweepService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			// The sweeper and store still need their orderly stop even
			// though the server never came up.
			if sdErr := app.Shutdown(); sdErr != nil {
				app.logger.Error("shutdown after server failure", "error", sdErr)
			}
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the sweep before the store goes away under it.
	app.sweepService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.credentialService = &service.CredentialService{
		Store:      app.db,
		BcryptCost: app.cfg.BcryptCost,
	}
	app.sessionService = &service.SessionService{
		Store:            app.db,
		SessionTTL:       app.cfg.SessionTTL,
		RefreshCookieTTL: app.cfg.RefreshCookieTTL,
	}
	app.verificationService = &service.VerificationService{
		Store:   app.db,
		Mailer:  &mail.LogMailer{Logger: app.logger},
		BaseURL: app.cfg.PublicBaseURL,
		CodeTTL: app.cfg.VerificationTTL,
	}
	app.authService = &service.AuthService{
		Store:       app.db,
		Credentials: app.credentialService,
		Sessions:    app.sessionService,
	}
	app.userService = &service.UserService{
		Store:       app.db,
		Credentials: app.credentialService,
	}

	app.sweepService = service.NewSweepService(
		app.db,
		app.logger,
		app.cfg.SweepInterval,
		app.cfg.SessionTTL,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.cfg.Env == "prod",
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.SessionService = app.sessionService
	router.VerificationService = app.verificationService
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
