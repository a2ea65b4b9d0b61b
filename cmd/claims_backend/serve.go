package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	portssvc "github.com/SscSPs/lecturer_claims_app/internal/core/ports/services"
	"github.com/SscSPs/lecturer_claims_app/internal/core/services"
	"github.com/SscSPs/lecturer_claims_app/internal/handlers"
	"github.com/SscSPs/lecturer_claims_app/internal/metrics"
	"github.com/SscSPs/lecturer_claims_app/internal/middleware"
	"github.com/SscSPs/lecturer_claims_app/internal/platform/config"
	"github.com/SscSPs/lecturer_claims_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/lecturer_claims_app/internal/storage"
	"github.com/SscSPs/lecturer_claims_app/internal/utils"
	"github.com/SscSPs/lecturer_claims_app/pkg/database"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate, provision and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger

	if err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, database.Up, logger); err != nil {
		return err
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		return err
	}
	defer database.ClosePgxPool(dbPool, logger)

	store, err := storage.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize document storage", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Document storage ready", slog.String("backend", cfg.StorageBackend))

	repos := pgsql.NewRepositoryProvider(dbPool)
	container, err := services.NewServiceContainer(cfg, repos, store)
	if err != nil {
		return err
	}
	if err := provision(ctx, logger, container.Provisioning, cfg.SeedFile); err != nil {
		return err
	}

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, logger)
	defer posthogClient.Close()

	router, err := newRouter(cfg, logger, container, posthogClient)
	if err != nil {
		return err
	}

	go reportPoolStats(ctx, dbPool)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Server exited")
	return nil
}

func newRouter(cfg *config.Config, logger *slog.Logger, container *portssvc.ServiceContainer, posthogClient *utils.PosthogClientWrapper) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.ClaimPolicy().MaxFileBytes
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	// cors.New panics on an empty origin list.
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Disposition", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.MetricsMiddleware(), middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	if err := handlers.RegisterRoutes(r, cfg, container); err != nil {
		return nil, err
	}
	return r, nil
}

func reportPoolStats(ctx context.Context, pool *pgxpool.Pool) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.UpdatePoolStats(pool)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
