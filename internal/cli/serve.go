package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jengzang/opportunity-map-go/internal/api"
	"github.com/jengzang/opportunity-map-go/internal/database"
	"github.com/jengzang/opportunity-map-go/internal/logging"
	"github.com/jengzang/opportunity-map-go/internal/metrics"
	"github.com/jengzang/opportunity-map-go/internal/middleware"
	"github.com/jengzang/opportunity-map-go/internal/repository"
	"github.com/jengzang/opportunity-map-go/internal/service"
	"github.com/jengzang/opportunity-map-go/pkg/response"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cliCtx)
		},
	}
}

func runServer(ctx context.Context, cliCtx *CLIContext) error {
	cfg, logger := cliCtx.Config, cliCtx.Logger
	defer logger.Sync() //nolint:errcheck

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.Database.Path}, logger); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	gin.SetMode(cfg.Server.GinMode)
	response.SetLogger(logger)

	m := metrics.New()
	limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	defer limiter.Stop()

	svc := service.NewMapService(
		repository.NewEntityRepository(database.GetDB()),
		service.MapOptions{
			Spacing:      cfg.Map.Spacing,
			CacheEntries: cfg.Map.CacheEntries,
			MaxEntities:  cfg.Map.MaxEntities,
			IngestBatch:  cfg.Map.IngestBatch,
		},
		logger,
		m,
	)

	// 初始化路由
	router := api.SetupRouter(api.Deps{
		Config:  cfg,
		Service: svc,
		Logger:  logger,
		Metrics: m,
		Limiter: limiter,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", logging.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
