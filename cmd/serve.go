package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bluebay-mechanical/field-service-api/config"
	"github.com/bluebay-mechanical/field-service-api/logger"
	"github.com/bluebay-mechanical/field-service-api/middleware"
	"github.com/bluebay-mechanical/field-service-api/routes"
	"github.com/bluebay-mechanical/field-service-api/services"
	"github.com/bluebay-mechanical/field-service-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if migrate {
				if err := config.AutoMigrate(config.GetDB()); err != nil {
					return err
				}
				logger.L().Info("database migration completed")
			}
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "auto-migrate the schema before serving")
	return cmd
}

// serve runs the API until ctx is cancelled, then drains in-flight requests
func serve(ctx context.Context, cfg *config.Config) error {
	log := logger.L()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.RegisterValidators()

	if _, err := services.InitStorage(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	if _, err := services.InitInvoiceRenderer(cfg.CompanyName); err != nil {
		return fmt.Errorf("failed to initialize invoice renderer: %w", err)
	}
	if services.InitPDFConverter(cfg.PDFRendererURL) == nil {
		log.Warn("PDF_RENDERER_URL not set, invoice PDF export is disabled")
	}

	if cfg.NotificationsDispatchEnabled {
		dispatcher := services.NewNotificationDispatcher(config.GetDB(), services.SendersFromConfig(cfg))
		if err := dispatcher.Start(cfg.NotificationsDispatchSchedule); err != nil {
			return err
		}
		defer dispatcher.Stop()
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	cleanupDone := make(chan struct{})
	defer close(cleanupDone)
	limiter.StartCleanup(time.Minute, cleanupDone)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.SetupRouter(cfg, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.GoEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
