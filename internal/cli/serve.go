package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/cgpa-calculator/internal/config"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/monitoring"
	"github.com/ZanzyTHEbar/cgpa-calculator/internal/server"
)

const (
	shutdownTimeout = 30 * time.Second
	limiterCleanup  = 10 * time.Minute
)

func newServeCmd(opts *options) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web calculator and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides config and $PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := monitoring.NewLogger(level)
	slog.SetDefault(logger.Logger)

	if level > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}

	cleanupCtx, stopCleanup := context.WithCancel(ctx)
	defer stopCleanup()
	srv.Security().Cleanup(cleanupCtx, limiterCleanup)
	go srv.Memory().Run(cleanupCtx)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.SystemLogger("startup", "Starting server on port "+cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed to start: %w", err)
		}
		return nil
	case <-quit:
	case <-ctx.Done():
	}
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exited", "stats", srv.Metrics().GetStats())
	return nil
}
