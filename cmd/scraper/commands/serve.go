package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/offer-scraper/internal/api"
	"github.com/user/offer-scraper/internal/crawler"
)

var queueSize int

func init() {
	serveCmd.Flags().IntVar(&queueSize, "queue", 16, "Number of campaign requests that may wait for the worker.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--queue <n>]",
	Short: "Serves the campaign, stats and metrics API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		logger := a.logger

		runner := crawler.NewRunner(a.newCampaign, a.categories, queueSize, a.metrics, logger)
		runner.Start()

		server := api.NewServer(a.cfg.ServerPort, runner, a.sink, a.checks, a.metrics, a.registry, logger)
		serveErr := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()
		logger.Info("server started", zap.String("port", a.cfg.ServerPort))

		select {
		case <-ctx.Done():
		case err := <-serveErr:
			if err != nil {
				logger.Error("could not start server", zap.Error(err))
				return err
			}
		}

		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
		if err := runner.Stop(shutdownCtx); err != nil {
			logger.Warn("campaign worker cancelled", zap.Error(err))
		}
		logger.Info("server exiting")
		return nil
	},
}
