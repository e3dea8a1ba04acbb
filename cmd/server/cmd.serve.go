package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barfer_analytics/internal/logger"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP analytics API (default command)",
		RunE:  runServe,
	}
}

// runServe chạy Fiber server cho tới khi nhận SIGINT/SIGTERM rồi dừng có timeout
func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApplication(envFile)
	if err != nil {
		return err
	}
	log := logger.GetAppLogger()

	app, err := InitFiberApp(a)
	if err != nil {
		_ = a.Close(context.Background())
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"address":  a.cfg.Address,
			"protocol": "HTTP",
			"version":  version,
		}).Info("Starting server with HTTP")
		listenErr <- app.Listen(a.cfg.Address, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	select {
	case err := <-listenErr:
		_ = a.Close(context.Background())
		if err != nil {
			log.WithError(err).Error("Error in Fiber Listen")
		}
		return err
	case <-ctx.Done():
		log.Warn("Signal received, shutting down")
	}

	timeout := time.Duration(a.cfg.Server_ShutdownTimeout) * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err = errors.Join(
		app.ShutdownWithContext(shutdownCtx),
		a.Close(shutdownCtx),
	)
	if err != nil {
		log.WithError(err).Error("Shutdown finished with errors")
		return err
	}
	log.Info("Server stopped")
	return nil
}
