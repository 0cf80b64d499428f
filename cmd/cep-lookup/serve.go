package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/cep-lookup/internal/api/http"
	"github.com/i474232898/cep-lookup/internal/scheduler"
	"github.com/i474232898/cep-lookup/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search and history surfaces over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.session.Mount(ctx); err != nil {
			return err
		}

		// Store upkeep and history checks while serving.
		maintainer, _ := a.store.(store.Maintainer)
		sched := scheduler.New(cfg.MaintenanceInterval, maintainer, a.history, logger)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()

		app := newServer(a)

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", zap.String("port", cfg.Port))
			errCh <- app.Listen(":" + cfg.Port)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("error during shutdown", zap.Error(err))
		}
		return nil
	},
}

// newServer builds the Fiber app serving both surfaces of a.
func newServer(a *app) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "cep-lookup",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "cep-lookup",
		})
	})

	httpapi.RegisterRoutes(app, a.session, a.history)
	return app
}
