package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"jobfit-agent/handler"
	"jobfit-agent/internal/bootstrap"
	"jobfit-agent/internal/config"
)

const app = "jobfit-local"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          app,
		Short:        "jobfit-local runs the job application assistant API on a local HTTP server",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var addr, envFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the API under /api/:operation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), addr, envFile)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration; skipped when missing")
	return cmd
}

func serve(ctx context.Context, addr, envFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	clients, err := bootstrap.LoadAWS(ctx)
	if err != nil {
		return err
	}
	h, err := bootstrap.NewHandler(cfg, clients, logger)
	if err != nil {
		return err
	}

	server := newApp(h)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("shutting down")
		if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("forced shutdown", "err", err)
		}
	}()

	logger.Info("listening", "addr", addr)
	return server.Listen(addr)
}

func newApp(h *handler.Handler) *fiber.App {
	server := fiber.New(fiber.Config{
		AppName:               app,
		DisableStartupMessage: true,
	})
	server.Use(recover.New())

	server.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	server.All("/api/:operation", h.Fiber)
	return server
}
