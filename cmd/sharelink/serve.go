package main

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

	"github.com/spf13/cobra"

	"github.com/sagarc03/sharelink/config"
	sharelinkhttp "github.com/sagarc03/sharelink/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the sharelink HTTP server.

The signing secret must be configured (links.secret.inline or links.secret.file).
Use --migrate to create the tables on first start.`,
	RunE: runServe,
}

var serveMigrate bool

func init() {
	serveCmd.Flags().Int("port", 5708, "HTTP server port")
	serveCmd.Flags().String("public-url", "", "base URL of signed links, e.g. https://files.example.com")
	serveCmd.Flags().Int64("max-upload-size", 0, "upload size cap in bytes (default: 52428800)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "create missing tables before serving")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := openApp(ctx, cfg, openOptions{migrate: serveMigrate, createStorage: true})
	if err != nil {
		return err
	}
	defer a.Close()

	handlerConfig := sharelinkhttp.HandlerConfig{
		Environment:   cfg.Env,
		PublicURL:     cfg.Server.PublicURL,
		MaxUploadSize: cfg.Storage.MaxUploadSize,
		Metrics:       cfg.Metrics.Enabled,
		CORS:          cfg.CORS,
	}

	handler := sharelinkhttp.NewHandler(&handlerConfig, a.service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	// No WriteTimeout: downloads of large files stream for as long as they need.
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Service.CleanupTimeoutDuration())
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server",
		"addr", addr,
		"env", cfg.Env,
		"storage", cfg.Storage.Path,
		"ttl_min", cfg.Links.MinTTLSeconds,
		"ttl_max", cfg.Links.MaxTTLSeconds,
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
