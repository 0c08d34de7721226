package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quizcast/internal/server"

	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the automation API over HTTP",
	Long: `Expose settings, authorization and automation controls over a local HTTP
API so a dashboard or curl can drive them.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := buildApp(cmd.Context())
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = app.cfg.Server.Addr
	}

	srv := server.New(server.Options{
		Addr:         addr,
		Store:        app.store,
		Flow:         app.flow,
		Controller:   app.controller,
		Defaults:     automationConfig(app.cfg),
		DefaultCount: app.cfg.Automation.Count,
	})

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
	}

	slog.Info("Shutting down...")
	app.controller.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Server shutdown failed", "error", err)
	}
	app.controller.Wait()
	return nil
}
