package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"social_post_generator/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and web UI",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address host:port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	agent, client, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	srv, err := server.New(agent, client, cfg, log)
	if err != nil {
		return err
	}

	// Probe the model once at startup. An unreachable upstream is logged,
	// not fatal: the API may come back before the first request.
	probeCtx, cancelProbe := context.WithTimeout(cmd.Context(), 10*time.Second)
	if client.CheckHealth(probeCtx) {
		log.Info("openai api available")
	} else {
		log.Warn("openai api unavailable")
	}
	cancelProbe()

	addr := cfg.Addr()
	if flagAddr != "" {
		addr = flagAddr
	}

	httpSrv := &http.Server{
		Addr:    addr,
		Handler: srv.Routes(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", slog.String("error", err.Error()))
		}
	}

	stats := client.Statistics()
	log.Info("final statistics",
		slog.Int64("total_requests", stats.TotalRequests),
		slog.Int64("failed_requests", stats.FailedRequests),
		slog.Float64("success_rate", stats.SuccessRate),
		slog.Int64("total_tokens", stats.TotalTokens))
	return nil
}
