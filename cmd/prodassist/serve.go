package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/prodassist/internal/transport/chi"
	healthuc "github.com/kailas-cloud/prodassist/internal/usecase/health"
	"github.com/kailas-cloud/prodassist/internal/version"
)

var serveNoEval bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveNoEval, "no-eval", false, "disable the evaluation endpoints")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger.Info("Starting prodassist API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	a, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.gateway.Close()

	// Fail fast: a gateway that cannot connect never becomes ready.
	if err := a.gateway.Initialize(cmd.Context()); err != nil {
		return fmt.Errorf("initialize retrieval gateway: %w", err)
	}

	var evaluations chiTransport.Evaluator
	if !serveNoEval {
		svc, store, err := a.openEvaluation(cfg, logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		evaluations = svc
	}

	healthSvc := healthuc.New(a.gateway, a.embedder)
	server := chiTransport.NewServer(a.gateway, evaluations, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}
