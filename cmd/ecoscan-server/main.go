// cmd/ecoscan-server/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ecoscan-relay/internal/api"
	"ecoscan-relay/internal/common/camunda"
	"ecoscan-relay/internal/common/config"
	"ecoscan-relay/internal/common/logger"
	"ecoscan-relay/internal/common/observability"
	"ecoscan-relay/internal/pipeline"
	"ecoscan-relay/internal/pipeline/input"
	"ecoscan-relay/internal/pipeline/stores"
	"ecoscan-relay/internal/pipeline/vision"
	ag "ecoscan-relay/internal/workers/analyze-garment"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting EcoScan relay...",
		zap.String("environment", cfg.App.Environment),
		zap.String("envFile", cfg.EnvFile),
		zap.String("storesProvider", cfg.Stores.Provider),
	)

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	// --- Vision ---
	pool := vision.NewClientPool(cfg.Vision.APIKey, cfg.Vision.BaseURL,
		&http.Client{Timeout: config.GetDuration(cfg.Vision.Timeout)})
	defer pool.Close()
	if !pool.Ready() {
		zapLog.Warn("GOOGLE_API_KEY is not set; every analysis will answer with a configuration error")
	}
	classifier := vision.NewClassifier(pool, cfg.Vision.Model, config.GetDuration(cfg.Vision.Timeout), log)

	// --- Stores ---
	var searcher stores.Searcher
	var closeStores func() error
	err = retryWithBackoff(func() error {
		var err error
		searcher, closeStores, err = stores.NewSearcher(cfg)
		return err
	}, 5, 2*time.Second, log, "Store provider initialization")
	if err != nil {
		zapLog.Fatal("store provider failed after retries", zap.Error(err))
	}
	defer func() { _ = closeStores() }()
	locator := stores.NewLocator(searcher, stores.OptionsFrom(cfg.Stores), config.GetDuration(cfg.Stores.Timeout), log)

	analyzer := pipeline.NewAnalyzer(
		input.NewParser(cfg.Validation.LocationSchema),
		classifier, locator, obs, log,
	)

	// --- Job worker ---
	var jobWorker *camunda.Worker
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled && config.IsWorkerEnabled(cfg, ag.TaskType) {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: cfg.Camunda.Plaintext,
				ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, log, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}

		wcfg := ag.LoadConfig(cfg)
		jobWorker = camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      ag.TaskType,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       wcfg.Timeout,
		}, ag.NewHandler(wcfg, analyzer, log), log)
	}

	// --- HTTP ---
	srv := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewRouter(analyzer, api.RouterConfig{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		}, log),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}
	if jobWorker != nil {
		jobWorker.Stop()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("EcoScan relay stopped gracefully")
}
