// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsclient "maintenance-triage/internal/common/aws"
	"maintenance-triage/internal/common/camunda"
	"maintenance-triage/internal/common/config"
	"maintenance-triage/internal/common/database"
	"maintenance-triage/internal/common/logger"
	"maintenance-triage/internal/common/observability"
	"maintenance-triage/internal/diagnosis"
	"maintenance-triage/internal/llm"
	"maintenance-triage/internal/search"
	"maintenance-triage/pkg/registry"

	ad "maintenance-triage/internal/workers/triage/attach-diagnosis"
	dt "maintenance-triage/internal/workers/triage/diagnose-ticket"
	sta "maintenance-triage/internal/workers/triage/send-triage-alert"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
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

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	reg := loadRegistry(cfg.RegistryPath, zapLog)

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(camunda.ConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	if err := zeebe.ExecuteWithRetry(ctx, "topology", zeebe.HealthCheck); err != nil {
		zapLog.Warn("zeebe topology not reachable yet", zap.Error(err))
	} else {
		zapLog.Info("Zeebe client connected successfully")
	}

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	if err := pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("ticket schema setup failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Elasticsearch (optional) ---
	var (
		indexer   ad.TicketIndexer
		estimator diagnosis.SimilarIssuesEstimator = diagnosis.NewTimeSeededEstimator()
	)
	if cfg.Search.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		if err := esClient.EnsureTicketIndex(ctx, cfg.Search.TicketsIndex); err != nil {
			zapLog.Fatal("ticket index setup failed", zap.Error(err))
		}
		indexer = search.NewIndexer(esClient.Client, cfg.Search.TicketsIndex, log)
		estimator = search.NewCountEstimator(esClient.Client, cfg.Search.TicketsIndex, estimator, log)
		zapLog.Info("Elasticsearch connected successfully", zap.String("index", cfg.Search.TicketsIndex))
	}

	// --- Remote model (optional) ---
	var remote diagnosis.RemoteClassifier
	if cfg.APIs.LLM.Enabled() {
		var classifier llm.Classifier = llm.NewClient(cfg.APIs.LLM, log)

		if cfg.APIs.LLM.CacheTTL > 0 {
			var rdb *database.RedisClient
			err = retryWithBackoff(func() error {
				rdb = database.NewRedis(cfg.Database.Redis)
				return rdb.Ping(ctx)
			}, 10, 2*time.Second, zapLog, "Redis connection")
			if err != nil {
				zapLog.Fatal("redis failed after retries", zap.Error(err))
			}
			defer rdb.Close()
			classifier = llm.NewCachedClassifier(classifier, rdb.Client, time.Duration(cfg.APIs.LLM.CacheTTL)*time.Second, log)
			zapLog.Info("Redis connected successfully")
		}

		remote = classifier
		zapLog.Info("Remote model enabled", zap.String("model", cfg.APIs.LLM.Model))
	}

	engine := diagnosis.NewEngine(diagnosis.Options{
		Remote:        remote,
		Estimator:     estimator,
		Observability: obs,
		Logger:        log,
	})

	// --- AWS (optional) ---
	var (
		sesService sta.SESService
		snsService sta.SNSService
	)
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config load failed", zap.Error(err))
		}
		sesService = awsclient.NewSESClient(awsCfg)
		snsService = awsclient.NewSNSClient(awsCfg)
	}

	// --- Workers ---
	var workers []*camunda.Worker
	start := func(taskType string, handler camunda.JobHandler) {
		if !config.IsWorkerEnabled(cfg, taskType) {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		workers = append(workers, camunda.StartWorker(zeebe.Zeebe(), taskType, config.GetWorkerConfig(cfg, taskType), handler, log))
	}

	start(dt.TaskType, dt.NewHandler(
		dt.FromWorkerConfig(config.GetWorkerConfig(cfg, dt.TaskType)),
		engine,
		reg.InputSchema(dt.TaskType),
		obs, log,
	))
	start(ad.TaskType, ad.NewHandler(
		ad.FromWorkerConfig(config.GetWorkerConfig(cfg, ad.TaskType)),
		pg.DB,
		indexer,
		reg.InputSchema(ad.TaskType),
		obs, log,
	))
	start(sta.TaskType, sta.NewHandler(
		sta.FromConfig(cfg),
		pg.DB,
		sesService,
		snsService,
		reg.InputSchema(sta.TaskType),
		obs, log,
	))
	zapLog.Info("Triage workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: newMux(pg, zeebe),
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// loadRegistry reads the activity registry, falling back to the built-in definitions.
func loadRegistry(path string, log *zap.Logger) *registry.ActivityRegistry {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry not loaded, using built-in definitions",
			zap.String("path", path),
			zap.Error(err),
		)
		reg = registry.DefaultRegistry()
	}
	if err := reg.Validate(); err != nil {
		log.Fatal("activity registry invalid", zap.String("path", path), zap.Error(err))
	}
	return reg
}

func newMux(pg *database.PostgresClient, zeebe *camunda.Client) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{"postgres": "ok", "zeebe": "ok"}
		ready := true
		if err := pg.Ping(ctx); err != nil {
			checks["postgres"] = err.Error()
			ready = false
		}
		if err := zeebe.HealthCheck(ctx); err != nil {
			checks["zeebe"] = err.Error()
			ready = false
		}

		if !ready {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", checks)
			return
		}
		writeStatus(w, http.StatusOK, "ready", checks)
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, code int, status string, checks map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
		"checks": checks,
	})
}
