// cmd/search-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"scout-search/internal/common/config"
	"scout-search/internal/common/database"
	"scout-search/internal/common/logger"
	"scout-search/internal/common/observability"
	"scout-search/internal/search/classifier"
	"scout-search/internal/search/explain"
	"scout-search/internal/search/orchestrator"
	"scout-search/internal/search/querybuilder"
	"scout-search/internal/search/scorer"
	"scout-search/internal/search/store"

	ps "scout-search/internal/workers/scouting/player-search"
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
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting search worker...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("search-worker")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
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
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
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
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Assemble the search pipeline ---
	classifierClient := classifier.NewHTTPClassifier(
		cfg.Classifier.BaseURL,
		cfg.Classifier.APIKey,
		time.Duration(cfg.Classifier.Timeout)*time.Millisecond,
	)

	cacheTTL := time.Duration(cfg.Classifier.CacheTTLHours) * time.Hour
	var parseCache classifier.Cache
	if cfg.Classifier.UseRedisCache {
		parseCache = classifier.NewRedisCache(redis.Client, cacheTTL)
	} else {
		parseCache = classifier.NewMemoryCache(
			cacheTTL,
			time.Duration(cfg.Classifier.SweepIntervalMins)*time.Minute,
		)
	}

	classifierService := classifier.NewService(
		classifier.Config{
			MaxRetries:  cfg.Classifier.MaxRetries,
			BaseBackoff: time.Duration(cfg.Classifier.BackoffMs) * time.Millisecond,
			CacheTTL:    cacheTTL,
		},
		classifierClient, parseCache, log,
	)
	defer classifierService.Close()

	matchScorer := scorer.New(scorer.DefaultWeights(), scorer.Tolerances{
		AgeYears:             cfg.Search.AgeToleranceYears,
		ValueOverageRatio:    cfg.Search.ValueOverageRatio,
		ContractUrgentMonths: cfg.Search.ContractUrgentMonths,
		ContractSoonMonths:   cfg.Search.ContractSoonMonths,
		ContractStableMonths: cfg.Search.ContractStableMonths,
	})

	esStore := store.NewElasticsearchStore(esClient.Client, cfg.Database.Elasticsearch.Index, log)
	playerStore := store.NewCachedStore(esStore, redis.Client, 0, log)

	searchOrchestrator := orchestrator.New(
		classifierService,
		querybuilder.New(cfg.Search),
		playerStore,
		matchScorer,
		explain.NewService(matchScorer),
		store.NewPostgresAuditLogger(pg.DB),
		obs,
		log,
	)

	// --- Register the player-search worker ---
	handler := ps.NewHandler(
		&ps.Config{
			Timeout: time.Duration(cfg.Camunda.Timeout) * time.Millisecond,
		},
		searchOrchestrator, log,
	)
	startWorker(zeebeClient, ps.TaskType, cfg.Camunda.MaxJobsActive, cfg.Camunda.Timeout, handler.Handle, zapLog)

	zapLog.Info("Search worker registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(classifierService.Stats())
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
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

	_ = shutdownCtx

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Search worker stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, maxJobsActive, timeoutMs int, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(maxJobsActive).
		Timeout(time.Duration(timeoutMs) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobsActive),
		zap.Int("timeout_ms", timeoutMs),
	)
}
