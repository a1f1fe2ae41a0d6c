// cmd/routing-engine/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"routing-engine/internal/common/aws"
	"routing-engine/internal/common/config"
	"routing-engine/internal/common/database"
	"routing-engine/internal/common/logger"
	"routing-engine/internal/common/observability"
	"routing-engine/internal/dispatch"
	"routing-engine/internal/routing/capability"
	"routing-engine/internal/routing/classifier"
	"routing-engine/internal/routing/costmodel"
	"routing-engine/internal/routing/engine"
	"routing-engine/internal/routing/policy"
	"routing-engine/internal/server"
	"routing-engine/internal/sinks"
	"routing-engine/pkg/catalog"
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
			delay *= 2 // Exponential backoff
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

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting routing engine...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("routing-engine")
	defer obs.Shutdown()

	tracing, err := observability.NewTracing("routing-engine", os.Getenv("JAEGER_ENDPOINT"))
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}
	defer tracing.Shutdown()

	ctx := context.Background()

	// --- Task catalog ---
	cat, err := catalog.Load(cfg.Routing.CatalogPath)
	if err != nil {
		zapLog.Fatal("catalog load failed", zap.Error(err))
	}
	zapLog.Info("Task catalog loaded", zap.Int("taskTypes", len(cat.TaskTypes())))

	// --- Batch counters: Redis when configured, in-process otherwise ---
	var counters costmodel.Counters = costmodel.NewMemoryCounters()
	if cfg.Database.Redis.Address != "" {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		counters = costmodel.NewRedisCounters(redisClient.Client)
		zapLog.Info("Redis connected successfully")
	}

	// --- Record sinks ---
	sinkList := []sinks.Sink{sinks.NewLoggerSink(log)}

	stats := sinks.NewStatsSink()
	sinkList = append(sinkList, stats)

	if cfg.Sinks.Prometheus {
		sinkList = append(sinkList, sinks.NewPrometheusSink())
	}

	if cfg.Sinks.Postgres {
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
		sinkList = append(sinkList, sinks.NewPostgresSink(pg.DB))
		zapLog.Info("PostgreSQL connected successfully")
	}

	if cfg.Sinks.Elasticsearch {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		sinkList = append(sinkList, sinks.NewElasticsearchSink(esClient, cfg.Database.Elasticsearch.Index))
		zapLog.Info("Elasticsearch connected successfully")
	}

	if cfg.Alerts.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Alerts.SNS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		sinkList = append(sinkList, sinks.NewSNSAlertSink(snsClient, cfg.Alerts.SNS.TopicARN))
		zapLog.Info("SNS alerting enabled", zap.String("topic", cfg.Alerts.SNS.TopicARN))
	}

	multiSink := sinks.NewMultiSink(log, config.GetDuration(cfg.Routing.SinkTimeout), sinkList...)

	// --- Core components ---
	cls := classifier.New(classifier.LoadConfig(cfg.Routing), nil, log)

	assessor := capability.New(&capability.Config{
		HeadroomThreshold: cfg.Routing.HeadroomThreshold,
		SignalTimeout:     config.GetDuration(cfg.Routing.SignalTimeout),
	}, cat, nil, log)

	costModel := costmodel.New(&costmodel.Config{
		LocalFixedCost:   cfg.Routing.LocalFixedCost,
		VariableUnitCost: cfg.Routing.VariableUnitCost,
	}, cat, log)

	pol, err := policy.New(cfg.Routing.CostPriorityThreshold)
	if err != nil {
		zapLog.Fatal("policy init failed", zap.Error(err))
	}

	eng := engine.New(cls, assessor, costModel, counters, pol, multiSink, obs, tracing, log)

	// --- Execution venues ---
	local := dispatch.NewLocalDispatcher(log)
	cloud := dispatch.NewCloudDispatcher(
		cfg.Dispatch.Cloud.BaseURL,
		cfg.Dispatch.Cloud.APIKey,
		config.GetDuration(cfg.Dispatch.Cloud.Timeout),
		log,
	)
	registry := dispatch.NewRegistry(local, cloud, dispatch.NewAnonymizedDispatcher(cloud, log))

	srv := server.New(cfg.Server, eng, stats, costModel, counters, registry, log)

	go func() {
		if err := srv.Start(); err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// pprof on a side port, never on the public listener
	go func() {
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			zapLog.Warn("pprof server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down http server", zap.Error(err))
	}

	zapLog.Info("Routing engine stopped gracefully")
}
