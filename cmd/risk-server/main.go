// cmd/risk-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"loan-risk-workers/internal/common/config"
	"loan-risk-workers/internal/common/database"
	"loan-risk-workers/internal/common/logger"
	"loan-risk-workers/internal/common/observability"
	"loan-risk-workers/internal/common/validation"
	"loan-risk-workers/internal/pipeline"
	"loan-risk-workers/internal/server"
	"loan-risk-workers/internal/store"
	"loan-risk-workers/pkg/bundle"

	rd "loan-risk-workers/internal/workers/scoring/record-decision"
	sa "loan-risk-workers/internal/workers/scoring/score-application"
	sdn "loan-risk-workers/internal/workers/scoring/send-decision-notice"
	va "loan-risk-workers/internal/workers/scoring/validate-application"
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

	zapLog.Info("Starting risk server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("risk-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Load Model Bundle ---
	// A broken or missing artifact does not kill the process: the HTTP
	// surface stays up in degraded mode and answers 503 on scoring.
	var scoringPipeline *pipeline.Pipeline
	modelBundle, err := bundle.Load(cfg.Model.ArtifactPath)
	if err != nil {
		zapLog.Error("model bundle load failed, starting degraded",
			zap.String("path", cfg.Model.ArtifactPath),
			zap.Error(err),
		)
	} else {
		if cfg.Model.ThresholdOverride > 0 {
			modelBundle.Threshold = cfg.Model.ThresholdOverride
		}
		scoringPipeline, err = pipeline.FromBundle(modelBundle, log)
		if err != nil {
			zapLog.Error("pipeline construction failed, starting degraded", zap.Error(err))
			scoringPipeline = nil
		} else {
			scoringPipeline = scoringPipeline.WithRecorder(obs)
			zapLog.Info("model bundle loaded",
				zap.String("modelType", modelBundle.ModelType),
				zap.Int("features", len(modelBundle.FeatureNames)),
				zap.Float64("threshold", scoringPipeline.Threshold()),
			)
		}
	}

	validator, err := validation.NewApplicationValidator()
	if err != nil {
		zapLog.Fatal("application schema compile failed", zap.Error(err))
	}

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
		return esClient.Ping()
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

	decisions := store.NewDecisionStore(
		pg.DB,
		redis.Client,
		esClient,
		cfg.Database.Elasticsearch.DecisionIndex,
		time.Duration(cfg.Database.Redis.CacheTTL)*time.Second,
		log,
	)

	// --- Init Zeebe Client and Register Workers ---
	var zeebeClient zbc.Client
	if cfg.Camunda.Enabled {
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

		if cfg.Workers[va.TaskType].Enabled {
			handler := va.NewHandler(
				&va.Config{
					Timeout: config.GetDuration(cfg.Workers[va.TaskType].Timeout),
				},
				validator, log,
			)
			startWorker(zeebeClient, va.TaskType, cfg.Workers[va.TaskType], handler.Handle, zapLog)
		}

		if cfg.Workers[sa.TaskType].Enabled {
			if scoringPipeline == nil {
				zapLog.Error("score-application worker disabled: no model loaded")
			} else {
				handler := sa.NewHandler(
					&sa.Config{
						Timeout: config.GetDuration(cfg.Workers[sa.TaskType].Timeout),
					},
					scoringPipeline, log,
				)
				startWorker(zeebeClient, sa.TaskType, cfg.Workers[sa.TaskType], handler.Handle, zapLog)
			}
		}

		if cfg.Workers[rd.TaskType].Enabled {
			handler := rd.NewHandler(
				&rd.Config{
					Timeout: config.GetDuration(cfg.Workers[rd.TaskType].Timeout),
				},
				decisions, log,
			)
			startWorker(zeebeClient, rd.TaskType, cfg.Workers[rd.TaskType], handler.Handle, zapLog)
		}

		if cfg.Workers[sdn.TaskType].Enabled {
			handler, err := sdn.NewHandler(sdn.LoadConfig(cfg), log)
			if err != nil {
				zapLog.Fatal("failed to create send-decision-notice handler", zap.Error(err))
			}
			startWorker(zeebeClient, sdn.TaskType, cfg.Workers[sdn.TaskType], handler.Handle, zapLog)
		}

		zapLog.Info("All scoring workers registered")
	} else {
		zapLog.Info("Camunda disabled, running HTTP only")
	}

	// --- HTTP API ---
	httpServer := server.New(scoringPipeline, validator, decisions, log)

	serverCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	zapLog.Info("HTTP server listening", zap.String("addr", addr))

	err = httpServer.ListenAndServe(
		serverCtx,
		addr,
		config.GetDuration(cfg.Server.ReadTimeout),
		config.GetDuration(cfg.Server.WriteTimeout),
		config.GetDuration(cfg.Server.ShutdownTimeout),
	)
	if err != nil {
		zapLog.Error("HTTP server stopped", zap.Error(err))
	}

	zapLog.Info("Shutdown signal received, stopping workers...")

	if zeebeClient != nil {
		if err := zeebeClient.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Risk server stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
