package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shipping-price-pipeline/internal/adapters/secondary/awss3"
	"shipping-price-pipeline/internal/adapters/secondary/kserve"
	"shipping-price-pipeline/internal/adapters/secondary/mongodb"
	"shipping-price-pipeline/internal/adapters/secondary/postgres"
	"shipping-price-pipeline/internal/config"
	"shipping-price-pipeline/internal/core/domain"
	output "shipping-price-pipeline/internal/core/ports/output"
	"shipping-price-pipeline/internal/core/services"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		log.WithError(err).WithField("failed_stage", domain.FailedStage(err)).Error("training pipeline failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	schema, err := config.LoadSchema(cfg.Pipeline.SchemaFile)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	pipelineCfg := config.NewTrainingPipelineConfig(cfg, schema, time.Now())

	// ============================================================================
	// Hexagonal Architecture Wiring
	// ============================================================================

	// Secondary Adapters (Output Ports)
	docs, disconnect, err := mongodb.NewDocumentStore(ctx, &cfg.Mongo)
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		if err := disconnect(context.WithoutCancel(ctx)); err != nil {
			log.Warnf("disconnect mongodb: %v", err)
		}
	}()
	log.Info("mongodb connection established")

	objects, err := awss3.NewObjectStore(ctx, &cfg.Storage)
	if err != nil {
		return fmt.Errorf("create s3 client: %w", err)
	}

	// Training run registry (Optional - based on config)
	var runs output.TrainingRunRepository
	if cfg.Database.Enabled {
		pool, err := newPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()
		runs = postgres.NewTrainingRunRepository(pool)
		log.Info("database connection established")
	} else {
		log.Info("training run registry disabled")
	}

	// KServe Client (Optional - based on config)
	var kserveClient output.KServeClient
	if cfg.Kubernetes.Enabled {
		client, err := kserve.NewKServeClient(&cfg.Kubernetes)
		if err != nil {
			log.Warnf("KServe client init failed (continuing without rollout): %v", err)
		} else {
			kserveClient = client
			log.Info("KServe client initialized")
		}
	} else {
		log.Info("KServe rollout disabled")
	}

	pipeline := services.NewTrainingPipeline(pipelineCfg, docs, objects, runs, kserveClient)
	res, err := pipeline.RunPipeline(ctx)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"run_id":   res.Run.ID,
		"accepted": res.Evaluation.IsModelAccepted,
		"pushed":   res.Pusher.Pushed,
		"model":    res.Pusher.S3ModelPath,
	}).Info("training pipeline finished")
	return nil
}

func newPool(ctx context.Context, db config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(db.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(db.MaxOpenConns)
	poolCfg.MinConns = int32(db.MaxIdleConns)
	poolCfg.MaxConnLifetime = db.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
