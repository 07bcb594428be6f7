// Command seeder loads a shipping CSV file into the MongoDB collection the
// training pipeline reads from.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"shipping-price-pipeline/internal/adapters/secondary/mongodb"
	"shipping-price-pipeline/internal/config"
	"shipping-price-pipeline/internal/dataset"

	log "github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <file.csv>", os.Args[0])
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1]); err != nil {
		stop()
		log.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, path string) error {
	frame, err := dataset.ReadCSVFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	docs, disconnect, err := mongodb.NewDocumentStore(ctx, &cfg.Mongo)
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		if err := disconnect(context.WithoutCancel(ctx)); err != nil {
			log.Warnf("disconnect mongodb: %v", err)
		}
	}()

	n, err := docs.InsertFrameAsRecords(ctx, frame, cfg.Mongo.Database, cfg.Mongo.Collection)
	if err != nil {
		return fmt.Errorf("insert records: %w", err)
	}

	log.WithFields(log.Fields{
		"file":       path,
		"database":   cfg.Mongo.Database,
		"collection": cfg.Mongo.Collection,
		"inserted":   n,
	}).Info("seeded collection")
	return nil
}
