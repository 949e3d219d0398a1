package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"quotation-crm/internal/config"
	"quotation-crm/internal/db"
	"quotation-crm/internal/logger"
	"quotation-crm/internal/migrate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Service: "migrate", Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		log.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, cfg.DB.Schema); err != nil {
		log.Fatal("apply migrations", zap.String("schema", cfg.DB.Schema), zap.Error(err))
	}

	log.Info("migrations applied", zap.String("schema", cfg.DB.Schema))
}
