package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"quotation-crm/internal/config"
	"quotation-crm/internal/db"
	"quotation-crm/internal/logger"
	customerrepo "quotation-crm/internal/repository/customer"
	"quotation-crm/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Service: "seed", Level: cfg.LogLevel, Format: cfg.LogFormat})
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

	gateway := db.NewPoolGateway(pool, log.Named("db"), db.WithAcquireTimeout(cfg.DB.AcquireTimeout))
	inserted, err := seed.Apply(ctx, customerrepo.NewPostgres(gateway, cfg.DB.Schema, log))
	if err != nil {
		log.Fatal("seed apply", zap.Error(err))
	}

	log.Info("seed applied", zap.Int("inserted", inserted))
}
