package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"quotation-crm/internal/config"
	"quotation-crm/internal/db"
	"quotation-crm/internal/idgen"
	"quotation-crm/internal/importer"
	"quotation-crm/internal/logger"
	customerrepo "quotation-crm/internal/repository/customer"
	customersvc "quotation-crm/internal/service/customer"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a customer CSV export (header row with field names)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Service: "importer", Level: cfg.LogLevel, Format: cfg.LogFormat})
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

	ids, err := idgen.New(cfg.IDNode)
	if err != nil {
		log.Fatal("init id generator", zap.Error(err))
	}

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("open file", zap.String("file", filePath), zap.Error(err))
	}
	defer f.Close()

	gateway := db.NewPoolGateway(pool, log.Named("db"), db.WithAcquireTimeout(cfg.DB.AcquireTimeout))
	svc := customersvc.New(customerrepo.NewPostgres(gateway, cfg.DB.Schema, log), log)
	imp := importer.NewCSVImporter(f, svc, ids, log)

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		log.Fatal("import failed", zap.Int("imported", res.Imported), zap.Error(err))
	}

	fmt.Printf("Imported %d customers (%d already present) in %s\n", res.Imported, res.Skipped, time.Since(start).Truncate(time.Millisecond))
}
