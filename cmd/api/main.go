package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"quotation-crm/internal/config"
	"quotation-crm/internal/db"
	"quotation-crm/internal/httpserver"
	"quotation-crm/internal/idgen"
	"quotation-crm/internal/logger"
	"quotation-crm/internal/metrics"
	analyticsrepo "quotation-crm/internal/repository/analytics"
	customerrepo "quotation-crm/internal/repository/customer"
	analyticssvc "quotation-crm/internal/service/analytics"
	customersvc "quotation-crm/internal/service/customer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Service: cfg.ServiceName, Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		log.Fatal("connect to db", zap.String("host", cfg.DB.Host), zap.String("database", cfg.DB.Name), zap.Error(err))
	}
	defer dbpool.Close()

	gateway := db.NewPoolGateway(dbpool, log.Named("db"),
		db.WithAcquireTimeout(cfg.DB.AcquireTimeout),
		db.WithRetries(cfg.DB.ConnectRetries),
	)

	ids, err := idgen.New(cfg.IDNode)
	if err != nil {
		log.Fatal("init id generator", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, cfg.ServiceName)

	customerRepo := customerrepo.NewPostgres(gateway, cfg.DB.Schema, log)
	customerService := customersvc.New(customerRepo, log,
		customersvc.WithObserver(m),
		customersvc.WithMaxLimit(cfg.ListLimitMax),
	)
	analyticsService := analyticssvc.New(analyticsrepo.NewPostgres(gateway, cfg.DB.Schema, log), log)

	srv := httpserver.New(cfg.HTTPAddr, log, httpserver.Deps{
		Customers:   customerService,
		Analytics:   analyticsService,
		IDs:         ids,
		DB:          gateway,
		Metrics:     m,
		Gatherer:    reg,
		CORSOrigins: cfg.CORSOrigins,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	} else {
		log.Info("server stopped")
	}
}
