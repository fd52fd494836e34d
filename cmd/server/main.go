package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/obmertz/stocksync/internal/config"
	"github.com/obmertz/stocksync/internal/repository/mongodb"
	"github.com/obmertz/stocksync/internal/repository/sheets"
	"github.com/obmertz/stocksync/internal/scheduler"
	"github.com/obmertz/stocksync/internal/server/handlers"
	"github.com/obmertz/stocksync/internal/server/router"
	"github.com/obmertz/stocksync/internal/service/inventory"
	webhooksvc "github.com/obmertz/stocksync/internal/service/webhook"
	"github.com/obmertz/stocksync/pkg/clients/shopify"
	"github.com/obmertz/stocksync/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	// Audit history is optional; the service runs without it.
	var auditLog inventory.AuditSink
	if cfg.Sheets.Enabled() {
		sheetLog, err := sheets.NewSheetAuditLog(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets audit log", zap.Error(err))
		}
		auditLog = sheetLog
		baseLogger.Info("sheets audit log enabled")
	} else {
		baseLogger.Warn("sheets audit log not configured, sync history will not be persisted")
	}

	// A fresh client per sync attempt so rotated tokens are always picked up.
	connect := func(store config.StoreConfig) (shopify.Client, error) {
		return shopify.Connect(store, cfg.Sync)
	}

	engine := inventory.NewEngine(connect, baseLogger.Named("svc.sync"))
	orchestrator := inventory.NewOrchestrator(engine, cfg.Stores, cfg.Sync.Concurrency, baseLogger.Named("svc.sync"))
	runner := inventory.NewRunner(mongoRepo, orchestrator, auditLog, baseLogger.Named("svc.sync"))
	orderSvc := webhooksvc.NewService(cfg.Stores, mongoRepo, orchestrator, baseLogger.Named("svc.webhook"))

	webhookHandler := handlers.NewWebhookHandler(orderSvc, baseLogger.Named("handlers.webhook"))
	syncHandler := handlers.NewSyncHandler(orchestrator, runner, mongoRepo, cfg.Sync.CronSecret, baseLogger.Named("handlers.sync"))
	storeHandler := handlers.NewStoreHandler(cfg.Stores, connect, baseLogger.Named("handlers.stores"))
	engineRouter := router.New(webhookHandler, syncHandler, storeHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Sync, runner, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engineRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
