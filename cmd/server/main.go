package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"courier/internal/config"
	"courier/internal/events"
	"courier/internal/infrastructure/logger"
	"courier/internal/infrastructure/mysql"
	"courier/internal/order"
	"courier/internal/partner"
	"courier/internal/pricing"
	"courier/internal/server"
	"courier/internal/transaction"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, "courier")
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	if err := mysql.Migrate(startupCtx, db); err != nil {
		zapLogger.Fatal("migrating schema", zap.Error(err))
	}

	table := pricing.DefaultTable()
	if cfg.Pricing.TablePath != "" {
		table, err = pricing.LoadTable(cfg.Pricing.TablePath)
		if err != nil {
			zapLogger.Fatal("loading fee table", zap.Error(err), zap.String("path", cfg.Pricing.TablePath))
		}
	}
	fees := pricing.NewCalculator(table)

	publisher, err := events.New(startupCtx, cfg.Events, zapLogger)
	if err != nil {
		zapLogger.Fatal("creating event publisher", zap.Error(err), zap.String("driver", cfg.Events.Driver))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			zapLogger.Warn("closing event publisher", zap.Error(err))
		}
	}()
	emitter := events.NewEmitter(publisher, zapLogger)

	partnerCtrl, partnerSvc := partner.NewModule(db, cfg, fees, zapLogger)
	orderCtrl := order.NewModule(db, cfg, fees, partnerSvc, emitter, zapLogger)
	transactionCtrl := transaction.NewModule(db, cfg, emitter, zapLogger)

	router := server.NewRouter(orderCtrl, partnerCtrl, transactionCtrl, cfg.Server.RequestTimeout, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
