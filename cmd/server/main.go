package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zaki007-butt/Rentify-backend/configs"
	"github.com/Zaki007-butt/Rentify-backend/internal/events"
	eventskafka "github.com/Zaki007-butt/Rentify-backend/internal/events/kafka"
	"github.com/Zaki007-butt/Rentify-backend/internal/handlers"
	"github.com/Zaki007-butt/Rentify-backend/internal/ledger"
	"github.com/Zaki007-butt/Rentify-backend/internal/logger"
	"github.com/Zaki007-butt/Rentify-backend/internal/routes"
	"github.com/Zaki007-butt/Rentify-backend/internal/seed"
	"github.com/Zaki007-butt/Rentify-backend/internal/store"
	"go.uber.org/zap"
)

func main() {
	logger.Init()
	defer logger.Log.Sync()

	configs.LoadConfig()
	store.NewDB()
	store.DBMigrate()
	seed.Run()

	var publisher events.Publisher = events.Nop{}
	if brokers := configs.AppConfig.Kafka.Brokers; len(brokers) > 0 {
		kp := eventskafka.NewPublisher(brokers)
		defer kp.Close()
		publisher = kp
		logger.Log.Info("kafka publisher enabled", zap.Strings("brokers", brokers))
	}

	handlers.LedgerService = ledger.NewService(store.DB, publisher)

	router := routes.NewRoutes()

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	logger.Log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}

	sqlDB, err := store.DB.DB()
	if err != nil {
		logger.Log.Error("db close skipped, reason:", zap.Error(err))
	} else {
		sqlDB.Close()
		logger.Log.Info("db closed")
	}

	logger.Log.Info("server stopped")
}
