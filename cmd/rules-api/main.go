package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benefitsys/rules-api/pkg/common/config"
	"github.com/benefitsys/rules-api/pkg/common/database"
	"github.com/benefitsys/rules-api/pkg/common/kafka"
	"github.com/benefitsys/rules-api/pkg/common/logger"
	"github.com/benefitsys/rules-api/pkg/ingestion"
	"github.com/benefitsys/rules-api/pkg/rules"
	"github.com/benefitsys/rules-api/pkg/store"
	"github.com/benefitsys/rules-api/pkg/submission"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init("rules-api")
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.ClosePostgres()

	stores := store.NewPostgres(db, cfg.StoreTimeout)
	if err := stores.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate rule tables")
	}

	catalog, err := rules.LoadCatalog(cfg.RuleCatalogPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to load rule catalog")
	}

	producer := kafka.NewProducer(cfg.RuleRequestTopic)
	defer producer.Close()

	svc := submission.NewService(stores, producer, "decision")
	handler := submission.NewHTTPHandler(svc, stores, cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.Use(submission.Logging, submission.Recovery)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(submission.APIKey(cfg.APIKey))
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Rules API started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	consumer := kafka.NewConsumer(cfg.RuleResultTopic, cfg.KafkaGroupID)
	resultHandler := ingestion.NewHandler(stores, stores, catalog)
	go func() {
		if err := consumer.Consume(ctx, resultHandler.Handle); err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Error("result consumer stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Rules API...")
	cancel()

	if err := consumer.Close(); err != nil {
		logger.Log.WithError(err).Error("failed to close result consumer")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Rules API stopped")
}
