package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/benefitsys/rules-api/pkg/common/config"
	"github.com/benefitsys/rules-api/pkg/common/database"
	"github.com/benefitsys/rules-api/pkg/common/kafka"
	"github.com/benefitsys/rules-api/pkg/common/logger"
	"github.com/benefitsys/rules-api/pkg/store"
	"github.com/benefitsys/rules-api/pkg/usage"
	"golang.org/x/oauth2/clientcredentials"
)

func main() {
	logger.Init("usage-consumer")
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer database.ClosePostgres()

	stores := store.NewPostgres(db, cfg.StoreTimeout)
	if err := stores.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate tables")
	}

	lookup := buildLookup(cfg)
	handler := usage.NewHandler(stores, lookup)

	consumer := kafka.NewConsumer(cfg.UsedDeterminationTopic, cfg.KafkaGroupID+"-usage")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Log.WithField("topic", cfg.UsedDeterminationTopic).Info("Usage consumer started")
		if err := consumer.Consume(ctx, handler.Handle); err != nil && ctx.Err() == nil {
			logger.Log.WithError(err).Error("usage consumer stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down usage consumer...")
	cancel()
	<-done

	if err := consumer.Close(); err != nil {
		logger.Log.WithError(err).Error("failed to close consumer")
	}
	database.CloseRedis()

	logger.Log.Info("Usage consumer stopped")
}

// buildLookup assembles the processing-id chain: Redis cache in front of the
// registry lookup, pass-through as the documented last resort.
func buildLookup(cfg *config.Config) usage.ProcessingIDLookup {
	chain := usage.ChainLookup{}

	if cfg.LookupBaseURL != "" {
		creds := clientcredentials.Config{
			ClientID:     cfg.LookupClientID,
			ClientSecret: cfg.LookupClientSecret,
			TokenURL:     cfg.LookupTokenURL,
		}
		httpLookup := usage.NewHTTPLookup(cfg.LookupBaseURL, creds, cfg.LookupTimeout)
		chain = append(chain, usage.NewCachedLookup(database.GetRedis(), httpLookup, cfg.LookupCacheTTL))
	}

	chain = append(chain, usage.PassthroughLookup{})
	return chain
}
