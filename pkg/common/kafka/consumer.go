package kafka

import (
	"context"
	"errors"

	"github.com/benefitsys/rules-api/pkg/common/config"
	"github.com/benefitsys/rules-api/pkg/common/logger"
	"github.com/segmentio/kafka-go"
)

type Consumer struct {
	reader *kafka.Reader
}

// MessageHandler processes one raw message. A returned error means the
// message is logged and skipped; redelivery is the transport's business,
// never an in-process retry loop.
type MessageHandler func(ctx context.Context, key, value []byte) error

func NewConsumer(topic string, groupID string) *Consumer {
	cfg := config.Load()
	if groupID == "" {
		groupID = cfg.KafkaGroupID
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{reader: reader}
}

// Consume pulls messages until ctx is cancelled. The in-flight handler call
// finishes before the loop observes cancellation, so shutdown never abandons
// a half-processed message.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		message, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			logger.Log.WithError(err).Error("Failed to fetch message")
			continue
		}

		if err := handler(ctx, message.Key, message.Value); err != nil {
			logger.Log.WithError(err).WithFields(map[string]interface{}{
				"topic":     message.Topic,
				"partition": message.Partition,
				"offset":    message.Offset,
			}).Error("Failed to process message, skipping")
		}

		if err := c.reader.CommitMessages(ctx, message); err != nil {
			logger.Log.WithError(err).Error("Failed to commit message")
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
