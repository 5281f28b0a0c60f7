package event

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/config"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

const ConsumerGroup = "portfolio-processor-group"

type Handler func(ctx context.Context, evt service.PortfolioEvent) error

type Consumer struct {
	reader *kafka.Reader
	logger logger.Logger
}

func NewConsumer(cfg config.Config, log logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    TopicPortfolioEvents,
		GroupID:  ConsumerGroup,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, logger: log}
}

// Run blocks until ctx is cancelled. Undecodable messages are committed and
// skipped.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	c.logger.Info("Worker listening", zap.String("topic", TopicPortfolioEvents))
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			c.logger.Error("Failed to read message from Kafka", err)
			continue
		}

		log := c.logger.With(zap.String("key", string(msg.Key)), zap.Int64("offset", msg.Offset))

		var evt service.PortfolioEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			log.Error("Failed to unmarshal event, skipping", err)
			c.commit(ctx, msg)
			continue
		}

		log.Info("Processing event", zap.String("event_type", string(evt.EventType)))
		if err := handle(ctx, evt); err != nil {
			log.Error("Failed to process event", err, zap.String("event_type", string(evt.EventType)))
			continue
		}
		c.commit(ctx, msg)
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message", err)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
