package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-api/internal/application/service"
	"github.com/khoahotran/portfolio-api/internal/config"
	"github.com/khoahotran/portfolio-api/pkg/logger"
)

const TopicPortfolioEvents = "portfolio.events"

type KafkaProducerClient struct {
	PortfolioEventsWriter *kafka.Writer
	logger                logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicPortfolioEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}

	log.Info("Initialize Kafka producer successfully", zap.Strings("brokers", brokers), zap.String("topic", TopicPortfolioEvents))
	return &KafkaProducerClient{PortfolioEventsWriter: writer, logger: log}, nil
}

// PublishPortfolioEvent keys messages by account so one account's events stay ordered.
func (c *KafkaProducerClient) PublishPortfolioEvent(ctx context.Context, evt service.PortfolioEvent) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal portfolio event: %w", err)
	}

	err = c.PortfolioEventsWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.AccountID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write portfolio event: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.PortfolioEventsWriter != nil {
		if err := c.PortfolioEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka producer", err)
			return
		}
	}
	c.logger.Info("Closed Kafka producer")
}

type noopPublisher struct {
	logger logger.Logger
}

// NewNoopPublisher drops every event; used when no brokers are configured.
func NewNoopPublisher(log logger.Logger) service.EventPublisher {
	return &noopPublisher{logger: log}
}

func (p *noopPublisher) PublishPortfolioEvent(_ context.Context, evt service.PortfolioEvent) error {
	p.logger.Debug("Event dropped, no broker configured", zap.String("event_type", string(evt.EventType)))
	return nil
}
