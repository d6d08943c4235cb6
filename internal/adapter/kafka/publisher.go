package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/hazard-map/internal/config"
	"github.com/couchcryptid/hazard-map/internal/domain"
)

// Publisher produces confirmed hazard reports to a Kafka topic.
// It implements domain.ReportPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a producer for the configured reports topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaReportsTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishReport writes one hazard, keyed by its ID so reports for the same
// hazard land on one partition.
func (p *Publisher) PublishReport(ctx context.Context, h domain.Hazard) error {
	msg, err := serializeToMessage(h)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish hazard %s: %w", h.ID, err)
	}
	p.logger.Debug("hazard report published", "id", h.ID, "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Hazard into a Kafka message.
func serializeToMessage(h domain.Hazard) (kafkago.Message, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize hazard: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(h.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "hazard_type", Value: []byte(h.Type.String())},
			{Key: "created_at", Value: []byte(h.CreatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
