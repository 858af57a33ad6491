// Package producers publishes finished scenario runs to Kafka.
package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/parabank-conformance/internal/config"
	"github.com/parabank-conformance/internal/domain/report"
	"github.com/segmentio/kafka-go"
)

// RunPublisher writes run events synchronously, keyed by resource so the
// runs of one account stay ordered within a partition
type RunPublisher struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewRunPublisher ensures the results topic exists and opens a writer for it
func NewRunPublisher(logger *slog.Logger, cfg *config.KafkaConfig) (*RunPublisher, error) {
	if cfg.ResultsTopic == "" {
		return nil, fmt.Errorf("kafka results topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for run publisher: %w", err)
	}
	defer conn.Close()

	topic := kafka.TopicConfig{
		Topic:             cfg.ResultsTopic,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
	}
	if err := ensureTopic(conn, topic, topicReadBackoff, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure results topic %s exists: %w", cfg.ResultsTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.ResultsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
	}

	return newRunPublisher(logger, writer, cfg.ResultsTopic), nil
}

func newRunPublisher(logger *slog.Logger, writer KafkaWriter, topic string) *RunPublisher {
	return &RunPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// PublishRun writes one run event
func (p *RunPublisher) PublishRun(ctx context.Context, run *report.Run) error {
	value, err := json.Marshal(report.NewRunEvent(run))
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(run.Resource),
		Value: value,
		Headers: []kafka.Header{
			{Key: "scenario", Value: []byte(run.Scenario)},
			{Key: "status", Value: []byte(run.Status)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish run event",
			"topic", p.topic,
			"run_id", run.ID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to publish run event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published run event",
		"topic", p.topic,
		"run_id", run.ID.String(),
		"status", run.Status,
	)
	return nil
}

func (p *RunPublisher) Close() error {
	p.logger.Info("Closing run publisher", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
