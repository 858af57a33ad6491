// Package consumers reads run events back from Kafka.
package consumers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/parabank-conformance/internal/config"
	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// MessageReader wraps the kafka.Reader methods the consumer needs
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ MessageReader = (*kafka.Reader)(nil)

// KafkaConsumer fetches messages from one topic and commits each after the handler succeeds.
// Messages are handled one at a time, in fetch order.
type KafkaConsumer struct {
	reader        MessageReader
	topic         string
	groupID       string
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	logger        *slog.Logger
	done          chan struct{}
}

// NewKafkaConsumer creates a consumer on the results topic in the configured group
func NewKafkaConsumer(logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{cfg.Brokers},
		Topic:       cfg.ResultsTopic,
		GroupID:     cfg.ConsumerGroup,
		MinBytes:    cfg.MinBytes,
		MaxBytes:    cfg.MaxBytes,
		MaxWait:     cfg.MaxWait,
		StartOffset: kafka.FirstOffset,
	})
	return newKafkaConsumer(logger, reader, cfg.ResultsTopic, cfg.ConsumerGroup)
}

func newKafkaConsumer(logger *slog.Logger, reader MessageReader, topic, groupID string) *KafkaConsumer {
	return &KafkaConsumer{
		reader:        reader,
		topic:         topic,
		groupID:       groupID,
		retryDelay:    time.Second,
		maxRetryDelay: 30 * time.Second,
		logger:        logger,
		done:          make(chan struct{}),
	}
}

// Subscribe starts consuming in the background until ctx is cancelled.
// A message whose handler fails is retried with backoff and is committed only
// once it succeeds; later messages wait behind it.
func (c *KafkaConsumer) Subscribe(ctx context.Context, handler MessageHandler) {
	c.logger.Info("Subscribed to Kafka topic", "topic", c.topic, "group_id", c.groupID)

	go func() {
		defer close(c.done)
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
					return
				}
				c.logger.Error("Failed to fetch message from Kafka", "topic", c.topic, "group_id", c.groupID, "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(c.retryDelay):
				}
				continue
			}

			c.logger.Debug("Received message from Kafka",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"key", string(msg.Key),
			)

			// Never fetch past a failed message: committing a later offset would skip it
			if !c.handleUntilDone(ctx, msg, handler) {
				c.logger.Info("Context canceled, stopping consumer", "topic", c.topic, "group_id", c.groupID)
				return
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("Failed to commit message after successful processing",
					"topic", msg.Topic,
					"offset", msg.Offset,
					"error", err,
				)
			}
		}
	}()
}

// handleUntilDone calls handler for msg until it succeeds, backing off between
// attempts. It returns false when ctx ends first.
func (c *KafkaConsumer) handleUntilDone(ctx context.Context, msg kafka.Message, handler MessageHandler) bool {
	delay := c.retryDelay
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			return true
		}
		c.logger.Error("Failed to process message, retrying without committing",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"key", string(msg.Key),
			"attempt", attempt,
			"retry_in", delay,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		delay *= 2
		if c.maxRetryDelay > 0 && delay > c.maxRetryDelay {
			delay = c.maxRetryDelay
		}
	}
}

// Done is closed once the consume loop has exited
func (c *KafkaConsumer) Done() <-chan struct{} {
	return c.done
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
