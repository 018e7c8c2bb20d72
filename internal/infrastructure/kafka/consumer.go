package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler processes one message value.
type Handler interface {
	HandleMessage(ctx context.Context, value []byte) error
}

// Consumer reads a topic as part of a consumer group and hands each message
// to a Handler. Offsets are committed after the handler returns, whatever the
// outcome; a message that fails is logged and not redelivered.
type Consumer struct {
	reader  *kafka.Reader
	handler Handler
}

func NewConsumer(brokers []string, topic, groupID string, handler Handler) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			GroupID:  groupID,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  500 * time.Millisecond,
		}),
		handler: handler,
	}
}

// Listen runs until ctx is cancelled.
func (c *Consumer) Listen(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			slog.Error("kafka fetch failed", "topic", c.reader.Config().Topic, "err", err)
			return err
		}
		if err := c.handler.HandleMessage(ctx, msg.Value); err != nil {
			slog.Error("kafka message handling failed",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			slog.Warn("kafka commit failed", "offset", msg.Offset, "err", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
