package messagebroker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer publishes messages to Kafka, using the subject as the topic.
type KafkaProducer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewKafkaProducer creates a producer for brokers. The writer connects lazily on first publish.
func NewKafkaProducer(brokers []string, logger *slog.Logger) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		logger: logger.With("component", "kafka_producer"),
	}
}

// Publish writes data to the topic named by subject.
func (p *KafkaProducer) Publish(ctx context.Context, subject string, data []byte) error {
	msg := kafka.Message{
		Topic: subject,
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to kafka topic %s: %w", subject, err)
	}
	p.logger.DebugContext(ctx, "Sent message to Kafka", "topic", subject, "bytes", len(data))
	return nil
}

// Close flushes and closes the writer.
func (p *KafkaProducer) Close() {
	if err := p.writer.Close(); err != nil {
		p.logger.Warn("Kafka writer close failed", "error", err)
	}
}
