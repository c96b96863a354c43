package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ticketplan/pkg/logger"

	"github.com/IBM/sarama"
)

// EventPublisher defines the contract for publishing purchase events
type EventPublisher interface {
	PublishPurchaseEvent(ctx context.Context, event *PurchaseEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka purchase producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	ClientID         string
	RetryMax         int
	TimeoutMs        int
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

// DefaultKafkaProducerConfig returns a default producer configuration
func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "ticketplan.purchases",
		ClientID:         "ticketplan",
		RetryMax:         3,
		TimeoutMs:        10000,             // 10 seconds
		RequiredAcks:     sarama.WaitForAll, // Wait for all in-sync replicas
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000, // 1MB
	}
}

// SaramaConfig builds the sarama producer configuration
func (c *KafkaProducerConfig) SaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = c.ClientID

	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = c.RequiredAcks
	saramaConfig.Producer.Compression = c.CompressionType
	saramaConfig.Producer.Retry.Max = c.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(c.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = c.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = c.MaxMessageBytes

	// Idempotent producers require a single in-flight request and Kafka >= 0.11
	if c.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
		saramaConfig.Version = sarama.V2_1_0_0
	}

	// Hash partitioner keeps one map's events ordered
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	return saramaConfig
}

// KafkaPurchaseProducer publishes purchase events to Kafka
type KafkaPurchaseProducer struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaPurchaseProducer connects a sync producer to the configured brokers
func NewKafkaPurchaseProducer(config *KafkaProducerConfig) (*KafkaPurchaseProducer, error) {
	producer, err := sarama.NewSyncProducer(config.Brokers, config.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.GetDefault().Info("📤 Kafka purchase producer created", slog.Any("brokers", config.Brokers))
	return NewKafkaPurchaseProducerWithClient(producer, config.Topic), nil
}

// NewKafkaPurchaseProducerWithClient wraps an existing sync producer
func NewKafkaPurchaseProducerWithClient(producer sarama.SyncProducer, topic string) *KafkaPurchaseProducer {
	return &KafkaPurchaseProducer{
		producer: producer,
		topic:    topic,
		log:      logger.GetDefault(),
	}
}

// PublishPurchaseEvent publishes a single event
func (p *KafkaPurchaseProducer) PublishPurchaseEvent(ctx context.Context, event *PurchaseEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal purchase event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.GetPartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   createHeaders(event),
		Timestamp: event.CreatedAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send purchase event to Kafka: %w", err)
	}

	p.log.DebugContext(ctx, "📤 Purchase event published",
		slog.String("topic", p.topic),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
		slog.String("type", string(event.Type)),
		slog.String("map_id", event.MapID),
	)
	return nil
}

// createHeaders creates Kafka headers for purchase events
func createHeaders(event *PurchaseEvent) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("map_id"), Value: []byte(event.MapID)},
		{Key: []byte("producer"), Value: []byte("ticketplan")},
		{Key: []byte("created_at"), Value: []byte(event.CreatedAt.Format(time.RFC3339))},
	}

	if event.PlanID != "" {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("plan_id"),
			Value: []byte(event.PlanID),
		})
	}

	if event.TicketID != "" {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("ticket_id"),
			Value: []byte(event.TicketID),
		})
	}

	return headers
}

// Close closes the Kafka producer
func (p *KafkaPurchaseProducer) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
		p.log.Info("📤 Kafka purchase producer closed")
	}
	return nil
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishPurchaseEvent(context.Context, *PurchaseEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
