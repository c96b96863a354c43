package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ticketplan/pkg/logger"

	"github.com/IBM/sarama"
)

// PurchaseEventHandler processes one decoded purchase event. A returned
// error leaves the message unmarked so it is redelivered.
type PurchaseEventHandler func(ctx context.Context, event *PurchaseEvent) error

type PurchaseEventConsumer interface {
	StartConsumers(ctx context.Context, numWorkers int) error
	Stop() error
	HealthCheck(ctx context.Context) error
}

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeoutMs     int
	HeartbeatMs          int
	RetryBackoffMs       int
	MaxProcessingTime    time.Duration
	AutoCommit           bool
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "ticketplan-purchase-watchers",
		Topics:               []string{"ticketplan.purchases"},
		SessionTimeoutMs:     30000,
		HeartbeatMs:          3000,
		RetryBackoffMs:       100,
		MaxProcessingTime:    time.Minute,
		AutoCommit:           true,
		OffsetOldest:         false,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// SaramaConfig maps the consumer settings onto a sarama config
func (c *ConsumerConfig) SaramaConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(c.SessionTimeoutMs) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(c.HeartbeatMs) * time.Millisecond
	saramaConfig.Consumer.Retry.Backoff = time.Duration(c.RetryBackoffMs) * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = c.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true

	if c.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	if c.AutoCommit {
		saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
		saramaConfig.Consumer.Offsets.AutoCommit.Interval = 1 * time.Second
	}
	return saramaConfig
}

type KafkaPurchaseConsumer struct {
	consumerGroup sarama.ConsumerGroup
	config        *ConsumerConfig
	handler       PurchaseEventHandler
	topics        []string
	log           *logger.Logger
	ctx           context.Context
	cancel        context.CancelFunc
}

func NewKafkaPurchaseConsumer(config *ConsumerConfig, handler PurchaseEventHandler) (*KafkaPurchaseConsumer, error) {
	if handler == nil {
		return nil, fmt.Errorf("purchase event handler is required")
	}

	consumerGroup, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, config.SaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &KafkaPurchaseConsumer{
		consumerGroup: consumerGroup,
		config:        config,
		handler:       handler,
		topics:        config.Topics,
		log:           logger.GetDefault(),
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func (kc *KafkaPurchaseConsumer) StartConsumers(ctx context.Context, numWorkers int) error {
	kc.log.Info("📥 Starting purchase event consumers",
		slog.Int("workers", numWorkers),
		slog.Any("topics", kc.topics),
	)

	// Start error handler goroutine
	go kc.handleErrors()

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			kc.runWorker(ctx, workerID)
		}(i)
	}

	return nil
}

func (kc *KafkaPurchaseConsumer) runWorker(ctx context.Context, workerID int) {
	handler := newConsumerGroupHandler(kc.handler, workerID, kc.config.MaxRetries, kc.config.RetryBackoffDuration)

	for {
		select {
		case <-ctx.Done():
			kc.log.Info("📥 Worker shutting down", slog.Int("worker", workerID))
			return
		case <-kc.ctx.Done():
			return
		default:
			if err := kc.consumerGroup.Consume(ctx, kc.topics, handler); err != nil {
				kc.log.Error("Error consuming messages", slog.Int("worker", workerID), slog.Any("error", err))
				time.Sleep(time.Second)
			}
		}
	}
}

func (kc *KafkaPurchaseConsumer) handleErrors() {
	for err := range kc.consumerGroup.Errors() {
		kc.log.Error("Consumer group error", slog.Any("error", err))
	}
}

func (kc *KafkaPurchaseConsumer) Stop() error {
	kc.log.Info("📥 Stopping purchase event consumer...")
	kc.cancel()

	if err := kc.consumerGroup.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

func (kc *KafkaPurchaseConsumer) HealthCheck(ctx context.Context) error {
	select {
	case <-kc.ctx.Done():
		return fmt.Errorf("consumer context is cancelled")
	default:
		return nil
	}
}

// ConsumerGroupHandler decodes purchase events and hands them to the handler
// with retries.
type ConsumerGroupHandler struct {
	handler    PurchaseEventHandler
	workerID   int
	maxRetries int
	backoff    time.Duration
	log        *logger.Logger
}

func newConsumerGroupHandler(handler PurchaseEventHandler, workerID, maxRetries int, backoff time.Duration) *ConsumerGroupHandler {
	return &ConsumerGroupHandler{
		handler:    handler,
		workerID:   workerID,
		maxRetries: maxRetries,
		backoff:    backoff,
		log:        logger.GetDefault(),
	}
}

func (h *ConsumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.log.Debug("Consumer group session started", slog.Int("worker", h.workerID))
	return nil
}

func (h *ConsumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.log.Debug("Consumer group session ended", slog.Int("worker", h.workerID))
	return nil
}

func (h *ConsumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}

			if err := h.processMessage(session.Context(), message); err != nil {
				h.log.Error("Error processing purchase event", slog.Int("worker", h.workerID), slog.Any("error", err))
			} else {
				session.MarkMessage(message, "")
			}

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *ConsumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	h.log.Debug("Processing purchase event",
		slog.Int("worker", h.workerID),
		slog.String("topic", message.Topic),
		slog.Int("partition", int(message.Partition)),
		slog.Int64("offset", message.Offset),
	)

	var event PurchaseEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		// A poison message would block the partition forever.
		h.log.Warn("Skipping undecodable purchase event", slog.Any("error", err))
		return nil
	}

	return h.executeWithRetry(ctx, &event)
}

func (h *ConsumerGroupHandler) executeWithRetry(ctx context.Context, event *PurchaseEvent) error {
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		err := h.handler(ctx, event)
		if err == nil {
			if attempt > 0 {
				h.log.Info("Processed purchase event after retries", slog.Int("retries", attempt))
			}
			return nil
		}

		if attempt == h.maxRetries {
			return fmt.Errorf("failed to process event %s after %d attempts: %w", event.ID, attempt+1, err)
		}

		// Exponential backoff
		delay := h.backoff * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}
