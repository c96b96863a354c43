package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"ticketplan/internal/notifications"
	"ticketplan/internal/shared/config"
	"ticketplan/pkg/logger"

	"github.com/joho/godotenv"
)

// purchasewatch tails the purchase event topic and logs every batch summary
// and issued ticket.
func main() {
	group := flag.String("group", "ticketplan-purchase-watchers", "consumer group id")
	workers := flag.Int("workers", 1, "number of consumer workers")
	oldest := flag.Bool("from-beginning", false, "start from the oldest retained offset")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()

	appLogger := logger.NewWithWriter(os.Stdout, cfg.LogLevel)
	logger.SetDefault(appLogger)

	consumerCfg := notifications.DefaultConsumerConfig()
	consumerCfg.Brokers = cfg.Kafka.Brokers
	consumerCfg.Topics = []string{cfg.Kafka.Topic}
	consumerCfg.GroupID = *group
	consumerCfg.OffsetOldest = *oldest

	var batches, tickets atomic.Int64
	consumer, err := notifications.NewKafkaPurchaseConsumer(consumerCfg, func(ctx context.Context, e *notifications.PurchaseEvent) error {
		switch e.Type {
		case notifications.EventTypePurchaseCompleted:
			batches.Add(1)
			appLogger.InfoContext(ctx, "Purchase batch settled",
				slog.String("plan_id", e.PlanID),
				slog.String("map_id", e.MapID),
				slog.Int("requested", e.Requested),
				slog.Int("succeeded", e.Succeeded),
				slog.Any("failures", e.Failures),
			)
		case notifications.EventTypeTicketIssued:
			tickets.Add(1)
			attrs := []any{slog.String("map_id", e.MapID), slog.String("ticket_id", e.TicketID)}
			if e.X != nil && e.Y != nil {
				attrs = append(attrs, slog.Int("x", *e.X), slog.Int("y", *e.Y))
			}
			appLogger.InfoContext(ctx, "Ticket issued", attrs...)
		default:
			appLogger.WarnContext(ctx, "Unknown purchase event", slog.String("type", string(e.Type)))
		}
		return nil
	})
	if err != nil {
		appLogger.Error("Failed to start purchase consumer", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.StartConsumers(ctx, *workers); err != nil {
		appLogger.Error("Failed to start consumers", slog.Any("error", err))
		os.Exit(1)
	}

	<-ctx.Done()
	if err := consumer.Stop(); err != nil {
		appLogger.Error("Error stopping consumer", slog.Any("error", err))
	}
	appLogger.Info("Purchase watcher stopped",
		slog.Int64("batches", batches.Load()),
		slog.Int64("tickets", tickets.Load()),
	)
}
