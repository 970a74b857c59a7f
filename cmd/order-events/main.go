package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"

	"github.com/elfarodelsaber/storefront/internal/messaging/kafka"
)

const defaultGroupID = "storefront-order-events"

// orderEventEnvelope mirrors what the outbox publisher puts on the topic.
type orderEventEnvelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   string          `json:"published_at"`
}

// handleMessage decodes and logs one order event. Undecodable messages are
// returned as errors so the consumer retries and finally parks them on the
// DLQ.
func handleMessage(logger *log.Entry) kafka.MessageHandler {
	return func(_ context.Context, message *sarama.ConsumerMessage) error {
		var envelope orderEventEnvelope
		if err := json.Unmarshal(message.Value, &envelope); err != nil {
			return fmt.Errorf("decode event envelope: %w", err)
		}
		if envelope.EventType == "" {
			return fmt.Errorf("event %q carries no event type", envelope.ID)
		}

		logger.WithFields(log.Fields{
			"event_id":   envelope.ID,
			"event_type": envelope.EventType,
			"order_id":   envelope.AggregateID,
			"topic":      message.Topic,
			"partition":  message.Partition,
			"offset":     message.Offset,
		}).Info("order event received")
		return nil
	}
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logger := log.WithField("component", "order-events")

	var groupID string
	flag.StringVar(&groupID, "group", defaultGroupID, "consumer group ID")
	flag.Parse()

	brokers := strings.TrimSpace(os.Getenv("STOREFRONT_KAFKA_BROKERS"))
	if brokers == "" {
		logger.Fatal("STOREFRONT_KAFKA_BROKERS is required")
	}
	brokerList := strings.Split(brokers, ",")

	dlqProducer, err := kafka.NewProducer(brokerList)
	if err != nil {
		logger.WithError(err).Fatal("failed to create dlq producer")
	}
	defer func() {
		if err := dlqProducer.Close(); err != nil {
			logger.WithError(err).Warn("failed to close dlq producer")
		}
	}()

	consumer, err := kafka.NewConsumerWithDLQ(
		brokerList,
		groupID,
		[]string{kafka.TopicOrderEvents},
		handleMessage(logger),
		dlqProducer,
		3,
	)
	if err != nil {
		logger.WithError(err).Fatal("failed to create consumer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		logger.WithError(err).Fatal("failed to start consumer")
	}

	<-ctx.Done()
	if err := consumer.Stop(); err != nil {
		logger.WithError(err).Warn("consumer stopped with error")
	}
}
