package bus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/opensource-finance/kite/internal/domain"
)

// KafkaBus implements EventBus using a Kafka producer.
// SASL credentials are read from configuration, which the commands
// populate from the environment.
type KafkaBus struct {
	producer     *kafka.Producer
	flushTimeout int
	done         chan struct{}
}

// NewKafkaBus creates a new Kafka-backed event bus.
func NewKafkaBus(cfg domain.EventBusConfig) (*KafkaBus, error) {
	if cfg.KafkaBrokers == "" {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	if cfg.KafkaFlushTimeoutMS == 0 {
		cfg.KafkaFlushTimeoutMS = 15000
	}

	conf := kafka.ConfigMap{
		"bootstrap.servers": cfg.KafkaBrokers,
		"acks":              "all",
	}

	if cfg.KafkaSecurityProtocol != "" {
		conf["security.protocol"] = cfg.KafkaSecurityProtocol
	}
	if cfg.KafkaSASLMechanism != "" {
		conf["sasl.mechanisms"] = cfg.KafkaSASLMechanism
		conf["sasl.username"] = cfg.KafkaSASLUsername
		conf["sasl.password"] = cfg.KafkaSASLPassword
	}

	producer, err := kafka.NewProducer(&conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	b := &KafkaBus{
		producer:     producer,
		flushTimeout: cfg.KafkaFlushTimeoutMS,
		done:         make(chan struct{}),
	}

	// Drain delivery reports so the producer queue does not fill up.
	go b.handleEvents()

	slog.Info("Kafka producer created", "brokers", cfg.KafkaBrokers)

	return b, nil
}

func (b *KafkaBus) handleEvents() {
	defer close(b.done)
	for e := range b.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				slog.Error("Kafka delivery failed",
					"topic", *ev.TopicPartition.Topic,
					"error", ev.TopicPartition.Error,
				)
			}
		case kafka.Error:
			slog.Error("Kafka producer error", "code", ev.Code(), "error", ev)
		}
	}
}

// Publish enqueues a keyed message on a Kafka topic.
func (b *KafkaBus) Publish(ctx context.Context, topic string, key, value []byte) error {
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            key,
		Value:          value,
	}

	if err := b.producer.Produce(msg, nil); err != nil {
		return fmt.Errorf("failed to produce to %s: %w", topic, err)
	}
	return nil
}

// Flush blocks until the producer queue drains or the timeout elapses.
func (b *KafkaBus) Flush(ctx context.Context) error {
	if remaining := b.producer.Flush(b.flushTimeout); remaining > 0 {
		return fmt.Errorf("%d messages still queued after flush", remaining)
	}
	return nil
}

// Ping checks broker connectivity via cluster metadata.
func (b *KafkaBus) Ping(ctx context.Context) error {
	if _, err := b.producer.GetMetadata(nil, true, 5000); err != nil {
		return fmt.Errorf("kafka metadata request failed: %w", err)
	}
	return nil
}

// Close flushes outstanding messages and releases the producer.
func (b *KafkaBus) Close() error {
	b.producer.Flush(b.flushTimeout)
	b.producer.Close()
	<-b.done
	return nil
}
