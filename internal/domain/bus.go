package domain

import "context"

// EventBus is the transport the replay publisher sends generated rows
// through. Implementations: Go channels (dev/tests), NATS, Kafka.
type EventBus interface {
	// Publish sends one keyed message to a topic.
	Publish(ctx context.Context, topic string, key, value []byte) error

	// Flush blocks until buffered messages have been handed to the
	// transport. Called at end of stream.
	Flush(ctx context.Context) error

	// Ping checks transport health.
	Ping(ctx context.Context) error

	// Close releases the connection, flushing first where the
	// transport buffers.
	Close() error
}

// MessageHandler processes incoming messages on a subscribing bus.
type MessageHandler func(ctx context.Context, msg *Message) error

// Message is the envelope carried on the bus.
type Message struct {
	ID        string `json:"id"`
	Topic     string `json:"topic"`
	Key       []byte `json:"key"`
	Value     []byte `json:"value"`
	Timestamp int64  `json:"timestamp"`
}

// Subscription is an active subscription on a subscribing bus.
type Subscription interface {
	// Unsubscribe stops receiving messages.
	Unsubscribe() error

	// Topic returns the subscribed topic.
	Topic() string
}

// TopicTransactionsRaw is the topic the replay publisher emits rows on;
// the downstream fraud pipeline consumes it.
const TopicTransactionsRaw = "transactions_raw"

// EventBusConfig holds configuration for event bus initialization.
type EventBusConfig struct {
	// Type is the bus type: "channel", "nats" or "kafka".
	Type string

	// Channel settings.
	ChannelBufferSize int

	// NATS settings.
	NATSUrl           string
	NATSToken         string
	NATSMaxReconnects int
	NATSReconnectWait int // seconds

	// Kafka settings. Credentials come from the environment, never
	// from source.
	KafkaBrokers          string
	KafkaSecurityProtocol string // e.g. SASL_SSL
	KafkaSASLMechanism    string // e.g. PLAIN
	KafkaSASLUsername     string
	KafkaSASLPassword     string
	KafkaFlushTimeoutMS   int
}
