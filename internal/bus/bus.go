package bus

import (
	"fmt"

	"github.com/opensource-finance/kite/internal/domain"
)

// New creates a new event bus based on configuration.
// "channel" is the in-process bus for development and tests;
// "nats" and "kafka" publish to a running broker.
func New(cfg domain.EventBusConfig) (domain.EventBus, error) {
	switch cfg.Type {
	case "channel":
		return NewChannelBus(cfg.ChannelBufferSize), nil

	case "nats":
		return NewNATSBus(cfg)

	case "kafka":
		return NewKafkaBus(cfg)

	default:
		return nil, fmt.Errorf("unsupported event bus type: %s", cfg.Type)
	}
}
