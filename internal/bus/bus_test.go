package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/opensource-finance/kite/internal/domain"
)

func TestChannelBus(t *testing.T) {
	bus := NewChannelBus(100)
	defer bus.Close()

	ctx := context.Background()

	t.Run("PublishAndSubscribe", func(t *testing.T) {
		var received atomic.Bool
		var receivedMsg *domain.Message

		var wg sync.WaitGroup
		wg.Add(1)

		_, err := bus.Subscribe(ctx, "test.topic", func(ctx context.Context, msg *domain.Message) error {
			receivedMsg = msg
			received.Store(true)
			wg.Done()
			return nil
		})
		if err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}

		// Allow subscription to be active
		time.Sleep(10 * time.Millisecond)

		err = bus.Publish(ctx, "test.topic", []byte("C0000001"), []byte("hello"))
		if err != nil {
			t.Fatalf("publish failed: %v", err)
		}

		// Wait for message
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			// Success
		case <-time.After(time.Second):
			t.Fatal("timeout waiting for message")
		}

		if !received.Load() {
			t.Error("message not received")
		}

		if string(receivedMsg.Value) != "hello" {
			t.Errorf("expected value 'hello', got '%s'", string(receivedMsg.Value))
		}
		if string(receivedMsg.Key) != "C0000001" {
			t.Errorf("expected key 'C0000001', got '%s'", string(receivedMsg.Key))
		}
		if receivedMsg.Topic != "test.topic" {
			t.Errorf("expected topic 'test.topic', got '%s'", receivedMsg.Topic)
		}
	})

	t.Run("TopicIsolation", func(t *testing.T) {
		var received1 atomic.Int32
		var received2 atomic.Int32

		bus.Subscribe(ctx, "isolation.one", func(ctx context.Context, msg *domain.Message) error {
			received1.Add(1)
			return nil
		})

		bus.Subscribe(ctx, "isolation.two", func(ctx context.Context, msg *domain.Message) error {
			received2.Add(1)
			return nil
		})

		time.Sleep(10 * time.Millisecond)

		bus.Publish(ctx, "isolation.one", nil, []byte("msg1"))
		time.Sleep(50 * time.Millisecond)

		if received1.Load() != 1 {
			t.Errorf("first topic should receive 1 message, got %d", received1.Load())
		}
		if received2.Load() != 0 {
			t.Errorf("second topic should receive 0 messages, got %d", received2.Load())
		}
	})

	t.Run("FlushDrainsBacklog", func(t *testing.T) {
		var received atomic.Int32

		bus.Subscribe(ctx, "flush.topic", func(ctx context.Context, msg *domain.Message) error {
			received.Add(1)
			return nil
		})

		time.Sleep(10 * time.Millisecond)

		const n = 50
		for i := 0; i < n; i++ {
			if err := bus.Publish(ctx, "flush.topic", nil, []byte("row")); err != nil {
				t.Fatalf("publish failed: %v", err)
			}
		}

		flushCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := bus.Flush(flushCtx); err != nil {
			t.Fatalf("flush failed: %v", err)
		}

		// Flush guarantees the channel is drained; handlers may still
		// be finishing the last message.
		time.Sleep(20 * time.Millisecond)
		if received.Load() != n {
			t.Errorf("expected %d messages after flush, got %d", n, received.Load())
		}
	})

	t.Run("Unsubscribe", func(t *testing.T) {
		var received atomic.Int32

		sub, err := bus.Subscribe(ctx, "unsub.topic", func(ctx context.Context, msg *domain.Message) error {
			received.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("subscribe failed: %v", err)
		}

		time.Sleep(10 * time.Millisecond)
		sub.Unsubscribe()
		time.Sleep(10 * time.Millisecond)

		bus.Publish(ctx, "unsub.topic", nil, []byte("late"))
		time.Sleep(50 * time.Millisecond)

		if received.Load() != 0 {
			t.Errorf("expected no messages after unsubscribe, got %d", received.Load())
		}
	})

	t.Run("Ping", func(t *testing.T) {
		if err := bus.Ping(ctx); err != nil {
			t.Errorf("ping failed: %v", err)
		}
	})
}

func TestChannelBusClosed(t *testing.T) {
	bus := NewChannelBus(10)
	bus.Close()

	ctx := context.Background()

	if err := bus.Publish(ctx, "t", nil, []byte("x")); err == nil {
		t.Error("expected publish error on closed bus")
	}
	if _, err := bus.Subscribe(ctx, "t", func(context.Context, *domain.Message) error { return nil }); err == nil {
		t.Error("expected subscribe error on closed bus")
	}
	if err := bus.Ping(ctx); err == nil {
		t.Error("expected ping error on closed bus")
	}
	if err := bus.Close(); err != nil {
		t.Errorf("double close failed: %v", err)
	}
}

func TestNewFactory(t *testing.T) {
	t.Run("Channel", func(t *testing.T) {
		b, err := New(domain.EventBusConfig{Type: "channel"})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer b.Close()
		if _, ok := b.(*ChannelBus); !ok {
			t.Errorf("expected *ChannelBus, got %T", b)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		if _, err := New(domain.EventBusConfig{Type: "rabbitmq"}); err == nil {
			t.Error("expected error for unsupported type")
		}
	})
}
