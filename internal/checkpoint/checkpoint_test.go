package checkpoint

import (
	"context"
	"testing"
	"time"

	"github.com/opensource-finance/kite/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		if err := store.Set(ctx, "offset:transactions_20250121.csv", []byte("1500"), 0); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		val, err := store.Get(ctx, "offset:transactions_20250121.csv")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if string(val) != "1500" {
			t.Errorf("expected '1500', got '%s'", string(val))
		}
	})

	t.Run("MissingKey", func(t *testing.T) {
		val, err := store.Get(ctx, "offset:nope")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if val != nil {
			t.Errorf("expected nil for missing key, got %q", string(val))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store.Set(ctx, "doomed", []byte("x"), 0)
		if err := store.Delete(ctx, "doomed"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		val, _ := store.Get(ctx, "doomed")
		if val != nil {
			t.Error("expected nil after delete")
		}
	})

	t.Run("TTLExpiry", func(t *testing.T) {
		store.Set(ctx, "fleeting", []byte("x"), 20*time.Millisecond)

		val, _ := store.Get(ctx, "fleeting")
		if val == nil {
			t.Fatal("expected value before expiry")
		}

		time.Sleep(30 * time.Millisecond)

		val, _ = store.Get(ctx, "fleeting")
		if val != nil {
			t.Error("expected nil after expiry")
		}
	})

	t.Run("CallerCannotMutate", func(t *testing.T) {
		store.Set(ctx, "stable", []byte("1500"), 0)

		val, _ := store.Get(ctx, "stable")
		val[0] = 'X'

		again, _ := store.Get(ctx, "stable")
		if string(again) != "1500" {
			t.Errorf("stored value mutated to %q", string(again))
		}
	})

	t.Run("Ping", func(t *testing.T) {
		if err := store.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})
}

func TestNewFactory(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		store, err := New(domain.CheckpointConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}
		defer store.Close()
		if _, ok := store.(*MemoryStore); !ok {
			t.Errorf("expected *MemoryStore, got %T", store)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		if _, err := New(domain.CheckpointConfig{Type: "etcd"}); err == nil {
			t.Error("expected error for unsupported type")
		}
	})
}
