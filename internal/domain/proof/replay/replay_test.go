package replay

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"tarotvision-server-go/internal/platform/config"
)

func TestMemoryConsumeOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(time.Minute)
	t.Cleanup(func() { _ = store.Close(ctx) })

	exp := time.Now().Add(time.Minute)
	replayed, err := store.Consume(ctx, "proof-1", exp)
	if err != nil || replayed {
		t.Fatalf("first consume: replayed=%v err=%v", replayed, err)
	}

	replayed, err = store.Consume(ctx, "proof-1", exp)
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if !replayed {
		t.Fatal("second consume must report replay")
	}
}

func TestMemoryExpiredMarkerFreesID(t *testing.T) {
	ctx := context.Background()
	store := NewMemory(time.Minute)
	t.Cleanup(func() { _ = store.Close(ctx) })

	past := time.Now().Add(-time.Second)
	if replayed, _ := store.Consume(ctx, "proof-1", past); replayed {
		t.Fatal("fresh id reported replayed")
	}
	// Marker already expired with the proof, so the id is reusable.
	if replayed, _ := store.Consume(ctx, "proof-1", time.Now().Add(time.Minute)); replayed {
		t.Fatal("expired marker should not count as replay")
	}
}

func TestMemorySweepRemovesExpired(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(time.Minute).(*memoryStore)
	t.Cleanup(func() { _ = s.Close(ctx) })

	s.Consume(ctx, "stale", time.Now().Add(-time.Second))
	s.Consume(ctx, "live", time.Now().Add(time.Minute))
	s.sweep()

	stats, _ := s.Stats(ctx)
	if stats["total"] != 1 {
		t.Fatalf("expected 1 entry after sweep, got %v", stats["total"])
	}
}

func TestRedisConsumeOnce(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	store, err := NewRedis(config.ReplayRedisConfig{Addr: mr.Addr()})
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(ctx) })

	exp := time.Now().Add(time.Minute)
	if replayed, err := store.Consume(ctx, "proof-1", exp); err != nil || replayed {
		t.Fatalf("first consume: replayed=%v err=%v", replayed, err)
	}
	if replayed, err := store.Consume(ctx, "proof-1", exp); err != nil || !replayed {
		t.Fatalf("second consume: replayed=%v err=%v", replayed, err)
	}
	if replayed, err := store.Consume(ctx, "proof-2", exp); err != nil || replayed {
		t.Fatalf("distinct id: replayed=%v err=%v", replayed, err)
	}
}

func TestFactorySelection(t *testing.T) {
	store, err := New(config.ReplayConfig{Enabled: false})
	if err != nil || store != nil {
		t.Fatalf("disabled must yield nil store, got %v/%v", store, err)
	}

	store, err = New(config.ReplayConfig{Enabled: true, Driver: "memory"})
	if err != nil || store == nil {
		t.Fatalf("memory driver: %v", err)
	}
	_ = store.Close(context.Background())

	if _, err := New(config.ReplayConfig{Enabled: true, Driver: "dynamo"}); err == nil {
		t.Fatal("unknown driver must error")
	}
}
