package services

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryCodeStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCodeStore(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if ok, _ := s.Consume(ctx, 1, "123123"); ok {
		t.Fatal("consumed a code that was never issued")
	}

	s.Put(ctx, 1, "111111")
	s.Put(ctx, 1, "222222")
	if ok, _ := s.Consume(ctx, 1, "111111"); ok {
		t.Fatal("replaced code still accepted")
	}
	if ok, _ := s.Consume(ctx, 1, "222222"); !ok {
		t.Fatal("current code rejected after a wrong attempt")
	}
	if ok, _ := s.Consume(ctx, 1, "222222"); ok {
		t.Fatal("code accepted twice")
	}

	s.Put(ctx, 2, "555555")
	now = now.Add(2 * time.Minute)
	if ok, _ := s.Consume(ctx, 2, "555555"); ok {
		t.Fatal("expired code accepted")
	}
}

func TestMemoryCodeStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCodeStore(0)
	s.Put(ctx, 3, "333333")
	s.Delete(ctx, 3)
	if ok, _ := s.Consume(ctx, 3, "333333"); ok {
		t.Fatal("deleted code accepted")
	}
}

func TestMemoryCodeStoreConsumesOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryCodeStore(0)
	s.Put(ctx, 4, "444444")

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.Consume(ctx, 4, "444444"); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one successful consume, got %d", wins)
	}
}

func TestRedisCodeStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := InitRedis(ctx, url)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	defer client.Close()

	s := NewRedisCodeStore(client, time.Minute)
	const bookingID = 987654
	defer s.Delete(ctx, bookingID)

	if err := s.Put(ctx, bookingID, "424242"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if ok, _ := s.Consume(ctx, bookingID, "000000"); ok {
		t.Fatal("wrong code accepted")
	}
	if ok, err := s.Consume(ctx, bookingID, "424242"); err != nil || !ok {
		t.Fatalf("consume: %v %v", ok, err)
	}
	if ok, err := s.Consume(ctx, bookingID, "424242"); err != nil || ok {
		t.Fatalf("second consume: %v %v", ok, err)
	}
}
