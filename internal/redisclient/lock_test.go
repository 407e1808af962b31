package redisclient

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLocker(t *testing.T) (Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSlotLocker(client, 2*time.Second), mr
}

func TestWithSlotLockRunsAndReleases(t *testing.T) {
	locker, mr := newTestLocker(t)

	ran := false
	err := locker.WithSlotLock(context.Background(), "d1", "2025-06-01", "10:00", func(ctx context.Context) error {
		ran = true
		if !mr.Exists("lock:slot:d1:2025-06-01:10:00") {
			t.Error("lock key should exist inside the critical section")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithSlotLock: %v", err)
	}
	if !ran {
		t.Fatal("critical section did not run")
	}
	if mr.Exists("lock:slot:d1:2025-06-01:10:00") {
		t.Fatal("lock key should be released")
	}
}

func TestWithSlotLockContention(t *testing.T) {
	locker, mr := newTestLocker(t)

	if err := mr.Set("lock:slot:d1:2025-06-01:10:00", "someone-else"); err != nil {
		t.Fatalf("seed lock: %v", err)
	}

	err := locker.WithSlotLock(context.Background(), "d1", "2025-06-01", "10:00", func(ctx context.Context) error {
		t.Fatal("critical section must not run under contention")
		return nil
	})
	if !errors.Is(err, ErrLockNotAcquired) {
		t.Fatalf("expected ErrLockNotAcquired, got %v", err)
	}
}

func TestWithSlotLockDistinctSlotsDoNotContend(t *testing.T) {
	locker, _ := newTestLocker(t)

	err := locker.WithSlotLock(context.Background(), "d1", "2025-06-01", "10:00", func(ctx context.Context) error {
		// A different time label on the same doctor and date is a
		// different slot.
		return locker.WithSlotLock(ctx, "d1", "2025-06-01", "10:30", func(ctx context.Context) error {
			return nil
		})
	})
	if err != nil {
		t.Fatalf("distinct slots should not contend: %v", err)
	}
}

func TestWithSlotLockPropagatesCallbackError(t *testing.T) {
	locker, mr := newTestLocker(t)

	sentinel := errors.New("boom")
	err := locker.WithSlotLock(context.Background(), "d1", "2025-06-01", "10:00", func(ctx context.Context) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if mr.Exists("lock:slot:d1:2025-06-01:10:00") {
		t.Fatal("lock must be released even when the callback fails")
	}
}
