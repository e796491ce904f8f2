package latch

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestWaitTimesOutBeforeSignal(t *testing.T) {
	l := New()
	start := time.Now()
	if l.Wait(context.Background(), 30*time.Millisecond) {
		t.Fatal("expected timeout before any Signal")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("returned too early: %v", elapsed)
	}
	if l.Signaled() {
		t.Fatal("timeout must not set the latch")
	}
}

func TestWaitAfterSignalReturnsImmediately(t *testing.T) {
	l := New()
	l.Signal()
	start := time.Now()
	if !l.Wait(context.Background(), time.Second) {
		t.Fatal("expected ready")
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Fatalf("wait on a set latch should not park: %v", elapsed)
	}
}

func TestSignalReleasesAllWaiters(t *testing.T) {
	l := New()
	const waiters = 8

	var wg sync.WaitGroup
	results := make(chan bool, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- l.Wait(context.Background(), 2*time.Second)
		}()
	}

	time.Sleep(10 * time.Millisecond)
	l.Signal()
	wg.Wait()
	close(results)

	for ready := range results {
		if !ready {
			t.Fatal("a waiter timed out despite Signal")
		}
	}
}

func TestSignalIsIdempotent(t *testing.T) {
	l := New()
	l.Signal()
	l.Signal() // must not panic on the closed channel
	if !l.Signaled() {
		t.Fatal("latch should stay set")
	}
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if l.Wait(ctx, time.Second) {
		t.Fatal("expected forced continuation on cancellation")
	}
}
