package latch

import (
	"context"
	"sync"
	"time"
)

// Latch is a one-shot readiness gate. It starts unset and, once signaled,
// stays set for the rest of the process; there is no reset.
type Latch struct {
	mu  sync.Mutex
	ch  chan struct{}
	set bool
}

func New() *Latch {
	return &Latch{ch: make(chan struct{})}
}

// Signal sets the latch and releases every current waiter. Signaling an
// already-set latch is a no-op.
func (l *Latch) Signal() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.set {
		return
	}
	l.set = true
	close(l.ch)
}

func (l *Latch) Signaled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set
}

// Wait parks the caller until the latch is signaled, the timeout elapses, or
// ctx is done. It reports true when the latch was signaled in time; both the
// timeout and ctx cancellation report false.
func (l *Latch) Wait(ctx context.Context, timeout time.Duration) bool {
	l.mu.Lock()
	set, ch := l.set, l.ch
	l.mu.Unlock()
	if set {
		return true
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-ch:
		return true
	case <-t.C:
		return false
	case <-ctx.Done():
		return false
	}
}
