package verification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-label-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	mu       sync.Mutex
	created  int
	outcomes []string
	swept    int
}

func (r *countingRecorder) SessionCreated(domain.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *countingRecorder) VerificationOutcome(o string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *countingRecorder) SessionsSwept(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.swept += n
}

func (r *countingRecorder) sweptCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.swept
}

func TestSweeper_SweepOnce(t *testing.T) {
	store := NewMemoryStore(10 * time.Minute)
	putSession(t, store, "old", t0.Add(-20*time.Minute))
	putSession(t, store, "fresh", t0)
	rec := &countingRecorder{}

	sw := NewSweeper(store, time.Minute, WithSweepClock(func() time.Time { return t0 }), WithSweepRecorder(rec))
	assert.Equal(t, 1, sw.SweepOnce(context.Background()))
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, 1, rec.sweptCount())
}

func TestSweeper_RunSweepsOnTickAndStopsOnCancel(t *testing.T) {
	store := NewMemoryStore(10 * time.Minute)
	putSession(t, store, "old", t0.Add(-20*time.Minute))

	ticks := make(chan time.Time)
	stopped := make(chan struct{})
	rec := &countingRecorder{}
	sw := NewSweeper(store, time.Minute,
		WithSweepClock(func() time.Time { return t0 }),
		WithSweepRecorder(rec),
		WithTicker(func(time.Duration) (<-chan time.Time, func()) {
			return ticks, func() { close(stopped) }
		}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sw.Run(ctx)
		close(done)
	}()

	ticks <- t0
	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
	<-stopped
	assert.Equal(t, 1, rec.sweptCount())
}
