package verification

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper periodically evicts expired sessions so abandoned requests do not
// accumulate. Verify enforces expiry on its own; the sweeper only bounds memory.
type Sweeper struct {
	store    Store
	interval time.Duration
	now      func() time.Time
	rec      Recorder
	tick     func(time.Duration) (<-chan time.Time, func())
}

type SweeperOption func(*Sweeper)

func WithSweepClock(now func() time.Time) SweeperOption {
	return func(s *Sweeper) { s.now = now }
}

func WithSweepRecorder(r Recorder) SweeperOption {
	return func(s *Sweeper) { s.rec = r }
}

// WithTicker replaces the time.Ticker source, mainly for tests.
func WithTicker(fn func(time.Duration) (<-chan time.Time, func())) SweeperOption {
	return func(s *Sweeper) { s.tick = fn }
}

func NewSweeper(store Store, interval time.Duration, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		store:    store,
		interval: interval,
		now:      time.Now,
		rec:      nopRecorder{},
		tick: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	c, stop := s.tick(s.interval)
	defer stop()
	log.Info().Dur("interval", s.interval).Msg("verification session sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("verification session sweeper stopped")
			return
		case <-c:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce removes expired sessions and returns how many went away.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	n, err := s.store.SweepExpired(ctx, s.now())
	if err != nil {
		log.Warn().Err(err).Msg("sweep expired verification sessions")
	}
	if n > 0 {
		s.rec.SessionsSwept(n)
		log.Debug().Int("removed", n).Msg("swept expired verification sessions")
	}
	return n
}
