package verification

import (
	"context"
	"time"

	"github.com/go-label-api/internal/domain"
)

// Store holds verification sessions keyed by session id.
//
// Get returns a copy, or an error wrapping domain.ErrNotFound.
// MarkUsed flips Used from false to true atomically per key; it fails with
// domain.ErrNotFound if the session is gone and domain.ErrAlreadyUsed if
// another caller got there first. Remove is idempotent.
// Consume removes a session only if it exists and is marked used, and returns
// the removed session; at most one caller per session can succeed. It fails
// with domain.ErrNotFound if the session is gone or was never verified.
// SweepExpired removes every session whose age at now has reached the TTL
// and reports how many were removed.
type Store interface {
	Put(ctx context.Context, s *domain.VerificationSession) error
	Get(ctx context.Context, sessionID string) (*domain.VerificationSession, error)
	MarkUsed(ctx context.Context, sessionID string) error
	Remove(ctx context.Context, sessionID string) error
	Consume(ctx context.Context, sessionID string) (*domain.VerificationSession, error)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// Recorder receives lifecycle events for metrics.
type Recorder interface {
	SessionCreated(channel domain.Channel)
	VerificationOutcome(outcome string)
	SessionsSwept(n int)
}

type nopRecorder struct{}

func (nopRecorder) SessionCreated(domain.Channel) {}
func (nopRecorder) VerificationOutcome(string)    {}
func (nopRecorder) SessionsSwept(int)             {}
