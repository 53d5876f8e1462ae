package verification

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/pkg/id"
	"github.com/rs/zerolog/log"
)

// Outcome is the result category of a verification attempt.
type Outcome string

const (
	OutcomeVerified     Outcome = "verified"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeExpired      Outcome = "expired"
	OutcomeAlreadyUsed  Outcome = "already_used"
	OutcomeCodeMismatch Outcome = "code_mismatch"
)

// Err maps a failed outcome to its domain sentinel. Verified maps to nil.
func (o Outcome) Err() error {
	switch o {
	case OutcomeVerified:
		return nil
	case OutcomeExpired:
		return domain.ErrSessionExpired
	case OutcomeAlreadyUsed:
		return domain.ErrAlreadyUsed
	case OutcomeCodeMismatch:
		return domain.ErrCodeMismatch
	default:
		return domain.ErrNotFound
	}
}

// Result is returned by Verify. Contact, Channel and SubjectID are only set
// when Outcome is OutcomeVerified.
type Result struct {
	Outcome   Outcome
	Contact   string
	Channel   domain.Channel
	SubjectID string
}

type Config struct {
	CodeLength   int
	CodeAlphabet string
	TTL          time.Duration
}

type Option func(*Coordinator)

func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

func WithRecorder(r Recorder) Option {
	return func(c *Coordinator) { c.rec = r }
}

// WithIDGenerator overrides how session ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(c *Coordinator) { c.newID = fn }
}

// SessionOption customizes a session at creation.
type SessionOption func(*domain.VerificationSession)

// WithSubject binds an identity-provider subject to the session.
func WithSubject(subjectID string) SessionOption {
	return func(s *domain.VerificationSession) { s.BoundSubjectID = subjectID }
}

func WithChannel(ch domain.Channel) SessionOption {
	return func(s *domain.VerificationSession) { s.Channel = ch }
}

// Coordinator owns the verification session lifecycle: it is the only writer
// of the Used flag and the only remover of sessions besides the sweeper.
type Coordinator struct {
	store Store
	cfg   Config
	now   func() time.Time
	newID func() string
	rec   Recorder
}

func NewCoordinator(store Store, cfg Config, opts ...Option) *Coordinator {
	if cfg.CodeAlphabet == "" {
		cfg.CodeAlphabet = Digits
	}
	c := &Coordinator{
		store: store,
		cfg:   cfg,
		now:   time.Now,
		newID: id.NewOpaque,
		rec:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL is how long a session stays valid after creation.
func (c *Coordinator) TTL() time.Duration { return c.cfg.TTL }

// CreateSession stores a fresh session for contact and returns its id and
// plaintext code. The caller delivers the code; it is never logged.
func (c *Coordinator) CreateSession(ctx context.Context, contact string, opts ...SessionOption) (string, string, error) {
	if contact == "" {
		return "", "", fmt.Errorf("contact is required: %w", domain.ErrBadRequest)
	}
	code, err := GenerateCode(c.cfg.CodeLength, c.cfg.CodeAlphabet)
	if err != nil {
		return "", "", fmt.Errorf("generate code: %w", err)
	}
	now := c.now().UTC()
	s := &domain.VerificationSession{
		SessionID: c.newID(),
		Contact:   contact,
		Code:      code,
		CreatedAt: now,
		ExpiresAt: expiresAtUnix(now, c.cfg.TTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := c.store.Put(ctx, s); err != nil {
		return "", "", fmt.Errorf("store verification session: %w", err)
	}
	c.rec.SessionCreated(s.Channel)
	return s.SessionID, code, nil
}

// Verify checks code against the session. Only empty input yields an error;
// every other failure is reported through Result.Outcome. Checks run in a
// fixed order: existence, expiry, prior use, code, then the atomic use mark.
func (c *Coordinator) Verify(ctx context.Context, sessionID, code string) (Result, error) {
	if sessionID == "" || code == "" {
		return Result{}, fmt.Errorf("session id and code are required: %w", domain.ErrBadRequest)
	}
	res := c.verify(ctx, sessionID, code)
	c.rec.VerificationOutcome(string(res.Outcome))
	return res, nil
}

func (c *Coordinator) verify(ctx context.Context, sessionID, code string) Result {
	s, err := c.store.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Ctx(ctx).Warn().Err(err).Msg("read verification session")
		}
		return Result{Outcome: OutcomeNotFound}
	}
	if c.expired(s) {
		if err := c.store.Remove(ctx, sessionID); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("remove expired verification session")
		}
		return Result{Outcome: OutcomeExpired}
	}
	if s.Used {
		return Result{Outcome: OutcomeAlreadyUsed}
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(s.Code)) != 1 {
		return Result{Outcome: OutcomeCodeMismatch}
	}
	if err := c.store.MarkUsed(ctx, sessionID); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyUsed):
			return Result{Outcome: OutcomeAlreadyUsed}
		case errors.Is(err, domain.ErrNotFound):
			return Result{Outcome: OutcomeNotFound}
		default:
			log.Ctx(ctx).Warn().Err(err).Msg("mark verification session used")
			return Result{Outcome: OutcomeNotFound}
		}
	}
	return Result{
		Outcome:   OutcomeVerified,
		Contact:   s.Contact,
		Channel:   s.Channel,
		SubjectID: s.BoundSubjectID,
	}
}

// ConfirmedContact returns the contact of a session that was successfully
// verified and has not yet expired or been invalidated.
func (c *Coordinator) ConfirmedContact(ctx context.Context, sessionID string) (string, bool) {
	if sessionID == "" {
		return "", false
	}
	s, err := c.store.Get(ctx, sessionID)
	if err != nil {
		return "", false
	}
	if !s.Used || c.expired(s) {
		return "", false
	}
	return s.Contact, true
}

// Consume atomically ends a verified session and returns its contact. Only one
// caller per session gets ok; use it to bind the session to a single action.
// A verified session past its TTL is removed and reported as not ok.
func (c *Coordinator) Consume(ctx context.Context, sessionID string) (string, bool) {
	if sessionID == "" {
		return "", false
	}
	s, err := c.store.Consume(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Ctx(ctx).Warn().Err(err).Msg("consume verification session")
		}
		return "", false
	}
	if c.expired(s) {
		return "", false
	}
	return s.Contact, true
}

// Invalidate removes the session. Removing an unknown session is not an error.
func (c *Coordinator) Invalidate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return c.store.Remove(ctx, sessionID)
}

// expiresAtUnix rounds up so that the second-granular expiry is never
// earlier than CreatedAt+TTL.
func expiresAtUnix(createdAt time.Time, ttl time.Duration) int64 {
	exp := createdAt.Add(ttl)
	secs := exp.Unix()
	if exp.Nanosecond() > 0 {
		secs++
	}
	return secs
}

// expired treats a creation time in the future as expired, so clock skew
// can never extend a session.
func (c *Coordinator) expired(s *domain.VerificationSession) bool {
	age := c.now().Sub(s.CreatedAt)
	return age < 0 || age >= c.cfg.TTL
}
