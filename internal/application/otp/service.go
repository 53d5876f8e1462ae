package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/go-label-api/internal/application/verification"
	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/pkg/contact"
	"github.com/go-label-api/internal/pkg/retry"
	"github.com/rs/zerolog/log"
)

const emailSubject = "Verification Code"

// Challenge is returned to the caller after a code was sent.
type Challenge struct {
	SessionID string         `json:"session_id"`
	Channel   domain.Channel `json:"channel"`
	ExpiresIn int            `json:"expires_in"`
}

type Service interface {
	// Request normalizes a raw email address or phone number and sends it a code.
	Request(ctx context.Context, rawContact string) (*Challenge, error)
	// Send delivers a code to an already normalized contact.
	Send(ctx context.Context, to string, ch domain.Channel, opts ...verification.SessionOption) (*Challenge, error)
	// Verify returns the outcome's domain error for every non-verified result.
	Verify(ctx context.Context, sessionID, code string) (*verification.Result, error)
}

type coordinator interface {
	CreateSession(ctx context.Context, contact string, opts ...verification.SessionOption) (string, string, error)
	Verify(ctx context.Context, sessionID, code string) (verification.Result, error)
	Invalidate(ctx context.Context, sessionID string) error
	TTL() time.Duration
}

type mailer interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	coord  coordinator
	mailer mailer
	sms    smsSender
	retry  retry.Policy
}

type ServiceDeps struct {
	Coordinator coordinator
	Mailer      mailer
	SMSSender   smsSender
	Retry       retry.Policy
}

func NewService(deps ServiceDeps) Service {
	return &service{
		coord:  deps.Coordinator,
		mailer: deps.Mailer,
		sms:    deps.SMSSender,
		retry:  deps.Retry,
	}
}

func (s *service) Request(ctx context.Context, rawContact string) (*Challenge, error) {
	to, ch, err := contact.Normalize(rawContact)
	if err != nil {
		return nil, err
	}
	return s.Send(ctx, to, ch)
}

func (s *service) Send(ctx context.Context, to string, ch domain.Channel, opts ...verification.SessionOption) (*Challenge, error) {
	opts = append(opts, verification.WithChannel(ch))
	sessionID, code, err := s.coord.CreateSession(ctx, to, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.deliver(ctx, to, ch, code); err != nil {
		// A session whose code never arrived must not stay verifiable.
		if ierr := s.coord.Invalidate(ctx, sessionID); ierr != nil {
			log.Ctx(ctx).Warn().Err(ierr).Msg("invalidate undelivered session")
		}
		log.Ctx(ctx).Error().Err(err).Str("channel", string(ch)).Msg("code delivery failed")
		return nil, fmt.Errorf("send %s code: %w", ch, domain.ErrDelivery)
	}
	log.Ctx(ctx).Info().Str("session_id", sessionID).Str("channel", string(ch)).Msg("verification code sent")
	return &Challenge{
		SessionID: sessionID,
		Channel:   ch,
		ExpiresIn: int(s.coord.TTL().Seconds()),
	}, nil
}

func (s *service) deliver(ctx context.Context, to string, ch domain.Channel, code string) error {
	switch ch {
	case domain.ChannelEmail:
		if s.mailer == nil {
			return fmt.Errorf("email delivery is not configured")
		}
		body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
			code, int(s.coord.TTL().Minutes()))
		return retry.Do(ctx, "send email", s.retry, func(ctx context.Context) error {
			return s.mailer.SendEmail(ctx, to, emailSubject, body)
		})
	case domain.ChannelPhone:
		if s.sms == nil {
			return fmt.Errorf("sms delivery is not configured")
		}
		msg := fmt.Sprintf("Your verification code is %s", code)
		return retry.Do(ctx, "send sms", s.retry, func(ctx context.Context) error {
			return s.sms.SendSMS(ctx, to, msg)
		})
	default:
		return fmt.Errorf("unknown channel %q", ch)
	}
}

func (s *service) Verify(ctx context.Context, sessionID, code string) (*verification.Result, error) {
	res, err := s.coord.Verify(ctx, sessionID, code)
	if err != nil {
		return nil, err
	}
	if err := res.Outcome.Err(); err != nil {
		return &res, fmt.Errorf("verify code: %w", err)
	}
	return &res, nil
}
