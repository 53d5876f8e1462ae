// Package signin implements the phone-number sign-in flows that lean on the
// external identity provider.
package signin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-label-api/internal/application/otp"
	"github.com/go-label-api/internal/application/verification"
	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/pkg/contact"
	"github.com/rs/zerolog/log"
)

// IdentityDelegate is the external identity provider.
type IdentityDelegate interface {
	VerifyExternalToken(ctx context.Context, token string) (*domain.ExternalIdentity, error)
	Claims(ctx context.Context, uid string) (map[string]interface{}, error)
	IssueCustomToken(ctx context.Context, uid string) (string, error)
	EnsurePhoneSubject(ctx context.Context, phone string) (string, error)
}

type ScanResult struct {
	SessionID string      `json:"session_id"`
	ExpiresIn int         `json:"expires_in"`
	Tag       *domain.Tag `json:"tag"`
}

type ScanVerifyResult struct {
	CustomToken string `json:"custom_token"`
	UID         string `json:"uid"`
	PhoneNumber string `json:"phone_number"`
}

// SessionResult carries a USER session token for the signed-in subject.
type SessionResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
	Tag       *domain.Tag  `json:"tag,omitempty"`
}

type Profile struct {
	User   *domain.User           `json:"user"`
	Claims map[string]interface{} `json:"claims"`
}

type Service interface {
	// Scan sends an SMS code to the owner phone of an active tag, bound to the
	// identity-provider subject for that phone.
	Scan(ctx context.Context, req domain.ScanRequest) (*ScanResult, error)
	// VerifyScan exchanges a verified scan session for a provider custom token.
	VerifyScan(ctx context.Context, req domain.ScanVerifyRequest) (*ScanVerifyResult, error)
	SignInWithTag(ctx context.Context, idToken string, req domain.TagSignInRequest) (*SessionResult, error)
	SignInUser(ctx context.Context, req domain.UserSignInRequest) (*SessionResult, error)
	Profile(ctx context.Context, uid string) (*Profile, error)
}

type tagReader interface {
	Get(ctx context.Context, tagID string) (*domain.Tag, error)
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
}

type codeSender interface {
	Send(ctx context.Context, to string, ch domain.Channel, opts ...verification.SessionOption) (*otp.Challenge, error)
	Verify(ctx context.Context, sessionID, code string) (*verification.Result, error)
}

type sessionInvalidator interface {
	Invalidate(ctx context.Context, sessionID string) error
}

type tokenIssuer interface {
	Issue(subject string, role domain.Role) (string, time.Time, error)
}

type service struct {
	tags     tagReader
	users    userStore
	codes    codeSender
	sessions sessionInvalidator
	identity IdentityDelegate
	tokens   tokenIssuer
	now      func() time.Time
}

type ServiceDeps struct {
	TagRepo  tagReader
	UserRepo userStore
	OTP      codeSender
	Sessions sessionInvalidator
	Identity IdentityDelegate
	Tokens   tokenIssuer
	Now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		tags:     deps.TagRepo,
		users:    deps.UserRepo,
		codes:    deps.OTP,
		sessions: deps.Sessions,
		identity: deps.Identity,
		tokens:   deps.Tokens,
		now:      now,
	}
}

func (s *service) Scan(ctx context.Context, req domain.ScanRequest) (*ScanResult, error) {
	phone, err := contact.NormalizePhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	t, err := s.activeTag(ctx, req.TagID)
	if err != nil {
		return nil, err
	}
	if !contact.Matches(t.PhoneNumber, phone) {
		return nil, fmt.Errorf("phone number is not registered on this tag: %w", domain.ErrForbidden)
	}
	uid, err := s.identity.EnsurePhoneSubject(ctx, phone)
	if err != nil {
		return nil, err
	}
	ch, err := s.codes.Send(ctx, phone, domain.ChannelPhone, verification.WithSubject(uid))
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("tag_id", t.TagID).Str("device_id", req.DeviceID).Msg("scan sign-in started")
	return &ScanResult{SessionID: ch.SessionID, ExpiresIn: ch.ExpiresIn, Tag: t}, nil
}

func (s *service) VerifyScan(ctx context.Context, req domain.ScanVerifyRequest) (*ScanVerifyResult, error) {
	res, err := s.codes.Verify(ctx, req.SessionID, req.Code)
	if err != nil {
		return nil, err
	}
	if res.SubjectID == "" {
		return nil, fmt.Errorf("session is not bound to a sign-in subject: %w", domain.ErrUnauthorized)
	}
	token, err := s.identity.IssueCustomToken(ctx, res.SubjectID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Invalidate(ctx, req.SessionID); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("invalidate consumed scan session")
	}
	log.Ctx(ctx).Info().Str("uid", res.SubjectID).Str("device_id", req.DeviceID).Msg("scan sign-in verified")
	return &ScanVerifyResult{CustomToken: token, UID: res.SubjectID, PhoneNumber: res.Contact}, nil
}

func (s *service) SignInWithTag(ctx context.Context, idToken string, req domain.TagSignInRequest) (*SessionResult, error) {
	ident, err := s.identity.VerifyExternalToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	t, err := s.activeTag(ctx, req.TagID)
	if err != nil {
		return nil, err
	}
	if !contact.Matches(t.PhoneNumber, ident.PhoneNumber) {
		return nil, fmt.Errorf("signed-in phone is not registered on this tag: %w", domain.ErrForbidden)
	}
	res, err := s.startSession(ctx, ident, t.PhoneNumber)
	if err != nil {
		return nil, err
	}
	res.Tag = t
	return res, nil
}

func (s *service) SignInUser(ctx context.Context, req domain.UserSignInRequest) (*SessionResult, error) {
	declared, err := contact.NormalizePhone(req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	ident, err := s.identity.VerifyExternalToken(ctx, req.IDToken)
	if err != nil {
		return nil, err
	}
	if !contact.Matches(declared, ident.PhoneNumber) {
		return nil, fmt.Errorf("verified phone does not match the declared phone: %w", domain.ErrForbidden)
	}
	return s.startSession(ctx, ident, declared)
}

func (s *service) Profile(ctx context.Context, uid string) (*Profile, error) {
	u, err := s.users.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	claims, err := s.identity.Claims(ctx, uid)
	if err != nil {
		return nil, err
	}
	return &Profile{User: u, Claims: claims}, nil
}

// startSession records the sign-in and issues a USER token for the subject.
func (s *service) startSession(ctx context.Context, ident *domain.ExternalIdentity, phone string) (*SessionResult, error) {
	now := s.now().UTC()
	u, err := s.users.Get(ctx, ident.Subject)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		u = &domain.User{UserID: ident.Subject, CreatedAt: now}
	case err != nil:
		return nil, err
	}
	u.PhoneNumber = phone
	if ident.Email != "" {
		u.Email = ident.Email
	}
	u.LastSignInAt = now
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	token, exp, err := s.tokens.Issue(u.UserID, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	return &SessionResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *service) activeTag(ctx context.Context, tagID string) (*domain.Tag, error) {
	t, err := s.tags.Get(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return nil, fmt.Errorf("tag %s is not active: %w", tagID, domain.ErrNotFound)
	}
	t.CreatedFor = ""
	return t, nil
}
