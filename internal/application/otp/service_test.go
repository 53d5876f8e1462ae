package otp

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/go-label-api/internal/application/verification"
	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) SendSMS(ctx context.Context, to, message string) error {
	return m.Called(ctx, to, message).Error(0)
}

// --- helpers ---

var codePattern = regexp.MustCompile(`\d{6}`)

type fixture struct {
	svc    Service
	store  *verification.MemoryStore
	mailer *mockMailer
	sms    *mockSMS
	code   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  verification.NewMemoryStore(10 * time.Minute),
		mailer: new(mockMailer),
		sms:    new(mockSMS),
	}
	coord := verification.NewCoordinator(f.store, verification.Config{CodeLength: 6, TTL: 10 * time.Minute})
	f.svc = NewService(ServiceDeps{
		Coordinator: coord,
		Mailer:      f.mailer,
		SMSSender:   f.sms,
		Retry:       retry.Policy{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond},
	})
	return f
}

// captureCode records the code embedded in the delivered message argument.
func (f *fixture) captureCode(argIndex int) func(mock.Arguments) {
	return func(args mock.Arguments) {
		f.code = codePattern.FindString(args.String(argIndex))
	}
}

// --- tests ---

func TestRequest_Email(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendEmail", mock.Anything, "alice@example.com", emailSubject, mock.MatchedBy(func(body string) bool {
		return regexp.MustCompile(`expires in 10 minutes`).MatchString(body)
	})).Run(f.captureCode(3)).Return(nil)

	ch, err := f.svc.Request(context.Background(), "  Alice@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelEmail, ch.Channel)
	assert.Equal(t, 600, ch.ExpiresIn)
	assert.NotEmpty(t, ch.SessionID)
	require.Len(t, f.code, 6)

	res, err := f.svc.Verify(context.Background(), ch.SessionID, f.code)
	require.NoError(t, err)
	assert.Equal(t, verification.OutcomeVerified, res.Outcome)
	assert.Equal(t, "alice@example.com", res.Contact)
	assert.Equal(t, domain.ChannelEmail, res.Channel)
	f.sms.AssertNotCalled(t, "SendSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequest_Phone(t *testing.T) {
	f := newFixture(t)
	f.sms.On("SendSMS", mock.Anything, "+15551234567", mock.Anything).Run(f.captureCode(2)).Return(nil)

	ch, err := f.svc.Request(context.Background(), "(555) 123-4567")
	require.NoError(t, err)
	assert.Equal(t, domain.ChannelPhone, ch.Channel)

	res, err := f.svc.Verify(context.Background(), ch.SessionID, f.code)
	require.NoError(t, err)
	assert.Equal(t, "+15551234567", res.Contact)
}

func TestRequest_InvalidContact(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Request(context.Background(), "not-an-email@")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.Equal(t, 0, f.store.Len())
}

func TestSend_RetriesTransientFailure(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendEmail", mock.Anything, "a@b.com", mock.Anything, mock.Anything).
		Return(errors.New("421 try later")).Once()
	f.mailer.On("SendEmail", mock.Anything, "a@b.com", mock.Anything, mock.Anything).
		Return(nil).Once()

	_, err := f.svc.Send(context.Background(), "a@b.com", domain.ChannelEmail)
	require.NoError(t, err)
	f.mailer.AssertNumberOfCalls(t, "SendEmail", 2)
}

func TestSend_DeliveryFailureRemovesSession(t *testing.T) {
	f := newFixture(t)
	f.sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("unreachable"))

	_, err := f.svc.Send(context.Background(), "+15551234567", domain.ChannelPhone)
	assert.True(t, errors.Is(err, domain.ErrDelivery))
	assert.Equal(t, 0, f.store.Len())
}

func TestSend_BindsSubject(t *testing.T) {
	f := newFixture(t)
	f.sms.On("SendSMS", mock.Anything, mock.Anything, mock.Anything).Run(f.captureCode(2)).Return(nil)

	ch, err := f.svc.Send(context.Background(), "+15551234567", domain.ChannelPhone, verification.WithSubject("uid-1"))
	require.NoError(t, err)

	res, err := f.svc.Verify(context.Background(), ch.SessionID, f.code)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", res.SubjectID)
}

func TestVerify_Outcomes(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Run(f.captureCode(3)).Return(nil)
	ch, err := f.svc.Send(context.Background(), "a@b.com", domain.ChannelEmail)
	require.NoError(t, err)

	wrong := "000000"
	if f.code == wrong {
		wrong = "111111"
	}
	res, err := f.svc.Verify(context.Background(), ch.SessionID, wrong)
	assert.True(t, errors.Is(err, domain.ErrCodeMismatch))
	assert.Equal(t, verification.OutcomeCodeMismatch, res.Outcome)

	_, err = f.svc.Verify(context.Background(), ch.SessionID, f.code)
	require.NoError(t, err)

	_, err = f.svc.Verify(context.Background(), ch.SessionID, f.code)
	assert.True(t, errors.Is(err, domain.ErrAlreadyUsed))

	_, err = f.svc.Verify(context.Background(), "missing", f.code)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = f.svc.Verify(context.Background(), "", "")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}
