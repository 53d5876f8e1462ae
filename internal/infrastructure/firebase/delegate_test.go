package firebase

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/go-label-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var errNoUser = errors.New("no user")

type mockAuth struct{ mock.Mock }

func (m *mockAuth) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	args := m.Called(ctx, idToken)
	if t, _ := args.Get(0).(*auth.Token); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuth) GetUser(ctx context.Context, uid string) (*auth.UserRecord, error) {
	args := m.Called(ctx, uid)
	if u, _ := args.Get(0).(*auth.UserRecord); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuth) GetUserByPhoneNumber(ctx context.Context, phone string) (*auth.UserRecord, error) {
	args := m.Called(ctx, phone)
	if u, _ := args.Get(0).(*auth.UserRecord); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuth) CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error) {
	args := m.Called(ctx, user)
	if u, _ := args.Get(0).(*auth.UserRecord); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuth) CustomToken(ctx context.Context, uid string) (string, error) {
	args := m.Called(ctx, uid)
	return args.String(0), args.Error(1)
}

func record(uid string) *auth.UserRecord {
	return &auth.UserRecord{UserInfo: &auth.UserInfo{UID: uid}}
}

func stubNotFound(t *testing.T) {
	t.Helper()
	orig := isUserNotFound
	isUserNotFound = func(err error) bool { return errors.Is(err, errNoUser) }
	t.Cleanup(func() { isUserNotFound = orig })
}

func TestVerifyExternalToken_OK(t *testing.T) {
	m := new(mockAuth)
	m.On("VerifyIDToken", mock.Anything, "id-token").Return(&auth.Token{
		UID:    "uid-1",
		Claims: map[string]interface{}{"phone_number": "+15551234567"},
	}, nil)

	d := &Delegate{client: m}
	id, err := d.VerifyExternalToken(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", id.Subject)
	assert.Equal(t, "+15551234567", id.PhoneNumber)
	assert.Empty(t, id.Email)
}

func TestVerifyExternalToken_Invalid(t *testing.T) {
	m := new(mockAuth)
	m.On("VerifyIDToken", mock.Anything, "bad").Return(nil, errors.New("signature"))

	d := &Delegate{client: m}
	_, err := d.VerifyExternalToken(context.Background(), "bad")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestVerifyExternalToken_Empty(t *testing.T) {
	d := &Delegate{client: new(mockAuth)}
	_, err := d.VerifyExternalToken(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestClaims(t *testing.T) {
	m := new(mockAuth)
	u := record("uid-1")
	u.CustomClaims = map[string]interface{}{"role": "USER"}
	m.On("GetUser", mock.Anything, "uid-1").Return(u, nil)
	m.On("GetUser", mock.Anything, "uid-2").Return(record("uid-2"), nil)

	d := &Delegate{client: m}
	claims, err := d.Claims(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "USER", claims["role"])

	claims, err = d.Claims(context.Background(), "uid-2")
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestClaims_NotFound(t *testing.T) {
	stubNotFound(t)
	m := new(mockAuth)
	m.On("GetUser", mock.Anything, "ghost").Return(nil, errNoUser)

	d := &Delegate{client: m}
	_, err := d.Claims(context.Background(), "ghost")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestEnsurePhoneSubject_Existing(t *testing.T) {
	m := new(mockAuth)
	m.On("GetUserByPhoneNumber", mock.Anything, "+15551234567").Return(record("uid-1"), nil)

	d := &Delegate{client: m}
	uid, err := d.EnsurePhoneSubject(context.Background(), "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", uid)
	m.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestEnsurePhoneSubject_Creates(t *testing.T) {
	stubNotFound(t)
	m := new(mockAuth)
	m.On("GetUserByPhoneNumber", mock.Anything, "+15551234567").Return(nil, errNoUser)
	m.On("CreateUser", mock.Anything, mock.Anything).Return(record("uid-new"), nil)

	d := &Delegate{client: m}
	uid, err := d.EnsurePhoneSubject(context.Background(), "+15551234567")
	require.NoError(t, err)
	assert.Equal(t, "uid-new", uid)
}

func TestEnsurePhoneSubject_LookupFailure(t *testing.T) {
	stubNotFound(t)
	m := new(mockAuth)
	m.On("GetUserByPhoneNumber", mock.Anything, mock.Anything).Return(nil, errors.New("unavailable"))

	d := &Delegate{client: m}
	_, err := d.EnsurePhoneSubject(context.Background(), "+15551234567")
	assert.ErrorContains(t, err, "unavailable")
	m.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestIssueCustomToken(t *testing.T) {
	m := new(mockAuth)
	m.On("CustomToken", mock.Anything, "uid-1").Return("custom", nil)

	d := &Delegate{client: m}
	tok, err := d.IssueCustomToken(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "custom", tok)
}
