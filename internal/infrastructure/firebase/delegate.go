// Package firebase adapts Firebase Auth to the identity delegate the sign-in
// flows depend on.
package firebase

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/go-label-api/internal/config"
	"github.com/go-label-api/internal/domain"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

type authClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	GetUserByPhoneNumber(ctx context.Context, phone string) (*auth.UserRecord, error)
	CreateUser(ctx context.Context, user *auth.UserToCreate) (*auth.UserRecord, error)
	CustomToken(ctx context.Context, uid string) (string, error)
}

var isUserNotFound = auth.IsUserNotFound

// NewApp initializes the Firebase app shared by Auth and Firestore.
// Without FIREBASE_CREDENTIALS_FILE the SDK falls back to application default credentials.
func NewApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	return app, nil
}

// Delegate verifies provider-issued ID tokens, reads custom claims, mints
// custom tokens and provisions phone-number subjects.
type Delegate struct {
	client authClient
}

func NewDelegate(ctx context.Context, app *firebase.App) (*Delegate, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &Delegate{client: client}, nil
}

// VerifyExternalToken returns a domain.ErrUnauthorized-wrapped error if the
// token is invalid, expired or revoked.
func (d *Delegate) VerifyExternalToken(ctx context.Context, token string) (*domain.ExternalIdentity, error) {
	if token == "" {
		return nil, fmt.Errorf("identity token is required: %w", domain.ErrUnauthorized)
	}
	t, err := d.client.VerifyIDToken(ctx, token)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("identity token rejected")
		return nil, fmt.Errorf("invalid identity token: %w", domain.ErrUnauthorized)
	}
	phone, _ := t.Claims["phone_number"].(string)
	email, _ := t.Claims["email"].(string)
	return &domain.ExternalIdentity{
		Subject:     t.UID,
		PhoneNumber: phone,
		Email:       email,
		Claims:      t.Claims,
	}, nil
}

// Claims returns the custom claims attached to uid; a subject without
// claims yields an empty map.
func (d *Delegate) Claims(ctx context.Context, uid string) (map[string]interface{}, error) {
	u, err := d.client.GetUser(ctx, uid)
	if err != nil {
		if isUserNotFound(err) {
			return nil, fmt.Errorf("identity subject not found: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get identity subject: %w", err)
	}
	if u.CustomClaims == nil {
		return map[string]interface{}{}, nil
	}
	return u.CustomClaims, nil
}

func (d *Delegate) IssueCustomToken(ctx context.Context, uid string) (string, error) {
	token, err := d.client.CustomToken(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("issue custom token: %w", err)
	}
	return token, nil
}

// EnsurePhoneSubject returns the uid registered for phone, creating the
// subject on first use.
func (d *Delegate) EnsurePhoneSubject(ctx context.Context, phone string) (string, error) {
	u, err := d.client.GetUserByPhoneNumber(ctx, phone)
	if err == nil {
		return u.UID, nil
	}
	if !isUserNotFound(err) {
		return "", fmt.Errorf("look up identity subject: %w", err)
	}
	u, err = d.client.CreateUser(ctx, (&auth.UserToCreate{}).PhoneNumber(phone))
	if err != nil {
		return "", fmt.Errorf("create identity subject: %w", err)
	}
	log.Ctx(ctx).Info().Str("uid", u.UID).Msg("identity subject created")
	return u.UID, nil
}
