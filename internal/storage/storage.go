// Package storage selects and opens the persistence backend configured for
// this process.
package storage

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-label-api/internal/application/verification"
	"github.com/go-label-api/internal/config"
	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/infrastructure/dynamo"
	"github.com/go-label-api/internal/infrastructure/firestoredb"
	"github.com/rs/zerolog/log"
)

const (
	BackendDynamo    = "dynamo"
	BackendFirestore = "firestore"
	OTPStoreMemory   = "memory"
)

// TagRepository persists tags. Activate flips an inactive tag to active with
// its owner fields and fails with domain.ErrConflict if it was already active.
type TagRepository interface {
	Create(ctx context.Context, t *domain.Tag) error
	Get(ctx context.Context, tagID string) (*domain.Tag, error)
	Activate(ctx context.Context, t *domain.Tag) error
	Update(ctx context.Context, tagID string, updates map[string]interface{}) error
	ListPage(ctx context.Context, limit int32, cursor string) ([]domain.Tag, string, error)
}

type AdminRepository interface {
	Put(ctx context.Context, a *domain.Admin) error
	Get(ctx context.Context, adminID string) (*domain.Admin, error)
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	List(ctx context.Context) ([]domain.Admin, error)
	Update(ctx context.Context, adminID string, updates map[string]interface{}) error
	Delete(ctx context.Context, adminID string) error
}

type UserRepository interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
}

// Repos bundles the repositories of one backend.
type Repos struct {
	Tags   TagRepository
	Admins AdminRepository
	Users  UserRepository

	cfg     *config.Config
	dynamo  *dynamodb.Client
	closers []func() error
}

// Open connects to the backend named by cfg.PersistenceBackend. app is only
// needed for Firestore and may be nil otherwise.
func Open(ctx context.Context, cfg *config.Config, app *firebase.App) (*Repos, error) {
	r := &Repos{cfg: cfg}
	switch cfg.PersistenceBackend {
	case BackendDynamo:
		client, err := r.dynamoClient(ctx)
		if err != nil {
			return nil, err
		}
		r.Tags = dynamo.NewTagRepo(client, cfg.DynamoTables.Tags)
		r.Admins = dynamo.NewAdminRepo(client, cfg.DynamoTables.Admins)
		r.Users = dynamo.NewUserRepo(client, cfg.DynamoTables.Users)
	case BackendFirestore:
		if app == nil {
			return nil, errors.New("firestore backend needs a firebase app")
		}
		client, err := firestoredb.NewClient(ctx, app)
		if err != nil {
			return nil, err
		}
		r.closers = append(r.closers, client.Close)
		r.Tags = firestoredb.NewTagRepo(client)
		r.Admins = firestoredb.NewAdminRepo(client)
		r.Users = firestoredb.NewUserRepo(client)
	default:
		return nil, fmt.Errorf("unknown persistence backend %q", cfg.PersistenceBackend)
	}
	log.Info().Str("backend", cfg.PersistenceBackend).Msg("persistence backend opened")
	return r, nil
}

// SessionStore returns the verification session store named by cfg.OTPStore.
// The DynamoDB store lets several instances share pending sessions.
func (r *Repos) SessionStore(ctx context.Context) (verification.Store, error) {
	switch r.cfg.OTPStore {
	case OTPStoreMemory:
		return verification.NewMemoryStore(r.cfg.OTPTTL), nil
	case BackendDynamo:
		client, err := r.dynamoClient(ctx)
		if err != nil {
			return nil, err
		}
		return dynamo.NewVerificationSessionRepo(client, r.cfg.DynamoTables.VerificationSessions), nil
	default:
		return nil, fmt.Errorf("unknown otp store %q", r.cfg.OTPStore)
	}
}

// Close releases backend clients.
func (r *Repos) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// dynamoClient creates the DynamoDB client once and bootstraps its tables.
func (r *Repos) dynamoClient(ctx context.Context) (*dynamodb.Client, error) {
	if r.dynamo != nil {
		return r.dynamo, nil
	}
	client, err := dynamo.NewClient(ctx, r.cfg)
	if err != nil {
		return nil, err
	}
	dynamo.Bootstrap(ctx, client, r.cfg.DynamoTables)
	r.dynamo = client
	return client, nil
}
