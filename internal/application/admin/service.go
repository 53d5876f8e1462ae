package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/pkg/id"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// Attribute names used in partial update maps.
const (
	fieldEmail        = "email"
	fieldPasswordHash = "password_hash"
	fieldRole         = "role"
	fieldEnabled      = "enabled"
	fieldLastLoginAt  = "last_login_at"
)

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)

type LoginResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Admin     *domain.Admin `json:"admin"`
}

type Service interface {
	Login(ctx context.Context, req domain.AdminLoginRequest) (*LoginResult, error)
	Me(ctx context.Context, username string) (*domain.Admin, error)
	Create(ctx context.Context, req domain.CreateAdminRequest) (*domain.Admin, error)
	List(ctx context.Context) ([]domain.Admin, error)
	Get(ctx context.Context, adminID string) (*domain.Admin, error)
	// Update applies req on behalf of actor, who may not demote or disable themselves.
	Update(ctx context.Context, actor, adminID string, req domain.UpdateAdminRequest) (*domain.Admin, error)
	Delete(ctx context.Context, actor, adminID string) error
	// SeedSuperadmin creates the initial superadmin when no admin has that username.
	SeedSuperadmin(ctx context.Context, username, password, email string) error
}

type adminStore interface {
	Put(ctx context.Context, a *domain.Admin) error
	Get(ctx context.Context, adminID string) (*domain.Admin, error)
	GetByUsername(ctx context.Context, username string) (*domain.Admin, error)
	List(ctx context.Context) ([]domain.Admin, error)
	Update(ctx context.Context, adminID string, updates map[string]interface{}) error
	Delete(ctx context.Context, adminID string) error
}

type tokenIssuer interface {
	Issue(subject string, role domain.Role) (string, time.Time, error)
}

type service struct {
	repo   adminStore
	tokens tokenIssuer
	cost   int
	now    func() time.Time
}

type ServiceDeps struct {
	AdminRepo adminStore
	Tokens    tokenIssuer
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Now        func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:   deps.AdminRepo,
		tokens: deps.Tokens,
		cost:   deps.BcryptCost,
		now:    deps.Now,
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Login(ctx context.Context, req domain.AdminLoginRequest) (*LoginResult, error) {
	a, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	if !a.Enabled {
		return nil, fmt.Errorf("account disabled: %w", domain.ErrForbidden)
	}
	token, exp, err := s.tokens.Issue(a.Username, a.Role)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.repo.Update(ctx, a.AdminID, map[string]interface{}{fieldLastLoginAt: now}); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("admin_id", a.AdminID).Msg("record last login")
	} else {
		a.LastLoginAt = &now
	}
	log.Ctx(ctx).Info().Str("username", a.Username).Str("role", a.Role.String()).Msg("admin logged in")
	return &LoginResult{Token: token, ExpiresAt: exp, Admin: a}, nil
}

func (s *service) Me(ctx context.Context, username string) (*domain.Admin, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *service) Create(ctx context.Context, req domain.CreateAdminRequest) (*domain.Admin, error) {
	role, err := domain.ParseRole(req.Role)
	if err != nil || role == domain.RoleUser {
		return nil, fmt.Errorf("role must be ADMIN or SUPERADMIN: %w", domain.ErrBadRequest)
	}
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username %q is taken: %w", req.Username, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	a := &domain.Admin{
		AdminID:      id.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *service) List(ctx context.Context) ([]domain.Admin, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, adminID string) (*domain.Admin, error) {
	return s.repo.Get(ctx, adminID)
}

func (s *service) Update(ctx context.Context, actor, adminID string, req domain.UpdateAdminRequest) (*domain.Admin, error) {
	a, err := s.repo.Get(ctx, adminID)
	if err != nil {
		return nil, err
	}
	self := a.Username == actor
	updates := map[string]interface{}{}
	if req.Email != nil {
		updates[fieldEmail] = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.cost)
		if err != nil {
			return nil, err
		}
		updates[fieldPasswordHash] = string(hash)
	}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil || role == domain.RoleUser {
			return nil, fmt.Errorf("role must be ADMIN or SUPERADMIN: %w", domain.ErrBadRequest)
		}
		if self && role != a.Role {
			return nil, fmt.Errorf("cannot change your own role: %w", domain.ErrForbidden)
		}
		updates[fieldRole] = role
	}
	if req.Enabled != nil {
		if self && !*req.Enabled {
			return nil, fmt.Errorf("cannot disable your own account: %w", domain.ErrForbidden)
		}
		updates[fieldEnabled] = *req.Enabled
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	if err := s.repo.Update(ctx, adminID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, adminID)
}

func (s *service) Delete(ctx context.Context, actor, adminID string) error {
	a, err := s.repo.Get(ctx, adminID)
	if err != nil {
		return err
	}
	if a.Username == actor {
		return fmt.Errorf("cannot delete your own account: %w", domain.ErrForbidden)
	}
	return s.repo.Delete(ctx, adminID)
}

func (s *service) SeedSuperadmin(ctx context.Context, username, password, email string) error {
	if username == "" || password == "" {
		log.Ctx(ctx).Info().Msg("superadmin seed not configured")
		return nil
	}
	_, err := s.Create(ctx, domain.CreateAdminRequest{
		Username: username,
		Email:    email,
		Password: password,
		Role:     string(domain.RoleSuperadmin),
	})
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed superadmin: %w", err)
	}
	log.Ctx(ctx).Info().Str("username", username).Msg("superadmin created")
	return nil
}
