package tag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-label-api/internal/application/verification"
	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/pkg/contact"
	"github.com/go-label-api/internal/pkg/qrcode"
	"github.com/rs/zerolog/log"
)

// Attribute names shared by the DynamoDB and Firestore backends.
const (
	fieldName        = "name"
	fieldEmail       = "email"
	fieldAddress     = "address"
	fieldPhoneNumber = "phone_number"
)

const (
	tagIDLength      = 8
	maxIDAttempts    = 3
	defaultPageLimit = 20
	maxPageLimit     = 100
	imageDateLayout  = "02012006"
	// S3 caps presigned links at seven days.
	imageLinkTTL     = 7 * 24 * time.Hour
)

type Service interface {
	// Get is the public view: an inactive tag only reveals that it is unclaimed.
	Get(ctx context.Context, tagID string) (*domain.Tag, error)
	Claim(ctx context.Context, tagID string, req domain.ClaimTagRequest) (*domain.Tag, error)
	Update(ctx context.Context, tagID string, req domain.UpdateTagRequest) (*domain.Tag, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.Tag, string, error)
	Generate(ctx context.Context, req domain.GenerateTagsRequest) ([]domain.GeneratedTag, error)
}

type tagStore interface {
	Get(ctx context.Context, tagID string) (*domain.Tag, error)
	Create(ctx context.Context, t *domain.Tag) error
	Activate(ctx context.Context, t *domain.Tag) error
	Update(ctx context.Context, tagID string, updates map[string]interface{}) error
	ListPage(ctx context.Context, limit int32, cursor string) ([]domain.Tag, string, error)
}

// confirmations exposes verified-but-unconsumed sessions.
type confirmations interface {
	ConfirmedContact(ctx context.Context, sessionID string) (string, bool)
	Consume(ctx context.Context, sessionID string) (string, bool)
}

type imageStore interface {
	PutPNG(ctx context.Context, key string, img []byte) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type service struct {
	repo     tagStore
	sessions confirmations
	images   imageStore
	baseURL  string
	now      func() time.Time
}

type ServiceDeps struct {
	TagRepo       tagStore
	Confirmations confirmations
	Images        imageStore
	// PublicBaseURL is the origin encoded into QR images, without a trailing slash.
	PublicBaseURL string
	Now           func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     deps.TagRepo,
		sessions: deps.Confirmations,
		images:   deps.Images,
		baseURL:  deps.PublicBaseURL,
		now:      now,
	}
}

func (s *service) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	t, err := s.repo.Get(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return &domain.Tag{TagID: t.TagID}, nil
	}
	t.CreatedFor = ""
	return t, nil
}

func (s *service) Claim(ctx context.Context, tagID string, req domain.ClaimTagRequest) (*domain.Tag, error) {
	confirmed, ok := s.sessions.ConfirmedContact(ctx, req.SessionID)
	if !ok {
		return nil, fmt.Errorf("contact not verified: %w", domain.ErrUnauthorized)
	}
	if !contact.Matches(confirmed, req.Email) && !contact.Matches(confirmed, req.PhoneNumber) {
		return nil, fmt.Errorf("verified contact does not match the declared email or phone: %w", domain.ErrForbidden)
	}
	email, phone, err := normalizeOptional(req.Email, req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.Get(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if t.Active {
		return nil, fmt.Errorf("tag %s is already active: %w", tagID, domain.ErrConflict)
	}

	now := s.now().UTC()
	t.Active = true
	t.Name = req.Name
	t.Email = email
	t.Address = req.Address
	t.PhoneNumber = phone
	t.ActivationDate = &now
	t.UpdatedAt = now
	if err := s.consume(ctx, req.SessionID); err != nil {
		return nil, err
	}
	if err := s.repo.Activate(ctx, t); err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Str("tag_id", tagID).Msg("tag claimed")
	return t, nil
}

func (s *service) Update(ctx context.Context, tagID string, req domain.UpdateTagRequest) (*domain.Tag, error) {
	confirmed, ok := s.sessions.ConfirmedContact(ctx, req.SessionID)
	if !ok {
		return nil, fmt.Errorf("contact not verified: %w", domain.ErrUnauthorized)
	}
	t, err := s.repo.Get(ctx, tagID)
	if err != nil {
		return nil, err
	}
	if !t.Active {
		return nil, fmt.Errorf("tag %s is not active: %w", tagID, domain.ErrConflict)
	}
	if !contact.Matches(confirmed, t.Email) && !contact.Matches(confirmed, t.PhoneNumber) {
		return nil, fmt.Errorf("verified contact is not the tag owner: %w", domain.ErrForbidden)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates[fieldName] = *req.Name
	}
	if req.Address != nil {
		updates[fieldAddress] = *req.Address
	}
	if req.Email != nil {
		email, _, err := normalizeOptional(*req.Email, "")
		if err != nil {
			return nil, err
		}
		updates[fieldEmail] = email
	}
	if req.PhoneNumber != nil {
		_, phone, err := normalizeOptional("", *req.PhoneNumber)
		if err != nil {
			return nil, err
		}
		updates[fieldPhoneNumber] = phone
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	if err := s.consume(ctx, req.SessionID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, tagID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, tagID)
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.Tag, string, error) {
	switch {
	case limit <= 0:
		limit = defaultPageLimit
	case limit > maxPageLimit:
		limit = maxPageLimit
	}
	return s.repo.ListPage(ctx, int32(limit), cursor)
}

func (s *service) Generate(ctx context.Context, req domain.GenerateTagsRequest) ([]domain.GeneratedTag, error) {
	if req.Count <= 0 {
		return nil, fmt.Errorf("count must be positive: %w", domain.ErrBadRequest)
	}
	out := make([]domain.GeneratedTag, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		g, err := s.generateOne(ctx, req.CreatedFor)
		if err != nil {
			return out, err
		}
		out = append(out, *g)
	}
	log.Ctx(ctx).Info().Int("count", len(out)).Str("created_for", req.CreatedFor).Msg("tags generated")
	return out, nil
}

func (s *service) generateOne(ctx context.Context, createdFor string) (*domain.GeneratedTag, error) {
	now := s.now().UTC()
	var t *domain.Tag
	for attempt := 0; ; attempt++ {
		id, err := verification.GenerateCode(tagIDLength, verification.Alphanumeric)
		if err != nil {
			return nil, err
		}
		t = &domain.Tag{TagID: id, CreatedFor: createdFor, CreatedAt: now, UpdatedAt: now}
		err = s.repo.Create(ctx, t)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConflict) || attempt+1 >= maxIDAttempts {
			return nil, err
		}
	}

	url := s.baseURL + "/qr/" + t.TagID
	img, err := qrcode.PNG(url, qrcode.DefaultSize)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("qr/%s_%s.png", now.Format(imageDateLayout), t.TagID)
	if _, err := s.images.PutPNG(ctx, key, img); err != nil {
		return nil, err
	}
	g := &domain.GeneratedTag{TagID: t.TagID, URL: url, ImageKey: key}
	if link, err := s.images.PresignedURL(ctx, key, imageLinkTTL); err == nil {
		g.ImageURL = link
	} else {
		log.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("presign QR image")
	}
	return g, nil
}

// consume spends the verification session before the write it authorizes.
// A write that then fails costs the user a fresh verification.
func (s *service) consume(ctx context.Context, sessionID string) error {
	if _, ok := s.sessions.Consume(ctx, sessionID); !ok {
		return fmt.Errorf("verification session already used or expired: %w", domain.ErrUnauthorized)
	}
	return nil
}

// normalizeOptional normalizes whichever of email and phone is non-empty.
func normalizeOptional(email, phone string) (string, string, error) {
	var err error
	if email != "" {
		if email, err = contact.NormalizeEmail(email); err != nil {
			return "", "", err
		}
	}
	if phone != "" {
		if phone, err = contact.NormalizePhone(phone); err != nil {
			return "", "", err
		}
	}
	return email, phone, nil
}
