package firestoredb

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-label-api/internal/domain"
	"google.golang.org/api/iterator"
)

type AdminRepo struct {
	client *firestore.Client
}

func NewAdminRepo(client *firestore.Client) *AdminRepo {
	return &AdminRepo{client: client}
}

func (r *AdminRepo) coll() *firestore.CollectionRef {
	return r.client.Collection(collAdmins)
}

func (r *AdminRepo) Put(ctx context.Context, a *domain.Admin) error {
	_, err := r.coll().Doc(a.AdminID).Set(ctx, a)
	return err
}

func (r *AdminRepo) Get(ctx context.Context, adminID string) (*domain.Admin, error) {
	snap, err := r.coll().Doc(adminID).Get(ctx)
	if err != nil {
		return nil, mapErr(err, "admin")
	}
	return decodeAdmin(snap)
}

func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	iter := r.coll().Where("username", "==", username).Limit(1).Documents(ctx)
	defer iter.Stop()
	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("admin not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeAdmin(snap)
}

func (r *AdminRepo) List(ctx context.Context) ([]domain.Admin, error) {
	snaps, err := r.coll().Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	admins := make([]domain.Admin, 0, len(snaps))
	for _, snap := range snaps {
		a, err := decodeAdmin(snap)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *a)
	}
	return admins, nil
}

func (r *AdminRepo) Update(ctx context.Context, adminID string, fields map[string]interface{}) error {
	updates, err := toUpdates(fields, time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = r.coll().Doc(adminID).Update(ctx, updates)
	return mapErr(err, "admin")
}

func (r *AdminRepo) Delete(ctx context.Context, adminID string) error {
	_, err := r.coll().Doc(adminID).Delete(ctx)
	return err
}

func decodeAdmin(snap *firestore.DocumentSnapshot) (*domain.Admin, error) {
	var a domain.Admin
	if err := snap.DataTo(&a); err != nil {
		return nil, err
	}
	a.AdminID = snap.Ref.ID
	return &a, nil
}
