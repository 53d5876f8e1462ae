package firestoredb

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/go-label-api/internal/domain"
	"google.golang.org/api/iterator"
)

type UserRepo struct {
	client *firestore.Client
}

func NewUserRepo(client *firestore.Client) *UserRepo {
	return &UserRepo{client: client}
}

func (r *UserRepo) coll() *firestore.CollectionRef {
	return r.client.Collection(collUsers)
}

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	_, err := r.coll().Doc(u.UserID).Set(ctx, u)
	return err
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	snap, err := r.coll().Doc(userID).Get(ctx)
	if err != nil {
		return nil, mapErr(err, "user")
	}
	return decodeUser(snap)
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	iter := r.coll().Where("phone_number", "==", phone).Limit(1).Documents(ctx)
	defer iter.Stop()
	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return decodeUser(snap)
}

func decodeUser(snap *firestore.DocumentSnapshot) (*domain.User, error) {
	var u domain.User
	if err := snap.DataTo(&u); err != nil {
		return nil, err
	}
	u.UserID = snap.Ref.ID
	return &u, nil
}
