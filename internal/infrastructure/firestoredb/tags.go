package firestoredb

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-label-api/internal/domain"
	"github.com/go-label-api/internal/pkg/cursor"
)

type TagRepo struct {
	client *firestore.Client
}

func NewTagRepo(client *firestore.Client) *TagRepo {
	return &TagRepo{client: client}
}

func (r *TagRepo) doc(tagID string) *firestore.DocumentRef {
	return r.client.Collection(collTags).Doc(tagID)
}

func (r *TagRepo) Create(ctx context.Context, t *domain.Tag) error {
	_, err := r.doc(t.TagID).Create(ctx, t)
	return mapErr(err, "tag")
}

func (r *TagRepo) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	snap, err := r.doc(tagID).Get(ctx)
	if err != nil {
		return nil, mapErr(err, "tag")
	}
	var t domain.Tag
	if err := snap.DataTo(&t); err != nil {
		return nil, err
	}
	t.TagID = snap.Ref.ID
	return &t, nil
}

// Activate overwrites an inactive tag inside a transaction so two concurrent
// claims cannot both succeed.
func (r *TagRepo) Activate(ctx context.Context, t *domain.Tag) error {
	ref := r.doc(t.TagID)
	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return mapErr(err, "tag")
		}
		active, _ := snap.Data()["active"].(bool)
		if active {
			return fmt.Errorf("tag %s is already active: %w", t.TagID, domain.ErrConflict)
		}
		return tx.Set(ref, t)
	})
}

func (r *TagRepo) Update(ctx context.Context, tagID string, fields map[string]interface{}) error {
	updates, err := toUpdates(fields, time.Now().UTC())
	if err != nil {
		return err
	}
	_, err = r.doc(tagID).Update(ctx, updates)
	return mapErr(err, "tag")
}

// ListPage orders by document id; the returned cursor is empty on the last page.
func (r *TagRepo) ListPage(ctx context.Context, limit int32, pageCursor string) ([]domain.Tag, string, error) {
	q := r.client.Collection(collTags).OrderBy(firestore.DocumentID, firestore.Asc).Limit(int(limit))
	if pageCursor != "" {
		after, err := cursor.Decode(pageCursor)
		if err != nil {
			return nil, "", err
		}
		q = q.StartAfter(r.doc(after))
	}
	snaps, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", err
	}
	tags := make([]domain.Tag, 0, len(snaps))
	for _, snap := range snaps {
		var t domain.Tag
		if err := snap.DataTo(&t); err != nil {
			return nil, "", err
		}
		t.TagID = snap.Ref.ID
		tags = append(tags, t)
	}
	next := ""
	if len(snaps) == int(limit) && len(snaps) > 0 {
		next = cursor.Encode(snaps[len(snaps)-1].Ref.ID)
	}
	return tags, next, nil
}
