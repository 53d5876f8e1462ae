// Package firestoredb stores tags, admins and users in Cloud Firestore.
// Field names match the DynamoDB attributes so services build one update map
// for either backend.
package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/go-label-api/internal/domain"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collTags   = "qrs"
	collAdmins = "admins"
	collUsers  = "users"
)

// NewClient opens the Firestore client of an initialized Firebase app.
func NewClient(ctx context.Context, app *firebase.App) (*firestore.Client, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firestore: %w", err)
	}
	return client, nil
}

// mapErr translates gRPC status codes into domain sentinels.
func mapErr(err error, what string) error {
	switch status.Code(err) {
	case codes.OK:
		return err
	case codes.NotFound:
		return fmt.Errorf("%s not found: %w", what, domain.ErrNotFound)
	case codes.AlreadyExists:
		return fmt.Errorf("%s already exists: %w", what, domain.ErrConflict)
	default:
		return err
	}
}

// toUpdates converts a field map into Firestore updates in sorted path order
// and stamps updated_at.
func toUpdates(fields map[string]interface{}, now time.Time) ([]firestore.Update, error) {
	if len(fields) == 0 {
		return nil, errors.New("no fields to update")
	}
	paths := make([]string, 0, len(fields)+1)
	for k := range fields {
		if k != "updated_at" {
			paths = append(paths, k)
		}
	}
	sort.Strings(paths)
	updates := make([]firestore.Update, 0, len(paths)+1)
	for _, p := range paths {
		updates = append(updates, firestore.Update{Path: p, Value: fields[p]})
	}
	return append(updates, firestore.Update{Path: "updated_at", Value: now}), nil
}
