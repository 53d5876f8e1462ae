package id

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// New returns a ULID for record keys that should sort by creation time.
func New() string {
	return NewAt(time.Now())
}

func NewAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

// NewOpaque returns a random UUIDv4. It carries no timing information, which
// is what verification session ids handed to clients need.
func NewOpaque() string {
	return uuid.NewString()
}
