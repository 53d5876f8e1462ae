// Package cursor encodes opaque pagination cursors handed to API clients.
package cursor

import (
	"encoding/base64"
	"fmt"

	"github.com/go-label-api/internal/domain"
)

func Encode(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// Decode returns domain.ErrBadRequest for anything Encode could not have produced.
func Decode(c string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(c)
	if err != nil || len(b) == 0 {
		return "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
	}
	return string(b), nil
}
