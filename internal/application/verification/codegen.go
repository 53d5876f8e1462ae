package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/go-label-api/internal/domain"
)

const (
	Digits       = "0123456789"
	Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateCode draws length symbols uniformly from alphabet using crypto/rand.
func GenerateCode(length int, alphabet string) (string, error) {
	if length <= 0 || len(alphabet) == 0 {
		return "", fmt.Errorf("code length and alphabet must be non-empty: %w", domain.ErrBadRequest)
	}
	max := big.NewInt(int64(len(alphabet)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		b[i] = alphabet[n.Int64()]
	}
	return string(b), nil
}
