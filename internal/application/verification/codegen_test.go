package verification

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-label-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode(6, Digits)
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(Digits, r), "unexpected symbol %q", r)
		}
	}
}

func TestGenerateCode_CoversAlphabet(t *testing.T) {
	seen := map[rune]bool{}
	for i := 0; i < 500; i++ {
		code, err := GenerateCode(6, Digits)
		require.NoError(t, err)
		for _, r := range code {
			seen[r] = true
		}
	}
	assert.Len(t, seen, len(Digits))
}

func TestGenerateCode_InvalidParams(t *testing.T) {
	_, err := GenerateCode(0, Digits)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	_, err = GenerateCode(6, "")
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}
