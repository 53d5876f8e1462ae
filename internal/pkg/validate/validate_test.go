package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email string `validate:"required,email"`
	Count int    `validate:"min=1,max=5"`
}

func TestStruct_OK(t *testing.T) {
	require.NoError(t, Struct(sample{Email: "a@b.co", Count: 2}))
}

func TestStruct_ReportsEachField(t *testing.T) {
	err := Struct(sample{Email: "nope", Count: 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'Email' failed 'email'")
	assert.Contains(t, err.Error(), "field 'Count' failed 'max'")
}

func TestVar(t *testing.T) {
	require.NoError(t, Var("a@b.co", "required,email"))
	assert.ErrorContains(t, Var("", "required,email"), "failed 'required'")
}
