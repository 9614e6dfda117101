package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"a@b.com", "first.last@sub.example.org"}
	invalid := []string{"", "plain", "a@b", "@b.com x", "a b@c"}

	for _, email := range valid {
		assert.True(t, ValidateEmail(email), email)
	}
	for _, email := range invalid {
		assert.False(t, ValidateEmail(email), email)
	}
}

func TestValidateStruct(t *testing.T) {
	type signup struct {
		Email    string `validate:"required,loose_email"`
		Password string `validate:"required,min=6"`
	}

	assert.Empty(t, ValidateStruct(signup{Email: "a@b.com", Password: "secret1"}))

	errs := ValidateStruct(signup{Email: "nope", Password: "123"})
	require.Len(t, errs, 2)
	assert.Equal(t, "email", errs[0].Field)
	assert.Equal(t, "loose_email", errs[0].Tag)
	assert.Equal(t, "Invalid email address", errs[0].Message)
	assert.Equal(t, "min", errs[1].Tag)
	assert.Equal(t, "6", errs[1].Param)
}
