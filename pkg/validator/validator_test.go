package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/upresume/pkg/validator"
)

type signUp struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=8,max=128"`
}

func TestStruct(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		err := validator.Struct(signUp{Name: "Jane", Email: "jane@example.com", Password: "correct-horse"})
		require.NoError(t, err)
	})

	t.Run("field names come from tags", func(t *testing.T) {
		t.Parallel()
		err := validator.Struct(signUp{Email: "not-an-email", Password: "short"})
		require.Error(t, err)
		require.True(t, validator.IsValidationError(err))

		verrs, ok := validator.ExtractValidationErrors(err)
		require.True(t, ok)
		fields := verrs.Fields()
		require.Equal(t, "is required", fields["name"])
		require.Equal(t, "must be a valid email address", fields["email"])
		require.Equal(t, "must be at least 8 characters long", fields["password"])
	})

	t.Run("wrapped errors still match", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("sign-up: %w", validator.Struct(signUp{}))
		require.ErrorIs(t, err, validator.ErrValidation)
	})
}

func TestVar(t *testing.T) {
	t.Parallel()

	require.NoError(t, validator.Var("email", "known@example.com", "required,email"))

	err := validator.Var("email", "nope", "required,email")
	verrs, ok := validator.ExtractValidationErrors(err)
	require.True(t, ok)
	require.Len(t, verrs, 1)
	require.Equal(t, "email", verrs[0].Field)
	require.Equal(t, "email", verrs[0].Rule)
}

func TestExtractValidationErrors_Other(t *testing.T) {
	t.Parallel()

	_, ok := validator.ExtractValidationErrors(errors.New("boom"))
	require.False(t, ok)
	require.False(t, validator.IsValidationError(nil))
}
