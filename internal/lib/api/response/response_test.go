package response

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
}

func TestValidationError_KeysAreJSONFieldNames(t *testing.T) {
	validate := NewValidator()

	err := validate.Struct(registerForm{})
	require.Error(t, err)

	fields := ValidationError(err.(validator.ValidationErrors))

	for _, key := range []string{"name", "email", "password", "password_confirmation"} {
		require.Contains(t, fields.Errors, key)
	}
	require.Equal(t, []string{"The name field is required."}, fields.Errors["name"])
}

func TestValidationError_Messages(t *testing.T) {
	validate := NewValidator()

	err := validate.Struct(registerForm{
		Name:                 "A",
		Email:                "not-an-email",
		Password:             "short",
		PasswordConfirmation: "different",
	})
	require.Error(t, err)

	fields := ValidationError(err.(validator.ValidationErrors))

	require.Equal(t, []string{"The email field must be a valid email address."}, fields.Errors["email"])
	require.Equal(t, []string{"The password field must be at least 8 characters."}, fields.Errors["password"])
}

func TestValidationError_ConfirmationMismatch(t *testing.T) {
	validate := NewValidator()

	err := validate.Struct(registerForm{
		Name:                 "A",
		Email:                "a@x.com",
		Password:             "password1",
		PasswordConfirmation: "password2",
	})
	require.Error(t, err)

	fields := ValidationError(err.(validator.ValidationErrors))
	require.Equal(t, []string{"The password field confirmation does not match."}, fields.Errors["password"])
}

func TestField_SingleEntryMap(t *testing.T) {
	fields := Field("email", "The provided credentials are incorrect")

	require.Equal(t, map[string][]string{
		"email": {"The provided credentials are incorrect"},
	}, fields.Errors)
}
