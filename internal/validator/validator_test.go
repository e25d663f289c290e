package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,is-self-role"`
}

type subscribeForm struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	Keys     struct {
		Auth string `json:"auth" validate:"required"`
	} `json:"keys"`
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(&registerForm{Email: "nope", Password: "short", Role: "admin"})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "This field is required", vErr.Errors["name"])
	assert.Equal(t, "Must be a valid email address", vErr.Errors["email"])
	assert.Contains(t, vErr.Errors["password"], "at least 8")
	assert.Contains(t, vErr.Errors, "role")
}

func TestValidate_NestedFieldPath(t *testing.T) {
	v := New()

	err := v.Validate(&subscribeForm{Endpoint: "https://push.example/abc"})
	require.Error(t, err)

	vErr := err.(*ValidationError)
	assert.Contains(t, vErr.Errors, "keys.auth")
}

func TestValidate_Passes(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&registerForm{
		Name: "Ann", Email: "ann@example.com", Password: "password123", Role: "agent",
	}))
}
