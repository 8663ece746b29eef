package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactRequest struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,phone=91"`
	Time  string `json:"time" validate:"required,timeofday"`
}

func TestIsValidPhone(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"+919876543210", true},
		{"919876543210", true},
		{"+91987654321", false},
		{"+9198765432100", false},
		{"+91987654321a", false},
		{"+14155552671", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidPhone(tt.number, "91"), tt.number)
	}
}

func TestIsValidPhone_UnsupportedCountry(t *testing.T) {
	assert.False(t, IsValidPhone("+14155552671", "1"))
}

func TestCustomValidator_Tags(t *testing.T) {
	v := NewValidator()

	ok := contactRequest{Email: "a@example.com", Phone: "+919876543210", Time: "09:30"}
	assert.NoError(t, v.Validate(&ok))

	bad := contactRequest{Email: "nope", Phone: "+91123", Time: "25:00"}
	err := v.Validate(&bad)
	require.Error(t, err)

	formatted := v.FormatValidationErrors(err)
	assert.Contains(t, formatted, "email")
	assert.Contains(t, formatted["phone"], "+91")
	assert.Contains(t, formatted, "time")
}

func TestCustomValidator_RequiredUsesJSONName(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&contactRequest{})
	require.Error(t, err)

	formatted := v.FormatValidationErrors(err)
	assert.Equal(t, "email is required", formatted["email"])
	assert.Equal(t, "phone is required", formatted["phone"])
}
