package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple address", "user@example.com", "user@example.com", false},
		{"uppercase is lowered", "User@Example.COM", "user@example.com", false},
		{"surrounding whitespace trimmed", "  user@example.com  ", "user@example.com", false},
		{"plus tag", "user+tag@example.com", "user+tag@example.com", false},
		{"dots in local part", "first.last@example.com", "first.last@example.com", false},
		{"subdomain", "user@mail.example.co.uk", "user@mail.example.co.uk", false},
		{"empty", "", "", true},
		{"whitespace only", "   ", "", true},
		{"missing at", "userexample.com", "", true},
		{"missing domain", "user@", "", true},
		{"missing local part", "@example.com", "", true},
		{"missing tld", "user@example", "", true},
		{"space inside", "us er@example.com", "", true},
		{"double at", "user@@example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, err := NewEmail(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, email.Address())
		})
	}
}

func TestNewEmail_TooLong(t *testing.T) {
	local := make([]byte, 250)
	for i := range local {
		local[i] = 'a'
	}
	_, err := NewEmail(string(local) + "@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too long")
}

func TestEmail_Parts(t *testing.T) {
	email := MustNewEmail("first.last@mail.example.com")
	assert.Equal(t, "first.last", email.LocalPart())
	assert.Equal(t, "mail.example.com", email.Domain())
}

func TestEmail_IsRoleAccount(t *testing.T) {
	tests := []struct {
		address string
		role    bool
	}{
		{"info@example.com", true},
		{"support@example.com", true},
		{"noreply@example.com", true},
		{"no-reply@example.com", true},
		{"sales.team@example.com", true},
		{"support+tickets@example.com", true},
		{"alice@example.com", false},
		{"information@example.com", false}, // prefix without separator
		{"helpdesk@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			assert.Equal(t, tt.role, MustNewEmail(tt.address).IsRoleAccount())
		})
	}
}
