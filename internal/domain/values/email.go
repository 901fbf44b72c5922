package values

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/leadvault/contact-verify-backend/internal/errors"
)

// Email represents a normalized, format-checked email address value object.
type Email struct {
	address string
}

const maxEmailLength = 254

var (
	// RFC-lite format check. Deliverability is the provider's job; this
	// only rejects input that cannot possibly be an address.
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// Local parts that indicate a shared mailbox rather than a person.
	roleLocalParts = []string{
		"admin", "billing", "contact", "help", "hello",
		"info", "mail", "marketing", "noreply", "no-reply",
		"office", "postmaster", "sales", "support", "team", "webmaster",
	}
)

// NewEmail creates an Email value object. The input is trimmed and
// lowercased before the format check.
func NewEmail(address string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(address))
	if normalized == "" {
		return Email{}, apperrors.NewValidationError("INVALID_EMAIL", "email address cannot be empty")
	}
	if len(normalized) > maxEmailLength {
		return Email{}, apperrors.NewValidationError("INVALID_EMAIL",
			fmt.Sprintf("email address too long (max %d characters)", maxEmailLength))
	}
	if !emailRegex.MatchString(normalized) {
		return Email{}, apperrors.NewValidationError("INVALID_EMAIL", "invalid email format: "+address)
	}
	return Email{address: normalized}, nil
}

// MustNewEmail creates an Email and panics on error (for constants/tests).
func MustNewEmail(address string) Email {
	email, err := NewEmail(address)
	if err != nil {
		panic(err)
	}
	return email
}

// String returns the normalized address.
func (e Email) String() string {
	return e.address
}

// Address returns the normalized address (alias for String).
func (e Email) Address() string {
	return e.address
}

// LocalPart returns the part before the @.
func (e Email) LocalPart() string {
	at := strings.LastIndex(e.address, "@")
	if at < 0 {
		return ""
	}
	return e.address[:at]
}

// Domain returns the part after the @.
func (e Email) Domain() string {
	at := strings.LastIndex(e.address, "@")
	if at < 0 {
		return ""
	}
	return e.address[at+1:]
}

// IsEmpty checks if the email is empty.
func (e Email) IsEmpty() bool {
	return e.address == ""
}

// Equal checks if two Email values are equal.
func (e Email) Equal(other Email) bool {
	return e.address == other.address
}

// IsRoleAccount reports whether the local part looks like a shared mailbox
// such as info@ or support@.
func (e Email) IsRoleAccount() bool {
	local := e.LocalPart()
	for _, role := range roleLocalParts {
		if local == role || strings.HasPrefix(local, role+".") || strings.HasPrefix(local, role+"+") {
			return true
		}
	}
	return false
}

// MarshalJSON implements JSON marshaling.
func (e Email) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.address)
}

// UnmarshalJSON implements JSON unmarshaling.
func (e *Email) UnmarshalJSON(data []byte) error {
	var address string
	if err := json.Unmarshal(data, &address); err != nil {
		return err
	}

	email, err := NewEmail(address)
	if err != nil {
		return err
	}

	*e = email
	return nil
}
