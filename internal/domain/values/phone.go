package values

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/leadvault/contact-verify-backend/internal/errors"
)

// PhoneNumber represents a dialable phone number held as a bare digit
// string, optionally tagged with an ISO country hint from the caller.
type PhoneNumber struct {
	digits  string
	country string // ISO 3166-1 alpha-2, upper case, may be empty
}

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// NANP member countries share the +1 country code and the area/exchange
// structure rules.
var nanpCountries = map[string]bool{
	"US": true, "CA": true, "PR": true, "DO": true, "JM": true,
	"TT": true, "BS": true, "BB": true, "GU": true, "VI": true,
}

// NewPhoneNumber creates a PhoneNumber from raw user input. All
// non-digit characters are stripped; only a digit-count plausibility
// check is applied here. Structural rules are per-country (see NANP).
func NewPhoneNumber(raw, country string) (PhoneNumber, error) {
	digits := extractDigits(raw)
	if len(digits) < minPhoneDigits {
		return PhoneNumber{}, apperrors.NewValidationError("INVALID_PHONE",
			fmt.Sprintf("phone number too short: %d digits", len(digits)))
	}
	if len(digits) > maxPhoneDigits {
		return PhoneNumber{}, apperrors.NewValidationError("INVALID_PHONE",
			fmt.Sprintf("phone number too long: %d digits", len(digits)))
	}
	return PhoneNumber{digits: digits, country: strings.ToUpper(strings.TrimSpace(country))}, nil
}

// MustNewPhoneNumber creates a PhoneNumber and panics on error (for tests).
func MustNewPhoneNumber(raw, country string) PhoneNumber {
	phone, err := NewPhoneNumber(raw, country)
	if err != nil {
		panic(err)
	}
	return phone
}

// Digits returns the bare digit string.
func (p PhoneNumber) Digits() string {
	return p.digits
}

// Country returns the caller-supplied ISO country hint, if any.
func (p PhoneNumber) Country() string {
	return p.country
}

// IsEmpty checks if the phone number is empty.
func (p PhoneNumber) IsEmpty() bool {
	return p.digits == ""
}

// Equal checks if two PhoneNumber values are equal.
func (p PhoneNumber) Equal(other PhoneNumber) bool {
	return p.digits == other.digits && p.country == other.country
}

// IsNANP reports whether the country hint belongs to the North American
// Numbering Plan.
func (p PhoneNumber) IsNANP() bool {
	return nanpCountries[p.country]
}

// NationalDigits returns the ten national digits for a NANP number,
// stripping a leading country digit 1 when present. Returns "" when the
// number cannot be a NANP national number.
func (p PhoneNumber) NationalDigits() string {
	digits := p.digits
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return ""
	}
	return digits
}

// CheckNANP validates NANP structure: ten national digits, area code and
// exchange code starting 2-9, and no N11 exchange (reserved service
// codes such as 911 or 411).
func (p PhoneNumber) CheckNANP() error {
	national := p.NationalDigits()
	if national == "" {
		return fmt.Errorf("NANP number must have 10 national digits, got %d", len(p.digits))
	}

	areaCode := national[:3]
	exchange := national[3:6]

	if areaCode[0] == '0' || areaCode[0] == '1' {
		return fmt.Errorf("invalid area code %s: cannot start with %c", areaCode, areaCode[0])
	}
	if exchange[0] == '0' || exchange[0] == '1' {
		return fmt.Errorf("invalid exchange code %s: cannot start with %c", exchange, exchange[0])
	}
	if exchange[1] == '1' && exchange[2] == '1' {
		return fmt.Errorf("invalid exchange code %s: N11 codes are reserved", exchange)
	}

	return nil
}

// E164 returns the number in E.164 format. NANP numbers get the +1
// prefix; everything else is prefixed as-is.
func (p PhoneNumber) E164() string {
	if p.IsNANP() {
		if national := p.NationalDigits(); national != "" {
			return "+1" + national
		}
	}
	return "+" + p.digits
}

// MarshalJSON implements JSON marshaling.
func (p PhoneNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Digits  string `json:"digits"`
		Country string `json:"country,omitempty"`
	}{p.digits, p.country})
}

func extractDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
