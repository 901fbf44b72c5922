package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadvault/contact-verify-backend/internal/domain/values"
	"github.com/leadvault/contact-verify-backend/internal/domain/verification"
)

func TestDenylist_Check(t *testing.T) {
	d := NewDenylist(
		[]string{"test", "asdf", "noreply"},
		[]string{"mailinator.com", "example.com"},
	)

	tests := []struct {
		name    string
		address string
		blocked bool
		reason  verification.ReasonCode
	}{
		{"exact prefix", "test@company.com", true, verification.ReasonBlockedPrefix},
		{"prefix with suffix", "test123@company.com", true, verification.ReasonBlockedPrefix},
		{"prefix mid-word does not match", "contest@company.com", false, ""},
		{"keyboard mash", "asdfasdf@company.com", true, verification.ReasonBlockedPrefix},
		{"blocked domain exact", "alice@mailinator.com", true, verification.ReasonBlockedDomain},
		{"blocked domain subdomain", "alice@mail.mailinator.com", true, verification.ReasonBlockedDomain},
		{"domain suffix without dot boundary", "alice@notmailinator.com", false, ""},
		{"clean address", "alice@company.com", false, ""},
		{"prefix wins over domain", "test@mailinator.com", true, verification.ReasonBlockedPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.Check(values.MustNewEmail(tt.address))
			assert.Equal(t, tt.blocked, result.Blocked)
			if tt.blocked {
				assert.Equal(t, tt.reason, result.Reason)
			}
		})
	}
}

func TestDenylist_NormalizesEntries(t *testing.T) {
	d := NewDenylist([]string{" TEST ", ""}, []string{" Example.COM ", ""})

	assert.True(t, d.Check(values.MustNewEmail("test@company.com")).Blocked)
	assert.True(t, d.Check(values.MustNewEmail("alice@example.com")).Blocked)
	assert.False(t, d.Check(values.MustNewEmail("alice@company.com")).Blocked)
}

func TestDenylist_EmptyListsBlockNothing(t *testing.T) {
	d := NewDenylist(nil, nil)
	assert.False(t, d.Check(values.MustNewEmail("test@mailinator.com")).Blocked)
}
