package verification

import (
	"strings"

	"github.com/leadvault/contact-verify-backend/internal/domain/values"
	"github.com/leadvault/contact-verify-backend/internal/domain/verification"
)

// Denylist rejects addresses by local-part prefix or by domain before
// any cache lookup or provider call. Hits are never cached: the list
// may change at any time.
type Denylist struct {
	prefixes []string
	domains  []string
}

// DenyResult is the outcome of a denylist check.
type DenyResult struct {
	Blocked bool
	Reason  verification.ReasonCode
}

// NewDenylist creates a denylist. Entries are matched
// case-insensitively; both lists are normalized once at construction.
func NewDenylist(prefixes, domains []string) *Denylist {
	d := &Denylist{
		prefixes: make([]string, 0, len(prefixes)),
		domains:  make([]string, 0, len(domains)),
	}
	for _, p := range prefixes {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			d.prefixes = append(d.prefixes, p)
		}
	}
	for _, dom := range domains {
		if dom = strings.ToLower(strings.TrimSpace(dom)); dom != "" {
			d.domains = append(d.domains, dom)
		}
	}
	return d
}

// Check tests the address against both lists. The prefix match is a
// startsWith on the local part; the domain match is exact or any
// subdomain of a listed domain.
func (d *Denylist) Check(email values.Email) DenyResult {
	local := email.LocalPart()
	for _, prefix := range d.prefixes {
		if strings.HasPrefix(local, prefix) {
			return DenyResult{Blocked: true, Reason: verification.ReasonBlockedPrefix}
		}
	}

	domain := email.Domain()
	for _, blocked := range d.domains {
		if domain == blocked || strings.HasSuffix(domain, "."+blocked) {
			return DenyResult{Blocked: true, Reason: verification.ReasonBlockedDomain}
		}
	}

	return DenyResult{}
}
