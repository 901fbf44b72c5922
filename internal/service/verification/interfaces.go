// Package verification contains the identifier validation pipeline:
// local pre-checks, the denylist, the verdict cache, the provider
// adapters and the fallback resolver, composed by the Service. The
// pipeline never returns an error and never blocks a submission on an
// unreachable dependency.
package verification

import (
	"context"

	"github.com/leadvault/contact-verify-backend/internal/domain/values"
	"github.com/leadvault/contact-verify-backend/internal/domain/verification"
)

// Service is the only surface external callers use.
type Service interface {
	// ValidateEmail runs the full email pipeline for a raw submission.
	ValidateEmail(ctx context.Context, raw string) verification.EmailVerdict

	// ValidatePhone runs the phone pipeline. country is an optional ISO
	// 3166-1 alpha-2 hint.
	ValidatePhone(ctx context.Context, raw, country string) verification.PhoneVerdict
}

// EmailChecker is the contract of the email provider adapter.
type EmailChecker interface {
	Check(ctx context.Context, email values.Email) verification.EmailVerdict
}

// PhoneChecker is the contract of the phone provider adapter.
type PhoneChecker interface {
	Check(ctx context.Context, phone values.PhoneNumber) verification.PhoneVerdict
}
