package verification

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/leadvault/contact-verify-backend/internal/domain/values"
	"github.com/leadvault/contact-verify-backend/internal/domain/verification"
	"github.com/leadvault/contact-verify-backend/internal/infrastructure/dnsx"
)

// FallbackResolver upgrades an unknown email verdict using secondary
// signals when the provider was unreachable or unconfigured. It never
// downgrades, and it does not run for provider_error: an errored
// provider response stays unknown.
type FallbackResolver struct {
	trusted       map[string]bool
	mx            dnsx.MXResolver
	mxTimeout     time.Duration
	enableTrusted bool
	enableMX      bool
	logger        *zap.Logger
}

// FallbackConfig configures the resolver.
type FallbackConfig struct {
	TrustedDomains []string
	MXTimeout      time.Duration
	EnableTrusted  bool
	EnableMX       bool
}

// NewFallbackResolver creates a fallback resolver.
func NewFallbackResolver(cfg FallbackConfig, mx dnsx.MXResolver, logger *zap.Logger) *FallbackResolver {
	trusted := make(map[string]bool, len(cfg.TrustedDomains))
	for _, d := range cfg.TrustedDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			trusted[d] = true
		}
	}
	if cfg.MXTimeout <= 0 {
		cfg.MXTimeout = 1500 * time.Millisecond
	}
	return &FallbackResolver{
		trusted:       trusted,
		mx:            mx,
		mxTimeout:     cfg.MXTimeout,
		enableTrusted: cfg.EnableTrusted,
		enableMX:      cfg.EnableMX,
		logger:        logger,
	}
}

// Resolve applies the upgrade chain to an inconclusive verdict. Steps
// are mutually exclusive and strictly ordered: trusted-domain first,
// then the MX probe, then give up and leave the verdict unknown.
func (f *FallbackResolver) Resolve(ctx context.Context, email values.Email, verdict verification.EmailVerdict) verification.EmailVerdict {
	if !verdict.Reason.SoftPass() {
		return verdict
	}

	if f.enableTrusted && f.trusted[email.Domain()] {
		f.logger.Debug("trusted domain upgrade", zap.String("domain", email.Domain()))
		verdict.Validity = verification.ValidityValid
		verdict.Reason = verification.ReasonProvisionalTrusted
		verdict.Confidence = verification.ConfidenceGood
		return verdict
	}

	// Role addresses are excluded from the MX upgrade: records proving
	// the domain accepts mail say nothing about a shared mailbox we
	// would block anyway.
	if f.enableMX && !email.IsRoleAccount() {
		if f.hasMXRecords(ctx, email.Domain()) {
			f.logger.Debug("mx record upgrade", zap.String("domain", email.Domain()))
			verdict.Validity = verification.ValidityValid
			verdict.Reason = verification.ReasonProvisionalMX
			verdict.Confidence = verification.ConfidenceMedium
			return verdict
		}
	}

	return verdict
}

// hasMXRecords probes DNS under the resolver's own short deadline.
// Expiry or any lookup failure counts as "no records": the fallback
// must never block longer than its budget.
func (f *FallbackResolver) hasMXRecords(ctx context.Context, domain string) bool {
	ctx, cancel := context.WithTimeout(ctx, f.mxTimeout)
	defer cancel()

	records, err := f.mx.LookupMX(ctx, domain)
	if err != nil {
		f.logger.Debug("mx lookup failed", zap.String("domain", domain), zap.Error(err))
		return false
	}
	return len(records) > 0
}
