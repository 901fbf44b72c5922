package verification

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/leadvault/contact-verify-backend/internal/domain/values"
	"github.com/leadvault/contact-verify-backend/internal/domain/verification"
	"github.com/leadvault/contact-verify-backend/internal/infrastructure/cache"
	"github.com/leadvault/contact-verify-backend/internal/metrics"
)

// Config holds the orchestrator's own knobs; provider policy lives in
// the adapters.
type Config struct {
	// CacheTTL is how long a completed verdict is served verbatim.
	CacheTTL time.Duration
}

// service composes the pipeline. Each call is an independent unit of
// work; the only shared state is the injected cache, and concurrent
// validations of the same uncached key may both reach the provider.
type service struct {
	cfg      Config
	store    cache.Cache
	email    EmailChecker
	phone    PhoneChecker
	denylist *Denylist
	fallback *FallbackResolver
	registry *metrics.Registry
	logger   *zap.Logger
}

// NewService creates the validation orchestrator. registry may be nil.
func NewService(
	cfg Config,
	store cache.Cache,
	email EmailChecker,
	phone PhoneChecker,
	denylist *Denylist,
	fallback *FallbackResolver,
	registry *metrics.Registry,
	logger *zap.Logger,
) Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	return &service{
		cfg:      cfg,
		store:    store,
		email:    email,
		phone:    phone,
		denylist: denylist,
		fallback: fallback,
		registry: registry,
		logger:   logger,
	}
}

// ValidateEmail runs pre-check, denylist, cache, provider and fallback
// in order. Format and denylist rejections return before the cache and
// are never stored; only a completed provider+fallback verdict is
// cached.
func (s *service) ValidateEmail(ctx context.Context, raw string) verification.EmailVerdict {
	email, err := values.NewEmail(raw)
	if err != nil {
		s.recordVerdict(ctx, "email", verification.ReasonBadFormat)
		return verification.EmailVerdict{
			Validity:   verification.ValidityInvalid,
			Reason:     verification.ReasonBadFormat,
			Confidence: verification.ConfidenceLow,
			CheckedAt:  time.Now(),
		}
	}

	if deny := s.denylist.Check(email); deny.Blocked {
		s.logger.Info("email blocked by denylist",
			zap.String("domain", email.Domain()),
			zap.String("reason", string(deny.Reason)))
		s.recordVerdict(ctx, "email", deny.Reason)
		return verification.EmailVerdict{
			Validity:   verification.ValidityInvalid,
			Reason:     deny.Reason,
			Confidence: verification.ConfidenceLow,
			Normalized: email.Address(),
			Domain:     email.Domain(),
			CheckedAt:  time.Now(),
		}
	}

	key := cache.EmailVerdictPrefix + email.Address()
	var cached verification.EmailVerdict
	if hit := s.cacheGet(ctx, key, &cached); hit {
		return cached
	}

	start := time.Now()
	verdict := s.email.Check(ctx, email)
	s.recordProviderCall(ctx, "email", start, verdict.Reason)

	if verdict.Reason.SoftPass() {
		before := verdict.Reason
		verdict = s.fallback.Resolve(ctx, email, verdict)
		if verdict.Reason != before && s.registry != nil {
			s.registry.FallbackUpgrades.Add(ctx, 1)
		}
	}

	s.cacheSet(ctx, key, verdict)
	s.recordVerdict(ctx, "email", verdict.Reason)
	return verdict
}

// ValidatePhone runs the same shape without a denylist or fallback
// step; neither exists for phone numbers.
func (s *service) ValidatePhone(ctx context.Context, raw, country string) verification.PhoneVerdict {
	phone, err := values.NewPhoneNumber(raw, country)
	if err != nil {
		s.recordVerdict(ctx, "phone", verification.ReasonBadFormat)
		return verification.PhoneVerdict{
			Validity:   verification.ValidityInvalid,
			Reason:     verification.ReasonBadFormat,
			Confidence: verification.ConfidenceLow,
			CheckedAt:  time.Now(),
		}
	}

	key := cache.PhoneVerdictPrefix + phone.Country() + ":" + phone.Digits()
	var cached verification.PhoneVerdict
	if hit := s.cacheGet(ctx, key, &cached); hit {
		return cached
	}

	start := time.Now()
	verdict := s.phone.Check(ctx, phone)
	s.recordProviderCall(ctx, "phone", start, verdict.Reason)

	s.cacheSet(ctx, key, verdict)
	s.recordVerdict(ctx, "phone", verdict.Reason)
	return verdict
}

// cacheGet is a soft lookup: a cache failure is logged and treated as a
// miss, never surfaced.
func (s *service) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	err := s.store.GetJSON(ctx, key, dest)
	hit := err == nil
	if s.registry != nil {
		s.registry.RecordCacheLookup(ctx, hit)
	}
	if err != nil {
		var notFound cache.ErrCacheKeyNotFound
		if !errors.As(err, &notFound) {
			s.logger.Warn("verdict cache read failed", zap.String("key", key), zap.Error(err))
		}
	}
	return hit
}

// cacheSet is a soft write: failure to cache never fails the call.
func (s *service) cacheSet(ctx context.Context, key string, verdict interface{}) {
	if err := s.store.SetJSON(ctx, key, verdict, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("verdict cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *service) recordVerdict(ctx context.Context, identifierType string, reason verification.ReasonCode) {
	if s.registry != nil {
		s.registry.RecordVerdict(ctx, identifierType, string(reason))
	}
}

func (s *service) recordProviderCall(ctx context.Context, provider string, start time.Time, reason verification.ReasonCode) {
	if s.registry != nil {
		timedOut := reason == verification.ReasonTimeoutSoftPass
		s.registry.RecordProviderCall(ctx, provider, time.Since(start), timedOut)
	}
}
