package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leadvault/contact-verify-backend/internal/domain/values"
	"github.com/leadvault/contact-verify-backend/internal/domain/verification"
)

// PhoneConfig contains configuration for the phone lookup provider
// adapter.
type PhoneConfig struct {
	BaseURL string
	APIKey  string

	// Timeout bounds the whole round trip; expiry is a soft pass.
	Timeout time.Duration

	// Line-type policy.
	BlockVoip     bool
	AllowLandline bool

	// Outbound request smoothing toward the provider.
	RateLimitRPS float64
}

// PhoneProvider adapts the external phone number lookup service.
type PhoneProvider struct {
	config  PhoneConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewPhoneProvider creates a phone provider adapter.
func NewPhoneProvider(config PhoneConfig, logger *zap.Logger) *PhoneProvider {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.phonecheck.example.com"
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.RateLimitRPS == 0 {
		config.RateLimitRPS = 10
	}

	return &PhoneProvider{
		config:  config,
		client:  newHTTPClient(),
		limiter: rate.NewLimiter(rate.Limit(config.RateLimitRPS), int(config.RateLimitRPS)*2),
		logger:  logger,
	}
}

// phoneLookupResponse is the provider's wire format.
type phoneLookupResponse struct {
	Valid               *bool  `json:"valid"` // absent: assume dialable
	InternationalFormat string `json:"international_format"`
	CountryCode         string `json:"country_code"`
	LineType            string `json:"line_type"`
}

// Check verifies a phone number. Structural NANP failures reject
// locally and never reach the network; provider unavailability is a
// soft pass, identical to the email adapter.
func (p *PhoneProvider) Check(ctx context.Context, phone values.PhoneNumber) verification.PhoneVerdict {
	verdict := verification.PhoneVerdict{
		Validity:   verification.ValidityUnknown,
		Confidence: verification.ConfidenceUnknown,
		Normalized: phone.E164(),
		Country:    phone.Country(),
		CheckedAt:  time.Now(),
	}

	if phone.IsNANP() {
		if err := phone.CheckNANP(); err != nil {
			p.logger.Debug("phone failed NANP pre-check", zap.Error(err))
			verdict.Validity = verification.ValidityInvalid
			verdict.Reason = verification.ReasonBadFormat
			verdict.Confidence = verification.ConfidenceLow
			return verdict
		}
	}

	if p.config.APIKey == "" {
		verdict.Reason = verification.ReasonProviderMissing
		return verdict
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	resp, err := p.doRequest(ctx, phone)
	if err != nil {
		if isTimeout(ctx, err) {
			p.logger.Warn("phone provider timed out",
				zap.Duration("timeout", p.config.Timeout))
			verdict.Reason = verification.ReasonTimeoutSoftPass
		} else {
			p.logger.Error("phone provider call failed", zap.Error(err))
			verdict.Reason = verification.ReasonProviderError
		}
		return verdict
	}

	return p.evaluate(phone, resp, verdict)
}

func (p *PhoneProvider) doRequest(ctx context.Context, phone values.PhoneNumber) (*phoneLookupResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("number", phone.Digits())
	if phone.Country() != "" {
		params.Set("country", phone.Country())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.config.BaseURL+"/v1/lookup?"+params.Encode(), nil)
	if err != nil {
		return nil, &ProviderError{Code: ErrCodeConnectionFailed, Message: err.Error(), Provider: "phone"}
	}
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Code:     ErrCodeUnavailable,
			Message:  "HTTP " + strconv.Itoa(resp.StatusCode),
			Provider: "phone",
		}
	}

	var parsed phoneLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &ProviderError{Code: ErrCodeInvalidResponse, Message: err.Error(), Provider: "phone"}
	}

	return &parsed, nil
}

// evaluate applies the line-type and country policy to a well-formed
// provider response.
func (p *PhoneProvider) evaluate(phone values.PhoneNumber, resp *phoneLookupResponse, verdict verification.PhoneVerdict) verification.PhoneVerdict {
	verdict.LineType = strings.ToLower(resp.LineType)
	if resp.InternationalFormat != "" {
		verdict.Normalized = resp.InternationalFormat
	}
	if resp.CountryCode != "" {
		verdict.Country = strings.ToUpper(resp.CountryCode)
	}

	if resp.Valid != nil && !*resp.Valid {
		verdict.Validity = verification.ValidityInvalid
		verdict.Reason = verification.ReasonBadFormat
		verdict.Confidence = verification.ConfidenceLow
		return verdict
	}

	// An explicit conflict between the caller's hint and the provider's
	// detection is a rejection; a missing detection is not.
	if hint := phone.Country(); hint != "" && resp.CountryCode != "" &&
		!strings.EqualFold(hint, resp.CountryCode) {
		verdict.Validity = verification.ValidityInvalid
		verdict.Reason = verification.ReasonCountryMismatch
		verdict.Confidence = verification.ConfidenceLow
		return verdict
	}

	switch verdict.LineType {
	case "voip":
		if p.config.BlockVoip {
			verdict.Validity = verification.ValidityInvalid
			verdict.Reason = verification.ReasonVoipBlocked
			verdict.Confidence = verification.ConfidenceLow
			return verdict
		}
	case "landline":
		if !p.config.AllowLandline {
			verdict.Validity = verification.ValidityInvalid
			verdict.Reason = verification.ReasonLineTypeBlocked
			verdict.Confidence = verification.ConfidenceLow
			return verdict
		}
	}

	verdict.Validity = verification.ValidityValid
	verdict.Reason = verification.ReasonOK
	// The lookup service reports no score, so the bucket stays unknown.
	verdict.Confidence = verification.ConfidenceUnknown
	return verdict
}
