package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leadvault/contact-verify-backend/internal/domain/values"
	"github.com/leadvault/contact-verify-backend/internal/domain/verification"
)

// EmailConfig contains configuration for the email verification
// provider adapter.
type EmailConfig struct {
	BaseURL string
	APIKey  string

	// SMTPCheck asks the provider to attempt an SMTP handshake.
	SMTPCheck bool

	// Timeout bounds the whole round trip; expiry is a soft pass.
	Timeout time.Duration

	// Confidence thresholds for the provider's 0..1 score.
	GoodThreshold float64
	MedThreshold  float64

	// Hard-block policy. Only these signals can force an invalid
	// verdict; a low score never does.
	BlockRole       bool
	BlockDisposable bool

	// Outbound request smoothing toward the provider.
	RateLimitRPS float64
}

// EmailProvider adapts the external email verification service.
type EmailProvider struct {
	config  EmailConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewEmailProvider creates an email provider adapter.
func NewEmailProvider(config EmailConfig, logger *zap.Logger) *EmailProvider {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.emailcheck.example.com"
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.GoodThreshold == 0 {
		config.GoodThreshold = 0.80
	}
	if config.MedThreshold == 0 {
		config.MedThreshold = 0.50
	}
	if config.RateLimitRPS == 0 {
		config.RateLimitRPS = 10
	}

	return &EmailProvider{
		config:  config,
		client:  newHTTPClient(),
		limiter: rate.NewLimiter(rate.Limit(config.RateLimitRPS), int(config.RateLimitRPS)*2),
		logger:  logger,
	}
}

// emailCheckResponse is the provider's wire format. Missing fields
// resolve to the zero-value defaults documented on each field.
type emailCheckResponse struct {
	FormatValid *bool    `json:"format_valid"` // absent: assume well-formed
	MXFound     *bool    `json:"mx_found"`     // absent: assume records exist
	SMTPCheck   *bool    `json:"smtp_check"`   // absent: mailbox not probed
	CatchAll    bool     `json:"catch_all"`
	Score       *float64 `json:"score"` // absent: no confidence signal
	Disposable  bool     `json:"disposable"`
	Role        bool     `json:"role"`
}

// Check verifies an email address against the external service. The
// returned verdict is unknown for every transport, timeout or parse
// failure; only provider-confirmed hard-block signals yield invalid.
func (p *EmailProvider) Check(ctx context.Context, email values.Email) verification.EmailVerdict {
	verdict := verification.EmailVerdict{
		Validity:   verification.ValidityUnknown,
		Confidence: verification.ConfidenceUnknown,
		Normalized: email.Address(),
		Domain:     email.Domain(),
		CheckedAt:  time.Now(),
	}

	if p.config.APIKey == "" {
		verdict.Reason = verification.ReasonProviderMissing
		return verdict
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	resp, err := p.doRequest(ctx, email)
	if err != nil {
		if isTimeout(ctx, err) {
			p.logger.Warn("email provider timed out",
				zap.String("domain", email.Domain()),
				zap.Duration("timeout", p.config.Timeout))
			verdict.Reason = verification.ReasonTimeoutSoftPass
		} else {
			p.logger.Error("email provider call failed", zap.Error(err))
			verdict.Reason = verification.ReasonProviderError
		}
		return verdict
	}

	return p.evaluate(email, resp, verdict)
}

func (p *EmailProvider) doRequest(ctx context.Context, email values.Email) (*emailCheckResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("identifier", email.Address())
	params.Set("smtp", strconv.FormatBool(p.config.SMTPCheck))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.config.BaseURL+"/v1/verify?"+params.Encode(), nil)
	if err != nil {
		return nil, &ProviderError{Code: ErrCodeConnectionFailed, Message: err.Error(), Provider: "email"}
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
			Provider: "email",
		}
	}

	var parsed emailCheckResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &ProviderError{Code: ErrCodeInvalidResponse, Message: err.Error(), Provider: "email"}
	}

	return &parsed, nil
}

// evaluate applies the hard-block policy to a well-formed provider
// response. Anything that is not a hard block results in valid=true;
// the score only moves the confidence bucket.
func (p *EmailProvider) evaluate(email values.Email, resp *emailCheckResponse, verdict verification.EmailVerdict) verification.EmailVerdict {
	verdict.Score = resp.Score
	verdict.CatchAll = resp.CatchAll
	verdict.Disposable = resp.Disposable
	verdict.Role = resp.Role || email.IsRoleAccount()

	if resp.FormatValid != nil && !*resp.FormatValid {
		verdict.Validity = verification.ValidityInvalid
		verdict.Reason = verification.ReasonBadFormat
		verdict.Confidence = verification.ConfidenceLow
		return verdict
	}
	if resp.MXFound != nil && !*resp.MXFound {
		verdict.Validity = verification.ValidityInvalid
		verdict.Reason = verification.ReasonNoMX
		verdict.Confidence = verification.ConfidenceLow
		return verdict
	}
	if resp.SMTPCheck != nil && !*resp.SMTPCheck {
		verdict.Validity = verification.ValidityInvalid
		verdict.Reason = verification.ReasonSMTPRejected
		verdict.Confidence = verification.ConfidenceLow
		return verdict
	}
	if verdict.Disposable && p.config.BlockDisposable {
		verdict.Validity = verification.ValidityInvalid
		verdict.Reason = verification.ReasonDisposable
		verdict.Confidence = verification.ConfidenceLow
		return verdict
	}
	if verdict.Role && p.config.BlockRole {
		verdict.Validity = verification.ValidityInvalid
		verdict.Reason = verification.ReasonRoleAccount
		verdict.Confidence = verification.ConfidenceLow
		return verdict
	}

	verdict.Validity = verification.ValidityValid
	verdict.Reason = verification.ReasonOK
	verdict.Confidence = verification.ClassifyScore(resp.Score, p.config.GoodThreshold, p.config.MedThreshold)

	// A catch-all domain accepts anything during the SMTP handshake, so
	// the mailbox was not actually confirmed. Cap the confidence.
	if resp.CatchAll && verdict.Confidence == verification.ConfidenceGood {
		verdict.Confidence = verification.ConfidenceMedium
	}

	return verdict
}
