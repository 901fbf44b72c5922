// Package verification defines the verdict model shared by the
// validation pipeline and its HTTP surface: tri-state validity,
// confidence buckets and the reason-code vocabulary.
package verification

import (
	"encoding/json"
	"time"
)

// Validity is the tri-state outcome of a validation. Unknown means the
// pipeline could not reach a conclusion and the submission must not be
// blocked.
type Validity int8

const (
	ValidityUnknown Validity = iota
	ValidityValid
	ValidityInvalid
)

// Bool returns the validity as a nullable bool: nil for unknown.
func (v Validity) Bool() *bool {
	switch v {
	case ValidityValid:
		b := true
		return &b
	case ValidityInvalid:
		b := false
		return &b
	default:
		return nil
	}
}

// MarshalJSON renders valid as true, invalid as false and unknown as
// null.
func (v Validity) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Bool())
}

// UnmarshalJSON accepts true, false or null.
func (v *Validity) UnmarshalJSON(data []byte) error {
	var b *bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	switch {
	case b == nil:
		*v = ValidityUnknown
	case *b:
		*v = ValidityValid
	default:
		*v = ValidityInvalid
	}
	return nil
}

// Confidence buckets a verdict for downstream consumers. It is derived
// deterministically from the provider score; it never gates validity.
type Confidence string

const (
	ConfidenceGood    Confidence = "good"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceUnknown Confidence = "unknown"
)

// ReasonCode explains a verdict with a stable machine-readable code.
type ReasonCode string

const (
	ReasonOK ReasonCode = "ok"

	// Hard rejections.
	ReasonBadFormat       ReasonCode = "bad_format"
	ReasonBlockedPrefix   ReasonCode = "blocked_prefix"
	ReasonBlockedDomain   ReasonCode = "blocked_domain"
	ReasonNoMX            ReasonCode = "no_mx"
	ReasonSMTPRejected    ReasonCode = "smtp_rejected"
	ReasonDisposable      ReasonCode = "disposable"
	ReasonRoleAccount     ReasonCode = "role"
	ReasonVoipBlocked     ReasonCode = "voip_blocked"
	ReasonLineTypeBlocked ReasonCode = "line_type_blocked"
	ReasonCountryMismatch ReasonCode = "country_mismatch"

	// Inconclusive outcomes; validity stays unknown.
	ReasonTimeoutSoftPass ReasonCode = "timeout_soft_pass"
	ReasonProviderMissing ReasonCode = "provider_missing"
	ReasonProviderError   ReasonCode = "provider_error"

	// Fallback upgrades from an inconclusive provider outcome.
	ReasonProvisionalTrusted ReasonCode = "provisional_trusted"
	ReasonProvisionalMX      ReasonCode = "provisional_mx"
)

// SoftPass reports whether the verdict is inconclusive in a way that is
// eligible for a fallback upgrade. A provider error is inconclusive but
// deliberately not eligible.
func (r ReasonCode) SoftPass() bool {
	return r == ReasonTimeoutSoftPass || r == ReasonProviderMissing
}

// EmailVerdict is the full outcome of one email validation.
type EmailVerdict struct {
	Validity   Validity   `json:"valid"`
	Reason     ReasonCode `json:"reason"`
	Confidence Confidence `json:"confidence"`

	// Score is the provider's 0..1 deliverability signal, absent when
	// the provider returned none or was not reached.
	Score *float64 `json:"score,omitempty"`

	Normalized string `json:"normalized,omitempty"`
	Domain     string `json:"domain,omitempty"`

	CatchAll   bool `json:"catch_all,omitempty"`
	Disposable bool `json:"disposable,omitempty"`
	Role       bool `json:"role,omitempty"`

	CheckedAt time.Time `json:"checked_at"`
}

// PhoneVerdict is the full outcome of one phone validation. Phones carry
// no provider score, so confidence is always unknown for valid numbers.
type PhoneVerdict struct {
	Validity   Validity   `json:"valid"`
	Reason     ReasonCode `json:"reason"`
	Confidence Confidence `json:"confidence"`

	Normalized string `json:"normalized,omitempty"`
	Country    string `json:"country,omitempty"`
	LineType   string `json:"line_type,omitempty"`

	CheckedAt time.Time `json:"checked_at"`
}

// ClassifyScore buckets a provider score against the configured
// thresholds. A nil score yields unknown; the bucket never affects
// validity.
func ClassifyScore(score *float64, goodThreshold, medThreshold float64) Confidence {
	if score == nil {
		return ConfidenceUnknown
	}
	switch {
	case *score >= goodThreshold:
		return ConfidenceGood
	case *score >= medThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
