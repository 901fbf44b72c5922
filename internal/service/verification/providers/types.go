// Package providers contains the adapters for the external email and
// phone verification services. Each adapter normalizes provider
// responses, timeouts and transport failures into a verdict; no error
// and no panic ever crosses the adapter boundary.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error codes for provider failures. These are internal diagnostics;
// callers only ever see the verdict reason codes.
const (
	ErrCodeConnectionFailed = "CONNECTION_FAILED"
	ErrCodeInvalidResponse  = "INVALID_RESPONSE"
	ErrCodeUnavailable      = "PROVIDER_UNAVAILABLE"
)

// ProviderError describes a failed provider interaction.
type ProviderError struct {
	Code     string
	Message  string
	Provider string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Provider, e.Code, e.Message)
}

const defaultTimeout = 5 * time.Second

func newHTTPClient() *http.Client {
	// No Timeout on the client itself: the per-call context deadline is
	// the single source of truth, and cancelling it discards the
	// in-flight request.
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// isTimeout distinguishes a deadline expiry from other transport
// failures, so the verdict can carry timeout_soft_pass rather than
// provider_error.
func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
