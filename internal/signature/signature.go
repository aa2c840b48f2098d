// Package signature authenticates inbound webhook deliveries.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	apperrors "github.com/dentclinicai/dentclinicai-api/pkg/errors"
)

// Header names used by the supported webhook sources
const (
	AuthorizationHeader     = "Authorization"
	CalendlySignatureHeader = "Calendly-Webhook-Signature"
	CalendlyTimestampHeader = "Calendly-Webhook-Timestamp"
	bearerPrefix            = "Bearer "
)

// Verifier authenticates a webhook delivery from its headers and the body
// bytes exactly as they were received
type Verifier interface {
	Verify(headers http.Header, rawBody []byte) error
}

// BearerVerifier accepts requests whose Authorization header carries the
// shared secret as a bearer token
type BearerVerifier struct {
	token string
}

// NewBearerVerifier creates a bearer token verifier. An empty token makes
// every request fail.
func NewBearerVerifier(token string) *BearerVerifier {
	return &BearerVerifier{token: token}
}

// Verify checks the Authorization header
func (v *BearerVerifier) Verify(headers http.Header, _ []byte) error {
	if v.token == "" {
		return apperrors.UnauthorizedError("webhook token not configured")
	}

	token, ok := strings.CutPrefix(headers.Get(AuthorizationHeader), bearerPrefix)
	if !ok || token == "" {
		return apperrors.UnauthorizedError("missing bearer token")
	}
	if !TimingSafeCompare(token, v.token) {
		return apperrors.UnauthorizedError("bearer token mismatch")
	}
	return nil
}

// HMACVerifier checks base64(HMAC-SHA256(secret, timestamp + body)) against
// a signature header
type HMACVerifier struct {
	secret          []byte
	signatureHeader string
	timestampHeader string
}

// NewHMACVerifier creates an HMAC verifier reading the given headers
func NewHMACVerifier(secret, signatureHeader, timestampHeader string) *HMACVerifier {
	return &HMACVerifier{
		secret:          []byte(secret),
		signatureHeader: signatureHeader,
		timestampHeader: timestampHeader,
	}
}

// NewCalendlyVerifier creates the verifier for Calendly webhooks
func NewCalendlyVerifier(secret string) *HMACVerifier {
	return NewHMACVerifier(secret, CalendlySignatureHeader, CalendlyTimestampHeader)
}

// Verify checks that both headers exist and the signature matches rawBody
func (v *HMACVerifier) Verify(headers http.Header, rawBody []byte) error {
	sig := headers.Get(v.signatureHeader)
	ts := headers.Get(v.timestampHeader)
	if sig == "" || ts == "" {
		return apperrors.ErrMissingHeaders
	}
	if len(v.secret) == 0 {
		return apperrors.ErrInvalidSignature
	}

	if !TimingSafeCompare(sig, Sign(v.secret, ts, rawBody)) {
		return apperrors.ErrInvalidSignature
	}
	return nil
}

// Sign returns base64(HMAC-SHA256(secret, timestamp + body))
func Sign(secret []byte, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// TimingSafeCompare performs a timing-safe comparison of two strings
func TimingSafeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
