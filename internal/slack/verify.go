package slack

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	timestampHeader = "X-Slack-Request-Timestamp"
	signatureHeader = "X-Slack-Signature"

	// Requests older or newer than five minutes are rejected as replays.
	replayWindow = 300 * time.Second
)

// AuthError reports a failed request signature check. Its message never
// contains the secret, the body, or the supplied signature.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "slack signature: " + e.Reason
}

// Verifier validates Slack's v0 request signing scheme.
type Verifier struct {
	secret string
	now    func() time.Time
}

// NewVerifier builds a verifier for the given signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret, now: time.Now}
}

// Verify checks the signing timestamp and HMAC of an inbound webhook. It is
// pure validation with no side effects and must run before any other
// processing of a non-empty body.
func (v *Verifier) Verify(headers http.Header, body []byte) error {
	if v.secret == "" {
		return &AuthError{Reason: "signing secret not configured"}
	}

	ts := headers.Get(timestampHeader)
	sig := headers.Get(signatureHeader)
	if ts == "" || sig == "" {
		return &AuthError{Reason: "missing signature headers"}
	}

	tsInt, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return &AuthError{Reason: "bad timestamp header"}
	}

	drift := v.now().Unix() - tsInt
	if drift < 0 {
		drift = -drift
	}
	if time.Duration(drift)*time.Second > replayWindow {
		return &AuthError{Reason: fmt.Sprintf("stale timestamp: %d", tsInt)}
	}

	// The base string uses the header exactly as sent; re-encoding the
	// parsed integer would break signatures over non-canonical timestamps.
	mac := hmac.New(sha256.New, []byte(v.secret))
	fmt.Fprintf(mac, "v0:%s:", ts)
	mac.Write(body)
	expected := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return &AuthError{Reason: "signature mismatch"}
	}

	return nil
}
