package portal

import (
	"net/http"

	"github.com/google/uuid"
)

// SessionRoundTripper is an [http.RoundTripper] that attaches the current
// access token and a correlation ID to outgoing requests. It lets code
// built on a plain [http.Client] share the portal session, for example
// when talking to adjacent services behind the same gateway.
//
// The recovery protocol does not run here. A 401 passes through untouched;
// route such traffic through [Client] methods when silent refresh matters.
type SessionRoundTripper struct {
	base   http.RoundTripper
	client *Client
}

// NewSessionRoundTripper wraps base with session credential attachment.
// A nil base falls back to [http.DefaultTransport].
func NewSessionRoundTripper(c *Client, base http.RoundTripper) *SessionRoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &SessionRoundTripper{
		base:   base,
		client: c,
	}
}

// RoundTrip describes the roundtrip operation and its observable behavior.
//
// RoundTrip may return an error when input validation, dependency calls, or security checks fail.
// RoundTrip does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *SessionRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())

	if t.client != nil && t.client.store != nil && out.Header.Get("Authorization") == "" {
		if rec, err := t.client.store.Get(req.Context()); err == nil && rec.AccessToken != "" {
			out.Header.Set("Authorization", "Bearer "+rec.AccessToken)
		}
	}
	if out.Header.Get("X-Request-ID") == "" {
		requestID := requestIDFromContext(req.Context())
		if requestID == "" {
			requestID = uuid.NewString()
		}
		out.Header.Set("X-Request-ID", requestID)
	}

	return t.base.RoundTrip(out)
}
