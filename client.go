package portal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gramseva/portal/internal"
	"github.com/gramseva/portal/session"
)

// Client is the portal API client. All calls into the citizen-services
// backend flow through it so that bearer attachment, correlation IDs, and
// the silent session-recovery protocol apply uniformly.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	cfg        Config
	httpClient *http.Client
	store      session.Store
	notices    NoticeSink
	audit      *auditDispatcher
	metrics    *Metrics
	baseURL    string

	mu            sync.Mutex
	user          *session.UserSummary
	authenticated bool
	failedStreak  int
	inflight      *refreshCall
}

// refreshCall is the single-flight handle for one in-progress token
// refresh. Concurrent auth failures share it instead of stampeding the
// refresh endpoint.
type refreshCall struct {
	done chan struct{}
	err  error
}

// requestSpec describes one backend call. The body is buffered so the
// request can be replayed verbatim after a token refresh.
type requestSpec struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	requireAuth bool
	out         any
}

// errRefreshRejected marks a refresh attempt the backend answered and
// denied. It never escapes the client; do maps it to [ErrSessionExpired].
var errRefreshRejected = errors.New("refresh rejected")

// Metrics returns the client's metrics collector.
//
// Metrics does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Metrics() *Metrics {
	if c == nil {
		return nil
	}
	return c.metrics
}

// MetricsSnapshot returns a point-in-time copy of all counters and
// histograms.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{}
	}
	return c.metrics.Snapshot()
}

// AuditDropped returns how many audit events were discarded under
// backpressure since the client was built.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// Close releases background resources. It drains and stops the audit
// dispatcher; the client must not be used after Close returns.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.audit.Close()
}

// do executes one backend call end to end: URL join, correlation ID,
// bearer attachment, response classification, and bounded silent recovery
// on auth failures. Auth failures on requireAuth calls trigger at most one
// refresh-and-replay per request; everything after that escalates.
func (c *Client) do(ctx context.Context, spec requestSpec) (internal.Envelope, error) {
	if c == nil || c.httpClient == nil {
		return internal.Envelope{}, ErrClientNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	requestID := requestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	retried := false
	for {
		rec, err := c.store.Get(ctx)
		if err != nil && !errors.Is(err, session.ErrCorruptRecord) {
			return internal.Envelope{}, fmt.Errorf("%w: %v", ErrNetwork, err)
		}
		if spec.requireAuth {
			if rec.Empty() {
				return internal.Envelope{}, ErrNotAuthenticated
			}
			if !retried && tokenExpiresWithin(rec.AccessToken, c.cfg.Refresh.ProactiveWindow) {
				if c.refreshAccessToken(ctx) == nil {
					rec, _ = c.store.Get(ctx)
				}
			}
		}

		status, respBody, err := c.send(ctx, spec, rec, requestID)
		if err != nil {
			c.metrics.Inc(MetricNetworkFailure)
			return internal.Envelope{}, fmt.Errorf("%w: %v", ErrNetwork, err)
		}

		if status >= 200 && status < 300 {
			env, err := internal.DecodeEnvelope(respBody)
			if err != nil {
				return internal.Envelope{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
			}
			if spec.out != nil {
				if err := env.DecodeData(spec.out); err != nil {
					return internal.Envelope{}, fmt.Errorf("%w: unexpected payload shape", ErrMalformedResponse)
				}
			}
			if spec.requireAuth {
				c.mu.Lock()
				c.failedStreak = 0
				c.mu.Unlock()
			}
			return env, nil
		}

		if spec.requireAuth && c.isAuthStatus(status) {
			c.metrics.Inc(MetricAuthFailure)

			if retried {
				c.expireSession(ctx, requestID)
				return internal.Envelope{}, ErrSessionExpired
			}

			c.mu.Lock()
			exhausted := c.failedStreak >= c.cfg.Refresh.MaxAttempts
			c.mu.Unlock()
			if exhausted {
				c.metrics.Inc(MetricRefreshExhausted)
				c.expireSession(ctx, requestID)
				return internal.Envelope{}, ErrSessionExpired
			}

			if err := c.refreshAccessToken(ctx); err != nil {
				if errors.Is(err, ErrNetwork) {
					return internal.Envelope{}, err
				}
				c.expireSession(ctx, requestID)
				return internal.Envelope{}, ErrSessionExpired
			}

			c.metrics.Inc(MetricRequestRetried)
			retried = true
			continue
		}

		env, _ := internal.DecodeEnvelope(respBody)
		c.metrics.Inc(MetricServerFailure)
		return env, &APIError{
			Status:    status,
			Message:   env.FailureMessage(),
			RequestID: requestID,
		}
	}
}

// send performs a single HTTP exchange and returns the status and body.
// Transport-level failures (DNS, refused connection, timeout) come back as
// an error; any HTTP response, whatever the status, does not.
func (c *Client) send(ctx context.Context, spec requestSpec, rec session.Record, requestID string) (int, []byte, error) {
	target := c.baseURL + spec.path
	if len(spec.query) > 0 {
		target += "?" + spec.query.Encode()
	}

	var body io.Reader
	if len(spec.body) > 0 {
		body = bytes.NewReader(spec.body)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, target, body)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.cfg.API.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.API.UserAgent)
	}
	if spec.contentType != "" {
		req.Header.Set("Content-Type", spec.contentType)
	}
	if rec.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+rec.AccessToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.metrics.Observe(MetricRequestLatency, time.Since(start))
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, respBody, nil
}

// isAuthStatus reports whether status signals an expired or invalid access
// token on an authenticated route. The deployed backend answers 400 instead
// of 401 on some routes; TreatBadRequestAsAuth covers that until fixed.
func (c *Client) isAuthStatus(status int) bool {
	if status == http.StatusUnauthorized {
		return true
	}
	return status == http.StatusBadRequest && c.cfg.Refresh.TreatBadRequestAsAuth
}

// refreshAccessToken obtains a new access token using the stored refresh
// credential. Concurrent callers coalesce onto one in-flight refresh.
//
// The failed-recovery streak is incremented per refresh the backend
// actually answered; it resets only when a replayed request succeeds or
// the session is replaced by a fresh login.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	c.mu.Lock()
	if call := c.inflight; call != nil {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrNetwork, ctx.Err())
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	c.inflight = call
	c.mu.Unlock()

	call.err = c.doRefresh(ctx)

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()
	close(call.done)

	return call.err
}

func (c *Client) doRefresh(ctx context.Context) error {
	rec, err := c.store.Get(ctx)
	if err != nil || rec.RefreshToken == "" {
		return errRefreshRejected
	}

	target := c.baseURL + c.cfg.Refresh.Endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.API.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.API.UserAgent)
	}
	req.AddCookie(&http.Cookie{Name: c.cfg.Refresh.CookieName, Value: rec.RefreshToken})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport failure, not a rejection. The streak does not move so
		// a flaky network cannot log the user out on its own.
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	c.mu.Lock()
	c.failedStreak++
	c.mu.Unlock()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.Inc(MetricRefreshFailure)
		c.emitAudit(ctx, auditEventRefreshFailure, false, errRefreshRejected, nil)
		return errRefreshRejected
	}

	env, err := internal.DecodeEnvelope(respBody)
	if err != nil {
		c.metrics.Inc(MetricRefreshFailure)
		return errRefreshRejected
	}

	var payload struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := env.DecodeData(&payload); err != nil || payload.AccessToken == "" {
		c.metrics.Inc(MetricRefreshFailure)
		return errRefreshRejected
	}

	next := session.Record{
		AccessToken:  payload.AccessToken,
		RefreshToken: rec.RefreshToken,
		User:         rec.User,
		SavedAt:      time.Now(),
	}
	if payload.RefreshToken != "" {
		next.RefreshToken = payload.RefreshToken
	}
	if err := c.store.Set(ctx, next); err != nil {
		c.metrics.Inc(MetricRefreshFailure)
		return errRefreshRejected
	}

	c.metrics.Inc(MetricRefreshSuccess)
	c.emitAudit(ctx, auditEventRefreshSuccess, true, nil, nil)
	return nil
}

// expireSession is the recovery-exhausted escalation: the stored session
// is cleared, in-memory auth state drops to logged-out, and the user is
// told to log in again. Idempotent.
func (c *Client) expireSession(ctx context.Context, requestID string) {
	_ = c.store.Clear(ctx)

	c.mu.Lock()
	c.user = nil
	c.authenticated = false
	c.failedStreak = 0
	c.mu.Unlock()

	c.metrics.Inc(MetricSessionExpired)
	c.emitAudit(ctx, auditEventSessionExpired, false, ErrSessionExpired, func() map[string]string {
		return map[string]string{"request_id": requestID}
	})
	c.notify(NoticeError, ErrSessionExpired.Error())
}

func (c *Client) setAuthState(user *session.UserSummary) {
	c.mu.Lock()
	c.user = user
	c.authenticated = true
	c.failedStreak = 0
	c.mu.Unlock()
}

func (c *Client) clearAuthState() {
	c.mu.Lock()
	c.user = nil
	c.authenticated = false
	c.failedStreak = 0
	c.mu.Unlock()
}

func (c *Client) currentUser() *session.UserSummary {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Client) notify(level NoticeLevel, message string) {
	if c == nil || c.notices == nil {
		return
	}
	c.notices.Notify(Notice{Level: level, Message: message})
}

// joinBaseURL normalizes the configured base URL so paths can be appended
// directly.
func joinBaseURL(raw string) string {
	return strings.TrimRight(raw, "/")
}
