package portal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gramseva/portal/session"
)

// loginPayload is the backend credential-grant shape shared by login and
// register.
type loginPayload struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         *session.UserSummary `json:"user"`
}

// Seed restores the client's auth state from the session store. It is
// meant to run once at startup, before any other call.
//
// A corrupt persisted record is treated as logged-out, not as a failure:
// the record is cleared and a zero state returned. Seed never talks to the
// backend; pair it with [Client.Verify] to confirm the restored session is
// still accepted.
func (c *Client) Seed(ctx context.Context) (SessionState, error) {
	if c == nil || c.store == nil {
		return SessionState{}, ErrClientNotReady
	}

	rec, err := c.store.Get(ctx)
	if err != nil {
		if errors.Is(err, session.ErrCorruptRecord) {
			_ = c.store.Clear(ctx)
			c.clearAuthState()
			return SessionState{}, nil
		}
		return SessionState{}, err
	}
	if rec.Empty() {
		c.clearAuthState()
		return SessionState{}, nil
	}

	c.setAuthState(rec.User)
	return c.Current(), nil
}

// Login authenticates with email and password and persists the granted
// session. A rejected credential comes back as an [APIError] carrying the
// backend's message; the stored session is left untouched in that case.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
func (c *Client) Login(ctx context.Context, email, password string) (SessionState, error) {
	if c == nil {
		return SessionState{}, ErrClientNotReady
	}
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return SessionState{}, err
	}

	var payload loginPayload
	_, err = c.do(ctx, requestSpec{
		method:      http.MethodPost,
		path:        "/users/login",
		body:        body,
		contentType: "application/json",
		out:         &payload,
	})
	if err != nil {
		c.metrics.Inc(MetricLoginFailure)
		c.emitAudit(ctx, auditEventLoginFailure, false, err, nil)
		return SessionState{}, err
	}
	if payload.AccessToken == "" {
		c.metrics.Inc(MetricLoginFailure)
		return SessionState{}, ErrMalformedResponse
	}

	rec := session.Record{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		User:         payload.User,
		SavedAt:      time.Now(),
	}
	if err := c.store.Set(ctx, rec); err != nil {
		return SessionState{}, err
	}
	c.setAuthState(payload.User)

	c.metrics.Inc(MetricLoginSuccess)
	c.emitAudit(ctx, auditEventLoginSuccess, true, nil, nil)
	c.notify(NoticeSuccess, "Logged in successfully")

	return c.Current(), nil
}

// Register creates a new citizen account. It does not log the new account
// in; follow with [Client.Login].
//
// Register may return an error when input validation, dependency calls, or security checks fail.
func (c *Client) Register(ctx context.Context, input RegisterInput) error {
	if c == nil {
		return ErrClientNotReady
	}
	body, err := json.Marshal(input)
	if err != nil {
		return err
	}

	_, err = c.do(ctx, requestSpec{
		method:      http.MethodPost,
		path:        "/users/register",
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		c.metrics.Inc(MetricRegisterFailure)
		c.emitAudit(ctx, auditEventRegisterFailure, false, err, nil)
		return err
	}

	c.metrics.Inc(MetricRegisterSuccess)
	c.emitAudit(ctx, auditEventRegisterSuccess, true, nil, nil)
	return nil
}

// Verify asks the backend whether the current access token is still
// accepted and refreshes the cached user record from the answer.
//
// Any failure drops the client to logged-out: there is no
// expired-but-cached state. The recovery protocol still runs first, so a
// merely stale token verifies fine after a silent refresh.
func (c *Client) Verify(ctx context.Context) (SessionState, error) {
	if c == nil {
		return SessionState{}, ErrClientNotReady
	}
	var payload struct {
		User *session.UserSummary `json:"user"`
	}
	_, err := c.do(ctx, requestSpec{
		method:      http.MethodGet,
		path:        "/users/verify",
		requireAuth: true,
		out:         &payload,
	})
	if err != nil {
		c.metrics.Inc(MetricVerifyFailure)
		c.emitAudit(ctx, auditEventVerifyFailure, false, err, nil)
		// A rejection the backend actually answered means the persisted
		// token is dead. Clear it so a later Seed cannot resurrect it;
		// transport failures keep the record for when the network returns.
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			_ = c.store.Clear(ctx)
		}
		c.clearAuthState()
		return SessionState{}, err
	}

	if payload.User != nil {
		if rec, recErr := c.store.Get(ctx); recErr == nil && !rec.Empty() {
			rec.User = payload.User
			_ = c.store.Set(ctx, rec)
		}
	}
	c.setAuthState(payload.User)

	c.metrics.Inc(MetricVerifySuccess)
	c.emitAudit(ctx, auditEventVerifySuccess, true, nil, nil)
	return c.Current(), nil
}

// Logout discards the session locally: the store is cleared and auth state
// drops to logged-out. The backend holds no server-side session to revoke,
// so no network call is made and Logout cannot fail on network grounds.
func (c *Client) Logout(ctx context.Context) error {
	if c == nil || c.store == nil {
		return ErrClientNotReady
	}

	c.emitAudit(ctx, auditEventLogout, true, nil, nil)

	if err := c.store.Clear(ctx); err != nil {
		return err
	}
	c.clearAuthState()

	c.metrics.Inc(MetricLogout)
	c.notify(NoticeSuccess, "Logged out")
	return nil
}

// Current returns the in-memory authentication snapshot without touching
// the store or the network.
//
// Current does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Current() SessionState {
	if c == nil {
		return SessionState{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	state := SessionState{IsAuthenticated: c.authenticated}
	if c.user != nil {
		u := *c.user
		state.User = &u
	}
	return state
}
