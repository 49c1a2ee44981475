package portal

import (
	"errors"
	"net/http"

	"github.com/gramseva/portal/session"
)

// Builder assembles a [Client]. Builders are single-use: Build finalizes
// the configuration and further mutation is rejected.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	cfg        Config
	httpClient *http.Client
	store      session.Store
	notices    NoticeSink
	auditSink  AuditSink
	built      bool
}

// New returns a [Builder] seeded with [DefaultConfig].
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		cfg: DefaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cloneConfig(cfg)
	return b
}

// WithBaseURL sets the backend base URL, e.g.
// "https://portal.example.gov.in/api".
//
// WithBaseURL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.cfg.API.BaseURL = baseURL
	return b
}

// WithHTTPClient sets the underlying [http.Client]. When unset, Build
// constructs one with the configured timeout.
//
// WithHTTPClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithSessionStore sets the session store. A store is mandatory; Build
// fails without one.
//
// WithSessionStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithNoticeSink sets the receiver for user-visible notices.
//
// WithNoticeSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithNoticeSink(sink NoticeSink) *Builder {
	b.notices = sink
	return b
}

// WithAuditSink enables audit and sets its sink.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.cfg.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled toggles the metrics collector.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.cfg.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles per-request latency bucketing. Implies
// metrics must also be enabled to take effect.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.cfg.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and constructs the [Client].
//
// Build may return an error when input validation, dependency calls, or security checks fail.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.store == nil {
		return nil, errors.New("a session store is required")
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	b.built = true

	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: b.cfg.API.Timeout}
	}
	notices := b.notices
	if notices == nil {
		notices = NoOpNoticeSink{}
	}

	c := &Client{
		cfg:        b.cfg,
		httpClient: httpClient,
		store:      b.store,
		notices:    notices,
		metrics:    NewMetrics(b.cfg.Metrics),
		baseURL:    joinBaseURL(b.cfg.API.BaseURL),
	}
	c.audit = newAuditDispatcher(b.cfg.Audit, b.auditSink)

	return c, nil
}
