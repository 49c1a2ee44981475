package portal

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config defines a public type used by portal APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	API     APIConfig
	Refresh RefreshConfig
	Upload  UploadConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig defines a public type used by portal APIs.
//
// APIConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type APIConfig struct {
	BaseURL   string // e.g. "https://portal.example.gov.in/api"
	Timeout   time.Duration
	UserAgent string
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig defines a public type used by portal APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	// MaxAttempts bounds the cumulative failed-recovery streak before the
	// client stops silent refresh and forces re-authentication.
	MaxAttempts int

	// TreatBadRequestAsAuth mirrors the deployed backend, which signals an
	// expired token with HTTP 400 on some routes. Disable once the backend
	// returns 401 consistently.
	TreatBadRequestAsAuth bool

	// ProactiveWindow refreshes a JWT access token before attaching it when
	// its expiry is within the window. Zero disables; opaque (non-JWT)
	// tokens are always attached as-is.
	ProactiveWindow time.Duration

	// CookieName carries the refresh credential to the refresh endpoint.
	CookieName string

	// Endpoint is the refresh path relative to BaseURL.
	Endpoint string
}

// UploadConfig defines a public type used by portal APIs.
//
// UploadConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type UploadConfig struct {
	MaxReceiptBytes     int64
	MaxCertificateBytes int64
}

// AuditConfig defines a public type used by portal APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by portal APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration matching the deployed portal
// backend: three refresh attempts, 400-as-auth enabled, 30s request
// timeout.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout:   30 * time.Second,
			UserAgent: "portal-client-go",
		},
		Refresh: RefreshConfig{
			MaxAttempts:           3,
			TreatBadRequestAsAuth: true,
			ProactiveWindow:       0,
			CookieName:            "refreshToken",
			Endpoint:              "/users/refresh-token",
		},
		Upload: UploadConfig{
			MaxReceiptBytes:     5 << 20,
			MaxCertificateBytes: 10 << 20,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("API BaseURL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("API BaseURL must be an absolute URL")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API Timeout must be positive")
	}
	if c.Refresh.MaxAttempts <= 0 {
		return errors.New("Refresh MaxAttempts must be positive")
	}
	if c.Refresh.CookieName == "" {
		return errors.New("Refresh CookieName is required")
	}
	if c.Refresh.Endpoint == "" || !strings.HasPrefix(c.Refresh.Endpoint, "/") {
		return errors.New("Refresh Endpoint must be a rooted path")
	}
	if c.Refresh.ProactiveWindow < 0 {
		return errors.New("Refresh ProactiveWindow must not be negative")
	}
	if c.Upload.MaxReceiptBytes < 0 || c.Upload.MaxCertificateBytes < 0 {
		return errors.New("Upload size limits must not be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be positive when audit is enabled")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}
