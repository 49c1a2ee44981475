package internaldefs

import (
	portal "github.com/gramseva/portal"
)

// CounterDef defines a public type used by portal APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   portal.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by portal APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   portal.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the portal client.
var CounterDefs = []CounterDef{
	{ID: portal.MetricLoginSuccess, Name: "portal_login_success_total", Help: "Successful login attempts."},
	{ID: portal.MetricLoginFailure, Name: "portal_login_failure_total", Help: "Failed login attempts."},
	{ID: portal.MetricRegisterSuccess, Name: "portal_register_success_total", Help: "Successful account registrations."},
	{ID: portal.MetricRegisterFailure, Name: "portal_register_failure_total", Help: "Failed account registrations."},
	{ID: portal.MetricVerifySuccess, Name: "portal_verify_success_total", Help: "Successful session verifications."},
	{ID: portal.MetricVerifyFailure, Name: "portal_verify_failure_total", Help: "Failed session verifications."},
	{ID: portal.MetricLogout, Name: "portal_logout_total", Help: "Logout operations."},
	{ID: portal.MetricRefreshSuccess, Name: "portal_refresh_success_total", Help: "Successful token refreshes."},
	{ID: portal.MetricRefreshFailure, Name: "portal_refresh_failure_total", Help: "Token refreshes the backend rejected."},
	{ID: portal.MetricRefreshExhausted, Name: "portal_refresh_exhausted_total", Help: "Recovery streaks that hit the attempt bound."},
	{ID: portal.MetricSessionExpired, Name: "portal_session_expired_total", Help: "Sessions cleared after recovery escalation."},
	{ID: portal.MetricRequestRetried, Name: "portal_request_retried_total", Help: "Requests replayed after a silent refresh."},
	{ID: portal.MetricAuthFailure, Name: "portal_auth_failure_total", Help: "Auth-classified responses on authenticated routes."},
	{ID: portal.MetricNetworkFailure, Name: "portal_network_failure_total", Help: "Transport-level request failures."},
	{ID: portal.MetricServerFailure, Name: "portal_server_failure_total", Help: "Non-auth backend error responses."},
	{ID: portal.MetricValidationFailure, Name: "portal_validation_failure_total", Help: "Client-side validation rejections."},
	{ID: portal.MetricSubmitSuccess, Name: "portal_submit_success_total", Help: "Successful application submissions."},
	{ID: portal.MetricSubmitFailure, Name: "portal_submit_failure_total", Help: "Failed application submissions."},
	{ID: portal.MetricReviewApproved, Name: "portal_review_approved_total", Help: "Applications approved by review."},
	{ID: portal.MetricReviewRejected, Name: "portal_review_rejected_total", Help: "Applications rejected by review."},
	{ID: portal.MetricCertificateAttached, Name: "portal_certificate_attached_total", Help: "Certificates attached to approved applications."},
	{ID: portal.MetricSignedURLIssued, Name: "portal_signed_url_issued_total", Help: "Signed URLs issued."},
	{ID: portal.MetricSignedURLFailure, Name: "portal_signed_url_failure_total", Help: "Failed signed URL requests."},
}

// HistogramDefs is an exported constant or variable used by the portal client.
var HistogramDefs = []HistogramDef{
	{ID: portal.MetricRequestLatency, Name: "portal_request_latency_seconds", Help: "Backend request latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the portal client.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the portal client.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
