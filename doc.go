// Package portal provides the client core for a panchayat citizen-services
// portal: bearer-token session management with bounded silent refresh, the
// certificate-application review workflow, and on-demand signed URLs for
// protected documents.
//
// The package is designed as the sole egress point to the portal REST
// backend: Client methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// portal is the public surface. It exposes [Client], [Builder], [Config],
// and value types (Application, UserSummary, SignedURL, etc.). Session
// persistence lives in the session sub-package behind the [session.Store]
// interface; metric export lives under metrics/export.
//
// # What this package must NOT do
//
//   - Persist a signed URL or any other short-lived capability.
//   - Issue, sign, or verify credentials — the backend owns the token
//     lifecycle; this package only transports and refreshes them.
//   - Retry a request more than once, or refresh beyond the configured
//     attempt bound.
//
// # Recovery contract
//
// Every authenticated call that fails with an auth status runs the refresh
// protocol at most once, sharing a single in-flight refresh across
// concurrent failures. After the attempt budget is exhausted the client
// clears the stored session and surfaces [ErrSessionExpired]; it never
// retries silently past that point.
package portal
