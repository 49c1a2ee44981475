// Package session provides durable storage for the portal client's
// credentials and user summary.
//
// # Design
//
// A [Record] is the unit of persistence: access token, refresh token, and
// the authenticated user summary, saved and cleared as one value. Three
// implementations of [Store] are provided: MemoryStore for tests and
// short-lived processes, FileStore for CLI use (survives process restarts),
// and RedisStore for gateway deployments that share one session across
// workers.
//
// # Architecture boundaries
//
// This package owns persistence only. It never performs portal API calls,
// never inspects token contents, and never decides authentication state —
// that is the root package's job.
//
// # What this package must NOT do
//
//   - Persist a record with an empty access token.
//   - Treat a corrupt persisted record as fatal: Get reports
//     [ErrCorruptRecord] and the caller discards it.
package session
