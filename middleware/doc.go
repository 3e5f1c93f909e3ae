// Package middleware exposes the HTTP adapters that gate portal routes on a
// restored session.
//
// # Guards
//
//   - [Guard] — restores the session behind the portal cookie and injects it
//     into the request context, or redirects to the login route.
//   - [RequireRole] — rejects requests whose restored session carries the
//     wrong role. Must run inside [Guard].
//
// A store outage is not an auth failure: when Redis is unreachable the
// guards answer 503 so the browser keeps its cookie and retries later,
// instead of being bounced to login and losing the session reference.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into session.Store calls. It makes
// no authorization decision beyond session-present and role-equal.
//
// # What this package must NOT do
//
//   - Parse or create tokens (the session record is opaque here).
//   - Call the upstream API.
//   - Render role-specific views (the portal package owns dispatch).
package middleware
