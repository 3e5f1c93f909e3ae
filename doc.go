// Package hmsauth is the authentication and session core of the hostel
// management portal: two-step OTP login, self-service and delegated
// password resets, and a Redis-backed session store keyed by portal
// cookies.
//
// The package fronts the hostel-management REST API. It never verifies a
// credential itself; it sequences the upstream calls, guards each pending
// flow behind a single-use attempt ID, and persists the resulting
// token+identity pair as an atomic session record.
//
// Engine methods are safe to call from multiple goroutines after
// initialization through [Builder.Build].
//
// # Architecture boundaries
//
// hmsauth is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (LoginChallenge, ResetChallenge, MetricsSnapshot, etc.).
// Pending-flow storage and record encoding live under internal/ and are
// never exported; session records live in the session sub-package because
// middleware consumes them directly.
//
// # What this package must NOT do
//
//   - Hash, compare, or otherwise inspect passwords and OTPs beyond local
//     shape checks. Credential verification belongs to the upstream API.
//   - Expose Redis clients, attempt stores, or encoding details in its
//     public API.
//   - Import any sub-package that re-imports hmsauth (no import cycles).
package hmsauth
