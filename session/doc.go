// Package session holds the authenticated credential/identity pair for one
// portal visitor and persists it in Redis as a single versioned record.
//
// # Model
//
// A [Session] is the pair of the upstream-issued bearer token and the
// [Identity] it was issued for. The two travel together: one Redis SET writes
// both, one DEL removes both, so the pair can never be observed half-set.
//
// # Restore rules
//
// [Store.Load] treats a structurally invalid record (empty token, empty
// email, unknown role) the same way it treats an undecodable blob: the key is
// wiped and the visitor is unauthenticated. A token that parses as a JWT with
// an expiry in the past is wiped as well; tokens that do not parse as JWTs
// stay opaque and are restored untouched.
//
// # Architecture boundaries
//
// This package owns session encoding and storage only. It does NOT talk to
// the upstream API, issue tokens, or decide which views a role may reach.
package session
