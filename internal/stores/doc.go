// Package stores persists in-flight flow state (pending login attempts and
// pending password-reset attempts) in Redis under opaque attempt IDs.
//
// An attempt record is the proof that step one of a two-step flow completed:
// step two can only run by presenting an attempt ID that still resolves to a
// live record. Cancelling a flow deletes the record, which also neutralizes
// any response still in flight for it.
//
// Records are binary-encoded with a leading version byte. Expiry is enforced
// twice: a Redis TTL and an embedded ExpiresAt checked on read, so a clock
// disagreement with Redis cannot resurrect a dead attempt.
//
// # Architecture boundaries
//
//   - No upstream API calls; the engine owns the protocol.
//   - No knowledge of sessions; login success is the engine's concern.
package stores
