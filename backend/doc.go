// Package backend implements the hmsauth API client over the hostel
// management REST API.
//
// The client translates between the wire JSON the upstream speaks and the
// value types hmsauth exposes. Upstream rejections (any non-2xx status with
// a decodable body) surface as [*Error] wrapping hmsauth.ErrUpstreamRejected
// so callers can show the upstream's message verbatim; transport failures
// wrap hmsauth.ErrUpstreamUnavailable and carry no user-facing message.
//
// # Architecture boundaries
//
// backend knows URLs, methods, and JSON shapes. It holds no state beyond
// the HTTP client, performs no retries, and never touches Redis.
package backend
