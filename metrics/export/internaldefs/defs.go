package internaldefs

import (
	hmsauth "github.com/Vrushank2808/hmsauth"
)

// CounterDef defines a public type used by hmsauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   hmsauth.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by hmsauth APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   hmsauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the authentication engine.
var CounterDefs = []CounterDef{
	{ID: hmsauth.MetricLoginOTPRequested, Name: "hmsauth_login_otp_requested_total", Help: "Login OTP dispatches."},
	{ID: hmsauth.MetricLoginSuccess, Name: "hmsauth_login_success_total", Help: "Successful login verifications."},
	{ID: hmsauth.MetricLoginFailure, Name: "hmsauth_login_failure_total", Help: "Failed login verifications."},
	{ID: hmsauth.MetricLoginAttemptsExceeded, Name: "hmsauth_login_attempts_exceeded_total", Help: "Login flows consumed by the verify attempt cap."},
	{ID: hmsauth.MetricLoginCancelled, Name: "hmsauth_login_cancelled_total", Help: "Login flows cancelled before verification."},
	{ID: hmsauth.MetricResetOTPRequested, Name: "hmsauth_reset_otp_requested_total", Help: "Password reset OTP dispatches."},
	{ID: hmsauth.MetricResetDelegated, Name: "hmsauth_reset_delegated_total", Help: "Password reset flows opened on behalf of another account."},
	{ID: hmsauth.MetricResetSuccess, Name: "hmsauth_reset_success_total", Help: "Successful password resets."},
	{ID: hmsauth.MetricResetFailure, Name: "hmsauth_reset_failure_total", Help: "Failed password reset verifications."},
	{ID: hmsauth.MetricResetAttemptsExceeded, Name: "hmsauth_reset_attempts_exceeded_total", Help: "Reset flows consumed by the verify attempt cap."},
	{ID: hmsauth.MetricResetCancelled, Name: "hmsauth_reset_cancelled_total", Help: "Password reset flows cancelled before verification."},
	{ID: hmsauth.MetricResetHistoryFetched, Name: "hmsauth_reset_history_fetched_total", Help: "Password reset history fetches."},
	{ID: hmsauth.MetricSessionEstablished, Name: "hmsauth_session_established_total", Help: "Session records written after login."},
	{ID: hmsauth.MetricSessionCleared, Name: "hmsauth_session_cleared_total", Help: "Session records cleared on logout."},
	{ID: hmsauth.MetricUpstreamUnavailable, Name: "hmsauth_upstream_unavailable_total", Help: "Upstream API calls that failed at the transport layer."},
}

// HistogramDefs is an exported constant or variable used by the authentication engine.
var HistogramDefs = []HistogramDef{
	{ID: hmsauth.MetricVerifyLatency, Name: "hmsauth_verify_latency_seconds", Help: "Login verify latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the authentication engine.
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

// HistogramBoundSuffix is an exported constant or variable used by the authentication engine.
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
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
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
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
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
