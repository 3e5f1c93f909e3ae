package portal

import (
	"errors"
	"net/http"

	hmsauth "github.com/Vrushank2808/hmsauth"
	"github.com/Vrushank2808/hmsauth/session"
)

// userMessage maps an engine error to the sentence shown on the page.
// Upstream rejections carry their own message and pass through verbatim;
// everything else gets a fixed phrasing so internals never leak.
func userMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, hmsauth.ErrEmailRequired):
		return "Enter your email address."
	case errors.Is(err, hmsauth.ErrRoleInvalid):
		return "Select a valid role."
	case errors.Is(err, hmsauth.ErrOTPFormat):
		return "Enter the 6-digit code from your email."
	case errors.Is(err, hmsauth.ErrPasswordRequired):
		return "Enter your password."
	case errors.Is(err, hmsauth.ErrPasswordMismatch):
		return "Passwords do not match."
	case errors.Is(err, hmsauth.ErrPasswordPolicy):
		return "Password must be at least 6 characters."
	case errors.Is(err, hmsauth.ErrLoginAttemptInvalid),
		errors.Is(err, hmsauth.ErrResetAttemptInvalid):
		return "This code is no longer valid. Start again."
	case errors.Is(err, hmsauth.ErrLoginAttemptsExceeded),
		errors.Is(err, hmsauth.ErrResetAttemptsExceeded):
		return "Too many wrong attempts. Start again."
	case errors.Is(err, hmsauth.ErrSessionRequired):
		return "Sign in to continue."
	case errors.Is(err, hmsauth.ErrDelegationDenied):
		return "Only administrators can reset another account's password."
	case errors.Is(err, hmsauth.ErrUpstreamUnavailable),
		errors.Is(err, hmsauth.ErrLoginUnavailable),
		errors.Is(err, hmsauth.ErrResetUnavailable),
		errors.Is(err, session.ErrRedisUnavailable):
		return "Service is temporarily unavailable. Try again in a moment."
	case errors.Is(err, hmsauth.ErrUpstreamRejected):
		return err.Error()
	default:
		return "Something went wrong. Try again."
	}
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, hmsauth.ErrUpstreamUnavailable),
		errors.Is(err, hmsauth.ErrLoginUnavailable),
		errors.Is(err, hmsauth.ErrResetUnavailable),
		errors.Is(err, session.ErrRedisUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, hmsauth.ErrLoginAttemptInvalid),
		errors.Is(err, hmsauth.ErrResetAttemptInvalid):
		return http.StatusGone
	case errors.Is(err, hmsauth.ErrLoginAttemptsExceeded),
		errors.Is(err, hmsauth.ErrResetAttemptsExceeded):
		return http.StatusTooManyRequests
	case errors.Is(err, hmsauth.ErrSessionRequired):
		return http.StatusUnauthorized
	case errors.Is(err, hmsauth.ErrDelegationDenied):
		return http.StatusForbidden
	case errors.Is(err, hmsauth.ErrUpstreamRejected):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
