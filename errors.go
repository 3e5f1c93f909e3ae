package hmsauth

import "errors"

var (
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrEmailRequired is an exported constant or variable used by the authentication engine.
	ErrEmailRequired = errors.New("email required")
	// ErrRoleInvalid is an exported constant or variable used by the authentication engine.
	ErrRoleInvalid = errors.New("invalid role")
	// ErrOTPFormat is an exported constant or variable used by the authentication engine.
	ErrOTPFormat = errors.New("otp must be exactly six digits")
	// ErrPasswordRequired is an exported constant or variable used by the authentication engine.
	ErrPasswordRequired = errors.New("password required")
	// ErrPasswordMismatch is an exported constant or variable used by the authentication engine.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrPasswordPolicy is an exported constant or variable used by the authentication engine.
	ErrPasswordPolicy = errors.New("password below minimum length")
	// ErrLoginAttemptInvalid is an exported constant or variable used by the authentication engine.
	ErrLoginAttemptInvalid = errors.New("login attempt invalid or expired")
	// ErrLoginAttemptsExceeded is an exported constant or variable used by the authentication engine.
	ErrLoginAttemptsExceeded = errors.New("login verification attempts exceeded")
	// ErrLoginUnavailable is an exported constant or variable used by the authentication engine.
	ErrLoginUnavailable = errors.New("login backend unavailable")
	// ErrResetAttemptInvalid is an exported constant or variable used by the authentication engine.
	ErrResetAttemptInvalid = errors.New("password reset attempt invalid or expired")
	// ErrResetAttemptsExceeded is an exported constant or variable used by the authentication engine.
	ErrResetAttemptsExceeded = errors.New("password reset verification attempts exceeded")
	// ErrResetUnavailable is an exported constant or variable used by the authentication engine.
	ErrResetUnavailable = errors.New("password reset backend unavailable")
	// ErrSessionRequired is an exported constant or variable used by the authentication engine.
	ErrSessionRequired = errors.New("active session required")
	// ErrDelegationDenied is an exported constant or variable used by the authentication engine.
	ErrDelegationDenied = errors.New("delegated password reset requires the admin role")
	// ErrUpstreamRejected is an exported constant or variable used by the authentication engine.
	ErrUpstreamRejected = errors.New("upstream rejected the request")
	// ErrUpstreamUnavailable is an exported constant or variable used by the authentication engine.
	ErrUpstreamUnavailable = errors.New("upstream api unreachable")
)
