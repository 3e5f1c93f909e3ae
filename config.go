package hmsauth

import (
	"errors"
	"time"
)

// LoginConfig defines a public type used by hmsauth APIs.
//
// LoginConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginConfig struct {
	// AttemptTTL bounds how long a pending login may sit between the OTP
	// request and its verification.
	AttemptTTL time.Duration

	// MaxVerifyAttempts caps wrong-credential submissions per attempt ID.
	// Reaching the cap consumes the attempt.
	MaxVerifyAttempts int

	// RedisPrefix namespaces pending login records.
	RedisPrefix string
}

// PasswordResetConfig defines a public type used by hmsauth APIs.
//
// PasswordResetConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordResetConfig struct {
	AttemptTTL        time.Duration
	MaxVerifyAttempts int

	// MinPasswordLength is enforced locally before the upstream is called.
	MinPasswordLength int

	RedisPrefix string
}

// SessionConfig defines a public type used by hmsauth APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
	TTL         time.Duration
}

// AuditConfig defines a public type used by hmsauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int

	// DropIfFull makes Emit non-blocking; dropped events are counted and
	// exposed through Engine.AuditDropped.
	DropIfFull bool
}

// MetricsConfig defines a public type used by hmsauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// Config defines a public type used by hmsauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Login         LoginConfig
	PasswordReset PasswordResetConfig
	Session       SessionConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
}

func defaultConfig() Config {
	return Config{
		Login: LoginConfig{
			AttemptTTL:        10 * time.Minute,
			MaxVerifyAttempts: 5,
			RedisPrefix:       "hla",
		},
		PasswordReset: PasswordResetConfig{
			AttemptTTL:        10 * time.Minute,
			MaxVerifyAttempts: 5,
			MinPasswordLength: 6,
			RedisPrefix:       "hra",
		},
		Session: SessionConfig{
			RedisPrefix: "hs",
			TTL:         24 * time.Hour,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// No reference fields today; the copy keeps builder and engine from
	// sharing a mutable Config.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c Config) Validate() error {
	if c.Login.AttemptTTL <= 0 {
		return errors.New("Login.AttemptTTL must be positive")
	}
	if c.Login.MaxVerifyAttempts < 1 {
		return errors.New("Login.MaxVerifyAttempts must be at least 1")
	}
	if c.Login.RedisPrefix == "" {
		return errors.New("Login.RedisPrefix must not be empty")
	}
	if c.PasswordReset.AttemptTTL <= 0 {
		return errors.New("PasswordReset.AttemptTTL must be positive")
	}
	if c.PasswordReset.MaxVerifyAttempts < 1 {
		return errors.New("PasswordReset.MaxVerifyAttempts must be at least 1")
	}
	if c.PasswordReset.MinPasswordLength < 1 {
		return errors.New("PasswordReset.MinPasswordLength must be at least 1")
	}
	if c.PasswordReset.RedisPrefix == "" {
		return errors.New("PasswordReset.RedisPrefix must not be empty")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("Session.RedisPrefix must not be empty")
	}
	if c.Session.TTL <= 0 {
		return errors.New("Session.TTL must be positive")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 1 {
		return errors.New("Audit.BufferSize must be at least 1 when audit is enabled")
	}
	return nil
}
