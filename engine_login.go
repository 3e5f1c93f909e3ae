package hmsauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Vrushank2808/hmsauth/internal/stores"
	"github.com/Vrushank2808/hmsauth/session"
)

// BeginLogin describes the beginlogin operation and its observable behavior.
//
// BeginLogin runs both upstream calls of the first login step in order:
// the account is confirmed to exist for the email/role pair before any OTP
// is dispatched. On success the returned challenge carries the attempt ID
// that CompleteLogin and CancelLogin accept.
//
// BeginLogin may return an error when input validation, dependency calls, or security checks fail.
// BeginLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) BeginLogin(ctx context.Context, email string, role Role) (*LoginChallenge, error) {
	if e == nil || e.api == nil || e.loginAttempts == nil {
		return nil, ErrEngineNotReady
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if !role.Valid() {
		return nil, ErrRoleInvalid
	}

	preview, err := e.api.CheckUser(ctx, email, role)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			e.metricInc(MetricUpstreamUnavailable)
		}
		e.emitAudit(ctx, auditEventLoginOTPRequested, false, email, role, "", "", err, nil)
		return nil, err
	}

	message, err := e.api.RequestLoginOTP(ctx, email, role)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			e.metricInc(MetricUpstreamUnavailable)
		}
		e.emitAudit(ctx, auditEventLoginOTPRequested, false, email, role, "", "", err, nil)
		return nil, err
	}

	attemptID := uuid.NewString()
	expiresAt := time.Now().Add(e.config.Login.AttemptTTL)

	record := &stores.LoginAttempt{
		Email:       email,
		Role:        string(role),
		PreviewName: preview.FullName,
		ExpiresAt:   expiresAt.Unix(),
	}
	if err := e.loginAttempts.Save(ctx, attemptID, record, e.config.Login.AttemptTTL); err != nil {
		e.emitAudit(ctx, auditEventLoginOTPRequested, false, email, role, "", "", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrLoginUnavailable, err)
	}

	e.metricInc(MetricLoginOTPRequested)
	e.emitAudit(ctx, auditEventLoginOTPRequested, true, email, role, "", attemptID, nil, nil)

	if preview.Email == "" {
		preview.Email = email
	}

	return &LoginChallenge{
		AttemptID: attemptID,
		Preview:   preview,
		Message:   message,
		ExpiresAt: expiresAt,
	}, nil
}

// CompleteLogin describes the completelogin operation and its observable behavior.
//
// CompleteLogin verifies the OTP and password for a pending login. On
// success the session record for sessionID is written before the attempt is
// consumed, so a crash between the two leaves a logged-in session and a
// harmless stale attempt rather than the reverse. Pass an empty sessionID
// to skip session persistence.
//
// CompleteLogin may return an error when input validation, dependency calls, or security checks fail.
// CompleteLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CompleteLogin(ctx context.Context, sessionID, attemptID, otp, password string) (*LoginResult, error) {
	if e == nil || e.api == nil || e.loginAttempts == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}
	if attemptID == "" {
		return nil, ErrLoginAttemptInvalid
	}

	record, err := e.loginAttempts.Get(ctx, attemptID)
	if err != nil {
		mapped := mapLoginStoreErr(err)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", "", "", attemptID, mapped, nil)
		return nil, mapped
	}

	otp = NormalizeOTP(otp)
	if !validOTP(otp) {
		return nil, ErrOTPFormat
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	role, ok := session.ParseRole(record.Role)
	if !ok {
		// Unreadable role in a stored record; consume the attempt.
		_, _ = e.loginAttempts.Delete(ctx, attemptID)
		return nil, ErrLoginAttemptInvalid
	}

	start := time.Now()
	result, err := e.api.VerifyLoginOTP(ctx, record.Email, role, otp, password)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	}
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			// Transport failure, not a wrong credential. The attempt
			// survives for a retry.
			e.metricInc(MetricUpstreamUnavailable)
			e.emitAudit(ctx, auditEventLoginFailure, false, record.Email, role, "", attemptID, err, nil)
			return nil, err
		}

		exceeded, ferr := e.loginAttempts.RecordFailure(ctx, attemptID, e.config.Login.MaxVerifyAttempts)
		if ferr != nil {
			mapped := mapLoginStoreErr(ferr)
			e.emitAudit(ctx, auditEventLoginFailure, false, record.Email, role, "", attemptID, mapped, nil)
			return nil, mapped
		}
		if exceeded {
			e.metricInc(MetricLoginAttemptsExceeded)
			e.emitAudit(ctx, auditEventLoginAttemptsExceeded, false, record.Email, role, "", attemptID, ErrLoginAttemptsExceeded, nil)
			return nil, ErrLoginAttemptsExceeded
		}

		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, record.Email, role, "", attemptID, err, nil)
		return nil, err
	}

	// The upstream verified the credentials for record.Role; the identity
	// it returns carries no role of its own.
	result.Identity.Role = role
	if result.Token == "" || !result.Identity.Valid() {
		e.emitAudit(ctx, auditEventLoginFailure, false, record.Email, role, "", attemptID, ErrUpstreamRejected, nil)
		return nil, ErrUpstreamRejected
	}

	if sessionID != "" {
		sess := &session.Session{
			Token:    result.Token,
			Identity: result.Identity,
		}
		if err := e.sessions.Save(ctx, sessionID, sess); err != nil {
			e.emitAudit(ctx, auditEventLoginFailure, false, record.Email, role, "", attemptID, err, nil)
			return nil, fmt.Errorf("%w: %v", ErrLoginUnavailable, err)
		}
		e.metricInc(MetricSessionEstablished)
	}

	_, _ = e.loginAttempts.Delete(ctx, attemptID)

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, record.Email, role, "", attemptID, nil, nil)

	return &result, nil
}

// CancelLogin describes the cancellogin operation and its observable behavior.
//
// CancelLogin consumes a pending login so its OTP can no longer complete
// the flow. Cancelling an unknown or already-consumed attempt succeeds.
//
// CancelLogin may return an error when input validation, dependency calls, or security checks fail.
// CancelLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CancelLogin(ctx context.Context, attemptID string) error {
	if e == nil || e.loginAttempts == nil {
		return ErrEngineNotReady
	}
	if attemptID == "" {
		return nil
	}

	removed, err := e.loginAttempts.Delete(ctx, attemptID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginUnavailable, err)
	}

	if removed {
		e.metricInc(MetricLoginCancelled)
		e.emitAudit(ctx, auditEventLoginCancelled, true, "", "", "", attemptID, nil, nil)
	}

	return nil
}

func mapLoginStoreErr(err error) error {
	switch {
	case errors.Is(err, stores.ErrLoginAttemptNotFound),
		errors.Is(err, stores.ErrLoginAttemptExpired):
		return ErrLoginAttemptInvalid
	case errors.Is(err, stores.ErrLoginAttemptBackend):
		return fmt.Errorf("%w: %v", ErrLoginUnavailable, err)
	default:
		return err
	}
}
