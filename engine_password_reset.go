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

// BeginPasswordReset describes the beginpasswordreset operation and its observable behavior.
//
// BeginPasswordReset opens an anonymous forgot-password flow for the
// email/role pair. The returned challenge carries the attempt ID that
// CompletePasswordReset and CancelPasswordReset accept.
//
// BeginPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// BeginPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) BeginPasswordReset(ctx context.Context, email string, role Role) (*ResetChallenge, error) {
	return e.beginReset(ctx, email, role, Identity{}, false)
}

// BeginSelfPasswordReset describes the beginselfpasswordreset operation and its observable behavior.
//
// BeginSelfPasswordReset opens a reset flow for the account behind an
// established session. The target email and role come from the session
// identity, never from caller input.
//
// BeginSelfPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// BeginSelfPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) BeginSelfPasswordReset(ctx context.Context, sess *session.Session) (*ResetChallenge, error) {
	if sess == nil || !sess.Valid() {
		return nil, ErrSessionRequired
	}
	return e.beginReset(ctx, sess.Identity.Email, sess.Identity.Role, sess.Identity, false)
}

// BeginDelegatedPasswordReset describes the begindelegatedpasswordreset operation and its observable behavior.
//
// BeginDelegatedPasswordReset opens a reset flow for another account on
// behalf of an operator. Only the admin role may delegate; the actor is
// recorded on the attempt and surfaces in the audit trail.
//
// BeginDelegatedPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// BeginDelegatedPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) BeginDelegatedPasswordReset(ctx context.Context, actor Identity, email string, role Role) (*ResetChallenge, error) {
	if !actor.Valid() {
		return nil, ErrSessionRequired
	}
	if actor.Role != RoleAdmin {
		return nil, ErrDelegationDenied
	}
	return e.beginReset(ctx, email, role, actor, true)
}

func (e *Engine) beginReset(ctx context.Context, email string, role Role, actor Identity, delegated bool) (*ResetChallenge, error) {
	if e == nil || e.api == nil || e.resetAttempts == nil {
		return nil, ErrEngineNotReady
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if !role.Valid() {
		return nil, ErrRoleInvalid
	}

	message, preview, err := e.api.RequestResetOTP(ctx, email, role)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			e.metricInc(MetricUpstreamUnavailable)
		}
		e.emitAudit(ctx, auditEventResetOTPRequested, false, email, role, actor.ID, "", err, nil)
		return nil, err
	}

	attemptID := uuid.NewString()
	expiresAt := time.Now().Add(e.config.PasswordReset.AttemptTTL)

	record := &stores.ResetAttempt{
		Email:       email,
		Role:        string(role),
		PreviewName: preview.FullName,
		Delegated:   delegated,
		ExpiresAt:   expiresAt.Unix(),
	}
	if delegated {
		record.ActorID = actor.ID
		record.ActorEmail = actor.Email
	}
	if err := e.resetAttempts.Save(ctx, attemptID, record, e.config.PasswordReset.AttemptTTL); err != nil {
		e.emitAudit(ctx, auditEventResetOTPRequested, false, email, role, actor.ID, "", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrResetUnavailable, err)
	}

	e.metricInc(MetricResetOTPRequested)
	if delegated {
		e.metricInc(MetricResetDelegated)
	}
	e.emitAudit(ctx, auditEventResetOTPRequested, true, email, role, actor.ID, attemptID, nil, func() map[string]string {
		if !delegated {
			return nil
		}
		return map[string]string{
			"delegated":   "true",
			"actor_email": actor.Email,
		}
	})

	if preview.Email == "" {
		preview.Email = email
	}

	return &ResetChallenge{
		AttemptID: attemptID,
		Preview:   preview,
		Message:   message,
		Delegated: delegated,
		ExpiresAt: expiresAt,
	}, nil
}

// CompletePasswordReset describes the completepasswordreset operation and its observable behavior.
//
// CompletePasswordReset verifies the OTP and replacement password for a
// pending reset. The mismatch and minimum-length checks run locally before
// the upstream is called and never count against the verify cap. The
// session store is untouched on every path; a user who resets their
// password stays logged in until their token expires.
//
// CompletePasswordReset may return an error when input validation, dependency calls, or security checks fail.
// CompletePasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CompletePasswordReset(ctx context.Context, attemptID, otp, newPassword, confirmPassword string) error {
	if e == nil || e.api == nil || e.resetAttempts == nil {
		return ErrEngineNotReady
	}
	if attemptID == "" {
		return ErrResetAttemptInvalid
	}

	record, err := e.resetAttempts.Get(ctx, attemptID)
	if err != nil {
		mapped := mapResetStoreErr(err)
		e.emitAudit(ctx, auditEventResetFailure, false, "", "", "", attemptID, mapped, nil)
		return mapped
	}

	otp = NormalizeOTP(otp)
	if !validOTP(otp) {
		return ErrOTPFormat
	}
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if len(newPassword) < e.config.PasswordReset.MinPasswordLength {
		return ErrPasswordPolicy
	}

	role, ok := session.ParseRole(record.Role)
	if !ok {
		_, _ = e.resetAttempts.Delete(ctx, attemptID)
		return ErrResetAttemptInvalid
	}

	if err := e.api.VerifyPasswordReset(ctx, record.Email, role, otp, newPassword); err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			e.metricInc(MetricUpstreamUnavailable)
			e.emitAudit(ctx, auditEventResetFailure, false, record.Email, role, record.ActorID, attemptID, err, nil)
			return err
		}

		exceeded, ferr := e.resetAttempts.RecordFailure(ctx, attemptID, e.config.PasswordReset.MaxVerifyAttempts)
		if ferr != nil {
			mapped := mapResetStoreErr(ferr)
			e.emitAudit(ctx, auditEventResetFailure, false, record.Email, role, record.ActorID, attemptID, mapped, nil)
			return mapped
		}
		if exceeded {
			e.metricInc(MetricResetAttemptsExceeded)
			e.emitAudit(ctx, auditEventResetAttemptsExceeded, false, record.Email, role, record.ActorID, attemptID, ErrResetAttemptsExceeded, nil)
			return ErrResetAttemptsExceeded
		}

		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, auditEventResetFailure, false, record.Email, role, record.ActorID, attemptID, err, nil)
		return err
	}

	_, _ = e.resetAttempts.Delete(ctx, attemptID)

	e.metricInc(MetricResetSuccess)
	e.emitAudit(ctx, auditEventResetSuccess, true, record.Email, role, record.ActorID, attemptID, nil, func() map[string]string {
		if !record.Delegated {
			return nil
		}
		return map[string]string{
			"delegated":   "true",
			"actor_email": record.ActorEmail,
		}
	})

	return nil
}

// CancelPasswordReset describes the cancelpasswordreset operation and its observable behavior.
//
// CancelPasswordReset consumes a pending reset so its OTP can no longer
// complete the flow. Cancelling an unknown or already-consumed attempt
// succeeds.
//
// CancelPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// CancelPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CancelPasswordReset(ctx context.Context, attemptID string) error {
	if e == nil || e.resetAttempts == nil {
		return ErrEngineNotReady
	}
	if attemptID == "" {
		return nil
	}

	removed, err := e.resetAttempts.Delete(ctx, attemptID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrResetUnavailable, err)
	}

	if removed {
		e.metricInc(MetricResetCancelled)
		e.emitAudit(ctx, auditEventResetCancelled, true, "", "", "", attemptID, nil, nil)
	}

	return nil
}

// ResetHistory describes the resethistory operation and its observable behavior.
//
// ResetHistory fetches the password-reset audit trail visible to the
// session behind sess. The upstream enforces which records the bearer may
// see; the engine only requires that a session exists.
//
// ResetHistory may return an error when input validation, dependency calls, or security checks fail.
// ResetHistory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ResetHistory(ctx context.Context, sess *session.Session) ([]ResetHistoryRecord, error) {
	if e == nil || e.api == nil {
		return nil, ErrEngineNotReady
	}
	if sess == nil || !sess.Valid() {
		return nil, ErrSessionRequired
	}

	records, err := e.api.ResetHistory(ctx, sess.Token)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			e.metricInc(MetricUpstreamUnavailable)
		}
		e.emitAudit(ctx, auditEventResetHistoryFetched, false, sess.Identity.Email, sess.Identity.Role, "", "", err, nil)
		return nil, err
	}

	e.metricInc(MetricResetHistoryFetched)
	e.emitAudit(ctx, auditEventResetHistoryFetched, true, sess.Identity.Email, sess.Identity.Role, "", "", nil, nil)

	return records, nil
}

func mapResetStoreErr(err error) error {
	switch {
	case errors.Is(err, stores.ErrResetAttemptNotFound),
		errors.Is(err, stores.ErrResetAttemptExpired):
		return ErrResetAttemptInvalid
	case errors.Is(err, stores.ErrResetAttemptBackend):
		return fmt.Errorf("%w: %v", ErrResetUnavailable, err)
	default:
		return err
	}
}
