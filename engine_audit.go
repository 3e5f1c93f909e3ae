package hmsauth

import (
	"context"
	"errors"
	"time"

	"github.com/Vrushank2808/hmsauth/internal/stores"
	"github.com/Vrushank2808/hmsauth/session"
)

const (
	auditEventLoginOTPRequested     = "login_otp_requested"
	auditEventLoginSuccess          = "login_success"
	auditEventLoginFailure          = "login_failure"
	auditEventLoginAttemptsExceeded = "login_attempts_exceeded"
	auditEventLoginCancelled        = "login_cancelled"
	auditEventResetOTPRequested     = "password_reset_otp_requested"
	auditEventResetSuccess          = "password_reset_success"
	auditEventResetFailure          = "password_reset_failure"
	auditEventResetAttemptsExceeded = "password_reset_attempts_exceeded"
	auditEventResetCancelled        = "password_reset_cancelled"
	auditEventResetHistoryFetched   = "password_reset_history_fetched"
	auditEventLogout                = "logout"
)

// AuditErrorCode defines a public type used by hmsauth APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrEmailRequired    AuditErrorCode = "email_required"
	auditErrRoleInvalid      AuditErrorCode = "role_invalid"
	auditErrOTPFormat        AuditErrorCode = "otp_format"
	auditErrPasswordRequired AuditErrorCode = "password_required"
	auditErrPasswordMismatch AuditErrorCode = "password_mismatch"
	auditErrPasswordPolicy   AuditErrorCode = "password_policy"
	auditErrAttemptInvalid   AuditErrorCode = "attempt_invalid"
	auditErrAttemptsExceeded AuditErrorCode = "attempts_exceeded"
	auditErrSessionRequired  AuditErrorCode = "session_required"
	auditErrDelegationDenied AuditErrorCode = "delegation_denied"
	auditErrSessionStore     AuditErrorCode = "session_store_unavailable"
	auditErrUpstreamRejected AuditErrorCode = "upstream_rejected"
	auditErrUnavailable      AuditErrorCode = "backend_unavailable"
	auditErrInternal         AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	email string,
	role Role,
	actorID string,
	attemptID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Email:     email,
		Role:      string(role),
		ActorID:   actorID,
		AttemptID: attemptID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrEmailRequired):
		return auditErrEmailRequired
	case errors.Is(err, ErrRoleInvalid):
		return auditErrRoleInvalid
	case errors.Is(err, ErrOTPFormat):
		return auditErrOTPFormat
	case errors.Is(err, ErrPasswordRequired):
		return auditErrPasswordRequired
	case errors.Is(err, ErrPasswordMismatch):
		return auditErrPasswordMismatch
	case errors.Is(err, ErrPasswordPolicy):
		return auditErrPasswordPolicy
	case errors.Is(err, ErrLoginAttemptInvalid),
		errors.Is(err, ErrResetAttemptInvalid),
		errors.Is(err, stores.ErrLoginAttemptNotFound),
		errors.Is(err, stores.ErrLoginAttemptExpired),
		errors.Is(err, stores.ErrResetAttemptNotFound),
		errors.Is(err, stores.ErrResetAttemptExpired):
		return auditErrAttemptInvalid
	case errors.Is(err, ErrLoginAttemptsExceeded),
		errors.Is(err, ErrResetAttemptsExceeded):
		return auditErrAttemptsExceeded
	case errors.Is(err, ErrSessionRequired):
		return auditErrSessionRequired
	case errors.Is(err, ErrDelegationDenied):
		return auditErrDelegationDenied
	case errors.Is(err, session.ErrRedisUnavailable):
		return auditErrSessionStore
	case errors.Is(err, ErrLoginUnavailable),
		errors.Is(err, ErrResetUnavailable),
		errors.Is(err, ErrUpstreamUnavailable),
		errors.Is(err, stores.ErrLoginAttemptBackend),
		errors.Is(err, stores.ErrResetAttemptBackend):
		return auditErrUnavailable
	case errors.Is(err, ErrUpstreamRejected):
		return auditErrUpstreamRejected
	default:
		return auditErrInternal
	}
}
