package hmsauth

import (
	"context"
	"errors"

	"github.com/Vrushank2808/hmsauth/internal/stores"
	"github.com/Vrushank2808/hmsauth/session"
)

// Engine defines a public type used by hmsauth APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config        Config
	api           APIClient
	sessions      *session.Store
	loginAttempts *stores.LoginAttemptStore
	resetAttempts *stores.ResetAttemptStore
	audit         *auditDispatcher
	metrics       *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Sessions describes the sessions operation and its observable behavior.
//
// Sessions may return an error when input validation, dependency calls, or security checks fail.
// Sessions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Sessions() *session.Store {
	if e == nil {
		return nil
	}
	return e.sessions
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Logout describes the logout operation and its observable behavior.
//
// Logout clears the persistent session record for sessionID. Clearing an
// absent session succeeds; a logged-out browser that logs out again is not
// an error.
func (e *Engine) Logout(ctx context.Context, sessionID string) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}
	if sessionID == "" {
		return nil
	}

	sess, err := e.sessions.Load(ctx, sessionID)
	if err != nil && !errors.Is(err, session.ErrNoSession) && !errors.Is(err, session.ErrSessionCorrupt) {
		return err
	}

	removed, err := e.sessions.Clear(ctx, sessionID)
	if err != nil {
		return err
	}

	var email string
	var role Role
	if sess != nil {
		email = sess.Identity.Email
		role = sess.Identity.Role
	}

	if removed {
		e.metricInc(MetricSessionCleared)
	}
	e.emitAudit(ctx, auditEventLogout, true, email, role, "", "", nil, nil)

	return nil
}
