package hmsauth

import (
	"context"
	"time"

	"github.com/Vrushank2808/hmsauth/session"
)

// Role defines a public type used by hmsauth APIs.
//
// Role instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Role = session.Role

// Identity defines a public type used by hmsauth APIs.
//
// Identity instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Identity = session.Identity

const (
	// RoleAdmin is an exported constant or variable used by the authentication engine.
	RoleAdmin = session.RoleAdmin
	// RoleStudent is an exported constant or variable used by the authentication engine.
	RoleStudent = session.RoleStudent
	// RoleWarden is an exported constant or variable used by the authentication engine.
	RoleWarden = session.RoleWarden
	// RoleSecurity is an exported constant or variable used by the authentication engine.
	RoleSecurity = session.RoleSecurity
)

// IdentityPreview defines a public type used by hmsauth APIs.
//
// IdentityPreview carries the non-sensitive subset of an account that a
// login or reset screen may show before any credential has been verified.
type IdentityPreview struct {
	FullName string
	Email    string
}

// LoginChallenge defines a public type used by hmsauth APIs.
//
// A LoginChallenge represents a pending two-step login. The AttemptID is the
// only handle a caller may use to finish or cancel the flow; once the flow
// completes either way, the ID is dead.
type LoginChallenge struct {
	AttemptID string
	Preview   IdentityPreview
	Message   string
	ExpiresAt time.Time
}

// LoginResult defines a public type used by hmsauth APIs.
//
// LoginResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginResult struct {
	Token    string
	Identity Identity
}

// ResetChallenge defines a public type used by hmsauth APIs.
//
// A ResetChallenge represents a pending password reset. Delegated reports
// whether the flow was opened by an operator on behalf of another account.
type ResetChallenge struct {
	AttemptID string
	Preview   IdentityPreview
	Message   string
	Delegated bool
	ExpiresAt time.Time
}

// ResetHistoryRecord defines a public type used by hmsauth APIs.
//
// ResetHistoryRecord instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ResetHistoryRecord struct {
	Email     string
	Role      Role
	ResetBy   string
	Timestamp time.Time
}

// APIClient defines a public type used by hmsauth APIs.
//
// APIClient is the upstream hostel-management API surface the engine drives.
// Implementations must return ErrUpstreamUnavailable (possibly wrapped) for
// transport-level failures and plain errors for upstream rejections, so the
// engine can tell "unreachable" apart from "said no".
type APIClient interface {
	// CheckUser confirms that an account exists for the email/role pair and
	// returns its preview. Must be called before RequestLoginOTP.
	CheckUser(ctx context.Context, email string, role Role) (IdentityPreview, error)

	// RequestLoginOTP asks the upstream to deliver a login OTP and returns
	// the upstream's confirmation message.
	RequestLoginOTP(ctx context.Context, email string, role Role) (string, error)

	// VerifyLoginOTP submits the OTP and password for a pending login and
	// returns the bearer token plus the verified identity.
	VerifyLoginOTP(ctx context.Context, email string, role Role, otp, password string) (LoginResult, error)

	// RequestResetOTP asks the upstream to deliver a password-reset OTP.
	RequestResetOTP(ctx context.Context, email string, role Role) (string, IdentityPreview, error)

	// VerifyPasswordReset submits the OTP and replacement password for a
	// pending reset.
	VerifyPasswordReset(ctx context.Context, email string, role Role, otp, newPassword string) error

	// ResetHistory fetches the password-reset audit trail visible to the
	// bearer of token.
	ResetHistory(ctx context.Context, token string) ([]ResetHistoryRecord, error)
}
