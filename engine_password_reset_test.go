package hmsauth

import (
	"context"
	"errors"
	"testing"

	"github.com/Vrushank2808/hmsauth/session"
)

func resetStub() *stubAPI {
	return &stubAPI{
		preview: IdentityPreview{FullName: "Asha Verma", Email: "asha@example.com"},
		message: "Reset OTP sent",
		history: []ResetHistoryRecord{
			{Email: "s1@example.com", Role: RoleStudent, ResetBy: "admin@example.com"},
		},
	}
}

func testSession(role Role) *session.Session {
	return &session.Session{
		Token: "bearer-token",
		Identity: session.Identity{
			ID:       "u1",
			FullName: "Asha Verma",
			Email:    "asha@example.com",
			Role:     role,
		},
	}
}

func TestBeginPasswordResetIssuesChallenge(t *testing.T) {
	api := resetStub()
	engine := newTestEngine(t, api, nil)

	challenge, err := engine.BeginPasswordReset(context.Background(), "asha@example.com", RoleStudent)
	if err != nil {
		t.Fatalf("BeginPasswordReset: %v", err)
	}
	if challenge.AttemptID == "" {
		t.Fatal("challenge has no attempt ID")
	}
	if challenge.Delegated {
		t.Fatal("anonymous reset marked delegated")
	}
}

func TestBeginSelfPasswordResetUsesSessionIdentity(t *testing.T) {
	api := resetStub()
	engine := newTestEngine(t, api, nil)

	if _, err := engine.BeginSelfPasswordReset(context.Background(), nil); !errors.Is(err, ErrSessionRequired) {
		t.Fatalf("nil session error = %v, want ErrSessionRequired", err)
	}

	challenge, err := engine.BeginSelfPasswordReset(context.Background(), testSession(RoleWarden))
	if err != nil {
		t.Fatalf("BeginSelfPasswordReset: %v", err)
	}
	if challenge.Delegated {
		t.Fatal("self reset marked delegated")
	}

	api.mu.Lock()
	last := api.calls[len(api.calls)-1]
	api.mu.Unlock()
	if last.email != "asha@example.com" || last.role != RoleWarden {
		t.Fatalf("upstream called with %q/%q, want session identity", last.email, last.role)
	}
}

func TestBeginDelegatedPasswordResetRequiresAdmin(t *testing.T) {
	api := resetStub()
	engine := newTestEngine(t, api, nil)

	warden := testSession(RoleWarden).Identity
	if _, err := engine.BeginDelegatedPasswordReset(context.Background(), warden, "s1@example.com", RoleStudent); !errors.Is(err, ErrDelegationDenied) {
		t.Fatalf("non-admin delegation error = %v, want ErrDelegationDenied", err)
	}

	admin := testSession(RoleAdmin).Identity
	challenge, err := engine.BeginDelegatedPasswordReset(context.Background(), admin, "s1@example.com", RoleStudent)
	if err != nil {
		t.Fatalf("admin delegation: %v", err)
	}
	if !challenge.Delegated {
		t.Fatal("delegated reset not marked delegated")
	}
}

func TestCompletePasswordResetLocalGuards(t *testing.T) {
	api := resetStub()
	engine := newTestEngine(t, api, nil)

	challenge, _ := engine.BeginPasswordReset(context.Background(), "asha@example.com", RoleStudent)
	upstreamCalls := len(api.callNames())

	cases := []struct {
		name    string
		otp     string
		pw      string
		confirm string
		want    error
	}{
		{name: "malformed otp", otp: "12", pw: "newpass1", confirm: "newpass1", want: ErrOTPFormat},
		{name: "empty password", otp: "123456", pw: "", confirm: "", want: ErrPasswordRequired},
		{name: "mismatch", otp: "123456", pw: "newpass1", confirm: "newpass2", want: ErrPasswordMismatch},
		{name: "too short", otp: "123456", pw: "abc", confirm: "abc", want: ErrPasswordPolicy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := engine.CompletePasswordReset(context.Background(), challenge.AttemptID, tc.otp, tc.pw, tc.confirm)
			if !errors.Is(err, tc.want) {
				t.Fatalf("error = %v, want %v", err, tc.want)
			}
		})
	}

	// None of the local rejections reached the upstream.
	if got := len(api.callNames()); got != upstreamCalls {
		t.Fatalf("upstream called %d times during local guard failures", got-upstreamCalls)
	}
}

func TestCompletePasswordResetLeavesSessionIntact(t *testing.T) {
	api := resetStub()
	engine := newTestEngine(t, api, nil)

	// A signed-in browser resets its own password.
	sess := testSession(RoleStudent)
	if err := engine.Sessions().Save(context.Background(), "sid-1", sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	challenge, _ := engine.BeginSelfPasswordReset(context.Background(), sess)
	if err := engine.CompletePasswordReset(context.Background(), challenge.AttemptID, "123456", "newpass1", "newpass1"); err != nil {
		t.Fatalf("CompletePasswordReset: %v", err)
	}

	// The session record is exactly as it was.
	restored, err := engine.Sessions().Load(context.Background(), "sid-1")
	if err != nil {
		t.Fatalf("session gone after reset: %v", err)
	}
	if restored.Token != sess.Token {
		t.Fatalf("token changed across reset: %q != %q", restored.Token, sess.Token)
	}

	// The attempt ID died with the successful reset.
	if err := engine.CompletePasswordReset(context.Background(), challenge.AttemptID, "123456", "newpass1", "newpass1"); !errors.Is(err, ErrResetAttemptInvalid) {
		t.Fatalf("replayed reset error = %v, want ErrResetAttemptInvalid", err)
	}
}

func TestCompletePasswordResetAttemptCap(t *testing.T) {
	api := resetStub()
	api.verifyResetErr = errors.New("Invalid OTP")
	engine := newTestEngine(t, api, func(cfg *Config) {
		cfg.PasswordReset.MaxVerifyAttempts = 2
	})

	challenge, _ := engine.BeginPasswordReset(context.Background(), "asha@example.com", RoleStudent)

	if err := engine.CompletePasswordReset(context.Background(), challenge.AttemptID, "111111", "newpass1", "newpass1"); errors.Is(err, ErrResetAttemptsExceeded) {
		t.Fatal("cap reached one failure early")
	}
	if err := engine.CompletePasswordReset(context.Background(), challenge.AttemptID, "222222", "newpass1", "newpass1"); !errors.Is(err, ErrResetAttemptsExceeded) {
		t.Fatal("cap not enforced at limit")
	}

	api.verifyResetErr = nil
	if err := engine.CompletePasswordReset(context.Background(), challenge.AttemptID, "123456", "newpass1", "newpass1"); !errors.Is(err, ErrResetAttemptInvalid) {
		t.Fatalf("consumed attempt error = %v, want ErrResetAttemptInvalid", err)
	}
}

func TestCancelPasswordReset(t *testing.T) {
	api := resetStub()
	engine := newTestEngine(t, api, nil)

	challenge, _ := engine.BeginPasswordReset(context.Background(), "asha@example.com", RoleStudent)

	if err := engine.CancelPasswordReset(context.Background(), challenge.AttemptID); err != nil {
		t.Fatalf("CancelPasswordReset: %v", err)
	}
	if err := engine.CompletePasswordReset(context.Background(), challenge.AttemptID, "123456", "newpass1", "newpass1"); !errors.Is(err, ErrResetAttemptInvalid) {
		t.Fatalf("cancelled attempt error = %v, want ErrResetAttemptInvalid", err)
	}
}

func TestResetHistoryRequiresSession(t *testing.T) {
	api := resetStub()
	engine := newTestEngine(t, api, nil)

	if _, err := engine.ResetHistory(context.Background(), nil); !errors.Is(err, ErrSessionRequired) {
		t.Fatalf("nil session error = %v, want ErrSessionRequired", err)
	}

	records, err := engine.ResetHistory(context.Background(), testSession(RoleAdmin))
	if err != nil {
		t.Fatalf("ResetHistory: %v", err)
	}
	if len(records) != 1 || records[0].ResetBy != "admin@example.com" {
		t.Fatalf("records = %+v", records)
	}
}
