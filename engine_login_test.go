package hmsauth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Vrushank2808/hmsauth/session"
)

type apiCall struct {
	method string
	email  string
	role   Role
}

type stubAPI struct {
	mu    sync.Mutex
	calls []apiCall

	checkUserErr   error
	requestOTPErr  error
	verifyLoginErr error
	resetOTPErr    error
	verifyResetErr error
	historyErr     error

	preview IdentityPreview
	message string
	result  LoginResult
	history []ResetHistoryRecord
}

func (s *stubAPI) record(method, email string, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, apiCall{method: method, email: email, role: role})
}

func (s *stubAPI) callNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.calls))
	for i, c := range s.calls {
		names[i] = c.method
	}
	return names
}

func (s *stubAPI) CheckUser(ctx context.Context, email string, role Role) (IdentityPreview, error) {
	s.record("CheckUser", email, role)
	if s.checkUserErr != nil {
		return IdentityPreview{}, s.checkUserErr
	}
	return s.preview, nil
}

func (s *stubAPI) RequestLoginOTP(ctx context.Context, email string, role Role) (string, error) {
	s.record("RequestLoginOTP", email, role)
	if s.requestOTPErr != nil {
		return "", s.requestOTPErr
	}
	return s.message, nil
}

func (s *stubAPI) VerifyLoginOTP(ctx context.Context, email string, role Role, otp, password string) (LoginResult, error) {
	s.record("VerifyLoginOTP", email, role)
	if s.verifyLoginErr != nil {
		return LoginResult{}, s.verifyLoginErr
	}
	return s.result, nil
}

func (s *stubAPI) RequestResetOTP(ctx context.Context, email string, role Role) (string, IdentityPreview, error) {
	s.record("RequestResetOTP", email, role)
	if s.resetOTPErr != nil {
		return "", IdentityPreview{}, s.resetOTPErr
	}
	return s.message, s.preview, nil
}

func (s *stubAPI) VerifyPasswordReset(ctx context.Context, email string, role Role, otp, newPassword string) error {
	s.record("VerifyPasswordReset", email, role)
	return s.verifyResetErr
}

func (s *stubAPI) ResetHistory(ctx context.Context, token string) ([]ResetHistoryRecord, error) {
	s.record("ResetHistory", token, "")
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.history, nil
}

func newTestEngine(t *testing.T, api APIClient, mutate func(*Config)) *Engine {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := defaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithAPIClient(api).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine
}

func loginStub() *stubAPI {
	return &stubAPI{
		preview: IdentityPreview{FullName: "Asha Verma", Email: "asha@example.com"},
		message: "OTP sent to your email",
		result: LoginResult{
			Token:    "bearer-token",
			Identity: Identity{ID: "u1", FullName: "Asha Verma", Email: "asha@example.com"},
		},
	}
}

func TestBeginLoginCallsUpstreamInOrder(t *testing.T) {
	api := loginStub()
	engine := newTestEngine(t, api, nil)

	challenge, err := engine.BeginLogin(context.Background(), "asha@example.com", RoleWarden)
	if err != nil {
		t.Fatalf("BeginLogin: %v", err)
	}

	want := []string{"CheckUser", "RequestLoginOTP"}
	got := api.callNames()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("upstream calls = %v, want %v", got, want)
	}

	if challenge.AttemptID == "" {
		t.Fatal("challenge has no attempt ID")
	}
	if challenge.Preview.FullName != "Asha Verma" {
		t.Fatalf("preview name = %q", challenge.Preview.FullName)
	}
	if challenge.Message != "OTP sent to your email" {
		t.Fatalf("message = %q", challenge.Message)
	}
}

func TestBeginLoginUnknownUserSkipsOTPDispatch(t *testing.T) {
	api := loginStub()
	api.checkUserErr = errors.New("no account found for this role")
	engine := newTestEngine(t, api, nil)

	_, err := engine.BeginLogin(context.Background(), "ghost@example.com", RoleStudent)
	if err == nil {
		t.Fatal("expected error for unknown user")
	}

	for _, call := range api.callNames() {
		if call == "RequestLoginOTP" {
			t.Fatal("OTP dispatched for an account that failed the existence check")
		}
	}
}

func TestBeginLoginValidation(t *testing.T) {
	engine := newTestEngine(t, loginStub(), nil)

	if _, err := engine.BeginLogin(context.Background(), "  ", RoleStudent); !errors.Is(err, ErrEmailRequired) {
		t.Fatalf("blank email error = %v, want ErrEmailRequired", err)
	}
	if _, err := engine.BeginLogin(context.Background(), "a@example.com", Role("director")); !errors.Is(err, ErrRoleInvalid) {
		t.Fatalf("unknown role error = %v, want ErrRoleInvalid", err)
	}
}

func TestCompleteLoginEstablishesSessionAndConsumesAttempt(t *testing.T) {
	api := loginStub()
	engine := newTestEngine(t, api, nil)

	challenge, err := engine.BeginLogin(context.Background(), "asha@example.com", RoleWarden)
	if err != nil {
		t.Fatalf("BeginLogin: %v", err)
	}

	result, err := engine.CompleteLogin(context.Background(), "sid-1", challenge.AttemptID, "123456", "hunter22")
	if err != nil {
		t.Fatalf("CompleteLogin: %v", err)
	}
	if result.Identity.Role != RoleWarden {
		t.Fatalf("identity role = %q, want warden", result.Identity.Role)
	}

	sess, err := engine.Sessions().Load(context.Background(), "sid-1")
	if err != nil {
		t.Fatalf("session not restorable after login: %v", err)
	}
	if sess.Token != "bearer-token" || sess.Identity.Email != "asha@example.com" {
		t.Fatalf("restored session = %+v", sess)
	}

	// The attempt ID died with the successful verify.
	if _, err := engine.CompleteLogin(context.Background(), "sid-2", challenge.AttemptID, "123456", "hunter22"); !errors.Is(err, ErrLoginAttemptInvalid) {
		t.Fatalf("replayed attempt error = %v, want ErrLoginAttemptInvalid", err)
	}
}

func TestCompleteLoginNormalizesOTP(t *testing.T) {
	api := loginStub()
	engine := newTestEngine(t, api, nil)

	challenge, _ := engine.BeginLogin(context.Background(), "asha@example.com", RoleStudent)

	if _, err := engine.CompleteLogin(context.Background(), "sid-1", challenge.AttemptID, " 12-34 56 ", "pw"); err != nil {
		t.Fatalf("normalized OTP rejected: %v", err)
	}
}

func TestCompleteLoginRejectsBadOTPShape(t *testing.T) {
	engine := newTestEngine(t, loginStub(), nil)

	challenge, _ := engine.BeginLogin(context.Background(), "asha@example.com", RoleStudent)

	if _, err := engine.CompleteLogin(context.Background(), "sid-1", challenge.AttemptID, "1234", "pw"); !errors.Is(err, ErrOTPFormat) {
		t.Fatalf("short OTP error = %v, want ErrOTPFormat", err)
	}
	if _, err := engine.CompleteLogin(context.Background(), "sid-1", challenge.AttemptID, "123456", ""); !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("empty password error = %v, want ErrPasswordRequired", err)
	}
}

func TestCompleteLoginFailureLeavesSessionStoreUntouched(t *testing.T) {
	api := loginStub()
	rejected := errors.New("Invalid OTP")
	api.verifyLoginErr = rejected
	engine := newTestEngine(t, api, nil)

	challenge, _ := engine.BeginLogin(context.Background(), "asha@example.com", RoleStudent)

	if _, err := engine.CompleteLogin(context.Background(), "sid-1", challenge.AttemptID, "123456", "pw"); !errors.Is(err, rejected) {
		t.Fatalf("error = %v, want upstream rejection", err)
	}

	if _, err := engine.Sessions().Load(context.Background(), "sid-1"); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("session store state = %v, want ErrNoSession", err)
	}

	// The attempt survives a wrong credential; the same ID verifies once
	// the right one arrives.
	api.verifyLoginErr = nil
	if _, err := engine.CompleteLogin(context.Background(), "sid-1", challenge.AttemptID, "123456", "pw"); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
}

func TestCompleteLoginAttemptCapConsumesAttempt(t *testing.T) {
	api := loginStub()
	api.verifyLoginErr = errors.New("Invalid OTP")
	engine := newTestEngine(t, api, func(cfg *Config) {
		cfg.Login.MaxVerifyAttempts = 2
	})

	challenge, _ := engine.BeginLogin(context.Background(), "asha@example.com", RoleStudent)

	if _, err := engine.CompleteLogin(context.Background(), "sid-1", challenge.AttemptID, "111111", "pw"); errors.Is(err, ErrLoginAttemptsExceeded) {
		t.Fatal("cap reached one failure early")
	}
	if _, err := engine.CompleteLogin(context.Background(), "sid-1", challenge.AttemptID, "222222", "pw"); !errors.Is(err, ErrLoginAttemptsExceeded) {
		t.Fatal("cap not enforced at limit")
	}

	// Even the right credential is dead now.
	api.verifyLoginErr = nil
	if _, err := engine.CompleteLogin(context.Background(), "sid-1", challenge.AttemptID, "123456", "pw"); !errors.Is(err, ErrLoginAttemptInvalid) {
		t.Fatalf("consumed attempt error = %v, want ErrLoginAttemptInvalid", err)
	}
}

func TestCompleteLoginTransportFailureDoesNotCount(t *testing.T) {
	api := loginStub()
	api.verifyLoginErr = ErrUpstreamUnavailable
	engine := newTestEngine(t, api, func(cfg *Config) {
		cfg.Login.MaxVerifyAttempts = 1
	})

	challenge, _ := engine.BeginLogin(context.Background(), "asha@example.com", RoleStudent)

	if _, err := engine.CompleteLogin(context.Background(), "sid-1", challenge.AttemptID, "123456", "pw"); !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("error = %v, want ErrUpstreamUnavailable", err)
	}

	// The outage did not burn the single allowed attempt.
	api.verifyLoginErr = nil
	if _, err := engine.CompleteLogin(context.Background(), "sid-1", challenge.AttemptID, "123456", "pw"); err != nil {
		t.Fatalf("retry after outage: %v", err)
	}
}

func TestCancelLoginNeutralizesAttempt(t *testing.T) {
	api := loginStub()
	engine := newTestEngine(t, api, nil)

	challenge, _ := engine.BeginLogin(context.Background(), "asha@example.com", RoleStudent)

	if err := engine.CancelLogin(context.Background(), challenge.AttemptID); err != nil {
		t.Fatalf("CancelLogin: %v", err)
	}
	if _, err := engine.CompleteLogin(context.Background(), "sid-1", challenge.AttemptID, "123456", "pw"); !errors.Is(err, ErrLoginAttemptInvalid) {
		t.Fatalf("cancelled attempt error = %v, want ErrLoginAttemptInvalid", err)
	}

	// Cancelling twice is not an error.
	if err := engine.CancelLogin(context.Background(), challenge.AttemptID); err != nil {
		t.Fatalf("repeat cancel: %v", err)
	}
}

func TestLoginAttemptExpires(t *testing.T) {
	api := loginStub()
	engine := newTestEngine(t, api, func(cfg *Config) {
		cfg.Login.AttemptTTL = time.Second
	})

	challenge, _ := engine.BeginLogin(context.Background(), "asha@example.com", RoleStudent)

	if time.Until(challenge.ExpiresAt) > 2*time.Second {
		t.Fatalf("challenge expiry too far out: %v", challenge.ExpiresAt)
	}
}

func TestLogoutClearsSessionRecord(t *testing.T) {
	api := loginStub()
	engine := newTestEngine(t, api, nil)

	challenge, _ := engine.BeginLogin(context.Background(), "asha@example.com", RoleStudent)
	if _, err := engine.CompleteLogin(context.Background(), "sid-1", challenge.AttemptID, "123456", "pw"); err != nil {
		t.Fatalf("CompleteLogin: %v", err)
	}

	if err := engine.Logout(context.Background(), "sid-1"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := engine.Sessions().Load(context.Background(), "sid-1"); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("session survives logout: %v", err)
	}

	// Idempotent.
	if err := engine.Logout(context.Background(), "sid-1"); err != nil {
		t.Fatalf("repeat logout: %v", err)
	}
}

func TestNormalizeOTP(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"123456", "123456"},
		{" 12-34 56 ", "123456"},
		{"1234567890", "123456"},
		{"12ab34", "1234"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeOTP(tc.in); got != tc.want {
			t.Errorf("NormalizeOTP(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
