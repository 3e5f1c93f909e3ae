package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	hmsauth "github.com/Vrushank2808/hmsauth"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestCheckUserDecodesPreview(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/check-user" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["email"] != "asha@example.com" || body["role"] != "warden" {
			t.Fatalf("body = %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": "User found",
			"user":    map[string]string{"name": "Asha Verma", "email": "asha@example.com"},
		})
	}))

	preview, err := client.CheckUser(context.Background(), "asha@example.com", hmsauth.RoleWarden)
	if err != nil {
		t.Fatalf("CheckUser: %v", err)
	}
	if preview.FullName != "Asha Verma" {
		t.Fatalf("preview = %+v", preview)
	}
}

func TestVerifyLoginOTPReturnsTokenAndIdentity(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/verify-otp" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "bearer-token",
			"user":  map[string]string{"_id": "u1", "fullName": "Asha Verma", "email": "asha@example.com"},
		})
	}))

	result, err := client.VerifyLoginOTP(context.Background(), "asha@example.com", hmsauth.RoleWarden, "123456", "pw")
	if err != nil {
		t.Fatalf("VerifyLoginOTP: %v", err)
	}
	if result.Token != "bearer-token" || result.Identity.ID != "u1" || result.Identity.FullName != "Asha Verma" {
		t.Fatalf("result = %+v", result)
	}
}

func TestRejectionCarriesUpstreamMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid OTP or password"})
	}))

	_, err := client.VerifyLoginOTP(context.Background(), "a@example.com", hmsauth.RoleStudent, "123456", "pw")
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !errors.Is(err, hmsauth.ErrUpstreamRejected) {
		t.Fatalf("rejection does not unwrap to ErrUpstreamRejected: %v", err)
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Message != "Invalid OTP or password" {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := NewClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	srv.Close()

	_, err = client.CheckUser(context.Background(), "a@example.com", hmsauth.RoleStudent)
	if !errors.Is(err, hmsauth.ErrUpstreamUnavailable) {
		t.Fatalf("error = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestResetHistorySendsBearerToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/password-reset/history" || r.Method != http.MethodGet {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer bearer-token" {
			t.Fatalf("authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"history": []map[string]string{
				{"email": "s1@example.com", "role": "student", "resetBy": "admin@example.com", "timestamp": "2026-08-01T10:00:00Z"},
			},
		})
	}))

	records, err := client.ResetHistory(context.Background(), "bearer-token")
	if err != nil {
		t.Fatalf("ResetHistory: %v", err)
	}
	if len(records) != 1 || records[0].ResetBy != "admin@example.com" {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Timestamp.IsZero() {
		t.Fatal("timestamp not parsed")
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}
