package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	hmsauth "github.com/Vrushank2808/hmsauth"
)

const defaultTimeout = 15 * time.Second

var _ hmsauth.APIClient = (*Client)(nil)

// Error defines a public type used by hmsauth APIs.
//
// Error is an upstream rejection: the API answered with a non-2xx status
// and, usually, a human-readable message meant for the user.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("upstream returned status %d", e.Status)
}

func (e *Error) Unwrap() error {
	return hmsauth.ErrUpstreamRejected
}

// Config defines a public type used by hmsauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client defines a public type used by hmsauth APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient describes the newclient operation and its observable behavior.
//
// NewClient may return an error when input validation, dependency calls, or security checks fail.
// NewClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend: BaseURL required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
	}, nil
}

type userPayload struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (u userPayload) displayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Name
}

type messageResponse struct {
	Message string       `json:"message"`
	User    *userPayload `json:"user"`
}

type verifyOTPResponse struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

type historyEntry struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	ResetBy   string `json:"resetBy"`
	Timestamp string `json:"timestamp"`
}

type historyResponse struct {
	History []historyEntry `json:"history"`
}

// CheckUser describes the checkuser operation and its observable behavior.
//
// CheckUser may return an error when input validation, dependency calls, or security checks fail.
// CheckUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) CheckUser(ctx context.Context, email string, role hmsauth.Role) (hmsauth.IdentityPreview, error) {
	var resp messageResponse
	err := c.postJSON(ctx, "/auth/check-user", map[string]string{
		"email": email,
		"role":  string(role),
	}, "", &resp)
	if err != nil {
		return hmsauth.IdentityPreview{}, err
	}

	preview := hmsauth.IdentityPreview{Email: email}
	if resp.User != nil {
		preview.FullName = resp.User.displayName()
		if resp.User.Email != "" {
			preview.Email = resp.User.Email
		}
	}
	return preview, nil
}

// RequestLoginOTP describes the requestloginotp operation and its observable behavior.
//
// RequestLoginOTP may return an error when input validation, dependency calls, or security checks fail.
// RequestLoginOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) RequestLoginOTP(ctx context.Context, email string, role hmsauth.Role) (string, error) {
	var resp messageResponse
	err := c.postJSON(ctx, "/auth/request-otp", map[string]string{
		"email": email,
		"role":  string(role),
	}, "", &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// VerifyLoginOTP describes the verifyloginotp operation and its observable behavior.
//
// VerifyLoginOTP may return an error when input validation, dependency calls, or security checks fail.
// VerifyLoginOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) VerifyLoginOTP(ctx context.Context, email string, role hmsauth.Role, otp, password string) (hmsauth.LoginResult, error) {
	var resp verifyOTPResponse
	err := c.postJSON(ctx, "/auth/verify-otp", map[string]string{
		"email":    email,
		"role":     string(role),
		"otp":      otp,
		"password": password,
	}, "", &resp)
	if err != nil {
		return hmsauth.LoginResult{}, err
	}

	return hmsauth.LoginResult{
		Token: resp.Token,
		Identity: hmsauth.Identity{
			ID:       resp.User.ID,
			FullName: resp.User.displayName(),
			Email:    resp.User.Email,
		},
	}, nil
}

// RequestResetOTP describes the requestresetotp operation and its observable behavior.
//
// RequestResetOTP may return an error when input validation, dependency calls, or security checks fail.
// RequestResetOTP does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) RequestResetOTP(ctx context.Context, email string, role hmsauth.Role) (string, hmsauth.IdentityPreview, error) {
	var resp messageResponse
	err := c.postJSON(ctx, "/password-reset/request-otp", map[string]string{
		"email": email,
		"role":  string(role),
	}, "", &resp)
	if err != nil {
		return "", hmsauth.IdentityPreview{}, err
	}

	preview := hmsauth.IdentityPreview{Email: email}
	if resp.User != nil {
		preview.FullName = resp.User.displayName()
		if resp.User.Email != "" {
			preview.Email = resp.User.Email
		}
	}
	return resp.Message, preview, nil
}

// VerifyPasswordReset describes the verifypasswordreset operation and its observable behavior.
//
// VerifyPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// VerifyPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) VerifyPasswordReset(ctx context.Context, email string, role hmsauth.Role, otp, newPassword string) error {
	var resp messageResponse
	return c.postJSON(ctx, "/password-reset/verify-and-reset", map[string]string{
		"email":       email,
		"role":        string(role),
		"otp":         otp,
		"newPassword": newPassword,
	}, "", &resp)
}

// ResetHistory describes the resethistory operation and its observable behavior.
//
// ResetHistory may return an error when input validation, dependency calls, or security checks fail.
// ResetHistory does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) ResetHistory(ctx context.Context, token string) ([]hmsauth.ResetHistoryRecord, error) {
	var resp historyResponse
	if err := c.getJSON(ctx, "/password-reset/history", token, &resp); err != nil {
		return nil, err
	}

	records := make([]hmsauth.ResetHistoryRecord, 0, len(resp.History))
	for _, entry := range resp.History {
		record := hmsauth.ResetHistoryRecord{
			Email:   entry.Email,
			Role:    hmsauth.Role(entry.Role),
			ResetBy: entry.ResetBy,
		}
		if ts, err := time.Parse(time.RFC3339, entry.Timestamp); err == nil {
			record.Timestamp = ts
		}
		records = append(records, record)
	}
	return records, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, token string, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("backend: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("backend: build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", hmsauth.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %v", hmsauth.ErrUpstreamUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var parsed errorResponse
		if jerr := json.Unmarshal(data, &parsed); jerr == nil {
			if parsed.Message != "" {
				apiErr.Message = parsed.Message
			} else {
				apiErr.Message = parsed.Error
			}
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", hmsauth.ErrUpstreamUnavailable, err)
	}
	return nil
}
