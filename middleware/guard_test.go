package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Vrushank2808/hmsauth/session"
)

func newTestStore(t *testing.T) (*session.Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return session.NewStore(client, "hs", time.Hour), mr
}

func okHandler(t *testing.T, wantRole session.Role) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			t.Fatal("handler reached without session in context")
		}
		if wantRole != "" && sess.Identity.Role != wantRole {
			t.Fatalf("role = %q, want %q", sess.Identity.Role, wantRole)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func seedSession(t *testing.T, store *session.Store, sid string, role session.Role) {
	t.Helper()

	err := store.Save(context.Background(), sid, &session.Session{
		Token: "opaque-token",
		Identity: session.Identity{
			ID:       "u1",
			FullName: "Asha Verma",
			Email:    "asha@example.com",
			Role:     role,
		},
	})
	if err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestGuardRedirectsWithoutCookie(t *testing.T) {
	store, _ := newTestStore(t)

	handler := Guard(store, "")(okHandler(t, ""))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != DefaultLoginPath {
		t.Fatalf("redirect target = %q, want %q", got, DefaultLoginPath)
	}
}

func TestGuardRedirectsUnknownSession(t *testing.T) {
	store, _ := newTestStore(t)

	handler := Guard(store, "/signin")(okHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "no-such-session"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/signin" {
		t.Fatalf("redirect target = %q, want /signin", got)
	}
}

func TestGuardInjectsSession(t *testing.T) {
	store, _ := newTestStore(t)
	seedSession(t, store, "sid-1", session.RoleWarden)

	handler := Guard(store, "")(okHandler(t, session.RoleWarden))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid-1"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestGuardAnswers503WhenStoreDown(t *testing.T) {
	store, mr := newTestStore(t)
	seedSession(t, store, "sid-1", session.RoleStudent)

	mr.Close()

	handler := Guard(store, "")(okHandler(t, ""))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid-1"})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// An outage must not look like a logout.
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestRequireRole(t *testing.T) {
	store, _ := newTestStore(t)
	seedSession(t, store, "sid-1", session.RoleStudent)

	cases := []struct {
		name     string
		required session.Role
		want     int
	}{
		{name: "matching role passes", required: session.RoleStudent, want: http.StatusOK},
		{name: "other role forbidden", required: session.RoleAdmin, want: http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := Guard(store, "")(RequireRole(tc.required)(okHandler(t, "")))

			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sid-1"})

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequireRoleOutsideGuard(t *testing.T) {
	handler := RequireRole(session.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without a session")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
