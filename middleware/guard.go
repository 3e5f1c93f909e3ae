package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Vrushank2808/hmsauth/session"
)

// SessionCookie is the name of the portal session cookie. The cookie value
// is an opaque session ID; the session record itself never leaves Redis.
const SessionCookie = "hms_sid"

// DefaultLoginPath is where [Guard] sends requests without a session.
const DefaultLoginPath = "/login"

type sessionContextKey struct{}

// SessionFromContext describes the sessionfromcontext operation and its observable behavior.
//
// SessionFromContext may return an error when input validation, dependency calls, or security checks fail.
// SessionFromContext does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return sess, ok
}

// IdentityFromContext describes the identityfromcontext operation and its observable behavior.
//
// IdentityFromContext may return an error when input validation, dependency calls, or security checks fail.
// IdentityFromContext does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func IdentityFromContext(ctx context.Context) (session.Identity, bool) {
	sess, ok := SessionFromContext(ctx)
	if !ok {
		return session.Identity{}, false
	}
	return sess.Identity, true
}

// Guard describes the guard operation and its observable behavior.
//
// Guard restores the session behind the portal cookie. Requests without a
// restorable session are redirected to loginPath; requests that fail only
// because the store is unreachable get 503 and keep their cookie.
//
// Guard may return an error when input validation, dependency calls, or security checks fail.
// Guard does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Guard(store *session.Store, loginPath string) func(http.Handler) http.Handler {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			sess, err := store.Load(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, session.ErrRedisUnavailable) {
					http.Error(w, "service unavailable", http.StatusServiceUnavailable)
					return
				}
				// No session, or a corrupt record the store already wiped.
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole describes the requirerole operation and its observable behavior.
//
// RequireRole rejects requests whose restored session does not carry role.
// It answers 403, never a redirect: the caller has a live session and must
// not lose it by visiting a page their role does not own.
//
// RequireRole may return an error when input validation, dependency calls, or security checks fail.
// RequireRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func RequireRole(role session.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			if sess.Identity.Role != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
