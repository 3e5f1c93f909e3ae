package portal

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	hmsauth "github.com/Vrushank2808/hmsauth"
	"github.com/Vrushank2808/hmsauth/middleware"
	"github.com/Vrushank2808/hmsauth/session"
)

// Config defines a public type used by hmsauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// SecureCookies marks the session cookie Secure; leave false only for
	// plain-HTTP development setups.
	SecureCookies bool

	Logger *slog.Logger
}

// Portal defines a public type used by hmsauth APIs.
//
// Portal instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Portal struct {
	engine *hmsauth.Engine
	cfg    Config
	log    *slog.Logger
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(engine *hmsauth.Engine, cfg Config) *Portal {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Portal{
		engine: engine,
		cfg:    cfg,
		log:    log,
	}
}

// Router describes the router operation and its observable behavior.
//
// Router may return an error when input validation, dependency calls, or security checks fail.
// Router does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p *Portal) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(p.withClientIP)

	// Public surface.
	r.Get("/", p.handleRoot)
	r.Get("/login", p.handleLoginPage)
	r.Post("/login", p.handleLoginBegin)
	r.Post("/login/verify", p.handleLoginComplete)
	r.Post("/login/cancel", p.handleLoginCancel)
	r.Get("/forgot-password", p.handleForgotPage)
	r.Post("/forgot-password", p.handleForgotBegin)
	r.Post("/forgot-password/verify", p.handleForgotComplete)
	r.Post("/forgot-password/cancel", p.handleForgotCancel)

	// Everything below requires a restored session.
	guard := middleware.Guard(p.engine.Sessions(), middleware.DefaultLoginPath)

	r.Group(func(r chi.Router) {
		r.Use(guard)
		r.Get("/dashboard", p.handleDashboard)
		r.Post("/logout", p.handleLogout)
		r.Get("/account/password-reset", p.handleSelfResetBegin)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(guard, middleware.RequireRole(session.RoleAdmin))
		r.Get("/", p.roleHome(session.RoleAdmin))
		r.Get("/students", p.roleSection(session.RoleAdmin, "Students"))
		r.Get("/rooms", p.roleSection(session.RoleAdmin, "Rooms"))
		r.Get("/complaints", p.roleSection(session.RoleAdmin, "Complaints"))
		r.Get("/visitors", p.roleSection(session.RoleAdmin, "Visitors"))
		r.Get("/staff", p.roleSection(session.RoleAdmin, "Staff"))
		r.Get("/admin-management", p.roleSection(session.RoleAdmin, "Admin management"))
		r.Get("/email-config", p.roleSection(session.RoleAdmin, "Email configuration"))
		r.Get("/password-resets", p.handleResetHistory)
		r.Post("/password-resets", p.handleDelegatedResetBegin)
		r.NotFound(p.handleFallback)
	})

	r.Route("/student", func(r chi.Router) {
		r.Use(guard, middleware.RequireRole(session.RoleStudent))
		r.Get("/", p.roleHome(session.RoleStudent))
		r.Get("/room", p.roleSection(session.RoleStudent, "My room"))
		r.Get("/complaints", p.roleSection(session.RoleStudent, "Complaints"))
		r.Get("/visitors", p.roleSection(session.RoleStudent, "Visitors"))
		r.Get("/fees", p.roleSection(session.RoleStudent, "Fees"))
		r.Get("/profile", p.roleSection(session.RoleStudent, "Profile"))
		r.NotFound(p.handleFallback)
	})

	r.Route("/warden", func(r chi.Router) {
		r.Use(guard, middleware.RequireRole(session.RoleWarden))
		r.Get("/", p.roleHome(session.RoleWarden))
		r.Get("/students", p.roleSection(session.RoleWarden, "Students"))
		r.Get("/rooms", p.roleSection(session.RoleWarden, "Rooms"))
		r.Get("/complaints", p.roleSection(session.RoleWarden, "Complaints"))
		r.NotFound(p.handleFallback)
	})

	r.Route("/security", func(r chi.Router) {
		r.Use(guard, middleware.RequireRole(session.RoleSecurity))
		r.Get("/", p.roleHome(session.RoleSecurity))
		r.Get("/visitors", p.roleSection(session.RoleSecurity, "Visitors"))
		r.Get("/checkin", p.roleSection(session.RoleSecurity, "Check-in"))
		r.NotFound(p.handleFallback)
	})

	// Any path outside the known tree resolves through the session's role,
	// landing signed-in users on their home and everyone else on login.
	r.NotFound(p.handleFallback)

	return r
}

func (p *Portal) withClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := hmsauth.WithClientIP(r.Context(), r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// sessionID returns the browser's session ID, minting the cookie on first
// contact so the login flow has a stable key to bind the session to.
func (p *Portal) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	sid := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    sid,
		Path:     "/",
		HttpOnly: true,
		Secure:   p.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

func (p *Portal) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   p.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func roleHomePath(role session.Role) string {
	switch role {
	case session.RoleAdmin:
		return "/admin/"
	case session.RoleStudent:
		return "/student/"
	case session.RoleWarden:
		return "/warden/"
	case session.RoleSecurity:
		return "/security/"
	}
	return ""
}

func roleNavLinks(role session.Role) []navLink {
	links := []navLink{
		{Label: "Dashboard", Path: roleHomePath(role)},
		{Label: "Reset my password", Path: "/account/password-reset"},
	}
	switch role {
	case session.RoleAdmin:
		links = append(links,
			navLink{Label: "Students", Path: "/admin/students"},
			navLink{Label: "Rooms", Path: "/admin/rooms"},
			navLink{Label: "Complaints", Path: "/admin/complaints"},
			navLink{Label: "Visitors", Path: "/admin/visitors"},
			navLink{Label: "Staff", Path: "/admin/staff"},
			navLink{Label: "Admin management", Path: "/admin/admin-management"},
			navLink{Label: "Email configuration", Path: "/admin/email-config"},
			navLink{Label: "Password resets", Path: "/admin/password-resets"},
		)
	case session.RoleStudent:
		links = append(links,
			navLink{Label: "My room", Path: "/student/room"},
			navLink{Label: "Complaints", Path: "/student/complaints"},
			navLink{Label: "Visitors", Path: "/student/visitors"},
			navLink{Label: "Fees", Path: "/student/fees"},
			navLink{Label: "Profile", Path: "/student/profile"},
		)
	case session.RoleWarden:
		links = append(links,
			navLink{Label: "Students", Path: "/warden/students"},
			navLink{Label: "Rooms", Path: "/warden/rooms"},
			navLink{Label: "Complaints", Path: "/warden/complaints"},
		)
	case session.RoleSecurity:
		links = append(links,
			navLink{Label: "Visitors", Path: "/security/visitors"},
			navLink{Label: "Check-in", Path: "/security/checkin"},
		)
	}
	return links
}
