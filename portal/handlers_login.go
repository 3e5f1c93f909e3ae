package portal

import (
	"errors"
	"net/http"

	hmsauth "github.com/Vrushank2808/hmsauth"
	"github.com/Vrushank2808/hmsauth/middleware"
	"github.com/Vrushank2808/hmsauth/session"
)

func (p *Portal) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (p *Portal) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// A browser with a live session has no business on the login screen.
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		if _, err := p.engine.Sessions().Load(r.Context(), cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	roles := session.Roles()
	p.render(w, http.StatusOK, "login", loginView{Roles: roles[:]})
}

func (p *Portal) handleLoginBegin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	role, ok := session.ParseRole(r.PostFormValue("role"))
	if !ok {
		roles := session.Roles()
		p.render(w, http.StatusBadRequest, "login", loginView{Roles: roles[:], Error: "Select a valid role."})
		return
	}

	challenge, err := p.engine.BeginLogin(r.Context(), email, role)
	if err != nil {
		p.log.Warn("login begin failed", "role", role, "error", err)
		roles := session.Roles()
		p.render(w, statusFor(err), "login", loginView{Roles: roles[:], Error: userMessage(err)})
		return
	}

	p.render(w, http.StatusOK, "otp", otpView{
		AttemptID: challenge.AttemptID,
		Title:     "Verify sign in",
		Action:    "/login/verify",
		CancelTo:  "/login/cancel",
		FullName:  challenge.Preview.FullName,
		Email:     challenge.Preview.Email,
		Message:   challenge.Message,
	})
}

func (p *Portal) handleLoginComplete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	attemptID := r.PostFormValue("attempt_id")
	otp := r.PostFormValue("otp")
	password := r.PostFormValue("password")

	sid := p.sessionID(w, r)

	result, err := p.engine.CompleteLogin(r.Context(), sid, attemptID, otp, password)
	if err != nil {
		p.log.Warn("login verify failed", "error", err)

		// A dead attempt means the whole flow restarts from step one.
		if errors.Is(err, hmsauth.ErrLoginAttemptInvalid) || errors.Is(err, hmsauth.ErrLoginAttemptsExceeded) {
			roles := session.Roles()
			p.render(w, statusFor(err), "login", loginView{Roles: roles[:], Error: userMessage(err)})
			return
		}

		p.render(w, statusFor(err), "otp", otpView{
			AttemptID: attemptID,
			Title:     "Verify sign in",
			Action:    "/login/verify",
			CancelTo:  "/login/cancel",
			Error:     userMessage(err),
		})
		return
	}

	http.Redirect(w, r, roleHomePath(result.Identity.Role), http.StatusSeeOther)
}

func (p *Portal) handleLoginCancel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := p.engine.CancelLogin(r.Context(), r.PostFormValue("attempt_id")); err != nil {
		p.log.Warn("login cancel failed", "error", err)
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (p *Portal) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if err := p.engine.Logout(r.Context(), cookie.Value); err != nil {
			p.log.Error("logout failed", "error", err)
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	p.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
