package portal

import (
	"errors"
	"net/http"

	hmsauth "github.com/Vrushank2808/hmsauth"
	"github.com/Vrushank2808/hmsauth/middleware"
	"github.com/Vrushank2808/hmsauth/session"
)

func (p *Portal) handleForgotPage(w http.ResponseWriter, r *http.Request) {
	roles := session.Roles()
	p.render(w, http.StatusOK, "forgot", loginView{Roles: roles[:]})
}

func (p *Portal) handleForgotBegin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	role, ok := session.ParseRole(r.PostFormValue("role"))
	if !ok {
		roles := session.Roles()
		p.render(w, http.StatusBadRequest, "forgot", loginView{Roles: roles[:], Error: "Select a valid role."})
		return
	}

	challenge, err := p.engine.BeginPasswordReset(r.Context(), email, role)
	if err != nil {
		p.log.Warn("reset begin failed", "role", role, "error", err)
		roles := session.Roles()
		p.render(w, statusFor(err), "forgot", loginView{Roles: roles[:], Error: userMessage(err)})
		return
	}

	p.renderResetOTP(w, challenge, "")
}

func (p *Portal) handleForgotComplete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	attemptID := r.PostFormValue("attempt_id")

	err := p.engine.CompletePasswordReset(
		r.Context(),
		attemptID,
		r.PostFormValue("otp"),
		r.PostFormValue("new_password"),
		r.PostFormValue("confirm_password"),
	)
	if err != nil {
		p.log.Warn("reset verify failed", "error", err)

		if errors.Is(err, hmsauth.ErrResetAttemptInvalid) || errors.Is(err, hmsauth.ErrResetAttemptsExceeded) {
			roles := session.Roles()
			p.render(w, statusFor(err), "forgot", loginView{Roles: roles[:], Error: userMessage(err)})
			return
		}

		p.render(w, statusFor(err), "otp", otpView{
			AttemptID: attemptID,
			Title:     "Confirm password reset",
			Action:    "/forgot-password/verify",
			CancelTo:  "/forgot-password/cancel",
			Reset:     true,
			Error:     userMessage(err),
		})
		return
	}

	// The reset never touches the session record; an already signed-in
	// browser stays signed in and lands back on its dashboard.
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (p *Portal) handleForgotCancel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := p.engine.CancelPasswordReset(r.Context(), r.PostFormValue("attempt_id")); err != nil {
		p.log.Warn("reset cancel failed", "error", err)
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (p *Portal) handleSelfResetBegin(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.DefaultLoginPath, http.StatusSeeOther)
		return
	}

	challenge, err := p.engine.BeginSelfPasswordReset(r.Context(), sess)
	if err != nil {
		p.log.Warn("self reset begin failed", "error", err)
		p.render(w, statusFor(err), "error", errorView{Message: userMessage(err)})
		return
	}

	p.renderResetOTP(w, challenge, "")
}

func (p *Portal) handleDelegatedResetBegin(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.DefaultLoginPath, http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	role, ok := session.ParseRole(r.PostFormValue("role"))
	if !ok {
		p.render(w, http.StatusBadRequest, "error", errorView{Message: "Select a valid role."})
		return
	}

	challenge, err := p.engine.BeginDelegatedPasswordReset(r.Context(), sess.Identity, email, role)
	if err != nil {
		p.log.Warn("delegated reset begin failed", "target_role", role, "error", err)
		p.render(w, statusFor(err), "error", errorView{Message: userMessage(err)})
		return
	}

	p.renderResetOTP(w, challenge, "")
}

func (p *Portal) handleResetHistory(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.DefaultLoginPath, http.StatusSeeOther)
		return
	}

	records, err := p.engine.ResetHistory(r.Context(), sess)
	if err != nil {
		p.log.Warn("reset history failed", "error", err)
		p.render(w, statusFor(err), "history", historyView{
			FullName: sess.Identity.FullName,
			Error:    userMessage(err),
		})
		return
	}

	rows := make([]historyRow, 0, len(records))
	for _, rec := range records {
		row := historyRow{
			Email:   rec.Email,
			Role:    string(rec.Role),
			ResetBy: rec.ResetBy,
		}
		if !rec.Timestamp.IsZero() {
			row.Timestamp = rec.Timestamp.Format("2006-01-02 15:04")
		}
		rows = append(rows, row)
	}

	p.render(w, http.StatusOK, "history", historyView{
		FullName: sess.Identity.FullName,
		Records:  rows,
	})
}

func (p *Portal) renderResetOTP(w http.ResponseWriter, challenge *hmsauth.ResetChallenge, errMsg string) {
	p.render(w, http.StatusOK, "otp", otpView{
		AttemptID: challenge.AttemptID,
		Title:     "Confirm password reset",
		Action:    "/forgot-password/verify",
		CancelTo:  "/forgot-password/cancel",
		FullName:  challenge.Preview.FullName,
		Email:     challenge.Preview.Email,
		Message:   challenge.Message,
		Reset:     true,
		Error:     errMsg,
	})
}
