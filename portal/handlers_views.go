package portal

import (
	"net/http"

	"github.com/Vrushank2808/hmsauth/middleware"
	"github.com/Vrushank2808/hmsauth/session"
)

func (p *Portal) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, middleware.DefaultLoginPath, http.StatusSeeOther)
		return
	}

	home := roleHomePath(sess.Identity.Role)
	if home == "" {
		// A session carrying a role this portal does not serve is a dead
		// end, not a candidate for any fallback view.
		p.render(w, http.StatusForbidden, "error", errorView{Message: "Invalid role."})
		return
	}

	http.Redirect(w, r, home, http.StatusSeeOther)
}

func (p *Portal) roleHome(role session.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.SessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, middleware.DefaultLoginPath, http.StatusSeeOther)
			return
		}

		p.render(w, http.StatusOK, "dashboard", dashboardView{
			FullName: sess.Identity.FullName,
			Email:    sess.Identity.Email,
			Role:     role,
			Links:    roleNavLinks(role),
		})
	}
}

// roleSection renders a named screen inside a role's subtree. The screens
// themselves are owned by other parts of the portal; this only places them.
func (p *Portal) roleSection(role session.Role, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.SessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, middleware.DefaultLoginPath, http.StatusSeeOther)
			return
		}

		p.render(w, http.StatusOK, "section", sectionView{
			Title:    title,
			FullName: sess.Identity.FullName,
			Role:     role,
			Links:    roleNavLinks(role),
		})
	}
}

// handleFallback resolves unknown paths through the session's role: a
// signed-in user lands on their own home, everyone else on the login page.
func (p *Portal) handleFallback(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
		if sess, err := p.engine.Sessions().Load(r.Context(), cookie.Value); err == nil {
			if home := roleHomePath(sess.Identity.Role); home != "" {
				http.Redirect(w, r, home, http.StatusSeeOther)
				return
			}
			p.render(w, http.StatusForbidden, "error", errorView{Message: "Invalid role."})
			return
		}
	}

	http.Redirect(w, r, middleware.DefaultLoginPath, http.StatusSeeOther)
}
