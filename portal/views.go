package portal

import (
	"html/template"
	"net/http"

	"github.com/Vrushank2808/hmsauth/session"
)

type loginView struct {
	Roles []session.Role
	Error string
}

type otpView struct {
	AttemptID string
	Title     string
	Action    string
	CancelTo  string
	FullName  string
	Email     string
	Message   string
	Reset     bool
	Error     string
}

type dashboardView struct {
	FullName string
	Email    string
	Role     session.Role
	Links    []navLink
}

type sectionView struct {
	Title    string
	FullName string
	Role     session.Role
	Links    []navLink
}

type historyView struct {
	FullName string
	Records  []historyRow
	Error    string
}

type historyRow struct {
	Email     string
	Role      string
	ResetBy   string
	Timestamp string
}

type errorView struct {
	Status  int
	Message string
}

type navLink struct {
	Label string
	Path  string
}

var templates = template.Must(template.New("portal").Parse(`
{{define "layout_head"}}<!doctype html>
<html lang="en"><head><meta charset="utf-8"><title>Hostel Portal</title></head><body>{{end}}
{{define "layout_foot"}}</body></html>{{end}}

{{define "login"}}{{template "layout_head"}}
<h1>Sign in</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/login">
  <input type="email" name="email" placeholder="Email" required>
  <select name="role">
    {{range .Roles}}<option value="{{.}}">{{.}}</option>{{end}}
  </select>
  <button type="submit">Continue</button>
</form>
<p><a href="/forgot-password">Forgot password?</a></p>
{{template "layout_foot"}}{{end}}

{{define "otp"}}{{template "layout_head"}}
<h1>{{.Title}}</h1>
{{if .FullName}}<p>Hello, {{.FullName}}.</p>{{end}}
{{if .Message}}<p>{{.Message}}</p>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="{{.Action}}">
  <input type="hidden" name="attempt_id" value="{{.AttemptID}}">
  <input type="text" name="otp" inputmode="numeric" maxlength="6" placeholder="6-digit code" required>
  {{if .Reset}}
  <input type="password" name="new_password" placeholder="New password" required>
  <input type="password" name="confirm_password" placeholder="Confirm new password" required>
  {{else}}
  <input type="password" name="password" placeholder="Password" required>
  {{end}}
  <button type="submit">Verify</button>
</form>
<form method="post" action="{{.CancelTo}}">
  <input type="hidden" name="attempt_id" value="{{.AttemptID}}">
  <button type="submit">Cancel</button>
</form>
{{template "layout_foot"}}{{end}}

{{define "forgot"}}{{template "layout_head"}}
<h1>Reset password</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/forgot-password">
  <input type="email" name="email" placeholder="Email" required>
  <select name="role">
    {{range .Roles}}<option value="{{.}}">{{.}}</option>{{end}}
  </select>
  <button type="submit">Send code</button>
</form>
<p><a href="/login">Back to sign in</a></p>
{{template "layout_foot"}}{{end}}

{{define "dashboard"}}{{template "layout_head"}}
<h1>{{.Role}} dashboard</h1>
<p>Signed in as {{.FullName}} ({{.Email}})</p>
<nav><ul>
  {{range .Links}}<li><a href="{{.Path}}">{{.Label}}</a></li>{{end}}
</ul></nav>
<form method="post" action="/logout"><button type="submit">Sign out</button></form>
{{template "layout_foot"}}{{end}}

{{define "section"}}{{template "layout_head"}}
<h1>{{.Title}}</h1>
<p>{{.FullName}} — {{.Role}}</p>
<nav><ul>
  {{range .Links}}<li><a href="{{.Path}}">{{.Label}}</a></li>{{end}}
</ul></nav>
<form method="post" action="/logout"><button type="submit">Sign out</button></form>
{{template "layout_foot"}}{{end}}

{{define "history"}}{{template "layout_head"}}
<h1>Password reset history</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<table>
  <tr><th>Email</th><th>Role</th><th>Reset by</th><th>When</th></tr>
  {{range .Records}}<tr><td>{{.Email}}</td><td>{{.Role}}</td><td>{{.ResetBy}}</td><td>{{.Timestamp}}</td></tr>{{end}}
</table>
<h2>Reset a password</h2>
<form method="post" action="/admin/password-resets">
  <input type="email" name="email" placeholder="Account email" required>
  <select name="role">
    <option value="student">student</option>
    <option value="warden">warden</option>
    <option value="security">security</option>
    <option value="admin">admin</option>
  </select>
  <button type="submit">Send reset code</button>
</form>
{{template "layout_foot"}}{{end}}

{{define "error"}}{{template "layout_head"}}
<h1>Something went wrong</h1>
<p>{{.Message}}</p>
<p><a href="/login">Back to sign in</a></p>
{{template "layout_foot"}}{{end}}
`))

func (p *Portal) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		p.log.Error("render template", "template", name, "error", err)
	}
}
