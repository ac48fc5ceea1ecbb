package ui

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"

	custommw "github.com/karoldydo/i18n-mate-sub003/internal/admin/httpserver/middleware"
	authtpl "github.com/karoldydo/i18n-mate-sub003/internal/admin/templates/auth"
)

// LoginPage renders the sign-in form.
func (h *Handlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	templ.Handler(authtpl.Login()).ServeHTTP(w, r)
}

// LoginSubmit stores the submitted token in the session cookie and sends the
// browser back to the admin root.
func (h *Handlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "could not parse form", http.StatusBadRequest)
		return
	}

	token := strings.TrimSpace(r.PostFormValue("token"))
	if token == "" {
		templ.Handler(authtpl.Login()).ServeHTTP(w, r)
		return
	}

	basePath := custommw.BasePathFromContext(r.Context())
	http.SetCookie(w, &http.Cookie{
		Name:     "__session",
		Value:    token,
		Path:     basePath,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, basePath, http.StatusFound)
}

// Logout clears the session cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	basePath := custommw.BasePathFromContext(r.Context())
	http.SetCookie(w, &http.Cookie{
		Name:     "__session",
		Value:    "",
		Path:     basePath,
		MaxAge:   -1,
		HttpOnly: true,
	})
	http.Redirect(w, r, basePath+"/login", http.StatusFound)
}
