package ui

import (
	"net/http"

	"github.com/a-h/templ"

	"almagro.dev/catalog-admin/internal/admin/account"
	"almagro.dev/catalog-admin/internal/admin/catalog"
	custommw "almagro.dev/catalog-admin/internal/admin/httpserver/middleware"
	"almagro.dev/catalog-admin/internal/admin/templates/partials"
)

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	CatalogService catalog.Service
	AccountService account.Service
	LoginPath      string
}

// Handlers exposes HTTP handlers for admin UI pages and fragments.
type Handlers struct {
	catalog   catalog.Service
	accounts  account.Service
	loginPath string
}

// NewHandlers wires the UI handler set. Missing services fall back to the
// in-memory fixtures so the console stays usable without a backend.
func NewHandlers(deps Dependencies) *Handlers {
	catalogService := deps.CatalogService
	if catalogService == nil {
		catalogService = catalog.NewStaticService()
	}
	accountService := deps.AccountService
	if accountService == nil {
		accountService = account.NewStaticService()
	}
	loginPath := deps.LoginPath
	if loginPath == "" {
		loginPath = "/admin/login"
	}
	return &Handlers{
		catalog:   catalogService,
		accounts:  accountService,
		loginPath: loginPath,
	}
}

// renderPage wraps the body in the console shell for full page loads and
// serves the bare body for htmx fragment swaps.
func (h *Handlers) renderPage(w http.ResponseWriter, r *http.Request, title string, body templ.Component) {
	h.renderPageStatus(w, r, http.StatusOK, title, body)
}

// renderPageStatus is renderPage with an explicit response status, used by
// form validation and backend failure paths.
func (h *Handlers) renderPageStatus(w http.ResponseWriter, r *http.Request, status int, title string, body templ.Component) {
	component := body
	if !custommw.IsHTMXRequest(r.Context()) {
		component = partials.Shell(title, body)
	}
	templ.Handler(component, templ.WithStatus(status)).ServeHTTP(w, r)
}

// requireUser pulls the authenticated operator from the request, answering
// 401 itself when the auth middleware did not run.
func (h *Handlers) requireUser(w http.ResponseWriter, r *http.Request) (*custommw.User, bool) {
	user, ok := custommw.UserFromContext(r.Context())
	if !ok || user == nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return nil, false
	}
	return user, true
}

// forceLogout tears the session down after the backend rejected the stored
// token and sends the operator back to the login screen.
func (h *Handlers) forceLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok && sess != nil {
		sess.Destroy()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "Authorization",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	target := h.loginPath + "?reason=token_invalid"
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// backendRejected reports whether the error means the stored token is no
// longer accepted upstream.
func backendRejected(err error) bool {
	return catalog.IsUnauthorized(err) || account.IsUnauthorized(err)
}
