package httpserver

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"almagro.dev/catalog-admin/internal/admin/account"
	custommw "almagro.dev/catalog-admin/internal/admin/httpserver/middleware"
	appsession "almagro.dev/catalog-admin/internal/admin/session"
	"almagro.dev/catalog-admin/internal/admin/templates/auth"
)

const tokenCookieName = "Authorization"

type authHandlers struct {
	accounts  account.Service
	basePath  string
	loginPath string
}

func newAuthHandlers(accounts account.Service, basePath, loginPath string) *authHandlers {
	if accounts == nil {
		panic("auth: account service is required")
	}
	if strings.TrimSpace(basePath) == "" {
		basePath = "/"
	}
	if strings.TrimSpace(loginPath) == "" {
		if basePath == "/" {
			loginPath = "/login"
		} else {
			loginPath = strings.TrimRight(basePath, "/") + "/login"
		}
	}
	return &authHandlers{
		accounts:  accounts,
		basePath:  basePath,
		loginPath: loginPath,
	}
}

func (h *authHandlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.isAuthenticated(r) && !forceLogin(r) {
		target := h.redirectTarget(r.URL.Query().Get("next"))
		http.Redirect(w, r, target, http.StatusFound)
		return
	}

	data := h.buildLoginPageData(r, nil)
	h.renderLoginPage(w, r, data, http.StatusOK)
}

func (h *authHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		state := &loginFormState{Error: "No se pudo procesar el formulario. Intentá nuevamente."}
		data := h.buildLoginPageData(r, state)
		h.renderLoginPage(w, r, data, http.StatusBadRequest)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	recordedNext := r.PostFormValue("next")
	remember := parseCheckbox(r.PostFormValue("remember"))

	state := &loginFormState{
		Username: username,
		Remember: remember,
		Next:     recordedNext,
	}

	if username == "" || password == "" {
		state.Error = "Ingresá usuario y contraseña."
		data := h.buildLoginPageData(r, state)
		h.renderLoginPage(w, r, data, http.StatusBadRequest)
		return
	}

	token, err := h.accounts.Login(r.Context(), username, password)
	if err != nil {
		log.Printf("admin login failed: %v", err)
		state.Error = h.errorMessageFor(err)
		data := h.buildLoginPageData(r, state)
		h.renderLoginPage(w, r, data, http.StatusUnauthorized)
		return
	}

	profile, err := h.accounts.CurrentUser(r.Context(), token.AccessToken)
	if err != nil || profile == nil {
		log.Printf("admin login: profile lookup failed: %v", err)
		state.Error = "No se pudo obtener el perfil del usuario."
		data := h.buildLoginPageData(r, state)
		h.renderLoginPage(w, r, data, http.StatusBadGateway)
		return
	}

	sess, _ := custommw.SessionFromContext(r.Context())
	if sess != nil {
		sess.SetUser(&appsession.User{
			UID:      strconv.FormatInt(profile.ID, 10),
			Username: profile.Username,
			Roles:    rolesFor(profile),
		})
		sess.SetRememberMe(remember)
		sess.SetTheme(profile.ThemePref)
		sess.SetBranding(appsession.Branding{
			LogoLightURL: firstNonEmpty(profile.LogoLightURL, profile.LogoURL),
			LogoDarkURL:  profile.LogoDarkURL,
			FaviconURL:   profile.FaviconURL,
		})
	}

	h.setAuthCookie(w, r, token.AccessToken, remember)

	target := h.redirectTarget(recordedNext)
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *authHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok && sess != nil {
		sess.Destroy()
	}
	h.clearAuthCookie(w)

	redirect := h.loginURLWithParams(map[string]string{
		"status": "logged_out",
	})

	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", redirect)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

type loginFormState struct {
	Username string
	Remember bool
	Next     string
	Error    string
	Message  string
}

func (h *authHandlers) buildLoginPageData(r *http.Request, state *loginFormState) auth.LoginPageData {
	q := url.Values{}
	if r.URL != nil {
		q = r.URL.Query()
	}

	next := ""
	if state != nil && state.Next != "" {
		next = h.normalizeNext(state.Next)
	} else {
		next = h.normalizeNext(q.Get("next"))
	}

	message := ""
	if state != nil && strings.TrimSpace(state.Message) != "" {
		message = state.Message
	} else {
		message = h.messageForQuery(q)
	}

	errorText := ""
	if state != nil {
		errorText = state.Error
	}

	remember := false
	if state != nil {
		remember = state.Remember
	} else if sess, ok := custommw.SessionFromContext(r.Context()); ok && sess != nil {
		remember = sess.RememberMe()
	}

	username := ""
	if state != nil {
		username = state.Username
	} else {
		username = strings.TrimSpace(q.Get("username"))
	}

	return auth.LoginPageData{
		Username:  username,
		Message:   message,
		Error:     errorText,
		Remember:  remember,
		Next:      next,
		LoginPath: h.loginPath,
		BasePath:  h.basePath,
		LogoURL:   h.publicLogoURL(r),
		CSRFToken: custommw.CSRFTokenFromContext(r.Context()),
	}
}

// publicLogoURL fetches the unauthenticated branding so the login screen can
// show the configured logo. Best effort, an empty URL falls back to the
// text brand.
func (h *authHandlers) publicLogoURL(r *http.Request) string {
	settings, err := h.accounts.PublicSettings(r.Context())
	if err != nil || settings == nil {
		if err != nil {
			log.Printf("auth: public settings: %v", err)
		}
		return ""
	}
	return firstNonEmpty(settings.LogoLightURL, settings.LogoURL)
}

func (h *authHandlers) renderLoginPage(w http.ResponseWriter, r *http.Request, data auth.LoginPageData, status int) {
	if status != http.StatusOK {
		w.WriteHeader(status)
	}
	templ.Handler(auth.LoginPage(data)).ServeHTTP(w, r)
}

func (h *authHandlers) isAuthenticated(r *http.Request) bool {
	sess, ok := custommw.SessionFromContext(r.Context())
	if !ok || sess == nil {
		return false
	}
	user := sess.User()
	return user != nil && strings.TrimSpace(user.UID) != ""
}

func (h *authHandlers) errorMessageFor(err error) string {
	if err == nil {
		return "Ocurrió un error desconocido."
	}
	if errors.Is(err, account.ErrBadCredentials) {
		return "Usuario o contraseña incorrectos."
	}
	if errors.Is(err, account.ErrUnauthorized) {
		return "La sesión no es válida. Iniciá sesión nuevamente."
	}
	return "No se pudo iniciar sesión. Intentá nuevamente en unos minutos."
}

func (h *authHandlers) messageForQuery(q url.Values) string {
	if q == nil {
		return ""
	}
	if status := q.Get("status"); status == "logged_out" {
		return "Cerraste la sesión."
	}
	reason := q.Get("reason")
	switch reason {
	case custommw.ReasonTokenExpired, "expired":
		return "La sesión expiró. Iniciá sesión nuevamente."
	case custommw.ReasonMissingToken:
		return "Tenés que iniciar sesión para continuar."
	case custommw.ReasonTokenInvalid:
		return "Las credenciales ya no son válidas. Iniciá sesión nuevamente."
	default:
		return ""
	}
}

func (h *authHandlers) redirectTarget(raw string) string {
	next := h.normalizeNext(raw)
	if next != "" {
		return next
	}
	if strings.TrimSpace(h.basePath) == "" {
		return "/"
	}
	return h.basePath
}

func (h *authHandlers) setAuthCookie(w http.ResponseWriter, r *http.Request, token string, remember bool) {
	if strings.TrimSpace(token) == "" {
		h.clearAuthCookie(w)
		return
	}
	value := token
	if !strings.HasPrefix(strings.ToLower(token), "bearer ") {
		value = "Bearer " + token
	}
	cookie := &http.Cookie{
		Name:     tokenCookieName,
		Value:    value,
		Path:     h.cookiePath(),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		if sess, ok := custommw.SessionFromContext(r.Context()); ok && sess != nil {
			if expiry := sess.ExpiresAt(); !expiry.IsZero() {
				expiry = expiry.UTC()
				cookie.Expires = expiry
				if remaining := time.Until(expiry); remaining > 0 {
					cookie.MaxAge = int(remaining.Round(time.Second).Seconds())
				}
			}
		}
	}
	http.SetCookie(w, cookie)
}

func (h *authHandlers) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     h.cookiePath(),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *authHandlers) cookiePath() string {
	if strings.TrimSpace(h.basePath) == "" {
		return "/"
	}
	return h.basePath
}

func (h *authHandlers) loginURLWithParams(params map[string]string) string {
	parsed, err := url.Parse(h.loginPath)
	if err != nil {
		return h.loginPath
	}
	q := parsed.Query()
	for key, val := range params {
		if strings.TrimSpace(val) == "" {
			continue
		}
		q.Set(key, val)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String()
}

func rolesFor(profile *account.User) []string {
	role := strings.ToLower(strings.TrimSpace(profile.Role))
	if role == "" {
		role = "viewer"
	}
	return []string{role}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseCheckbox(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}

func forceLogin(r *http.Request) bool {
	if r == nil || r.URL == nil {
		return false
	}
	flag := strings.TrimSpace(r.URL.Query().Get("force"))
	if flag == "" {
		return false
	}
	switch strings.ToLower(flag) {
	case "1", "true", "yes", "force":
		return true
	default:
		return false
	}
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	trim := func(p string) string {
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		for len(p) > 1 && strings.HasSuffix(p, "/") {
			p = strings.TrimSuffix(p, "/")
		}
		return p
	}
	return trim(a) == trim(b)
}

func (h *authHandlers) normalizeNext(raw string) string {
	sanitized := sanitizeNextTarget(h.basePath, raw)
	if sanitized == "" {
		return ""
	}

	if h.loginPath != "" {
		if samePath(pathOnly(sanitized), h.loginPath) {
			return ""
		}
	}
	return sanitized
}

func sanitizeNextTarget(basePath, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" || parsed.Host != "" {
		return ""
	}

	pathValue := parsed.Path
	if pathValue == "" {
		pathValue = "/"
	}

	unescaped, err := url.PathUnescape(pathValue)
	if err != nil {
		return ""
	}
	if strings.Contains(unescaped, "\\") {
		return ""
	}

	cleaned := path.Clean(unescaped)
	if !strings.HasPrefix(cleaned, "/") {
		cleaned = "/" + cleaned
	}
	if strings.HasPrefix(cleaned, "//") {
		return ""
	}

	normalisedBase := normalizeBase(basePath)
	if normalisedBase != "/" && !hasSafePrefix(cleaned, normalisedBase) {
		return ""
	}

	target := cleaned
	if parsed.RawQuery != "" {
		target += "?" + parsed.RawQuery
	}
	if parsed.Fragment != "" {
		target += "#" + parsed.Fragment
	}
	return target
}

func normalizeBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return "/"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if len(base) > 1 && strings.HasSuffix(base, "/") {
		base = strings.TrimRight(base, "/")
	}
	return base
}

func hasSafePrefix(pathValue, base string) bool {
	if base == "/" {
		return strings.HasPrefix(pathValue, "/")
	}
	if !strings.HasPrefix(pathValue, base) {
		return false
	}
	if len(pathValue) == len(base) {
		return true
	}
	return pathValue[len(base)] == '/'
}

func pathOnly(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return parsed.Path
}
