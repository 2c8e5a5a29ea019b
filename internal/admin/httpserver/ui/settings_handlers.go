package ui

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"almagro.dev/catalog-admin/internal/admin/account"
	custommw "almagro.dev/catalog-admin/internal/admin/httpserver/middleware"
	appsession "almagro.dev/catalog-admin/internal/admin/session"
	settingstpl "almagro.dev/catalog-admin/internal/admin/templates/settings"
)

// SettingsPage renders profile, theme and branding management.
func (h *Handlers) SettingsPage(w http.ResponseWriter, r *http.Request) {
	h.renderSettings(w, r, "", "")
}

func (h *Handlers) renderSettings(w http.ResponseWriter, r *http.Request, message, errMsg string) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.accounts.CurrentUser(ctx, user.Token)
	if err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		log.Printf("settings: profile fetch failed: %v", err)
		profile = &account.User{Username: user.Username}
	}

	theme := "light"
	branding := appsession.Branding{}
	if sess, sessOK := custommw.SessionFromContext(ctx); sessOK {
		theme = sess.Theme()
		branding = sess.Branding()
	}

	basePath := custommw.BasePathFromContext(ctx)
	data := settingstpl.BuildPageData(
		basePath, *profile, theme, branding,
		custommw.CSRFTokenFromContext(ctx), message, errMsg,
	)
	h.renderPage(w, r, "Configuración", settingstpl.Page(data))
}

// SettingsProfile applies username and password changes.
func (h *Handlers) SettingsProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderSettings(w, r, "", "No se pudo procesar el formulario.")
		return
	}

	update := account.ProfileUpdate{}
	if username := strings.TrimSpace(r.PostFormValue("username")); username != "" && username != user.Username {
		update.Username = &username
	}
	if password := r.PostFormValue("password"); password != "" {
		update.Password = &password
	}
	if update.Username == nil && update.Password == nil {
		h.renderSettings(w, r, "No hay cambios para guardar.", "")
		return
	}

	profile, err := h.accounts.UpdateProfile(ctx, user.Token, update)
	if err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		log.Printf("settings: profile update failed: %v", err)
		h.renderSettings(w, r, "", "No se pudieron guardar los cambios.")
		return
	}

	if sess, sessOK := custommw.SessionFromContext(ctx); sessOK {
		if current := sess.User(); current != nil {
			current.Username = profile.Username
			sess.SetUser(current)
		}
	}

	h.renderSettings(w, r, "Perfil actualizado.", "")
}

// SettingsTheme flips the stored theme preference and persists it upstream
// on a best effort basis.
func (h *Handlers) SettingsTheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "No se pudo procesar el formulario.", http.StatusBadRequest)
		return
	}

	theme := r.PostFormValue("theme")
	if theme != "dark" {
		theme = "light"
	}

	if sess, sessOK := custommw.SessionFromContext(ctx); sessOK {
		sess.SetTheme(theme)
	}

	if _, err := h.accounts.UpdateProfile(ctx, user.Token, account.ProfileUpdate{ThemePref: &theme}); err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		log.Printf("settings: theme sync failed: %v", err)
	}

	target := r.Referer()
	if target == "" {
		target = joinBasePath(custommw.BasePathFromContext(ctx), "/settings")
	}
	if custommw.IsHTMXRequest(ctx) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// SettingsLogo uploads a branding asset and caches its cache-busted URL in
// the session so the chrome picks it up immediately.
func (h *Handlers) SettingsLogo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	kind := logoKind(r.PostFormValue("logo_type"))
	file, header, err := r.FormFile("file")
	if err != nil {
		h.renderSettings(w, r, "", "Seleccioná un archivo de imagen.")
		return
	}
	defer file.Close()

	result, err := h.accounts.UploadLogo(ctx, user.Token, kind, header.Filename, file)
	if err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		log.Printf("settings: logo upload (%s) failed: %v", kind, err)
		h.renderSettings(w, r, "", "No se pudo subir la imagen.")
		return
	}

	if sess, sessOK := custommw.SessionFromContext(ctx); sessOK && result.LogoURL != "" {
		branding := sess.Branding()
		busted := cacheBust(result.LogoURL)
		switch kind {
		case account.LogoDark:
			branding.LogoDarkURL = busted
		case account.LogoFavicon:
			branding.FaviconURL = busted
		default:
			branding.LogoLightURL = busted
		}
		sess.SetBranding(branding)
	}

	h.renderSettings(w, r, "Imagen actualizada.", "")
}

func logoKind(value string) account.LogoKind {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case string(account.LogoDark):
		return account.LogoDark
	case string(account.LogoFavicon):
		return account.LogoFavicon
	default:
		return account.LogoLight
	}
}

// cacheBust appends a timestamp so browsers refetch the replaced asset.
func cacheBust(rawURL string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%sv=%d", rawURL, sep, time.Now().Unix())
}
