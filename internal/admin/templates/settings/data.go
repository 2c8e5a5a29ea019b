package settings

import (
	"strings"

	"almagro.dev/catalog-admin/internal/admin/account"
	"almagro.dev/catalog-admin/internal/admin/session"
	"almagro.dev/catalog-admin/internal/admin/templates/partials"
)

// PageData is the payload for the settings page.
type PageData struct {
	Title       string
	Breadcrumbs []partials.Breadcrumb
	Username    string
	Role        string
	Theme       string
	ProfileURL  string
	ThemeURL    string
	LogoURL     string
	LogoForms   []LogoForm
	Message     string
	Error       string
	CSRFToken   string
}

// LogoForm is one branding slot with its current asset.
type LogoForm struct {
	Kind       string
	Label      string
	CurrentURL string
}

// BuildPageData assembles the settings payload from the profile and the
// session's branding cache.
func BuildPageData(basePath string, user account.User, theme string, branding session.Branding, csrfToken, message, errMsg string) PageData {
	return PageData{
		Title: "Configuración",
		Breadcrumbs: []partials.Breadcrumb{
			{Label: "Cuenta", Href: ""},
			{Label: "Configuración", Href: joinBase(basePath, "/settings")},
		},
		Username:   user.Username,
		Role:       user.Role,
		Theme:      theme,
		ProfileURL: joinBase(basePath, "/settings/profile"),
		ThemeURL:   joinBase(basePath, "/settings/theme"),
		LogoURL:    joinBase(basePath, "/settings/logo"),
		LogoForms: []LogoForm{
			{Kind: string(account.LogoLight), Label: "Logo (modo claro)", CurrentURL: branding.LogoLightURL},
			{Kind: string(account.LogoDark), Label: "Logo (modo oscuro)", CurrentURL: branding.LogoDarkURL},
			{Kind: string(account.LogoFavicon), Label: "Favicon", CurrentURL: branding.FaviconURL},
		},
		Message:   strings.TrimSpace(message),
		Error:     strings.TrimSpace(errMsg),
		CSRFToken: csrfToken,
	}
}

func joinBase(base, suffix string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "/admin"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if base != "/" {
		base = strings.TrimRight(base, "/")
	}
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	return base + suffix
}
