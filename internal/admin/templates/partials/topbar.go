package partials

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"almagro.dev/catalog-admin/internal/admin/httpserver/middleware"
	"almagro.dev/catalog-admin/internal/admin/rbac"
	"almagro.dev/catalog-admin/internal/admin/templates/helpers"
)

// TopbarActions renders the header controls: environment badge, quick link to
// product creation, theme toggle and the user menu with logout.
func TopbarActions() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		basePath := strings.TrimRight(middleware.BasePathFromContext(ctx), "/")
		csrf := middleware.CSRFTokenFromContext(ctx)

		if _, err := io.WriteString(w, `<div class="flex flex-1 items-center gap-3" data-topbar>`); err != nil {
			return err
		}
		if err := renderEnvironmentBadge(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<div class="ml-auto flex items-center gap-2">`); err != nil {
			return err
		}

		if helpers.HasCapability(ctx, string(rbac.CapProductsWrite)) {
			if _, err := fmt.Fprintf(w,
				`<a href="%s/products/new" class="rounded-md bg-slate-900 px-3 py-1.5 text-sm font-medium text-white hover:bg-slate-700" data-topbar-new-product>Nuevo producto</a>`,
				esc(basePath),
			); err != nil {
				return err
			}
		}

		if err := renderThemeToggle(ctx, w, basePath); err != nil {
			return err
		}
		if err := renderUserMenu(ctx, w, basePath, csrf); err != nil {
			return err
		}

		_, err := io.WriteString(w, `</div></div>`)
		return err
	})
}

func renderEnvironmentBadge(ctx context.Context, w io.Writer) error {
	env := middleware.EnvironmentFromContext(ctx)
	if env == "" {
		return nil
	}
	_, err := fmt.Fprintf(w,
		`<div class="flex items-center gap-1 rounded-full border border-amber-300 bg-amber-50 px-2 py-0.5 text-xs font-semibold text-amber-700" data-environment-badge title="%s"><span aria-hidden="true">%s</span><span class="sr-only">Entorno %s</span></div>`,
		esc(env), esc(environmentAbbreviation(env)), esc(env),
	)
	return err
}

func environmentAbbreviation(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production":
		return "PRD"
	case "staging":
		return "STG"
	case "development":
		return "DEV"
	}
	upper := strings.ToUpper(strings.TrimSpace(env))
	if len(upper) > 3 {
		return upper[:3]
	}
	return upper
}

func renderThemeToggle(ctx context.Context, w io.Writer, basePath string) error {
	theme := "light"
	if sess, ok := middleware.SessionFromContext(ctx); ok {
		theme = sess.Theme()
	}
	next := "dark"
	label := "Activar modo oscuro"
	if theme == "dark" {
		next = "light"
		label = "Activar modo claro"
	}
	_, err := fmt.Fprintf(w,
		`<form method="post" action="%s/settings/theme" data-theme-toggle><input type="hidden" name="csrf_token" value="%s"/><input type="hidden" name="theme" value="%s"/><button type="submit" class="rounded-md border border-slate-200 px-2 py-1.5 text-sm text-slate-600 hover:bg-slate-100" aria-label="%s">%s</button></form>`,
		esc(basePath), esc(middleware.CSRFTokenFromContext(ctx)), esc(next), esc(label), themeGlyph(theme),
	)
	return err
}

func themeGlyph(theme string) string {
	if theme == "dark" {
		return "&#9728;"
	}
	return "&#9790;"
}

func renderUserMenu(ctx context.Context, w io.Writer, basePath, csrf string) error {
	user, ok := middleware.UserFromContext(ctx)
	if !ok || user == nil {
		return nil
	}
	display := user.Username
	if display == "" {
		display = user.UID
	}
	if _, err := fmt.Fprintf(w,
		`<details class="relative" data-user-menu><summary class="flex cursor-pointer list-none items-center gap-2 rounded-md px-2 py-1.5 hover:bg-slate-100"><span class="flex h-7 w-7 items-center justify-center rounded-full bg-slate-200 text-xs font-semibold uppercase">%s</span><span class="truncate text-sm">%s</span></summary><div class="absolute right-0 z-10 mt-1 w-44 rounded-md border border-slate-200 bg-white py-1 shadow-lg">`,
		esc(userInitial(display)), esc(display),
	); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w,
		`<a href="%s/settings" class="block px-3 py-1.5 text-sm text-slate-600 hover:bg-slate-100">Configuración</a>`,
		esc(basePath),
	); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w,
		`<form method="post" action="%s/logout" data-user-menu-logout><input type="hidden" name="csrf_token" value="%s"/><button type="submit" class="block w-full px-3 py-1.5 text-left text-sm text-rose-600 hover:bg-rose-50">Cerrar sesión</button></form></div></details>`,
		esc(basePath), esc(csrf),
	)
	return err
}

func userInitial(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "?"
	}
	return string([]rune(trimmed)[0])
}
