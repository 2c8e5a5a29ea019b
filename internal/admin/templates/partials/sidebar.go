package partials

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"almagro.dev/catalog-admin/internal/admin/httpserver/middleware"
	"almagro.dev/catalog-admin/internal/admin/navigation"
	"almagro.dev/catalog-admin/internal/admin/templates/helpers"
)

// Sidebar renders the navigation column. Groups and items the current user
// lacks capabilities for are omitted entirely.
func Sidebar(menu []navigation.MenuGroup) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<aside class="flex w-60 flex-col border-r border-slate-200 bg-white" data-sidebar><div class="flex h-14 items-center border-b border-slate-200 px-4">`); err != nil {
			return err
		}
		if err := renderBrand(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</div><nav class="flex-1 space-y-6 overflow-y-auto px-3 py-4" aria-label="Navegación principal">`); err != nil {
			return err
		}

		for _, group := range menu {
			if !hasVisibleItems(group, ctx) {
				continue
			}
			if _, err := fmt.Fprintf(w,
				`<div data-nav-group="%s"><p class="px-2 text-xs font-semibold uppercase tracking-wide text-slate-400">%s</p><ul class="mt-2 space-y-1">`,
				esc(group.Key), esc(group.Label),
			); err != nil {
				return err
			}
			for _, item := range visibleItems(group, ctx) {
				active := helpers.NavActive(ctx, item.Pattern, item.MatchPrefix)
				if _, err := fmt.Fprintf(w,
					`<li><a href="%s" class="%s"%s>%s</a></li>`,
					esc(item.Href), helpers.NavClass(active), ariaCurrent(active), esc(item.Label),
				); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul></div>`); err != nil {
				return err
			}
		}

		_, err := io.WriteString(w, `</nav></aside>`)
		return err
	})
}

func renderBrand(ctx context.Context, w io.Writer) error {
	logo := brandLogo(ctx)
	if logo == "" {
		_, err := io.WriteString(w, `<span class="text-lg font-semibold" data-brand-name>Catálogo</span>`)
		return err
	}
	_, err := fmt.Fprintf(w, `<img src="%s" alt="Logo" class="max-h-8" data-brand-logo/>`, esc(logo))
	return err
}

// brandLogo picks the logo matching the active theme, falling back to the
// other variant when only one is configured.
func brandLogo(ctx context.Context) string {
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		return ""
	}
	branding := sess.Branding()
	if sess.Theme() == "dark" {
		if branding.LogoDarkURL != "" {
			return branding.LogoDarkURL
		}
		return branding.LogoLightURL
	}
	if branding.LogoLightURL != "" {
		return branding.LogoLightURL
	}
	return branding.LogoDarkURL
}

func hasVisibleItems(group navigation.MenuGroup, ctx context.Context) bool {
	if !helpers.HasCapability(ctx, string(group.Capability)) {
		return false
	}
	return len(visibleItems(group, ctx)) > 0
}

func visibleItems(group navigation.MenuGroup, ctx context.Context) []navigation.MenuItem {
	if !helpers.HasCapability(ctx, string(group.Capability)) {
		return nil
	}
	items := make([]navigation.MenuItem, 0, len(group.Items))
	for _, item := range group.Items {
		if helpers.HasCapability(ctx, string(item.Capability)) {
			items = append(items, item)
		}
	}
	return items
}

func ariaCurrent(active bool) string {
	if active {
		return ` aria-current="page"`
	}
	return ""
}
