package settings

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"almagro.dev/catalog-admin/internal/admin/templates/partials"
)

func esc(s string) string { return templ.EscapeString(s) }

// Page renders the settings body: profile, theme and branding sections.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := partials.Breadcrumbs(data.Breadcrumbs).Render(ctx, w); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<h1 class="mt-2 text-xl font-semibold">%s</h1>`, esc(data.Title)); err != nil {
			return err
		}
		if data.Message != "" {
			if _, err := fmt.Fprintf(w, `<p class="mt-3 rounded-md border border-emerald-200 bg-emerald-50 px-3 py-2 text-sm text-emerald-700" data-settings-message>%s</p>`, esc(data.Message)); err != nil {
				return err
			}
		}
		if data.Error != "" {
			if _, err := fmt.Fprintf(w, `<p class="mt-3 rounded-md border border-rose-200 bg-rose-50 px-3 py-2 text-sm text-rose-700" data-settings-error>%s</p>`, esc(data.Error)); err != nil {
				return err
			}
		}

		if err := renderProfile(w, data); err != nil {
			return err
		}
		if err := renderTheme(w, data); err != nil {
			return err
		}
		return renderBranding(w, data)
	})
}

func renderProfile(w io.Writer, data PageData) error {
	_, err := fmt.Fprintf(w,
		`<section class="mt-6 max-w-xl rounded-lg border border-slate-200 bg-white p-5" data-settings-profile><h2 class="text-sm font-semibold text-slate-700">Perfil</h2><p class="mt-1 text-xs text-slate-500">Rol: %s</p><form method="post" action="%s" class="mt-3 space-y-3"><input type="hidden" name="csrf_token" value="%s"/><label class="block text-sm font-medium text-slate-700">Usuario<input type="text" name="username" value="%s" class="mt-1 w-full rounded-md border border-slate-300 px-3 py-1.5 text-sm"/></label><label class="block text-sm font-medium text-slate-700">Nueva contraseña<input type="password" name="password" autocomplete="new-password" placeholder="Dejar en blanco para no cambiarla" class="mt-1 w-full rounded-md border border-slate-300 px-3 py-1.5 text-sm"/></label><button type="submit" class="rounded-md bg-slate-900 px-4 py-2 text-sm text-white hover:bg-slate-700">Guardar cambios</button></form></section>`,
		esc(data.Role), esc(data.ProfileURL), esc(data.CSRFToken), esc(data.Username),
	)
	return err
}

func renderTheme(w io.Writer, data PageData) error {
	next := "dark"
	label := "Cambiar a modo oscuro"
	if data.Theme == "dark" {
		next = "light"
		label = "Cambiar a modo claro"
	}
	_, err := fmt.Fprintf(w,
		`<section class="mt-6 max-w-xl rounded-lg border border-slate-200 bg-white p-5" data-settings-theme><h2 class="text-sm font-semibold text-slate-700">Tema</h2><p class="mt-1 text-xs text-slate-500">Tema actual: %s</p><form method="post" action="%s" class="mt-3"><input type="hidden" name="csrf_token" value="%s"/><input type="hidden" name="theme" value="%s"/><button type="submit" class="rounded-md border border-slate-300 px-4 py-2 text-sm hover:bg-slate-100">%s</button></form></section>`,
		esc(data.Theme), esc(data.ThemeURL), esc(data.CSRFToken), next, esc(label),
	)
	return err
}

func renderBranding(w io.Writer, data PageData) error {
	if _, err := io.WriteString(w, `<section class="mt-6 max-w-xl rounded-lg border border-slate-200 bg-white p-5" data-settings-branding><h2 class="text-sm font-semibold text-slate-700">Marca</h2><div class="mt-3 space-y-4">`); err != nil {
		return err
	}
	for _, form := range data.LogoForms {
		preview := `<span class="text-xs text-slate-400">Sin asignar</span>`
		if form.CurrentURL != "" {
			preview = fmt.Sprintf(`<img src="%s" alt="" class="max-h-10 rounded border border-slate-200"/>`, esc(form.CurrentURL))
		}
		if _, err := fmt.Fprintf(w,
			`<form method="post" action="%s" enctype="multipart/form-data" class="flex items-center gap-3" data-logo-form="%s"><input type="hidden" name="csrf_token" value="%s"/><input type="hidden" name="logo_type" value="%s"/><span class="w-40 text-sm">%s</span>%s<input type="file" name="file" accept="image/*" required class="text-sm"/><button type="submit" class="rounded-md border border-slate-300 px-3 py-1.5 text-sm hover:bg-slate-100">Subir</button></form>`,
			esc(data.LogoURL), esc(form.Kind), esc(data.CSRFToken), esc(form.Kind), esc(form.Label), preview,
		); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</div></section>`)
	return err
}
