package auth

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

func esc(s string) string { return templ.EscapeString(s) }

// LoginPage renders the standalone login document. It does not use the admin
// shell because no session exists yet.
func LoginPage(data LoginPageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="es"><head><meta charset="utf-8"/><meta name="viewport" content="width=device-width, initial-scale=1"/><title>Iniciar sesión</title><link rel="stylesheet" href="%s/static/app.css"/><script src="https://cdn.tailwindcss.com"></script></head><body class="flex min-h-screen items-center justify-center bg-slate-100">`,
			esc(data.BasePath),
		); err != nil {
			return err
		}
		brand := `<h1 class="text-lg font-semibold">Consola de catálogo</h1>`
		if data.LogoURL != "" {
			brand = fmt.Sprintf(`<img src="%s" alt="Consola de catálogo" class="mx-auto h-10" data-login-logo/>`, esc(data.LogoURL))
		}
		if _, err := fmt.Fprintf(w, `<div class="w-full max-w-sm rounded-lg border border-slate-200 bg-white p-6 shadow-sm">%s`, brand); err != nil {
			return err
		}
		if data.Message != "" {
			if _, err := fmt.Fprintf(w, `<p class="mt-3 rounded-md bg-slate-100 px-3 py-2 text-sm text-slate-600" data-login-message>%s</p>`, esc(data.Message)); err != nil {
				return err
			}
		}
		if data.Error != "" {
			if _, err := fmt.Fprintf(w, `<p class="mt-3 rounded-md border border-rose-200 bg-rose-50 px-3 py-2 text-sm text-rose-700" data-login-error>%s</p>`, esc(data.Error)); err != nil {
				return err
			}
		}
		remember := ""
		if data.Remember {
			remember = " checked"
		}
		_, err := fmt.Fprintf(w,
			`<form method="post" action="%s" class="mt-4 space-y-4" data-login-form><input type="hidden" name="csrf_token" value="%s"/><input type="hidden" name="next" value="%s"/><label class="block text-sm font-medium text-slate-700">Usuario<input type="text" name="username" value="%s" autocomplete="username" required autofocus class="mt-1 w-full rounded-md border border-slate-300 px-3 py-1.5 text-sm"/></label><label class="block text-sm font-medium text-slate-700">Contraseña<input type="password" name="password" autocomplete="current-password" required class="mt-1 w-full rounded-md border border-slate-300 px-3 py-1.5 text-sm"/></label><label class="flex items-center gap-2 text-sm text-slate-600"><input type="checkbox" name="remember" value="true"%s/>Mantener la sesión iniciada</label><button type="submit" class="w-full rounded-md bg-slate-900 px-4 py-2 text-sm font-medium text-white hover:bg-slate-700">Ingresar</button></form></div></body></html>`,
			esc(data.LoginPath), esc(data.CSRFToken), esc(data.Next), esc(data.Username), remember,
		)
		return err
	})
}
