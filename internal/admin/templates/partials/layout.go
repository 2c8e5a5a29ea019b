package partials

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"almagro.dev/catalog-admin/internal/admin/httpserver/middleware"
	"almagro.dev/catalog-admin/internal/admin/navigation"
	appsession "almagro.dev/catalog-admin/internal/admin/session"
)

func esc(s string) string { return templ.EscapeString(s) }

// Shell wraps page content in the console chrome: document head, sidebar,
// topbar and the toast region.
func Shell(title string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		theme := "light"
		branding := appsession.Branding{}
		var flash *appsession.Flash
		if sess, ok := middleware.SessionFromContext(ctx); ok {
			theme = sess.Theme()
			branding = sess.Branding()
			if f, ok := sess.TakeFlash(); ok {
				flash = &f
			}
		}
		basePath := middleware.BasePathFromContext(ctx)
		csrf := middleware.CSRFTokenFromContext(ctx)

		themeClass := ""
		if theme == "dark" {
			themeClass = "dark"
		}

		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="es" class="%s" data-theme="%s"><head><meta charset="utf-8"/><meta name="viewport" content="width=device-width, initial-scale=1"/><title>%s</title>`,
			themeClass, esc(theme), esc(title),
		); err != nil {
			return err
		}
		favicon := branding.FaviconURL
		if favicon == "" {
			favicon = joinBase(basePath, "/static/favicon.svg")
		}
		if _, err := fmt.Fprintf(w,
			`<link rel="icon" href="%s"/><link rel="stylesheet" href="%s"/><script src="https://cdn.tailwindcss.com"></script><script src="https://unpkg.com/htmx.org@1.9.12/dist/htmx.min.js" defer></script></head>`,
			esc(favicon), esc(joinBase(basePath, "/static/app.css")),
		); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w,
			`<body class="min-h-screen bg-slate-50 text-slate-900" hx-headers='{"X-CSRF-Token":"%s"}'><div class="flex min-h-screen">`,
			esc(csrf),
		); err != nil {
			return err
		}

		if err := Sidebar(navigation.BuildMenu(basePath)).Render(ctx, w); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<div class="flex min-w-0 flex-1 flex-col"><header class="flex items-center justify-between gap-4 border-b border-slate-200 bg-white px-6 py-3">`); err != nil {
			return err
		}
		if err := TopbarActions().Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</header><main id="main-content" class="flex-1 px-6 py-6">`); err != nil {
			return err
		}
		if content != nil {
			if err := content.Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</main></div></div><div id="toast-region" class="fixed bottom-4 right-4 z-50 flex flex-col gap-2" aria-live="polite">`); err != nil {
			return err
		}
		if flash != nil {
			if err := ToastMessage(flash.Tone, flash.Message).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div></body></html>`)
		return err
	})
}

func joinBase(basePath, p string) string {
	if basePath == "" || basePath == "/" {
		return p
	}
	return basePath + p
}
