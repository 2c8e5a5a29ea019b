package meli

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"almagro.dev/catalog-admin/internal/admin/templates/helpers"
	"almagro.dev/catalog-admin/internal/admin/templates/partials"
)

func esc(s string) string { return templ.EscapeString(s) }

// Page renders the marketplace listings body.
func Page(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := partials.Breadcrumbs(data.Breadcrumbs).Render(ctx, w); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w,
			`<div class="mt-2"><h1 class="text-xl font-semibold">%s</h1><p class="mt-1 text-sm text-slate-500">%s</p></div>`,
			esc(data.Title), esc(data.Description),
		); err != nil {
			return err
		}
		if err := renderSearch(w, data); err != nil {
			return err
		}
		return Table(data).Render(ctx, w)
	})
}

// Table renders the swappable counters+table fragment.
func Table(data PageData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div id="meli-table">`); err != nil {
			return err
		}
		if data.Degraded {
			if _, err := io.WriteString(w, `<p class="mt-4 rounded-md border border-amber-200 bg-amber-50 px-3 py-2 text-sm text-amber-700" data-meli-degraded>No se pudieron cargar las publicaciones. Intentá nuevamente.</p>`); err != nil {
				return err
			}
		}
		if err := renderCounters(w, data.Counters); err != nil {
			return err
		}
		if err := renderTable(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func renderCounters(w io.Writer, counters []Counter) error {
	if _, err := io.WriteString(w, `<div class="mt-4 flex gap-3" data-meli-counters>`); err != nil {
		return err
	}
	for _, counter := range counters {
		active := ""
		if counter.Active {
			active = " ring-2 ring-slate-400"
		}
		if _, err := fmt.Fprintf(w,
			`<a href="%s" class="flex min-w-28 flex-col rounded-lg border border-slate-200 bg-white px-4 py-3%s" data-meli-counter="%s"><span class="text-xs font-medium uppercase text-slate-400">%s</span><span class="mt-1 text-2xl font-semibold tabular-nums">%s</span></a>`,
			esc(counter.Href), active, esc(counter.Key), esc(counter.Label), esc(counter.Value),
		); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</div>`)
	return err
}

func renderSearch(w io.Writer, data PageData) error {
	status := ""
	if data.Query.Status != "" {
		status = fmt.Sprintf(`<input type="hidden" name="status" value="%s"/>`, esc(data.Query.Status))
	}
	_, err := fmt.Fprintf(w,
		`<form class="mt-4" action="%s" method="get" data-meli-search>%s<input type="search" name="q" value="%s" placeholder="Buscar publicaciones" class="w-72 rounded-md border border-slate-300 px-3 py-1.5 text-sm" hx-get="%s" hx-trigger="input changed delay:400ms, search" hx-target="#meli-table" hx-swap="outerHTML" hx-include="closest form"/></form>`,
		esc(data.PagePath), status, esc(data.Query.Search), esc(data.TablePath),
	)
	return err
}

func renderTable(w io.Writer, data PageData) error {
	if _, err := io.WriteString(w, `<div class="mt-4 overflow-x-auto rounded-lg border border-slate-200 bg-white"><table class="min-w-full divide-y divide-slate-200 text-sm" data-meli-table><thead class="bg-slate-50"><tr><th class="px-4 py-2 text-left font-medium text-slate-500">Código</th><th class="px-4 py-2 text-left font-medium text-slate-500">Producto</th><th class="px-4 py-2 text-left font-medium text-slate-500">Precio</th><th class="px-4 py-2 text-left font-medium text-slate-500">Estado</th><th class="px-4 py-2 text-left font-medium text-slate-500">Publicación</th></tr></thead><tbody class="divide-y divide-slate-100">`); err != nil {
		return err
	}
	if data.EmptyMessage != "" {
		if _, err := fmt.Fprintf(w, `<tr><td colspan="5" class="px-4 py-8 text-center text-slate-500">%s</td></tr>`, esc(data.EmptyMessage)); err != nil {
			return err
		}
	}
	for _, row := range data.Rows {
		if err := renderRow(w, row); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</tbody></table></div>`)
	return err
}

func renderRow(w io.Writer, row Row) error {
	if _, err := fmt.Fprintf(w,
		`<tr data-meli-row="%s"><td class="px-4 py-2 font-mono text-xs">%s</td><td class="px-4 py-2"><a href="%s" class="font-medium hover:underline">%s</a>`,
		esc(row.ID), esc(row.Code), esc(row.DetailURL), esc(row.Name),
	); err != nil {
		return err
	}
	if row.Reason != "" {
		if _, err := fmt.Fprintf(w,
			`<p class="mt-1 text-xs text-amber-700" data-meli-reason>%s <span class="text-slate-500">%s</span></p>`,
			esc(row.Reason), esc(row.Remedy),
		); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w,
		`</td><td class="px-4 py-2 tabular-nums">%s</td><td class="px-4 py-2"><span class="%s">%s</span></td>`,
		esc(row.Price), helpers.BadgeClass(row.StatusTone), esc(row.StatusLabel),
	); err != nil {
		return err
	}
	listing := `<td class="px-4 py-2 text-slate-400">—</td>`
	if row.Permalink != "" {
		listing = fmt.Sprintf(`<td class="px-4 py-2"><a href="%s" target="_blank" rel="noopener" class="text-xs text-slate-500 hover:underline">%s</a></td>`, esc(row.Permalink), esc(row.MeliID))
	} else if row.MeliID != "" {
		listing = fmt.Sprintf(`<td class="px-4 py-2 text-xs text-slate-500">%s</td>`, esc(row.MeliID))
	}
	if _, err := io.WriteString(w, listing); err != nil {
		return err
	}
	_, err := io.WriteString(w, `</tr>`)
	return err
}
