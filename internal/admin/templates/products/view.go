package products

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"almagro.dev/catalog-admin/internal/admin/templates/helpers"
	"almagro.dev/catalog-admin/internal/admin/templates/partials"
)

func esc(s string) string { return templ.EscapeString(s) }

// highlightText escapes text and wraps search matches in <mark>.
func highlightText(text, term string) string {
	segments := helpers.HighlightSegments(text, term)
	if len(segments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range segments {
		if seg.Match {
			b.WriteString(`<mark class="rounded bg-amber-100 px-0.5">`)
			b.WriteString(esc(seg.Text))
			b.WriteString(`</mark>`)
			continue
		}
		b.WriteString(esc(seg.Text))
	}
	return b.String()
}

// Index renders the full products page body: heading, filter bar, bulk action
// bar and the table fragment.
func Index(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := partials.Breadcrumbs(data.Breadcrumbs).Render(ctx, w); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w,
			`<div class="mt-2 flex items-start justify-between gap-4"><div><h1 class="text-xl font-semibold">%s</h1><p class="mt-1 text-sm text-slate-500">%s</p></div></div>`,
			esc(data.Title), esc(data.Description),
		); err != nil {
			return err
		}
		if err := renderFilterBar(w, data); err != nil {
			return err
		}
		if err := BulkBar(data.Selection).Render(ctx, w); err != nil {
			return err
		}
		return Table(data.Table).Render(ctx, w)
	})
}

func renderFilterBar(w io.Writer, data PageData) error {
	if _, err := fmt.Fprintf(w,
		`<form class="mt-4 flex flex-wrap items-end gap-3" data-products-filters hx-get="%s" hx-target="#products-table" hx-swap="outerHTML" hx-push-url="true">`,
		esc(data.TableEndpoint),
	); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w,
		`<label class="flex flex-col text-xs font-medium text-slate-500">Buscar<input type="search" name="q" value="%s" placeholder="Código, nombre o descripción" class="mt-1 w-64 rounded-md border border-slate-300 px-3 py-1.5 text-sm" hx-trigger="input changed delay:400ms, search" data-products-search/></label>`,
		esc(data.Query.Search),
	); err != nil {
		return err
	}
	if err := renderSelect(w, "category", "Categoría", data.Filters.CategoryOptions); err != nil {
		return err
	}
	if err := renderSelect(w, "brand", "Marca", data.Filters.BrandOptions); err != nil {
		return err
	}
	if err := renderSelect(w, "publish_event", "Publicación", data.Filters.PublishOptions); err != nil {
		return err
	}
	if err := renderSelect(w, "stock_filter", "Stock", data.Filters.StockOptions); err != nil {
		return err
	}
	if err := renderPageSizeSelect(w, data.Query.PageSize); err != nil {
		return err
	}
	// Sort travels as hidden fields so changing a filter keeps the order.
	if _, err := fmt.Fprintf(w,
		`<input type="hidden" name="sort" value="%s"/><input type="hidden" name="dir" value="%s"/>`,
		esc(data.Query.SortKey), esc(data.Query.SortDir),
	); err != nil {
		return err
	}
	if data.Filters.HasActive {
		// Resetting the filters also empties the selection set.
		if _, err := fmt.Fprintf(w,
			`<a href="%s" hx-post="%s" class="rounded-md border border-slate-300 px-3 py-1.5 text-sm text-slate-600 hover:bg-slate-100" data-products-clear-filters>Limpiar filtros</a>`,
			esc(data.Table.BasePath), esc(data.Selection.ClearURL),
		); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</form>`)
	return err
}

func renderSelect(w io.Writer, name, label string, options []SelectOption) error {
	if _, err := fmt.Fprintf(w,
		`<label class="flex flex-col text-xs font-medium text-slate-500">%s<select name="%s" class="mt-1 rounded-md border border-slate-300 px-2 py-1.5 text-sm" hx-trigger="change">`,
		esc(label), esc(name),
	); err != nil {
		return err
	}
	for _, option := range options {
		selected := ""
		if option.Selected {
			selected = " selected"
		}
		if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`, esc(option.Value), selected, esc(option.Label)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</select></label>`)
	return err
}

func renderPageSizeSelect(w io.Writer, current int) error {
	if _, err := io.WriteString(w, `<label class="flex flex-col text-xs font-medium text-slate-500">Por página<select name="pageSize" class="mt-1 rounded-md border border-slate-300 px-2 py-1.5 text-sm" hx-trigger="change" data-products-page-size>`); err != nil {
		return err
	}
	sizes := []int{25, 50, 100, 200}
	known := false
	for _, size := range sizes {
		if size == current {
			known = true
			break
		}
	}
	if !known && current > 0 {
		if _, err := fmt.Fprintf(w, `<option value="%d" selected>%d</option>`, current, current); err != nil {
			return err
		}
	}
	for _, size := range sizes {
		selected := ""
		if size == current {
			selected = " selected"
		}
		if _, err := fmt.Fprintf(w, `<option value="%d"%s>%d</option>`, size, selected, size); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</select></label>`)
	return err
}

// BulkBar renders the bulk action bar. It keeps a stable id even when the
// selection is empty so fragment responses can refresh it in place.
func BulkBar(selection SelectionState) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return renderBulkBar(w, selection, false)
	})
}

// BulkBarOOB is the out-of-band rendition swapped in by selection endpoints.
func BulkBarOOB(selection SelectionState) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return renderBulkBar(w, selection, true)
	})
}

// TableWithBulkBar answers a page-wide selection toggle: the table fragment
// replaces the hx-target and the bulk bar rides along out of band.
func TableWithBulkBar(table TableData, selection SelectionState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := Table(table).Render(ctx, w); err != nil {
			return err
		}
		return BulkBarOOB(selection).Render(ctx, w)
	})
}

func renderBulkBar(w io.Writer, selection SelectionState, oob bool) error {
	oobAttr := ""
	if oob {
		oobAttr = ` hx-swap-oob="outerHTML"`
	}
	if !selection.HasAny {
		_, err := fmt.Fprintf(w, `<div id="products-bulk"%s class="hidden" data-bulk-bar></div>`, oobAttr)
		return err
	}
	if _, err := fmt.Fprintf(w,
		`<div id="products-bulk"%s class="mt-3 flex items-center gap-3 rounded-md border border-slate-200 bg-slate-100 px-4 py-2 text-sm" data-bulk-bar><span class="font-medium">%d seleccionados</span>`,
		oobAttr, selection.Count,
	); err != nil {
		return err
	}
	for _, action := range []struct{ value, label string }{{"publish", "Publicar"}, {"pause", "Pausar"}} {
		if _, err := fmt.Fprintf(w,
			`<form method="post" action="%s" hx-post="%s" hx-target="#main-content" hx-swap="innerHTML"><input type="hidden" name="csrf_token" value="%s"/><input type="hidden" name="action" value="%s"/><button type="submit" class="rounded-md bg-slate-900 px-3 py-1 text-white hover:bg-slate-700" data-bulk-action="%s">%s</button></form>`,
			esc(selection.BulkURL), esc(selection.BulkURL), esc(selection.CSRFToken), action.value, action.value, esc(action.label),
		); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w,
		`<form method="post" action="%s" hx-post="%s" hx-target="#main-content" hx-swap="innerHTML"><input type="hidden" name="csrf_token" value="%s"/><button type="submit" class="text-slate-500 underline hover:text-slate-700" data-bulk-clear>Quitar selección</button></form></div>`,
		esc(selection.ClearURL), esc(selection.ClearURL), esc(selection.CSRFToken),
	)
	return err
}

var tableColumns = []struct {
	Key   string
	Label string
	Sort  bool
}{
	{"product_code", "Código", true},
	{"product_name", "Producto", true},
	{"price", "Precio", true},
	{"stock", "Stock", true},
	{"category", "Categoría", false},
	{"status", "Estado", true},
	{"meli", "MercadoLibre", false},
}

// Table renders the swappable table fragment.
func Table(data TableData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<div id="products-table" class="mt-4" data-products-table>`); err != nil {
			return err
		}
		if data.Degraded {
			if _, err := io.WriteString(w, `<p class="mb-2 rounded-md border border-amber-200 bg-amber-50 px-3 py-2 text-sm text-amber-700" data-products-degraded>No se pudo actualizar el listado. Se muestran los últimos datos disponibles.</p>`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<div class="hidden overflow-x-auto rounded-lg border border-slate-200 bg-white md:block"><table class="min-w-full divide-y divide-slate-200 text-sm"><thead class="bg-slate-50"><tr>`); err != nil {
			return err
		}
		if err := renderSelectAllHeader(w, data); err != nil {
			return err
		}
		for _, column := range tableColumns {
			if err := renderHeader(w, data.Sort, column.Key, column.Label, column.Sort); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tr></thead><tbody class="divide-y divide-slate-100">`); err != nil {
			return err
		}
		if len(data.Rows) == 0 && data.EmptyMessage != "" {
			if _, err := fmt.Fprintf(w,
				`<tr><td colspan="%d" class="px-4 py-8 text-center text-slate-500" data-products-empty>%s</td></tr>`,
				len(tableColumns)+1, esc(data.EmptyMessage),
			); err != nil {
				return err
			}
		}
		for _, row := range data.Rows {
			if err := renderRow(w, data, row); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tbody></table></div>`); err != nil {
			return err
		}
		if err := renderCards(w, data); err != nil {
			return err
		}
		if err := renderPagination(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

// renderCards is the small-screen rendition of the same rows; CSS toggles
// which of the two surfaces is visible.
func renderCards(w io.Writer, data TableData) error {
	if _, err := io.WriteString(w, `<ul class="space-y-2 md:hidden" data-products-cards>`); err != nil {
		return err
	}
	if len(data.Rows) == 0 && data.EmptyMessage != "" {
		if _, err := fmt.Fprintf(w, `<li class="rounded-lg border border-slate-200 bg-white px-4 py-8 text-center text-sm text-slate-500">%s</li>`, esc(data.EmptyMessage)); err != nil {
			return err
		}
	}
	for _, row := range data.Rows {
		checked := ""
		if row.Selected {
			checked = " checked"
		}
		if _, err := fmt.Fprintf(w,
			`<li class="rounded-lg border border-slate-200 bg-white p-3" data-product-card="%s"><div class="flex items-start justify-between gap-2"><label class="flex items-center gap-2"><input type="checkbox" value="%s"%s hx-post="%s" hx-vals='{"id":"%s"}' hx-target="%s" hx-swap="%s" aria-label="Seleccionar %s"/><a href="%s" class="text-sm font-medium text-slate-900">%s</a></label><span class="%s">%s</span></div><p class="mt-1 font-mono text-xs text-slate-500">%s</p><p class="mt-1 text-sm tabular-nums">%s · Stock %s</p></li>`,
			esc(row.ID), esc(row.ID), checked, esc(data.SelectPath), esc(row.ID), esc(data.HxTarget), esc(data.HxSwap), esc(row.Code),
			esc(row.URL), highlightText(row.Name, data.Search), helpers.BadgeClass(row.StatusTone), esc(row.StatusLabel),
			esc(row.Code), esc(row.Price), esc(row.StockLabel),
		); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</ul>`)
	return err
}

func renderSelectAllHeader(w io.Writer, data TableData) error {
	_, err := fmt.Fprintf(w,
		`<th class="w-10 px-4 py-2"><input type="checkbox" aria-label="Seleccionar página" hx-post="%s/page" hx-vals='{"page_query":"%s"}' hx-target="%s" hx-swap="%s" data-products-select-page/></th>`,
		esc(data.SelectPath), esc(data.Sort.RawQuery), esc(data.HxTarget), esc(data.HxSwap),
	)
	return err
}

func renderHeader(w io.Writer, sort SortState, key, label string, sortable bool) error {
	if !sortable {
		_, err := fmt.Fprintf(w, `<th class="px-4 py-2 text-left font-medium text-slate-500">%s</th>`, esc(label))
		return err
	}
	dir := "asc"
	indicator := ""
	if sort.Key == key {
		if sort.Dir == "asc" {
			dir = "desc"
			indicator = " &#9650;"
		} else {
			indicator = " &#9660;"
		}
	}
	query := helpers.SetRawQuery(sort.RawQuery, "sort", key)
	query = helpers.SetRawQuery(query, "dir", dir)
	query = helpers.SetRawQuery(query, "page", "1")
	_, err := fmt.Fprintf(w,
		`<th class="px-4 py-2 text-left font-medium text-slate-500"><a href="%s" hx-get="%s" hx-target="%s" hx-swap="%s" hx-push-url="true" data-sort-key="%s">%s%s</a></th>`,
		esc(helpers.BuildURL(sort.BasePath, query)), esc(helpers.BuildURL(sort.FragmentPath, query)),
		esc(sort.HxTarget), esc(sort.HxSwap), esc(key), esc(label), indicator,
	)
	return err
}

func renderRow(w io.Writer, data TableData, row TableRow) error {
	checked := ""
	if row.Selected {
		checked = " checked"
	}
	if _, err := fmt.Fprintf(w,
		`<tr data-product-row="%s"><td class="px-4 py-2"><input type="checkbox" id="%s" value="%s"%s hx-post="%s" hx-vals='{"id":"%s"}' hx-target="%s" hx-swap="%s" aria-label="Seleccionar %s"/></td>`,
		esc(row.ID), esc(row.CheckboxID), esc(row.ID), checked,
		esc(data.SelectPath), esc(row.ID), esc(data.HxTarget), esc(data.HxSwap), esc(row.Code),
	); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w,
		`<td class="px-4 py-2 font-mono text-xs">%s</td><td class="px-4 py-2"><a href="%s" class="font-medium text-slate-900 hover:underline">%s</a></td><td class="px-4 py-2 tabular-nums">%s</td><td class="px-4 py-2 tabular-nums">%s</td>`,
		esc(row.Code), esc(row.URL), highlightText(row.Name, data.Search), esc(row.Price), esc(row.StockLabel),
	); err != nil {
		return err
	}
	category := `<td class="px-4 py-2"></td>`
	if row.Category != "" {
		category = fmt.Sprintf(`<td class="px-4 py-2"><span class="%s">%s</span></td>`, row.CategoryClass, esc(row.Category))
	}
	if _, err := io.WriteString(w, category); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w,
		`<td class="px-4 py-2"><span class="%s">%s</span></td>`,
		helpers.BadgeClass(row.StatusTone), esc(row.StatusLabel),
	); err != nil {
		return err
	}
	meli := `<td class="px-4 py-2 text-slate-400">—</td>`
	if row.Permalink != "" {
		meli = fmt.Sprintf(`<td class="px-4 py-2"><a href="%s" target="_blank" rel="noopener" class="text-xs text-slate-500 hover:underline">%s</a></td>`, esc(row.Permalink), esc(row.MeliID))
	} else if row.MeliID != "" {
		meli = fmt.Sprintf(`<td class="px-4 py-2 text-xs text-slate-500">%s</td>`, esc(row.MeliID))
	}
	if _, err := io.WriteString(w, meli); err != nil {
		return err
	}
	_, err := io.WriteString(w, `</tr>`)
	return err
}

func renderPagination(w io.Writer, data TableData) error {
	p := data.Pagination
	totalLabel := fmt.Sprintf("más de %d", p.Total)
	if p.TotalExact {
		totalLabel = strconv.Itoa(p.Total)
	}
	if _, err := fmt.Fprintf(w,
		`<div class="mt-3 flex items-center justify-between text-sm text-slate-500" data-products-pagination><span>Página %d · %s productos</span><div class="flex gap-2">`,
		p.Page, esc(totalLabel),
	); err != nil {
		return err
	}
	if err := renderPageLink(w, data, p.Prev, "Anterior", "prev"); err != nil {
		return err
	}
	if err := renderPageLink(w, data, p.Next, "Siguiente", "next"); err != nil {
		return err
	}
	_, err := io.WriteString(w, `</div></div>`)
	return err
}

func renderPageLink(w io.Writer, data TableData, page *int, label, key string) error {
	if page == nil {
		_, err := fmt.Fprintf(w, `<span class="cursor-not-allowed rounded-md border border-slate-200 px-3 py-1 text-slate-300">%s</span>`, esc(label))
		return err
	}
	query := helpers.SetRawQuery(data.Sort.RawQuery, "page", strconv.Itoa(*page))
	_, err := fmt.Fprintf(w,
		`<a href="%s" hx-get="%s" hx-target="%s" hx-swap="%s" hx-push-url="true" class="rounded-md border border-slate-300 px-3 py-1 hover:bg-slate-100" data-page-%s>%s</a>`,
		esc(helpers.BuildURL(data.BasePath, query)), esc(helpers.BuildURL(data.FragmentPath, query)),
		esc(data.HxTarget), esc(data.HxSwap), key, esc(label),
	)
	return err
}

// Detail renders the product detail pane.
func Detail(data DetailData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<div data-product-detail="%s" hx-trigger="keyup[key=='ArrowLeft'] from:body, keyup[key=='ArrowRight'] from:body"><div class="flex items-center justify-between"><a href="%s" hx-get="%s" hx-target="#main-content" hx-swap="innerHTML" hx-push-url="true" hx-trigger="click, keyup[key=='Escape'] from:body" class="text-sm text-slate-500 hover:underline" data-detail-back>&larr; Volver al listado</a><div class="flex gap-2">`,
			esc(data.ID), esc(data.BackURL), esc(data.BackURL),
		); err != nil {
			return err
		}
		if err := renderDetailNav(w, data.PrevURL, "Anterior", "prev", "keyup[key=='ArrowLeft'] from:body"); err != nil {
			return err
		}
		if err := renderDetailNav(w, data.NextURL, "Siguiente", "next", "keyup[key=='ArrowRight'] from:body"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `</div></div>`); err != nil {
			return err
		}

		if _, err := fmt.Fprintf(w,
			`<div class="mt-4 flex items-start justify-between gap-4"><div><h1 class="text-xl font-semibold">%s</h1><p class="mt-1 font-mono text-xs text-slate-500">%s</p></div><span class="%s" data-detail-status>%s</span></div>`,
			esc(data.Product.Name), esc(data.Product.Code), helpers.BadgeClass(data.StatusTone), esc(data.StatusLabel),
		); err != nil {
			return err
		}

		if err := renderDetailFacts(w, data); err != nil {
			return err
		}
		if err := renderDetailActions(w, data); err != nil {
			return err
		}
		if err := renderDetailFiles(w, data); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func renderDetailNav(w io.Writer, href, label, key, trigger string) error {
	if href == "" {
		_, err := fmt.Fprintf(w, `<span class="cursor-not-allowed rounded-md border border-slate-200 px-3 py-1 text-sm text-slate-300">%s</span>`, esc(label))
		return err
	}
	_, err := fmt.Fprintf(w,
		`<a href="%s" hx-get="%s" hx-target="#main-content" hx-swap="innerHTML" hx-push-url="true" hx-trigger="click, %s" class="rounded-md border border-slate-300 px-3 py-1 text-sm hover:bg-slate-100" data-detail-%s>%s</a>`,
		esc(href), esc(href), trigger, key, esc(label),
	)
	return err
}

func renderDetailFacts(w io.Writer, data DetailData) error {
	facts := []struct{ label, value string }{
		{"Precio", data.Price},
		{"Stock", data.StockLabel},
		{"Marca", data.Product.Brand},
		{"MercadoLibre", data.Product.MeliID},
	}
	if _, err := io.WriteString(w, `<dl class="mt-4 grid grid-cols-2 gap-4 rounded-lg border border-slate-200 bg-white p-4 md:grid-cols-4">`); err != nil {
		return err
	}
	for _, fact := range facts {
		value := fact.value
		if value == "" {
			value = "—"
		}
		if _, err := fmt.Fprintf(w,
			`<div><dt class="text-xs font-medium uppercase text-slate-400">%s</dt><dd class="mt-1 text-sm">%s</dd></div>`,
			esc(fact.label), esc(value),
		); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, `</dl>`); err != nil {
		return err
	}

	if data.Category != "" {
		if _, err := fmt.Fprintf(w, `<p class="mt-3"><span class="%s">%s</span></p>`, data.CategoryClass, esc(data.Category)); err != nil {
			return err
		}
	}
	if data.Product.Description != "" {
		if _, err := fmt.Fprintf(w, `<p class="mt-3 max-w-2xl text-sm text-slate-600">%s</p>`, esc(data.Product.Description)); err != nil {
			return err
		}
	}
	if data.Product.Reason != "" {
		if _, err := fmt.Fprintf(w,
			`<div class="mt-3 rounded-md border border-amber-200 bg-amber-50 px-3 py-2 text-sm" data-detail-reason><p class="font-medium text-amber-800">%s</p><p class="text-amber-700">%s</p></div>`,
			esc(data.Product.Reason), esc(data.Product.Remedy),
		); err != nil {
			return err
		}
	}
	return nil
}

func renderDetailActions(w io.Writer, data DetailData) error {
	if _, err := io.WriteString(w, `<div class="mt-4 flex flex-wrap items-center gap-2">`); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w,
		`<a href="%s" class="rounded-md border border-slate-300 px-3 py-1.5 text-sm hover:bg-slate-100" data-detail-edit>Editar</a>`,
		esc(data.EditURL),
	); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w,
		`<form method="post" action="%s" hx-post="%s" hx-target="#main-content" hx-swap="innerHTML" data-detail-publish><input type="hidden" name="csrf_token" value="%s"/><input type="hidden" name="action" value="%s"/><button type="submit" class="rounded-md bg-slate-900 px-3 py-1.5 text-sm text-white hover:bg-slate-700">%s</button></form>`,
		esc(data.PublishURL), esc(data.PublishURL), esc(data.CSRFToken), esc(data.PublishAction), esc(data.PublishLabel),
	); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w,
		`<form method="post" action="%s" enctype="multipart/form-data" hx-post="%s" hx-target="#main-content" hx-swap="innerHTML" hx-encoding="multipart/form-data" class="flex items-center gap-2" data-detail-upload><input type="hidden" name="csrf_token" value="%s"/><input type="file" name="file" required class="text-sm"/><button type="submit" class="rounded-md border border-slate-300 px-3 py-1.5 text-sm hover:bg-slate-100">Subir a Drive</button></form>`,
		esc(data.UploadURL), esc(data.UploadURL), esc(data.CSRFToken),
	); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w,
		`<form method="post" action="%s" hx-post="%s" hx-target="#main-content" hx-swap="innerHTML" data-detail-notify><input type="hidden" name="csrf_token" value="%s"/><button type="submit" class="rounded-md border border-slate-300 px-3 py-1.5 text-sm hover:bg-slate-100">Actualizar en MercadoLibre</button></form>`,
		esc(data.NotifyURL), esc(data.NotifyURL), esc(data.CSRFToken),
	); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w,
		`<form method="post" action="%s" hx-post="%s" hx-target="#main-content" hx-swap="innerHTML" hx-confirm="¿Eliminar este producto?" data-detail-delete><input type="hidden" name="csrf_token" value="%s"/><button type="submit" class="rounded-md border border-rose-200 px-3 py-1.5 text-sm text-rose-600 hover:bg-rose-50">Eliminar</button></form></div>`,
		esc(data.DeleteURL), esc(data.DeleteURL), esc(data.CSRFToken),
	); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w,
		`<form method="post" action="%s" hx-post="%s" hx-target="#main-content" hx-swap="innerHTML" class="mt-3 flex max-w-xl items-center gap-2" data-detail-drive><input type="hidden" name="csrf_token" value="%s"/><label class="flex-1 text-xs font-medium text-slate-500">Carpeta de Drive<input type="url" name="drive_url" value="%s" placeholder="https://drive.google.com/..." class="mt-1 w-full rounded-md border border-slate-300 px-3 py-1.5 text-sm"/></label><button type="submit" class="self-end rounded-md border border-slate-300 px-3 py-1.5 text-sm hover:bg-slate-100">Guardar</button></form>`,
		esc(data.DriveURL), esc(data.DriveURL), esc(data.CSRFToken), esc(data.Product.DriveURL),
	)
	return err
}

func renderDetailFiles(w io.Writer, data DetailData) error {
	if _, err := io.WriteString(w, `<div class="mt-6" data-detail-files><h2 class="text-sm font-semibold text-slate-700">Archivos en Drive</h2>`); err != nil {
		return err
	}
	if data.FilesDegraded {
		if _, err := io.WriteString(w, `<p class="mt-2 text-sm text-slate-500" data-files-degraded>No se pudieron cargar los archivos.</p>`); err != nil {
			return err
		}
	} else if len(data.Files) == 0 {
		if _, err := io.WriteString(w, `<p class="mt-2 text-sm text-slate-500">Sin archivos adjuntos.</p>`); err != nil {
			return err
		}
	}
	if len(data.Files) > 0 {
		if _, err := io.WriteString(w, `<ul class="mt-2 grid grid-cols-2 gap-3 md:grid-cols-4">`); err != nil {
			return err
		}
		for _, file := range data.Files {
			thumb := ""
			if file.Thumbnail != "" {
				thumb = fmt.Sprintf(`<img src="%s" alt="" class="mb-1 h-24 w-full rounded object-cover"/>`, esc(file.Thumbnail))
			}
			if _, err := fmt.Fprintf(w,
				`<li class="rounded-lg border border-slate-200 bg-white p-2 text-xs"><a href="%s" target="_blank" rel="noopener" data-file-id="%s">%s<span class="block truncate">%s</span></a></li>`,
				esc(file.Link), esc(file.ID), thumb, esc(file.Name),
			); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</ul>`); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</div>`)
	return err
}

// Form renders the create or edit form.
func Form(data FormData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<h1 class="text-xl font-semibold">%s</h1>`, esc(data.Title)); err != nil {
			return err
		}
		if data.Error != "" {
			if _, err := fmt.Fprintf(w, `<p class="mt-3 rounded-md border border-rose-200 bg-rose-50 px-3 py-2 text-sm text-rose-700" data-form-error>%s</p>`, esc(data.Error)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w,
			`<form method="post" action="%s" class="mt-4 max-w-xl space-y-4" data-product-form><input type="hidden" name="csrf_token" value="%s"/>`,
			esc(data.ActionURL), esc(data.CSRFToken),
		); err != nil {
			return err
		}

		codeAttrs := ""
		if data.IsEdit {
			codeAttrs = " readonly"
		}
		if err := formField(w, data, "product_code", "Código", data.Input.Code, "text", "required"+codeAttrs); err != nil {
			return err
		}
		if err := formField(w, data, "product_name", "Nombre", data.Input.Name, "text", "required"); err != nil {
			return err
		}
		if err := formField(w, data, "price", "Precio", data.PriceInput, "number", `step="0.01" min="0" required`); err != nil {
			return err
		}
		if err := formTextarea(w, "description", "Descripción", data.Input.Description); err != nil {
			return err
		}
		if err := formTextarea(w, "detail", "Detalle", data.Input.Detail); err != nil {
			return err
		}
		if err := formSelect(w, "category", "Categoría", data.Categories); err != nil {
			return err
		}
		if err := formSelect(w, "brand", "Marca", data.Brands); err != nil {
			return err
		}
		if err := formField(w, data, "image_url", "URL de imagen", data.Input.ImageURL, "url", ""); err != nil {
			return err
		}

		useStock := ""
		if data.Input.UseStock {
			useStock = " checked"
		}
		if _, err := fmt.Fprintf(w,
			`<label class="flex items-center gap-2 text-sm"><input type="checkbox" name="product_use_stock" value="true"%s data-form-use-stock/>Controlar stock</label>`,
			useStock,
		); err != nil {
			return err
		}
		if err := formField(w, data, "stock", "Stock", data.StockInput, "number", `min="0"`); err != nil {
			return err
		}

		_, err := fmt.Fprintf(w,
			`<div class="flex gap-2"><button type="submit" class="rounded-md bg-slate-900 px-4 py-2 text-sm text-white hover:bg-slate-700">Guardar</button><a href="%s" class="rounded-md border border-slate-300 px-4 py-2 text-sm hover:bg-slate-100">Cancelar</a></div></form>`,
			esc(data.CancelURL),
		)
		return err
	})
}

func formField(w io.Writer, data FormData, name, label, value, kind, extra string) error {
	class := "mt-1 w-full rounded-md border border-slate-300 px-3 py-1.5 text-sm"
	msg := ""
	if err := data.FieldErrors[name]; err != "" {
		class += " border-rose-400"
		msg = fmt.Sprintf(`<span class="mt-1 block text-xs text-rose-600">%s</span>`, esc(err))
	}
	_, err := fmt.Fprintf(w,
		`<label class="block text-sm font-medium text-slate-700">%s<input type="%s" name="%s" value="%s" class="%s" %s/>%s</label>`,
		esc(label), kind, esc(name), esc(value), class, extra, msg,
	)
	return err
}

func formTextarea(w io.Writer, name, label, value string) error {
	_, err := fmt.Fprintf(w,
		`<label class="block text-sm font-medium text-slate-700">%s<textarea name="%s" rows="3" class="mt-1 w-full rounded-md border border-slate-300 px-3 py-1.5 text-sm">%s</textarea></label>`,
		esc(label), esc(name), esc(value),
	)
	return err
}

func formSelect(w io.Writer, name, label string, options []SelectOption) error {
	if _, err := fmt.Fprintf(w,
		`<label class="block text-sm font-medium text-slate-700">%s<select name="%s" class="mt-1 w-full rounded-md border border-slate-300 px-2 py-1.5 text-sm">`,
		esc(label), esc(name),
	); err != nil {
		return err
	}
	for _, option := range options {
		selected := ""
		if option.Selected {
			selected = " selected"
		}
		label := option.Label
		if option.Value == "" {
			label = "Sin asignar"
		}
		if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`, esc(option.Value), selected, esc(label)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</select></label>`)
	return err
}
