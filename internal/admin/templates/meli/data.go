package meli

import (
	"strconv"
	"strings"

	"almagro.dev/catalog-admin/internal/admin/catalog"
	"almagro.dev/catalog-admin/internal/admin/templates/helpers"
	"almagro.dev/catalog-admin/internal/admin/templates/partials"
)

// PageData is the payload for the marketplace listings page.
type PageData struct {
	Title        string
	Description  string
	Breadcrumbs  []partials.Breadcrumb
	Query        QueryState
	Counters     []Counter
	Rows         []Row
	EmptyMessage string
	Degraded     bool
	PagePath     string
	TablePath    string
	BasePath     string
}

// QueryState captures the marketplace view state.
type QueryState struct {
	Search   string
	Status   string
	RawQuery string
}

// Counter is one status summary card.
type Counter struct {
	Key    string
	Label  string
	Value  string
	Tone   string
	Href   string
	Active bool
}

// Row is one published listing.
type Row struct {
	ID          string
	Code        string
	Name        string
	Price       string
	MeliID      string
	Permalink   string
	StatusLabel string
	StatusTone  string
	Reason      string
	Remedy      string
	DetailURL   string
}

// BuildPageData assembles the marketplace page payload. A nil result renders
// the degraded surface.
func BuildPageData(basePath string, state QueryState, result *catalog.MeliResult) PageData {
	data := PageData{
		Title:       "Publicaciones en MercadoLibre",
		Description: "Productos vinculados al marketplace y su estado actual.",
		Breadcrumbs: []partials.Breadcrumb{
			{Label: "MercadoLibre", Href: ""},
			{Label: "Publicaciones", Href: joinBase(basePath, "/meli")},
		},
		Query:     state,
		PagePath:  joinBase(basePath, "/meli"),
		TablePath: joinBase(basePath, "/meli/table"),
		BasePath:  joinBase(basePath, "/meli"),
	}
	if result == nil {
		data.Degraded = true
		return data
	}

	data.Counters = buildCounters(basePath, state, *result)
	data.Rows = toRows(basePath, result.Products)
	if len(data.Rows) == 0 {
		data.EmptyMessage = "No hay publicaciones que coincidan con la búsqueda."
	}
	return data
}

func buildCounters(basePath string, state QueryState, result catalog.MeliResult) []Counter {
	counters := []struct {
		key   string
		label string
		value int
		tone  string
	}{
		{"", "Total", result.Total, "info"},
		{string(catalog.StatusActive), "Activas", result.ActiveCount, "success"},
		{string(catalog.StatusPaused), "Pausadas", result.PausedCount, "warning"},
	}

	items := make([]Counter, 0, len(counters))
	for _, c := range counters {
		query := helpers.SetRawQuery(state.RawQuery, "status", c.key)
		if c.key == "" {
			query = helpers.DelRawQuery(state.RawQuery, "status")
		}
		items = append(items, Counter{
			Key:    c.key,
			Label:  c.label,
			Value:  strconv.Itoa(c.value),
			Tone:   c.tone,
			Href:   helpers.BuildURL(joinBase(basePath, "/meli"), query),
			Active: state.Status == c.key,
		})
	}
	return items
}

func toRows(basePath string, items []catalog.Product) []Row {
	rows := make([]Row, 0, len(items))
	for _, product := range items {
		id := strconv.FormatInt(product.ID, 10)
		rows = append(rows, Row{
			ID:          id,
			Code:        product.Code,
			Name:        product.Name,
			Price:       helpers.Currency(product.Price),
			MeliID:      product.MeliID,
			Permalink:   product.Permalink,
			StatusLabel: statusLabel(product.Status),
			StatusTone:  helpers.StatusTone(string(product.Status)),
			Reason:      product.Reason,
			Remedy:      product.Remedy,
			DetailURL:   joinBase(basePath, "/products/"+id),
		})
	}
	return rows
}

func statusLabel(status catalog.Status) string {
	switch status {
	case catalog.StatusActive:
		return "Activa"
	case catalog.StatusPaused:
		return "Pausada"
	case catalog.StatusClosed:
		return "Cerrada"
	case catalog.StatusUnderReview:
		return "En revisión"
	default:
		return "Desconocido"
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
