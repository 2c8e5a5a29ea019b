package ui

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"almagro.dev/catalog-admin/internal/admin/catalog"
	custommw "almagro.dev/catalog-admin/internal/admin/httpserver/middleware"
	melitpl "almagro.dev/catalog-admin/internal/admin/templates/meli"
)

// MeliPage renders the marketplace listings view with its status counters.
func (h *Handlers) MeliPage(w http.ResponseWriter, r *http.Request) {
	page, ok := h.buildMeliPage(w, r)
	if !ok {
		return
	}
	h.renderPage(w, r, "Publicaciones", melitpl.Page(page))
}

// MeliTable renders the counters+table fragment and pushes the canonical
// listings URL into browser history.
func (h *Handlers) MeliTable(w http.ResponseWriter, r *http.Request) {
	page, ok := h.buildMeliPage(w, r)
	if !ok {
		return
	}

	basePath := custommw.BasePathFromContext(r.Context())
	w.Header().Set("HX-Push-Url", canonicalMeliURL(basePath, page.Query))
	templHandler(w, r, melitpl.Table(page))
}

func (h *Handlers) buildMeliPage(w http.ResponseWriter, r *http.Request) (melitpl.PageData, bool) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return melitpl.PageData{}, false
	}

	values := r.URL.Query()
	state := melitpl.QueryState{
		Search:   strings.TrimSpace(values.Get("q")),
		Status:   normalizeMeliStatus(values.Get("status")),
		RawQuery: r.URL.RawQuery,
	}

	query := catalog.MeliQuery{
		Search: state.Search,
		Status: catalog.Status(state.Status),
	}

	result, err := h.catalog.Meli(ctx, user.Token, query)
	if err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return melitpl.PageData{}, false
		}
		log.Printf("meli: list failed: %v", err)
		result = nil
	}

	basePath := custommw.BasePathFromContext(ctx)
	return melitpl.BuildPageData(basePath, state, result), true
}

func canonicalMeliURL(basePath string, state melitpl.QueryState) string {
	values := url.Values{}
	if state.Search != "" {
		values.Set("q", state.Search)
	}
	if state.Status != "" {
		values.Set("status", state.Status)
	}
	target := joinBasePath(basePath, "/meli")
	if encoded := values.Encode(); encoded != "" {
		target += "?" + encoded
	}
	return target
}

func normalizeMeliStatus(value string) string {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case string(catalog.StatusActive), string(catalog.StatusPaused),
		string(catalog.StatusClosed), string(catalog.StatusUnderReview):
		return strings.TrimSpace(strings.ToLower(value))
	default:
		return ""
	}
}
