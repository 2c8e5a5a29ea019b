package ui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"almagro.dev/catalog-admin/internal/admin/catalog"
	custommw "almagro.dev/catalog-admin/internal/admin/httpserver/middleware"
	"almagro.dev/catalog-admin/internal/admin/templates/partials"
	productstpl "almagro.dev/catalog-admin/internal/admin/templates/products"
)

const defaultProductsSort = "product_code"

// ProductsPage renders the products index page with SSR.
func (h *Handlers) ProductsPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	req := buildProductsRequest(r)

	result, err := h.catalog.List(ctx, user.Token, req.query)
	degraded := false
	if err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		log.Printf("products: list failed: %v", err)
		degraded = true
		result = nil
	}

	basePath := custommw.BasePathFromContext(ctx)
	table := productstpl.TablePayload(basePath, req.state, result, h.selectedFn(ctx), h.selectionState(ctx, basePath), degraded)
	page := productstpl.BuildPageData(basePath, req.state, h.filterOptions(ctx, user.Token), h.brandOptions(ctx, user.Token), table, table.Selection)

	h.renderPage(w, r, "Productos", productstpl.Index(page))
}

// ProductsTable renders the table fragment for htmx requests.
func (h *Handlers) ProductsTable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	req := buildProductsRequest(r)

	result, err := h.catalog.List(ctx, user.Token, req.query)
	degraded := false
	if err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		log.Printf("products: list failed: %v", err)
		degraded = true
		result = nil
	}

	basePath := custommw.BasePathFromContext(ctx)
	table := productstpl.TablePayload(basePath, req.state, result, h.selectedFn(ctx), h.selectionState(ctx, basePath), degraded)

	if canonical := canonicalProductsURL(basePath, req.state); canonical != "" {
		w.Header().Set("HX-Push-Url", canonical)
	}

	templHandler(w, r, productstpl.Table(table))
}

// ProductDetail renders the detail pane. Product and attachments load
// concurrently; a failed attachment lookup degrades the pane instead of
// failing the request.
func (h *Handlers) ProductDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	var (
		product  *catalog.Product
		prodErr  error
		files    []catalog.FileRef
		filesErr error
		wg       sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		product, prodErr = h.catalog.Get(ctx, user.Token, id)
	}()
	go func() {
		defer wg.Done()
		files, filesErr = h.catalog.Files(ctx, user.Token, id)
	}()
	wg.Wait()

	if prodErr != nil {
		if backendRejected(prodErr) {
			h.forceLogout(w, r)
			return
		}
		if errors.Is(prodErr, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("products: fetch %s failed: %v", id, prodErr)
		http.Error(w, "No se pudo cargar el producto. Intentá nuevamente.", http.StatusBadGateway)
		return
	}
	if filesErr != nil {
		log.Printf("products: files for %s failed: %v", id, filesErr)
	}

	basePath := custommw.BasePathFromContext(ctx)
	req := buildProductsRequest(r)
	prevID, nextID := h.neighborIDs(r, user.Token, req.query, id)

	data := productstpl.DetailPayload(
		basePath, *product, files, filesErr != nil,
		prevID, nextID, listContextQuery(r), custommw.CSRFTokenFromContext(ctx),
	)
	h.renderPage(w, r, product.Name, productstpl.Detail(data))
}

// ProductNewForm renders the creation form.
func (h *Handlers) ProductNewForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	basePath := custommw.BasePathFromContext(ctx)
	data := productstpl.FormPayload(
		basePath, nil, catalog.ProductInput{UseStock: true},
		h.filterOptions(ctx, user.Token), h.brandOptions(ctx, user.Token),
		custommw.CSRFTokenFromContext(ctx), "", nil,
	)
	h.renderPage(w, r, "Nuevo producto", productstpl.Form(data))
}

// ProductCreate handles the creation form submission.
func (h *Handlers) ProductCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	input, fieldErrors := parseProductForm(r)
	basePath := custommw.BasePathFromContext(ctx)

	if len(fieldErrors) == 0 {
		created, err := h.catalog.Create(ctx, user.Token, input)
		if err == nil {
			h.redirectAfterWrite(w, r, joinBasePath(basePath, "/products/"+strconv.FormatInt(created.ID, 10)), "Producto creado.")
			return
		}
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		log.Printf("products: create failed: %v", err)
		fieldErrors = map[string]string{}
		data := productstpl.FormPayload(
			basePath, nil, input, h.filterOptions(ctx, user.Token), h.brandOptions(ctx, user.Token),
			custommw.CSRFTokenFromContext(ctx), writeErrorMessage(err), fieldErrors,
		)
		h.renderPageStatus(w, r, http.StatusUnprocessableEntity, "Nuevo producto", productstpl.Form(data))
		return
	}

	data := productstpl.FormPayload(
		basePath, nil, input, h.filterOptions(ctx, user.Token), h.brandOptions(ctx, user.Token),
		custommw.CSRFTokenFromContext(ctx), "Revisá los campos marcados.", fieldErrors,
	)
	h.renderPageStatus(w, r, http.StatusUnprocessableEntity, "Nuevo producto", productstpl.Form(data))
}

// ProductEditForm renders the edit form preloaded with the product.
func (h *Handlers) ProductEditForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	product, err := h.catalog.Get(ctx, user.Token, id)
	if err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("products: fetch %s failed: %v", id, err)
		http.Error(w, "No se pudo cargar el producto.", http.StatusBadGateway)
		return
	}

	basePath := custommw.BasePathFromContext(ctx)
	data := productstpl.FormPayload(
		basePath, product, productstpl.InputFromProduct(*product),
		h.filterOptions(ctx, user.Token), h.brandOptions(ctx, user.Token),
		custommw.CSRFTokenFromContext(ctx), "", nil,
	)
	h.renderPage(w, r, "Editar producto", productstpl.Form(data))
}

// ProductUpdate handles the edit form submission.
func (h *Handlers) ProductUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	input, fieldErrors := parseProductForm(r)
	basePath := custommw.BasePathFromContext(ctx)

	if len(fieldErrors) == 0 {
		updated, err := h.catalog.Update(ctx, user.Token, id, input)
		if err == nil {
			h.redirectAfterWrite(w, r, joinBasePath(basePath, "/products/"+strconv.FormatInt(updated.ID, 10)), "Cambios guardados.")
			return
		}
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("products: update %s failed: %v", id, err)
		fieldErrors = map[string]string{}
		product := catalog.Product{}
		if parsed, perr := strconv.ParseInt(id, 10, 64); perr == nil {
			product.ID = parsed
		}
		data := productstpl.FormPayload(
			basePath, &product, input, h.filterOptions(ctx, user.Token), h.brandOptions(ctx, user.Token),
			custommw.CSRFTokenFromContext(ctx), writeErrorMessage(err), fieldErrors,
		)
		h.renderPageStatus(w, r, http.StatusUnprocessableEntity, "Editar producto", productstpl.Form(data))
		return
	}

	product := catalog.Product{}
	if parsed, perr := strconv.ParseInt(id, 10, 64); perr == nil {
		product.ID = parsed
	}
	data := productstpl.FormPayload(
		basePath, &product, input, h.filterOptions(ctx, user.Token), h.brandOptions(ctx, user.Token),
		custommw.CSRFTokenFromContext(ctx), "Revisá los campos marcados.", fieldErrors,
	)
	h.renderPageStatus(w, r, http.StatusUnprocessableEntity, "Editar producto", productstpl.Form(data))
}

// ProductDelete removes the product and returns to the list.
func (h *Handlers) ProductDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.catalog.Delete(ctx, user.Token, id); err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			log.Printf("products: delete %s failed: %v", id, err)
			h.renderActionError(w, r, http.StatusBadGateway, "No se pudo eliminar el producto.", err)
			return
		}
	}

	if sess, ok := custommw.SessionFromContext(ctx); ok {
		sess.SetSelected(id, false)
	}

	basePath := custommw.BasePathFromContext(ctx)
	h.redirectAfterWrite(w, r, withListContext(joinBasePath(basePath, "/products"), r.URL.RawQuery), "Producto eliminado.")
}

// ProductPublish toggles the listing state for one product.
func (h *Handlers) ProductPublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	action := publishAction(r.PostFormValue("action"))

	if _, err := h.catalog.Publish(ctx, user.Token, id, action); err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("products: publish %s (%s) failed: %v", id, action, err)
		h.renderActionError(w, r, http.StatusBadGateway, "No se pudo cambiar el estado de publicación.", err)
		return
	}

	basePath := custommw.BasePathFromContext(ctx)
	message := "Producto publicado."
	if action == catalog.ActionPause {
		message = "Publicación pausada."
	}
	h.redirectAfterWrite(w, r, withListContext(joinBasePath(basePath, "/products/"+id), r.URL.RawQuery), message)
}

// ProductNotify asks the backend to push the current product state to the
// marketplace listing.
func (h *Handlers) ProductNotify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.catalog.Notify(ctx, user.Token, id); err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("products: notify %s failed: %v", id, err)
		h.renderActionError(w, r, http.StatusBadGateway, "No se pudo solicitar la actualización en MercadoLibre.", err)
		return
	}

	basePath := custommw.BasePathFromContext(ctx)
	h.redirectAfterWrite(w, r, withListContext(joinBasePath(basePath, "/products/"+id), r.URL.RawQuery), "Se solicitó la actualización en MercadoLibre.")
}

// ProductDriveURL patches only the Drive folder link.
func (h *Handlers) ProductDriveURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	driveURL := strings.TrimSpace(r.PostFormValue("drive_url"))

	if _, err := h.catalog.Patch(ctx, user.Token, id, map[string]any{"drive_url": driveURL}); err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		if errors.Is(err, catalog.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Printf("products: drive_url update for %s failed: %v", id, err)
		h.renderActionError(w, r, http.StatusBadGateway, "No se pudo guardar el enlace de Drive.", err)
		return
	}

	basePath := custommw.BasePathFromContext(ctx)
	h.redirectAfterWrite(w, r, withListContext(joinBasePath(basePath, "/products/"+id), r.URL.RawQuery), "Enlace de Drive actualizado.")
}

// ProductUpload streams the submitted file to Drive and stores the resulting
// folder link on the product without refetching it.
func (h *Handlers) ProductUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	file, header, err := r.FormFile("file")
	if err != nil {
		h.renderActionError(w, r, http.StatusBadRequest, "Seleccioná un archivo para subir.", nil)
		return
	}
	defer file.Close()

	result, err := h.catalog.Upload(ctx, user.Token, id, header.Filename, file)
	if err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		log.Printf("products: upload for %s failed: %v", id, err)
		h.renderActionError(w, r, http.StatusBadGateway, "No se pudo subir el archivo.", err)
		return
	}

	if result.DriveURL != "" {
		if _, err := h.catalog.Patch(ctx, user.Token, id, map[string]any{"drive_url": result.DriveURL}); err != nil {
			log.Printf("products: drive_url patch for %s failed: %v", id, err)
		}
	}

	basePath := custommw.BasePathFromContext(ctx)
	h.redirectAfterWrite(w, r, withListContext(joinBasePath(basePath, "/products/"+id), r.URL.RawQuery), "Archivo subido a Drive.")
}

// ProductsSelect toggles one id in the cross-page selection.
func (h *Handlers) ProductsSelect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireUser(w, r); !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "No se pudo procesar la selección.", http.StatusBadRequest)
		return
	}

	id := strings.TrimSpace(r.PostFormValue("id"))
	if id == "" {
		http.Error(w, "No se pudo procesar la selección.", http.StatusBadRequest)
		return
	}

	sess, ok := custommw.SessionFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess.SetSelected(id, !sess.IsSelected(id))

	h.answerSelection(w, r, len(sess.Selection()))
}

// ProductsSelectPage toggles the whole current page: select every id, or
// deselect when all of them are already in the set.
func (h *Handlers) ProductsSelectPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "No se pudo procesar la selección.", http.StatusBadRequest)
		return
	}

	pageQuery := r.PostFormValue("page_query")
	parsed, _ := url.ParseQuery(pageQuery)
	req := productsRequestFromValues(parsed, pageQuery)

	result, err := h.catalog.List(ctx, user.Token, req.query)
	if err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		log.Printf("products: select page list failed: %v", err)
		http.Error(w, "No se pudo seleccionar la página.", http.StatusBadGateway)
		return
	}

	ids := make([]string, 0, len(result.Products))
	for _, product := range result.Products {
		ids = append(ids, strconv.FormatInt(product.ID, 10))
	}

	sess, ok := custommw.SessionFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	allSelected := len(ids) > 0
	for _, id := range ids {
		if !sess.IsSelected(id) {
			allSelected = false
			break
		}
	}
	sess.SetPageSelected(ids, !allSelected)

	// The page checkbox targets the table, so answer with the re-rendered
	// fragment and refresh the bulk bar out of band.
	basePath := custommw.BasePathFromContext(ctx)
	selection := h.selectionState(ctx, basePath)
	table := productstpl.TablePayload(basePath, req.state, result, sess.IsSelected, selection, false)
	templHandler(w, r, productstpl.TableWithBulkBar(table, selection))
}

// ProductsSelectClear empties the selection.
func (h *Handlers) ProductsSelectClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.requireUser(w, r); !ok {
		return
	}

	sess, ok := custommw.SessionFromContext(ctx)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	sess.ClearSelection()

	basePath := custommw.BasePathFromContext(ctx)
	h.redirectAfterWrite(w, r, joinBasePath(basePath, "/products"), "Selección vaciada.")
}

// ProductsBulkPublish fans the requested action out over the selection. The
// bulk call settles every id; failures are reported without aborting the rest.
func (h *Handlers) ProductsBulkPublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "No se pudo procesar el formulario.", http.StatusBadRequest)
		return
	}

	sess, sessOK := custommw.SessionFromContext(ctx)
	if !sessOK {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	ids := sess.Selection()
	if len(ids) == 0 {
		basePath := custommw.BasePathFromContext(ctx)
		h.redirectAfterWrite(w, r, joinBasePath(basePath, "/products"), "No hay productos seleccionados.")
		return
	}

	action := publishAction(r.PostFormValue("action"))
	result, err := h.catalog.BulkPublish(ctx, user.Token, ids, action)
	if err != nil {
		if backendRejected(err) {
			h.forceLogout(w, r)
			return
		}
		log.Printf("products: bulk publish failed: %v", err)
		h.renderActionError(w, r, http.StatusBadGateway, "No se pudo completar la operación masiva.", err)
		return
	}

	for _, outcome := range result.Outcomes {
		if outcome.Err != nil {
			log.Printf("products: bulk %s for %s failed: %v", action, outcome.ID, outcome.Err)
		}
	}

	sess.ClearSelection()

	verb := "publicados"
	if action == catalog.ActionPause {
		verb = "pausados"
	}
	message := fmt.Sprintf("%d productos %s.", result.Succeeded(), verb)
	if failed := result.Failed(); failed > 0 {
		message = fmt.Sprintf("%d productos %s, %d con errores.", result.Succeeded(), verb, failed)
	}

	basePath := custommw.BasePathFromContext(ctx)
	h.redirectAfterWrite(w, r, joinBasePath(basePath, "/products"), message)
}

// answerSelection leaves the checkbox that fired the request alone and swaps
// the bulk bar out of band so the count and actions track the new set.
func (h *Handlers) answerSelection(w http.ResponseWriter, r *http.Request, count int) {
	basePath := custommw.BasePathFromContext(r.Context())
	selection := productstpl.SelectionPayload(basePath, count, custommw.CSRFTokenFromContext(r.Context()))
	w.Header().Set("HX-Reswap", "none")
	templHandler(w, r, productstpl.BulkBarOOB(selection))
}

// neighborIDs locates the product inside its originating page to offer
// previous and next navigation. A list failure only disables the controls.
func (h *Handlers) neighborIDs(r *http.Request, token string, query catalog.Query, id string) (string, string) {
	result, err := h.catalog.List(r.Context(), token, query)
	if err != nil || result == nil {
		return "", ""
	}
	for i, product := range result.Products {
		if strconv.FormatInt(product.ID, 10) != id {
			continue
		}
		prev, next := "", ""
		if i > 0 {
			prev = strconv.FormatInt(result.Products[i-1].ID, 10)
		}
		if i < len(result.Products)-1 {
			next = strconv.FormatInt(result.Products[i+1].ID, 10)
		}
		return prev, next
	}
	return "", ""
}

func (h *Handlers) selectedFn(ctx context.Context) func(string) bool {
	sess, ok := custommw.SessionFromContext(ctx)
	if !ok {
		return nil
	}
	return sess.IsSelected
}

func (h *Handlers) selectionState(ctx context.Context, basePath string) productstpl.SelectionState {
	count := 0
	if sess, ok := custommw.SessionFromContext(ctx); ok {
		count = len(sess.Selection())
	}
	return productstpl.SelectionPayload(basePath, count, custommw.CSRFTokenFromContext(ctx))
}

// filterOptions loads category labels for the filter dropdowns; failures
// simply leave the dropdown empty.
func (h *Handlers) filterOptions(ctx context.Context, token string) []string {
	categories, err := h.catalog.Categories(ctx, token)
	if err != nil {
		log.Printf("products: categories failed: %v", err)
		return nil
	}
	return categories
}

func (h *Handlers) brandOptions(ctx context.Context, token string) []string {
	brands, err := h.catalog.Brands(ctx, token)
	if err != nil {
		log.Printf("products: brands failed: %v", err)
		return nil
	}
	return brands
}

// redirectAfterWrite queues a flash toast for the next page render and sends
// the operator to target, using an HX-Redirect for fragment submissions.
func (h *Handlers) redirectAfterWrite(w http.ResponseWriter, r *http.Request, target, message string) {
	if sess, ok := custommw.SessionFromContext(r.Context()); ok {
		sess.SetFlash("success", message)
	}
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// renderActionError reports a failed write without discarding the current
// view: htmx submissions get an out-of-band toast while the hx-target stays
// untouched, native submissions get a plain error page.
func (h *Handlers) renderActionError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if detail := catalog.ErrorDetail(err); detail != "" {
		message = message + " " + detail
	}
	if custommw.IsHTMXRequest(r.Context()) {
		w.Header().Set("HX-Reswap", "none")
		templHandler(w, r, partials.Toast("danger", message))
		return
	}
	http.Error(w, message, status)
}

// withListContext carries the originating list query on a redirect target so
// filters, sort and page survive the round trip.
func withListContext(target, rawQuery string) string {
	if rawQuery == "" {
		return target
	}
	return target + "?" + rawQuery
}

type productsRequest struct {
	query catalog.Query
	state productstpl.QueryState
}

func buildProductsRequest(r *http.Request) productsRequest {
	return productsRequestFromValues(r.URL.Query(), r.URL.RawQuery)
}

func productsRequestFromValues(values url.Values, rawQuery string) productsRequest {
	search := strings.TrimSpace(values.Get("q"))
	category := strings.TrimSpace(values.Get("category"))
	brand := strings.TrimSpace(values.Get("brand"))
	publishEvent := normalizePublishEvent(values.Get("publish_event"))
	stockFilter := normalizeStockFilter(values.Get("stock_filter"))
	page := parsePositiveIntDefault(values.Get("page"), 1)
	pageSize := parsePositiveIntDefault(values.Get("pageSize"), catalog.DefaultPageSize)
	sortKey, sortDir := parseProductsSort(values.Get("sort"), values.Get("dir"))

	query := catalog.Query{
		Page:         page,
		PageSize:     pageSize,
		Search:       search,
		Category:     category,
		Brand:        brand,
		PublishEvent: publishEvent,
		StockFilter:  stockFilter,
		SortKey:      sortKey,
		SortDir:      sortDir,
	}

	hasFilters := search != "" || category != "" || brand != "" || publishEvent != "" || stockFilter != ""

	state := productstpl.QueryState{
		Search:       search,
		Category:     category,
		Brand:        brand,
		PublishEvent: publishEvent,
		StockFilter:  stockFilter,
		SortKey:      sortKey,
		SortDir:      string(sortDir),
		Page:         page,
		PageSize:     pageSize,
		RawQuery:     rawQuery,
		HasFilters:   hasFilters,
	}

	return productsRequest{query: query, state: state}
}

func canonicalProductsURL(basePath string, state productstpl.QueryState) string {
	base := strings.TrimSpace(basePath)
	if base == "" {
		base = "/admin"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	base = strings.TrimRight(base, "/")

	values := url.Values{}
	if state.Search != "" {
		values.Set("q", state.Search)
	}
	if state.Category != "" {
		values.Set("category", state.Category)
	}
	if state.Brand != "" {
		values.Set("brand", state.Brand)
	}
	if state.PublishEvent != "" {
		values.Set("publish_event", state.PublishEvent)
	}
	if state.StockFilter != "" {
		values.Set("stock_filter", state.StockFilter)
	}
	if state.SortKey != "" && state.SortKey != defaultProductsSort {
		values.Set("sort", state.SortKey)
		values.Set("dir", state.SortDir)
	} else if state.SortDir == string(catalog.SortDesc) {
		values.Set("sort", state.SortKey)
		values.Set("dir", state.SortDir)
	}
	if state.Page > 1 {
		values.Set("page", strconv.Itoa(state.Page))
	}
	if state.PageSize != catalog.DefaultPageSize {
		values.Set("pageSize", strconv.Itoa(state.PageSize))
	}

	if encoded := values.Encode(); encoded != "" {
		return base + "/products?" + encoded
	}
	return base + "/products"
}

// listContextQuery keeps the list state on detail links so the back button
// restores filters and page.
func listContextQuery(r *http.Request) string {
	return r.URL.RawQuery
}

func parseProductsSort(rawKey, rawDir string) (string, catalog.SortDirection) {
	key := strings.TrimSpace(strings.ToLower(rawKey))
	switch key {
	case "product_code", "product_name", "price", "stock", "status":
		// OK
	case "":
		key = defaultProductsSort
	default:
		key = defaultProductsSort
	}

	dir := catalog.SortAsc
	if strings.TrimSpace(strings.ToLower(rawDir)) == "desc" {
		dir = catalog.SortDesc
	}
	return key, dir
}

func normalizePublishEvent(value string) string {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "published", "paused", "unpublished":
		return strings.TrimSpace(strings.ToLower(value))
	default:
		return ""
	}
}

func normalizeStockFilter(value string) string {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "in_stock", "out_of_stock", "untracked":
		return strings.TrimSpace(strings.ToLower(value))
	default:
		return ""
	}
}

func publishAction(value string) catalog.PublishAction {
	if strings.TrimSpace(strings.ToLower(value)) == string(catalog.ActionPause) {
		return catalog.ActionPause
	}
	return catalog.ActionPublish
}

func parseProductForm(r *http.Request) (catalog.ProductInput, map[string]string) {
	fieldErrors := map[string]string{}
	if err := r.ParseForm(); err != nil {
		fieldErrors["form"] = "No se pudo procesar el formulario."
		return catalog.ProductInput{}, fieldErrors
	}

	input := catalog.ProductInput{
		Code:        strings.TrimSpace(r.PostFormValue("product_code")),
		Name:        strings.TrimSpace(r.PostFormValue("product_name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Detail:      strings.TrimSpace(r.PostFormValue("detail")),
		Category:    strings.TrimSpace(r.PostFormValue("category")),
		Brand:       strings.TrimSpace(r.PostFormValue("brand")),
		ImageURL:    strings.TrimSpace(r.PostFormValue("image_url")),
		UseStock:    parseFormCheckbox(r.PostFormValue("product_use_stock")),
	}

	if input.Code == "" {
		fieldErrors["product_code"] = "El código es obligatorio."
	}
	if input.Name == "" {
		fieldErrors["product_name"] = "El nombre es obligatorio."
	}

	priceRaw := strings.TrimSpace(r.PostFormValue("price"))
	if priceRaw == "" {
		fieldErrors["price"] = "El precio es obligatorio."
	} else if price, err := strconv.ParseFloat(priceRaw, 64); err != nil || price < 0 {
		fieldErrors["price"] = "Ingresá un precio válido."
	} else {
		input.Price = price
	}

	stockRaw := strings.TrimSpace(r.PostFormValue("stock"))
	if stockRaw != "" {
		if stock, err := strconv.Atoi(stockRaw); err != nil || stock < 0 {
			fieldErrors["stock"] = "Ingresá un stock válido."
		} else {
			input.Stock = stock
		}
	}

	input = input.Normalize()
	return input, fieldErrors
}

func parseFormCheckbox(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "on", "yes":
		return true
	default:
		return false
	}
}

func writeErrorMessage(err error) string {
	if detail := catalog.ErrorDetail(err); detail != "" {
		return detail
	}
	if errors.Is(err, catalog.ErrInvalidInput) {
		return "Los datos del producto no son válidos."
	}
	return "No se pudo guardar el producto. Intentá nuevamente."
}
