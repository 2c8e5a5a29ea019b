package products

import (
	"fmt"
	"strconv"
	"strings"

	"almagro.dev/catalog-admin/internal/admin/catalog"
	"almagro.dev/catalog-admin/internal/admin/templates/helpers"
	"almagro.dev/catalog-admin/internal/admin/templates/partials"
)

// PageData represents the payload for the products index page.
type PageData struct {
	Title         string
	Description   string
	Breadcrumbs   []partials.Breadcrumb
	TableEndpoint string
	Query         QueryState
	Filters       Filters
	Table         TableData
	Selection     SelectionState
}

// QueryState captures current filter and view state.
type QueryState struct {
	Search       string
	Category     string
	Brand        string
	PublishEvent string
	StockFilter  string
	SortKey      string
	SortDir      string
	Page         int
	PageSize     int
	RawQuery     string
	HasFilters   bool
}

// Filters encapsulates filter control data.
type Filters struct {
	CategoryOptions []SelectOption
	BrandOptions    []SelectOption
	PublishOptions  []SelectOption
	StockOptions    []SelectOption
	HasActive       bool
}

// SelectOption represents a select menu option.
type SelectOption struct {
	Value    string
	Label    string
	Selected bool
}

// SelectionState summarises the ids held across pages.
type SelectionState struct {
	Count     int
	HasAny    bool
	ClearURL  string
	BulkURL   string
	CSRFToken string
}

// TableData contains the fragment payload for the products table.
type TableData struct {
	BasePath     string
	FragmentPath string
	SelectPath   string
	HxTarget     string
	HxSwap       string
	Search       string
	Rows         []TableRow
	EmptyMessage string
	Degraded     bool
	Pagination   Pagination
	Sort         SortState
	Selection    SelectionState
}

// Pagination describes the current window.
type Pagination struct {
	Page       int
	PageSize   int
	Total      int
	TotalExact bool
	Next       *int
	Prev       *int
}

// SortState describes current sort for header controls.
type SortState struct {
	Key          string
	Dir          string
	BasePath     string
	FragmentPath string
	RawQuery     string
	HxTarget     string
	HxSwap       string
	HxPushURL    bool
}

// TableRow represents a single product row.
type TableRow struct {
	Index         int
	ID            string
	CheckboxID    string
	Code          string
	Name          string
	URL           string
	ImageURL      string
	Price         string
	Category      string
	CategoryClass string
	Brand         string
	StockLabel    string
	TracksStock   bool
	StatusLabel   string
	StatusTone    string
	MeliID        string
	Permalink     string
	Selected      bool
}

// DetailData is the payload for the product detail pane.
type DetailData struct {
	Product       catalog.Product
	ID            string
	Price         string
	Category      string
	CategoryClass string
	StockLabel    string
	StatusLabel   string
	StatusTone    string
	Files         []FileView
	FilesDegraded bool
	PrevURL       string
	NextURL       string
	BackURL       string
	EditURL       string
	PublishURL    string
	NotifyURL     string
	DriveURL      string
	UploadURL     string
	DeleteURL     string
	PublishAction string
	PublishLabel  string
	CSRFToken     string
}

// FileView is one Drive attachment rendered in the detail pane.
type FileView struct {
	ID        string
	Name      string
	Thumbnail string
	Link      string
}

// FormData drives the create and edit forms.
type FormData struct {
	Title       string
	ActionURL   string
	CancelURL   string
	IsEdit      bool
	Input       catalog.ProductInput
	PriceInput  string
	StockInput  string
	Categories  []SelectOption
	Brands      []SelectOption
	Error       string
	FieldErrors map[string]string
	CSRFToken   string
}

// BuildPageData assembles the full SSR payload for the products page.
func BuildPageData(basePath string, state QueryState, categories, brands []string, table TableData, selection SelectionState) PageData {
	return PageData{
		Title:         "Productos",
		Description:   "Catálogo completo con estado de publicación en MercadoLibre.",
		Breadcrumbs:   breadcrumbItems(basePath),
		TableEndpoint: joinBase(basePath, "/products/table"),
		Query:         state,
		Filters:       buildFilters(state, categories, brands),
		Table:         table,
		Selection:     selection,
	}
}

// TablePayload prepares the table fragment data. A degraded payload keeps the
// previous interaction surface while signalling that the read failed.
func TablePayload(basePath string, state QueryState, result *catalog.ListResult, selected func(string) bool, selection SelectionState, degraded bool) TableData {
	var rows []TableRow
	pagination := Pagination{Page: state.Page, PageSize: state.PageSize}
	if result != nil {
		rows = toTableRows(basePath, result.Products, selected)
		pagination = toPagination(result.Pagination)
	}

	empty := ""
	if !degraded && len(rows) == 0 {
		empty = "No hay productos que coincidan con los filtros."
	}

	return TableData{
		BasePath:     joinBase(basePath, "/products"),
		FragmentPath: joinBase(basePath, "/products/table"),
		SelectPath:   joinBase(basePath, "/products/select"),
		HxTarget:     "#products-table",
		HxSwap:       "outerHTML",
		Search:       state.Search,
		Rows:         rows,
		EmptyMessage: empty,
		Degraded:     degraded,
		Pagination:   pagination,
		Sort: SortState{
			Key:          state.SortKey,
			Dir:          state.SortDir,
			BasePath:     joinBase(basePath, "/products"),
			FragmentPath: joinBase(basePath, "/products/table"),
			RawQuery:     state.RawQuery,
			HxTarget:     "#products-table",
			HxSwap:       "outerHTML",
			HxPushURL:    true,
		},
		Selection: selection,
	}
}

// SelectionPayload builds the bulk action bar state.
func SelectionPayload(basePath string, count int, csrfToken string) SelectionState {
	return SelectionState{
		Count:     count,
		HasAny:    count > 0,
		ClearURL:  joinBase(basePath, "/products/select/clear"),
		BulkURL:   joinBase(basePath, "/products/bulk/publish"),
		CSRFToken: csrfToken,
	}
}

func toPagination(p catalog.Pagination) Pagination {
	return Pagination{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.TotalItems,
		TotalExact: p.TotalExact,
		Next:       p.NextPage,
		Prev:       p.PrevPage,
	}
}

func toTableRows(basePath string, items []catalog.Product, selected func(string) bool) []TableRow {
	rows := make([]TableRow, 0, len(items))
	for index, product := range items {
		id := strconv.FormatInt(product.ID, 10)
		isSelected := false
		if selected != nil {
			isSelected = selected(id)
		}
		rows = append(rows, TableRow{
			Index:         index,
			ID:            id,
			CheckboxID:    fmt.Sprintf("product-%02d", index),
			Code:          product.Code,
			Name:          product.Name,
			URL:           joinBase(basePath, "/products/"+id),
			ImageURL:      product.ImageURL,
			Price:         helpers.Currency(product.Price),
			Category:      categoryLabel(product),
			CategoryClass: helpers.CategoryColor(categoryLabel(product)),
			Brand:         product.Brand,
			StockLabel:    stockLabel(product),
			TracksStock:   product.UseStock,
			StatusLabel:   StatusLabel(product.Status),
			StatusTone:    helpers.StatusTone(string(product.Status)),
			MeliID:        product.MeliID,
			Permalink:     product.Permalink,
			Selected:      isSelected,
		})
	}
	return rows
}

// DetailPayload assembles the detail pane view model. Files may be nil when
// the attachment lookup failed; the pane renders without them.
func DetailPayload(basePath string, product catalog.Product, files []catalog.FileRef, filesDegraded bool, prevID, nextID, backQuery, csrfToken string) DetailData {
	id := strconv.FormatInt(product.ID, 10)

	action := catalog.ActionPublish
	label := "Publicar"
	if product.Published() {
		action = catalog.ActionPause
		label = "Pausar"
	}

	back := joinBase(basePath, "/products")
	if backQuery != "" {
		back += "?" + backQuery
	}
	// Post-action redirects echo the query, keeping filters and paging alive.
	withContext := func(u string) string {
		if backQuery == "" {
			return u
		}
		return u + "?" + backQuery
	}

	views := make([]FileView, 0, len(files))
	for _, file := range files {
		link := file.LargeImageLink
		if link == "" {
			link = file.ThumbnailLink
		}
		views = append(views, FileView{
			ID:        file.ID,
			Name:      file.Name,
			Thumbnail: file.ThumbnailLink,
			Link:      link,
		})
	}

	data := DetailData{
		Product:       product,
		ID:            id,
		Price:         helpers.Currency(product.Price),
		Category:      categoryLabel(product),
		CategoryClass: helpers.CategoryColor(categoryLabel(product)),
		StockLabel:    stockLabel(product),
		StatusLabel:   StatusLabel(product.Status),
		StatusTone:    helpers.StatusTone(string(product.Status)),
		Files:         views,
		FilesDegraded: filesDegraded,
		BackURL:       back,
		EditURL:       joinBase(basePath, "/products/"+id+"/edit"),
		PublishURL:    withContext(joinBase(basePath, "/products/"+id+"/publish")),
		NotifyURL:     withContext(joinBase(basePath, "/products/"+id+"/notify")),
		DriveURL:      withContext(joinBase(basePath, "/products/"+id+"/drive")),
		UploadURL:     withContext(joinBase(basePath, "/products/"+id+"/upload")),
		DeleteURL:     withContext(joinBase(basePath, "/products/"+id+"/delete")),
		PublishAction: string(action),
		PublishLabel:  label,
		CSRFToken:     csrfToken,
	}
	if prevID != "" {
		data.PrevURL = withContext(joinBase(basePath, "/products/"+prevID))
	}
	if nextID != "" {
		data.NextURL = withContext(joinBase(basePath, "/products/"+nextID))
	}
	return data
}

// FormPayload prepares the create or edit form view model.
func FormPayload(basePath string, product *catalog.Product, input catalog.ProductInput, categories, brands []string, csrfToken, errMsg string, fieldErrors map[string]string) FormData {
	data := FormData{
		Title:       "Nuevo producto",
		ActionURL:   joinBase(basePath, "/products"),
		CancelURL:   joinBase(basePath, "/products"),
		Input:       input,
		PriceInput:  priceInput(input.Price),
		StockInput:  strconv.Itoa(input.Stock),
		Categories:  selectOptions(categories, input.Category),
		Brands:      selectOptions(brands, input.Brand),
		Error:       strings.TrimSpace(errMsg),
		FieldErrors: fieldErrors,
		CSRFToken:   csrfToken,
	}
	if product != nil {
		id := strconv.FormatInt(product.ID, 10)
		data.Title = "Editar producto"
		data.IsEdit = true
		data.ActionURL = joinBase(basePath, "/products/"+id)
		data.CancelURL = joinBase(basePath, "/products/"+id)
	}
	return data
}

// InputFromProduct seeds the edit form from an existing product.
func InputFromProduct(p catalog.Product) catalog.ProductInput {
	return catalog.ProductInput{
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Detail:      p.Detail,
		Price:       p.Price,
		UseStock:    p.UseStock,
		Stock:       p.Stock,
		Category:    categoryLabel(p),
		Brand:       p.Brand,
		ImageURL:    p.ImageURL,
	}
}

// StatusLabel maps listing states to UI copy.
func StatusLabel(status catalog.Status) string {
	switch status {
	case catalog.StatusActive:
		return "Publicado"
	case catalog.StatusPaused:
		return "Pausado"
	case catalog.StatusClosed:
		return "Cerrado"
	case catalog.StatusUnderReview:
		return "En revisión"
	default:
		return "Sin publicar"
	}
}

func categoryLabel(p catalog.Product) string {
	if p.Category != "" {
		return p.Category
	}
	return p.TypePath
}

func stockLabel(p catalog.Product) string {
	if !p.UseStock {
		return "—"
	}
	return strconv.Itoa(p.Stock)
}

func priceInput(price float64) string {
	if price == 0 {
		return ""
	}
	return strconv.FormatFloat(price, 'f', -1, 64)
}

func selectOptions(values []string, current string) []SelectOption {
	options := make([]SelectOption, 0, len(values)+1)
	options = append(options, SelectOption{Value: "", Label: "Todas", Selected: strings.TrimSpace(current) == ""})
	for _, value := range values {
		options = append(options, SelectOption{
			Value:    value,
			Label:    value,
			Selected: strings.EqualFold(current, value),
		})
	}
	return options
}

func buildFilters(state QueryState, categories, brands []string) Filters {
	publishOptions := []SelectOption{
		{Value: "", Label: "Todos", Selected: state.PublishEvent == ""},
		{Value: "published", Label: "Publicados", Selected: state.PublishEvent == "published"},
		{Value: "paused", Label: "Pausados", Selected: state.PublishEvent == "paused"},
		{Value: "unpublished", Label: "Sin publicar", Selected: state.PublishEvent == "unpublished"},
	}
	stockOptions := []SelectOption{
		{Value: "", Label: "Todos", Selected: state.StockFilter == ""},
		{Value: "in_stock", Label: "Con stock", Selected: state.StockFilter == "in_stock"},
		{Value: "out_of_stock", Label: "Sin stock", Selected: state.StockFilter == "out_of_stock"},
		{Value: "untracked", Label: "Sin control de stock", Selected: state.StockFilter == "untracked"},
	}

	return Filters{
		CategoryOptions: selectOptions(categories, state.Category),
		BrandOptions:    selectOptions(brands, state.Brand),
		PublishOptions:  publishOptions,
		StockOptions:    stockOptions,
		HasActive:       state.HasFilters,
	}
}

func breadcrumbItems(basePath string) []partials.Breadcrumb {
	return []partials.Breadcrumb{
		{Label: "Catálogo", Href: ""},
		{Label: "Productos", Href: joinBase(basePath, "/products")},
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
