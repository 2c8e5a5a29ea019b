package catalog

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// Status captures the marketplace lifecycle state of a listing. The zero
// value means the product was never published.
type Status string

const (
	StatusActive      Status = "active"
	StatusPaused      Status = "paused"
	StatusClosed      Status = "closed"
	StatusUnderReview Status = "under_review"
)

// PublishAction is the verb sent to the publish endpoint.
type PublishAction string

const (
	ActionPublish PublishAction = "publish"
	ActionPause   PublishAction = "pause"
)

// SortDirection enumerates list orderings.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

const (
	// DefaultPageSize matches the backend's default window.
	DefaultPageSize = 50
	// DefaultSortKey orders listings by their immutable code.
	DefaultSortKey = "product_code"

	// overcountWindow pads the total when the backend returned a full page,
	// purely so the next-page control stays enabled. It is never an accurate
	// count.
	overcountWindow = 1000
)

var (
	// ErrNotFound indicates the product does not exist upstream.
	ErrNotFound = errors.New("catalog: product not found")
	// ErrInvalidInput indicates the submitted product payload was rejected.
	ErrInvalidInput = errors.New("catalog: invalid product input")
)

// Product mirrors the backend's product resource.
type Product struct {
	ID          int64   `json:"id"`
	Code        string  `json:"product_code"`
	Name        string  `json:"product_name"`
	Description string  `json:"description,omitempty"`
	Detail      string  `json:"detail,omitempty"`
	Price       float64 `json:"price"`
	UseStock    bool    `json:"product_use_stock"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	TypePath    string  `json:"product_type_path,omitempty"`
	ImageURL    string  `json:"product_image_b_format_url,omitempty"`
	MeliID      string  `json:"meli_id,omitempty"`
	Status      Status  `json:"status,omitempty"`
	Permalink   string  `json:"permalink,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	Remedy      string  `json:"remedy,omitempty"`
	DriveURL    string  `json:"drive_url,omitempty"`
	Validated   bool    `json:"validated,omitempty"`
}

// Published reports whether the product currently has an active listing.
func (p Product) Published() bool {
	return p.Status == StatusActive
}

// ProductInput is the payload for create and full-update operations.
type ProductInput struct {
	Code        string  `json:"product_code"`
	Name        string  `json:"product_name"`
	Description string  `json:"description,omitempty"`
	Detail      string  `json:"detail,omitempty"`
	Price       float64 `json:"price"`
	UseStock    bool    `json:"product_use_stock"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	ImageURL    string  `json:"product_image_b_format_url,omitempty"`
}

// Normalize trims text fields and zeroes stock for untracked products.
func (in ProductInput) Normalize() ProductInput {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Detail = strings.TrimSpace(in.Detail)
	in.Category = strings.TrimSpace(in.Category)
	in.Brand = strings.TrimSpace(in.Brand)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if !in.UseStock {
		in.Stock = 0
	}
	if in.Stock < 0 {
		in.Stock = 0
	}
	return in
}

// Validate reports whether the input satisfies the backend's constraints.
func (in ProductInput) Validate() error {
	if in.Code == "" || in.Name == "" {
		return ErrInvalidInput
	}
	if in.Price < 0 {
		return ErrInvalidInput
	}
	return nil
}

// Query captures the list view state serialized to the backend.
type Query struct {
	Page         int
	PageSize     int
	Search       string
	Category     string
	Brand        string
	PublishEvent string
	StockFilter  string
	SortKey      string
	SortDir      SortDirection
}

// WithDefaults fills in the backend defaults for unset fields.
func (q Query) WithDefaults() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.SortKey == "" {
		q.SortKey = DefaultSortKey
		q.SortDir = SortAsc
	}
	if q.SortDir != SortDesc {
		q.SortDir = SortAsc
	}
	return q
}

// Values serializes the query for the list endpoint. Optional filters are
// emitted only when set; sort parameters only when a sort key is present.
func (q Query) Values() url.Values {
	q = q.WithDefaults()
	values := url.Values{}
	values.Set("skip", strconv.Itoa((q.Page-1)*q.PageSize))
	values.Set("limit", strconv.Itoa(q.PageSize))
	if s := strings.TrimSpace(q.Search); s != "" {
		values.Set("q", s)
	}
	if q.Category != "" {
		values.Set("category", q.Category)
	}
	if q.Brand != "" {
		values.Set("brand", q.Brand)
	}
	if q.PublishEvent != "" {
		values.Set("publish_event", q.PublishEvent)
	}
	if q.StockFilter != "" {
		values.Set("stock_filter", q.StockFilter)
	}
	if q.SortKey != "" {
		values.Set("sort_by", q.SortKey)
		values.Set("sort_order", string(q.SortDir))
	}
	return values
}

// Pagination describes the window the backend returned.
type Pagination struct {
	Page       int
	PageSize   int
	TotalItems int
	TotalExact bool
	NextPage   *int
	PrevPage   *int
}

// BuildPagination derives pagination from the returned row count. A short
// page pins the total exactly; a full page pads the total so the next-page
// affordance stays enabled.
func BuildPagination(page, pageSize, returned int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	skip := (page - 1) * pageSize

	p := Pagination{Page: page, PageSize: pageSize}
	if returned < pageSize {
		p.TotalItems = skip + returned
		p.TotalExact = true
	} else {
		p.TotalItems = skip + overcountWindow
	}
	if !p.TotalExact {
		next := page + 1
		p.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		p.PrevPage = &prev
	}
	return p
}

// ListResult is a page of products plus its pagination window.
type ListResult struct {
	Products   []Product
	Pagination Pagination
}

// MeliQuery scopes the marketplace view.
type MeliQuery struct {
	Search string
	Status Status
}

// Values serializes the marketplace query.
func (q MeliQuery) Values() url.Values {
	values := url.Values{}
	if s := strings.TrimSpace(q.Search); s != "" {
		values.Set("q", s)
	}
	if q.Status != "" {
		values.Set("status", string(q.Status))
	}
	return values
}

// MeliResult is the marketplace-scoped listing with its status counters.
type MeliResult struct {
	Products    []Product `json:"products"`
	ActiveCount int       `json:"active_count"`
	PausedCount int       `json:"paused_count"`
	Total       int       `json:"total"`
}

// FileRef is one Drive file attached to a product.
type FileRef struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MimeType       string `json:"mimeType,omitempty"`
	ThumbnailLink  string `json:"thumbnailLink,omitempty"`
	LargeImageLink string `json:"largeImageLink,omitempty"`
}

// UploadResult is the backend's response to a Drive upload.
type UploadResult struct {
	Detail   string `json:"detail,omitempty"`
	FileID   string `json:"file_id,omitempty"`
	DriveURL string `json:"drive_url"`
}

// BulkOutcome reports one id's result inside a bulk operation.
type BulkOutcome struct {
	ID  string
	Err error
}

// BulkResult aggregates a fan-out of publish calls. The operation as a whole
// never fails; individual errors are carried per id.
type BulkResult struct {
	Outcomes []BulkOutcome
}

// Failed counts outcomes that carried an error.
func (r BulkResult) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// Succeeded counts outcomes without an error.
func (r BulkResult) Succeeded() int {
	return len(r.Outcomes) - r.Failed()
}

// Service exposes the product catalog backend to the console.
type Service interface {
	List(ctx context.Context, token string, query Query) (*ListResult, error)
	Get(ctx context.Context, token, id string) (*Product, error)
	Create(ctx context.Context, token string, input ProductInput) (*Product, error)
	Update(ctx context.Context, token, id string, input ProductInput) (*Product, error)
	Patch(ctx context.Context, token, id string, fields map[string]any) (*Product, error)
	Delete(ctx context.Context, token, id string) error
	Publish(ctx context.Context, token, id string, action PublishAction) (*Product, error)
	BulkPublish(ctx context.Context, token string, ids []string, action PublishAction) (*BulkResult, error)
	Files(ctx context.Context, token, id string) ([]FileRef, error)
	Upload(ctx context.Context, token, id, filename string, content io.Reader) (*UploadResult, error)
	Notify(ctx context.Context, token, id string) error
	Meli(ctx context.Context, token string, query MeliQuery) (*MeliResult, error)
	Categories(ctx context.Context, token string) ([]string, error)
	Brands(ctx context.Context, token string) ([]string, error)
}
