package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
)

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Error carries the backend's HTTP status and detail message so callers can
// distinguish auth failures from plain errors.
type Error struct {
	StatusCode int
	Detail     string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("catalog: backend error (%d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("catalog: backend error (%d): %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap maps well-known statuses onto sentinel errors.
func (e *Error) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// IsUnauthorized reports whether the error is a backend 401, which must force
// the operator back to the login screen.
func IsUnauthorized(err error) bool {
	var backendErr *Error
	return errors.As(err, &backendErr) && backendErr.StatusCode == http.StatusUnauthorized
}

// ErrorDetail extracts the backend's detail message when present.
func ErrorDetail(err error) string {
	var backendErr *Error
	if errors.As(err, &backendErr) {
		return backendErr.Detail
	}
	return ""
}

// HTTPService implements Service backed by the catalog REST backend.
type HTTPService struct {
	base   *url.URL
	client HTTPClient
}

// NewHTTPService constructs a Service that talks to the catalog backend.
func NewHTTPService(baseURL string, client HTTPClient) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("catalog: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPService{
		base:   parsed,
		client: client,
	}, nil
}

// listPayload accepts both response shapes the backend is known to emit: a
// bare array or an {items, total} envelope.
type listPayload struct {
	items    []Product
	total    int
	hasTotal bool
}

func (p *listPayload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(data, &p.items)
	}
	var envelope struct {
		Items []Product `json:"items"`
		Total *int      `json:"total"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	p.items = envelope.Items
	if envelope.Total != nil {
		p.total = *envelope.Total
		p.hasTotal = true
	}
	return nil
}

// List retrieves one page of products.
func (s *HTTPService) List(ctx context.Context, token string, query Query) (*ListResult, error) {
	query = query.WithDefaults()
	endpoint := "/api/products/?" + query.Values().Encode()
	req, err := s.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.errorFromResponse(resp)
	}

	var payload listPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("catalog: decode product list: %w", err)
	}

	pagination := BuildPagination(query.Page, query.PageSize, len(payload.items))
	if payload.hasTotal {
		pagination.TotalItems = payload.total
		pagination.TotalExact = true
		skip := (query.Page - 1) * query.PageSize
		if skip+len(payload.items) < payload.total {
			next := query.Page + 1
			pagination.NextPage = &next
		} else {
			pagination.NextPage = nil
		}
	}

	return &ListResult{Products: payload.items, Pagination: pagination}, nil
}

// Get retrieves a single product.
func (s *HTTPService) Get(ctx context.Context, token, id string) (*Product, error) {
	req, err := s.newRequest(ctx, http.MethodGet, s.productPath(id), nil, token)
	if err != nil {
		return nil, err
	}
	return s.decodeProduct(req)
}

// Create registers a new product.
func (s *HTTPService) Create(ctx context.Context, token string, input ProductInput) (*Product, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}
	req, err := s.newJSONRequest(ctx, http.MethodPost, "/api/products/", input, token)
	if err != nil {
		return nil, err
	}
	return s.decodeProduct(req)
}

// Update replaces the product via a full update.
func (s *HTTPService) Update(ctx context.Context, token, id string, input ProductInput) (*Product, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}
	req, err := s.newJSONRequest(ctx, http.MethodPut, s.productPath(id), input, token)
	if err != nil {
		return nil, err
	}
	return s.decodeProduct(req)
}

// Patch applies a partial update, e.g. editing only drive_url.
func (s *HTTPService) Patch(ctx context.Context, token, id string, fields map[string]any) (*Product, error) {
	if len(fields) == 0 {
		return nil, ErrInvalidInput
	}
	req, err := s.newJSONRequest(ctx, http.MethodPatch, s.productPath(id), fields, token)
	if err != nil {
		return nil, err
	}
	return s.decodeProduct(req)
}

// Delete removes the product.
func (s *HTTPService) Delete(ctx context.Context, token, id string) error {
	req, err := s.newRequest(ctx, http.MethodDelete, s.productPath(id), nil, token)
	if err != nil {
		return err
	}
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return s.errorFromResponse(resp)
	}
	return nil
}

// Publish toggles the marketplace listing state for one product.
func (s *HTTPService) Publish(ctx context.Context, token, id string, action PublishAction) (*Product, error) {
	body := map[string]string{"action": string(action)}
	req, err := s.newJSONRequest(ctx, http.MethodPatch, s.productPath(id)+"/publish", body, token)
	if err != nil {
		return nil, err
	}
	return s.decodeProduct(req)
}

// BulkPublish fans out one publish call per id and waits for all of them to
// settle. Individual failures never abort the batch; they are reported in
// the aggregated result.
func (s *HTTPService) BulkPublish(ctx context.Context, token string, ids []string, action PublishAction) (*BulkResult, error) {
	result := &BulkResult{Outcomes: make([]BulkOutcome, len(ids))}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, err := s.Publish(ctx, token, id, action)
			result.Outcomes[i] = BulkOutcome{ID: id, Err: err}
		}(i, id)
	}
	wg.Wait()

	return result, nil
}

// Files lists the Drive files attached to a product.
func (s *HTTPService) Files(ctx context.Context, token, id string) ([]FileRef, error) {
	req, err := s.newRequest(ctx, http.MethodGet, s.productPath(id)+"/files", nil, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.errorFromResponse(resp)
	}

	var files []FileRef
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, fmt.Errorf("catalog: decode file list: %w", err)
	}
	return files, nil
}

// Upload sends one file to the product's Drive folder via multipart.
func (s *HTTPService) Upload(ctx context.Context, token, id, filename string, content io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("catalog: build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("catalog: read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("catalog: finalize upload: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, s.productPath(id)+"/upload", &buf, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, s.errorFromResponse(resp)
	}

	var payload UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("catalog: decode upload result: %w", err)
	}
	return &payload, nil
}

// Notify asks the backend to refresh the marketplace state of a product.
func (s *HTTPService) Notify(ctx context.Context, token, id string) error {
	req, err := s.newRequest(ctx, http.MethodPost, s.productPath(id)+"/notify", nil, token)
	if err != nil {
		return err
	}
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return s.errorFromResponse(resp)
	}
	return nil
}

// Meli retrieves the marketplace-scoped listing with status counters.
func (s *HTTPService) Meli(ctx context.Context, token string, query MeliQuery) (*MeliResult, error) {
	endpoint := "/api/products/meli"
	if encoded := query.Values().Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := s.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.errorFromResponse(resp)
	}

	var payload MeliResult
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("catalog: decode marketplace listing: %w", err)
	}
	return &payload, nil
}

// Categories lists the known category values for the filter dropdown.
func (s *HTTPService) Categories(ctx context.Context, token string) ([]string, error) {
	return s.stringList(ctx, token, "/api/categories")
}

// Brands lists the known brand values for the filter dropdown.
func (s *HTTPService) Brands(ctx context.Context, token string) ([]string, error) {
	return s.stringList(ctx, token, "/api/brands")
}

func (s *HTTPService) stringList(ctx context.Context, token, endpoint string) ([]string, error) {
	req, err := s.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.errorFromResponse(resp)
	}

	var values []string
	if err := json.NewDecoder(resp.Body).Decode(&values); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", endpoint, err)
	}
	return values, nil
}

func (s *HTTPService) decodeProduct(req *http.Request) (*Product, error) {
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, s.errorFromResponse(resp)
	}

	var payload Product
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("catalog: decode product: %w", err)
	}
	return &payload, nil
}

func (s *HTTPService) productPath(id string) string {
	return path.Join("/api/products", url.PathEscape(strings.TrimSpace(id)))
}

func (s *HTTPService) do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog: request failed: %w", err)
	}
	return resp, nil
}

func (s *HTTPService) newRequest(ctx context.Context, method, endpoint string, body io.Reader, token string) (*http.Request, error) {
	urlStr := s.resolve(endpoint)
	req, err := http.NewRequestWithContext(ctx, method, urlStr, body)
	if err != nil {
		return nil, fmt.Errorf("catalog: build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil && (method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch) {
		// Default to JSON unless caller set otherwise.
		if req.Header.Get("Content-Type") == "" {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	return req, nil
}

func (s *HTTPService) newJSONRequest(ctx context.Context, method, endpoint string, payload any, token string) (*http.Request, error) {
	var buf bytes.Buffer
	if payload != nil {
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("catalog: encode payload: %w", err)
		}
	}
	req, err := s.newRequest(ctx, method, endpoint, &buf, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (s *HTTPService) resolve(endpoint string) string {
	if endpoint == "" {
		return s.base.String()
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	trimmed := strings.TrimPrefix(endpoint, "/")
	ref, err := url.Parse(trimmed)
	if err != nil {
		ref = &url.URL{Path: trimmed}
	}
	return s.base.ResolveReference(ref).String()
}

func (s *HTTPService) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()

	backendErr := &Error{StatusCode: resp.StatusCode}

	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil {
			switch {
			case payload.Detail != "":
				backendErr.Detail = payload.Detail
			case payload.Message != "":
				backendErr.Detail = payload.Message
			}
		}
		if backendErr.Detail == "" {
			backendErr.Detail = strings.TrimSpace(string(body))
		}
	}
	return backendErr
}
