package catalog

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// StaticService is an in-memory Service used by tests and local development
// when no backend is configured.
type StaticService struct {
	mu       sync.Mutex
	products []Product
	files    map[int64][]FileRef
	nextID   int64
}

// NewStaticService seeds a fixture catalog.
func NewStaticService() *StaticService {
	products := []Product{
		{
			ID: 1, Code: "MATE-001", Name: "Mate imperial calabaza",
			Description: "Mate de calabaza curado con virola de alpaca.",
			Price:       18500, UseStock: true, Stock: 12,
			Category: "Hogar", Brand: "Pampa", TypePath: "Hogar > Cocina > Mates",
			MeliID: "MLA901", Status: StatusActive, Permalink: "https://listado.example.com/MLA901",
			DriveURL: "https://drive.example.com/folders/mate-001",
		},
		{
			ID: 2, Code: "MATE-002", Name: "Bombilla pico de loro",
			Description: "Bombilla de acero inoxidable.",
			Price:       5400, UseStock: true, Stock: 0,
			Category: "Hogar", Brand: "Pampa", TypePath: "Hogar > Cocina > Mates",
			MeliID: "MLA902", Status: StatusPaused,
			Reason: "Sin stock disponible", Remedy: "Reponer stock y volver a publicar",
		},
		{
			ID: 3, Code: "ELEC-010", Name: "Cargador USB-C 65W",
			Description: "Cargador rápido con cable incluido.",
			Price:       32999, UseStock: true, Stock: 48,
			Category: "Electrónica", Brand: "Voltix", TypePath: "Electrónica > Accesorios",
			MeliID: "MLA910", Status: StatusUnderReview,
			Reason: "Imágenes en revisión",
		},
		{
			ID: 4, Code: "ELEC-011", Name: "Auriculares inalámbricos",
			Description: "Bluetooth 5.3, estuche de carga.",
			Price:       45900, UseStock: false, Stock: 0,
			Category: "Electrónica", Brand: "Voltix", TypePath: "Electrónica > Audio",
		},
		{
			ID: 5, Code: "REP-100", Name: "Filtro de aceite",
			Description: "Compatible con motores 1.6 y 2.0.",
			Price:       9800, UseStock: true, Stock: 7,
			Category: "Repuestos", Brand: "Andina", TypePath: "Repuestos > Motor",
			MeliID: "MLA915", Status: StatusClosed,
			Reason: "Publicación finalizada",
		},
	}

	files := map[int64][]FileRef{
		1: {
			{ID: "f-100", Name: "frente.jpg", MimeType: "image/jpeg",
				ThumbnailLink:  "https://drive.example.com/thumb/f-100",
				LargeImageLink: "https://drive.example.com/large/f-100"},
			{ID: "f-101", Name: "detalle.jpg", MimeType: "image/jpeg",
				ThumbnailLink:  "https://drive.example.com/thumb/f-101",
				LargeImageLink: "https://drive.example.com/large/f-101"},
		},
		3: {
			{ID: "f-300", Name: "cargador.png", MimeType: "image/png",
				ThumbnailLink:  "https://drive.example.com/thumb/f-300",
				LargeImageLink: "https://drive.example.com/large/f-300"},
		},
	}

	return &StaticService{
		products: products,
		files:    files,
		nextID:   int64(len(products) + 1),
	}
}

// List filters, sorts and pages the fixture catalog in memory.
func (s *StaticService) List(ctx context.Context, token string, query Query) (*ListResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = query.WithDefaults()
	matched := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if !matchesQuery(p, query) {
			continue
		}
		matched = append(matched, p)
	}
	sortProducts(matched, query.SortKey, query.SortDir)

	skip := (query.Page - 1) * query.PageSize
	if skip > len(matched) {
		skip = len(matched)
	}
	end := skip + query.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	page := append([]Product(nil), matched[skip:end]...)

	return &ListResult{
		Products:   page,
		Pagination: BuildPagination(query.Page, query.PageSize, len(page)),
	}, nil
}

// Get returns a copy of the stored product.
func (s *StaticService) Get(ctx context.Context, token, id string) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	copied := s.products[idx]
	return &copied, nil
}

// Create appends a new product to the fixture catalog.
func (s *StaticService) Create(ctx context.Context, token string, input ProductInput) (*Product, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.Code == input.Code {
			return nil, ErrInvalidInput
		}
	}

	product := productFromInput(input)
	product.ID = s.nextID
	s.nextID++
	s.products = append(s.products, product)
	copied := product
	return &copied, nil
}

// Update replaces every mutable field except the immutable code.
func (s *StaticService) Update(ctx context.Context, token, id string, input ProductInput) (*Product, error) {
	input = input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	existing := s.products[idx]
	updated := productFromInput(input)
	updated.ID = existing.ID
	updated.Code = existing.Code
	updated.MeliID = existing.MeliID
	updated.Status = existing.Status
	updated.Permalink = existing.Permalink
	updated.Reason = existing.Reason
	updated.Remedy = existing.Remedy
	updated.DriveURL = existing.DriveURL
	s.products[idx] = updated

	copied := updated
	return &copied, nil
}

// Patch applies a partial update; only fields the console edits are handled.
func (s *StaticService) Patch(ctx context.Context, token, id string, fields map[string]any) (*Product, error) {
	if len(fields) == 0 {
		return nil, ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	product := s.products[idx]
	for key, raw := range fields {
		switch key {
		case "drive_url":
			if v, ok := raw.(string); ok {
				product.DriveURL = strings.TrimSpace(v)
			}
		case "product_name":
			if v, ok := raw.(string); ok {
				product.Name = strings.TrimSpace(v)
			}
		case "description":
			if v, ok := raw.(string); ok {
				product.Description = strings.TrimSpace(v)
			}
		case "price":
			switch v := raw.(type) {
			case float64:
				product.Price = v
			case int:
				product.Price = float64(v)
			}
		case "stock":
			switch v := raw.(type) {
			case float64:
				product.Stock = int(v)
			case int:
				product.Stock = v
			}
		}
	}
	s.products[idx] = product

	copied := product
	return &copied, nil
}

// Delete removes the product and its files.
func (s *StaticService) Delete(ctx context.Context, token, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	delete(s.files, s.products[idx].ID)
	s.products = append(s.products[:idx], s.products[idx+1:]...)
	return nil
}

// Publish flips the marketplace status for one product.
func (s *StaticService) Publish(ctx context.Context, token, id string, action PublishAction) (*Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	product := s.products[idx]
	switch action {
	case ActionPublish:
		product.Status = StatusActive
		product.Reason = ""
		product.Remedy = ""
		if product.MeliID == "" {
			product.MeliID = fmt.Sprintf("MLA9%02d", product.ID)
		}
	case ActionPause:
		product.Status = StatusPaused
	default:
		return nil, ErrInvalidInput
	}
	s.products[idx] = product

	copied := product
	return &copied, nil
}

// BulkPublish applies the action to every id, absorbing individual failures.
func (s *StaticService) BulkPublish(ctx context.Context, token string, ids []string, action PublishAction) (*BulkResult, error) {
	result := &BulkResult{Outcomes: make([]BulkOutcome, len(ids))}
	for i, id := range ids {
		_, err := s.Publish(ctx, token, id, action)
		result.Outcomes[i] = BulkOutcome{ID: id, Err: err}
	}
	return result, nil
}

// Files returns the stored Drive file list for a product.
func (s *StaticService) Files(ctx context.Context, token, id string) ([]FileRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return append([]FileRef(nil), s.files[s.products[idx].ID]...), nil
}

// Upload records a fake Drive file and assigns a folder URL.
func (s *StaticService) Upload(ctx context.Context, token, id, filename string, content io.Reader) (*UploadResult, error) {
	if _, err := io.Copy(io.Discard, content); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}

	product := s.products[idx]
	fileID := fmt.Sprintf("f-%d-%d", product.ID, len(s.files[product.ID])+1)
	s.files[product.ID] = append(s.files[product.ID], FileRef{
		ID:             fileID,
		Name:           filename,
		ThumbnailLink:  "https://drive.example.com/thumb/" + fileID,
		LargeImageLink: "https://drive.example.com/large/" + fileID,
	})
	if product.DriveURL == "" {
		product.DriveURL = fmt.Sprintf("https://drive.example.com/folders/%s", strings.ToLower(product.Code))
		s.products[idx] = product
	}

	return &UploadResult{
		Detail:   "Archivo subido correctamente",
		FileID:   fileID,
		DriveURL: product.DriveURL,
	}, nil
}

// Notify is a no-op refresh request against the fixture.
func (s *StaticService) Notify(ctx context.Context, token, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(id) < 0 {
		return ErrNotFound
	}
	return nil
}

// Meli returns the marketplace-scoped subset with status counters.
func (s *StaticService) Meli(ctx context.Context, token string, query MeliQuery) (*MeliResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &MeliResult{}
	search := strings.ToLower(strings.TrimSpace(query.Search))
	for _, p := range s.products {
		if p.MeliID == "" {
			continue
		}
		switch p.Status {
		case StatusActive:
			result.ActiveCount++
		case StatusPaused:
			result.PausedCount++
		}
		if query.Status != "" && p.Status != query.Status {
			continue
		}
		if search != "" && !containsFold(p, search) {
			continue
		}
		result.Products = append(result.Products, p)
	}
	result.Total = len(result.Products)
	return result, nil
}

// Categories enumerates the distinct category values.
func (s *StaticService) Categories(ctx context.Context, token string) ([]string, error) {
	return s.distinct(func(p Product) string { return p.Category }), nil
}

// Brands enumerates the distinct brand values.
func (s *StaticService) Brands(ctx context.Context, token string) ([]string, error) {
	return s.distinct(func(p Product) string { return p.Brand }), nil
}

func (s *StaticService) distinct(pick func(Product) string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var values []string
	for _, p := range s.products {
		v := pick(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// indexOf must be called with the mutex held.
func (s *StaticService) indexOf(id string) int {
	parsed, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil {
		return -1
	}
	for i, p := range s.products {
		if p.ID == parsed {
			return i
		}
	}
	return -1
}

func productFromInput(input ProductInput) Product {
	return Product{
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		Detail:      input.Detail,
		Price:       input.Price,
		UseStock:    input.UseStock,
		Stock:       input.Stock,
		Category:    input.Category,
		Brand:       input.Brand,
		ImageURL:    input.ImageURL,
	}
}

func matchesQuery(p Product, query Query) bool {
	if query.Category != "" && p.Category != query.Category {
		return false
	}
	if query.Brand != "" && p.Brand != query.Brand {
		return false
	}
	switch query.PublishEvent {
	case "":
	case "published":
		if p.Status != StatusActive {
			return false
		}
	case "paused":
		if p.Status != StatusPaused {
			return false
		}
	case "unpublished":
		if p.MeliID != "" {
			return false
		}
	default:
		if string(p.Status) != query.PublishEvent {
			return false
		}
	}
	switch query.StockFilter {
	case "":
	case "in_stock":
		if !p.UseStock || p.Stock <= 0 {
			return false
		}
	case "out_of_stock":
		if !p.UseStock || p.Stock > 0 {
			return false
		}
	case "untracked":
		if p.UseStock {
			return false
		}
	}
	if search := strings.ToLower(strings.TrimSpace(query.Search)); search != "" {
		return containsFold(p, search)
	}
	return true
}

func containsFold(p Product, loweredTerm string) bool {
	for _, field := range []string{p.Code, p.Name, p.Description, p.Brand, p.Category, p.MeliID} {
		if strings.Contains(strings.ToLower(field), loweredTerm) {
			return true
		}
	}
	return false
}

func sortProducts(products []Product, key string, dir SortDirection) {
	less := func(a, b Product) bool { return a.Code < b.Code }
	switch key {
	case "product_name":
		less = func(a, b Product) bool { return a.Name < b.Name }
	case "price":
		less = func(a, b Product) bool { return a.Price < b.Price }
	case "stock":
		less = func(a, b Product) bool { return a.Stock < b.Stock }
	case "status":
		less = func(a, b Product) bool { return a.Status < b.Status }
	}
	sort.SliceStable(products, func(i, j int) bool {
		if dir == SortDesc {
			return less(products[j], products[i])
		}
		return less(products[i], products[j])
	})
}
