package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"almagro.dev/catalog-admin/internal/admin/catalog"
)

func TestHTTPServiceListSerializesQuery(t *testing.T) {
	t.Parallel()

	var receivedAuth string
	var receivedQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products/", r.URL.Path)
		require.Equal(t, http.MethodGet, r.Method)
		receivedAuth = r.Header.Get("Authorization")
		receivedQuery = map[string]string{}
		for key := range r.URL.Query() {
			receivedQuery[key] = r.URL.Query().Get(key)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]catalog.Product{
			{ID: 7, Code: "MATE-001", Name: "Mate imperial", Price: 18500},
		})
	}))
	t.Cleanup(ts.Close)

	svc, err := catalog.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	result, err := svc.List(context.Background(), "test-token", catalog.Query{
		Page:         3,
		PageSize:     25,
		Search:       "mate",
		Category:     "Hogar",
		PublishEvent: "published",
		SortKey:      "price",
		SortDir:      catalog.SortDesc,
	})
	require.NoError(t, err)
	require.Equal(t, "Bearer test-token", receivedAuth)

	require.Equal(t, "50", receivedQuery["skip"])
	require.Equal(t, "25", receivedQuery["limit"])
	require.Equal(t, "mate", receivedQuery["q"])
	require.Equal(t, "Hogar", receivedQuery["category"])
	require.Equal(t, "published", receivedQuery["publish_event"])
	require.Equal(t, "price", receivedQuery["sort_by"])
	require.Equal(t, "desc", receivedQuery["sort_order"])
	_, hasBrand := receivedQuery["brand"]
	require.False(t, hasBrand, "unset filters must not be serialized")
	_, hasStock := receivedQuery["stock_filter"]
	require.False(t, hasStock, "unset filters must not be serialized")

	require.Len(t, result.Products, 1)
	require.Equal(t, int64(7), result.Products[0].ID)
}

func TestHTTPServiceListPaginationHeuristic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		page      int
		pageSize  int
		returned  int
		wantTotal int
		wantExact bool
		wantNext  bool
	}{
		{name: "short page pins exact total", page: 2, pageSize: 10, returned: 4, wantTotal: 14, wantExact: true, wantNext: false},
		{name: "full page overcounts to keep next enabled", page: 2, pageSize: 10, returned: 10, wantTotal: 1010, wantExact: false, wantNext: true},
		{name: "empty tail page", page: 3, pageSize: 10, returned: 0, wantTotal: 20, wantExact: true, wantNext: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				products := make([]catalog.Product, tc.returned)
				for i := range products {
					products[i] = catalog.Product{ID: int64(i + 1), Code: "P", Name: "p"}
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(products)
			}))
			t.Cleanup(ts.Close)

			svc, err := catalog.NewHTTPService(ts.URL, ts.Client())
			require.NoError(t, err)

			result, err := svc.List(context.Background(), "tok", catalog.Query{Page: tc.page, PageSize: tc.pageSize})
			require.NoError(t, err)
			require.Equal(t, tc.wantTotal, result.Pagination.TotalItems)
			require.Equal(t, tc.wantExact, result.Pagination.TotalExact)
			if tc.wantNext {
				require.NotNil(t, result.Pagination.NextPage)
				require.Equal(t, tc.page+1, *result.Pagination.NextPage)
			} else {
				require.Nil(t, result.Pagination.NextPage)
			}
			if tc.page > 1 {
				require.NotNil(t, result.Pagination.PrevPage)
				require.Equal(t, tc.page-1, *result.Pagination.PrevPage)
			}
		})
	}
}

func TestHTTPServiceListEnvelopeResponse(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items":[{"id":1,"product_code":"A","product_name":"a"}],"total":41}`))
	}))
	t.Cleanup(ts.Close)

	svc, err := catalog.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	result, err := svc.List(context.Background(), "tok", catalog.Query{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, 41, result.Pagination.TotalItems)
	require.True(t, result.Pagination.TotalExact)
	require.NotNil(t, result.Pagination.NextPage)
}

func TestHTTPServicePublishBody(t *testing.T) {
	t.Parallel()

	var body map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products/42/publish", r.URL.Path)
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		defer r.Body.Close()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(catalog.Product{ID: 42, Code: "P-42", Name: "p", Status: catalog.StatusActive})
	}))
	t.Cleanup(ts.Close)

	svc, err := catalog.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	product, err := svc.Publish(context.Background(), "tok", "42", catalog.ActionPublish)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"action": "publish"}, body)
	require.Equal(t, catalog.StatusActive, product.Status)
}

func TestHTTPServiceBulkPublishSettlesAll(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	seen := map[string]int{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Path]++
		mu.Unlock()

		if strings.Contains(r.URL.Path, "/9/") {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"detail":"listing under review"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(catalog.Product{ID: 1, Code: "P", Name: "p", Status: catalog.StatusActive})
	}))
	t.Cleanup(ts.Close)

	svc, err := catalog.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	result, err := svc.BulkPublish(context.Background(), "tok", []string{"3", "9", "15"}, catalog.ActionPublish)
	require.NoError(t, err, "bulk operation must settle instead of failing")
	require.Len(t, result.Outcomes, 3)
	require.Equal(t, 2, result.Succeeded())
	require.Equal(t, 1, result.Failed())

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, seen["/api/products/3/publish"])
	require.Equal(t, 1, seen["/api/products/9/publish"])
	require.Equal(t, 1, seen["/api/products/15/publish"])
}

func TestHTTPServiceUploadMultipart(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products/5/upload", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "frente.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(catalog.UploadResult{
			Detail:   "ok",
			FileID:   "f-1",
			DriveURL: "https://drive.example.com/folders/p5",
		})
	}))
	t.Cleanup(ts.Close)

	svc, err := catalog.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	result, err := svc.Upload(context.Background(), "tok", "5", "frente.jpg", strings.NewReader("fake-bytes"))
	require.NoError(t, err)
	require.Equal(t, "https://drive.example.com/folders/p5", result.DriveURL)
}

func TestHTTPServiceMeli(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products/meli", r.URL.Path)
		require.Equal(t, "cargador", r.URL.Query().Get("q"))
		require.Equal(t, "paused", r.URL.Query().Get("status"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"products":[{"id":3,"product_code":"ELEC-010","product_name":"Cargador","status":"paused"}],"active_count":4,"paused_count":2,"total":1}`))
	}))
	t.Cleanup(ts.Close)

	svc, err := catalog.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	result, err := svc.Meli(context.Background(), "tok", catalog.MeliQuery{Search: "cargador", Status: catalog.StatusPaused})
	require.NoError(t, err)
	require.Equal(t, 4, result.ActiveCount)
	require.Equal(t, 2, result.PausedCount)
	require.Len(t, result.Products, 1)
}

func TestHTTPServiceErrorDecoding(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/404"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Producto no encontrado"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
		}
	}))
	t.Cleanup(ts.Close)

	svc, err := catalog.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "tok", "404")
	require.ErrorIs(t, err, catalog.ErrNotFound)
	require.Equal(t, "Producto no encontrado", catalog.ErrorDetail(err))

	_, err = svc.Get(context.Background(), "tok", "1")
	require.True(t, catalog.IsUnauthorized(err))
}
