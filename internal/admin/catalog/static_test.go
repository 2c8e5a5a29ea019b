package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticServiceListFiltersAndSorts(t *testing.T) {
	t.Parallel()
	svc := NewStaticService()

	result, err := svc.List(context.Background(), "tok", Query{Category: "Electrónica", SortKey: "price", SortDir: SortDesc})
	require.NoError(t, err)
	require.Len(t, result.Products, 2)
	require.Equal(t, "ELEC-011", result.Products[0].Code)
	require.Equal(t, "ELEC-010", result.Products[1].Code)
	require.True(t, result.Pagination.TotalExact)
	require.Equal(t, 2, result.Pagination.TotalItems)
	require.Nil(t, result.Pagination.NextPage)
}

func TestStaticServiceListSearch(t *testing.T) {
	t.Parallel()
	svc := NewStaticService()

	result, err := svc.List(context.Background(), "tok", Query{Search: "bombilla"})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	require.Equal(t, "MATE-002", result.Products[0].Code)
}

func TestStaticServiceListStockFilter(t *testing.T) {
	t.Parallel()
	svc := NewStaticService()

	out, err := svc.List(context.Background(), "tok", Query{StockFilter: "out_of_stock"})
	require.NoError(t, err)
	require.Len(t, out.Products, 1)
	require.Equal(t, "MATE-002", out.Products[0].Code)

	untracked, err := svc.List(context.Background(), "tok", Query{StockFilter: "untracked"})
	require.NoError(t, err)
	require.Len(t, untracked.Products, 1)
	require.Equal(t, "ELEC-011", untracked.Products[0].Code)
}

func TestStaticServiceCreateNormalizesStock(t *testing.T) {
	t.Parallel()
	svc := NewStaticService()

	product, err := svc.Create(context.Background(), "tok", ProductInput{
		Code:     "NEW-001",
		Name:     "  Pava eléctrica  ",
		Price:    27999,
		UseStock: false,
		Stock:    15,
	})
	require.NoError(t, err)
	require.Equal(t, "Pava eléctrica", product.Name)
	require.Zero(t, product.Stock, "stock must reset when tracking is off")

	_, err = svc.Create(context.Background(), "tok", ProductInput{Code: "NEW-001", Name: "dup", Price: 1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestStaticServiceUpdateKeepsImmutableFields(t *testing.T) {
	t.Parallel()
	svc := NewStaticService()

	updated, err := svc.Update(context.Background(), "tok", "1", ProductInput{
		Code:     "HACKED",
		Name:     "Mate imperial premium",
		Price:    19999,
		UseStock: true,
		Stock:    10,
	})
	require.NoError(t, err)
	require.Equal(t, "MATE-001", updated.Code, "code is immutable after creation")
	require.Equal(t, "Mate imperial premium", updated.Name)
	require.Equal(t, "MLA901", updated.MeliID)
	require.Equal(t, StatusActive, updated.Status)
}

func TestStaticServicePatchDriveURL(t *testing.T) {
	t.Parallel()
	svc := NewStaticService()

	updated, err := svc.Patch(context.Background(), "tok", "2", map[string]any{
		"drive_url": "https://drive.example.com/folders/mate-002",
	})
	require.NoError(t, err)
	require.Equal(t, "https://drive.example.com/folders/mate-002", updated.DriveURL)

	fetched, err := svc.Get(context.Background(), "tok", "2")
	require.NoError(t, err)
	require.Equal(t, updated.DriveURL, fetched.DriveURL)
}

func TestStaticServicePublishLifecycle(t *testing.T) {
	t.Parallel()
	svc := NewStaticService()

	published, err := svc.Publish(context.Background(), "tok", "2", ActionPublish)
	require.NoError(t, err)
	require.Equal(t, StatusActive, published.Status)
	require.Empty(t, published.Reason)

	paused, err := svc.Publish(context.Background(), "tok", "2", ActionPause)
	require.NoError(t, err)
	require.Equal(t, StatusPaused, paused.Status)

	_, err = svc.Publish(context.Background(), "tok", "999", ActionPublish)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStaticServiceBulkPublishSettlesAll(t *testing.T) {
	t.Parallel()
	svc := NewStaticService()

	result, err := svc.BulkPublish(context.Background(), "tok", []string{"2", "999", "4"}, ActionPublish)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 3)
	require.Equal(t, 2, result.Succeeded())
	require.Equal(t, 1, result.Failed())

	p2, err := svc.Get(context.Background(), "tok", "2")
	require.NoError(t, err)
	require.Equal(t, StatusActive, p2.Status)
	p4, err := svc.Get(context.Background(), "tok", "4")
	require.NoError(t, err)
	require.Equal(t, StatusActive, p4.Status)
}

func TestStaticServiceUploadAssignsDriveURL(t *testing.T) {
	t.Parallel()
	svc := NewStaticService()

	result, err := svc.Upload(context.Background(), "tok", "4", "foto.jpg", strings.NewReader("bytes"))
	require.NoError(t, err)
	require.NotEmpty(t, result.FileID)
	require.NotEmpty(t, result.DriveURL)

	files, err := svc.Files(context.Background(), "tok", "4")
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "foto.jpg", files[0].Name)
}

func TestStaticServiceMeliCounts(t *testing.T) {
	t.Parallel()
	svc := NewStaticService()

	result, err := svc.Meli(context.Background(), "tok", MeliQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, result.ActiveCount)
	require.Equal(t, 1, result.PausedCount)
	require.Len(t, result.Products, 4, "only products with a marketplace id appear")

	paused, err := svc.Meli(context.Background(), "tok", MeliQuery{Status: StatusPaused})
	require.NoError(t, err)
	require.Len(t, paused.Products, 1)
	require.Equal(t, "MATE-002", paused.Products[0].Code)
}

func TestStaticServiceCategoriesAndBrands(t *testing.T) {
	t.Parallel()
	svc := NewStaticService()

	categories, err := svc.Categories(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, []string{"Electrónica", "Hogar", "Repuestos"}, categories)

	brands, err := svc.Brands(context.Background(), "tok")
	require.NoError(t, err)
	require.Equal(t, []string{"Andina", "Pampa", "Voltix"}, brands)
}

func TestQueryValuesDefaults(t *testing.T) {
	t.Parallel()

	values := Query{}.Values()
	require.Equal(t, "0", values.Get("skip"))
	require.Equal(t, "50", values.Get("limit"))
	require.Equal(t, "product_code", values.Get("sort_by"))
	require.Equal(t, "asc", values.Get("sort_order"))
	require.False(t, values.Has("q"))
	require.False(t, values.Has("category"))

	values = Query{Page: 4, PageSize: 20, Search: " mate "}.Values()
	require.Equal(t, "60", values.Get("skip"))
	require.Equal(t, "20", values.Get("limit"))
	require.Equal(t, "mate", values.Get("q"))
}
