package products

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"almagro.dev/catalog-admin/internal/admin/catalog"
)

func TestTablePayloadBuildsRowsAndPagination(t *testing.T) {
	t.Parallel()

	next := 3
	prev := 1
	result := &catalog.ListResult{
		Products: []catalog.Product{
			{ID: 10, Code: "ELEC-010", Name: "Ventilador", Price: 15999.9, UseStock: true, Stock: 4, Category: "Electrónica", Status: catalog.StatusActive, MeliID: "MLA123"},
			{ID: 11, Code: "HOG-001", Name: "Pava eléctrica", Price: 8200, UseStock: false, Status: catalog.StatusPaused},
		},
		Pagination: catalog.Pagination{Page: 2, PageSize: 50, TotalItems: 1100, NextPage: &next, PrevPage: &prev},
	}

	state := QueryState{Page: 2, PageSize: 50, SortKey: "price", SortDir: "desc", RawQuery: "page=2&sort=price&dir=desc"}
	selected := func(id string) bool { return id == "10" }

	table := TablePayload("/admin", state, result, selected, SelectionState{Count: 1, HasAny: true}, false)

	require.Len(t, table.Rows, 2)
	require.Equal(t, "/admin/products/10", table.Rows[0].URL)
	require.True(t, table.Rows[0].Selected)
	require.False(t, table.Rows[1].Selected)
	require.Equal(t, "$ 16.000", table.Rows[0].Price)
	require.Equal(t, "4", table.Rows[0].StockLabel)
	require.Equal(t, "—", table.Rows[1].StockLabel, "untracked products hide the stock count")
	require.Equal(t, "Publicado", table.Rows[0].StatusLabel)
	require.Equal(t, "Pausado", table.Rows[1].StatusLabel)

	require.False(t, table.Pagination.TotalExact)
	require.NotNil(t, table.Pagination.Next)
	require.Equal(t, 3, *table.Pagination.Next)
	require.NotNil(t, table.Pagination.Prev)
}

func TestTablePayloadDegradedKeepsSurface(t *testing.T) {
	t.Parallel()

	table := TablePayload("/admin", QueryState{Page: 1, PageSize: 50}, nil, nil, SelectionState{}, true)

	require.True(t, table.Degraded)
	require.Empty(t, table.Rows)
	require.Empty(t, table.EmptyMessage, "degraded tables must not claim the catalog is empty")
}

func TestStatusLabelCoversLifecycle(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Publicado", StatusLabel(catalog.StatusActive))
	require.Equal(t, "Pausado", StatusLabel(catalog.StatusPaused))
	require.Equal(t, "En revisión", StatusLabel(catalog.StatusUnderReview))
	require.Equal(t, "Sin publicar", StatusLabel(""))
}

func TestDetailPayloadTogglesPublishAction(t *testing.T) {
	t.Parallel()

	active := DetailPayload("/admin", catalog.Product{ID: 7, Status: catalog.StatusActive}, nil, false, "5", "9", "page=2", "tok")
	require.Equal(t, "pause", active.PublishAction)
	require.Equal(t, "Pausar", active.PublishLabel)
	require.Equal(t, "/admin/products/5?page=2", active.PrevURL, "neighbor links keep the list context")
	require.Equal(t, "/admin/products/9?page=2", active.NextURL)
	require.Equal(t, "/admin/products?page=2", active.BackURL)
	require.Equal(t, "/admin/products/7/publish?page=2", active.PublishURL, "action posts carry the list context for the redirect back")
	require.Equal(t, "/admin/products/7/notify?page=2", active.NotifyURL)
	require.Equal(t, "/admin/products/7/drive?page=2", active.DriveURL)

	draft := DetailPayload("/admin", catalog.Product{ID: 7}, nil, false, "", "", "", "tok")
	require.Equal(t, "publish", draft.PublishAction)
	require.Empty(t, draft.PrevURL)
	require.Empty(t, draft.NextURL)
	require.Equal(t, "/admin/products/7/publish", draft.PublishURL)
}

func TestTableRenderingMarksSelectionAndSort(t *testing.T) {
	t.Parallel()

	result := &catalog.ListResult{
		Products: []catalog.Product{
			{ID: 10, Code: "ELEC-010", Name: "Ventilador", Price: 100, Status: catalog.StatusActive},
		},
		Pagination: catalog.BuildPagination(1, 50, 1),
	}
	state := QueryState{Page: 1, PageSize: 50, SortKey: "product_code", SortDir: "asc", RawQuery: "q=venti"}
	table := TablePayload("/admin", state, result, func(string) bool { return true }, SelectionState{}, false)

	var buf bytes.Buffer
	require.NoError(t, Table(table).Render(context.Background(), &buf))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	checkbox := doc.Find(`tr[data-product-row="10"] input[type="checkbox"]`)
	require.Equal(t, 1, checkbox.Length())
	_, checked := checkbox.Attr("checked")
	require.True(t, checked, "selected ids render checked across swaps")

	sortLink := doc.Find(`a[data-sort-key="product_code"]`)
	require.Equal(t, 1, sortLink.Length())
	href := sortLink.AttrOr("href", "")
	require.Contains(t, href, "dir=desc", "active ascending sort offers the inverse direction")
	require.Contains(t, href, "page=1", "sorting resets to the first page")
	require.Contains(t, href, "q=venti", "existing filters survive sorting")

	require.Equal(t, 0, doc.Find("[data-page-next]").Length(), "short pages disable forward navigation")
}
