package partials

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"almagro.dev/catalog-admin/internal/admin/httpserver/middleware"
	"almagro.dev/catalog-admin/internal/admin/navigation"
	"almagro.dev/catalog-admin/internal/admin/rbac"
)

func TestHasVisibleItemsRespectRoles(t *testing.T) {
	t.Parallel()

	// Viewers browse the catalog but cannot create products.
	ctx := middleware.ContextWithUser(context.Background(), &middleware.User{
		Roles: []string{string(rbac.RoleViewer)},
	})
	menu := navigation.BuildMenu("/admin")

	var catalogo navigation.MenuGroup
	var mercado navigation.MenuGroup
	for _, group := range menu {
		switch group.Key {
		case "catalogo":
			catalogo = group
		case "mercado":
			mercado = group
		}
	}

	require.NotEmpty(t, catalogo.Items, "catalog group must contain navigation items")
	require.True(t, hasVisibleItems(catalogo, ctx), "viewer role should see the catalog group")
	require.True(t, hasVisibleItems(mercado, ctx), "viewer role should see the marketplace group")
}

func TestVisibleItemsFiltersByCapability(t *testing.T) {
	t.Parallel()

	group := navigation.MenuGroup{
		Key:        "catalogo",
		Label:      "Catálogo",
		Capability: rbac.CapProductsList,
		Items: []navigation.MenuItem{
			{
				Key:         "products",
				Label:       "Productos",
				Capability:  rbac.CapProductsList,
				Href:        "/admin/products",
				Pattern:     "/admin/products",
				MatchPrefix: true,
			},
			{
				Key:        "product-new",
				Label:      "Nuevo producto",
				Capability: rbac.CapProductsWrite,
				Href:       "/admin/products/new",
				Pattern:    "/admin/products/new",
			},
		},
	}

	ctxViewer := middleware.ContextWithUser(context.Background(), &middleware.User{
		Roles: []string{string(rbac.RoleViewer)},
	})
	ctxOperator := middleware.ContextWithUser(context.Background(), &middleware.User{
		Roles: []string{string(rbac.RoleOperator)},
	})

	viewerItems := visibleItems(group, ctxViewer)
	require.Len(t, viewerItems, 1, "viewer should only see the product list")
	require.Equal(t, "products", viewerItems[0].Key)

	operatorItems := visibleItems(group, ctxOperator)
	require.Len(t, operatorItems, 2, "operator should see list and create entries")
}

func TestSidebarRenderingFiltersAndHighlights(t *testing.T) {
	t.Parallel()

	menu := navigation.BuildMenu("/admin")

	req := httptest.NewRequest(http.MethodGet, "/admin/products/123", nil)
	var ctx context.Context
	handler := middleware.RequestInfoMiddleware("/admin")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctx = r.Context()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	ctx = middleware.ContextWithUser(ctx, &middleware.User{
		Roles: []string{string(rbac.RoleViewer)},
	})

	var buf bytes.Buffer
	err := Sidebar(menu).Render(ctx, &buf)
	require.NoError(t, err)

	doc := parseHTML(t, buf.Bytes())

	// Viewer role cannot create products.
	require.Equal(t, 0, doc.Find(`a[href="/admin/products/new"]`).Length(), "create link must be hidden")

	productsLink := doc.Find(`a[href="/admin/products"]`)
	require.Equal(t, 1, productsLink.Length(), "products link should render")
	require.Equal(t, "page", productsLink.AttrOr("aria-current", ""), "active route highlights current page")
	require.Contains(t, productsLink.AttrOr("class", ""), "bg-slate-900", "active link should use highlighted class")
}

func parseHTML(t *testing.T, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	require.NoError(t, err)
	return doc
}
