package httpserver_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"almagro.dev/catalog-admin/internal/admin/catalog"
	"almagro.dev/catalog-admin/internal/admin/httpserver/middleware"
	"almagro.dev/catalog-admin/internal/admin/testutil"
)

func TestProductsRedirectsWithoutAuth(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(ts.URL + "/admin/products")
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin/login", resp.Header.Get("Location"))
}

func TestRootRedirectsToProducts(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth))

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/admin", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+auth.Token)

	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin/products", resp.Header.Get("Location"))
}

func TestProductsPageRendersForAuthenticatedUser(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/admin/products", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+auth.Token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	doc := testutil.ParseHTML(t, body)

	require.Contains(t, doc.Find("title").First().Text(), "Productos")
	require.Equal(t, 1, doc.Find("#products-table").Length(), "la tabla de productos debe renderizarse")
	require.Greater(t, doc.Find("tr[data-product-row]").Length(), 0, "el catálogo de fixtures debe listar productos")
	require.Equal(t, 1, doc.Find("[data-products-search]").Length())
	require.Equal(t, 1, doc.Find(`a[href="/admin/products"][aria-current="page"]`).Length(), "el menú debe marcar la sección activa")
}

func TestProductsTableFragmentPushesCanonicalURL(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/admin/products/table?q=bombilla&page=1", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	req.Header.Set("HX-Request", "true")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/admin/products?q=bombilla", resp.Header.Get("HX-Push-Url"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `id="products-table"`)
	require.NotContains(t, string(body), "<html", "el fragmento no debe incluir el layout completo")
}

func TestMeliPageRendersCounters(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/admin/meli", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+auth.Token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, 3, doc.Find("[data-meli-counter]").Length(), "deben renderizarse los contadores total, activas y pausadas")
}

func TestMeliTableFragmentPushesCanonicalURL(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/admin/meli/table?q=&status=active", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	req.Header.Set("HX-Request", "true")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "/admin/meli?status=active", resp.Header.Get("HX-Push-Url"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `id="meli-table"`)
	require.NotContains(t, string(body), "<html")
}

func TestLoginFlowIssuesTokenCookie(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(ts.URL + "/admin/login")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	csrf := cookieValue(resp.Cookies(), "csrf_token")
	require.NotEmpty(t, csrf, "la página de login debe emitir la cookie CSRF")

	form := url.Values{}
	form.Set("username", "operador")
	form.Set("password", "secreto")
	form.Set("csrf_token", csrf)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/admin/login", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range resp.Cookies() {
		req.AddCookie(c)
	}

	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin", resp.Header.Get("Location"))

	token := cookieValue(resp.Cookies(), "Authorization")
	require.True(t, strings.HasPrefix(token, "Bearer "), "el login debe fijar la cookie con el token bearer")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)

	resp, err := http.Get(ts.URL + "/admin/login")
	require.NoError(t, err)
	resp.Body.Close()

	csrf := cookieValue(resp.Cookies(), "csrf_token")
	require.NotEmpty(t, csrf)

	form := url.Values{}
	form.Set("username", "operador")
	form.Set("password", "incorrecta")
	form.Set("csrf_token", csrf)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/admin/login", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range resp.Cookies() {
		req.AddCookie(c)
	}

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "Usuario o contraseña incorrectos")
	require.Empty(t, cookieValue(resp.Cookies(), "Authorization"))
}

func TestSelectionSurvivesAcrossRequests(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth))
	client := newAuthedClient(t, auth.Token)

	doc := client.getDoc(t, ts.URL+"/admin/products")
	firstID, ok := doc.Find("tr[data-product-row]").First().Attr("data-product-row")
	require.True(t, ok)
	require.NotEmpty(t, firstID)

	csrf := client.cookie(t, ts.URL+"/admin/products", "csrf_token")
	require.NotEmpty(t, csrf)

	form := url.Values{}
	form.Set("id", firstID)
	form.Set("csrf_token", csrf)
	resp := client.postForm(t, ts.URL+"/admin/products/select", form, true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "none", resp.Header.Get("HX-Reswap"), "la selección no debe reemplazar el checkbox que la disparó")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `id="products-bulk"`)
	require.Contains(t, string(body), `hx-swap-oob="outerHTML"`)
	require.Contains(t, string(body), "1 seleccionados")

	doc = client.getDoc(t, ts.URL+"/admin/products")
	checkbox := doc.Find(fmt.Sprintf(`tr[data-product-row="%s"] input[type="checkbox"]`, firstID))
	require.Equal(t, 1, checkbox.Length())
	_, checked := checkbox.Attr("checked")
	require.True(t, checked, "la selección debe sobrevivir entre requests")
	require.Contains(t, doc.Find("#products-bulk").Text(), "1 seleccionados")
}

func TestSelectPageRefreshesTableAndBulkBar(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth))
	client := newAuthedClient(t, auth.Token)

	client.getDoc(t, ts.URL+"/admin/products")
	csrf := client.cookie(t, ts.URL+"/admin/products", "csrf_token")

	form := url.Values{}
	form.Set("page_query", "")
	form.Set("csrf_token", csrf)
	resp := client.postForm(t, ts.URL+"/admin/products/select/page", form, true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `id="products-table"`, "la respuesta debe traer la tabla re-renderizada")
	require.Contains(t, string(body), `id="products-bulk"`)
	require.Contains(t, string(body), `hx-swap-oob="outerHTML"`)
	require.Contains(t, string(body), "5 seleccionados")

	doc := testutil.ParseHTML(t, body)
	checked := doc.Find(`tr[data-product-row] input[type="checkbox"][checked]`).Length()
	require.Equal(t, 5, checked, "todos los checkboxes de la página deben quedar marcados")
}

func TestFilterFormKeepsSortAndPageSize(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth))
	client := newAuthedClient(t, auth.Token)

	doc := client.getDoc(t, ts.URL+"/admin/products?sort=price&dir=desc&pageSize=100")

	form := doc.Find("form[data-products-filters]")
	require.Equal(t, 1, form.Length())
	require.Equal(t, "price", form.Find(`input[type="hidden"][name="sort"]`).AttrOr("value", ""))
	require.Equal(t, "desc", form.Find(`input[type="hidden"][name="dir"]`).AttrOr("value", ""))

	pageSize := form.Find(`select[name="pageSize"]`)
	require.Equal(t, 1, pageSize.Length(), "el filtro debe ofrecer el tamaño de página")
	require.Equal(t, "100", pageSize.Find("option[selected]").AttrOr("value", ""))
}

func TestPublishRedirectKeepsListContextAndFlashesToast(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth))
	client := newAuthedClient(t, auth.Token)

	doc := client.getDoc(t, ts.URL+"/admin/products/2?q=bombilla&page=1")
	publishURL := doc.Find("form[data-detail-publish]").AttrOr("action", "")
	require.Equal(t, "/admin/products/2/publish?q=bombilla&page=1", publishURL)

	csrf := client.cookie(t, ts.URL+"/admin/products", "csrf_token")
	form := url.Values{}
	form.Set("csrf_token", csrf)
	form.Set("action", "publish")
	resp := client.postForm(t, ts.URL+publishURL, form, false)
	defer resp.Body.Close()

	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/admin/products/2?q=bombilla&page=1", resp.Header.Get("Location"),
		"la redirección debe conservar los filtros y la página de origen")

	doc = client.getDoc(t, ts.URL+resp.Header.Get("Location"))
	toast := doc.Find(`#toast-region [data-toast="success"]`)
	require.Equal(t, 1, toast.Length(), "la página siguiente debe mostrar el aviso de éxito")
	require.Contains(t, toast.Text(), "Producto publicado.")
	require.Equal(t, "/admin/products?q=bombilla&page=1", doc.Find("a[data-detail-back]").AttrOr("href", ""))

	doc = client.getDoc(t, ts.URL+resp.Header.Get("Location"))
	require.Equal(t, 0, doc.Find(`#toast-region [data-toast]`).Length(), "el aviso se consume en una sola carga")
}

func TestPublishFailureRendersToastForFragmentRequests(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	svc := &publishFailingService{
		Service: catalog.NewStaticService(),
		err:     &catalog.Error{StatusCode: http.StatusBadGateway, Detail: "MercadoLibre rechazó la operación."},
	}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth), testutil.WithCatalogService(svc))
	client := newAuthedClient(t, auth.Token)

	client.getDoc(t, ts.URL+"/admin/products")
	csrf := client.cookie(t, ts.URL+"/admin/products", "csrf_token")

	form := url.Values{}
	form.Set("csrf_token", csrf)
	form.Set("action", "publish")
	resp := client.postForm(t, ts.URL+"/admin/products/2/publish", form, true)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode, "htmx descarta respuestas no-2xx, el error viaja como toast")
	require.Equal(t, "none", resp.Header.Get("HX-Reswap"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `hx-swap-oob="beforeend"`)
	require.Contains(t, string(body), `data-toast="danger"`)
	require.Contains(t, string(body), "No se pudo cambiar el estado de publicación. MercadoLibre rechazó la operación.")
}

func TestCreateValidationErrorsRenderWithinShell(t *testing.T) {
	t.Parallel()

	auth := &tokenAuthenticator{Token: "test-token"}
	ts := testutil.NewServer(t, testutil.WithAuthenticator(auth))
	client := newAuthedClient(t, auth.Token)

	client.getDoc(t, ts.URL+"/admin/products/new")
	csrf := client.cookie(t, ts.URL+"/admin/products", "csrf_token")

	form := url.Values{}
	form.Set("csrf_token", csrf)
	form.Set("product_code", "")
	form.Set("product_name", "")
	form.Set("price", "")
	resp := client.postForm(t, ts.URL+"/admin/products", form, false)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "<html", "el reenvío nativo debe renderizar la página completa")

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, 1, doc.Find("#main-content").Length())
	require.Contains(t, doc.Find("[data-form-error]").Text(), "Revisá los campos marcados.")
	require.Equal(t, 1, doc.Find(`form[data-product-form] input[name="product_code"]`).Length())
}

// authedClient wraps an http.Client with a cookie jar and the bearer token
// every admin request needs.
type authedClient struct {
	client *http.Client
	token  string
}

func newAuthedClient(t *testing.T, token string) *authedClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &authedClient{
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		token: token,
	}
}

func (c *authedClient) getDoc(t *testing.T, target string) *goquery.Document {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return testutil.ParseHTML(t, body)
}

func (c *authedClient) postForm(t *testing.T, target string, form url.Values, htmx bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}

	resp, err := c.client.Do(req)
	require.NoError(t, err)
	return resp
}

func (c *authedClient) cookie(t *testing.T, rawURL, name string) string {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	for _, cookie := range c.client.Jar.Cookies(u) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

type publishFailingService struct {
	catalog.Service
	err error
}

func (s *publishFailingService) Publish(context.Context, string, string, catalog.PublishAction) (*catalog.Product, error) {
	return nil, s.err
}

func cookieValue(cookies []*http.Cookie, name string) string {
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

type tokenAuthenticator struct {
	Token string
}

func (t *tokenAuthenticator) Authenticate(_ *http.Request, token string) (*middleware.User, error) {
	if token != t.Token {
		return nil, middleware.ErrUnauthorized
	}
	return &middleware.User{
		UID:      "tester",
		Username: "tester",
		Token:    token,
		Roles:    []string{"admin"},
	}, nil
}
