package httpserver

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"almagro.dev/catalog-admin/internal/admin/account"
	"almagro.dev/catalog-admin/internal/admin/catalog"
	custommw "almagro.dev/catalog-admin/internal/admin/httpserver/middleware"
	"almagro.dev/catalog-admin/internal/admin/httpserver/ui"
	"almagro.dev/catalog-admin/internal/admin/rbac"
	appsession "almagro.dev/catalog-admin/internal/admin/session"
	"almagro.dev/catalog-admin/public"
)

// Config holds runtime options for the admin HTTP server.
type Config struct {
	Address     string
	BasePath    string
	LoginPath   string
	Environment string

	Authenticator  custommw.Authenticator
	SessionManager *appsession.Manager
	SessionHashKey []byte

	CatalogService catalog.Service
	AccountService account.Service

	CSRFCookieName   string
	CSRFCookiePath   string
	CSRFCookieSecure bool
	CSRFHeaderName   string
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) *http.Server {
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))

	basePath := normalizeBasePath(cfg.BasePath)
	loginPath := resolveLoginPath(basePath, cfg.LoginPath)

	staticContent, err := public.StaticFS()
	if err != nil {
		log.Fatalf("embed static: %v", err)
	}
	staticPrefix := basePath + "/static/"
	if basePath == "/" {
		staticPrefix = "/static/"
	}
	router.Handle(staticPrefix+"*", http.StripPrefix(staticPrefix, http.FileServer(http.FS(staticContent))))

	authenticator := cfg.Authenticator
	if authenticator == nil {
		authenticator = custommw.DefaultAuthenticator()
	}

	sessions := cfg.SessionManager
	if sessions == nil {
		hashKey := cfg.SessionHashKey
		if len(hashKey) == 0 {
			log.Fatalf("session: hash key is required")
		}
		sessions, err = appsession.NewManager(appsession.Config{
			HashKey:    hashKey,
			CookiePath: basePath,
		})
		if err != nil {
			log.Fatalf("session manager: %v", err)
		}
	}

	catalogService := cfg.CatalogService
	if catalogService == nil {
		catalogService = catalog.NewStaticService()
	}
	accountService := cfg.AccountService
	if accountService == nil {
		accountService = account.NewStaticService()
	}

	csrfCfg := custommw.CSRFConfig{
		CookieName: cfg.CSRFCookieName,
		CookiePath: firstNotEmpty(cfg.CSRFCookiePath, basePath),
		HeaderName: cfg.CSRFHeaderName,
		Secure:     cfg.CSRFCookieSecure,
	}

	mountAdminRoutes(router, basePath, routeOptions{
		Authenticator: authenticator,
		Sessions:      sessions,
		Catalog:       catalogService,
		Accounts:      accountService,
		LoginPath:     loginPath,
		Environment:   cfg.Environment,
		CSRF:          csrfCfg,
	})

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

type routeOptions struct {
	Authenticator custommw.Authenticator
	Sessions      *appsession.Manager
	Catalog       catalog.Service
	Accounts      account.Service
	LoginPath     string
	Environment   string
	CSRF          custommw.CSRFConfig
}

func mountAdminRoutes(router chi.Router, base string, opts routeOptions) {
	handlers := ui.NewHandlers(ui.Dependencies{
		CatalogService: opts.Catalog,
		AccountService: opts.Accounts,
		LoginPath:      opts.LoginPath,
	})
	auth := newAuthHandlers(opts.Accounts, base, opts.LoginPath)

	router.Route(base, func(r chi.Router) {
		r.Use(custommw.Environment(opts.Environment))
		r.Use(custommw.RequestInfoMiddleware(base))
		r.Use(custommw.HTMX())
		r.Use(custommw.NoStore())
		r.Use(custommw.Session(opts.Sessions))
		r.Use(custommw.CSRF(opts.CSRF))

		r.Get("/login", auth.LoginForm)
		r.Post("/login", auth.LoginSubmit)
		r.Post("/logout", auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(custommw.Auth(opts.Authenticator, opts.LoginPath))

			r.Get("/", redirectToProducts(base))

			r.Get("/products", handlers.ProductsPage)
			RegisterFragment(r, "/products/table", handlers.ProductsTable)
			r.Post("/products/select", handlers.ProductsSelect)
			r.Post("/products/select/page", handlers.ProductsSelectPage)
			r.Post("/products/select/clear", handlers.ProductsSelectClear)
			r.Get("/products/{id}", handlers.ProductDetail)

			r.With(custommw.RequireCapability(rbac.CapProductsWrite)).Get("/products/new", handlers.ProductNewForm)
			r.With(custommw.RequireCapability(rbac.CapProductsWrite)).Post("/products", handlers.ProductCreate)
			r.With(custommw.RequireCapability(rbac.CapProductsWrite)).Get("/products/{id}/edit", handlers.ProductEditForm)
			r.With(custommw.RequireCapability(rbac.CapProductsWrite)).Post("/products/{id}", handlers.ProductUpdate)
			r.With(custommw.RequireCapability(rbac.CapProductsPublish)).Post("/products/bulk/publish", handlers.ProductsBulkPublish)
			r.With(custommw.RequireCapability(rbac.CapProductsPublish)).Post("/products/{id}/publish", handlers.ProductPublish)
			r.With(custommw.RequireCapability(rbac.CapProductsPublish)).Post("/products/{id}/notify", handlers.ProductNotify)
			r.With(custommw.RequireCapability(rbac.CapProductsWrite)).Post("/products/{id}/drive", handlers.ProductDriveURL)
			r.With(custommw.RequireCapability(rbac.CapProductsDelete)).Post("/products/{id}/delete", handlers.ProductDelete)
			r.With(custommw.RequireCapability(rbac.CapFilesUpload)).Post("/products/{id}/upload", handlers.ProductUpload)

			r.With(custommw.RequireCapability(rbac.CapMeliView)).Get("/meli", handlers.MeliPage)
			RegisterFragment(r.With(custommw.RequireCapability(rbac.CapMeliView)), "/meli/table", handlers.MeliTable)

			r.Get("/settings", handlers.SettingsPage)
			r.Post("/settings/profile", handlers.SettingsProfile)
			r.Post("/settings/theme", handlers.SettingsTheme)
			r.With(custommw.RequireCapability(rbac.CapBrandingManage)).Post("/settings/logo", handlers.SettingsLogo)
		})
	})
}

func redirectToProducts(base string) http.HandlerFunc {
	target := base + "/products"
	if base == "/" {
		target = "/products"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	}
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/admin"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func resolveLoginPath(base string, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if base == "/" {
		return "/login"
	}
	return base + "/login"
}

func firstNotEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}
