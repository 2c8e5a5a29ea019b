package testutil

import (
	"net/http/httptest"
	"testing"

	"almagro.dev/catalog-admin/internal/admin/account"
	"almagro.dev/catalog-admin/internal/admin/catalog"
	"almagro.dev/catalog-admin/internal/admin/httpserver"
	"almagro.dev/catalog-admin/internal/admin/httpserver/middleware"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithAuthenticator overrides the authenticator used by the admin server.
func WithAuthenticator(auth middleware.Authenticator) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Authenticator = auth
	}
}

// WithBasePath sets a custom base path for the admin routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BasePath = path
	}
}

// WithCatalogService wires a custom catalog service implementation.
func WithCatalogService(service catalog.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.CatalogService = service
	}
}

// WithAccountService wires a custom account service implementation.
func WithAccountService(service account.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.AccountService = service
	}
}

// WithEnvironment labels the server with an environment badge.
func WithEnvironment(env string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Environment = env
	}
}

// NewServer constructs an httptest server running the admin HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := httpserver.Config{
		Address:        ":0",
		BasePath:       "/admin",
		LoginPath:      "",
		Environment:    "Development",
		CSRFCookieName: "csrf_token",
		CSRFHeaderName: "X-CSRF-Token",
		Authenticator:  middleware.DefaultAuthenticator(),
		SessionHashKey: []byte("0123456789abcdef0123456789abcdef"),
		CatalogService: catalog.NewStaticService(),
		AccountService: account.NewStaticService(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	srv := httpserver.New(cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}
