package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"almagro.dev/catalog-admin/internal/admin/account"
	"almagro.dev/catalog-admin/internal/admin/catalog"
	"almagro.dev/catalog-admin/internal/admin/httpserver"
	"almagro.dev/catalog-admin/internal/admin/httpserver/middleware"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("dotenv: %v", err)
	}

	catalogService, accountService := buildServices()

	cfg := httpserver.Config{
		Address:          getEnv("ADMIN_HTTP_ADDR", ":8080"),
		BasePath:         getEnv("ADMIN_BASE_PATH", "/admin"),
		Environment:      getEnv("ADMIN_ENV", "development"),
		Authenticator:    buildAuthenticator(accountService),
		SessionHashKey:   []byte(os.Getenv("SESSION_HASH_KEY")),
		CatalogService:   catalogService,
		AccountService:   accountService,
		CSRFCookieSecure: getEnv("ADMIN_COOKIE_SECURE", "") == "true",
	}
	if len(cfg.SessionHashKey) == 0 {
		log.Fatal("SESSION_HASH_KEY is required")
	}

	srv := httpserver.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	log.Printf("admin server listening on %s (base path %s)", cfg.Address, cfg.BasePath)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		cancel()
		stop()
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func buildServices() (catalog.Service, account.Service) {
	apiURL := os.Getenv("CATALOG_API_URL")
	if apiURL == "" {
		log.Printf("CATALOG_API_URL not set; using in-memory fixtures")
		return catalog.NewStaticService(), account.NewStaticService()
	}

	catalogService, err := catalog.NewHTTPService(apiURL, nil)
	if err != nil {
		log.Fatalf("catalog service: %v", err)
	}
	accountService, err := account.NewHTTPService(apiURL, nil)
	if err != nil {
		log.Fatalf("account service: %v", err)
	}
	return catalogService, accountService
}

func buildAuthenticator(accounts account.Service) middleware.Authenticator {
	return middleware.NewBackendAuthenticator(&accountResolver{accounts: accounts})
}

// accountResolver adapts the account service's current-user endpoint to the
// authenticator's resolver contract.
type accountResolver struct {
	accounts account.Service
}

func (r *accountResolver) Resolve(ctx context.Context, token string) (*middleware.Identity, error) {
	user, err := r.accounts.CurrentUser(ctx, token)
	if err != nil {
		if errors.Is(err, account.ErrUnauthorized) {
			return nil, middleware.ErrUnauthorized
		}
		return nil, err
	}
	return &middleware.Identity{
		ID:       strconv.FormatInt(user.ID, 10),
		Username: user.Username,
		Role:     user.Role,
	}, nil
}
