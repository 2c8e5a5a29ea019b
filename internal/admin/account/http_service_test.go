package account_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"almagro.dev/catalog-admin/internal/admin/account"
)

func TestHTTPServiceLogin(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/token", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())

		if r.PostFormValue("username") != "operador" || r.PostFormValue("password") != "secreto" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Incorrect username or password"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(account.Token{AccessToken: "tok-abc", TokenType: "bearer"})
	}))
	t.Cleanup(ts.Close)

	svc, err := account.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	token, err := svc.Login(context.Background(), "operador", "secreto")
	require.NoError(t, err)
	require.Equal(t, "tok-abc", token.AccessToken)

	_, err = svc.Login(context.Background(), "operador", "mal")
	require.ErrorIs(t, err, account.ErrBadCredentials)
}

func TestHTTPServiceCurrentUser(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer tok-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(account.User{ID: 9, Username: "operador", Role: "admin", ThemePref: "dark"})
	}))
	t.Cleanup(ts.Close)

	svc, err := account.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	user, err := svc.CurrentUser(context.Background(), "tok-abc")
	require.NoError(t, err)
	require.Equal(t, "operador", user.Username)
	require.Equal(t, "dark", user.ThemePref)

	_, err = svc.CurrentUser(context.Background(), "expired")
	require.ErrorIs(t, err, account.ErrUnauthorized)
}

func TestHTTPServiceUpdateProfileSendsOnlySetFields(t *testing.T) {
	t.Parallel()

	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/me", r.URL.Path)
		require.Equal(t, http.MethodPatch, r.Method)
		defer r.Body.Close()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(account.User{ID: 1, Username: "operador", ThemePref: "dark"})
	}))
	t.Cleanup(ts.Close)

	svc, err := account.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	theme := "dark"
	user, err := svc.UpdateProfile(context.Background(), "tok", account.ProfileUpdate{ThemePref: &theme})
	require.NoError(t, err)
	require.Equal(t, "dark", user.ThemePref)

	require.Equal(t, map[string]any{"theme_pref": "dark"}, body)
}

func TestHTTPServiceUploadLogo(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload-logo", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "favicon", r.FormValue("logo_type"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "favicon.ico", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(account.LogoUploadResult{Detail: "ok", LogoURL: "https://cdn.example.com/favicon.ico"})
	}))
	t.Cleanup(ts.Close)

	svc, err := account.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	result, err := svc.UploadLogo(context.Background(), "tok", account.LogoFavicon, "favicon.ico", strings.NewReader("icon-bytes"))
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/favicon.ico", result.LogoURL)
}

func TestHTTPServicePublicSettings(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/public-settings", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(account.Settings{LogoLightURL: "https://cdn.example.com/logo.png"})
	}))
	t.Cleanup(ts.Close)

	svc, err := account.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	settings, err := svc.PublicSettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/logo.png", settings.LogoLightURL)
}
