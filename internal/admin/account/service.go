package account

import (
	"context"
	"errors"
	"io"
)

// LogoKind discriminates branding uploads.
type LogoKind string

const (
	LogoLight   LogoKind = "light"
	LogoDark    LogoKind = "dark"
	LogoFavicon LogoKind = "favicon"
)

var (
	// ErrBadCredentials indicates the backend rejected the username/password pair.
	ErrBadCredentials = errors.New("account: bad credentials")
	// ErrUnauthorized indicates the bearer token was rejected.
	ErrUnauthorized = errors.New("account: unauthorized")
)

// IsUnauthorized reports whether err means the token was rejected upstream.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// User is the backend's account record for the operator.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Role         string `json:"role,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
	LogoLightURL string `json:"logo_light_url,omitempty"`
	LogoDarkURL  string `json:"logo_dark_url,omitempty"`
	FaviconURL   string `json:"favicon_url,omitempty"`
	ThemePref    string `json:"theme_pref,omitempty"`
}

// Token is the backend's response to a successful login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// ProfileUpdate carries the editable account fields. Nil pointers leave the
// backend value untouched.
type ProfileUpdate struct {
	Username  *string `json:"username,omitempty"`
	Password  *string `json:"password,omitempty"`
	ThemePref *string `json:"theme_pref,omitempty"`
}

// LogoUploadResult is the backend's response to a branding upload.
type LogoUploadResult struct {
	Detail  string `json:"detail,omitempty"`
	LogoURL string `json:"logo_url"`
}

// Settings groups the branding URLs served to authenticated pages.
type Settings struct {
	LogoURL      string `json:"logo_url,omitempty"`
	LogoLightURL string `json:"logo_light_url,omitempty"`
	LogoDarkURL  string `json:"logo_dark_url,omitempty"`
	FaviconURL   string `json:"favicon_url,omitempty"`
}

// Service exposes the backend's account and branding endpoints.
type Service interface {
	Login(ctx context.Context, username, password string) (*Token, error)
	CurrentUser(ctx context.Context, token string) (*User, error)
	UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*User, error)
	UploadLogo(ctx context.Context, token string, kind LogoKind, filename string, content io.Reader) (*LogoUploadResult, error)
	Settings(ctx context.Context, token string) (*Settings, error)
	PublicSettings(ctx context.Context) (*Settings, error)
}
