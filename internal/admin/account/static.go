package account

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// StaticService is an in-memory Service for tests and local development.
type StaticService struct {
	mu       sync.Mutex
	user     User
	password string
	token    string
	uploads  int
}

// NewStaticService seeds a fixture operator account.
func NewStaticService() *StaticService {
	return &StaticService{
		user: User{
			ID:        1,
			Username:  "operador",
			Role:      "admin",
			ThemePref: "light",
		},
		password: "secreto",
		token:    "static-token",
	}
}

// Login accepts the seeded credentials and returns the fixture token.
func (s *StaticService) Login(ctx context.Context, username, password string) (*Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(username) != s.user.Username || password != s.password {
		return nil, ErrBadCredentials
	}
	return &Token{AccessToken: s.token, TokenType: "bearer"}, nil
}

// CurrentUser accepts the fixture token only.
func (s *StaticService) CurrentUser(ctx context.Context, token string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		return nil, ErrUnauthorized
	}
	copied := s.user
	return &copied, nil
}

// UpdateProfile applies the non-nil fields to the fixture account.
func (s *StaticService) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		return nil, ErrUnauthorized
	}
	if update.Username != nil && strings.TrimSpace(*update.Username) != "" {
		s.user.Username = strings.TrimSpace(*update.Username)
	}
	if update.Password != nil && *update.Password != "" {
		s.password = *update.Password
	}
	if update.ThemePref != nil {
		s.user.ThemePref = *update.ThemePref
	}
	copied := s.user
	return &copied, nil
}

// UploadLogo stores a fake asset URL for the given kind.
func (s *StaticService) UploadLogo(ctx context.Context, token string, kind LogoKind, filename string, content io.Reader) (*LogoUploadResult, error) {
	if _, err := io.Copy(io.Discard, content); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		return nil, ErrUnauthorized
	}

	s.uploads++
	logoURL := fmt.Sprintf("https://cdn.example.com/branding/%s-%d.png", kind, s.uploads)
	switch kind {
	case LogoLight:
		s.user.LogoLightURL = logoURL
	case LogoDark:
		s.user.LogoDarkURL = logoURL
	case LogoFavicon:
		s.user.FaviconURL = logoURL
	default:
		s.user.LogoURL = logoURL
	}
	return &LogoUploadResult{Detail: "Logo actualizado", LogoURL: logoURL}, nil
}

// Settings returns the fixture branding.
func (s *StaticService) Settings(ctx context.Context, token string) (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.token {
		return nil, ErrUnauthorized
	}
	return s.snapshot(), nil
}

// PublicSettings returns the fixture branding without authentication.
func (s *StaticService) PublicSettings(ctx context.Context) (*Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// snapshot must be called with the mutex held.
func (s *StaticService) snapshot() *Settings {
	return &Settings{
		LogoURL:      s.user.LogoURL,
		LogoLightURL: s.user.LogoLightURL,
		LogoDarkURL:  s.user.LogoDarkURL,
		FaviconURL:   s.user.FaviconURL,
	}
}
