package account

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPService implements Service backed by the backend's auth and settings endpoints.
type HTTPService struct {
	base   *url.URL
	client HTTPClient
}

// NewHTTPService constructs a Service that talks to the backend.
func NewHTTPService(baseURL string, client HTTPClient) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("account: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("account: parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPService{
		base:   parsed,
		client: client,
	}, nil
}

// Login exchanges form-encoded credentials for a bearer token.
func (s *HTTPService) Login(ctx context.Context, username, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", strings.TrimSpace(username))
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.resolve("/token"), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("account: build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s", ErrBadCredentials, s.detailFromResponse(resp))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, s.errorFromResponse(resp)
	}

	var payload Token
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("account: decode token: %w", err)
	}
	if payload.AccessToken == "" {
		return nil, errors.New("account: empty access token")
	}
	return &payload, nil
}

// CurrentUser resolves the bearer token into the operator's account record.
func (s *HTTPService) CurrentUser(ctx context.Context, token string) (*User, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/users/me", nil, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, s.detailFromResponse(resp))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, s.errorFromResponse(resp)
	}

	var payload User
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("account: decode user: %w", err)
	}
	return &payload, nil
}

// UpdateProfile patches the operator's account record.
func (s *HTTPService) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*User, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(update); err != nil {
		return nil, fmt.Errorf("account: encode profile update: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPatch, "/users/me", &buf, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, s.detailFromResponse(resp))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, s.errorFromResponse(resp)
	}

	var payload User
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("account: decode user: %w", err)
	}
	return &payload, nil
}

// UploadLogo sends a branding asset with its logo_type discriminator.
func (s *HTTPService) UploadLogo(ctx context.Context, token string, kind LogoKind, filename string, content io.Reader) (*LogoUploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("logo_type", string(kind)); err != nil {
		return nil, fmt.Errorf("account: build logo upload: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("account: build logo upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("account: read logo upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("account: finalize logo upload: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, "/upload-logo", &buf, token)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, s.detailFromResponse(resp))
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, s.errorFromResponse(resp)
	}

	var payload LogoUploadResult
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("account: decode logo upload: %w", err)
	}
	return &payload, nil
}

// Settings returns the authenticated branding settings.
func (s *HTTPService) Settings(ctx context.Context, token string) (*Settings, error) {
	return s.settings(ctx, "/settings", token)
}

// PublicSettings returns the branding shown before login.
func (s *HTTPService) PublicSettings(ctx context.Context) (*Settings, error) {
	return s.settings(ctx, "/public-settings", "")
}

func (s *HTTPService) settings(ctx context.Context, endpoint, token string) (*Settings, error) {
	req, err := s.newRequest(ctx, http.MethodGet, endpoint, nil, token)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, s.detailFromResponse(resp))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, s.errorFromResponse(resp)
	}

	var payload Settings
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("account: decode settings: %w", err)
	}
	return &payload, nil
}

func (s *HTTPService) do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("account: request failed: %w", err)
	}
	return resp, nil
}

func (s *HTTPService) newRequest(ctx context.Context, method, endpoint string, body io.Reader, token string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.resolve(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("account: build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (s *HTTPService) resolve(endpoint string) string {
	if endpoint == "" {
		return s.base.String()
	}
	trimmed := strings.TrimPrefix(endpoint, "/")
	ref, err := url.Parse(trimmed)
	if err != nil {
		ref = &url.URL{Path: trimmed}
	}
	return s.base.ResolveReference(ref).String()
}

func (s *HTTPService) detailFromResponse(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload struct {
		Detail string `json:"detail"`
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
			return payload.Detail
		}
		return strings.TrimSpace(string(body))
	}
	return http.StatusText(resp.StatusCode)
}

func (s *HTTPService) errorFromResponse(resp *http.Response) error {
	return fmt.Errorf("account: backend error (%d): %s", resp.StatusCode, s.detailFromResponse(resp))
}
