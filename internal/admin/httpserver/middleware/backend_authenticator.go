package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrTokenExpired is returned when the backend reports an expired token.
var ErrTokenExpired = errors.New("token expired")

// Identity is the backend's view of the token holder.
type Identity struct {
	ID       string
	Username string
	Role     string
}

// IdentityResolver resolves a bearer token into an Identity by asking the
// backend, typically via its current-user endpoint.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}

// BackendAuthenticator validates backend-issued bearer tokens and maps the
// resolved identity onto a User.
type BackendAuthenticator struct {
	resolver IdentityResolver
}

// NewBackendAuthenticator constructs an Authenticator backed by the provided resolver.
func NewBackendAuthenticator(resolver IdentityResolver) *BackendAuthenticator {
	if resolver == nil {
		panic("identity resolver is required")
	}
	return &BackendAuthenticator{resolver: resolver}
}

// Authenticate resolves the supplied token against the backend and builds a User.
func (a *BackendAuthenticator) Authenticate(r *http.Request, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, NewAuthError(ReasonMissingToken, ErrUnauthorized)
	}

	identity, err := a.resolver.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, NewAuthError(ReasonTokenExpired, err)
		}
		return nil, NewAuthError(ReasonTokenInvalid, err)
	}
	if identity == nil {
		return nil, NewAuthError(ReasonTokenInvalid, ErrUnauthorized)
	}

	var roles []string
	if role := strings.TrimSpace(identity.Role); role != "" {
		roles = []string{strings.ToLower(role)}
	}

	uid := strings.TrimSpace(identity.ID)
	if uid == "" {
		uid = strings.TrimSpace(identity.Username)
	}

	return &User{
		UID:      uid,
		Username: identity.Username,
		Roles:    roles,
		Token:    token,
	}, nil
}
