package service

// Request authentication: credential extraction, verification dispatch and
// the per-request AuthInfo lifecycle. Verification never fails a request by
// itself; a credential that does not verify leaves the request
// unauthenticated and enforcement happens during authorization.

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/contentops/admin-gateway/internal/adapters/idp"
	"github.com/contentops/admin-gateway/internal/domain/auth"
	"github.com/contentops/admin-gateway/internal/ports"
)

// AuthCookieName is the session cookie carrying an admin API token.
const AuthCookieName = "auth_token"

// AuthTokenHeader is the header alternative to the session cookie.
const AuthTokenHeader = "x-auth-token"

// CredentialKind classifies a resolved credential by its transport scheme.
type CredentialKind string

const (
	// CredentialNone means no credential was presented.
	CredentialNone CredentialKind = ""
	// CredentialToken is an admin API token (cookie, x-auth-token header,
	// or "token" authorization scheme).
	CredentialToken CredentialKind = "token"
	// CredentialBearer is a bearer token from an identity provider.
	CredentialBearer CredentialKind = "bearer"
)

// Credential is a raw credential extracted from a request.
type Credential struct {
	Kind  CredentialKind
	Value string
	// FromCookie marks cookie-sourced credentials so verification failures
	// can flag the stale cookie for clearing.
	FromCookie bool
}

// ResolveCredential extracts the request credential. Precedence: the
// auth_token cookie, then the x-auth-token header, then the Authorization
// header split on its first space with the scheme lowercased. Unrecognized
// schemes resolve to no credential.
func ResolveCredential(r *http.Request) Credential {
	if c, err := r.Cookie(AuthCookieName); err == nil && c.Value != "" {
		return Credential{Kind: CredentialToken, Value: c.Value, FromCookie: true}
	}
	if v := r.Header.Get(AuthTokenHeader); v != "" {
		return Credential{Kind: CredentialToken, Value: v}
	}
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return Credential{}
	}
	scheme, value, ok := strings.Cut(authz, " ")
	if !ok {
		return Credential{}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Credential{}
	}
	switch CredentialKind(strings.ToLower(scheme)) {
	case CredentialBearer:
		return Credential{Kind: CredentialBearer, Value: value}
	case CredentialToken:
		return Credential{Kind: CredentialToken, Value: value}
	default:
		return Credential{}
	}
}

// AuthServiceOptions configures an AuthService.
type AuthServiceOptions struct {
	Registry *idp.Registry
	// Configs resolves project configuration for role mapping and API key
	// allow-lists.
	Configs ports.ConfigSource
	// Lists expands sheet references found in role configuration. Optional;
	// without it sheet references resolve to no users.
	Lists ports.ListResolver
	// Keys is the persisted API key directory consulted as a fallback when
	// project configuration does not list a key id. Optional.
	Keys ports.APIKeyDirectory
	// AdminClientID is the OAuth client id of the admin surface; ID tokens
	// with a different audience are ignored.
	AdminClientID string
	// GlobalAPIKeyIDs lists the jti values of wildcard-org tokens allowed
	// to act on specific projects.
	GlobalAPIKeyIDs []string
	Logger          *slog.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// AuthService verifies request credentials and resolves project roles.
type AuthService struct {
	registry        *idp.Registry
	configs         ports.ConfigSource
	lists           ports.ListResolver
	keys            ports.APIKeyDirectory
	adminClientID   string
	globalAPIKeyIDs map[string]struct{}
	logger          *slog.Logger
	now             func() time.Time
}

// NewAuthService constructs an AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	global := make(map[string]struct{}, len(opts.GlobalAPIKeyIDs))
	for _, id := range opts.GlobalAPIKeyIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			global[id] = struct{}{}
		}
	}
	return &AuthService{
		registry:        opts.Registry,
		configs:         opts.Configs,
		lists:           opts.Lists,
		keys:            opts.Keys,
		adminClientID:   opts.AdminClientID,
		globalAPIKeyIDs: global,
		logger:          logger,
		now:             now,
	}
}

// AuthRequest carries the inputs of an authentication attempt.
type AuthRequest struct {
	Credential Credential
	Org        string
	Site       string
}

// Authenticate verifies the request credential and returns the resulting
// AuthInfo. It never returns an error: a failed verification yields an
// unauthenticated AuthInfo with the failure reflected in its flags, and the
// failure itself is logged.
func (s *AuthService) Authenticate(ctx context.Context, req AuthRequest) *auth.AuthInfo {
	info := auth.NewAuthInfo()
	cred := req.Credential

	var err error
	switch cred.Kind {
	case CredentialBearer:
		err = s.authenticateBearer(ctx, info, cred.Value)
	case CredentialToken:
		err = s.authenticateAPIToken(ctx, info, req, cred.Value)
	default:
		return info
	}

	if err != nil {
		s.logger.InfoContext(ctx, "credential verification failed",
			"kind", string(cred.Kind), "org", req.Org, "site", req.Site, "error", err)
		if isExpired(err) {
			info.Expired = true
			info.LoginHint = peekLoginHint(cred.Value)
		}
		if cred.FromCookie {
			info.CookieInvalid = true
		}
	}
	return info
}
