package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"golang.org/x/sync/errgroup"

	"github.com/contentops/admin-gateway/internal/adapters/idp"
	"github.com/contentops/admin-gateway/internal/domain/auth"
)

// errTokenExpired classifies verification failures caused by an elapsed
// token lifetime, so login flows can offer a re-login hint.
var errTokenExpired = errors.New("token expired")

func isExpired(err error) bool { return errors.Is(err, errTokenExpired) }

// expiryWarnThreshold is the remaining lifetime, in seconds, below which a
// still-valid token is logged as close to expiry.
const expiryWarnThreshold = 300

// Claims stripped from profiles before they are exposed to handlers.
var (
	idTokenInternalClaims = []string{"azp", "at_hash", "nonce", "aio", "c_hash"}
	accessTokenInternalClaims = []string{
		"id", "type", "as_id", "ctp", "pac", "rtid", "moi", "rtea", "user_id", "fg", "aa_id",
	}
	apiTokenInternalClaims = []string{"sub", "jti", "hlx_hash", "picture", "extensionId", "imsToken"}
)

const (
	// legacyRepoServiceClient is the pre-scoping repository service client;
	// its tokens get the backend scope and the develop role implicitly.
	legacyRepoServiceClient = "cm-repo-service"

	scopeBackendAll  = "aem.backend.all"
	scopeFrontendAll = "aem.frontend.all"
)

// peekAlgorithms are the signature algorithms accepted when parsing a token
// only to read unverified claims.
var peekAlgorithms = []jose.SignatureAlgorithm{
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.PS256, jose.PS384, jose.PS512,
	jose.HS256,
}

// peekAccessClient reads the unverified `as` claim, which names the
// authorization service that issued a platform access token. Empty when the
// credential is not a JWT or carries no such claim.
func peekAccessClient(raw string) string {
	tok, err := jwt.ParseSigned(raw, peekAlgorithms)
	if err != nil {
		return ""
	}
	var peek struct {
		AS string `json:"as"`
	}
	if err := tok.UnsafeClaimsWithoutVerification(&peek); err != nil {
		return ""
	}
	return peek.AS
}

// peekLoginHint reads the unverified email claim of an expired credential so
// the login flow can preselect the account.
func peekLoginHint(raw string) string {
	tok, err := jwt.ParseSigned(raw, peekAlgorithms)
	if err != nil {
		return ""
	}
	var peek struct {
		Email  string `json:"email"`
		UserID string `json:"user_id"`
	}
	if err := tok.UnsafeClaimsWithoutVerification(&peek); err != nil {
		return ""
	}
	if peek.Email != "" {
		return peek.Email
	}
	return peek.UserID
}

// authenticateBearer verifies a bearer credential. The issuing provider is
// detected from the token's `as` claim when present, falling back to the
// default bearer provider; platform providers verify under access-token
// rules, everything else as an OIDC ID token.
func (s *AuthService) authenticateBearer(ctx context.Context, info *auth.AuthInfo, raw string) error {
	provider := s.registry.DefaultBearer()
	if as := peekAccessClient(raw); as != "" {
		if p := s.registry.ForAccessClient(as); p != nil {
			provider = p
		}
	}

	if provider.IMS {
		claims, err := s.verifyAccessToken(ctx, provider, raw)
		if err != nil {
			return err
		}
		applyClaims(info, provider, claims)
		info.IMSToken = raw
		return nil
	}

	claims, err := s.verifyIDToken(ctx, provider, raw)
	if err != nil {
		return err
	}
	if s.adminClientID != "" && !containsString(claims.Audience, s.adminClientID) {
		return fmt.Errorf("audience %v does not include the admin client", claims.Audience)
	}
	applyClaims(info, provider, claims)
	return nil
}

func applyClaims(info *auth.AuthInfo, provider *idp.Descriptor, claims *auth.VerifiedClaims) {
	info.Authenticated = true
	info.Profile = claims.Profile
	info.IDP = provider.Name
	info.ExtensionID = claims.ExtensionID
}

// verifyIDToken verifies an OIDC ID token against the provider's key set.
// Issuer and expiry are checked here rather than by the library so tenant
// issuers and expired-token classification work.
func (s *AuthService) verifyIDToken(ctx context.Context, provider *idp.Descriptor, raw string) (*auth.VerifiedClaims, error) {
	ks := provider.KeySet()
	if ks == nil {
		return nil, fmt.Errorf("provider %q has no key set", provider.Name)
	}

	verifier := gooidc.NewVerifier(provider.Discovery.Issuer, ks, &gooidc.Config{
		SkipClientIDCheck: true,
		SkipIssuerCheck:   true,
		SkipExpiryCheck:   true,
		Now:               s.now,
	})
	idTok, err := verifier.Verify(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	if !provider.CheckIssuer(idTok.Issuer) {
		return nil, fmt.Errorf("issuer %q not accepted by provider %q", idTok.Issuer, provider.Name)
	}

	now := s.now()
	if !idTok.Expiry.After(now) {
		return nil, errTokenExpired
	}
	ttl := int64(idTok.Expiry.Sub(now) / time.Second)
	if ttl < expiryWarnThreshold {
		s.logger.WarnContext(ctx, "token close to expiry", "provider", provider.Name, "ttl", ttl)
	}

	var all map[string]any
	if err := idTok.Claims(&all); err != nil {
		return nil, fmt.Errorf("decode id token claims: %w", err)
	}

	return &auth.VerifiedClaims{
		Subject:           idTok.Subject,
		Email:             profileString(all, "email"),
		UserID:            profileString(all, "user_id"),
		PreferredUsername: profileString(all, "preferred_username"),
		Issuer:            idTok.Issuer,
		Audience:          idTok.Audience,
		Expiry:            idTok.Expiry,
		IssuedAt:          idTok.IssuedAt,
		TTL:               ttl,
		Roles:             profileStrings(all, "roles"),
		ExtensionID:       profileString(all, "extensionId"),
		Profile:           auth.StripClaims(all, idTokenInternalClaims...),
	}, nil
}

// verifyAccessToken verifies a platform access token. These are JWTs signed
// with the provider's keys but carry their lifetime as created_at/expires_in
// millisecond claims instead of exp.
func (s *AuthService) verifyAccessToken(ctx context.Context, provider *idp.Descriptor, raw string) (*auth.VerifiedClaims, error) {
	ks := provider.KeySet()
	if ks == nil {
		return nil, fmt.Errorf("provider %q has no key set", provider.Name)
	}
	payload, err := ks.VerifySignature(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("verify access token: %w", err)
	}
	var all map[string]any
	if err := json.Unmarshal(payload, &all); err != nil {
		return nil, fmt.Errorf("decode access token claims: %w", err)
	}

	if typ := profileString(all, "type"); typ != "access_token" {
		return nil, fmt.Errorf("unexpected token type %q", typ)
	}

	scope := profileString(all, "scope")
	var roles []string
	if profileString(all, "client_id") == legacyRepoServiceClient {
		if scope == "" {
			scope = scopeBackendAll
		} else {
			scope += "," + scopeBackendAll
		}
		roles = []string{auth.RoleDevelop}
	}
	if scope == "" {
		return nil, errors.New("access token carries no scope")
	}
	scopes := splitScopes(scope)
	if !containsString(scopes, scopeBackendAll) && !containsString(scopes, scopeFrontendAll) {
		return nil, fmt.Errorf("scope %q not accepted", scope)
	}

	createdAt, err := claimInt(all, "created_at")
	if err != nil {
		return nil, err
	}
	expiresIn, err := claimInt(all, "expires_in")
	if err != nil {
		return nil, err
	}
	now := s.now().UnixMilli()
	if createdAt > now {
		return nil, errors.New("access token created in the future")
	}
	ttl := (createdAt + expiresIn - now) / 1000
	if ttl <= 0 {
		return nil, errTokenExpired
	}
	if ttl < expiryWarnThreshold {
		s.logger.WarnContext(ctx, "token close to expiry", "provider", provider.Name, "ttl", ttl)
	}

	email := profileString(all, "user_id")
	defaultRole := ""
	if containsString(scopes, scopeBackendAll) {
		defaultRole = auth.RolePublish
	}

	profile := auth.StripClaims(all, accessTokenInternalClaims...)
	if email != "" {
		profile["email"] = email
	}
	if len(roles) > 0 {
		profile["roles"] = roles
	}
	if defaultRole != "" {
		profile["defaultRole"] = defaultRole
	}

	return &auth.VerifiedClaims{
		Subject:     email,
		Email:       email,
		UserID:      email,
		Issuer:      provider.Discovery.Issuer,
		Expiry:      time.UnixMilli(createdAt + expiresIn),
		IssuedAt:    time.UnixMilli(createdAt),
		TTL:         ttl,
		Roles:       roles,
		Scope:       scope,
		Scopes:      scopes,
		DefaultRole: defaultRole,
		Profile:     profile,
	}, nil
}

// authenticateAPIToken verifies an admin-issued HS256 API token and checks
// its subject and key id against the project being accessed.
func (s *AuthService) authenticateAPIToken(ctx context.Context, info *auth.AuthInfo, req AuthRequest, raw string) error {
	provider := s.registry.DefaultAPIToken()
	if provider == nil || len(provider.HMACSecret) == 0 {
		return errors.New("api token provider not configured")
	}

	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return fmt.Errorf("parse api token: %w", err)
	}
	var std jwt.Claims
	var all map[string]any
	if err := tok.Claims(provider.HMACSecret, &std, &all); err != nil {
		return fmt.Errorf("verify api token: %w", err)
	}

	now := s.now()
	if std.Expiry != nil && !std.Expiry.Time().After(now) {
		return errTokenExpired
	}
	if std.Issuer != "" && !provider.CheckIssuer(std.Issuer) {
		return fmt.Errorf("issuer %q not accepted", std.Issuer)
	}

	org, site, ok := strings.Cut(std.Subject, "/")
	if !ok || org == "" || site == "" {
		return fmt.Errorf("malformed token subject %q", std.Subject)
	}
	if req.Org != "" && org != "*" && !strings.EqualFold(org, req.Org) {
		return fmt.Errorf("token subject %q does not cover org %q", std.Subject, req.Org)
	}
	if req.Site != "" && site != "*" && !strings.EqualFold(site, req.Site) {
		return fmt.Errorf("token subject %q does not cover site %q", std.Subject, req.Site)
	}

	jti := std.ID
	switch {
	case org == "*":
		// Wildcard-org tokens acting on a concrete project must be on the
		// global allow-list.
		if req.Org != "" || req.Site != "" {
			if _, ok := s.globalAPIKeyIDs[jti]; !ok {
				return errors.New("wildcard token is not globally allowed")
			}
		}
	case jti != "":
		if err := s.checkAPIKeyID(ctx, org, site, jti); err != nil {
			return err
		}
	}

	info.Authenticated = true
	info.IDP = provider.Name
	info.ExtensionID = profileString(all, "extensionId")
	info.IMSToken = profileString(all, "imsToken")
	if jti == "" {
		// Only keys without a revocable id are safe to echo back for reuse.
		info.AuthToken = raw
	}
	info.Profile = auth.StripClaims(all, apiTokenInternalClaims...)
	return nil
}

// checkAPIKeyID accepts a key id listed in the site or org configuration, or
// present and active in the key directory. The two config documents are
// fetched in parallel; fetch failures only disqualify that document.
func (s *AuthService) checkAPIKeyID(ctx context.Context, org, site, jti string) error {
	if s.configs != nil {
		var siteListed, orgListed bool
		g, gctx := errgroup.WithContext(ctx)
		if site != "" && site != "*" {
			g.Go(func() error {
				cfg, err := s.configs.SiteConfig(gctx, org, site)
				if err != nil {
					s.logger.WarnContext(gctx, "site config fetch failed during key check",
						"org", org, "site", site, "error", err)
					return nil
				}
				siteListed = cfg != nil && containsString(cfg.AdminAPIKeyIDs(), jti)
				return nil
			})
		}
		g.Go(func() error {
			cfg, err := s.configs.OrgConfig(gctx, org)
			if err != nil {
				s.logger.WarnContext(gctx, "org config fetch failed during key check",
					"org", org, "error", err)
				return nil
			}
			orgListed = cfg != nil && containsString(cfg.AdminAPIKeyIDs(), jti)
			return nil
		})
		_ = g.Wait()
		if siteListed || orgListed {
			return nil
		}
	}
	if s.keys != nil {
		key, err := s.keys.GetByID(ctx, jti)
		if err == nil && key != nil && strings.EqualFold(key.Org, org) && key.Active(s.now()) {
			return nil
		}
	}
	return fmt.Errorf("api key %s is not configured for %s/%s", jti, org, site)
}

func splitScopes(scope string) []string {
	parts := strings.Split(scope, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func profileString(claims map[string]any, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func profileStrings(claims map[string]any, key string) []string {
	switch v := claims[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// claimInt reads an integer claim that providers serialize as either a JSON
// number or a decimal string.
func claimInt(claims map[string]any, key string) (int64, error) {
	v, ok := claims[key]
	if !ok {
		return 0, fmt.Errorf("missing %s claim", key)
	}
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("invalid %s claim: %w", key, err)
		}
		return i, nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s claim: %w", key, err)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%s claim has unexpected type %T", key, v)
	}
}
