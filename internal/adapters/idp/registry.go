package idp

// Package idp holds the process-wide identity provider registry. Descriptors
// are constructed at startup and never mutated per request; tests build their
// own registry and inject it rather than swapping a package-level default.

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	jose "github.com/go-jose/go-jose/v4"
	"golang.org/x/oauth2"
)

// Discovery carries the endpoints and key material of a provider. Either
// JWKS (embedded) or JWKSURL (remote, fetched through the registry's HTTP
// client) supplies signature keys; HMAC providers use neither.
type Discovery struct {
	Issuer                string
	AuthorizationEndpoint string
	TokenEndpoint         string
	JWKSURL               string
	JWKS                  *jose.JSONWebKeySet
}

// Descriptor describes one identity provider. Immutable after registry
// construction.
type Descriptor struct {
	Name      string
	Discovery Discovery
	Scope     string

	ClientID     string
	ClientSecret string

	// ValidateIssuer overrides the default exact-match issuer check, for
	// providers whose tokens carry tenant-specific issuers.
	ValidateIssuer func(issuer string) bool

	// LoginRoute and LoginRedirectRoute name the HTTP routes serving this
	// provider's login flow.
	LoginRoute         string
	LoginRedirectRoute string

	// IMS marks a platform access-token provider; bearer tokens resolved
	// to it are verified under access-token rules.
	IMS bool

	// AccessClients lists the `as` claim values whose tokens this
	// provider issues.
	AccessClients []string

	// HMACSecret verifies HS256-signed admin API tokens. Providers with a
	// secret have no key set.
	HMACSecret []byte

	keys gooidc.KeySet
}

// CheckIssuer validates a token issuer against the descriptor.
func (d *Descriptor) CheckIssuer(issuer string) bool {
	if d.ValidateIssuer != nil {
		return d.ValidateIssuer(issuer)
	}
	return issuer == d.Discovery.Issuer
}

// KeySet returns the provider's signature key set, nil for HMAC providers.
func (d *Descriptor) KeySet() gooidc.KeySet { return d.keys }

// OAuthConfig builds the oauth2 configuration for this provider's login
// flow with the given redirect URL.
func (d *Descriptor) OAuthConfig(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     d.ClientID,
		ClientSecret: d.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       splitScope(d.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:  d.Discovery.AuthorizationEndpoint,
			TokenURL: d.Discovery.TokenEndpoint,
		},
	}
}

// AuthCodeURLOptions groups the per-request parameters of AuthCodeURL.
type AuthCodeURLOptions struct {
	RedirectURL string
	State       string
	LoginHint   string
}

// AuthCodeURL builds the provider authorize URL for a login redirect.
func (d *Descriptor) AuthCodeURL(opts AuthCodeURLOptions) string {
	params := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	}
	if opts.LoginHint != "" {
		params = append(params, oauth2.SetAuthURLParam("login_hint", opts.LoginHint))
	}
	return d.OAuthConfig(opts.RedirectURL).AuthCodeURL(opts.State, params...)
}

func splitScope(scope string) []string {
	return strings.Fields(scope)
}

// RegistryOptions configures NewRegistry.
type RegistryOptions struct {
	Providers []*Descriptor

	// DefaultBearer names the provider assumed for bearer credentials
	// whose issuing provider cannot be detected from the token.
	DefaultBearer string

	// DefaultAPIToken names the provider verifying "token" scheme
	// credentials.
	DefaultAPIToken string

	// HTTPClient performs remote JWKS fetches; callers inject it so key
	// retrieval can be intercepted or aborted. Defaults to a client with
	// a 30 second timeout.
	HTTPClient *http.Client
}

// Registry is the immutable provider lookup shared by all requests.
type Registry struct {
	providers       []*Descriptor
	byName          map[string]*Descriptor
	defaultBearer   *Descriptor
	defaultAPIToken *Descriptor
}

// NewRegistry builds the registry and the key set of every provider.
func NewRegistry(opts RegistryOptions) (*Registry, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	keyCtx := gooidc.ClientContext(context.Background(), httpClient)

	r := &Registry{
		providers: opts.Providers,
		byName:    make(map[string]*Descriptor, len(opts.Providers)),
	}
	for _, p := range opts.Providers {
		if p.Name == "" {
			return nil, errors.New("provider name is required")
		}
		if _, exists := r.byName[p.Name]; exists {
			return nil, fmt.Errorf("duplicate provider %q", p.Name)
		}
		if err := buildKeySet(keyCtx, p); err != nil {
			return nil, fmt.Errorf("provider %q: %w", p.Name, err)
		}
		r.byName[p.Name] = p
	}

	var err error
	if r.defaultBearer, err = r.require(opts.DefaultBearer, "default bearer"); err != nil {
		return nil, err
	}
	if r.defaultAPIToken, err = r.require(opts.DefaultAPIToken, "default api token"); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) require(name, role string) (*Descriptor, error) {
	if name == "" {
		return nil, fmt.Errorf("%s provider is required", role)
	}
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%s provider %q not registered", role, name)
	}
	return p, nil
}

func buildKeySet(ctx context.Context, p *Descriptor) error {
	if len(p.HMACSecret) > 0 {
		return nil
	}
	if p.Discovery.JWKS != nil {
		keys := make([]crypto.PublicKey, 0, len(p.Discovery.JWKS.Keys))
		for _, k := range p.Discovery.JWKS.Keys {
			keys = append(keys, k.Key)
		}
		p.keys = &gooidc.StaticKeySet{PublicKeys: keys}
		return nil
	}
	if p.Discovery.JWKSURL != "" {
		p.keys = gooidc.NewRemoteKeySet(ctx, p.Discovery.JWKSURL)
		return nil
	}
	return errors.New("no key material configured")
}

// ByName returns the named provider, nil when unknown.
func (r *Registry) ByName(name string) *Descriptor { return r.byName[name] }

// Providers returns the registered descriptors.
func (r *Registry) Providers() []*Descriptor { return r.providers }

// DefaultBearer returns the provider assumed for undetectable bearer
// credentials.
func (r *Registry) DefaultBearer() *Descriptor { return r.defaultBearer }

// DefaultAPIToken returns the provider verifying "token" scheme
// credentials.
func (r *Registry) DefaultAPIToken() *Descriptor { return r.defaultAPIToken }

// ForAccessClient resolves the platform provider issuing tokens with the
// given `as` claim, falling back to any platform provider when the value is
// unknown. Returns nil when no platform provider is registered.
func (r *Registry) ForAccessClient(as string) *Descriptor {
	for _, p := range r.providers {
		if !p.IMS {
			continue
		}
		for _, c := range p.AccessClients {
			if c == as {
				return p
			}
		}
	}
	for _, p := range r.providers {
		if p.IMS {
			return p
		}
	}
	return nil
}
