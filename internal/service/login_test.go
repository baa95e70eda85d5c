package service

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentops/admin-gateway/internal/adapters/idp"
	"github.com/contentops/admin-gateway/internal/testutil"
)

func TestLoginURL(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	raw, err := svc.LoginURL(LoginURLInput{
		Provider:    "oidc",
		RedirectURL: "https://admin.example/login/oidc/ack",
		State:       "state-123",
		LoginHint:   "alice@example.com",
	})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, testClientID, q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "alice@example.com", q.Get("login_hint"))
	assert.Equal(t, "select_account", q.Get("prompt"))
	assert.Equal(t, "https://admin.example/login/oidc/ack", q.Get("redirect_uri"))
}

func TestLoginURLErrors(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	_, err := svc.LoginURL(LoginURLInput{Provider: "nope"})
	assert.Error(t, err)

	// The API token provider has no login client.
	_, err = svc.LoginURL(LoginURLInput{Provider: idp.NameAPIToken})
	assert.Error(t, err)
}

// loginTestService builds an AuthService whose login provider exchanges codes
// against a local token endpoint and verifies ID tokens signed with key.
func loginTestService(t *testing.T, key *rsa.PrivateKey, tokenURL string) *AuthService {
	t.Helper()
	registry, err := idp.NewRegistry(idp.RegistryOptions{
		Providers: []*idp.Descriptor{
			{
				Name:     "oidc",
				ClientID: testClientID,
				Discovery: idp.Discovery{
					Issuer:                testIssuer,
					AuthorizationEndpoint: testIssuer + "/authorize",
					TokenEndpoint:         tokenURL,
					JWKS:                  testutil.JWKS(t, key),
				},
			},
			idp.APIToken(idp.APITokenOptions{Secret: []byte(testSecret)}),
		},
		DefaultBearer:   "oidc",
		DefaultAPIToken: idp.NameAPIToken,
	})
	require.NoError(t, err)
	return NewAuthService(AuthServiceOptions{
		Registry: registry,
		Logger:   slog.New(slog.DiscardHandler),
		Now:      func() time.Time { return testNow },
	})
}

func TestExchangeLogin(t *testing.T) {
	key := testutil.NewRSAKey(t)
	idToken := testutil.SignRS256(t, key, map[string]any{
		"iss":   testIssuer,
		"aud":   testClientID,
		"sub":   "user-1",
		"email": "alice@example.com",
		"iat":   testNow.Add(-time.Minute).Unix(),
		"exp":   testNow.Add(2 * time.Hour).Unix(),
	})

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.FormValue("grant_type"))
		assert.Equal(t, "code-123", r.FormValue("code"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-123",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     idToken,
		})
	}))
	defer tokenSrv.Close()

	svc := loginTestService(t, key, tokenSrv.URL)
	res, err := svc.ExchangeLogin(context.Background(), ExchangeInput{
		Provider:    "oidc",
		Code:        "code-123",
		RedirectURL: "https://admin.example/login/oidc/ack",
		Org:         "acme",
		Site:        "www",
	})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "alice@example.com", res.Claims.Email)

	// The session expiry is bounded by the ID token lifetime. Compare
	// instants, the decoded expiry may carry a different location.
	assert.WithinDuration(t, testNow.Add(2*time.Hour), res.Expiry, time.Second)

	// The session token is a project-scoped admin token verifiable with the
	// shared secret, without a revocable id.
	tok, err := jwt.ParseSigned(res.SessionToken, []jose.SignatureAlgorithm{jose.HS256})
	require.NoError(t, err)
	var std jwt.Claims
	var extra map[string]any
	require.NoError(t, tok.Claims([]byte(testSecret), &std, &extra))
	assert.Equal(t, "acme/www", std.Subject)
	assert.Empty(t, std.ID)
	assert.Equal(t, "alice@example.com", extra["email"])
}

func TestExchangeLoginRequiresProject(t *testing.T) {
	svc := loginTestService(t, testutil.NewRSAKey(t), testIssuer+"/token")
	_, err := svc.ExchangeLogin(context.Background(), ExchangeInput{Provider: "oidc", Code: "x"})
	assert.Error(t, err)
}

func TestExchangeLoginMissingIDToken(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-123",
			"token_type":   "Bearer",
		})
	}))
	defer tokenSrv.Close()

	svc := loginTestService(t, testutil.NewRSAKey(t), tokenSrv.URL)
	_, err := svc.ExchangeLogin(context.Background(), ExchangeInput{
		Provider: "oidc", Code: "x", Org: "acme", Site: "www",
	})
	assert.ErrorContains(t, err, "id_token")
}
