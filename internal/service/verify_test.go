package service

import (
	"context"
	"crypto/rsa"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/contentops/admin-gateway/internal/adapters/idp"
	"github.com/contentops/admin-gateway/internal/domain/model"
	"github.com/contentops/admin-gateway/internal/mocks"
	"github.com/contentops/admin-gateway/internal/ports"
	"github.com/contentops/admin-gateway/internal/testutil"
)

const (
	testIssuer    = "https://issuer.test"
	testIMSIssuer = "https://ims.test"
	testSecret    = "test-api-token-secret-0123456789abcdef"
	testClientID  = "admin-gateway"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testRegistry builds a registry with an OIDC login provider, a platform
// access-token provider and the HS256 admin token provider, all verifiable
// offline.
func testRegistry(t *testing.T, key *rsa.PrivateKey) *idp.Registry {
	t.Helper()
	registry, err := idp.NewRegistry(idp.RegistryOptions{
		Providers: []*idp.Descriptor{
			{
				Name:     "oidc",
				ClientID: testClientID,
				Discovery: idp.Discovery{
					Issuer:                testIssuer,
					AuthorizationEndpoint: testIssuer + "/authorize",
					TokenEndpoint:         testIssuer + "/token",
					JWKS:                  testutil.JWKS(t, key),
				},
				Scope: "openid email",
			},
			{
				Name:          "ims",
				IMS:           true,
				AccessClients: []string{"ims-na1"},
				Discovery: idp.Discovery{
					Issuer: testIMSIssuer,
					JWKS:   testutil.JWKS(t, key),
				},
			},
			idp.APIToken(idp.APITokenOptions{Secret: []byte(testSecret)}),
		},
		DefaultBearer:   "oidc",
		DefaultAPIToken: idp.NameAPIToken,
	})
	require.NoError(t, err)
	return registry
}

type authServiceParams struct {
	configs ports.ConfigSource
	lists   ports.ListResolver
	keys    ports.APIKeyDirectory
	global  []string
}

func newTestAuthService(t *testing.T, key *rsa.PrivateKey, p authServiceParams) *AuthService {
	t.Helper()
	return NewAuthService(AuthServiceOptions{
		Registry:        testRegistry(t, key),
		Configs:         p.configs,
		Lists:           p.lists,
		Keys:            p.keys,
		AdminClientID:   testClientID,
		GlobalAPIKeyIDs: p.global,
		Logger:          slog.New(slog.DiscardHandler),
		Now:             func() time.Time { return testNow },
	})
}

func idTokenClaims(overrides map[string]any) map[string]any {
	claims := map[string]any{
		"iss":   testIssuer,
		"aud":   testClientID,
		"sub":   "user-1",
		"email": "alice@example.com",
		"iat":   testNow.Add(-time.Minute).Unix(),
		"exp":   testNow.Add(time.Hour).Unix(),
		"nonce": "abc123",
	}
	for k, v := range overrides {
		claims[k] = v
	}
	return claims
}

func TestAuthenticateBearerIDToken(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	raw := testutil.SignRS256(t, key, idTokenClaims(nil))
	info := svc.Authenticate(context.Background(), AuthRequest{
		Credential: Credential{Kind: CredentialBearer, Value: raw},
		Org:        "acme", Site: "www",
	})

	require.True(t, info.Authenticated)
	assert.Equal(t, "oidc", info.IDP)
	assert.Equal(t, "alice@example.com", info.Profile["email"])
	// Internal claims are stripped from the exposed profile.
	assert.NotContains(t, info.Profile, "nonce")
	assert.False(t, info.Expired)
}

func TestAuthenticateBearerIDTokenExpired(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	raw := testutil.SignRS256(t, key, idTokenClaims(map[string]any{
		"exp": testNow.Add(-time.Minute).Unix(),
	}))
	info := svc.Authenticate(context.Background(), AuthRequest{
		Credential: Credential{Kind: CredentialBearer, Value: raw, FromCookie: true},
	})

	assert.False(t, info.Authenticated)
	assert.True(t, info.Expired)
	assert.True(t, info.CookieInvalid)
	assert.Equal(t, "alice@example.com", info.LoginHint)
}

func TestAuthenticateBearerIDTokenRejections(t *testing.T) {
	key := testutil.NewRSAKey(t)
	otherKey := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "wrong audience",
			raw:  testutil.SignRS256(t, key, idTokenClaims(map[string]any{"aud": "someone-else"})),
		},
		{
			name: "wrong issuer",
			raw:  testutil.SignRS256(t, key, idTokenClaims(map[string]any{"iss": "https://rogue.test"})),
		},
		{
			name: "wrong signature",
			raw:  testutil.SignRS256(t, otherKey, idTokenClaims(nil)),
		},
		{
			name: "not a jwt",
			raw:  "garbage",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := svc.Authenticate(context.Background(), AuthRequest{
				Credential: Credential{Kind: CredentialBearer, Value: tt.raw},
			})
			assert.False(t, info.Authenticated)
			assert.False(t, info.Expired)
		})
	}
}

func accessTokenClaims(overrides map[string]any) map[string]any {
	claims := map[string]any{
		"iss":        testIMSIssuer,
		"as":         "ims-na1",
		"type":       "access_token",
		"client_id":  "some-client",
		"user_id":    "alice@example.com",
		"scope":      "aem.backend.all,openid",
		"created_at": testNow.Add(-time.Minute).UnixMilli(),
		"expires_in": int64(24 * time.Hour / time.Millisecond),
	}
	for k, v := range overrides {
		claims[k] = v
	}
	return claims
}

func TestAuthenticateBearerAccessToken(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	raw := testutil.SignRS256(t, key, accessTokenClaims(nil))
	info := svc.Authenticate(context.Background(), AuthRequest{
		Credential: Credential{Kind: CredentialBearer, Value: raw},
	})

	require.True(t, info.Authenticated)
	// The as claim routes to the platform provider, not the default bearer.
	assert.Equal(t, "ims", info.IDP)
	assert.Equal(t, raw, info.IMSToken)
	assert.Equal(t, "alice@example.com", info.Profile["email"])
	// Backend scope grants the publish fallback role.
	assert.Equal(t, "publish", info.Profile["defaultRole"])
	assert.NotContains(t, info.Profile, "user_id")
}

func TestAuthenticateBearerAccessTokenLegacyClient(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	raw := testutil.SignRS256(t, key, accessTokenClaims(map[string]any{
		"client_id": "cm-repo-service",
		"scope":     "",
	}))
	info := svc.Authenticate(context.Background(), AuthRequest{
		Credential: Credential{Kind: CredentialBearer, Value: raw},
	})

	require.True(t, info.Authenticated)
	assert.Equal(t, []string{"develop"}, info.Profile["roles"])
}

func TestAuthenticateBearerAccessTokenMillisecondClaims(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	tests := []struct {
		name        string
		overrides   map[string]any
		wantAuth    bool
		wantExpired bool
	}{
		{
			name: "string encoded timestamps accepted",
			overrides: map[string]any{
				"created_at": "1000",
				"expires_in": "999999999999999",
			},
			wantAuth: true,
		},
		{
			name: "elapsed lifetime",
			overrides: map[string]any{
				"created_at": testNow.Add(-2 * time.Hour).UnixMilli(),
				"expires_in": int64(time.Hour / time.Millisecond),
			},
			wantExpired: true,
		},
		{
			name: "created in the future",
			overrides: map[string]any{
				"created_at": testNow.Add(time.Hour).UnixMilli(),
			},
		},
		{
			name:      "unparsable timestamp",
			overrides: map[string]any{"created_at": "not-a-number"},
		},
		{
			name:      "frontend scope accepted",
			overrides: map[string]any{"scope": "aem.frontend.all"},
			wantAuth:  true,
		},
		{
			name:      "foreign scope rejected",
			overrides: map[string]any{"scope": "openid,AdobeID"},
		},
		{
			name:      "wrong token type",
			overrides: map[string]any{"type": "refresh_token"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := testutil.SignRS256(t, key, accessTokenClaims(tt.overrides))
			info := svc.Authenticate(context.Background(), AuthRequest{
				Credential: Credential{Kind: CredentialBearer, Value: raw},
			})
			assert.Equal(t, tt.wantAuth, info.Authenticated)
			assert.Equal(t, tt.wantExpired, info.Expired)
		})
	}
}

func apiTokenClaims(overrides map[string]any) map[string]any {
	claims := map[string]any{
		"sub": "acme/www",
		"iss": "admin-gateway",
		"iat": testNow.Add(-time.Minute).Unix(),
		"exp": testNow.Add(time.Hour).Unix(),
	}
	for k, v := range overrides {
		claims[k] = v
	}
	return claims
}

func TestAuthenticateAPITokenWithoutID(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	raw := testutil.SignHS256(t, []byte(testSecret), apiTokenClaims(map[string]any{
		"email": "alice@example.com",
	}))
	info := svc.Authenticate(context.Background(), AuthRequest{
		Credential: Credential{Kind: CredentialToken, Value: raw},
		Org:        "acme", Site: "www",
	})

	require.True(t, info.Authenticated)
	assert.Equal(t, idp.NameAPIToken, info.IDP)
	// Tokens without a revocable id are echoed for reuse.
	assert.Equal(t, raw, info.AuthToken)
	assert.Equal(t, "alice@example.com", info.Profile["email"])
	assert.NotContains(t, info.Profile, "sub")
}

func TestAuthenticateAPITokenSubjectScope(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	tests := []struct {
		name     string
		sub      string
		org      string
		site     string
		wantAuth bool
	}{
		{name: "exact match", sub: "acme/www", org: "acme", site: "www", wantAuth: true},
		{name: "case insensitive", sub: "ACME/WWW", org: "acme", site: "www", wantAuth: true},
		{name: "wildcard site", sub: "acme/*", org: "acme", site: "www", wantAuth: true},
		{name: "org route", sub: "acme/www", org: "acme", site: "", wantAuth: true},
		{name: "wrong org", sub: "rival/www", org: "acme", site: "www"},
		{name: "wrong site", sub: "acme/blog", org: "acme", site: "www"},
		{name: "malformed subject", sub: "acme", org: "acme", site: "www"},
		{name: "empty site segment", sub: "acme/", org: "acme", site: "www"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := testutil.SignHS256(t, []byte(testSecret), apiTokenClaims(map[string]any{"sub": tt.sub}))
			info := svc.Authenticate(context.Background(), AuthRequest{
				Credential: Credential{Kind: CredentialToken, Value: raw},
				Org:        tt.org, Site: tt.site,
			})
			assert.Equal(t, tt.wantAuth, info.Authenticated)
		})
	}
}

func TestAuthenticateAPITokenWildcardOrg(t *testing.T) {
	key := testutil.NewRSAKey(t)

	raw := testutil.SignHS256(t, []byte(testSecret), apiTokenClaims(map[string]any{
		"sub": "*/*",
		"jti": "global-key-1",
	}))

	t.Run("allow-listed on a concrete project", func(t *testing.T) {
		svc := newTestAuthService(t, key, authServiceParams{global: []string{"global-key-1"}})
		info := svc.Authenticate(context.Background(), AuthRequest{
			Credential: Credential{Kind: CredentialToken, Value: raw},
			Org:        "acme", Site: "www",
		})
		assert.True(t, info.Authenticated)
	})

	t.Run("not allow-listed", func(t *testing.T) {
		svc := newTestAuthService(t, key, authServiceParams{})
		info := svc.Authenticate(context.Background(), AuthRequest{
			Credential: Credential{Kind: CredentialToken, Value: raw},
			Org:        "acme", Site: "www",
		})
		assert.False(t, info.Authenticated)
	})

	t.Run("top-level route needs no allow-list", func(t *testing.T) {
		svc := newTestAuthService(t, key, authServiceParams{})
		info := svc.Authenticate(context.Background(), AuthRequest{
			Credential: Credential{Kind: CredentialToken, Value: raw},
		})
		assert.True(t, info.Authenticated)
	})
}

func TestAuthenticateAPITokenKeyID(t *testing.T) {
	key := testutil.NewRSAKey(t)
	raw := testutil.SignHS256(t, []byte(testSecret), apiTokenClaims(map[string]any{"jti": "key-1"}))
	req := AuthRequest{
		Credential: Credential{Kind: CredentialToken, Value: raw},
		Org:        "acme", Site: "www",
	}

	siteCfg := &model.ProjectConfig{}
	siteCfg.Access.Admin.APIKeyID = model.FlexStrings{"key-1"}

	t.Run("listed in site config", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		configs := mocks.NewMockConfigSource(ctrl)
		configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(siteCfg, nil)
		configs.EXPECT().OrgConfig(gomock.Any(), "acme").Return(nil, nil)

		svc := newTestAuthService(t, key, authServiceParams{configs: configs})
		assert.True(t, svc.Authenticate(context.Background(), req).Authenticated)
	})

	t.Run("listed in org config", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		configs := mocks.NewMockConfigSource(ctrl)
		configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(nil, nil)
		configs.EXPECT().OrgConfig(gomock.Any(), "acme").Return(siteCfg, nil)

		svc := newTestAuthService(t, key, authServiceParams{configs: configs})
		assert.True(t, svc.Authenticate(context.Background(), req).Authenticated)
	})

	t.Run("listed nowhere", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		configs := mocks.NewMockConfigSource(ctrl)
		configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(nil, nil)
		configs.EXPECT().OrgConfig(gomock.Any(), "acme").Return(nil, nil)

		svc := newTestAuthService(t, key, authServiceParams{configs: configs})
		assert.False(t, svc.Authenticate(context.Background(), req).Authenticated)
	})

	t.Run("directory record fallback", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		configs := mocks.NewMockConfigSource(ctrl)
		configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(nil, nil)
		configs.EXPECT().OrgConfig(gomock.Any(), "acme").Return(nil, nil)
		keys := mocks.NewMockAPIKeyDirectory(ctrl)
		keys.EXPECT().GetByID(gomock.Any(), "key-1").
			Return(&model.APIKey{ID: "key-1", Org: "acme", Site: "www", CreatedAt: testNow.Add(-time.Hour)}, nil)

		svc := newTestAuthService(t, key, authServiceParams{configs: configs, keys: keys})
		assert.True(t, svc.Authenticate(context.Background(), req).Authenticated)
	})

	t.Run("revoked directory record", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		configs := mocks.NewMockConfigSource(ctrl)
		configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(nil, nil)
		configs.EXPECT().OrgConfig(gomock.Any(), "acme").Return(nil, nil)
		revoked := testNow.Add(-time.Minute)
		keys := mocks.NewMockAPIKeyDirectory(ctrl)
		keys.EXPECT().GetByID(gomock.Any(), "key-1").
			Return(&model.APIKey{ID: "key-1", Org: "acme", Site: "www", RevokedAt: &revoked}, nil)

		svc := newTestAuthService(t, key, authServiceParams{configs: configs, keys: keys})
		assert.False(t, svc.Authenticate(context.Background(), req).Authenticated)
	})

	t.Run("config fetch failure falls through to directory", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		configs := mocks.NewMockConfigSource(ctrl)
		configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(nil, assert.AnError)
		configs.EXPECT().OrgConfig(gomock.Any(), "acme").Return(nil, assert.AnError)
		keys := mocks.NewMockAPIKeyDirectory(ctrl)
		keys.EXPECT().GetByID(gomock.Any(), "key-1").
			Return(&model.APIKey{ID: "key-1", Org: "acme", Site: "www"}, nil)

		svc := newTestAuthService(t, key, authServiceParams{configs: configs, keys: keys})
		assert.True(t, svc.Authenticate(context.Background(), req).Authenticated)
	})
}

func TestAuthenticateAPITokenExpired(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	raw := testutil.SignHS256(t, []byte(testSecret), apiTokenClaims(map[string]any{
		"exp":   testNow.Add(-time.Minute).Unix(),
		"email": "alice@example.com",
	}))
	info := svc.Authenticate(context.Background(), AuthRequest{
		Credential: Credential{Kind: CredentialToken, Value: raw},
		Org:        "acme", Site: "www",
	})

	assert.False(t, info.Authenticated)
	assert.True(t, info.Expired)
	assert.Equal(t, "alice@example.com", info.LoginHint)
}

func TestAuthenticateAPITokenBadSignature(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	raw := testutil.SignHS256(t, []byte("wrong-secret-fedcba9876543210fedcba9876543210"), apiTokenClaims(nil))
	info := svc.Authenticate(context.Background(), AuthRequest{
		Credential: Credential{Kind: CredentialToken, Value: raw},
		Org:        "acme", Site: "www",
	})
	assert.False(t, info.Authenticated)
}

func TestAuthenticateAPITokenWrongIssuer(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	raw := testutil.SignHS256(t, []byte(testSecret), apiTokenClaims(map[string]any{
		"iss": "someone-else",
	}))
	info := svc.Authenticate(context.Background(), AuthRequest{
		Credential: Credential{Kind: CredentialToken, Value: raw},
		Org:        "acme", Site: "www",
	})
	assert.False(t, info.Authenticated)
}

func TestAuthenticateNoCredential(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	info := svc.Authenticate(context.Background(), AuthRequest{})
	assert.False(t, info.Authenticated)
	assert.False(t, info.Expired)
	assert.False(t, info.CookieInvalid)
}
