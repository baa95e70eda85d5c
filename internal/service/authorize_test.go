package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/contentops/admin-gateway/internal/domain/auth"
	"github.com/contentops/admin-gateway/internal/domain/model"
	"github.com/contentops/admin-gateway/internal/mocks"
	"github.com/contentops/admin-gateway/internal/testutil"
)

func roleMappingConfig(roles map[string]model.FlexStrings) *model.ProjectConfig {
	cfg := &model.ProjectConfig{}
	cfg.Access.Admin.Role = roles
	return cfg
}

func TestResolveRolesExplicitGrant(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	info := auth.NewAuthInfo()
	err := svc.ResolveRoles(context.Background(), ResolveInput{
		Info:  info,
		Org:   "acme",
		Site:  "www",
		Roles: []string{"publish"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"publish"}, info.Roles())
}

func TestResolveRolesFromTokenClaim(t *testing.T) {
	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{})

	info := auth.NewAuthInfo()
	info.Authenticated = true
	info.Profile = map[string]any{"roles": []any{"develop"}}

	require.NoError(t, svc.ResolveRoles(context.Background(), ResolveInput{Info: info, Org: "acme", Site: "www"}))
	assert.Equal(t, []string{"develop"}, info.Roles())
}

func TestResolveRolesFromMapping(t *testing.T) {
	ctrl := gomock.NewController(t)
	configs := mocks.NewMockConfigSource(ctrl)
	configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(roleMappingConfig(map[string]model.FlexStrings{
		"author":  {"alice@example.com"},
		"publish": {"*@corp.example"},
	}), nil)

	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{configs: configs})

	info := auth.NewAuthInfo()
	info.Authenticated = true
	info.Profile = map[string]any{"email": "alice@example.com"}

	require.NoError(t, svc.ResolveRoles(context.Background(), ResolveInput{Info: info, Org: "acme", Site: "www"}))
	assert.Equal(t, []string{"author"}, info.Roles())
}

func TestResolveRolesSheetExpansion(t *testing.T) {
	ctrl := gomock.NewController(t)
	configs := mocks.NewMockConfigSource(ctrl)
	configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(roleMappingConfig(map[string]model.FlexStrings{
		"publish": {"https://main--www--acme.aem.live/authors.json"},
	}), nil)
	lists := mocks.NewMockListResolver(ctrl)
	lists.EXPECT().Resolve(gomock.Any(), "https://main--www--acme.aem.live/authors.json").
		Return([]string{"alice@example.com", "bob@example.com"}, nil)

	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{configs: configs, lists: lists})

	info := auth.NewAuthInfo()
	info.Authenticated = true
	info.Profile = map[string]any{"email": "bob@example.com"}

	require.NoError(t, svc.ResolveRoles(context.Background(), ResolveInput{Info: info, Org: "acme", Site: "www"}))
	assert.Equal(t, []string{"publish"}, info.Roles())
}

func TestResolveRolesSheetFailureSkipsEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	configs := mocks.NewMockConfigSource(ctrl)
	configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(roleMappingConfig(map[string]model.FlexStrings{
		"publish": {"https://lists.example/authors.json", "bob@example.com"},
	}), nil)
	lists := mocks.NewMockListResolver(ctrl)
	lists.EXPECT().Resolve(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{configs: configs, lists: lists})

	info := auth.NewAuthInfo()
	info.Authenticated = true
	info.Profile = map[string]any{"email": "bob@example.com"}

	require.NoError(t, svc.ResolveRoles(context.Background(), ResolveInput{Info: info, Org: "acme", Site: "www"}))
	assert.Equal(t, []string{"publish"}, info.Roles())
}

func TestResolveRolesUnauthenticated(t *testing.T) {
	key := testutil.NewRSAKey(t)

	t.Run("configured mapping rejects", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		configs := mocks.NewMockConfigSource(ctrl)
		configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(roleMappingConfig(map[string]model.FlexStrings{
			"author": {"alice@example.com"},
		}), nil)

		svc := newTestAuthService(t, key, authServiceParams{configs: configs})
		err := svc.ResolveRoles(context.Background(), ResolveInput{Info: auth.NewAuthInfo(), Org: "acme", Site: "www"})

		var authErr *auth.AuthRequiredError
		require.ErrorAs(t, err, &authErr)
	})

	t.Run("unconfigured project gets legacy default", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		configs := mocks.NewMockConfigSource(ctrl)
		configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(nil, nil)

		svc := newTestAuthService(t, key, authServiceParams{configs: configs})
		info := auth.NewAuthInfo()
		require.NoError(t, svc.ResolveRoles(context.Background(), ResolveInput{Info: info, Org: "acme", Site: "www"}))
		assert.Equal(t, []string{auth.LegacyDefaultRole}, info.Roles())
	})

	t.Run("open project gets configured defaults", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cfg := roleMappingConfig(map[string]model.FlexStrings{"author": {"alice@example.com"}})
		cfg.Access.Admin.RequireAuth = "false"
		cfg.Access.Admin.DefaultRole = model.FlexStrings{"basic_author"}
		configs := mocks.NewMockConfigSource(ctrl)
		configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(cfg, nil)

		svc := newTestAuthService(t, key, authServiceParams{configs: configs})
		info := auth.NewAuthInfo()
		require.NoError(t, svc.ResolveRoles(context.Background(), ResolveInput{Info: info, Org: "acme", Site: "www"}))
		assert.Equal(t, []string{"basic_author"}, info.Roles())
	})
}

func TestResolveRolesProviderDefaultRole(t *testing.T) {
	// Verified caller, project without role mapping: the role assigned by
	// the provider (backend tokens get publish) applies.
	ctrl := gomock.NewController(t)
	configs := mocks.NewMockConfigSource(ctrl)
	configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(nil, nil)

	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{configs: configs})

	info := auth.NewAuthInfo()
	info.Authenticated = true
	info.Profile = map[string]any{"email": "svc@example.com", "defaultRole": "publish"}

	require.NoError(t, svc.ResolveRoles(context.Background(), ResolveInput{Info: info, Org: "acme", Site: "www"}))
	assert.Equal(t, []string{"publish"}, info.Roles())
}

func TestResolveRolesOrgFallback(t *testing.T) {
	// Site-less requests consult the org config.
	ctrl := gomock.NewController(t)
	configs := mocks.NewMockConfigSource(ctrl)
	configs.EXPECT().OrgConfig(gomock.Any(), "acme").Return(roleMappingConfig(map[string]model.FlexStrings{
		"admin": {"alice@example.com"},
	}), nil)

	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{configs: configs})

	info := auth.NewAuthInfo()
	info.Authenticated = true
	info.Profile = map[string]any{"email": "alice@example.com"}

	require.NoError(t, svc.ResolveRoles(context.Background(), ResolveInput{Info: info, Org: "acme"}))
	assert.Equal(t, []string{"admin"}, info.Roles())
}

func TestResolveRolesConfigFailureDegrades(t *testing.T) {
	ctrl := gomock.NewController(t)
	configs := mocks.NewMockConfigSource(ctrl)
	configs.EXPECT().SiteConfig(gomock.Any(), "acme", "www").Return(nil, assert.AnError)

	key := testutil.NewRSAKey(t)
	svc := newTestAuthService(t, key, authServiceParams{configs: configs})

	info := auth.NewAuthInfo()
	info.Authenticated = true
	info.Profile = map[string]any{"email": "alice@example.com"}

	require.NoError(t, svc.ResolveRoles(context.Background(), ResolveInput{Info: info, Org: "acme", Site: "www"}))
	assert.Equal(t, []string{auth.LegacyDefaultRole}, info.Roles())
}
