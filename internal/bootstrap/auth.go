package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/contentops/admin-gateway/config"
	"github.com/contentops/admin-gateway/internal/adapters/configsvc"
	"github.com/contentops/admin-gateway/internal/adapters/idp"
	"github.com/contentops/admin-gateway/internal/adapters/sheets"
	"github.com/contentops/admin-gateway/internal/data"
	"github.com/contentops/admin-gateway/internal/domain/origin"
	"github.com/contentops/admin-gateway/internal/ports"
	"github.com/contentops/admin-gateway/internal/service"
)

// BuildRegistry assembles the identity provider registry from configuration.
// The admin API token provider is always registered; login providers only
// when they have credentials.
func BuildRegistry(cfg *config.AppConfig) (*idp.Registry, error) {
	providers := []*idp.Descriptor{
		idp.IMS(idp.IMSOptions{
			ClientID:     cfg.Auth.IMS.ClientID,
			ClientSecret: cfg.Auth.IMS.ClientSecret,
		}),
		idp.APIToken(idp.APITokenOptions{
			Issuer: cfg.Auth.APITokenIssuer,
			Secret: []byte(cfg.Auth.APITokenSecret),
		}),
	}
	if cfg.Auth.Microsoft.Configured() {
		providers = append(providers, idp.Microsoft(idp.MicrosoftOptions{
			ClientID:     cfg.Auth.Microsoft.ClientID,
			ClientSecret: cfg.Auth.Microsoft.ClientSecret,
		}))
	}
	if cfg.Auth.Google.Configured() {
		providers = append(providers, idp.Google(idp.GoogleOptions{
			ClientID:     cfg.Auth.Google.ClientID,
			ClientSecret: cfg.Auth.Google.ClientSecret,
		}))
	}

	registry, err := idp.NewRegistry(idp.RegistryOptions{
		Providers:       providers,
		DefaultBearer:   cfg.Auth.DefaultBearerIDP,
		DefaultAPIToken: idp.NameAPIToken,
	})
	if err != nil {
		return nil, fmt.Errorf("build idp registry: %w", err)
	}
	return registry, nil
}

// AuthStackConfig groups the dependencies of BuildAuthStack.
type AuthStackConfig struct {
	Config *config.AppConfig
	Redis  redis.UniversalClient
	Keys   ports.APIKeyDirectory
	Logger *slog.Logger
}

// AuthStack is the assembled auth subsystem.
type AuthStack struct {
	Registry *idp.Registry
	Configs  ports.ConfigSource
	Auth     *service.AuthService
	APIKeys  *service.APIKeyService
	Guard    *origin.Guard
}

// BuildAuthStack wires the config source, identity providers, auth services
// and the origin guard.
func BuildAuthStack(deps AuthStackConfig) (*AuthStack, error) {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry, err := BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	client, err := configsvc.NewClient(configsvc.ClientOptions{BaseURL: cfg.ConfigService.URL})
	if err != nil {
		return nil, fmt.Errorf("build config client: %w", err)
	}
	var configs ports.ConfigSource = client
	if deps.Redis != nil {
		configs = configsvc.NewCachingSource(configsvc.CachingSourceOptions{
			Source: client,
			Cache:  data.NewRedisCacheRepo(deps.Redis),
			TTL:    cfg.Cache.ConfigTTL,
			Logger: logger,
		})
	}

	lists, err := sheets.NewResolver(sheets.ResolverOptions{})
	if err != nil {
		return nil, fmt.Errorf("build sheet resolver: %w", err)
	}

	authSvc := service.NewAuthService(service.AuthServiceOptions{
		Registry:        registry,
		Configs:         configs,
		Lists:           lists,
		Keys:            deps.Keys,
		AdminClientID:   cfg.Auth.AdminClientID,
		GlobalAPIKeyIDs: cfg.Auth.GlobalAPIKeyIDs,
		Logger:          logger,
	})

	keySvc := service.NewAPIKeyService(service.APIKeyServiceOptions{
		Registry: registry,
		Keys:     deps.Keys,
		Logger:   logger,
	})

	guard := origin.NewGuard(origin.GuardOptions{
		Enabled:    cfg.Auth.CSRF.Enabled,
		Exceptions: cfg.Auth.CSRF.Exceptions,
		Configs:    configs,
		Logger:     logger,
	})

	return &AuthStack{
		Registry: registry,
		Configs:  configs,
		Auth:     authSvc,
		APIKeys:  keySvc,
		Guard:    guard,
	}, nil
}
