package ports

// Package ports defines interfaces (hexagonal ports) for the auth
// subsystem's external collaborators. Implementations live in
// internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"
	"time"

	"github.com/contentops/admin-gateway/internal/domain/model"
)

// ConfigSource retrieves project and organization configuration documents.
// Implementations must honor the context deadline and must not retry
// indefinitely; a nil config with nil error means "not configured".
type ConfigSource interface {
	SiteConfig(ctx context.Context, org, site string) (*model.ProjectConfig, error)
	OrgConfig(ctx context.Context, org string) (*model.ProjectConfig, error)
}

// ListResolver expands a user-list document reference (a "sheet") into the
// user identities it contains.
type ListResolver interface {
	Resolve(ctx context.Context, ref string) ([]string, error)
}

// APIKeyDirectory persists the directory of admin-issued API tokens and
// answers revocation lookups during verification.
type APIKeyDirectory interface {
	Create(ctx context.Context, key *model.APIKey) error
	GetByID(ctx context.Context, id string) (*model.APIKey, error)
	ListByOrg(ctx context.Context, org string) ([]*model.APIKey, error)
	Revoke(ctx context.Context, id string) error
}

// CacheRepository is the byte-level cache used by the caching config
// source. A nil value with nil error means the key does not exist.
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) (bool, error)
}
