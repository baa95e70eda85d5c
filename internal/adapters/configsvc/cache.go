package configsvc

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/contentops/admin-gateway/internal/domain/model"
	"github.com/contentops/admin-gateway/internal/ports"
)

// DefaultCacheTTL bounds how stale a served config document may be.
const DefaultCacheTTL = 60 * time.Second

// Source is the fetch interface decorated by CachingSource.
type Source interface {
	SiteConfig(ctx context.Context, org, site string) (*model.ProjectConfig, error)
	OrgConfig(ctx context.Context, org string) (*model.ProjectConfig, error)
}

// CachingSourceOptions configures a CachingSource.
type CachingSourceOptions struct {
	Source Source
	Cache  ports.CacheRepository
	// TTL for cached documents, DefaultCacheTTL when zero.
	TTL    time.Duration
	Logger *slog.Logger
}

// CachingSource caches config documents in front of another source. Negative
// results ("not configured") are cached too, as a JSON null, so missing
// projects do not hammer the config service. Cache failures degrade to a
// direct fetch.
type CachingSource struct {
	source Source
	cache  ports.CacheRepository
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachingSource constructs a CachingSource.
func NewCachingSource(opts CachingSourceOptions) *CachingSource {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingSource{source: opts.Source, cache: opts.Cache, ttl: ttl, logger: logger}
}

// SiteConfig returns the cached site config, fetching through on a miss.
func (s *CachingSource) SiteConfig(ctx context.Context, org, site string) (*model.ProjectConfig, error) {
	return s.lookup(ctx, "config:site:"+org+"/"+site, func(ctx context.Context) (*model.ProjectConfig, error) {
		return s.source.SiteConfig(ctx, org, site)
	})
}

// OrgConfig returns the cached org config, fetching through on a miss.
func (s *CachingSource) OrgConfig(ctx context.Context, org string) (*model.ProjectConfig, error) {
	return s.lookup(ctx, "config:org:"+org, func(ctx context.Context) (*model.ProjectConfig, error) {
		return s.source.OrgConfig(ctx, org)
	})
}

// Invalidate drops the cached documents of a project.
func (s *CachingSource) Invalidate(ctx context.Context, org, site string) {
	for _, key := range []string{"config:site:" + org + "/" + site, "config:org:" + org} {
		if _, err := s.cache.Delete(ctx, key); err != nil {
			s.logger.WarnContext(ctx, "config cache invalidation failed", "key", key, "error", err)
		}
	}
}

func (s *CachingSource) lookup(
	ctx context.Context,
	key string,
	fetch func(context.Context) (*model.ProjectConfig, error),
) (*model.ProjectConfig, error) {
	if cached, err := s.cache.Get(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "config cache read failed", "key", key, "error", err)
	} else if cached != nil {
		var cfg *model.ProjectConfig
		if err := json.Unmarshal(cached, &cfg); err != nil {
			s.logger.WarnContext(ctx, "config cache entry corrupt", "key", key, "error", err)
		} else {
			return cfg, nil
		}
	}

	cfg, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(cfg); err == nil {
		if err := s.cache.Set(ctx, key, encoded, s.ttl); err != nil {
			s.logger.WarnContext(ctx, "config cache write failed", "key", key, "error", err)
		}
	}
	return cfg, nil
}
