package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/google/uuid"

	"github.com/contentops/admin-gateway/internal/adapters/idp"
	"github.com/contentops/admin-gateway/internal/domain/model"
	"github.com/contentops/admin-gateway/internal/ports"
)

// APIKeyServiceOptions configures an APIKeyService.
type APIKeyServiceOptions struct {
	Registry *idp.Registry
	Keys     ports.APIKeyDirectory
	Logger   *slog.Logger
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// APIKeyService mints, lists and revokes admin API tokens. The token value
// exists only in the mint response; the directory record keeps the revocable
// id.
type APIKeyService struct {
	registry *idp.Registry
	keys     ports.APIKeyDirectory
	logger   *slog.Logger
	now      func() time.Time
}

// NewAPIKeyService constructs an APIKeyService.
func NewAPIKeyService(opts APIKeyServiceOptions) *APIKeyService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &APIKeyService{registry: opts.Registry, keys: opts.Keys, logger: logger, now: now}
}

// MintRequest carries the parameters of a key mint.
type MintRequest struct {
	Org   string
	Site  string
	Email string
	// TTL bounds the token lifetime; zero mints a non-expiring token.
	TTL time.Duration
}

// MintedKey is the mint result. Token is shown once and not stored.
type MintedKey struct {
	Key   *model.APIKey
	Token string
}

// Mint creates a new API token scoped to org/site and records it in the
// directory.
func (s *APIKeyService) Mint(ctx context.Context, req MintRequest) (*MintedKey, error) {
	provider := s.registry.DefaultAPIToken()
	if provider == nil || len(provider.HMACSecret) == 0 {
		return nil, errors.New("api token provider not configured")
	}

	now := s.now().UTC()
	key := &model.APIKey{
		ID:        uuid.NewString(),
		Org:       strings.ToLower(strings.TrimSpace(req.Org)),
		Site:      strings.ToLower(strings.TrimSpace(req.Site)),
		Email:     strings.TrimSpace(req.Email),
		CreatedAt: now,
	}
	if req.TTL > 0 {
		exp := now.Add(req.TTL)
		key.ExpiresAt = &exp
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: provider.HMACSecret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("build signer: %w", err)
	}

	claims := jwt.Claims{
		ID:       key.ID,
		Subject:  key.Subject(),
		Issuer:   provider.Discovery.Issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if key.ExpiresAt != nil {
		claims.Expiry = jwt.NewNumericDate(*key.ExpiresAt)
	}
	extra := map[string]any{}
	if key.Email != "" {
		extra["email"] = key.Email
	}

	token, err := jwt.Signed(signer).Claims(claims).Claims(extra).Serialize()
	if err != nil {
		return nil, fmt.Errorf("sign api token: %w", err)
	}

	if err := s.keys.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("record api key: %w", err)
	}
	s.logger.InfoContext(ctx, "api key minted",
		"id", key.ID, "subject", key.Subject(), "expires", key.ExpiresAt)
	return &MintedKey{Key: key, Token: token}, nil
}

// List returns the key records of an org, newest first.
func (s *APIKeyService) List(ctx context.Context, org string) ([]*model.APIKey, error) {
	org = strings.ToLower(strings.TrimSpace(org))
	if org == "" {
		return nil, errors.New("org is required")
	}
	return s.keys.ListByOrg(ctx, org)
}

// Revoke marks the key revoked; its tokens stop verifying at the next check.
func (s *APIKeyService) Revoke(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("key id is required")
	}
	if err := s.keys.Revoke(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "api key revoked", "id", id)
	return nil
}
