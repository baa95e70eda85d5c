package service

// Interactive login: provider redirect URLs, authorization-code exchange and
// the session token placed in the auth cookie afterwards. Session tokens are
// admin API tokens scoped to the project the login was initiated for, so the
// cookie verifies through the regular token path.

import (
	"context"
	"errors"
	"fmt"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"

	"github.com/contentops/admin-gateway/internal/adapters/idp"
	"github.com/contentops/admin-gateway/internal/domain/auth"
)

// sessionTokenTTL caps the lifetime of cookie session tokens. The token also
// never outlives the ID token it was exchanged from.
const sessionTokenTTL = 24 * time.Hour

// LoginURLInput carries the parameters of a login redirect.
type LoginURLInput struct {
	Provider    string
	RedirectURL string
	State       string
	LoginHint   string
}

// LoginURL builds the provider authorize URL for a login redirect.
func (s *AuthService) LoginURL(in LoginURLInput) (string, error) {
	provider := s.registry.ByName(in.Provider)
	if provider == nil {
		return "", fmt.Errorf("unknown identity provider %q", in.Provider)
	}
	if provider.ClientID == "" {
		return "", fmt.Errorf("provider %q has no login client", in.Provider)
	}
	return provider.AuthCodeURL(idp.AuthCodeURLOptions{
		RedirectURL: in.RedirectURL,
		State:       in.State,
		LoginHint:   in.LoginHint,
	}), nil
}

// ExchangeInput carries the parameters of an authorization-code exchange.
type ExchangeInput struct {
	Provider    string
	Code        string
	RedirectURL string
	Org         string
	Site        string
}

// LoginResult is the outcome of a completed login.
type LoginResult struct {
	// SessionToken goes into the auth cookie.
	SessionToken string
	// Expiry is the session token expiry, used for the cookie lifetime.
	Expiry time.Time
	// Claims are the verified ID token claims.
	Claims *auth.VerifiedClaims
}

// ExchangeLogin trades an authorization code for a verified identity and
// mints the session token for the project the login belongs to.
func (s *AuthService) ExchangeLogin(ctx context.Context, in ExchangeInput) (*LoginResult, error) {
	provider := s.registry.ByName(in.Provider)
	if provider == nil {
		return nil, fmt.Errorf("unknown identity provider %q", in.Provider)
	}
	if in.Org == "" || in.Site == "" {
		return nil, errors.New("login requires org and site")
	}

	oauthTok, err := provider.OAuthConfig(in.RedirectURL).Exchange(ctx, in.Code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	rawIDToken, ok := oauthTok.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, errors.New("token response carries no id_token")
	}

	claims, err := s.verifyIDToken(ctx, provider, rawIDToken)
	if err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, errors.New("id token carries no email")
	}

	expiry := s.now().Add(sessionTokenTTL)
	if !claims.Expiry.IsZero() && claims.Expiry.Before(expiry) {
		expiry = claims.Expiry
	}

	token, err := s.mintSessionToken(in.Org, in.Site, claims.Email, expiry)
	if err != nil {
		return nil, err
	}
	return &LoginResult{SessionToken: token, Expiry: expiry, Claims: claims}, nil
}

// mintSessionToken signs a project-scoped session token with the admin token
// secret. Session tokens carry no jti; they are bounded by expiry instead of
// revocation.
func (s *AuthService) mintSessionToken(org, site, email string, expiry time.Time) (string, error) {
	provider := s.registry.DefaultAPIToken()
	if provider == nil || len(provider.HMACSecret) == 0 {
		return "", errors.New("api token provider not configured")
	}
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: provider.HMACSecret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("build signer: %w", err)
	}
	now := s.now()
	claims := jwt.Claims{
		Subject:  org + "/" + site,
		Issuer:   provider.Discovery.Issuer,
		IssuedAt: jwt.NewNumericDate(now),
		Expiry:   jwt.NewNumericDate(expiry),
	}
	extra := map[string]any{"email": email}
	token, err := jwt.Signed(signer).Claims(claims).Claims(extra).Serialize()
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}
