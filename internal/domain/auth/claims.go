package auth

// Package auth contains domain-level types for request authentication and
// authorization. It is pure and free of framework/adapter concerns.

import "time"

// VerifiedClaims is the normalized output of a successful credential
// verification, independent of which identity provider issued the token.
// Instances are created fresh per verification call and never shared.
type VerifiedClaims struct {
	Subject           string
	Email             string
	UserID            string
	PreferredUsername string

	Issuer   string
	Audience []string
	Expiry   time.Time
	IssuedAt time.Time

	// TTL is the remaining token lifetime in seconds at verification time.
	TTL int64

	// Roles is an explicit role grant carried by the token itself. When
	// present it bypasses project role-mapping resolution entirely.
	Roles []string

	// ID is the token's jti claim, used as a revocable identifier for
	// admin-issued API tokens.
	ID string

	// Scope holds the raw scope claim of platform access tokens.
	Scope string
	// Scopes is Scope split on commas.
	Scopes []string

	// DefaultRole is a provider-assigned fallback role (e.g. "publish" for
	// backend service tokens) applied when a project has no role mapping.
	DefaultRole string

	// ExtensionID identifies the browser extension a credential was issued
	// to. Non-empty values subject state-changing requests to origin checks.
	ExtensionID string

	// Profile is the claim set exposed to downstream handlers, with
	// internal-only claims already stripped.
	Profile map[string]any
}

// Candidates returns the identity strings used for role-mapping lookup,
// in precedence order. Empty values are omitted.
func (c *VerifiedClaims) Candidates() []string {
	out := make([]string, 0, 2)
	if c.Email != "" {
		out = append(out, c.Email)
	}
	if c.PreferredUsername != "" && c.PreferredUsername != c.Email {
		out = append(out, c.PreferredUsername)
	}
	return out
}

// StripClaims returns a copy of claims with the given keys removed.
// The input map is not modified.
func StripClaims(claims map[string]any, keys ...string) map[string]any {
	if claims == nil {
		return nil
	}
	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
