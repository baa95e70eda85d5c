package auth

import (
	"encoding/json"
	"sort"
	"strings"
)

// AuthInfo is the authorization context for a single request. It is created
// once per request, mutated in place by the authentication step and then the
// authorization step, and discarded at request end. It must not be shared
// across requests.
type AuthInfo struct {
	// Authenticated is true only if a credential passed verification.
	Authenticated bool

	// Profile is the verified claim subset, nil when unauthenticated.
	Profile map[string]any

	// ExtensionID is set for browser-extension-issued credentials and
	// triggers origin checks on state-changing requests.
	ExtensionID string

	// AuthToken is a reusable bearer value echoed back to the caller for
	// long-lived API tokens (empty for one-time tokens carrying a jti).
	AuthToken string

	// IMSToken holds the raw platform access token when the caller
	// authenticated with one.
	IMSToken string

	// CookieInvalid is true when a cookie credential was present but failed
	// verification; login flows use it to clear the stale cookie.
	CookieInvalid bool

	// Expired is true when the credential failed verification specifically
	// because its lifetime had elapsed.
	Expired bool

	// IDP names the identity provider that verified the credential, used by
	// login and logout flows to select the matching descriptor.
	IDP string

	// LoginHint is forwarded to the provider's authorize endpoint.
	LoginHint string

	roles       []string
	permissions []string
}

// NewAuthInfo returns an unauthenticated AuthInfo with no roles.
func NewAuthInfo() *AuthInfo {
	return &AuthInfo{}
}

// Roles returns the resolved role list, sorted and deduplicated.
func (a *AuthInfo) Roles() []string {
	out := make([]string, len(a.roles))
	copy(out, a.roles)
	return out
}

// SetRoles replaces the role list and re-derives the permission set from the
// catalog. Permissions are never set directly.
func (a *AuthInfo) SetRoles(roles ...string) *AuthInfo {
	seen := make(map[string]struct{}, len(roles))
	deduped := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		deduped = append(deduped, r)
	}
	sort.Strings(deduped)
	a.roles = deduped
	a.permissions = PermissionsForRoles(deduped)
	return a
}

// Permissions returns the role-derived permission set.
func (a *AuthInfo) Permissions() []string {
	out := make([]string, len(a.permissions))
	copy(out, a.permissions)
	return out
}

// HasPermissions reports whether every requested permission is present.
func (a *AuthInfo) HasPermissions(perms ...string) bool {
	for _, p := range perms {
		if !a.hasPermission(p) {
			return false
		}
	}
	return true
}

func (a *AuthInfo) hasPermission(perm string) bool {
	for _, p := range a.permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// AssertPermissions returns a PermissionDeniedError naming the first missing
// permission, or nil if all requested permissions are present.
func (a *AuthInfo) AssertPermissions(perms ...string) error {
	for _, p := range perms {
		if !a.hasPermission(p) {
			return &PermissionDeniedError{Missing: []string{p}}
		}
	}
	return nil
}

// AssertAnyPermission returns nil if at least one of the requested
// permissions is present, otherwise a PermissionDeniedError naming all of
// them.
func (a *AuthInfo) AssertAnyPermission(perms ...string) error {
	for _, p := range perms {
		if a.hasPermission(p) {
			return nil
		}
	}
	missing := make([]string, len(perms))
	copy(missing, perms)
	return &PermissionDeniedError{Missing: missing}
}

// GetPermissions returns the permissions under the given colon-namespaced
// prefix with the prefix stripped, sorted. GetPermissions("live") yields
// e.g. ["delete", "read", "write"].
func (a *AuthInfo) GetPermissions(prefix string) []string {
	full := prefix + ":"
	out := make([]string, 0, len(a.permissions))
	for _, p := range a.permissions {
		if strings.HasPrefix(p, full) {
			out = append(out, strings.TrimPrefix(p, full))
		}
	}
	sort.Strings(out)
	return out
}

// RemovePermissions removes the given permissions from the derived set and
// returns the receiver for chaining. Roles are unchanged; the removal applies
// to this request only.
func (a *AuthInfo) RemovePermissions(perms ...string) *AuthInfo {
	drop := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		drop[p] = struct{}{}
	}
	kept := a.permissions[:0]
	for _, p := range a.permissions {
		if _, ok := drop[p]; !ok {
			kept = append(kept, p)
		}
	}
	a.permissions = kept
	return a
}

// publicAuthInfo is the JSON shape exposed to callers (e.g. the profile
// endpoint). Auxiliary verification flags stay internal.
type publicAuthInfo struct {
	Authenticated bool           `json:"authenticated"`
	Profile       map[string]any `json:"profile,omitempty"`
	Roles         []string       `json:"roles"`
	Permissions   []string       `json:"permissions"`
}

// MarshalJSON serializes the public form of the AuthInfo.
func (a *AuthInfo) MarshalJSON() ([]byte, error) {
	return json.Marshal(publicAuthInfo{
		Authenticated: a.Authenticated,
		Profile:       a.Profile,
		Roles:         a.Roles(),
		Permissions:   a.Permissions(),
	})
}
