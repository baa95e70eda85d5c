package auth

import (
	"sort"
	"strings"
)

// RequireAuth values recognized in project configuration. Unrecognized
// values are treated as strict (reject unauthenticated callers).
const (
	RequireAuthAuto  = "auto"
	RequireAuthTrue  = "true"
	RequireAuthFalse = "false"
)

// WildcardUser grants its roles to every candidate identity.
const WildcardUser = "*"

// RoleMappingConfig carries the already-expanded role configuration of a
// project's access.admin block. User-list references are resolved by the
// caller before construction; this type stays free of I/O.
type RoleMappingConfig struct {
	// RequireAuth is the raw requireAuth setting; normalized to a lowercase
	// string during construction, defaulting to "auto".
	RequireAuth string

	// DefaultRoles is the project's default role set. Empty means the
	// project predates role mapping and gets the legacy default.
	DefaultRoles []string

	// Roles maps role name to the users granted that role.
	Roles map[string][]string
}

// RoleMapping resolves verified identities to project roles. It is built
// fresh per request from project configuration and never persisted.
type RoleMapping struct {
	defaultRoles []string
	requireAuth  string
	configured   bool

	usersToRoles map[string]map[string]struct{}
	rolesToUsers map[string]map[string]struct{}
}

// NewRoleMapping builds a RoleMapping from expanded configuration.
func NewRoleMapping(cfg RoleMappingConfig) *RoleMapping {
	m := &RoleMapping{
		requireAuth:  strings.ToLower(strings.TrimSpace(cfg.RequireAuth)),
		usersToRoles: make(map[string]map[string]struct{}),
		rolesToUsers: make(map[string]map[string]struct{}),
	}
	if m.requireAuth == "" {
		m.requireAuth = RequireAuthAuto
	}

	m.defaultRoles = cfg.DefaultRoles
	if len(m.defaultRoles) == 0 {
		m.defaultRoles = []string{LegacyDefaultRole}
	}

	for role, users := range cfg.Roles {
		role = strings.ToLower(strings.TrimSpace(role))
		if role == "" {
			continue
		}
		for _, user := range users {
			user = strings.ToLower(strings.TrimSpace(user))
			if user == "" {
				continue
			}
			m.configured = true
			addToSet(m.usersToRoles, user, role)
			addToSet(m.rolesToUsers, role, user)
		}
	}
	return m
}

func addToSet(m map[string]map[string]struct{}, key, value string) {
	set, ok := m[key]
	if !ok {
		set = make(map[string]struct{})
		m[key] = set
	}
	set[value] = struct{}{}
}

// RequireAuth returns the normalized requireAuth setting.
func (m *RoleMapping) RequireAuth() string { return m.requireAuth }

// HasConfigured reports whether at least one role entry exists.
func (m *RoleMapping) HasConfigured() bool { return m.configured }

// DefaultRoles returns the project's default role set.
func (m *RoleMapping) DefaultRoles() []string {
	out := make([]string, len(m.defaultRoles))
	copy(out, m.defaultRoles)
	return out
}

// RolesForUsers resolves the roles of the given candidate identities.
// Candidates are lowercased; empty candidates are ignored. With no
// configured mapping or no candidates the default role set is returned
// verbatim. Otherwise the result accumulates wildcard grants, exact-user
// grants and wildcard-domain grants, deduplicated and sorted.
func (m *RoleMapping) RolesForUsers(candidates ...string) []string {
	users := make([]string, 0, len(candidates))
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			users = append(users, c)
		}
	}

	if !m.configured || len(users) == 0 {
		return m.DefaultRoles()
	}

	roles := make(map[string]struct{})
	collect := func(user string) {
		for role := range m.usersToRoles[user] {
			roles[role] = struct{}{}
		}
	}

	collect(WildcardUser)
	for _, user := range users {
		collect(user)
		if _, domain, ok := strings.Cut(user, "@"); ok && domain != "" {
			collect("*@" + domain)
		}
	}

	// Anonymous access is open, so authenticated users keep at least the
	// default grants.
	if m.requireAuth == RequireAuthFalse {
		for _, r := range m.defaultRoles {
			roles[strings.ToLower(r)] = struct{}{}
		}
	}

	out := make([]string, 0, len(roles))
	for r := range roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// UsersForRole returns the sorted users granted the given role.
func (m *RoleMapping) UsersForRole(role string) []string {
	set := m.rolesToUsers[strings.ToLower(role)]
	out := make([]string, 0, len(set))
	for u := range set {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// CheckAuthenticated applies the enforcement rules for unauthenticated
// callers. It returns an AuthRequiredError when access must be rejected:
//   - requireAuth "auto" with any configured role mapping fails closed;
//   - any value other than "false" (including "true" and unrecognized
//     values) rejects;
//   - otherwise the caller proceeds with the default roles.
func (m *RoleMapping) CheckAuthenticated(authenticated bool) error {
	if authenticated {
		return nil
	}
	switch m.requireAuth {
	case RequireAuthAuto:
		if m.configured {
			return &AuthRequiredError{Reason: "role mapping is configured"}
		}
		return nil
	case RequireAuthFalse:
		return nil
	default:
		return &AuthRequiredError{Reason: "authentication required"}
	}
}
