package auth

import (
	"sort"
	"strings"
)

// Role names known to the permission catalog.
const (
	RoleAdmin        = "admin"
	RoleAuthor       = "author"
	RoleBasicAuthor  = "basic_author"
	RoleBasicPublish = "basic_publish"
	RoleConfig       = "config"
	RoleConfigAdmin  = "config_admin"
	RoleDevelop      = "develop"
	RolePublish      = "publish"
)

// LegacyDefaultRole is assigned to projects that predate role mapping.
const LegacyDefaultRole = RoleBasicPublish

// rolePermissions maps each role to its sorted permission set. Composed roles
// are resolved once at catalog build time, not per request.
var rolePermissions = buildCatalog()

func buildCatalog() map[string][]string {
	basicAuthor := []string{"edit:read", "preview:read"}
	basicPublish := unionPermissions(basicAuthor, []string{"live:read"})
	author := unionPermissions(basicPublish, []string{
		"preview:write", "preview:delete", "preview:list",
		"code:read", "index:write", "sitemap:write", "job:list",
	})
	publish := unionPermissions(author, []string{
		"live:write", "live:delete", "live:delete-forced", "live:list",
	})
	develop := unionPermissions(author, []string{
		"code:write", "code:delete", "code:list",
	})
	configRead := []string{"config:read"}
	configAdmin := unionPermissions(publish, configRead, []string{"config:write"})
	admin := unionPermissions(publish, develop, configAdmin, []string{
		"log:read", "job:delete", "org:read", "org:write",
	})

	return map[string][]string{
		RoleAdmin:        admin,
		RoleAuthor:       author,
		RoleBasicAuthor:  basicAuthor,
		RoleBasicPublish: basicPublish,
		RoleConfig:       configRead,
		RoleConfigAdmin:  configAdmin,
		RoleDevelop:      develop,
		RolePublish:      publish,
	}
}

// unionPermissions merges permission sets into a sorted, deduplicated slice.
func unionPermissions(sets ...[]string) []string {
	seen := make(map[string]struct{})
	for _, set := range sets {
		for _, p := range set {
			seen[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// PermissionsForRole returns the permission set for a single role.
// Unknown roles yield an empty set.
func PermissionsForRole(role string) []string {
	perms, ok := rolePermissions[strings.ToLower(role)]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// PermissionsForRoles returns the union of each role's permission set,
// sorted and deduplicated.
func PermissionsForRoles(roles []string) []string {
	sets := make([][]string, 0, len(roles))
	for _, r := range roles {
		if perms, ok := rolePermissions[strings.ToLower(r)]; ok {
			sets = append(sets, perms)
		}
	}
	return unionPermissions(sets...)
}

// KnownRoles returns the sorted list of role names in the catalog.
func KnownRoles() []string {
	out := make([]string, 0, len(rolePermissions))
	for r := range rolePermissions {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
