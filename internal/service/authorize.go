package service

// Role resolution and enforcement. Roles come, in precedence order, from an
// explicit grant supplied by the invoking event, from a roles claim carried
// by the verified token, or from the project's role mapping resolved against
// the caller's identities.

import (
	"context"

	"github.com/contentops/admin-gateway/internal/adapters/sheets"
	"github.com/contentops/admin-gateway/internal/domain/auth"
	"github.com/contentops/admin-gateway/internal/domain/model"
)

// ResolveInput carries the inputs of a role resolution.
type ResolveInput struct {
	Info *auth.AuthInfo
	Org  string
	Site string

	// Roles is an explicit role grant from the invoking event. When present
	// it is applied verbatim and mapping resolution is skipped.
	Roles []string
}

// ResolveRoles resolves and applies the caller's roles, then enforces the
// project's authentication requirement. The returned error is an
// AuthRequiredError when an unauthenticated caller must be rejected.
func (s *AuthService) ResolveRoles(ctx context.Context, in ResolveInput) error {
	info := in.Info

	if len(in.Roles) > 0 {
		info.SetRoles(in.Roles...)
		return nil
	}
	if info.Authenticated {
		if roles := profileStrings(info.Profile, "roles"); len(roles) > 0 {
			info.SetRoles(roles...)
			return nil
		}
	}

	mapping := s.roleMapping(ctx, in.Org, in.Site)
	if err := mapping.CheckAuthenticated(info.Authenticated); err != nil {
		return err
	}
	if !info.Authenticated {
		info.SetRoles(mapping.DefaultRoles()...)
		return nil
	}

	// Verified callers of an unconfigured project fall back to the role the
	// provider assigned, when it assigned one.
	if !mapping.HasConfigured() {
		if dr := profileString(info.Profile, "defaultRole"); dr != "" {
			info.SetRoles(dr)
			return nil
		}
	}

	info.SetRoles(mapping.RolesForUsers(candidates(info.Profile)...)...)
	return nil
}

// candidates returns the identity strings of a verified profile used for
// mapping lookup, in precedence order.
func candidates(profile map[string]any) []string {
	out := make([]string, 0, 2)
	if email := profileString(profile, "email"); email != "" {
		out = append(out, email)
	}
	if pu := profileString(profile, "preferred_username"); pu != "" && pu != profileString(profile, "email") {
		out = append(out, pu)
	}
	return out
}

// roleMapping builds the request's role mapping from project configuration.
// Config failures degrade to an empty mapping; resolution then applies
// default-role semantics rather than failing the request.
func (s *AuthService) roleMapping(ctx context.Context, org, site string) *auth.RoleMapping {
	cfg := s.projectConfig(ctx, org, site)
	if cfg == nil {
		return auth.NewRoleMapping(auth.RoleMappingConfig{})
	}

	admin := cfg.Access.Admin
	roles := make(map[string][]string, len(admin.Role))
	for name, entries := range admin.Role {
		expanded := make([]string, 0, len(entries))
		for _, entry := range entries {
			if !sheets.IsRef(entry) {
				expanded = append(expanded, entry)
				continue
			}
			if s.lists == nil {
				s.logger.WarnContext(ctx, "no list resolver for role sheet reference",
					"org", org, "site", site, "role", name, "ref", entry)
				continue
			}
			users, err := s.lists.Resolve(ctx, entry)
			if err != nil {
				s.logger.WarnContext(ctx, "role sheet resolution failed",
					"org", org, "site", site, "role", name, "ref", entry, "error", err)
				continue
			}
			expanded = append(expanded, users...)
		}
		roles[name] = expanded
	}

	return auth.NewRoleMapping(auth.RoleMappingConfig{
		RequireAuth:  string(admin.RequireAuth),
		DefaultRoles: admin.DefaultRole,
		Roles:        roles,
	})
}

// projectConfig fetches the site config, falling back to the org config for
// site-less requests. Fetch failures are logged and treated as no config.
func (s *AuthService) projectConfig(ctx context.Context, org, site string) *model.ProjectConfig {
	if s.configs == nil || org == "" {
		return nil
	}
	var (
		cfg *model.ProjectConfig
		err error
	)
	if site != "" {
		cfg, err = s.configs.SiteConfig(ctx, org, site)
	} else {
		cfg, err = s.configs.OrgConfig(ctx, org)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "project config fetch failed",
			"org", org, "site", site, "error", err)
		return nil
	}
	return cfg
}
