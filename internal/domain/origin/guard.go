package origin

// Package origin validates the cross-origin trust of state-changing admin
// requests issued by the editing extension. Requests made with credentials
// that are not extension-scoped bypass the guard entirely.

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/contentops/admin-gateway/internal/domain/model"
)

// maxOriginLen rejects oversized Origin values before any pattern work.
const maxOriginLen = 270

// Verdict is the outcome class of an origin check.
type Verdict int

const (
	// VerdictAllowed lets the request proceed.
	VerdictAllowed Verdict = iota
	// VerdictAllowedWithWarning lets the request proceed under a
	// temporary opt-out exception; callers should log the warning.
	VerdictAllowedWithWarning
	// VerdictDenied blocks the request.
	VerdictDenied
)

// Decision is the result of evaluating a request against the guard.
type Decision struct {
	Verdict Verdict
	// Reason describes a denial or the downgraded denial behind a warning.
	Reason string
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Verdict != VerdictDenied }

var allowed = Decision{Verdict: VerdictAllowed}

// alwaysTrustedOrigins are literal origins trusted for every route.
var alwaysTrustedOrigins = map[string]struct{}{
	"https://labs.aem.live":  {},
	"https://tools.aem.live": {},
}

// alwaysTrustedPatterns trust two internal web properties. The patterns are
// fixed at compile time and only evaluated after the origin length guard.
var alwaysTrustedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https://(?:[a-z0-9-]+\.)?experience\.adobe\.com$`),
	regexp.MustCompile(`^https://(?:[a-z0-9-]+\.)?exc-unifiedcontent\.experience(?:-qa|-stage)?\.adobe\.net$`),
}

// contentSourcePairs adds companion origins trusted alongside a known
// content-source origin (document editors open under a sibling host).
var contentSourcePairs = map[string][]string{
	"https://drive.google.com": {"https://docs.google.com"},
	"https://docs.google.com":  {"https://drive.google.com"},
	"https://onedrive.live.com": {
		"https://www.office.com",
		"https://word-edit.officeapps.live.com",
	},
}

// ConfigSource supplies the project configuration consulted for site-level
// custom origins and trusted-host patterns.
type ConfigSource interface {
	SiteConfig(ctx context.Context, org, site string) (*model.ProjectConfig, error)
}

// Request carries the per-request inputs of an origin check.
type Request struct {
	Method       string
	Origin       string
	Referer      string
	SecFetchMode string

	Org  string
	Site string

	Authenticated bool
	ExtensionID   string
}

// GuardOptions configures a Guard.
type GuardOptions struct {
	// Enabled toggles the guard globally.
	Enabled bool
	// Exceptions lists "org" or "org/site" entries whose denials are
	// downgraded to allowed-with-warning. A compatibility escape, not a
	// security boundary.
	Exceptions []string
	// Configs resolves project configuration; required for site-level
	// custom origin and trusted-host checks.
	Configs ConfigSource
	Logger  *slog.Logger
}

// Guard evaluates extension-issued requests against tiered origin trust.
type Guard struct {
	enabled    bool
	exceptions map[string]struct{}
	configs    ConfigSource
	logger     *slog.Logger
}

// NewGuard constructs a Guard.
func NewGuard(opts GuardOptions) *Guard {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exceptions := make(map[string]struct{}, len(opts.Exceptions))
	for _, e := range opts.Exceptions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			exceptions[e] = struct{}{}
		}
	}
	return &Guard{
		enabled:    opts.Enabled,
		exceptions: exceptions,
		configs:    opts.Configs,
		logger:     logger,
	}
}

// Check evaluates the request. Only enabled guards inspect requests, and
// only for authenticated callers whose credential carries an extension id;
// everything else bypasses the guard.
func (g *Guard) Check(ctx context.Context, req Request) Decision {
	if !g.enabled || !req.Authenticated || req.ExtensionID == "" {
		return allowed
	}

	origin := req.Origin
	if origin == "" && req.Referer != "" {
		origin = originOf(req.Referer)
	}

	if origin == "" {
		return g.checkMissingOrigin(req)
	}

	// Length guard runs before any pattern evaluation.
	if len(origin) > maxOriginLen {
		return g.deny(req, "origin exceeds length limit")
	}

	origin = strings.ToLower(strings.TrimSuffix(origin, "/"))

	if _, ok := alwaysTrustedOrigins[origin]; ok {
		return allowed
	}
	for _, p := range alwaysTrustedPatterns {
		if p.MatchString(origin) {
			return allowed
		}
	}

	if origin == "chrome-extension://"+strings.ToLower(req.ExtensionID) {
		return allowed
	}

	// Top-level routes accept only the always-trusted tiers above.
	if req.Org == "" {
		return g.deny(req, "origin not trusted for top-level route")
	}

	host, ok := httpsHost(origin)
	if !ok {
		return g.deny(req, "origin is not a trusted scheme")
	}

	if _, site, org, isProject := parseProjectHost(host); isProject && org == req.Org {
		if req.Site == "" || site == req.Site {
			return allowed
		}
	}

	if req.Site != "" {
		if d, done := g.checkSiteOrigins(ctx, req, origin, host); done {
			return d
		}
	}

	return g.deny(req, "origin not trusted")
}

// checkMissingOrigin handles requests without Origin or Referer. Extension
// background workers omit Origin on safe cors fetches, and non-browser
// clients cannot be forced to send Sec-Fetch-Mode at all.
func (g *Guard) checkMissingOrigin(req Request) Decision {
	safe := req.Method == http.MethodGet || req.Method == http.MethodHead
	if safe && req.SecFetchMode == "cors" {
		return allowed
	}
	if req.SecFetchMode == "" {
		return allowed
	}
	return g.deny(req, "missing origin")
}

// checkSiteOrigins evaluates the site-specific trust tiers: custom origins
// derived from the project's sidekick/CDN/content-source configuration, then
// configured trusted-host patterns. done is false when no tier matched.
func (g *Guard) checkSiteOrigins(ctx context.Context, req Request, origin, host string) (Decision, bool) {
	if g.configs == nil {
		return Decision{}, false
	}
	cfg, err := g.configs.SiteConfig(ctx, req.Org, req.Site)
	if err != nil {
		g.logger.WarnContext(ctx, "origin guard config fetch failed",
			"org", req.Org, "site", req.Site, "error", err)
		return Decision{}, false
	}
	if cfg == nil {
		return Decision{}, false
	}

	for custom := range customOrigins(cfg) {
		if origin == custom {
			return allowed, true
		}
	}

	for _, pattern := range cfg.Limits.Admin.TrustedHosts {
		if err := CheckHost(pattern); err != nil {
			g.logger.WarnContext(ctx, "invalid trusted host pattern",
				"org", req.Org, "site", req.Site, "pattern", pattern, "error", err)
			continue
		}
		if MatchHost(pattern, host) {
			if warn := SuffixWarning(pattern); warn != "" {
				g.logger.WarnContext(ctx, warn, "org", req.Org, "site", req.Site, "pattern", pattern)
			}
			return allowed, true
		}
	}

	return Decision{}, false
}

// customOrigins builds the origin set trusted for a site from its sidekick
// hosts, CDN hosts and content source.
func customOrigins(cfg *model.ProjectConfig) map[string]struct{} {
	out := make(map[string]struct{})
	addHost := func(h string) {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			out["https://"+h] = struct{}{}
		}
	}
	addHost(cfg.Sidekick.PreviewHost)
	addHost(cfg.Sidekick.LiveHost)
	addHost(cfg.Sidekick.ReviewHost)
	addHost(cfg.CDN.Preview.Host)
	addHost(cfg.CDN.Live.Host)
	addHost(cfg.CDN.Review.Host)
	addHost(cfg.CDN.Prod.Host)

	if src := originOf(cfg.Content.Source.URL); src != "" {
		out[src] = struct{}{}
		for _, companion := range contentSourcePairs[src] {
			out[companion] = struct{}{}
		}
	}
	return out
}

// deny applies the opt-out exception list before finalizing a denial.
func (g *Guard) deny(req Request, reason string) Decision {
	if req.Org != "" {
		if _, ok := g.exceptions[strings.ToLower(req.Org)]; ok {
			return Decision{Verdict: VerdictAllowedWithWarning, Reason: reason}
		}
		if req.Site != "" {
			key := strings.ToLower(req.Org + "/" + req.Site)
			if _, ok := g.exceptions[key]; ok {
				return Decision{Verdict: VerdictAllowedWithWarning, Reason: reason}
			}
		}
	}
	return Decision{Verdict: VerdictDenied, Reason: reason}
}

// originOf reduces a URL to its scheme://host origin, empty when the URL is
// unparsable or not absolute.
func originOf(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

// httpsHost extracts the host of an https origin.
func httpsHost(origin string) (string, bool) {
	host, ok := strings.CutPrefix(origin, "https://")
	if !ok || host == "" || strings.ContainsAny(host, "/?#") {
		return "", false
	}
	return host, true
}

// parseProjectHost matches the canonical project host shape
// <ref>--<site>--<org>.(aem|hlx).(page|live|reviews).
func parseProjectHost(host string) (ref, site, org string, ok bool) {
	labels := strings.Split(host, ".")
	if len(labels) != 3 {
		return "", "", "", false
	}
	if labels[1] != "aem" && labels[1] != "hlx" {
		return "", "", "", false
	}
	switch labels[2] {
	case "page", "live", "reviews":
	default:
		return "", "", "", false
	}
	parts := strings.Split(labels[0], "--")
	if len(parts) != 3 {
		return "", "", "", false
	}
	for _, p := range parts {
		if p == "" {
			return "", "", "", false
		}
	}
	return parts[0], parts[1], parts[2], true
}
