package sheets

// Package sheets resolves user-list references in role configuration. A role
// entry may point at a published sheet document instead of naming users
// inline; the resolver fetches the document and extracts the user identities
// from it.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// maxSheetBody caps sheet document size.
const maxSheetBody = 4 << 20

// userExpressions are tried in order against the decoded sheet document. The
// first expression yielding at least one string wins. Sheets are published in
// two shapes: a single-sheet document with a top-level data array, and a
// multi-sheet workbook keyed by sheet name.
var userExpressions = []string{
	"data[].email",
	"data[].user",
	"data[]",
	"[]",
}

// Resolver fetches sheet documents over HTTP and extracts user identities.
type Resolver struct {
	httpClient *http.Client
	compiled   []jmespath.JMESPath
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// HTTPClient performs sheet fetches. Defaults to a client with a
	// 10 second timeout.
	HTTPClient *http.Client
}

// NewResolver constructs a Resolver. The extraction expressions are compiled
// once here.
func NewResolver(opts ResolverOptions) (*Resolver, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	compiled := make([]jmespath.JMESPath, 0, len(userExpressions))
	for _, expr := range userExpressions {
		c, err := jmespath.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("compile sheet expression %q: %w", expr, err)
		}
		compiled = append(compiled, c)
	}
	return &Resolver{httpClient: httpClient, compiled: compiled}, nil
}

// IsRef reports whether a role entry is a sheet reference rather than an
// inline user identity. References are absolute http(s) URLs or paths ending
// in ".json".
func IsRef(entry string) bool {
	entry = strings.TrimSpace(entry)
	if strings.HasPrefix(entry, "http://") || strings.HasPrefix(entry, "https://") {
		return true
	}
	return strings.HasSuffix(entry, ".json")
}

// Resolve fetches the referenced sheet and returns the user identities it
// lists. Entries that are not strings are skipped.
func (r *Resolver) Resolve(ctx context.Context, ref string) ([]string, error) {
	if _, err := url.Parse(ref); err != nil {
		return nil, fmt.Errorf("invalid sheet reference %q: %w", ref, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("build sheet request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet %s: %w", ref, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxSheetBody))
		return nil, fmt.Errorf("fetch sheet %s: unexpected status %d", ref, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSheetBody))
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", ref, err)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode sheet %s: %w", ref, err)
	}
	return r.Extract(doc), nil
}

// Extract pulls user identities out of a decoded sheet document.
func (r *Resolver) Extract(doc any) []string {
	for _, expr := range r.compiled {
		result, err := expr.Search(doc)
		if err != nil {
			continue
		}
		if users := collectStrings(result); len(users) > 0 {
			return users
		}
	}
	return nil
}

func collectStrings(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
