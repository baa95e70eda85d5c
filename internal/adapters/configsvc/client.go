package configsvc

// Package configsvc fetches project and organization configuration documents
// from the config service over HTTP.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/contentops/admin-gateway/internal/domain/model"
)

// maxConfigBody caps config document size to keep a misbehaving upstream from
// exhausting memory.
const maxConfigBody = 1 << 20

// ClientOptions configures a Client.
type ClientOptions struct {
	// BaseURL is the config service root, e.g. "https://config.example.com".
	BaseURL string
	// HTTPClient performs the requests. Defaults to a client with a
	// 10 second timeout.
	HTTPClient *http.Client
}

// Client retrieves configuration documents from the config service. A missing
// document (404) is reported as nil config with nil error.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client.
func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("config service base URL is required")
	}
	if _, err := url.Parse(opts.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid config service base URL: %w", err)
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: opts.BaseURL, httpClient: httpClient}, nil
}

// SiteConfig fetches the aggregated configuration of a site.
func (c *Client) SiteConfig(ctx context.Context, org, site string) (*model.ProjectConfig, error) {
	if org == "" || site == "" {
		return nil, fmt.Errorf("org and site are required")
	}
	path := fmt.Sprintf("/config/%s/sites/%s.json", url.PathEscape(org), url.PathEscape(site))
	return c.fetch(ctx, path)
}

// OrgConfig fetches the organization-level configuration.
func (c *Client) OrgConfig(ctx context.Context, org string) (*model.ProjectConfig, error) {
	if org == "" {
		return nil, fmt.Errorf("org is required")
	}
	path := fmt.Sprintf("/config/%s/org.json", url.PathEscape(org))
	return c.fetch(ctx, path)
}

func (c *Client) fetch(ctx context.Context, path string) (*model.ProjectConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build config request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch config %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxConfigBody))
		return nil, fmt.Errorf("fetch config %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxConfigBody))
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg model.ProjectConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return &cfg, nil
}
