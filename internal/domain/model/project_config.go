package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexStrings unmarshals a JSON value that may be a single string or an
// array of strings. Project configuration documents use both forms
// interchangeably for role and key lists.
type FlexStrings []string

func (f *FlexStrings) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = nil
		return nil
	}
	if b[0] == '[' {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*f = list
		return nil
	}
	var single string
	if err := json.Unmarshal(b, &single); err != nil {
		return err
	}
	*f = []string{single}
	return nil
}

// FlexString unmarshals a JSON string, boolean or number into its lowercase
// string form. The requireAuth setting appears as both `true` and `"true"`
// in the wild.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(strings.ToLower(s))
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*f = FlexString(strconv.FormatBool(v))
	default:
		*f = FlexString(strings.ToLower(string(b)))
	}
	return nil
}

// ProjectConfig is the configuration document fetched per project (site) or
// per organization. Retrieval is external; this package only models the
// sections the auth subsystem consumes.
type ProjectConfig struct {
	Access   AccessConfig   `json:"access"`
	CDN      CDNConfig      `json:"cdn"`
	Sidekick SidekickConfig `json:"sidekick"`
	Limits   LimitsConfig   `json:"limits"`
	Content  ContentConfig  `json:"content"`
}

// AccessConfig is the access section of a project configuration.
type AccessConfig struct {
	Admin   AdminAccess `json:"admin"`
	Preview RoleAccess  `json:"preview"`
	Live    RoleAccess  `json:"live"`
}

// AdminAccess configures admin API authentication for a project.
type AdminAccess struct {
	// RequireAuth is "auto", "true" or "false"; other values are treated
	// as strict.
	RequireAuth FlexString `json:"requireAuth"`

	// DefaultRole names the roles granted when no user mapping applies.
	DefaultRole FlexStrings `json:"defaultRole"`

	// Role maps role names to user lists. Entries referencing a list
	// document are expanded through a resolver before use.
	Role map[string]FlexStrings `json:"role"`

	// APIKeyID lists the jti values of admin API tokens accepted for this
	// project.
	APIKeyID FlexStrings `json:"apiKeyId"`
}

// RoleAccess configures delivery-side access (preview/live CDN keys).
type RoleAccess struct {
	Allow    FlexStrings `json:"allow"`
	APIKeyID FlexStrings `json:"apiKeyId"`
	SecretID string      `json:"secretId"`
}

// CDNConfig carries the per-environment CDN hosts of a project.
type CDNConfig struct {
	Preview CDNHost `json:"preview"`
	Live    CDNHost `json:"live"`
	Review  CDNHost `json:"review"`
	Prod    CDNHost `json:"prod"`
}

// CDNHost names a single CDN host.
type CDNHost struct {
	Host string `json:"host"`
}

// SidekickConfig carries the hosts configured for the editing extension.
type SidekickConfig struct {
	PreviewHost string `json:"previewHost"`
	LiveHost    string `json:"liveHost"`
	ReviewHost  string `json:"reviewHost"`
}

// LimitsConfig carries per-project limit settings.
type LimitsConfig struct {
	Admin AdminLimits `json:"admin"`
}

// AdminLimits carries admin API limit settings.
type AdminLimits struct {
	// TrustedHosts lists host patterns additionally trusted by the origin
	// guard. Patterns are validated before matching.
	TrustedHosts []string `json:"trustedHosts"`
}

// ContentConfig carries the content source settings of a project.
type ContentConfig struct {
	Source ContentSource `json:"source"`
}

// ContentSource names where project content is authored.
type ContentSource struct {
	URL string `json:"url"`
}

// AdminAPIKeyIDs returns the accepted admin API token ids of the project.
func (c *ProjectConfig) AdminAPIKeyIDs() []string {
	return c.Access.Admin.APIKeyID
}
