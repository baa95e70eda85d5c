package idp

import "strings"

// Built-in provider descriptors. Credentials come from configuration; the
// endpoints and trust rules are fixed per provider.

// Provider names used for registry lookup and route wiring.
const (
	NameIMS      = "ims"
	NameMicro    = "microsoft"
	NameGoogle   = "google"
	NameAPIToken = "apitoken"
)

// IMSOptions configures the platform access-token provider.
type IMSOptions struct {
	ClientID     string
	ClientSecret string
}

// IMS returns the platform access-token provider descriptor.
func IMS(opts IMSOptions) *Descriptor {
	return &Descriptor{
		Name: NameIMS,
		Discovery: Discovery{
			Issuer:                "https://ims-na1.adobelogin.com",
			AuthorizationEndpoint: "https://ims-na1.adobelogin.com/ims/authorize/v2",
			TokenEndpoint:         "https://ims-na1.adobelogin.com/ims/token/v3",
			JWKSURL:               "https://ims-na1.adobelogin.com/ims/keys",
		},
		Scope:              "AdobeID,openid",
		ClientID:           opts.ClientID,
		ClientSecret:       opts.ClientSecret,
		LoginRoute:         "/login/ims",
		LoginRedirectRoute: "/login/ims/ack",
		IMS:                true,
		AccessClients:      []string{"ims-na1"},
	}
}

// MicrosoftOptions configures the Microsoft ID-token provider.
type MicrosoftOptions struct {
	ClientID     string
	ClientSecret string
}

// Microsoft returns the Microsoft ID-token provider descriptor. Tokens from
// the common endpoint carry tenant-specific issuers, so the issuer check
// validates shape rather than an exact value.
func Microsoft(opts MicrosoftOptions) *Descriptor {
	return &Descriptor{
		Name: NameMicro,
		Discovery: Discovery{
			Issuer:                "https://login.microsoftonline.com/common/v2.0",
			AuthorizationEndpoint: "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
			TokenEndpoint:         "https://login.microsoftonline.com/common/oauth2/v2.0/token",
			JWKSURL:               "https://login.microsoftonline.com/common/discovery/v2.0/keys",
		},
		Scope:        "openid profile email",
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		ValidateIssuer: func(issuer string) bool {
			return strings.HasPrefix(issuer, "https://login.microsoftonline.com/") &&
				strings.HasSuffix(issuer, "/v2.0")
		},
		LoginRoute:         "/login/microsoft",
		LoginRedirectRoute: "/login/microsoft/ack",
	}
}

// GoogleOptions configures the Google ID-token provider.
type GoogleOptions struct {
	ClientID     string
	ClientSecret string
}

// Google returns the Google ID-token provider descriptor.
func Google(opts GoogleOptions) *Descriptor {
	return &Descriptor{
		Name: NameGoogle,
		Discovery: Discovery{
			Issuer:                "https://accounts.google.com",
			AuthorizationEndpoint: "https://accounts.google.com/o/oauth2/v2/auth",
			TokenEndpoint:         "https://oauth2.googleapis.com/token",
			JWKSURL:               "https://www.googleapis.com/oauth2/v3/certs",
		},
		Scope:              "openid profile email",
		ClientID:           opts.ClientID,
		ClientSecret:       opts.ClientSecret,
		LoginRoute:         "/login/google",
		LoginRedirectRoute: "/login/google/ack",
	}
}

// APITokenOptions configures the admin API token provider.
type APITokenOptions struct {
	Issuer string
	Secret []byte
}

// APIToken returns the descriptor verifying admin-issued HS256 API tokens.
func APIToken(opts APITokenOptions) *Descriptor {
	issuer := opts.Issuer
	if issuer == "" {
		issuer = "admin-gateway"
	}
	return &Descriptor{
		Name:       NameAPIToken,
		Discovery:  Discovery{Issuer: issuer},
		HMACSecret: opts.Secret,
	}
}
