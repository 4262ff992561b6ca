package auth

// Scheme names used in the published securitySchemes object.
const (
	SchemeOAuth2 = "oauth2AuthCode"
	SchemeBearer = "bearerAuth"
)

// SecurityScheme is one OpenAPI 3 securitySchemes entry.
type SecurityScheme struct {
	Type         string      `json:"type"`
	Description  string      `json:"description,omitempty"`
	Scheme       string      `json:"scheme,omitempty"`
	BearerFormat string      `json:"bearerFormat,omitempty"`
	Flows        *OAuthFlows `json:"flows,omitempty"`
}

// OAuthFlows holds the flows of an oauth2 security scheme. The kit only
// publishes the authorization-code flow.
type OAuthFlows struct {
	AuthorizationCode *OAuthFlow `json:"authorizationCode,omitempty"`
}

// OAuthFlow describes a single OAuth2 flow.
type OAuthFlow struct {
	AuthorizationURL string            `json:"authorizationUrl"`
	TokenURL         string            `json:"tokenUrl"`
	Scopes           map[string]string `json:"scopes"`
}

// Descriptions for the scopes the kit advertises by default. Unknown scopes
// fall back to the scope name.
var scopeDescriptions = map[string]string{
	"openid":  "OpenID Connect sign-in",
	"email":   "Read the user's email address",
	"profile": "Read basic profile information",
}

// SecuritySchemes returns OpenAPI securitySchemes metadata describing the
// two ways callers present credentials: the interactive authorization-code
// flow with PKCE, and a bare bearer token for direct API use. Presentation
// metadata only; both routes land in the same validator.
func (a *OIDCAuth) SecuritySchemes() map[string]SecurityScheme {
	scopes := make(map[string]string, len(a.cfg.Scopes))
	for _, s := range a.cfg.Scopes {
		desc := scopeDescriptions[s]
		if desc == "" {
			desc = s
		}
		scopes[s] = desc
	}

	pkceNote := ""
	if a.meta.SupportsPKCE() {
		pkceNote = " PKCE (S256) is supported and should be used."
	}

	return map[string]SecurityScheme{
		SchemeOAuth2: {
			Type:        "oauth2",
			Description: "Interactive sign-in via the authorization-code flow." + pkceNote,
			Flows: &OAuthFlows{
				AuthorizationCode: &OAuthFlow{
					AuthorizationURL: a.meta.AuthorizationEndpoint,
					TokenURL:         a.meta.TokenEndpoint,
					Scopes:           scopes,
				},
			},
		},
		SchemeBearer: {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "Direct API access with a pre-issued bearer token.",
		},
	}
}

// SwaggerInitConfig returns the OAuth init hints interactive documentation
// UIs consume (Swagger UI's initOAuth object).
func (a *OIDCAuth) SwaggerInitConfig() map[string]any {
	return map[string]any{
		"clientId":                          a.cfg.ClientID,
		"scopes":                            a.cfg.Scopes,
		"usePkceWithAuthorizationCodeGrant": true,
	}
}
