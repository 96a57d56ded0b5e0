package dto

// OpenIDConfiguration is the OIDC discovery document.
type OpenIDConfiguration struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	JWKSURI                           string   `json:"jwks_uri"`
	IntrospectionEndpoint             string   `json:"introspection_endpoint"`
	RevocationEndpoint                string   `json:"revocation_endpoint"`
	ResourceRegistrationEndpoint      string   `json:"resource_registration_endpoint"`
	PermissionEndpoint                string   `json:"permission_endpoint"`
	ResponseTypesSupported            []string `json:"response_types_supported"`
	GrantTypesSupported               []string `json:"grant_types_supported"`
	ScopesSupported                   []string `json:"scopes_supported"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported"`
	IDTokenSigningAlgValuesSupported  []string `json:"id_token_signing_alg_values_supported"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported"`
	SubjectTypesSupported             []string `json:"subject_types_supported"`
}

// NewOpenIDConfiguration builds the discovery document for an issuer.
func NewOpenIDConfiguration(issuer string) *OpenIDConfiguration {
	return &OpenIDConfiguration{
		Issuer:                       issuer,
		AuthorizationEndpoint:        issuer + "/authorize",
		TokenEndpoint:                issuer + "/token",
		JWKSURI:                      issuer + "/jwks.json",
		IntrospectionEndpoint:        issuer + "/introspect",
		RevocationEndpoint:           issuer + "/token/revoke",
		ResourceRegistrationEndpoint: issuer + "/uma/resource_set",
		PermissionEndpoint:           issuer + "/uma/permission",
		ResponseTypesSupported:       []string{"code"},
		GrantTypesSupported: []string{
			"authorization_code",
			"password",
			"client_credentials",
			"refresh_token",
			"urn:ietf:params:oauth:grant-type:uma-ticket",
		},
		ScopesSupported:                   []string{"openid", "profile", "email", "offline_access"},
		TokenEndpointAuthMethodsSupported: []string{"client_secret_post", "client_secret_basic"},
		IDTokenSigningAlgValuesSupported:  []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"},
		CodeChallengeMethodsSupported:     []string{"S256", "plain"},
		SubjectTypesSupported:             []string{"public"},
	}
}
