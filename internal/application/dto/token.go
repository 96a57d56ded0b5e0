package dto

// TokenRequest is the form-encoded body of the token endpoint. Which
// fields matter depends on grant_type.
type TokenRequest struct {
	GrantType string `form:"grant_type" binding:"required"`

	// Client credentials. May arrive here or via HTTP Basic auth.
	ClientID     string `form:"client_id"`
	ClientSecret string `form:"client_secret"`

	// authorization_code
	Code         string `form:"code"`
	RedirectURI  string `form:"redirect_uri"`
	CodeVerifier string `form:"code_verifier"`

	// password
	Username string `form:"username"`
	Password string `form:"password"`

	// refresh_token
	RefreshToken string `form:"refresh_token"`

	// uma-ticket
	Ticket string `form:"ticket"`

	Scope string `form:"scope"`
}

// TokenResponse is the RFC 6749 success response of the token endpoint.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// RevocationRequest is the RFC 7009 revocation body.
type RevocationRequest struct {
	Token         string `form:"token" binding:"required"`
	TokenTypeHint string `form:"token_type_hint"`
	ClientID      string `form:"client_id"`
	ClientSecret  string `form:"client_secret"`
}
