package dto

// AuthorizeRequest is the query of the authorization endpoint.
type AuthorizeRequest struct {
	ResponseType        string `form:"response_type" binding:"required"`
	ClientID            string `form:"client_id" binding:"required"`
	RedirectURI         string `form:"redirect_uri" binding:"required"`
	Scope               string `form:"scope"`
	State               string `form:"state"`
	Nonce               string `form:"nonce"`
	CodeChallenge       string `form:"code_challenge"`
	CodeChallengeMethod string `form:"code_challenge_method"`

	// Resource owner credentials supplied by the consent form.
	Username string `form:"username"`
	Password string `form:"password"`
}

// AuthorizeResponse carries the issued code back to the redirect URI.
type AuthorizeResponse struct {
	Code        string `json:"code"`
	State       string `json:"state,omitempty"`
	RedirectURI string `json:"-"`
}
