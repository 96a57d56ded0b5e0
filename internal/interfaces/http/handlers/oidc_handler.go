package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/ruziba3vich/token-service/internal/application/dto"
	"github.com/ruziba3vich/token-service/internal/application/services"
	"github.com/ruziba3vich/token-service/pkg/errors"
)

// OIDCHandler serves discovery, JWKS, and the authorization endpoint.
type OIDCHandler struct {
	authzService *services.AuthorizationService
	keyService   *services.KeyService
	issuer       string
}

// NewOIDCHandler creates a new OIDC handler.
func NewOIDCHandler(authzService *services.AuthorizationService, keyService *services.KeyService, issuer string) *OIDCHandler {
	return &OIDCHandler{
		authzService: authzService,
		keyService:   keyService,
		issuer:       issuer,
	}
}

// OpenIDConfiguration returns the OIDC discovery document.
// GET /.well-known/openid-configuration
func (h *OIDCHandler) OpenIDConfiguration(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewOpenIDConfiguration(h.issuer))
}

// JWKS returns the JSON Web Key Set.
// GET /jwks.json
func (h *OIDCHandler) JWKS(c *gin.Context) {
	jwks, err := h.keyService.GetJWKS(c.Request.Context())
	if err != nil {
		writeOAuthError(c, err)
		return
	}

	// Verifiers may cache for an hour; rotation keeps old keys
	// published until they expire.
	c.Header("Cache-Control", "public, max-age=3600")
	c.JSON(http.StatusOK, jwks)
}

// Authorize handles the authorization endpoint. The resource owner's
// credentials arrive with the consent form submission.
// POST /authorize
func (h *OIDCHandler) Authorize(c *gin.Context) {
	var req dto.AuthorizeRequest
	if err := c.ShouldBind(&req); err != nil {
		writeInvalidRequest(c, err.Error())
		return
	}

	resp, err := h.authzService.Authorize(c.Request.Context(), &req)
	if err != nil {
		// An unregistered redirect URI must never receive the error.
		if errors.Is(err, errors.ErrInvalidRedirectURI) || errors.Is(err, errors.ErrClientNotFound) {
			writeOAuthError(c, err)
			return
		}
		if req.RedirectURI != "" {
			c.Redirect(http.StatusFound, buildErrorRedirect(req.RedirectURI, err, req.State))
			return
		}
		writeOAuthError(c, err)
		return
	}

	c.Redirect(http.StatusFound, buildCodeRedirect(resp))
}

func buildCodeRedirect(resp *dto.AuthorizeResponse) string {
	u, err := url.Parse(resp.RedirectURI)
	if err != nil {
		return resp.RedirectURI
	}
	q := u.Query()
	q.Set("code", resp.Code)
	if resp.State != "" {
		q.Set("state", resp.State)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func buildErrorRedirect(redirectURI string, err error, state string) string {
	u, parseErr := url.Parse(redirectURI)
	if parseErr != nil {
		return redirectURI
	}
	oauthErr := errors.AsOAuthError(err)
	q := u.Query()
	q.Set("error", oauthErr.Code)
	if oauthErr.Description != "" {
		q.Set("error_description", oauthErr.Description)
	}
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
