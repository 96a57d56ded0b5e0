package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruziba3vich/token-service/internal/application/dto"
	"github.com/ruziba3vich/token-service/internal/application/services"
)

// TokenHandler serves the token, introspection, and revocation
// endpoints.
type TokenHandler struct {
	tokenService         *services.TokenService
	introspectionService *services.IntrospectionService
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(tokenService *services.TokenService, introspectionService *services.IntrospectionService) *TokenHandler {
	return &TokenHandler{
		tokenService:         tokenService,
		introspectionService: introspectionService,
	}
}

// Token handles the token endpoint.
// POST /token
func (h *TokenHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		writeInvalidRequest(c, err.Error())
		return
	}

	applyBasicAuth(c, &req.ClientID, &req.ClientSecret)

	resp, err := h.tokenService.Issue(c.Request.Context(), &req)
	if err != nil {
		writeOAuthError(c, err)
		return
	}

	// Token responses must never be cached (RFC 6749 §5.1).
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(http.StatusOK, resp)
}

// Introspect handles RFC 7662 token introspection.
// POST /introspect
func (h *TokenHandler) Introspect(c *gin.Context) {
	var req dto.IntrospectionRequest
	if err := c.ShouldBind(&req); err != nil {
		writeInvalidRequest(c, err.Error())
		return
	}

	resp, err := h.introspectionService.Introspect(c.Request.Context(), &req)
	if err != nil {
		writeOAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Revoke handles RFC 7009 token revocation.
// POST /token/revoke
func (h *TokenHandler) Revoke(c *gin.Context) {
	var req dto.RevocationRequest
	if err := c.ShouldBind(&req); err != nil {
		writeInvalidRequest(c, err.Error())
		return
	}

	applyBasicAuth(c, &req.ClientID, &req.ClientSecret)

	if err := h.tokenService.Revoke(c.Request.Context(), &req); err != nil {
		writeOAuthError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// applyBasicAuth fills client credentials from HTTP Basic auth when the
// form did not carry them (client_secret_basic auth method).
func applyBasicAuth(c *gin.Context, clientID, clientSecret *string) {
	if *clientID != "" {
		return
	}
	if id, secret, ok := c.Request.BasicAuth(); ok {
		*clientID = id
		*clientSecret = secret
	}
}
