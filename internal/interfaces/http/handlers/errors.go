package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ruziba3vich/token-service/pkg/errors"
)

// writeOAuthError maps a domain error onto the RFC 6749 wire shape with
// the right status code. invalid_client gets 401 plus WWW-Authenticate;
// server_error gets 500; everything else is a 400.
func writeOAuthError(c *gin.Context, err error) {
	oauthErr := errors.AsOAuthError(err)

	switch oauthErr.Code {
	case "invalid_client":
		c.Header("WWW-Authenticate", `Basic realm="token"`)
		c.JSON(http.StatusUnauthorized, oauthErr)
	case "server_error":
		c.JSON(http.StatusInternalServerError, oauthErr)
	default:
		c.JSON(http.StatusBadRequest, oauthErr)
	}
}

func writeInvalidRequest(c *gin.Context, description string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":             "invalid_request",
		"error_description": description,
	})
}
