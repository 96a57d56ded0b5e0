package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ruziba3vich/token-service/internal/application/dto"
	"github.com/ruziba3vich/token-service/internal/application/services"
)

// UMAHandler serves resource set registration and the permission
// endpoint.
type UMAHandler struct {
	umaService *services.UMAService
}

// NewUMAHandler creates a new UMA handler.
func NewUMAHandler(umaService *services.UMAService) *UMAHandler {
	return &UMAHandler{umaService: umaService}
}

// CreateResourceSet registers a protected resource.
// POST /uma/resource_set
func (h *UMAHandler) CreateResourceSet(c *gin.Context) {
	var req dto.ResourceSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, err.Error())
		return
	}

	resp, err := h.umaService.RegisterResourceSet(c.Request.Context(), &req)
	if err != nil {
		writeOAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetResourceSet retrieves a resource set.
// GET /uma/resource_set/:id
func (h *UMAHandler) GetResourceSet(c *gin.Context) {
	resp, err := h.umaService.GetResourceSet(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeOAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateResourceSet replaces a resource set registration.
// PUT /uma/resource_set/:id
func (h *UMAHandler) UpdateResourceSet(c *gin.Context) {
	var req dto.ResourceSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, err.Error())
		return
	}

	resp, err := h.umaService.UpdateResourceSet(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		writeOAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteResourceSet removes a resource set registration.
// DELETE /uma/resource_set/:id
func (h *UMAHandler) DeleteResourceSet(c *gin.Context) {
	if err := h.umaService.DeleteResourceSet(c.Request.Context(), c.Param("id")); err != nil {
		writeOAuthError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListResourceSets lists an owner's registered resources.
// GET /uma/resource_set?owner=...
func (h *UMAHandler) ListResourceSets(c *gin.Context) {
	owner := c.Query("owner")
	if owner == "" {
		writeInvalidRequest(c, "owner is required")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := h.umaService.ListResourceSets(c.Request.Context(), owner, limit, offset)
	if err != nil {
		writeOAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RequestPermission issues a permission ticket.
// POST /uma/permission
func (h *UMAHandler) RequestPermission(c *gin.Context) {
	clientID := c.Query("client_id")
	if clientID == "" {
		writeInvalidRequest(c, "client_id is required")
		return
	}

	var req dto.PermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidRequest(c, err.Error())
		return
	}

	resp, err := h.umaService.RequestPermission(c.Request.Context(), clientID, &req)
	if err != nil {
		writeOAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
