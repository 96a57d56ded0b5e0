package dto

// ResourceSetRequest registers or updates a UMA resource set.
type ResourceSetRequest struct {
	Name    string   `json:"name" binding:"required"`
	Owner   string   `json:"owner" binding:"required"`
	Scopes  []string `json:"scopes" binding:"required,min=1"`
	Type    string   `json:"type"`
	IconURI string   `json:"icon_uri"`
}

// ResourceSetResponse describes a registered resource set.
type ResourceSetResponse struct {
	ID      string   `json:"_id"`
	Name    string   `json:"name"`
	Owner   string   `json:"owner"`
	Scopes  []string `json:"scopes"`
	Type    string   `json:"type,omitempty"`
	IconURI string   `json:"icon_uri,omitempty"`
}

// PermissionRequest asks for a ticket covering scopes on a resource set.
type PermissionRequest struct {
	ResourceSetID string   `json:"resource_set_id" binding:"required"`
	Scopes        []string `json:"scopes" binding:"required,min=1"`
}

// PermissionResponse carries the issued ticket.
type PermissionResponse struct {
	Ticket string `json:"ticket"`
}
