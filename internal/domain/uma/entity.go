package uma

import (
	"time"

	"github.com/google/uuid"
)

// ResourceSet is a protected resource registered by a resource server.
type ResourceSet struct {
	ID        uuid.UUID
	Name      string
	Owner     string   // Resource owner subject
	Scopes    []string // Scopes the resource supports
	Type      string
	IconURI   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewResourceSet creates a resource set.
func NewResourceSet(name, owner string, scopes []string) *ResourceSet {
	now := time.Now().UTC()
	return &ResourceSet{
		ID:        uuid.New(),
		Name:      name,
		Owner:     owner,
		Scopes:    scopes,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasScope checks if the resource supports the given scope.
func (rs *ResourceSet) HasScope(scope string) bool {
	for _, s := range rs.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// HasScopes checks if the resource supports all given scopes.
func (rs *ResourceSet) HasScopes(scopes []string) bool {
	for _, s := range scopes {
		if !rs.HasScope(s) {
			return false
		}
	}
	return true
}

// Ticket is a single-use UMA permission ticket. Same lifecycle as an
// authorization code: Issued -> Resolved (terminal) or Issued -> Expired.
type Ticket struct {
	ID              string
	ClientID        string // Client the ticket was issued to
	ResourceSetID   uuid.UUID
	RequestedScopes []string
	Resolved        bool
	CreatedAt       time.Time
	ExpiresAt       time.Time
}

// NewTicket creates a permission ticket.
func NewTicket(id, clientID string, resourceSetID uuid.UUID, scopes []string, ttl time.Duration) *Ticket {
	now := time.Now().UTC()
	return &Ticket{
		ID:              id,
		ClientID:        clientID,
		ResourceSetID:   resourceSetID,
		RequestedScopes: scopes,
		CreatedAt:       now,
		ExpiresAt:       now.Add(ttl),
	}
}

// IsExpired checks if the ticket has expired.
func (t *Ticket) IsExpired() bool {
	return time.Now().UTC().After(t.ExpiresAt)
}

// Permission is the grant carried inside an RPT.
type Permission struct {
	ResourceSetID string   `json:"resource_set_id"`
	Scopes        []string `json:"scopes"`
}
