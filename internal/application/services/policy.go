package services

import (
	"context"

	"github.com/ruziba3vich/token-service/internal/domain/uma"
)

// ScopePolicyDecider is the default authorization policy: a client may
// be granted exactly the scopes the resource set declares. Deployments
// with richer rules swap in their own uma.PolicyDecider.
type ScopePolicyDecider struct{}

func NewScopePolicyDecider() *ScopePolicyDecider {
	return &ScopePolicyDecider{}
}

func (d *ScopePolicyDecider) Authorize(_ context.Context, _ string, rs *uma.ResourceSet, scopes []string) (bool, error) {
	return rs.HasScopes(scopes), nil
}
