package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ruziba3vich/token-service/internal/application/dto"
	"github.com/ruziba3vich/token-service/internal/domain/uma"
	"github.com/ruziba3vich/token-service/internal/infrastructure/crypto"
	"github.com/ruziba3vich/token-service/pkg/errors"
	"github.com/ruziba3vich/token-service/pkg/logger"
)

// UMAService handles resource set registration and permission ticket
// issuance. Ticket redemption happens on the token endpoint via the
// uma-ticket grant.
type UMAService struct {
	resourceSets uma.ResourceSetRepository
	tickets      uma.TicketRepository
	tokenGen     *crypto.TokenGenerator
	ticketTTL    time.Duration
	log          logger.Logger
}

// NewUMAService creates a UMA service.
func NewUMAService(resourceSets uma.ResourceSetRepository, tickets uma.TicketRepository, tokenGen *crypto.TokenGenerator, ticketTTL time.Duration, log logger.Logger) *UMAService {
	return &UMAService{
		resourceSets: resourceSets,
		tickets:      tickets,
		tokenGen:     tokenGen,
		ticketTTL:    ticketTTL,
		log:          log.With(logger.Component("uma_service")),
	}
}

// RegisterResourceSet registers a protected resource.
func (s *UMAService) RegisterResourceSet(ctx context.Context, req *dto.ResourceSetRequest) (*dto.ResourceSetResponse, error) {
	rs := uma.NewResourceSet(req.Name, req.Owner, req.Scopes)
	rs.Type = req.Type
	rs.IconURI = req.IconURI

	if err := s.resourceSets.Create(ctx, rs); err != nil {
		return nil, err
	}

	s.log.Info("resource set registered",
		logger.String("resource_set_id", rs.ID.String()),
		logger.String("owner", rs.Owner))

	return resourceSetResponse(rs), nil
}

// GetResourceSet retrieves a registered resource set.
func (s *UMAService) GetResourceSet(ctx context.Context, id string) (*dto.ResourceSetResponse, error) {
	rsID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "invalid resource set id")
	}

	rs, err := s.resourceSets.GetByID(ctx, rsID)
	if err != nil {
		return nil, err
	}
	return resourceSetResponse(rs), nil
}

// UpdateResourceSet replaces a resource set's registration.
func (s *UMAService) UpdateResourceSet(ctx context.Context, id string, req *dto.ResourceSetRequest) (*dto.ResourceSetResponse, error) {
	rsID, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "invalid resource set id")
	}

	rs, err := s.resourceSets.GetByID(ctx, rsID)
	if err != nil {
		return nil, err
	}

	rs.Name = req.Name
	rs.Owner = req.Owner
	rs.Scopes = req.Scopes
	rs.Type = req.Type
	rs.IconURI = req.IconURI

	if err := s.resourceSets.Update(ctx, rs); err != nil {
		return nil, err
	}
	return resourceSetResponse(rs), nil
}

// DeleteResourceSet removes a resource set registration.
func (s *UMAService) DeleteResourceSet(ctx context.Context, id string) error {
	rsID, err := uuid.Parse(id)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidRequest, "invalid resource set id")
	}
	return s.resourceSets.Delete(ctx, rsID)
}

// ListResourceSets lists an owner's registered resources.
func (s *UMAService) ListResourceSets(ctx context.Context, owner string, limit, offset int) ([]*dto.ResourceSetResponse, error) {
	sets, err := s.resourceSets.List(ctx, owner, limit, offset)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ResourceSetResponse, len(sets))
	for i, rs := range sets {
		result[i] = resourceSetResponse(rs)
	}
	return result, nil
}

// RequestPermission issues a single-use permission ticket for the
// requested scopes on a resource set. The requesting client redeems it
// at the token endpoint.
func (s *UMAService) RequestPermission(ctx context.Context, clientID string, req *dto.PermissionRequest) (*dto.PermissionResponse, error) {
	rsID, err := uuid.Parse(req.ResourceSetID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "invalid resource set id")
	}

	rs, err := s.resourceSets.GetByID(ctx, rsID)
	if err != nil {
		return nil, err
	}
	if !rs.HasScopes(req.Scopes) {
		return nil, errors.ErrInvalidScope
	}

	ticketID, err := s.tokenGen.GenerateTicketID()
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate ticket")
	}

	t := uma.NewTicket(ticketID, clientID, rs.ID, req.Scopes, s.ticketTTL)
	if err := s.tickets.Store(ctx, t); err != nil {
		return nil, err
	}

	s.log.Info("permission ticket issued",
		logger.ClientID(clientID),
		logger.String("resource_set_id", rs.ID.String()))

	return &dto.PermissionResponse{Ticket: ticketID}, nil
}

func resourceSetResponse(rs *uma.ResourceSet) *dto.ResourceSetResponse {
	return &dto.ResourceSetResponse{
		ID:      rs.ID.String(),
		Name:    rs.Name,
		Owner:   rs.Owner,
		Scopes:  rs.Scopes,
		Type:    rs.Type,
		IconURI: rs.IconURI,
	}
}
