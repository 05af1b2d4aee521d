package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ClientService issues and re-registers opaque per-device client ids.
type ClientService struct {
	repo ClientRepository
}

// ClientRepository interface for dependency injection.
type ClientRepository interface {
	EnsureClient(ctx context.Context, clientID string) error
}

// NewClientService creates a new client service.
func NewClientService(repo ClientRepository) *ClientService {
	return &ClientService{repo: repo}
}

// Identify returns the authoritative client id. A previously issued id is
// re-registered and kept; anything else (absent or malformed) gets a freshly
// minted one.
func (s *ClientService) Identify(ctx context.Context, existing *string) (string, error) {
	clientID := ""
	if existing != nil {
		if _, err := uuid.Parse(*existing); err == nil {
			clientID = *existing
		}
	}
	if clientID == "" {
		clientID = newID()
	}

	if err := s.repo.EnsureClient(ctx, clientID); err != nil {
		return "", fmt.Errorf("service: failed to register client: %w", err)
	}
	log.Debug().Str("client_id", clientID).Msg("client identified")
	return clientID, nil
}
