package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"placemap/internal/models"
	"placemap/internal/repository"
)

// LocationService contains the business logic for visited and faved
// locations.
type LocationService struct {
	repo LocationRepository
}

// LocationRepository interface for dependency injection.
type LocationRepository interface {
	ClientExists(ctx context.Context, clientID string) (bool, error)
	InsertFaved(ctx context.Context, loc models.Location) error
	GetFaved(ctx context.Context, id string) (*models.Location, error)
	ListFaved(ctx context.Context, clientID string, page, size int) ([]models.Location, int64, error)
	ListFavedByCategory(ctx context.Context, categoryID, clientID string, page, size int) ([]models.Location, int64, error)
	UpdateFavedCategory(ctx context.Context, id string, categoryID *string) error
	InsertVisited(ctx context.Context, loc models.Location) error
	ListVisited(ctx context.Context, clientID string, page, size int) ([]models.Location, int64, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
}

// NewLocationService creates a new location service.
func NewLocationService(repo LocationRepository) *LocationService {
	return &LocationService{repo: repo}
}

// SaveVisited appends a visited-history entry for the client.
func (s *LocationService) SaveVisited(ctx context.Context, req models.LocationRequest) (*models.Location, error) {
	if err := s.requireClient(ctx, req.ClientID); err != nil {
		return nil, err
	}

	loc := models.Location{
		ID:        newID(),
		PlaceDesc: req.PlaceDesc,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		CreatedAt: time.Now().UTC(),
		ClientID:  req.ClientID,
	}
	if err := s.repo.InsertVisited(ctx, loc); err != nil {
		return nil, fmt.Errorf("service: failed to save visited location: %w", err)
	}
	log.Debug().Str("id", loc.ID).Str("client_id", loc.ClientID).Msg("saved visited location")
	return &loc, nil
}

// SaveFaved creates a favorite. An unknown or foreign category does not fail
// the request: the location is saved uncategorized and the response carries a
// message saying so.
func (s *LocationService) SaveFaved(ctx context.Context, req models.LocationRequest) (*models.Location, error) {
	if err := s.requireClient(ctx, req.ClientID); err != nil {
		return nil, err
	}

	loc := models.Location{
		ID:        newID(),
		PlaceDesc: req.PlaceDesc,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		CreatedAt: time.Now().UTC(),
		ClientID:  req.ClientID,
	}

	if req.CategoryID != nil {
		cat, err := s.ownedCategory(ctx, *req.CategoryID, req.ClientID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			loc.Message = fmt.Sprintf("Category not found: %s. Location saved without category.", *req.CategoryID)
			log.Warn().Str("category_id", *req.CategoryID).Msg(loc.Message)
		} else {
			loc.CategoryID = &cat.ID
			loc.CategoryName = &cat.CategoryName
		}
	}

	if err := s.repo.InsertFaved(ctx, loc); err != nil {
		return nil, fmt.Errorf("service: failed to save faved location: %w", err)
	}
	log.Debug().Str("id", loc.ID).Str("client_id", loc.ClientID).Msg("saved faved location")
	return &loc, nil
}

// GetVisited returns a page of the client's visited history, newest first.
func (s *LocationService) GetVisited(ctx context.Context, clientID string, page, size int) (models.Page[models.Location], error) {
	page, size = clampPaging(page, size)
	locations, total, err := s.repo.ListVisited(ctx, clientID, page, size)
	if err != nil {
		return models.Page[models.Location]{}, fmt.Errorf("service: failed to list visited locations: %w", err)
	}
	return models.NewPage(locations, page, size, total), nil
}

// GetFaved returns a page of the client's favorites, newest first.
func (s *LocationService) GetFaved(ctx context.Context, clientID string, page, size int) (models.Page[models.Location], error) {
	page, size = clampPaging(page, size)
	locations, total, err := s.repo.ListFaved(ctx, clientID, page, size)
	if err != nil {
		return models.Page[models.Location]{}, fmt.Errorf("service: failed to list faved locations: %w", err)
	}
	return models.NewPage(locations, page, size, total), nil
}

// GetFavedByCategory returns a page of the client's favorites in one
// category.
func (s *LocationService) GetFavedByCategory(ctx context.Context, categoryID, clientID string, page, size int) (models.Page[models.Location], error) {
	page, size = clampPaging(page, size)
	locations, total, err := s.repo.ListFavedByCategory(ctx, categoryID, clientID, page, size)
	if err != nil {
		return models.Page[models.Location]{}, fmt.Errorf("service: failed to list faved locations by category: %w", err)
	}
	return models.NewPage(locations, page, size, total), nil
}

// AssignCategory reassigns (or, with nil, clears) a favorite's category. The
// favorite must belong to the requesting client. As with SaveFaved, an
// unknown category keeps the old assignment and reports a message.
func (s *LocationService) AssignCategory(ctx context.Context, locationID string, categoryID *string, clientID string) (*models.Location, error) {
	existing, err := s.repo.GetFaved(ctx, locationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to load faved location: %w", err)
	}
	if existing.ClientID != clientID {
		return nil, ErrNotOwner
	}

	message := ""
	if categoryID != nil {
		cat, err := s.ownedCategory(ctx, *categoryID, clientID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			message = fmt.Sprintf("Category not found: %s. Category not updated.", *categoryID)
			log.Warn().Str("category_id", *categoryID).Msg(message)
		} else {
			if err := s.repo.UpdateFavedCategory(ctx, locationID, &cat.ID); err != nil {
				return nil, fmt.Errorf("service: failed to update category: %w", err)
			}
		}
	} else {
		if err := s.repo.UpdateFavedCategory(ctx, locationID, nil); err != nil {
			return nil, fmt.Errorf("service: failed to clear category: %w", err)
		}
	}

	updated, err := s.repo.GetFaved(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to reload faved location: %w", err)
	}
	updated.Message = message
	return updated, nil
}

func (s *LocationService) requireClient(ctx context.Context, clientID string) error {
	exists, err := s.repo.ClientExists(ctx, clientID)
	if err != nil {
		return fmt.Errorf("service: failed to check client: %w", err)
	}
	if !exists {
		return fmt.Errorf("client not found %s: %w", clientID, ErrNotFound)
	}
	return nil
}

// ownedCategory returns the category when it exists and belongs to the
// client, nil when it does not (soft failure), and an error only for
// infrastructure failures.
func (s *LocationService) ownedCategory(ctx context.Context, categoryID, clientID string) (*models.Category, error) {
	cat, err := s.repo.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("service: failed to load category: %w", err)
	}
	if cat.ClientID != clientID {
		return nil, nil
	}
	return cat, nil
}

func clampPaging(page, size int) (int, int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source does; fall back to v4.
		return uuid.NewString()
	}
	return id.String()
}
