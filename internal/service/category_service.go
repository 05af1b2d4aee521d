package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"placemap/internal/models"
	"placemap/internal/repository"
)

// CategoryService contains the business logic for favorite categories.
type CategoryService struct {
	repo CategoryRepository
}

// CategoryRepository interface for dependency injection.
type CategoryRepository interface {
	ClientExists(ctx context.Context, clientID string) (bool, error)
	InsertCategory(ctx context.Context, cat models.Category) error
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	UpdateCategoryName(ctx context.Context, id, name string) error
	ListCategories(ctx context.Context, clientID string, page, size int) ([]models.Category, int64, error)
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Create stores a new category for the client.
func (s *CategoryService) Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	exists, err := s.repo.ClientExists(ctx, req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to check client: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("client not found %s: %w", req.ClientID, ErrNotFound)
	}

	now := time.Now().UTC()
	cat := models.Category{
		ID:           newID(),
		CategoryName: req.CategoryName,
		CreatedAt:    now,
		UpdatedAt:    now,
		ClientID:     req.ClientID,
	}
	if err := s.repo.InsertCategory(ctx, cat); err != nil {
		return nil, fmt.Errorf("service: failed to create category: %w", err)
	}
	log.Debug().Str("id", cat.ID).Str("client_id", cat.ClientID).Msg("created category")
	return &cat, nil
}

// Update renames a category. A category belonging to another client is
// reported as not found, never as someone else's.
func (s *CategoryService) Update(ctx context.Context, id, clientID string, req models.CategoryUpdateRequest) (*models.Category, error) {
	if _, err := s.getOwned(ctx, id, clientID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCategoryName(ctx, id, req.CategoryName); err != nil {
		return nil, fmt.Errorf("service: failed to update category: %w", err)
	}
	return s.getOwned(ctx, id, clientID)
}

// Get returns one of the client's categories.
func (s *CategoryService) Get(ctx context.Context, id, clientID string) (*models.Category, error) {
	return s.getOwned(ctx, id, clientID)
}

// List returns a page of the client's categories, newest first.
func (s *CategoryService) List(ctx context.Context, clientID string, page, size int) (models.Page[models.Category], error) {
	page, size = clampPaging(page, size)
	categories, total, err := s.repo.ListCategories(ctx, clientID, page, size)
	if err != nil {
		return models.Page[models.Category]{}, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return models.NewPage(categories, page, size, total), nil
}

func (s *CategoryService) getOwned(ctx context.Context, id, clientID string) (*models.Category, error) {
	cat, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to load category: %w", err)
	}
	if cat.ClientID != clientID {
		return nil, ErrNotFound
	}
	return cat, nil
}
