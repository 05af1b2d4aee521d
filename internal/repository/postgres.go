package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"placemap/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("repository: not found")

// Repository implements the backend's storage on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// --- clients ---

// EnsureClient inserts the client id if it is not already registered.
func (r *Repository) EnsureClient(ctx context.Context, clientID string) error {
	sql := `
		INSERT INTO clients (client_id, created_at)
		VALUES ($1, $2)
		ON CONFLICT (client_id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, sql, clientID, time.Now().UTC()); err != nil {
		return fmt.Errorf("repository: failed to ensure client: %w", err)
	}
	return nil
}

// ClientExists reports whether the client id is registered.
func (r *Repository) ClientExists(ctx context.Context, clientID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM clients WHERE client_id = $1)`, clientID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("repository: failed to check client: %w", err)
	}
	return exists, nil
}

// --- locations ---

const locationColumns = `
	l.id, l.place_desc, l.latitude, l.longitude, l.created_at, l.client_id,
	l.category_id, c.category_name
`

// InsertFaved stores a favorite location.
func (r *Repository) InsertFaved(ctx context.Context, loc models.Location) error {
	sql := `
		INSERT INTO faved_locations (id, client_id, place_desc, latitude, longitude, category_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, sql, loc.ID, loc.ClientID, loc.PlaceDesc, loc.Latitude, loc.Longitude, loc.CategoryID, loc.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert faved location: %w", err)
	}
	return nil
}

// GetFaved returns one favorite by id, with its category name joined in.
func (r *Repository) GetFaved(ctx context.Context, id string) (*models.Location, error) {
	sql := `
		SELECT ` + locationColumns + `
		FROM faved_locations l
		LEFT JOIN categories c ON c.id = l.category_id
		WHERE l.id = $1
	`
	loc, err := scanLocation(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to get faved location: %w", err)
	}
	return loc, nil
}

// ListFaved returns one page of a client's favorites, newest first, plus the
// total element count.
func (r *Repository) ListFaved(ctx context.Context, clientID string, page, size int) ([]models.Location, int64, error) {
	sql := `
		SELECT ` + locationColumns + `
		FROM faved_locations l
		LEFT JOIN categories c ON c.id = l.category_id
		WHERE l.client_id = $1
		ORDER BY l.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.listLocations(ctx, sql,
		`SELECT COUNT(*) FROM faved_locations WHERE client_id = $1`,
		clientID, page, size)
}

// ListFavedByCategory returns one page of a client's favorites in a category.
func (r *Repository) ListFavedByCategory(ctx context.Context, categoryID, clientID string, page, size int) ([]models.Location, int64, error) {
	sql := `
		SELECT ` + locationColumns + `
		FROM faved_locations l
		LEFT JOIN categories c ON c.id = l.category_id
		WHERE l.client_id = $1 AND l.category_id = $4
		ORDER BY l.created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, sql, clientID, size, page*size, categoryID)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to list faved by category: %w", err)
	}
	locations, err := collectLocations(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM faved_locations WHERE client_id = $1 AND category_id = $2`,
		clientID, categoryID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count faved by category: %w", err)
	}
	return locations, total, nil
}

// UpdateFavedCategory sets (or clears, with nil) a favorite's category.
func (r *Repository) UpdateFavedCategory(ctx context.Context, id string, categoryID *string) error {
	tag, err := r.db.Exec(ctx, `UPDATE faved_locations SET category_id = $2 WHERE id = $1`, id, categoryID)
	if err != nil {
		return fmt.Errorf("repository: failed to update faved category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertVisited stores a visited-history entry.
func (r *Repository) InsertVisited(ctx context.Context, loc models.Location) error {
	sql := `
		INSERT INTO visited_locations (id, client_id, place_desc, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, sql, loc.ID, loc.ClientID, loc.PlaceDesc, loc.Latitude, loc.Longitude, loc.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert visited location: %w", err)
	}
	return nil
}

// ListVisited returns one page of a client's visited history, newest first.
func (r *Repository) ListVisited(ctx context.Context, clientID string, page, size int) ([]models.Location, int64, error) {
	sql := `
		SELECT l.id, l.place_desc, l.latitude, l.longitude, l.created_at, l.client_id,
		       NULL::uuid, NULL::text
		FROM visited_locations l
		WHERE l.client_id = $1
		ORDER BY l.created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.listLocations(ctx, sql,
		`SELECT COUNT(*) FROM visited_locations WHERE client_id = $1`,
		clientID, page, size)
}

// --- categories ---

// InsertCategory stores a category.
func (r *Repository) InsertCategory(ctx context.Context, cat models.Category) error {
	sql := `
		INSERT INTO categories (id, client_id, category_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, sql, cat.ID, cat.ClientID, cat.CategoryName, cat.CreatedAt, cat.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert category: %w", err)
	}
	return nil
}

// GetCategory returns one category by id.
func (r *Repository) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	sql := `
		SELECT id, category_name, created_at, updated_at, client_id
		FROM categories
		WHERE id = $1
	`
	var cat models.Category
	err := r.db.QueryRow(ctx, sql, id).Scan(&cat.ID, &cat.CategoryName, &cat.CreatedAt, &cat.UpdatedAt, &cat.ClientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to get category: %w", err)
	}
	return &cat, nil
}

// UpdateCategoryName renames a category.
func (r *Repository) UpdateCategoryName(ctx context.Context, id, name string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE categories SET category_name = $2, updated_at = $3 WHERE id = $1`,
		id, name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("repository: failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCategories returns one page of a client's categories, newest first.
func (r *Repository) ListCategories(ctx context.Context, clientID string, page, size int) ([]models.Category, int64, error) {
	sql := `
		SELECT id, category_name, created_at, updated_at, client_id
		FROM categories
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, sql, clientID, size, page*size)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.CategoryName, &cat.CreatedAt, &cat.UpdatedAt, &cat.ClientID); err != nil {
			return nil, 0, fmt.Errorf("repository: failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repository: error iterating rows: %w", err)
	}

	var total int64
	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM categories WHERE client_id = $1`, clientID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count categories: %w", err)
	}
	return categories, total, nil
}

// --- helpers ---

func (r *Repository) listLocations(ctx context.Context, listSQL, countSQL, clientID string, page, size int) ([]models.Location, int64, error) {
	rows, err := r.db.Query(ctx, listSQL, clientID, size, page*size)
	if err != nil {
		return nil, 0, fmt.Errorf("repository: failed to list locations: %w", err)
	}
	locations, err := collectLocations(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, clientID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository: failed to count locations: %w", err)
	}
	return locations, total, nil
}

func collectLocations(rows pgx.Rows) ([]models.Location, error) {
	defer rows.Close()
	var locations []models.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan location: %w", err)
		}
		locations = append(locations, *loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating rows: %w", err)
	}
	return locations, nil
}

func scanLocation(row pgx.Row) (*models.Location, error) {
	var loc models.Location
	err := row.Scan(
		&loc.ID,
		&loc.PlaceDesc,
		&loc.Latitude,
		&loc.Longitude,
		&loc.CreatedAt,
		&loc.ClientID,
		&loc.CategoryID,
		&loc.CategoryName,
	)
	if err != nil {
		return nil, err
	}
	return &loc, nil
}
