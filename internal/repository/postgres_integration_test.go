//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"placemap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jackc/pgx/v5/pgxpool"
)

func setupTestDatabase(t *testing.T) *pgxpool.Pool {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections"),
	}

	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		postgresC.Terminate(ctx)
	})

	host, err := postgresC.Host(ctx)
	require.NoError(t, err)

	port, err := postgresC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := "postgres://testuser:testpass@" + host + ":" + port.Port() + "/testdb?sslmode=disable"

	pool, err := pgxpool.New(ctx, connString)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
	})

	// Create test schema
	_, err = pool.Exec(ctx, `
		CREATE TABLE clients (
			client_id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE categories (
			id UUID PRIMARY KEY,
			client_id UUID NOT NULL REFERENCES clients (client_id),
			category_name VARCHAR(255) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE faved_locations (
			id UUID PRIMARY KEY,
			client_id UUID NOT NULL REFERENCES clients (client_id),
			place_desc TEXT NOT NULL,
			latitude VARCHAR(64) NOT NULL,
			longitude VARCHAR(64) NOT NULL,
			category_id UUID REFERENCES categories (id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE visited_locations (
			id UUID PRIMARY KEY,
			client_id UUID NOT NULL REFERENCES clients (client_id),
			place_desc TEXT NOT NULL,
			latitude VARCHAR(64) NOT NULL,
			longitude VARCHAR(64) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	require.NoError(t, err)

	return pool
}

const (
	itClientID   = "11111111-1111-1111-1111-111111111111"
	itCategoryID = "22222222-2222-2222-2222-222222222222"
)

func TestRepository_FavedLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.EnsureClient(ctx, itClientID))
	// EnsureClient is idempotent.
	require.NoError(t, repo.EnsureClient(ctx, itClientID))

	exists, err := repo.ClientExists(ctx, itClientID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.InsertCategory(ctx, models.Category{
		ID:           itCategoryID,
		CategoryName: "Parks",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
		ClientID:     itClientID,
	}))

	older := models.Location{
		ID:        "33333333-3333-3333-3333-333333333331",
		PlaceDesc: "KLCC Park",
		Latitude:  "3.1558",
		Longitude: "101.7147",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
		ClientID:  itClientID,
	}
	newer := models.Location{
		ID:        "33333333-3333-3333-3333-333333333332",
		PlaceDesc: "Merdeka Square",
		Latitude:  "3.1478",
		Longitude: "101.6935",
		CreatedAt: time.Now().UTC(),
		ClientID:  itClientID,
	}
	require.NoError(t, repo.InsertFaved(ctx, older))
	require.NoError(t, repo.InsertFaved(ctx, newer))

	t.Run("ListFaved newest first", func(t *testing.T) {
		locations, total, err := repo.ListFaved(ctx, itClientID, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, locations, 2)
		assert.Equal(t, newer.ID, locations[0].ID)
		assert.Equal(t, older.ID, locations[1].ID)
		assert.Equal(t, "3.1558", locations[1].Latitude)
	})

	t.Run("pagination", func(t *testing.T) {
		locations, total, err := repo.ListFaved(ctx, itClientID, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, locations, 1)
		assert.Equal(t, older.ID, locations[0].ID)
	})

	t.Run("UpdateFavedCategory and join", func(t *testing.T) {
		require.NoError(t, repo.UpdateFavedCategory(ctx, older.ID, strPtr(itCategoryID)))

		loc, err := repo.GetFaved(ctx, older.ID)
		require.NoError(t, err)
		require.NotNil(t, loc.CategoryID)
		assert.Equal(t, itCategoryID, *loc.CategoryID)
		require.NotNil(t, loc.CategoryName)
		assert.Equal(t, "Parks", *loc.CategoryName)
	})

	t.Run("ListFavedByCategory", func(t *testing.T) {
		locations, total, err := repo.ListFavedByCategory(ctx, itCategoryID, itClientID, 0, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, locations, 1)
		assert.Equal(t, older.ID, locations[0].ID)
	})

	t.Run("clear category", func(t *testing.T) {
		require.NoError(t, repo.UpdateFavedCategory(ctx, older.ID, nil))

		loc, err := repo.GetFaved(ctx, older.ID)
		require.NoError(t, err)
		assert.Nil(t, loc.CategoryID)
		assert.Nil(t, loc.CategoryName)
	})

	t.Run("missing ids map to ErrNotFound", func(t *testing.T) {
		_, err := repo.GetFaved(ctx, "33333333-3333-3333-3333-333333333339")
		assert.ErrorIs(t, err, ErrNotFound)

		err = repo.UpdateFavedCategory(ctx, "33333333-3333-3333-3333-333333333339", nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRepository_VisitedHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.EnsureClient(ctx, itClientID))

	for i, id := range []string{
		"44444444-4444-4444-4444-444444444441",
		"44444444-4444-4444-4444-444444444442",
	} {
		require.NoError(t, repo.InsertVisited(ctx, models.Location{
			ID:        id,
			PlaceDesc: "Stop",
			Latitude:  "3.1",
			Longitude: "101.7",
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Minute),
			ClientID:  itClientID,
		}))
	}

	locations, total, err := repo.ListVisited(ctx, itClientID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, locations, 2)
	assert.Equal(t, "44444444-4444-4444-4444-444444444442", locations[0].ID)
	assert.Nil(t, locations[0].CategoryID)
}

func TestRepository_Categories(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	pool := setupTestDatabase(t)
	repo := NewRepository(pool)
	ctx := context.Background()

	require.NoError(t, repo.EnsureClient(ctx, itClientID))
	require.NoError(t, repo.InsertCategory(ctx, models.Category{
		ID:           itCategoryID,
		CategoryName: "Parks",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
		ClientID:     itClientID,
	}))

	cat, err := repo.GetCategory(ctx, itCategoryID)
	require.NoError(t, err)
	assert.Equal(t, "Parks", cat.CategoryName)

	require.NoError(t, repo.UpdateCategoryName(ctx, itCategoryID, "Gardens"))

	cat, err = repo.GetCategory(ctx, itCategoryID)
	require.NoError(t, err)
	assert.Equal(t, "Gardens", cat.CategoryName)

	categories, total, err := repo.ListCategories(ctx, itClientID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, categories, 1)

	_, err = repo.GetCategory(ctx, "22222222-2222-2222-2222-222222222229")
	assert.ErrorIs(t, err, ErrNotFound)
}

func strPtr(s string) *string { return &s }
