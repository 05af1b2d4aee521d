package favorites

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"placemap/internal/models"
)

// API is the slice of the backend client the collection needs.
type API interface {
	GetFaved(ctx context.Context, clientID string, page, size int) (models.Page[models.Location], error)
	SaveFaved(ctx context.Context, req models.LocationRequest) (*models.Location, error)
	AssignCategory(ctx context.Context, locationID string, req models.AssignCategoryRequest) (*models.Location, error)
}

// Collection is the local mirror of the client's favorite locations. The
// backend is the source of truth; Load replaces the whole mirror in backend
// order. Adds are request-then-insert: nothing is inserted before the server
// confirms and returns the authoritative record. Removal is local-only.
type Collection struct {
	api     API
	session ClientSession
	logger  zerolog.Logger

	mu            sync.Mutex
	items         []models.Location
	totalElements int64
	listeners     []func([]models.Location)
}

// ClientSession exposes the client id the collection operates under.
type ClientSession interface {
	ID() string
}

// NewCollection creates an empty favorites mirror.
func NewCollection(api API, session ClientSession, logger zerolog.Logger) *Collection {
	return &Collection{
		api:     api,
		session: session,
		logger:  logger,
	}
}

// OnChange registers a listener invoked with a snapshot after every mutation.
// The marker reconciler subscribes here.
func (c *Collection) OnChange(fn func([]models.Location)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Load replaces the entire mirror with one backend page, preserving the
// server's ordering (newest first).
func (c *Collection) Load(ctx context.Context, page, size int) error {
	result, err := c.api.GetFaved(ctx, c.session.ID(), page, size)
	if err != nil {
		return fmt.Errorf("favorites: load failed: %w", err)
	}

	c.mu.Lock()
	c.items = result.Content
	c.totalElements = result.TotalElements
	snapshot := c.snapshotLocked()
	listeners := c.listeners
	c.mu.Unlock()

	c.logger.Debug().Int("count", len(snapshot)).Msg("favorites loaded")
	notify(listeners, snapshot)
	return nil
}

// Add sends the create request and, only on success, prepends the
// server-returned record. On failure the mirror is left unmodified and the
// error is surfaced to the caller.
func (c *Collection) Add(ctx context.Context, placeDesc, latitude, longitude string, categoryID *string) (*models.Location, error) {
	req := models.LocationRequest{
		ClientID:   c.session.ID(),
		PlaceDesc:  placeDesc,
		Latitude:   latitude,
		Longitude:  longitude,
		CategoryID: categoryID,
	}
	saved, err := c.api.SaveFaved(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("favorites: add failed: %w", err)
	}

	c.mu.Lock()
	c.items = append([]models.Location{*saved}, c.items...)
	c.totalElements++
	snapshot := c.snapshotLocked()
	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, snapshot)
	return saved, nil
}

// RemoveLocal drops the entry from the mirror immediately, with no backend
// confirmation. The backend API has no delete route, so local and server
// state diverge until the next full Load; this is a deliberate
// responsiveness tradeoff carried over from the observed design.
func (c *Collection) RemoveLocal(id string) bool {
	c.mu.Lock()
	removed := false
	kept := c.items[:0]
	for _, item := range c.items {
		if item.ID == id {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	c.items = kept
	if removed && c.totalElements > 0 {
		c.totalElements--
	}
	snapshot := c.snapshotLocked()
	listeners := c.listeners
	c.mu.Unlock()

	if removed {
		notify(listeners, snapshot)
	}
	return removed
}

// ReassignCategory updates the favorite's category on the backend and, on
// success, replaces the matching entry in place so collection order is
// stable. On failure the old entry (and its category) stays displayed.
func (c *Collection) ReassignCategory(ctx context.Context, id string, categoryID *string) (*models.Location, error) {
	req := models.AssignCategoryRequest{
		CategoryID: categoryID,
		ClientID:   c.session.ID(),
	}
	updated, err := c.api.AssignCategory(ctx, id, req)
	if err != nil {
		return nil, fmt.Errorf("favorites: category reassignment failed: %w", err)
	}

	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == updated.ID {
			c.items[i] = *updated
			break
		}
	}
	snapshot := c.snapshotLocked()
	listeners := c.listeners
	c.mu.Unlock()

	notify(listeners, snapshot)
	return updated, nil
}

// Items returns a snapshot of the mirror in server order.
func (c *Collection) Items() []models.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Find returns the favorite structurally matching the triple, or nil.
// Matching is by (placeDesc, latitude, longitude) as decimal strings, never
// by id: history entries reference the same point with no id assigned.
func (c *Collection) Find(placeDesc, latitude, longitude string) *models.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if item.Matches(placeDesc, latitude, longitude) {
			found := item
			return &found
		}
	}
	return nil
}

// IsFavorite reports whether a structurally matching favorite exists.
func (c *Collection) IsFavorite(placeDesc, latitude, longitude string) bool {
	return c.Find(placeDesc, latitude, longitude) != nil
}

func (c *Collection) snapshotLocked() []models.Location {
	out := make([]models.Location, len(c.items))
	copy(out, c.items)
	return out
}

func notify(listeners []func([]models.Location), snapshot []models.Location) {
	for _, fn := range listeners {
		fn(snapshot)
	}
}
