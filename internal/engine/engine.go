package engine

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"placemap/internal/favorites"
	"placemap/internal/geoloc"
	"placemap/internal/mapview"
	"placemap/internal/models"
	"placemap/internal/search"
	"placemap/internal/state"
)

// HistoryAPI is the slice of the backend client the engine needs for the
// visited-location history.
type HistoryAPI interface {
	SaveVisited(ctx context.Context, req models.LocationRequest) (*models.Location, error)
	GetVisited(ctx context.Context, clientID string, page, size int) (models.Page[models.Location], error)
}

// Engine ties the search, selection, favorites and map subsystems together
// and owns the event wiring between them:
//
//   - favorites changes rebuild the marker set, as does map readiness
//   - a selection recenters the camera at the focused zoom
//   - marker clicks select the favorite and append to history
//   - POI clicks resolve details, select and append to history
type Engine struct {
	Searcher  *search.Searcher
	Selection *state.Selection
	Favorites *favorites.Collection
	Camera    *mapview.Camera
	Markers   *mapview.Reconciler

	session *state.Session
	history HistoryAPI
	locator geoloc.Locator
	surface mapview.Surface
	logger  zerolog.Logger
}

// Deps carries the engine's collaborators.
type Deps struct {
	Searcher  *search.Searcher
	Favorites *favorites.Collection
	Surface   mapview.Surface
	Session   *state.Session
	History   HistoryAPI
	Locator   geoloc.Locator // may be nil: geolocation is best-effort
	Logger    zerolog.Logger
}

// New wires an engine. The marker reconciler and camera are constructed here
// because their click and readiness callbacks close over engine behavior.
func New(deps Deps) *Engine {
	e := &Engine{
		Searcher:  deps.Searcher,
		Selection: state.NewSelection(),
		Favorites: deps.Favorites,
		session:   deps.Session,
		history:   deps.History,
		locator:   deps.Locator,
		surface:   deps.Surface,
		logger:    deps.Logger,
	}

	e.Camera = mapview.NewCamera(deps.Surface, deps.Logger)
	e.Markers = mapview.NewReconciler(deps.Surface, e.Camera, e.onMarkerClick, deps.Logger)

	e.Favorites.OnChange(func(items []models.Location) {
		e.Markers.Rebuild(items)
	})

	// Markers created while the surface was still initializing had their
	// region fit withheld; rebuild once readiness arrives so the fit reaches
	// the surface.
	e.Camera.OnReady(func() {
		e.Markers.Rebuild(e.Favorites.Items())
	})

	e.Selection.Observe(func(details *models.PlaceDetails) {
		if details != nil {
			e.Camera.Focus(details.Latitude, details.Longitude)
		}
	})

	deps.Surface.OnPOIClick(func(placeID string) {
		e.onPOIClick(context.Background(), placeID)
	})

	return e
}

// Start performs the mount-time work: a one-shot best-effort geolocation fix
// and the initial favorites load. Geolocation runs in the background and
// never blocks or fails the start.
func (e *Engine) Start(ctx context.Context) error {
	if e.locator != nil {
		go func() {
			pos, err := e.locator.Locate(ctx)
			if err != nil {
				e.logger.Debug().Err(err).Msg("geolocation failed, keeping default center")
				return
			}
			e.Camera.CenterFromGeolocation(pos.Lat, pos.Lng)
		}()
	}

	return e.Favorites.Load(ctx, 0, 20)
}

// SelectSuggestion resolves a picked suggestion into full details, makes it
// the selected place, clears the suggestion list and input, and appends it to
// the visited history. On resolution failure the previous selection is left
// unchanged and the error is returned.
func (e *Engine) SelectSuggestion(ctx context.Context, suggestion models.Suggestion) (*models.PlaceDetails, error) {
	details, err := e.Searcher.ResolveDetails(ctx, suggestion.PlaceID)
	if err != nil {
		return nil, err
	}

	e.Searcher.Clear()
	e.Selection.Select(*details)
	e.recordVisit(ctx, details.Name, details.Latitude, details.Longitude)
	return details, nil
}

// ClearSelection empties the selected-place slot.
func (e *Engine) ClearSelection() {
	e.Selection.Clear()
}

// IsSelectedFavorite reports whether the current selection structurally
// matches an existing favorite. Matching compares stored coordinate strings
// against formatCoord output, so a favorite written in a non-canonical
// decimal form (say "1.10") by another client is treated as a different
// place.
func (e *Engine) IsSelectedFavorite() bool {
	selected := e.Selection.Current()
	if selected == nil {
		return false
	}
	return e.Favorites.IsFavorite(selected.Name, formatCoord(selected.Latitude), formatCoord(selected.Longitude))
}

// ToggleFavorite adds the selected place to favorites, or removes it locally
// when it already is one. Returns the affected record, or nil when nothing
// was selected.
func (e *Engine) ToggleFavorite(ctx context.Context) (*models.Location, error) {
	selected := e.Selection.Current()
	if selected == nil {
		return nil, nil
	}

	lat := formatCoord(selected.Latitude)
	lng := formatCoord(selected.Longitude)

	if existing := e.Favorites.Find(selected.Name, lat, lng); existing != nil {
		e.Favorites.RemoveLocal(existing.ID)
		return existing, nil
	}
	return e.Favorites.Add(ctx, selected.Name, lat, lng, nil)
}

// VisitedHistory returns a page of the visited-location history.
func (e *Engine) VisitedHistory(ctx context.Context, page, size int) (models.Page[models.Location], error) {
	return e.history.GetVisited(ctx, e.session.ID(), page, size)
}

// onMarkerClick runs when a favorite's marker is clicked: the camera has
// already focused it; select it and append to history.
func (e *Engine) onMarkerClick(item models.Location) {
	lat, lng, ok := item.Coordinates()
	if !ok {
		return
	}
	e.Selection.Select(models.PlaceDetails{
		Name:      item.PlaceDesc,
		Latitude:  lat,
		Longitude: lng,
	})
	e.recordVisit(context.Background(), item.PlaceDesc, lat, lng)
}

// onPOIClick resolves a clicked point of interest and selects it. Resolution
// failure leaves the current selection untouched.
func (e *Engine) onPOIClick(ctx context.Context, placeID string) {
	details, err := e.Searcher.ResolveDetails(ctx, placeID)
	if err != nil {
		e.logger.Warn().Err(err).Str("place_id", placeID).Msg("POI details resolution failed")
		return
	}
	e.Selection.Select(*details)
	e.recordVisit(ctx, details.Name, details.Latitude, details.Longitude)
}

// recordVisit appends to the visited history. Failures are logged, never
// surfaced: history is an auxiliary concern.
func (e *Engine) recordVisit(ctx context.Context, placeDesc string, lat, lng float64) {
	if e.history == nil {
		return
	}
	_, err := e.history.SaveVisited(ctx, models.LocationRequest{
		ClientID:  e.session.ID(),
		PlaceDesc: placeDesc,
		Latitude:  formatCoord(lat),
		Longitude: formatCoord(lng),
	})
	if err != nil {
		e.logger.Warn().Err(err).Str("place", placeDesc).Msg("failed to record visited location")
	}
}

// formatCoord renders a coordinate as the shortest decimal string that
// round-trips, the canonical wire form for stored coordinates. Everything
// this engine writes goes through it, so structural matching stays exact for
// records of its own making.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
