package mapview

import (
	"sync"

	"github.com/rs/zerolog"

	"placemap/internal/models"
)

// Reconciler keeps the map's marker set in 1:1 correspondence with the
// favorites collection: exactly one marker per favorite with parseable
// coordinates, none for anything else.
//
// Every change triggers a full rebuild rather than an incremental diff:
// destroy all tracked handles, recreate from the current collection. Rebuilds
// are idempotent, and a rebuild requested while one is in progress (nested
// callbacks can do this) is queued and run once afterwards with the latest
// input.
type Reconciler struct {
	surface Surface
	camera  *Camera
	logger  zerolog.Logger

	// Invoked when the user clicks a favorite's marker, after the camera has
	// focused it. The engine wires selection and history recording here.
	onMarkerClick func(models.Location)

	mu         sync.Mutex
	handles    map[string]Marker
	rebuilding bool
	queued     bool
	queuedSet  []models.Location
}

// NewReconciler creates a reconciler over the surface and camera.
func NewReconciler(surface Surface, camera *Camera, onMarkerClick func(models.Location), logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		surface:       surface,
		camera:        camera,
		logger:        logger,
		onMarkerClick: onMarkerClick,
		handles:       make(map[string]Marker),
	}
}

// Rebuild makes the marker set match the given favorites. Favorites whose
// coordinates do not parse as finite numbers are skipped, never fatal.
func (r *Reconciler) Rebuild(items []models.Location) {
	r.mu.Lock()
	if r.rebuilding {
		r.queued = true
		r.queuedSet = items
		r.mu.Unlock()
		return
	}
	r.rebuilding = true
	r.mu.Unlock()

	for {
		r.rebuildOnce(items)

		r.mu.Lock()
		if !r.queued {
			r.rebuilding = false
			r.mu.Unlock()
			return
		}
		items = r.queuedSet
		r.queued = false
		r.queuedSet = nil
		r.mu.Unlock()
	}
}

func (r *Reconciler) rebuildOnce(items []models.Location) {
	r.mu.Lock()
	old := r.handles
	r.handles = make(map[string]Marker, len(items))
	r.mu.Unlock()

	for _, handle := range old {
		r.surface.DestroyMarker(handle)
	}

	var bounds *BoundingBox
	placed := 0
	for _, item := range items {
		lat, lng, ok := item.Coordinates()
		if !ok {
			r.logger.Debug().Str("id", item.ID).Msg("skipping favorite with unparseable coordinates")
			continue
		}

		handle := r.surface.CreateMarker(lat, lng, item.PlaceDesc)
		clicked := item
		r.surface.OnMarkerClick(handle, func() {
			r.handleMarkerClick(clicked)
		})

		r.mu.Lock()
		r.handles[item.ID] = handle
		r.mu.Unlock()

		if bounds == nil {
			b := NewBoundingBox(lat, lng)
			bounds = &b
		} else {
			bounds.Extend(lat, lng)
		}
		placed++
	}

	if placed > 1 && bounds != nil {
		r.camera.FitRegion(*bounds)
	}
	r.logger.Debug().Int("markers", placed).Int("favorites", len(items)).Msg("marker set rebuilt")
}

func (r *Reconciler) handleMarkerClick(item models.Location) {
	lat, lng, ok := item.Coordinates()
	if !ok {
		return
	}
	r.camera.Focus(lat, lng)
	if r.onMarkerClick != nil {
		r.onMarkerClick(item)
	}
}

// MarkerCount returns the number of live handles.
func (r *Reconciler) MarkerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// HasMarker reports whether a favorite id currently has a handle.
func (r *Reconciler) HasMarker(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.handles[id]
	return ok
}
