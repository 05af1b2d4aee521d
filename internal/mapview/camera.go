package mapview

import (
	"sync"

	"github.com/rs/zerolog"
)

// Built-in camera defaults, used until geolocation or a selection overrides
// them.
const (
	DefaultCenterLat = 3.1558
	DefaultCenterLng = 101.7147
	DefaultZoom      = 13
	FocusedZoom      = 15
)

// FitMargins are the insets used when fitting the camera to the favorites
// region. The bottom margin is larger to leave room for the search bar
// overlay.
var FitMargins = Insets{Top: 50, Right: 50, Bottom: 80, Left: 50}

// Camera arbitrates who controls the map center and zoom. It starts in an
// initializing state and becomes ready exactly once, on the first
// camera-change notification from the surface; no command touches the
// surface before that.
//
// Precedence, highest first: explicit focus (selection, marker or POI click),
// one-shot geolocation, the static default. A geolocation fix that arrives
// after an explicit focus is dropped.
type Camera struct {
	surface Surface
	logger  zerolog.Logger

	mu            sync.Mutex
	ready         bool
	focusedOnce   bool
	pendingCenter *pendingCommand
	onReady       []func()
}

type pendingCommand struct {
	lat, lng float64
	zoom     int // 0 means leave zoom alone
}

// NewCamera binds a camera to a surface and subscribes to its readiness
// signal.
func NewCamera(surface Surface, logger zerolog.Logger) *Camera {
	c := &Camera{surface: surface, logger: logger}
	surface.OnCameraChanged(c.onCameraChanged)
	return c
}

func (c *Camera) onCameraChanged() {
	c.mu.Lock()
	if c.ready {
		c.mu.Unlock()
		return
	}
	c.ready = true
	pending := c.pendingCenter
	c.pendingCenter = nil
	hooks := c.onReady
	c.onReady = nil
	c.mu.Unlock()

	c.logger.Debug().Msg("map camera ready")
	if pending != nil {
		c.surface.SetCenter(pending.lat, pending.lng)
		if pending.zoom > 0 {
			c.surface.SetZoom(pending.zoom)
		}
	}
	for _, fn := range hooks {
		fn()
	}
}

// OnReady registers a hook to run once the surface produces its first camera
// event, after any pending center has been replayed. Registered after
// readiness, the hook runs immediately.
func (c *Camera) OnReady(fn func()) {
	c.mu.Lock()
	if !c.ready {
		c.onReady = append(c.onReady, fn)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	fn()
}

// Ready reports whether the surface has produced its first camera event.
func (c *Camera) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Focus recenters on a point at the focused zoom level. Used for explicit
// place selection and marker/POI clicks; it permanently outranks geolocation.
func (c *Camera) Focus(lat, lng float64) {
	c.mu.Lock()
	c.focusedOnce = true
	if !c.ready {
		c.pendingCenter = &pendingCommand{lat: lat, lng: lng, zoom: FocusedZoom}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.surface.SetCenter(lat, lng)
	c.surface.SetZoom(FocusedZoom)
}

// CenterFromGeolocation applies a one-shot geolocation fix: recenter only,
// keeping whatever zoom is in effect. Dropped if an explicit focus already
// happened.
func (c *Camera) CenterFromGeolocation(lat, lng float64) {
	c.mu.Lock()
	if c.focusedOnce {
		c.mu.Unlock()
		return
	}
	if !c.ready {
		if c.pendingCenter == nil {
			c.pendingCenter = &pendingCommand{lat: lat, lng: lng}
		}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.surface.SetCenter(lat, lng)
}

// FitRegion fits the camera to a bounding region with the standard margins.
// Ignored before readiness; the rebuild that follows readiness will fit
// again.
func (c *Camera) FitRegion(bounds BoundingBox) {
	c.mu.Lock()
	ready := c.ready
	c.mu.Unlock()
	if !ready {
		return
	}
	c.surface.FitBounds(bounds, FitMargins)
}
