package mapview

// Marker is an opaque, provider-owned visual object. The reconciler only ever
// stores and returns these; it never inspects them.
type Marker interface{}

// Insets are pixel margins applied when fitting the camera to a region.
type Insets struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// BoundingBox is a geographic region covering a set of points.
type BoundingBox struct {
	North float64
	South float64
	East  float64
	West  float64
}

// NewBoundingBox starts a box at a single point.
func NewBoundingBox(lat, lng float64) BoundingBox {
	return BoundingBox{North: lat, South: lat, East: lng, West: lng}
}

// Extend grows the box to cover the point.
func (b *BoundingBox) Extend(lat, lng float64) {
	if lat > b.North {
		b.North = lat
	}
	if lat < b.South {
		b.South = lat
	}
	if lng > b.East {
		b.East = lng
	}
	if lng < b.West {
		b.West = lng
	}
}

// Contains reports whether the point lies within the box.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat <= b.North && lat >= b.South && lng <= b.East && lng >= b.West
}

// Surface is the map capability the engine depends on. Camera commands are
// fire-and-forget: a later command always wins over an earlier one.
//
// OnCameraChanged fires on every camera movement; the first notification is
// the readiness signal. OnPOIClick fires when the user clicks a point of
// interest on the base map, with the provider's place id.
type Surface interface {
	SetCenter(lat, lng float64)
	SetZoom(level int)
	FitBounds(bounds BoundingBox, insets Insets)
	CreateMarker(lat, lng float64, title string) Marker
	DestroyMarker(m Marker)
	OnMarkerClick(m Marker, fn func())
	OnCameraChanged(fn func())
	OnPOIClick(fn func(placeID string))
}
