package mapview

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"placemap/internal/models"
)

func fav(id, desc, lat, lng string) models.Location {
	return models.Location{ID: id, PlaceDesc: desc, Latitude: lat, Longitude: lng}
}

func newTestReconciler(onClick func(models.Location)) (*Reconciler, *fakeSurface) {
	surface := newFakeSurface()
	camera := NewCamera(surface, zerolog.Nop())
	surface.fireCameraChanged()
	return NewReconciler(surface, camera, onClick, zerolog.Nop()), surface
}

func TestReconciler_RebuildPlacesOneMarkerPerParseableFavorite(t *testing.T) {
	r, surface := newTestReconciler(nil)

	r.Rebuild([]models.Location{
		fav("a", "KLCC Park", "3.1558", "101.7147"),
		fav("b", "Merdeka Square", "3.1478", "101.6935"),
		fav("c", "Broken", "not-a-number", "101.7"),
		fav("d", "AlsoBroken", "NaN", "101.7"),
	})

	assert.Equal(t, 2, r.MarkerCount())
	assert.Equal(t, 2, surface.liveCount())
	assert.True(t, r.HasMarker("a"))
	assert.True(t, r.HasMarker("b"))
	assert.False(t, r.HasMarker("c"))
	assert.False(t, r.HasMarker("d"))
}

func TestReconciler_RebuildIsIdempotent(t *testing.T) {
	r, surface := newTestReconciler(nil)
	items := []models.Location{
		fav("a", "KLCC Park", "3.1558", "101.7147"),
		fav("b", "Merdeka Square", "3.1478", "101.6935"),
	}

	r.Rebuild(items)
	r.Rebuild(items)
	r.Rebuild(items)

	assert.Equal(t, 2, r.MarkerCount())
	assert.Equal(t, 2, surface.liveCount())
	// Each extra rebuild destroyed and recreated the full set.
	assert.Equal(t, 4, surface.destroyed)
}

func TestReconciler_RemovedFavoriteLosesItsMarker(t *testing.T) {
	r, surface := newTestReconciler(nil)

	r.Rebuild([]models.Location{
		fav("a", "KLCC Park", "3.1558", "101.7147"),
		fav("b", "Merdeka Square", "3.1478", "101.6935"),
	})
	r.Rebuild([]models.Location{
		fav("b", "Merdeka Square", "3.1478", "101.6935"),
	})

	assert.Equal(t, 1, r.MarkerCount())
	assert.False(t, r.HasMarker("a"))
	assert.True(t, r.HasMarker("b"))
	assert.Equal(t, 1, surface.liveCount())
}

func TestReconciler_EmptySetClearsAllMarkers(t *testing.T) {
	r, surface := newTestReconciler(nil)

	r.Rebuild([]models.Location{fav("a", "KLCC Park", "3.1558", "101.7147")})
	r.Rebuild(nil)

	assert.Equal(t, 0, r.MarkerCount())
	assert.Equal(t, 0, surface.liveCount())
	assert.Empty(t, surface.fits)
}

func TestReconciler_FitsRegionOnlyWithMultipleMarkers(t *testing.T) {
	r, surface := newTestReconciler(nil)

	r.Rebuild([]models.Location{fav("a", "KLCC Park", "3.1558", "101.7147")})
	assert.Empty(t, surface.fits)

	r.Rebuild([]models.Location{
		fav("a", "KLCC Park", "3.1558", "101.7147"),
		fav("b", "Merdeka Square", "3.1478", "101.6935"),
	})

	assert.Len(t, surface.fits, 1)
	fit := surface.fits[0]
	assert.Equal(t, 3.1558, fit.bounds.North)
	assert.Equal(t, 3.1478, fit.bounds.South)
	assert.Equal(t, 101.7147, fit.bounds.East)
	assert.Equal(t, 101.6935, fit.bounds.West)
	assert.Equal(t, FitMargins, fit.insets)
}

func TestReconciler_MarkerClickFocusesAndNotifies(t *testing.T) {
	var clicked []models.Location
	r, surface := newTestReconciler(func(item models.Location) {
		clicked = append(clicked, item)
	})

	r.Rebuild([]models.Location{fav("a", "KLCC Park", "3.1558", "101.7147")})

	assert.True(t, surface.clickMarker("KLCC Park"))
	assert.Len(t, clicked, 1)
	assert.Equal(t, "a", clicked[0].ID)

	lat, lng, ok := surface.lastCenter()
	assert.True(t, ok)
	assert.Equal(t, 3.1558, lat)
	assert.Equal(t, 101.7147, lng)
	zoom, _ := surface.lastZoom()
	assert.Equal(t, FocusedZoom, zoom)
}

func TestReconciler_RebuildDuringRebuildQueuesAndRunsLatest(t *testing.T) {
	surface := newFakeSurface()
	camera := NewCamera(surface, zerolog.Nop())
	surface.fireCameraChanged()

	r := NewReconciler(surface, camera, nil, zerolog.Nop())

	// A marker placement retriggers reconciliation with a newer set, as a
	// nested favorites notification would.
	reentered := false
	surface.onCreate = func() {
		if !reentered {
			reentered = true
			r.Rebuild([]models.Location{fav("b", "Merdeka Square", "3.1478", "101.6935")})
		}
	}

	r.Rebuild([]models.Location{fav("a", "KLCC Park", "3.1558", "101.7147")})

	assert.Equal(t, 1, r.MarkerCount())
	assert.True(t, r.HasMarker("b"))
	assert.False(t, r.HasMarker("a"))
	assert.Equal(t, 1, surface.liveCount())
}
