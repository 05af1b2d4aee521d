package geocode

import (
	"context"
	"errors"

	"placemap/internal/models"
)

// Bias optionally skews suggestion results towards a location.
type Bias struct {
	Center       models.Position
	RadiusMeters int
}

// Provider is the geocoding capability the engine depends on. Implementations
// wrap a concrete vendor; the engine never sees vendor types.
//
// Suggest returns candidate places for free text. Details resolves a
// suggestion's place id into a full record. Both return errors for transport
// or vendor-status failures; mapping those to fail-soft behavior is the
// caller's concern.
type Provider interface {
	Suggest(ctx context.Context, input string, bias *Bias) ([]models.Suggestion, error)
	Details(ctx context.Context, placeID string) (*models.PlaceDetails, error)
}

// ErrPlaceNotFound is returned by Details when the provider has no record for
// the given place id.
var ErrPlaceNotFound = errors.New("geocode: place not found")
