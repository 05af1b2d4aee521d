package models

// Suggestion is a lightweight candidate place returned from a free-text query.
// It lives only between a query and either selection or the next query.
type Suggestion struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

// PlaceDetails is a fully resolved place. Immutable once constructed; the
// selection state owns at most one of these at a time.
type PlaceDetails struct {
	PlaceID   string  `json:"placeId"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Position is a plain lat/lng pair in degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
