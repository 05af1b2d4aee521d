package models

import (
	"math"
	"strconv"
	"time"
)

// Location is a saved location record as the backend returns it, used for both
// favorites and visited history. Latitude and longitude travel as decimal
// strings end to end; they are parsed to floats only at the point of geometric
// use so no precision is lost in serialization round trips.
type Location struct {
	ID           string    `json:"id"`
	PlaceDesc    string    `json:"placeDesc"`
	Latitude     string    `json:"latitude"`
	Longitude    string    `json:"longitude"`
	CreatedAt    time.Time `json:"createdAt"`
	ClientID     string    `json:"clientId"`
	CategoryID   *string   `json:"categoryId,omitempty"`
	CategoryName *string   `json:"categoryName,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// Coordinates parses the stored decimal strings. ok is false when either
// component is missing, malformed or non-finite; such records are skipped by
// the marker reconciler rather than treated as errors.
func (l Location) Coordinates() (lat, lng float64, ok bool) {
	lat, err := strconv.ParseFloat(l.Latitude, 64)
	if err != nil || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(l.Longitude, 64)
	if err != nil || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return 0, 0, false
	}
	return lat, lng, true
}

// Matches reports structural equality against a (description, latitude,
// longitude) triple. Identity is deliberately not id-based: the same
// geographic point may be referenced from history before any id is assigned.
func (l Location) Matches(placeDesc, latitude, longitude string) bool {
	return l.PlaceDesc == placeDesc && l.Latitude == latitude && l.Longitude == longitude
}

// LocationRequest is the create payload for both visited and faved locations.
type LocationRequest struct {
	ClientID   string  `json:"clientId" binding:"required"`
	PlaceDesc  string  `json:"placeDesc" binding:"required"`
	Latitude   string  `json:"latitude" binding:"required"`
	Longitude  string  `json:"longitude" binding:"required"`
	CategoryID *string `json:"categoryId,omitempty"`
}

// AssignCategoryRequest reassigns a favorite's category. A nil CategoryID
// means uncategorized.
type AssignCategoryRequest struct {
	CategoryID *string `json:"categoryId"`
	ClientID   string  `json:"clientId" binding:"required"`
}
