package geocode

import (
	"context"
	"fmt"
	"hash/fnv"
	"strconv"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/muesli/gominatim"
	"github.com/rs/zerolog"

	"placemap/internal/models"
)

const (
	nominatimLimit     = 8
	nominatimCacheSize = 512
)

// NominatimProvider implements Provider on top of a Nominatim server.
//
// Nominatim search responses already carry full geometry, so Details resolves
// from a cache of results seen by Suggest instead of a second network call.
// A place id therefore only stays resolvable while it remains in the cache,
// which matches the ephemeral lifetime of suggestions.
type NominatimProvider struct {
	initOnce sync.Once
	server   string
	seen     *lru.Cache[string, models.PlaceDetails]
	logger   zerolog.Logger
}

// NewNominatimProvider creates a provider against the given Nominatim server.
func NewNominatimProvider(server string, logger zerolog.Logger) *NominatimProvider {
	seen, _ := lru.New[string, models.PlaceDetails](nominatimCacheSize)
	return &NominatimProvider{
		server: server,
		seen:   seen,
		logger: logger,
	}
}

// Suggest runs a Nominatim search and records each result for later Details
// resolution.
func (n *NominatimProvider) Suggest(ctx context.Context, input string, bias *Bias) ([]models.Suggestion, error) {
	n.initOnce.Do(func() {
		gominatim.SetServer(n.server)
	})

	query := gominatim.SearchQuery{
		Q:     input,
		Limit: nominatimLimit,
	}
	results, err := query.Get()
	if err != nil {
		return nil, fmt.Errorf("geocode: nominatim search failed: %w", err)
	}

	suggestions := make([]models.Suggestion, 0, len(results))
	for _, r := range results {
		lat, latErr := strconv.ParseFloat(r.Lat, 64)
		lng, lngErr := strconv.ParseFloat(r.Lon, 64)
		if latErr != nil || lngErr != nil || r.DisplayName == "" {
			continue
		}
		id := syntheticPlaceID(r.DisplayName, r.Lat, r.Lon)
		n.seen.Add(id, models.PlaceDetails{
			PlaceID:   id,
			Name:      r.DisplayName,
			Address:   r.DisplayName,
			Latitude:  lat,
			Longitude: lng,
		})
		suggestions = append(suggestions, models.Suggestion{
			Description: r.DisplayName,
			PlaceID:     id,
		})
	}
	return suggestions, nil
}

// Details returns the cached record for a previously suggested place id.
func (n *NominatimProvider) Details(ctx context.Context, placeID string) (*models.PlaceDetails, error) {
	details, ok := n.seen.Get(placeID)
	if !ok {
		return nil, ErrPlaceNotFound
	}
	return &details, nil
}

func syntheticPlaceID(displayName, lat, lon string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s", displayName, lat, lon)
	return fmt.Sprintf("osm-%x", h.Sum64())
}
