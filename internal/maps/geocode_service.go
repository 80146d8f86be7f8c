package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"

	"roamly/internal/types"
)

// ErrNoResults is returned when an address resolves to nothing.
var ErrNoResults = errors.New("no geocoding results")

type geocoder interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// GeocodeService resolves free-form addresses to coordinates with the Geocoding API.
type GeocodeService struct {
	client   geocoder
	language string
}

// NewGeocodeService creates a new GeocodeService with the given API Key.
func NewGeocodeService(apiKey, language string) (*GeocodeService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GeocodeService{client: client, language: language}, nil
}

// Geocode returns the coordinates of the best match for address.
func (s *GeocodeService) Geocode(ctx context.Context, address string) (types.Coordinates, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return types.Coordinates{}, ErrNoResults
	}

	results, err := s.client.Geocode(ctx, &maps.GeocodingRequest{
		Address:  address,
		Language: s.language,
	})
	if err != nil {
		return types.Coordinates{}, fmt.Errorf("geocoding api error: %w", err)
	}
	if len(results) == 0 {
		return types.Coordinates{}, ErrNoResults
	}

	loc := results[0].Geometry.Location
	c := types.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng}
	if !c.Valid() {
		return types.Coordinates{}, fmt.Errorf("geocoding returned invalid coordinates for %q", address)
	}
	return c, nil
}
