package domain

import (
	"context"
	"log/slog"
)

// EnrichLocation fills in whichever half of a location the user left out.
// A city without coordinates is forward geocoded; coordinates without a city
// are reverse geocoded. If geocoder is nil or geocoding fails, the location
// is returned exactly as entered.
func EnrichLocation(ctx context.Context, loc UserLocation, geocoder Geocoder, logger *slog.Logger) UserLocation {
	if geocoder == nil {
		return loc
	}

	hasCoords := loc.Coordinates != nil && !loc.Coordinates.IsZero()
	hasCity := loc.City != ""

	switch {
	case hasCity && !hasCoords:
		result, err := geocoder.ForwardGeocode(ctx, loc.City, loc.Neighborhood)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"city", loc.City,
				"neighborhood", loc.Neighborhood,
				"error", err,
			)
			return loc
		}
		if result.Lat == 0 && result.Lon == 0 {
			return loc
		}
		loc.Coordinates = &Geo{Latitude: result.Lat, Longitude: result.Lon}
		loc.PlaceName = result.FormattedAddress
		return loc

	case hasCoords && !hasCity:
		result, err := geocoder.ReverseGeocode(ctx, loc.Coordinates.Latitude, loc.Coordinates.Longitude)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"lat", loc.Coordinates.Latitude,
				"lon", loc.Coordinates.Longitude,
				"error", err,
			)
			return loc
		}
		if result.PlaceName == "" {
			return loc
		}
		loc.City = result.PlaceName
		loc.PlaceName = result.FormattedAddress
		return loc
	}

	return loc
}
