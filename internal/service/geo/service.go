// internal/service/geo/service.go

package geo

import (
	"math"

	"neighborly/internal/domain/geo"
)

const (
	earthRadiusKm = 6371.0
	boxEpsilon    = 1e-9
)

// GeoSpatialConfig contains configuration for the geospatial service
type GeoSpatialConfig struct {
	DefaultRadius float64
	MaxRadius     float64
}

// GeoSpatialService implements geo.Service
type GeoSpatialService struct {
	config GeoSpatialConfig
}

// NewGeoSpatialService creates a new geospatial service
func NewGeoSpatialService(config GeoSpatialConfig) *GeoSpatialService {
	if config.DefaultRadius <= 0 {
		config.DefaultRadius = 50
	}
	if config.MaxRadius <= 0 {
		config.MaxRadius = 100
	}
	return &GeoSpatialService{config: config}
}

// ValidateCoordinates reports whether lat/lon are within their domains
func (s *GeoSpatialService) ValidateCoordinates(lat, lon float64) bool {
	return ValidateCoordinates(lat, lon)
}

// Distance returns the haversine distance in kilometers
func (s *GeoSpatialService) Distance(a, b geo.Point) float64 {
	return Distance(a, b)
}

// BoundingBox returns the query rectangle for a center and radius
func (s *GeoSpatialService) BoundingBox(center geo.Point, radiusKm float64) geo.Bounds {
	return BoundingBox(center, radiusKm)
}

// WithinRadius reports whether p is within radiusKm of center
func (s *GeoSpatialService) WithinRadius(p, center geo.Point, radiusKm float64) bool {
	return WithinRadius(p, center, radiusKm)
}

// NormalizeRadius applies the default radius and clamps to the maximum
func (s *GeoSpatialService) NormalizeRadius(radiusKm float64) float64 {
	if radiusKm <= 0 || math.IsNaN(radiusKm) {
		return s.config.DefaultRadius
	}
	return math.Min(radiusKm, s.config.MaxRadius)
}

// ValidateCoordinates returns true iff lat is in [-90,90] and lon in [-180,180]
func ValidateCoordinates(lat, lon float64) bool {
	return geo.Point{Latitude: lat, Longitude: lon}.Valid()
}

// Distance calculates the great-circle distance between two points using
// the haversine formula
func Distance(a, b geo.Point) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// BoundingBox converts a center and radius into a lat/lon rectangle holding
// every point within the radius. Deltas are measured on the same sphere as
// Distance: latDelta = r/111.195 and lonDelta = asin(sin(d)/cos(lat)), which
// is r/(111.195*cos(lat)) for small radii.
func BoundingBox(center geo.Point, radiusKm float64) geo.Bounds {
	if radiusKm < 0 {
		radiusKm = 0
	}
	d := radiusKm / earthRadiusKm
	lat := toRadians(center.Latitude)

	latDelta := toDegrees(d) + boxEpsilon
	b := geo.Bounds{
		MinLat: center.Latitude - latDelta,
		MaxLat: center.Latitude + latDelta,
		MinLon: -180,
		MaxLon: 180,
	}

	// A circle touching a pole covers every longitude.
	if b.MinLat <= -90 || b.MaxLat >= 90 {
		b.MinLat = math.Max(b.MinLat, -90)
		b.MaxLat = math.Min(b.MaxLat, 90)
		return b
	}

	ratio := math.Sin(d) / math.Cos(lat)
	if ratio >= 1 || math.IsNaN(ratio) {
		return b
	}

	lonDelta := toDegrees(math.Asin(ratio)) + boxEpsilon
	minLon := center.Longitude - lonDelta
	maxLon := center.Longitude + lonDelta

	// Boxes crossing the antimeridian are widened rather than split.
	if minLon < -180 || maxLon > 180 {
		return b
	}

	b.MinLon = minLon
	b.MaxLon = maxLon
	return b
}

// WithinRadius is the exact post-filter applied after a bounding box query
func WithinRadius(p, center geo.Point, radiusKm float64) bool {
	return Distance(center, p) <= radiusKm
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func toDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
