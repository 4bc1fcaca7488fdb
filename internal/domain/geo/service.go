// internal/domain/geo/service.go

package geo

// Point is a WGS84 coordinate pair
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Valid reports whether latitude is in [-90,90] and longitude in [-180,180]
func (p Point) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 && p.Longitude >= -180 && p.Longitude <= 180
}

// Bounds is an axis-aligned lat/lon rectangle used to pre-filter store queries
type Bounds struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLon float64 `json:"minLon"`
	MaxLon float64 `json:"maxLon"`
}

// Contains reports whether p lies inside the rectangle, edges included
func (b Bounds) Contains(p Point) bool {
	return p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat &&
		p.Longitude >= b.MinLon && p.Longitude <= b.MaxLon
}

// Area is a center point plus a radius in kilometers
type Area struct {
	Center   Point
	RadiusKm float64
}

// Service defines the geospatial calculations shared by the resource managers
type Service interface {
	// ValidateCoordinates reports whether lat/lon are within their domains
	ValidateCoordinates(lat, lon float64) bool

	// Distance returns the great-circle distance between a and b in kilometers
	Distance(a, b Point) float64

	// BoundingBox returns the rectangle enclosing every point within radiusKm of center
	BoundingBox(center Point, radiusKm float64) Bounds

	// WithinRadius reports whether p is within radiusKm of center
	WithinRadius(p, center Point, radiusKm float64) bool

	// NormalizeRadius applies the default radius and clamps to the maximum
	NormalizeRadius(radiusKm float64) float64
}
