package models

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a GeoJSON point from latitude and longitude.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// Valid reports whether the point carries a longitude/latitude pair.
func (g GeoPoint) Valid() bool {
	return len(g.Coordinates) == 2
}

// Lat returns the latitude, or 0 for an empty point.
func (g GeoPoint) Lat() float64 {
	if !g.Valid() {
		return 0
	}
	return g.Coordinates[1]
}

// Lng returns the longitude, or 0 for an empty point.
func (g GeoPoint) Lng() float64 {
	if !g.Valid() {
		return 0
	}
	return g.Coordinates[0]
}
