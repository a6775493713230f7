package models

// Altitude is written into every generated coordinate triple.
const Altitude = "0"

// GeoRecord represents a single located point read from a spreadsheet row or a placemark.
type GeoRecord struct {
	Longitude string // Longitude of the point, kept as it was formatted in the source.
	Latitude  string // Latitude of the point, kept as it was formatted in the source.
	Label     string // Label is the placemark name; empty when the source had none.
	Note      string // Note is the placemark description; empty when the source had none.
}

// Coordinates returns the point as a "lon,lat,alt" triple with the altitude fixed at 0.
func (r GeoRecord) Coordinates() string {
	return r.Longitude + "," + r.Latitude + "," + Altitude
}

// RecordSet is an ordered collection of records. Order follows the source rows or placemarks.
type RecordSet []GeoRecord
