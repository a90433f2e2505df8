package models

import "time"

// MapMarker is a single annotated point on the rendered map
type MapMarker struct {
	Point GeoPoint `json:"point"`
	Lines []string `json:"lines"` // annotation, one entry per tooltip line
}

// MapReport represents everything needed to render the ride weather map
type MapReport struct {
	Date      time.Time    `json:"date"`
	TrackFile string       `json:"track_file"`
	Center    GeoPoint     `json:"center"`
	Zoom      int          `json:"zoom"`
	Markers   []*MapMarker `json:"markers"`
}
