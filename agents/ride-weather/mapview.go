package rideweather

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ride-weather/internal/models"
	"ride-weather/shared/config"

	"github.com/google/uuid"
)

// BuildMapReport pairs each hourly point with the annotation of its weather record
func BuildMapReport(date time.Time, trackFile string, zoom int, points []models.GeoPoint, records []*models.WeatherRecord) (*models.MapReport, error) {
	if len(points) == 0 {
		return nil, ErrEmptyPointSet
	}
	if len(points) != len(records) {
		return nil, fmt.Errorf("%w: %d points, %d records", ErrMisalignedRecords, len(points), len(records))
	}

	report := &models.MapReport{
		Date:      date,
		TrackFile: trackFile,
		Center:    points[0],
		Zoom:      zoom,
		Markers:   make([]*models.MapMarker, 0, len(points)),
	}

	for i, point := range points {
		lines, err := AnnotationLines(records[i])
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		report.Markers = append(report.Markers, &models.MapMarker{Point: point, Lines: lines})
	}

	return report, nil
}

// markerView is the JSON shape consumed by the map script
type markerView struct {
	Lat   float64  `json:"lat"`
	Lon   float64  `json:"lon"`
	Lines []string `json:"lines"`
}

type mapView struct {
	Title       string
	MapID       string
	Center      models.GeoPoint
	Zoom        int
	TileURL     string
	Attribution string
	Markers     []markerView
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
    <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
    <style>
        html, body { width: 100%; height: 100%; margin: 0; padding: 0; }
        .ride-map { position: absolute; top: 0; bottom: 0; left: 0; right: 0; }
    </style>
</head>
<body>
    <div class="ride-map" id="{{.MapID}}"></div>
    <script>
        function escapeHTML(text) {
            var div = document.createElement("div");
            div.textContent = text;
            return div.innerHTML;
        }

        var map = L.map({{.MapID}}, {
            center: [{{.Center.Latitude}}, {{.Center.Longitude}}],
            zoom: {{.Zoom}}
        });

        L.tileLayer({{.TileURL}}, {
            attribution: {{.Attribution}},
            maxZoom: 19
        }).addTo(map);

        var markers = {{.Markers}};
        markers.forEach(function (m) {
            L.marker([m.lat, m.lon])
                .bindTooltip(m.lines.map(escapeHTML).join("<br>"))
                .addTo(map);
        });
    </script>
</body>
</html>
`))

// MapRenderer writes map reports as standalone Leaflet HTML pages
type MapRenderer struct {
	config *config.MapConfig
}

func NewMapRenderer(cfg *config.MapConfig) *MapRenderer {
	return &MapRenderer{config: cfg}
}

// Render generates the HTML page for a report
func (r *MapRenderer) Render(report *models.MapReport) ([]byte, error) {
	if report == nil || len(report.Markers) == 0 {
		return nil, ErrEmptyPointSet
	}

	view := mapView{
		Title:       "Ride Weather",
		MapID:       "map_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Center:      report.Center,
		Zoom:        report.Zoom,
		TileURL:     r.config.TileURL,
		Attribution: r.config.Attribution,
		Markers:     make([]markerView, 0, len(report.Markers)),
	}
	if !report.Date.IsZero() {
		view.Title = fmt.Sprintf("Ride Weather - %s", report.Date.Format("January 2, 2006"))
	}
	for _, m := range report.Markers {
		view.Markers = append(view.Markers, markerView{Lat: m.Point.Latitude, Lon: m.Point.Longitude, Lines: m.Lines})
	}

	var buf bytes.Buffer
	if err := mapTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render map template: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders the report and replaces path atomically
func (r *MapRenderer) WriteFile(report *models.MapReport, path string) error {
	html, err := r.Render(report)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".map-*.html")
	if err != nil {
		return fmt.Errorf("failed to create temporary map file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(html); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write map file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close map file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set map file permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to save map file %s: %w", path, err)
	}

	return nil
}
