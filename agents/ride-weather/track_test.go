package rideweather

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ride-weather/internal/models"

	"github.com/tkrajina/gpxgo/gpx"
)

const hourlyGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">
  <trk>
    <name>Afternoon Ride</name>
    <trkseg>
      <trkpt lat="40.0" lon="-75.0"><time>2024-03-15T14:00:00Z</time></trkpt>
      <trkpt lat="40.1" lon="-75.1"><time>2024-03-15T14:15:00Z</time></trkpt>
      <trkpt lat="40.2" lon="-75.2"><time>2024-03-15T14:30:30Z</time></trkpt>
    </trkseg>
  </trk>
</gpx>
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestParseRideDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"03.15.24", "03.15.24"},
		{"7.4.24", "07.04.24"},
		{"12.31.99", "12.31.99"},
		{"2.29.24", "02.29.24"},
		{"1.01.00", "01.01.00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			date, err := ParseRideDate(tt.input)
			if err != nil {
				t.Fatalf("ParseRideDate(%q) failed: %v", tt.input, err)
			}
			if got := date.Format(RideDateLayout); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
			if date.Year() < CenturyPrefix || date.Year() > CenturyPrefix+99 {
				t.Errorf("Year %d outside the 20xx century", date.Year())
			}
		})
	}
}

func TestParseRideDateInvalid(t *testing.T) {
	inputs := []string{
		"",
		"03-15-24",
		"03.15",
		"03.15.24.1",
		"13.01.24",
		"00.10.24",
		"02.30.24",
		"02.29.23",
		"04.31.24",
		"03.00.24",
		"aa.15.24",
		"03.15.2024",
		"03.15.4",
		"003.15.24",
		"+3.15.24",
		" 3.15.24",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseRideDate(input)
			if !errors.Is(err, ErrInvalidDateFormat) {
				t.Errorf("ParseRideDate(%q): expected ErrInvalidDateFormat, got %v", input, err)
			}
		})
	}
}

func TestTrackFileCandidates(t *testing.T) {
	date := time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC)
	names := TrackFileCandidates(date)

	expected := []string{"Morning_Ride07.04.24.gpx", "Afternoon_Ride07.04.24.gpx"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %d candidates, got %d", len(expected), len(names))
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Candidate %d: expected %s, got %s", i, expected[i], names[i])
		}
	}
}

func TestResolveTrackFile(t *testing.T) {
	t.Run("Prefers morning ride", func(t *testing.T) {
		dir := t.TempDir()
		morning := writeFile(t, dir, "Morning_Ride03.15.24.gpx", hourlyGPX)
		writeFile(t, dir, "Afternoon_Ride03.15.24.gpx", hourlyGPX)

		path, err := ResolveTrackFile(dir, "03.15.24")
		if err != nil {
			t.Fatalf("ResolveTrackFile() failed: %v", err)
		}
		if path != morning {
			t.Errorf("Expected %s, got %s", morning, path)
		}
	})

	t.Run("Falls back to afternoon ride", func(t *testing.T) {
		dir := t.TempDir()
		afternoon := writeFile(t, dir, "Afternoon_Ride03.15.24.gpx", hourlyGPX)

		path, err := ResolveTrackFile(dir, "3.15.24")
		if err != nil {
			t.Fatalf("ResolveTrackFile() failed: %v", err)
		}
		if path != afternoon {
			t.Errorf("Expected %s, got %s", afternoon, path)
		}
	})

	t.Run("Unpadded file name is not matched", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "Morning_Ride3.15.24.gpx", hourlyGPX)

		_, err := ResolveTrackFile(dir, "3.15.24")
		if !errors.Is(err, ErrTrackFileNotFound) {
			t.Errorf("Expected ErrTrackFileNotFound, got %v", err)
		}
	})

	t.Run("No track file", func(t *testing.T) {
		_, err := ResolveTrackFile(t.TempDir(), "03.15.24")
		if !errors.Is(err, ErrTrackFileNotFound) {
			t.Errorf("Expected ErrTrackFileNotFound, got %v", err)
		}
	})

	t.Run("Invalid date", func(t *testing.T) {
		_, err := ResolveTrackFile(t.TempDir(), "13.15.24")
		if !errors.Is(err, ErrInvalidDateFormat) {
			t.Errorf("Expected ErrInvalidDateFormat, got %v", err)
		}
	})
}

func TestLoadTrack(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Morning_Ride03.15.24.gpx", hourlyGPX)

	track, path, err := LoadTrack(dir, "03.15.24")
	if err != nil {
		t.Fatalf("LoadTrack() failed: %v", err)
	}
	if filepath.Base(path) != "Morning_Ride03.15.24.gpx" {
		t.Errorf("Unexpected track path %s", path)
	}
	if len(track.Tracks) != 1 || len(track.Tracks[0].Segments) != 1 || len(track.Tracks[0].Segments[0].Points) != 3 {
		t.Errorf("Unexpected track structure: %+v", track.Tracks)
	}
}

func TestLoadTrackParseError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "Morning_Ride03.15.24.gpx", "<gpx><trk><trkseg><trkpt")

	_, _, err := LoadTrack(dir, "03.15.24")
	if !errors.Is(err, ErrTrackParse) {
		t.Errorf("Expected ErrTrackParse, got %v", err)
	}
}

func gpxPoint(lat, lon float64, ts time.Time) gpx.GPXPoint {
	return gpx.GPXPoint{
		Point:     gpx.Point{Latitude: lat, Longitude: lon},
		Timestamp: ts,
	}
}

func TestExtractHourlyPoints(t *testing.T) {
	base := time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC)

	var first, second gpx.GPXTrackSegment
	for hour := 0; hour < 2; hour++ {
		for _, minute := range []int{0, 15, 30, 45} {
			ts := base.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
			first.Points = append(first.Points, gpxPoint(40+float64(hour), float64(-minute), ts))
		}
	}
	second.Points = []gpx.GPXPoint{
		// Seconds past the hour
		gpxPoint(41.5, -74.5, base.Add(2*time.Hour+5*time.Second)),
		gpxPoint(42.0, -74.0, base.Add(3*time.Hour)),
		// Sub-second component is ignored
		gpxPoint(42.5, -73.5, base.Add(4*time.Hour+250*time.Millisecond)),
		// No timestamp
		gpxPoint(43.0, -73.0, time.Time{}),
		// 18:00 EST is 23:00 UTC
		gpxPoint(43.5, -72.5, time.Date(2024, 3, 15, 18, 0, 0, 0, time.FixedZone("EST", -5*3600))),
	}

	track := &gpx.GPX{
		Tracks: []gpx.GPXTrack{
			{Segments: []gpx.GPXTrackSegment{first}},
			{Segments: []gpx.GPXTrackSegment{second}},
		},
	}

	expected := []models.GeoPoint{
		{Latitude: 40, Longitude: 0},
		{Latitude: 41, Longitude: 0},
		{Latitude: 42.0, Longitude: -74.0},
		{Latitude: 42.5, Longitude: -73.5},
		{Latitude: 43.5, Longitude: -72.5},
	}

	points := ExtractHourlyPoints(track)
	if len(points) != len(expected) {
		t.Fatalf("Expected %d points, got %d: %v", len(expected), len(points), points)
	}
	for i := range expected {
		if points[i] != expected[i] {
			t.Errorf("Point %d: expected %v, got %v", i, expected[i], points[i])
		}
	}
}

func TestExtractHourlyPointsNone(t *testing.T) {
	track := &gpx.GPX{
		Tracks: []gpx.GPXTrack{{Segments: []gpx.GPXTrackSegment{{Points: []gpx.GPXPoint{
			gpxPoint(40, -75, time.Date(2024, 3, 15, 14, 1, 0, 0, time.UTC)),
		}}}}},
	}

	points := ExtractHourlyPoints(track)
	if points == nil || len(points) != 0 {
		t.Errorf("Expected empty, non-nil result, got %v", points)
	}
	if len(ExtractHourlyPoints(nil)) != 0 {
		t.Error("Expected no points for nil track")
	}
}
