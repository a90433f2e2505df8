package rideweather

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ride-weather/internal/models"

	"github.com/tkrajina/gpxgo/gpx"
)

// CenturyPrefix is prepended to the two-digit year of a ride date.
// Rides before 2000 are not supported.
const CenturyPrefix = 2000

// RideDateLayout is the MM.DD.YY form used in track file names
const RideDateLayout = "01.02.06"

// Track file prefixes, checked in this order
var trackFilePrefixes = []string{"Morning_Ride", "Afternoon_Ride"}

// ParseRideDate parses MM.DD.YY where month and day may have one or two digits
func ParseRideDate(value string) (time.Time, error) {
	parts := strings.Split(value, ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, value)
	}

	month, err := parseDatePart(parts[0], 1, 2)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: month %v", ErrInvalidDateFormat, value, err)
	}
	day, err := parseDatePart(parts[1], 1, 2)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: day %v", ErrInvalidDateFormat, value, err)
	}
	year, err := parseDatePart(parts[2], 2, 2)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: year %v", ErrInvalidDateFormat, value, err)
	}

	date := time.Date(CenturyPrefix+year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range values, so compare against the input
	if date.Month() != time.Month(month) || date.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q is not a calendar date", ErrInvalidDateFormat, value)
	}

	return date, nil
}

func parseDatePart(part string, minDigits, maxDigits int) (int, error) {
	if len(part) < minDigits || len(part) > maxDigits {
		return 0, fmt.Errorf("must have %d-%d digits", minDigits, maxDigits)
	}
	for _, r := range part {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%q is not numeric", part)
		}
	}
	return strconv.Atoi(part)
}

// TrackFileCandidates returns the file names checked for a ride date, in order
func TrackFileCandidates(date time.Time) []string {
	stamp := date.Format(RideDateLayout)
	names := make([]string, 0, len(trackFilePrefixes))
	for _, prefix := range trackFilePrefixes {
		names = append(names, prefix+stamp+".gpx")
	}
	return names
}

// ResolveTrackFile finds the first existing track file for the date in dir
func ResolveTrackFile(dir, dateString string) (string, error) {
	date, err := ParseRideDate(dateString)
	if err != nil {
		return "", err
	}

	for _, name := range TrackFileCandidates(date) {
		path := filepath.Join(dir, name)
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to check track file %s: %w", path, err)
		}
	}

	return "", fmt.Errorf("%w: no GPX file for date %s in %s", ErrTrackFileNotFound, dateString, dir)
}

// LoadTrack resolves and parses the track file for a ride date
func LoadTrack(dir, dateString string) (*gpx.GPX, string, error) {
	path, err := ResolveTrackFile(dir, dateString)
	if err != nil {
		return nil, "", err
	}

	log.Printf("Parsing track file %s", path)
	track, err := gpx.ParseFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("%w %s: %v", ErrTrackParse, path, err)
	}

	return track, path, nil
}

// ExtractHourlyPoints keeps the points recorded exactly on the hour.
// Fractional seconds are not checked; points without a timestamp are skipped.
func ExtractHourlyPoints(track *gpx.GPX) []models.GeoPoint {
	points := []models.GeoPoint{}
	if track == nil {
		return points
	}

	for _, trk := range track.Tracks {
		for _, segment := range trk.Segments {
			for _, p := range segment.Points {
				if p.Timestamp.IsZero() {
					continue
				}
				ts := p.Timestamp.UTC()
				if ts.Minute() == 0 && ts.Second() == 0 {
					points = append(points, models.GeoPoint{Latitude: p.Latitude, Longitude: p.Longitude})
				}
			}
		}
	}

	return points
}
