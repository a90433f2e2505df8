package rideweather

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"ride-weather/internal/models"
)

var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

const (
	sunsetLayout    = "2006-01-02T15:04:05Z"
	sunsetDisplay   = "2006-01-02 15:04:05"
	compassSector   = 360.0 / 16
	compassHalfStep = compassSector / 2
)

// CompassLabel converts a wind direction in degrees to one of 16 compass points.
// Sector 0 (N) spans [348.75, 11.25).
func CompassLabel(degrees float64) string {
	shifted := math.Mod(degrees+compassHalfStep, 360)
	if shifted < 0 {
		shifted += 360
	}
	return compassPoints[int(shifted/compassSector)%len(compassPoints)]
}

// ParseSunset reads the sunset of the first forecast day as a UTC time
func ParseSunset(record *models.WeatherRecord) (time.Time, error) {
	if record == nil || record.ForecastDaily == nil {
		return time.Time{}, fmt.Errorf("%w: forecastDaily missing", ErrMalformedWeatherPayload)
	}
	if len(record.ForecastDaily.Days) == 0 {
		return time.Time{}, fmt.Errorf("%w: forecastDaily has no days", ErrMalformedWeatherPayload)
	}

	raw := record.ForecastDaily.Days[0].Sunset
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: sunset missing", ErrMalformedWeatherPayload)
	}
	// time.Parse tolerates fractional seconds the layout does not mention
	if len(raw) != len(sunsetLayout) {
		return time.Time{}, fmt.Errorf("%w: sunset %q does not match YYYY-MM-DDTHH:MM:SSZ", ErrMalformedWeatherPayload, raw)
	}

	sunset, err := time.Parse(sunsetLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: sunset %q: %v", ErrMalformedWeatherPayload, raw, err)
	}
	return sunset.UTC(), nil
}

// AnnotationLines builds the wind speed, wind direction and sunset lines for a marker
func AnnotationLines(record *models.WeatherRecord) ([]string, error) {
	if record == nil || record.CurrentWeather == nil {
		return nil, fmt.Errorf("%w: currentWeather missing", ErrMalformedWeatherPayload)
	}

	sunset, err := ParseSunset(record)
	if err != nil {
		return nil, err
	}

	current := record.CurrentWeather
	return []string{
		fmt.Sprintf("Wind Speed: %s m/s", strconv.FormatFloat(current.WindSpeed, 'f', -1, 64)),
		fmt.Sprintf("Wind Direction: %s", CompassLabel(current.WindDirection)),
		fmt.Sprintf("Sunset: %s", sunset.Format(sunsetDisplay)),
	}, nil
}

// FormatAnnotation returns the three annotation lines joined by newlines
func FormatAnnotation(record *models.WeatherRecord) (string, error) {
	lines, err := AnnotationLines(record)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}
